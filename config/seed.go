package config

import (
	"encoding/json"
	"fmt"
	"hash/fnv"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Seed is the deterministic initializer for the simulation RNG.
// It decodes from a number or a string; non-numeric strings are hashed.
type Seed int64

// ParseSeed converts a numeric or free-form string into a seed.
func ParseSeed(s string) Seed {
	s = strings.TrimSpace(s)
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return Seed(v)
	}
	h := fnv.New64a()
	h.Write([]byte(s))
	return Seed(int64(h.Sum64()))
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (s *Seed) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("seed must be a scalar, got %v", value.Tag)
	}
	*s = ParseSeed(value.Value)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (s Seed) MarshalYAML() (interface{}, error) {
	return int64(s), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *Seed) UnmarshalJSON(b []byte) error {
	var str string
	if err := json.Unmarshal(b, &str); err == nil {
		*s = ParseSeed(str)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("seed must be a number or string: %w", err)
	}
	v, err := n.Int64()
	if err != nil {
		return fmt.Errorf("seed must be an integer: %w", err)
	}
	*s = Seed(v)
	return nil
}
