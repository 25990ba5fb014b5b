package telemetry

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zstd"
)

type line struct {
	Tick int64   `json:"tick"`
	Live int     `json:"live"`
	Avg  float64 `json:"avg"`
}

func TestRecorderRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "frames", "run.jsonl.zst")
	rec, err := NewRecorder(path)
	if err != nil {
		t.Fatal(err)
	}
	want := []line{{1, 10, 50}, {2, 9, 48.5}, {3, 9, 47.25}}
	for _, l := range want {
		if err := rec.Write(l); err != nil {
			t.Fatal(err)
		}
	}
	if rec.Lines() != len(want) {
		t.Errorf("Lines = %d, want %d", rec.Lines(), len(want))
	}
	if err := rec.Close(); err != nil {
		t.Fatal(err)
	}
	if err := rec.Write(line{}); err == nil {
		t.Error("write after close succeeded")
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	dec, err := zstd.NewReader(f)
	if err != nil {
		t.Fatal(err)
	}
	defer dec.Close()

	sc := bufio.NewScanner(dec)
	var got []line
	for sc.Scan() {
		var l line
		if err := json.Unmarshal(sc.Bytes(), &l); err != nil {
			t.Fatalf("line %d: %v", len(got)+1, err)
		}
		got = append(got, l)
	}
	if err := sc.Err(); err != nil {
		t.Fatal(err)
	}
	if len(got) != len(want) {
		t.Fatalf("read %d lines, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("line %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestRecorderDisabled(t *testing.T) {
	rec, err := NewRecorder("")
	if err != nil || rec != nil {
		t.Fatalf("NewRecorder(\"\") = %v, %v", rec, err)
	}
	if err := rec.Write(line{}); err != nil {
		t.Error(err)
	}
	if err := rec.Close(); err != nil {
		t.Error(err)
	}
}
