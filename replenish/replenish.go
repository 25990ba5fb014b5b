// Package replenish is a food replenishment policy: it tops the arena's food
// back up toward a target count on a fixed tick cadence.
package replenish

import (
	"math/rand"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/skirmish/config"
)

// Sink is the part of the game a Policy feeds.
type Sink interface {
	Config() *config.Config
	FoodCount() int
	AcquireFood(x, y float64) ecs.Entity
}

// Policy places food uniformly across the arena. It draws from its own RNG,
// leaving the simulation's random stream untouched.
type Policy struct {
	rng      *rand.Rand
	target   int
	interval int64
	batch    int
	next     int64
}

// New creates a policy that adds at most batch items every interval ticks
// until target items are live. A target of 0 disables it.
func New(seed int64, target int, interval int64, batch int) *Policy {
	if interval < 1 {
		interval = 1
	}
	if batch < 1 {
		batch = 1
	}
	return &Policy{
		rng:      rand.New(rand.NewSource(seed)),
		target:   target,
		interval: interval,
		batch:    batch,
		next:     interval,
	}
}

// Tick adds up to batch food items when tick has reached the next cadence
// point. It returns the number added.
func (r *Policy) Tick(g Sink, tick int64) int {
	if r == nil || r.target <= 0 || tick < r.next {
		return 0
	}
	r.next = tick + r.interval

	missing := r.target - g.FoodCount()
	if missing > r.batch {
		missing = r.batch
	}
	w := g.Config().World
	for i := 0; i < missing; i++ {
		g.AcquireFood(r.rng.Float64()*w.Width, r.rng.Float64()*w.Height)
	}
	if missing < 0 {
		return 0
	}
	return missing
}
