package systems

import (
	"github.com/pthm-cable/skirmish/components"
	"github.com/pthm-cable/skirmish/config"
)

// matrixActions is the number of actions that appear in the payoff matrix.
// IGNORE is outside it.
const matrixActions = int(components.ActionIgnore)

// PayoffMatrix maps an ordered action pair to (self, other) energy deltas.
// Only the canonical FIGHT < SHARE < FLEE ordering of each unordered pair
// is configured; the mirrored order is the swapped pair.
type PayoffMatrix struct {
	deltas    [matrixActions][matrixActions][2]float64
	surcharge float64
}

// NewPayoffMatrix builds the matrix from configuration.
func NewPayoffMatrix(cfg *config.Config) PayoffMatrix {
	p := &cfg.Payoff
	var m PayoffMatrix
	m.set(components.ActionFight, components.ActionFight, p.FightFight)
	m.set(components.ActionFight, components.ActionShare, p.FightShare)
	m.set(components.ActionFight, components.ActionFlee, p.FightFlee)
	m.set(components.ActionShare, components.ActionShare, p.ShareShare)
	m.set(components.ActionShare, components.ActionFlee, p.ShareFlee)
	m.set(components.ActionFlee, components.ActionFlee, p.FleeFlee)
	m.surcharge = cfg.Interaction.FightSurcharge
	return m
}

func (m *PayoffMatrix) set(a, b components.Action, d [2]float64) {
	m.deltas[a][b] = d
	if a != b {
		m.deltas[b][a] = [2]float64{d[1], d[0]}
	}
}

// Lookup returns the matrix deltas for self playing a against b.
// IGNORE on either side yields (0, 0).
func (m *PayoffMatrix) Lookup(a, b components.Action) (self, other float64) {
	if int(a) >= matrixActions || int(b) >= matrixActions {
		return 0, 0
	}
	d := m.deltas[a][b]
	return d[0], d[1]
}

// Resolve returns the deltas actually applied: the matrix entry plus the
// fight surcharge, charged to each side that chose FIGHT.
func (m *PayoffMatrix) Resolve(a, b components.Action) (self, other float64) {
	self, other = m.Lookup(a, b)
	if a == components.ActionFight {
		self -= m.surcharge
	}
	if b == components.ActionFight {
		other -= m.surcharge
	}
	return self, other
}

// Surcharge returns the FIGHT surcharge.
func (m *PayoffMatrix) Surcharge() float64 { return m.surcharge }

// classify turns a pair of applied deltas into self's outcome.
func classify(self, other float64) components.Outcome {
	switch {
	case self > other:
		return components.OutcomeWin
	case self < other:
		return components.OutcomeLoss
	default:
		return components.OutcomeTie
	}
}
