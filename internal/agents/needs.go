// Recurring per-inhabitant needs.
package agents

import "slices"

// Need is a recurring requirement of an inhabitant. Any of Types satisfies
// it. It falls due Interval rounds after it was last satisfied.
type Need struct {
	Types              []int `json:"types"`
	Interval           int   `json:"interval"`             // Rounds between satisfactions
	LastSatisfiedRound int   `json:"last_satisfied_round"` // 0 until first satisfied
	Penalty            int   `json:"penalty"`              // Satisfaction gained/lost
}

// NewNeed creates a need that any of types can satisfy.
func NewNeed(interval, penalty int, types ...int) Need {
	return Need{Types: types, Interval: interval, Penalty: penalty}
}

// IsActive reports whether the need is due in round.
func (n *Need) IsActive(round int) bool {
	return round-n.LastSatisfiedRound >= n.Interval
}

// Accepts reports whether needType satisfies this need.
func (n *Need) Accepts(needType int) bool {
	return slices.Contains(n.Types, needType)
}

// Satisfy records that the need was met in round.
func (n *Need) Satisfy(round int) {
	n.LastSatisfiedRound = round
}
