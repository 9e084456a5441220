// Package agents provides city inhabitants and their satisfaction bookkeeping.
package agents

import (
	"slices"

	"github.com/talgya/hex-cities/internal/world"
)

// Satisfaction bounds.
const (
	MinSatisfaction = 0
	MaxSatisfaction = 100
)

// Inhabitant lives in the building at Position.
type Inhabitant struct {
	Tier         int             `json:"tier"`     // Starts at 1
	Position     world.CubeCoord `json:"position"` // Building this inhabitant lives in
	Needs        []Need          `json:"needs"`
	Satisfaction int             `json:"satisfaction"` // 0–100
}

// NewInhabitant creates a tier 1, fully satisfied inhabitant.
func NewInhabitant(pos world.CubeCoord, needs []Need) *Inhabitant {
	return &Inhabitant{
		Tier:         1,
		Position:     pos,
		Needs:        needs,
		Satisfaction: MaxSatisfaction,
	}
}

// SatisfyNeed satisfies the first due need that accepts needType and
// restores its penalty. Returns false if no due need accepts needType.
func (in *Inhabitant) SatisfyNeed(needType, round int) bool {
	for i := range in.Needs {
		need := &in.Needs[i]
		if !need.Accepts(needType) || !need.IsActive(round) {
			continue
		}
		need.Satisfy(round)
		in.Satisfaction = min(in.Satisfaction+need.Penalty, MaxSatisfaction)
		return true
	}
	return false
}

// UpdateNeeds applies the penalty of every need still due. Call at the end
// of a round, after needs were satisfied.
func (in *Inhabitant) UpdateNeeds(round int) {
	for i := range in.Needs {
		if in.Needs[i].IsActive(round) {
			in.Satisfaction = max(in.Satisfaction-in.Needs[i].Penalty, MinSatisfaction)
		}
	}
}

// ActiveNeeds returns how many needs are due in round.
func (in *Inhabitant) ActiveNeeds(round int) int {
	n := 0
	for i := range in.Needs {
		if in.Needs[i].IsActive(round) {
			n++
		}
	}
	return n
}

// Upgrade moves the inhabitant one tier up with a fresh set of needs.
func (in *Inhabitant) Upgrade(needs []Need) {
	in.Tier++
	in.Satisfaction = MaxSatisfaction
	in.Needs = needs
}

// Downgrade moves the inhabitant one tier down. Tier 1 cannot be
// downgraded and returns false.
func (in *Inhabitant) Downgrade(needs []Need) bool {
	if in.Tier <= 1 {
		return false
	}
	in.Tier--
	in.Satisfaction = MaxSatisfaction
	in.Needs = needs
	return true
}

// Clone returns a deep copy.
func (in *Inhabitant) Clone() *Inhabitant {
	c := *in
	c.Needs = make([]Need, len(in.Needs))
	for i, n := range in.Needs {
		n.Types = slices.Clone(n.Types)
		c.Needs[i] = n
	}
	if in.Needs == nil {
		c.Needs = nil
	}
	return &c
}
