package simulation

import (
	"fmt"

	"universe-sim/internal/physics"

	"gonum.org/v1/gonum/spatial/r3"
)

// Accumulator fills acc[i] with the acceleration of bodies[i] for one step.
// acc has len(bodies) entries and is zeroed on entry.
type Accumulator interface {
	Accumulate(bodies []physics.Body, acc []r3.Vec) error
}

// Pairwise visits every unordered pair (i, j), i < j, exactly once in slice
// order and applies +F/m_i to i and -F/m_j to j. Cost is O(n²).
type Pairwise struct {
	Model physics.ForceModel
}

func NewPairwise(model physics.ForceModel) *Pairwise {
	return &Pairwise{Model: model}
}

func (p *Pairwise) Accumulate(bodies []physics.Body, acc []r3.Vec) error {
	for i := 0; i < len(bodies); i++ {
		for j := i + 1; j < len(bodies); j++ {
			f, err := p.Model.Force(bodies[i], bodies[j])
			if err != nil {
				return fmt.Errorf("pair (%d, %d): %w", i, j, err)
			}
			acc[i] = r3.Add(acc[i], divide(f, bodies[i].Mass()))
			acc[j] = r3.Add(acc[j], divide(r3.Scale(-1, f), bodies[j].Mass()))
		}
	}
	return nil
}

func divide(v r3.Vec, s float64) r3.Vec {
	return r3.Vec{X: v.X / s, Y: v.Y / s, Z: v.Z / s}
}
