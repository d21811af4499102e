package physics

import (
	"fmt"

	"universe-sim/internal/shared/errors"

	"gonum.org/v1/gonum/spatial/r3"
)

// DegeneratePolicy decides what a force model does with coincident bodies.
type DegeneratePolicy string

const (
	// DegenerateFail reports a degenerate_geometry error.
	DegenerateFail DegeneratePolicy = "fail"
	// DegenerateSkip treats the pair as exerting no force.
	DegenerateSkip DegeneratePolicy = "skip"
)

func ParseDegeneratePolicy(s string) (DegeneratePolicy, error) {
	switch DegeneratePolicy(s) {
	case DegenerateFail, DegenerateSkip:
		return DegeneratePolicy(s), nil
	case "":
		return DegenerateFail, nil
	default:
		return "", errors.Validationf("unknown degenerate policy %q", s)
	}
}

// ForceModel computes the force acting on a due to b.
type ForceModel interface {
	Force(a, b Body) (r3.Vec, error)
}

// Newtonian is the inverse-square law F = G*m_a*m_b/d^2 along the unit
// vector from a to b, with no softening.
type Newtonian struct {
	G      float64
	Policy DegeneratePolicy
}

func NewNewtonian(policy DegeneratePolicy) *Newtonian {
	return &Newtonian{G: G, Policy: policy}
}

func (n *Newtonian) Force(a, b Body) (r3.Vec, error) {
	delta := r3.Sub(b.Position(), a.Position())
	distSquared := r3.Norm2(delta)

	if distSquared == 0 {
		if n.Policy == DegenerateSkip {
			return r3.Vec{}, nil
		}
		return r3.Vec{}, errors.DegenerateGeometryf("zero distance between bodies at %v", a.Position())
	}

	magnitude := n.G * (a.Mass() * b.Mass()) / distSquared
	force := r3.Scale(magnitude/r3.Norm(delta), delta)

	if !IsFinite(force) {
		return r3.Vec{}, errors.WrapDegenerateGeometry("non-finite gravitational force",
			fmt.Errorf("distance squared %g, masses %g and %g", distSquared, a.Mass(), b.Mass()))
	}

	return force, nil
}
