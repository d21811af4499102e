// Package physics holds the point-mass force law and the time integrator
// used by the simulation engine. Vectors are gonum r3.Vec values.
package physics

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// G is the Newtonian gravitational constant.
const G = 6.67430e-11

// Body is a point mass as seen by a ForceModel.
type Body interface {
	Mass() float64
	Position() r3.Vec
}

// Kinematics is the mutable state of a body. Only the engine writes it.
type Kinematics struct {
	Position     r3.Vec `json:"position"`
	Velocity     r3.Vec `json:"velocity"`
	Acceleration r3.Vec `json:"acceleration"`
}

// Finite reports whether every component of position, velocity and
// acceleration is a finite number.
func (k Kinematics) Finite() bool {
	return IsFinite(k.Position) && IsFinite(k.Velocity) && IsFinite(k.Acceleration)
}

func IsFinite(v r3.Vec) bool {
	return isFinite(v.X) && isFinite(v.Y) && isFinite(v.Z)
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// OnSphere returns the point at polar angle phi and azimuth theta on the
// sphere of the given radius centred on the origin.
func OnSphere(radius, theta, phi float64) r3.Vec {
	sinPhi, cosPhi := math.Sincos(phi)
	sinTheta, cosTheta := math.Sincos(theta)
	return r3.Vec{
		X: radius * sinPhi * cosTheta,
		Y: radius * sinPhi * sinTheta,
		Z: radius * cosPhi,
	}
}
