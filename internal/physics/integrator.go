package physics

import "gonum.org/v1/gonum/spatial/r3"

// Integrator advances one body's kinematics by dt once its acceleration for
// the step is fully accumulated.
type Integrator interface {
	Integrate(k *Kinematics, dt float64)
}

// Euler is explicit Euler: velocity is advanced from the current
// acceleration, then position from the updated velocity. It drifts in
// energy over long runs.
type Euler struct{}

func (Euler) Integrate(k *Kinematics, dt float64) {
	k.Velocity = r3.Add(k.Velocity, r3.Scale(dt, k.Acceleration))
	k.Position = r3.Add(k.Position, r3.Scale(dt, k.Velocity))
}
