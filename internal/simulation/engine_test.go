package simulation

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"reflect"
	"testing"

	"universe-sim/internal/galaxy"
	"universe-sim/internal/physics"
	"universe-sim/internal/shared/errors"
	"universe-sim/internal/universe"

	"gonum.org/v1/gonum/spatial/r3"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func pointGalaxy(t testing.TB, mass float64, pos r3.Vec) *galaxy.Galaxy {
	t.Helper()
	bh, err := galaxy.NewBlackHole(mass)
	if err != nil {
		t.Fatalf("NewBlackHole() error = %v", err)
	}
	g, err := galaxy.New(bh, nil, pos)
	if err != nil {
		t.Fatalf("galaxy.New() error = %v", err)
	}
	return g
}

func newUniverse(t testing.TB, galaxies ...*galaxy.Galaxy) *universe.Universe {
	t.Helper()
	u, err := universe.New(galaxies)
	if err != nil {
		t.Fatalf("universe.New() error = %v", err)
	}
	return u
}

func generatedUniverse(t testing.TB, seed uint64, n int) *universe.Universe {
	t.Helper()
	params := galaxy.DefaultGenerationParams()
	params.MinStars, params.MaxStars = 10, 50
	factory, err := galaxy.NewSeededFactory(seed, params, discard)
	if err != nil {
		t.Fatalf("NewSeededFactory() error = %v", err)
	}
	galaxies, err := factory.GenerateUniverse(n)
	if err != nil {
		t.Fatalf("GenerateUniverse() error = %v", err)
	}
	return newUniverse(t, galaxies...)
}

func newEngine(t testing.TB, u *universe.Universe, opts ...Option) *Engine {
	t.Helper()
	e, err := NewEngine(u, append([]Option{WithLogger(discard)}, opts...)...)
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	return e
}

func snapshot(u *universe.Universe) []physics.Kinematics {
	states := make([]physics.Kinematics, u.Len())
	for i, g := range u.Galaxies() {
		states[i] = *g.Kinematics()
	}
	return states
}

func relClose(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol*math.Max(math.Abs(a), math.Abs(b))
}

func TestTwoGalaxyStep(t *testing.T) {
	a := pointGalaxy(t, 1e8, r3.Vec{})
	b := pointGalaxy(t, 1e8, r3.Vec{X: 1e5})
	e := newEngine(t, newUniverse(t, a, b))

	if err := e.Simulate(context.Background(), 1e7, 1); err != nil {
		t.Fatalf("Simulate() error = %v", err)
	}

	// F = G*1e8*1e8/(1e5)^2 = 6.6743e-5, |a| = F/1e8, v = a*dt, x += v*dt
	const accel = 6.6743e-13
	const vel = accel * 1e7
	const disp = vel * 1e7

	if !relClose(a.Acceleration().X, accel, 1e-12) || !relClose(b.Acceleration().X, -accel, 1e-12) {
		t.Errorf("accelerations = %v, %v; want ±%g on x", a.Acceleration(), b.Acceleration(), accel)
	}
	if !relClose(a.Velocity().X, vel, 1e-12) || !relClose(b.Velocity().X, -vel, 1e-12) {
		t.Errorf("velocities = %v, %v; want ±%g on x", a.Velocity(), b.Velocity(), vel)
	}
	if !relClose(a.Position().X, disp, 1e-12) {
		t.Errorf("a.Position().X = %v, want %v", a.Position().X, disp)
	}
	if !relClose(b.Position().X, 1e5-disp, 1e-12) {
		t.Errorf("b.Position().X = %v, want %v", b.Position().X, 1e5-disp)
	}
	if a.Position().Y != 0 || a.Position().Z != 0 || b.Position().Y != 0 || b.Position().Z != 0 {
		t.Error("motion should stay on the x axis")
	}
	if e.StepsTaken() != 1 || e.ElapsedTime() != 1e7 {
		t.Errorf("StepsTaken() = %d, ElapsedTime() = %v", e.StepsTaken(), e.ElapsedTime())
	}
}

func TestTwoGalaxiesAttract(t *testing.T) {
	a := pointGalaxy(t, 3e9, r3.Vec{X: -2e5, Y: 4e5, Z: 1e5})
	b := pointGalaxy(t, 5e7, r3.Vec{X: 6e5, Y: -1e5, Z: -3e5})
	startA, startB := a.Position(), b.Position()

	e := newEngine(t, newUniverse(t, a, b))
	if err := e.Simulate(context.Background(), 1e7, 1); err != nil {
		t.Fatalf("Simulate() error = %v", err)
	}

	moveA := r3.Sub(a.Position(), startA)
	moveB := r3.Sub(b.Position(), startB)

	if r3.Dot(moveA, r3.Sub(startB, startA)) <= 0 {
		t.Errorf("a moved %v, not towards b", moveA)
	}
	if r3.Dot(moveB, r3.Sub(startA, startB)) <= 0 {
		t.Errorf("b moved %v, not towards a", moveB)
	}
	// Opposite directions, inversely proportional to mass.
	if r3.Cos(moveA, moveB) > -1+1e-9 {
		t.Errorf("displacements %v and %v are not antiparallel", moveA, moveB)
	}
}

func TestMomentumConserved(t *testing.T) {
	u := generatedUniverse(t, 99, 30)
	e := newEngine(t, u)

	for step := 1; step <= 3; step++ {
		if err := e.Step(1e7); err != nil {
			t.Fatalf("Step() error = %v", err)
		}

		var scale float64
		for _, g := range u.Galaxies() {
			scale += g.Mass() * r3.Norm(g.Velocity())
		}
		if p := r3.Norm(u.TotalMomentum()); p > 1e-12*scale {
			t.Errorf("step %d: |Σ m·v| = %g, want ~0 (scale %g)", step, p, scale)
		}
	}
}

func TestZeroStepsIsNoop(t *testing.T) {
	u := generatedUniverse(t, 5, 8)
	u.Galaxy(3).SetVelocity(r3.Vec{X: 1, Y: 2, Z: 3})
	before := snapshot(u)

	e := newEngine(t, u)
	if err := e.Simulate(context.Background(), 1e7, 0); err != nil {
		t.Fatalf("Simulate() error = %v", err)
	}

	if !reflect.DeepEqual(before, snapshot(u)) {
		t.Error("Simulate with zero steps changed kinematic state")
	}
	if e.StepsTaken() != 0 {
		t.Errorf("StepsTaken() = %d, want 0", e.StepsTaken())
	}
}

func TestSimulateContinuesFromCurrentState(t *testing.T) {
	once := generatedUniverse(t, 11, 6)
	split := generatedUniverse(t, 11, 6)

	if err := newEngine(t, once).Simulate(context.Background(), 1e7, 4); err != nil {
		t.Fatalf("Simulate() error = %v", err)
	}

	e := newEngine(t, split)
	for i := 0; i < 2; i++ {
		if err := e.Simulate(context.Background(), 1e7, 2); err != nil {
			t.Fatalf("Simulate() error = %v", err)
		}
	}

	if !reflect.DeepEqual(snapshot(once), snapshot(split)) {
		t.Error("two runs of 2 steps differ from one run of 4 steps")
	}
	if e.StepsTaken() != 4 {
		t.Errorf("StepsTaken() = %d, want 4", e.StepsTaken())
	}
}

func TestSimulateDoesNotChangeMass(t *testing.T) {
	u := generatedUniverse(t, 3, 5)
	masses := make([]float64, u.Len())
	stars := make([]int, u.Len())
	for i, g := range u.Galaxies() {
		masses[i], stars[i] = g.Mass(), g.StarCount()
	}

	if err := newEngine(t, u).Simulate(context.Background(), 1e7, 10); err != nil {
		t.Fatalf("Simulate() error = %v", err)
	}

	for i, g := range u.Galaxies() {
		if g.Mass() != masses[i] || g.StarCount() != stars[i] {
			t.Errorf("galaxy %d composition changed during simulation", i)
		}
	}
}

func TestSimulateInvalidParameters(t *testing.T) {
	e := newEngine(t, generatedUniverse(t, 1, 2))

	tests := []struct {
		name     string
		timeStep float64
		steps    int
	}{
		{"zero time step", 0, 1},
		{"negative time step", -1e7, 1},
		{"NaN time step", math.NaN(), 1},
		{"infinite time step", math.Inf(1), 1},
		{"negative steps", 1e7, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := e.Simulate(context.Background(), tt.timeStep, tt.steps)
			if !errors.Is(err, errors.ErrorTypeValidation) {
				t.Errorf("Simulate() error = %v, want validation", err)
			}
		})
	}

	if err := e.Step(0); !errors.Is(err, errors.ErrorTypeValidation) {
		t.Errorf("Step(0) error = %v, want validation", err)
	}
	if e.StepsTaken() != 0 {
		t.Errorf("StepsTaken() = %d after rejected calls", e.StepsTaken())
	}
}

func TestDegenerateFailPolicy(t *testing.T) {
	a := pointGalaxy(t, 1e8, r3.Vec{X: 1, Y: 1, Z: 1})
	b := pointGalaxy(t, 1e9, r3.Vec{X: 1, Y: 1, Z: 1})
	c := pointGalaxy(t, 1e9, r3.Vec{X: 5e5})
	a.Kinematics().Acceleration = r3.Vec{X: 7}
	u := newUniverse(t, a, b, c)
	before := snapshot(u)

	e := newEngine(t, u, WithForceModel(physics.NewNewtonian(physics.DegenerateFail)))

	err := e.Simulate(context.Background(), 1e7, 5)
	if !errors.Is(err, errors.ErrorTypeDegenerateGeometry) {
		t.Fatalf("Simulate() error = %v, want degenerate_geometry", err)
	}
	if e.StepsTaken() != 0 {
		t.Errorf("StepsTaken() = %d, want 0", e.StepsTaken())
	}
	for i, g := range u.Galaxies() {
		if *g.Kinematics() != before[i] {
			t.Errorf("galaxy %d kinematics = %+v after the failed step, want %+v", i, *g.Kinematics(), before[i])
		}
	}

	// The engine refuses to continue once it has failed.
	if err := e.Step(1e7); !errors.Is(err, errors.ErrorTypeDegenerateGeometry) {
		t.Errorf("Step() after failure = %v, want degenerate_geometry", err)
	}
	if e.Err() == nil {
		t.Error("Err() = nil after failure")
	}
}

func TestDegenerateSkipPolicy(t *testing.T) {
	a := pointGalaxy(t, 1e8, r3.Vec{})
	b := pointGalaxy(t, 1e8, r3.Vec{})
	c := pointGalaxy(t, 1e8, r3.Vec{Y: 1e5})

	e := newEngine(t, newUniverse(t, a, b, c), WithForceModel(physics.NewNewtonian(physics.DegenerateSkip)))
	if err := e.Simulate(context.Background(), 1e7, 1); err != nil {
		t.Fatalf("Simulate() error = %v", err)
	}

	// a and b feel only c, identically.
	if a.Position() != b.Position() {
		t.Errorf("coincident galaxies diverged: %v vs %v", a.Position(), b.Position())
	}
	if a.Position().Y <= 0 {
		t.Errorf("a should move towards c, got %v", a.Position())
	}
	for _, g := range []*galaxy.Galaxy{a, b, c} {
		if !g.Kinematics().Finite() {
			t.Errorf("non-finite state %+v", *g.Kinematics())
		}
	}
}

type blowUp struct{}

func (blowUp) Accumulate(bodies []physics.Body, acc []r3.Vec) error {
	acc[0] = r3.Vec{X: math.MaxFloat64}
	return nil
}

func TestNonFiniteIntegrationStopsRun(t *testing.T) {
	u := generatedUniverse(t, 2, 2)
	before := snapshot(u)

	e := newEngine(t, u, WithAccumulator(blowUp{}))
	err := e.Simulate(context.Background(), 1e7, 3)
	if !errors.Is(err, errors.ErrorTypeDegenerateGeometry) {
		t.Fatalf("Simulate() error = %v, want degenerate_geometry", err)
	}

	for i, g := range u.Galaxies() {
		if g.Position() != before[i].Position || g.Velocity() != before[i].Velocity {
			t.Errorf("galaxy %d absorbed a non-finite update", i)
		}
	}
}

type failingAccumulator struct{}

func (failingAccumulator) Accumulate([]physics.Body, []r3.Vec) error {
	return stderrors.New("tree build failed")
}

func TestAccumulatorErrorIsDegenerate(t *testing.T) {
	e := newEngine(t, generatedUniverse(t, 2, 2), WithAccumulator(failingAccumulator{}))

	err := e.Step(1e7)
	if !errors.Is(err, errors.ErrorTypeDegenerateGeometry) {
		t.Errorf("Step() error = %v, want degenerate_geometry", err)
	}
}

func TestSimulateHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	e := newEngine(t, generatedUniverse(t, 4, 3))
	err := e.Simulate(ctx, 1e7, 10)
	if !stderrors.Is(err, context.Canceled) {
		t.Errorf("Simulate() error = %v, want context.Canceled", err)
	}
	if e.StepsTaken() != 0 {
		t.Errorf("StepsTaken() = %d, want 0", e.StepsTaken())
	}
}

type recordingModel struct {
	pairs []string
}

func (m *recordingModel) Force(a, b physics.Body) (r3.Vec, error) {
	m.pairs = append(m.pairs, fmt.Sprintf("%g-%g", a.Mass(), b.Mass()))
	return r3.Vec{}, nil
}

func TestPairwiseVisitsEachPairOnceInOrder(t *testing.T) {
	u := newUniverse(t,
		pointGalaxy(t, 1, r3.Vec{X: 1}),
		pointGalaxy(t, 2, r3.Vec{X: 2}),
		pointGalaxy(t, 3, r3.Vec{X: 3}),
		pointGalaxy(t, 4, r3.Vec{X: 4}),
	)
	model := &recordingModel{}

	e := newEngine(t, u, WithForceModel(model))
	if err := e.Simulate(context.Background(), 1, 2); err != nil {
		t.Fatalf("Simulate() error = %v", err)
	}

	step := []string{"1-2", "1-3", "1-4", "2-3", "2-4", "3-4"}
	want := append(append([]string{}, step...), step...)
	if !reflect.DeepEqual(model.pairs, want) {
		t.Errorf("pairs = %v, want %v", model.pairs, want)
	}
}

func TestNewEngineRequiresUniverse(t *testing.T) {
	if _, err := NewEngine(nil); !errors.Is(err, errors.ErrorTypeValidation) {
		t.Errorf("NewEngine(nil) error = %v, want validation", err)
	}
}

func BenchmarkPairwiseAccumulate(b *testing.B) {
	for _, n := range []int{10, 100, 500} {
		b.Run(fmt.Sprintf("Galaxies-%d", n), func(b *testing.B) {
			u := generatedUniverse(b, 1, n)
			e := newEngine(b, u)

			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if err := e.Step(1e7); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
