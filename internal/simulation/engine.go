// Package simulation advances a universe under mutual gravity. Each step
// resets accelerations, accumulates pairwise forces and integrates with
// explicit Euler.
package simulation

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"universe-sim/internal/physics"
	"universe-sim/internal/shared/errors"
	"universe-sim/internal/universe"

	"gonum.org/v1/gonum/spatial/r3"
)

type Option func(*Engine)

func WithAccumulator(a Accumulator) Option {
	return func(e *Engine) { e.accumulator = a }
}

// WithForceModel uses the pairwise accumulator over model.
func WithForceModel(model physics.ForceModel) Option {
	return func(e *Engine) { e.accumulator = NewPairwise(model) }
}

func WithIntegrator(i physics.Integrator) Option {
	return func(e *Engine) { e.integrator = i }
}

func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// WithProgressEvery logs progress at debug level every n steps; n <= 0
// disables it.
func WithProgressEvery(n int) Option {
	return func(e *Engine) { e.progressEvery = n }
}

// Engine owns the universe's kinematic state for the duration of a run.
// It is not safe for concurrent use.
type Engine struct {
	universe      *universe.Universe
	accumulator   Accumulator
	integrator    physics.Integrator
	logger        *slog.Logger
	progressEvery int

	bodies []physics.Body
	acc    []r3.Vec
	next   []physics.Kinematics

	stepsTaken int
	elapsed    float64
	failure    error
}

func NewEngine(u *universe.Universe, opts ...Option) (*Engine, error) {
	if u == nil {
		return nil, errors.Validation("universe is required")
	}

	e := &Engine{
		universe:    u,
		accumulator: NewPairwise(physics.NewNewtonian(physics.DegenerateFail)),
		integrator:  physics.Euler{},
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.With("component", "simulation_engine")

	n := u.Len()
	e.bodies = make([]physics.Body, n)
	for i, g := range u.Galaxies() {
		e.bodies[i] = g
	}
	e.acc = make([]r3.Vec, n)
	e.next = make([]physics.Kinematics, n)

	return e, nil
}

func (e *Engine) Universe() *universe.Universe { return e.universe }

// StepsTaken counts completed steps across every Simulate call.
func (e *Engine) StepsTaken() int { return e.stepsTaken }

// ElapsedTime is the simulated time covered so far, in time-step units.
func (e *Engine) ElapsedTime() float64 { return e.elapsed }

// Err returns the fault that stopped the engine, if any.
func (e *Engine) Err() error { return e.failure }

// Simulate runs exactly steps steps of size timeStep, continuing from the
// current state. ctx is checked between steps only.
func (e *Engine) Simulate(ctx context.Context, timeStep float64, steps int) error {
	logger := e.logger.With("operation", "simulate", "time_step", timeStep, "steps", steps)

	if err := validateTimeStep(timeStep); err != nil {
		return err
	}
	if steps < 0 {
		return errors.Validationf("steps must not be negative, got %d", steps)
	}

	logger.Info("Starting simulation", "galaxies", e.universe.Len(), "steps_taken", e.stepsTaken)
	start := time.Now()

	for step := 0; step < steps; step++ {
		if err := ctx.Err(); err != nil {
			logger.Warn("Simulation cancelled", "completed_steps", step)
			return fmt.Errorf("simulation cancelled after %d of %d steps: %w", step, steps, err)
		}

		if err := e.step(timeStep); err != nil {
			logger.Error("Simulation step failed", "step", e.stepsTaken+1, "error", err)
			return err
		}

		if e.progressEvery > 0 && (step+1)%e.progressEvery == 0 {
			logger.Debug("Simulation progress", "completed_steps", step+1)
		}
	}

	logger.Info("Simulation completed",
		"steps_taken", e.stepsTaken,
		"duration", time.Since(start),
	)
	return nil
}

// Step advances the universe by a single step.
func (e *Engine) Step(timeStep float64) error {
	if err := validateTimeStep(timeStep); err != nil {
		return err
	}
	return e.step(timeStep)
}

func (e *Engine) step(dt float64) error {
	if e.failure != nil {
		return fmt.Errorf("engine stopped after step %d: %w", e.stepsTaken, e.failure)
	}

	galaxies := e.universe.Galaxies()

	for i := range e.acc {
		e.acc[i] = r3.Vec{}
	}

	if err := e.accumulator.Accumulate(e.bodies, e.acc); err != nil {
		return e.fail(fmt.Errorf("step %d: %w", e.stepsTaken+1, err))
	}

	// Integrate into scratch state so a non-finite result never reaches
	// the universe.
	for i, g := range galaxies {
		next := *g.Kinematics()
		next.Acceleration = e.acc[i]
		e.integrator.Integrate(&next, dt)
		if !next.Finite() {
			return e.fail(errors.DegenerateGeometryf("step %d: galaxy %d kinematics are no longer finite", e.stepsTaken+1, i))
		}
		e.next[i] = next
	}

	for i, g := range galaxies {
		*g.Kinematics() = e.next[i]
	}

	e.stepsTaken++
	e.elapsed += dt
	return nil
}

func (e *Engine) fail(err error) error {
	if !errors.Is(err, errors.ErrorTypeDegenerateGeometry) {
		err = errors.WrapDegenerateGeometry("force accumulation failed", err)
	}
	e.failure = err
	return err
}

func validateTimeStep(dt float64) error {
	if !(dt > 0) || math.IsInf(dt, 0) {
		return errors.Validationf("time step must be a positive finite number, got %g", dt)
	}
	return nil
}
