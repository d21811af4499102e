package galaxy

import (
	"fmt"
	"slices"

	"universe-sim/internal/physics"
	"universe-sim/internal/shared/errors"

	"gonum.org/v1/gonum/spatial/r3"
)

type StarType uint8

const (
	BlueGiant StarType = iota
	RedGiant
	YellowDwarf
	WhiteDwarf
)

var starTypes = []StarType{BlueGiant, RedGiant, YellowDwarf, WhiteDwarf}

var starTypeNames = map[StarType]string{
	BlueGiant:   "Blue Giant",
	RedGiant:    "Red Giant",
	YellowDwarf: "Yellow Dwarf",
	WhiteDwarf:  "White Dwarf",
}

func (t StarType) String() string {
	if name, ok := starTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("StarType(%d)", uint8(t))
}

func (t StarType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

type BlackHole struct {
	mass float64
}

func NewBlackHole(mass float64) (BlackHole, error) {
	if !(mass > 0) {
		return BlackHole{}, errors.Validationf("black hole mass must be positive, got %g", mass)
	}
	return BlackHole{mass: mass}, nil
}

func (b BlackHole) Mass() float64 { return b.mass }

// Star contributes mass to its galaxy and is never simulated on its own.
type Star struct {
	typ      StarType
	mass     float64
	distance float64
	position r3.Vec
}

func NewStar(typ StarType, mass, distance float64, position r3.Vec) (Star, error) {
	if !(mass > 0) {
		return Star{}, errors.Validationf("star mass must be positive, got %g", mass)
	}
	if !physics.IsFinite(position) {
		return Star{}, errors.Validationf("star position must be finite, got %v", position)
	}
	return Star{typ: typ, mass: mass, distance: distance, position: position}, nil
}

func (s Star) Type() StarType { return s.typ }
func (s Star) Mass() float64  { return s.mass }

// DistanceFromCenter is the sampled radius the star was placed at.
func (s Star) DistanceFromCenter() float64 { return s.distance }

// Position is relative to the galaxy centre.
func (s Star) Position() r3.Vec { return s.position }

// Galaxy is a point mass made of a black hole and its stars. Its
// composition and mass are fixed at construction; only the kinematic state
// changes during a simulation.
type Galaxy struct {
	blackHole  BlackHole
	stars      []Star
	mass       float64
	kinematics physics.Kinematics
}

func New(blackHole BlackHole, stars []Star, position r3.Vec) (*Galaxy, error) {
	if !(blackHole.mass > 0) {
		return nil, errors.Validation("galaxy requires a black hole with positive mass")
	}
	if !physics.IsFinite(position) {
		return nil, errors.Validationf("galaxy position must be finite, got %v", position)
	}

	mass := blackHole.mass
	for _, s := range stars {
		mass += s.mass
	}

	return &Galaxy{
		blackHole:  blackHole,
		stars:      stars,
		mass:       mass,
		kinematics: physics.Kinematics{Position: position},
	}, nil
}

func (g *Galaxy) Mass() float64 { return g.mass }

func (g *Galaxy) BlackHole() BlackHole { return g.blackHole }

func (g *Galaxy) StarCount() int { return len(g.stars) }

// Stars returns a copy of the star population.
func (g *Galaxy) Stars() []Star { return slices.Clone(g.stars) }

func (g *Galaxy) Position() r3.Vec { return g.kinematics.Position }

func (g *Galaxy) Velocity() r3.Vec { return g.kinematics.Velocity }

func (g *Galaxy) Acceleration() r3.Vec { return g.kinematics.Acceleration }

// Kinematics exposes the mutable state to the simulation engine.
func (g *Galaxy) Kinematics() *physics.Kinematics { return &g.kinematics }

// SetVelocity sets the initial velocity before a run starts.
func (g *Galaxy) SetVelocity(v r3.Vec) { g.kinematics.Velocity = v }
