// Package universe holds the ordered galaxy population a simulation runs
// over, plus the read-only views reporting and plotting consume.
package universe

import (
	"math"

	"universe-sim/internal/galaxy"
	"universe-sim/internal/shared/errors"

	"gonum.org/v1/gonum/spatial/r3"
)

// Universe is a fixed-order collection of galaxies. The order is the
// force-accumulation order for every step of a run.
type Universe struct {
	galaxies []*galaxy.Galaxy
}

func New(galaxies []*galaxy.Galaxy) (*Universe, error) {
	for i, g := range galaxies {
		if g == nil {
			return nil, errors.Validationf("galaxy %d is nil", i)
		}
	}
	return &Universe{galaxies: galaxies}, nil
}

func (u *Universe) Len() int { return len(u.galaxies) }

func (u *Universe) Galaxy(i int) *galaxy.Galaxy { return u.galaxies[i] }

// Galaxies returns the galaxies in iteration order. The slice is shared.
func (u *Universe) Galaxies() []*galaxy.Galaxy { return u.galaxies }

// MassRange is the closed interval of galaxy masses in a universe.
type MassRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

func (r MassRange) Width() float64 { return r.Max - r.Min }

// Normalize maps mass onto [0, 1] across the range. A zero-width range
// cannot be normalized and yields a range_underflow error.
func (r MassRange) Normalize(mass float64) (float64, error) {
	width := r.Width()
	if width == 0 {
		return 0, errors.RangeUnderflowf("mass range [%g, %g] has zero width", r.Min, r.Max)
	}
	return (mass - r.Min) / width, nil
}

func (u *Universe) MassRange() (MassRange, error) {
	if len(u.galaxies) == 0 {
		return MassRange{}, errors.Validation("mass range of an empty universe is undefined")
	}

	r := MassRange{Min: math.Inf(1), Max: math.Inf(-1)}
	for _, g := range u.galaxies {
		r.Min = math.Min(r.Min, g.Mass())
		r.Max = math.Max(r.Max, g.Mass())
	}
	return r, nil
}

// Point is a galaxy projected onto the x-y plane.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (u *Universe) Points() []Point {
	points := make([]Point, len(u.galaxies))
	for i, g := range u.galaxies {
		p := g.Position()
		points[i] = Point{X: p.X, Y: p.Y}
	}
	return points
}

// TotalMomentum is Σ m·v. With internal forces only it stays at zero for a
// universe that starts at rest.
func (u *Universe) TotalMomentum() r3.Vec {
	var total r3.Vec
	for _, g := range u.galaxies {
		total = r3.Add(total, r3.Scale(g.Mass(), g.Velocity()))
	}
	return total
}

// KineticEnergy is Σ ½·m·|v|².
func (u *Universe) KineticEnergy() float64 {
	var total float64
	for _, g := range u.galaxies {
		total += 0.5 * g.Mass() * r3.Norm2(g.Velocity())
	}
	return total
}

// GalaxySummary is the per-galaxy record handed to console reporting.
type GalaxySummary struct {
	Index         int     `json:"index"`
	Position      r3.Vec  `json:"position"`
	Mass          float64 `json:"mass"`
	StarCount     int     `json:"star_count"`
	BlackHoleMass float64 `json:"black_hole_mass"`
}

// Summary describes the first min(limit, Len()) galaxies.
func (u *Universe) Summary(limit int) []GalaxySummary {
	n := min(max(limit, 0), len(u.galaxies))

	summaries := make([]GalaxySummary, n)
	for i := 0; i < n; i++ {
		g := u.galaxies[i]
		summaries[i] = GalaxySummary{
			Index:         i,
			Position:      g.Position(),
			Mass:          g.Mass(),
			StarCount:     g.StarCount(),
			BlackHoleMass: g.BlackHole().Mass(),
		}
	}
	return summaries
}
