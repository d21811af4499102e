package galaxy

import (
	"io"
	"log/slog"
	"math"
	"testing"

	"universe-sim/internal/shared/errors"

	"gonum.org/v1/gonum/spatial/r3"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

// smallParams keeps the default ranges but shrinks star counts so tests
// stay fast.
func smallParams() GenerationParams {
	p := DefaultGenerationParams()
	p.MinStars = 20
	p.MaxStars = 200
	return p
}

func TestGenerateUniverseRanges(t *testing.T) {
	factory, err := NewSeededFactory(42, smallParams(), discard)
	if err != nil {
		t.Fatalf("NewSeededFactory() error = %v", err)
	}

	galaxies, err := factory.GenerateUniverse(25)
	if err != nil {
		t.Fatalf("GenerateUniverse() error = %v", err)
	}
	if len(galaxies) != 25 {
		t.Fatalf("got %d galaxies, want 25", len(galaxies))
	}

	for i, g := range galaxies {
		bh := g.BlackHole().Mass()
		if bh < 1e6 || bh > 1e10 {
			t.Errorf("galaxy %d: black hole mass %g out of [1e6, 1e10]", i, bh)
		}
		if n := g.StarCount(); n < 20 || n >= 200 {
			t.Errorf("galaxy %d: star count %d out of [20, 200)", i, n)
		}
		if r := r3.Norm(g.Position()); math.Abs(r-1e6) > 1e-6 {
			t.Errorf("galaxy %d: |position| = %v, want 1e6 (sphere surface)", i, r)
		}
		if g.Velocity() != (r3.Vec{}) || g.Acceleration() != (r3.Vec{}) {
			t.Errorf("galaxy %d: should start at rest", i)
		}

		sum := bh
		for j, s := range g.Stars() {
			if s.Mass() < 0.8 || s.Mass() > 50 {
				t.Errorf("galaxy %d star %d: mass %g out of [0.8, 50]", i, j, s.Mass())
			}
			d := s.DistanceFromCenter()
			if d < 100 || d > 100000 {
				t.Errorf("galaxy %d star %d: distance %g out of [100, 100000]", i, j, d)
			}
			if got := r3.Norm(s.Position()); math.Abs(got-d) > 1e-9*d {
				t.Errorf("galaxy %d star %d: |position| = %v, want %v", i, j, got, d)
			}
			if s.Type() > WhiteDwarf {
				t.Errorf("galaxy %d star %d: unknown type %v", i, j, s.Type())
			}
			sum += s.Mass()
		}

		if g.Mass() != sum {
			t.Errorf("galaxy %d: mass %v, want black hole + stars = %v", i, g.Mass(), sum)
		}
	}
}

func TestGenerateUniverseIsReproducible(t *testing.T) {
	generate := func(seed uint64) []*Galaxy {
		t.Helper()
		factory, err := NewSeededFactory(seed, smallParams(), discard)
		if err != nil {
			t.Fatalf("NewSeededFactory() error = %v", err)
		}
		galaxies, err := factory.GenerateUniverse(5)
		if err != nil {
			t.Fatalf("GenerateUniverse() error = %v", err)
		}
		return galaxies
	}

	a, b := generate(7), generate(7)
	for i := range a {
		if a[i].Mass() != b[i].Mass() || a[i].Position() != b[i].Position() || a[i].StarCount() != b[i].StarCount() {
			t.Fatalf("galaxy %d differs between runs with the same seed", i)
		}
	}

	c := generate(8)
	if a[0].Mass() == c[0].Mass() && a[0].Position() == c[0].Position() {
		t.Error("different seeds produced identical first galaxies")
	}
}

func TestGenerateUniverseUsesAllStarTypes(t *testing.T) {
	factory, err := NewSeededFactory(1, smallParams(), discard)
	if err != nil {
		t.Fatalf("NewSeededFactory() error = %v", err)
	}
	galaxies, err := factory.GenerateUniverse(3)
	if err != nil {
		t.Fatalf("GenerateUniverse() error = %v", err)
	}

	seen := map[StarType]int{}
	for _, g := range galaxies {
		for _, s := range g.Stars() {
			seen[s.Type()]++
		}
	}
	for _, typ := range starTypes {
		if seen[typ] == 0 {
			t.Errorf("no %s generated across %d galaxies", typ, len(galaxies))
		}
	}
}

func TestGenerateUniverseInvalidCount(t *testing.T) {
	factory, err := NewSeededFactory(1, smallParams(), discard)
	if err != nil {
		t.Fatalf("NewSeededFactory() error = %v", err)
	}

	for _, n := range []int{0, -3} {
		if _, err := factory.GenerateUniverse(n); !errors.Is(err, errors.ErrorTypeValidation) {
			t.Errorf("GenerateUniverse(%d) error = %v, want validation", n, err)
		}
	}
}

func TestNewFactoryValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*GenerationParams)
	}{
		{"zero radius", func(p *GenerationParams) { p.UniverseRadius = 0 }},
		{"negative black hole min", func(p *GenerationParams) { p.BlackHoleMassMin = -1 }},
		{"inverted black hole range", func(p *GenerationParams) { p.BlackHoleMassMin = 1e11 }},
		{"zero star mass", func(p *GenerationParams) { p.StarMassMin = 0 }},
		{"NaN star distance", func(p *GenerationParams) { p.StarDistanceMax = math.NaN() }},
		{"empty star count range", func(p *GenerationParams) { p.MaxStars = p.MinStars }},
		{"negative star count", func(p *GenerationParams) { p.MinStars = -5 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultGenerationParams()
			tt.mutate(&p)
			if _, err := NewSeededFactory(1, p, discard); !errors.Is(err, errors.ErrorTypeValidation) {
				t.Errorf("NewSeededFactory() error = %v, want validation", err)
			}
		})
	}

	if _, err := NewFactory(nil, DefaultGenerationParams(), discard); err == nil {
		t.Error("nil random source should be rejected")
	}
}

func TestNewGalaxyMass(t *testing.T) {
	bh, err := NewBlackHole(1e8)
	if err != nil {
		t.Fatalf("NewBlackHole() error = %v", err)
	}
	s1, _ := NewStar(RedGiant, 2.5, 100, r3.Vec{X: 100})
	s2, _ := NewStar(WhiteDwarf, 0.8, 200, r3.Vec{Y: -200})

	g, err := New(bh, []Star{s1, s2}, r3.Vec{Z: 5})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if g.Mass() != 1e8+2.5+0.8 {
		t.Errorf("Mass() = %v, want %v", g.Mass(), 1e8+2.5+0.8)
	}

	// Moving the galaxy never changes its mass or composition.
	g.Kinematics().Position = r3.Vec{X: 1e6}
	g.SetVelocity(r3.Vec{X: 3})
	if g.Mass() != 1e8+2.5+0.8 || g.StarCount() != 2 {
		t.Error("kinematic updates changed static attributes")
	}

	stars := g.Stars()
	stars[0] = Star{}
	if g.Stars()[0].Mass() != 2.5 {
		t.Error("Stars() must return a copy")
	}
}

func TestConstructorsRejectNonPositiveMass(t *testing.T) {
	if _, err := NewBlackHole(0); err == nil {
		t.Error("zero black hole mass accepted")
	}
	if _, err := NewBlackHole(math.NaN()); err == nil {
		t.Error("NaN black hole mass accepted")
	}
	if _, err := NewStar(BlueGiant, -1, 100, r3.Vec{}); err == nil {
		t.Error("negative star mass accepted")
	}
	if _, err := New(BlackHole{}, nil, r3.Vec{}); err == nil {
		t.Error("galaxy without black hole mass accepted")
	}
	bh, _ := NewBlackHole(1)
	if _, err := New(bh, nil, r3.Vec{X: math.Inf(1)}); err == nil {
		t.Error("infinite galaxy position accepted")
	}
}

func TestStarTypeString(t *testing.T) {
	if BlueGiant.String() != "Blue Giant" || YellowDwarf.String() != "Yellow Dwarf" {
		t.Error("unexpected star type names")
	}
	if got := StarType(9).String(); got != "StarType(9)" {
		t.Errorf("unknown type String() = %q", got)
	}
	text, _ := RedGiant.MarshalText()
	if string(text) != "Red Giant" {
		t.Errorf("MarshalText() = %q", text)
	}
}
