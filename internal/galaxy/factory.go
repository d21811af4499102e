package galaxy

import (
	"log/slog"
	"math"

	"universe-sim/internal/physics"
	"universe-sim/internal/shared/errors"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/spatial/r3"
)

// GenerationParams bounds every sampled quantity. Star counts are drawn from
// [MinStars, MaxStars); every real-valued range is [min, max).
type GenerationParams struct {
	UniverseRadius   float64
	BlackHoleMassMin float64
	BlackHoleMassMax float64
	MinStars         int
	MaxStars         int
	StarMassMin      float64
	StarMassMax      float64
	StarDistanceMin  float64
	StarDistanceMax  float64
}

func DefaultGenerationParams() GenerationParams {
	return GenerationParams{
		UniverseRadius:   1e6,
		BlackHoleMassMin: 1e6,
		BlackHoleMassMax: 1e10,
		MinStars:         1000,
		MaxStars:         100000,
		StarMassMin:      0.8,
		StarMassMax:      50,
		StarDistanceMin:  100,
		StarDistanceMax:  100000,
	}
}

func (p GenerationParams) Validate() error {
	if !(p.UniverseRadius > 0) {
		return errors.Validationf("universe radius must be positive, got %g", p.UniverseRadius)
	}
	if err := positiveRange("black hole mass", p.BlackHoleMassMin, p.BlackHoleMassMax); err != nil {
		return err
	}
	if err := positiveRange("star mass", p.StarMassMin, p.StarMassMax); err != nil {
		return err
	}
	if err := positiveRange("star distance", p.StarDistanceMin, p.StarDistanceMax); err != nil {
		return err
	}
	if p.MinStars < 0 || p.MaxStars <= p.MinStars {
		return errors.Validationf("star count range [%d, %d) is empty or negative", p.MinStars, p.MaxStars)
	}
	return nil
}

func positiveRange(name string, lo, hi float64) error {
	if !(lo > 0) || !(hi > 0) {
		return errors.Validationf("%s bounds must be positive, got [%g, %g]", name, lo, hi)
	}
	if math.IsInf(hi, 0) || lo > hi {
		return errors.Validationf("%s range [%g, %g] is invalid", name, lo, hi)
	}
	return nil
}

// Factory builds galaxies from an injected random source, so a fixed seed
// reproduces the same universe.
type Factory struct {
	rng    *rand.Rand
	params GenerationParams
	logger *slog.Logger
}

func NewFactory(rng *rand.Rand, params GenerationParams, logger *slog.Logger) (*Factory, error) {
	if rng == nil {
		return nil, errors.Validation("random source is required")
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}

	return &Factory{
		rng:    rng,
		params: params,
		logger: logger.With("component", "galaxy_factory"),
	}, nil
}

// NewSeededFactory is NewFactory over a PCG source seeded with seed.
func NewSeededFactory(seed uint64, params GenerationParams, logger *slog.Logger) (*Factory, error) {
	return NewFactory(rand.New(rand.NewSource(seed)), params, logger)
}

// GenerateUniverse returns galaxyCount galaxies placed on the surface of a
// sphere of radius UniverseRadius, at rest.
func (f *Factory) GenerateUniverse(galaxyCount int) ([]*Galaxy, error) {
	logger := f.logger.With("operation", "generate_universe", "galaxy_count", galaxyCount)

	if galaxyCount <= 0 {
		return nil, errors.Validationf("galaxy count must be positive, got %d", galaxyCount)
	}

	logger.Debug("Generating galaxies")

	galaxies := make([]*Galaxy, 0, galaxyCount)
	totalStars := 0
	for i := 0; i < galaxyCount; i++ {
		g, err := f.generateGalaxy()
		if err != nil {
			logger.Error("Failed to generate galaxy", "index", i, "error", err)
			return nil, err
		}
		totalStars += g.StarCount()
		galaxies = append(galaxies, g)
	}

	logger.Info("Galaxies generated", "total_stars", totalStars)
	return galaxies, nil
}

func (f *Factory) generateGalaxy() (*Galaxy, error) {
	p := f.params

	blackHole, err := NewBlackHole(f.uniform(p.BlackHoleMassMin, p.BlackHoleMassMax))
	if err != nil {
		return nil, err
	}

	starCount := p.MinStars + f.rng.Intn(p.MaxStars-p.MinStars)
	position := f.onSphere(p.UniverseRadius)

	stars := make([]Star, starCount)
	for i := range stars {
		stars[i], err = f.generateStar()
		if err != nil {
			return nil, err
		}
	}

	return New(blackHole, stars, position)
}

func (f *Factory) generateStar() (Star, error) {
	p := f.params

	typ := starTypes[f.rng.Intn(len(starTypes))]
	mass := f.uniform(p.StarMassMin, p.StarMassMax)
	distance := f.uniform(p.StarDistanceMin, p.StarDistanceMax)

	return NewStar(typ, mass, distance, f.onSphere(distance))
}

func (f *Factory) uniform(lo, hi float64) float64 {
	return lo + f.rng.Float64()*(hi-lo)
}

// onSphere samples the surface of the sphere, not its volume:
// phi = acos(2u-1) makes the polar angle area-uniform.
func (f *Factory) onSphere(radius float64) r3.Vec {
	theta := f.rng.Float64() * 2 * math.Pi
	phi := math.Acos(2*f.rng.Float64() - 1)
	return physics.OnSphere(radius, theta, phi)
}
