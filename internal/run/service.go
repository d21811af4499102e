package run

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"universe-sim/internal/galaxy"
	"universe-sim/internal/physics"
	"universe-sim/internal/shared/config"
	"universe-sim/internal/shared/errors"
	"universe-sim/internal/simulation"
	"universe-sim/internal/universe"
)

// Limits caps requests. Zero values mean no cap.
type Limits struct {
	MaxGalaxies int
	MaxSteps    int
	// MaxTotalStars bounds galaxy_count times the largest star count a
	// galaxy can draw, which is what a run may hold in memory.
	MaxTotalStars int64
}

type Options struct {
	Params        galaxy.GenerationParams
	Limits        Limits
	SummaryLimit  int
	ProgressEvery int
	// DefaultSeed is used for requests without a seed; zero draws a fresh
	// seed per run.
	DefaultSeed uint64
}

// OptionsFromConfig builds service options from the simulation settings.
func OptionsFromConfig(cfg config.SimulationConfig) Options {
	params := galaxy.DefaultGenerationParams()
	params.MinStars = cfg.MinStars
	params.MaxStars = cfg.MaxStars

	return Options{
		Params: params,
		Limits: Limits{
			MaxGalaxies:   cfg.MaxGalaxies,
			MaxSteps:      cfg.MaxSteps,
			MaxTotalStars: cfg.MaxTotalStars,
		},
		SummaryLimit:  cfg.SummaryLimit,
		ProgressEvery: cfg.ProgressEvery,
		DefaultSeed:   cfg.Seed,
	}
}

// DefaultRequest is the run described by the simulation settings.
func DefaultRequest(cfg config.SimulationConfig) Request {
	return Request{
		GalaxyCount:      cfg.GalaxyCount,
		TimeStep:         cfg.TimeStep,
		Steps:            cfg.Steps,
		DegeneratePolicy: cfg.DegeneratePolicy,
	}
}

type Service struct {
	store  Store
	cache  *Cache
	opts   Options
	logger *slog.Logger
	seeds  func() uint64
}

func NewService(store Store, cache *Cache, opts Options, logger *slog.Logger) *Service {
	logger.Debug("Initializing run service")

	return &Service{
		store:  store,
		cache:  cache,
		opts:   opts,
		logger: logger,
		seeds:  func() uint64 { return uint64(time.Now().UnixNano()) },
	}
}

// Result is a finished simulation with the universe still in memory.
type Result struct {
	Run      *Run
	Universe *universe.Universe
}

// Execute generates a universe and simulates it without persisting
// anything.
func (s *Service) Execute(ctx context.Context, req Request) (*Result, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}

	policy, err := physics.ParseDegeneratePolicy(req.DegeneratePolicy)
	if err != nil {
		return nil, err
	}

	seed := s.seedFor(req)
	logger := s.logger.With(
		"component", "run_service",
		"operation", "execute",
		"galaxy_count", req.GalaxyCount,
		"time_step", req.TimeStep,
		"steps", req.Steps,
		"seed", seed,
	)
	logger.Info("Executing simulation run")

	start := time.Now()

	factory, err := galaxy.NewSeededFactory(seed, s.opts.Params, s.logger)
	if err != nil {
		return nil, err
	}
	galaxies, err := factory.GenerateUniverse(req.GalaxyCount)
	if err != nil {
		return nil, err
	}
	u, err := universe.New(galaxies)
	if err != nil {
		return nil, err
	}

	engine, err := simulation.NewEngine(u,
		simulation.WithForceModel(physics.NewNewtonian(policy)),
		simulation.WithLogger(s.logger),
		simulation.WithProgressEvery(s.opts.ProgressEvery),
	)
	if err != nil {
		return nil, err
	}

	if err := engine.Simulate(ctx, req.TimeStep, req.Steps); err != nil {
		return nil, err
	}

	report, err := s.buildReport(u, engine)
	if err != nil {
		return nil, err
	}

	run := &Run{
		Status:           StatusCompleted,
		GalaxyCount:      req.GalaxyCount,
		TimeStep:         req.TimeStep,
		Steps:            req.Steps,
		Seed:             seed,
		DegeneratePolicy: string(policy),
		DurationMS:       time.Since(start).Milliseconds(),
		Report:           report,
	}

	logger.Info("Simulation run finished", "duration_ms", run.DurationMS, "total_stars", report.TotalStars)
	return &Result{Run: run, Universe: u}, nil
}

// CreateRun executes req and stores the resulting report.
func (s *Service) CreateRun(ctx context.Context, req Request) (*Run, error) {
	logger := s.logger.With("component", "run_service", "operation", "create_run")

	result, err := s.Execute(ctx, req)
	if err != nil {
		return nil, err
	}

	if err := s.store.Save(ctx, result.Run); err != nil {
		logger.Error("Failed to store run", "error", err)
		return nil, errors.WrapInternal("failed to store run", err)
	}

	if err := s.cache.Set(ctx, result.Run); err != nil {
		logger.Warn("Failed to cache run", "run_id", result.Run.ID, "error", err)
	}

	logger.Info("Run created", "run_id", result.Run.ID)
	return result.Run, nil
}

func (s *Service) GetRun(ctx context.Context, id int) (*Run, error) {
	logger := s.logger.With("component", "run_service", "operation", "get_run", "run_id", id)

	cached, err := s.cache.Get(ctx, id)
	if err != nil {
		logger.Warn("Cache lookup failed, falling back to store", "error", err)
	}
	if cached != nil {
		logger.Debug("Run served from cache")
		return cached, nil
	}

	run, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, errors.WrapInternal("failed to load run", err)
	}
	if run == nil {
		return nil, errors.NotFoundf("run %d not found", id)
	}

	if err := s.cache.Set(ctx, run); err != nil {
		logger.Warn("Failed to cache run", "error", err)
	}
	return run, nil
}

func (s *Service) ListRuns(ctx context.Context) ([]RunSummary, error) {
	runs, err := s.store.List(ctx)
	if err != nil {
		return nil, errors.WrapInternal("failed to list runs", err)
	}
	return runs, nil
}

func (s *Service) validate(req Request) error {
	if req.GalaxyCount <= 0 {
		return errors.Validationf("galaxy_count must be positive, got %d", req.GalaxyCount)
	}
	if s.opts.Limits.MaxGalaxies > 0 && req.GalaxyCount > s.opts.Limits.MaxGalaxies {
		return errors.Validationf("galaxy_count %d exceeds the limit of %d", req.GalaxyCount, s.opts.Limits.MaxGalaxies)
	}
	if limit := s.opts.Limits.MaxTotalStars; limit > 0 {
		worst := int64(req.GalaxyCount) * int64(max(s.opts.Params.MaxStars-1, 0))
		if worst > limit {
			return errors.Validationf("galaxy_count %d may generate up to %d stars, above the limit of %d",
				req.GalaxyCount, worst, limit)
		}
	}
	if !(req.TimeStep > 0) || math.IsInf(req.TimeStep, 0) {
		return errors.Validationf("time_step must be a positive finite number, got %g", req.TimeStep)
	}
	if req.Steps < 0 {
		return errors.Validationf("steps must not be negative, got %d", req.Steps)
	}
	if s.opts.Limits.MaxSteps > 0 && req.Steps > s.opts.Limits.MaxSteps {
		return errors.Validationf("steps %d exceeds the limit of %d", req.Steps, s.opts.Limits.MaxSteps)
	}
	return nil
}

func (s *Service) seedFor(req Request) uint64 {
	switch {
	case req.Seed != nil:
		return *req.Seed
	case s.opts.DefaultSeed != 0:
		return s.opts.DefaultSeed
	default:
		return s.seeds()
	}
}

func (s *Service) buildReport(u *universe.Universe, engine *simulation.Engine) (Report, error) {
	tiers, err := u.MassTiers()
	if err != nil {
		return Report{}, fmt.Errorf("failed to bucket galaxy masses: %w", err)
	}

	totalStars := 0
	for _, g := range u.Galaxies() {
		totalStars += g.StarCount()
	}

	return Report{
		TotalStars:    totalStars,
		Summary:       u.Summary(s.opts.SummaryLimit),
		Tiers:         tiers,
		Legend:        tiers.Legend(),
		Points:        u.Points(),
		Momentum:      u.TotalMomentum(),
		KineticEnergy: u.KineticEnergy(),
		ElapsedTime:   engine.ElapsedTime(),
	}, nil
}
