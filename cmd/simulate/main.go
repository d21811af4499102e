package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"universe-sim/internal/auth"
	"universe-sim/internal/report"
	"universe-sim/internal/run"
	"universe-sim/internal/shared/config"
	"universe-sim/internal/shared/logger"
)

func main() {
	if err := config.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize configuration: %v\n", err)
		os.Exit(1)
	}
	logger.Init()

	if err := execute(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "simulate: %v\n", err)
		os.Exit(1)
	}
}

func execute(args []string, out io.Writer) error {
	cfg := config.GlobalConfig
	req := run.DefaultRequest(cfg.Simulation)

	fs := flag.NewFlagSet("simulate", flag.ContinueOnError)
	fs.IntVar(&req.GalaxyCount, "galaxies", req.GalaxyCount, "number of galaxies to generate")
	fs.Float64Var(&req.TimeStep, "dt", req.TimeStep, "time step in simulation units (1 unit is about 10 million years)")
	fs.IntVar(&req.Steps, "steps", req.Steps, "number of steps to simulate")
	fs.StringVar(&req.DegeneratePolicy, "degenerate", req.DegeneratePolicy, "coincident-body policy: fail or skip")
	seed := fs.Uint64("seed", cfg.Simulation.Seed, "random seed (0 draws one from the clock)")
	token := fs.String("token", "", "print an operator token for `subject` and exit")
	role := fs.String("role", auth.RoleOperator, "role carried by -token")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *token != "" {
		signed, err := auth.GenerateToken(cfg.Auth.JWTSecret, *token, *role, cfg.Auth.TokenExpiration)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(out, signed)
		return err
	}

	if *seed != 0 {
		req.Seed = seed
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := run.OptionsFromConfig(cfg.Simulation)
	// Flags replace the server caps for local runs.
	opts.Limits = run.Limits{}

	service := run.NewService(run.NewMemoryStore(slog.Default()), nil, opts, slog.Default())
	result, err := service.Execute(ctx, req)
	if err != nil {
		return err
	}

	return printRun(out, result.Run)
}

func printRun(out io.Writer, r *run.Run) error {
	if err := report.WriteSummary(out, r.Report.Summary); err != nil {
		return err
	}
	if err := report.WriteTiers(out, r.Report.Tiers); err != nil {
		return err
	}

	m := r.Report.Momentum
	_, err := fmt.Fprintf(out,
		"\nSeed: %d\nTotal stars: %d\nElapsed: %.3E time units over %d steps\nTotal momentum: (%.3E, %.3E, %.3E)\nKinetic energy: %.3E\n",
		r.Seed,
		r.Report.TotalStars,
		r.Report.ElapsedTime, r.Steps,
		m.X, m.Y, m.Z,
		r.Report.KineticEnergy,
	)
	return err
}
