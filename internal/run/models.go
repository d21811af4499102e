package run

import (
	"time"

	"universe-sim/internal/universe"

	"gonum.org/v1/gonum/spatial/r3"
)

type Status string

const (
	StatusCompleted Status = "completed"
)

// Request describes one simulation. A nil Seed picks a fresh one, which is
// reported back on the Run.
type Request struct {
	GalaxyCount      int     `json:"galaxy_count"`
	TimeStep         float64 `json:"time_step"`
	Steps            int     `json:"steps"`
	Seed             *uint64 `json:"seed,omitempty"`
	DegeneratePolicy string  `json:"degenerate_policy,omitempty"`
}

// Run is the stored report of a finished simulation.
type Run struct {
	ID               int       `json:"id"`
	Status           Status    `json:"status"`
	GalaxyCount      int       `json:"galaxy_count"`
	TimeStep         float64   `json:"time_step"`
	Steps            int       `json:"steps"`
	Seed             uint64    `json:"seed,string"`
	DegeneratePolicy string    `json:"degenerate_policy"`
	DurationMS       int64     `json:"duration_ms"`
	CreatedAt        time.Time `json:"created_at"`

	Report Report `json:"report"`
}

// Report is the final-state view handed to reporting and plotting clients.
type Report struct {
	TotalStars    int                      `json:"total_stars"`
	Summary       []universe.GalaxySummary `json:"summary"`
	Tiers         universe.Tiers           `json:"tiers"`
	Legend        []universe.Tier          `json:"legend"`
	Points        []universe.Point         `json:"points"`
	Momentum      r3.Vec                   `json:"momentum"`
	KineticEnergy float64                  `json:"kinetic_energy"`
	ElapsedTime   float64                  `json:"elapsed_time"`
}

type RunSummary struct {
	ID          int       `json:"id"`
	Status      Status    `json:"status"`
	GalaxyCount int       `json:"galaxy_count"`
	Steps       int       `json:"steps"`
	Seed        uint64    `json:"seed,string"`
	CreatedAt   time.Time `json:"created_at"`
}

func (r *Run) Summarize() RunSummary {
	return RunSummary{
		ID:          r.ID,
		Status:      r.Status,
		GalaxyCount: r.GalaxyCount,
		Steps:       r.Steps,
		Seed:        r.Seed,
		CreatedAt:   r.CreatedAt,
	}
}
