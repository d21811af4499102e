package universe

import (
	"universe-sim/internal/shared/errors"
)

type Tier string

const (
	TierLow  Tier = "low"
	TierMid  Tier = "mid"
	TierHigh Tier = "high"
)

const (
	midThreshold  = 0.33
	highThreshold = 0.66
)

// TierFor buckets a normalized mass.
func TierFor(norm float64) Tier {
	switch {
	case norm < midThreshold:
		return TierLow
	case norm < highThreshold:
		return TierMid
	default:
		return TierHigh
	}
}

// Tiers holds galaxy indices per mass tier, in universe order.
type Tiers struct {
	Range MassRange `json:"range"`
	Low   []int     `json:"low"`
	Mid   []int     `json:"mid"`
	High  []int     `json:"high"`
	// Uniform is set when every galaxy has the same mass and all of them
	// were placed in the low tier.
	Uniform bool `json:"uniform"`
}

// Legend lists the non-empty tiers from low to high.
func (t Tiers) Legend() []Tier {
	var legend []Tier
	if len(t.Low) > 0 {
		legend = append(legend, TierLow)
	}
	if len(t.Mid) > 0 {
		legend = append(legend, TierMid)
	}
	if len(t.High) > 0 {
		legend = append(legend, TierHigh)
	}
	return legend
}

func (t Tiers) Of(tier Tier) []int {
	switch tier {
	case TierLow:
		return t.Low
	case TierMid:
		return t.Mid
	case TierHigh:
		return t.High
	default:
		return nil
	}
}

// MassTiers buckets every galaxy by (mass-min)/(max-min). When all masses
// are equal the whole population lands in the low tier.
func (u *Universe) MassTiers() (Tiers, error) {
	r, err := u.MassRange()
	if err != nil {
		return Tiers{}, err
	}

	tiers := Tiers{Range: r}
	for i, g := range u.galaxies {
		norm, err := r.Normalize(g.Mass())
		if errors.Is(err, errors.ErrorTypeRangeUnderflow) {
			tiers.Uniform = true
			tiers.Low = append(tiers.Low, i)
			continue
		}
		if err != nil {
			return Tiers{}, err
		}

		switch TierFor(norm) {
		case TierLow:
			tiers.Low = append(tiers.Low, i)
		case TierMid:
			tiers.Mid = append(tiers.Mid, i)
		case TierHigh:
			tiers.High = append(tiers.High, i)
		}
	}

	return tiers, nil
}
