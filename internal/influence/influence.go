// Package influence turns orbital distance into a reference's influence
// strength and groups strengths into display zones.
package influence

import (
	"fmt"
	"math"
	"sort"

	"github.com/refboard/refboard/internal/geom"
)

// Zone thresholds on normalized distance.
const (
	HighThreshold   = 0.33
	MediumThreshold = 0.66
	LowThreshold    = 1.0
)

// Zone is a discrete influence band.
type Zone int

const (
	ZoneHigh Zone = iota
	ZoneMedium
	ZoneLow
)

func (z Zone) String() string {
	switch z {
	case ZoneHigh:
		return "high"
	case ZoneMedium:
		return "medium"
	case ZoneLow:
		return "low"
	default:
		return "unknown"
	}
}

// MarshalText lets zones appear as names in JSON.
func (z Zone) MarshalText() ([]byte, error) {
	return []byte(z.String()), nil
}

// UnmarshalText accepts the names MarshalText produces.
func (z *Zone) UnmarshalText(text []byte) error {
	switch string(text) {
	case "high":
		*z = ZoneHigh
	case "medium":
		*z = ZoneMedium
	case "low":
		*z = ZoneLow
	default:
		return fmt.Errorf("unknown zone %q", text)
	}
	return nil
}

// StrengthFromDistance maps distance 0 (center) to 100 and 1 (edge) to 0.
// Out-of-range distances are clamped first.
func StrengthFromDistance(distance float64) int {
	d := geom.Clamp(distance, 0, 1)
	s := int(math.Round((1 - d) * 100))
	return int(geom.Clamp(float64(s), 0, 100))
}

// ZoneFromDistance classifies a distance against the fixed thresholds.
func ZoneFromDistance(distance float64) Zone {
	switch {
	case distance <= HighThreshold:
		return ZoneHigh
	case distance <= MediumThreshold:
		return ZoneMedium
	default:
		return ZoneLow
	}
}

// ZoneFromStrength classifies a strength with the same bands as distance.
func ZoneFromStrength(strength int) Zone {
	return ZoneFromDistance(1 - float64(strength)/100)
}

// Source says which input is authoritative for a reference's strength.
type Source string

const (
	// SourceDerived means strength follows the node's orbital distance.
	SourceDerived Source = "derived"
	// SourceManual means a value typed into the detail panel wins.
	SourceManual Source = "manual"
)

// Strength is a tagged strength value. Value is only meaningful for
// SourceManual; derived strengths are recomputed from distance on demand
// and never cached here.
type Strength struct {
	Source Source `json:"source"`
	Value  int    `json:"value,omitempty"`
}

// Derived returns a strength that follows position.
func Derived() Strength {
	return Strength{Source: SourceDerived}
}

// Manual returns an override, clamped to [0,100].
func Manual(value int) Strength {
	return Strength{Source: SourceManual, Value: int(geom.Clamp(float64(value), 0, 100))}
}

// IsManual reports whether the value is an override.
func (s Strength) IsManual() bool {
	return s.Source == SourceManual
}

// Effective resolves the strength for a node at the given distance.
func (s Strength) Effective(distance float64) int {
	if s.IsManual() {
		return s.Value
	}
	return StrengthFromDistance(distance)
}

// Ranked is one entry of a Rank result.
type Ranked struct {
	ID       string `json:"id"`
	Strength int    `json:"strength"`
	Zone     Zone   `json:"zone"`
}

// Rank orders entries by strength, strongest first. Equal strengths are
// broken by zone (closer band first, which only differs for manual
// overrides) and then by id so the order is stable.
func Rank(entries []Ranked) []Ranked {
	out := make([]Ranked, len(entries))
	copy(out, entries)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Strength != out[j].Strength {
			return out[i].Strength > out[j].Strength
		}
		if out[i].Zone != out[j].Zone {
			return out[i].Zone < out[j].Zone
		}
		return out[i].ID < out[j].ID
	})
	return out
}
