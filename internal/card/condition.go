package card

import (
	"fmt"
	"slices"
	"time"
)

// Window is a named time-of-day window in local time.
type Window string

const (
	WindowMorning   Window = "morning"   // 06:00-12:00
	WindowAfternoon Window = "afternoon" // 12:00-18:00
	WindowEvening   Window = "evening"   // 18:00-22:00
)

var Windows = []Window{WindowMorning, WindowAfternoon, WindowEvening}

// CurrentWindow returns the window containing t, or "" outside all three.
func CurrentWindow(t time.Time) Window {
	switch h := t.Hour(); {
	case h >= 6 && h < 12:
		return WindowMorning
	case h >= 12 && h < 18:
		return WindowAfternoon
	case h >= 18 && h < 22:
		return WindowEvening
	default:
		return ""
	}
}

// Conditions is the typed predicate set a card may declare. Each field is
// optional; a nil Conditions means the card is always eligible (cooldown
// and energy cost permitting).
//
// Expr is an optional CEL expression for conditions the fixed fields
// cannot express (mostly on generated cards); see Evaluator.
type Conditions struct {
	MinEnergyPct *float64 `json:"min_energy_pct,omitempty"`
	TimeOfDay    []Window `json:"time_of_day,omitempty"`
	MinLevel     *int     `json:"min_level,omitempty"`
	Expr         string   `json:"expr,omitempty"`
}

func (c Conditions) Validate() error {
	if c.MinEnergyPct != nil && (*c.MinEnergyPct < 0 || *c.MinEnergyPct > 100) {
		return fmt.Errorf("min_energy_pct must be in [0,100]")
	}
	for _, w := range c.TimeOfDay {
		if !slices.Contains(Windows, w) {
			return fmt.Errorf("unknown time-of-day window: %q", w)
		}
	}
	if c.MinLevel != nil && *c.MinLevel < 1 {
		return fmt.Errorf("min_level must be >= 1")
	}
	return nil
}

// ConditionKind names a condition for ineligibility reporting.
type ConditionKind string

const (
	CondEnergyPct ConditionKind = "min_energy_pct"
	CondTimeOfDay ConditionKind = "time_of_day"
	CondMinLevel  ConditionKind = "min_level"
	CondExpr      ConditionKind = "expr"
)
