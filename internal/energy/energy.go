package energy

import (
	"fmt"
	"time"
)

// InsufficientError is returned by Spend when the pool cannot cover the
// requested amount. Partial spends are never applied.
type InsufficientError struct {
	Need float64
	Have float64
}

func (e *InsufficientError) Error() string {
	return fmt.Sprintf("insufficient energy: need %.1f, have %.1f", e.Need, e.Have)
}

// UsageEntry records a single spend against the pool.
type UsageEntry struct {
	Time     time.Time `json:"time"`
	Amount   float64   `json:"amount"`
	Activity string    `json:"activity"`
}

// DayUsage buckets usage entries by local calendar date (2006-01-02).
type DayUsage struct {
	Date    string       `json:"date"`
	Entries []UsageEntry `json:"entries"`
}

// State is a regenerating resource pool bounded by [0, Maximum].
// It is a value type: Advance, Spend and Restore return a new State and
// never mutate the receiver, so any caller can compute a current reading
// without a background timer.
type State struct {
	Current      float64    `json:"current"`
	Maximum      float64    `json:"maximum"`
	RegenPerHour float64    `json:"regen_per_hour"`
	LastUpdate   time.Time  `json:"last_update"`
	DailyUsage   []DayUsage `json:"daily_usage,omitempty"`
}

// New returns a full pool anchored at now.
func New(maximum, regenPerHour float64, now time.Time) State {
	if maximum < 0 {
		maximum = 0
	}
	if regenPerHour < 0 {
		regenPerHour = 0
	}
	return State{
		Current:      maximum,
		Maximum:      maximum,
		RegenPerHour: regenPerHour,
		LastUpdate:   now,
	}
}

// Advance applies lazy regeneration for the wall-clock time elapsed since
// LastUpdate. Calling it twice with the same now is equivalent to calling
// it once (elapsed collapses to zero). A regen rate of 0 freezes Current.
func Advance(s State, now time.Time) State {
	elapsed := now.Sub(s.LastUpdate).Hours()
	if elapsed <= 0 {
		return s
	}
	gained := elapsed * s.RegenPerHour
	if room := s.Maximum - s.Current; gained > room {
		gained = room
	}
	if gained > 0 {
		s.Current += gained
	}
	s.LastUpdate = now
	return s
}

// Spend removes amount from the pool and logs it under today's usage
// bucket. It fails with *InsufficientError when amount exceeds Current;
// the returned State is then the input unchanged.
func Spend(s State, amount float64, activity string, now time.Time) (State, error) {
	if amount < 0 {
		return s, fmt.Errorf("spend amount must be >= 0, got %.1f", amount)
	}
	if amount > s.Current {
		return s, &InsufficientError{Need: amount, Have: s.Current}
	}
	s.Current -= amount
	s.LastUpdate = now
	s.DailyUsage = logUsage(s.DailyUsage, UsageEntry{Time: now, Amount: amount, Activity: activity})
	return s, nil
}

// Restore adds amount back to the pool, clamped at Maximum.
func Restore(s State, amount float64, now time.Time) State {
	if amount < 0 {
		return s
	}
	s.Current += amount
	if s.Current > s.Maximum {
		s.Current = s.Maximum
	}
	s.LastUpdate = now
	return s
}

// Percent reports Current as a percentage of Maximum.
func (s State) Percent() float64 {
	if s.Maximum <= 0 {
		return 0
	}
	return s.Current / s.Maximum * 100
}

// UsageOn returns the usage bucket for a local date, if any.
func (s State) UsageOn(date string) (DayUsage, bool) {
	for _, d := range s.DailyUsage {
		if d.Date == date {
			return d, true
		}
	}
	return DayUsage{}, false
}

func logUsage(days []DayUsage, e UsageEntry) []DayUsage {
	date := e.Time.Format("2006-01-02")
	for i := range days {
		if days[i].Date == date {
			out := make([]DayUsage, len(days))
			copy(out, days)
			out[i].Entries = append(append([]UsageEntry{}, out[i].Entries...), e)
			return out
		}
	}
	return append(append([]DayUsage{}, days...), DayUsage{Date: date, Entries: []UsageEntry{e}})
}
