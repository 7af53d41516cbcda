package player

import (
	"time"

	"innerlevel/internal/card"
	"innerlevel/internal/energy"
	"innerlevel/internal/progression"
	"innerlevel/internal/quest"
)

// DailyProgress tracks per-day counters, reset when the date rolls over.
type DailyProgress struct {
	Date           string  `json:"date"`
	CardsCompleted int     `json:"cards_completed"`
	XPGained       int     `json:"xp_gained"`
	EnergyUsed     float64 `json:"energy_used"`
}

// State is the aggregate root the reducer operates on. Level is derived
// from Experience and re-stamped by Normalize; it never travels as
// independent mutable state.
type State struct {
	UserID      string                       `json:"user_id"`
	Class       string                       `json:"class,omitempty"`
	Energy      energy.State                 `json:"energy"`
	Experience  int                          `json:"experience"`
	Level       int                          `json:"level"`
	SkillPoints int                          `json:"skill_points"`
	Skills      map[string]progression.Skill `json:"skills"`
	Inventory   []card.Card                  `json:"inventory"`
	Cooldowns   map[string]time.Time         `json:"cooldowns"`
	Daily       DailyProgress                `json:"daily"`
	Quests      []quest.Quest                `json:"quests"`
}

// New returns a fresh state with a full energy pool and the given class.
func New(userID, class string, maxEnergy, regenPerHour float64, now time.Time) State {
	return Normalize(State{
		UserID: userID,
		Class:  class,
		Energy: energy.New(maxEnergy, regenPerHour, now),
		Daily:  DailyProgress{Date: now.Format("2006-01-02")},
	})
}

// Normalize coerces missing nested collections to their empty form,
// clamps energy into [0, maximum] and re-derives Level from Experience.
// Snapshots may come from an older schema, so nothing here assumes a
// field was present.
func Normalize(s State) State {
	if s.Skills == nil {
		s.Skills = map[string]progression.Skill{}
	}
	if s.Inventory == nil {
		s.Inventory = []card.Card{}
	}
	if s.Cooldowns == nil {
		s.Cooldowns = map[string]time.Time{}
	}
	if s.Quests == nil {
		s.Quests = []quest.Quest{}
	}
	if s.Experience < 0 {
		s.Experience = 0
	}
	if s.Energy.Maximum < 0 {
		s.Energy.Maximum = 0
	}
	if s.Energy.RegenPerHour < 0 {
		s.Energy.RegenPerHour = 0
	}
	if s.Energy.Current < 0 {
		s.Energy.Current = 0
	}
	if s.Energy.Current > s.Energy.Maximum {
		s.Energy.Current = s.Energy.Maximum
	}
	s.Level = progression.LevelFromXP(s.Experience)
	return s
}

// Clone returns a deep copy so reducer transitions cannot alias shared
// maps and slices between snapshots.
func Clone(s State) State {
	out := s
	out.Skills = make(map[string]progression.Skill, len(s.Skills))
	for k, v := range s.Skills {
		out.Skills[k] = v
	}
	out.Inventory = append([]card.Card{}, s.Inventory...)
	out.Cooldowns = make(map[string]time.Time, len(s.Cooldowns))
	for k, v := range s.Cooldowns {
		out.Cooldowns[k] = v
	}
	out.Quests = append([]quest.Quest{}, s.Quests...)
	out.Energy.DailyUsage = append([]energy.DayUsage{}, s.Energy.DailyUsage...)
	return out
}

// FindCard looks a card up by id in the inventory.
func (s State) FindCard(id string) (card.Card, int, bool) {
	for i, c := range s.Inventory {
		if c.ID == id {
			return c, i, true
		}
	}
	return card.Card{}, -1, false
}

// FindQuest looks a quest up by id.
func (s State) FindQuest(id string) (quest.Quest, int, bool) {
	for i, q := range s.Quests {
		if q.ID == id {
			return q, i, true
		}
	}
	return quest.Quest{}, -1, false
}

// HasCard reports whether the inventory already holds a card id.
func (s State) HasCard(id string) bool {
	_, _, ok := s.FindCard(id)
	return ok
}
