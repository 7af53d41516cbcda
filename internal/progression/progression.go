package progression

import (
	"fmt"
	"math"
)

const (
	// MaxLevel caps both the player level curve and per-skill levels.
	MaxLevel = 50

	xpPerLevelUnit = 100
)

// LevelFromXP derives the player level from total experience.
// Level is never stored authoritatively; it is always recomputed from XP,
// so display level and actual XP cannot drift apart.
func LevelFromXP(xp int) int {
	if xp <= 0 {
		return 1
	}
	level := int(math.Floor(math.Sqrt(float64(xp)/xpPerLevelUnit))) + 1
	if level > MaxLevel {
		return MaxLevel
	}
	return level
}

// XPForLevel is the inverse of LevelFromXP: the total XP at which the
// given level is first reached.
func XPForLevel(level int) int {
	if level <= 1 {
		return 0
	}
	if level > MaxLevel {
		level = MaxLevel
	}
	return (level - 1) * (level - 1) * xpPerLevelUnit
}

// Skill tracks experience for a single named skill.
// Experience is the XP within the current level; TotalXP is cumulative.
type Skill struct {
	Experience int `json:"experience"`
	TotalXP    int `json:"total_xp"`
	Level      int `json:"level"`
}

// AddSkillXP applies a bonus to a skill and re-derives its level.
func AddSkillXP(s Skill, bonus int) Skill {
	if bonus <= 0 {
		return s
	}
	s.TotalXP += bonus
	s.Level = s.TotalXP/xpPerLevelUnit + 1
	if s.Level > MaxLevel {
		s.Level = MaxLevel
	}
	s.Experience = s.TotalXP % xpPerLevelUnit
	return s
}

// GainResult describes one experience gain.
type GainResult struct {
	Experience  int `json:"experience"`
	OldLevel    int `json:"old_level"`
	NewLevel    int `json:"new_level"`
	SkillPoints int `json:"skill_points"`
}

// Gain adds amount to total experience and reports the level transition.
// One skill point is awarded per level gained. Negative amounts are
// rejected: experience is monotonic.
func Gain(xp, amount int) (GainResult, error) {
	if amount < 0 {
		return GainResult{}, fmt.Errorf("experience amount must be >= 0, got %d", amount)
	}
	old := LevelFromXP(xp)
	next := xp + amount
	level := LevelFromXP(next)
	points := 0
	if level > old {
		points = level - old
	}
	return GainResult{
		Experience:  next,
		OldLevel:    old,
		NewLevel:    level,
		SkillPoints: points,
	}, nil
}
