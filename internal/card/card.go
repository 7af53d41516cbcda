package card

import (
	"fmt"
	"slices"
	"time"
)

type Type string

const (
	TypeAction    Type = "action"
	TypePower     Type = "power"
	TypeRecovery  Type = "recovery"
	TypeEvent     Type = "event"
	TypeEquipment Type = "equipment"
)

var Types = []Type{TypeAction, TypePower, TypeRecovery, TypeEvent, TypeEquipment}

type Rarity string

const (
	RarityCommon    Rarity = "common"
	RarityUncommon  Rarity = "uncommon"
	RarityRare      Rarity = "rare"
	RarityEpic      Rarity = "epic"
	RarityLegendary Rarity = "legendary"
)

var Rarities = []Rarity{RarityCommon, RarityUncommon, RarityRare, RarityEpic, RarityLegendary}

// Multiplier is the progress multiplier applied for a rarity during
// execution scoring.
func (r Rarity) Multiplier() float64 {
	switch r {
	case RarityUncommon:
		return 1.1
	case RarityRare:
		return 1.25
	case RarityEpic:
		return 1.5
	case RarityLegendary:
		return 2.0
	default:
		return 1.0
	}
}

type EffectKind string

const (
	EffectMultiplier EffectKind = "multiplier"
	EffectFlatBonus  EffectKind = "flat_bonus"
)

// Effect modifies the progress value of an execution.
type Effect struct {
	Kind   EffectKind `json:"kind"`
	Target string     `json:"target,omitempty"`
	Value  float64    `json:"value"`
}

// SkillBonus grants XP to a named skill on successful execution.
type SkillBonus struct {
	Skill string `json:"skill"`
	XP    int    `json:"xp"`
}

// Card is an immutable definition of a player action: a cost, an effect
// and optional conditions/cooldown. A negative EnergyCost marks a recovery
// card that restores energy instead of spending it.
//
// UsageCount and LastUsed are runtime bookkeeping layered on top of the
// definition; everything else is fixed once the card is created.
type Card struct {
	ID            string       `json:"id"`
	Name          string       `json:"name"`
	Description   string       `json:"description"`
	Type          Type         `json:"type"`
	Rarity        Rarity       `json:"rarity"`
	ClassAffinity []string     `json:"class_affinity,omitempty"`
	Tags          []string     `json:"tags,omitempty"`
	EnergyCost    float64      `json:"energy_cost"`
	DurationHours float64      `json:"duration_hours,omitempty"`
	Impact        float64      `json:"impact"`
	SkillBonus    []SkillBonus `json:"skill_bonus,omitempty"`
	Conditions    *Conditions  `json:"conditions,omitempty"`
	Effects       []Effect     `json:"effects,omitempty"`
	CooldownHours float64      `json:"cooldown_hours,omitempty"`

	UsageCount int        `json:"usage_count,omitempty"`
	LastUsed   *time.Time `json:"last_used,omitempty"`
}

func (c Card) HasTag(tag string) bool {
	return slices.Contains(c.Tags, tag)
}

// ForClass reports whether the card is usable by the given player class.
// Cards without affinity tags are class-neutral.
func (c Card) ForClass(class string) bool {
	return len(c.ClassAffinity) == 0 || slices.Contains(c.ClassAffinity, class)
}

// Validate checks structural sanity of a definition. Generated cards must
// pass this before entering an inventory.
func (c Card) Validate() error {
	if c.ID == "" {
		return fmt.Errorf("card id is required")
	}
	if c.Name == "" {
		return fmt.Errorf("card name is required")
	}
	if !slices.Contains(Types, c.Type) {
		return fmt.Errorf("unknown card type: %q", c.Type)
	}
	if !slices.Contains(Rarities, c.Rarity) {
		return fmt.Errorf("unknown card rarity: %q", c.Rarity)
	}
	if c.Impact < 0 {
		return fmt.Errorf("impact must be >= 0")
	}
	if c.CooldownHours < 0 {
		return fmt.Errorf("cooldown_hours must be >= 0")
	}
	for _, e := range c.Effects {
		if e.Kind != EffectMultiplier && e.Kind != EffectFlatBonus {
			return fmt.Errorf("unknown effect kind: %q", e.Kind)
		}
	}
	for _, sb := range c.SkillBonus {
		if sb.Skill == "" {
			return fmt.Errorf("skill bonus requires a skill name")
		}
		if sb.XP < 0 {
			return fmt.Errorf("skill bonus xp must be >= 0")
		}
	}
	if c.Conditions != nil {
		if err := c.Conditions.Validate(); err != nil {
			return fmt.Errorf("card %s: %w", c.ID, err)
		}
	}
	return nil
}
