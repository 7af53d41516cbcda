package card

// StarterSet is the fixed deck every new player begins with. IDs are
// stable so re-seeding an existing inventory is a no-op.
func StarterSet() []Card {
	minLevel3 := 3
	halfEnergy := 50.0

	return []Card{
		{
			ID:          "c_morning_ritual",
			Name:        "Morning Ritual",
			Description: "Start the day with a fixed routine.",
			Type:        TypeAction,
			Rarity:      RarityCommon,
			Tags:        []string{"morning", "routine"},
			EnergyCost:  10,
			Impact:      20,
			SkillBonus:  []SkillBonus{{Skill: "discipline", XP: 10}},
			Conditions:  &Conditions{TimeOfDay: []Window{WindowMorning}},
		},
		{
			ID:            "c_deep_focus",
			Name:          "Deep Focus Block",
			Description:   "Ninety uninterrupted minutes on the hardest task.",
			Type:          TypeAction,
			Rarity:        RarityUncommon,
			Tags:          []string{"work", "focus"},
			EnergyCost:    25,
			DurationHours: 1.5,
			Impact:        40,
			SkillBonus:    []SkillBonus{{Skill: "focus", XP: 20}},
			Conditions:    &Conditions{MinEnergyPct: &halfEnergy},
			CooldownHours: 4,
		},
		{
			ID:            "c_power_nap",
			Name:          "Power Nap",
			Description:   "Twenty minutes, no more.",
			Type:          TypeRecovery,
			Rarity:        RarityCommon,
			Tags:          []string{"afternoon", "recovery"},
			EnergyCost:    -15,
			Impact:        5,
			CooldownHours: 6,
		},
		{
			ID:          "c_evening_review",
			Name:        "Evening Review",
			Description: "Close the day: journal and plan tomorrow.",
			Type:        TypeAction,
			Rarity:      RarityCommon,
			Tags:        []string{"evening", "routine"},
			EnergyCost:  8,
			Impact:      15,
			SkillBonus:  []SkillBonus{{Skill: "discipline", XP: 8}},
			Conditions:  &Conditions{TimeOfDay: []Window{WindowEvening}},
		},
		{
			ID:            "c_flow_state",
			Name:          "Flow State",
			Description:   "Double down while momentum lasts.",
			Type:          TypePower,
			Rarity:        RarityRare,
			Tags:          []string{"work", "focus"},
			EnergyCost:    35,
			Impact:        30,
			Effects:       []Effect{{Kind: EffectMultiplier, Target: "progress", Value: 1.5}},
			Conditions:    &Conditions{MinLevel: &minLevel3},
			CooldownHours: 24,
		},
	}
}
