package player

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"innerlevel/internal/card"
	"innerlevel/internal/energy"
)

func TestNormalize_CoercesMissingCollections(t *testing.T) {
	s := Normalize(State{UserID: "u1"})

	assert.NotNil(t, s.Skills)
	assert.NotNil(t, s.Inventory)
	assert.NotNil(t, s.Cooldowns)
	assert.NotNil(t, s.Quests)
}

func TestNormalize_DerivesLevelFromExperience(t *testing.T) {
	s := Normalize(State{Experience: 400, Level: 99})
	assert.Equal(t, 3, s.Level)

	s = Normalize(State{Experience: -10})
	assert.Equal(t, 0, s.Experience)
	assert.Equal(t, 1, s.Level)
}

func TestNormalize_ClampsEnergy(t *testing.T) {
	s := Normalize(State{Energy: energy.State{Current: 150, Maximum: 100}})
	assert.InDelta(t, 100, s.Energy.Current, 0.001)

	s = Normalize(State{Energy: energy.State{Current: -5, Maximum: 100}})
	assert.InDelta(t, 0, s.Energy.Current, 0.001)
}

func TestClone_DoesNotAlias(t *testing.T) {
	now := time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)
	s := New("u1", "warrior", 100, 10, now)
	s.Inventory = append(s.Inventory, card.Card{ID: "c1", Name: "C", Type: card.TypeAction, Rarity: card.RarityCommon})
	s.Cooldowns["c1"] = now

	c := Clone(s)
	c.Inventory[0].UsageCount = 5
	c.Cooldowns["c2"] = now
	c.Skills["focus"] = c.Skills["focus"]

	assert.Equal(t, 0, s.Inventory[0].UsageCount)
	_, ok := s.Cooldowns["c2"]
	assert.False(t, ok)
}

func TestFindCardAndQuest(t *testing.T) {
	now := time.Now()
	s := New("u1", "", 100, 10, now)
	s.Inventory = append(s.Inventory, card.Card{ID: "c1"})

	got, idx, ok := s.FindCard("c1")
	require.True(t, ok)
	assert.Equal(t, 0, idx)
	assert.Equal(t, "c1", got.ID)

	_, _, ok = s.FindCard("missing")
	assert.False(t, ok)
	assert.True(t, s.HasCard("c1"))
}
