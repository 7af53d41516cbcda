package game

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"innerlevel/internal/card"
	"innerlevel/internal/energy"
	"innerlevel/internal/player"
	"innerlevel/internal/quest"
	"innerlevel/internal/telemetry"
)

func newEngineForTest(t *testing.T, start time.Time) (Engine, *FakeClock) {
	t.Helper()
	ev, err := card.NewEvaluator(50)
	require.NoError(t, err)
	clock := NewFakeClock(start)
	return Engine{
		Evaluator: ev,
		Clock:     clock,
		Telemetry: telemetry.NewMemoryRepository(),
	}, clock
}

func statePlaying(now time.Time) player.State {
	s := player.New("u1", "sage", 100, 10, now)
	s.Inventory = append(s.Inventory,
		card.Card{ID: "c_basic", Name: "Basic", Type: card.TypeAction, Rarity: card.RarityCommon, EnergyCost: 10, Impact: 20},
		card.Card{ID: "c_cd", Name: "Cooldown", Type: card.TypeAction, Rarity: card.RarityCommon, EnergyCost: 5, Impact: 10, CooldownHours: 24},
		card.Card{ID: "c_nap", Name: "Nap", Type: card.TypeRecovery, Rarity: card.RarityCommon, EnergyCost: -15, Impact: 0},
	)
	return s
}

func TestApply_ConsumeEnergy_InsufficientLeavesStateUnchanged(t *testing.T) {
	start := time.Date(2026, 1, 5, 14, 0, 0, 0, time.UTC)
	e, _ := newEngineForTest(t, start)
	s := statePlaying(start)
	s.Energy.Current = 10

	res, err := e.Apply(s, ConsumeEnergy{Amount: 999, Activity: "marathon"})
	var insufficient *energy.InsufficientError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, s, res.State)
}

func TestApply_ConsumeEnergy_TracksDailyUsage(t *testing.T) {
	start := time.Date(2026, 1, 5, 14, 0, 0, 0, time.UTC)
	e, _ := newEngineForTest(t, start)
	s := statePlaying(start)

	res, err := e.Apply(s, ConsumeEnergy{Amount: 20, Activity: "errands"})
	require.NoError(t, err)
	assert.InDelta(t, 80, res.State.Energy.Current, 0.001)
	assert.InDelta(t, 20, res.State.Daily.EnergyUsed, 0.001)
}

func TestApply_ExecuteCard_ScenarioB(t *testing.T) {
	// Common card, impact 20, cost 10, at 07:00 => +24 progress, -10 energy.
	start := time.Date(2026, 1, 5, 7, 0, 0, 0, time.UTC)
	e, _ := newEngineForTest(t, start)
	s := statePlaying(start)
	s.Energy.Current = 40

	res, err := e.Apply(s, ExecuteCard{CardID: "c_basic"})
	require.NoError(t, err)
	require.NotNil(t, res.Execution)

	assert.Equal(t, 24, res.Execution.ProgressGained)
	assert.InDelta(t, 30, res.State.Energy.Current, 0.001)
	assert.Equal(t, 24, res.State.Experience)
	assert.Equal(t, 1, res.State.Daily.CardsCompleted)
	assert.InDelta(t, 10, res.State.Daily.EnergyUsed, 0.001)

	got, _, ok := res.State.FindCard("c_basic")
	require.True(t, ok)
	assert.Equal(t, 1, got.UsageCount)
	require.NotNil(t, got.LastUsed)
}

func TestApply_ExecuteCard_ScenarioC_CooldownBlocksSecondRun(t *testing.T) {
	start := time.Date(2026, 1, 5, 14, 0, 0, 0, time.UTC)
	e, clock := newEngineForTest(t, start)
	s := statePlaying(start)

	first, err := e.Apply(s, ExecuteCard{CardID: "c_cd"})
	require.NoError(t, err)
	assert.Equal(t, start.Add(24*time.Hour), first.State.Cooldowns["c_cd"])

	clock.Advance(12 * time.Hour)
	second, err := e.Apply(first.State, ExecuteCard{CardID: "c_cd"})
	var cd *card.CooldownError
	require.ErrorAs(t, err, &cd)

	// Unchanged: energy untouched, usage count untouched.
	assert.Equal(t, first.State, second.State)

	// Lazily re-evaluated on demand: once expired the card runs again.
	clock.Advance(13 * time.Hour)
	third, err := e.Apply(first.State, ExecuteCard{CardID: "c_cd"})
	require.NoError(t, err)
	got, _, _ := third.State.FindCard("c_cd")
	assert.Equal(t, 2, got.UsageCount)
}

func TestApply_ExecuteCard_RecoveryRestoresEnergy(t *testing.T) {
	start := time.Date(2026, 1, 5, 14, 0, 0, 0, time.UTC)
	e, _ := newEngineForTest(t, start)
	s := statePlaying(start)
	s.Energy.Current = 5

	res, err := e.Apply(s, ExecuteCard{CardID: "c_nap"})
	require.NoError(t, err)
	assert.InDelta(t, 20, res.State.Energy.Current, 0.001)
}

func TestApply_ExecuteCard_NotFound(t *testing.T) {
	start := time.Date(2026, 1, 5, 14, 0, 0, 0, time.UTC)
	e, _ := newEngineForTest(t, start)
	s := statePlaying(start)

	_, err := e.Apply(s, ExecuteCard{CardID: "ghost"})
	var notFound *CardNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "ghost", notFound.CardID)
}

func TestApply_ExecuteCard_AdvancesEnergyBeforeGate(t *testing.T) {
	// 5 energy now, but 2 hours of regen at 10/hr makes the 10-cost card
	// affordable by execution time.
	start := time.Date(2026, 1, 5, 12, 0, 0, 0, time.UTC)
	e, clock := newEngineForTest(t, start)
	s := statePlaying(start)
	s.Energy.Current = 5

	clock.Advance(2 * time.Hour)
	res, err := e.Apply(s, ExecuteCard{CardID: "c_basic"})
	require.NoError(t, err)
	assert.InDelta(t, 15, res.State.Energy.Current, 0.001)
}

func TestApply_GainExperience_ScenarioD(t *testing.T) {
	start := time.Date(2026, 1, 5, 14, 0, 0, 0, time.UTC)
	e, _ := newEngineForTest(t, start)
	s := statePlaying(start)

	res, err := e.Apply(s, GainExperience{Amount: 100})
	require.NoError(t, err)
	assert.Equal(t, 2, res.State.Level)
	assert.Equal(t, 1, res.State.SkillPoints)

	// Negative amounts are rejected and never decrease the level.
	_, err = e.Apply(res.State, GainExperience{Amount: -1})
	require.Error(t, err)
}

func TestApply_LevelAlwaysDerivedFromExperience(t *testing.T) {
	start := time.Date(2026, 1, 5, 7, 0, 0, 0, time.UTC)
	e, _ := newEngineForTest(t, start)
	s := statePlaying(start)

	actions := []Action{
		GainExperience{Amount: 50},
		ExecuteCard{CardID: "c_basic"},
		GainExperience{Amount: 300},
		ConsumeEnergy{Amount: 5, Activity: "walk"},
	}
	cur := s
	lastXP := cur.Experience
	for _, a := range actions {
		res, err := e.Apply(cur, a)
		require.NoError(t, err)
		cur = res.State

		assert.GreaterOrEqual(t, cur.Experience, lastXP, "experience is monotonic")
		lastXP = cur.Experience
		assert.Equal(t, player.Normalize(cur).Level, cur.Level, "level == levelFromXP(experience)")
		assert.GreaterOrEqual(t, cur.Energy.Current, 0.0)
		assert.LessOrEqual(t, cur.Energy.Current, cur.Energy.Maximum)
	}
}

func TestApply_QuestLifecycle(t *testing.T) {
	start := time.Date(2026, 1, 5, 14, 0, 0, 0, time.UTC)
	e, _ := newEngineForTest(t, start)
	s := statePlaying(start)

	res, err := e.Apply(s, CreateQuest{Quest: quest.New("q1", "Ship it", "work", start)})
	require.NoError(t, err)

	_, err = e.Apply(res.State, CreateQuest{Quest: quest.New("q1", "Dup", "work", start)})
	require.Error(t, err)

	res, err = e.Apply(res.State, AdvanceQuest{QuestID: "q1", Delta: 60})
	require.NoError(t, err)
	q, _, _ := res.State.FindQuest("q1")
	assert.InDelta(t, 60, q.Progress, 0.001)

	res, err = e.Apply(res.State, PauseQuest{QuestID: "q1"})
	require.NoError(t, err)
	res, err = e.Apply(res.State, ResumeQuest{QuestID: "q1"})
	require.NoError(t, err)

	res, err = e.Apply(res.State, CompleteQuest{QuestID: "q1"})
	require.NoError(t, err)
	q, _, _ = res.State.FindQuest("q1")
	assert.Equal(t, quest.StatusCompleted, q.Status)

	// Completion is a one-way transition.
	_, err = e.Apply(res.State, CompleteQuest{QuestID: "q1"})
	require.Error(t, err)

	_, err = e.Apply(res.State, AdvanceQuest{QuestID: "nope", Delta: 1})
	var notFound *QuestNotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestApply_AddCard(t *testing.T) {
	start := time.Date(2026, 1, 5, 14, 0, 0, 0, time.UTC)
	e, _ := newEngineForTest(t, start)
	s := statePlaying(start)
	before := len(s.Inventory)

	res, err := e.Apply(s, AddCard{Card: card.Card{ID: "c_new", Name: "New", Type: card.TypeAction, Rarity: card.RarityCommon, Impact: 5}})
	require.NoError(t, err)
	assert.Len(t, res.State.Inventory, before+1)

	// Duplicate id is a no-op, invalid card is rejected.
	res2, err := e.Apply(res.State, AddCard{Card: card.Card{ID: "c_new", Name: "New", Type: card.TypeAction, Rarity: card.RarityCommon, Impact: 5}})
	require.NoError(t, err)
	assert.Len(t, res2.State.Inventory, before+1)

	_, err = e.Apply(res.State, AddCard{Card: card.Card{ID: "bad", Name: "Bad", Type: "??", Rarity: card.RarityCommon}})
	require.Error(t, err)
}

func TestApply_LoadState_CoercesOldSnapshots(t *testing.T) {
	start := time.Date(2026, 1, 5, 14, 0, 0, 0, time.UTC)
	e, _ := newEngineForTest(t, start)

	snapshot := player.State{
		UserID:     "u1",
		Experience: 400,
		Level:      17, // stale stored level from an old schema
		Energy:     energy.State{Current: 500, Maximum: 100},
		// all collections nil
	}

	res, err := e.Apply(player.State{}, LoadState{Snapshot: snapshot})
	require.NoError(t, err)
	assert.Equal(t, 3, res.State.Level)
	assert.InDelta(t, 100, res.State.Energy.Current, 0.001)
	assert.NotNil(t, res.State.Inventory)
	assert.NotNil(t, res.State.Cooldowns)
	assert.NotNil(t, res.State.Quests)
	assert.NotNil(t, res.State.Skills)
}

func TestApply_DailyCountersRollOverAtMidnight(t *testing.T) {
	start := time.Date(2026, 1, 5, 14, 0, 0, 0, time.UTC)
	e, clock := newEngineForTest(t, start)
	s := statePlaying(start)

	res, err := e.Apply(s, ConsumeEnergy{Amount: 10, Activity: "errands"})
	require.NoError(t, err)
	assert.InDelta(t, 10, res.State.Daily.EnergyUsed, 0.001)

	clock.Advance(11 * time.Hour) // 01:00 next day
	res, err = e.Apply(res.State, ConsumeEnergy{Amount: 5, Activity: "late snack"})
	require.NoError(t, err)
	assert.Equal(t, "2026-01-06", res.State.Daily.Date)
	assert.InDelta(t, 5, res.State.Daily.EnergyUsed, 0.001)
	assert.Equal(t, 0, res.State.Daily.CardsCompleted)
}

func TestApply_SkillBonusFeedsSkills(t *testing.T) {
	start := time.Date(2026, 1, 5, 14, 0, 0, 0, time.UTC)
	e, _ := newEngineForTest(t, start)
	s := statePlaying(start)
	s.Inventory = append(s.Inventory, card.Card{
		ID: "c_skill", Name: "Skill", Type: card.TypeAction, Rarity: card.RarityCommon,
		EnergyCost: 5, Impact: 10,
		SkillBonus: []card.SkillBonus{{Skill: "focus", XP: 120}},
	})

	res, err := e.Apply(s, ExecuteCard{CardID: "c_skill"})
	require.NoError(t, err)
	focus := res.State.Skills["focus"]
	assert.Equal(t, 120, focus.TotalXP)
	assert.Equal(t, 2, focus.Level)
	assert.Equal(t, 20, focus.Experience)
}
