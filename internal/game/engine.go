package game

import (
	"fmt"
	"time"

	"innerlevel/internal/card"
	"innerlevel/internal/energy"
	"innerlevel/internal/player"
	"innerlevel/internal/progression"
	"innerlevel/internal/telemetry"
)

// CardNotFoundError reports an ExecuteCard action naming an id absent
// from the inventory.
type CardNotFoundError struct {
	CardID string
}

func (e *CardNotFoundError) Error() string {
	return fmt.Sprintf("card not found: %s", e.CardID)
}

// QuestNotFoundError reports a quest action naming an unknown quest.
type QuestNotFoundError struct {
	QuestID string
}

func (e *QuestNotFoundError) Error() string {
	return fmt.Sprintf("quest not found: %s", e.QuestID)
}

// Engine is the state coordinator: a reducer applying discrete Actions to
// immutable player snapshots. It is the only component with write access
// to player state; everything it delegates to is a pure computation.
type Engine struct {
	Evaluator *card.Evaluator
	Clock     Clock
	Telemetry telemetry.Repository
}

// Result carries the ephemeral outputs of one transition alongside the
// next snapshot: the UI renders Execution/Message, the engine forgets it.
type Result struct {
	State     player.State
	Execution *card.ExecutionResult
	Message   string
}

// Apply produces the next snapshot for one action. On any failure the
// returned state is the input unchanged and the error carries a typed
// reason; nothing here panics on player-reachable input.
func (e Engine) Apply(s player.State, a Action) (Result, error) {
	now := e.now()

	switch act := a.(type) {
	case AddEnergy:
		if act.Amount < 0 {
			return Result{State: s}, fmt.Errorf("energy amount must be >= 0, got %.1f", act.Amount)
		}
		next := player.Clone(s)
		next.Energy = energy.Restore(energy.Advance(next.Energy, now), act.Amount, now)
		return Result{State: next}, nil

	case ConsumeEnergy:
		next := player.Clone(s)
		next.Energy = energy.Advance(next.Energy, now)
		spent, err := energy.Spend(next.Energy, act.Amount, act.Activity, now)
		if err != nil {
			return Result{State: s}, err
		}
		next.Energy = spent
		next.Daily = rollDaily(next.Daily, now)
		next.Daily.EnergyUsed += act.Amount
		e.record(telemetry.EventEnergySpent, telemetry.EventMetadata{"amount": act.Amount, "activity": act.Activity})
		return Result{State: next}, nil

	case ExecuteCard:
		return e.executeCard(s, act.CardID, now)

	case AddCard:
		if err := act.Card.Validate(); err != nil {
			return Result{State: s}, err
		}
		if s.HasCard(act.Card.ID) {
			return Result{State: s}, nil
		}
		next := player.Clone(s)
		next.Inventory = append(next.Inventory, act.Card)
		e.record(telemetry.EventCardAdded, telemetry.EventMetadata{"card_id": act.Card.ID})
		return Result{State: next}, nil

	case GainExperience:
		next := player.Clone(s)
		if err := gainXP(&next, act.Amount, now, e); err != nil {
			return Result{State: s}, err
		}
		return Result{State: next}, nil

	case CreateQuest:
		if err := act.Quest.Validate(); err != nil {
			return Result{State: s}, err
		}
		if _, _, exists := s.FindQuest(act.Quest.ID); exists {
			return Result{State: s}, fmt.Errorf("quest %s already exists", act.Quest.ID)
		}
		next := player.Clone(s)
		next.Quests = append(next.Quests, act.Quest)
		return Result{State: next}, nil

	case AdvanceQuest:
		q, idx, ok := s.FindQuest(act.QuestID)
		if !ok {
			return Result{State: s}, &QuestNotFoundError{QuestID: act.QuestID}
		}
		next := player.Clone(s)
		next.Quests[idx] = q.Advance(act.Delta)
		return Result{State: next}, nil

	case CompleteQuest:
		q, idx, ok := s.FindQuest(act.QuestID)
		if !ok {
			return Result{State: s}, &QuestNotFoundError{QuestID: act.QuestID}
		}
		done, err := q.Complete(now)
		if err != nil {
			return Result{State: s}, err
		}
		next := player.Clone(s)
		next.Quests[idx] = done
		e.record(telemetry.EventQuestCompleted, telemetry.EventMetadata{"quest_id": q.ID})
		return Result{State: next, Message: fmt.Sprintf("Quest complete: %s", q.Title)}, nil

	case PauseQuest:
		q, idx, ok := s.FindQuest(act.QuestID)
		if !ok {
			return Result{State: s}, &QuestNotFoundError{QuestID: act.QuestID}
		}
		paused, err := q.Pause()
		if err != nil {
			return Result{State: s}, err
		}
		next := player.Clone(s)
		next.Quests[idx] = paused
		return Result{State: next}, nil

	case ResumeQuest:
		q, idx, ok := s.FindQuest(act.QuestID)
		if !ok {
			return Result{State: s}, &QuestNotFoundError{QuestID: act.QuestID}
		}
		resumed, err := q.Resume()
		if err != nil {
			return Result{State: s}, err
		}
		next := player.Clone(s)
		next.Quests[idx] = resumed
		return Result{State: next}, nil

	case LoadState:
		return Result{State: player.Normalize(player.Clone(act.Snapshot))}, nil

	default:
		// The Action set is closed; hitting this is a bug in the caller,
		// not a player-reachable state.
		return Result{State: s}, fmt.Errorf("unhandled action type %T", a)
	}
}

// executeCard applies eligibility, execution and the resulting four-way
// mutation (energy, experience, cooldown, daily counters) atomically:
// either all of it lands in the next snapshot or the input is returned
// untouched.
func (e Engine) executeCard(s player.State, cardID string, now time.Time) (Result, error) {
	c, idx, ok := s.FindCard(cardID)
	if !ok {
		return Result{State: s}, &CardNotFoundError{CardID: cardID}
	}

	next := player.Clone(s)
	next.Energy = energy.Advance(next.Energy, now)

	cctx := card.Context{
		Energy:    next.Energy,
		Level:     next.Level,
		Now:       now,
		Cooldowns: next.Cooldowns,
	}
	if err := e.Evaluator.Evaluate(c, cctx); err != nil {
		// Ineligible cards never mutate state, including the lazy energy
		// advance above.
		return Result{State: s}, err
	}

	res := e.Evaluator.Execute(c, cctx)

	if res.EnergyConsumed > 0 {
		spent, err := energy.Spend(next.Energy, res.EnergyConsumed, c.Name, now)
		if err != nil {
			return Result{State: s}, err
		}
		next.Energy = spent
	}
	if res.EnergyRestored > 0 {
		next.Energy = energy.Restore(next.Energy, res.EnergyRestored, now)
	}

	if err := gainXP(&next, res.ProgressGained, now, e); err != nil {
		return Result{State: s}, err
	}
	for _, sb := range c.SkillBonus {
		next.Skills[sb.Skill] = progression.AddSkillXP(next.Skills[sb.Skill], sb.XP)
	}

	c.UsageCount++
	used := now
	c.LastUsed = &used
	next.Inventory[idx] = c

	if !res.CooldownUntil.IsZero() {
		next.Cooldowns[c.ID] = res.CooldownUntil
	}

	// gainXP already rolled the daily bucket and counted the XP.
	next.Daily = rollDaily(next.Daily, now)
	next.Daily.CardsCompleted++
	next.Daily.EnergyUsed += res.EnergyConsumed

	e.record(telemetry.EventCardExecuted, telemetry.EventMetadata{
		"card_id":  c.ID,
		"progress": res.ProgressGained,
	})

	return Result{State: next, Execution: &res, Message: res.Message}, nil
}

// gainXP adds experience, re-derives the level and awards skill points
// for any levels gained.
func gainXP(s *player.State, amount int, now time.Time, e Engine) error {
	if amount == 0 {
		return nil
	}
	res, err := progression.Gain(s.Experience, amount)
	if err != nil {
		return err
	}
	s.Experience = res.Experience
	s.Level = res.NewLevel
	if res.SkillPoints > 0 {
		s.SkillPoints += res.SkillPoints
		e.record(telemetry.EventLevelUp, telemetry.EventMetadata{
			"from": res.OldLevel,
			"to":   res.NewLevel,
		})
	}
	s.Daily = rollDaily(s.Daily, now)
	s.Daily.XPGained += amount
	return nil
}

// rollDaily resets the per-day counters when the local date changes.
func rollDaily(d player.DailyProgress, now time.Time) player.DailyProgress {
	today := now.Format("2006-01-02")
	if d.Date != today {
		return player.DailyProgress{Date: today}
	}
	return d
}

func (e Engine) now() time.Time {
	if e.Clock == nil {
		return time.Now()
	}
	return e.Clock.Now()
}

func (e Engine) record(t telemetry.EventType, md telemetry.EventMetadata) {
	if e.Telemetry != nil {
		_ = e.Telemetry.RecordEvent(t, md)
	}
}
