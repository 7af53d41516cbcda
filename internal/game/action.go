package game

import (
	"innerlevel/internal/card"
	"innerlevel/internal/player"
	"innerlevel/internal/quest"
)

// Action is the closed set of state transitions the reducer accepts.
// Adding a variant means handling it in Engine.Apply; the reducer treats
// an unhandled variant as a programming error, never a silent no-op.
type Action interface {
	isAction()
}

// AddEnergy restores energy directly (UI tick rewards, purchases).
type AddEnergy struct {
	Amount float64
}

// ConsumeEnergy spends energy on an activity outside the card system.
type ConsumeEnergy struct {
	Amount   float64
	Activity string
}

// ExecuteCard runs eligibility and execution for an inventory card and
// applies the result atomically.
type ExecuteCard struct {
	CardID string
}

// AddCard puts a validated card into the inventory. Duplicate ids are
// ignored: cards are never deleted, only marked used or cooling down.
type AddCard struct {
	Card card.Card
}

// GainExperience adds raw experience (quest rewards, manual grants).
type GainExperience struct {
	Amount int
}

// CreateQuest adds a new quest to the player's list.
type CreateQuest struct {
	Quest quest.Quest
}

// AdvanceQuest moves a quest's progress by Delta percentage points.
type AdvanceQuest struct {
	QuestID string
	Delta   float64
}

// CompleteQuest transitions a quest into Completed exactly once.
type CompleteQuest struct {
	QuestID string
}

// PauseQuest suspends an active quest.
type PauseQuest struct {
	QuestID string
}

// ResumeQuest reactivates a paused quest.
type ResumeQuest struct {
	QuestID string
}

// LoadState replaces the whole state with a persisted snapshot. The
// snapshot is normalized defensively: it may come from an older schema.
type LoadState struct {
	Snapshot player.State
}

func (AddEnergy) isAction()      {}
func (ConsumeEnergy) isAction()  {}
func (ExecuteCard) isAction()    {}
func (AddCard) isAction()        {}
func (GainExperience) isAction() {}
func (CreateQuest) isAction()    {}
func (AdvanceQuest) isAction()   {}
func (CompleteQuest) isAction()  {}
func (PauseQuest) isAction()     {}
func (ResumeQuest) isAction()    {}
func (LoadState) isAction()      {}
