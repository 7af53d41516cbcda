package quest

import (
	"fmt"
	"time"
)

type Status string

const (
	StatusActive    Status = "active"
	StatusPaused    Status = "paused"
	StatusCompleted Status = "completed"
)

// Quest is a longer-running player objective with a progress percentage.
// Type is a free-form tag ("work", "health", ...) matched against card
// tags by the recommendation scorer.
type Quest struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Type        string     `json:"type,omitempty"`
	Status      Status     `json:"status"`
	Progress    float64    `json:"progress"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

func New(id, title, questType string, now time.Time) Quest {
	return Quest{
		ID:        id,
		Title:     title,
		Type:      questType,
		Status:    StatusActive,
		CreatedAt: now,
	}
}

func (q Quest) Validate() error {
	if q.ID == "" {
		return fmt.Errorf("quest id is required")
	}
	if q.Title == "" {
		return fmt.Errorf("quest title is required")
	}
	switch q.Status {
	case StatusActive, StatusPaused, StatusCompleted:
	default:
		return fmt.Errorf("unknown quest status: %q", q.Status)
	}
	if q.Progress < 0 || q.Progress > 100 {
		return fmt.Errorf("quest progress must be in [0,100], got %.1f", q.Progress)
	}
	return nil
}

// Advance moves progress by delta, clamped to [0,100]. It does not flip
// status: reaching 100 makes the quest completable, completion itself is
// an explicit transition.
func (q Quest) Advance(delta float64) Quest {
	q.Progress += delta
	if q.Progress > 100 {
		q.Progress = 100
	}
	if q.Progress < 0 {
		q.Progress = 0
	}
	return q
}

// Complete transitions the quest into Completed exactly once.
func (q Quest) Complete(now time.Time) (Quest, error) {
	if q.Status == StatusCompleted {
		return q, fmt.Errorf("quest %s is already completed", q.ID)
	}
	q.Status = StatusCompleted
	q.Progress = 100
	q.CompletedAt = &now
	return q, nil
}

func (q Quest) Pause() (Quest, error) {
	if q.Status != StatusActive {
		return q, fmt.Errorf("quest %s is not active", q.ID)
	}
	q.Status = StatusPaused
	return q, nil
}

func (q Quest) Resume() (Quest, error) {
	if q.Status != StatusPaused {
		return q, fmt.Errorf("quest %s is not paused", q.ID)
	}
	q.Status = StatusActive
	return q, nil
}

// Active filters a quest list down to active quests.
func Active(quests []Quest) []Quest {
	out := make([]Quest, 0, len(quests))
	for _, q := range quests {
		if q.Status == StatusActive {
			out = append(out, q)
		}
	}
	return out
}
