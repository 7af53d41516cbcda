package telemetry

import (
	"encoding/json"
	"time"
)

type Stats struct {
	Period          string            `json:"period"`
	EventCounts     map[EventType]int `json:"event_counts"`
	CardExecutions  int               `json:"card_executions"`
	ProgressGained  int               `json:"progress_gained"`
	LevelUps        int               `json:"level_ups"`
	QuestsCompleted int               `json:"quests_completed"`
	EnergySpent     float64           `json:"energy_spent"`
	ForgeFallbacks  int               `json:"forge_fallbacks"`
	ExecutionsByCard map[string]int   `json:"executions_by_card"`
}

// CalculateStats aggregates balance stats from raw events.
func CalculateStats(events []Event, since time.Time) (Stats, error) {
	stats := Stats{
		Period:           since.Format("2006-01-02"),
		EventCounts:      make(map[EventType]int),
		ExecutionsByCard: make(map[string]int),
	}

	for _, event := range events {
		stats.EventCounts[event.Type]++

		var metadata EventMetadata
		if err := json.Unmarshal([]byte(event.Metadata), &metadata); err != nil {
			continue
		}

		switch event.Type {
		case EventCardExecuted:
			stats.CardExecutions++
			if id, ok := metadata["card_id"].(string); ok {
				stats.ExecutionsByCard[id]++
			}
			if p, ok := metadata["progress"].(float64); ok {
				stats.ProgressGained += int(p)
			}
		case EventLevelUp:
			stats.LevelUps++
		case EventQuestCompleted:
			stats.QuestsCompleted++
		case EventEnergySpent:
			if amt, ok := metadata["amount"].(float64); ok {
				stats.EnergySpent += amt
			}
		case EventForgeFallback:
			stats.ForgeFallbacks++
		}
	}

	return stats, nil
}
