package telemetry

import "time"

type EventType string

const (
	EventCardAdded      EventType = "card_added"
	EventCardExecuted   EventType = "card_executed"
	EventEnergySpent    EventType = "energy_spent"
	EventLevelUp        EventType = "level_up"
	EventQuestCompleted EventType = "quest_completed"
	EventForgeFallback  EventType = "forge_fallback"
	EventSnapshotSaved  EventType = "snapshot_saved"
)

type Event struct {
	ID        int       `json:"id"`
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Metadata  string    `json:"metadata"`
}

type EventMetadata map[string]interface{}
