package models

const (
	EventTypeProgress    = "progress"
	EventTypeSuggestions = "suggestions"
)

// SessionEvent is pushed to observers (the UI) whenever the progress
// snapshot or the recommendation list changes.
type SessionEvent struct {
	Type        string            `json:"type"`
	Progress    *LearningProgress `json:"progress,omitempty"`
	Suggestions []WLOMetadata     `json:"suggestions,omitempty"`
	Timestamp   int64             `json:"timestamp"`
}

type SessionSummary struct {
	ID               string       `json:"id"`
	Settings         ChatSettings `json:"settings"`
	MessageCount     int          `json:"messageCount"`
	SessionStartTime int64        `json:"sessionStartTime"`
}
