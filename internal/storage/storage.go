package storage

import "time"

// Action names what the bot did with an inbound message.
type Action string

const (
	ActionMenu      Action = "menu"
	ActionUsage     Action = "usage"
	ActionAbout     Action = "about"
	ActionQuestion  Action = "question"
	ActionAnswer    Action = "answer"
	ActionCancel    Action = "cancel"
	ActionIgnored   Action = "ignored"
	ActionNoContent Action = "no_questions"
)

// Event is one handled inbound message.
// Question is the title of the question asked or answered, if any.
// State is the conversation state after handling.
type Event struct {
	Timestamp   time.Time `json:"timestamp"`
	UserID      int64     `json:"user_id"`
	Action      Action    `json:"action"`
	UserMessage string    `json:"user_message,omitempty"`
	Question    string    `json:"question,omitempty"`
	State       string    `json:"state,omitempty"`
}

// Recorder abstracts persistence of interaction events.
// LoadInteractions returns events in the order they were appended.
// Implementations must be safe for concurrent use.
type Recorder interface {
	AppendInteraction(event Event) error
	LoadInteractions() ([]Event, error)
}
