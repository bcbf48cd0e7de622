package models

import "time"

// Speaker identifies who produced a conversation turn.
type Speaker string

const (
	SpeakerUser      Speaker = "user"
	SpeakerAssistant Speaker = "assistant"
)

// Message is one turn of a session's conversation history. History is
// observational state and is not part of the compliance record.
type Message struct {
	Role      Speaker   `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	Blocked   bool      `json:"blocked,omitempty"`
}
