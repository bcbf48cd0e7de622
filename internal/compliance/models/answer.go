package models

import "encoding/json"

// Answer is the AI responder's reply to a forwarded query.
type Answer struct {
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}
