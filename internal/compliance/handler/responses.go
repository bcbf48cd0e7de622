package handler

import (
	"miniminds/internal/compliance/models"
)

// HistoryResponse is the body of GET /v1/history.
type HistoryResponse struct {
	SessionID string           `json:"sessionId"`
	Messages  []models.Message `json:"messages"`
}

// QueueResponse reports the local audit backlog.
type QueueResponse struct {
	Pending int  `json:"pending"`
	Online  bool `json:"online"`
}

// FlushResponse is the body of POST /v1/audit/flush.
type FlushResponse struct {
	Flushed   bool   `json:"flushed"`
	Sent      int    `json:"sent"`
	Processed int    `json:"processed"`
	Remaining int    `json:"remaining"`
	Error     string `json:"error,omitempty"`
}
