package remote

import (
	"context"
	"net/http"

	"miniminds/internal/compliance/models"
)

// EscalationClient submits escalation requests.
type EscalationClient struct {
	c *client
}

func NewEscalationClient(cfg Config) *EscalationClient {
	return &EscalationClient{c: newClient("escalation", cfg)}
}

// Escalate posts req and returns the remote id and message.
func (e *EscalationClient) Escalate(ctx context.Context, req models.EscalationRequest) (models.EscalationResult, error) {
	var out models.EscalationResult
	if err := e.c.do(ctx, http.MethodPost, "/escalate", nil, req, &out); err != nil {
		return models.EscalationResult{}, err
	}
	out.Local = false
	return out, nil
}
