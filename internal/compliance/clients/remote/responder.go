package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"miniminds/internal/compliance/models"
	"miniminds/internal/sentinel"
)

// ResponderClient asks the backend AI responder to answer a query.
type ResponderClient struct {
	c *client
}

func NewResponderClient(cfg Config) *ResponderClient {
	return &ResponderClient{c: newClient("responder", cfg)}
}

type queryRequest struct {
	Query string `json:"query"`
	// Classification is passed as context; the responder may ignore it.
	Category  models.Category  `json:"category,omitempty"`
	RiskLevel models.RiskLevel `json:"riskLevel,omitempty"`
}

type queryResponse struct {
	Success  bool `json:"success"`
	Response *struct {
		Message string          `json:"message"`
		Data    json.RawMessage `json:"data,omitempty"`
	} `json:"response,omitempty"`
	Message string `json:"message,omitempty"`
}

// Query forwards the raw query. A response with success=false is an error.
func (r *ResponderClient) Query(ctx context.Context, query string, c models.Classification) (models.Answer, error) {
	var out queryResponse
	req := queryRequest{Query: query, Category: c.Category, RiskLevel: c.RiskLevel}
	if err := r.c.do(ctx, http.MethodPost, "/query", nil, req, &out); err != nil {
		return models.Answer{}, err
	}
	if !out.Success {
		return models.Answer{}, r.c.fail("POST /query", http.StatusOK,
			fmt.Errorf("%w: %s", sentinel.ErrRejected, out.Message))
	}
	if out.Response == nil {
		return models.Answer{}, r.c.fail("POST /query", http.StatusOK,
			fmt.Errorf("%w: success without response", sentinel.ErrBadResponse))
	}
	return models.Answer{Message: out.Response.Message, Data: out.Response.Data}, nil
}
