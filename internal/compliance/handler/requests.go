package handler

import (
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/language"

	"miniminds/internal/compliance/models"
	dErrors "miniminds/pkg/domain-errors"
	"miniminds/pkg/platform/validation"
)

// QueryRequest is the body of POST /v1/query.
type QueryRequest struct {
	Query    string `json:"query"`
	Language string `json:"language,omitempty"`
}

// Normalize trims the query and language fields.
func (r *QueryRequest) Normalize() {
	if r == nil {
		return
	}
	r.Query = strings.TrimSpace(r.Query)
	r.Language = strings.TrimSpace(r.Language)
}

// Validate checks the language tag. Query length is enforced by the gateway.
func (r *QueryRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	if r.Language != "" {
		if _, err := language.Parse(r.Language); err != nil {
			return dErrors.New(dErrors.CodeValidation, "language must be a BCP 47 tag")
		}
	}
	return nil
}

// EscalateRequest is the body of POST /v1/escalations.
type EscalateRequest struct {
	OriginalQuery     string `json:"originalQuery"`
	Reason            string `json:"reason"`
	Priority          string `json:"priority"`
	ContactPreference string `json:"contactPreference"`
	Language          string `json:"language,omitempty"`
}

// Normalize trims free text and lowercases the enumerations.
func (r *EscalateRequest) Normalize() {
	if r == nil {
		return
	}
	r.OriginalQuery = strings.TrimSpace(r.OriginalQuery)
	r.Reason = strings.TrimSpace(r.Reason)
	r.Priority = strings.ToLower(strings.TrimSpace(r.Priority))
	r.ContactPreference = strings.ToLower(strings.TrimSpace(r.ContactPreference))
	r.Language = strings.TrimSpace(r.Language)
}

func (r *EscalateRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	if r.Reason == "" {
		return dErrors.New(dErrors.CodeValidation, "reason is required")
	}
	if err := validation.CheckStringLength("reason", r.Reason, validation.MaxReasonLength); err != nil {
		return err
	}
	if r.Language != "" {
		if _, err := language.Parse(r.Language); err != nil {
			return dErrors.New(dErrors.CodeValidation, "language must be a BCP 47 tag")
		}
	}
	// Priority and contact preference are checked by the escalation submitter.
	return nil
}

// resolveLanguage prefers an explicit tag and falls back to the first entry
// of the Accept-Language header. The zero tag selects the default language.
func resolveLanguage(explicit, acceptLanguage string) language.Tag {
	if explicit != "" {
		if tag, err := language.Parse(explicit); err == nil {
			return tag
		}
	}
	if acceptLanguage == "" {
		return language.Tag{}
	}
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return language.Tag{}
	}
	return tags[0]
}

// parseAuditFilter reads the GET /v1/audit/logs query string. Dates accept
// RFC 3339 timestamps or plain YYYY-MM-DD days.
func parseAuditFilter(q map[string][]string) (models.AuditFilter, error) {
	get := func(key string) string {
		if v := q[key]; len(v) > 0 {
			return strings.TrimSpace(v[0])
		}
		return ""
	}

	var f models.AuditFilter
	if v := get("startDate"); v != "" {
		t, err := parseDate(v)
		if err != nil {
			return f, dErrors.New(dErrors.CodeValidation, "startDate must be RFC 3339 or YYYY-MM-DD")
		}
		f.StartDate = &t
	}
	if v := get("endDate"); v != "" {
		t, err := parseDate(v)
		if err != nil {
			return f, dErrors.New(dErrors.CodeValidation, "endDate must be RFC 3339 or YYYY-MM-DD")
		}
		f.EndDate = &t
	}
	if f.StartDate != nil && f.EndDate != nil && f.EndDate.Before(*f.StartDate) {
		return f, dErrors.New(dErrors.CodeValidation, "endDate is before startDate")
	}

	f.UserID = get("userId")
	if err := validation.CheckStringLength("userId", f.UserID, validation.MaxUserIDLength); err != nil {
		return f, err
	}
	if v := get("queryCategory"); v != "" {
		c := models.Category(v)
		if !c.IsValid() {
			return f, dErrors.New(dErrors.CodeValidation, "unknown queryCategory")
		}
		f.QueryCategory = c
	}
	if v := get("wasBlocked"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return f, dErrors.New(dErrors.CodeValidation, "wasBlocked must be true or false")
		}
		f.WasBlocked = &b
	}
	if v := get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return f, dErrors.New(dErrors.CodeValidation, "page must be a positive integer")
		}
		f.Page = n
	}
	if v := get("pageSize"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return f, dErrors.New(dErrors.CodeValidation, "pageSize must be an integer")
		}
		if err := validation.CheckRange("pageSize", n, 1, validation.MaxPageSize); err != nil {
			return f, err
		}
		f.PageSize = n
	}
	return f, nil
}

func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	return time.Parse(time.DateOnly, s)
}
