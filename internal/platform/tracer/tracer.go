// Package tracer provides a lightweight tracing abstraction for the gateway.
//
// Components depend on the Tracer interface rather than on OpenTelemetry, so
// tests run with NoopTracer and production wires OTelTracer.
package tracer

import (
	"context"
	"time"
)

// Span represents an active trace span.
type Span interface {
	// End completes the span. A non-nil err marks it as failed.
	// End must be called exactly once, typically via defer.
	End(err error)

	// SetAttributes adds key-value pairs to the span.
	SetAttributes(attrs ...Attribute)

	// AddEvent records a timestamped event within the span.
	AddEvent(name string, attrs ...Attribute)
}

// Tracer creates spans. Implementations must be safe for concurrent use.
type Tracer interface {
	// Start creates a span and returns a context carrying it.
	//
	// Example:
	//   ctx, span := t.Start(ctx, tracer.SpanGatewayQuery,
	//       tracer.String(tracer.AttrCategory, string(c.Category)),
	//   )
	//   defer span.End(nil)
	Start(ctx context.Context, name string, attrs ...Attribute) (context.Context, Span)
}

// Attribute represents a key-value pair attached to spans.
type Attribute struct {
	Key   string
	Value any
}

func String(key, value string) Attribute {
	return Attribute{Key: key, Value: value}
}

func Bool(key string, value bool) Attribute {
	return Attribute{Key: key, Value: value}
}

func Int64(key string, value int64) Attribute {
	return Attribute{Key: key, Value: value}
}

func Int(key string, value int) Attribute {
	return Attribute{Key: key, Value: value}
}

func Float64(key string, value float64) Attribute {
	return Attribute{Key: key, Value: value}
}

// Duration creates a duration attribute in milliseconds.
func Duration(key string, value time.Duration) Attribute {
	return Attribute{Key: key, Value: value.Milliseconds()}
}

// Span names.
const (
	SpanGatewayQuery    = "gateway.query"
	SpanGatewayEscalate = "gateway.escalate"
	SpanResponderCall   = "responder.call"
	SpanAuditRecord     = "audit.record"
	SpanAuditFlush      = "audit.flush"
	SpanEscalationCall  = "escalation.call"
)

// Attribute keys.
const (
	AttrCategory     = "query.category"
	AttrRiskLevel    = "query.risk_level"
	AttrRule         = "query.rule"
	AttrFingerprint  = "query.fingerprint"
	AttrState        = "gateway.state"
	AttrLanguage     = "gateway.language"
	AttrRole         = "user.role"
	AttrAuditID      = "audit.id"
	AttrAuditLocal   = "audit.local"
	AttrBatchSize    = "audit.batch_size"
	AttrProcessed    = "audit.processed"
	AttrBreakerState = "audit.breaker_state"
)

// Event names.
const (
	EventClassified   = "query.classified"
	EventStateEntered = "gateway.state_entered"
	EventAuditQueued  = "audit.queued"
)
