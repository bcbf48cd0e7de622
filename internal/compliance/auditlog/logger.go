// Package auditlog persists one compliance record per interaction. Records go
// to the remote audit API when it is reachable and to the durable queue when
// it is not; a background flusher retries queued records in bulk.
package auditlog

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"miniminds/internal/compliance/auditqueue"
	"miniminds/internal/compliance/metrics"
	"miniminds/internal/compliance/models"
	"miniminds/internal/platform/tracer"
	"miniminds/internal/sentinel"
	"miniminds/pkg/platform/circuit"
	"miniminds/pkg/platform/privacy"
)

//go:generate mockgen -source=logger.go -destination=mocks/mocks.go -package=mocks Remote

// Remote is the audit API.
type Remote interface {
	Log(ctx context.Context, entry models.AuditEntry) (string, error)
	Batch(ctx context.Context, entries []models.AuditEntry) (int, error)
	Logs(ctx context.Context, filter models.AuditFilter) (models.AuditPage, error)
	Stats(ctx context.Context, period models.StatsPeriod) (models.AuditStats, error)
}

const (
	defaultFlushInterval = 5 * time.Minute
	defaultDrainTimeout  = 10 * time.Second
	flushKey             = "flush"
)

// FlushResult summarizes one flush attempt.
type FlushResult struct {
	Sent      int `json:"sent"`
	Processed int `json:"processed"`
	Remaining int `json:"remaining"`
}

// Logger is safe for concurrent use.
type Logger struct {
	remote      Remote
	queue       *auditqueue.Queue
	breaker     *circuit.Breaker
	metrics     *metrics.Metrics
	logger      *slog.Logger
	tracer      tracer.Tracer
	fingerprint *privacy.Fingerprinter

	flushInterval time.Duration
	drainTimeout  time.Duration
	now           func() time.Time

	flights singleflight.Group

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// Option configures the Logger.
type Option func(*Logger)

// WithFlushInterval sets the fixed interval between flush attempts.
func WithFlushInterval(d time.Duration) Option {
	return func(l *Logger) {
		if d > 0 {
			l.flushInterval = d
		}
	}
}

// WithDrainTimeout bounds the final flush attempted by Stop.
func WithDrainTimeout(d time.Duration) Option {
	return func(l *Logger) {
		if d > 0 {
			l.drainTimeout = d
		}
	}
}

// WithBreaker replaces the breaker that tracks whether the remote is online.
func WithBreaker(b *circuit.Breaker) Option {
	return func(l *Logger) {
		if b != nil {
			l.breaker = b
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(l *Logger) {
		l.metrics = m
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(l *Logger) {
		if logger != nil {
			l.logger = logger
		}
	}
}

func WithTracer(t tracer.Tracer) Option {
	return func(l *Logger) {
		if t != nil {
			l.tracer = t
		}
	}
}

// WithFingerprinter sets the keyed hash used to correlate queries in logs
// without writing their text.
func WithFingerprinter(f *privacy.Fingerprinter) Option {
	return func(l *Logger) {
		l.fingerprint = f
	}
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(l *Logger) {
		if now != nil {
			l.now = now
		}
	}
}

// New creates an audit logger over remote with queue as its fallback.
func New(remote Remote, queue *auditqueue.Queue, opts ...Option) *Logger {
	ctx, cancel := context.WithCancel(context.Background())
	l := &Logger{
		remote:        remote,
		queue:         queue,
		breaker:       circuit.New("audit"),
		logger:        slog.Default(),
		tracer:        tracer.NewNoop(),
		flushInterval: defaultFlushInterval,
		drainTimeout:  defaultDrainTimeout,
		now:           time.Now,
		ctx:           ctx,
		cancel:        cancel,
	}
	for _, opt := range opts {
		opt(l)
	}
	l.metrics.SetQueueDepth(queue.Len())
	return l
}

// Record persists entry and returns its id. It never fails: when the remote
// is unreachable the entry is queued under a local id.
func (l *Logger) Record(ctx context.Context, entry models.AuditEntry) string {
	ctx, span := l.tracer.Start(ctx, tracer.SpanAuditRecord,
		tracer.String(tracer.AttrBreakerState, l.breaker.State().String()),
	)
	defer span.End(nil)

	if entry.Timestamp.IsZero() {
		entry.Timestamp = l.now().UTC()
	}
	if entry.DataAccessed == nil {
		entry.DataAccessed = []string{}
	}

	if l.breaker.Allow() {
		id, err := l.persistRemote(ctx, entry)
		if err == nil {
			l.breaker.RecordSuccess()
			l.metrics.IncrementAuditRecord(metrics.RecordRemote)
			span.SetAttributes(tracer.String(tracer.AttrAuditID, id))
			return id
		}
		if change := l.breaker.RecordFailure(); change.Opened {
			l.logger.WarnContext(ctx, "audit remote marked offline, queueing entries",
				"breaker", l.breaker.Name(),
			)
		}
		l.logger.WarnContext(ctx, "audit remote persist failed, queueing entry",
			"query_fp", l.fingerprint.Fingerprint(entry.Query),
			"error", err,
		)
	}

	id := l.localID()
	if err := l.queue.Push(ctx, entry.WithID(id)); err != nil {
		// The entry is still held in memory and will be flushed.
		l.logger.ErrorContext(ctx, "failed to persist audit queue",
			"entry_id", id,
			"error", err,
		)
	}
	l.metrics.IncrementAuditRecord(metrics.RecordQueued)
	l.metrics.SetQueueDepth(l.queue.Len())
	span.AddEvent(tracer.EventAuditQueued)
	span.SetAttributes(
		tracer.String(tracer.AttrAuditID, id),
		tracer.Bool(tracer.AttrAuditLocal, true),
	)
	return id
}

func (l *Logger) persistRemote(ctx context.Context, entry models.AuditEntry) (string, error) {
	id, err := l.remote.Log(ctx, entry)
	if err != nil {
		return "", err
	}
	if id == "" {
		return "", fmt.Errorf("audit log returned no id: %w", sentinel.ErrBadResponse)
	}
	return id, nil
}

// localID is time- and randomness-based, e.g. local_1741080000000_3f2a9c1b7d4e.
func (l *Logger) localID() string {
	random := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	return fmt.Sprintf("%s%d_%s", models.LocalIDPrefix, l.now().UnixMilli(), random)
}

// Flush sends the whole queue in one batch. Concurrent calls share one
// attempt. The queue is only trimmed when the remote reports every entry as
// processed; any failure or short count leaves it untouched.
func (l *Logger) Flush(ctx context.Context) (FlushResult, error) {
	v, err, _ := l.flights.Do(flushKey, func() (any, error) {
		return l.flush(ctx)
	})
	res, _ := v.(FlushResult)
	return res, err
}

func (l *Logger) flush(ctx context.Context) (res FlushResult, err error) {
	batch := l.queue.Snapshot()
	res = FlushResult{Sent: batch.Len(), Remaining: batch.Len()}
	if batch.Len() == 0 {
		l.metrics.ObserveFlush(metrics.FlushEmpty, 0)
		return res, nil
	}

	ctx, span := l.tracer.Start(ctx, tracer.SpanAuditFlush, tracer.Int(tracer.AttrBatchSize, batch.Len()))
	defer func() { span.End(err) }()

	processed, err := l.remote.Batch(ctx, batch.Entries)
	if err != nil {
		l.breaker.RecordFailure()
		l.metrics.ObserveFlush(metrics.FlushFailure, batch.Len())
		l.logger.WarnContext(ctx, "audit flush failed, batch kept for next cycle",
			"batch_size", batch.Len(),
			"error", err,
		)
		return res, fmt.Errorf("flush audit queue: %w", err)
	}

	// The remote answered, so it is online even if it rejected part of the batch.
	l.breaker.RecordSuccess()
	res.Processed = processed
	span.SetAttributes(tracer.Int(tracer.AttrProcessed, processed))

	if processed != batch.Len() {
		l.metrics.ObserveFlush(metrics.FlushPartial, batch.Len())
		l.logger.WarnContext(ctx, "audit flush partially processed, batch kept for next cycle",
			"batch_size", batch.Len(),
			"processed", processed,
		)
		return res, fmt.Errorf("flush audit queue: %d of %d processed: %w", processed, batch.Len(), sentinel.ErrRejected)
	}

	if err := l.queue.Acknowledge(ctx, batch.Through); err != nil {
		l.logger.ErrorContext(ctx, "failed to persist audit queue after flush", "error", err)
	}
	res.Remaining = l.queue.Len()
	l.metrics.ObserveFlush(metrics.FlushSuccess, batch.Len())
	l.metrics.SetQueueDepth(res.Remaining)
	l.logger.InfoContext(ctx, "audit queue flushed",
		"batch_size", batch.Len(),
		"remaining", res.Remaining,
	)
	return res, nil
}

// Start flushes once immediately and then on every interval tick in a
// background goroutine, until Stop is called.
func (l *Logger) Start() {
	l.wg.Add(1)
	go l.run()
}

func (l *Logger) run() {
	defer l.wg.Done()

	l.flushOnce(l.ctx)

	ticker := time.NewTicker(l.flushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-l.ctx.Done():
			l.drain()
			return
		case <-ticker.C:
			l.flushOnce(l.ctx)
		}
	}
}

func (l *Logger) flushOnce(ctx context.Context) {
	// Errors are logged inside flush; the next tick retries.
	_, _ = l.Flush(ctx)
}

// drain makes one bounded final attempt so a clean shutdown does not leave
// entries waiting for the next process start.
func (l *Logger) drain() {
	if l.queue.Len() == 0 {
		return
	}
	l.logger.Info("draining audit queue", "pending", l.queue.Len())

	ctx, cancel := context.WithTimeout(context.Background(), l.drainTimeout)
	defer cancel()
	l.flushOnce(ctx)
}

// Stop ends the flush loop after a final drain attempt.
func (l *Logger) Stop(ctx context.Context) error {
	l.cancel()

	done := make(chan struct{})
	go func() {
		l.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Pending returns the number of entries awaiting remote confirmation.
func (l *Logger) Pending() int {
	return l.queue.Len()
}

// Online reports whether the remote is currently considered reachable.
func (l *Logger) Online() bool {
	return l.breaker.State() == circuit.StateClosed
}

// Logs reads audit records from the remote API.
func (l *Logger) Logs(ctx context.Context, filter models.AuditFilter) (models.AuditPage, error) {
	page, err := l.remote.Logs(ctx, filter)
	if err != nil {
		return models.AuditPage{}, fmt.Errorf("query audit logs: %w", err)
	}
	if page.Logs == nil {
		page.Logs = []models.AuditEntry{}
	}
	return page, nil
}

// Stats reads aggregate audit statistics from the remote API.
func (l *Logger) Stats(ctx context.Context, period models.StatsPeriod) (models.AuditStats, error) {
	stats, err := l.remote.Stats(ctx, period)
	if err != nil {
		return models.AuditStats{}, fmt.Errorf("query audit stats: %w", err)
	}
	return stats, nil
}
