package auditlog

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"miniminds/internal/compliance/auditlog/mocks"
	"miniminds/internal/compliance/auditqueue"
	"miniminds/internal/compliance/metrics"
	"miniminds/internal/compliance/models"
	"miniminds/internal/platform/kvstore"
	"miniminds/internal/sentinel"
	"miniminds/pkg/platform/circuit"
	fixtures "miniminds/pkg/testutil"
)

var errRemoteDown = errors.New("connection refused")

type LoggerSuite struct {
	suite.Suite
	ctrl    *gomock.Controller
	remote  *mocks.MockRemote
	queue   *auditqueue.Queue
	metrics *metrics.Metrics
	logger  *Logger
	now     time.Time
}

func (s *LoggerSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.remote = mocks.NewMockRemote(s.ctrl)
	s.now = fixtures.FixedTime

	q, err := auditqueue.Open(context.Background(), kvstore.Scope(kvstore.NewInMemory(), "compliance"))
	s.Require().NoError(err)
	s.queue = q
	s.metrics = metrics.New(prometheus.NewRegistry())
	s.logger = s.newLogger()
}

func (s *LoggerSuite) newLogger(opts ...Option) *Logger {
	base := []Option{
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithMetrics(s.metrics),
		WithClock(func() time.Time { return s.now }),
		WithBreaker(circuit.New("audit", circuit.WithFailureThreshold(3), circuit.WithCooldown(time.Hour))),
	}
	return New(s.remote, s.queue, append(base, opts...)...)
}

func (s *LoggerSuite) TearDownTest() {
	s.ctrl.Finish()
}

func TestLoggerSuite(t *testing.T) {
	suite.Run(t, new(LoggerSuite))
}

func (s *LoggerSuite) TestRecord_RemoteSuccessReturnsServerID() {
	entry := fixtures.NewEntryBuilder().Build()
	s.remote.EXPECT().Log(gomock.Any(), entry).Return("audit-123", nil)

	id := s.logger.Record(context.Background(), entry)

	s.Equal("audit-123", id)
	s.False(models.IsLocalID(id))
	s.Equal(0, s.logger.Pending())
	s.Equal(1.0, testutil.ToFloat64(s.metrics.AuditRecords.WithLabelValues(metrics.RecordRemote)))
}

func (s *LoggerSuite) TestRecord_StampsTimestampAndDataAccessed() {
	entry := fixtures.NewEntryBuilder().WithTimestamp(time.Time{}).Build()
	entry.DataAccessed = nil

	s.remote.EXPECT().Log(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, got models.AuditEntry) (string, error) {
			s.Equal(s.now, got.Timestamp)
			s.NotNil(got.DataAccessed)
			return "audit-1", nil
		})

	s.logger.Record(context.Background(), entry)
}

func (s *LoggerSuite) TestRecord_RemoteFailureQueuesUnderLocalID() {
	entry := fixtures.NewEntryBuilder().Build()
	s.remote.EXPECT().Log(gomock.Any(), gomock.Any()).Return("", errRemoteDown)

	id := s.logger.Record(context.Background(), entry)

	s.True(models.IsLocalID(id))
	s.True(strings.HasPrefix(id, "local_1772443800000_"), id)
	s.Len(strings.TrimPrefix(id, "local_1772443800000_"), 12)

	queued := s.queue.Snapshot().Entries
	s.Require().Len(queued, 1)
	s.Equal(entry.WithID(id), queued[0])
	s.Equal(1.0, testutil.ToFloat64(s.metrics.QueueDepth))
}

func (s *LoggerSuite) TestRecord_EmptyServerIDIsAFailure() {
	s.remote.EXPECT().Log(gomock.Any(), gomock.Any()).Return("", nil)

	id := s.logger.Record(context.Background(), fixtures.NewEntryBuilder().Build())

	s.True(models.IsLocalID(id))
	s.Equal(1, s.logger.Pending())
}

func (s *LoggerSuite) TestRecord_OfflineSkipsRemote() {
	s.remote.EXPECT().Log(gomock.Any(), gomock.Any()).Return("", errRemoteDown).Times(3)

	for range 5 {
		s.logger.Record(context.Background(), fixtures.NewEntryBuilder().Build())
	}

	s.False(s.logger.Online())
	s.Equal(5, s.logger.Pending(), "entries four and five are queued without a remote attempt")
}

func (s *LoggerSuite) TestFlush_EmptyQueueSkipsRemote() {
	res, err := s.logger.Flush(context.Background())

	s.Require().NoError(err)
	s.Equal(FlushResult{}, res)
}

func (s *LoggerSuite) TestFlush_SuccessClearsQueue() {
	ctx := context.Background()
	for _, e := range fixtures.Entries(3) {
		s.Require().NoError(s.queue.Push(ctx, e.WithID("local_x")))
	}
	s.remote.EXPECT().Batch(gomock.Any(), gomock.Len(3)).Return(3, nil)

	res, err := s.logger.Flush(ctx)

	s.Require().NoError(err)
	s.Equal(FlushResult{Sent: 3, Processed: 3, Remaining: 0}, res)
	s.Equal(0, s.queue.Len())
}

func (s *LoggerSuite) TestFlush_FailureLeavesQueueUnchanged() {
	ctx := context.Background()
	for _, e := range fixtures.Entries(3) {
		s.Require().NoError(s.queue.Push(ctx, e))
	}
	before := s.queue.Snapshot()

	s.remote.EXPECT().Batch(gomock.Any(), gomock.Any()).Return(0, errRemoteDown)

	_, err := s.logger.Flush(ctx)

	s.Require().ErrorIs(err, errRemoteDown)
	s.Equal(before, s.queue.Snapshot())
}

func (s *LoggerSuite) TestFlush_ShortCountIsTreatedAsFailure() {
	ctx := context.Background()
	for _, e := range fixtures.Entries(3) {
		s.Require().NoError(s.queue.Push(ctx, e))
	}
	before := s.queue.Snapshot()

	s.remote.EXPECT().Batch(gomock.Any(), gomock.Any()).Return(2, nil)

	res, err := s.logger.Flush(ctx)

	s.Require().ErrorIs(err, sentinel.ErrRejected)
	s.Equal(2, res.Processed)
	s.Equal(before, s.queue.Snapshot(), "no partial acknowledgment")
	s.Equal(1.0, testutil.ToFloat64(s.metrics.FlushResults.WithLabelValues(metrics.FlushPartial)))
}

// Three consecutive remote failures while the remote is down leave exactly
// three entries queued; one flush after recovery empties the queue.
func (s *LoggerSuite) TestOutageThenRecovery() {
	ctx := context.Background()
	entries := fixtures.Entries(3)

	s.remote.EXPECT().Log(gomock.Any(), gomock.Any()).Return("", errRemoteDown).Times(3)
	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, s.logger.Record(ctx, e))
	}
	s.Require().Equal(3, s.logger.Pending())
	s.False(s.logger.Online())

	var received []models.AuditEntry
	s.remote.EXPECT().Batch(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, batch []models.AuditEntry) (int, error) {
			received = batch
			return len(batch), nil
		})

	res, err := s.logger.Flush(ctx)

	s.Require().NoError(err)
	s.Equal(3, res.Processed)
	s.Equal(0, s.logger.Pending())
	s.True(s.logger.Online(), "a successful flush brings the remote back online")

	// Entries round-trip unchanged apart from the identifier.
	s.Require().Len(received, 3)
	for i, got := range received {
		s.Equal(ids[i], got.ID)
		s.Equal(entries[i], got.WithID(""))
	}
}

func (s *LoggerSuite) TestLogsAndStatsReadThrough() {
	ctx := context.Background()
	filter := models.AuditFilter{UserID: "parent-1", Page: 1, PageSize: 20}
	s.remote.EXPECT().Logs(gomock.Any(), filter).Return(models.AuditPage{Total: 0}, nil)
	s.remote.EXPECT().Stats(gomock.Any(), models.PeriodDay).Return(models.AuditStats{TotalQueries: 4}, nil)

	page, err := s.logger.Logs(ctx, filter)
	s.Require().NoError(err)
	s.NotNil(page.Logs)

	stats, err := s.logger.Stats(ctx, models.PeriodDay)
	s.Require().NoError(err)
	s.Equal(4, stats.TotalQueries)
}

func (s *LoggerSuite) TestLogsPropagatesRemoteError() {
	s.remote.EXPECT().Logs(gomock.Any(), gomock.Any()).Return(models.AuditPage{}, sentinel.ErrUnavailable)

	_, err := s.logger.Logs(context.Background(), models.AuditFilter{})

	s.ErrorIs(err, sentinel.ErrUnavailable)
}

func (s *LoggerSuite) TestStartFlushesImmediatelyAndStopDrains() {
	ctx := context.Background()
	s.Require().NoError(s.queue.Push(ctx, fixtures.NewEntryBuilder().WithID("local_1").Build()))

	flushed := make(chan struct{})
	first := s.remote.EXPECT().Batch(gomock.Any(), gomock.Len(1)).DoAndReturn(
		func(context.Context, []models.AuditEntry) (int, error) {
			close(flushed)
			return 0, errRemoteDown
		})
	s.remote.EXPECT().Batch(gomock.Any(), gomock.Len(1)).Return(1, nil).After(first)

	l := s.newLogger(WithFlushInterval(time.Hour))
	l.Start()

	select {
	case <-flushed:
	case <-time.After(2 * time.Second):
		s.FailNow("startup flush did not run")
	}

	stopCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	s.Require().NoError(l.Stop(stopCtx))
	s.Equal(0, l.Pending(), "final drain sends what the startup flush could not")
}

func TestFlushCoalescesConcurrentCalls(t *testing.T) {
	ctrl := gomock.NewController(t)
	remote := mocks.NewMockRemote(ctrl)
	ctx := context.Background()
	q, err := auditqueue.Open(ctx, kvstore.Scope(kvstore.NewInMemory(), "compliance"))
	require.NoError(t, err)
	require.NoError(t, q.Push(ctx, fixtures.NewEntryBuilder().Build()))

	release := make(chan struct{})
	entered := make(chan struct{})
	remote.EXPECT().Batch(gomock.Any(), gomock.Any()).DoAndReturn(
		func(context.Context, []models.AuditEntry) (int, error) {
			close(entered)
			<-release
			return 1, nil
		}).Times(1)

	l := New(remote, q, WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))

	var wg sync.WaitGroup
	results := make([]FlushResult, 5)
	wg.Add(1)
	go func() {
		defer wg.Done()
		results[0], _ = l.Flush(ctx)
	}()
	<-entered
	for i := 1; i < 5; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = l.Flush(ctx)
		}(i)
	}
	// Give the followers time to join the in-flight call.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	for _, r := range results {
		assert.Equal(t, 1, r.Processed)
	}
	assert.Equal(t, 0, q.Len())
}
