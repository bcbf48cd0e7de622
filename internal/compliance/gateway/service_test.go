package gateway_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
	"golang.org/x/text/language"

	"miniminds/internal/compliance/classifier"
	"miniminds/internal/compliance/conversation"
	"miniminds/internal/compliance/escalation"
	"miniminds/internal/compliance/gateway"
	"miniminds/internal/compliance/gateway/mocks"
	"miniminds/internal/compliance/models"
	"miniminds/internal/platform/tracer"
	"miniminds/internal/sentinel"
	dErrors "miniminds/pkg/domain-errors"
	"miniminds/pkg/testutil"
)

const userAgent = "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1"

type GatewaySuite struct {
	suite.Suite
	ctrl        *gomock.Controller
	responder   *mocks.MockResponder
	audit       *mocks.MockAuditRecorder
	escalations *mocks.MockEscalationSubmitter
	history     *conversation.Store

	mu      sync.Mutex
	entries []models.AuditEntry
}

func TestGatewaySuite(t *testing.T) {
	suite.Run(t, new(GatewaySuite))
}

func (s *GatewaySuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.responder = mocks.NewMockResponder(s.ctrl)
	s.audit = mocks.NewMockAuditRecorder(s.ctrl)
	s.escalations = mocks.NewMockEscalationSubmitter(s.ctrl)
	s.history = conversation.New()
	s.entries = nil
}

func (s *GatewaySuite) newService(opts ...gateway.Option) *gateway.Service {
	opts = append([]gateway.Option{
		gateway.WithHistory(s.history),
		gateway.WithClock(func() time.Time { return testutil.FixedTime }),
	}, opts...)
	return gateway.New(classifier.New(), classifier.NewLocalizer(), s.responder, s.audit, s.escalations, opts...)
}

// captureAudit expects n audit records and stores them for inspection.
func (s *GatewaySuite) captureAudit(n int) {
	s.audit.EXPECT().Record(gomock.Any(), gomock.Any()).Times(n).
		DoAndReturn(func(_ context.Context, e models.AuditEntry) string {
			s.mu.Lock()
			defer s.mu.Unlock()
			s.entries = append(s.entries, e)
			return "audit-1"
		})
}

func (s *GatewaySuite) recorded() []models.AuditEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.AuditEntry(nil), s.entries...)
}

func (s *GatewaySuite) request(query string) gateway.QueryRequest {
	return gateway.QueryRequest{
		Query:     query,
		Language:  language.English,
		Principal: models.Principal{UserID: "parent-7", Role: models.RoleParent},
		SessionID: "session-1",
		ClientIP:  "203.0.113.10",
		UserAgent: userAgent,
	}
}

func (s *GatewaySuite) TestBlockedQuery() {
	svc := s.newService()
	s.captureAudit(1)

	res, err := svc.Query(context.Background(), s.request("Which child has allergies?"))
	svc.Wait()

	s.Require().NoError(err)
	s.False(res.Success)
	s.Equal(gateway.StateBlocked, res.State)
	s.Equal(models.CategoryBlocked, res.Classification.Category)
	s.Contains(res.Message, classifier.ReasonMedical)
	s.Contains(res.Message, classifier.AltMedical)

	entries := s.recorded()
	s.Require().Len(entries, 1)
	e := entries[0]
	s.True(e.WasBlocked)
	s.Equal(models.ResponseBlocked, e.ResponseType)
	s.Equal(models.RiskProhibited, e.RiskLevel)
	s.Equal(classifier.ReasonMedical, e.BlockedReason)
	s.Equal([]string{}, e.DataAccessed)
	s.False(e.ConsentVerified)
	s.Equal("parent-7", e.UserID)
	s.Equal("session-1", e.SessionID)
	s.Equal(testutil.FixedTime, e.Timestamp)
	s.Require().NotNil(e.Metadata)
	s.Equal(userAgent, e.Metadata.UserAgent)
	s.Equal("mobile", e.Metadata.Device)
}

func (s *GatewaySuite) TestBlockedQueryNeverReachesResponder() {
	svc := s.newService()
	s.captureAudit(1)
	s.responder.EXPECT().Query(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	_, err := svc.Query(context.Background(), s.request("What is her phone number?"))
	svc.Wait()

	s.Require().NoError(err)
}

func (s *GatewaySuite) TestBlockedMessageIsLocalized() {
	svc := s.newService()
	s.captureAudit(1)
	req := s.request("Which child has allergies?")
	req.Language = language.MustParse("fr-CA")

	res, err := svc.Query(context.Background(), req)
	svc.Wait()

	s.Require().NoError(err)
	s.Equal("fr", res.Language)
	s.True(strings.HasPrefix(res.Message, "Désolé"))
}

func (s *GatewaySuite) TestSafeQueryForwarded() {
	svc := s.newService()
	s.captureAudit(1)
	s.responder.EXPECT().Query(gomock.Any(), "What are the daycare hours?", gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, c models.Classification) (models.Answer, error) {
			s.Equal(models.CategorySafe, c.Category)
			return models.Answer{Message: "We are open 7am to 6pm."}, nil
		})

	res, err := svc.Query(context.Background(), s.request("  What are the daycare hours?  "))
	svc.Wait()

	s.Require().NoError(err)
	s.True(res.Success)
	s.Equal(gateway.StateAnswered, res.State)
	s.Equal("We are open 7am to 6pm.", res.Message)
	s.Equal(models.RiskMinimal, res.Classification.RiskLevel)

	e := s.recorded()[0]
	s.Equal(models.ResponseSuccess, e.ResponseType)
	s.Equal(models.CategorySafe, e.QueryCategory)
	s.Equal([]string{}, e.DataAccessed)
	s.True(e.ConsentVerified)
	s.False(e.WasBlocked)
	s.Equal("What are the daycare hours?", e.Query)
}

func (s *GatewaySuite) TestAggregateQueryRecordsDataAccessed() {
	svc := s.newService()
	s.captureAudit(1)
	data := json.RawMessage(`{"present":42}`)
	s.responder.EXPECT().Query(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(models.Answer{Message: "42 children are present.", Data: data}, nil)

	res, err := svc.Query(context.Background(), s.request("How many children are present today?"))
	svc.Wait()

	s.Require().NoError(err)
	s.True(res.Success)
	s.Equal(data, res.Data)
	s.Equal(models.CategoryAggregate, res.Classification.Category)

	e := s.recorded()[0]
	s.Equal(models.RiskLow, e.RiskLevel)
	s.Equal([]string{models.DataAggregateStatistics}, e.DataAccessed)
}

func (s *GatewaySuite) TestResponderFailure() {
	svc := s.newService()
	s.captureAudit(1)
	s.responder.EXPECT().Query(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(models.Answer{}, sentinel.ErrUnavailable)

	res, err := svc.Query(context.Background(), s.request("How many children are present today?"))
	svc.Wait()

	s.Require().NoError(err)
	s.False(res.Success)
	s.Equal(gateway.StateErrored, res.State)
	s.Equal(classifier.NewLocalizer().Text(classifier.KeyApology, language.English), res.Message)

	e := s.recorded()[0]
	s.Equal(models.ResponseError, e.ResponseType)
	s.Equal([]string{}, e.DataAccessed)
	s.False(e.ConsentVerified)
}

func (s *GatewaySuite) TestSmallTalkAnsweredWithoutResponder() {
	svc := s.newService()
	s.captureAudit(3)
	s.responder.EXPECT().Query(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
	loc := classifier.NewLocalizer()

	for query, key := range map[string]string{
		"Hello!":    classifier.KeyGreeting,
		"thank you": classifier.KeyThanks,
		"Goodbye.":  classifier.KeyFarewell,
	} {
		res, err := svc.Query(context.Background(), s.request(query))
		s.Require().NoError(err)
		s.True(res.Success, query)
		s.Equal(gateway.StateAnswered, res.State, query)
		s.Equal(loc.Text(key, language.English), res.Message, query)
	}
	svc.Wait()

	for _, e := range s.recorded() {
		s.Equal(models.ResponseSuccess, e.ResponseType)
		s.Equal([]string{}, e.DataAccessed)
	}
}

func (s *GatewaySuite) TestInvalidQueryIsRejectedWithoutAudit() {
	svc := s.newService(gateway.WithMaxQueryLength(10))
	s.audit.EXPECT().Record(gomock.Any(), gomock.Any()).Times(0)

	for _, query := range []string{"", "   \n\t", strings.Repeat("é", 11)} {
		_, err := svc.Query(context.Background(), s.request(query))
		s.True(dErrors.HasCode(err, dErrors.CodeValidation), "query %q", query)
	}
	svc.Wait()
	s.Empty(s.history.History("user:parent-7", "session-1"))
}

func (s *GatewaySuite) TestAnonymousPrincipal() {
	svc := s.newService()
	s.captureAudit(1)
	s.responder.EXPECT().Query(gomock.Any(), gomock.Any(), gomock.Any()).Return(models.Answer{Message: "ok"}, nil)
	req := s.request("What is the weekly menu?")
	req.Principal = models.Principal{}
	req.UserAgent = ""

	_, err := svc.Query(context.Background(), req)
	svc.Wait()

	s.Require().NoError(err)
	e := s.recorded()[0]
	s.Equal(models.AnonymousUserID, e.UserID)
	s.Equal(models.RoleParent, e.UserRole)
	s.Nil(e.Metadata)
	s.Len(s.history.History("ip:203.0.113.10", "session-1"), 2, "anonymous history is keyed by client IP")
	s.Empty(s.history.History("user:parent-7", "session-1"))
}

func (s *GatewaySuite) TestHistoryRecordsEveryOutcome() {
	svc := s.newService()
	s.captureAudit(2)
	s.responder.EXPECT().Query(gomock.Any(), gomock.Any(), gomock.Any()).Return(models.Answer{Message: "7am to 6pm"}, nil)

	_, err := svc.Query(context.Background(), s.request("Which child has allergies?"))
	s.Require().NoError(err)
	_, err = svc.Query(context.Background(), s.request("What are the daycare hours?"))
	s.Require().NoError(err)
	svc.Wait()

	turns := s.history.History("user:parent-7", "session-1")
	s.Require().Len(turns, 4)
	s.Equal(models.SpeakerUser, turns[0].Role)
	s.Equal("Which child has allergies?", turns[0].Content)
	s.True(turns[0].Blocked)
	s.Equal(models.SpeakerAssistant, turns[1].Role)
	s.True(turns[1].Blocked)
	s.Equal("What are the daycare hours?", turns[2].Content)
	s.Equal("7am to 6pm", turns[3].Content)
	s.False(turns[3].Blocked)
}

func (s *GatewaySuite) TestAuditSurvivesRequestCancellation() {
	svc := s.newService()
	release := make(chan struct{})
	s.audit.EXPECT().Record(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, _ models.AuditEntry) string {
			<-release
			s.NoError(ctx.Err())
			return "audit-1"
		})

	ctx, cancel := context.WithCancel(context.Background())
	res, err := svc.Query(ctx, s.request("Which child has allergies?"))
	cancel()
	close(release)
	svc.Wait()

	s.Require().NoError(err)
	s.Equal(gateway.StateBlocked, res.State)
}

func (s *GatewaySuite) TestEscalateBestEffort() {
	svc := s.newService()
	s.audit.EXPECT().Record(gomock.Any(), gomock.Any()).Times(0)
	s.escalations.EXPECT().Submit(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req models.EscalationRequest) (models.EscalationResult, error) {
			s.Equal("parent-7", req.UserID)
			s.Equal("Which child has allergies?", req.OriginalQuery)
			s.Equal(testutil.FixedTime, req.Timestamp)
			return models.EscalationResult{EscalationID: "esc-1", Message: "We will call you."}, nil
		})

	res, err := svc.Escalate(context.Background(), s.escalateRequest())
	svc.Wait()

	s.Require().NoError(err)
	s.Equal("esc-1", res.EscalationID)
	s.Equal("We will call you.", res.Message)
}

func (s *GatewaySuite) TestEscalateAuditedRecordsEntryEvenWhenLocal() {
	svc := s.newService(gateway.WithEscalationPolicy(escalation.PolicyAudited))
	s.captureAudit(1)
	s.escalations.EXPECT().Submit(gomock.Any(), gomock.Any()).
		Return(models.EscalationResult{EscalationID: "esc_local_1_abc", Message: escalation.FallbackMessage, Local: true}, nil)
	req := s.escalateRequest()
	req.Language = language.French

	res, err := svc.Escalate(context.Background(), req)
	svc.Wait()

	s.Require().NoError(err)
	s.True(res.Local)
	s.Equal(classifier.NewLocalizer().Text(classifier.KeyEscalationRecorded, language.French), res.Message)

	e := s.recorded()[0]
	s.Equal(models.ResponseEscalated, e.ResponseType)
	s.Equal("Which child has allergies?", e.Query)
	s.Equal(models.CategoryBlocked, e.QueryCategory)
	s.True(e.WasBlocked)
	s.Equal([]string{}, e.DataAccessed)
}

func (s *GatewaySuite) TestEscalateValidationErrorIsReturned() {
	svc := s.newService(gateway.WithEscalationPolicy(escalation.PolicyAudited))
	s.audit.EXPECT().Record(gomock.Any(), gomock.Any()).Times(0)
	s.escalations.EXPECT().Submit(gomock.Any(), gomock.Any()).
		Return(models.EscalationResult{}, dErrors.New(dErrors.CodeValidation, "invalid priority"))

	_, err := svc.Escalate(context.Background(), s.escalateRequest())
	svc.Wait()

	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
}

func (s *GatewaySuite) escalateRequest() gateway.EscalateRequest {
	return gateway.EscalateRequest{
		OriginalQuery:     "Which child has allergies?",
		Reason:            "Need allergy details for a birthday party",
		Priority:          models.PriorityMedium,
		ContactPreference: models.ContactEmail,
		Language:          language.English,
		Principal:         models.Principal{UserID: "parent-7", Role: models.RoleParent},
		SessionID:         "session-1",
	}
}

func TestConcurrentQueriesEachRecordOnce(t *testing.T) {
	ctrl := gomock.NewController(t)
	responder := mocks.NewMockResponder(ctrl)
	audit := mocks.NewMockAuditRecorder(ctrl)
	responder.EXPECT().Query(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(models.Answer{}, errors.New("down")).AnyTimes()

	var mu sync.Mutex
	seen := map[string]int{}
	audit.EXPECT().Record(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, e models.AuditEntry) string {
			mu.Lock()
			defer mu.Unlock()
			seen[e.SessionID]++
			return "id"
		}).Times(20)

	svc := gateway.New(classifier.New(), classifier.NewLocalizer(), responder, audit,
		mocks.NewMockEscalationSubmitter(ctrl))

	result := testutil.RunConcurrent(20, func(idx int) error {
		_, err := svc.Query(context.Background(), gateway.QueryRequest{
			Query:     "How many children are present today?",
			SessionID: fmt.Sprintf("s%d", idx),
		})
		return err
	})
	svc.Wait()

	require.Equal(t, int32(20), result.Successes)
	assert.Len(t, seen, 20)
	for _, n := range seen {
		assert.Equal(t, 1, n)
	}
}

// stateRecorder collects the lifecycle states entered on every span.
type stateRecorder struct {
	mu     sync.Mutex
	states []gateway.State
}

func (r *stateRecorder) Start(ctx context.Context, _ string, _ ...tracer.Attribute) (context.Context, tracer.Span) {
	return ctx, r
}

func (r *stateRecorder) End(error)                         {}
func (r *stateRecorder) SetAttributes(...tracer.Attribute) {}

func (r *stateRecorder) AddEvent(name string, attrs ...tracer.Attribute) {
	if name != tracer.EventStateEntered {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range attrs {
		if a.Key == tracer.AttrState {
			r.states = append(r.states, gateway.State(a.Value.(string)))
		}
	}
}

func (s *GatewaySuite) TestLifecycleTransitionsAreTraced() {
	s.Run("forwarded", func() {
		rec := &stateRecorder{}
		svc := s.newService(gateway.WithTracer(rec))
		s.captureAudit(1)
		s.responder.EXPECT().Query(gomock.Any(), gomock.Any(), gomock.Any()).Return(models.Answer{Message: "ok"}, nil)

		_, err := svc.Query(context.Background(), s.request("What is the weekly menu?"))
		svc.Wait()

		s.Require().NoError(err)
		s.Equal([]gateway.State{gateway.StateReceived, gateway.StateClassified, gateway.StateForwarded, gateway.StateAnswered}, rec.states)
		s.True(rec.states[len(rec.states)-1].IsTerminal())
	})

	s.Run("blocked", func() {
		rec := &stateRecorder{}
		svc := s.newService(gateway.WithTracer(rec))
		s.captureAudit(1)

		_, err := svc.Query(context.Background(), s.request("What is her phone number?"))
		svc.Wait()

		s.Require().NoError(err)
		s.Equal([]gateway.State{gateway.StateReceived, gateway.StateClassified, gateway.StateBlocked}, rec.states)
	})
}

func TestStateIsTerminal(t *testing.T) {
	assert.True(t, gateway.StateBlocked.IsTerminal())
	assert.True(t, gateway.StateAnswered.IsTerminal())
	assert.True(t, gateway.StateErrored.IsTerminal())
	assert.False(t, gateway.StateReceived.IsTerminal())
	assert.False(t, gateway.StateClassified.IsTerminal())
	assert.False(t, gateway.StateForwarded.IsTerminal())
}
