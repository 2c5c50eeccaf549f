package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vdp-support-service/internal/domain/models"
	"vdp-support-service/internal/domain/wizard"
)

type stubTickets struct {
	mu        sync.Mutex
	result    SubmissionResult
	submitted []models.SupportTicket
	release   chan struct{}
}

func (s *stubTickets) Submit(ctx context.Context, ticket models.SupportTicket) SubmissionResult {
	if s.release != nil {
		<-s.release
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.submitted = append(s.submitted, ticket)
	return s.result
}

func (s *stubTickets) ListTickets(ctx context.Context) ([]models.SupportTicket, error) {
	return nil, nil
}

func (s *stubTickets) SheetURL() string { return "" }

type stubSuggestions struct {
	tips    []models.TroubleshootingTip
	release chan struct{}
}

func (s *stubSuggestions) GetTroubleshootingTips(ctx context.Context, description string, issueType models.IssueType) []models.TroubleshootingTip {
	if s.release != nil {
		<-s.release
	}
	return s.tips
}

func newTestIntake(tickets *stubTickets, suggestions *stubSuggestions) *IntakeService {
	roster := NewRosterServiceWithRecords([]models.ResidentRecord{
		{Building: "Tower 1", FlatNo: "101", FirstName: "Jonathan", LastName: "Smith"},
	})
	svc := NewIntakeService(NewMemorySessionStore(time.Hour), roster, tickets, suggestions)
	svc.now = func() time.Time { return time.Date(2026, 10, 6, 15, 4, 5, 0, time.Local) }
	svc.newID = func() string { return "VDP-TEST01" }
	return svc
}

func advanceToIssueDetails(t *testing.T, svc *IntakeService) string {
	t.Helper()
	ctx := context.Background()
	view, err := svc.CreateSession(ctx)
	require.NoError(t, err)

	_, err = svc.UpdateFields(ctx, view.ID, map[string]string{"towerBlock": "tower 1", "unitNumber": "101"})
	require.NoError(t, err)
	view, err = svc.Next(ctx, view.ID)
	require.NoError(t, err)
	require.True(t, view.Matched)

	_, err = svc.UpdateFields(ctx, view.ID, map[string]string{"contactNumber": "9876543210"})
	require.NoError(t, err)
	view, err = svc.Next(ctx, view.ID)
	require.NoError(t, err)
	require.Equal(t, wizard.StepIssueDetails, view.Step)
	return view.ID
}

func TestIntake_CreateAndGet(t *testing.T) {
	svc := newTestIntake(&stubTickets{}, nil)
	view, err := svc.CreateSession(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, view.ID)
	assert.Equal(t, wizard.StepLocation, view.Step)
	assert.Equal(t, "location", view.StepName)

	got, err := svc.GetSession(context.Background(), view.ID)
	require.NoError(t, err)
	assert.Equal(t, view, got)

	_, err = svc.GetSession(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestIntake_NextMatchesRosterAndMasksName(t *testing.T) {
	svc := newTestIntake(&stubTickets{}, nil)
	ctx := context.Background()
	view, _ := svc.CreateSession(ctx)

	_, err := svc.UpdateFields(ctx, view.ID, map[string]string{"towerBlock": " tower 1 ", "unitNumber": "101"})
	require.NoError(t, err)
	view, err = svc.Next(ctx, view.ID)
	require.NoError(t, err)
	assert.True(t, view.Matched)
	assert.Equal(t, "JONA...TH", view.Form.FullName)
}

func TestIntake_ValidationErrorIsPersisted(t *testing.T) {
	svc := newTestIntake(&stubTickets{}, nil)
	ctx := context.Background()
	view, _ := svc.CreateSession(ctx)

	view, err := svc.Next(ctx, view.ID)
	var ve *wizard.ValidationError
	require.True(t, errors.As(err, &ve))
	require.NotNil(t, view)
	assert.Equal(t, wizard.MsgLocationRequired, view.Error)

	stored, err := svc.GetSession(ctx, view.ID)
	require.NoError(t, err)
	assert.Equal(t, wizard.MsgLocationRequired, stored.Error)
}

func TestIntake_UpdateFieldsRejectsUnknownOrInvalid(t *testing.T) {
	svc := newTestIntake(&stubTickets{}, nil)
	ctx := context.Background()
	view, _ := svc.CreateSession(ctx)

	_, err := svc.UpdateFields(ctx, view.ID, map[string]string{"towerBlock": "T1", "isAdmin": "true"})
	assert.ErrorIs(t, err, wizard.ErrUnknownField)

	_, err = svc.UpdateFields(ctx, view.ID, map[string]string{"urgency": "asap"})
	assert.ErrorIs(t, err, wizard.ErrInvalidValue)

	stored, _ := svc.GetSession(ctx, view.ID)
	assert.Empty(t, stored.Form.TowerBlock, "rejected update is not saved")
}

func TestIntake_BackClampsAtLocation(t *testing.T) {
	svc := newTestIntake(&stubTickets{}, nil)
	view, _ := svc.CreateSession(context.Background())
	view, err := svc.Back(context.Background(), view.ID)
	require.NoError(t, err)
	assert.Equal(t, wizard.StepLocation, view.Step)
}

func TestIntake_SubmitResetsWizard(t *testing.T) {
	tickets := &stubTickets{result: SubmissionResult{Status: SubmissionDispatched}}
	svc := newTestIntake(tickets, nil)
	ctx := context.Background()
	id := advanceToIssueDetails(t, svc)

	_, err := svc.UpdateFields(ctx, id, map[string]string{"description": "Screen is blank", "issueType": "VDP"})
	require.NoError(t, err)

	outcome, err := svc.Submit(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "VDP-TEST01", outcome.TicketID)
	assert.Equal(t, SubmissionDispatched, outcome.Status)
	assert.Equal(t, wizard.StepLocation, outcome.Session.Step)
	assert.Equal(t, models.UrgencyMedium, outcome.Session.Form.Urgency)
	assert.False(t, outcome.Session.Matched)

	require.Len(t, tickets.submitted, 1)
	sent := tickets.submitted[0]
	assert.Equal(t, "JONA...TH", sent.FullName)
	assert.Equal(t, "TOWER 1", sent.TowerBlock)
	assert.Equal(t, "10/6/2026, 3:04:05 PM", sent.SubmittedAt)
}

func TestIntake_SubmitFailureKeepsForm(t *testing.T) {
	tickets := &stubTickets{result: SubmissionResult{Status: SubmissionFailed, Err: errors.New("refused")}}
	svc := newTestIntake(tickets, nil)
	ctx := context.Background()
	id := advanceToIssueDetails(t, svc)
	_, err := svc.UpdateFields(ctx, id, map[string]string{"description": "Card reader dead"})
	require.NoError(t, err)

	outcome, err := svc.Submit(ctx, id)
	assert.ErrorIs(t, err, ErrSubmissionFailed)
	assert.Equal(t, SubmissionFailedMessage, err.Error())
	require.NotNil(t, outcome.Session)
	assert.Equal(t, wizard.StepIssueDetails, outcome.Session.Step)
	assert.Equal(t, "Card reader dead", outcome.Session.Form.Description)
	assert.False(t, outcome.Session.Submitting)
}

func TestIntake_SubmitRequiresDescription(t *testing.T) {
	tickets := &stubTickets{result: SubmissionResult{Status: SubmissionDispatched}}
	svc := newTestIntake(tickets, nil)
	id := advanceToIssueDetails(t, svc)

	outcome, err := svc.Submit(context.Background(), id)
	var ve *wizard.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, wizard.MsgDescriptionRequired, outcome.Session.Error)
	assert.Empty(t, tickets.submitted)
}

func TestIntake_DoubleSubmitIsBusy(t *testing.T) {
	tickets := &stubTickets{result: SubmissionResult{Status: SubmissionDispatched}, release: make(chan struct{})}
	svc := newTestIntake(tickets, nil)
	ctx := context.Background()
	id := advanceToIssueDetails(t, svc)
	_, err := svc.UpdateFields(ctx, id, map[string]string{"description": "Screen is blank"})
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, err := svc.Submit(ctx, id)
		done <- err
	}()

	require.Eventually(t, func() bool {
		v, err := svc.GetSession(ctx, id)
		return err == nil && v.Submitting
	}, time.Second, 5*time.Millisecond)

	_, err = svc.Submit(ctx, id)
	assert.ErrorIs(t, err, ErrIntakeBusy)

	// 提交进行中会话仍可浏览
	view, err := svc.Back(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, wizard.StepResidentIdentity, view.Step)

	close(tickets.release)
	require.NoError(t, <-done)
}

func TestIntake_Analyze(t *testing.T) {
	suggestions := &stubSuggestions{tips: []models.TroubleshootingTip{{Title: "Check power", Suggestion: "Plug it in."}}}
	svc := newTestIntake(&stubTickets{}, suggestions)
	ctx := context.Background()
	view, _ := svc.CreateSession(ctx)

	_, err := svc.Analyze(ctx, view.ID)
	assert.ErrorIs(t, err, ErrAnalysisUnavailable)

	_, err = svc.UpdateFields(ctx, view.ID, map[string]string{"description": "Display flickers at night"})
	require.NoError(t, err)
	view, err = svc.Analyze(ctx, view.ID)
	require.NoError(t, err)
	assert.Len(t, view.Tips, 1)
	assert.False(t, view.Analyzing)
}

func TestIntake_ConcurrentAnalyzeIsBusy(t *testing.T) {
	suggestions := &stubSuggestions{release: make(chan struct{})}
	svc := newTestIntake(&stubTickets{}, suggestions)
	ctx := context.Background()
	view, _ := svc.CreateSession(ctx)
	_, err := svc.UpdateFields(ctx, view.ID, map[string]string{"description": "Display flickers at night"})
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, err := svc.Analyze(ctx, view.ID)
		done <- err
	}()
	require.Eventually(t, func() bool {
		v, err := svc.GetSession(ctx, view.ID)
		return err == nil && v.Analyzing
	}, time.Second, 5*time.Millisecond)

	_, err = svc.Analyze(ctx, view.ID)
	assert.ErrorIs(t, err, ErrIntakeBusy)

	close(suggestions.release)
	require.NoError(t, <-done)
	assert.Equal(t, 0, svc.locks.size())
}
