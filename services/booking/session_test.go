package booking

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"vltava/models"
	"vltava/services/monitoring"
	"vltava/services/scheduling"

	"go.uber.org/zap"
)

// memSessions is an in-memory SessionStore.
type memSessions struct {
	mu       sync.Mutex
	sessions map[string]models.BookingSession
}

func newMemSessions() *memSessions {
	return &memSessions{sessions: map[string]models.BookingSession{}}
}

func (s *memSessions) Load(ctx context.Context, sessionID string) (*models.BookingSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return &session, nil
}

func (s *memSessions) Save(ctx context.Context, session *models.BookingSession, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.SessionID] = *session
	return nil
}

func (s *memSessions) Delete(ctx context.Context, sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
}

func sessionFixture() (*SessionService, *fakeProvider, *memSessions) {
	provider := &fakeProvider{}
	store := newMemSessions()
	monitor := monitoring.New(monitoring.Config{})
	scheduler := scheduling.NewService(provider, monitor, zap.NewNop(), 2*time.Second)
	submission := &SubmissionService{
		Engine: NewEngine(Rules{LeadTime: time.Hour, MaxAdvanceDays: 365}),
		Tours: &fakeTours{tours: map[string]models.Tour{
			"prague-castle": {
				ID:            "prague-castle",
				Name:          "Prague Castle Tour",
				OperatingMask: models.EveryDay,
				MaxGroupSize:  8,
				BasePrice:     45,
				Currency:      "EUR",
			},
		}},
		Drafts:    newMemDrafts(),
		Scheduler: scheduler,
		Replay:    &fakeReplay{},
		Logger:    zap.NewNop(),
	}
	svc := &SessionService{
		Cache:      store,
		Tours:      submission.Tours,
		Engine:     submission.Engine,
		Scheduler:  scheduler,
		Submission: submission,
		Monitor:    monitor,
		Logger:     zap.NewNop(),
		TTL:        30 * time.Minute,
	}
	return svc, provider, store
}

func validSchedule() ScheduleInput {
	return ScheduleInput{
		Date:      time.Now().AddDate(0, 0, 7).Format(models.DateLayout),
		StartTime: "10:00",
		GroupSize: 2,
	}
}

func TestSessionWalksTheHappyPath(t *testing.T) {
	svc, _, _ := sessionFixture()
	ctx := context.Background()

	session, err := svc.Start(ctx, "prague-castle")
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if session.Step != models.StepSchedule {
		t.Fatalf("Step = %q, want schedule", session.Step)
	}

	session, ruleErrs, err := svc.UpdateSchedule(ctx, session.SessionID, validSchedule())
	if err != nil || len(ruleErrs) > 0 {
		t.Fatalf("UpdateSchedule: %v %v", err, ruleErrs)
	}
	if session.Step != models.StepCustomer {
		t.Fatalf("Step = %q, want customer", session.Step)
	}
	if session.Availability == nil || !session.Availability.Available {
		t.Error("availability result not attached to the session")
	}
	date, _ := time.Parse(models.DateLayout, session.Request.Date)
	want := QuotePrice(models.Tour{BasePrice: 45}, 2, date)
	if session.Request.TotalPrice != want {
		t.Errorf("TotalPrice = %v, want %v", session.Request.TotalPrice, want)
	}

	session, ruleErrs, err = svc.UpdateCustomer(ctx, session.SessionID, CustomerInput{
		Customer: validRequest().Customer,
	})
	if err != nil || len(ruleErrs) > 0 {
		t.Fatalf("UpdateCustomer: %v %v", err, ruleErrs)
	}
	if session.Step != models.StepReview {
		t.Fatalf("Step = %q, want review", session.Step)
	}

	session, outcome, err := svc.Confirm(ctx, session.SessionID)
	if err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	if outcome.Confirmation == nil {
		t.Fatalf("outcome = %+v, want confirmation", outcome)
	}
	if session.Step != models.StepConfirmed {
		t.Errorf("Step = %q, want confirmed", session.Step)
	}
}

func TestSessionRejectsOutOfOrderSteps(t *testing.T) {
	svc, _, _ := sessionFixture()
	ctx := context.Background()

	session, err := svc.Start(ctx, "prague-castle")
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	// Customer details before the schedule step.
	_, _, err = svc.UpdateCustomer(ctx, session.SessionID, CustomerInput{Customer: validRequest().Customer})
	var stateErr *SessionStateError
	if !errors.As(err, &stateErr) {
		t.Errorf("UpdateCustomer at schedule step = %v, want SessionStateError", err)
	}

	// Confirm before review.
	_, _, err = svc.Confirm(ctx, session.SessionID)
	if !errors.As(err, &stateErr) {
		t.Errorf("Confirm at schedule step = %v, want SessionStateError", err)
	}

	// Back from the first step.
	_, err = svc.Back(ctx, session.SessionID)
	if !errors.As(err, &stateErr) {
		t.Errorf("Back at schedule step = %v, want SessionStateError", err)
	}
}

func TestSessionForbidsBackAndCancelWhileSubmitting(t *testing.T) {
	svc, _, store := sessionFixture()
	ctx := context.Background()

	session, err := svc.Start(ctx, "prague-castle")
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	session.Step = models.StepSubmitting
	if err := store.Save(ctx, session, time.Minute); err != nil {
		t.Fatal(err)
	}

	var stateErr *SessionStateError
	if _, err := svc.Back(ctx, session.SessionID); !errors.As(err, &stateErr) {
		t.Errorf("Back while submitting = %v, want SessionStateError", err)
	}
	if err := svc.Cancel(ctx, session.SessionID); !errors.As(err, &stateErr) {
		t.Errorf("Cancel while submitting = %v, want SessionStateError", err)
	}
}

func TestStaleAvailabilityResponseIsDropped(t *testing.T) {
	svc, provider, store := sessionFixture()
	ctx := context.Background()

	session, err := svc.Start(ctx, "prague-castle")
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	sessionID := session.SessionID

	// While the availability call is in flight, a concurrent edit bumps the
	// session's sequence, superseding this check.
	provider.onAvailability = func() {
		s, err := store.Load(ctx, sessionID)
		if err != nil {
			t.Fatal(err)
		}
		s.AvailabilitySeq++
		if err := store.Save(ctx, s, time.Minute); err != nil {
			t.Fatal(err)
		}
	}

	session, ruleErrs, err := svc.UpdateSchedule(ctx, sessionID, validSchedule())
	if err != nil || len(ruleErrs) > 0 {
		t.Fatalf("UpdateSchedule: %v %v", err, ruleErrs)
	}
	if session.Availability != nil {
		t.Error("superseded availability response must be discarded")
	}
	if session.Step != models.StepSchedule {
		t.Errorf("Step = %q, want the session left at schedule", session.Step)
	}
}

func TestConfirmWhileOfflineReturnsToReviewWithDraft(t *testing.T) {
	svc, provider, _ := sessionFixture()
	ctx := context.Background()

	session, err := svc.Start(ctx, "prague-castle")
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if _, _, err := svc.UpdateSchedule(ctx, session.SessionID, validSchedule()); err != nil {
		t.Fatalf("UpdateSchedule: %v", err)
	}
	if _, _, err := svc.UpdateCustomer(ctx, session.SessionID, CustomerInput{Customer: validRequest().Customer}); err != nil {
		t.Fatalf("UpdateCustomer: %v", err)
	}

	provider.offline = true
	session, outcome, err := svc.Confirm(ctx, session.SessionID)
	if err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	if !outcome.Deferred {
		t.Fatalf("outcome = %+v, want deferred", outcome)
	}
	if session.Step != models.StepReview {
		t.Errorf("Step = %q, want back at review", session.Step)
	}
	if session.DraftID != outcome.DraftID || session.DraftID == "" {
		t.Errorf("session DraftID = %q, outcome DraftID = %q", session.DraftID, outcome.DraftID)
	}
}
