package booking

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	draftRepo "vltava/database/repository/draft"
	"vltava/models"
	"vltava/services/monitoring"
	"vltava/services/scheduling"

	"go.uber.org/zap"
)

// memDrafts is an in-memory DraftRepository for exercising the submit path.
type memDrafts struct {
	mu     sync.Mutex
	drafts map[string]models.Draft
}

func newMemDrafts() *memDrafts {
	return &memDrafts{drafts: map[string]models.Draft{}}
}

func (r *memDrafts) Create(ctx context.Context, draft models.Draft) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.drafts[draft.ID] = draft
	return nil
}

func (r *memDrafts) GetByID(ctx context.Context, id string) (*models.Draft, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.drafts[id]
	if !ok {
		return nil, draftRepo.ErrDraftNotFound
	}
	return &d, nil
}

func (r *memDrafts) GetAll(ctx context.Context) ([]models.Draft, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Draft, 0, len(r.drafts))
	for _, d := range r.drafts {
		out = append(out, d)
	}
	return out, nil
}

func (r *memDrafts) DeleteByID(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.drafts[id]; !ok {
		return draftRepo.ErrDraftNotFound
	}
	delete(r.drafts, id)
	return nil
}

func (r *memDrafts) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.drafts)
}

// fakeTours serves a fixed catalogue.
type fakeTours struct {
	tours map[string]models.Tour
}

func (f *fakeTours) GetByID(ctx context.Context, id string) (*models.Tour, error) {
	t, ok := f.tours[id]
	if !ok {
		return nil, errors.New("tour not found")
	}
	return &t, nil
}

func (f *fakeTours) GetAll(ctx context.Context) ([]models.Tour, error) {
	out := make([]models.Tour, 0, len(f.tours))
	for _, t := range f.tours {
		out = append(out, t)
	}
	return out, nil
}

func (f *fakeTours) Seed(ctx context.Context) error { return nil }

// fakeProvider is a scheduling provider whose behavior flips between offline
// and working.
type fakeProvider struct {
	mu        sync.Mutex
	offline   bool
	reject    string // definitive rejection (4xx)
	overload  string // transient server-side failure (5xx)
	bookings  int
	lastKey   string

	onAvailability func() // runs while the availability call is "in flight"
}

func (p *fakeProvider) Name() string { return "fake" }

func (p *fakeProvider) CheckAvailability(ctx context.Context, tourID, date string) (models.AvailabilityResult, error) {
	if p.onAvailability != nil {
		p.onAvailability()
	}
	return models.AvailabilityResult{
		Available:    true,
		Slots:        []models.Slot{{Time: "10:00", CapacityRemaining: 8}},
		MaxGroupSize: 8,
	}, nil
}

func (p *fakeProvider) CreateBooking(ctx context.Context, idempotencyKey string, req models.BookingRequest) (models.BookingResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.lastKey = idempotencyKey
	if p.offline {
		return models.BookingResult{}, errors.New("connection refused")
	}
	if p.overload != "" {
		return models.BookingResult{Success: false, Error: p.overload, Retryable: true}, nil
	}
	if p.reject != "" {
		return models.BookingResult{Success: false, Error: p.reject}, nil
	}
	p.bookings++
	return models.BookingResult{Success: true, BookingID: "bk-1", ConfirmationCode: "CNF-1"}, nil
}

// fakeReplay records which drafts were enqueued for replay.
type fakeReplay struct {
	mu  sync.Mutex
	ids []string
}

func (f *fakeReplay) EnqueueReplay(ctx context.Context, draftID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ids = append(f.ids, draftID)
	return nil
}

func submitFixture() (*SubmissionService, *fakeProvider, *memDrafts, *fakeReplay) {
	provider := &fakeProvider{}
	drafts := newMemDrafts()
	replay := &fakeReplay{}
	svc := &SubmissionService{
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
		Drafts:    drafts,
		Scheduler: scheduling.NewService(provider, monitoring.New(monitoring.Config{}), zap.NewNop(), 2*time.Second),
		Replay:    replay,
		Logger:    zap.NewNop(),
	}
	return svc, provider, drafts, replay
}

func validRequest() models.BookingRequest {
	return models.BookingRequest{
		TourID:    "prague-castle",
		Date:      time.Now().AddDate(0, 0, 7).Format(models.DateLayout),
		StartTime: "10:00",
		GroupSize: 2,
		Customer: models.Customer{
			FirstName: "Jana",
			LastName:  "Novak",
			Email:     "jana@example.com",
			Phone:     "+420123456789",
			Country:   "CZ",
		},
	}
}

func TestSubmitConfirmsAndLeavesNoDraft(t *testing.T) {
	svc, provider, drafts, _ := submitFixture()

	outcome, err := svc.Submit(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if outcome.Confirmation == nil {
		t.Fatalf("outcome = %+v, want confirmation", outcome)
	}
	if outcome.Confirmation.ConfirmationCode != "CNF-1" {
		t.Errorf("ConfirmationCode = %q", outcome.Confirmation.ConfirmationCode)
	}
	if drafts.count() != 0 {
		t.Errorf("drafts remaining = %d, want 0", drafts.count())
	}
	if provider.lastKey != outcome.DraftID {
		t.Errorf("idempotency key %q does not match draft id %q", provider.lastKey, outcome.DraftID)
	}
}

func TestSubmitRecomputesPriceServerSide(t *testing.T) {
	svc, _, _, _ := submitFixture()

	req := validRequest()
	req.TotalPrice = 1 // client-sent price must be ignored

	outcome, err := svc.Submit(context.Background(), req)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	date, _ := time.Parse(models.DateLayout, req.Date)
	want := QuotePrice(models.Tour{BasePrice: 45, MaxGroupSize: 8}, 2, date)
	if outcome.Confirmation.TotalPrice != want {
		t.Errorf("TotalPrice = %v, want recomputed %v", outcome.Confirmation.TotalPrice, want)
	}
	if outcome.Confirmation.Currency != "EUR" {
		t.Errorf("Currency = %q, want EUR", outcome.Confirmation.Currency)
	}
}

func TestSubmitWhileOfflinePersistsExactlyOneDraft(t *testing.T) {
	svc, provider, drafts, replay := submitFixture()
	provider.offline = true

	outcome, err := svc.Submit(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if !outcome.Deferred {
		t.Fatalf("outcome = %+v, want deferred", outcome)
	}
	if drafts.count() != 1 {
		t.Fatalf("drafts persisted = %d, want exactly 1", drafts.count())
	}
	if len(replay.ids) != 1 || replay.ids[0] != outcome.DraftID {
		t.Errorf("replay enqueued %v, want [%s]", replay.ids, outcome.DraftID)
	}
}

func TestSubmitKeepsDraftThroughServerSideFailure(t *testing.T) {
	svc, provider, drafts, replay := submitFixture()
	provider.overload = "provider rejected the booking (http 503)"

	outcome, err := svc.Submit(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if !outcome.Deferred {
		t.Fatalf("outcome = %+v, want a 503 treated as deferred", outcome)
	}
	if drafts.count() != 1 {
		t.Fatalf("drafts = %d, want the draft kept through a transient failure", drafts.count())
	}
	if len(replay.ids) != 1 || replay.ids[0] != outcome.DraftID {
		t.Errorf("replay enqueued %v, want [%s]", replay.ids, outcome.DraftID)
	}
}

func TestSubmitRejectionDiscardsDraft(t *testing.T) {
	svc, provider, drafts, replay := submitFixture()
	provider.reject = "tour is sold out"

	outcome, err := svc.Submit(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if outcome.Rejection != "tour is sold out" {
		t.Errorf("Rejection = %q", outcome.Rejection)
	}
	if drafts.count() != 0 {
		t.Errorf("drafts remaining = %d, want 0 after a definitive rejection", drafts.count())
	}
	if len(replay.ids) != 0 {
		t.Errorf("rejected booking must not be enqueued for replay, got %v", replay.ids)
	}
}

func TestSubmitInvalidRequestPersistsNothing(t *testing.T) {
	svc, _, drafts, _ := submitFixture()

	req := validRequest()
	req.GroupSize = 12 // over the tour maximum
	req.Customer.Email = "not-an-email"

	_, err := svc.Submit(context.Background(), req)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
	if len(verr.Errors) < 2 {
		t.Errorf("errors = %v, want both rule failures reported", verr.Errors)
	}
	if drafts.count() != 0 {
		t.Errorf("drafts persisted = %d, want 0 for an invalid request", drafts.count())
	}
}

func TestReplayRemovesDraftAfterRecovery(t *testing.T) {
	svc, provider, drafts, _ := submitFixture()
	provider.offline = true

	outcome, err := svc.Submit(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	// Still offline: the draft stays and the worker is told to retry.
	if err := svc.ReplayDraft(context.Background(), outcome.DraftID); !errors.Is(err, ErrReplayFailed) {
		t.Fatalf("ReplayDraft while offline = %v, want ErrReplayFailed", err)
	}
	if drafts.count() != 1 {
		t.Fatalf("drafts = %d, want draft kept across failed replays", drafts.count())
	}

	provider.offline = false
	if err := svc.ReplayDraft(context.Background(), outcome.DraftID); err != nil {
		t.Fatalf("ReplayDraft after recovery: %v", err)
	}
	if drafts.count() != 0 {
		t.Errorf("drafts = %d, want 0 after successful replay", drafts.count())
	}
	if provider.lastKey != outcome.DraftID {
		t.Errorf("replay used key %q, want the original draft id %q", provider.lastKey, outcome.DraftID)
	}
}

func TestReplayKeepsDraftThroughServerSideFailure(t *testing.T) {
	svc, provider, drafts, _ := submitFixture()
	provider.offline = true

	outcome, err := svc.Submit(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	provider.offline = false
	provider.overload = "provider rejected the booking (http 502)"
	if err := svc.ReplayDraft(context.Background(), outcome.DraftID); !errors.Is(err, ErrReplayFailed) {
		t.Fatalf("ReplayDraft on a 502 = %v, want ErrReplayFailed", err)
	}
	if drafts.count() != 1 {
		t.Fatalf("drafts = %d, want the draft kept for the next cycle", drafts.count())
	}

	provider.overload = ""
	if err := svc.ReplayDraft(context.Background(), outcome.DraftID); err != nil {
		t.Fatalf("ReplayDraft after recovery: %v", err)
	}
	if drafts.count() != 0 {
		t.Errorf("drafts = %d, want 0 once the provider recovered", drafts.count())
	}
}

func TestReplayDropsDraftOnProviderRejection(t *testing.T) {
	svc, provider, drafts, _ := submitFixture()
	provider.offline = true

	outcome, err := svc.Submit(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	provider.offline = false
	provider.reject = "slot no longer available"
	if err := svc.ReplayDraft(context.Background(), outcome.DraftID); err != nil {
		t.Fatalf("ReplayDraft: %v", err)
	}
	if drafts.count() != 0 {
		t.Errorf("drafts = %d, want rejected draft dropped", drafts.count())
	}
}

func TestReplayMissingDraftIsANoop(t *testing.T) {
	svc, provider, _, _ := submitFixture()

	if err := svc.ReplayDraft(context.Background(), "gone"); err != nil {
		t.Fatalf("ReplayDraft: %v", err)
	}
	if provider.lastKey != "" {
		t.Errorf("provider called for a missing draft with key %q", provider.lastKey)
	}
}
