package booking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	draftRepo "vltava/database/repository/draft"
	tourRepo "vltava/database/repository/tour"
	"vltava/models"
	"vltava/services/scheduling"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// dedupeTTL bounds how long a processed draft id keeps returning the original
// result to replayed duplicates.
const dedupeTTL = 24 * time.Hour

// ReplayEnqueuer schedules a persisted draft for background resubmission.
// Implemented by the replay worker's client; an interface here keeps the
// service free of queue wiring.
type ReplayEnqueuer interface {
	EnqueueReplay(ctx context.Context, draftID string) error
}

// SubmissionOutcome is what a submission attempt produced: either a
// confirmation, a deferral (draft saved, replay pending), or a rejection.
type SubmissionOutcome struct {
	Confirmation *models.BookingConfirmation
	Deferred     bool
	DraftID      string
	Rejection    string // provider's message when the booking was refused outright
}

// SubmissionService owns the submit path: persist a draft, attempt the
// provider call, and either confirm, reject, or hand the draft to the replay
// queue. A booking attempt is never lost to a network failure.
type SubmissionService struct {
	Engine    *Engine
	Tours     tourRepo.TourRepository
	Drafts    draftRepo.DraftRepository
	Scheduler *scheduling.Service
	Dedupe    *redis.Client
	Replay    ReplayEnqueuer
	Logger    *zap.Logger
}

// Submit validates, prices, and submits a booking request. The draft is
// persisted before the network attempt, so an offline failure leaves exactly
// one durable record behind.
func (s *SubmissionService) Submit(ctx context.Context, req models.BookingRequest) (*SubmissionOutcome, error) {
	tour, err := s.Tours.GetByID(ctx, req.TourID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if errs := s.Engine.ValidateComplete(req, *tour, now); len(errs) > 0 {
		return nil, &ValidationError{Errors: errs}
	}

	// TotalPrice is always recomputed here; whatever the client sent is
	// advisory only.
	date, _ := time.ParseInLocation(models.DateLayout, req.Date, now.Location())
	req.TotalPrice = QuotePrice(*tour, req.GroupSize, date)
	req.Currency = tour.Currency

	draft := models.Draft{
		ID:        uuid.New().String(),
		Payload:   req,
		CreatedAt: now,
	}
	if err := s.Drafts.Create(ctx, draft); err != nil {
		return nil, fmt.Errorf("failed to persist booking draft: %w", err)
	}

	s.Scheduler.Monitor.TrackBookingAttempt(fmt.Sprintf("%s %s", req.TourID, req.Date))

	outcome, err := s.submitDraft(ctx, draft)
	if err != nil {
		return nil, err
	}
	return outcome, nil
}

// submitDraft runs the provider attempt for a persisted draft and settles the
// draft's fate: delete on confirmation or rejection, keep and enqueue on a
// retryable failure.
func (s *SubmissionService) submitDraft(ctx context.Context, draft models.Draft) (*SubmissionOutcome, error) {
	if conf := s.dedupeLookup(ctx, draft.ID); conf != nil {
		// A previous attempt already went through; just settle the draft.
		s.deleteDraft(ctx, draft.ID)
		return &SubmissionOutcome{Confirmation: conf, DraftID: draft.ID}, nil
	}

	result, retryable := s.Scheduler.CreateBooking(ctx, draft.ID, draft.Payload)
	if result.Success {
		conf := confirmationFrom(draft.Payload, result)
		s.dedupeStore(ctx, draft.ID, conf)
		s.deleteDraft(ctx, draft.ID)
		return &SubmissionOutcome{Confirmation: &conf, DraftID: draft.ID}, nil
	}

	if retryable {
		if err := s.Replay.EnqueueReplay(ctx, draft.ID); err != nil {
			// The periodic sweep will still pick the draft up.
			s.Logger.Warn("failed to enqueue draft replay", zap.String("draftId", draft.ID), zap.Error(err))
		}
		s.Logger.Info("booking deferred, draft saved for replay", zap.String("draftId", draft.ID))
		return &SubmissionOutcome{Deferred: true, DraftID: draft.ID}, nil
	}

	// The provider acknowledged receipt and refused; the attempt is settled.
	s.deleteDraft(ctx, draft.ID)
	return &SubmissionOutcome{Rejection: result.Error, DraftID: draft.ID}, nil
}

// ErrReplayFailed marks a replay attempt that should be retried later.
var ErrReplayFailed = errors.New("draft replay failed")

// ReplayDraft resubmits one persisted draft. A missing draft means a
// concurrent attempt already settled it. Failures return an error so the
// replay worker retries; one draft's failure never touches the others.
func (s *SubmissionService) ReplayDraft(ctx context.Context, draftID string) error {
	draft, err := s.Drafts.GetByID(ctx, draftID)
	if err != nil {
		if errors.Is(err, draftRepo.ErrDraftNotFound) {
			return nil
		}
		return err
	}

	if conf := s.dedupeLookup(ctx, draftID); conf != nil {
		s.deleteDraft(ctx, draftID)
		return nil
	}

	result, retryable := s.Scheduler.CreateBooking(ctx, draftID, draft.Payload)
	if result.Success {
		conf := confirmationFrom(draft.Payload, result)
		s.dedupeStore(ctx, draftID, conf)
		if err := s.Drafts.DeleteByID(ctx, draftID); err != nil && !errors.Is(err, draftRepo.ErrDraftNotFound) {
			return err
		}
		s.Logger.Info("draft replayed successfully",
			zap.String("draftId", draftID),
			zap.String("bookingId", result.BookingID))
		return nil
	}

	if !retryable {
		// Definitive provider rejection: retrying cannot change the outcome.
		s.Logger.Warn("draft rejected by provider, dropping",
			zap.String("draftId", draftID),
			zap.String("reason", result.Error))
		s.deleteDraft(ctx, draftID)
		return nil
	}

	s.Logger.Warn("draft replay failed, will retry", zap.String("draftId", draftID))
	return fmt.Errorf("%w: %s", ErrReplayFailed, draftID)
}

// PendingDrafts lists every draft awaiting replay.
func (s *SubmissionService) PendingDrafts(ctx context.Context) ([]models.Draft, error) {
	return s.Drafts.GetAll(ctx)
}

func (s *SubmissionService) deleteDraft(ctx context.Context, id string) {
	if err := s.Drafts.DeleteByID(ctx, id); err != nil && !errors.Is(err, draftRepo.ErrDraftNotFound) {
		s.Logger.Warn("failed to delete draft", zap.String("draftId", id), zap.Error(err))
	}
}

func (s *SubmissionService) dedupeKey(draftID string) string {
	return "draft:" + draftID
}

// dedupeLookup returns the stored confirmation for an already-processed
// draft id, if any.
func (s *SubmissionService) dedupeLookup(ctx context.Context, draftID string) *models.BookingConfirmation {
	if s.Dedupe == nil {
		return nil
	}
	data, err := s.Dedupe.Get(ctx, s.dedupeKey(draftID)).Result()
	if err != nil {
		return nil
	}
	var conf models.BookingConfirmation
	if err := json.Unmarshal([]byte(data), &conf); err != nil {
		return nil
	}
	return &conf
}

func (s *SubmissionService) dedupeStore(ctx context.Context, draftID string, conf models.BookingConfirmation) {
	if s.Dedupe == nil {
		return
	}
	data, err := json.Marshal(conf)
	if err != nil {
		return
	}
	if err := s.Dedupe.Set(ctx, s.dedupeKey(draftID), data, dedupeTTL).Err(); err != nil {
		s.Logger.Warn("failed to store dedupe record", zap.String("draftId", draftID), zap.Error(err))
	}
}

func confirmationFrom(req models.BookingRequest, result models.BookingResult) models.BookingConfirmation {
	return models.BookingConfirmation{
		BookingID:        result.BookingID,
		ConfirmationCode: result.ConfirmationCode,
		TourID:           req.TourID,
		Date:             req.Date,
		StartTime:        req.StartTime,
		GroupSize:        req.GroupSize,
		TotalPrice:       req.TotalPrice,
		Currency:         req.Currency,
		CreatedAt:        time.Now(),
	}
}
