package booking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	tourRepo "vltava/database/repository/tour"
	"vltava/models"
	"vltava/services/monitoring"
	"vltava/services/scheduling"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrSessionNotFound is returned when a session id has no stored state,
// either because it never existed or because its TTL elapsed.
var ErrSessionNotFound = errors.New("booking session not found or expired")

// SessionStore persists booking sessions between requests.
type SessionStore interface {
	Load(ctx context.Context, sessionID string) (*models.BookingSession, error)
	Save(ctx context.Context, session *models.BookingSession, ttl time.Duration) error
	Delete(ctx context.Context, sessionID string)
}

// redisSessionStore keeps sessions in Redis so any instance can serve the
// next request.
type redisSessionStore struct {
	client *redis.Client
}

// NewRedisSessionStore wraps a Redis client as a SessionStore.
func NewRedisSessionStore(client *redis.Client) SessionStore {
	return &redisSessionStore{client: client}
}

func sessionKey(id string) string {
	return "session:" + id
}

func (s *redisSessionStore) Load(ctx context.Context, sessionID string) (*models.BookingSession, error) {
	data, err := s.client.Get(ctx, sessionKey(sessionID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to load booking session: %w", err)
	}
	var session models.BookingSession
	if err := json.Unmarshal([]byte(data), &session); err != nil {
		return nil, fmt.Errorf("failed to parse booking session: %w", err)
	}
	return &session, nil
}

func (s *redisSessionStore) Save(ctx context.Context, session *models.BookingSession, ttl time.Duration) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal booking session: %w", err)
	}
	return s.client.Set(ctx, sessionKey(session.SessionID), data, ttl).Err()
}

func (s *redisSessionStore) Delete(ctx context.Context, sessionID string) {
	s.client.Del(ctx, sessionKey(sessionID))
}

// SessionService drives the step-by-step booking flow.
type SessionService struct {
	Cache      SessionStore
	Tours      tourRepo.TourRepository
	Engine     *Engine
	Scheduler  *scheduling.Service
	Submission *SubmissionService
	Monitor    *monitoring.Monitor
	Logger     *zap.Logger
	TTL        time.Duration
}

// ScheduleInput is the payload of the schedule step.
type ScheduleInput struct {
	Date      string `json:"date" binding:"required"`
	StartTime string `json:"startTime" binding:"required"`
	GroupSize int    `json:"groupSize" binding:"required"`
}

// CustomerInput is the payload of the customer step.
type CustomerInput struct {
	Customer        models.Customer `json:"customer" binding:"required"`
	SpecialRequests string          `json:"specialRequests"`
}

// Start creates a session for a tour at the schedule step.
func (s *SessionService) Start(ctx context.Context, tourID string) (*models.BookingSession, error) {
	tour, err := s.Tours.GetByID(ctx, tourID)
	if err != nil {
		return nil, err
	}

	session := models.BookingSession{
		SessionID: uuid.New().String(),
		TourID:    tour.ID,
		Step:      models.StepSchedule,
		Request:   models.BookingRequest{TourID: tour.ID, Currency: tour.Currency},
		CreatedAt: time.Now(),
	}
	if err := s.save(ctx, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// UpdateSchedule validates the schedule step and, when the rules pass, runs a
// monitored availability check and advances the session to the customer step.
// Rule violations are returned aggregated; the step does not advance.
//
// Each schedule edit bumps the session's availability sequence before the
// provider call; the response is applied only if the sequence is still
// current when it lands, so a rapid re-edit supersedes the in-flight check.
func (s *SessionService) UpdateSchedule(ctx context.Context, sessionID string, in ScheduleInput) (*models.BookingSession, []RuleError, error) {
	session, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}
	if session.Step != models.StepSchedule {
		return nil, nil, &SessionStateError{Message: fmt.Sprintf("schedule cannot be edited at step %q", session.Step)}
	}

	tour, err := s.Tours.GetByID(ctx, session.TourID)
	if err != nil {
		return nil, nil, err
	}

	now := time.Now()
	var errs []RuleError
	if re := s.Engine.ValidateDate(in.Date, now); re != nil {
		errs = append(errs, *re)
	}
	if re := s.Engine.ValidateTime(in.StartTime, in.Date, now); re != nil {
		errs = append(errs, *re)
	}
	if re := s.Engine.ValidateGroupSize(in.GroupSize, *tour); re != nil {
		errs = append(errs, *re)
	}
	if re := s.Engine.ValidateTourDay(*tour, in.Date, now.Location()); re != nil {
		errs = append(errs, *re)
	}
	if len(errs) > 0 {
		return session, errs, nil
	}

	session.Request.Date = in.Date
	session.Request.StartTime = in.StartTime
	session.Request.GroupSize = in.GroupSize
	session.AvailabilitySeq++
	seq := session.AvailabilitySeq
	session.Availability = nil
	if err := s.save(ctx, session); err != nil {
		return nil, nil, err
	}

	availability := s.Scheduler.CheckAvailability(ctx, session.TourID, in.Date)

	// Re-read the session: a concurrent edit may have superseded this check.
	session, err = s.load(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}
	if session.AvailabilitySeq != seq {
		s.Logger.Debug("dropping stale availability response",
			zap.String("sessionId", sessionID),
			zap.Int64("seq", seq),
			zap.Int64("current", session.AvailabilitySeq))
		return session, nil, nil
	}

	if availability.MaxGroupSize > 0 && in.GroupSize > availability.MaxGroupSize {
		errs = append(errs, RuleError{
			Code:    CodeGroupSizeExceeded,
			Field:   "groupSize",
			Message: fmt.Sprintf("the provider takes at most %d people on this date", availability.MaxGroupSize),
		})
		return session, errs, nil
	}

	session.Availability = &availability
	date, _ := time.ParseInLocation(models.DateLayout, in.Date, now.Location())
	session.Request.TotalPrice = QuotePrice(*tour, in.GroupSize, date)
	session.Step = models.StepCustomer
	if err := s.save(ctx, session); err != nil {
		return nil, nil, err
	}
	return session, nil, nil
}

// UpdateCustomer validates contact details and advances to review.
func (s *SessionService) UpdateCustomer(ctx context.Context, sessionID string, in CustomerInput) (*models.BookingSession, []RuleError, error) {
	session, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}
	if session.Step != models.StepCustomer {
		return nil, nil, &SessionStateError{Message: fmt.Sprintf("customer details cannot be edited at step %q", session.Step)}
	}

	if errs := s.Engine.ValidateCustomer(in.Customer); len(errs) > 0 {
		return session, errs, nil
	}

	session.Request.Customer = in.Customer
	session.Request.SpecialRequests = in.SpecialRequests
	session.Step = models.StepReview
	if err := s.save(ctx, session); err != nil {
		return nil, nil, err
	}
	return session, nil, nil
}

// Back steps the session to the previous stage. Not allowed while a
// submission is in flight.
func (s *SessionService) Back(ctx context.Context, sessionID string) (*models.BookingSession, error) {
	session, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	switch session.Step {
	case models.StepCustomer:
		session.Step = models.StepSchedule
	case models.StepReview:
		session.Step = models.StepCustomer
	case models.StepSubmitting:
		return nil, &SessionStateError{Message: "cannot go back while the booking is being submitted"}
	default:
		return nil, &SessionStateError{Message: fmt.Sprintf("cannot go back from step %q", session.Step)}
	}
	if err := s.save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// Confirm submits the reviewed booking. On a network failure the draft is
// already saved, so the session returns to review with the deferral noted
// rather than failing hard.
func (s *SessionService) Confirm(ctx context.Context, sessionID string) (*models.BookingSession, *SubmissionOutcome, error) {
	session, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}
	if session.Step != models.StepReview {
		return nil, nil, &SessionStateError{Message: fmt.Sprintf("booking cannot be submitted at step %q", session.Step)}
	}

	session.Step = models.StepSubmitting
	if err := s.save(ctx, session); err != nil {
		return nil, nil, err
	}

	outcome, err := s.Submission.Submit(ctx, session.Request)
	if err != nil {
		// Validation failed or the draft could not be persisted; back to review.
		session.Step = models.StepReview
		if saveErr := s.save(ctx, session); saveErr != nil {
			s.Logger.Warn("failed to restore session step", zap.String("sessionId", sessionID), zap.Error(saveErr))
		}
		return session, nil, err
	}

	switch {
	case outcome.Confirmation != nil:
		session.Step = models.StepConfirmed
		s.delete(ctx, sessionID)
	default:
		// Deferred or rejected: the customer stays at review.
		session.Step = models.StepReview
		session.DraftID = outcome.DraftID
		if err := s.save(ctx, session); err != nil {
			return nil, nil, err
		}
	}
	return session, outcome, nil
}

// Cancel abandons the flow and records the cancellation.
func (s *SessionService) Cancel(ctx context.Context, sessionID string) error {
	session, err := s.load(ctx, sessionID)
	if err != nil {
		return err
	}
	if session.Step == models.StepSubmitting {
		return &SessionStateError{Message: "cannot cancel while the booking is being submitted"}
	}
	s.Monitor.TrackCancellation(fmt.Sprintf("%s at %s", session.TourID, session.Step))
	s.delete(ctx, sessionID)
	return nil
}

func (s *SessionService) load(ctx context.Context, sessionID string) (*models.BookingSession, error) {
	return s.Cache.Load(ctx, sessionID)
}

func (s *SessionService) save(ctx context.Context, session *models.BookingSession) error {
	return s.Cache.Save(ctx, session, s.TTL)
}

func (s *SessionService) delete(ctx context.Context, sessionID string) {
	s.Cache.Delete(ctx, sessionID)
}
