package scheduling

import (
	"context"
	"fmt"
	"time"

	"vltava/models"
	"vltava/services/monitoring"

	"go.uber.org/zap"
)

// Service is the provider facade the rest of the system talks to. Every call
// is timed and reported to the monitor, and failures are normalized: the
// caller gets "no availability" or an unsuccessful result, never a transport
// error.
type Service struct {
	Provider Provider
	Monitor  *monitoring.Monitor
	Logger   *zap.Logger
	Timeout  time.Duration
}

// NewService wraps a provider with monitoring and failure normalization.
func NewService(p Provider, m *monitoring.Monitor, logger *zap.Logger, timeout time.Duration) *Service {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Service{Provider: p, Monitor: m, Logger: logger, Timeout: timeout}
}

// CheckAvailability returns the normalized availability for a tour and date.
// Provider errors degrade to "not available" with empty slots.
func (s *Service) CheckAvailability(ctx context.Context, tourID, date string) models.AvailabilityResult {
	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	start := time.Now()
	summary := fmt.Sprintf("%s %s %s", s.Provider.Name(), tourID, date)

	res, err := s.Provider.CheckAvailability(ctx, tourID, date)
	if err != nil {
		s.Logger.Warn("availability check failed",
			zap.String("provider", s.Provider.Name()),
			zap.String("tourId", tourID),
			zap.String("date", date),
			zap.Error(err))
		s.Monitor.TrackAPIError(summary, timed(start))
		return models.AvailabilityResult{Available: false, Slots: []models.Slot{}}
	}

	s.Monitor.TrackAvailabilityCheck(summary, timed(start))
	return res
}

// CreateBooking submits a booking and returns the normalized result. The
// idempotency key is the draft id; resubmitting with the same key must not
// create a second booking on the provider side. The second return value
// reports whether a failure is worth retrying: transport and parse failures
// always are, provider responses carry their own classification (5xx and
// 429 retryable, other 4xx definitive).
func (s *Service) CreateBooking(ctx context.Context, idempotencyKey string, req models.BookingRequest) (models.BookingResult, bool) {
	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	start := time.Now()
	summary := fmt.Sprintf("%s %s %s %s", s.Provider.Name(), req.TourID, req.Date, req.StartTime)

	res, err := s.Provider.CreateBooking(ctx, idempotencyKey, req)
	if err != nil {
		s.Logger.Warn("booking submission failed",
			zap.String("provider", s.Provider.Name()),
			zap.String("tourId", req.TourID),
			zap.Error(err))
		s.Monitor.TrackAPIError(summary, timed(start))
		return models.BookingResult{Success: false, Error: "booking service unreachable"}, true
	}
	if !res.Success {
		s.Monitor.TrackBookingFailure(summary, timed(start))
		return res, res.Retryable
	}

	s.Monitor.TrackBookingSuccess(summary, timed(start))
	return res, false
}
