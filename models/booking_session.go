package models

import "time"

// BookingStep is a stage in the interactive booking flow.
type BookingStep string

const (
	StepSchedule   BookingStep = "schedule" // date / time / group size
	StepCustomer   BookingStep = "customer" // contact details
	StepReview     BookingStep = "review"   // final quote shown
	StepSubmitting BookingStep = "submitting"
	StepConfirmed  BookingStep = "confirmed"
)

// BookingSession holds the state of one customer's booking flow between
// requests. Cached in Redis, keyed by SessionID.
type BookingSession struct {
	SessionID       string              `json:"sessionId"`
	TourID          string              `json:"tourId"`
	Step            BookingStep         `json:"step"`
	Request         BookingRequest      `json:"request"`
	Availability    *AvailabilityResult `json:"availability,omitempty"`
	AvailabilitySeq int64               `json:"availabilitySeq"` // Guards against stale availability responses
	DraftID         string              `json:"draftId,omitempty"`
	CreatedAt       time.Time           `json:"createdAt"`
}

// SessionResponse is the common reply shape for session endpoints.
type SessionResponse struct {
	SessionID    string               `json:"sessionId"`
	Step         BookingStep          `json:"step"`
	Availability *AvailabilityResult  `json:"availability,omitempty"`
	Quote        float64              `json:"quote,omitempty"`
	Currency     string               `json:"currency,omitempty"`
	Confirmation *BookingConfirmation `json:"confirmation,omitempty"`
	Deferred     bool                 `json:"deferred,omitempty"` // Booking saved for replay, confirmation pending
}
