package models

import "time"

// EventKind classifies a monitoring event.
type EventKind string

const (
	EventBookingAttempt    EventKind = "attempt"
	EventBookingSuccess    EventKind = "success"
	EventBookingFailure    EventKind = "failure"
	EventAvailabilityCheck EventKind = "availability_check"
	EventCancellation      EventKind = "cancellation"
	EventAPIError          EventKind = "api_error"
)

// MonitoringEvent is a single append-only record of booking activity.
type MonitoringEvent struct {
	Kind           EventKind `json:"kind"`
	Timestamp      time.Time `json:"timestamp"`
	DurationMs     int64     `json:"durationMs"`
	PayloadSummary string    `json:"payloadSummary,omitempty"`
}

// Metrics is the aggregate view derived from the event log.
type Metrics struct {
	BookingAttempts     int64   `json:"bookingAttempts"`
	SuccessfulBookings  int64   `json:"successfulBookings"`
	FailedBookings      int64   `json:"failedBookings"`
	AvailabilityChecks  int64   `json:"availabilityChecks"`
	Cancellations       int64   `json:"cancellations"`
	APIErrors           int64   `json:"apiErrors"`
	AverageResponseTime float64 `json:"averageResponseTimeMs"`
}
