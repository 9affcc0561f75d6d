package models

import "time"

// DateLayout and TimeLayout are the wire formats for booking dates and start times.
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// Customer carries the contact details collected in the customer step.
type Customer struct {
	FirstName string `bson:"firstName" json:"firstName" validate:"required"`
	LastName  string `bson:"lastName" json:"lastName" validate:"required"`
	Email     string `bson:"email" json:"email" validate:"required,email"`
	Phone     string `bson:"phone" json:"phone" validate:"required"`
	Country   string `bson:"country" json:"country" validate:"required"`
}

// BookingRequest is a fully assembled booking attempt, ready for submission.
type BookingRequest struct {
	TourID          string   `bson:"tourId" json:"tourId"`
	Date            string   `bson:"date" json:"date"`           // "YYYY-MM-DD"
	StartTime       string   `bson:"startTime" json:"startTime"` // "HH:MM", tour-local
	GroupSize       int      `bson:"groupSize" json:"groupSize"`
	TotalPrice      float64  `bson:"totalPrice" json:"totalPrice"` // Always set by the pricing engine
	Currency        string   `bson:"currency" json:"currency"`
	Customer        Customer `bson:"customer" json:"customer"`
	SpecialRequests string   `bson:"specialRequests,omitempty" json:"specialRequests,omitempty"`
}

// BookingResult is the normalized outcome of a booking creation, regardless of provider.
type BookingResult struct {
	Success          bool   `json:"success"`
	BookingID        string `json:"bookingId,omitempty"`
	ConfirmationCode string `json:"confirmationCode,omitempty"`
	Error            string `json:"error,omitempty"`
	Retryable        bool   `json:"-"` // Failure may succeed later (5xx, 429); never a business rejection
}

// BookingConfirmation is the final response returned to the customer.
type BookingConfirmation struct {
	BookingID        string    `json:"bookingId"`
	ConfirmationCode string    `json:"confirmationCode"`
	TourID           string    `json:"tourId"`
	Date             string    `json:"date"`
	StartTime        string    `json:"startTime"`
	GroupSize        int       `json:"groupSize"`
	TotalPrice       float64   `json:"totalPrice"`
	Currency         string    `json:"currency"`
	CreatedAt        time.Time `json:"createdAt"`
}
