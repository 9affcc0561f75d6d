package models

import "time"

// Draft is a locally persisted, not-yet-acknowledged booking attempt. Its ID
// doubles as the idempotency key for replayed submissions.
type Draft struct {
	ID        string         `bson:"id" json:"id"`
	Payload   BookingRequest `bson:"payload" json:"payload"`
	CreatedAt time.Time      `bson:"createdAt" json:"createdAt"`
}
