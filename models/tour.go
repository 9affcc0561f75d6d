package models

import "time"

// Tour represents immutable reference data for a bookable tour.
type Tour struct {
	ID            string  `bson:"id" json:"id"`                       // Slug identifier (e.g., "prague-castle")
	Name          string  `bson:"name" json:"name"`                   // Display name
	OperatingMask uint8   `bson:"operatingMask" json:"operatingMask"` // Bit per weekday, bit 0 = Sunday
	MaxGroupSize  int     `bson:"maxGroupSize" json:"maxGroupSize"`   // Largest bookable group
	BasePrice     float64 `bson:"basePrice" json:"basePrice"`         // Per-person price before adjustments
	Currency      string  `bson:"currency" json:"currency"`           // ISO 4217 code (e.g., "EUR")
}

// OperatesOn reports whether the tour runs on the given weekday.
func (t Tour) OperatesOn(w time.Weekday) bool {
	return t.OperatingMask&(1<<uint(w)) != 0
}

// MaskFor builds an operating mask from a set of weekdays.
func MaskFor(days ...time.Weekday) uint8 {
	var m uint8
	for _, d := range days {
		m |= 1 << uint(d)
	}
	return m
}

// EveryDay is the operating mask of a tour that runs all week.
const EveryDay uint8 = 0x7F
