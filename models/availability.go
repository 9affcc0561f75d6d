package models

// Slot is a bookable time-of-day with remaining capacity, as reported by a provider.
type Slot struct {
	Time              string `json:"time"` // "HH:MM"
	CapacityRemaining int    `json:"capacityRemaining"`
}

// PricingSnapshot is the provider's view of pricing at check time.
type PricingSnapshot struct {
	BasePrice float64 `json:"basePrice,omitempty"`
	Currency  string  `json:"currency,omitempty"`
}

// AvailabilityResult is the normalized availability response shared by all
// provider variants. Ephemeral; never persisted.
type AvailabilityResult struct {
	Available    bool            `json:"available"`
	Slots        []Slot          `json:"slots"`
	MaxGroupSize int             `json:"maxGroupSize,omitempty"`
	Pricing      PricingSnapshot `json:"pricing,omitzero"`
}
