package booking

import (
	"math"
	"time"

	"vltava/models"
)

// Price adjustment factors. Group discounts apply to the subtotal, then the
// seasonal surcharge applies to the discounted amount.
const (
	largeGroupFactor  = 0.90 // 6 or more
	mediumGroupFactor = 0.95 // 4 or 5
	summerFactor      = 1.15 // June through September
)

// SeasonalFactor returns the surcharge multiplier for a booking date.
func SeasonalFactor(date time.Time) float64 {
	if date.Month() >= time.June && date.Month() <= time.September {
		return summerFactor
	}
	return 1.0
}

// GroupFactor returns the discount multiplier for a group size.
func GroupFactor(groupSize int) float64 {
	switch {
	case groupSize >= 6:
		return largeGroupFactor
	case groupSize >= 4:
		return mediumGroupFactor
	default:
		return 1.0
	}
}

// QuotePrice computes the total price for a tour booking. It is the only
// place a TotalPrice may come from; callers never adjust the result.
func QuotePrice(tour models.Tour, groupSize int, date time.Time) float64 {
	subtotal := tour.BasePrice * float64(groupSize)
	total := subtotal * GroupFactor(groupSize) * SeasonalFactor(date)
	return math.Round(total*100) / 100
}
