package booking

import (
	"testing"
	"time"

	"vltava/models"
)

var pragueCastle = models.Tour{
	ID:            "prague-castle",
	Name:          "Prague Castle & Lesser Town",
	OperatingMask: models.MaskFor(time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday, time.Saturday),
	MaxGroupSize:  8,
	BasePrice:     45,
	Currency:      "EUR",
}

var oldTown = models.Tour{
	ID:            "old-town",
	Name:          "Old Town & Jewish Quarter",
	OperatingMask: models.EveryDay,
	MaxGroupSize:  20,
	BasePrice:     30,
	Currency:      "EUR",
}

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.ParseInLocation(models.DateLayout, s, time.Local)
	if err != nil {
		t.Fatalf("bad date %q: %v", s, err)
	}
	return d
}

func TestGroupFactor(t *testing.T) {
	tests := []struct {
		size int
		want float64
	}{
		{1, 1.0},
		{2, 1.0},
		{3, 1.0},
		{4, 0.95},
		{5, 0.95},
		{6, 0.90},
		{7, 0.90},
		{12, 0.90},
	}
	for _, tt := range tests {
		if got := GroupFactor(tt.size); got != tt.want {
			t.Errorf("GroupFactor(%d) = %v, want %v", tt.size, got, tt.want)
		}
	}
}

func TestSeasonalFactor(t *testing.T) {
	tests := []struct {
		date string
		want float64
	}{
		{"2024-01-15", 1.0},
		{"2024-05-31", 1.0},
		{"2024-06-01", 1.15},
		{"2024-07-15", 1.15},
		{"2024-09-30", 1.15},
		{"2024-10-01", 1.0},
		{"2024-12-24", 1.0},
	}
	for _, tt := range tests {
		if got := SeasonalFactor(mustDate(t, tt.date)); got != tt.want {
			t.Errorf("SeasonalFactor(%s) = %v, want %v", tt.date, got, tt.want)
		}
	}
}

func TestQuotePrice(t *testing.T) {
	tests := []struct {
		name      string
		tour      models.Tour
		groupSize int
		date      string
		want      float64
	}{
		{"no discount off season", pragueCastle, 2, "2024-03-15", 90},
		{"medium group discount", pragueCastle, 4, "2024-03-15", 171},
		{"large group discount", pragueCastle, 6, "2024-03-15", 243},
		{"summer surcharge", pragueCastle, 2, "2024-07-15", 103.5},
		{"discount and surcharge combine", pragueCastle, 6, "2024-08-01", 279.45},
		{"single traveller", oldTown, 1, "2024-11-02", 30},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := QuotePrice(tt.tour, tt.groupSize, mustDate(t, tt.date))
			if got != tt.want {
				t.Errorf("QuotePrice(%s, %d, %s) = %v, want %v", tt.tour.ID, tt.groupSize, tt.date, got, tt.want)
			}
		})
	}
}
