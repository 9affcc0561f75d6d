package booking

import (
	"strings"
	"testing"
	"time"

	"vltava/models"
)

func testEngine() *Engine {
	return NewEngine(Rules{
		LeadTime:       60 * time.Minute,
		MaxAdvanceDays: 365,
	})
}

func TestValidateDate(t *testing.T) {
	e := testEngine()
	now := time.Date(2024, 3, 15, 10, 0, 0, 0, time.Local)

	tests := []struct {
		name     string
		date     string
		wantCode string // "" means valid
	}{
		{"yesterday", "2024-03-14", CodePastDate},
		{"today", "2024-03-15", ""},
		{"tomorrow", "2024-03-16", ""},
		{"exactly a year ahead", "2025-03-15", ""},
		{"one day past the window", "2025-03-16", CodeTooFarAhead},
		{"garbage", "15.03.2024", CodeInvalidDate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.ValidateDate(tt.date, now)
			if tt.wantCode == "" {
				if got != nil {
					t.Fatalf("ValidateDate(%s) = %v, want valid", tt.date, got)
				}
				return
			}
			if got == nil || got.Code != tt.wantCode {
				t.Fatalf("ValidateDate(%s) = %v, want code %s", tt.date, got, tt.wantCode)
			}
		})
	}
}

func TestValidateTime(t *testing.T) {
	e := testEngine()
	now := time.Date(2024, 3, 15, 10, 0, 0, 0, time.Local)

	tests := []struct {
		name     string
		timeStr  string
		date     string
		wantCode string
	}{
		{"same day within lead buffer", "10:30", "2024-03-15", CodeInsufficientLeadTime},
		{"same day exactly at buffer", "11:00", "2024-03-15", ""},
		{"same day well after buffer", "15:00", "2024-03-15", ""},
		{"early time on a future date", "06:00", "2024-03-16", ""},
		{"same day already past", "09:00", "2024-03-15", CodeInsufficientLeadTime},
		{"garbage time", "25:99", "2024-03-15", CodeInvalidTime},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.ValidateTime(tt.timeStr, tt.date, now)
			if tt.wantCode == "" {
				if got != nil {
					t.Fatalf("ValidateTime(%s, %s) = %v, want valid", tt.timeStr, tt.date, got)
				}
				return
			}
			if got == nil || got.Code != tt.wantCode {
				t.Fatalf("ValidateTime(%s, %s) = %v, want code %s", tt.timeStr, tt.date, got, tt.wantCode)
			}
		})
	}
}

func TestValidateGroupSize(t *testing.T) {
	e := testEngine()

	if got := e.ValidateGroupSize(0, pragueCastle); got == nil || got.Code != CodeGroupSizeInvalid {
		t.Errorf("size 0 = %v, want %s", got, CodeGroupSizeInvalid)
	}
	if got := e.ValidateGroupSize(1, pragueCastle); got != nil {
		t.Errorf("size 1 = %v, want valid", got)
	}
	if got := e.ValidateGroupSize(8, pragueCastle); got != nil {
		t.Errorf("size at maximum = %v, want valid", got)
	}
	got := e.ValidateGroupSize(9, pragueCastle)
	if got == nil || got.Code != CodeGroupSizeExceeded {
		t.Fatalf("size 9 = %v, want %s", got, CodeGroupSizeExceeded)
	}
	if want := "8"; !strings.Contains(got.Message, want) {
		t.Errorf("message %q does not name the tour maximum %s", got.Message, want)
	}
}

func TestValidateTourDay(t *testing.T) {
	e := testEngine()

	// 2024-03-17 is a Sunday.
	if got := e.ValidateTourDay(pragueCastle, "2024-03-17", time.Local); got == nil || got.Code != CodeNotOperatingOnDate {
		t.Errorf("prague-castle on Sunday = %v, want %s", got, CodeNotOperatingOnDate)
	}
	if got := e.ValidateTourDay(pragueCastle, "2024-03-16", time.Local); got != nil {
		t.Errorf("prague-castle on Saturday = %v, want valid", got)
	}
	for _, date := range []string{"2024-03-17", "2024-03-18", "2024-07-15", "2024-12-25"} {
		if got := e.ValidateTourDay(oldTown, date, time.Local); got != nil {
			t.Errorf("old-town on %s = %v, want valid", date, got)
		}
	}
}

func TestValidateCustomerAggregatesAllErrors(t *testing.T) {
	e := testEngine()

	errs := e.ValidateCustomer(models.Customer{})
	if len(errs) != 5 {
		t.Fatalf("empty customer produced %d errors, want 5: %v", len(errs), errs)
	}

	errs = e.ValidateCustomer(models.Customer{
		FirstName: "Jana",
		LastName:  "Novak",
		Email:     "not-an-email",
		Phone:     "+420123456789",
		Country:   "CZ",
	})
	if len(errs) != 1 || errs[0].Field != "email" || errs[0].Code != CodeFieldInvalid {
		t.Fatalf("bad email produced %v, want one email error", errs)
	}

	errs = e.ValidateCustomer(models.Customer{
		FirstName: "Jana",
		LastName:  "Novak",
		Email:     "jana@example.com",
		Phone:     "+420123456789",
		Country:   "CZ",
	})
	if errs != nil {
		t.Fatalf("valid customer produced %v", errs)
	}
}

func TestValidateCompleteReportsEverything(t *testing.T) {
	e := testEngine()
	now := time.Date(2024, 3, 15, 10, 0, 0, 0, time.Local)

	req := models.BookingRequest{
		TourID:    pragueCastle.ID,
		Date:      "2024-03-14", // past
		StartTime: "10:00",
		GroupSize: 9, // over the max
		Customer:  models.Customer{FirstName: "Jana"},
	}
	errs := e.ValidateComplete(req, pragueCastle, now)

	codes := map[string]bool{}
	for _, re := range errs {
		codes[re.Code] = true
	}
	for _, want := range []string{CodePastDate, CodeGroupSizeExceeded, CodeFieldRequired} {
		if !codes[want] {
			t.Errorf("ValidateComplete missing %s in %v", want, errs)
		}
	}
	if len(errs) < 5 {
		t.Errorf("expected aggregated errors, got only %d: %v", len(errs), errs)
	}
}
