package scheduling

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"vltava/models"
)

// slotwiseProvider talks to the Slotwise scheduling API. Availability is a
// flat array of slots; the maximum group size is a provider-level constant
// supplied through configuration rather than the response.
type slotwiseProvider struct {
	http         *http.Client
	base         string
	apiKey       string
	maxGroupSize int
}

func newSlotwiseProvider(cfg Config) *slotwiseProvider {
	return &slotwiseProvider{
		http:         &http.Client{Timeout: cfg.Timeout},
		base:         strings.TrimRight(cfg.SlotwiseBaseURL, "/"),
		apiKey:       cfg.SlotwiseAPIKey,
		maxGroupSize: cfg.SlotwiseMaxGroupSize,
	}
}

func (p *slotwiseProvider) Name() string { return "slotwise" }

func (p *slotwiseProvider) CheckAvailability(ctx context.Context, tourID, date string) (models.AvailabilityResult, error) {
	q := url.Values{}
	q.Set("tour_id", tourID)
	q.Set("date", date)
	reqURL := p.base + "/v1/availability?" + q.Encode()

	hreq, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return models.AvailabilityResult{}, err
	}
	hreq.Header.Set("x-api-key", p.apiKey)

	hresp, err := p.http.Do(hreq)
	if err != nil {
		return models.AvailabilityResult{}, err
	}
	defer hresp.Body.Close()

	body, _ := io.ReadAll(hresp.Body)
	if hresp.StatusCode < 200 || hresp.StatusCode >= 300 {
		return models.AvailabilityResult{}, fmt.Errorf("slotwise availability http %d: %s", hresp.StatusCode, string(body))
	}

	var parsed []struct {
		Time           string `json:"time"`
		SlotsRemaining int    `json:"slotsRemaining"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return models.AvailabilityResult{}, fmt.Errorf("slotwise parse availability: %w", err)
	}

	slots := make([]models.Slot, 0, len(parsed))
	for _, s := range parsed {
		if s.SlotsRemaining <= 0 {
			continue
		}
		slots = append(slots, models.Slot{Time: s.Time, CapacityRemaining: s.SlotsRemaining})
	}

	return models.AvailabilityResult{
		Available:    len(slots) > 0,
		Slots:        slots,
		MaxGroupSize: p.maxGroupSize,
	}, nil
}

func (p *slotwiseProvider) CreateBooking(ctx context.Context, idempotencyKey string, req models.BookingRequest) (models.BookingResult, error) {
	payload := map[string]any{
		"tour_id":    req.TourID,
		"date":       req.Date,
		"time":       req.StartTime,
		"party_size": req.GroupSize,
		"customer": map[string]string{
			"first_name": req.Customer.FirstName,
			"last_name":  req.Customer.LastName,
			"email":      req.Customer.Email,
			"phone":      req.Customer.Phone,
			"country":    req.Customer.Country,
		},
		"notes": req.SpecialRequests,
	}
	b, _ := json.Marshal(payload)

	hreq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.base+"/v1/bookings", bytes.NewReader(b))
	if err != nil {
		return models.BookingResult{}, err
	}
	hreq.Header.Set("content-type", "application/json")
	hreq.Header.Set("x-api-key", p.apiKey)
	hreq.Header.Set("Idempotency-Key", idempotencyKey)

	hresp, err := p.http.Do(hreq)
	if err != nil {
		return models.BookingResult{}, err
	}
	defer hresp.Body.Close()

	body, _ := io.ReadAll(hresp.Body)
	if hresp.StatusCode < 200 || hresp.StatusCode >= 300 {
		return models.BookingResult{
			Success:   false,
			Error:     extractProviderError(body, hresp.StatusCode),
			Retryable: retryableStatus(hresp.StatusCode),
		}, nil
	}

	var parsed struct {
		ID           string `json:"id"`
		Confirmation string `json:"confirmation"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return models.BookingResult{}, fmt.Errorf("slotwise parse booking: %w", err)
	}

	return models.BookingResult{
		Success:          true,
		BookingID:        parsed.ID,
		ConfirmationCode: parsed.Confirmation,
	}, nil
}

// retryableStatus reports whether a booking rejected with this status may
// still succeed on a later attempt. Server-side errors and throttling are
// transient; only a 4xx is a definitive business rejection.
func retryableStatus(status int) bool {
	return status >= 500 || status == http.StatusTooManyRequests
}

// extractProviderError pulls a human-readable message out of a provider error
// body, falling back to the HTTP status.
func extractProviderError(body []byte, status int) string {
	var parsed struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil {
		if parsed.Error != "" {
			return parsed.Error
		}
		if parsed.Message != "" {
			return parsed.Message
		}
	}
	return fmt.Sprintf("provider rejected the booking (http %d)", status)
}

// timed wraps a duration measurement for the facade.
func timed(start time.Time) int64 {
	return time.Since(start).Milliseconds()
}
