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

	"vltava/models"
)

// tourdeskProvider talks to the TourDesk API. Availability comes back as a
// nested object carrying its own max group size and a pricing snapshot.
type tourdeskProvider struct {
	http   *http.Client
	base   string
	apiKey string
}

func newTourdeskProvider(cfg Config) *tourdeskProvider {
	return &tourdeskProvider{
		http:   &http.Client{Timeout: cfg.Timeout},
		base:   strings.TrimRight(cfg.TourdeskBaseURL, "/"),
		apiKey: cfg.TourdeskAPIKey,
	}
}

func (p *tourdeskProvider) Name() string { return "tourdesk" }

func (p *tourdeskProvider) CheckAvailability(ctx context.Context, tourID, date string) (models.AvailabilityResult, error) {
	q := url.Values{}
	q.Set("date", date)
	reqURL := fmt.Sprintf("%s/tours/%s/availability?%s", p.base, url.PathEscape(tourID), q.Encode())

	hreq, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return models.AvailabilityResult{}, err
	}
	hreq.Header.Set("authorization", "Bearer "+p.apiKey)

	hresp, err := p.http.Do(hreq)
	if err != nil {
		return models.AvailabilityResult{}, err
	}
	defer hresp.Body.Close()

	body, _ := io.ReadAll(hresp.Body)
	if hresp.StatusCode < 200 || hresp.StatusCode >= 300 {
		return models.AvailabilityResult{}, fmt.Errorf("tourdesk availability http %d: %s", hresp.StatusCode, string(body))
	}

	var parsed struct {
		AvailableTimes []struct {
			Time     string `json:"time"`
			Capacity int    `json:"capacity"`
		} `json:"available_times"`
		MaxGroupSize int     `json:"max_group_size"`
		BasePrice    float64 `json:"base_price"`
		Currency     string  `json:"currency"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return models.AvailabilityResult{}, fmt.Errorf("tourdesk parse availability: %w", err)
	}

	slots := make([]models.Slot, 0, len(parsed.AvailableTimes))
	for _, s := range parsed.AvailableTimes {
		if s.Capacity <= 0 {
			continue
		}
		slots = append(slots, models.Slot{Time: s.Time, CapacityRemaining: s.Capacity})
	}

	return models.AvailabilityResult{
		Available:    len(slots) > 0,
		Slots:        slots,
		MaxGroupSize: parsed.MaxGroupSize,
		Pricing: models.PricingSnapshot{
			BasePrice: parsed.BasePrice,
			Currency:  parsed.Currency,
		},
	}, nil
}

func (p *tourdeskProvider) CreateBooking(ctx context.Context, idempotencyKey string, req models.BookingRequest) (models.BookingResult, error) {
	payload := map[string]any{
		"tour_id":          req.TourID,
		"date":             req.Date,
		"start_time":       req.StartTime,
		"group_size":       req.GroupSize,
		"lead_first_name":  req.Customer.FirstName,
		"lead_last_name":   req.Customer.LastName,
		"lead_email":       req.Customer.Email,
		"lead_phone":       req.Customer.Phone,
		"lead_country":     req.Customer.Country,
		"special_requests": req.SpecialRequests,
	}
	b, _ := json.Marshal(payload)

	hreq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.base+"/bookings", bytes.NewReader(b))
	if err != nil {
		return models.BookingResult{}, err
	}
	hreq.Header.Set("content-type", "application/json")
	hreq.Header.Set("authorization", "Bearer "+p.apiKey)
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
		BookingID        string `json:"booking_id"`
		ConfirmationCode string `json:"confirmation_code"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return models.BookingResult{}, fmt.Errorf("tourdesk parse booking: %w", err)
	}

	return models.BookingResult{
		Success:          true,
		BookingID:        parsed.BookingID,
		ConfirmationCode: parsed.ConfirmationCode,
	}, nil
}
