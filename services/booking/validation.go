package booking

import (
	"fmt"
	"strings"
	"time"

	"vltava/config"
	"vltava/models"

	"github.com/go-playground/validator/v10"
)

// Rules carries the tunable thresholds of the validation engine.
type Rules struct {
	LeadTime       time.Duration // minimum gap between now and a same-day start
	MaxAdvanceDays int           // furthest bookable day, inclusive
}

// DefaultRules builds Rules from the loaded configuration.
func DefaultRules() Rules {
	return Rules{
		LeadTime:       time.Duration(config.AppConfig.BookingLeadTimeMin) * time.Minute,
		MaxAdvanceDays: config.AppConfig.BookingMaxAdvanceDays,
	}
}

// Engine is the stateless pricing and validation engine. No I/O; tours are
// resolved by the caller and passed in.
type Engine struct {
	Rules    Rules
	validate *validator.Validate
}

// NewEngine returns a validation engine with the given rules.
func NewEngine(rules Rules) *Engine {
	return &Engine{
		Rules:    rules,
		validate: validator.New(),
	}
}

// ValidateDate checks that a booking date is neither in the past nor beyond
// the advance window. The boundary day itself is accepted.
func (e *Engine) ValidateDate(dateStr string, now time.Time) *RuleError {
	date, err := time.ParseInLocation(models.DateLayout, dateStr, now.Location())
	if err != nil {
		return &RuleError{Code: CodeInvalidDate, Field: "date", Message: fmt.Sprintf("invalid date %q, expected YYYY-MM-DD", dateStr)}
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if date.Before(today) {
		return &RuleError{Code: CodePastDate, Field: "date", Message: "booking date cannot be in the past"}
	}
	if date.After(today.AddDate(0, 0, e.Rules.MaxAdvanceDays)) {
		return &RuleError{Code: CodeTooFarAhead, Field: "date", Message: fmt.Sprintf("bookings open at most %d days ahead", e.Rules.MaxAdvanceDays)}
	}
	return nil
}

// ValidateTime checks the start time. Same-day bookings need the start to be
// at least the lead time after now; any time is fine on future dates.
func (e *Engine) ValidateTime(timeStr, dateStr string, now time.Time) *RuleError {
	start, err := time.ParseInLocation(models.TimeLayout, timeStr, now.Location())
	if err != nil {
		return &RuleError{Code: CodeInvalidTime, Field: "startTime", Message: fmt.Sprintf("invalid time %q, expected HH:MM", timeStr)}
	}
	date, err := time.ParseInLocation(models.DateLayout, dateStr, now.Location())
	if err != nil {
		// Reported separately by ValidateDate.
		return nil
	}
	if date.Year() != now.Year() || date.YearDay() != now.YearDay() {
		return nil
	}
	startAt := time.Date(now.Year(), now.Month(), now.Day(), start.Hour(), start.Minute(), 0, 0, now.Location())
	if startAt.Before(now.Add(e.Rules.LeadTime)) {
		return &RuleError{
			Code:    CodeInsufficientLeadTime,
			Field:   "startTime",
			Message: fmt.Sprintf("same-day bookings need at least %d minutes notice", int(e.Rules.LeadTime.Minutes())),
		}
	}
	return nil
}

// ValidateGroupSize checks the group size against the tour's maximum.
func (e *Engine) ValidateGroupSize(size int, tour models.Tour) *RuleError {
	if size < 1 {
		return &RuleError{Code: CodeGroupSizeInvalid, Field: "groupSize", Message: "group size must be at least 1"}
	}
	if size > tour.MaxGroupSize {
		return &RuleError{
			Code:    CodeGroupSizeExceeded,
			Field:   "groupSize",
			Message: fmt.Sprintf("%s takes at most %d people", tour.Name, tour.MaxGroupSize),
		}
	}
	return nil
}

// ValidateTourDay checks the date's weekday against the tour's operating mask.
func (e *Engine) ValidateTourDay(tour models.Tour, dateStr string, loc *time.Location) *RuleError {
	date, err := time.ParseInLocation(models.DateLayout, dateStr, loc)
	if err != nil {
		return nil
	}
	if !tour.OperatesOn(date.Weekday()) {
		return &RuleError{
			Code:    CodeNotOperatingOnDate,
			Field:   "date",
			Message: fmt.Sprintf("%s does not operate on %s", tour.Name, date.Weekday()),
		}
	}
	return nil
}

// ValidateCustomer runs the field checks on customer contact details.
// All failures are reported, never just the first.
func (e *Engine) ValidateCustomer(customer models.Customer) []RuleError {
	err := e.validate.Struct(customer)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return []RuleError{{Code: CodeFieldInvalid, Message: err.Error()}}
	}
	out := make([]RuleError, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.ToLower(fe.Field()[:1]) + fe.Field()[1:]
		if fe.Tag() == "required" {
			out = append(out, RuleError{Code: CodeFieldRequired, Field: field, Message: field + " is required"})
		} else {
			out = append(out, RuleError{Code: CodeFieldInvalid, Field: field, Message: field + " is not valid"})
		}
	}
	return out
}

// ValidateComplete runs every rule against a fully assembled booking request
// and returns the aggregate. A nil slice means the request is valid.
func (e *Engine) ValidateComplete(req models.BookingRequest, tour models.Tour, now time.Time) []RuleError {
	var errs []RuleError
	if re := e.ValidateDate(req.Date, now); re != nil {
		errs = append(errs, *re)
	}
	if re := e.ValidateTime(req.StartTime, req.Date, now); re != nil {
		errs = append(errs, *re)
	}
	if re := e.ValidateGroupSize(req.GroupSize, tour); re != nil {
		errs = append(errs, *re)
	}
	if re := e.ValidateTourDay(tour, req.Date, now.Location()); re != nil {
		errs = append(errs, *re)
	}
	errs = append(errs, e.ValidateCustomer(req.Customer)...)
	return errs
}
