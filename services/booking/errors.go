package booking

import "fmt"

// Rule codes reported by the validation engine.
const (
	CodePastDate             = "pastDate"
	CodeTooFarAhead          = "tooFarAhead"
	CodeInvalidDate          = "invalidDate"
	CodeInvalidTime          = "invalidTime"
	CodeInsufficientLeadTime = "insufficientLeadTime"
	CodeGroupSizeExceeded    = "groupSizeExceeded"
	CodeGroupSizeInvalid     = "groupSizeInvalid"
	CodeNotOperatingOnDate   = "notOperatingOnDate"
	CodeFieldRequired        = "fieldRequired"
	CodeFieldInvalid         = "fieldInvalid"
)

// RuleError describes one violated business rule or invalid field.
type RuleError struct {
	Code    string `json:"code"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

func (e *RuleError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// ValidationError aggregates every problem found in a booking request, so the
// caller can surface all of them at once rather than one per round trip.
type ValidationError struct {
	Errors []RuleError
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Message
	}
	return fmt.Sprintf("booking request has %d validation errors", len(e.Errors))
}

// SessionStateError is returned for illegal step transitions.
type SessionStateError struct {
	Message string
}

func (e *SessionStateError) Error() string { return e.Message }
