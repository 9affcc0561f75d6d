package handlers

import (
	"errors"
	"net/http"

	tourRepo "vltava/database/repository/tour"
	"vltava/models"
	"vltava/services/booking"
	"vltava/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// BookingHandler exposes the step-by-step booking flow and the direct
// submission endpoint.
type BookingHandler struct {
	Sessions   *booking.SessionService
	Submission *booking.SubmissionService
	Logger     *zap.Logger
}

// NewBookingHandler wires a booking handler.
func NewBookingHandler(sessions *booking.SessionService, submission *booking.SubmissionService, logger *zap.Logger) *BookingHandler {
	return &BookingHandler{Sessions: sessions, Submission: submission, Logger: logger}
}

// StartSession creates a new booking session for a tour.
func (h *BookingHandler) StartSession(c *gin.Context) {
	var input struct {
		TourID string `json:"tourId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	session, err := h.Sessions.Start(c.Request.Context(), input.TourID)
	if err != nil {
		if errors.Is(err, tourRepo.ErrTourNotFound) {
			utils.JSONError(c, http.StatusNotFound, "unknown tour", input.TourID)
			return
		}
		utils.JSONError(c, http.StatusInternalServerError, "failed to start booking session", err.Error())
		return
	}

	c.JSON(http.StatusOK, models.SessionResponse{
		SessionID: session.SessionID,
		Step:      session.Step,
	})
}

// UpdateSchedule handles the date/time/group-size step.
func (h *BookingHandler) UpdateSchedule(c *gin.Context) {
	sessionID := c.Param("sessionID")
	var input booking.ScheduleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	session, ruleErrs, err := h.Sessions.UpdateSchedule(c.Request.Context(), sessionID, input)
	if err != nil {
		h.sessionError(c, err)
		return
	}
	if len(ruleErrs) > 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"errors": ruleErrs, "step": session.Step})
		return
	}

	c.JSON(http.StatusOK, models.SessionResponse{
		SessionID:    session.SessionID,
		Step:         session.Step,
		Availability: session.Availability,
		Quote:        session.Request.TotalPrice,
		Currency:     session.Request.Currency,
	})
}

// UpdateCustomer handles the contact-details step.
func (h *BookingHandler) UpdateCustomer(c *gin.Context) {
	sessionID := c.Param("sessionID")
	var input booking.CustomerInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	session, ruleErrs, err := h.Sessions.UpdateCustomer(c.Request.Context(), sessionID, input)
	if err != nil {
		h.sessionError(c, err)
		return
	}
	if len(ruleErrs) > 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"errors": ruleErrs, "step": session.Step})
		return
	}

	c.JSON(http.StatusOK, models.SessionResponse{
		SessionID: session.SessionID,
		Step:      session.Step,
		Quote:     session.Request.TotalPrice,
		Currency:  session.Request.Currency,
	})
}

// Back steps the flow to the previous stage.
func (h *BookingHandler) Back(c *gin.Context) {
	sessionID := c.Param("sessionID")
	session, err := h.Sessions.Back(c.Request.Context(), sessionID)
	if err != nil {
		h.sessionError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.SessionResponse{
		SessionID: session.SessionID,
		Step:      session.Step,
	})
}

// Confirm submits the reviewed booking.
func (h *BookingHandler) Confirm(c *gin.Context) {
	var input struct {
		SessionID string `json:"sessionId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	session, outcome, err := h.Sessions.Confirm(c.Request.Context(), input.SessionID)
	if err != nil {
		h.sessionError(c, err)
		return
	}

	switch {
	case outcome.Confirmation != nil:
		c.JSON(http.StatusOK, models.SessionResponse{
			SessionID:    session.SessionID,
			Step:         session.Step,
			Confirmation: outcome.Confirmation,
		})
	case outcome.Deferred:
		// The attempt is saved; confirmation arrives once connectivity is back.
		c.JSON(http.StatusAccepted, gin.H{
			"sessionId": session.SessionID,
			"step":      session.Step,
			"deferred":  true,
			"draftId":   outcome.DraftID,
			"message":   "Your booking was saved and will be confirmed as soon as we reconnect.",
		})
	default:
		c.JSON(http.StatusConflict, gin.H{
			"sessionId": session.SessionID,
			"step":      session.Step,
			"error":     outcome.Rejection,
		})
	}
}

// CancelSession abandons a booking flow.
func (h *BookingHandler) CancelSession(c *gin.Context) {
	sessionID := c.Param("sessionID")
	if err := h.Sessions.Cancel(c.Request.Context(), sessionID); err != nil {
		h.sessionError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cancelled": true})
}

// SubmitBooking is the direct submission endpoint: a complete BookingRequest
// in one POST, idempotent on the draft id when the client retries.
func (h *BookingHandler) SubmitBooking(c *gin.Context) {
	var req models.BookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	outcome, err := h.Submission.Submit(c.Request.Context(), req)
	if err != nil {
		var verr *booking.ValidationError
		if errors.As(err, &verr) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"errors": verr.Errors})
			return
		}
		if errors.Is(err, tourRepo.ErrTourNotFound) {
			utils.JSONError(c, http.StatusNotFound, "unknown tour", req.TourID)
			return
		}
		utils.JSONError(c, http.StatusInternalServerError, "failed to submit booking", err.Error())
		return
	}

	switch {
	case outcome.Confirmation != nil:
		c.JSON(http.StatusCreated, outcome.Confirmation)
	case outcome.Deferred:
		c.JSON(http.StatusAccepted, gin.H{
			"deferred": true,
			"draftId":  outcome.DraftID,
			"message":  "Your booking was saved and will be confirmed as soon as we reconnect.",
		})
	default:
		c.JSON(http.StatusConflict, gin.H{"error": outcome.Rejection})
	}
}

func (h *BookingHandler) sessionError(c *gin.Context, err error) {
	var stateErr *booking.SessionStateError
	if errors.As(err, &stateErr) {
		utils.JSONError(c, http.StatusConflict, "invalid booking step", stateErr.Message)
		return
	}
	if errors.Is(err, tourRepo.ErrTourNotFound) {
		utils.JSONError(c, http.StatusNotFound, "unknown tour", err.Error())
		return
	}
	var verr *booking.ValidationError
	if errors.As(err, &verr) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"errors": verr.Errors})
		return
	}
	if errors.Is(err, booking.ErrSessionNotFound) {
		utils.JSONError(c, http.StatusNotFound, "booking session not found or expired", err.Error())
		return
	}
	utils.JSONError(c, http.StatusInternalServerError, "booking step failed", err.Error())
}
