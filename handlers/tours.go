package handlers

import (
	"errors"
	"net/http"
	"time"

	tourRepo "vltava/database/repository/tour"
	"vltava/models"
	"vltava/services/booking"
	"vltava/utils"

	"github.com/gin-gonic/gin"
)

// TourHandler serves the tour catalogue and price quotes.
type TourHandler struct {
	Tours  tourRepo.TourRepository
	Engine *booking.Engine
}

// NewTourHandler wires a tour handler.
func NewTourHandler(tours tourRepo.TourRepository, engine *booking.Engine) *TourHandler {
	return &TourHandler{Tours: tours, Engine: engine}
}

// ListTours returns the full catalogue.
func (h *TourHandler) ListTours(c *gin.Context) {
	tours, err := h.Tours.GetAll(c.Request.Context())
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to load tours", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"tours": tours})
}

// GetTour returns one tour by slug.
func (h *TourHandler) GetTour(c *gin.Context) {
	tour, err := h.Tours.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, tourRepo.ErrTourNotFound) {
			utils.JSONError(c, http.StatusNotFound, "unknown tour", c.Param("id"))
			return
		}
		utils.JSONError(c, http.StatusInternalServerError, "failed to load tour", err.Error())
		return
	}
	c.JSON(http.StatusOK, tour)
}

// Quote prices a prospective booking without creating anything. Date rules
// and group size are validated first so the quote reflects a bookable trip.
func (h *TourHandler) Quote(c *gin.Context) {
	var input struct {
		Date      string `form:"date" binding:"required"`
		GroupSize int    `form:"groupSize" binding:"required"`
	}
	if err := c.ShouldBindQuery(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	tour, err := h.Tours.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, tourRepo.ErrTourNotFound) {
			utils.JSONError(c, http.StatusNotFound, "unknown tour", c.Param("id"))
			return
		}
		utils.JSONError(c, http.StatusInternalServerError, "failed to load tour", err.Error())
		return
	}

	now := time.Now()
	var ruleErrs []booking.RuleError
	if re := h.Engine.ValidateDate(input.Date, now); re != nil {
		ruleErrs = append(ruleErrs, *re)
	}
	if re := h.Engine.ValidateGroupSize(input.GroupSize, *tour); re != nil {
		ruleErrs = append(ruleErrs, *re)
	}
	if re := h.Engine.ValidateTourDay(*tour, input.Date, now.Location()); re != nil {
		ruleErrs = append(ruleErrs, *re)
	}
	if len(ruleErrs) > 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"errors": ruleErrs})
		return
	}

	date, _ := time.ParseInLocation(models.DateLayout, input.Date, now.Location())
	c.JSON(http.StatusOK, gin.H{
		"tourId":     tour.ID,
		"date":       input.Date,
		"groupSize":  input.GroupSize,
		"totalPrice": booking.QuotePrice(*tour, input.GroupSize, date),
		"currency":   tour.Currency,
	})
}
