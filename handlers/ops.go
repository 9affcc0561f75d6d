package handlers

import (
	"net/http"
	"strconv"
	"time"

	"vltava/config"
	"vltava/services/monitoring"
	"vltava/utils"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

// opsTokenTTL is how long an issued dashboard token stays valid.
const opsTokenTTL = 12 * time.Hour

// OpsHandler serves the operational read API consumed by the dashboard.
type OpsHandler struct {
	Monitor *monitoring.Monitor
}

// NewOpsHandler wires an ops handler.
func NewOpsHandler(monitor *monitoring.Monitor) *OpsHandler {
	return &OpsHandler{Monitor: monitor}
}

// IssueToken exchanges the configured ops API key for a short-lived JWT.
func (h *OpsHandler) IssueToken(c *gin.Context) {
	var input struct {
		APIKey string `json:"apiKey" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	hash := config.AppConfig.OpsAPIKeyHash
	if hash == "" {
		utils.JSONError(c, http.StatusServiceUnavailable, "ops access not configured", "")
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(input.APIKey)); err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid ops key"})
		return
	}

	token, err := utils.GenerateOpsToken("ops-dashboard", opsTokenTTL)
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to issue token", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token, "expiresIn": int(opsTokenTTL.Seconds())})
}

// GetMetrics returns the aggregate booking counters.
func (h *OpsHandler) GetMetrics(c *gin.Context) {
	c.JSON(http.StatusOK, h.Monitor.Metrics())
}

// GetErrorRate returns the booking error rate over a trailing window.
func (h *OpsHandler) GetErrorRate(c *gin.Context) {
	windowSec := 300
	if raw := c.Query("windowSeconds"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			utils.JSONError(c, http.StatusBadRequest, "invalid windowSeconds", raw)
			return
		}
		windowSec = parsed
	}
	rate := h.Monitor.ErrorRate(time.Duration(windowSec) * time.Second)
	c.JSON(http.StatusOK, gin.H{"windowSeconds": windowSec, "errorRate": rate})
}

// GetHealth returns the derived booking health verdict alongside the
// infrastructure snapshot.
func (h *OpsHandler) GetHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"verdict":        h.Monitor.Health(),
		"infrastructure": utils.GetHealthStatus(),
	})
}
