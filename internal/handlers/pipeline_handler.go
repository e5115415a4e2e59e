package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/logger"
	"fintrack/internal/services"
)

// PipelineHandler serves endpoints triggered by an external scheduler.
type PipelineHandler struct {
	notificationService services.NotificationServicer
	now                 func() time.Time
}

// NewPipelineHandler creates a new PipelineHandler.
func NewPipelineHandler(notificationService services.NotificationServicer) *PipelineHandler {
	return &PipelineHandler{notificationService: notificationService, now: time.Now}
}

// ScanNotificationsRequest optionally pins the scan's reference date.
type ScanNotificationsRequest struct {
	Date string `json:"date" binding:"omitempty,datetime=2006-01-02"`
}

// ScanNotifications creates overdue and upcoming income alerts for every user.
// @Summary     Scan income alerts
// @Description Create overdue and upcoming income notifications for all users (pipeline endpoint). Alerts already sent are not repeated.
// @Tags        pipeline
// @Accept      json
// @Produce     json
// @Param       X-API-Key header   string                   true  "Pipeline API key"
// @Param       request   body     ScanNotificationsRequest false "Reference date, defaults to today"
// @Success     200       {object} services.ScanResult      "Alerts created"
// @Failure     400       {object} ErrorResponse            "Invalid input"
// @Failure     401       {object} ErrorResponse            "Invalid API key"
// @Failure     503       {object} ErrorResponse            "Pipeline not configured"
// @Router      /pipeline/notifications/scan [post]
func (h *PipelineHandler) ScanNotifications(c *gin.Context) {
	var req ScanNotificationsRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
			return
		}
	}

	now := h.now()
	if req.Date != "" {
		d, err := time.Parse(dateLayout, req.Date)
		if err != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid date, expected YYYY-MM-DD"))
			return
		}
		now = d
	}

	result, err := h.notificationService.ScanIncomeAlerts(now)
	if err != nil {
		respondWithError(c, err)
		return
	}

	logger.Get().Infow("income alert scan finished",
		"scanned", result.Scanned,
		"overdue", result.Overdue,
		"upcoming", result.Upcoming,
	)

	c.JSON(http.StatusOK, result)
}
