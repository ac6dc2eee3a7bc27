package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	config "gitlab.com/stationzero/zero.temp_server/src/production/STN.Config"
	logger "gitlab.com/stationzero/zero.temp_server/src/production/STN.Logger"
	stnmodels "gitlab.com/stationzero/zero.temp_server/src/production/STN.Models"
	interfaces "gitlab.com/stationzero/zero.temp_server/src/production/STN.Repository/Interfaces"
)

// SubscribeRequest registers a phone number for threshold alerts. Omitted
// thresholds fall back to the configured defaults.
type SubscribeRequest struct {
	Number        string   `json:"number"`
	ThresholdHigh *float64 `json:"threshold_high"`
	ThresholdLow  *float64 `json:"threshold_low"`
}

// NotificationController handles alert subscription requests.
type NotificationController struct {
	subscriberRepo   interfaces.SubscriberRepository
	alertsCfg        config.AlertsConfig
	messagingEnabled bool
	logger           *logger.Logger
}

// NewNotificationController creates a new notification controller
func NewNotificationController(subscriberRepo interfaces.SubscriberRepository, alertsCfg config.AlertsConfig, messagingEnabled bool, log *logger.Logger) *NotificationController {
	return &NotificationController{
		subscriberRepo:   subscriberRepo,
		alertsCfg:        alertsCfg,
		messagingEnabled: messagingEnabled,
		logger:           log.WithComponent("notification-controller"),
	}
}

// RegisterRoutes registers the notification routes with Gin
func (c *NotificationController) RegisterRoutes(router *gin.Engine) {
	router.POST("/notifications", c.Subscribe)
}

// Subscribe upserts a subscriber. Registration is refused while the server
// runs without SMS credentials; accepting a number that can never be alerted
// would be misleading.
func (c *NotificationController) Subscribe(ctx *gin.Context) {
	if !c.messagingEnabled {
		ctx.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "error",
			"message": stnmodels.ErrMessagingDisabled.Error(),
		})
		return
	}

	var req SubscribeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "invalid body"})
		return
	}

	high := c.alertsCfg.DefaultThresholdHigh
	if req.ThresholdHigh != nil {
		high = *req.ThresholdHigh
	}
	low := c.alertsCfg.DefaultThresholdLow
	if req.ThresholdLow != nil {
		low = *req.ThresholdLow
	}

	if err := c.subscriberRepo.Upsert(ctx, req.Number, high, low); err != nil {
		if errors.Is(err, stnmodels.ErrInvalidPhoneNumber) {
			ctx.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": err.Error()})
			return
		}
		c.logger.ErrorWithError(err, "failed to upsert subscriber")
		ctx.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": "store unavailable"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
}
