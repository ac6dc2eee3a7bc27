package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	alerts "gitlab.com/stationzero/zero.temp_server/src/production/STN.Alerts"
	logger "gitlab.com/stationzero/zero.temp_server/src/production/STN.Logger"
	stnmodels "gitlab.com/stationzero/zero.temp_server/src/production/STN.Models"
	interfaces "gitlab.com/stationzero/zero.temp_server/src/production/STN.Repository/Interfaces"
	telemetry "gitlab.com/stationzero/zero.temp_server/src/production/STN.Telemetry"
)

// TempRequest is the ingestion payload pushed by the sensor node.
type TempRequest struct {
	Temp   *float64 `json:"temp"`
	Status string   `json:"status"`
}

// ReadingController handles ingestion and all dashboard query endpoints.
type ReadingController struct {
	readingRepo        interfaces.ReadingRepository
	aggregator         *telemetry.Aggregator
	dispatcher         alerts.Dispatcher
	freshnessThreshold time.Duration
	logger             *logger.Logger
}

// NewReadingController creates a new reading controller
func NewReadingController(readingRepo interfaces.ReadingRepository, aggregator *telemetry.Aggregator, dispatcher alerts.Dispatcher, freshnessThreshold time.Duration, log *logger.Logger) *ReadingController {
	return &ReadingController{
		readingRepo:        readingRepo,
		aggregator:         aggregator,
		dispatcher:         dispatcher,
		freshnessThreshold: freshnessThreshold,
		logger:             log.WithComponent("reading-controller"),
	}
}

// RegisterRoutes registers the reading routes with Gin
func (c *ReadingController) RegisterRoutes(router *gin.Engine) {
	router.POST("/temp", c.IngestReading)
	router.GET("/latest", c.GetLatest)
	router.GET("/daily-stats", c.GetDailyStats)
	router.GET("/daily-data", c.GetDailyData)
	router.GET("/history", c.GetHistory)
	router.GET("/average", c.GetAverage)
}

// IngestReading stores one observation and runs the alert pass. The response
// only reflects the store write: alerting is best-effort and never fails the
// sensor's request.
func (c *ReadingController) IngestReading(ctx *gin.Context) {
	var req TempRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "invalid body"})
		return
	}

	reading, err := c.readingRepo.Insert(ctx, stnmodels.ParseStatus(req.Status), req.Temp)
	if err != nil {
		c.logger.ErrorWithError(err, "failed to store reading")
		ctx.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": "store unavailable"})
		return
	}

	c.dispatcher.Evaluate(ctx, reading)

	ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// GetLatest returns the most recent reading classified for staleness.
func (c *ReadingController) GetLatest(ctx *gin.Context) {
	reading, err := c.readingRepo.Latest(ctx)
	if err != nil {
		c.logger.ErrorWithError(err, "failed to fetch latest reading")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "store unavailable"})
		return
	}

	snapshot := telemetry.Classify(reading, time.Now().UTC(), c.freshnessThreshold)
	ctx.JSON(http.StatusOK, snapshot)
}

// GetDailyStats returns avg/min/max over the current UTC day.
func (c *ReadingController) GetDailyStats(ctx *gin.Context) {
	stats, err := c.aggregator.DailyStats(ctx, time.Now().UTC())
	if err != nil {
		c.logger.ErrorWithError(err, "failed to compute daily stats")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "store unavailable"})
		return
	}
	ctx.JSON(http.StatusOK, stats)
}

// GetDailyData returns the current UTC day's temperature series.
func (c *ReadingController) GetDailyData(ctx *gin.Context) {
	points, err := c.aggregator.DailyData(ctx, time.Now().UTC())
	if err != nil {
		c.logger.ErrorWithError(err, "failed to fetch daily data")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "store unavailable"})
		return
	}
	ctx.JSON(http.StatusOK, points)
}

// GetHistory returns the temperature series between ?start and ?end dates,
// both inclusive.
func (c *ReadingController) GetHistory(ctx *gin.Context) {
	points, err := c.aggregator.RangeHistory(ctx, ctx.Query("start"), ctx.Query("end"))
	if err != nil {
		if errors.Is(err, stnmodels.ErrInvalidRange) {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.logger.ErrorWithError(err, "failed to fetch history")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "store unavailable"})
		return
	}
	ctx.JSON(http.StatusOK, points)
}

// GetAverage returns the rolling 24h mean temperature.
func (c *ReadingController) GetAverage(ctx *gin.Context) {
	avg, err := c.aggregator.RollingAverage(ctx, time.Now().UTC())
	if err != nil {
		c.logger.ErrorWithError(err, "failed to compute rolling average")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "store unavailable"})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"average": avg})
}
