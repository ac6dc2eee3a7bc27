package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	config "gitlab.com/stationzero/zero.temp_server/src/production/STN.Config"
	logger "gitlab.com/stationzero/zero.temp_server/src/production/STN.Logger"
	stnmodels "gitlab.com/stationzero/zero.temp_server/src/production/STN.Models"
	implementation "gitlab.com/stationzero/zero.temp_server/src/production/STN.Repository/Implementation"
	telemetry "gitlab.com/stationzero/zero.temp_server/src/production/STN.Telemetry"
)

// recordingDispatcher captures the readings handed to the alert pass.
type recordingDispatcher struct {
	evaluated []stnmodels.Reading
}

func (d *recordingDispatcher) Evaluate(ctx context.Context, reading stnmodels.Reading) {
	d.evaluated = append(d.evaluated, reading)
}

type testEnv struct {
	router     *gin.Engine
	readings   *implementation.MemoryReadingRepository
	subs       *implementation.MemorySubscriberRepository
	dispatcher *recordingDispatcher
}

func newTestEnv(t *testing.T, messagingEnabled bool) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log := logger.NewLogger(&config.LoggingConfig{Level: "error", Format: "json", Output: "stderr"})
	readings := implementation.NewMemoryReadingRepository()
	subs := implementation.NewMemorySubscriberRepository()
	dispatcher := &recordingDispatcher{}
	agg := telemetry.NewAggregator(readings, 24*time.Hour)

	router := gin.New()
	NewReadingController(readings, agg, dispatcher, telemetry.DefaultFreshnessThreshold, log).RegisterRoutes(router)
	NewNotificationController(subs, config.AlertsConfig{
		Cooldown:             time.Hour,
		DefaultThresholdHigh: 35.0,
		DefaultThresholdLow:  5.0,
	}, messagingEnabled, log).RegisterRoutes(router)
	NewHealthController(func(ctx context.Context) map[string]interface{} {
		return map[string]interface{}{"status": "ok"}
	}).RegisterRoutes(router)

	return &testEnv{router: router, readings: readings, subs: subs, dispatcher: dispatcher}
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reqBody *bytes.Buffer
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reqBody = bytes.NewBuffer(data)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestIngestReadingStoresAndDispatches(t *testing.T) {
	env := newTestEnv(t, true)

	w := env.do(t, http.MethodPost, "/temp", gin.H{"temp": 21.5, "status": "ok"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", decode(t, w)["status"])

	stored, err := env.readings.QuerySince(context.Background(), time.Time{}, false)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, stnmodels.StatusOK, stored[0].Status)
	require.NotNil(t, stored[0].Temperature)
	assert.Equal(t, 21.5, *stored[0].Temperature)

	require.Len(t, env.dispatcher.evaluated, 1)
	assert.Equal(t, stored[0].ID, env.dispatcher.evaluated[0].ID)
}

func TestIngestReadingWithoutTemperature(t *testing.T) {
	env := newTestEnv(t, true)

	w := env.do(t, http.MethodPost, "/temp", gin.H{"status": "ble"})
	require.Equal(t, http.StatusOK, w.Code)

	stored, err := env.readings.QuerySince(context.Background(), time.Time{}, false)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, stnmodels.StatusBLE, stored[0].Status)
	assert.Nil(t, stored[0].Temperature)

	// The dispatcher still receives the reading; skipping it is its job.
	assert.Len(t, env.dispatcher.evaluated, 1)
}

func TestIngestReadingUnknownStatus(t *testing.T) {
	env := newTestEnv(t, true)

	w := env.do(t, http.MethodPost, "/temp", gin.H{"temp": 20.0, "status": "rebooting"})
	require.Equal(t, http.StatusOK, w.Code)

	stored, err := env.readings.QuerySince(context.Background(), time.Time{}, false)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, stnmodels.StatusUnknown, stored[0].Status)
}

func TestIngestReadingBadBody(t *testing.T) {
	env := newTestEnv(t, true)

	req := httptest.NewRequest(http.MethodPost, "/temp", bytes.NewBufferString("{not json"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetLatestEmpty(t *testing.T) {
	env := newTestEnv(t, true)

	w := env.do(t, http.MethodGet, "/latest", nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decode(t, w)
	assert.Equal(t, "no_data", body["status"])
	assert.Nil(t, body["temp"])
	assert.Nil(t, body["age_seconds"])
}

func TestGetLatestFreshReading(t *testing.T) {
	env := newTestEnv(t, true)
	temp := 21.5
	env.readings.Seed(stnmodels.Reading{
		Timestamp:   time.Now().UTC(),
		Status:      stnmodels.StatusOK,
		Temperature: &temp,
	})

	w := env.do(t, http.MethodGet, "/latest", nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decode(t, w)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, 21.5, body["temp"])
	require.NotNil(t, body["age_seconds"])
	assert.Less(t, body["age_seconds"].(float64), 5.0)
}

func TestGetLatestStaleReading(t *testing.T) {
	env := newTestEnv(t, true)
	temp := 21.5
	env.readings.Seed(stnmodels.Reading{
		Timestamp:   time.Now().UTC().Add(-time.Minute),
		Status:      stnmodels.StatusOK,
		Temperature: &temp,
	})

	w := env.do(t, http.MethodGet, "/latest", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "offline", decode(t, w)["status"])
}

func TestGetDailyStatsEmpty(t *testing.T) {
	env := newTestEnv(t, true)

	w := env.do(t, http.MethodGet, "/daily-stats", nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decode(t, w)
	assert.Nil(t, body["avg"])
	assert.Nil(t, body["min"])
	assert.Nil(t, body["max"])
}

func TestGetHistoryMissingParams(t *testing.T) {
	env := newTestEnv(t, true)

	w := env.do(t, http.MethodGet, "/history", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodGet, "/history?start=2024-01-01", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodGet, "/history?start=bogus&end=2024-01-02", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetHistoryReturnsSeries(t *testing.T) {
	env := newTestEnv(t, true)
	temp := 18.0
	env.readings.Seed(stnmodels.Reading{
		Timestamp:   time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
		Status:      stnmodels.StatusOK,
		Temperature: &temp,
	})

	w := env.do(t, http.MethodGet, "/history?start=2024-01-01&end=2024-01-01", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var points []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &points))
	require.Len(t, points, 1)
	assert.Equal(t, 18.0, points[0]["temp"])
}

func TestGetAverageEmpty(t *testing.T) {
	env := newTestEnv(t, true)

	w := env.do(t, http.MethodGet, "/average", nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decode(t, w)
	val, present := body["average"]
	assert.True(t, present)
	assert.Nil(t, val)
}

func TestSubscribeMessagingDisabled(t *testing.T) {
	env := newTestEnv(t, false)

	w := env.do(t, http.MethodPost, "/notifications", gin.H{"number": "+33612345678"})
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "error", decode(t, w)["status"])
}

func TestSubscribeInvalidNumber(t *testing.T) {
	env := newTestEnv(t, true)

	w := env.do(t, http.MethodPost, "/notifications", gin.H{"number": "0612345678"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "error", decode(t, w)["status"])
}

func TestSubscribeAppliesDefaultThresholds(t *testing.T) {
	env := newTestEnv(t, true)

	w := env.do(t, http.MethodPost, "/notifications", gin.H{"number": "+33612345678"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", decode(t, w)["status"])

	subs, err := env.subs.List(context.Background())
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, 35.0, subs[0].ThresholdHigh)
	assert.Equal(t, 5.0, subs[0].ThresholdLow)
}

func TestSubscribeCustomThresholds(t *testing.T) {
	env := newTestEnv(t, true)

	w := env.do(t, http.MethodPost, "/notifications", gin.H{
		"number":         "+33612345678",
		"threshold_high": 30.0,
		"threshold_low":  10.0,
	})
	require.Equal(t, http.StatusOK, w.Code)

	subs, err := env.subs.List(context.Background())
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, 30.0, subs[0].ThresholdHigh)
	assert.Equal(t, 10.0, subs[0].ThresholdLow)
}

func TestHealthLive(t *testing.T) {
	env := newTestEnv(t, true)

	w := env.do(t, http.MethodGet, "/health/live", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHealthReady(t *testing.T) {
	env := newTestEnv(t, true)

	w := env.do(t, http.MethodGet, "/health/ready", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
