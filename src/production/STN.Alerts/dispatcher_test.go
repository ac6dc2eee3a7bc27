package alerts

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	config "gitlab.com/stationzero/zero.temp_server/src/production/STN.Config"
	logger "gitlab.com/stationzero/zero.temp_server/src/production/STN.Logger"
	stnmodels "gitlab.com/stationzero/zero.temp_server/src/production/STN.Models"
	implementation "gitlab.com/stationzero/zero.temp_server/src/production/STN.Repository/Implementation"
)

type sentMessage struct {
	To   string
	Body string
}

type fakeMessenger struct {
	sent []sentMessage
	fail bool
}

func (m *fakeMessenger) Send(ctx context.Context, to, body string) error {
	if m.fail {
		return fmt.Errorf("provider rejected message")
	}
	m.sent = append(m.sent, sentMessage{To: to, Body: body})
	return nil
}

func testLogger() *logger.Logger {
	return logger.NewLogger(&config.LoggingConfig{Level: "error", Format: "json", Output: "stderr"})
}

func tempReading(temp float64) stnmodels.Reading {
	return stnmodels.Reading{
		Timestamp:   time.Now().UTC(),
		Status:      stnmodels.StatusOK,
		Temperature: &temp,
	}
}

func TestDispatcherCooldownSequence(t *testing.T) {
	ctx := context.Background()
	subs := implementation.NewMemorySubscriberRepository()
	require.NoError(t, subs.Upsert(ctx, "+33612345678", 35, 5))

	messenger := &fakeMessenger{}
	d := NewThresholdDispatcher(subs, messenger, DefaultCooldown, testLogger())

	t0 := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	d.now = func() time.Time { return t0 }

	// First crossing sends and stamps last_notified.
	d.Evaluate(ctx, tempReading(36.0))
	require.Len(t, messenger.sent, 1)
	assert.Equal(t, "+33612345678", messenger.sent[0].To)
	assert.Contains(t, messenger.sent[0].Body, "36.0")

	listed, err := subs.List(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	require.NotNil(t, listed[0].LastNotified)
	assert.Equal(t, t0, listed[0].LastNotified.UTC())

	// Ten seconds later the cooldown is active.
	d.now = func() time.Time { return t0.Add(10 * time.Second) }
	d.Evaluate(ctx, tempReading(40.0))
	assert.Len(t, messenger.sent, 1)

	// Past the cooldown window it fires again.
	d.now = func() time.Time { return t0.Add(3601 * time.Second) }
	d.Evaluate(ctx, tempReading(40.0))
	assert.Len(t, messenger.sent, 2)
}

func TestDispatcherLowThreshold(t *testing.T) {
	ctx := context.Background()
	subs := implementation.NewMemorySubscriberRepository()
	require.NoError(t, subs.Upsert(ctx, "+33612345678", 35, 5))

	messenger := &fakeMessenger{}
	d := NewThresholdDispatcher(subs, messenger, DefaultCooldown, testLogger())

	d.Evaluate(ctx, tempReading(2.5))
	require.Len(t, messenger.sent, 1)
	assert.Contains(t, messenger.sent[0].Body, "basse")
	assert.Contains(t, messenger.sent[0].Body, "2.5")
}

func TestDispatcherInRangeTemperature(t *testing.T) {
	ctx := context.Background()
	subs := implementation.NewMemorySubscriberRepository()
	require.NoError(t, subs.Upsert(ctx, "+33612345678", 35, 5))

	messenger := &fakeMessenger{}
	d := NewThresholdDispatcher(subs, messenger, DefaultCooldown, testLogger())

	d.Evaluate(ctx, tempReading(21.0))
	assert.Empty(t, messenger.sent)

	listed, err := subs.List(ctx)
	require.NoError(t, err)
	assert.Nil(t, listed[0].LastNotified)
}

func TestDispatcherSkipsReadingsWithoutTemperature(t *testing.T) {
	ctx := context.Background()
	subs := implementation.NewMemorySubscriberRepository()
	require.NoError(t, subs.Upsert(ctx, "+33612345678", 35, 5))

	messenger := &fakeMessenger{}
	d := NewThresholdDispatcher(subs, messenger, DefaultCooldown, testLogger())

	d.Evaluate(ctx, stnmodels.Reading{Timestamp: time.Now().UTC(), Status: stnmodels.StatusSensorFault})
	assert.Empty(t, messenger.sent)
}

func TestDispatcherSendFailureLeavesCooldownUntouched(t *testing.T) {
	ctx := context.Background()
	subs := implementation.NewMemorySubscriberRepository()
	require.NoError(t, subs.Upsert(ctx, "+33612345678", 35, 5))

	messenger := &fakeMessenger{fail: true}
	d := NewThresholdDispatcher(subs, messenger, DefaultCooldown, testLogger())

	d.Evaluate(ctx, tempReading(36.0))
	assert.Empty(t, messenger.sent)

	listed, err := subs.List(ctx)
	require.NoError(t, err)
	require.Nil(t, listed[0].LastNotified)

	// The next qualifying reading retries the send.
	messenger.fail = false
	d.Evaluate(ctx, tempReading(37.0))
	require.Len(t, messenger.sent, 1)
}

func TestDispatcherEvaluatesSubscribersIndependently(t *testing.T) {
	ctx := context.Background()
	subs := implementation.NewMemorySubscriberRepository()
	require.NoError(t, subs.Upsert(ctx, "+33611111111", 35, 5))
	require.NoError(t, subs.Upsert(ctx, "+33622222222", 40, 5))

	messenger := &fakeMessenger{}
	d := NewThresholdDispatcher(subs, messenger, DefaultCooldown, testLogger())

	// 37 crosses the first subscriber's threshold only.
	d.Evaluate(ctx, tempReading(37.0))
	require.Len(t, messenger.sent, 1)
	assert.Equal(t, "+33611111111", messenger.sent[0].To)
}

func TestDisabledDispatcherIsNoop(t *testing.T) {
	d := NewDisabledDispatcher()
	d.Evaluate(context.Background(), tempReading(99.0))
}
