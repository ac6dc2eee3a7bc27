package alerts

import (
	"context"
	"fmt"
	"time"

	logger "gitlab.com/stationzero/zero.temp_server/src/production/STN.Logger"
	messaging "gitlab.com/stationzero/zero.temp_server/src/production/STN.Messaging"
	stnmodels "gitlab.com/stationzero/zero.temp_server/src/production/STN.Models"
	interfaces "gitlab.com/stationzero/zero.temp_server/src/production/STN.Repository/Interfaces"
)

// DefaultCooldown is the minimum interval between two alerts to the same
// subscriber.
const DefaultCooldown = time.Hour

// Dispatcher evaluates a freshly stored reading against all registered
// subscribers. Implementations never return an error: ingestion must not
// fail because notification failed.
type Dispatcher interface {
	Evaluate(ctx context.Context, reading stnmodels.Reading)
}

// ThresholdDispatcher sends at most one SMS per subscriber per cooldown
// window when the temperature crosses that subscriber's thresholds.
type ThresholdDispatcher struct {
	subscribers interfaces.SubscriberRepository
	messenger   messaging.Messenger
	cooldown    time.Duration
	logger      *logger.Logger

	now func() time.Time
}

// NewThresholdDispatcher creates the production dispatcher.
func NewThresholdDispatcher(subscribers interfaces.SubscriberRepository, messenger messaging.Messenger, cooldown time.Duration, log *logger.Logger) *ThresholdDispatcher {
	return &ThresholdDispatcher{
		subscribers: subscribers,
		messenger:   messenger,
		cooldown:    cooldown,
		logger:      log.WithComponent("alert-dispatcher"),
		now:         time.Now,
	}
}

// Evaluate runs one synchronous pass over the subscriber snapshot. Readings
// without a temperature never trigger evaluation. Each subscriber is judged
// independently: cooldown first, then thresholds. A send failure is logged
// and last_notified stays untouched, so the next qualifying reading retries.
func (d *ThresholdDispatcher) Evaluate(ctx context.Context, reading stnmodels.Reading) {
	if !reading.HasTemperature() {
		return
	}
	temp := *reading.Temperature

	subscribers, err := d.subscribers.List(ctx)
	if err != nil {
		d.logger.ErrorWithError(err, "failed to snapshot subscribers, skipping alert pass")
		return
	}

	now := d.now().UTC()
	for _, sub := range subscribers {
		if sub.LastNotified != nil && now.Sub(*sub.LastNotified) < d.cooldown {
			continue
		}

		var body string
		switch {
		case temp > sub.ThresholdHigh:
			body = fmt.Sprintf("⚠️ Température élevée: %.1f°C", temp)
		case temp < sub.ThresholdLow:
			body = fmt.Sprintf("⚠️ Température basse: %.1f°C", temp)
		default:
			continue
		}

		if err := d.messenger.Send(ctx, sub.PhoneNumber, body); err != nil {
			d.logger.WithField("to", sub.PhoneNumber).ErrorWithError(err, "sms send failed")
			continue
		}

		if err := d.subscribers.MarkNotified(ctx, sub.PhoneNumber, now); err != nil {
			d.logger.WithField("to", sub.PhoneNumber).ErrorWithError(err, "failed to record notification time")
		}
	}
}

// DisabledDispatcher is the no-op variant used when the server runs without
// messaging credentials.
type DisabledDispatcher struct{}

func NewDisabledDispatcher() *DisabledDispatcher {
	return &DisabledDispatcher{}
}

func (d *DisabledDispatcher) Evaluate(ctx context.Context, reading stnmodels.Reading) {}
