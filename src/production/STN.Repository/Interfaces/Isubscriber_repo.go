package interfaces

import (
	"context"
	"time"

	stnmodels "gitlab.com/stationzero/zero.temp_server/src/production/STN.Models"
)

// SubscriberRepository is the notification registry, keyed by phone number.
type SubscriberRepository interface {
	// Upsert registers or re-registers a subscriber. The phone number must
	// start with '+' (stnmodels.ErrInvalidPhoneNumber otherwise). A new
	// subscriber starts with last_notified unset; re-registration replaces
	// the thresholds only and preserves last_notified.
	Upsert(ctx context.Context, phoneNumber string, thresholdHigh, thresholdLow float64) error

	// List returns a full snapshot of all subscribers.
	List(ctx context.Context) ([]stnmodels.Subscriber, error)

	// MarkNotified sets last_notified for exactly that subscriber. A missing
	// subscriber is ignored; the registration may have raced away.
	MarkNotified(ctx context.Context, phoneNumber string, when time.Time) error
}
