package stnmodels

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Default alert thresholds, matching the dashboard warning bands.
const (
	DefaultThresholdHigh = 35.0
	DefaultThresholdLow  = 5.0
)

var (
	// ErrInvalidPhoneNumber rejects subscriber numbers that are not in
	// international +CC... form.
	ErrInvalidPhoneNumber = errors.New("phone number must start with '+'")

	// ErrInvalidRange flags missing or unparsable history bounds.
	ErrInvalidRange = errors.New("invalid date range")

	// ErrMessagingDisabled is returned by registration when the server runs
	// without SMS credentials.
	ErrMessagingDisabled = errors.New("sms messaging is not configured")
)

// Subscriber is a phone number registered for threshold-crossing alerts.
// PhoneNumber is the unique key. LastNotified drives the alert cooldown and
// survives threshold re-registration.
type Subscriber struct {
	PhoneNumber   string     `bson:"phone_number" json:"phone_number"`
	ThresholdHigh float64    `bson:"threshold_high" json:"threshold_high"`
	ThresholdLow  float64    `bson:"threshold_low" json:"threshold_low"`
	LastNotified  *time.Time `bson:"last_notified,omitempty" json:"last_notified,omitempty"`
}

// ValidatePhoneNumber checks the international format requirement shared by
// the registry and the registration endpoint.
func ValidatePhoneNumber(number string) error {
	if !strings.HasPrefix(number, "+") {
		return fmt.Errorf("%w: %q", ErrInvalidPhoneNumber, number)
	}
	return nil
}
