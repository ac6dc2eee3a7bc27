package stnmodels

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Reading is one timestamped sensor observation. Temperature is nil for
// status-only reports (BLE provisioning, sensor fault). Readings are never
// edited or deleted once stored.
type Reading struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Timestamp   time.Time          `bson:"ts" json:"timestamp"`
	Status      Status             `bson:"status" json:"status"`
	Temperature *float64           `bson:"temp,omitempty" json:"temp,omitempty"`
}

// HasTemperature reports whether the reading carries a measurable value.
func (r Reading) HasTemperature() bool {
	return r.Temperature != nil
}
