package telemetry

import (
	"time"

	stnmodels "gitlab.com/stationzero/zero.temp_server/src/production/STN.Models"
)

// DefaultFreshnessThreshold is the maximum age before a reading is reported
// as offline. The sensor pushes every few seconds, so anything older means
// the node dropped off the network.
const DefaultFreshnessThreshold = 5 * time.Second

// Snapshot is the classified view of the latest reading served to the
// dashboard.
type Snapshot struct {
	Temperature *float64         `json:"temp"`
	Status      stnmodels.Status `json:"status"`
	Timestamp   *time.Time       `json:"timestamp"`
	AgeSeconds  *float64         `json:"age_seconds"`
}

// Classify derives the effective status of the latest reading. A nil reading
// means nothing was ever received. A reading older than the freshness
// threshold is offline no matter what the sensor last reported: a node that
// said "ok" five minutes ago must not show as healthy.
func Classify(reading *stnmodels.Reading, now time.Time, freshnessThreshold time.Duration) Snapshot {
	if reading == nil {
		return Snapshot{Status: stnmodels.StatusNoData}
	}

	ts := reading.Timestamp.UTC()
	age := now.UTC().Sub(ts)
	ageSeconds := age.Seconds()

	status := reading.Status
	if age > freshnessThreshold {
		status = stnmodels.StatusOffline
	}

	return Snapshot{
		Temperature: reading.Temperature,
		Status:      status,
		Timestamp:   &ts,
		AgeSeconds:  &ageSeconds,
	}
}
