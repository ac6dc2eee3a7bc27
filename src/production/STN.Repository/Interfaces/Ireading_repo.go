package interfaces

import (
	"context"
	"time"

	stnmodels "gitlab.com/stationzero/zero.temp_server/src/production/STN.Models"
)

// ReadingRepository is the append-only store of sensor observations. No
// method ever edits or removes a stored reading; retention is handled
// outside the server.
type ReadingRepository interface {
	// Insert stamps the current UTC instant, appends the record and returns
	// it as stored. Duplicate payloads produce distinct records.
	Insert(ctx context.Context, status stnmodels.Status, temperature *float64) (stnmodels.Reading, error)

	// Latest returns the most recently inserted reading, or nil when the
	// store is empty.
	Latest(ctx context.Context) (*stnmodels.Reading, error)

	// QueryRange returns readings with from <= ts < to, ascending by
	// timestamp. When requireTemperature is set, status-only records are
	// filtered out.
	QueryRange(ctx context.Context, from, to time.Time, requireTemperature bool) ([]stnmodels.Reading, error)

	// QuerySince returns readings with ts >= since, ascending by timestamp.
	QuerySince(ctx context.Context, since time.Time, requireTemperature bool) ([]stnmodels.Reading, error)
}
