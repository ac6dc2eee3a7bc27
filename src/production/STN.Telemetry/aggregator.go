package telemetry

import (
	"context"
	"fmt"
	"time"

	stnmodels "gitlab.com/stationzero/zero.temp_server/src/production/STN.Models"
	interfaces "gitlab.com/stationzero/zero.temp_server/src/production/STN.Repository/Interfaces"
)

const dateLayout = "2006-01-02"

// DailyStats holds the current-day temperature statistics. All fields are
// nil when no temperature-bearing reading exists today.
type DailyStats struct {
	Avg *float64 `json:"avg"`
	Min *float64 `json:"min"`
	Max *float64 `json:"max"`
}

// HistoryPoint is one temperature sample of a history series.
type HistoryPoint struct {
	Timestamp time.Time `json:"timestamp"`
	Temp      float64   `json:"temp"`
}

// Aggregator computes statistics and history series over the reading store.
type Aggregator struct {
	readings      interfaces.ReadingRepository
	rollingWindow time.Duration
}

// NewAggregator creates an aggregator over the given store. rollingWindow is
// the lookback of RollingAverage (24h in production).
func NewAggregator(readings interfaces.ReadingRepository, rollingWindow time.Duration) *Aggregator {
	return &Aggregator{
		readings:      readings,
		rollingWindow: rollingWindow,
	}
}

// DailyStats computes avg/min/max over the current UTC calendar day,
// counting only readings that carry a temperature. Calendar-day boundaries
// are deliberate: the dashboard shows "today", not a rolling window.
func (a *Aggregator) DailyStats(ctx context.Context, now time.Time) (DailyStats, error) {
	dayStart := startOfDay(now.UTC())

	readings, err := a.readings.QuerySince(ctx, dayStart, true)
	if err != nil {
		return DailyStats{}, fmt.Errorf("daily stats query failed: %w", err)
	}
	if len(readings) == 0 {
		return DailyStats{}, nil
	}

	var sum float64
	min := *readings[0].Temperature
	max := min
	for _, rd := range readings {
		t := *rd.Temperature
		sum += t
		if t < min {
			min = t
		}
		if t > max {
			max = t
		}
	}
	avg := sum / float64(len(readings))

	return DailyStats{Avg: &avg, Min: &min, Max: &max}, nil
}

// DailyData returns the current UTC day's temperature series, ascending.
func (a *Aggregator) DailyData(ctx context.Context, now time.Time) ([]HistoryPoint, error) {
	dayStart := startOfDay(now.UTC())

	readings, err := a.readings.QuerySince(ctx, dayStart, true)
	if err != nil {
		return nil, fmt.Errorf("daily data query failed: %w", err)
	}
	return toHistory(readings), nil
}

// RangeHistory returns the temperature series between two calendar dates,
// both inclusive: the window runs from startDate 00:00:00 UTC up to (but
// excluding) the day after endDate.
func (a *Aggregator) RangeHistory(ctx context.Context, startDate, endDate string) ([]HistoryPoint, error) {
	if startDate == "" || endDate == "" {
		return nil, fmt.Errorf("%w: start and end are required", stnmodels.ErrInvalidRange)
	}

	start, err := time.ParseInLocation(dateLayout, startDate, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("%w: bad start date %q", stnmodels.ErrInvalidRange, startDate)
	}
	end, err := time.ParseInLocation(dateLayout, endDate, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("%w: bad end date %q", stnmodels.ErrInvalidRange, endDate)
	}

	readings, err := a.readings.QueryRange(ctx, start, end.AddDate(0, 0, 1), true)
	if err != nil {
		return nil, fmt.Errorf("history query failed: %w", err)
	}
	return toHistory(readings), nil
}

// RollingAverage returns the mean temperature over the trailing window, or
// nil when no temperature was recorded in it. Distinct from DailyStats on
// purpose: both views exist as product behaviors.
func (a *Aggregator) RollingAverage(ctx context.Context, now time.Time) (*float64, error) {
	since := now.UTC().Add(-a.rollingWindow)

	readings, err := a.readings.QuerySince(ctx, since, true)
	if err != nil {
		return nil, fmt.Errorf("rolling average query failed: %w", err)
	}
	if len(readings) == 0 {
		return nil, nil
	}

	var sum float64
	for _, rd := range readings {
		sum += *rd.Temperature
	}
	avg := sum / float64(len(readings))
	return &avg, nil
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func toHistory(readings []stnmodels.Reading) []HistoryPoint {
	points := make([]HistoryPoint, 0, len(readings))
	for _, rd := range readings {
		points = append(points, HistoryPoint{
			Timestamp: rd.Timestamp.UTC(),
			Temp:      *rd.Temperature,
		})
	}
	return points
}
