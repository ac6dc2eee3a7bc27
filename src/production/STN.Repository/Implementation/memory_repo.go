package implementation

import (
	"context"
	"sort"
	"sync"
	"time"

	stnmodels "gitlab.com/stationzero/zero.temp_server/src/production/STN.Models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryReadingRepository is a volatile ReadingRepository used by tests and
// the memory storage driver. Mutations take the write lock; queries copy
// under the read lock so readers never block writers longer than a slice
// copy.
type MemoryReadingRepository struct {
	mu       sync.RWMutex
	readings []stnmodels.Reading
}

func NewMemoryReadingRepository() *MemoryReadingRepository {
	return &MemoryReadingRepository{}
}

func (r *MemoryReadingRepository) Insert(ctx context.Context, status stnmodels.Status, temperature *float64) (stnmodels.Reading, error) {
	rd := stnmodels.Reading{
		ID:          primitive.NewObjectID(),
		Timestamp:   time.Now().UTC(),
		Status:      status,
		Temperature: temperature,
	}

	r.mu.Lock()
	r.readings = append(r.readings, rd)
	r.mu.Unlock()

	return rd, nil
}

// Seed appends pre-built readings, keeping insertion order. Used to load
// fixtures with explicit timestamps.
func (r *MemoryReadingRepository) Seed(readings ...stnmodels.Reading) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rd := range readings {
		if rd.ID.IsZero() {
			rd.ID = primitive.NewObjectID()
		}
		r.readings = append(r.readings, rd)
	}
}

func (r *MemoryReadingRepository) Latest(ctx context.Context) (*stnmodels.Reading, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.readings) == 0 {
		return nil, nil
	}

	// Later insertion wins on equal timestamps.
	best := r.readings[0]
	for _, rd := range r.readings[1:] {
		if !rd.Timestamp.Before(best.Timestamp) {
			best = rd
		}
	}
	return &best, nil
}

func (r *MemoryReadingRepository) QueryRange(ctx context.Context, from, to time.Time, requireTemperature bool) ([]stnmodels.Reading, error) {
	return r.filter(func(rd stnmodels.Reading) bool {
		return !rd.Timestamp.Before(from) && rd.Timestamp.Before(to)
	}, requireTemperature), nil
}

func (r *MemoryReadingRepository) QuerySince(ctx context.Context, since time.Time, requireTemperature bool) ([]stnmodels.Reading, error) {
	return r.filter(func(rd stnmodels.Reading) bool {
		return !rd.Timestamp.Before(since)
	}, requireTemperature), nil
}

func (r *MemoryReadingRepository) filter(keep func(stnmodels.Reading) bool, requireTemperature bool) []stnmodels.Reading {
	r.mu.RLock()
	out := make([]stnmodels.Reading, 0)
	for _, rd := range r.readings {
		if requireTemperature && !rd.HasTemperature() {
			continue
		}
		if keep(rd) {
			out = append(out, rd)
		}
	}
	r.mu.RUnlock()

	// Stable sort preserves insertion order for equal timestamps.
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out
}

// MemorySubscriberRepository is a volatile SubscriberRepository.
type MemorySubscriberRepository struct {
	mu          sync.RWMutex
	subscribers map[string]stnmodels.Subscriber
}

func NewMemorySubscriberRepository() *MemorySubscriberRepository {
	return &MemorySubscriberRepository{
		subscribers: make(map[string]stnmodels.Subscriber),
	}
}

func (r *MemorySubscriberRepository) Upsert(ctx context.Context, phoneNumber string, thresholdHigh, thresholdLow float64) error {
	if err := stnmodels.ValidatePhoneNumber(phoneNumber); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	sub, exists := r.subscribers[phoneNumber]
	if !exists {
		sub = stnmodels.Subscriber{PhoneNumber: phoneNumber}
	}
	// last_notified carries over on re-registration.
	sub.ThresholdHigh = thresholdHigh
	sub.ThresholdLow = thresholdLow
	r.subscribers[phoneNumber] = sub
	return nil
}

func (r *MemorySubscriberRepository) List(ctx context.Context) ([]stnmodels.Subscriber, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]stnmodels.Subscriber, 0, len(r.subscribers))
	for _, sub := range r.subscribers {
		out = append(out, sub)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].PhoneNumber < out[j].PhoneNumber
	})
	return out, nil
}

func (r *MemorySubscriberRepository) MarkNotified(ctx context.Context, phoneNumber string, when time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	sub, exists := r.subscribers[phoneNumber]
	if !exists {
		return nil
	}
	ts := when.UTC()
	sub.LastNotified = &ts
	r.subscribers[phoneNumber] = sub
	return nil
}
