package implementation

import (
	"context"
	"fmt"
	"time"

	stnmodels "gitlab.com/stationzero/zero.temp_server/src/production/STN.Models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoSubscriberRepository struct {
	coll *mongo.Collection
}

func NewMongoSubscriberRepository(coll *mongo.Collection) *MongoSubscriberRepository {
	return &MongoSubscriberRepository{coll: coll}
}

func (r *MongoSubscriberRepository) Upsert(ctx context.Context, phoneNumber string, thresholdHigh, thresholdLow float64) error {
	if err := stnmodels.ValidatePhoneNumber(phoneNumber); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	// Only the thresholds are replaced; last_notified stays whatever it was
	// so re-registration never resets the alert cooldown.
	filter := bson.M{"phone_number": phoneNumber}
	update := bson.M{"$set": bson.M{
		"threshold_high": thresholdHigh,
		"threshold_low":  thresholdLow,
	}}

	_, err := r.coll.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to upsert subscriber: %w", err)
	}
	return nil
}

func (r *MongoSubscriberRepository) List(ctx context.Context) ([]stnmodels.Subscriber, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	cur, err := r.coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to list subscribers: %w", err)
	}
	defer cur.Close(ctx)

	var subscribers []stnmodels.Subscriber
	if err := cur.All(ctx, &subscribers); err != nil {
		return nil, fmt.Errorf("failed to decode subscribers: %w", err)
	}
	return subscribers, nil
}

func (r *MongoSubscriberRepository) MarkNotified(ctx context.Context, phoneNumber string, when time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	filter := bson.M{"phone_number": phoneNumber}
	update := bson.M{"$set": bson.M{"last_notified": when.UTC()}}

	// No upsert: a subscriber removed between the snapshot and the send is
	// silently ignored.
	_, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to mark subscriber notified: %w", err)
	}
	return nil
}
