package implementation

import (
	"context"
	"fmt"
	"time"

	stnmodels "gitlab.com/stationzero/zero.temp_server/src/production/STN.Models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoReadingRepository struct {
	coll *mongo.Collection
}

func NewMongoReadingRepository(coll *mongo.Collection) *MongoReadingRepository {
	return &MongoReadingRepository{coll: coll}
}

func (r *MongoReadingRepository) Insert(ctx context.Context, status stnmodels.Status, temperature *float64) (stnmodels.Reading, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rd := stnmodels.Reading{
		Timestamp:   time.Now().UTC(),
		Status:      status,
		Temperature: temperature,
	}

	res, err := r.coll.InsertOne(ctx, rd)
	if err != nil {
		return stnmodels.Reading{}, fmt.Errorf("failed to insert reading: %w", err)
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		rd.ID = id
	}
	return rd, nil
}

func (r *MongoReadingRepository) Latest(ctx context.Context) (*stnmodels.Reading, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	// _id breaks timestamp ties by insertion order.
	opts := options.FindOne().SetSort(bson.D{
		{Key: "ts", Value: -1},
		{Key: "_id", Value: -1},
	})

	var rd stnmodels.Reading
	err := r.coll.FindOne(ctx, bson.M{}, opts).Decode(&rd)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch latest reading: %w", err)
	}
	return &rd, nil
}

func (r *MongoReadingRepository) QueryRange(ctx context.Context, from, to time.Time, requireTemperature bool) ([]stnmodels.Reading, error) {
	filter := bson.M{"ts": bson.M{"$gte": from, "$lt": to}}
	return r.find(ctx, filter, requireTemperature)
}

func (r *MongoReadingRepository) QuerySince(ctx context.Context, since time.Time, requireTemperature bool) ([]stnmodels.Reading, error) {
	filter := bson.M{"ts": bson.M{"$gte": since}}
	return r.find(ctx, filter, requireTemperature)
}

func (r *MongoReadingRepository) find(ctx context.Context, filter bson.M, requireTemperature bool) ([]stnmodels.Reading, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if requireTemperature {
		filter["temp"] = bson.M{"$ne": nil}
	}

	opts := options.Find().SetSort(bson.D{
		{Key: "ts", Value: 1},
		{Key: "_id", Value: 1},
	})

	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query readings: %w", err)
	}
	defer cur.Close(ctx)

	var readings []stnmodels.Reading
	if err := cur.All(ctx, &readings); err != nil {
		return nil, fmt.Errorf("failed to decode readings: %w", err)
	}
	return readings, nil
}
