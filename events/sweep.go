package events

import (
	"context"
	"log"
	"time"

	"evently/db"
	"evently/models"

	"go.mongodb.org/mongo-driver/bson"
)

// SweepStatuses flips published events whose end date has passed to
// completed. Safe to run concurrently with request handling; every mutation
// is filtered by status.
func SweepStatuses(ctx context.Context) error {
	now := time.Now().UTC()

	res, err := db.EventsCollection.UpdateMany(ctx,
		bson.M{"status": models.EventPublished, "enddate": bson.M{"$lt": now}},
		bson.M{"$set": bson.M{"status": models.EventCompleted, "updated_at": now}},
	)
	if err != nil {
		return err
	}
	if res.ModifiedCount > 0 {
		log.Printf("SweepStatuses: completed %d events", res.ModifiedCount)
	}
	return nil
}

// UpcomingWithin lists published events starting inside the window, for the
// reminder sweep.
func UpcomingWithin(ctx context.Context, window time.Duration) ([]models.Event, error) {
	now := time.Now().UTC()
	cursor, err := db.EventsCollection.Find(ctx, bson.M{
		"status":    models.EventPublished,
		"startdate": bson.M{"$gte": now, "$lt": now.Add(window)},
	})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var events []models.Event
	if err := cursor.All(ctx, &events); err != nil {
		return nil, err
	}
	return events, nil
}
