package events

import (
	"context"
	"time"

	"evently/db"

	"go.mongodb.org/mongo-driver/bson"
)

// ClaimSeat atomically increments an event's participant count, but only
// while the count is still below capacity. The filtered update is what keeps
// concurrent registrations from overselling; there is no separate
// read-compare-write. Returns false when the event is full (or unknown).
func ClaimSeat(ctx context.Context, eventID string) (bool, error) {
	res, err := db.EventsCollection.UpdateOne(ctx,
		bson.M{
			"eventid": eventID,
			"$or": []bson.M{
				{"maxparticipants": 0},
				{"$expr": bson.M{"$lt": []string{"$currentparticipants", "$maxparticipants"}}},
			},
		},
		bson.M{
			"$inc": bson.M{"currentparticipants": 1},
			"$set": bson.M{"updated_at": time.Now().UTC()},
		},
	)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount == 1, nil
}

// ReleaseSeat undoes a ClaimSeat, used when the registration insert that
// followed it failed. Never drops the count below zero.
func ReleaseSeat(ctx context.Context, eventID string) error {
	_, err := db.EventsCollection.UpdateOne(ctx,
		bson.M{"eventid": eventID, "currentparticipants": bson.M{"$gt": 0}},
		bson.M{
			"$inc": bson.M{"currentparticipants": -1},
			"$set": bson.M{"updated_at": time.Now().UTC()},
		},
	)
	return err
}
