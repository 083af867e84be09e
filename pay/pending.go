package pay

import (
	"context"
	"errors"
	"log"
	"time"

	"evently/db"
	"evently/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// PendingWindow is how long an unpaid order stays live before it is treated
// as stale and auto-expired.
const PendingWindow = 10 * time.Minute

// PendingAction is the decision for an existing unpaid payment found while
// creating a new order.
type PendingAction int

const (
	ActionProceed PendingAction = iota // no live pending payment, create a new order
	ActionReuse                        // hand the existing order back to the caller
	ActionCancel                       // cancel the existing payment, then create a new order
	ActionExpire                       // stale: expire the old payment, then create a new order
	ActionReject                       // a live order exists and the caller asked for neither reuse nor cancel
)

// DecidePending resolves what to do about an existing payment for the same
// (user, event). Pure; the caller applies the resulting writes. The
// check-and-act sequence around it is serialized by a redis lock, which is
// best-effort mitigation rather than a correctness guarantee.
func DecidePending(existing *models.Payment, now time.Time, reuse, forceCancel bool) PendingAction {
	if existing == nil {
		return ActionProceed
	}
	if existing.Status != models.PayCreated && existing.Status != models.PayAttempted {
		return ActionProceed
	}
	if now.Sub(existing.CreatedAt) > PendingWindow {
		return ActionExpire
	}
	if reuse {
		return ActionReuse
	}
	if forceCancel {
		return ActionCancel
	}
	return ActionReject
}

// FindPending returns the most recent unpaid payment for a (user, event), or
// nil when none exists.
func FindPending(ctx context.Context, userID, eventID string) (*models.Payment, error) {
	var p models.Payment
	err := db.PaymentsCollection.FindOne(ctx, bson.M{
		"userid":  userID,
		"eventid": eventID,
		"status":  bson.M{"$in": []string{models.PayCreated, models.PayAttempted}},
	}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// CancelPayment flips an unpaid payment to cancelled. A no-op when the
// payment has already left the unpaid states.
func CancelPayment(ctx context.Context, paymentID string) error {
	_, err := db.PaymentsCollection.UpdateOne(ctx,
		bson.M{
			"paymentid": paymentID,
			"status":    bson.M{"$in": []string{models.PayCreated, models.PayAttempted}},
		},
		bson.M{"$set": bson.M{"status": models.PayCancelled, "updated_at": time.Now().UTC()}},
	)
	return err
}

// ExpireStalePending cancels unpaid payments older than the staleness window.
// Invoked by the hourly sweep; safe to run concurrently with request handling
// since every mutation is filtered by status.
func ExpireStalePending(ctx context.Context) (int64, error) {
	cutoff := time.Now().UTC().Add(-PendingWindow)
	res, err := db.PaymentsCollection.UpdateMany(ctx,
		bson.M{
			"status":     bson.M{"$in": []string{models.PayCreated, models.PayAttempted}},
			"created_at": bson.M{"$lt": cutoff},
		},
		bson.M{"$set": bson.M{"status": models.PayCancelled, "updated_at": time.Now().UTC()}},
	)
	if err != nil {
		return 0, err
	}
	if res.ModifiedCount > 0 {
		log.Printf("ExpireStalePending: cancelled %d stale payments", res.ModifiedCount)
	}
	return res.ModifiedCount, nil
}
