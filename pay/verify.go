package pay

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"evently/db"
	"evently/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// VerifySignature recomputes HMAC-SHA256(secret, orderID|paymentID) and
// compares in constant time. This authenticates an adversarial caller, so
// hmac.Equal rather than string equality.
func VerifySignature(orderID, paymentID, signature string, secret []byte) bool {
	h := hmac.New(sha256.New, secret)
	h.Write([]byte(orderID + "|" + paymentID))
	expected := hex.EncodeToString(h.Sum(nil))
	return hmac.Equal([]byte(signature), []byte(expected))
}

type callbackAction int

const (
	callbackSettle callbackAction = iota
	callbackReplay
	callbackReject
)

// callbackDecision classifies a gateway callback against the order's current
// state. Only created/attempted orders settle. A repeat callback for an
// already-paid order replays the stored result without touching counters;
// cancelled, refunded, and failed orders never flip back to paid.
func callbackDecision(status string) callbackAction {
	switch status {
	case models.PayCreated, models.PayAttempted:
		return callbackSettle
	case models.PayPaid:
		return callbackReplay
	default:
		return callbackReject
	}
}

// Verify marks a payment paid after its callback signature checks out, bumps
// the coupon counters, and completes the linked registration. The signature
// is checked before any lookup, so forged triples are rejected with
// ErrInvalidSignature whether or not a matching order exists. The settle
// update is filtered to unpaid statuses, so a replayed callback cannot bump
// the coupon counters a second time.
func (s *Service) Verify(ctx context.Context, orderID, paymentID, signature string) (models.Payment, error) {
	if !VerifySignature(orderID, paymentID, signature, s.secret) {
		return models.Payment{}, ErrInvalidSignature
	}

	now := time.Now().UTC()
	after := options.After
	var payment models.Payment
	err := db.PaymentsCollection.FindOneAndUpdate(ctx,
		bson.M{
			"orderid": orderID,
			"status":  bson.M{"$in": []string{models.PayCreated, models.PayAttempted}},
		},
		bson.M{"$set": bson.M{
			"status":           models.PayPaid,
			"gatewaypaymentid": paymentID,
			"gatewaysignature": signature,
			"paidat":           now,
			"updated_at":       now,
		}},
		&options.FindOneAndUpdateOptions{ReturnDocument: &after},
	).Decode(&payment)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return s.verifySettled(ctx, orderID)
	}
	if err != nil {
		return models.Payment{}, err
	}

	// Atomic counter bumps; never decremented, there is no unredeem.
	if payment.CouponCode != "" {
		_, err = db.CouponsCollection.UpdateOne(ctx,
			bson.M{"code": payment.CouponCode},
			bson.M{
				"$inc": bson.M{
					"totalredemptions":   1,
					"totaldiscountgiven": payment.DiscountAmount,
				},
				"$set": bson.M{"updated_at": now},
			},
		)
		if err != nil {
			return models.Payment{}, err
		}
	}

	_, err = db.RegistrationsCollection.UpdateOne(ctx,
		bson.M{"registrationid": payment.RegistrationID},
		bson.M{"$set": bson.M{"paymentstatus": models.PaymentStatusCompleted, "updated_at": now}},
	)
	if err != nil {
		return models.Payment{}, err
	}

	return payment, nil
}

// verifySettled resolves a callback whose order is no longer in a payable
// state. An already-paid order is a success no-op; its side effects ran when
// it first settled.
func (s *Service) verifySettled(ctx context.Context, orderID string) (models.Payment, error) {
	var payment models.Payment
	err := db.PaymentsCollection.FindOne(ctx, bson.M{"orderid": orderID}).Decode(&payment)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Payment{}, ErrOrderNotFound
	}
	if err != nil {
		return models.Payment{}, err
	}
	if callbackDecision(payment.Status) == callbackReplay {
		return payment, nil
	}
	return models.Payment{}, ErrOrderNotPayable
}
