package pay

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"evently/db"
	"evently/models"
	"evently/mq"
	"evently/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// VerifyPayment handles the gateway callback relayed by the client after
// checkout: {orderId, paymentId, signature}.
func (s *Service) VerifyPayment(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req struct {
		OrderID   string `json:"orderId"`
		PaymentID string `json:"paymentId"`
		Signature string `json:"signature"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithReason(w, http.StatusBadRequest, "VALIDATION", "Invalid request body")
		return
	}
	if req.OrderID == "" || req.PaymentID == "" || req.Signature == "" {
		utils.RespondWithReason(w, http.StatusBadRequest, "VALIDATION", "orderId, paymentId and signature are required")
		return
	}

	payment, err := s.Verify(r.Context(), req.OrderID, req.PaymentID, req.Signature)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidSignature):
			utils.RespondWithReason(w, http.StatusUnauthorized, "AUTH", "Payment signature verification failed")
		case errors.Is(err, ErrOrderNotFound):
			utils.RespondWithReason(w, http.StatusNotFound, "NOT_FOUND", "Payment order not found")
		case errors.Is(err, ErrOrderNotPayable):
			utils.RespondWithReason(w, http.StatusConflict, "STATE_CONFLICT", "Payment order can no longer be settled")
		default:
			log.Printf("VerifyPayment: %v", err)
			utils.RespondWithError(w, http.StatusInternalServerError, "Failed to verify payment")
		}
		return
	}

	// Notification failures never surface; the payment has succeeded.
	var reg models.Registration
	if err := db.RegistrationsCollection.FindOne(r.Context(), bson.M{"registrationid": payment.RegistrationID}).Decode(&reg); err == nil {
		mq.Emit(context.WithoutCancel(r.Context()), "payment", reg.Email, payment.EventID, map[string]string{
			"registrationid": reg.RegistrationID,
			"amount":         strconv.FormatFloat(payment.Amount, 'f', 2, 64),
			"currency":       payment.Currency,
		})
	}

	utils.RespondWithJSON(w, http.StatusOK, payment)
}

// RefundPayment refunds a paid payment through the gateway. Admin only.
func (s *Service) RefundPayment(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if !s.Configured() {
		utils.RespondWithReason(w, http.StatusBadGateway, "EXTERNAL_FAILURE", "Payment gateway not configured")
		return
	}

	paymentID := ps.ByName("paymentid")

	var payment models.Payment
	err := db.PaymentsCollection.FindOne(r.Context(), bson.M{"paymentid": paymentID}).Decode(&payment)
	if errors.Is(err, mongo.ErrNoDocuments) {
		utils.RespondWithReason(w, http.StatusNotFound, "NOT_FOUND", "Payment not found")
		return
	}
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch payment")
		return
	}
	if payment.Status != models.PayPaid {
		utils.RespondWithReason(w, http.StatusConflict, "STATE_CONFLICT", "Only paid payments can be refunded")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 20*time.Second)
	defer cancel()

	refund, err := s.gw.Refund(ctx, payment.GatewayPaymentID, ToMinorUnits(payment.Amount), map[string]string{
		"reason":  "admin refund",
		"eventid": payment.EventID,
	})
	if err != nil {
		log.Printf("RefundPayment: gateway error for %s: %v", paymentID, err)
		utils.RespondWithReason(w, http.StatusBadGateway, "EXTERNAL_FAILURE", "Gateway refund failed")
		return
	}

	now := time.Now().UTC()
	_, err = db.PaymentsCollection.UpdateOne(ctx,
		bson.M{"paymentid": paymentID, "status": models.PayPaid},
		bson.M{"$set": bson.M{"status": models.PayRefunded, "refundid": refund.RefundID, "updated_at": now}},
	)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to record refund")
		return
	}

	_, err = db.RegistrationsCollection.UpdateOne(ctx,
		bson.M{"registrationid": payment.RegistrationID},
		bson.M{"$set": bson.M{"paymentstatus": models.PaymentStatusRefunded, "updated_at": now}},
	)
	if err != nil {
		log.Printf("RefundPayment: registration update failed for %s: %v", payment.RegistrationID, err)
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true, "refundId": refund.RefundID})
}

// GetMyPayments returns the caller's payment attempts, newest first.
func (s *Service) GetMyPayments(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	userID := utils.GetUserIDFromRequest(r)
	opts := utils.ParseQueryOptions(r)

	findOptions := options.Find().
		SetSort(bson.M{"created_at": -1}).
		SetSkip(int64((opts.Page - 1) * opts.Limit)).
		SetLimit(int64(opts.Limit))

	cursor, err := db.PaymentsCollection.Find(r.Context(), bson.M{"userid": userID}, findOptions)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch payments")
		return
	}
	defer cursor.Close(r.Context())

	payments := []models.Payment{}
	if err := cursor.All(r.Context(), &payments); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to decode payments")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, payments)
}
