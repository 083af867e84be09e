package register

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"evently/coupons"
	"evently/db"
	"evently/events"
	"evently/models"
	"evently/mq"
	"evently/pay"
	"evently/utils"

	"github.com/julienschmidt/httprouter"
	"github.com/skip2/go-qrcode"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// RegisterForEvent handles POST /api/events/:eventid/register.
func (h *Handlers) RegisterForEvent(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var body struct {
		Name        string            `json:"name"`
		Email       string            `json:"email"`
		Phone       string            `json:"phone"`
		Answers     map[string]string `json:"answers"`
		CouponCode  string            `json:"couponCode"`
		ReuseOrder  bool              `json:"reusePendingOrder"`
		CancelOrder bool              `json:"cancelPendingOrder"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.RespondWithReason(w, http.StatusBadRequest, "VALIDATION", "Invalid request body")
		return
	}
	if body.Name == "" || body.Email == "" {
		utils.RespondWithReason(w, http.StatusBadRequest, "VALIDATION", "name and email are required")
		return
	}

	req := Request{
		EventID:     ps.ByName("eventid"),
		UserID:      utils.GetUserIDFromRequest(r),
		Name:        body.Name,
		Email:       body.Email,
		Phone:       body.Phone,
		Answers:     body.Answers,
		CouponCode:  body.CouponCode,
		ReuseOrder:  body.ReuseOrder,
		CancelOrder: body.CancelOrder,
	}

	result, err := h.Register(r.Context(), req)
	if err != nil {
		respondRegisterError(w, err)
		return
	}

	// Confirmation is fire-and-forget; the registration already succeeded.
	mq.Emit(context.WithoutCancel(r.Context()), "registration", result.Registration.Email, req.EventID, map[string]string{
		"registrationid": result.Registration.RegistrationID,
		"name":           result.Registration.Name,
	})

	utils.RespondWithJSON(w, http.StatusCreated, result)
}

func respondRegisterError(w http.ResponseWriter, err error) {
	var cerr *coupons.CouponError
	switch {
	case errors.Is(err, ErrEventNotFound):
		utils.RespondWithReason(w, http.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.Is(err, ErrCouponNotFound):
		utils.RespondWithReason(w, http.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.Is(err, ErrAlreadyRegistered):
		utils.RespondWithReason(w, http.StatusConflict, "STATE_CONFLICT", err.Error())
	case errors.Is(err, pay.ErrPaymentInProgress):
		utils.RespondWithReason(w, http.StatusConflict, "STATE_CONFLICT", err.Error())
	case errors.Is(err, ErrNotOpen), errors.Is(err, ErrWindowNotStarted),
		errors.Is(err, ErrWindowEnded), errors.Is(err, ErrEventFull):
		utils.RespondWithReason(w, http.StatusBadRequest, "POLICY_DENIED", err.Error())
	case errors.As(err, &cerr):
		utils.RespondWithReason(w, http.StatusBadRequest, cerr.Reason, cerr.Message)
	case errors.Is(err, pay.ErrNotConfigured):
		utils.RespondWithReason(w, http.StatusBadGateway, "EXTERNAL_FAILURE", err.Error())
	default:
		log.Printf("Register: %v", err)
		utils.RespondWithReason(w, http.StatusBadGateway, "EXTERNAL_FAILURE", "Failed to complete registration")
	}
}

// GetMyRegistrations lists the caller's registrations, newest first.
func GetMyRegistrations(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	userID := utils.GetUserIDFromRequest(r)
	opts := utils.ParseQueryOptions(r)

	findOptions := options.Find().
		SetSort(bson.M{"created_at": -1}).
		SetSkip(int64((opts.Page - 1) * opts.Limit)).
		SetLimit(int64(opts.Limit))

	cursor, err := db.RegistrationsCollection.Find(r.Context(), bson.M{"userid": userID}, findOptions)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch registrations")
		return
	}
	defer cursor.Close(r.Context())

	regs := []models.Registration{}
	if err := cursor.All(r.Context(), &regs); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to decode registrations")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, regs)
}

// GetEventRegistrations lists an event's registrations for its organizer.
func GetEventRegistrations(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	event, err := events.FindByID(r.Context(), ps.ByName("eventid"))
	if err != nil {
		utils.RespondWithReason(w, http.StatusNotFound, "NOT_FOUND", "Event not found")
		return
	}
	if event.OrganizerID != utils.GetUserIDFromRequest(r) && !utils.IsAdmin(r) {
		utils.RespondWithReason(w, http.StatusForbidden, "AUTH", "Only the organizer can view registrations")
		return
	}

	opts := utils.ParseQueryOptions(r)
	filter := bson.M{"eventid": event.EventID}
	if opts.Status != "" {
		filter["attendance"] = opts.Status
	}

	findOptions := options.Find().
		SetSort(bson.M{"created_at": -1}).
		SetSkip(int64((opts.Page - 1) * opts.Limit)).
		SetLimit(int64(opts.Limit))

	cursor, err := db.RegistrationsCollection.Find(r.Context(), filter, findOptions)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch registrations")
		return
	}
	defer cursor.Close(r.Context())

	regs := []models.Registration{}
	if err := cursor.All(r.Context(), &regs); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to decode registrations")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, regs)
}

// GetRegistrationQR renders the check-in QR as a PNG for the registration's
// owner.
func GetRegistrationQR(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var reg models.Registration
	err := db.RegistrationsCollection.FindOne(r.Context(), bson.M{
		"registrationid": ps.ByName("registrationid"),
	}).Decode(&reg)
	if errors.Is(err, mongo.ErrNoDocuments) {
		utils.RespondWithReason(w, http.StatusNotFound, "NOT_FOUND", "Registration not found")
		return
	}
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch registration")
		return
	}
	if reg.UserID != utils.GetUserIDFromRequest(r) && !utils.IsAdmin(r) {
		utils.RespondWithReason(w, http.StatusForbidden, "AUTH", "Not your registration")
		return
	}

	png, err := qrcode.Encode(reg.QRPayload, qrcode.Medium, 256)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to generate QR code")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

// CancelRegistration lets a user withdraw before the event starts. The seat
// is released and any live payment order is cancelled.
func CancelRegistration(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	userID := utils.GetUserIDFromRequest(r)

	var reg models.Registration
	err := db.RegistrationsCollection.FindOne(r.Context(), bson.M{
		"registrationid": ps.ByName("registrationid"),
		"userid":         userID,
	}).Decode(&reg)
	if errors.Is(err, mongo.ErrNoDocuments) {
		utils.RespondWithReason(w, http.StatusNotFound, "NOT_FOUND", "Registration not found")
		return
	}
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch registration")
		return
	}
	if reg.Attendance != models.AttendanceRegistered {
		utils.RespondWithReason(w, http.StatusConflict, "STATE_CONFLICT", "Registration is already "+reg.Attendance)
		return
	}

	event, err := events.FindByID(r.Context(), reg.EventID)
	if err == nil && time.Now().UTC().After(event.StartDate) {
		utils.RespondWithReason(w, http.StatusBadRequest, "POLICY_DENIED", "Event has already started")
		return
	}

	now := time.Now().UTC()
	res, err := db.RegistrationsCollection.UpdateOne(r.Context(),
		bson.M{"registrationid": reg.RegistrationID, "attendance": models.AttendanceRegistered},
		bson.M{"$set": bson.M{"attendance": models.AttendanceCancelled, "updated_at": now}},
	)
	if err != nil || res.ModifiedCount == 0 {
		utils.RespondWithReason(w, http.StatusConflict, "STATE_CONFLICT", "Registration could not be cancelled")
		return
	}

	if err := events.ReleaseSeat(r.Context(), reg.EventID); err != nil {
		log.Printf("CancelRegistration: seat release failed for %s: %v", reg.EventID, err)
	}

	if pending, err := pay.FindPending(r.Context(), userID, reg.EventID); err == nil && pending != nil {
		_ = pay.CancelPayment(r.Context(), pending.PaymentID)
	}

	mq.Emit(context.WithoutCancel(r.Context()), "cancellation", reg.Email, reg.EventID, map[string]string{
		"registrationid": reg.RegistrationID,
	})

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true})
}
