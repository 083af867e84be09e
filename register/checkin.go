package register

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"evently/db"
	"evently/events"
	"evently/models"
	"evently/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// CheckIn handles POST /api/events/:eventid/checkin: the organizer scans a
// registration QR and the attendee is marked attended.
func CheckIn(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var body struct {
		Payload string `json:"payload"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Payload == "" {
		utils.RespondWithReason(w, http.StatusBadRequest, "VALIDATION", "QR payload is required")
		return
	}

	event, err := events.FindByID(r.Context(), ps.ByName("eventid"))
	if err != nil {
		utils.RespondWithReason(w, http.StatusNotFound, "NOT_FOUND", "Event not found")
		return
	}
	if event.OrganizerID != utils.GetUserIDFromRequest(r) && !utils.IsAdmin(r) {
		utils.RespondWithReason(w, http.StatusForbidden, "AUTH", "Only the organizer can check attendees in")
		return
	}

	eventID, registrationID, err := VerifyCheckinPayload(body.Payload)
	if err != nil {
		utils.RespondWithReason(w, http.StatusUnauthorized, "AUTH", "QR verification failed: "+err.Error())
		return
	}
	if eventID != event.EventID {
		utils.RespondWithReason(w, http.StatusBadRequest, "POLICY_DENIED", "QR belongs to a different event")
		return
	}

	var reg models.Registration
	err = db.RegistrationsCollection.FindOne(r.Context(), bson.M{"registrationid": registrationID}).Decode(&reg)
	if errors.Is(err, mongo.ErrNoDocuments) {
		utils.RespondWithReason(w, http.StatusNotFound, "NOT_FOUND", "Registration not found")
		return
	}
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch registration")
		return
	}

	if reg.RequiresPayment && reg.PaymentStatus != models.PaymentStatusCompleted {
		utils.RespondWithReason(w, http.StatusConflict, "STATE_CONFLICT", "Payment is not completed for this registration")
		return
	}
	if reg.Attendance != models.AttendanceRegistered {
		utils.RespondWithReason(w, http.StatusConflict, "STATE_CONFLICT", "Registration is already "+reg.Attendance)
		return
	}

	now := time.Now().UTC()
	res, err := db.RegistrationsCollection.UpdateOne(r.Context(),
		bson.M{"registrationid": registrationID, "attendance": models.AttendanceRegistered},
		bson.M{"$set": bson.M{
			"attendance":  models.AttendanceAttended,
			"checkedinat": now,
			"updated_at":  now,
		}},
	)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to record check-in")
		return
	}
	if res.ModifiedCount == 0 {
		// Lost the race to a concurrent scan of the same QR.
		utils.RespondWithReason(w, http.StatusConflict, "STATE_CONFLICT", "Registration was already checked in")
		return
	}

	broadcastCheckin(event.EventID, checkinEvent{
		RegistrationID: registrationID,
		Name:           reg.Name,
		CheckedInAt:    now,
	})

	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"success":        true,
		"registrationid": registrationID,
		"name":           reg.Name,
	})
}
