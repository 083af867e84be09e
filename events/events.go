package events

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"evently/db"
	"evently/models"
	"evently/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// FindByID loads an event by its public id.
func FindByID(ctx context.Context, eventID string) (models.Event, error) {
	var event models.Event
	err := db.EventsCollection.FindOne(ctx, bson.M{"eventid": eventID}).Decode(&event)
	return event, err
}

func validateEvent(e *models.Event) string {
	if e.Title == "" {
		return "Title is required"
	}
	if e.StartDate.IsZero() || e.EndDate.IsZero() {
		return "startDate and endDate are required"
	}
	if e.EndDate.Before(e.StartDate) {
		return "endDate must not precede startDate"
	}
	if e.RegistrationStartDate.After(e.RegistrationEndDate) {
		return "registrationStartDate must not exceed registrationEndDate"
	}
	if e.Type != models.EventFree && e.Type != models.EventPaid {
		return "type must be free or paid"
	}
	if e.Type == models.EventPaid && e.Price <= 0 {
		return "paid events need a positive price"
	}
	if e.MaxParticipants < 0 {
		return "maxParticipants cannot be negative"
	}
	return ""
}

func CreateEvent(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var event models.Event
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		utils.RespondWithReason(w, http.StatusBadRequest, "VALIDATION", "Invalid request body")
		return
	}

	if msg := validateEvent(&event); msg != "" {
		utils.RespondWithReason(w, http.StatusBadRequest, "VALIDATION", msg)
		return
	}

	event.EventID = utils.GenerateID(14)
	event.OrganizerID = utils.GetUserIDFromRequest(r)
	event.Status = models.EventDraft
	event.CurrentParticipants = 0
	if event.Currency == "" {
		event.Currency = "INR"
	}
	event.StartDate = event.StartDate.UTC()
	event.EndDate = event.EndDate.UTC()
	event.RegistrationStartDate = event.RegistrationStartDate.UTC()
	event.RegistrationEndDate = event.RegistrationEndDate.UTC()
	event.CreatedAt = time.Now().UTC()
	event.UpdatedAt = event.CreatedAt

	if _, err := db.EventsCollection.InsertOne(r.Context(), event); err != nil {
		log.Printf("CreateEvent: insert error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to create event")
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, event)
}

func GetEvents(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	opts := utils.ParseQueryOptions(r)

	filter := bson.M{}
	if opts.Status != "" {
		filter["status"] = opts.Status
	} else {
		filter["status"] = models.EventPublished
	}
	if opts.Search != "" {
		filter["title"] = bson.M{"$regex": opts.Search, "$options": "i"}
	}

	findOptions := options.Find().
		SetSort(bson.M{"startdate": 1}).
		SetSkip(int64((opts.Page - 1) * opts.Limit)).
		SetLimit(int64(opts.Limit))

	cursor, err := db.EventsCollection.Find(r.Context(), filter, findOptions)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch events")
		return
	}
	defer cursor.Close(r.Context())

	events := []models.Event{}
	if err := cursor.All(r.Context(), &events); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to decode events")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, events)
}

func GetEvent(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	event, err := FindByID(r.Context(), ps.ByName("eventid"))
	if errors.Is(err, mongo.ErrNoDocuments) {
		utils.RespondWithReason(w, http.StatusNotFound, "NOT_FOUND", "Event not found")
		return
	}
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch event")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, event)
}

// requireOwner checks that the caller organizes the event (or is admin).
func requireOwner(w http.ResponseWriter, r *http.Request, event models.Event) bool {
	userID := utils.GetUserIDFromRequest(r)
	if event.OrganizerID != userID && !utils.IsAdmin(r) {
		utils.RespondWithReason(w, http.StatusForbidden, "AUTH", "Only the organizer can modify this event")
		return false
	}
	return true
}

func EditEvent(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	event, err := FindByID(r.Context(), ps.ByName("eventid"))
	if err != nil {
		utils.RespondWithReason(w, http.StatusNotFound, "NOT_FOUND", "Event not found")
		return
	}
	if !requireOwner(w, r, event) {
		return
	}

	var patch models.Event
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		utils.RespondWithReason(w, http.StatusBadRequest, "VALIDATION", "Invalid request body")
		return
	}

	// Identity, counters, and status never change through edit.
	patch.EventID = event.EventID
	patch.OrganizerID = event.OrganizerID
	patch.Status = event.Status
	patch.CurrentParticipants = event.CurrentParticipants
	if patch.Currency == "" {
		patch.Currency = event.Currency
	}
	if msg := validateEvent(&patch); msg != "" {
		utils.RespondWithReason(w, http.StatusBadRequest, "VALIDATION", msg)
		return
	}
	// Capacity can never be lowered under the current headcount.
	if patch.MaxParticipants > 0 && patch.MaxParticipants < event.CurrentParticipants {
		utils.RespondWithReason(w, http.StatusBadRequest, "VALIDATION", "maxParticipants cannot drop below current registrations")
		return
	}

	patch.CreatedAt = event.CreatedAt
	patch.UpdatedAt = time.Now().UTC()

	if _, err := db.EventsCollection.ReplaceOne(r.Context(), bson.M{"eventid": event.EventID}, patch); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to update event")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, patch)
}

func PublishEvent(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	setEventStatus(w, r, ps.ByName("eventid"), models.EventDraft, models.EventPublished)
}

func CancelEvent(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	event, err := FindByID(r.Context(), ps.ByName("eventid"))
	if err != nil {
		utils.RespondWithReason(w, http.StatusNotFound, "NOT_FOUND", "Event not found")
		return
	}
	if !requireOwner(w, r, event) {
		return
	}
	if event.Status == models.EventCompleted || event.Status == models.EventCancelled {
		utils.RespondWithReason(w, http.StatusConflict, "STATE_CONFLICT", "Event is already "+event.Status)
		return
	}

	_, err = db.EventsCollection.UpdateOne(r.Context(),
		bson.M{"eventid": event.EventID},
		bson.M{"$set": bson.M{"status": models.EventCancelled, "updated_at": time.Now().UTC()}},
	)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to cancel event")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true})
}

func setEventStatus(w http.ResponseWriter, r *http.Request, eventID, from, to string) {
	event, err := FindByID(r.Context(), eventID)
	if err != nil {
		utils.RespondWithReason(w, http.StatusNotFound, "NOT_FOUND", "Event not found")
		return
	}
	if !requireOwner(w, r, event) {
		return
	}
	if event.Status != from {
		utils.RespondWithReason(w, http.StatusConflict, "STATE_CONFLICT", "Event is "+event.Status+", expected "+from)
		return
	}

	_, err = db.EventsCollection.UpdateOne(r.Context(),
		bson.M{"eventid": eventID, "status": from},
		bson.M{"$set": bson.M{"status": to, "updated_at": time.Now().UTC()}},
	)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to update event status")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true, "status": to})
}

func DeleteEvent(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	event, err := FindByID(r.Context(), ps.ByName("eventid"))
	if err != nil {
		utils.RespondWithReason(w, http.StatusNotFound, "NOT_FOUND", "Event not found")
		return
	}
	if !requireOwner(w, r, event) {
		return
	}
	if event.Status != models.EventDraft {
		utils.RespondWithReason(w, http.StatusConflict, "STATE_CONFLICT", "Only draft events can be deleted")
		return
	}

	if _, err := db.EventsCollection.DeleteOne(r.Context(), bson.M{"eventid": event.EventID}); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to delete event")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true})
}
