package certs

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"evently/db"
	"evently/models"
	"evently/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func CreateTemplate(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var tmpl models.CertTemplate
	if err := json.NewDecoder(r.Body).Decode(&tmpl); err != nil {
		utils.RespondWithReason(w, http.StatusBadRequest, "VALIDATION", "Invalid request body")
		return
	}
	if tmpl.Name == "" || tmpl.HTMLContent == "" {
		utils.RespondWithReason(w, http.StatusBadRequest, "VALIDATION", "name and htmlContent are required")
		return
	}

	tmpl.TemplateID = "TMPL-" + utils.GenerateID(10)
	tmpl.Active = true
	tmpl.CreatedBy = utils.GetUserIDFromRequest(r)
	tmpl.CreatedAt = time.Now().UTC()
	tmpl.UpdatedAt = tmpl.CreatedAt

	if _, err := db.TemplatesCollection.InsertOne(r.Context(), tmpl); err != nil {
		log.Printf("CreateTemplate: insert error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to create template")
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, utils.M{
		"template":     tmpl,
		"placeholders": Placeholders(tmpl.HTMLContent),
	})
}

func GetTemplates(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	opts := utils.ParseQueryOptions(r)

	findOptions := options.Find().
		SetSort(bson.M{"created_at": -1}).
		SetSkip(int64((opts.Page - 1) * opts.Limit)).
		SetLimit(int64(opts.Limit))

	cursor, err := db.TemplatesCollection.Find(r.Context(), bson.M{}, findOptions)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch templates")
		return
	}
	defer cursor.Close(r.Context())

	templates := []models.CertTemplate{}
	if err := cursor.All(r.Context(), &templates); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to decode templates")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, templates)
}

func GetTemplate(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var tmpl models.CertTemplate
	if err := db.TemplatesCollection.FindOne(r.Context(), bson.M{"templateid": ps.ByName("templateid")}).Decode(&tmpl); err != nil {
		utils.RespondWithReason(w, http.StatusNotFound, "NOT_FOUND", "Template not found")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"template":     tmpl,
		"placeholders": Placeholders(tmpl.HTMLContent),
	})
}

func UpdateTemplate(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var patch struct {
		Name        *string `json:"name"`
		HTMLContent *string `json:"htmlContent"`
		Active      *bool   `json:"active"`
	}
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		utils.RespondWithReason(w, http.StatusBadRequest, "VALIDATION", "Invalid request body")
		return
	}

	set := bson.M{"updated_at": time.Now().UTC()}
	if patch.Name != nil {
		set["name"] = *patch.Name
	}
	if patch.HTMLContent != nil {
		if *patch.HTMLContent == "" {
			utils.RespondWithReason(w, http.StatusBadRequest, "VALIDATION", "htmlContent cannot be empty")
			return
		}
		set["htmlcontent"] = *patch.HTMLContent
	}
	if patch.Active != nil {
		set["active"] = *patch.Active
	}

	res, err := db.TemplatesCollection.UpdateOne(r.Context(),
		bson.M{"templateid": ps.ByName("templateid")},
		bson.M{"$set": set},
	)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to update template")
		return
	}
	if res.MatchedCount == 0 {
		utils.RespondWithReason(w, http.StatusNotFound, "NOT_FOUND", "Template not found")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true})
}

// DeleteTemplate deactivates a template. Issued certificates keep their
// rendered HTML, so templates are never hard-deleted.
func DeleteTemplate(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	res, err := db.TemplatesCollection.UpdateOne(r.Context(),
		bson.M{"templateid": ps.ByName("templateid")},
		bson.M{"$set": bson.M{"active": false, "updated_at": time.Now().UTC()}},
	)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to deactivate template")
		return
	}
	if res.MatchedCount == 0 {
		utils.RespondWithReason(w, http.StatusNotFound, "NOT_FOUND", "Template not found")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true})
}
