package coupons

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"evently/db"
	"evently/models"
	"evently/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// FindByCode loads a coupon by its (normalized) code.
func FindByCode(ctx context.Context, code string) (models.Coupon, error) {
	var c models.Coupon
	err := db.CouponsCollection.FindOne(ctx, bson.M{"code": NormalizeCode(code)}).Decode(&c)
	return c, err
}

// NormalizeCode uppercases and trims a user-supplied coupon code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func CreateCoupon(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var c models.Coupon
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		utils.RespondWithReason(w, http.StatusBadRequest, "VALIDATION", "Invalid request body")
		return
	}

	c.Code = NormalizeCode(c.Code)
	if c.Code == "" {
		utils.RespondWithReason(w, http.StatusBadRequest, "VALIDATION", "Coupon code is required")
		return
	}
	if c.DiscountType != models.DiscountPercentage && c.DiscountType != models.DiscountFixed {
		utils.RespondWithReason(w, http.StatusBadRequest, "VALIDATION", "discountType must be percentage or fixed")
		return
	}
	if c.DiscountValue <= 0 {
		utils.RespondWithReason(w, http.StatusBadRequest, "VALIDATION", "discountValue must be positive")
		return
	}
	if c.DiscountType == models.DiscountPercentage && c.DiscountValue > 100 {
		utils.RespondWithReason(w, http.StatusBadRequest, "VALIDATION", "percentage discount cannot exceed 100")
		return
	}
	if c.StartDate != nil && c.EndDate != nil && c.EndDate.Before(*c.StartDate) {
		utils.RespondWithReason(w, http.StatusBadRequest, "VALIDATION", "endDate must not precede startDate")
		return
	}

	c.CreatedBy = utils.GetUserIDFromRequest(r)
	c.TotalRedemptions = 0
	c.TotalDiscountGiven = 0
	c.CreatedAt = time.Now().UTC()
	c.UpdatedAt = c.CreatedAt

	if _, err := db.CouponsCollection.InsertOne(r.Context(), c); err != nil {
		if db.IsDuplicateKeyError(err) {
			utils.RespondWithReason(w, http.StatusConflict, "STATE_CONFLICT", "A coupon with this code already exists")
			return
		}
		log.Printf("CreateCoupon: insert error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to create coupon")
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, c)
}

func GetCoupons(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	opts := utils.ParseQueryOptions(r)

	filter := bson.M{}
	if opts.Status == "active" {
		filter["active"] = true
	} else if opts.Status == "inactive" {
		filter["active"] = false
	}

	findOptions := options.Find().
		SetSort(bson.M{"created_at": -1}).
		SetSkip(int64((opts.Page - 1) * opts.Limit)).
		SetLimit(int64(opts.Limit))

	cursor, err := db.CouponsCollection.Find(r.Context(), filter, findOptions)
	if err != nil {
		log.Printf("GetCoupons: find error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch coupons")
		return
	}
	defer cursor.Close(r.Context())

	coupons := []models.Coupon{}
	if err := cursor.All(r.Context(), &coupons); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to decode coupons")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, coupons)
}

func GetCoupon(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	c, err := FindByCode(r.Context(), ps.ByName("code"))
	if err != nil {
		utils.RespondWithReason(w, http.StatusNotFound, "NOT_FOUND", "Coupon not found")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, c)
}

func UpdateCoupon(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var patch struct {
		Description   *string    `json:"description"`
		DiscountValue *float64   `json:"discountValue"`
		MaxDiscount   *float64   `json:"maxDiscount"`
		MinAmount     *float64   `json:"minAmount"`
		StartDate     *time.Time `json:"startDate"`
		EndDate       *time.Time `json:"endDate"`
		UsageLimit    *int       `json:"usageLimit"`
		PerUserLimit  *int       `json:"perUserLimit"`
		AllowedEvents *[]string  `json:"allowedEvents"`
		Active        *bool      `json:"active"`
	}
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		utils.RespondWithReason(w, http.StatusBadRequest, "VALIDATION", "Invalid request body")
		return
	}

	set := bson.M{"updated_at": time.Now().UTC()}
	if patch.Description != nil {
		set["description"] = *patch.Description
	}
	if patch.DiscountValue != nil {
		if *patch.DiscountValue <= 0 {
			utils.RespondWithReason(w, http.StatusBadRequest, "VALIDATION", "discountValue must be positive")
			return
		}
		set["discountvalue"] = *patch.DiscountValue
	}
	if patch.MaxDiscount != nil {
		set["maxdiscount"] = *patch.MaxDiscount
	}
	if patch.MinAmount != nil {
		set["minamount"] = *patch.MinAmount
	}
	if patch.StartDate != nil {
		set["startdate"] = *patch.StartDate
	}
	if patch.EndDate != nil {
		set["enddate"] = *patch.EndDate
	}
	if patch.UsageLimit != nil {
		set["usagelimit"] = *patch.UsageLimit
	}
	if patch.PerUserLimit != nil {
		set["peruserlimit"] = *patch.PerUserLimit
	}
	if patch.AllowedEvents != nil {
		set["allowedevents"] = *patch.AllowedEvents
	}
	if patch.Active != nil {
		set["active"] = *patch.Active
	}

	res, err := db.CouponsCollection.UpdateOne(r.Context(),
		bson.M{"code": NormalizeCode(ps.ByName("code"))},
		bson.M{"$set": set},
	)
	if err != nil {
		log.Printf("UpdateCoupon: update error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to update coupon")
		return
	}
	if res.MatchedCount == 0 {
		utils.RespondWithReason(w, http.StatusNotFound, "NOT_FOUND", "Coupon not found")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true})
}

// DeleteCoupon deactivates a coupon. Redemption counters are historical data,
// so coupons are never hard-deleted.
func DeleteCoupon(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	res, err := db.CouponsCollection.UpdateOne(r.Context(),
		bson.M{"code": NormalizeCode(ps.ByName("code"))},
		bson.M{"$set": bson.M{"active": false, "updated_at": time.Now().UTC()}},
	)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to deactivate coupon")
		return
	}
	if res.MatchedCount == 0 {
		utils.RespondWithReason(w, http.StatusNotFound, "NOT_FOUND", "Coupon not found")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true})
}

// PreviewCoupon validates a coupon against an event and reports the discount
// it would grant, without any side effects.
func PreviewCoupon(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req struct {
		Code    string `json:"code"`
		EventID string `json:"eventId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithReason(w, http.StatusBadRequest, "VALIDATION", "Invalid request body")
		return
	}
	if req.Code == "" || req.EventID == "" {
		utils.RespondWithReason(w, http.StatusBadRequest, "VALIDATION", "code and eventId are required")
		return
	}

	var event models.Event
	if err := db.EventsCollection.FindOne(r.Context(), bson.M{"eventid": req.EventID}).Decode(&event); err != nil {
		utils.RespondWithReason(w, http.StatusNotFound, "NOT_FOUND", "Event not found")
		return
	}
	if event.Type != models.EventPaid {
		utils.RespondWithReason(w, http.StatusBadRequest, "POLICY_DENIED", "Coupons apply to paid events only")
		return
	}

	c, err := FindByCode(r.Context(), req.Code)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			utils.RespondWithReason(w, http.StatusNotFound, "NOT_FOUND", "Coupon not found")
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch coupon")
		return
	}

	userID := utils.GetUserIDFromRequest(r)
	if err := Validate(r.Context(), c, userID, req.EventID, event.Price, time.Now().UTC(), CountPaidUses); err != nil {
		var cerr *CouponError
		if errors.As(err, &cerr) {
			utils.RespondWithReason(w, http.StatusBadRequest, cerr.Reason, cerr.Message)
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to validate coupon")
		return
	}

	discount := Evaluate(c, event.Price)
	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"code":           c.Code,
		"originalAmount": event.Price,
		"discountAmount": discount,
		"finalAmount":    RoundMoney(event.Price - discount),
		"currency":       event.Currency,
	})
}
