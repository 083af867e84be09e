package register

import (
	"context"
	"errors"
	"time"

	"evently/coupons"
	"evently/db"
	"evently/events"
	"evently/models"
	"evently/pay"
	"evently/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

var (
	ErrEventNotFound     = errors.New("event not found")
	ErrNotOpen           = errors.New("event is not open for registration")
	ErrWindowNotStarted  = errors.New("registration has not started for this event")
	ErrWindowEnded       = errors.New("registration has ended for this event")
	ErrEventFull         = errors.New("event has reached maximum participants")
	ErrAlreadyRegistered = errors.New("already registered for this event")
	ErrCouponNotFound    = errors.New("coupon not found")
)

// Handlers owns the registration endpoints. The payment service is injected
// so a missing gateway is an explicit state, not a nil deref at charge time.
type Handlers struct {
	Pay *pay.Service
}

func NewHandlers(p *pay.Service) *Handlers {
	return &Handlers{Pay: p}
}

// Request is the registration input after decoding and auth.
type Request struct {
	EventID     string
	UserID      string
	Name        string
	Email       string
	Phone       string
	Answers     map[string]string
	CouponCode  string
	ReuseOrder  bool
	CancelOrder bool
}

// Result carries the created registration plus, for paid events, the order
// the client completes payment against.
type Result struct {
	Registration models.Registration `json:"registration"`
	Order        *OrderRef           `json:"order,omitempty"`
}

type OrderRef struct {
	OrderID     string  `json:"orderId"`
	Amount      float64 `json:"amount"`
	AmountMinor int64   `json:"amountMinor"`
	Currency    string  `json:"currency"`
}

// Register runs the registration workflow: load event, registration window,
// capacity, duplicate check, optional coupon, optional payment order,
// persistence. The duplicate check here is advisory; the unique index on
// (eventid, userid) is what rejects the second writer under concurrency, and
// the seat is claimed with an atomic capacity-guarded increment.
func (h *Handlers) Register(ctx context.Context, req Request) (Result, error) {
	event, err := events.FindByID(ctx, req.EventID)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return Result{}, ErrEventNotFound
	}
	if err != nil {
		return Result{}, err
	}

	if event.Status != models.EventPublished {
		return Result{}, ErrNotOpen
	}

	now := time.Now().UTC()
	if now.Before(event.RegistrationStartDate) {
		return Result{}, ErrWindowNotStarted
	}
	if now.After(event.RegistrationEndDate) {
		return Result{}, ErrWindowEnded
	}
	if event.MaxParticipants > 0 && event.CurrentParticipants >= event.MaxParticipants {
		return Result{}, ErrEventFull
	}

	count, err := db.RegistrationsCollection.CountDocuments(ctx, bson.M{
		"eventid": req.EventID,
		"userid":  req.UserID,
	})
	if err != nil {
		return Result{}, err
	}
	if count > 0 {
		return Result{}, ErrAlreadyRegistered
	}

	registrationID := "REG-" + utils.GenerateID(10)

	reg := models.Registration{
		RegistrationID: registrationID,
		EventID:        req.EventID,
		UserID:         req.UserID,
		Name:           req.Name,
		Email:          req.Email,
		Phone:          req.Phone,
		Answers:        req.Answers,
		Attendance:     models.AttendanceRegistered,
		QRPayload:      GenerateCheckinPayload(req.EventID, registrationID),
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	var orderRef *OrderRef
	var payment models.Payment

	if event.Type == models.EventFree {
		reg.RequiresPayment = false
		reg.PaymentStatus = models.PaymentStatusCompleted
	} else {
		reg.RequiresPayment = true
		reg.PaymentStatus = models.PaymentStatusPending

		originalAmount := event.Price
		discountAmount := 0.0
		couponCode := ""

		if req.CouponCode != "" {
			coupon, err := coupons.FindByCode(ctx, req.CouponCode)
			if errors.Is(err, mongo.ErrNoDocuments) {
				return Result{}, ErrCouponNotFound
			}
			if err != nil {
				return Result{}, err
			}
			if err := coupons.Validate(ctx, coupon, req.UserID, req.EventID, originalAmount, now, coupons.CountPaidUses); err != nil {
				return Result{}, err
			}
			discountAmount = coupons.Evaluate(coupon, originalAmount)
			couponCode = coupon.Code
		}

		payment, err = h.Pay.CreateEventOrder(ctx, pay.OrderRequest{
			Event:          event,
			UserID:         req.UserID,
			RegistrationID: registrationID,
			OriginalAmount: originalAmount,
			DiscountAmount: discountAmount,
			CouponCode:     couponCode,
			ReusePending:   req.ReuseOrder,
			CancelPending:  req.CancelOrder,
		})
		if err != nil {
			return Result{}, err
		}
		orderRef = &OrderRef{
			OrderID:     payment.OrderID,
			Amount:      payment.Amount,
			AmountMinor: pay.ToMinorUnits(payment.Amount),
			Currency:    payment.Currency,
		}
	}

	claimed, err := events.ClaimSeat(ctx, req.EventID)
	if err != nil {
		return Result{}, err
	}
	if !claimed {
		if orderRef != nil {
			_ = pay.CancelPayment(ctx, payment.PaymentID)
		}
		return Result{}, ErrEventFull
	}

	if _, err := db.RegistrationsCollection.InsertOne(ctx, reg); err != nil {
		_ = events.ReleaseSeat(ctx, req.EventID)
		if orderRef != nil {
			_ = pay.CancelPayment(ctx, payment.PaymentID)
		}
		if db.IsDuplicateKeyError(err) {
			return Result{}, ErrAlreadyRegistered
		}
		return Result{}, err
	}

	return Result{Registration: reg, Order: orderRef}, nil
}
