package pay

import (
	"context"
	"errors"
	"log"
	"time"

	"evently/db"
	"evently/models"
	"evently/rdx"
	"evently/utils"
)

var (
	ErrNotConfigured     = errors.New("payment gateway not configured")
	ErrPaymentInProgress = errors.New("a payment for this event is already in progress")
	ErrInvalidSignature  = errors.New("payment signature verification failed")
	ErrOrderNotFound     = errors.New("payment order not found")
	ErrOrderNotPayable   = errors.New("payment order is not in a payable state")
)

// Service owns all gateway interaction. The gateway is injected, never a
// lazily built global; a nil gateway means "not configured" and paid
// operations fail with ErrNotConfigured.
type Service struct {
	gw     Gateway
	secret []byte
}

func NewService(gw Gateway, secret []byte) *Service {
	return &Service{gw: gw, secret: secret}
}

func (s *Service) Configured() bool {
	return s.gw != nil
}

// OrderRequest carries everything CreateEventOrder needs. Amounts are major
// units; the minor-unit conversion happens inside.
type OrderRequest struct {
	Event          models.Event
	UserID         string
	RegistrationID string
	OriginalAmount float64
	DiscountAmount float64
	CouponCode     string
	ReusePending   bool
	CancelPending  bool
}

// CreateEventOrder creates a gateway order for the post-discount amount and
// persists the Payment record in created status. An existing unpaid payment
// for the same (user, event) is reused, cancelled, expired, or reported as in
// progress per the staleness rules. The check-and-act window is serialized by
// a redis lock.
func (s *Service) CreateEventOrder(ctx context.Context, req OrderRequest) (models.Payment, error) {
	if !s.Configured() {
		return models.Payment{}, ErrNotConfigured
	}

	lockKey := "payorder:" + req.UserID + ":" + req.Event.EventID
	ok, err := rdx.AcquireLock(ctx, lockKey, 30*time.Second)
	if err != nil {
		// Proceed without the lock; the pending-payment checks below still
		// apply, just without serialization.
		log.Printf("CreateEventOrder: lock acquire failed for %s: %v", lockKey, err)
	} else if !ok {
		return models.Payment{}, ErrPaymentInProgress
	}
	defer rdx.ReleaseLock(ctx, lockKey)

	existing, err := FindPending(ctx, req.UserID, req.Event.EventID)
	if err != nil {
		return models.Payment{}, err
	}

	switch DecidePending(existing, time.Now().UTC(), req.ReusePending, req.CancelPending) {
	case ActionReuse:
		return *existing, nil
	case ActionCancel, ActionExpire:
		if err := CancelPayment(ctx, existing.PaymentID); err != nil {
			return models.Payment{}, err
		}
	case ActionReject:
		return models.Payment{}, ErrPaymentInProgress
	}

	finalAmount := ClampToFloor(req.OriginalAmount - req.DiscountAmount)
	receipt := utils.GetUUID()

	ctx, cancel := context.WithTimeout(ctx, 20*time.Second)
	defer cancel()

	order, err := s.gw.CreateOrder(ctx, ToMinorUnits(finalAmount), req.Event.Currency, receipt, map[string]string{
		"eventid":        req.Event.EventID,
		"userid":         req.UserID,
		"registrationid": req.RegistrationID,
	})
	if err != nil {
		// Timeout or gateway failure: nothing was persisted, the caller can
		// retry with a fresh order.
		return models.Payment{}, err
	}

	now := time.Now().UTC()
	payment := models.Payment{
		PaymentID:      "PAY-" + utils.GenerateID(12),
		OrderID:        order.OrderID,
		EventID:        req.Event.EventID,
		UserID:         req.UserID,
		RegistrationID: req.RegistrationID,
		Amount:         finalAmount,
		OriginalAmount: req.OriginalAmount,
		DiscountAmount: req.DiscountAmount,
		CouponCode:     req.CouponCode,
		Currency:       req.Event.Currency,
		Receipt:        receipt,
		Status:         models.PayCreated,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if _, err := db.PaymentsCollection.InsertOne(ctx, payment); err != nil {
		return models.Payment{}, err
	}
	return payment, nil
}
