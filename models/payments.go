package models

import "time"

// Payment statuses
const (
	PayCreated   = "created"
	PayAttempted = "attempted"
	PayPaid      = "paid"
	PayFailed    = "failed"
	PayCancelled = "cancelled"
	PayRefunded  = "refunded"
)

// Payment is one record per payment attempt. Amount is the post-discount
// charge; Amount = OriginalAmount - DiscountAmount, clamped to the gateway
// floor.
type Payment struct {
	PaymentID        string     `bson:"paymentid" json:"paymentid"`
	OrderID          string     `bson:"orderid" json:"orderid"` // gateway order id
	EventID          string     `bson:"eventid" json:"eventid"`
	UserID           string     `bson:"userid" json:"userid"`
	RegistrationID   string     `bson:"registrationid,omitempty" json:"registrationid,omitempty"`
	Amount           float64    `bson:"amount" json:"amount"`
	OriginalAmount   float64    `bson:"originalamount" json:"originalAmount"`
	DiscountAmount   float64    `bson:"discountamount" json:"discountAmount"`
	CouponCode       string     `bson:"couponcode,omitempty" json:"couponCode,omitempty"`
	Currency         string     `bson:"currency" json:"currency"`
	Receipt          string     `bson:"receipt" json:"receipt"`
	GatewayPaymentID string     `bson:"gatewaypaymentid,omitempty" json:"gatewayPaymentId,omitempty"`
	GatewaySignature string     `bson:"gatewaysignature,omitempty" json:"-"`
	RefundID         string     `bson:"refundid,omitempty" json:"refundId,omitempty"`
	Status           string     `bson:"status" json:"status"`
	PaidAt           *time.Time `bson:"paidat,omitempty" json:"paidAt,omitempty"`
	CreatedAt        time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt        time.Time  `bson:"updated_at" json:"updated_at"`
}
