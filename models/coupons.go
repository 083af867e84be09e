package models

import "time"

// Coupon discount types
const (
	DiscountPercentage = "percentage"
	DiscountFixed      = "fixed"
)

type Coupon struct {
	Code               string     `bson:"code" json:"code"`
	Description        string     `bson:"description,omitempty" json:"description,omitempty"`
	DiscountType       string     `bson:"discounttype" json:"discountType"` // percentage, fixed
	DiscountValue      float64    `bson:"discountvalue" json:"discountValue"`
	MaxDiscount        float64    `bson:"maxdiscount,omitempty" json:"maxDiscount,omitempty"` // percentage only, 0 = uncapped
	MinAmount          float64    `bson:"minamount,omitempty" json:"minAmount,omitempty"`     // 0 = no minimum
	StartDate          *time.Time `bson:"startdate,omitempty" json:"startDate,omitempty"`
	EndDate            *time.Time `bson:"enddate,omitempty" json:"endDate,omitempty"`
	UsageLimit         int        `bson:"usagelimit,omitempty" json:"usageLimit,omitempty"`       // 0 = unlimited
	PerUserLimit       int        `bson:"peruserlimit,omitempty" json:"perUserLimit,omitempty"`   // 0 = unlimited
	AllowedEvents      []string   `bson:"allowedevents,omitempty" json:"allowedEvents,omitempty"` // empty = all events
	Active             bool       `bson:"active" json:"active"`
	TotalRedemptions   int        `bson:"totalredemptions" json:"totalRedemptions"`
	TotalDiscountGiven float64    `bson:"totaldiscountgiven" json:"totalDiscountGiven"`
	CreatedBy          string     `bson:"createdby,omitempty" json:"createdBy,omitempty"`
	CreatedAt          time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt          time.Time  `bson:"updated_at" json:"updated_at"`
}
