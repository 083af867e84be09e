package models

import "time"

// Registration payment statuses
const (
	PaymentStatusPending   = "pending"
	PaymentStatusCompleted = "completed"
	PaymentStatusFailed    = "failed"
	PaymentStatusRefunded  = "refunded"
)

// Attendance statuses
const (
	AttendanceRegistered = "registered"
	AttendanceAttended   = "attended"
	AttendanceAbsent     = "absent"
	AttendanceCancelled  = "cancelled"
)

type Registration struct {
	RegistrationID     string            `bson:"registrationid" json:"registrationid"`
	EventID            string            `bson:"eventid" json:"eventid"`
	UserID             string            `bson:"userid" json:"userid"`
	Name               string            `bson:"name" json:"name"`
	Email              string            `bson:"email,omitempty" json:"email,omitempty"`
	Phone              string            `bson:"phone,omitempty" json:"phone,omitempty"`
	Answers            map[string]string `bson:"answers,omitempty" json:"answers,omitempty"`
	RequiresPayment    bool              `bson:"requirespayment" json:"requiresPayment"`
	PaymentStatus      string            `bson:"paymentstatus" json:"paymentStatus"`
	Attendance         string            `bson:"attendance" json:"attendance"`
	CheckedInAt        *time.Time        `bson:"checkedinat,omitempty" json:"checkedInAt,omitempty"`
	QRPayload          string            `bson:"qrpayload" json:"qrPayload"`
	CertificateIssued  bool              `bson:"certificateissued" json:"certificateIssued"`
	CertificateID      string            `bson:"certificateid,omitempty" json:"certificateid,omitempty"`
	CreatedAt          time.Time         `bson:"created_at" json:"created_at"`
	UpdatedAt          time.Time         `bson:"updated_at" json:"updated_at"`
}
