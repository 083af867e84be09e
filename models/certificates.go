package models

import "time"

// Certificate statuses
const (
	CertIssued  = "issued"
	CertRevoked = "revoked"
	CertExpired = "expired"
)

type Certificate struct {
	CertificateID    string    `bson:"certificateid" json:"certificateid"`
	EventID          string    `bson:"eventid" json:"eventid"`
	UserID           string    `bson:"userid" json:"userid"`
	RegistrationID   string    `bson:"registrationid" json:"registrationid"`
	TemplateID       string    `bson:"templateid" json:"templateid"`
	RenderedHTML     string    `bson:"renderedhtml" json:"renderedHtml"`
	VerificationCode string    `bson:"verificationcode" json:"verificationCode"`
	Status           string    `bson:"status" json:"status"`
	IssuedAt         time.Time `bson:"issuedat" json:"issuedAt"`
	UpdatedAt        time.Time `bson:"updated_at" json:"updated_at"`
}

// CertTemplate is a reusable HTML certificate template. Placeholders use
// {{name}} tokens substituted at issuance time.
type CertTemplate struct {
	TemplateID  string    `bson:"templateid" json:"templateid"`
	Name        string    `bson:"name" json:"name"`
	HTMLContent string    `bson:"htmlcontent" json:"htmlContent"`
	Active      bool      `bson:"active" json:"active"`
	CreatedBy   string    `bson:"createdby,omitempty" json:"createdBy,omitempty"`
	CreatedAt   time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time `bson:"updated_at" json:"updated_at"`
}
