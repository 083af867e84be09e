package models

import "time"

// Event statuses
const (
	EventDraft     = "draft"
	EventPublished = "published"
	EventCancelled = "cancelled"
	EventCompleted = "completed"
)

// Event types
const (
	EventFree = "free"
	EventPaid = "paid"
)

type Event struct {
	EventID               string    `bson:"eventid" json:"eventid"`
	Title                 string    `bson:"title" json:"title"`
	Description           string    `bson:"description,omitempty" json:"description,omitempty"`
	OrganizerID           string    `bson:"organizerid" json:"organizerid"`
	Venue                 string    `bson:"venue,omitempty" json:"venue,omitempty"`
	StartDate             time.Time `bson:"startdate" json:"startDate"`
	EndDate               time.Time `bson:"enddate" json:"endDate"`
	RegistrationStartDate time.Time `bson:"registrationstartdate" json:"registrationStartDate"`
	RegistrationEndDate   time.Time `bson:"registrationenddate" json:"registrationEndDate"`
	Type                  string    `bson:"type" json:"type"` // free, paid
	Price                 float64   `bson:"price" json:"price"`
	Currency              string    `bson:"currency" json:"currency"`
	MaxParticipants       int       `bson:"maxparticipants" json:"maxParticipants"` // 0 = unlimited
	CurrentParticipants   int       `bson:"currentparticipants" json:"currentParticipants"`
	Status                string    `bson:"status" json:"status"`
	CreatedAt             time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt             time.Time `bson:"updated_at" json:"updated_at"`
}
