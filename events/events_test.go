package events

import (
	"testing"
	"time"

	"evently/models"
)

func baseEvent() models.Event {
	start := time.Now().Add(48 * time.Hour)
	return models.Event{
		Title:                 "Go Meetup",
		StartDate:             start,
		EndDate:               start.Add(4 * time.Hour),
		RegistrationStartDate: time.Now(),
		RegistrationEndDate:   start,
		Type:                  models.EventFree,
	}
}

func TestValidateEventAccepts(t *testing.T) {
	e := baseEvent()
	if msg := validateEvent(&e); msg != "" {
		t.Fatalf("expected valid event, got %q", msg)
	}

	paid := baseEvent()
	paid.Type = models.EventPaid
	paid.Price = 499
	if msg := validateEvent(&paid); msg != "" {
		t.Fatalf("expected valid paid event, got %q", msg)
	}
}

func TestValidateEventRejects(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*models.Event)
	}{
		{"missing title", func(e *models.Event) { e.Title = "" }},
		{"zero dates", func(e *models.Event) { e.StartDate = time.Time{} }},
		{"end before start", func(e *models.Event) { e.EndDate = e.StartDate.Add(-time.Hour) }},
		{"inverted registration window", func(e *models.Event) {
			e.RegistrationStartDate = e.RegistrationEndDate.Add(time.Hour)
		}},
		{"unknown type", func(e *models.Event) { e.Type = "donation" }},
		{"paid without price", func(e *models.Event) { e.Type = models.EventPaid; e.Price = 0 }},
		{"negative capacity", func(e *models.Event) { e.MaxParticipants = -1 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := baseEvent()
			tc.mutate(&e)
			if msg := validateEvent(&e); msg == "" {
				t.Fatal("expected validation failure")
			}
		})
	}
}
