package certs

import (
	"strings"
	"testing"
	"time"

	"evently/models"
)

func TestRenderSubstitutes(t *testing.T) {
	tmpl := `<h1>{{participantName}}</h1><p>{{eventTitle}} - {{ issuedDate }}</p>`
	out := Render(tmpl, map[string]string{
		"participantName": "Asha Rao",
		"eventTitle":      "GopherCon India",
		"issuedDate":      "March 1, 2026",
	})

	want := `<h1>Asha Rao</h1><p>GopherCon India - March 1, 2026</p>`
	if out != want {
		t.Fatalf("got %q, want %q", out, want)
	}
}

func TestRenderUnresolvedIsEmpty(t *testing.T) {
	out := Render("Hello {{participantName}}, ref {{noSuchKey}}.", map[string]string{
		"participantName": "Asha",
	})
	if out != "Hello Asha, ref ." {
		t.Fatalf("unresolved placeholder should render empty, got %q", out)
	}
	if strings.Contains(out, "{{") {
		t.Fatalf("raw placeholder leaked into output: %q", out)
	}
}

func TestRenderSinglePass(t *testing.T) {
	// A substituted value containing placeholder syntax must not be
	// re-expanded.
	out := Render("{{a}}", map[string]string{
		"a": "{{b}}",
		"b": "nested",
	})
	if out != "{{b}}" {
		t.Fatalf("expected single-pass substitution, got %q", out)
	}
}

func TestPlaceholders(t *testing.T) {
	got := Placeholders("{{a}} {{ b }} {{a}} plain {{c.d}}")
	want := []string{"a", "b", "c.d"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestMergeData(t *testing.T) {
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	reg := models.Registration{RegistrationID: "REG-1", Name: "Asha Rao", Email: "asha@example.com"}
	event := models.Event{Title: "GopherCon India", Venue: "Jaipur", StartDate: start, EndDate: start.Add(8 * time.Hour)}
	cert := models.Certificate{CertificateID: "CERT-1", VerificationCode: "VC1", IssuedAt: start.Add(24 * time.Hour)}

	data := MergeData(reg, event, cert)

	if data["participantName"] != "Asha Rao" {
		t.Errorf("participantName = %q", data["participantName"])
	}
	if data["eventStartDate"] != "March 1, 2026" {
		t.Errorf("eventStartDate = %q", data["eventStartDate"])
	}
	if data["issuedDate"] != "March 2, 2026" {
		t.Errorf("issuedDate = %q", data["issuedDate"])
	}
	if data["verificationCode"] != "VC1" {
		t.Errorf("verificationCode = %q", data["verificationCode"])
	}
}
