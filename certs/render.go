package certs

import (
	"regexp"

	"evently/models"
)

var placeholderRe = regexp.MustCompile(`\{\{\s*([A-Za-z0-9_.]+)\s*\}\}`)

// Render substitutes every {{token}} in a template in a single pass against
// the data map. Unresolved placeholders render as an empty string, not as the
// literal token; issued certificates must never leak raw placeholders.
func Render(tmpl string, data map[string]string) string {
	return placeholderRe.ReplaceAllStringFunc(tmpl, func(m string) string {
		key := placeholderRe.FindStringSubmatch(m)[1]
		return data[key]
	})
}

// Placeholders lists the distinct tokens a template references.
func Placeholders(tmpl string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, m := range placeholderRe.FindAllStringSubmatch(tmpl, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			out = append(out, m[1])
		}
	}
	return out
}

const dateLayout = "January 2, 2006"

// MergeData builds the substitution map from registration, event, and
// certificate fields. Templates look keys up by these names; anything else
// falls back to empty per the Render policy.
func MergeData(reg models.Registration, event models.Event, cert models.Certificate) map[string]string {
	return map[string]string{
		"participantName":  reg.Name,
		"participantEmail": reg.Email,
		"registrationId":   reg.RegistrationID,
		"eventTitle":       event.Title,
		"eventVenue":       event.Venue,
		"eventStartDate":   event.StartDate.Format(dateLayout),
		"eventEndDate":     event.EndDate.Format(dateLayout),
		"certificateId":    cert.CertificateID,
		"verificationCode": cert.VerificationCode,
		"issuedDate":       cert.IssuedAt.Format(dateLayout),
	}
}
