package register

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"strings"

	"evently/globals"
)

var checkinSecret = []byte(globals.Getenv("CHECKIN_SECRET", "checkin-very-secret-key"))

// GenerateCheckinPayload builds the QR check-in string:
// eventID|registrationID|signature. No timestamp: the QR is issued at
// registration time and scanned whenever the event runs.
func GenerateCheckinPayload(eventID, registrationID string) string {
	data := eventID + "|" + registrationID
	h := hmac.New(sha256.New, checkinSecret)
	h.Write([]byte(data))
	sig := base64.StdEncoding.EncodeToString(h.Sum(nil))
	return data + "|" + sig
}

// VerifyCheckinPayload checks the signature and returns the embedded ids.
func VerifyCheckinPayload(payload string) (eventID, registrationID string, err error) {
	parts := strings.Split(payload, "|")
	if len(parts) != 3 {
		return "", "", errors.New("invalid QR format")
	}

	eventID = parts[0]
	registrationID = parts[1]
	signature := parts[2]

	data := eventID + "|" + registrationID
	h := hmac.New(sha256.New, checkinSecret)
	h.Write([]byte(data))
	expected := base64.StdEncoding.EncodeToString(h.Sum(nil))

	if !hmac.Equal([]byte(signature), []byte(expected)) {
		return "", "", errors.New("invalid signature")
	}

	return eventID, registrationID, nil
}
