package register

import (
	"strings"
	"testing"
)

func TestCheckinPayloadRoundTrip(t *testing.T) {
	payload := GenerateCheckinPayload("EVT123", "REG456")

	eventID, registrationID, err := VerifyCheckinPayload(payload)
	if err != nil {
		t.Fatalf("round trip failed: %v", err)
	}
	if eventID != "EVT123" || registrationID != "REG456" {
		t.Fatalf("got (%s, %s), want (EVT123, REG456)", eventID, registrationID)
	}
}

func TestCheckinPayloadTamperRejected(t *testing.T) {
	payload := GenerateCheckinPayload("EVT123", "REG456")

	// Swap the registration id, keep the signature.
	tampered := strings.Replace(payload, "REG456", "REG999", 1)
	if _, _, err := VerifyCheckinPayload(tampered); err == nil {
		t.Fatal("tampered registration id accepted")
	}

	// Flip a signature byte.
	broken := payload[:len(payload)-2] + "xx"
	if _, _, err := VerifyCheckinPayload(broken); err == nil {
		t.Fatal("corrupted signature accepted")
	}
}

func TestCheckinPayloadFormat(t *testing.T) {
	if _, _, err := VerifyCheckinPayload("just-one-part"); err == nil {
		t.Fatal("malformed payload accepted")
	}
	if _, _, err := VerifyCheckinPayload("a|b|c|d"); err == nil {
		t.Fatal("payload with extra segments accepted")
	}
}
