package pay

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"evently/models"
)

func sign(orderID, paymentID string, secret []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifySignature(t *testing.T) {
	secret := []byte("test-secret")
	sig := sign("order_1", "pay_1", secret)

	if !VerifySignature("order_1", "pay_1", sig, secret) {
		t.Fatal("valid signature rejected")
	}
}

func TestVerifySignatureRejectsForgery(t *testing.T) {
	secret := []byte("test-secret")
	sig := sign("order_1", "pay_1", secret)

	if VerifySignature("order_2", "pay_1", sig, secret) {
		t.Fatal("signature accepted for a different order")
	}
	if VerifySignature("order_1", "pay_2", sig, secret) {
		t.Fatal("signature accepted for a different payment")
	}
	if VerifySignature("order_1", "pay_1", sig, []byte("other-secret")) {
		t.Fatal("signature accepted under a different secret")
	}
	if VerifySignature("order_1", "pay_1", "", secret) {
		t.Fatal("empty signature accepted")
	}
	if VerifySignature("order_1", "pay_1", "not-hex", secret) {
		t.Fatal("garbage signature accepted")
	}
}

func TestCallbackDecision(t *testing.T) {
	cases := []struct {
		status string
		want   callbackAction
	}{
		{models.PayCreated, callbackSettle},
		{models.PayAttempted, callbackSettle},
		{models.PayPaid, callbackReplay},
		{models.PayCancelled, callbackReject},
		{models.PayRefunded, callbackReject},
		{models.PayFailed, callbackReject},
	}
	for _, tc := range cases {
		if got := callbackDecision(tc.status); got != tc.want {
			t.Errorf("callbackDecision(%s) = %v, want %v", tc.status, got, tc.want)
		}
	}

	// A second callback for a settled order must replay, never settle again;
	// settling twice would double-count the coupon redemption.
	if callbackDecision(models.PayPaid) == callbackSettle {
		t.Fatal("paid order classified as settleable")
	}
}
