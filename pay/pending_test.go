package pay

import (
	"testing"
	"time"

	"evently/models"
)

func TestDecidePending(t *testing.T) {
	now := time.Now().UTC()
	fresh := now.Add(-time.Minute)
	stale := now.Add(-PendingWindow - time.Minute)

	cases := []struct {
		name        string
		existing    *models.Payment
		reuse       bool
		forceCancel bool
		want        PendingAction
	}{
		{"no existing payment", nil, false, false, ActionProceed},
		{"settled payment ignored", &models.Payment{Status: models.PayPaid, CreatedAt: fresh}, false, false, ActionProceed},
		{"cancelled payment ignored", &models.Payment{Status: models.PayCancelled, CreatedAt: fresh}, false, false, ActionProceed},
		{"stale pending expires even with reuse", &models.Payment{Status: models.PayCreated, CreatedAt: stale}, true, false, ActionExpire},
		{"fresh pending with reuse", &models.Payment{Status: models.PayCreated, CreatedAt: fresh}, true, false, ActionReuse},
		{"fresh pending with cancel", &models.Payment{Status: models.PayCreated, CreatedAt: fresh}, false, true, ActionCancel},
		{"reuse wins over cancel", &models.Payment{Status: models.PayCreated, CreatedAt: fresh}, true, true, ActionReuse},
		{"fresh pending with no flags", &models.Payment{Status: models.PayAttempted, CreatedAt: fresh}, false, false, ActionReject},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := DecidePending(tc.existing, now, tc.reuse, tc.forceCancel)
			if got != tc.want {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
		})
	}
}
