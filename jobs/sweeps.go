package jobs

import (
	"context"
	"log"
	"time"

	"evently/certs"
	"evently/db"
	"evently/events"
	"evently/models"
	"evently/mq"
	"evently/pay"
	"evently/rdx"

	"go.mongodb.org/mongo-driver/bson"
)

const (
	sweepInterval    = time.Hour
	reminderInterval = 24 * time.Hour
	reminderWindow   = 24 * time.Hour
)

// Start launches the background sweeps and runs until ctx is cancelled.
func Start(ctx context.Context) {
	go runEvery(ctx, sweepInterval, "status sweep", func(ctx context.Context) error {
		return events.SweepStatuses(ctx)
	})
	go runEvery(ctx, sweepInterval, "stale payment sweep", func(ctx context.Context) error {
		n, err := pay.ExpireStalePending(ctx)
		if n > 0 {
			log.Printf("jobs: expired %d stale pending payments", n)
		}
		return err
	})
	go runEvery(ctx, sweepInterval, "certificate flag reconcile", certs.ReconcileFlags)
	go runEvery(ctx, reminderInterval, "event reminders", sendReminders)
}

func runEvery(ctx context.Context, interval time.Duration, name string, fn func(context.Context) error) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			runCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
			if err := fn(runCtx); err != nil {
				log.Printf("jobs: %s: %v", name, err)
			}
			cancel()
		}
	}
}

// sendReminders notifies registrants of events starting within the window.
// A redis marker keyed by event makes each event remind at most once even if
// multiple instances run the sweep.
func sendReminders(ctx context.Context) error {
	upcoming, err := events.UpcomingWithin(ctx, reminderWindow)
	if err != nil {
		return err
	}

	for _, event := range upcoming {
		ok, err := rdx.Conn.SetNX(ctx, "reminder:"+event.EventID, "1", 48*time.Hour).Result()
		if err != nil {
			log.Printf("jobs: reminder marker for %s: %v", event.EventID, err)
			continue
		}
		if !ok {
			continue
		}

		cursor, err := db.RegistrationsCollection.Find(ctx, bson.M{
			"eventid":    event.EventID,
			"attendance": models.AttendanceRegistered,
		})
		if err != nil {
			return err
		}

		var regs []models.Registration
		if err := cursor.All(ctx, &regs); err != nil {
			cursor.Close(ctx)
			return err
		}
		cursor.Close(ctx)

		for _, reg := range regs {
			mq.Emit(ctx, "reminder", reg.Email, event.EventID, map[string]string{
				"eventTitle": event.Title,
				"startDate":  event.StartDate.Format(time.RFC3339),
				"venue":      event.Venue,
			})
		}
		log.Printf("jobs: sent %d reminders for event %s", len(regs), event.EventID)
	}
	return nil
}
