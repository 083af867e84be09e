package mq

import (
	"context"
	"encoding/json"
	"log"

	"evently/rdx"
)

// StartNotifyWorker consumes the notification channel and hands each message
// to the sender. Runs until the subscription closes.
func StartNotifyWorker() {
	ctx := context.Background()
	sub := rdx.Conn.Subscribe(ctx, notifyChannel)
	ch := sub.Channel()

	log.Println("[NotifyWorker] Listening for notification events...")

	for msg := range ch {
		var n Notification
		if err := json.Unmarshal([]byte(msg.Payload), &n); err != nil {
			log.Printf("[NotifyWorker] unmarshal error: %v", err)
			continue
		}
		if err := deliver(n); err != nil {
			// Fire-and-forget: log and move on.
			log.Printf("[NotifyWorker] delivery failed kind=%s recipient=%s: %v", n.Kind, n.Recipient, err)
		}
	}
}

// deliver is the notification sender. Mail/SMS transports hang off here; the
// default build logs the message.
func deliver(n Notification) error {
	log.Printf("[NotifyWorker] %s -> %s event=%s payload=%v", n.Kind, n.Recipient, n.EventID, n.Payload)
	return nil
}
