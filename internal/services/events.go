package services

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const alertQueue = "crm.alerts"

const (
	EventAlertCreated = "alert.created"
	EventAlertUpdated = "alert.updated"
	EventAlertSnoozed = "alert.snoozed"
)

// AlertEvent is published on the broker whenever an alert materializes, moves
// or is snoozed. Consumers get enough context to notify or log without
// querying the primary database.
type AlertEvent struct {
	Type        string `json:"type"`
	AlertID     uint   `json:"alert_id"`
	ContactID   uint   `json:"contact_id"`
	ContactName string `json:"contact_name,omitempty"`
	Subject     string `json:"subject"`
	AssignedTo  string `json:"assigned_to"`
	AlertTime   string `json:"alert_time,omitempty"`
	OccurredAt  string `json:"occurred_at"`
}

// PublishAlertEvent sends an event to the crm.alerts queue. Publishing is
// best-effort: errors are logged and returned so callers can ignore them
// without interrupting the request flow. A missing RABBITMQ_URL disables
// publishing entirely.
func PublishAlertEvent(ctx context.Context, event AlertEvent) error {
	url := os.Getenv("RABBITMQ_URL")
	if url == "" {
		url = os.Getenv("AMQP_URL")
	}
	if url == "" {
		return nil
	}

	conn, err := amqp.Dial(url)
	if err != nil {
		log.Printf("rabbitmq: dial failed: %v", err)
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.Printf("rabbitmq: channel open failed: %v", err)
		return err
	}
	defer func() { _ = ch.Close() }()

	// Idempotent declare; durable so events survive broker restarts.
	if _, err := ch.QueueDeclare(alertQueue, true, false, false, false, nil); err != nil {
		log.Printf("rabbitmq: queue declare failed: %v", err)
		return err
	}

	body, err := json.Marshal(event)
	if err != nil {
		log.Printf("rabbitmq: marshal event failed: %v", err)
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}

	if err := ch.PublishWithContext(ctx, "", alertQueue, false, false, pub); err != nil {
		log.Printf("rabbitmq: publish failed: %v", err)
		return err
	}

	return nil
}
