package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/zoomlabs/crm-server/internal/models"
)

type DiscordWebhookField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

type DiscordEmbed struct {
	Title       string                `json:"title"`
	Description string                `json:"description"`
	Color       int                   `json:"color"`
	Fields      []DiscordWebhookField `json:"fields"`
	Timestamp   string                `json:"timestamp"`
}

type DiscordWebhookRequest struct {
	Username string         `json:"username"`
	Embeds   []DiscordEmbed `json:"embeds"`
}

type SlackField struct {
	Title string `json:"title"`
	Value string `json:"value"`
	Short bool   `json:"short"`
}

type SlackAttachment struct {
	Color     string       `json:"color"`
	Title     string       `json:"title"`
	Text      string       `json:"text"`
	Fields    []SlackField `json:"fields"`
	Timestamp int64        `json:"ts"`
}

type SlackWebhookRequest struct {
	Username    string            `json:"username"`
	IconEmoji   string            `json:"icon_emoji,omitempty"`
	Text        string            `json:"text"`
	Attachments []SlackAttachment `json:"attachments"`
}

const (
	colorBlue   = 3447003  // reminder scheduled
	colorOrange = 16753920 // reminder snoozed

	webhookUsername = "CRM Reminders"
)

// NotifyAlertScheduled announces a reminder that just materialized for today.
// Best-effort: a missing webhook URL disables the channel, failures are
// returned for logging only.
func NotifyAlertScheduled(alert models.Alert, contact models.Contact) error {
	return notifyAlert("Reminder scheduled for today", alert.Subject, contact.Name, alert.AlertTime, colorBlue)
}

// NotifyAlertSnoozed announces a reminder pushed to the next day.
func NotifyAlertSnoozed(alert models.Alert) error {
	return notifyAlert("Reminder snoozed until tomorrow", alert.Subject, "", alert.AlertTime, colorOrange)
}

func notifyAlert(title, subject, contactName string, alertTime time.Time, color int) error {
	discordURL := os.Getenv("DISCORD_WEBHOOK_URL")
	slackURL := os.Getenv("SLACK_WEBHOOK_URL")

	if discordURL == "" && slackURL == "" {
		return nil
	}

	fields := []DiscordWebhookField{
		{Name: "Subject", Value: subject, Inline: false},
		{Name: "Alert Time", Value: alertTime.Format("2006-01-02 15:04"), Inline: true},
	}
	slackFields := []SlackField{
		{Title: "Subject", Value: subject, Short: false},
		{Title: "Alert Time", Value: alertTime.Format("2006-01-02 15:04"), Short: true},
	}

	if contactName != "" {
		fields = append(fields, DiscordWebhookField{Name: "Contact", Value: contactName, Inline: true})
		slackFields = append(slackFields, SlackField{Title: "Contact", Value: contactName, Short: true})
	}

	if discordURL != "" {
		payload := DiscordWebhookRequest{
			Username: webhookUsername,
			Embeds: []DiscordEmbed{
				{
					Title:     title,
					Color:     color,
					Fields:    fields,
					Timestamp: time.Now().Format(time.RFC3339),
				},
			},
		}
		if err := sendWebhook(discordURL, payload); err != nil {
			return fmt.Errorf("discord: %w", err)
		}
	}

	if slackURL != "" {
		payload := SlackWebhookRequest{
			Username:  webhookUsername,
			IconEmoji: ":alarm_clock:",
			Text:      title,
			Attachments: []SlackAttachment{
				{
					Color:     "#439FE0",
					Title:     subject,
					Fields:    slackFields,
					Timestamp: time.Now().Unix(),
				},
			},
		}
		if err := sendWebhook(slackURL, payload); err != nil {
			return fmt.Errorf("slack: %w", err)
		}
	}

	return nil
}

func sendWebhook(webhookURL string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal webhook payload: %w", err)
	}

	resp, err := http.Post(webhookURL, "application/json", bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("failed to send webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	return nil
}
