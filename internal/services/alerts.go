package services

import (
	"errors"
	"time"

	"github.com/zoomlabs/crm-server/internal/audit"
	"github.com/zoomlabs/crm-server/internal/models"
	"gorm.io/gorm"
)

// ErrAlertNotFound is returned by SnoozeAlert for an unknown alert ID.
var ErrAlertNotFound = errors.New("alert not found")

// TodayWindow returns the local calendar-day bounds [00:00:00.000, 23:59:59.999]
// around now. The alert sync rule and the today listing share this window.
func TodayWindow(now time.Time) (time.Time, time.Time) {
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	end := time.Date(now.Year(), now.Month(), now.Day(), 23, 59, 59, 999_000_000, now.Location())
	return start, end
}

// SyncContactAlert keeps the contact's single live alert in lockstep with its
// next-reminder timestamp. A NxtAlrt inside today's window upserts the live
// alert; anything else removes whatever alert rows the contact still has.
// Returns the live alert after the sync, or nil when none should exist.
func SyncContactAlert(dbh *gorm.DB, contact *models.Contact, actor audit.Actor, ip string, now time.Time) (*models.Alert, error) {
	if contact.NxtAlrt == nil {
		return nil, nil
	}

	start, end := TodayWindow(now)
	alertTime := *contact.NxtAlrt

	if alertTime.Before(start) || alertTime.After(end) {
		// Future or past day: the contact must have no alert at all.
		if err := dbh.Where("contact_id = ?", contact.ID).Delete(&models.Alert{}).Error; err != nil {
			return nil, err
		}
		return nil, nil
	}

	subject := contact.Subject
	if subject == "" {
		subject = "Reminder for " + contact.Name
	}

	var alert models.Alert
	err := dbh.Where("contact_id = ? AND dlt_sts = ?", contact.ID, models.DltStsLive).First(&alert).Error

	switch {
	case err == nil:
		updates := audit.UpdateValues(actor, ip, now)
		updates["alert_time"] = alertTime
		updates["subject"] = subject
		updates["assigned_to"] = contact.AssignedTo
		updates["status"] = models.AlertPending

		if err := dbh.Model(&alert).Updates(updates).Error; err != nil {
			return nil, err
		}

		if err := dbh.First(&alert, alert.ID).Error; err != nil {
			return nil, err
		}
		return &alert, nil

	case errors.Is(err, gorm.ErrRecordNotFound):
		alert = models.Alert{
			ContactID:  contact.ID,
			AlertTime:  alertTime,
			Subject:    subject,
			AssignedTo: contact.AssignedTo,
			Status:     models.AlertPending,
		}
		audit.StampCreate(&alert.AuditFields, actor, ip, now)

		if err := dbh.Create(&alert).Error; err != nil {
			return nil, err
		}
		return &alert, nil

	default:
		return nil, err
	}
}

// SnoozeAlert removes today's alert and pushes the owning contact's reminder
// forward by one calendar day from the moment of snoozing. The next contact
// write inside tomorrow's window recreates the alert as pending.
func SnoozeAlert(dbh *gorm.DB, alertID uint, now time.Time) (models.Alert, error) {
	var alert models.Alert

	if err := dbh.First(&alert, alertID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Alert{}, ErrAlertNotFound
		}
		return models.Alert{}, err
	}

	if err := dbh.Delete(&models.Alert{}, alert.ID).Error; err != nil {
		return models.Alert{}, err
	}

	nextDay := now.AddDate(0, 0, 1)

	if err := dbh.Model(&models.Contact{}).
		Where("id = ?", alert.ContactID).
		Update("nxt_alrt", nextDay).Error; err != nil {
		return models.Alert{}, err
	}

	return alert, nil
}

// DeleteContactAlerts soft-deletes every live alert owned by a contact, used
// when the contact itself is soft-deleted.
func DeleteContactAlerts(dbh *gorm.DB, contactID uint, actor audit.Actor, ip string, now time.Time) error {
	return CascadeSoftDelete(dbh, &models.Alert{}, "contact_id = ?", contactID, actor, ip, now)
}
