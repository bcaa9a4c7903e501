package handlers

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/zoomlabs/crm-server/db"
	"github.com/zoomlabs/crm-server/internal/audit"
	"github.com/zoomlabs/crm-server/internal/models"
	"github.com/zoomlabs/crm-server/internal/services"
	"github.com/zoomlabs/crm-server/internal/utils"
	"gorm.io/gorm"
)

// EditAlertRequest patches the mutable alert fields. Pointers distinguish
// "not supplied" from a zero value.
type EditAlertRequest struct {
	AlertTime  *time.Time `json:"alertTime"`
	Subject    *string    `json:"subject"`
	AssignedTo *string    `json:"assignedTo"`
	Status     *int       `json:"status"`
}

func GetTodayAlerts(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	start, end := services.TodayWindow(time.Now())

	var alerts []models.Alert
	if err := db.DB.Preload("Contact").
		Where("alert_time >= ? AND alert_time <= ?", start, end).
		Where("status = ? AND dlt_sts = ?", models.AlertPending, models.DltStsLive).
		Where("assigned_to = ?", currentUser.UID).
		Find(&alerts).Error; err != nil {
		log.Printf("Failed to list today's alerts: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve alerts"})
		return
	}

	ctx.JSON(http.StatusOK, alerts)
}

func EditAlert(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var body EditAlertRequest
	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	var alert models.Alert
	if err := db.DB.First(&alert, ctx.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Alert not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve alert"})
		}
		return
	}

	now := time.Now()
	updates := audit.UpdateValues(audit.User(currentUser.UID), ctx.ClientIP(), now)

	if body.AlertTime != nil {
		updates["alert_time"] = *body.AlertTime
	}
	if body.Subject != nil {
		updates["subject"] = *body.Subject
	}
	if body.AssignedTo != nil {
		updates["assigned_to"] = *body.AssignedTo
	}
	if body.Status != nil {
		updates["status"] = *body.Status
	}

	if err := db.DB.Model(&alert).Updates(updates).Error; err != nil {
		log.Printf("Failed to update alert %d: %v", alert.ID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update alert"})
		return
	}

	if err := db.DB.First(&alert, alert.ID).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve alert"})
		return
	}

	_ = services.PublishAlertEvent(ctx.Request.Context(), services.AlertEvent{
		Type:       services.EventAlertUpdated,
		AlertID:    alert.ID,
		ContactID:  alert.ContactID,
		Subject:    alert.Subject,
		AssignedTo: alert.AssignedTo,
		AlertTime:  alert.AlertTime.Format(time.RFC3339),
		OccurredAt: now.Format(time.RFC3339),
	})

	ctx.JSON(http.StatusOK, alert)
}

func SnoozeOneDay(ctx *gin.Context) {
	id, err := utils.ParseID(ctx, "id")
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	now := time.Now()

	alert, err := services.SnoozeAlert(db.DB, id, now)
	if err != nil {
		if errors.Is(err, services.ErrAlertNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"message": "Alert not found"})
			return
		}
		log.Printf("Failed to snooze alert %d: %v", id, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to snooze alert"})
		return
	}

	_ = services.PublishAlertEvent(ctx.Request.Context(), services.AlertEvent{
		Type:       services.EventAlertSnoozed,
		AlertID:    alert.ID,
		ContactID:  alert.ContactID,
		Subject:    alert.Subject,
		AssignedTo: alert.AssignedTo,
		AlertTime:  alert.AlertTime.Format(time.RFC3339),
		OccurredAt: now.Format(time.RFC3339),
	})

	if err := services.NotifyAlertSnoozed(alert); err != nil {
		log.Printf("Failed to send snooze notification: %v", err)
	}

	ctx.JSON(http.StatusOK, gin.H{"success": true})
}
