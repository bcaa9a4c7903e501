package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/zoomlabs/crm-server/db"
	"github.com/zoomlabs/crm-server/internal/audit"
	"github.com/zoomlabs/crm-server/internal/models"
	"github.com/zoomlabs/crm-server/internal/services"
	"github.com/zoomlabs/crm-server/internal/utils"
	"gorm.io/gorm"
)

type ContactRequest struct {
	Name       string     `json:"name" binding:"required"`
	Email      string     `json:"email"`
	Ph         string     `json:"ph"`
	Subject    string     `json:"subject"`
	AssignedTo string     `json:"assignedTo"`
	NxtAlrt    *time.Time `json:"nxtAlrt"`

	// Fdback is peeled off the contact payload and appended to the
	// feedback history instead.
	Fdback string `json:"fdback"`
}

// EditContactRequest patches the mutable contact fields. Pointers distinguish
// "not supplied" from a zero value so a partial edit leaves omitted fields
// untouched.
type EditContactRequest struct {
	Name       *string    `json:"name"`
	Email      *string    `json:"email"`
	Ph         *string    `json:"ph"`
	Subject    *string    `json:"subject"`
	AssignedTo *string    `json:"assignedTo"`
	NxtAlrt    *time.Time `json:"nxtAlrt"`

	Fdback string `json:"fdback"`
}

func AddContact(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var body ContactRequest
	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	actor := audit.User(currentUser.UID)
	ip := ctx.ClientIP()
	now := time.Now()

	assignedTo := body.AssignedTo
	if assignedTo == "" {
		assignedTo = currentUser.UID
	}

	contact := models.Contact{
		Name:       body.Name,
		Email:      body.Email,
		Ph:         body.Ph,
		Subject:    body.Subject,
		AssignedTo: assignedTo,
		NxtAlrt:    body.NxtAlrt,
	}
	audit.StampCreate(&contact.AuditFields, actor, ip, now)

	if err := db.DB.Create(&contact).Error; err != nil {
		log.Printf("Failed to create contact: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create contact"})
		return
	}

	// Secondary writes are best-effort: the saved contact is returned even
	// when the feedback append or alert sync fails.
	saveFeedback(contact.ID, body.Fdback, actor, ip, now)
	syncAlert(ctx, &contact, actor, ip, now)

	ctx.JSON(http.StatusOK, contact)
}

func ListContacts(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	query := db.DB.Where("dlt_sts = ?", models.DltStsLive)

	if !utils.IsAdmin(currentUser) {
		query = query.Where("assigned_to = ?", currentUser.UID)
	}

	var contacts []models.Contact
	if err := query.Find(&contacts).Error; err != nil {
		log.Printf("Failed to list contacts: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve contacts"})
		return
	}

	ctx.JSON(http.StatusOK, contacts)
}

func EditContact(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var body EditContactRequest
	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	var contact models.Contact
	if err := db.DB.First(&contact, ctx.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Contact not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve contact"})
		}
		return
	}

	actor := audit.User(currentUser.UID)
	ip := ctx.ClientIP()
	now := time.Now()

	updates := audit.UpdateValues(actor, ip, now)

	if body.Name != nil {
		updates["name"] = *body.Name
	}
	if body.Email != nil {
		updates["email"] = *body.Email
	}
	if body.Ph != nil {
		updates["ph"] = *body.Ph
	}
	if body.Subject != nil {
		updates["subject"] = *body.Subject
	}
	if body.NxtAlrt != nil {
		updates["nxt_alrt"] = *body.NxtAlrt
	}

	// Only admin may reassign a contact.
	if body.AssignedTo != nil && *body.AssignedTo != "" && utils.IsAdmin(currentUser) {
		updates["assigned_to"] = *body.AssignedTo
	}

	if err := db.DB.Model(&contact).Updates(updates).Error; err != nil {
		log.Printf("Failed to update contact %d: %v", contact.ID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update contact"})
		return
	}

	if err := db.DB.First(&contact, contact.ID).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve contact"})
		return
	}

	saveFeedback(contact.ID, body.Fdback, actor, ip, now)

	// Re-evaluate the alert sync rule against the new reminder date.
	if body.NxtAlrt != nil {
		syncAlert(ctx, &contact, actor, ip, now)
	}

	ctx.JSON(http.StatusOK, contact)
}

func DeleteContact(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var contact models.Contact
	if err := db.DB.First(&contact, ctx.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Contact not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve contact"})
		}
		return
	}

	actor := audit.User(currentUser.UID)
	ip := ctx.ClientIP()
	now := time.Now()

	if err := db.DB.Model(&contact).Updates(audit.DeleteValues(actor, ip, now)).Error; err != nil {
		log.Printf("Failed to delete contact %d: %v", contact.ID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete contact"})
		return
	}

	if err := services.DeleteContactAlerts(db.DB, contact.ID, actor, ip, now); err != nil {
		log.Printf("Failed to cascade delete alerts for contact %d: %v", contact.ID, err)
	}

	if err := db.DB.First(&contact, contact.ID).Error; err == nil {
		ctx.JSON(http.StatusOK, contact)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"success": true})
}

func GetContactFeedbacks(ctx *gin.Context) {
	var feedbacks []models.Feedback

	if err := db.DB.
		Where("contact_id = ?", ctx.Param("contactId")).
		Order("crtd_on DESC").
		Find(&feedbacks).Error; err != nil {
		log.Printf("Failed to list feedbacks: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve feedbacks"})
		return
	}

	ctx.JSON(http.StatusOK, feedbacks)
}

func saveFeedback(contactID uint, fdback string, actor audit.Actor, ip string, now time.Time) {
	if strings.TrimSpace(fdback) == "" {
		return
	}

	feedback := models.Feedback{
		ContactID: contactID,
		Fdback:    fdback,
	}
	audit.StampCreate(&feedback.AuditFields, actor, ip, now)

	if err := db.DB.Create(&feedback).Error; err != nil {
		log.Printf("Failed to save feedback for contact %d: %v", contactID, err)
	}
}

func syncAlert(ctx *gin.Context, contact *models.Contact, actor audit.Actor, ip string, now time.Time) {
	alert, err := services.SyncContactAlert(db.DB, contact, actor, ip, now)
	if err != nil {
		log.Printf("Failed to sync alert for contact %d: %v", contact.ID, err)
		return
	}

	if alert == nil {
		return
	}

	_ = services.PublishAlertEvent(ctx.Request.Context(), services.AlertEvent{
		Type:        services.EventAlertCreated,
		AlertID:     alert.ID,
		ContactID:   contact.ID,
		ContactName: contact.Name,
		Subject:     alert.Subject,
		AssignedTo:  alert.AssignedTo,
		AlertTime:   alert.AlertTime.Format(time.RFC3339),
		OccurredAt:  now.Format(time.RFC3339),
	})

	if err := services.NotifyAlertScheduled(*alert, *contact); err != nil {
		log.Printf("Failed to send alert notification: %v", err)
	}
}
