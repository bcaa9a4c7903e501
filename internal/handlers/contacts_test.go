package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/zoomlabs/crm-server/db"
	"github.com/zoomlabs/crm-server/internal/models"
)

func contactRouter(uid, role string) *gin.Engine {
	r := gin.New()
	r.Use(authAs(uid, "user-"+uid, role))
	r.POST("/api/contacts/add", AddContact)
	r.GET("/api/contacts/", ListContacts)
	r.PUT("/api/contacts/edit/:id", EditContact)
	r.DELETE("/api/contacts/delete/:id", DeleteContact)
	r.GET("/api/contacts/feedbacks/:contactId", GetContactFeedbacks)
	return r
}

func TestAddContactDefaultsAssigneeToCaller(t *testing.T) {
	setupHandlerTest(t)
	r := contactRouter("100002", models.RoleStaff)

	w := doJSON(t, r, http.MethodPost, "/api/contacts/add", gin.H{"name": "Ravi Kumar"})
	assertStatus(t, w, http.StatusOK)

	var contact models.Contact
	decodeBody(t, w, &contact)

	if contact.AssignedTo != "100002" {
		t.Errorf("assignedTo = %q, want the caller's ID", contact.AssignedTo)
	}
	if contact.CrtdBy != "100002" {
		t.Errorf("crtdBy = %q, want the caller's ID", contact.CrtdBy)
	}
}

func TestAddContactWithReminderTodayCreatesAlert(t *testing.T) {
	setupHandlerTest(t)
	r := contactRouter("100002", models.RoleStaff)

	now := time.Now()
	w := doJSON(t, r, http.MethodPost, "/api/contacts/add", gin.H{
		"name":    "Ravi Kumar",
		"nxtAlrt": now.Format(time.RFC3339),
	})
	assertStatus(t, w, http.StatusOK)

	var contact models.Contact
	decodeBody(t, w, &contact)

	var alert models.Alert
	if err := db.DB.Where("contact_id = ?", contact.ID).First(&alert).Error; err != nil {
		t.Fatalf("expected an alert for a reminder due today: %v", err)
	}
	if alert.Subject != "Reminder for Ravi Kumar" {
		t.Errorf("subject = %q, want the default reminder subject", alert.Subject)
	}
	if alert.AssignedTo != "100002" {
		t.Errorf("alert assignedTo = %q, want the contact's assignee", alert.AssignedTo)
	}
}

func TestAddContactAppendsFeedback(t *testing.T) {
	setupHandlerTest(t)
	r := contactRouter("100002", models.RoleStaff)

	w := doJSON(t, r, http.MethodPost, "/api/contacts/add", gin.H{
		"name":   "Ravi Kumar",
		"fdback": "Interested in the premium plan",
	})
	assertStatus(t, w, http.StatusOK)

	var contact models.Contact
	decodeBody(t, w, &contact)

	var feedbacks []models.Feedback
	if err := db.DB.Where("contact_id = ?", contact.ID).Find(&feedbacks).Error; err != nil {
		t.Fatalf("failed to fetch feedbacks: %v", err)
	}
	if len(feedbacks) != 1 {
		t.Fatalf("expected 1 feedback entry, got %d", len(feedbacks))
	}
	if feedbacks[0].Fdback != "Interested in the premium plan" {
		t.Errorf("fdback = %q", feedbacks[0].Fdback)
	}
}

func TestListContactsStaffSeesOnlyAssigned(t *testing.T) {
	setupHandlerTest(t)

	seedContact(t, "Mine", "100002", nil)
	seedContact(t, "Someone else's", "100003", nil)

	r := contactRouter("100002", models.RoleStaff)
	w := doJSON(t, r, http.MethodGet, "/api/contacts/", nil)
	assertStatus(t, w, http.StatusOK)

	var contacts []models.Contact
	decodeBody(t, w, &contacts)

	if len(contacts) != 1 {
		t.Fatalf("staff should see 1 contact, got %d", len(contacts))
	}
	if contacts[0].Name != "Mine" {
		t.Errorf("staff saw %q, want only their own contact", contacts[0].Name)
	}
}

func TestListContactsAdminSeesAll(t *testing.T) {
	setupHandlerTest(t)

	seedContact(t, "First", "100002", nil)
	seedContact(t, "Second", "100003", nil)

	deleted := seedContact(t, "Gone", "100002", nil)
	if err := db.DB.Model(&deleted).Update("dlt_sts", models.DltStsDeleted).Error; err != nil {
		t.Fatalf("failed to soft-delete contact: %v", err)
	}

	r := contactRouter("100001", models.RoleAdmin)
	w := doJSON(t, r, http.MethodGet, "/api/contacts/", nil)
	assertStatus(t, w, http.StatusOK)

	var contacts []models.Contact
	decodeBody(t, w, &contacts)

	if len(contacts) != 2 {
		t.Fatalf("admin should see 2 live contacts, got %d", len(contacts))
	}
}

func TestEditContactStaffCannotReassign(t *testing.T) {
	setupHandlerTest(t)
	contact := seedContact(t, "Ravi Kumar", "100002", nil)

	r := contactRouter("100002", models.RoleStaff)
	w := doJSON(t, r, http.MethodPut, "/api/contacts/edit/1", gin.H{
		"name":       "Ravi Kumar",
		"assignedTo": "100009",
	})
	assertStatus(t, w, http.StatusOK)

	var reloaded models.Contact
	if err := db.DB.First(&reloaded, contact.ID).Error; err != nil {
		t.Fatalf("failed to reload contact: %v", err)
	}
	if reloaded.AssignedTo != "100002" {
		t.Errorf("assignedTo = %q, staff must not reassign", reloaded.AssignedTo)
	}
}

func TestEditContactPushingReminderOutRemovesAlert(t *testing.T) {
	setupHandlerTest(t)
	r := contactRouter("100002", models.RoleStaff)

	now := time.Now()
	w := doJSON(t, r, http.MethodPost, "/api/contacts/add", gin.H{
		"name":    "Ravi Kumar",
		"nxtAlrt": now.Format(time.RFC3339),
	})
	assertStatus(t, w, http.StatusOK)

	var contact models.Contact
	decodeBody(t, w, &contact)

	w = doJSON(t, r, http.MethodPut, "/api/contacts/edit/1", gin.H{
		"name":    "Ravi Kumar",
		"nxtAlrt": now.AddDate(0, 0, 3).Format(time.RFC3339),
	})
	assertStatus(t, w, http.StatusOK)

	var count int64
	if err := db.DB.Model(&models.Alert{}).Where("contact_id = ?", contact.ID).Count(&count).Error; err != nil {
		t.Fatalf("failed to count alerts: %v", err)
	}
	if count != 0 {
		t.Errorf("expected the alert to be removed once the reminder left today, got %d rows", count)
	}
}

func TestEditContactPartialUpdateKeepsOmittedFields(t *testing.T) {
	setupHandlerTest(t)

	contact := models.Contact{
		Name:       "Ravi Kumar",
		Email:      "ravi@example.com",
		Ph:         "9000000000",
		Subject:    "Quarterly renewal call",
		AssignedTo: "100002",
	}
	if err := db.DB.Create(&contact).Error; err != nil {
		t.Fatalf("failed to seed contact: %v", err)
	}

	r := contactRouter("100002", models.RoleStaff)
	w := doJSON(t, r, http.MethodPut, "/api/contacts/edit/1", gin.H{
		"name":    "Ravi Kumar",
		"nxtAlrt": time.Now().AddDate(0, 0, 1).Format(time.RFC3339),
	})
	assertStatus(t, w, http.StatusOK)

	var reloaded models.Contact
	if err := db.DB.First(&reloaded, contact.ID).Error; err != nil {
		t.Fatalf("failed to reload contact: %v", err)
	}
	if reloaded.Email != "ravi@example.com" {
		t.Errorf("email = %q, omitted field must keep its value", reloaded.Email)
	}
	if reloaded.Ph != "9000000000" {
		t.Errorf("ph = %q, omitted field must keep its value", reloaded.Ph)
	}
	if reloaded.Subject != "Quarterly renewal call" {
		t.Errorf("subject = %q, omitted field must keep its value", reloaded.Subject)
	}
	if reloaded.NxtAlrt == nil {
		t.Error("nxtAlrt was supplied and must be updated")
	}
}

func TestEditContactNotFound(t *testing.T) {
	setupHandlerTest(t)
	r := contactRouter("100002", models.RoleStaff)

	w := doJSON(t, r, http.MethodPut, "/api/contacts/edit/42", gin.H{"name": "Nobody"})
	assertStatus(t, w, http.StatusNotFound)
}

func TestDeleteContactCascadesToAlerts(t *testing.T) {
	setupHandlerTest(t)
	r := contactRouter("100002", models.RoleStaff)

	now := time.Now()
	w := doJSON(t, r, http.MethodPost, "/api/contacts/add", gin.H{
		"name":    "Ravi Kumar",
		"nxtAlrt": now.Format(time.RFC3339),
	})
	assertStatus(t, w, http.StatusOK)

	var contact models.Contact
	decodeBody(t, w, &contact)

	w = doJSON(t, r, http.MethodDelete, "/api/contacts/delete/1", nil)
	assertStatus(t, w, http.StatusOK)

	var reloaded models.Contact
	if err := db.DB.First(&reloaded, contact.ID).Error; err != nil {
		t.Fatalf("failed to reload contact: %v", err)
	}
	if reloaded.DltSts != models.DltStsDeleted {
		t.Errorf("contact dltSts = %d, want deleted", reloaded.DltSts)
	}
	if reloaded.DltBy != "100002" {
		t.Errorf("contact dltBy = %q, want the caller's ID", reloaded.DltBy)
	}

	var alert models.Alert
	if err := db.DB.Where("contact_id = ?", contact.ID).First(&alert).Error; err != nil {
		t.Fatalf("failed to fetch alert: %v", err)
	}
	if alert.DltSts != models.DltStsDeleted {
		t.Errorf("alert dltSts = %d, want deleted via cascade", alert.DltSts)
	}
}

func TestGetContactFeedbacksNewestFirst(t *testing.T) {
	setupHandlerTest(t)
	contact := seedContact(t, "Ravi Kumar", "100002", nil)

	base := time.Now().Add(-time.Hour)
	for i, text := range []string{"older", "newer"} {
		fb := models.Feedback{ContactID: contact.ID, Fdback: text}
		fb.CrtdOn = base.Add(time.Duration(i) * time.Minute)
		fb.CrtdBy = "100002"
		if err := db.DB.Create(&fb).Error; err != nil {
			t.Fatalf("failed to seed feedback: %v", err)
		}
	}

	r := contactRouter("100002", models.RoleStaff)
	w := doJSON(t, r, http.MethodGet, "/api/contacts/feedbacks/1", nil)
	assertStatus(t, w, http.StatusOK)

	var feedbacks []models.Feedback
	decodeBody(t, w, &feedbacks)

	if len(feedbacks) != 2 {
		t.Fatalf("expected 2 feedbacks, got %d", len(feedbacks))
	}
	if feedbacks[0].Fdback != "newer" {
		t.Errorf("first feedback = %q, want newest first", feedbacks[0].Fdback)
	}
}
