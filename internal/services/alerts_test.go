package services

import (
	"errors"
	"testing"
	"time"

	"github.com/zoomlabs/crm-server/internal/audit"
	"github.com/zoomlabs/crm-server/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dbh, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := dbh.AutoMigrate(&models.Contact{}, &models.Alert{}, &models.ScrumList{}, &models.ScrumTask{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return dbh
}

func createContact(t *testing.T, dbh *gorm.DB, name, assignedTo string, nxtAlrt *time.Time) models.Contact {
	t.Helper()

	contact := models.Contact{
		Name:       name,
		AssignedTo: assignedTo,
		NxtAlrt:    nxtAlrt,
	}
	audit.StampCreate(&contact.AuditFields, audit.User("100001"), "127.0.0.1", time.Now())

	if err := dbh.Create(&contact).Error; err != nil {
		t.Fatalf("failed to create contact: %v", err)
	}

	return contact
}

func countAlerts(t *testing.T, dbh *gorm.DB, contactID uint) int64 {
	t.Helper()

	var count int64
	if err := dbh.Model(&models.Alert{}).Where("contact_id = ?", contactID).Count(&count).Error; err != nil {
		t.Fatalf("failed to count alerts: %v", err)
	}
	return count
}

func TestTodayWindow(t *testing.T) {
	now := time.Date(2025, time.March, 14, 15, 30, 45, 0, time.Local)

	start, end := TodayWindow(now)

	wantStart := time.Date(2025, time.March, 14, 0, 0, 0, 0, time.Local)
	wantEnd := time.Date(2025, time.March, 14, 23, 59, 59, 999_000_000, time.Local)

	if !start.Equal(wantStart) {
		t.Errorf("window start = %v, want %v", start, wantStart)
	}
	if !end.Equal(wantEnd) {
		t.Errorf("window end = %v, want %v", end, wantEnd)
	}
	if !now.After(start) || !now.Before(end) {
		t.Errorf("now %v should fall inside [%v, %v]", now, start, end)
	}
}

func TestSyncContactAlertNoReminder(t *testing.T) {
	dbh := newTestDB(t)
	contact := createContact(t, dbh, "Ravi Kumar", "100001", nil)

	alert, err := SyncContactAlert(dbh, &contact, audit.User("100001"), "127.0.0.1", time.Now())
	if err != nil {
		t.Fatalf("sync failed: %v", err)
	}
	if alert != nil {
		t.Errorf("expected no alert for contact without reminder, got %+v", alert)
	}
	if got := countAlerts(t, dbh, contact.ID); got != 0 {
		t.Errorf("expected 0 alert rows, got %d", got)
	}
}

func TestSyncContactAlertInsideWindow(t *testing.T) {
	dbh := newTestDB(t)
	now := time.Now()
	contact := createContact(t, dbh, "Ravi Kumar", "100002", &now)

	alert, err := SyncContactAlert(dbh, &contact, audit.User("100001"), "127.0.0.1", now)
	if err != nil {
		t.Fatalf("sync failed: %v", err)
	}
	if alert == nil {
		t.Fatal("expected an alert for a reminder due today")
	}

	if alert.Subject != "Reminder for Ravi Kumar" {
		t.Errorf("subject = %q, want default reminder subject", alert.Subject)
	}
	if alert.AssignedTo != "100002" {
		t.Errorf("assignedTo = %q, want contact's assignee", alert.AssignedTo)
	}
	if alert.Status != models.AlertPending {
		t.Errorf("status = %d, want pending", alert.Status)
	}
	if got := countAlerts(t, dbh, contact.ID); got != 1 {
		t.Errorf("expected 1 alert row, got %d", got)
	}
}

func TestSyncContactAlertUsesContactSubject(t *testing.T) {
	dbh := newTestDB(t)
	now := time.Now()
	contact := createContact(t, dbh, "Ravi Kumar", "100002", &now)
	contact.Subject = "Quarterly renewal call"

	alert, err := SyncContactAlert(dbh, &contact, audit.User("100001"), "127.0.0.1", now)
	if err != nil {
		t.Fatalf("sync failed: %v", err)
	}
	if alert.Subject != "Quarterly renewal call" {
		t.Errorf("subject = %q, want the contact's own subject", alert.Subject)
	}
}

func TestSyncContactAlertUpsertsSingleRow(t *testing.T) {
	dbh := newTestDB(t)
	// Pinned mid-morning so now+2h stays inside the same calendar day.
	now := time.Date(2025, time.March, 14, 10, 15, 0, 0, time.Local)
	contact := createContact(t, dbh, "Ravi Kumar", "100002", &now)

	if _, err := SyncContactAlert(dbh, &contact, audit.User("100001"), "127.0.0.1", now); err != nil {
		t.Fatalf("first sync failed: %v", err)
	}

	later := now.Add(2 * time.Hour)
	contact.NxtAlrt = &later
	contact.AssignedTo = "100003"

	alert, err := SyncContactAlert(dbh, &contact, audit.User("100001"), "127.0.0.1", now)
	if err != nil {
		t.Fatalf("second sync failed: %v", err)
	}

	if got := countAlerts(t, dbh, contact.ID); got != 1 {
		t.Fatalf("expected upsert to keep a single alert row, got %d", got)
	}
	if alert.AssignedTo != "100003" {
		t.Errorf("assignedTo = %q, want the reassigned user", alert.AssignedTo)
	}
	if !alert.AlertTime.Equal(later) {
		t.Errorf("alertTime = %v, want %v", alert.AlertTime, later)
	}
}

func TestSyncContactAlertRemovesWhenOutsideWindow(t *testing.T) {
	dbh := newTestDB(t)
	now := time.Now()
	contact := createContact(t, dbh, "Ravi Kumar", "100002", &now)

	if _, err := SyncContactAlert(dbh, &contact, audit.User("100001"), "127.0.0.1", now); err != nil {
		t.Fatalf("initial sync failed: %v", err)
	}

	tomorrow := now.AddDate(0, 0, 1)
	contact.NxtAlrt = &tomorrow

	alert, err := SyncContactAlert(dbh, &contact, audit.User("100001"), "127.0.0.1", now)
	if err != nil {
		t.Fatalf("resync failed: %v", err)
	}
	if alert != nil {
		t.Errorf("expected no live alert once the reminder moved to tomorrow, got %+v", alert)
	}
	if got := countAlerts(t, dbh, contact.ID); got != 0 {
		t.Errorf("expected alert rows to be removed, got %d", got)
	}
}

func TestSnoozeAlert(t *testing.T) {
	dbh := newTestDB(t)
	now := time.Date(2025, time.March, 14, 10, 15, 0, 0, time.Local)
	contact := createContact(t, dbh, "Ravi Kumar", "100002", &now)

	created, err := SyncContactAlert(dbh, &contact, audit.User("100001"), "127.0.0.1", now)
	if err != nil {
		t.Fatalf("sync failed: %v", err)
	}

	snoozed, err := SnoozeAlert(dbh, created.ID, now)
	if err != nil {
		t.Fatalf("snooze failed: %v", err)
	}
	if snoozed.ID != created.ID {
		t.Errorf("snoozed alert ID = %d, want %d", snoozed.ID, created.ID)
	}

	if got := countAlerts(t, dbh, contact.ID); got != 0 {
		t.Errorf("expected the alert row to be removed, got %d rows", got)
	}

	var reloaded models.Contact
	if err := dbh.First(&reloaded, contact.ID).Error; err != nil {
		t.Fatalf("failed to reload contact: %v", err)
	}
	if reloaded.NxtAlrt == nil {
		t.Fatal("expected the contact reminder to be pushed forward, got nil")
	}

	want := now.AddDate(0, 0, 1)
	if !reloaded.NxtAlrt.Equal(want) {
		t.Errorf("nxtAlrt = %v, want %v", reloaded.NxtAlrt, want)
	}
}

func TestSnoozeAlertNotFound(t *testing.T) {
	dbh := newTestDB(t)
	now := time.Now()
	contact := createContact(t, dbh, "Ravi Kumar", "100002", &now)

	_, err := SnoozeAlert(dbh, 9999, now)
	if !errors.Is(err, ErrAlertNotFound) {
		t.Fatalf("expected ErrAlertNotFound, got %v", err)
	}

	var reloaded models.Contact
	if err := dbh.First(&reloaded, contact.ID).Error; err != nil {
		t.Fatalf("failed to reload contact: %v", err)
	}
	if !reloaded.NxtAlrt.Equal(now) {
		t.Errorf("snooze of unknown alert must not touch the contact, nxtAlrt = %v", reloaded.NxtAlrt)
	}
}

func TestDeleteContactAlertsScoped(t *testing.T) {
	dbh := newTestDB(t)
	now := time.Now()
	first := createContact(t, dbh, "Ravi Kumar", "100002", &now)
	second := createContact(t, dbh, "Anita Shah", "100003", &now)

	if _, err := SyncContactAlert(dbh, &first, audit.User("100001"), "127.0.0.1", now); err != nil {
		t.Fatalf("sync for first contact failed: %v", err)
	}
	if _, err := SyncContactAlert(dbh, &second, audit.User("100001"), "127.0.0.1", now); err != nil {
		t.Fatalf("sync for second contact failed: %v", err)
	}

	if err := DeleteContactAlerts(dbh, first.ID, audit.User("100001"), "127.0.0.1", now); err != nil {
		t.Fatalf("cascade delete failed: %v", err)
	}

	var firstAlert models.Alert
	if err := dbh.Where("contact_id = ?", first.ID).First(&firstAlert).Error; err != nil {
		t.Fatalf("failed to fetch first contact's alert: %v", err)
	}
	if firstAlert.DltSts != models.DltStsDeleted {
		t.Errorf("first contact's alert dltSts = %d, want deleted", firstAlert.DltSts)
	}

	var secondAlert models.Alert
	if err := dbh.Where("contact_id = ?", second.ID).First(&secondAlert).Error; err != nil {
		t.Fatalf("failed to fetch second contact's alert: %v", err)
	}
	if secondAlert.DltSts != models.DltStsLive {
		t.Errorf("second contact's alert dltSts = %d, must stay live", secondAlert.DltSts)
	}
}

func TestCascadeSoftDeleteSkipsAlreadyDeleted(t *testing.T) {
	dbh := newTestDB(t)
	now := time.Now()

	list := models.ScrumList{LstName: "Backlog"}
	audit.StampCreate(&list.AuditFields, audit.User("100001"), "127.0.0.1", now)
	if err := dbh.Create(&list).Error; err != nil {
		t.Fatalf("failed to create list: %v", err)
	}

	live := models.ScrumTask{TskName: "Draft proposal", ListID: list.ID}
	audit.StampCreate(&live.AuditFields, audit.User("100001"), "127.0.0.1", now)
	if err := dbh.Create(&live).Error; err != nil {
		t.Fatalf("failed to create task: %v", err)
	}

	gone := models.ScrumTask{TskName: "Old task", ListID: list.ID}
	audit.StampCreate(&gone.AuditFields, audit.User("100001"), "127.0.0.1", now)
	gone.DltSts = models.DltStsDeleted
	gone.DltBy = "100009"
	if err := dbh.Create(&gone).Error; err != nil {
		t.Fatalf("failed to create deleted task: %v", err)
	}

	if err := CascadeSoftDelete(dbh, &models.ScrumTask{}, "list_id = ?", list.ID,
		audit.User("100001"), "127.0.0.1", now); err != nil {
		t.Fatalf("cascade failed: %v", err)
	}

	var untouched models.ScrumTask
	if err := dbh.First(&untouched, gone.ID).Error; err != nil {
		t.Fatalf("failed to reload task: %v", err)
	}
	if untouched.DltBy != "100009" {
		t.Errorf("already-deleted task was restamped, dltBy = %q", untouched.DltBy)
	}

	var cascaded models.ScrumTask
	if err := dbh.First(&cascaded, live.ID).Error; err != nil {
		t.Fatalf("failed to reload task: %v", err)
	}
	if cascaded.DltSts != models.DltStsDeleted {
		t.Errorf("live task dltSts = %d, want deleted", cascaded.DltSts)
	}
}
