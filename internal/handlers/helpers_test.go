package handlers

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/zoomlabs/crm-server/db"
	"github.com/zoomlabs/crm-server/internal/audit"
	"github.com/zoomlabs/crm-server/internal/auth"
	"github.com/zoomlabs/crm-server/internal/models"
	"github.com/zoomlabs/crm-server/internal/types"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupHandlerTest swaps the package-level connection for an in-memory
// database so handlers run against real queries.
func setupHandlerTest(t *testing.T) {
	t.Helper()

	gin.SetMode(gin.TestMode)

	dbh, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := dbh.AutoMigrate(
		&models.User{},
		&models.Counter{},
		&models.Contact{},
		&models.Feedback{},
		&models.Alert{},
		&models.Note{},
		&models.ScrumList{},
		&models.ScrumTask{},
	); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	previous := db.DB
	db.DB = dbh
	t.Cleanup(func() { db.DB = previous })
}

// authAs injects session claims the way the auth middleware would.
func authAs(uid, uname, role string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		ctx.Set(types.ContextUserKey, auth.SessionClaims{UID: uid, Uname: uname, Role: role})
		ctx.Next()
	}
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to encode request body: %v", err)
		}
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, target interface{}) {
	t.Helper()

	if err := json.Unmarshal(w.Body.Bytes(), target); err != nil {
		t.Fatalf("failed to decode response %q: %v", w.Body.String(), err)
	}
}

func seedContact(t *testing.T, name, assignedTo string, nxtAlrt *time.Time) models.Contact {
	t.Helper()

	contact := models.Contact{
		Name:       name,
		AssignedTo: assignedTo,
		NxtAlrt:    nxtAlrt,
	}
	audit.StampCreate(&contact.AuditFields, audit.User(assignedTo), "127.0.0.1", time.Now())

	if err := db.DB.Create(&contact).Error; err != nil {
		t.Fatalf("failed to seed contact: %v", err)
	}
	return contact
}

func assertStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()

	if w.Code != want {
		t.Fatalf("status = %d, want %d, body: %s", w.Code, want, w.Body.String())
	}
}
