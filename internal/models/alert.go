package models

import "time"

const (
	// AlertPending is the only status the engine assigns today. Snoozing
	// deletes the row instead of transitioning it.
	AlertPending = 0
)

// Alert is derived from a contact's next-reminder timestamp. The alert engine
// keeps at most one live row per contact.
type Alert struct {
	ID uint `gorm:"primarykey" json:"id"`

	ContactID  uint      `gorm:"not null;index" json:"contactId"`
	AlertTime  time.Time `gorm:"not null;index" json:"alertTime"`
	Subject    string    `json:"subject"`
	AssignedTo string    `gorm:"index" json:"assignedTo"`
	Status     int       `gorm:"default:0" json:"status"`

	Contact Contact `gorm:"foreignKey:ContactID" json:"contact,omitempty"`

	AuditFields
}
