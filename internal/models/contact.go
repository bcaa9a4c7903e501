package models

import "time"

type Contact struct {
	ID uint `gorm:"primarykey" json:"id"`

	Name    string `gorm:"not null" json:"name"`
	Email   string `json:"email,omitempty"`
	Ph      string `json:"ph,omitempty"`
	Subject string `json:"subject,omitempty"`

	// AssignedTo holds the UID of the owning user. Non-admin callers only
	// ever see contacts assigned to them.
	AssignedTo string `gorm:"index" json:"assignedTo"`

	// NxtAlrt drives the alert sync rule: a value inside today's window
	// means exactly one live Alert exists for this contact.
	NxtAlrt *time.Time `json:"nxtAlrt,omitempty"`

	AuditFields
}
