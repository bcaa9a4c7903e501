package models

// Feedback is an append-only note attached to a contact. Rows are never
// updated or deleted once written.
type Feedback struct {
	ID uint `gorm:"primarykey" json:"id"`

	ContactID uint   `gorm:"not null;index" json:"contactId"`
	Fdback    string `gorm:"not null" json:"fdback"`

	AuditFields
}
