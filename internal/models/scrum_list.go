package models

type ScrumList struct {
	ID uint `gorm:"primarykey" json:"id"`

	LstName string `gorm:"not null" json:"lstName"`

	AuditFields
}
