package models

type ScrumTask struct {
	ID uint `gorm:"primarykey" json:"id"`

	TskName string `gorm:"not null" json:"tskName"`
	TskDesc string `json:"tskDesc"`
	ListID  uint   `gorm:"not null;index" json:"listId"`

	AuditFields
}
