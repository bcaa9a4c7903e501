package models

type Note struct {
	ID uint `gorm:"primarykey" json:"id"`

	Title string `gorm:"not null" json:"title"`
	Desc  string `json:"desc"`
	IsFav bool   `gorm:"default:false" json:"isFav"`
	Tag   string `json:"tag"`
	NSts  int    `gorm:"default:0" json:"nSts"`

	AuditFields
}
