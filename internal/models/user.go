package models

import (
	"time"

	"gorm.io/datatypes"
)

const (
	RoleAdmin = "admin"
	RoleStaff = "staff"
)

type User struct {
	ID uint `gorm:"primarykey" json:"id"`

	UID   string `gorm:"column:u_id;uniqueIndex;size:6" json:"uId"`
	Uname string `gorm:"uniqueIndex;not null" json:"uname"`
	Name  string `gorm:"not null" json:"name"`

	// Email and Ph hold ciphertext, never plaintext. See internal/crypto.
	Email string `gorm:"uniqueIndex" json:"-"`
	Ph    string `json:"-"`

	Pwd  string `gorm:"not null" json:"-"`
	Role string `gorm:"not null;default:staff" json:"role"`

	Avtr    string `gorm:"default:assets/img/user.png" json:"avtr"`
	Biodata string `json:"biodata,omitempty"`

	Job     string     `json:"job,omitempty"`
	Dob     *time.Time `json:"dob,omitempty"`
	Loc     string     `json:"loc,omitempty"`
	Bio     string     `json:"bio,omitempty"`
	Country string     `json:"country,omitempty"`
	Address string     `json:"address,omitempty"`
	Website string     `json:"website,omitempty"`

	Socials   datatypes.JSON `json:"socials,omitempty"`
	Skills    datatypes.JSON `json:"skills,omitempty"`
	Education datatypes.JSON `json:"education,omitempty"`
	WorkExp   datatypes.JSON `json:"workExp,omitempty"`

	// Sts is the active/inactive flag, distinct from soft deletion.
	Sts int `gorm:"default:0" json:"sts"`

	AuditFields
}

// Social holds one set of profile links.
type Social struct {
	Facebook  string `json:"facebook,omitempty"`
	Twitter   string `json:"twitter,omitempty"`
	LinkedIn  string `json:"linkedin,omitempty"`
	Instagram string `json:"instagram,omitempty"`
	GitHub    string `json:"github,omitempty"`
}

// Skill is a named proficiency with a 0-100 level.
type Skill struct {
	Name  string `json:"name"`
	Level int    `json:"level"`
}

type Education struct {
	College     string `json:"college"`
	StartMonth  string `json:"startMonth"`
	StartYear   string `json:"startYear"`
	EndMonth    string `json:"endMonth"`
	EndYear     string `json:"endYear"`
	Description string `json:"description"`
}

type WorkExperience struct {
	Company     string `json:"company"`
	Title       string `json:"title"`
	Location    string `json:"location"`
	StartMonth  string `json:"startMonth"`
	StartYear   string `json:"startYear"`
	EndMonth    string `json:"endMonth"`
	EndYear     string `json:"endYear"`
	Description string `json:"description"`
}
