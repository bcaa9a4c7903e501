package models

import "time"

const (
	// DltStsLive marks a row that is visible to default queries.
	DltStsLive = 0
	// DltStsDeleted marks a soft-deleted row.
	DltStsDeleted = 1
)

// AuditFields is the audit envelope shared by every entity: an {on, by, ip}
// triple per create/update/delete action plus the soft-delete status flag.
// The compact JSON names (crtdOn, updtBy, dltSts, ...) are the canonical wire
// shape and must not be renamed.
type AuditFields struct {
	CrtdOn time.Time  `json:"crtdOn"`
	CrtdBy string     `json:"crtdBy"`
	CrtdIp string     `json:"crtdIp"`
	UpdtOn *time.Time `json:"updtOn,omitempty"`
	UpdtBy string     `json:"updtBy,omitempty"`
	UpdtIp string     `json:"updtIp,omitempty"`
	DltOn  *time.Time `json:"dltOn,omitempty"`
	DltBy  string     `json:"dltBy,omitempty"`
	DltIp  string     `json:"dltIp,omitempty"`
	DltSts int        `gorm:"default:0;index" json:"dltSts"`
}
