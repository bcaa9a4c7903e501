// Package audit stamps the {on, by, ip} envelope recorded for every
// create/update/delete action.
package audit

import (
	"time"

	"github.com/zoomlabs/crm-server/internal/models"
)

// SystemRef is the attribution recorded when no authenticated actor exists,
// e.g. the admin bootstrap endpoint.
const SystemRef = "system"

// Actor identifies who performed an action. The zero value is the system
// actor, so audit attribution never silently degrades to an empty string.
type Actor struct {
	uid string
}

// User returns an actor for an authenticated user UID. An empty UID falls
// back to the system actor.
func User(uid string) Actor {
	return Actor{uid: uid}
}

// System returns the unauthenticated fallback actor.
func System() Actor {
	return Actor{}
}

// Ref is the string written into the By audit fields.
func (a Actor) Ref() string {
	if a.uid == "" {
		return SystemRef
	}
	return a.uid
}

// StampCreate fills the creation triple on a row about to be inserted.
func StampCreate(f *models.AuditFields, actor Actor, ip string, now time.Time) {
	f.CrtdOn = now
	f.CrtdBy = actor.Ref()
	f.CrtdIp = ip
}

// UpdateValues returns the update triple as gorm column assignments, for use
// with Updates on an existing row.
func UpdateValues(actor Actor, ip string, now time.Time) map[string]interface{} {
	return map[string]interface{}{
		"updt_on": now,
		"updt_by": actor.Ref(),
		"updt_ip": ip,
	}
}

// DeleteValues returns the soft-delete triple plus the deleted status flag.
func DeleteValues(actor Actor, ip string, now time.Time) map[string]interface{} {
	return map[string]interface{}{
		"dlt_on":  now,
		"dlt_by":  actor.Ref(),
		"dlt_ip":  ip,
		"dlt_sts": models.DltStsDeleted,
	}
}
