package services

import (
	"time"

	"github.com/zoomlabs/crm-server/internal/audit"
	"github.com/zoomlabs/crm-server/internal/models"
	"gorm.io/gorm"
)

// CascadeSoftDelete stamps the delete envelope onto every live row of model
// matching the condition. Both cascades in the system (contact -> alerts,
// scrum list -> tasks) go through here so they cannot drift apart.
func CascadeSoftDelete(dbh *gorm.DB, model interface{}, query string, arg interface{}, actor audit.Actor, ip string, now time.Time) error {
	return dbh.Model(model).
		Where(query, arg).
		Where("dlt_sts = ?", models.DltStsLive).
		Updates(audit.DeleteValues(actor, ip, now)).Error
}
