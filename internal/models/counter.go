package models

import (
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Counter allocates sequential identifiers. One row per sequence name.
type Counter struct {
	Name string `gorm:"primarykey"`
	Seq  int64  `gorm:"not null;default:0"`
}

const userIDCounter = "user_id"

// userIDBase keeps allocated user IDs six digits wide.
const userIDBase = 100000

// NextUserID reserves the next sequential user ID. The counter row is locked
// for the duration of the transaction so concurrent signups cannot collide.
func NextUserID(dbh *gorm.DB) (string, error) {
	var seq int64

	err := dbh.Transaction(func(tx *gorm.DB) error {
		var counter Counter

		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where(Counter{Name: userIDCounter}).
			FirstOrCreate(&counter).Error; err != nil {
			return err
		}

		counter.Seq++

		if err := tx.Save(&counter).Error; err != nil {
			return err
		}

		seq = counter.Seq
		return nil
	})

	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%d", userIDBase+seq), nil
}
