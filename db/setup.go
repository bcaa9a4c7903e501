package db

import (
	"github.com/zoomlabs/crm-server/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func ConnectDatabase(dsn string) error {
	var err error

	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})

	if err != nil {
		return err
	}

	return nil
}

func MigrateDatabase() error {
	models := []interface{}{
		&models.User{},
		&models.Counter{},
		&models.Contact{},
		&models.Feedback{},
		&models.Alert{},
		&models.Note{},
		&models.ScrumList{},
		&models.ScrumTask{},
	}

	return DB.AutoMigrate(models...)
}
