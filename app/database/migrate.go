package database

import (
	"shortplay-scraper/app/model"

	"gorm.io/gorm"
)

func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.Site{},
		&model.ScrapeRecord{},
	)
}
