package db

import (
	"rakuda/internal/models"
)

func AutoMigrate(db *DB) error {
	if db == nil || db.Gorm == nil || db.SQL == nil {
		return nil
	}

	return db.Gorm.AutoMigrate(
		&models.Listing{},
		&models.PriceRecommendation{},
		&models.PriceChangeLog{},
		&models.AutomationRule{},
		&models.AutomationExecution{},
		&models.SafetySettings{},
	)
}
