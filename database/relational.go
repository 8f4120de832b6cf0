package database

import (
	"log"

	"remindly/config"
	"remindly/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// SQLClient is the global relational client for token and guest-device rows.
var SQLClient *gorm.DB

// InitSQL initializes the Postgres connection and migrates the token tables.
func InitSQL() {
	db, err := gorm.Open(postgres.Open(config.AppConfig.PostgresDSN), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to connect to Postgres: %v", err)
	}
	if err := db.AutoMigrate(&models.DeviceToken{}, &models.GuestDevice{}); err != nil {
		log.Fatalf("failed to migrate token tables: %v", err)
	}
	SQLClient = db
	log.Println("Connected to Postgres successfully!")
}
