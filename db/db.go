package db

import (
	"boardshare/models"
	"fmt"
	"log"
	"os"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func ConnectDB() *gorm.DB {
	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		os.Getenv("DB_HOST"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		os.Getenv("DB_PORT"),
	)

	var err error
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("Failed to connect to database: ", err)
	}

	if err := Migrate(DB); err != nil {
		log.Fatal("Failed to migrate models: ", err)
	}
	log.Println("Database connected")
	return DB
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.Account{},
		&models.Game{},
		&models.GameInstance{},
		&models.BorrowRequest{},
		&models.LendingRecord{},
		&models.AuditEntry{},
	); err != nil {
		return err
	}

	// At most one open lending record per physical copy.
	if err := db.Exec(fmt.Sprintf(`
	  CREATE UNIQUE INDEX IF NOT EXISTS %s_one_open_per_instance
	  ON %s (game_instance_id)
	  WHERE status IN ('ACTIVE','OVERDUE');
	`, models.LendingRecordTable, models.LendingRecordTable)).Error; err != nil {
		return err
	}

	// Conflict-check hot path: approved intervals per copy.
	if err := db.Exec(fmt.Sprintf(`
	  CREATE INDEX IF NOT EXISTS %s_approved_by_instance
	  ON %s (game_instance_id, start_date)
	  WHERE status = 'APPROVED';
	`, models.BorrowRequestTable, models.BorrowRequestTable)).Error; err != nil {
		return err
	}

	return nil
}
