package database

import (
	"log"

	"github.com/Sidali-Djeghbal/hodory-attendance-system/config"
	"github.com/Sidali-Djeghbal/hodory-attendance-system/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func Connect(cfg *config.Config) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}
	DB = db

	if err := Migrate(DB); err != nil {
		log.Fatalf("auto migrate failed: %v", err)
	}
}

// Migrate keeps the schema in sync. Shared with tests, which run it against
// a throwaway sqlite database.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Student{},
		&models.Teacher{},
		&models.Level{},
		&models.Module{},
		&models.TeacherModule{},
		&models.Schedule{},
		&models.ScheduleDay{},
		&models.Enrollment{},
		&models.Session{},
		&models.AttendanceRecord{},
		&models.Justification{},
		&models.Notification{},
	)
}
