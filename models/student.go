package models

import "time"

// Student links a user account to an academic level. Module membership and
// absence bookkeeping live on Enrollment.
type Student struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"uniqueIndex;not null"`
	LevelID   uint      `json:"level_id" gorm:"index;not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
