package models

import "time"

// Session is one class meeting. It opens active with a share code students
// use to check in, and closes exactly once; there is no reopen.
type Session struct {
	ID              uint      `json:"id" gorm:"primaryKey"`
	ShareCode       string    `json:"share_code" gorm:"size:6;index;not null"`
	Room            string    `json:"room" gorm:"size:40"`
	DateTime        time.Time `json:"date_time" gorm:"index;not null"`
	DurationMinutes int       `json:"duration_minutes" gorm:"default:90"`
	IsActive        bool      `json:"is_active" gorm:"default:true"`
	TeacherModuleID uint      `json:"teacher_module_id" gorm:"index;not null"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}
