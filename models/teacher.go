package models

import "time"

type Teacher struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"uniqueIndex;not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TeacherModule assigns a teacher to a module; sessions hang off this pair.
type TeacherModule struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	TeacherID uint      `json:"teacher_id" gorm:"not null;uniqueIndex:uniq_teacher_module"`
	ModuleID  uint      `json:"module_id" gorm:"not null;uniqueIndex:uniq_teacher_module"`
	CreatedAt time.Time `json:"created_at"`
}
