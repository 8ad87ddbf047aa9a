package models

import "time"

type User struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	Email      string    `json:"email" gorm:"size:120;uniqueIndex;not null"`
	FullName   string    `json:"full_name" gorm:"size:120;not null"`
	Department string    `json:"department" gorm:"size:80"`
	Password   string    `json:"-" gorm:"not null"`            // bcrypt hash
	Role       string    `json:"role" gorm:"size:20;not null"` // "admin" | "teacher" | "student"
	IsActive   bool      `json:"is_active" gorm:"default:true"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
