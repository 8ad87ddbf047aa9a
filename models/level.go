package models

import "time"

type Level struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"size:80;not null"`
	YearLevel string    `json:"year_level" gorm:"size:20;not null"` // e.g. "L1", "M2"
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
