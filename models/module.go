package models

import "time"

type Module struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"size:120;not null"`
	Code      string    `json:"code" gorm:"size:20;uniqueIndex;not null"`
	Room      string    `json:"room" gorm:"size:40"` // default room, session may override
	LevelID   uint      `json:"level_id" gorm:"index;not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
