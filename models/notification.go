package models

import "time"

type Notification struct {
	ID        uint             `json:"id" gorm:"primaryKey"`
	UserID    uint             `json:"user_id" gorm:"index;not null"`
	Title     string           `json:"title" gorm:"size:120;not null"`
	Message   string           `json:"message" gorm:"type:text"`
	Type      NotificationType `json:"type" gorm:"size:40;not null"`
	IsRead    bool             `json:"is_read" gorm:"default:false"`
	CreatedAt time.Time        `json:"created_at"`
}
