package models

import "time"

// Schedule is the weekly timetable of one level. One per level.
type Schedule struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	LevelID     uint      `json:"level_id" gorm:"uniqueIndex;not null"`
	LastUpdated time.Time `json:"last_updated" gorm:"autoUpdateTime"`
}

// ScheduleDay is one timetable slot: a module taught on a weekday at a time.
type ScheduleDay struct {
	ID         uint   `json:"id" gorm:"primaryKey"`
	ScheduleID uint   `json:"schedule_id" gorm:"index;not null"`
	ModuleID   uint   `json:"module_id" gorm:"index;not null"`
	Day        string `json:"day" gorm:"size:12;not null"` // Monday..Sunday
	Time       string `json:"time" gorm:"size:11;not null"` // "08:00-09:30"
}
