package models

import "time"

// Enrollment registers one student in one module and carries the absence
// bookkeeping for that pairing. At most one row per (student, module).
type Enrollment struct {
	ID        uint `json:"id" gorm:"primaryKey"`
	StudentID uint `json:"student_id" gorm:"not null;uniqueIndex:uniq_student_module"`
	ModuleID  uint `json:"module_id" gorm:"not null;uniqueIndex:uniq_student_module"`

	NumberOfAbsences          int  `json:"number_of_absences" gorm:"default:0"`
	NumberOfAbsencesJustified int  `json:"number_of_absences_justified" gorm:"default:0"`
	IsExcluded                bool `json:"is_excluded" gorm:"default:false"`

	// Denormalized for listings; refreshed on enroll.
	StudentName  string `json:"student_name" gorm:"size:120"`
	StudentEmail string `json:"student_email" gorm:"size:120"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
