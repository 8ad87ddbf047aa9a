package models

import "time"

// Justification is a student's explanation for one absence. The unique index
// on AttendanceRecordID enforces at most one justification per record, and
// the record is reached only through this foreign key — the attendance side
// holds no back-pointer to drift out of sync.
type Justification struct {
	ID                 uint                `json:"id" gorm:"primaryKey"`
	AttendanceRecordID uint                `json:"attendance_record_id" gorm:"uniqueIndex;not null"`
	Comment            string              `json:"comment" gorm:"type:text"`
	FileURL            string              `json:"file_url" gorm:"size:255"` // opaque, stored verbatim
	Status             JustificationStatus `json:"status" gorm:"size:10;index;not null;default:pending"`
	TeacherNote        string              `json:"teacher_note" gorm:"type:text"`
	DecidedAt          *time.Time          `json:"decided_at"`
	CreatedAt          time.Time           `json:"created_at"`
	UpdatedAt          time.Time           `json:"updated_at"`
}
