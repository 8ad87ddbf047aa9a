package models

import "time"

// AttendanceRecord is the outcome of one enrollment in one session. Records
// are created in bulk when the session opens, defaulting to absent, and are
// never deleted except when the enrollment itself is removed.
type AttendanceRecord struct {
	ID           uint             `json:"id" gorm:"primaryKey"`
	SessionID    uint             `json:"session_id" gorm:"not null;uniqueIndex:uniq_session_enrollment"`
	EnrollmentID uint             `json:"enrollment_id" gorm:"not null;uniqueIndex:uniq_session_enrollment"`
	ModuleID     uint             `json:"module_id" gorm:"index;not null"`
	Status       AttendanceStatus `json:"status" gorm:"size:10;not null;default:absent"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

// attendanceTransitions is the allow-list for teacher-initiated status
// overrides. Exclusion must pass through absent: present<->excluded is
// disallowed in both directions.
var attendanceTransitions = map[AttendanceStatus][]AttendanceStatus{
	AttendanceAbsent:   {AttendancePresent, AttendanceExcluded},
	AttendancePresent:  {AttendanceAbsent}, // undo a mark
	AttendanceExcluded: {AttendanceAbsent}, // reinstate
}

// AllowedTransition reports whether an attendance record may move from one
// status to another on the teacher override path.
func AllowedTransition(from, to AttendanceStatus) bool {
	for _, t := range attendanceTransitions[from] {
		if t == to {
			return true
		}
	}
	return false
}
