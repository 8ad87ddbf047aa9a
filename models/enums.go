package models

// AttendanceStatus is the lifecycle state of one attendance record.
type AttendanceStatus string

const (
	AttendancePresent  AttendanceStatus = "present"
	AttendanceAbsent   AttendanceStatus = "absent"
	AttendanceExcluded AttendanceStatus = "excluded"
)

// JustificationStatus tracks the review workflow of a submitted justification.
type JustificationStatus string

const (
	JustificationPending  JustificationStatus = "pending"
	JustificationApproved JustificationStatus = "approved"
	JustificationRejected JustificationStatus = "rejected"
)

type NotificationType string

const (
	NotifJustificationSubmitted NotificationType = "justification_submitted"
	NotifJustificationApproved  NotificationType = "justification_approved"
	NotifJustificationRejected  NotificationType = "justification_rejected"
)

const (
	RoleAdmin   = "admin"
	RoleTeacher = "teacher"
	RoleStudent = "student"
)
