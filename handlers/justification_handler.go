package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/Sidali-Djeghbal/hodory-attendance-system/database"
	"github.com/Sidali-Djeghbal/hodory-attendance-system/models"
)

type JustificationHandler struct{}

func NewJustificationHandler() *JustificationHandler { return &JustificationHandler{} }

func createNotification(tx *gorm.DB, userID uint, title, message string, typ models.NotificationType) error {
	return tx.Create(&models.Notification{
		UserID:  userID,
		Title:   title,
		Message: message,
		Type:    typ,
	}).Error
}

// studentUserID walks justification -> record -> enrollment -> student -> user.
func studentUserID(tx *gorm.DB, record *models.AttendanceRecord) (uint, error) {
	var enr models.Enrollment
	if err := tx.First(&enr, record.EnrollmentID).Error; err != nil {
		return 0, err
	}
	var student models.Student
	if err := tx.First(&student, enr.StudentID).Error; err != nil {
		return 0, err
	}
	return student.UserID, nil
}

type submitReq struct {
	AttendanceRecordID uint   `json:"attendance_record_id" validate:"required"`
	Comment            string `json:"comment" validate:"required"`
	FileURL            string `json:"file_url"`
}

// POST /student/justifications
//
// Only an ABSENT record owned by the caller can be justified, and only once.
func (h *JustificationHandler) Submit(c echo.Context) error {
	student, err := currentStudent(c)
	if err != nil {
		return err
	}

	var req submitReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "INVALID_PAYLOAD"})
	}
	req.Comment = strings.TrimSpace(req.Comment)
	if err := validate.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "MISSING_FIELDS"})
	}

	var just models.Justification
	txErr := database.DB.Transaction(func(tx *gorm.DB) error {
		var record models.AttendanceRecord
		if err := tx.First(&record, req.AttendanceRecordID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return echo.NewHTTPError(http.StatusNotFound, map[string]any{"error": "RECORD_NOT_FOUND"})
			}
			return err
		}

		var enr models.Enrollment
		if err := tx.First(&enr, record.EnrollmentID).Error; err != nil {
			return err
		}
		if enr.StudentID != student.ID {
			return echo.NewHTTPError(http.StatusForbidden, map[string]any{"error": "FORBIDDEN"})
		}

		if record.Status != models.AttendanceAbsent {
			return echo.NewHTTPError(http.StatusBadRequest, map[string]any{"error": "NOT_ABSENT"})
		}

		var existing models.Justification
		err := tx.Where("attendance_record_id = ?", record.ID).First(&existing).Error
		if err == nil {
			return echo.NewHTTPError(http.StatusConflict, map[string]any{"error": "JUSTIFICATION_EXISTS"})
		}
		if err != gorm.ErrRecordNotFound {
			return err
		}

		just = models.Justification{
			AttendanceRecordID: record.ID,
			Comment:            req.Comment,
			FileURL:            strings.TrimSpace(req.FileURL),
			Status:             models.JustificationPending,
		}
		if err := tx.Create(&just).Error; err != nil {
			return err
		}

		var user models.User
		if err := tx.First(&user, student.UserID).Error; err != nil {
			return err
		}
		return createNotification(tx, user.ID,
			"Justification Submitted",
			fmt.Sprintf("Your justification for attendance record #%d has been submitted and is pending review.", record.ID),
			models.NotifJustificationSubmitted)
	})
	if txErr != nil {
		if he, ok := txErr.(*echo.HTTPError); ok {
			return c.JSON(he.Code, he.Message)
		}
		return c.JSON(http.StatusBadRequest, map[string]any{"error": txErr.Error()})
	}

	return c.JSON(http.StatusCreated, just)
}

type decideReq struct {
	Decision    string `json:"decision" validate:"required,oneof=approve reject"`
	TeacherNote string `json:"teacher_note"`
}

// POST /teacher/justifications/:id/decide
//
// Approve flips the record to PRESENT and counts the absence as justified;
// reject leaves the record ABSENT. Either way the student is notified.
func (h *JustificationHandler) Decide(c echo.Context) error {
	teacher, err := currentTeacher(c)
	if err != nil {
		return err
	}
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req decideReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "INVALID_PAYLOAD"})
	}
	if err := validate.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "INVALID_DECISION"})
	}

	var just models.Justification
	txErr := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&just, id).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return echo.NewHTTPError(http.StatusNotFound, map[string]any{"error": "JUSTIFICATION_NOT_FOUND"})
			}
			return err
		}

		var record models.AttendanceRecord
		if err := tx.First(&record, just.AttendanceRecordID).Error; err != nil {
			return echo.NewHTTPError(http.StatusNotFound, map[string]any{"error": "RECORD_NOT_FOUND"})
		}
		var sess models.Session
		if err := tx.First(&sess, record.SessionID).Error; err != nil {
			return echo.NewHTTPError(http.StatusNotFound, map[string]any{"error": "SESSION_NOT_FOUND"})
		}
		owns, err := teacherOwnsSession(tx, &sess, teacher.ID)
		if err != nil {
			return err
		}
		if !owns {
			return echo.NewHTTPError(http.StatusForbidden, map[string]any{"error": "FORBIDDEN"})
		}

		target := models.JustificationRejected
		if req.Decision == "approve" {
			target = models.JustificationApproved
		}
		note := strings.TrimSpace(req.TeacherNote)
		now := time.Now().UTC()

		uid, err := studentUserID(tx, &record)
		if err != nil {
			return err
		}

		// Conditional on still-pending so a concurrent second decide cannot
		// apply twice.
		res := tx.Model(&models.Justification{}).
			Where("id = ? AND status = ?", just.ID, models.JustificationPending).
			Updates(map[string]any{
				"status":       target,
				"decided_at":   &now,
				"teacher_note": note,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return echo.NewHTTPError(http.StatusBadRequest, map[string]any{"error": "ALREADY_DECIDED"})
		}
		just.Status = target
		just.TeacherNote = note
		just.DecidedAt = &now

		if target == models.JustificationApproved {
			// The absence is forgiven.
			if err := tx.Model(&models.AttendanceRecord{}).
				Where("id = ?", record.ID).
				Update("status", models.AttendancePresent).Error; err != nil {
				return err
			}
			if err := tx.Model(&models.Enrollment{}).
				Where("id = ?", record.EnrollmentID).
				Update("number_of_absences_justified",
					gorm.Expr("number_of_absences_justified + 1")).Error; err != nil {
				return err
			}
			return createNotification(tx, uid,
				"Justification Approved",
				fmt.Sprintf("Your justification for attendance record #%d has been approved.", record.ID),
				models.NotifJustificationApproved)
		}
		return createNotification(tx, uid,
			"Justification Rejected",
			fmt.Sprintf("Your justification for attendance record #%d has been rejected.", record.ID),
			models.NotifJustificationRejected)
	})
	if txErr != nil {
		if he, ok := txErr.(*echo.HTTPError); ok {
			return c.JSON(he.Code, he.Message)
		}
		return c.JSON(http.StatusBadRequest, map[string]any{"error": txErr.Error()})
	}

	return c.JSON(http.StatusOK, just)
}

// POST /teacher/justifications/:id/restore
//
// Correction path for a wrong rejection: back to PENDING, and the record is
// forced to ABSENT if it drifted, since a pending justification only makes
// sense against an absence.
func (h *JustificationHandler) Restore(c echo.Context) error {
	teacher, err := currentTeacher(c)
	if err != nil {
		return err
	}
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var just models.Justification
	txErr := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&just, id).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return echo.NewHTTPError(http.StatusNotFound, map[string]any{"error": "JUSTIFICATION_NOT_FOUND"})
			}
			return err
		}

		var record models.AttendanceRecord
		if err := tx.First(&record, just.AttendanceRecordID).Error; err != nil {
			return echo.NewHTTPError(http.StatusNotFound, map[string]any{"error": "RECORD_NOT_FOUND"})
		}
		var sess models.Session
		if err := tx.First(&sess, record.SessionID).Error; err != nil {
			return echo.NewHTTPError(http.StatusNotFound, map[string]any{"error": "SESSION_NOT_FOUND"})
		}
		owns, err := teacherOwnsSession(tx, &sess, teacher.ID)
		if err != nil {
			return err
		}
		if !owns {
			return echo.NewHTTPError(http.StatusForbidden, map[string]any{"error": "FORBIDDEN"})
		}

		if just.Status != models.JustificationRejected {
			return echo.NewHTTPError(http.StatusBadRequest, map[string]any{"error": "NOT_REJECTED"})
		}

		if err := tx.Model(&just).Updates(map[string]any{
			"status":     models.JustificationPending,
			"decided_at": nil,
		}).Error; err != nil {
			return err
		}
		just.Status = models.JustificationPending
		just.DecidedAt = nil

		if record.Status != models.AttendanceAbsent {
			if err := tx.Model(&models.AttendanceRecord{}).
				Where("id = ?", record.ID).
				Update("status", models.AttendanceAbsent).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if txErr != nil {
		if he, ok := txErr.(*echo.HTTPError); ok {
			return c.JSON(he.Code, he.Message)
		}
		return c.JSON(http.StatusBadRequest, map[string]any{"error": txErr.Error()})
	}

	return c.JSON(http.StatusOK, just)
}

// GET /teacher/justifications?status=pending
//
// Justifications whose underlying session belongs to the caller.
func (h *JustificationHandler) ListForTeacher(c echo.Context) error {
	teacher, err := currentTeacher(c)
	if err != nil {
		return err
	}

	tx := database.DB.Model(&models.Justification{}).
		Joins("JOIN attendance_records ar ON ar.id = justifications.attendance_record_id").
		Joins("JOIN sessions s ON s.id = ar.session_id").
		Joins("JOIN teacher_modules tm ON tm.id = s.teacher_module_id").
		Where("tm.teacher_id = ?", teacher.ID)

	if status := strings.TrimSpace(c.QueryParam("status")); status != "" {
		tx = tx.Where("justifications.status = ?", strings.ToLower(status))
	}

	var rows []models.Justification
	if err := tx.Order("justifications.created_at DESC, justifications.id DESC").
		Find(&rows).Error; err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, rows)
}

// GET /teacher/justifications/pending-count
func (h *JustificationHandler) PendingCount(c echo.Context) error {
	teacher, err := currentTeacher(c)
	if err != nil {
		return err
	}

	var n int64
	err2 := database.DB.Model(&models.Justification{}).
		Joins("JOIN attendance_records ar ON ar.id = justifications.attendance_record_id").
		Joins("JOIN sessions s ON s.id = ar.session_id").
		Joins("JOIN teacher_modules tm ON tm.id = s.teacher_module_id").
		Where("tm.teacher_id = ? AND justifications.status = ?", teacher.ID, models.JustificationPending).
		Count(&n).Error
	if err2 != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": err2.Error()})
	}
	return c.JSON(http.StatusOK, map[string]any{"count": n})
}

// GET /student/justifications — the caller's submissions with record status.
func (h *JustificationHandler) ListMine(c echo.Context) error {
	student, err := currentStudent(c)
	if err != nil {
		return err
	}

	var rows []models.Justification
	err2 := database.DB.Model(&models.Justification{}).
		Joins("JOIN attendance_records ar ON ar.id = justifications.attendance_record_id").
		Joins("JOIN enrollments e ON e.id = ar.enrollment_id").
		Where("e.student_id = ?", student.ID).
		Order("justifications.created_at DESC, justifications.id DESC").
		Find(&rows).Error
	if err2 != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": err2.Error()})
	}
	return c.JSON(http.StatusOK, rows)
}
