package handlers

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/Sidali-Djeghbal/hodory-attendance-system/database"
	"github.com/Sidali-Djeghbal/hodory-attendance-system/models"
)

type AttendanceHandler struct{}

func NewAttendanceHandler() *AttendanceHandler { return &AttendanceHandler{} }

type markReq struct {
	ShareCode string `json:"share_code" validate:"required,len=6"`
}

// POST /student/attendance/mark
//
// Student self check-in with a share code. The whole check ladder runs in
// one transaction so two concurrent marks on the same record serialize to a
// single ABSENT->PRESENT flip.
func (h *AttendanceHandler) Mark(c echo.Context) error {
	student, err := currentStudent(c)
	if err != nil {
		return err
	}

	var req markReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "INVALID_PAYLOAD"})
	}
	req.ShareCode = strings.ToUpper(strings.TrimSpace(req.ShareCode))
	if err := validate.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "MISSING_FIELDS"})
	}

	var record models.AttendanceRecord
	txErr := database.DB.Transaction(func(tx *gorm.DB) error {
		var sess models.Session
		if err := tx.Where("share_code = ?", req.ShareCode).First(&sess).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return echo.NewHTTPError(http.StatusNotFound, map[string]any{"error": "SESSION_NOT_FOUND"})
			}
			return err
		}
		if !sess.IsActive {
			return echo.NewHTTPError(http.StatusBadRequest, map[string]any{"error": "SESSION_CLOSED"})
		}

		var tm models.TeacherModule
		if err := tx.First(&tm, sess.TeacherModuleID).Error; err != nil {
			return echo.NewHTTPError(http.StatusNotFound, map[string]any{"error": "MODULE_NOT_FOUND"})
		}

		var enr models.Enrollment
		if err := tx.Where("student_id = ? AND module_id = ?", student.ID, tm.ModuleID).
			First(&enr).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return echo.NewHTTPError(http.StatusForbidden, map[string]any{"error": "NOT_ENROLLED"})
			}
			return err
		}
		if enr.IsExcluded {
			return echo.NewHTTPError(http.StatusForbidden, map[string]any{"error": "EXCLUDED"})
		}

		if err := tx.Where("session_id = ? AND enrollment_id = ?", sess.ID, enr.ID).
			First(&record).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				// Records are pre-created at session open; missing one means
				// the enrollment arrived after the session did.
				return echo.NewHTTPError(http.StatusNotFound, map[string]any{"error": "RECORD_NOT_FOUND"})
			}
			return err
		}
		if record.Status == models.AttendancePresent {
			return echo.NewHTTPError(http.StatusBadRequest, map[string]any{"error": "ALREADY_PRESENT"})
		}

		res := tx.Model(&models.AttendanceRecord{}).
			Where("id = ? AND status <> ?", record.ID, models.AttendancePresent).
			Update("status", models.AttendancePresent)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return echo.NewHTTPError(http.StatusBadRequest, map[string]any{"error": "ALREADY_PRESENT"})
		}
		record.Status = models.AttendancePresent
		return nil
	})
	if txErr != nil {
		if he, ok := txErr.(*echo.HTTPError); ok {
			return c.JSON(he.Code, he.Message)
		}
		return c.JSON(http.StatusBadRequest, map[string]any{"error": txErr.Error()})
	}

	return c.JSON(http.StatusOK, map[string]any{
		"attendance_id": record.ID,
		"session_id":    record.SessionID,
		"status":        record.Status,
		"marked_at":     record.CreatedAt,
	})
}

type overrideReq struct {
	Status models.AttendanceStatus `json:"status" validate:"required,oneof=present absent excluded"`
}

// PUT /teacher/attendance/:id
//
// Teacher-moderated override, restricted by the transition table in models.
func (h *AttendanceHandler) Override(c echo.Context) error {
	teacher, err := currentTeacher(c)
	if err != nil {
		return err
	}
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req overrideReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "INVALID_PAYLOAD"})
	}
	if err := validate.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "INVALID_STATUS"})
	}

	var record models.AttendanceRecord
	txErr := database.DB.Transaction(func(tx *gorm.DB) error {
		return overrideStatus(tx, &record, id, teacher.ID, req.Status)
	})
	if txErr != nil {
		if he, ok := txErr.(*echo.HTTPError); ok {
			return c.JSON(he.Code, he.Message)
		}
		return c.JSON(http.StatusBadRequest, map[string]any{"error": txErr.Error()})
	}

	return c.JSON(http.StatusOK, map[string]any{
		"attendance_id": record.ID,
		"status":        record.Status,
	})
}

// overrideStatus loads, authorizes and transitions one record inside tx.
func overrideStatus(tx *gorm.DB, record *models.AttendanceRecord, id, teacherID uint, to models.AttendanceStatus) error {
	if err := tx.First(record, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return echo.NewHTTPError(http.StatusNotFound, map[string]any{"error": "RECORD_NOT_FOUND"})
		}
		return err
	}

	var sess models.Session
	if err := tx.First(&sess, record.SessionID).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, map[string]any{"error": "SESSION_NOT_FOUND"})
	}
	owns, err := teacherOwnsSession(tx, &sess, teacherID)
	if err != nil {
		return err
	}
	if !owns {
		return echo.NewHTTPError(http.StatusForbidden, map[string]any{"error": "FORBIDDEN"})
	}

	if !models.AllowedTransition(record.Status, to) {
		return echo.NewHTTPError(http.StatusBadRequest, map[string]any{
			"error": "INVALID_TRANSITION",
			"from":  record.Status,
			"to":    to,
		})
	}

	if err := tx.Model(record).Update("status", to).Error; err != nil {
		return err
	}
	record.Status = to
	return nil
}

type bulkOverrideReq struct {
	AttendanceIDs []uint                  `json:"attendance_ids" validate:"required,min=1"`
	Status        models.AttendanceStatus `json:"status" validate:"required,oneof=present absent excluded"`
}

// POST /teacher/attendance/bulk
//
// Applies one status to many records. Failures don't abort the batch; each
// item reports its own outcome.
func (h *AttendanceHandler) BulkOverride(c echo.Context) error {
	teacher, err := currentTeacher(c)
	if err != nil {
		return err
	}
	var req bulkOverrideReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "INVALID_PAYLOAD"})
	}
	if err := validate.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "MISSING_FIELDS"})
	}

	updated := make([]uint, 0, len(req.AttendanceIDs))
	failed := make([]map[string]any, 0)
	for _, id := range req.AttendanceIDs {
		var record models.AttendanceRecord
		txErr := database.DB.Transaction(func(tx *gorm.DB) error {
			return overrideStatus(tx, &record, id, teacher.ID, req.Status)
		})
		if txErr != nil {
			reason := txErr.Error()
			if he, ok := txErr.(*echo.HTTPError); ok {
				if m, ok := he.Message.(map[string]any); ok {
					reason, _ = m["error"].(string)
				}
			}
			failed = append(failed, map[string]any{"attendance_id": id, "reason": reason})
			continue
		}
		updated = append(updated, id)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"updated": updated,
		"failed":  failed,
	})
}

// GET /teacher/attendance/stats?module_id=&session_id=
func (h *AttendanceHandler) Stats(c echo.Context) error {
	tx := database.DB.Model(&models.AttendanceRecord{})
	if v := c.QueryParam("module_id"); v != "" {
		tx = tx.Where("module_id = ?", atoiOr(v, 0))
	}
	if v := c.QueryParam("session_id"); v != "" {
		tx = tx.Where("session_id = ?", atoiOr(v, 0))
	}

	var records []models.AttendanceRecord
	if err := tx.Find(&records).Error; err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, sessionStatistics(records))
}

// GET /student/attendance — the caller's attendance history across modules.
func (h *AttendanceHandler) MyHistory(c echo.Context) error {
	student, err := currentStudent(c)
	if err != nil {
		return err
	}

	var enrollments []models.Enrollment
	if err := database.DB.Where("student_id = ?", student.ID).Find(&enrollments).Error; err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": err.Error()})
	}

	out := make([]map[string]any, 0, len(enrollments))
	for _, enr := range enrollments {
		var records []models.AttendanceRecord
		if err := database.DB.Where("enrollment_id = ?", enr.ID).
			Order("created_at DESC, id DESC").Find(&records).Error; err != nil {
			return c.JSON(http.StatusBadRequest, map[string]any{"error": err.Error()})
		}

		var mod models.Module
		_ = database.DB.First(&mod, enr.ModuleID).Error

		items := make([]map[string]any, 0, len(records))
		for _, r := range records {
			item := map[string]any{
				"attendance_id": r.ID,
				"session_id":    r.SessionID,
				"status":        r.Status,
				"created_at":    r.CreatedAt,
			}
			var j models.Justification
			if err := database.DB.Where("attendance_record_id = ?", r.ID).First(&j).Error; err == nil {
				item["justification_status"] = j.Status
			}
			items = append(items, item)
		}

		out = append(out, map[string]any{
			"enrollment_id":                enr.ID,
			"module_id":                    enr.ModuleID,
			"module_name":                  mod.Name,
			"number_of_absences":           enr.NumberOfAbsences,
			"number_of_absences_justified": enr.NumberOfAbsencesJustified,
			"is_excluded":                  enr.IsExcluded,
			"records":                      items,
		})
	}
	return c.JSON(http.StatusOK, out)
}
