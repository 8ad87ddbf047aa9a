package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/Sidali-Djeghbal/hodory-attendance-system/database"
	"github.com/Sidali-Djeghbal/hodory-attendance-system/models"
)

type EnrollmentHandler struct{}

func NewEnrollmentHandler() *EnrollmentHandler { return &EnrollmentHandler{} }

type enrollReq struct {
	StudentID uint `json:"student_id" validate:"required"`
	ModuleID  uint `json:"module_id" validate:"required"`
}

// enrollOne creates (or reinstates) a single enrollment inside tx.
func enrollOne(tx *gorm.DB, studentID, moduleID uint) (*models.Enrollment, error) {
	var student models.Student
	if err := tx.First(&student, studentID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, echo.NewHTTPError(http.StatusNotFound, map[string]any{"error": "STUDENT_NOT_FOUND"})
		}
		return nil, err
	}
	var mod models.Module
	if err := tx.First(&mod, moduleID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, echo.NewHTTPError(http.StatusNotFound, map[string]any{"error": "MODULE_NOT_FOUND"})
		}
		return nil, err
	}

	var existing models.Enrollment
	err := tx.Where("student_id = ? AND module_id = ?", studentID, moduleID).First(&existing).Error
	switch {
	case err == nil:
		if existing.IsExcluded {
			// Re-enrolling an excluded student reinstates the enrollment.
			if err := tx.Model(&existing).Update("is_excluded", false).Error; err != nil {
				return nil, err
			}
			existing.IsExcluded = false
			return &existing, nil
		}
		return nil, echo.NewHTTPError(http.StatusConflict, map[string]any{"error": "ALREADY_ENROLLED"})
	case err != gorm.ErrRecordNotFound:
		return nil, err
	}

	var user models.User
	_ = tx.First(&user, student.UserID).Error

	enr := models.Enrollment{
		StudentID:    studentID,
		ModuleID:     moduleID,
		StudentName:  user.FullName,
		StudentEmail: user.Email,
	}
	if err := tx.Create(&enr).Error; err != nil {
		return nil, err
	}
	return &enr, nil
}

// POST /admin/enrollments
func (h *EnrollmentHandler) Enroll(c echo.Context) error {
	var req enrollReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "INVALID_PAYLOAD"})
	}
	if err := validate.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "MISSING_FIELDS"})
	}

	var enr *models.Enrollment
	txErr := database.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		enr, err = enrollOne(tx, req.StudentID, req.ModuleID)
		return err
	})
	if txErr != nil {
		if he, ok := txErr.(*echo.HTTPError); ok {
			return c.JSON(he.Code, he.Message)
		}
		return c.JSON(http.StatusBadRequest, map[string]any{"error": txErr.Error()})
	}
	return c.JSON(http.StatusCreated, enr)
}

type bulkEnrollReq struct {
	StudentIDs []uint `json:"student_ids" validate:"required,min=1"`
	ModuleID   uint   `json:"module_id" validate:"required"`
}

// POST /admin/enrollments/bulk
//
// Per-item outcome; one bad student id doesn't sink the batch.
func (h *EnrollmentHandler) BulkEnroll(c echo.Context) error {
	var req bulkEnrollReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "INVALID_PAYLOAD"})
	}
	if err := validate.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "MISSING_FIELDS"})
	}

	var mod models.Module
	if err := database.DB.First(&mod, req.ModuleID).Error; err != nil {
		return c.JSON(http.StatusNotFound, map[string]any{"error": "MODULE_NOT_FOUND"})
	}

	enrolled := make([]uint, 0, len(req.StudentIDs))
	failed := make([]map[string]any, 0)
	for _, sid := range req.StudentIDs {
		txErr := database.DB.Transaction(func(tx *gorm.DB) error {
			_, err := enrollOne(tx, sid, req.ModuleID)
			return err
		})
		if txErr != nil {
			reason := txErr.Error()
			if he, ok := txErr.(*echo.HTTPError); ok {
				if m, ok := he.Message.(map[string]any); ok {
					reason, _ = m["error"].(string)
				}
			}
			failed = append(failed, map[string]any{"student_id": sid, "reason": reason})
			continue
		}
		enrolled = append(enrolled, sid)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"module_id": req.ModuleID,
		"enrolled":  enrolled,
		"failed":    failed,
	})
}

// DELETE /admin/enrollments/:id
//
// Hard delete; cascades to attendance records and their justifications.
func (h *EnrollmentHandler) Unenroll(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	txErr := database.DB.Transaction(func(tx *gorm.DB) error {
		var enr models.Enrollment
		if err := tx.First(&enr, id).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return echo.NewHTTPError(http.StatusNotFound, map[string]any{"error": "ENROLLMENT_NOT_FOUND"})
			}
			return err
		}

		if err := tx.Where(`attendance_record_id IN (
			SELECT id FROM attendance_records WHERE enrollment_id = ?
		)`, enr.ID).Delete(&models.Justification{}).Error; err != nil {
			return err
		}
		if err := tx.Where("enrollment_id = ?", enr.ID).
			Delete(&models.AttendanceRecord{}).Error; err != nil {
			return err
		}
		return tx.Delete(&enr).Error
	})
	if txErr != nil {
		if he, ok := txErr.(*echo.HTTPError); ok {
			return c.JSON(he.Code, he.Message)
		}
		return c.JSON(http.StatusBadRequest, map[string]any{"error": txErr.Error()})
	}
	return c.JSON(http.StatusOK, map[string]any{"ok": true})
}

// POST /admin/enrollments/:id/exclude
//
// Sets the flag and moves every ABSENT record of the enrollment to EXCLUDED.
// PRESENT records stay: attendance already earned is not taken back.
func (h *EnrollmentHandler) Exclude(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var enr models.Enrollment
	txErr := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&enr, id).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return echo.NewHTTPError(http.StatusNotFound, map[string]any{"error": "ENROLLMENT_NOT_FOUND"})
			}
			return err
		}
		if enr.IsExcluded {
			return echo.NewHTTPError(http.StatusBadRequest, map[string]any{"error": "ALREADY_EXCLUDED"})
		}

		if err := tx.Model(&enr).Update("is_excluded", true).Error; err != nil {
			return err
		}
		enr.IsExcluded = true

		return tx.Model(&models.AttendanceRecord{}).
			Where("enrollment_id = ? AND status = ?", enr.ID, models.AttendanceAbsent).
			Update("status", models.AttendanceExcluded).Error
	})
	if txErr != nil {
		if he, ok := txErr.(*echo.HTTPError); ok {
			return c.JSON(he.Code, he.Message)
		}
		return c.JSON(http.StatusBadRequest, map[string]any{"error": txErr.Error()})
	}
	return c.JSON(http.StatusOK, enr)
}

// POST /admin/enrollments/:id/reinstate
//
// Clears the flag only. EXCLUDED attendance records keep their status; the
// per-record override path is the way to revert individual sessions.
func (h *EnrollmentHandler) Reinstate(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var enr models.Enrollment
	if err := database.DB.First(&enr, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.JSON(http.StatusNotFound, map[string]any{"error": "ENROLLMENT_NOT_FOUND"})
		}
		return c.JSON(http.StatusBadRequest, map[string]any{"error": err.Error()})
	}
	if !enr.IsExcluded {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "NOT_EXCLUDED"})
	}

	if err := database.DB.Model(&enr).Update("is_excluded", false).Error; err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": err.Error()})
	}
	enr.IsExcluded = false
	return c.JSON(http.StatusOK, enr)
}

// GET /admin/modules/:id/enrollments?include_excluded=1
func (h *EnrollmentHandler) ListByModule(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var mod models.Module
	if err := database.DB.First(&mod, id).Error; err != nil {
		return c.JSON(http.StatusNotFound, map[string]any{"error": "MODULE_NOT_FOUND"})
	}

	tx := database.DB.Where("module_id = ?", id)
	if c.QueryParam("include_excluded") == "" {
		tx = tx.Where("is_excluded = ?", false)
	}
	var rows []models.Enrollment
	if err := tx.Order("student_name ASC, id ASC").Find(&rows).Error; err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, rows)
}

// GET /student/enrollments — the caller's enrollments with module info.
func (h *EnrollmentHandler) ListMine(c echo.Context) error {
	student, err := currentStudent(c)
	if err != nil {
		return err
	}

	var rows []models.Enrollment
	if err := database.DB.Where("student_id = ?", student.ID).Find(&rows).Error; err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": err.Error()})
	}

	out := make([]map[string]any, 0, len(rows))
	for _, enr := range rows {
		var mod models.Module
		_ = database.DB.First(&mod, enr.ModuleID).Error
		out = append(out, map[string]any{
			"enrollment_id":                enr.ID,
			"module_id":                    enr.ModuleID,
			"module_name":                  mod.Name,
			"module_code":                  mod.Code,
			"number_of_absences":           enr.NumberOfAbsences,
			"number_of_absences_justified": enr.NumberOfAbsencesJustified,
			"is_excluded":                  enr.IsExcluded,
		})
	}
	return c.JSON(http.StatusOK, out)
}
