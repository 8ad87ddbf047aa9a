package handlers

import (
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/Sidali-Djeghbal/hodory-attendance-system/database"
	"github.com/Sidali-Djeghbal/hodory-attendance-system/models"
)

type SessionHandler struct{}

func NewSessionHandler() *SessionHandler { return &SessionHandler{} }

// newShareCode returns a 6-char upper-case code. Codes are compared
// case-insensitively and must be unique among currently open sessions; the
// caller retries on collision.
func newShareCode() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return strings.ToUpper(raw[:6])
}

func uniqueShareCode(tx *gorm.DB) (string, error) {
	for {
		code := newShareCode()
		var n int64
		err := tx.Model(&models.Session{}).
			Where("share_code = ? AND is_active = ?", code, true).
			Count(&n).Error
		if err != nil {
			return "", err
		}
		if n == 0 {
			return code, nil
		}
	}
}

type openSessionReq struct {
	ModuleID        uint   `json:"module_id" validate:"required"`
	DurationMinutes int    `json:"duration_minutes" validate:"omitempty,min=1,max=480"`
	Room            string `json:"room"`
}

// POST /teacher/sessions
//
// Opens a session for one of the caller's module assignments and spawns one
// ABSENT attendance record per non-excluded enrollment.
func (h *SessionHandler) Open(c echo.Context) error {
	teacher, err := currentTeacher(c)
	if err != nil {
		return err
	}

	var req openSessionReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "INVALID_PAYLOAD"})
	}
	if err := validate.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "MISSING_FIELDS"})
	}
	if req.DurationMinutes == 0 {
		req.DurationMinutes = 90
	}

	var sess models.Session
	var created int
	txErr := database.DB.Transaction(func(tx *gorm.DB) error {
		var tm models.TeacherModule
		if err := tx.Where("teacher_id = ? AND module_id = ?", teacher.ID, req.ModuleID).
			First(&tm).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return echo.NewHTTPError(http.StatusNotFound, map[string]any{"error": "MODULE_NOT_ASSIGNED"})
			}
			return err
		}

		room := strings.TrimSpace(req.Room)
		if room == "" {
			var mod models.Module
			if err := tx.First(&mod, req.ModuleID).Error; err == nil {
				room = mod.Room
			}
		}

		code, err := uniqueShareCode(tx)
		if err != nil {
			return err
		}

		sess = models.Session{
			ShareCode:       code,
			Room:            room,
			DateTime:        time.Now().UTC(),
			DurationMinutes: req.DurationMinutes,
			IsActive:        true,
			TeacherModuleID: tm.ID,
		}
		if err := tx.Create(&sess).Error; err != nil {
			return err
		}

		var enrollments []models.Enrollment
		if err := tx.Where("module_id = ? AND is_excluded = ?", req.ModuleID, false).
			Find(&enrollments).Error; err != nil {
			return err
		}

		records := make([]models.AttendanceRecord, 0, len(enrollments))
		for _, e := range enrollments {
			records = append(records, models.AttendanceRecord{
				SessionID:    sess.ID,
				EnrollmentID: e.ID,
				ModuleID:     req.ModuleID,
				Status:       models.AttendanceAbsent,
			})
		}
		if len(records) > 0 {
			if err := tx.Create(&records).Error; err != nil {
				return err
			}
		}
		created = len(records)
		return nil
	})
	if txErr != nil {
		if he, ok := txErr.(*echo.HTTPError); ok {
			return c.JSON(he.Code, he.Message)
		}
		return c.JSON(http.StatusBadRequest, map[string]any{"error": txErr.Error()})
	}

	return c.JSON(http.StatusCreated, map[string]any{
		"session_id":       sess.ID,
		"module_id":        req.ModuleID,
		"share_code":       sess.ShareCode,
		"date_time":        sess.DateTime,
		"duration_minutes": sess.DurationMinutes,
		"room":             sess.Room,
		"is_active":        true,
		"records_created":  created,
	})
}

// POST /teacher/sessions/:id/close
//
// Irreversible. The active-flag flip is a conditional update so a concurrent
// second close sees SESSION_CLOSED instead of double-counting absences.
func (h *SessionHandler) Close(c echo.Context) error {
	teacher, err := currentTeacher(c)
	if err != nil {
		return err
	}
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var summary map[string]any
	txErr := database.DB.Transaction(func(tx *gorm.DB) error {
		var sess models.Session
		if err := tx.First(&sess, id).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return echo.NewHTTPError(http.StatusNotFound, map[string]any{"error": "SESSION_NOT_FOUND"})
			}
			return err
		}

		owns, err := teacherOwnsSession(tx, &sess, teacher.ID)
		if err != nil {
			return err
		}
		if !owns {
			return echo.NewHTTPError(http.StatusForbidden, map[string]any{"error": "FORBIDDEN"})
		}

		res := tx.Model(&models.Session{}).
			Where("id = ? AND is_active = ?", sess.ID, true).
			Update("is_active", false)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return echo.NewHTTPError(http.StatusBadRequest, map[string]any{"error": "SESSION_CLOSED"})
		}

		// Every still-absent record costs its enrollment one absence.
		if err := tx.Exec(`
			UPDATE enrollments SET number_of_absences = number_of_absences + 1
			WHERE id IN (
				SELECT enrollment_id FROM attendance_records
				WHERE session_id = ? AND status = ?
			)`, sess.ID, models.AttendanceAbsent).Error; err != nil {
			return err
		}

		var records []models.AttendanceRecord
		if err := tx.Where("session_id = ?", sess.ID).Find(&records).Error; err != nil {
			return err
		}
		summary = sessionStatistics(records)
		summary["session_id"] = sess.ID
		summary["is_active"] = false
		return nil
	})
	if txErr != nil {
		if he, ok := txErr.(*echo.HTTPError); ok {
			return c.JSON(he.Code, he.Message)
		}
		return c.JSON(http.StatusBadRequest, map[string]any{"error": txErr.Error()})
	}

	return c.JSON(http.StatusOK, summary)
}

func sessionStatistics(records []models.AttendanceRecord) map[string]any {
	var present, absent, excluded int
	for _, r := range records {
		switch r.Status {
		case models.AttendancePresent:
			present++
		case models.AttendanceAbsent:
			absent++
		case models.AttendanceExcluded:
			excluded++
		}
	}
	total := len(records)
	rate := 0.0
	if total > 0 {
		rate = math.Round(float64(present)/float64(total)*10000) / 100
	}
	return map[string]any{
		"total":           total,
		"present":         present,
		"absent":          absent,
		"excluded":        excluded,
		"attendance_rate": rate,
	}
}

// GET /sessions/code/:code — lets a student verify a share code before
// marking. Only open sessions resolve.
func (h *SessionHandler) GetByCode(c echo.Context) error {
	code := strings.ToUpper(strings.TrimSpace(c.Param("code")))

	var sess models.Session
	if err := database.DB.Where("share_code = ? AND is_active = ?", code, true).
		First(&sess).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.JSON(http.StatusNotFound, map[string]any{"error": "SESSION_NOT_FOUND"})
		}
		return c.JSON(http.StatusBadRequest, map[string]any{"error": err.Error()})
	}

	var tm models.TeacherModule
	var mod models.Module
	moduleName := ""
	if err := database.DB.First(&tm, sess.TeacherModuleID).Error; err == nil {
		if err := database.DB.First(&mod, tm.ModuleID).Error; err == nil {
			moduleName = mod.Name
		}
	}

	return c.JSON(http.StatusOK, map[string]any{
		"session_id":       sess.ID,
		"module_name":      moduleName,
		"date_time":        sess.DateTime,
		"duration_minutes": sess.DurationMinutes,
		"room":             sess.Room,
		"is_active":        sess.IsActive,
	})
}

// GET /teacher/sessions — the caller's sessions, newest first, with counts.
func (h *SessionHandler) ListMine(c echo.Context) error {
	teacher, err := currentTeacher(c)
	if err != nil {
		return err
	}

	var tms []models.TeacherModule
	if err := database.DB.Where("teacher_id = ?", teacher.ID).Find(&tms).Error; err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": err.Error()})
	}
	tmIDs := make([]uint, 0, len(tms))
	moduleByTM := make(map[uint]uint, len(tms))
	for _, tm := range tms {
		tmIDs = append(tmIDs, tm.ID)
		moduleByTM[tm.ID] = tm.ModuleID
	}
	if len(tmIDs) == 0 {
		return c.JSON(http.StatusOK, []map[string]any{})
	}

	var sessions []models.Session
	if err := database.DB.Where("teacher_module_id IN ?", tmIDs).
		Order("date_time DESC, id DESC").Find(&sessions).Error; err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": err.Error()})
	}

	out := make([]map[string]any, 0, len(sessions))
	for _, sess := range sessions {
		var records []models.AttendanceRecord
		if err := database.DB.Where("session_id = ?", sess.ID).Find(&records).Error; err != nil {
			return c.JSON(http.StatusBadRequest, map[string]any{"error": err.Error()})
		}
		item := map[string]any{
			"session_id":       sess.ID,
			"module_id":        moduleByTM[sess.TeacherModuleID],
			"share_code":       sess.ShareCode,
			"date_time":        sess.DateTime,
			"duration_minutes": sess.DurationMinutes,
			"room":             sess.Room,
			"is_active":        sess.IsActive,
			"statistics":       sessionStatistics(records),
		}
		out = append(out, item)
	}
	return c.JSON(http.StatusOK, out)
}

// GET /teacher/sessions/:id — full roster for one session, ownership-checked.
func (h *SessionHandler) Detail(c echo.Context) error {
	teacher, err := currentTeacher(c)
	if err != nil {
		return err
	}
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var sess models.Session
	if err := database.DB.First(&sess, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.JSON(http.StatusNotFound, map[string]any{"error": "SESSION_NOT_FOUND"})
		}
		return c.JSON(http.StatusBadRequest, map[string]any{"error": err.Error()})
	}
	owns, err := teacherOwnsSession(database.DB, &sess, teacher.ID)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": err.Error()})
	}
	if !owns {
		return c.JSON(http.StatusForbidden, map[string]any{"error": "FORBIDDEN"})
	}

	var records []models.AttendanceRecord
	if err := database.DB.Where("session_id = ?", sess.ID).Find(&records).Error; err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": err.Error()})
	}

	roster := make([]map[string]any, 0, len(records))
	for _, r := range records {
		var enr models.Enrollment
		_ = database.DB.First(&enr, r.EnrollmentID).Error

		item := map[string]any{
			"attendance_id": r.ID,
			"status":        r.Status,
			"marked_at":     r.CreatedAt,
			"enrollment_id": r.EnrollmentID,
			"student_id":    enr.StudentID,
			"student_name":  enr.StudentName,
			"student_email": enr.StudentEmail,
		}
		// Surface the pending paperwork for absences.
		var j models.Justification
		if err := database.DB.Where("attendance_record_id = ?", r.ID).First(&j).Error; err == nil {
			item["justification"] = map[string]any{
				"id":       j.ID,
				"status":   j.Status,
				"comment":  j.Comment,
				"file_url": j.FileURL,
			}
		}
		roster = append(roster, item)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"session_id":       sess.ID,
		"share_code":       sess.ShareCode,
		"date_time":        sess.DateTime,
		"duration_minutes": sess.DurationMinutes,
		"room":             sess.Room,
		"is_active":        sess.IsActive,
		"statistics":       sessionStatistics(records),
		"attendance":       roster,
	})
}
