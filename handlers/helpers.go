package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/Sidali-Djeghbal/hodory-attendance-system/database"
	"github.com/Sidali-Djeghbal/hodory-attendance-system/models"
)

var validate = validator.New()

func atoiOr(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

func parseID(c echo.Context, name string) (uint, error) {
	n, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || n == 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, map[string]any{"error": "INVALID_ID"})
	}
	return uint(n), nil
}

// getUserID reads the authenticated user id set by the JWT middleware.
func getUserID(c echo.Context) (uint, bool) {
	switch v := c.Get("user_id").(type) {
	case uint:
		return v, true
	case int:
		return uint(v), true
	default:
		return 0, false
	}
}

// currentStudent resolves the caller's student profile. The returned error
// is an *echo.HTTPError carrying the response payload.
func currentStudent(c echo.Context) (*models.Student, error) {
	uid, ok := getUserID(c)
	if !ok {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, map[string]any{"error": "UNAUTHENTICATED"})
	}
	var s models.Student
	if err := database.DB.Where("user_id = ?", uid).First(&s).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, echo.NewHTTPError(http.StatusNotFound, map[string]any{"error": "STUDENT_NOT_FOUND"})
		}
		return nil, err
	}
	return &s, nil
}

func currentTeacher(c echo.Context) (*models.Teacher, error) {
	uid, ok := getUserID(c)
	if !ok {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, map[string]any{"error": "UNAUTHENTICATED"})
	}
	var t models.Teacher
	if err := database.DB.Where("user_id = ?", uid).First(&t).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, echo.NewHTTPError(http.StatusNotFound, map[string]any{"error": "TEACHER_NOT_FOUND"})
		}
		return nil, err
	}
	return &t, nil
}

// teacherOwnsSession checks the session's teacher-module assignment against
// the given teacher.
func teacherOwnsSession(tx *gorm.DB, sess *models.Session, teacherID uint) (bool, error) {
	var tm models.TeacherModule
	if err := tx.First(&tm, sess.TeacherModuleID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return false, nil
		}
		return false, err
	}
	return tm.TeacherID == teacherID, nil
}
