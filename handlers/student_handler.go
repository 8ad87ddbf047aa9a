package handlers

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/Sidali-Djeghbal/hodory-attendance-system/database"
	"github.com/Sidali-Djeghbal/hodory-attendance-system/models"
)

type StudentHandler struct{}

func NewStudentHandler() *StudentHandler { return &StudentHandler{} }

type studentPayload struct {
	Email      string `json:"email" validate:"required,email"`
	FullName   string `json:"full_name" validate:"required,max=120"`
	Department string `json:"department" validate:"max=80"`
	Password   string `json:"password" validate:"omitempty,min=8"`
	LevelID    uint   `json:"level_id" validate:"required"`
}

func (p *studentPayload) normalize() {
	p.Email = strings.TrimSpace(strings.ToLower(p.Email))
	p.FullName = strings.Join(strings.Fields(p.FullName), " ")
	p.Department = strings.TrimSpace(p.Department)
}

// GET /admin/students?level_id=&q=
func (h *StudentHandler) List(c echo.Context) error {
	tx := database.DB.Model(&models.Student{}).
		Joins("JOIN users u ON u.id = students.user_id")
	if v := c.QueryParam("level_id"); v != "" {
		tx = tx.Where("students.level_id = ?", atoiOr(v, 0))
	}
	if q := strings.TrimSpace(c.QueryParam("q")); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		tx = tx.Where("LOWER(u.full_name) LIKE ? OR LOWER(u.email) LIKE ?", like, like)
	}

	var rows []struct {
		models.Student
		Email    string `json:"email"`
		FullName string `json:"full_name"`
	}
	if err := tx.Select("students.*, u.email, u.full_name").
		Order("u.full_name ASC").Find(&rows).Error; err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, rows)
}

// POST /admin/students — creates the user account and the student profile.
func (h *StudentHandler) Create(c echo.Context) error {
	var p studentPayload
	if err := c.Bind(&p); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "INVALID_PAYLOAD"})
	}
	p.normalize()
	if p.Password == "" {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "MISSING_FIELDS"})
	}
	if err := validate.Struct(&p); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "MISSING_FIELDS"})
	}

	var lvl models.Level
	if err := database.DB.First(&lvl, p.LevelID).Error; err != nil {
		return c.JSON(http.StatusNotFound, map[string]any{"error": "LEVEL_NOT_FOUND"})
	}

	var dup models.User
	if err := database.DB.Where("email = ?", p.Email).First(&dup).Error; err == nil {
		return c.JSON(http.StatusConflict, map[string]any{"error": "EMAIL_EXISTS"})
	}

	hash, _ := bcrypt.GenerateFromPassword([]byte(p.Password), bcrypt.DefaultCost)

	var student models.Student
	txErr := database.DB.Transaction(func(tx *gorm.DB) error {
		user := models.User{
			Email:      p.Email,
			FullName:   p.FullName,
			Department: p.Department,
			Password:   string(hash),
			Role:       models.RoleStudent,
			IsActive:   true,
		}
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		student = models.Student{UserID: user.ID, LevelID: p.LevelID}
		return tx.Create(&student).Error
	})
	if txErr != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": txErr.Error()})
	}
	return c.JSON(http.StatusCreated, student)
}

// PUT /admin/students/:id
func (h *StudentHandler) Update(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var p studentPayload
	if err := c.Bind(&p); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "INVALID_PAYLOAD"})
	}
	p.normalize()
	if err := validate.Struct(&p); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "MISSING_FIELDS"})
	}

	var student models.Student
	if err := database.DB.First(&student, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.JSON(http.StatusNotFound, map[string]any{"error": "STUDENT_NOT_FOUND"})
		}
		return c.JSON(http.StatusBadRequest, map[string]any{"error": err.Error()})
	}

	var dup models.User
	if err := database.DB.Where("email = ? AND id <> ?", p.Email, student.UserID).
		First(&dup).Error; err == nil {
		return c.JSON(http.StatusConflict, map[string]any{"error": "EMAIL_EXISTS"})
	}

	txErr := database.DB.Transaction(func(tx *gorm.DB) error {
		updates := map[string]any{
			"email":      p.Email,
			"full_name":  p.FullName,
			"department": p.Department,
		}
		if p.Password != "" {
			hash, _ := bcrypt.GenerateFromPassword([]byte(p.Password), bcrypt.DefaultCost)
			updates["password"] = string(hash)
		}
		if err := tx.Model(&models.User{}).Where("id = ?", student.UserID).
			Updates(updates).Error; err != nil {
			return err
		}
		return tx.Model(&student).Update("level_id", p.LevelID).Error
	})
	if txErr != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": txErr.Error()})
	}
	return c.JSON(http.StatusOK, map[string]any{"ok": true})
}

// DELETE /admin/students/:id — refused while enrollments exist.
func (h *StudentHandler) Delete(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var student models.Student
	if err := database.DB.First(&student, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.JSON(http.StatusNotFound, map[string]any{"error": "STUDENT_NOT_FOUND"})
		}
		return c.JSON(http.StatusBadRequest, map[string]any{"error": err.Error()})
	}

	var n int64
	if err := database.DB.Model(&models.Enrollment{}).
		Where("student_id = ?", student.ID).Count(&n).Error; err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": err.Error()})
	}
	if n > 0 {
		return c.JSON(http.StatusConflict, map[string]any{"error": "STUDENT_HAS_ENROLLMENTS"})
	}

	txErr := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&student).Error; err != nil {
			return err
		}
		return tx.Delete(&models.User{}, student.UserID).Error
	})
	if txErr != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": txErr.Error()})
	}
	return c.JSON(http.StatusOK, map[string]any{"ok": true})
}
