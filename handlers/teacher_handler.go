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

type TeacherHandler struct{}

func NewTeacherHandler() *TeacherHandler { return &TeacherHandler{} }

type teacherPayload struct {
	Email      string `json:"email" validate:"required,email"`
	FullName   string `json:"full_name" validate:"required,max=120"`
	Department string `json:"department" validate:"max=80"`
	Password   string `json:"password" validate:"omitempty,min=8"`
}

func (p *teacherPayload) normalize() {
	p.Email = strings.TrimSpace(strings.ToLower(p.Email))
	p.FullName = strings.Join(strings.Fields(p.FullName), " ")
	p.Department = strings.TrimSpace(p.Department)
}

// GET /admin/teachers?q=
func (h *TeacherHandler) List(c echo.Context) error {
	tx := database.DB.Model(&models.Teacher{}).
		Joins("JOIN users u ON u.id = teachers.user_id")
	if q := strings.TrimSpace(c.QueryParam("q")); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		tx = tx.Where("LOWER(u.full_name) LIKE ? OR LOWER(u.email) LIKE ?", like, like)
	}

	var rows []struct {
		models.Teacher
		Email    string `json:"email"`
		FullName string `json:"full_name"`
	}
	if err := tx.Select("teachers.*, u.email, u.full_name").
		Order("u.full_name ASC").Find(&rows).Error; err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, rows)
}

// POST /admin/teachers
func (h *TeacherHandler) Create(c echo.Context) error {
	var p teacherPayload
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

	var dup models.User
	if err := database.DB.Where("email = ?", p.Email).First(&dup).Error; err == nil {
		return c.JSON(http.StatusConflict, map[string]any{"error": "EMAIL_EXISTS"})
	}

	hash, _ := bcrypt.GenerateFromPassword([]byte(p.Password), bcrypt.DefaultCost)

	var teacher models.Teacher
	txErr := database.DB.Transaction(func(tx *gorm.DB) error {
		user := models.User{
			Email:      p.Email,
			FullName:   p.FullName,
			Department: p.Department,
			Password:   string(hash),
			Role:       models.RoleTeacher,
			IsActive:   true,
		}
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		teacher = models.Teacher{UserID: user.ID}
		return tx.Create(&teacher).Error
	})
	if txErr != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": txErr.Error()})
	}
	return c.JSON(http.StatusCreated, teacher)
}

// PUT /admin/teachers/:id
func (h *TeacherHandler) Update(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var p teacherPayload
	if err := c.Bind(&p); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "INVALID_PAYLOAD"})
	}
	p.normalize()
	if err := validate.Struct(&p); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "MISSING_FIELDS"})
	}

	var teacher models.Teacher
	if err := database.DB.First(&teacher, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.JSON(http.StatusNotFound, map[string]any{"error": "TEACHER_NOT_FOUND"})
		}
		return c.JSON(http.StatusBadRequest, map[string]any{"error": err.Error()})
	}

	var dup models.User
	if err := database.DB.Where("email = ? AND id <> ?", p.Email, teacher.UserID).
		First(&dup).Error; err == nil {
		return c.JSON(http.StatusConflict, map[string]any{"error": "EMAIL_EXISTS"})
	}

	updates := map[string]any{
		"email":      p.Email,
		"full_name":  p.FullName,
		"department": p.Department,
	}
	if p.Password != "" {
		hash, _ := bcrypt.GenerateFromPassword([]byte(p.Password), bcrypt.DefaultCost)
		updates["password"] = string(hash)
	}
	if err := database.DB.Model(&models.User{}).Where("id = ?", teacher.UserID).
		Updates(updates).Error; err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, map[string]any{"ok": true})
}

// DELETE /admin/teachers/:id — refused while module assignments exist.
func (h *TeacherHandler) Delete(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var teacher models.Teacher
	if err := database.DB.First(&teacher, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.JSON(http.StatusNotFound, map[string]any{"error": "TEACHER_NOT_FOUND"})
		}
		return c.JSON(http.StatusBadRequest, map[string]any{"error": err.Error()})
	}

	var n int64
	if err := database.DB.Model(&models.TeacherModule{}).
		Where("teacher_id = ?", teacher.ID).Count(&n).Error; err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": err.Error()})
	}
	if n > 0 {
		return c.JSON(http.StatusConflict, map[string]any{"error": "TEACHER_HAS_ASSIGNMENTS"})
	}

	txErr := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&teacher).Error; err != nil {
			return err
		}
		return tx.Delete(&models.User{}, teacher.UserID).Error
	})
	if txErr != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": txErr.Error()})
	}
	return c.JSON(http.StatusOK, map[string]any{"ok": true})
}
