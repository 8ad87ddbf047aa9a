package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/Sidali-Djeghbal/hodory-attendance-system/database"
	"github.com/Sidali-Djeghbal/hodory-attendance-system/models"
)

type AuthHandler struct {
	JWTSecret string
}

func NewAuthHandler(secret string) *AuthHandler {
	return &AuthHandler{JWTSecret: secret}
}

func (h *AuthHandler) signJWT(sub uint, role, name string, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"sub":  sub,
		"role": role,
		"name": name,
		"exp":  time.Now().Add(ttl).Unix(),
		"iat":  time.Now().Unix(),
	}
	tk := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tk.SignedString([]byte(h.JWTSecret))
}

type loginReq struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// POST /auth/login
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "INVALID_PAYLOAD"})
	}
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if err := validate.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "MISSING_FIELDS"})
	}

	var u models.User
	if err := database.DB.Where("email = ?", req.Email).First(&u).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.JSON(http.StatusUnauthorized, map[string]any{"error": "INVALID_CREDENTIALS"})
		}
		return c.JSON(http.StatusBadRequest, map[string]any{"error": err.Error()})
	}
	if !u.IsActive {
		return c.JSON(http.StatusForbidden, map[string]any{"error": "ACCOUNT_DISABLED"})
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(req.Password)) != nil {
		return c.JSON(http.StatusUnauthorized, map[string]any{"error": "INVALID_CREDENTIALS"})
	}

	tok, err := h.signJWT(u.ID, u.Role, u.FullName, 12*time.Hour)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]any{"error": "TOKEN_SIGN_FAILED"})
	}
	return c.JSON(http.StatusOK, map[string]any{
		"token": tok,
		"user": map[string]any{
			"id":        u.ID,
			"email":     u.Email,
			"full_name": u.FullName,
			"role":      u.Role,
		},
	})
}

// GET /me
func (h *AuthHandler) Me(c echo.Context) error {
	uid, ok := getUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]any{"error": "UNAUTHENTICATED"})
	}
	var u models.User
	if err := database.DB.First(&u, uid).Error; err != nil {
		return c.JSON(http.StatusNotFound, map[string]any{"error": "USER_NOT_FOUND"})
	}
	out := map[string]any{
		"id":         u.ID,
		"email":      u.Email,
		"full_name":  u.FullName,
		"department": u.Department,
		"role":       u.Role,
	}
	switch u.Role {
	case models.RoleStudent:
		var s models.Student
		if err := database.DB.Where("user_id = ?", u.ID).First(&s).Error; err == nil {
			out["student_id"] = s.ID
			out["level_id"] = s.LevelID
		}
	case models.RoleTeacher:
		var t models.Teacher
		if err := database.DB.Where("user_id = ?", u.ID).First(&t).Error; err == nil {
			out["teacher_id"] = t.ID
		}
	}
	return c.JSON(http.StatusOK, out)
}
