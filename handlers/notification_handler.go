package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/Sidali-Djeghbal/hodory-attendance-system/database"
	"github.com/Sidali-Djeghbal/hodory-attendance-system/models"
)

type NotificationHandler struct{}

func NewNotificationHandler() *NotificationHandler { return &NotificationHandler{} }

// GET /notifications?unread=1&page=&size=
func (h *NotificationHandler) List(c echo.Context) error {
	uid, ok := getUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]any{"error": "UNAUTHENTICATED"})
	}

	page := atoiOr(c.QueryParam("page"), 1)
	size := atoiOr(c.QueryParam("size"), 20)
	if page < 1 {
		page = 1
	}
	if size < 1 || size > 100 {
		size = 20
	}

	tx := database.DB.Where("user_id = ?", uid)
	if c.QueryParam("unread") != "" {
		tx = tx.Where("is_read = ?", false)
	}

	var rows []models.Notification
	if err := tx.Order("created_at DESC, id DESC").
		Offset((page - 1) * size).Limit(size).Find(&rows).Error; err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, rows)
}

// GET /notifications/unread-count
func (h *NotificationHandler) UnreadCount(c echo.Context) error {
	uid, ok := getUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]any{"error": "UNAUTHENTICATED"})
	}
	var n int64
	if err := database.DB.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", uid, false).Count(&n).Error; err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, map[string]any{"count": n})
}

// POST /notifications/:id/read
func (h *NotificationHandler) MarkRead(c echo.Context) error {
	uid, ok := getUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]any{"error": "UNAUTHENTICATED"})
	}
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var n models.Notification
	if err := database.DB.First(&n, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.JSON(http.StatusNotFound, map[string]any{"error": "NOTIFICATION_NOT_FOUND"})
		}
		return c.JSON(http.StatusBadRequest, map[string]any{"error": err.Error()})
	}
	if n.UserID != uid {
		return c.JSON(http.StatusForbidden, map[string]any{"error": "FORBIDDEN"})
	}
	if !n.IsRead {
		if err := database.DB.Model(&n).Update("is_read", true).Error; err != nil {
			return c.JSON(http.StatusBadRequest, map[string]any{"error": err.Error()})
		}
		n.IsRead = true
	}
	return c.JSON(http.StatusOK, n)
}

// POST /notifications/read-all
func (h *NotificationHandler) MarkAllRead(c echo.Context) error {
	uid, ok := getUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]any{"error": "UNAUTHENTICATED"})
	}
	res := database.DB.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", uid, false).
		Update("is_read", true)
	if res.Error != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": res.Error.Error()})
	}
	return c.JSON(http.StatusOK, map[string]any{"updated": res.RowsAffected})
}
