package handlers

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/Sidali-Djeghbal/hodory-attendance-system/database"
	"github.com/Sidali-Djeghbal/hodory-attendance-system/models"
)

type ModuleHandler struct{}

func NewModuleHandler() *ModuleHandler { return &ModuleHandler{} }

type modulePayload struct {
	Name    string `json:"name" validate:"required,max=120"`
	Code    string `json:"code" validate:"required,max=20"`
	Room    string `json:"room" validate:"max=40"`
	LevelID uint   `json:"level_id" validate:"required"`
}

func (p *modulePayload) normalize() {
	p.Name = strings.TrimSpace(p.Name)
	p.Code = strings.ToUpper(strings.TrimSpace(p.Code))
	p.Room = strings.TrimSpace(p.Room)
}

// GET /modules?level_id=
func (h *ModuleHandler) List(c echo.Context) error {
	tx := database.DB.Model(&models.Module{})
	if v := c.QueryParam("level_id"); v != "" {
		tx = tx.Where("level_id = ?", atoiOr(v, 0))
	}
	var rows []models.Module
	if err := tx.Order("code ASC").Find(&rows).Error; err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, rows)
}

// POST /admin/modules
func (h *ModuleHandler) Create(c echo.Context) error {
	var p modulePayload
	if err := c.Bind(&p); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "INVALID_PAYLOAD"})
	}
	p.normalize()
	if err := validate.Struct(&p); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "MISSING_FIELDS"})
	}

	var lvl models.Level
	if err := database.DB.First(&lvl, p.LevelID).Error; err != nil {
		return c.JSON(http.StatusNotFound, map[string]any{"error": "LEVEL_NOT_FOUND"})
	}

	var dup models.Module
	if err := database.DB.Where("code = ?", p.Code).First(&dup).Error; err == nil {
		return c.JSON(http.StatusConflict, map[string]any{"error": "CODE_EXISTS"})
	}

	rec := models.Module{Name: p.Name, Code: p.Code, Room: p.Room, LevelID: p.LevelID}
	if err := database.DB.Create(&rec).Error; err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": err.Error()})
	}
	return c.JSON(http.StatusCreated, rec)
}

// PUT /admin/modules/:id
func (h *ModuleHandler) Update(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var p modulePayload
	if err := c.Bind(&p); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "INVALID_PAYLOAD"})
	}
	p.normalize()
	if err := validate.Struct(&p); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "MISSING_FIELDS"})
	}

	var rec models.Module
	if err := database.DB.First(&rec, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.JSON(http.StatusNotFound, map[string]any{"error": "MODULE_NOT_FOUND"})
		}
		return c.JSON(http.StatusBadRequest, map[string]any{"error": err.Error()})
	}

	var dup models.Module
	if err := database.DB.Where("code = ? AND id <> ?", p.Code, id).First(&dup).Error; err == nil {
		return c.JSON(http.StatusConflict, map[string]any{"error": "CODE_EXISTS"})
	}

	rec.Name = p.Name
	rec.Code = p.Code
	rec.Room = p.Room
	rec.LevelID = p.LevelID
	if err := database.DB.Save(&rec).Error; err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, rec)
}

// DELETE /admin/modules/:id
func (h *ModuleHandler) Delete(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var n int64
	if err := database.DB.Model(&models.Enrollment{}).Where("module_id = ?", id).Count(&n).Error; err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": err.Error()})
	}
	if n > 0 {
		return c.JSON(http.StatusConflict, map[string]any{"error": "MODULE_HAS_ENROLLMENTS"})
	}

	txErr := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("module_id = ?", id).Delete(&models.TeacherModule{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Module{}, id).Error
	})
	if txErr != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": txErr.Error()})
	}
	return c.JSON(http.StatusOK, map[string]any{"ok": true})
}

type assignReq struct {
	TeacherID uint `json:"teacher_id" validate:"required"`
	ModuleID  uint `json:"module_id" validate:"required"`
}

// POST /admin/assignments — assign a teacher to a module.
func (h *ModuleHandler) Assign(c echo.Context) error {
	var req assignReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "INVALID_PAYLOAD"})
	}
	if err := validate.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "MISSING_FIELDS"})
	}

	var teacher models.Teacher
	if err := database.DB.First(&teacher, req.TeacherID).Error; err != nil {
		return c.JSON(http.StatusNotFound, map[string]any{"error": "TEACHER_NOT_FOUND"})
	}
	var mod models.Module
	if err := database.DB.First(&mod, req.ModuleID).Error; err != nil {
		return c.JSON(http.StatusNotFound, map[string]any{"error": "MODULE_NOT_FOUND"})
	}

	var dup models.TeacherModule
	if err := database.DB.Where("teacher_id = ? AND module_id = ?", req.TeacherID, req.ModuleID).
		First(&dup).Error; err == nil {
		return c.JSON(http.StatusConflict, map[string]any{"error": "ALREADY_ASSIGNED"})
	}

	rec := models.TeacherModule{TeacherID: req.TeacherID, ModuleID: req.ModuleID}
	if err := database.DB.Create(&rec).Error; err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": err.Error()})
	}
	return c.JSON(http.StatusCreated, rec)
}

// DELETE /admin/assignments/:id
func (h *ModuleHandler) Unassign(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var tm models.TeacherModule
	if err := database.DB.First(&tm, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.JSON(http.StatusNotFound, map[string]any{"error": "ASSIGNMENT_NOT_FOUND"})
		}
		return c.JSON(http.StatusBadRequest, map[string]any{"error": err.Error()})
	}

	var n int64
	if err := database.DB.Model(&models.Session{}).
		Where("teacher_module_id = ?", tm.ID).Count(&n).Error; err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": err.Error()})
	}
	if n > 0 {
		return c.JSON(http.StatusConflict, map[string]any{"error": "ASSIGNMENT_HAS_SESSIONS"})
	}

	if err := database.DB.Delete(&tm).Error; err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, map[string]any{"ok": true})
}

// GET /teacher/modules — modules assigned to the caller.
func (h *ModuleHandler) ListMine(c echo.Context) error {
	teacher, err := currentTeacher(c)
	if err != nil {
		return err
	}

	var tms []models.TeacherModule
	if err := database.DB.Where("teacher_id = ?", teacher.ID).Find(&tms).Error; err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": err.Error()})
	}

	out := make([]map[string]any, 0, len(tms))
	for _, tm := range tms {
		var mod models.Module
		if err := database.DB.First(&mod, tm.ModuleID).Error; err != nil {
			continue
		}
		var enrolled int64
		_ = database.DB.Model(&models.Enrollment{}).
			Where("module_id = ? AND is_excluded = ?", mod.ID, false).Count(&enrolled).Error
		out = append(out, map[string]any{
			"assignment_id": tm.ID,
			"module_id":     mod.ID,
			"name":          mod.Name,
			"code":          mod.Code,
			"room":          mod.Room,
			"level_id":      mod.LevelID,
			"enrolled":      enrolled,
		})
	}
	return c.JSON(http.StatusOK, out)
}
