package handlers

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/Sidali-Djeghbal/hodory-attendance-system/database"
	"github.com/Sidali-Djeghbal/hodory-attendance-system/models"
)

type LevelHandler struct{}

func NewLevelHandler() *LevelHandler { return &LevelHandler{} }

type levelPayload struct {
	Name      string `json:"name" validate:"required,max=80"`
	YearLevel string `json:"year_level" validate:"required,max=20"`
}

// GET /levels
func (h *LevelHandler) List(c echo.Context) error {
	var rows []models.Level
	if err := database.DB.Order("year_level ASC, name ASC").Find(&rows).Error; err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, rows)
}

// POST /admin/levels
func (h *LevelHandler) Create(c echo.Context) error {
	var p levelPayload
	if err := c.Bind(&p); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "INVALID_PAYLOAD"})
	}
	p.Name = strings.TrimSpace(p.Name)
	p.YearLevel = strings.TrimSpace(p.YearLevel)
	if err := validate.Struct(&p); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "MISSING_FIELDS"})
	}

	rec := models.Level{Name: p.Name, YearLevel: p.YearLevel}
	if err := database.DB.Create(&rec).Error; err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": err.Error()})
	}
	return c.JSON(http.StatusCreated, rec)
}

// PUT /admin/levels/:id
func (h *LevelHandler) Update(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var p levelPayload
	if err := c.Bind(&p); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "INVALID_PAYLOAD"})
	}
	p.Name = strings.TrimSpace(p.Name)
	p.YearLevel = strings.TrimSpace(p.YearLevel)
	if err := validate.Struct(&p); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "MISSING_FIELDS"})
	}

	var rec models.Level
	if err := database.DB.First(&rec, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.JSON(http.StatusNotFound, map[string]any{"error": "LEVEL_NOT_FOUND"})
		}
		return c.JSON(http.StatusBadRequest, map[string]any{"error": err.Error()})
	}
	rec.Name = p.Name
	rec.YearLevel = p.YearLevel
	if err := database.DB.Save(&rec).Error; err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, rec)
}

// DELETE /admin/levels/:id
func (h *LevelHandler) Delete(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var n int64
	if err := database.DB.Model(&models.Module{}).Where("level_id = ?", id).Count(&n).Error; err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": err.Error()})
	}
	if n > 0 {
		return c.JSON(http.StatusConflict, map[string]any{"error": "LEVEL_HAS_MODULES"})
	}

	if err := database.DB.Delete(&models.Level{}, id).Error; err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, map[string]any{"ok": true})
}

type scheduleDayPayload struct {
	ModuleID uint   `json:"module_id" validate:"required"`
	Day      string `json:"day" validate:"required,oneof=Monday Tuesday Wednesday Thursday Friday Saturday Sunday"`
	Time     string `json:"time" validate:"required,max=11"`
}

type schedulePayload struct {
	Days []scheduleDayPayload `json:"days" validate:"required,dive"`
}

// GET /levels/:id/schedule
func (h *LevelHandler) GetSchedule(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var sch models.Schedule
	if err := database.DB.Where("level_id = ?", id).First(&sch).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.JSON(http.StatusNotFound, map[string]any{"error": "SCHEDULE_NOT_FOUND"})
		}
		return c.JSON(http.StatusBadRequest, map[string]any{"error": err.Error()})
	}

	var days []models.ScheduleDay
	if err := database.DB.Where("schedule_id = ?", sch.ID).
		Order("id ASC").Find(&days).Error; err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, map[string]any{
		"schedule_id":  sch.ID,
		"level_id":     sch.LevelID,
		"last_updated": sch.LastUpdated,
		"days":         days,
	})
}

// PUT /admin/levels/:id/schedule — replaces the level's timetable wholesale.
func (h *LevelHandler) PutSchedule(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var p schedulePayload
	if err := c.Bind(&p); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "INVALID_PAYLOAD"})
	}
	if err := validate.Struct(&p); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "MISSING_FIELDS"})
	}

	var lvl models.Level
	if err := database.DB.First(&lvl, id).Error; err != nil {
		return c.JSON(http.StatusNotFound, map[string]any{"error": "LEVEL_NOT_FOUND"})
	}

	var sch models.Schedule
	txErr := database.DB.Transaction(func(tx *gorm.DB) error {
		err := tx.Where("level_id = ?", id).First(&sch).Error
		if err == gorm.ErrRecordNotFound {
			sch = models.Schedule{LevelID: id}
			if err := tx.Create(&sch).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		}

		if err := tx.Where("schedule_id = ?", sch.ID).Delete(&models.ScheduleDay{}).Error; err != nil {
			return err
		}
		for _, d := range p.Days {
			day := models.ScheduleDay{
				ScheduleID: sch.ID,
				ModuleID:   d.ModuleID,
				Day:        d.Day,
				Time:       strings.TrimSpace(d.Time),
			}
			if err := tx.Create(&day).Error; err != nil {
				return err
			}
		}
		return tx.Model(&sch).Update("last_updated", gorm.Expr("CURRENT_TIMESTAMP")).Error
	})
	if txErr != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": txErr.Error()})
	}
	return c.JSON(http.StatusOK, map[string]any{"schedule_id": sch.ID, "days": len(p.Days)})
}
