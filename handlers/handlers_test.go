package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Sidali-Djeghbal/hodory-attendance-system/database"
	"github.com/Sidali-Djeghbal/hodory-attendance-system/models"
)

// setupDB points the package-global connection at a throwaway sqlite file.
func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	database.DB = db
	return db
}

type fixture struct {
	db *gorm.DB

	Level   models.Level
	Module  models.Module
	Teacher models.Teacher
	TM      models.TeacherModule

	TeacherUser models.User
	Students    []models.Student
	Enrollments []models.Enrollment
}

// seed creates one teacher assigned to one module with n enrolled students.
func seed(t *testing.T, db *gorm.DB, n int) *fixture {
	t.Helper()
	f := &fixture{db: db}

	f.Level = models.Level{Name: "Informatique", YearLevel: "L2"}
	mustCreate(t, db, &f.Level)
	f.Module = models.Module{Name: "Operating Systems", Code: "OS2", Room: "B-204", LevelID: f.Level.ID}
	mustCreate(t, db, &f.Module)

	f.TeacherUser = models.User{
		Email: "teacher@univ.dz", FullName: "Karim Meziane",
		Password: "x", Role: models.RoleTeacher, IsActive: true,
	}
	mustCreate(t, db, &f.TeacherUser)
	f.Teacher = models.Teacher{UserID: f.TeacherUser.ID}
	mustCreate(t, db, &f.Teacher)
	f.TM = models.TeacherModule{TeacherID: f.Teacher.ID, ModuleID: f.Module.ID}
	mustCreate(t, db, &f.TM)

	for i := 0; i < n; i++ {
		u := models.User{
			Email:    fmt.Sprintf("student%d@univ.dz", i+1),
			FullName: fmt.Sprintf("Student %d", i+1),
			Password: "x", Role: models.RoleStudent, IsActive: true,
		}
		mustCreate(t, db, &u)
		s := models.Student{UserID: u.ID, LevelID: f.Level.ID}
		mustCreate(t, db, &s)
		e := models.Enrollment{
			StudentID: s.ID, ModuleID: f.Module.ID,
			StudentName: u.FullName, StudentEmail: u.Email,
		}
		mustCreate(t, db, &e)
		f.Students = append(f.Students, s)
		f.Enrollments = append(f.Enrollments, e)
	}
	return f
}

// otherTeacher seeds a second teacher with no assignments.
func (f *fixture) otherTeacher(t *testing.T) models.Teacher {
	t.Helper()
	u := models.User{
		Email: "other@univ.dz", FullName: "Sara Benali",
		Password: "x", Role: models.RoleTeacher, IsActive: true,
	}
	mustCreate(t, f.db, &u)
	tch := models.Teacher{UserID: u.ID}
	mustCreate(t, f.db, &tch)
	return tch
}

func mustCreate(t *testing.T, db *gorm.DB, v any) {
	t.Helper()
	if err := db.Create(v).Error; err != nil {
		t.Fatalf("create %T: %v", v, err)
	}
}

// request builds an authenticated echo context the way the JWT middleware
// would leave it, runs the handler, and decodes the JSON response.
func request(t *testing.T, h echo.HandlerFunc, method, target string, body string, userID uint, role string, params ...string) (int, map[string]any) {
	t.Helper()
	e := echo.New()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if userID != 0 {
		c.Set("user_id", userID)
		c.Set("role", role)
	}
	if len(params) > 0 {
		names := make([]string, 0, len(params)/2)
		values := make([]string, 0, len(params)/2)
		for i := 0; i+1 < len(params); i += 2 {
			names = append(names, params[i])
			values = append(values, params[i+1])
		}
		c.SetParamNames(names...)
		c.SetParamValues(values...)
	}
	if err := h(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}

	var out map[string]any
	if rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
			// List endpoints return arrays; callers that need them decode
			// the recorder themselves.
			out = map[string]any{"_raw": rec.Body.String()}
		}
	}
	return rec.Code, out
}

func errCode(body map[string]any) string {
	s, _ := body["error"].(string)
	return s
}

func TestHealth(t *testing.T) {
	code, body := request(t, Health, http.MethodGet, "/health", "", 0, "")
	if code != http.StatusOK || body["status"] != "ok" {
		t.Fatalf("health = %d %v", code, body)
	}
}
