package handlers

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/Sidali-Djeghbal/hodory-attendance-system/models"
)

func openSession(t *testing.T, f *fixture) (uint, string) {
	t.Helper()
	h := NewSessionHandler()
	body := fmt.Sprintf(`{"module_id": %d}`, f.Module.ID)
	code, resp := request(t, h.Open, http.MethodPost, "/teacher/sessions", body,
		f.TeacherUser.ID, models.RoleTeacher)
	if code != http.StatusCreated {
		t.Fatalf("open session = %d %v", code, resp)
	}
	id := uint(resp["session_id"].(float64))
	shareCode := resp["share_code"].(string)
	return id, shareCode
}

func TestOpenSessionCreatesAbsentRecords(t *testing.T) {
	db := setupDB(t)
	f := seed(t, db, 5)

	sessID, shareCode := openSession(t, f)
	if len(shareCode) != 6 {
		t.Errorf("share code %q, want 6 chars", shareCode)
	}

	var records []models.AttendanceRecord
	if err := db.Where("session_id = ?", sessID).Find(&records).Error; err != nil {
		t.Fatal(err)
	}
	if len(records) != 5 {
		t.Fatalf("got %d records, want 5", len(records))
	}
	for _, r := range records {
		if r.Status != models.AttendanceAbsent {
			t.Errorf("record %d status %s, want absent", r.ID, r.Status)
		}
	}
}

func TestOpenSessionSkipsExcludedEnrollments(t *testing.T) {
	db := setupDB(t)
	f := seed(t, db, 3)
	if err := db.Model(&f.Enrollments[0]).Update("is_excluded", true).Error; err != nil {
		t.Fatal(err)
	}

	sessID, _ := openSession(t, f)

	var n int64
	db.Model(&models.AttendanceRecord{}).Where("session_id = ?", sessID).Count(&n)
	if n != 2 {
		t.Fatalf("got %d records, want 2", n)
	}
}

func TestOpenSessionRequiresAssignment(t *testing.T) {
	db := setupDB(t)
	f := seed(t, db, 1)
	other := f.otherTeacher(t)

	var otherUser models.User
	db.First(&otherUser, other.UserID)

	h := NewSessionHandler()
	body := fmt.Sprintf(`{"module_id": %d}`, f.Module.ID)
	code, resp := request(t, h.Open, http.MethodPost, "/teacher/sessions", body,
		otherUser.ID, models.RoleTeacher)
	if code != http.StatusNotFound || errCode(resp) != "MODULE_NOT_ASSIGNED" {
		t.Fatalf("got %d %v, want 404 MODULE_NOT_ASSIGNED", code, resp)
	}
}

func TestCloseSessionCountsAbsences(t *testing.T) {
	db := setupDB(t)
	f := seed(t, db, 5)
	sessID, shareCode := openSession(t, f)

	// Two students check in, three stay absent.
	att := NewAttendanceHandler()
	for i := 0; i < 2; i++ {
		body := fmt.Sprintf(`{"share_code": %q}`, shareCode)
		code, resp := request(t, att.Mark, http.MethodPost, "/student/attendance/mark", body,
			f.Students[i].UserID, models.RoleStudent)
		if code != http.StatusOK {
			t.Fatalf("mark student %d = %d %v", i, code, resp)
		}
	}

	h := NewSessionHandler()
	code, resp := request(t, h.Close, http.MethodPost, "/teacher/sessions/1/close", "",
		f.TeacherUser.ID, models.RoleTeacher, "id", fmt.Sprint(sessID))
	if code != http.StatusOK {
		t.Fatalf("close = %d %v", code, resp)
	}
	if got := resp["present"].(float64); got != 2 {
		t.Errorf("present = %v, want 2", got)
	}
	if got := resp["absent"].(float64); got != 3 {
		t.Errorf("absent = %v, want 3", got)
	}
	if got := resp["attendance_rate"].(float64); got != 40 {
		t.Errorf("attendance_rate = %v, want 40", got)
	}

	// Absent students gained one absence each; present students none.
	for i, enr := range f.Enrollments {
		var fresh models.Enrollment
		db.First(&fresh, enr.ID)
		want := 1
		if i < 2 {
			want = 0
		}
		if fresh.NumberOfAbsences != want {
			t.Errorf("enrollment %d absences = %d, want %d", enr.ID, fresh.NumberOfAbsences, want)
		}
	}
}

func TestCloseSessionIdempotence(t *testing.T) {
	db := setupDB(t)
	f := seed(t, db, 3)
	sessID, _ := openSession(t, f)

	h := NewSessionHandler()
	code, _ := request(t, h.Close, http.MethodPost, "/x", "",
		f.TeacherUser.ID, models.RoleTeacher, "id", fmt.Sprint(sessID))
	if code != http.StatusOK {
		t.Fatalf("first close = %d", code)
	}

	code, resp := request(t, h.Close, http.MethodPost, "/x", "",
		f.TeacherUser.ID, models.RoleTeacher, "id", fmt.Sprint(sessID))
	if code != http.StatusBadRequest || errCode(resp) != "SESSION_CLOSED" {
		t.Fatalf("second close = %d %v, want 400 SESSION_CLOSED", code, resp)
	}

	// No double counting.
	var fresh models.Enrollment
	db.First(&fresh, f.Enrollments[0].ID)
	if fresh.NumberOfAbsences != 1 {
		t.Fatalf("absences = %d after double close, want 1", fresh.NumberOfAbsences)
	}
}

func TestCloseSessionOwnership(t *testing.T) {
	db := setupDB(t)
	f := seed(t, db, 1)
	sessID, _ := openSession(t, f)
	other := f.otherTeacher(t)

	h := NewSessionHandler()
	code, resp := request(t, h.Close, http.MethodPost, "/x", "",
		other.UserID, models.RoleTeacher, "id", fmt.Sprint(sessID))
	if code != http.StatusForbidden {
		t.Fatalf("close by non-owner = %d %v, want 403", code, resp)
	}

	var sess models.Session
	db.First(&sess, sessID)
	if !sess.IsActive {
		t.Fatal("session closed by non-owner")
	}
}

func TestGetByCodeResolvesOpenSessionsOnly(t *testing.T) {
	db := setupDB(t)
	f := seed(t, db, 1)
	sessID, shareCode := openSession(t, f)

	h := NewSessionHandler()
	code, resp := request(t, h.GetByCode, http.MethodGet, "/x", "",
		f.Students[0].UserID, models.RoleStudent, "code", shareCode)
	if code != http.StatusOK || resp["module_name"] != f.Module.Name {
		t.Fatalf("get by code = %d %v", code, resp)
	}

	request(t, h.Close, http.MethodPost, "/x", "",
		f.TeacherUser.ID, models.RoleTeacher, "id", fmt.Sprint(sessID))

	code, resp = request(t, h.GetByCode, http.MethodGet, "/x", "",
		f.Students[0].UserID, models.RoleStudent, "code", shareCode)
	if code != http.StatusNotFound {
		t.Fatalf("closed session resolved by code: %d %v", code, resp)
	}
}
