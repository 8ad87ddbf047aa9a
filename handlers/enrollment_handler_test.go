package handlers

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/Sidali-Djeghbal/hodory-attendance-system/models"
)

func TestExcludePropagation(t *testing.T) {
	db := setupDB(t)
	f := seed(t, db, 1)

	// Two sessions: the student attended the first, missed the second.
	sess1, code1 := openSession(t, f)
	att := NewAttendanceHandler()
	request(t, att.Mark, http.MethodPost, "/x", markBody(code1),
		f.Students[0].UserID, models.RoleStudent)
	sess2, _ := openSession(t, f)

	h := NewEnrollmentHandler()
	code, resp := request(t, h.Exclude, http.MethodPost, "/x", "",
		1, models.RoleAdmin, "id", fmt.Sprint(f.Enrollments[0].ID))
	if code != http.StatusOK {
		t.Fatalf("exclude = %d %v", code, resp)
	}

	// Invariant: nothing of this enrollment is left ABSENT, and PRESENT
	// records were not touched.
	var n int64
	db.Model(&models.AttendanceRecord{}).
		Where("enrollment_id = ? AND status = ?", f.Enrollments[0].ID, models.AttendanceAbsent).
		Count(&n)
	if n != 0 {
		t.Fatalf("%d records still absent after exclusion", n)
	}

	var attended models.AttendanceRecord
	if err := db.Where("session_id = ?", sess1).First(&attended).Error; err != nil {
		t.Fatal(err)
	}
	if attended.Status != models.AttendancePresent {
		t.Errorf("attended session became %s, want present", attended.Status)
	}
	var missed models.AttendanceRecord
	if err := db.Where("session_id = ?", sess2).First(&missed).Error; err != nil {
		t.Fatal(err)
	}
	if missed.Status != models.AttendanceExcluded {
		t.Errorf("missed session became %s, want excluded", missed.Status)
	}
}

func TestExcludeTwiceFails(t *testing.T) {
	db := setupDB(t)
	f := seed(t, db, 1)

	h := NewEnrollmentHandler()
	id := fmt.Sprint(f.Enrollments[0].ID)
	request(t, h.Exclude, http.MethodPost, "/x", "", 1, models.RoleAdmin, "id", id)
	code, resp := request(t, h.Exclude, http.MethodPost, "/x", "", 1, models.RoleAdmin, "id", id)
	if code != http.StatusBadRequest || errCode(resp) != "ALREADY_EXCLUDED" {
		t.Fatalf("got %d %v, want 400 ALREADY_EXCLUDED", code, resp)
	}
}

func TestReinstateClearsFlagOnly(t *testing.T) {
	db := setupDB(t)
	f := seed(t, db, 1)
	openSession(t, f)

	h := NewEnrollmentHandler()
	id := fmt.Sprint(f.Enrollments[0].ID)
	request(t, h.Exclude, http.MethodPost, "/x", "", 1, models.RoleAdmin, "id", id)

	code, resp := request(t, h.Reinstate, http.MethodPost, "/x", "", 1, models.RoleAdmin, "id", id)
	if code != http.StatusOK || resp["is_excluded"] != false {
		t.Fatalf("reinstate = %d %v", code, resp)
	}

	// Records stay EXCLUDED; reinstatement is not retroactive.
	var n int64
	db.Model(&models.AttendanceRecord{}).
		Where("enrollment_id = ? AND status = ?", f.Enrollments[0].ID, models.AttendanceExcluded).
		Count(&n)
	if n != 1 {
		t.Fatalf("excluded records = %d after reinstate, want 1", n)
	}
}

func TestReinstateRequiresExclusion(t *testing.T) {
	db := setupDB(t)
	f := seed(t, db, 1)

	h := NewEnrollmentHandler()
	code, resp := request(t, h.Reinstate, http.MethodPost, "/x", "",
		1, models.RoleAdmin, "id", fmt.Sprint(f.Enrollments[0].ID))
	if code != http.StatusBadRequest || errCode(resp) != "NOT_EXCLUDED" {
		t.Fatalf("got %d %v, want 400 NOT_EXCLUDED", code, resp)
	}
}

func TestEnrollDuplicateConflict(t *testing.T) {
	db := setupDB(t)
	f := seed(t, db, 1)

	h := NewEnrollmentHandler()
	body := fmt.Sprintf(`{"student_id": %d, "module_id": %d}`, f.Students[0].ID, f.Module.ID)
	code, resp := request(t, h.Enroll, http.MethodPost, "/x", body, 1, models.RoleAdmin)
	if code != http.StatusConflict || errCode(resp) != "ALREADY_ENROLLED" {
		t.Fatalf("got %d %v, want 409 ALREADY_ENROLLED", code, resp)
	}
}

func TestEnrollExcludedReinstates(t *testing.T) {
	db := setupDB(t)
	f := seed(t, db, 1)
	db.Model(&f.Enrollments[0]).Update("is_excluded", true)

	h := NewEnrollmentHandler()
	body := fmt.Sprintf(`{"student_id": %d, "module_id": %d}`, f.Students[0].ID, f.Module.ID)
	code, resp := request(t, h.Enroll, http.MethodPost, "/x", body, 1, models.RoleAdmin)
	if code != http.StatusCreated || resp["is_excluded"] != false {
		t.Fatalf("got %d %v, want reinstated enrollment", code, resp)
	}
}

func TestBulkEnrollPartialFailure(t *testing.T) {
	db := setupDB(t)
	f := seed(t, db, 2) // both already enrolled by seed

	u := models.User{Email: "new@univ.dz", FullName: "New Student", Password: "x", Role: models.RoleStudent, IsActive: true}
	mustCreate(t, db, &u)
	s := models.Student{UserID: u.ID, LevelID: f.Level.ID}
	mustCreate(t, db, &s)

	h := NewEnrollmentHandler()
	body := fmt.Sprintf(`{"student_ids": [%d, %d, 9999], "module_id": %d}`,
		s.ID, f.Students[0].ID, f.Module.ID)
	code, resp := request(t, h.BulkEnroll, http.MethodPost, "/x", body, 1, models.RoleAdmin)
	if code != http.StatusOK {
		t.Fatalf("bulk enroll = %d %v", code, resp)
	}
	if got := len(resp["enrolled"].([]any)); got != 1 {
		t.Errorf("enrolled %d, want 1", got)
	}
	if got := len(resp["failed"].([]any)); got != 2 {
		t.Errorf("failed %d, want 2 (duplicate and unknown)", got)
	}
}

func TestUnenrollCascades(t *testing.T) {
	db := setupDB(t)
	f := seed(t, db, 1)
	sessID, _ := openSession(t, f)

	var rec models.AttendanceRecord
	db.Where("session_id = ?", sessID).First(&rec)
	mustCreate(t, db, &models.Justification{
		AttendanceRecordID: rec.ID, Comment: "sick", Status: models.JustificationPending,
	})

	h := NewEnrollmentHandler()
	code, resp := request(t, h.Unenroll, http.MethodDelete, "/x", "",
		1, models.RoleAdmin, "id", fmt.Sprint(f.Enrollments[0].ID))
	if code != http.StatusOK {
		t.Fatalf("unenroll = %d %v", code, resp)
	}

	var n int64
	db.Model(&models.AttendanceRecord{}).Where("enrollment_id = ?", f.Enrollments[0].ID).Count(&n)
	if n != 0 {
		t.Errorf("%d attendance records remain", n)
	}
	db.Model(&models.Justification{}).Where("attendance_record_id = ?", rec.ID).Count(&n)
	if n != 0 {
		t.Errorf("%d justifications remain", n)
	}
}
