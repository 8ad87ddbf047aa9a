package handlers

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/Sidali-Djeghbal/hodory-attendance-system/models"
)

func TestMarkReadOwnership(t *testing.T) {
	db := setupDB(t)
	f := seed(t, db, 2)

	n := models.Notification{
		UserID: f.Students[0].UserID,
		Title:  "Justification Approved",
		Type:   models.NotifJustificationApproved,
	}
	mustCreate(t, db, &n)

	h := NewNotificationHandler()
	code, resp := request(t, h.MarkRead, http.MethodPost, "/x", "",
		f.Students[1].UserID, models.RoleStudent, "id", fmt.Sprint(n.ID))
	if code != http.StatusForbidden {
		t.Fatalf("mark-read of someone else's notification = %d %v, want 403", code, resp)
	}

	code, resp = request(t, h.MarkRead, http.MethodPost, "/x", "",
		f.Students[0].UserID, models.RoleStudent, "id", fmt.Sprint(n.ID))
	if code != http.StatusOK || resp["is_read"] != true {
		t.Fatalf("mark-read by owner = %d %v", code, resp)
	}
}

func TestUnreadCountAndMarkAllRead(t *testing.T) {
	db := setupDB(t)
	f := seed(t, db, 2)

	for i := 0; i < 3; i++ {
		mustCreate(t, db, &models.Notification{
			UserID: f.Students[0].UserID,
			Title:  "Justification Rejected",
			Type:   models.NotifJustificationRejected,
		})
	}
	mustCreate(t, db, &models.Notification{
		UserID: f.Students[1].UserID,
		Title:  "Justification Submitted",
		Type:   models.NotifJustificationSubmitted,
	})

	h := NewNotificationHandler()
	code, resp := request(t, h.UnreadCount, http.MethodGet, "/x", "",
		f.Students[0].UserID, models.RoleStudent)
	if code != http.StatusOK || resp["count"].(float64) != 3 {
		t.Fatalf("unread count = %d %v, want 3", code, resp)
	}

	code, resp = request(t, h.MarkAllRead, http.MethodPost, "/x", "",
		f.Students[0].UserID, models.RoleStudent)
	if code != http.StatusOK || resp["updated"].(float64) != 3 {
		t.Fatalf("mark-all-read = %d %v, want 3 updated", code, resp)
	}

	// The other student's inbox is untouched.
	code, resp = request(t, h.UnreadCount, http.MethodGet, "/x", "",
		f.Students[1].UserID, models.RoleStudent)
	if code != http.StatusOK || resp["count"].(float64) != 1 {
		t.Fatalf("other inbox count = %d %v, want 1", code, resp)
	}
}
