package notifications

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/mikepea/chitfund/pkg/chitfund/auth"
	"github.com/mikepea/chitfund/pkg/chitfund/kv"
	"github.com/mikepea/chitfund/pkg/chitfund/ledger"
	"github.com/mikepea/chitfund/pkg/chitfund/models"
)

func setupTestRouter(t *testing.T) (*gin.Engine, *ledger.Ledger) {
	l, err := ledger.New(context.Background(), kv.NewMemoryStore(), ledger.Options{
		SeedAdmin: ledger.SeedAdmin{Username: "admin", ID: "admin-seed"},
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	if err != nil {
		t.Fatalf("Failed to create ledger: %v", err)
	}

	gin.SetMode(gin.TestMode)
	r := gin.New()
	rg := r.Group("/notifications")
	rg.Use(auth.AuthMiddleware())
	NewHandler(l).RegisterRoutes(rg)
	return r, l
}

func doRequest(router *gin.Engine, method, path string, user models.User) *httptest.ResponseRecorder {
	token, _ := auth.GenerateToken(user)
	req, _ := http.NewRequest(method, path, nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

// enroll produces one notification for the member and one for the seed admin
func enroll(t *testing.T, l *ledger.Ledger) models.User {
	ctx := context.Background()
	g, err := l.AddGroup(ctx, models.Group{Name: "Gold", TotalMembers: 5, ChitAmount: 1000, InstallmentAmount: 200, Frequency: models.FrequencyWeekly})
	if err != nil {
		t.Fatalf("AddGroup failed: %v", err)
	}
	m, err := l.AddMember(ctx, models.Member{Name: "Ravi", Phone: "9876543210"})
	if err != nil {
		t.Fatalf("AddMember failed: %v", err)
	}
	if _, err := l.EnrollMember(ctx, g.ID, m.ID); err != nil {
		t.Fatalf("EnrollMember failed: %v", err)
	}
	return models.User{ID: m.ID, Role: models.RoleMember, MemberID: m.ID}
}

func TestListAndMarkRead(t *testing.T) {
	router, l := setupTestRouter(t)
	member := enroll(t, l)

	resp := doRequest(router, "GET", "/notifications", member)
	if resp.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.Code)
	}
	var list []models.Notification
	json.Unmarshal(resp.Body.Bytes(), &list)
	if len(list) != 1 || list[0].Title != "Scheme Enrollment Successful" {
		t.Fatalf("Unexpected notifications %+v", list)
	}

	resp = doRequest(router, "POST", "/notifications/"+list[0].ID+"/read", member)
	if resp.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.Code)
	}
	if !l.NotificationsFor(member.ID)[0].Read {
		t.Error("Notification should be read")
	}
}

func TestMarkReadOtherUsersNotification(t *testing.T) {
	router, l := setupTestRouter(t)
	member := enroll(t, l)

	adminNote := l.NotificationsFor("admin-seed")[0]
	resp := doRequest(router, "POST", "/notifications/"+adminNote.ID+"/read", member)
	if resp.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", resp.Code)
	}
	if l.NotificationsFor("admin-seed")[0].Read {
		t.Error("Another user's notification must not change")
	}
}
