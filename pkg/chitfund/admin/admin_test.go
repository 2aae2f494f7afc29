package admin

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/mikepea/chitfund/pkg/chitfund/accounts"
	"github.com/mikepea/chitfund/pkg/chitfund/auth"
	"github.com/mikepea/chitfund/pkg/chitfund/kv"
	"github.com/mikepea/chitfund/pkg/chitfund/ledger"
	"github.com/mikepea/chitfund/pkg/chitfund/models"
)

var ownerUser = models.User{ID: "owner-1", Name: "Owner", Role: models.RoleOwner}

func setupTestLedger(t *testing.T) *ledger.Ledger {
	l, err := ledger.New(context.Background(), kv.NewMemoryStore(), ledger.Options{
		OwnerSecretCode: "owner-code",
		Logger:          slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	if err != nil {
		t.Fatalf("Failed to create ledger: %v", err)
	}
	return l
}

func setupTestRouter(l *ledger.Ledger) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	rg := r.Group("/admin")
	rg.Use(auth.AuthMiddleware(), auth.RequireOwner())
	NewHandler(l).RegisterRoutes(rg)
	return r
}

func doRequest(router *gin.Engine, method, path string, user models.User) *httptest.ResponseRecorder {
	token, _ := auth.GenerateToken(user)
	req, _ := http.NewRequest(method, path, nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func createTestAccount(t *testing.T, l *ledger.Ledger, username, phone string, role models.Role) models.AuthAccount {
	secret := ""
	if role == models.RoleOwner {
		secret = "owner-code"
	}
	acc, err := l.SignUp(context.Background(), ledger.SignUpRequest{
		Name: username, Phone: phone, Username: username, Password: "password123",
	}, role, secret)
	if err != nil {
		t.Fatalf("Failed to create test account: %v", err)
	}
	return acc
}

func TestListAccounts(t *testing.T) {
	l := setupTestLedger(t)
	router := setupTestRouter(l)
	createTestAccount(t, l, "owen", "9000000001", models.RoleOwner)
	createTestAccount(t, l, "asha", "9000000002", models.RoleMember)

	resp := doRequest(router, "GET", "/admin/accounts", ownerUser)
	if resp.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.Code)
	}
	var all []accounts.AccountResponse
	json.Unmarshal(resp.Body.Bytes(), &all)
	if len(all) != 2 {
		t.Fatalf("Expected 2 accounts, got %d", len(all))
	}
	if containsHash(resp.Body.Bytes()) {
		t.Error("Response must not contain password hashes")
	}

	resp = doRequest(router, "GET", "/admin/accounts?pending=true", ownerUser)
	var pending []accounts.AccountResponse
	json.Unmarshal(resp.Body.Bytes(), &pending)
	if len(pending) != 1 || pending[0].Username != "asha" {
		t.Errorf("Expected only asha pending, got %+v", pending)
	}

	resp = doRequest(router, "GET", "/admin/accounts?q=OWE", ownerUser)
	var found []accounts.AccountResponse
	json.Unmarshal(resp.Body.Bytes(), &found)
	if len(found) != 1 || found[0].Username != "owen" {
		t.Errorf("Expected search to find owen, got %+v", found)
	}
}

func containsHash(body []byte) bool {
	var rows []map[string]interface{}
	json.Unmarshal(body, &rows)
	for _, r := range rows {
		if _, ok := r["passwordHash"]; ok {
			return true
		}
	}
	return false
}

func TestApproveAccount(t *testing.T) {
	l := setupTestLedger(t)
	router := setupTestRouter(l)
	acc := createTestAccount(t, l, "asha", "9000000002", models.RoleMember)

	if _, result := l.Login(context.Background(), "asha", "password123"); result != ledger.LoginPending {
		t.Fatalf("Expected pending login before approval, got %s", result)
	}

	resp := doRequest(router, "POST", "/admin/accounts/"+acc.ID+"/approve", ownerUser)
	if resp.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.Code)
	}
	var approved accounts.AccountResponse
	json.Unmarshal(resp.Body.Bytes(), &approved)
	if !approved.IsApproved {
		t.Error("Expected account to be approved")
	}

	if _, result := l.Login(context.Background(), "asha", "password123"); result != ledger.LoginSuccess {
		t.Errorf("Expected successful login after approval, got %s", result)
	}
}

func TestApproveUnknownAccount(t *testing.T) {
	l := setupTestLedger(t)
	router := setupTestRouter(l)

	resp := doRequest(router, "POST", "/admin/accounts/ghost/approve", ownerUser)
	if resp.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", resp.Code)
	}
}

func TestDeleteAccount(t *testing.T) {
	l := setupTestLedger(t)
	router := setupTestRouter(l)
	acc := createTestAccount(t, l, "asha", "9000000002", models.RoleMember)

	resp := doRequest(router, "DELETE", "/admin/accounts/"+acc.ID, ownerUser)
	if resp.Code != http.StatusPreconditionRequired {
		t.Errorf("Expected status 428, got %d", resp.Code)
	}

	resp = doRequest(router, "DELETE", "/admin/accounts/"+acc.ID+"?confirm=true", ownerUser)
	if resp.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.Code)
	}
	if _, err := l.Account(acc.ID); err == nil {
		t.Error("Account should be deleted")
	}
}

func TestDeleteSelf(t *testing.T) {
	l := setupTestLedger(t)
	router := setupTestRouter(l)
	acc := createTestAccount(t, l, "owen", "9000000001", models.RoleOwner)

	self := models.User{ID: acc.ID, Role: models.RoleOwner}
	resp := doRequest(router, "DELETE", "/admin/accounts/"+acc.ID+"?confirm=true", self)
	if resp.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", resp.Code)
	}
}

func TestStatsAndMemberForbidden(t *testing.T) {
	l := setupTestLedger(t)
	router := setupTestRouter(l)
	createTestAccount(t, l, "owen", "9000000001", models.RoleOwner)
	createTestAccount(t, l, "asha", "9000000002", models.RoleMember)

	resp := doRequest(router, "GET", "/admin/stats", ownerUser)
	var stats StatsResponse
	json.Unmarshal(resp.Body.Bytes(), &stats)
	want := StatsResponse{TotalAccounts: 2, OwnerAccounts: 1, MemberAccounts: 1, PendingAccounts: 1}
	if stats != want {
		t.Errorf("Expected %+v, got %+v", want, stats)
	}

	member := models.User{ID: "m", Role: models.RoleMember}
	resp = doRequest(router, "GET", "/admin/stats", member)
	if resp.Code != http.StatusForbidden {
		t.Errorf("Expected status 403, got %d", resp.Code)
	}
}
