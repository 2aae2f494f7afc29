package groups

import (
	"bytes"
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

var (
	ownerUser  = models.User{ID: "owner-1", Name: "Owner", Role: models.RoleOwner}
	memberUser = models.User{ID: "member-1", Name: "Member", Role: models.RoleMember}
)

func setupTestLedger(t *testing.T) *ledger.Ledger {
	l, err := ledger.New(context.Background(), kv.NewMemoryStore(), ledger.Options{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	if err != nil {
		t.Fatalf("Failed to create ledger: %v", err)
	}
	return l
}

func setupTestRouter(l *ledger.Ledger) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := NewHandler(l)

	groups := r.Group("/groups")
	groups.Use(auth.AuthMiddleware())
	handler.RegisterRoutes(groups)

	return r
}

func getAuthHeader(user models.User) string {
	token, _ := auth.GenerateToken(user)
	return "Bearer " + token
}

func doRequest(router *gin.Engine, method, path string, user models.User, body interface{}) *httptest.ResponseRecorder {
	var buf io.Reader
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		buf = bytes.NewBuffer(jsonBody)
	}
	req, _ := http.NewRequest(method, path, buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", getAuthHeader(user))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func createTestGroup(t *testing.T, l *ledger.Ledger, total int) models.Group {
	g, err := l.AddGroup(context.Background(), models.Group{
		Name:                    "Test Scheme",
		TotalMembers:            total,
		ChitAmount:              50000,
		InstallmentAmount:       5000,
		Frequency:               models.FrequencyMonthly,
		LiftedInstallmentAmount: 5500,
	})
	if err != nil {
		t.Fatalf("Failed to create test group: %v", err)
	}
	return g
}

func createTestMember(t *testing.T, l *ledger.Ledger, phone string) models.Member {
	m, err := l.AddMember(context.Background(), models.Member{Name: "Member " + phone, Phone: phone})
	if err != nil {
		t.Fatalf("Failed to create test member: %v", err)
	}
	return m
}

func TestCreateGroup(t *testing.T) {
	l := setupTestLedger(t)
	router := setupTestRouter(l)

	body := CreateGroupRequest{
		Name:              "Test Scheme",
		TotalMembers:      10,
		ChitAmount:        50000,
		InstallmentAmount: 5000,
		Frequency:         models.FrequencyMonthly,
	}
	resp := doRequest(router, "POST", "/groups", ownerUser, body)

	if resp.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", resp.Code, resp.Body.String())
	}

	var response GroupResponse
	json.Unmarshal(resp.Body.Bytes(), &response)

	if response.Name != "Test Scheme" {
		t.Errorf("Expected name 'Test Scheme', got %s", response.Name)
	}
	if response.ID == "" {
		t.Error("Expected an id")
	}
}

func TestCreateGroupInvalid(t *testing.T) {
	l := setupTestLedger(t)
	router := setupTestRouter(l)

	body := CreateGroupRequest{
		Name:              "Bad",
		TotalMembers:      10,
		ChitAmount:        50000,
		InstallmentAmount: 5000,
		Frequency:         "Yearly",
	}
	resp := doRequest(router, "POST", "/groups", ownerUser, body)

	if resp.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", resp.Code)
	}
}

func TestCreateGroupNotOwner(t *testing.T) {
	l := setupTestLedger(t)
	router := setupTestRouter(l)

	resp := doRequest(router, "POST", "/groups", memberUser, CreateGroupRequest{Name: "x"})

	if resp.Code != http.StatusForbidden {
		t.Errorf("Expected status 403, got %d", resp.Code)
	}
}

func TestListGroups(t *testing.T) {
	l := setupTestLedger(t)
	router := setupTestRouter(l)
	g := createTestGroup(t, l, 10)
	m := createTestMember(t, l, "9876543210")
	l.LinkMemberToGroup(context.Background(), g.ID, m.ID)

	resp := doRequest(router, "GET", "/groups", memberUser, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.Code)
	}

	var groups []GroupResponse
	json.Unmarshal(resp.Body.Bytes(), &groups)

	if len(groups) != 1 {
		t.Fatalf("Expected 1 group, got %d", len(groups))
	}
	if groups[0].MemberCount != 1 {
		t.Errorf("Expected member count 1, got %d", groups[0].MemberCount)
	}
}

func TestGetGroupNotFound(t *testing.T) {
	l := setupTestLedger(t)
	router := setupTestRouter(l)

	resp := doRequest(router, "GET", "/groups/missing", ownerUser, nil)
	if resp.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", resp.Code)
	}
}

func TestUpdateGroup(t *testing.T) {
	l := setupTestLedger(t)
	router := setupTestRouter(l)
	g := createTestGroup(t, l, 10)

	resp := doRequest(router, "PUT", "/groups/"+g.ID, ownerUser, map[string]interface{}{"name": "Renamed"})
	if resp.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var response GroupResponse
	json.Unmarshal(resp.Body.Bytes(), &response)
	if response.Name != "Renamed" {
		t.Errorf("Expected name 'Renamed', got %s", response.Name)
	}
	if response.TotalMembers != 10 {
		t.Errorf("Expected total members to be kept, got %d", response.TotalMembers)
	}
}

func TestDeleteGroupRequiresConfirmation(t *testing.T) {
	l := setupTestLedger(t)
	router := setupTestRouter(l)
	g := createTestGroup(t, l, 10)

	resp := doRequest(router, "DELETE", "/groups/"+g.ID, ownerUser, nil)
	if resp.Code != http.StatusPreconditionRequired {
		t.Errorf("Expected status 428, got %d", resp.Code)
	}
	if _, err := l.Group(g.ID); err != nil {
		t.Error("Group should survive an unconfirmed delete")
	}

	resp = doRequest(router, "DELETE", "/groups/"+g.ID+"?confirm=true", ownerUser, nil)
	if resp.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.Code)
	}
	if _, err := l.Group(g.ID); err == nil {
		t.Error("Group should be deleted")
	}
}

func TestLinkAndUnlinkMember(t *testing.T) {
	l := setupTestLedger(t)
	router := setupTestRouter(l)
	g := createTestGroup(t, l, 10)
	m := createTestMember(t, l, "9876543210")

	for i := 0; i < 2; i++ {
		resp := doRequest(router, "POST", "/groups/"+g.ID+"/members", ownerUser, LinkMemberRequest{MemberID: m.ID})
		if resp.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d: %s", resp.Code, resp.Body.String())
		}
	}

	resp := doRequest(router, "GET", "/groups/"+g.ID+"/members", ownerUser, nil)
	var members []models.Member
	json.Unmarshal(resp.Body.Bytes(), &members)
	if len(members) != 1 {
		t.Fatalf("Expected 1 member after linking twice, got %d", len(members))
	}

	resp = doRequest(router, "DELETE", "/groups/"+g.ID+"/members/"+m.ID, ownerUser, nil)
	if resp.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.Code)
	}
	if l.IsMemberInGroup(g.ID, m.ID) {
		t.Error("Member should be unlinked")
	}
}

func TestLinkUnknownMember(t *testing.T) {
	l := setupTestLedger(t)
	router := setupTestRouter(l)
	g := createTestGroup(t, l, 10)

	resp := doRequest(router, "POST", "/groups/"+g.ID+"/members", ownerUser, LinkMemberRequest{MemberID: "ghost"})
	if resp.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", resp.Code)
	}
}

func TestEnrollAndMembership(t *testing.T) {
	l := setupTestLedger(t)
	router := setupTestRouter(l)
	g := createTestGroup(t, l, 1)

	acc, err := l.SignUp(context.Background(), ledger.SignUpRequest{
		Name: "Asha", Phone: "9000000001", Username: "asha", Password: "password123",
	}, models.RoleMember, "")
	if err != nil {
		t.Fatalf("SignUp failed: %v", err)
	}
	user := models.User{ID: acc.ID, Name: acc.Name, Role: models.RoleMember, MemberID: acc.ID}

	resp := doRequest(router, "GET", "/groups/"+g.ID+"/membership", user, nil)
	var membership map[string]interface{}
	json.Unmarshal(resp.Body.Bytes(), &membership)
	if membership["enrolled"] != false {
		t.Errorf("Expected not enrolled, got %v", membership["enrolled"])
	}

	resp = doRequest(router, "POST", "/groups/"+g.ID+"/enroll", user, nil)
	if resp.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", resp.Code, resp.Body.String())
	}

	resp = doRequest(router, "GET", "/groups/"+g.ID+"/membership", user, nil)
	json.Unmarshal(resp.Body.Bytes(), &membership)
	if membership["enrolled"] != true {
		t.Errorf("Expected enrolled, got %v", membership["enrolled"])
	}

	resp = doRequest(router, "POST", "/groups/"+g.ID+"/enroll", user, nil)
	if resp.Code != http.StatusConflict {
		t.Errorf("Expected status 409 for repeat enrollment, got %d", resp.Code)
	}
}

func TestEnrollFullScheme(t *testing.T) {
	l := setupTestLedger(t)
	router := setupTestRouter(l)
	g := createTestGroup(t, l, 1)
	m := createTestMember(t, l, "9876543210")
	l.LinkMemberToGroup(context.Background(), g.ID, m.ID)
	other := createTestMember(t, l, "9876543211")

	user := models.User{ID: other.ID, Role: models.RoleMember, MemberID: other.ID}
	resp := doRequest(router, "POST", "/groups/"+g.ID+"/enroll", user, nil)
	if resp.Code != http.StatusConflict {
		t.Fatalf("Expected status 409, got %d", resp.Code)
	}

	var body map[string]string
	json.Unmarshal(resp.Body.Bytes(), &body)
	if body["error"] != "Scheme is full. Limit is 1 members." {
		t.Errorf("Unexpected error message %q", body["error"])
	}
}
