package admin

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mikepea/chitfund/pkg/chitfund/accounts"
	"github.com/mikepea/chitfund/pkg/chitfund/apierr"
	"github.com/mikepea/chitfund/pkg/chitfund/auth"
	"github.com/mikepea/chitfund/pkg/chitfund/ledger"
	"github.com/mikepea/chitfund/pkg/chitfund/models"
)

// Handler handles account administration requests
type Handler struct {
	ledger *ledger.Ledger
}

// NewHandler creates a new admin handler
func NewHandler(l *ledger.Ledger) *Handler {
	return &Handler{ledger: l}
}

// StatsResponse represents account statistics
type StatsResponse struct {
	TotalAccounts   int `json:"totalAccounts"`
	OwnerAccounts   int `json:"ownerAccounts"`
	MemberAccounts  int `json:"memberAccounts"`
	PendingAccounts int `json:"pendingAccounts"`
}

// ListAccounts returns all accounts
func (h *Handler) ListAccounts(c *gin.Context) {
	search := strings.ToLower(c.Query("q"))
	role := c.Query("role")
	pendingOnly := c.Query("pending") == "true"

	responses := []accounts.AccountResponse{}
	for _, a := range h.ledger.Accounts() {
		if role != "" && string(a.Role) != role {
			continue
		}
		if pendingOnly && a.IsApproved {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(a.Name), search) &&
			!strings.Contains(strings.ToLower(a.Username), search) &&
			!strings.Contains(a.Phone, search) {
			continue
		}
		responses = append(responses, accounts.NewAccountResponse(a))
	}

	c.JSON(http.StatusOK, responses)
}

// GetAccount returns a single account
func (h *Handler) GetAccount(c *gin.Context) {
	acc, err := h.ledger.Account(c.Param("id"))
	if err != nil {
		apierr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, accounts.NewAccountResponse(acc))
}

// ApproveAccount lets a pending member log in
func (h *Handler) ApproveAccount(c *gin.Context) {
	id := c.Param("id")
	if err := h.ledger.ApproveAccount(c.Request.Context(), id); err != nil {
		apierr.Respond(c, err)
		return
	}

	acc, err := h.ledger.Account(id)
	if err != nil {
		apierr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, accounts.NewAccountResponse(acc))
}

// DeleteAccount removes an account
func (h *Handler) DeleteAccount(c *gin.Context) {
	id := c.Param("id")

	// Prevent an owner from deleting their own login
	if currentUserID, _ := auth.GetUserID(c); currentUserID == id {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot delete yourself"})
		return
	}

	if !apierr.Confirmed(c) {
		return
	}

	if err := h.ledger.DeleteAuthAccount(c.Request.Context(), id); err != nil {
		apierr.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Account deleted successfully"})
}

// GetStats returns account counts
func (h *Handler) GetStats(c *gin.Context) {
	var stats StatsResponse
	for _, a := range h.ledger.Accounts() {
		stats.TotalAccounts++
		if a.Role == models.RoleOwner {
			stats.OwnerAccounts++
		} else {
			stats.MemberAccounts++
		}
		if !a.IsApproved {
			stats.PendingAccounts++
		}
	}
	c.JSON(http.StatusOK, stats)
}

// RegisterRoutes registers admin routes on an owner-only router group
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/stats", h.GetStats)
	rg.GET("/accounts", h.ListAccounts)
	rg.GET("/accounts/:id", h.GetAccount)
	rg.POST("/accounts/:id/approve", h.ApproveAccount)
	rg.DELETE("/accounts/:id", h.DeleteAccount)
}
