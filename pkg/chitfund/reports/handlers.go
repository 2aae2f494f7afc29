package reports

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mikepea/chitfund/pkg/chitfund/apierr"
	"github.com/mikepea/chitfund/pkg/chitfund/auth"
	"github.com/mikepea/chitfund/pkg/chitfund/ledger"
)

// Handler serves the dashboard, auction reports and receipts
type Handler struct {
	ledger *ledger.Ledger
}

// NewHandler creates a new reports handler
func NewHandler(l *ledger.Ledger) *Handler {
	return &Handler{ledger: l}
}

// Dashboard returns owner-wide or personal stats depending on role
func (h *Handler) Dashboard(c *gin.Context) {
	user, _ := auth.GetUser(c)
	c.JSON(http.StatusOK, h.ledger.DashboardStats(user))
}

// Auction returns the payment report for one auction
func (h *Handler) Auction(c *gin.Context) {
	user, _ := auth.GetUser(c)

	report, err := h.ledger.AuctionReport(c.Param("id"), user)
	if err != nil {
		apierr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// Receipts returns the paid payments of one auction
func (h *Handler) Receipts(c *gin.Context) {
	user, _ := auth.GetUser(c)

	report, err := h.ledger.Receipts(c.Param("id"), user)
	if err != nil {
		apierr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// RegisterRoutes registers report routes on an authenticated group
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/dashboard", h.Dashboard)
	rg.GET("/auctions/:id", h.Auction)
	rg.GET("/auctions/:id/receipts", h.Receipts)
}
