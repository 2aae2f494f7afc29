package auctions

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mikepea/chitfund/pkg/chitfund/apierr"
	"github.com/mikepea/chitfund/pkg/chitfund/auth"
	"github.com/mikepea/chitfund/pkg/chitfund/ledger"
	"github.com/mikepea/chitfund/pkg/chitfund/models"
)

// Handler handles auction and payment requests
type Handler struct {
	ledger *ledger.Ledger
}

// NewHandler creates a new auctions handler
func NewHandler(l *ledger.Ledger) *Handler {
	return &Handler{ledger: l}
}

// RecordAuctionRequest represents the request to record an auction
type RecordAuctionRequest struct {
	GroupID        string  `json:"groupId" binding:"required"`
	WinnerMemberID string  `json:"winnerMemberId" binding:"required"`
	BidAmount      float64 `json:"bidAmount"`
	Month          int     `json:"month" binding:"required"`
}

// RecordAuctionResponse is the stored auction with its payment batch
type RecordAuctionResponse struct {
	Auction  models.Auction   `json:"auction"`
	Payments []models.Payment `json:"payments"`
}

// List returns the auctions of the group named by ?group_id=
func (h *Handler) List(c *gin.Context) {
	groupID := c.Query("group_id")
	if groupID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "group_id is required"})
		return
	}
	if _, err := h.ledger.Group(groupID); err != nil {
		apierr.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, h.ledger.AuctionsByGroup(groupID))
}

// Record stores an auction and creates a Pending payment for every member
// linked to the group
func (h *Handler) Record(c *gin.Context) {
	var req RecordAuctionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	auction, payments, err := h.ledger.RecordAuction(c.Request.Context(), ledger.AuctionInput{
		GroupID:        req.GroupID,
		WinnerMemberID: req.WinnerMemberID,
		BidAmount:      req.BidAmount,
		Month:          req.Month,
	})
	if err != nil {
		apierr.Respond(c, err)
		return
	}

	c.JSON(http.StatusCreated, RecordAuctionResponse{Auction: auction, Payments: payments})
}

// Payments returns an auction's payments. Members only see their own.
func (h *Handler) Payments(c *gin.Context) {
	user, _ := auth.GetUser(c)
	auctionID := c.Param("id")

	if user.IsOwner() {
		if _, err := h.ledger.Auction(auctionID); err != nil {
			apierr.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, h.ledger.PaymentsByAuction(auctionID))
		return
	}

	report, err := h.ledger.AuctionReport(auctionID, user)
	if err != nil {
		apierr.Respond(c, err)
		return
	}
	payments := make([]models.Payment, len(report.Rows))
	for i, row := range report.Rows {
		payments[i] = row.Payment
	}
	c.JSON(http.StatusOK, payments)
}

// TogglePayment flips a payment between Pending and Paid
func (h *Handler) TogglePayment(c *gin.Context) {
	payment, err := h.ledger.TogglePaymentStatus(c.Request.Context(), c.Param("id"), c.Param("memberId"))
	if err != nil {
		apierr.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, payment)
}

// RegisterRoutes registers auction routes on an authenticated router group
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.GET("/:id/payments", h.Payments)

	owner := rg.Group("", auth.RequireOwner())
	owner.POST("", h.Record)
	owner.POST("/:id/payments/:memberId/toggle", h.TogglePayment)
}
