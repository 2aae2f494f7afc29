package members

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mikepea/chitfund/pkg/chitfund/apierr"
	"github.com/mikepea/chitfund/pkg/chitfund/auth"
	"github.com/mikepea/chitfund/pkg/chitfund/ledger"
	"github.com/mikepea/chitfund/pkg/chitfund/models"
)

// Handler handles member record requests
type Handler struct {
	ledger *ledger.Ledger
}

// NewHandler creates a new members handler
func NewHandler(l *ledger.Ledger) *Handler {
	return &Handler{ledger: l}
}

// CreateMemberRequest represents the request to create a member
type CreateMemberRequest struct {
	Name    string `json:"name" binding:"required"`
	Phone   string `json:"phone" binding:"required"`
	Address string `json:"address"`
}

// List returns all members
func (h *Handler) List(c *gin.Context) {
	c.JSON(http.StatusOK, h.ledger.Members())
}

// Get returns a specific member
func (h *Handler) Get(c *gin.Context) {
	member, err := h.ledger.Member(c.Param("id"))
	if err != nil {
		apierr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, member)
}

// Create adds a member record
func (h *Handler) Create(c *gin.Context) {
	var req CreateMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	member, err := h.ledger.AddMember(c.Request.Context(), models.Member{
		Name:    req.Name,
		Phone:   req.Phone,
		Address: req.Address,
	})
	if err != nil {
		apierr.Respond(c, err)
		return
	}

	c.JSON(http.StatusCreated, member)
}

// Update merges the supplied fields into a member
func (h *Handler) Update(c *gin.Context) {
	var patch ledger.MemberPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	member, err := h.ledger.UpdateMember(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		apierr.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, member)
}

// Delete removes a member from every group along with the auctions it won
// and its payments
func (h *Handler) Delete(c *gin.Context) {
	if !apierr.Confirmed(c) {
		return
	}

	if err := h.ledger.DeleteMember(c.Request.Context(), c.Param("id")); err != nil {
		apierr.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Member deleted"})
}

// RegisterRoutes registers member routes on an authenticated router group
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.GET("/:id", h.Get)

	owner := rg.Group("", auth.RequireOwner())
	owner.POST("", h.Create)
	owner.PUT("/:id", h.Update)
	owner.DELETE("/:id", h.Delete)
}
