package groups

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mikepea/chitfund/pkg/chitfund/apierr"
	"github.com/mikepea/chitfund/pkg/chitfund/auth"
	"github.com/mikepea/chitfund/pkg/chitfund/ledger"
	"github.com/mikepea/chitfund/pkg/chitfund/models"
)

// Handler handles group-related requests
type Handler struct {
	ledger *ledger.Ledger
}

// NewHandler creates a new groups handler
func NewHandler(l *ledger.Ledger) *Handler {
	return &Handler{ledger: l}
}

// CreateGroupRequest represents the request to create a group
type CreateGroupRequest struct {
	Name                    string           `json:"name" binding:"required"`
	TotalMembers            int              `json:"totalMembers" binding:"required"`
	ChitAmount              float64          `json:"chitAmount" binding:"required"`
	InstallmentAmount       float64          `json:"installmentAmount" binding:"required"`
	Frequency               models.Frequency `json:"frequency" binding:"required"`
	StartDate               string           `json:"startDate"`
	LiftedInstallmentAmount float64          `json:"liftedInstallmentAmount"`
}

// GroupResponse represents a group in API responses
type GroupResponse struct {
	models.Group
	MemberCount int `json:"memberCount"`
}

func (h *Handler) response(g models.Group) GroupResponse {
	return GroupResponse{Group: g, MemberCount: len(h.ledger.MembersInGroup(g.ID))}
}

// List returns every group with its linked member count
func (h *Handler) List(c *gin.Context) {
	all := h.ledger.Groups()

	groups := make([]GroupResponse, len(all))
	for i, g := range all {
		groups[i] = h.response(g)
	}

	c.JSON(http.StatusOK, groups)
}

// Create creates a new group
func (h *Handler) Create(c *gin.Context) {
	var req CreateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	group, err := h.ledger.AddGroup(c.Request.Context(), models.Group{
		Name:                    req.Name,
		TotalMembers:            req.TotalMembers,
		ChitAmount:              req.ChitAmount,
		InstallmentAmount:       req.InstallmentAmount,
		Frequency:               req.Frequency,
		StartDate:               req.StartDate,
		LiftedInstallmentAmount: req.LiftedInstallmentAmount,
	})
	if err != nil {
		apierr.Respond(c, err)
		return
	}

	c.JSON(http.StatusCreated, h.response(group))
}

// Get returns a specific group
func (h *Handler) Get(c *gin.Context) {
	group, err := h.ledger.Group(c.Param("id"))
	if err != nil {
		apierr.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, h.response(group))
}

// Update merges the supplied fields into a group
func (h *Handler) Update(c *gin.Context) {
	var patch ledger.GroupPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	group, err := h.ledger.UpdateGroup(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		apierr.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, h.response(group))
}

// Delete deletes a group with its linkage, auctions and payments
func (h *Handler) Delete(c *gin.Context) {
	if !apierr.Confirmed(c) {
		return
	}

	if err := h.ledger.DeleteGroup(c.Request.Context(), c.Param("id")); err != nil {
		apierr.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Group deleted"})
}

// Membership reports whether the session user is enrolled in the group
func (h *Handler) Membership(c *gin.Context) {
	userID, _ := auth.GetUserID(c)
	groupID := c.Param("id")

	if _, err := h.ledger.Group(groupID); err != nil {
		apierr.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"groupId": groupID, "enrolled": h.ledger.IsMemberInGroup(groupID, userID)})
}

// Enroll enrolls the session user into the group
func (h *Handler) Enroll(c *gin.Context) {
	userID, _ := auth.GetUserID(c)

	member, err := h.ledger.EnrollMember(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		apierr.Respond(c, err)
		return
	}

	c.JSON(http.StatusCreated, member)
}

// RegisterRoutes registers group routes on an authenticated router group
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.GET("/:id", h.Get)
	rg.GET("/:id/membership", h.Membership)
	rg.POST("/:id/enroll", h.Enroll)

	owner := rg.Group("", auth.RequireOwner())
	owner.POST("", h.Create)
	owner.PUT("/:id", h.Update)
	owner.DELETE("/:id", h.Delete)
	h.RegisterMemberRoutes(owner)
}
