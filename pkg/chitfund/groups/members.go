package groups

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mikepea/chitfund/pkg/chitfund/apierr"
)

// LinkMemberRequest represents the request to link a member to a group
type LinkMemberRequest struct {
	MemberID string `json:"memberId" binding:"required"`
}

// ListMembers returns the members linked to a group
func (h *Handler) ListMembers(c *gin.Context) {
	groupID := c.Param("id")
	if _, err := h.ledger.Group(groupID); err != nil {
		apierr.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, h.ledger.MembersInGroup(groupID))
}

// LinkMember links an existing member to a group. Linking twice is a no-op.
func (h *Handler) LinkMember(c *gin.Context) {
	var req LinkMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.ledger.LinkMemberToGroup(c.Request.Context(), c.Param("id"), req.MemberID); err != nil {
		apierr.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, h.ledger.MembersInGroup(c.Param("id")))
}

// UnlinkMember removes a member from a group along with its payments for
// the group's auctions
func (h *Handler) UnlinkMember(c *gin.Context) {
	if err := h.ledger.UnlinkMemberFromGroup(c.Request.Context(), c.Param("id"), c.Param("memberId")); err != nil {
		apierr.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Member unlinked"})
}

// RegisterMemberRoutes registers linkage routes on the given router group
func (h *Handler) RegisterMemberRoutes(rg *gin.RouterGroup) {
	rg.GET("/:id/members", h.ListMembers)
	rg.POST("/:id/members", h.LinkMember)
	rg.DELETE("/:id/members/:memberId", h.UnlinkMember)
}
