package rest

import (
	"errors"
	"net/http"

	"github.com/arenahub/server/game/social"
	mw "github.com/arenahub/server/middleware"
	"github.com/gin-gonic/gin"
)

// SocialHandler handles friends and social REST endpoints.
type SocialHandler struct {
	svc *social.Service
}

// NewSocialHandler creates a new SocialHandler.
func NewSocialHandler(svc *social.Service) *SocialHandler {
	return &SocialHandler{svc: svc}
}

// ListFriends handles GET /api/social/friends.
func (h *SocialHandler) ListFriends(c *gin.Context) {
	friends, err := h.svc.ListFriends(mw.GetUsername(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"friends": friends})
}

// ListRequests handles GET /api/social/requests.
func (h *SocialHandler) ListRequests(c *gin.Context) {
	senders, err := h.svc.ListIncoming(mw.GetUsername(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"requests": senders})
}

// Search handles GET /api/social/search?name=<username>.
func (h *SocialHandler) Search(c *gin.Context) {
	name := c.Query("name")
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing name"})
		return
	}
	result, err := h.svc.Search(mw.GetUsername(c), name)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"name": name, "result": result})
}

// SendRequest handles POST /api/social/requests.
func (h *SocialHandler) SendRequest(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.svc.SendRequest(mw.GetUsername(c), req.Username); err != nil {
		status, msg := socialError(err)
		c.JSON(status, gin.H{"error": msg})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "request sent"})
}

// Accept handles POST /api/social/requests/:username/accept.
func (h *SocialHandler) Accept(c *gin.Context) {
	if err := h.svc.Accept(mw.GetUsername(c), c.Param("username")); err != nil {
		status, msg := socialError(err)
		c.JSON(status, gin.H{"error": msg})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "accepted"})
}

// Decline handles POST /api/social/requests/:username/decline.
func (h *SocialHandler) Decline(c *gin.Context) {
	if err := h.svc.Decline(mw.GetUsername(c), c.Param("username")); err != nil {
		status, msg := socialError(err)
		c.JSON(status, gin.H{"error": msg})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "declined"})
}

// RemoveFriend handles DELETE /api/social/friends/:username.
func (h *SocialHandler) RemoveFriend(c *gin.Context) {
	if err := h.svc.RemoveFriend(mw.GetUsername(c), c.Param("username")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "removed"})
}

// Block handles POST /api/social/block/:username.
func (h *SocialHandler) Block(c *gin.Context) {
	if err := h.svc.Block(mw.GetUsername(c), c.Param("username")); err != nil {
		status, msg := socialError(err)
		c.JSON(status, gin.H{"error": msg})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "blocked"})
}

// socialError maps a ledger rejection to an HTTP status and message.
// Anything unrecognized is a storage failure.
func socialError(err error) (int, string) {
	switch {
	case errors.Is(err, social.ErrSelfRequest):
		return http.StatusBadRequest, "cannot friend yourself"
	case errors.Is(err, social.ErrNotFound):
		return http.StatusNotFound, "user not found"
	case errors.Is(err, social.ErrBlocked):
		return http.StatusForbidden, "blocked by this user"
	case errors.Is(err, social.ErrAlreadyFriends):
		return http.StatusConflict, "already friends"
	case errors.Is(err, social.ErrRequestExists):
		return http.StatusConflict, "request already pending"
	case errors.Is(err, social.ErrNoPendingRequest):
		return http.StatusNotFound, "request not found"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}
