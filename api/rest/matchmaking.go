package rest

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/arenahub/server/cache"
	"github.com/arenahub/server/game/matchmaking"
	mw "github.com/arenahub/server/middleware"
	"github.com/arenahub/server/model"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// MatchHandler handles matchmaking queue and match REST endpoints.
type MatchHandler struct {
	svc   *matchmaking.Service
	db    *gorm.DB
	cache cache.Cache
}

// NewMatchHandler creates a new MatchHandler.
func NewMatchHandler(svc *matchmaking.Service, db *gorm.DB, c cache.Cache) *MatchHandler {
	return &MatchHandler{svc: svc, db: db, cache: c}
}

// JoinQueue handles POST /api/queue/join. The caller is enqueued and a
// pairing attempt runs immediately; when the join completes a pair, the
// fresh match is returned in the response.
func (h *MatchHandler) JoinQueue(c *gin.Context) {
	me := mw.GetUsername(c)

	if err := h.svc.Enqueue(me); err != nil {
		if errors.Is(err, matchmaking.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		}
		return
	}

	match, err := h.svc.TryPair()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	if match == nil {
		c.JSON(http.StatusOK, gin.H{"queued": true})
		return
	}
	c.JSON(http.StatusOK, gin.H{"queued": false, "match": match})
}

// LeaveQueue handles DELETE /api/queue/leave.
func (h *MatchHandler) LeaveQueue(c *gin.Context) {
	if err := h.svc.Leave(mw.GetUsername(c)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "left queue"})
}

// GetMatch handles GET /api/matches/:id.
func (h *MatchHandler) GetMatch(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	match, err := h.svc.Get(id)
	if err != nil {
		if errors.Is(err, matchmaking.ErrMatchNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "match not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"match": match})
}

// ReportResult handles POST /api/matches/:id/result.
// Only a participant of the named match may report, and a winner can be
// recorded exactly once.
func (h *MatchHandler) ReportResult(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	var req struct {
		Winner string `json:"winner" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	me := mw.GetUsername(c)
	existing, err := h.svc.Get(id)
	if err != nil {
		if errors.Is(err, matchmaking.ErrMatchNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "match not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		}
		return
	}
	if me != existing.Player1 && me != existing.Player2 {
		c.JSON(http.StatusForbidden, gin.H{"error": "not a participant"})
		return
	}

	match, err := h.svc.ReportResult(id, req.Winner)
	if err != nil {
		switch {
		case errors.Is(err, matchmaking.ErrMatchResolved):
			c.JSON(http.StatusConflict, gin.H{"error": "result already recorded"})
		case errors.Is(err, matchmaking.ErrNotParticipant):
			c.JSON(http.StatusBadRequest, gin.H{"error": "winner is not a participant"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		}
		return
	}

	// Write the adjusted ratings through to the leaderboard set so
	// TopRating stays in step with the profile view.
	h.refreshLeaderboard(c, match.Player1, match.Player2)

	c.JSON(http.StatusOK, gin.H{"match": match})
}

func (h *MatchHandler) refreshLeaderboard(c *gin.Context, players ...string) {
	var accounts []model.Account
	if err := h.db.Select("username, rating").
		Where("username IN ?", players).
		Find(&accounts).Error; err != nil {
		return
	}
	ctx := c.Request.Context()
	for _, a := range accounts {
		_ = h.cache.ZAdd(ctx, rankingZKey, float64(a.Rating), a.Username)
	}
}
