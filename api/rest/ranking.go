package rest

import (
	"net/http"
	"strconv"

	"github.com/arenahub/server/cache"
	"github.com/arenahub/server/model"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// RankingHandler handles leaderboard REST endpoints.
type RankingHandler struct {
	db     *gorm.DB
	cache  cache.Cache
	logger *zap.Logger
}

// NewRankingHandler creates a RankingHandler.
func NewRankingHandler(db *gorm.DB, c cache.Cache, logger *zap.Logger) *RankingHandler {
	return &RankingHandler{db: db, cache: c, logger: logger}
}

const rankingZKey = "ranking:rating"
const rankingTop = 100

// RankEntry is one row in the leaderboard.
type RankEntry struct {
	Rank     int    `json:"rank"`
	Username string `json:"username"`
	Rating   int    `json:"rating"`
}

// TopRating returns the top players sorted by rating.
// GET /api/ranking/rating?limit=20
func (h *RankingHandler) TopRating(c *gin.Context) {
	limit := 20
	if l, err := strconv.Atoi(c.Query("limit")); err == nil && l > 0 && l <= rankingTop {
		limit = l
	}

	// Try cached ranking from sorted set.
	ctx := c.Request.Context()
	members, err := h.cache.ZRevRange(ctx, rankingZKey, 0, int64(limit-1))
	if err == nil && len(members) > 0 {
		entries := make([]RankEntry, 0, len(members))
		for i, m := range members {
			score, _ := h.cache.ZScore(ctx, rankingZKey, m)
			entries = append(entries, RankEntry{
				Rank:     i + 1,
				Username: m,
				Rating:   int(score),
			})
		}
		c.JSON(http.StatusOK, gin.H{"ranking": entries})
		return
	}

	// Fall back to DB query.
	var accounts []model.Account
	h.db.Select("username, rating").
		Order("rating DESC").
		Limit(limit).
		Find(&accounts)

	entries := make([]RankEntry, len(accounts))
	for i, a := range accounts {
		entries[i] = RankEntry{
			Rank:     i + 1,
			Username: a.Username,
			Rating:   a.Rating,
		}
		// Refresh cache entry.
		_ = h.cache.ZAdd(ctx, rankingZKey, float64(a.Rating), a.Username)
	}
	c.JSON(http.StatusOK, gin.H{"ranking": entries})
}

// RefreshRanking rebuilds the ranking sorted set from the DB.
// POST /api/ranking/refresh
func (h *RankingHandler) RefreshRanking(c *gin.Context) {
	var accounts []model.Account
	if err := h.db.Select("username, rating").Order("rating DESC").Limit(rankingTop).Find(&accounts).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
		return
	}
	ctx := c.Request.Context()
	for _, a := range accounts {
		_ = h.cache.ZAdd(ctx, rankingZKey, float64(a.Rating), a.Username)
	}
	c.JSON(http.StatusOK, gin.H{"refreshed": len(accounts)})
}
