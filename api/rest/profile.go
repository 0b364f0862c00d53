package rest

import (
	"errors"
	"net/http"
	"time"

	"github.com/arenahub/server/game/presence"
	mw "github.com/arenahub/server/middleware"
	"github.com/arenahub/server/model"
	"github.com/arenahub/server/storage"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ProfileHandler handles profile REST endpoints.
type ProfileHandler struct {
	db      *gorm.DB
	avatars *storage.AvatarStore
}

// NewProfileHandler creates a new ProfileHandler.
func NewProfileHandler(db *gorm.DB, avatars *storage.AvatarStore) *ProfileHandler {
	return &ProfileHandler{db: db, avatars: avatars}
}

// Get handles GET /api/profile/:username.
func (h *ProfileHandler) Get(c *gin.Context) {
	username := c.Param("username")

	var acc model.Account
	if err := h.db.Where("username = ?", username).First(&acc).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"username": acc.Username,
		"rating":   acc.Rating,
		"avatar":   acc.AvatarRef,
		"online":   presence.IsOnline(acc.LastActiveAt, time.Now()),
	})
}

// UploadAvatar handles POST /api/profile/avatar (multipart form, field "avatar").
func (h *ProfileHandler) UploadAvatar(c *gin.Context) {
	me := mw.GetUsername(c)

	var acc model.Account
	if err := h.db.Where("username = ?", me).First(&acc).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	oldRef := acc.AvatarRef

	file, err := c.FormFile("avatar")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing avatar file"})
		return
	}
	src, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable avatar file"})
		return
	}
	defer src.Close()

	ref, err := h.avatars.Save(me, file.Filename, src)
	if err != nil {
		if errors.Is(err, storage.ErrUnsupportedType) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported avatar file type"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "upload failed"})
		}
		return
	}

	if err := h.db.Model(&model.Account{}).
		Where("username = ?", me).
		Update("avatar_ref", ref).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	// The replaced blob is unreachable once the ref moves on (best-effort;
	// the default avatar is a shared static asset and stays).
	if oldRef != model.DefaultAvatarRef && oldRef != ref {
		_ = h.avatars.Remove(oldRef)
	}

	c.JSON(http.StatusOK, gin.H{"avatar": ref})
}
