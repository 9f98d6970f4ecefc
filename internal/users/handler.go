package users

import (
	"errors"

	"github.com/gin-gonic/gin"

	"docsum-backend/internal/shared/server/middleware"
	"docsum-backend/internal/shared/server/respond"
)

type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/me", middleware.RequireUser(), h.me)
}

// me returns the stored profile, or the token identity for callers that never
// went through the login flow (development identities).
func (h *Handler) me(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	user, err := h.Svc.GetByID(c.Request.Context(), userID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		respond.Internal(c, "users.me_failed", err)
		return
	}
	if errors.Is(err, ErrNotFound) {
		respond.OK(c, gin.H{
			"id":         userID,
			"email":      middleware.UserEmailFromContext(c),
			"name":       middleware.UserNameFromContext(c),
			"pictureUrl": middleware.UserPictureFromContext(c),
		})
		return
	}
	respond.OK(c, gin.H{
		"id":         user.ID,
		"email":      user.Email,
		"name":       user.Name,
		"pictureUrl": user.PictureURL,
	})
}
