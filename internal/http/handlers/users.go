package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/geocoder89/planhub/internal/domain/user"
	"github.com/gin-gonic/gin"
)

// StaffDirectory is the roster the task stage assigns people from.
type StaffDirectory interface {
	GetByID(ctx context.Context, id string) (user.User, error)
	List(ctx context.Context, limit, offset int) ([]user.User, error)
}

type UsersHandler struct {
	repo StaffDirectory
}

func NewUsersHandler(repo StaffDirectory) *UsersHandler {
	return &UsersHandler{repo: repo}
}

func (h *UsersHandler) Get(ctx *gin.Context) {
	u, err := h.repo.GetByID(ctx.Request.Context(), ctx.Param("id"))

	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			RespondNotFound(ctx, "User not found")
			return
		}

		RespondInternal(ctx, "Could not load user")
		return
	}

	ctx.JSON(http.StatusOK, u)
}

func (h *UsersHandler) List(ctx *gin.Context) {
	limit := parseIntQuery(ctx, "limit", 100)
	offset := parseIntQuery(ctx, "offset", 0)

	users, err := h.repo.List(ctx.Request.Context(), limit, offset)

	if err != nil {
		RespondInternal(ctx, "Could not list users")
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, gin.H{
		"users": users,
		"count": len(users),
	})
}
