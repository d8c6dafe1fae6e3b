package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hindusthan/agriserve/internal/services"
	"github.com/hindusthan/agriserve/pkg/crypto"
	apperrors "github.com/hindusthan/agriserve/pkg/errors"
	"github.com/hindusthan/agriserve/pkg/response"
)

// UserHandler exposes the admin user routes.
type UserHandler struct {
	users *services.UserService
}

func NewUserHandler(users *services.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// GET /api/v1/users
func (h *UserHandler) List(c *gin.Context) {
	skip := parseIntQuery(c, "skip", 0)
	limit := parseIntQuery(c, "limit", 10)

	users, total, err := h.users.List(c.Request.Context(), skip, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, users, &response.Meta{
		Skip:  skip,
		Limit: limit,
		Total: total,
	})
}

// GET /api/v1/users/:id
func (h *UserHandler) Get(c *gin.Context) {
	user, err := h.users.FindByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, user)
}

type updateUserRequest struct {
	Email       *string `json:"email" validate:"omitempty,email"`
	Password    *string `json:"password"`
	PhoneNumber *string `json:"phone_number"`
	GoogleID    *string `json:"google_id"`
	AvatarURL   *string `json:"avatar_url"`
}

// PATCH /api/v1/users/:id
//
// Only fields present in the payload are written.
func (h *UserHandler) Update(c *gin.Context) {
	var req updateUserRequest
	if !bindAndValidate(c, &req) {
		return
	}

	fields := map[string]any{}
	if req.Email != nil {
		fields["email"] = *req.Email
	}
	if req.Password != nil {
		hashed, err := crypto.HashPassword(*req.Password)
		if err != nil {
			response.Error(c, apperrors.ErrInternalServer.WithInternal(err))
			return
		}
		fields["password"] = hashed
	}
	if req.PhoneNumber != nil {
		fields["phone_number"] = *req.PhoneNumber
	}
	if req.GoogleID != nil {
		fields["google_id"] = *req.GoogleID
	}
	if req.AvatarURL != nil {
		fields["avatar_url"] = *req.AvatarURL
	}

	user, err := h.users.UpdateFields(c.Request.Context(), c.Param("id"), fields)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, user)
}

// DELETE /api/v1/users/:id
func (h *UserHandler) Delete(c *gin.Context) {
	if err := h.users.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "User deleted successfully"})
}
