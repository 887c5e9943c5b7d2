package admin

import (
	handlershared "github.com/protakeoff/marketplace/internal/http/handlers/shared"
	"github.com/protakeoff/marketplace/internal/http/response"
	"github.com/protakeoff/marketplace/internal/logger"
	"github.com/protakeoff/marketplace/internal/service"

	"github.com/gin-gonic/gin"
)

var createAdminErrorRules = []handlershared.MappedError{
	{Target: service.ErrAdminUsernameInvalid, Code: response.CodeBadRequest, Key: "error.admin_username_invalid"},
	{Target: service.ErrAdminUsernameExists, Code: response.CodeConflict, Key: "error.admin_username_exists"},
}

type authzCreateAdminPayload struct {
	Username string   `json:"username" binding:"required"`
	Password string   `json:"password" binding:"required"`
	Email    string   `json:"email"`
	IsSuper  bool     `json:"is_super"`
	Roles    []string `json:"roles"`
}

// CreateAuthzAdmin 创建员工账号并分配角色
func (h *Handler) CreateAuthzAdmin(c *gin.Context) {
	var req authzCreateAdminPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	admin, err := h.AuthService.CreateAdmin(service.CreateAdminInput{
		Username: req.Username,
		Password: req.Password,
		Email:    req.Email,
		IsSuper:  req.IsSuper,
	})
	if err != nil {
		if handlershared.RespondPasswordPolicyError(c, err) {
			return
		}
		handlershared.RespondMappedError(c, err, createAdminErrorRules, response.CodeInternal, "error.internal")
		return
	}
	if len(req.Roles) > 0 {
		if err := h.AuthzService.SetAdminRoles(admin.ID, req.Roles); err != nil {
			respondError(c, response.CodeBadRequest, "error.authz_failed", err)
			return
		}
	}

	logger.Infow("admin_authz_admin_created",
		"operator_admin_id", currentAdminIDOrZero(c),
		"admin_id", admin.ID,
		"username", admin.Username,
		"is_super", admin.IsSuper,
	)
	response.Success(c, gin.H{
		"id":       admin.ID,
		"username": admin.Username,
		"email":    admin.Email,
		"is_super": admin.IsSuper,
		"roles":    req.Roles,
	})
}
