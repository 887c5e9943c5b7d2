package admin

import (
	"errors"
	"strings"

	handlershared "github.com/protakeoff/marketplace/internal/http/handlers/shared"
	"github.com/protakeoff/marketplace/internal/http/response"
	"github.com/protakeoff/marketplace/internal/repository"
	"github.com/protakeoff/marketplace/internal/service"

	"github.com/gin-gonic/gin"
)

// UpdateUserStatusRequest 更新用户状态请求
type UpdateUserStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// GetAdminUsers 用户列表
func (h *Handler) GetAdminUsers(c *gin.Context) {
	page, pageSize := pageQuery(c)
	createdFrom, err := parseTimeNullable(c.Query("created_from"))
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	createdTo, err := parseTimeNullable(c.Query("created_to"))
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}

	users, total, err := h.UserAuthService.ListUsers(repository.UserListFilter{
		Page:        page,
		PageSize:    pageSize,
		Keyword:     strings.TrimSpace(c.Query("keyword")),
		Status:      strings.TrimSpace(c.Query("status")),
		CreatedFrom: createdFrom,
		CreatedTo:   createdTo,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	response.SuccessWithPage(c, users, handlershared.BuildPagination(page, pageSize, total))
}

// UpdateAdminUserStatus 启用/禁用用户
func (h *Handler) UpdateAdminUserStatus(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	var req UpdateUserStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	user, err := h.UserAuthService.UpdateUserStatus(id, req.Status)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidRequest):
			respondError(c, response.CodeBadRequest, "error.user_status_invalid", nil)
		case errors.Is(err, service.ErrUserNotFound):
			respondError(c, response.CodeNotFound, "error.user_not_found", nil)
		default:
			respondError(c, response.CodeInternal, "error.internal", err)
		}
		return
	}
	response.Success(c, user)
}

// UpdateContactStatusRequest 更新留言状态请求
type UpdateContactStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// GetContactMessages 联系留言列表
func (h *Handler) GetContactMessages(c *gin.Context) {
	page, pageSize := pageQuery(c)
	messages, total, err := h.ContactService.List(repository.ContactMessageListFilter{
		Page:     page,
		PageSize: pageSize,
		Status:   strings.TrimSpace(c.Query("status")),
		Email:    strings.TrimSpace(c.Query("email")),
		Keyword:  strings.TrimSpace(c.Query("keyword")),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	response.SuccessWithPage(c, messages, handlershared.BuildPagination(page, pageSize, total))
}

// UpdateContactMessageStatus 更新留言处理状态
func (h *Handler) UpdateContactMessageStatus(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	var req UpdateContactStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	message, err := h.ContactService.UpdateStatus(id, req.Status)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidRequest):
			respondError(c, response.CodeBadRequest, "error.contact_status_invalid", nil)
		case errors.Is(err, service.ErrContactNotFound):
			respondError(c, response.CodeNotFound, "error.contact_not_found", nil)
		default:
			respondError(c, response.CodeInternal, "error.internal", err)
		}
		return
	}
	response.Success(c, message)
}

// GetContactMessageStats 留言统计
func (h *Handler) GetContactMessageStats(c *gin.Context) {
	stats, err := h.ContactService.Stats()
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	response.Success(c, stats)
}

// GetContactMessage 留言详情
func (h *Handler) GetContactMessage(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	message, err := h.ContactService.Get(id)
	if err != nil {
		respondContactError(c, err)
		return
	}
	response.Success(c, message)
}

// DeleteContactMessage 删除留言
func (h *Handler) DeleteContactMessage(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	if err := h.ContactService.Delete(id); err != nil {
		respondContactError(c, err)
		return
	}
	response.Success(c, nil)
}

func respondContactError(c *gin.Context, err error) {
	if errors.Is(err, service.ErrContactNotFound) {
		respondError(c, response.CodeNotFound, "error.contact_not_found", nil)
		return
	}
	respondError(c, response.CodeInternal, "error.internal", err)
}
