package admin

import (
	"errors"

	handlershared "github.com/protakeoff/marketplace/internal/http/handlers/shared"
	"github.com/protakeoff/marketplace/internal/http/response"
	"github.com/protakeoff/marketplace/internal/logger"
	"github.com/protakeoff/marketplace/internal/models"
	"github.com/protakeoff/marketplace/internal/repository"
	"github.com/protakeoff/marketplace/internal/service"

	"github.com/gin-gonic/gin"
)

// TakeoffRequest 创建/更新图纸请求
type TakeoffRequest struct {
	Title        string            `json:"title" binding:"required"`
	Description  string            `json:"description"`
	Category     string            `json:"category"`
	Price        models.Money      `json:"price"`
	Files        []models.FileMeta `json:"files"`
	Images       []string          `json:"images"`
	BlueprintURL string            `json:"blueprint_url"`
	IsActive     *bool             `json:"is_active"`
}

func (r TakeoffRequest) toInput() service.TakeoffInput {
	return service.TakeoffInput{
		Title:        r.Title,
		Description:  r.Description,
		Category:     r.Category,
		Price:        r.Price,
		Files:        r.Files,
		Images:       r.Images,
		BlueprintURL: r.BlueprintURL,
		IsActive:     r.IsActive,
	}
}

// GetAdminTakeoffs 图纸列表（含下架）
func (h *Handler) GetAdminTakeoffs(c *gin.Context) {
	page, pageSize := pageQuery(c)
	takeoffs, total, err := h.TakeoffService.ListAdmin(repository.TakeoffListFilter{
		Page:     page,
		PageSize: pageSize,
		Category: c.Query("category"),
		Search:   c.Query("search"),
		OrderBy:  c.Query("sort"),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	response.SuccessWithPage(c, takeoffs, handlershared.BuildPagination(page, pageSize, total))
}

// GetAdminTakeoff 图纸详情
func (h *Handler) GetAdminTakeoff(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	takeoff, err := h.TakeoffService.Get(id)
	if err != nil {
		respondTakeoffError(c, err)
		return
	}
	response.Success(c, takeoff)
}

// CreateTakeoff 创建图纸
func (h *Handler) CreateTakeoff(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}
	var req TakeoffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	takeoff, err := h.TakeoffService.Create(adminID, req.toInput())
	if err != nil {
		respondTakeoffError(c, err)
		return
	}
	logger.Infow("admin_takeoff_created", "admin_id", adminID, "takeoff_id", takeoff.ID)
	response.Success(c, takeoff)
}

// UpdateTakeoff 更新图纸
func (h *Handler) UpdateTakeoff(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	var req TakeoffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	takeoff, err := h.TakeoffService.Update(id, req.toInput())
	if err != nil {
		respondTakeoffError(c, err)
		return
	}
	response.Success(c, takeoff)
}

// DeleteTakeoff 删除图纸（软删除，历史订单快照不受影响）
func (h *Handler) DeleteTakeoff(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	if err := h.TakeoffService.Delete(id); err != nil {
		respondTakeoffError(c, err)
		return
	}
	logger.Infow("admin_takeoff_deleted", "admin_id", currentAdminIDOrZero(c), "takeoff_id", id)
	response.Success(c, nil)
}

func respondTakeoffError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrTakeoffNotFound):
		respondError(c, response.CodeNotFound, "error.takeoff_not_found", nil)
	case errors.Is(err, service.ErrTakeoffInvalid):
		respondError(c, response.CodeBadRequest, "error.takeoff_invalid", nil)
	default:
		respondError(c, response.CodeInternal, "error.internal", err)
	}
}
