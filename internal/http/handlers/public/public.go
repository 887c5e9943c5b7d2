package public

import (
	"errors"
	"strconv"
	"strings"

	"github.com/protakeoff/marketplace/internal/constants"
	handlershared "github.com/protakeoff/marketplace/internal/http/handlers/shared"
	"github.com/protakeoff/marketplace/internal/http/response"
	"github.com/protakeoff/marketplace/internal/repository"
	"github.com/protakeoff/marketplace/internal/service"

	"github.com/gin-gonic/gin"
)

// GetConfig 获取前台公共配置
func (h *Handler) GetConfig(c *gin.Context) {
	currency := constants.CurrencyDefault
	publishableKey := ""
	if h.Config != nil {
		if value := strings.TrimSpace(h.Config.Order.Currency); value != "" {
			currency = value
		}
		publishableKey = strings.TrimSpace(h.Config.Stripe.PublishableKey)
	}
	data := gin.H{
		"languages":              []string{"en-US", "zh-CN"},
		"currency":               currency,
		"stripe_publishable_key": publishableKey,
	}
	if h.CaptchaService != nil {
		data["captcha"] = h.CaptchaService.PublicSetting()
	}
	response.Success(c, data)
}

// GetTakeoffs 获取上架图纸列表
func (h *Handler) GetTakeoffs(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	takeoffs, total, err := h.TakeoffService.ListPublic(repository.TakeoffListFilter{
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

// GetTakeoff 获取图纸详情
func (h *Handler) GetTakeoff(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	takeoff, err := h.TakeoffService.GetPublic(uint(id))
	if err != nil {
		if errors.Is(err, service.ErrTakeoffNotFound) {
			respondError(c, response.CodeNotFound, "error.takeoff_not_found", nil)
			return
		}
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	response.Success(c, takeoff)
}

// GetCategories 获取图纸分类
func (h *Handler) GetCategories(c *gin.Context) {
	categories, err := h.TakeoffService.ListCategories()
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	response.Success(c, categories)
}
