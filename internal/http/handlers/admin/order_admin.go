package admin

import (
	"errors"
	"strconv"
	"strings"

	handlershared "github.com/protakeoff/marketplace/internal/http/handlers/shared"
	"github.com/protakeoff/marketplace/internal/http/response"
	"github.com/protakeoff/marketplace/internal/repository"
	"github.com/protakeoff/marketplace/internal/service"

	"github.com/gin-gonic/gin"
)

// GetTransactions 交易列表（订单 + 买家资料）
func (h *Handler) GetTransactions(c *gin.Context) {
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
	filter := repository.OrderListFilter{
		Page:        page,
		PageSize:    pageSize,
		UserEmail:   strings.TrimSpace(c.Query("email")),
		Status:      strings.TrimSpace(c.Query("status")),
		OrderNo:     strings.TrimSpace(c.Query("order_no")),
		CreatedFrom: createdFrom,
		CreatedTo:   createdTo,
	}
	if raw := strings.TrimSpace(c.Query("promo_code_id")); raw != "" {
		promoID, parseErr := strconv.ParseUint(raw, 10, 64)
		if parseErr != nil {
			respondError(c, response.CodeBadRequest, "error.bad_request", nil)
			return
		}
		filter.PromoCodeID = uint(promoID)
	}

	transactions, total, err := h.OrderService.ListTransactions(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	response.SuccessWithPage(c, transactions, handlershared.BuildPagination(page, pageSize, total))
}

// GetTransaction 交易详情
func (h *Handler) GetTransaction(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	order, err := h.OrderService.GetOrder(id)
	if err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			respondError(c, response.CodeNotFound, "error.order_not_found", nil)
			return
		}
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	response.Success(c, order)
}

// GetReconciliations 待处理的扣款落单异常
func (h *Handler) GetReconciliations(c *gin.Context) {
	page, pageSize := pageQuery(c)
	records, total, err := h.ReconciliationService.ListUnresolved(page, pageSize)
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	response.SuccessWithPage(c, records, handlershared.BuildPagination(page, pageSize, total))
}

// ResolveReconciliation 标记异常已人工处理
func (h *Handler) ResolveReconciliation(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	if err := h.ReconciliationService.Resolve(id, adminID); err != nil {
		if errors.Is(err, service.ErrReconciliationNotFound) {
			respondError(c, response.CodeNotFound, "error.reconciliation_not_found", nil)
			return
		}
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	requestLog(c).Infow("admin_reconciliation_resolved", "admin_id", adminID, "reconciliation_id", id)
	response.Success(c, nil)
}
