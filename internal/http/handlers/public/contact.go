package public

import (
	"errors"

	"github.com/protakeoff/marketplace/internal/constants"
	handlershared "github.com/protakeoff/marketplace/internal/http/handlers/shared"
	"github.com/protakeoff/marketplace/internal/http/response"
	"github.com/protakeoff/marketplace/internal/i18n"
	"github.com/protakeoff/marketplace/internal/service"

	"github.com/gin-gonic/gin"
)

// ContactRequest 联系表单请求
type ContactRequest struct {
	Name           string                              `json:"name" binding:"required"`
	Email          string                              `json:"email" binding:"required"`
	Company        string                              `json:"company"`
	Phone          string                              `json:"phone"`
	Subject        string                              `json:"subject"`
	Message        string                              `json:"message" binding:"required"`
	CaptchaPayload handlershared.CaptchaPayloadRequest `json:"captcha_payload"`
}

// SubmitContact 提交联系表单
func (h *Handler) SubmitContact(c *gin.Context) {
	var req ContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.contact_invalid", err)
		return
	}
	if h.CaptchaService != nil {
		if err := h.CaptchaService.Verify(constants.CaptchaSceneContact, req.CaptchaPayload.ToServicePayload()); err != nil {
			handlershared.RespondCaptchaError(c, err)
			return
		}
	}

	message, err := h.ContactService.Submit(service.ContactInput{
		Name:     req.Name,
		Email:    req.Email,
		Company:  req.Company,
		Phone:    req.Phone,
		Subject:  req.Subject,
		Message:  req.Message,
		ClientIP: c.ClientIP(),
		Locale:   i18n.ResolveLocale(c),
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrContactInvalid), errors.Is(err, service.ErrInvalidEmail):
			respondError(c, response.CodeBadRequest, "error.contact_invalid", nil)
		default:
			respondError(c, response.CodeInternal, "error.internal", err)
		}
		return
	}

	response.SuccessWithMsg(c, i18n.T(i18n.ResolveLocale(c), "message.contact_received"), gin.H{
		"id":         message.ID,
		"created_at": message.CreatedAt,
	})
}
