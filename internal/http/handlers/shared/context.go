package shared

import (
	"github.com/protakeoff/marketplace/internal/http/response"

	"github.com/gin-gonic/gin"
)

// RequireContextID 读取鉴权中间件写入的主体 ID，缺失或为 0 时直接返回 401
func RequireContextID(c *gin.Context, key string) (uint, bool) {
	value, exists := c.Get(key)
	if !exists {
		RespondError(c, response.CodeUnauthorized, "error.unauthorized", nil)
		return 0, false
	}
	id, ok := value.(uint)
	if !ok {
		RequestLog(c).Errorw("handler_context_id_type_invalid", "key", key)
		RespondError(c, response.CodeInternal, "error.internal", nil)
		return 0, false
	}
	if id == 0 {
		RespondError(c, response.CodeUnauthorized, "error.unauthorized", nil)
		return 0, false
	}
	return id, true
}

// ContextString 读取上下文中的字符串，不存在时返回空串
func ContextString(c *gin.Context, key string) string {
	value, ok := c.Get(key)
	if !ok {
		return ""
	}
	text, _ := value.(string)
	return text
}
