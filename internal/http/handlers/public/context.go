package public

import (
	handlershared "github.com/protakeoff/marketplace/internal/http/handlers/shared"

	"github.com/gin-gonic/gin"
)

func getUserID(c *gin.Context) (uint, bool) {
	return handlershared.RequireContextID(c, "user_id")
}

func getUserEmail(c *gin.Context) string {
	return handlershared.ContextString(c, "user_email")
}

func respondError(c *gin.Context, code int, key string, err error) {
	handlershared.RespondError(c, code, key, err)
}

func normalizePagination(page, pageSize int) (int, int) {
	return handlershared.NormalizePagination(page, pageSize)
}
