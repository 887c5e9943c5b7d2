package admin

import (
	handlershared "github.com/protakeoff/marketplace/internal/http/handlers/shared"

	"github.com/gin-gonic/gin"
)

func getAdminID(c *gin.Context) (uint, bool) {
	return handlershared.RequireContextID(c, "admin_id")
}

func currentUsername(c *gin.Context) string {
	return handlershared.ContextString(c, "username")
}

func currentIsSuper(c *gin.Context) bool {
	flag, _ := c.Get("admin_is_super")
	isSuper, _ := flag.(bool)
	return isSuper
}
