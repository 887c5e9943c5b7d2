package router

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/protakeoff/marketplace/internal/authz"
	"github.com/protakeoff/marketplace/internal/models"
	"github.com/protakeoff/marketplace/internal/provider"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func createAdmin(t *testing.T, c *provider.Container, db *gorm.DB, username string, isSuper bool) (*models.Admin, string) {
	t.Helper()
	hash, err := c.AuthService.HashPassword("Admin123!")
	require.NoError(t, err)
	admin := &models.Admin{Username: username, PasswordHash: hash, IsSuper: isSuper}
	require.NoError(t, db.Create(admin).Error)
	token, _, err := c.AuthService.GenerateJWT(admin)
	require.NoError(t, err)
	return admin, token
}

func TestUserTokenRevokedAfterPasswordChange(t *testing.T) {
	r, _, _ := setupTestApp(t, &fakeGateway{})
	token := registerUser(t, r, "rotate@example.com")

	_, me := doJSON(t, r, http.MethodGet, "/api/v1/me", token, nil)
	require.Equal(t, 0, me.StatusCode, me.Msg)

	_, changed := doJSON(t, r, http.MethodPut, "/api/v1/me/password", token, gin.H{
		"old_password": "Secret123!",
		"new_password": "Secret456!",
	})
	require.Equal(t, 0, changed.StatusCode, changed.Msg)

	w, _ := doJSON(t, r, http.MethodGet, "/api/v1/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	_, login := doJSON(t, r, http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"email":    "ROTATE@example.com",
		"password": "Secret456!",
	})
	assert.Equal(t, 0, login.StatusCode, login.Msg)
}

func TestDisabledUserRejected(t *testing.T) {
	r, c, db := setupTestApp(t, &fakeGateway{})
	token := registerUser(t, r, "blocked@example.com")
	_, adminToken := createAdmin(t, c, db, "root", true)

	var user models.User
	require.NoError(t, db.Where("email = ?", "blocked@example.com").First(&user).Error)

	_, resp := doJSON(t, r, http.MethodPatch, fmt.Sprintf("/api/v1/admin/users/%d", user.ID), adminToken, gin.H{"status": "disabled"})
	require.Equal(t, 0, resp.StatusCode, resp.Msg)

	w, _ := doJSON(t, r, http.MethodGet, "/api/v1/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	_, login := doJSON(t, r, http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"email":    "blocked@example.com",
		"password": "Secret123!",
	})
	assert.NotEqual(t, 0, login.StatusCode)
}

func TestAdminLoginAndRBAC(t *testing.T) {
	r, c, db := setupTestApp(t, &fakeGateway{})
	operator, _ := createAdmin(t, c, db, "operator", false)
	require.NoError(t, c.AuthzService.SetAdminRoles(operator.ID, []string{authz.RoleOperations}))

	_, login := doJSON(t, r, http.MethodPost, "/api/v1/admin/login", "", gin.H{
		"username": "operator",
		"password": "Admin123!",
	})
	require.Equal(t, 0, login.StatusCode, login.Msg)
	var data struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(login.Data, &data))
	require.NotEmpty(t, data.Token)

	w, resp := doJSON(t, r, http.MethodGet, "/api/v1/admin/takeoffs", data.Token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, resp.StatusCode, resp.Msg)

	w, resp = doJSON(t, r, http.MethodPost, "/api/v1/admin/reconciliations/1/resolve", data.Token, gin.H{})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	w, _ = doJSON(t, r, http.MethodGet, "/api/v1/admin/takeoffs", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	_, superToken := createAdmin(t, c, db, "root", true)
	w, _ = doJSON(t, r, http.MethodGet, "/api/v1/admin/authz/roles", superToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAdminPromoCodeLifecycle(t *testing.T) {
	r, c, db := setupTestApp(t, &fakeGateway{})
	_, token := createAdmin(t, c, db, "root", true)

	_, created := doJSON(t, r, http.MethodPost, "/api/v1/admin/promo-codes", token, gin.H{
		"code":           "spring15",
		"description":    "Spring sale",
		"discount_type":  "percentage",
		"discount_value": "15",
		"valid_from":     "2026-01-01T00:00:00Z",
		"valid_until":    "2099-01-01T00:00:00Z",
		"is_active":      true,
	})
	require.Equal(t, 0, created.StatusCode, created.Msg)
	var promo models.PromoCode
	require.NoError(t, json.Unmarshal(created.Data, &promo))
	assert.Equal(t, "SPRING15", promo.Code)

	_, dup := doJSON(t, r, http.MethodPost, "/api/v1/admin/promo-codes", token, gin.H{
		"code":           "SPRING15",
		"description":    "Duplicate",
		"discount_type":  "fixed",
		"discount_value": "5",
		"valid_until":    "2099-01-01T00:00:00Z",
	})
	assert.Equal(t, http.StatusConflict, dup.StatusCode)

	_, bad := doJSON(t, r, http.MethodPost, "/api/v1/admin/promo-codes", token, gin.H{
		"code":           "TOOMUCH",
		"description":    "Too much",
		"discount_type":  "percentage",
		"discount_value": "150",
		"valid_until":    "2099-01-01T00:00:00Z",
	})
	assert.Equal(t, http.StatusBadRequest, bad.StatusCode)

	_, blank := doJSON(t, r, http.MethodPost, "/api/v1/admin/promo-codes", token, gin.H{
		"code":           "NODESC",
		"discount_type":  "fixed",
		"discount_value": "5",
		"valid_until":    "2099-01-01T00:00:00Z",
	})
	assert.Equal(t, http.StatusBadRequest, blank.StatusCode)

	_, deleted := doJSON(t, r, http.MethodDelete, fmt.Sprintf("/api/v1/admin/promo-codes/%d", promo.ID), token, nil)
	assert.Equal(t, 0, deleted.StatusCode, deleted.Msg)
}

func TestAdminContactMessageLifecycle(t *testing.T) {
	r, c, db := setupTestApp(t, &fakeGateway{})
	_, token := createAdmin(t, c, db, "root", true)

	_, submitted := doJSON(t, r, http.MethodPost, "/api/v1/public/contact", "", gin.H{
		"name":    "Dana",
		"email":   "dana@example.com",
		"company": "Dana Framing",
		"message": "Do you cover steel?",
	})
	require.Equal(t, 0, submitted.StatusCode, submitted.Msg)
	var created struct {
		ID uint `json:"id"`
	}
	require.NoError(t, json.Unmarshal(submitted.Data, &created))
	path := fmt.Sprintf("/api/v1/admin/contact-messages/%d", created.ID)

	_, detail := doJSON(t, r, http.MethodGet, path, token, nil)
	require.Equal(t, 0, detail.StatusCode, detail.Msg)
	var msg models.ContactMessage
	require.NoError(t, json.Unmarshal(detail.Data, &msg))
	assert.Equal(t, "Dana Framing", msg.Company)

	_, archived := doJSON(t, r, http.MethodPatch, path, token, gin.H{"status": "archived"})
	require.Equal(t, 0, archived.StatusCode, archived.Msg)

	_, statsResp := doJSON(t, r, http.MethodGet, "/api/v1/admin/contact-messages/stats", token, nil)
	require.Equal(t, 0, statsResp.StatusCode, statsResp.Msg)
	var stats struct {
		Total    int64            `json:"total"`
		Today    int64            `json:"today"`
		ByStatus map[string]int64 `json:"by_status"`
	}
	require.NoError(t, json.Unmarshal(statsResp.Data, &stats))
	assert.EqualValues(t, 1, stats.Total)
	assert.EqualValues(t, 1, stats.Today)
	assert.EqualValues(t, 1, stats.ByStatus["archived"])
	assert.EqualValues(t, 0, stats.ByStatus["new"])

	_, deleted := doJSON(t, r, http.MethodDelete, path, token, nil)
	require.Equal(t, 0, deleted.StatusCode, deleted.Msg)
	_, missing := doJSON(t, r, http.MethodGet, path, token, nil)
	assert.Equal(t, http.StatusNotFound, missing.StatusCode)
	_, again := doJSON(t, r, http.MethodDelete, path, token, nil)
	assert.Equal(t, http.StatusNotFound, again.StatusCode)
}
