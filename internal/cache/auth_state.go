package cache

import (
	"context"
	"strconv"
	"time"

	"github.com/protakeoff/marketplace/internal/models"
)

const authStateCacheTTL = 10 * time.Minute

const (
	authScopeUser  = "user"
	authScopeAdmin = "admin"
)

// UserAuthState 鉴权中间件只需要状态与 token_version，缓存它们以免每个请求查库
type UserAuthState struct {
	UserID       uint   `json:"user_id"`
	Status       string `json:"status"`
	TokenVersion uint64 `json:"token_version"`
}

// AdminAuthState 管理员鉴权快照
type AdminAuthState struct {
	AdminID      uint   `json:"admin_id"`
	Username     string `json:"username"`
	TokenVersion uint64 `json:"token_version"`
	IsSuper      bool   `json:"is_super"`
}

// authStateKey auth:<scope>:<id>
func authStateKey(scope string, id uint) string {
	return "auth:" + scope + ":" + strconv.FormatUint(uint64(id), 10)
}

func loadAuthState[T any](ctx context.Context, scope string, id uint) (*T, bool, error) {
	if id == 0 {
		return nil, false, nil
	}
	state := new(T)
	hit, err := GetJSON(ctx, authStateKey(scope, id), state)
	if err != nil || !hit {
		return nil, hit, err
	}
	return state, true, nil
}

func storeAuthState(ctx context.Context, scope string, id uint, state interface{}) error {
	if id == 0 {
		return nil
	}
	return SetJSON(ctx, authStateKey(scope, id), state, authStateCacheTTL)
}

func BuildUserAuthState(user *models.User) *UserAuthState {
	if user == nil {
		return nil
	}
	return &UserAuthState{UserID: user.ID, Status: user.Status, TokenVersion: user.TokenVersion}
}

func BuildAdminAuthState(admin *models.Admin) *AdminAuthState {
	if admin == nil {
		return nil
	}
	return &AdminAuthState{
		AdminID:      admin.ID,
		Username:     admin.Username,
		TokenVersion: admin.TokenVersion,
		IsSuper:      admin.IsSuper,
	}
}

func GetUserAuthState(ctx context.Context, userID uint) (*UserAuthState, bool, error) {
	return loadAuthState[UserAuthState](ctx, authScopeUser, userID)
}

func SetUserAuthState(ctx context.Context, state *UserAuthState) error {
	if state == nil {
		return nil
	}
	return storeAuthState(ctx, authScopeUser, state.UserID, state)
}

// DelUserAuthState 删除缓存，下次请求回源数据库
func DelUserAuthState(ctx context.Context, userID uint) error {
	if userID == 0 {
		return nil
	}
	return Del(ctx, authStateKey(authScopeUser, userID))
}

func GetAdminAuthState(ctx context.Context, adminID uint) (*AdminAuthState, bool, error) {
	return loadAuthState[AdminAuthState](ctx, authScopeAdmin, adminID)
}

func SetAdminAuthState(ctx context.Context, state *AdminAuthState) error {
	if state == nil {
		return nil
	}
	return storeAuthState(ctx, authScopeAdmin, state.AdminID, state)
}

func DelAdminAuthState(ctx context.Context, adminID uint) error {
	if adminID == 0 {
		return nil
	}
	return Del(ctx, authStateKey(authScopeAdmin, adminID))
}
