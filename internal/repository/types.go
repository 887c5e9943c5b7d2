package repository

import "time"

// TakeoffListFilter 查询图纸商品列表的过滤条件
type TakeoffListFilter struct {
	Page       int
	PageSize   int
	Category   string
	Search     string
	OnlyActive bool
	OrderBy    string // newest / price_asc / price_desc / popular
}

// PromoCodeListFilter 查询优惠码列表的过滤条件
type PromoCodeListFilter struct {
	Page     int
	PageSize int
	Code     string
	IsActive *bool
}

// OrderListFilter 查询订单列表的过滤条件
type OrderListFilter struct {
	Page        int
	PageSize    int
	UserID      uint
	UserEmail   string
	Status      string
	OrderNo     string
	PromoCodeID uint
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// UserListFilter 查询用户列表的过滤条件
type UserListFilter struct {
	Page        int
	PageSize    int
	Keyword     string
	Status      string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// ContactMessageListFilter 查询联系留言列表的过滤条件
type ContactMessageListFilter struct {
	Page     int
	PageSize int
	Status   string
	Email    string
	Keyword  string
}

// ContactMessageStats 留言统计
type ContactMessageStats struct {
	Total    int64
	Today    int64
	ByStatus map[string]int64
}
