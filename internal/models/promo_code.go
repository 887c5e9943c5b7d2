package models

import "time"

// PromoCode 优惠码
type PromoCode struct {
	ID                 uint      `gorm:"primarykey" json:"id"`                                              // 主键
	Code               string    `gorm:"uniqueIndex;not null;size:64" json:"code"`                          // 优惠码（统一大写）
	Description        string    `gorm:"type:text" json:"description"`                                      // 描述
	DiscountType       string    `gorm:"not null;size:20" json:"discount_type"`                             // 折扣类型（percentage/fixed）
	DiscountValue      Money     `gorm:"type:decimal(20,2);not null" json:"discount_value"`                 // 折扣数值（百分比或固定金额）
	MaxDiscount        *Money    `gorm:"type:decimal(20,2)" json:"max_discount"`                            // 百分比折扣上限（为空表示不限）
	MinimumOrderAmount Money     `gorm:"type:decimal(20,2);not null;default:0" json:"minimum_order_amount"` // 最低订单金额
	MaxUsage           *int      `json:"max_usage"`                                                         // 使用次数上限（为空表示不限）
	CurrentUsage       int       `gorm:"not null;default:0" json:"current_usage"`                           // 已核销次数
	ReservedUsage      int       `gorm:"not null;default:0" json:"reserved_usage"`                          // 结算中占用次数
	ValidFrom          time.Time `gorm:"index;not null" json:"valid_from"`                                  // 生效时间
	ValidUntil         time.Time `gorm:"index;not null" json:"valid_until"`                                 // 失效时间
	IsActive           bool      `gorm:"not null;default:true" json:"is_active"`                            // 是否启用
	CreatedBy          *uint     `gorm:"index" json:"created_by,omitempty"`                                 // 创建人（管理员ID）
	CreatedAt          time.Time `gorm:"index" json:"created_at"`                                           // 创建时间
	UpdatedAt          time.Time `json:"updated_at"`                                                        // 更新时间
}

// TableName 指定表名
func (PromoCode) TableName() string {
	return "promo_codes"
}
