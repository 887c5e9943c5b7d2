package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"
)

// Order 订单（支付完成后的不可变凭据）
type Order struct {
	ID                 uint                  `gorm:"primarykey" json:"id"`                                         // 主键
	OrderNo            string                `gorm:"uniqueIndex;not null;size:64" json:"order_no"`                 // 订单编号
	UserID             uint                  `gorm:"index" json:"user_id"`                                         // 下单用户ID
	UserEmail          string                `gorm:"index;not null" json:"user_email"`                             // 下单邮箱快照
	UserName           string                `gorm:"not null;default:''" json:"user_name"`                         // 下单人姓名快照
	Items              OrderItems            `gorm:"type:json;not null" json:"items"`                              // 订单项快照
	PaymentReferenceID string                `gorm:"index;not null" json:"payment_reference_id"`                   // 支付流水号
	Currency           string                `gorm:"not null;size:10" json:"currency"`                             // 币种
	OriginalAmount     Money                 `gorm:"type:decimal(20,2);not null;default:0" json:"original_amount"` // 原始金额
	DiscountAmount     Money                 `gorm:"type:decimal(20,2);not null;default:0" json:"discount_amount"` // 优惠金额
	Amount             Money                 `gorm:"type:decimal(20,2);not null;default:0" json:"amount"`          // 实付金额
	PromoCodeID        *uint                 `gorm:"index" json:"promo_code_id,omitempty"`                         // 优惠码ID
	AppliedPromoCode   *AppliedPromoSnapshot `gorm:"type:json" json:"applied_promo_code,omitempty"`                // 优惠码快照
	Status             string                `gorm:"index;not null" json:"status"`                                 // 订单状态
	ClientIP           string                `gorm:"size:64" json:"-"`                                             // 下单客户端IP
	CreatedAt          time.Time             `gorm:"index;autoCreateTime;<-:create" json:"created_at"`             // 创建时间
	UpdatedAt          time.Time             `json:"updated_at"`                                                   // 更新时间
}

// TableName 指定表名
func (Order) TableName() string {
	return "orders"
}

// OrderItem 订单项快照（按值嵌入订单，不随商品变更）
type OrderItem struct {
	TakeoffID    uint       `json:"takeoff_id"`
	Title        string     `json:"title"`
	Price        Money      `json:"price"`
	Quantity     int        `json:"quantity"`
	Files        []FileMeta `json:"files"`
	BlueprintURL string     `json:"blueprint_url,omitempty"`
}

// OrderItems 订单项列表（JSON 列）
type OrderItems []OrderItem

// Value 实现 driver.Valuer 接口
func (items OrderItems) Value() (driver.Value, error) {
	if items == nil {
		return "[]", nil
	}
	b, err := json.Marshal(items)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan 实现 sql.Scanner 接口
func (items *OrderItems) Scan(value interface{}) error {
	if value == nil {
		*items = OrderItems{}
		return nil
	}
	return scanJSON(value, items)
}

// AppliedPromoSnapshot 下单时的优惠码快照
type AppliedPromoSnapshot struct {
	ID            uint   `json:"id"`
	Code          string `json:"code"`
	Description   string `json:"description"`
	DiscountType  string `json:"discount_type"`
	DiscountValue Money  `json:"discount_value"`
}

// Value 实现 driver.Valuer 接口
func (s *AppliedPromoSnapshot) Value() (driver.Value, error) {
	if s == nil {
		return nil, nil
	}
	b, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan 实现 sql.Scanner 接口
func (s *AppliedPromoSnapshot) Scan(value interface{}) error {
	if value == nil {
		return nil
	}
	return scanJSON(value, s)
}
