package models

import "time"

// ContactMessage 联系表单留言
type ContactMessage struct {
	ID        uint      `gorm:"primarykey" json:"id"`                       // 主键
	Name      string    `gorm:"not null;size:120" json:"name"`              // 称呼
	Email     string    `gorm:"index;not null;size:255" json:"email"`       // 邮箱
	Company   string    `gorm:"size:255" json:"company"`                    // 公司
	Phone     string    `gorm:"size:64" json:"phone"`                       // 电话
	Subject   string    `gorm:"size:255" json:"subject"`                    // 主题
	Message   string    `gorm:"type:text;not null" json:"message"`          // 内容
	Status    string    `gorm:"index;not null;default:'new'" json:"status"` // 处理状态（new/read/replied/archived）
	ClientIP  string    `gorm:"size:64" json:"-"`                           // 提交IP
	CreatedAt time.Time `gorm:"index" json:"created_at"`                    // 创建时间
	UpdatedAt time.Time `json:"updated_at"`                                 // 更新时间
}

// TableName 指定表名
func (ContactMessage) TableName() string {
	return "contact_messages"
}
