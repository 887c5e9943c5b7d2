package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"gorm.io/gorm"
)

// Takeoff 算量图纸商品
type Takeoff struct {
	ID            uint           `gorm:"primarykey" json:"id"`                         // 主键
	Title         string         `gorm:"not null;size:255" json:"title"`               // 标题
	Description   string         `gorm:"type:text" json:"description"`                 // 描述
	Category      string         `gorm:"index;size:64" json:"category"`                // 分类
	Price         Money          `gorm:"type:decimal(20,2);not null" json:"price"`     // 售价
	Files         FileManifest   `gorm:"type:json" json:"files"`                       // 可下载文件清单
	Images        StringArray    `gorm:"type:json" json:"images"`                      // 预览图
	BlueprintURL  string         `gorm:"size:500" json:"blueprint_url"`                // 蓝图链接
	PurchaseCount int            `gorm:"not null;default:0" json:"purchase_count"`     // 购买次数
	IsActive      bool           `gorm:"not null;default:true;index" json:"is_active"` // 是否上架
	CreatedBy     *uint          `gorm:"index" json:"created_by,omitempty"`            // 创建人（管理员ID）
	CreatedAt     time.Time      `gorm:"index" json:"created_at"`                      // 创建时间
	UpdatedAt     time.Time      `json:"updated_at"`                                   // 更新时间
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`                               // 软删除时间
}

// TableName 指定表名
func (Takeoff) TableName() string {
	return "takeoffs"
}

// FileMeta 文件元数据
type FileMeta struct {
	Filename     string `json:"filename"`
	OriginalName string `json:"original_name"`
	URL          string `json:"url"`
	Size         int64  `json:"size"`
}

// FileManifest 文件清单（JSON 列）
type FileManifest []FileMeta

// Value 实现 driver.Valuer 接口
func (m FileManifest) Value() (driver.Value, error) {
	if m == nil {
		return "[]", nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan 实现 sql.Scanner 接口
func (m *FileManifest) Scan(value interface{}) error {
	if value == nil {
		*m = FileManifest{}
		return nil
	}
	return scanJSON(value, m)
}

// Snapshot 复制文件清单，订单持有独立副本
func (m FileManifest) Snapshot() []FileMeta {
	out := make([]FileMeta, len(m))
	copy(out, m)
	return out
}
