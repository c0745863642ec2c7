package models

import "time"

// AffiliateLink 推广链接记录
type AffiliateLink struct {
	ID             uint        `gorm:"primarykey" json:"id"`                                       // 主键
	Program        string      `gorm:"type:varchar(255);not null;index" json:"program"`            // 联盟计划
	Product        string      `gorm:"type:varchar(512);not null" json:"product"`                  // 商品名称
	Link           string      `gorm:"type:varchar(1024);not null;uniqueIndex" json:"link"`        // 推广链接（全局唯一）
	CommissionRate float64     `gorm:"not null;index" json:"commission_rate"`                      // 佣金比例（0-100）
	Category       string      `gorm:"type:varchar(255);not null;index" json:"category"`           // 分类
	Tags           StringArray `gorm:"type:json" json:"tags"`                                      // 标签数组
	Expiry         *time.Time  `json:"expiry,omitempty"`                                           // 过期时间（仅作提示，无过期行为）
	Notes          string      `gorm:"type:text" json:"notes"`                                     // 备注
	Clicks         int64       `gorm:"not null;default:0" json:"clicks"`                           // 点击计数（事件表聚合缓存）
	Conversions    int64       `gorm:"not null;default:0" json:"conversions"`                      // 转化计数（事件表聚合缓存）
	Revenue        Money       `gorm:"type:decimal(20,2);not null;default:0" json:"revenue"`       // 累计收入（事件表聚合缓存）
	CreatedAt      time.Time   `gorm:"index;not null;default:CURRENT_TIMESTAMP" json:"created_at"` // 创建时间
	UpdatedAt      time.Time   `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`       // 更新时间（仅创建时写入）
}

// TableName 指定表名
func (AffiliateLink) TableName() string {
	return "affiliate_links"
}
