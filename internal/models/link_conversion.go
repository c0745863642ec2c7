package models

import "time"

// LinkConversion 推广链接转化事件（仅追加，不修改不删除）
type LinkConversion struct {
	ID        uint      `gorm:"primarykey" json:"id"`                                       // 主键
	LinkID    uint      `gorm:"not null;index" json:"link_id"`                              // 链接ID
	Amount    Money     `gorm:"type:decimal(20,2);not null;default:0" json:"amount"`        // 转化金额
	OrderID   string    `gorm:"type:varchar(128)" json:"order_id"`                          // 外部订单号
	CreatedAt time.Time `gorm:"index;not null;default:CURRENT_TIMESTAMP" json:"created_at"` // 转化时间

	Link AffiliateLink `gorm:"foreignKey:LinkID" json:"link,omitempty"` // 所属链接
}

// TableName 指定表名
func (LinkConversion) TableName() string {
	return "link_conversions"
}
