package models

import "time"

// LinkClick 推广链接点击事件（仅追加，不修改不删除）
type LinkClick struct {
	ID        uint      `gorm:"primarykey" json:"id"`                                       // 主键
	LinkID    uint      `gorm:"not null;index" json:"link_id"`                              // 链接ID
	Source    string    `gorm:"type:varchar(255)" json:"source"`                            // 来源渠道
	UserID    string    `gorm:"type:varchar(128)" json:"user_id"`                           // 用户标识
	CreatedAt time.Time `gorm:"index;not null;default:CURRENT_TIMESTAMP" json:"created_at"` // 点击时间

	Link AffiliateLink `gorm:"foreignKey:LinkID" json:"link,omitempty"` // 所属链接
}

// TableName 指定表名
func (LinkClick) TableName() string {
	return "link_clicks"
}
