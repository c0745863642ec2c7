package repository

import "gorm.io/gorm"

// applyLimit 应用查询条数限制，统一处理非法取值
func applyLimit(query *gorm.DB, limit, fallback int) *gorm.DB {
	if query == nil {
		return query
	}
	if limit <= 0 {
		limit = fallback
	}
	if limit <= 0 {
		return query
	}
	return query.Limit(limit)
}
