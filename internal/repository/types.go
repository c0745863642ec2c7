package repository

// LinkListFilter 查询推广链接列表的过滤条件
type LinkListFilter struct {
	Category      string
	Program       string
	MinCommission *float64
	MaxCommission *float64
	Limit         int
}
