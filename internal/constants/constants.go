package constants

// 导出格式
const (
	ExportFormatJSON = "json"
	ExportFormatCSV  = "csv"
)

// 查询限制默认值
const (
	DefaultListLimit   = 50
	DefaultSearchLimit = 20
	MaxQueryLimit      = 500
)

// 佣金比例取值范围（百分比）
const (
	CommissionRateMin = 0
	CommissionRateMax = 100
)
