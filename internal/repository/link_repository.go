package repository

import (
	"errors"
	"strings"

	"github.com/linkvault-next/internal/constants"
	"github.com/linkvault-next/internal/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// LinkRepository 推广链接数据访问接口
type LinkRepository interface {
	Transaction(fn func(tx *gorm.DB) error) error
	WithTx(tx *gorm.DB) LinkRepository

	Create(link *models.AffiliateLink) error
	GetByID(id uint) (*models.AffiliateLink, error)
	List(filter LinkListFilter) ([]models.AffiliateLink, error)
	BestByCategory(category string) (*models.AffiliateLink, error)
	Search(keyword string, limit int) ([]models.AffiliateLink, error)
	ListAll() ([]models.AffiliateLink, error)

	CreateClick(click *models.LinkClick) error
	CreateConversion(conversion *models.LinkConversion) error
	IncrementClicks(linkID uint) (int64, error)
	IncrementConversion(linkID uint, amount decimal.Decimal) (int64, error)

	CountClicks(linkID uint) (int64, error)
	CountConversions(linkID uint) (int64, error)
	SumConversionAmount(linkID uint) (decimal.Decimal, error)
}

// GormLinkRepository GORM 推广链接仓储
type GormLinkRepository struct {
	db *gorm.DB
}

// NewLinkRepository 创建推广链接仓储
func NewLinkRepository(db *gorm.DB) *GormLinkRepository {
	return &GormLinkRepository{db: db}
}

// WithTx 绑定事务
func (r *GormLinkRepository) WithTx(tx *gorm.DB) LinkRepository {
	if tx == nil {
		return r
	}
	return &GormLinkRepository{db: tx}
}

// Transaction 执行事务
func (r *GormLinkRepository) Transaction(fn func(tx *gorm.DB) error) error {
	if fn == nil {
		return nil
	}
	return r.db.Transaction(fn)
}

// Create 创建推广链接
func (r *GormLinkRepository) Create(link *models.AffiliateLink) error {
	return r.db.Create(link).Error
}

// GetByID 按ID获取推广链接
func (r *GormLinkRepository) GetByID(id uint) (*models.AffiliateLink, error) {
	if id == 0 {
		return nil, nil
	}
	var link models.AffiliateLink
	if err := r.db.First(&link, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &link, nil
}

// List 按条件查询推广链接，佣金比例降序
func (r *GormLinkRepository) List(filter LinkListFilter) ([]models.AffiliateLink, error) {
	query := r.db.Model(&models.AffiliateLink{})
	if category := strings.TrimSpace(filter.Category); category != "" {
		query = query.Where("category = ?", category)
	}
	if program := strings.TrimSpace(filter.Program); program != "" {
		query = query.Where("program = ?", program)
	}
	if filter.MinCommission != nil {
		query = query.Where("commission_rate >= ?", *filter.MinCommission)
	}
	if filter.MaxCommission != nil {
		query = query.Where("commission_rate <= ?", *filter.MaxCommission)
	}
	query = applyLimit(query, filter.Limit, constants.DefaultListLimit)

	var rows []models.AffiliateLink
	if err := query.Order("commission_rate DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// BestByCategory 查询分类下佣金比例最高的链接
func (r *GormLinkRepository) BestByCategory(category string) (*models.AffiliateLink, error) {
	normalized := strings.TrimSpace(category)
	if normalized == "" {
		return nil, nil
	}
	var link models.AffiliateLink
	err := r.db.Model(&models.AffiliateLink{}).
		Where("category = ?", normalized).
		Order("commission_rate DESC").
		Limit(1).
		First(&link).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &link, nil
}

// Search 按商品名或备注模糊搜索，佣金比例降序
func (r *GormLinkRepository) Search(keyword string, limit int) ([]models.AffiliateLink, error) {
	normalized := strings.TrimSpace(keyword)
	if normalized == "" {
		return []models.AffiliateLink{}, nil
	}
	like := "%" + normalized + "%"
	query := r.db.Model(&models.AffiliateLink{}).
		Where("(product LIKE ? OR notes LIKE ?)", like, like)
	query = applyLimit(query, limit, constants.DefaultSearchLimit)

	var rows []models.AffiliateLink
	if err := query.Order("commission_rate DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ListAll 查询全部推广链接（导出用），按ID升序
func (r *GormLinkRepository) ListAll() ([]models.AffiliateLink, error) {
	var rows []models.AffiliateLink
	if err := r.db.Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// CreateClick 创建点击事件
func (r *GormLinkRepository) CreateClick(click *models.LinkClick) error {
	return r.db.Create(click).Error
}

// CreateConversion 创建转化事件
func (r *GormLinkRepository) CreateConversion(conversion *models.LinkConversion) error {
	return r.db.Create(conversion).Error
}

// IncrementClicks 点击计数加一，返回影响行数
func (r *GormLinkRepository) IncrementClicks(linkID uint) (int64, error) {
	if linkID == 0 {
		return 0, nil
	}
	// UpdateColumn 跳过 updated_at，计数累加不算内容变更
	result := r.db.Model(&models.AffiliateLink{}).
		Where("id = ?", linkID).
		UpdateColumn("clicks", gorm.Expr("clicks + 1"))
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// IncrementConversion 转化计数加一并累加收入，返回影响行数
func (r *GormLinkRepository) IncrementConversion(linkID uint, amount decimal.Decimal) (int64, error) {
	if linkID == 0 {
		return 0, nil
	}
	result := r.db.Model(&models.AffiliateLink{}).
		Where("id = ?", linkID).
		UpdateColumns(map[string]interface{}{
			"conversions": gorm.Expr("conversions + 1"),
			"revenue":     gorm.Expr("revenue + ?", amount.Round(2)),
		})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// CountClicks 统计点击事件数
func (r *GormLinkRepository) CountClicks(linkID uint) (int64, error) {
	if linkID == 0 {
		return 0, nil
	}
	var total int64
	if err := r.db.Model(&models.LinkClick{}).Where("link_id = ?", linkID).Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

// CountConversions 统计转化事件数
func (r *GormLinkRepository) CountConversions(linkID uint) (int64, error) {
	if linkID == 0 {
		return 0, nil
	}
	var total int64
	if err := r.db.Model(&models.LinkConversion{}).Where("link_id = ?", linkID).Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

// SumConversionAmount 汇总转化金额
func (r *GormLinkRepository) SumConversionAmount(linkID uint) (decimal.Decimal, error) {
	if linkID == 0 {
		return decimal.Zero, nil
	}
	var row struct {
		Total decimal.Decimal `gorm:"column:total"`
	}
	if err := r.db.Model(&models.LinkConversion{}).
		Where("link_id = ?", linkID).
		Select("COALESCE(SUM(amount), 0) AS total").
		Scan(&row).Error; err != nil {
		return decimal.Zero, err
	}
	return row.Total.Round(2), nil
}
