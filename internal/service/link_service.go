package service

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/linkvault-next/internal/constants"
	"github.com/linkvault-next/internal/models"
	"github.com/linkvault-next/internal/repository"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// LinkLimits 查询条数限制配置，零值回落到默认常量
type LinkLimits struct {
	DefaultListLimit   int
	DefaultSearchLimit int
	MaxLimit           int
}

func (l LinkLimits) normalized() LinkLimits {
	if l.DefaultListLimit <= 0 {
		l.DefaultListLimit = constants.DefaultListLimit
	}
	if l.DefaultSearchLimit <= 0 {
		l.DefaultSearchLimit = constants.DefaultSearchLimit
	}
	if l.MaxLimit <= 0 {
		l.MaxLimit = constants.MaxQueryLimit
	}
	return l
}

// LinkService 推广链接业务服务
type LinkService struct {
	repo   repository.LinkRepository
	limits LinkLimits
}

// NewLinkService 创建推广链接服务
func NewLinkService(repo repository.LinkRepository, limits LinkLimits) *LinkService {
	return &LinkService{repo: repo, limits: limits.normalized()}
}

// CreateLinkInput 创建推广链接输入
type CreateLinkInput struct {
	Program        string
	Product        string
	Link           string
	CommissionRate float64
	Category       string
	Tags           []string
	Expiry         *time.Time
	Notes          string
}

// LinkListInput 查询推广链接列表输入
type LinkListInput struct {
	Category      string
	Program       string
	MinCommission *float64
	MaxCommission *float64
	Limit         int
}

// TrackClickInput 点击事件输入
type TrackClickInput struct {
	LinkID uint
	Source string
	UserID string
}

// TrackConversionInput 转化事件输入
type TrackConversionInput struct {
	LinkID  uint
	Amount  decimal.Decimal
	OrderID string
}

// LinkStats 链接统计数据（基于事件表实时聚合）
type LinkStats struct {
	LinkID         uint         `json:"link_id"`
	Product        string       `json:"product"`
	Program        string       `json:"program"`
	Clicks         int64        `json:"clicks"`
	Conversions    int64        `json:"conversions"`
	Revenue        models.Money `json:"revenue"`
	ConversionRate string       `json:"conversion_rate"`
}

// CreateLink 创建推广链接
func (s *LinkService) CreateLink(input CreateLinkInput) (*models.AffiliateLink, error) {
	program := strings.TrimSpace(input.Program)
	product := strings.TrimSpace(input.Product)
	link := strings.TrimSpace(input.Link)
	category := strings.TrimSpace(input.Category)
	if program == "" || product == "" || link == "" || category == "" {
		return nil, ErrValidation
	}
	if input.CommissionRate < constants.CommissionRateMin || input.CommissionRate > constants.CommissionRateMax {
		return nil, ErrValidation
	}

	record := &models.AffiliateLink{
		Program:        program,
		Product:        product,
		Link:           link,
		CommissionRate: input.CommissionRate,
		Category:       category,
		Tags:           models.StringArray(input.Tags),
		Expiry:         input.Expiry,
		Notes:          strings.TrimSpace(input.Notes),
	}
	if err := s.repo.Create(record); err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateLink
		}
		return nil, err
	}
	return record, nil
}

// ListLinks 按条件查询推广链接，佣金比例降序
func (s *LinkService) ListLinks(input LinkListInput) ([]models.AffiliateLink, error) {
	rows, err := s.repo.List(repository.LinkListFilter{
		Category:      input.Category,
		Program:       input.Program,
		MinCommission: input.MinCommission,
		MaxCommission: input.MaxCommission,
		Limit:         s.normalizeLimit(input.Limit, s.limits.DefaultListLimit),
	})
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []models.AffiliateLink{}
	}
	return rows, nil
}

// BestForCategory 查询分类下佣金比例最高的链接
func (s *LinkService) BestForCategory(category string) (*models.AffiliateLink, error) {
	if strings.TrimSpace(category) == "" {
		return nil, ErrValidation
	}
	link, err := s.repo.BestByCategory(category)
	if err != nil {
		return nil, err
	}
	if link == nil {
		return nil, ErrNotFound
	}
	return link, nil
}

// SearchLinks 按商品名或备注搜索推广链接
func (s *LinkService) SearchLinks(query string, limit int) ([]models.AffiliateLink, error) {
	normalized := strings.TrimSpace(query)
	if normalized == "" {
		return nil, ErrValidation
	}
	rows, err := s.repo.Search(normalized, s.normalizeLimit(limit, s.limits.DefaultSearchLimit))
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []models.AffiliateLink{}
	}
	return rows, nil
}

// GetStats 获取链接统计数据
// 点击/转化/收入直接从事件表聚合，不读链接上的缓存计数，两者必须保持一致。
func (s *LinkService) GetStats(linkID uint) (*LinkStats, error) {
	link, err := s.repo.GetByID(linkID)
	if err != nil {
		return nil, err
	}
	if link == nil {
		return nil, ErrNotFound
	}

	clicks, err := s.repo.CountClicks(linkID)
	if err != nil {
		return nil, err
	}
	conversions, err := s.repo.CountConversions(linkID)
	if err != nil {
		return nil, err
	}
	revenue, err := s.repo.SumConversionAmount(linkID)
	if err != nil {
		return nil, err
	}

	return &LinkStats{
		LinkID:         link.ID,
		Product:        link.Product,
		Program:        link.Program,
		Clicks:         clicks,
		Conversions:    conversions,
		Revenue:        models.NewMoneyFromDecimal(revenue),
		ConversionRate: formatConversionRate(clicks, conversions),
	}, nil
}

// TrackClick 记录点击事件并同步累加链接点击计数
// 事件插入与计数更新在同一事务内提交，链接不存在时整体回滚。
func (s *LinkService) TrackClick(input TrackClickInput) error {
	if input.LinkID == 0 {
		return ErrNotFound
	}
	return s.repo.Transaction(func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		affected, err := txRepo.IncrementClicks(input.LinkID)
		if err != nil {
			return err
		}
		if affected == 0 {
			return ErrNotFound
		}
		return txRepo.CreateClick(&models.LinkClick{
			LinkID: input.LinkID,
			Source: strings.TrimSpace(input.Source),
			UserID: strings.TrimSpace(input.UserID),
		})
	})
}

// TrackConversion 记录转化事件并同步累加转化计数与收入
// 金额不做上下界校验（负数亦接受），仅要求可解析。
func (s *LinkService) TrackConversion(input TrackConversionInput) error {
	if input.LinkID == 0 {
		return ErrNotFound
	}
	return s.repo.Transaction(func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		affected, err := txRepo.IncrementConversion(input.LinkID, input.Amount)
		if err != nil {
			return err
		}
		if affected == 0 {
			return ErrNotFound
		}
		return txRepo.CreateConversion(&models.LinkConversion{
			LinkID:  input.LinkID,
			Amount:  models.NewMoneyFromDecimal(input.Amount),
			OrderID: strings.TrimSpace(input.OrderID),
		})
	})
}

// ExportLinks 导出全部推广链接（json/csv）
func (s *LinkService) ExportLinks(format string) ([]byte, string, error) {
	normalized := strings.TrimSpace(strings.ToLower(format))
	if normalized != constants.ExportFormatJSON && normalized != constants.ExportFormatCSV {
		return nil, "", ErrExportFormatInvalid
	}

	rows, err := s.repo.ListAll()
	if err != nil {
		return nil, "", err
	}
	if rows == nil {
		rows = []models.AffiliateLink{}
	}

	if normalized == constants.ExportFormatJSON {
		content, err := json.MarshalIndent(rows, "", "  ")
		if err != nil {
			return nil, "", err
		}
		return content, "application/json; charset=utf-8", nil
	}

	builder := &strings.Builder{}
	writer := csv.NewWriter(builder)
	if err := writer.Write([]string{
		"ID",
		"Program",
		"Product",
		"Link",
		"Commission %",
		"Category",
		"Clicks",
		"Conversions",
		"Revenue",
	}); err != nil {
		return nil, "", err
	}
	for _, row := range rows {
		record := []string{
			strconv.FormatUint(uint64(row.ID), 10),
			row.Program,
			row.Product,
			row.Link,
			strconv.FormatFloat(row.CommissionRate, 'f', -1, 64),
			row.Category,
			strconv.FormatInt(row.Clicks, 10),
			strconv.FormatInt(row.Conversions, 10),
			row.Revenue.String(),
		}
		if err := writer.Write(record); err != nil {
			return nil, "", err
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, "", err
	}
	return []byte(builder.String()), "text/csv; charset=utf-8", nil
}

// formatConversionRate 计算转化率文案，点击为零时固定返回 "0%"
func formatConversionRate(clicks, conversions int64) string {
	if clicks <= 0 {
		return "0%"
	}
	rate := float64(conversions) / float64(clicks) * 100
	return fmt.Sprintf("%.2f%%", rate)
}

func (s *LinkService) normalizeLimit(limit, fallback int) int {
	if limit <= 0 {
		return fallback
	}
	if limit > s.limits.MaxLimit {
		return s.limits.MaxLimit
	}
	return limit
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate")
}
