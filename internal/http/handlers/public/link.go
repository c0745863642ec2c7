package public

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/linkvault-next/internal/http/response"
	"github.com/linkvault-next/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// CreateLinkRequest 创建推广链接请求
type CreateLinkRequest struct {
	Program        string   `json:"program" binding:"required"`
	Product        string   `json:"product" binding:"required"`
	Link           string   `json:"link" binding:"required"`
	CommissionRate float64  `json:"commission_rate"`
	Category       string   `json:"category" binding:"required"`
	Tags           []string `json:"tags"`
	Expiry         string   `json:"expiry"`
	Notes          string   `json:"notes"`
}

// TrackClickRequest 点击事件请求
type TrackClickRequest struct {
	Source string `json:"source"`
	UserID string `json:"user_id"`
}

// TrackConversionRequest 转化事件请求
type TrackConversionRequest struct {
	Amount  string `json:"amount" binding:"required"`
	OrderID string `json:"order_id"`
}

// CreateLink 创建推广链接
func (h *Handler) CreateLink(c *gin.Context) {
	var req CreateLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	expiry, err := parseExpiry(req.Expiry)
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.expiry_invalid", nil)
		return
	}

	link, err := h.LinkService.CreateLink(service.CreateLinkInput{
		Program:        req.Program,
		Product:        req.Product,
		Link:           req.Link,
		CommissionRate: req.CommissionRate,
		Category:       req.Category,
		Tags:           req.Tags,
		Expiry:         expiry,
		Notes:          req.Notes,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			respondError(c, response.CodeBadRequest, "error.link_invalid", nil)
		case errors.Is(err, service.ErrDuplicateLink):
			respondError(c, response.CodeConflict, "error.link_duplicate", nil)
		default:
			respondError(c, response.CodeInternal, "error.save_failed", err)
		}
		return
	}
	response.Success(c, link)
}

// ListLinks 按条件查询推广链接
func (h *Handler) ListLinks(c *gin.Context) {
	input := service.LinkListInput{
		Category: strings.TrimSpace(c.Query("category")),
		Program:  strings.TrimSpace(c.Query("program")),
	}
	if raw := strings.TrimSpace(c.Query("min_commission")); raw != "" {
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			respondError(c, response.CodeBadRequest, "error.commission_invalid", nil)
			return
		}
		input.MinCommission = &value
	}
	if raw := strings.TrimSpace(c.Query("max_commission")); raw != "" {
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			respondError(c, response.CodeBadRequest, "error.commission_invalid", nil)
			return
		}
		input.MaxCommission = &value
	}
	if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
		value, err := strconv.Atoi(raw)
		if err != nil {
			respondError(c, response.CodeBadRequest, "error.limit_invalid", nil)
			return
		}
		input.Limit = value
	}

	rows, err := h.LinkService.ListLinks(input)
	if err != nil {
		respondError(c, response.CodeInternal, "error.link_fetch_failed", err)
		return
	}
	response.Success(c, rows)
}

// BestLink 查询分类下佣金比例最高的链接
func (h *Handler) BestLink(c *gin.Context) {
	link, err := h.LinkService.BestForCategory(c.Query("category"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			respondError(c, response.CodeBadRequest, "error.category_required", nil)
		case errors.Is(err, service.ErrNotFound):
			respondError(c, response.CodeNotFound, "error.link_not_found", nil)
		default:
			respondError(c, response.CodeInternal, "error.link_fetch_failed", err)
		}
		return
	}
	response.Success(c, link)
}

// SearchLinks 按商品名或备注搜索推广链接
func (h *Handler) SearchLinks(c *gin.Context) {
	limit := 0
	if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
		value, err := strconv.Atoi(raw)
		if err != nil {
			respondError(c, response.CodeBadRequest, "error.limit_invalid", nil)
			return
		}
		limit = value
	}

	rows, err := h.LinkService.SearchLinks(c.Query("q"), limit)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			respondError(c, response.CodeBadRequest, "error.query_required", nil)
		default:
			respondError(c, response.CodeInternal, "error.link_fetch_failed", err)
		}
		return
	}
	response.Success(c, rows)
}

// GetLinkStats 获取链接统计数据
func (h *Handler) GetLinkStats(c *gin.Context) {
	linkID, ok := parseLinkID(c)
	if !ok {
		return
	}

	stats, err := h.LinkService.GetStats(linkID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			respondError(c, response.CodeNotFound, "error.link_not_found", nil)
		default:
			respondError(c, response.CodeInternal, "error.link_fetch_failed", err)
		}
		return
	}
	response.Success(c, stats)
}

// TrackClick 记录点击事件
func (h *Handler) TrackClick(c *gin.Context) {
	linkID, ok := parseLinkID(c)
	if !ok {
		return
	}

	var req TrackClickRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, response.CodeBadRequest, "error.bad_request", err)
			return
		}
	}

	err := h.LinkService.TrackClick(service.TrackClickInput{
		LinkID: linkID,
		Source: req.Source,
		UserID: req.UserID,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			respondError(c, response.CodeNotFound, "error.link_not_found", nil)
		default:
			respondError(c, response.CodeInternal, "error.save_failed", err)
		}
		return
	}
	response.Success(c, gin.H{"ok": true})
}

// TrackConversion 记录转化事件
func (h *Handler) TrackConversion(c *gin.Context) {
	linkID, ok := parseLinkID(c)
	if !ok {
		return
	}

	var req TrackConversionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	amount, err := decimal.NewFromString(strings.TrimSpace(req.Amount))
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.amount_invalid", nil)
		return
	}

	err = h.LinkService.TrackConversion(service.TrackConversionInput{
		LinkID:  linkID,
		Amount:  amount,
		OrderID: req.OrderID,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			respondError(c, response.CodeNotFound, "error.link_not_found", nil)
		default:
			respondError(c, response.CodeInternal, "error.save_failed", err)
		}
		return
	}
	response.Success(c, gin.H{"ok": true})
}

// ExportLinks 导出全部推广链接
func (h *Handler) ExportLinks(c *gin.Context) {
	format := c.DefaultQuery("format", "json")
	content, contentType, err := h.LinkService.ExportLinks(format)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrExportFormatInvalid):
			respondError(c, response.CodeBadRequest, "error.export_format_invalid", nil)
		default:
			respondError(c, response.CodeInternal, "error.link_fetch_failed", err)
		}
		return
	}
	filename := fmt.Sprintf("affiliate_links_%s.%s", time.Now().Format("20060102_150405"), strings.ToLower(strings.TrimSpace(format)))
	c.Header("Content-Type", contentType)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", filename))
	c.Data(http.StatusOK, contentType, content)
}

func parseLinkID(c *gin.Context) (uint, bool) {
	raw := strings.TrimSpace(c.Param("id"))
	value, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || value == 0 {
		respondError(c, response.CodeBadRequest, "error.link_id_invalid", nil)
		return 0, false
	}
	return uint(value), true
}

// parseExpiry 解析过期时间，支持日期和 RFC3339 两种格式
func parseExpiry(raw string) (*time.Time, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if parsed, err := time.Parse(layout, trimmed); err == nil {
			return &parsed, nil
		}
	}
	return nil, fmt.Errorf("invalid expiry: %s", trimmed)
}
