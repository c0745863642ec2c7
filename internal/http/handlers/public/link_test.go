package public

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/linkvault-next/internal/http/response"
	"github.com/linkvault-next/internal/models"
	"github.com/linkvault-next/internal/provider"
	"github.com/linkvault-next/internal/repository"
	"github.com/linkvault-next/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupLinkHandlerTest(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:link_handler_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.AffiliateLink{},
		&models.LinkClick{},
		&models.LinkConversion{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}

	repo := repository.NewLinkRepository(db)
	h := New(&provider.Container{
		LinkRepo:    repo,
		LinkService: service.NewLinkService(repo, service.LinkLimits{}),
	})

	r := gin.New()
	links := r.Group("/api/v1/links")
	{
		links.POST("", h.CreateLink)
		links.GET("", h.ListLinks)
		links.GET("/best", h.BestLink)
		links.GET("/search", h.SearchLinks)
		links.GET("/export", h.ExportLinks)
		links.GET("/:id/stats", h.GetLinkStats)
		links.POST("/:id/clicks", h.TrackClick)
		links.POST("/:id/conversions", h.TrackConversion)
	}
	return r, db
}

func doJSONRequest(t *testing.T, r *gin.Engine, method, path, body string) (*httptest.ResponseRecorder, response.Response) {
	t.Helper()
	w := httptest.NewRecorder()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	r.ServeHTTP(w, req)

	var resp response.Response
	if strings.Contains(w.Header().Get("Content-Type"), "application/json") && w.Body.Len() > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("unmarshal response failed: %v, body=%s", err, w.Body.String())
		}
	}
	return w, resp
}

func TestLinkHandlerCreateAndDuplicate(t *testing.T) {
	r, _ := setupLinkHandlerTest(t)

	body := `{"program":"Amazon Associates","product":"Standing Desk","link":"https://amzn.example/desk","commission_rate":4.5,"category":"office-furniture","tags":["desk","wfh"]}`
	w, resp := doJSONRequest(t, r, http.MethodPost, "/api/v1/links", body)
	if w.Code != http.StatusOK || resp.StatusCode != response.CodeOK {
		t.Fatalf("create failed: http=%d code=%d msg=%s", w.Code, resp.StatusCode, resp.Msg)
	}

	_, resp = doJSONRequest(t, r, http.MethodPost, "/api/v1/links", body)
	if resp.StatusCode != response.CodeConflict {
		t.Fatalf("expected conflict code %d, got %d", response.CodeConflict, resp.StatusCode)
	}
}

func TestLinkHandlerCreateRejectsBadCommission(t *testing.T) {
	r, _ := setupLinkHandlerTest(t)

	body := `{"program":"Amazon Associates","product":"Standing Desk","link":"https://amzn.example/desk","commission_rate":120,"category":"office-furniture"}`
	_, resp := doJSONRequest(t, r, http.MethodPost, "/api/v1/links", body)
	if resp.StatusCode != response.CodeBadRequest {
		t.Fatalf("expected bad request code, got %d", resp.StatusCode)
	}
}

func TestLinkHandlerBestNotFound(t *testing.T) {
	r, _ := setupLinkHandlerTest(t)

	_, resp := doJSONRequest(t, r, http.MethodGet, "/api/v1/links/best?category=groceries", "")
	if resp.StatusCode != response.CodeNotFound {
		t.Fatalf("expected not found code, got %d", resp.StatusCode)
	}
}

func TestLinkHandlerTrackClickMissingLink(t *testing.T) {
	r, db := setupLinkHandlerTest(t)

	_, resp := doJSONRequest(t, r, http.MethodPost, "/api/v1/links/999/clicks", `{"source":"newsletter"}`)
	if resp.StatusCode != response.CodeNotFound {
		t.Fatalf("expected not found code, got %d", resp.StatusCode)
	}

	var total int64
	if err := db.Model(&models.LinkClick{}).Count(&total).Error; err != nil {
		t.Fatalf("count clicks failed: %v", err)
	}
	if total != 0 {
		t.Fatalf("expected no click rows, got %d", total)
	}
}

func TestLinkHandlerStatsFlow(t *testing.T) {
	r, _ := setupLinkHandlerTest(t)

	body := `{"program":"ShareASale","product":"Ergonomic Chair","link":"https://share.example/chair","commission_rate":12,"category":"office-furniture"}`
	_, resp := doJSONRequest(t, r, http.MethodPost, "/api/v1/links", body)
	if resp.StatusCode != response.CodeOK {
		t.Fatalf("create failed: %d", resp.StatusCode)
	}
	created, ok := resp.Data.(map[string]interface{})
	if !ok {
		t.Fatalf("unexpected create payload: %v", resp.Data)
	}
	id := int(created["id"].(float64))

	if _, resp = doJSONRequest(t, r, http.MethodPost, fmt.Sprintf("/api/v1/links/%d/clicks", id), `{"source":"blog"}`); resp.StatusCode != response.CodeOK {
		t.Fatalf("track click failed: %d", resp.StatusCode)
	}
	if _, resp = doJSONRequest(t, r, http.MethodPost, fmt.Sprintf("/api/v1/links/%d/conversions", id), `{"amount":"22.50","order_id":"ORD-1"}`); resp.StatusCode != response.CodeOK {
		t.Fatalf("track conversion failed: %d", resp.StatusCode)
	}

	_, resp = doJSONRequest(t, r, http.MethodGet, fmt.Sprintf("/api/v1/links/%d/stats", id), "")
	if resp.StatusCode != response.CodeOK {
		t.Fatalf("get stats failed: %d", resp.StatusCode)
	}
	stats, ok := resp.Data.(map[string]interface{})
	if !ok {
		t.Fatalf("unexpected stats payload: %v", resp.Data)
	}
	if stats["clicks"].(float64) != 1 || stats["conversions"].(float64) != 1 {
		t.Fatalf("unexpected counters: %v", stats)
	}
	if stats["conversion_rate"] != "100.00%" {
		t.Fatalf("unexpected conversion rate: %v", stats["conversion_rate"])
	}
	if stats["revenue"] != "22.50" {
		t.Fatalf("unexpected revenue: %v", stats["revenue"])
	}
}

func TestLinkHandlerExportCSV(t *testing.T) {
	r, _ := setupLinkHandlerTest(t)

	body := `{"program":"Amazon Associates","product":"Standing Desk","link":"https://amzn.example/desk","commission_rate":4.5,"category":"office-furniture"}`
	if _, resp := doJSONRequest(t, r, http.MethodPost, "/api/v1/links", body); resp.StatusCode != response.CodeOK {
		t.Fatalf("create failed: %d", resp.StatusCode)
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/links/export?format=csv", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("export failed: %d", w.Code)
	}
	if !strings.HasPrefix(w.Header().Get("Content-Type"), "text/csv") {
		t.Fatalf("unexpected content type: %s", w.Header().Get("Content-Type"))
	}
	if !strings.Contains(w.Header().Get("Content-Disposition"), "attachment") {
		t.Fatalf("expected attachment disposition, got %s", w.Header().Get("Content-Disposition"))
	}
	if !strings.HasPrefix(w.Body.String(), "ID,Program,Product,Link") {
		t.Fatalf("unexpected csv body: %s", w.Body.String())
	}
}
