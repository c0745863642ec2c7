package repository

import (
	"fmt"
	"testing"
	"time"

	"github.com/linkvault-next/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func setupLinkRepositoryTest(t *testing.T) (*GormLinkRepository, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:link_repo_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
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
	return NewLinkRepository(db), db
}

func mustCreateLink(t *testing.T, repo *GormLinkRepository, link models.AffiliateLink) models.AffiliateLink {
	t.Helper()
	if err := repo.Create(&link); err != nil {
		t.Fatalf("create link failed: %v", err)
	}
	return link
}

func TestLinkRepositoryListFilters(t *testing.T) {
	repo, _ := setupLinkRepositoryTest(t)

	mustCreateLink(t, repo, models.AffiliateLink{
		Program:        "Amazon Associates",
		Product:        "Standing Desk",
		Link:           "https://amzn.example/desk",
		CommissionRate: 4.5,
		Category:       "office-furniture",
	})
	mustCreateLink(t, repo, models.AffiliateLink{
		Program:        "ShareASale",
		Product:        "Ergonomic Chair",
		Link:           "https://share.example/chair",
		CommissionRate: 12,
		Category:       "office-furniture",
	})
	mustCreateLink(t, repo, models.AffiliateLink{
		Program:        "Amazon Associates",
		Product:        "Mechanical Keyboard",
		Link:           "https://amzn.example/keyboard",
		CommissionRate: 8,
		Category:       "electronics",
	})

	minCommission := 5.0
	rows, err := repo.List(LinkListFilter{Category: "office-furniture", MinCommission: &minCommission})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if rows[0].Product != "Ergonomic Chair" {
		t.Fatalf("unexpected product: %s", rows[0].Product)
	}

	rows, err = repo.List(LinkListFilter{Program: "Amazon Associates"})
	if err != nil {
		t.Fatalf("list by program failed: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].CommissionRate < rows[1].CommissionRate {
		t.Fatalf("expected commission_rate descending order, got %v then %v", rows[0].CommissionRate, rows[1].CommissionRate)
	}
}

func TestLinkRepositoryCreateRejectsDuplicateURL(t *testing.T) {
	repo, _ := setupLinkRepositoryTest(t)

	mustCreateLink(t, repo, models.AffiliateLink{
		Program:        "Amazon Associates",
		Product:        "Standing Desk",
		Link:           "https://amzn.example/desk",
		CommissionRate: 4.5,
		Category:       "office-furniture",
	})

	duplicate := models.AffiliateLink{
		Program:        "ShareASale",
		Product:        "Another Desk",
		Link:           "https://amzn.example/desk",
		CommissionRate: 6,
		Category:       "office-furniture",
	}
	if err := repo.Create(&duplicate); err == nil {
		t.Fatalf("expected unique violation for duplicate link url")
	}
}

func TestLinkRepositoryBestByCategory(t *testing.T) {
	repo, _ := setupLinkRepositoryTest(t)

	mustCreateLink(t, repo, models.AffiliateLink{
		Program:        "Amazon Associates",
		Product:        "Standing Desk",
		Link:           "https://amzn.example/desk",
		CommissionRate: 4.5,
		Category:       "office-furniture",
	})
	mustCreateLink(t, repo, models.AffiliateLink{
		Program:        "ShareASale",
		Product:        "Ergonomic Chair",
		Link:           "https://share.example/chair",
		CommissionRate: 12,
		Category:       "office-furniture",
	})

	best, err := repo.BestByCategory("office-furniture")
	if err != nil {
		t.Fatalf("best by category failed: %v", err)
	}
	if best == nil || best.Product != "Ergonomic Chair" {
		t.Fatalf("unexpected best link: %+v", best)
	}

	missing, err := repo.BestByCategory("groceries")
	if err != nil {
		t.Fatalf("best by category failed: %v", err)
	}
	if missing != nil {
		t.Fatalf("expected nil for empty category, got %+v", missing)
	}
}

func TestLinkRepositorySearch(t *testing.T) {
	repo, _ := setupLinkRepositoryTest(t)

	mustCreateLink(t, repo, models.AffiliateLink{
		Program:        "Amazon Associates",
		Product:        "Standing Desk",
		Link:           "https://amzn.example/desk",
		CommissionRate: 4.5,
		Category:       "office-furniture",
		Notes:          "motorized height adjustment",
	})
	mustCreateLink(t, repo, models.AffiliateLink{
		Program:        "ShareASale",
		Product:        "Ergonomic Chair",
		Link:           "https://share.example/chair",
		CommissionRate: 12,
		Category:       "office-furniture",
	})

	rows, err := repo.Search("desk", 10)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(rows) != 1 || rows[0].Product != "Standing Desk" {
		t.Fatalf("unexpected search result: %+v", rows)
	}

	rows, err = repo.Search("height adjustment", 10)
	if err != nil {
		t.Fatalf("search by notes failed: %v", err)
	}
	if len(rows) != 1 || rows[0].Product != "Standing Desk" {
		t.Fatalf("expected notes match, got %+v", rows)
	}
}

func TestLinkRepositoryIncrements(t *testing.T) {
	repo, _ := setupLinkRepositoryTest(t)

	link := mustCreateLink(t, repo, models.AffiliateLink{
		Program:        "Amazon Associates",
		Product:        "Standing Desk",
		Link:           "https://amzn.example/desk",
		CommissionRate: 4.5,
		Category:       "office-furniture",
	})

	affected, err := repo.IncrementClicks(link.ID)
	if err != nil {
		t.Fatalf("increment clicks failed: %v", err)
	}
	if affected != 1 {
		t.Fatalf("expected 1 affected row, got %d", affected)
	}

	affected, err = repo.IncrementConversion(link.ID, decimal.RequireFromString("22.50"))
	if err != nil {
		t.Fatalf("increment conversion failed: %v", err)
	}
	if affected != 1 {
		t.Fatalf("expected 1 affected row, got %d", affected)
	}

	affected, err = repo.IncrementClicks(999999)
	if err != nil {
		t.Fatalf("increment clicks for missing link failed: %v", err)
	}
	if affected != 0 {
		t.Fatalf("expected 0 affected rows for missing link, got %d", affected)
	}

	stored, err := repo.GetByID(link.ID)
	if err != nil {
		t.Fatalf("get by id failed: %v", err)
	}
	if stored.Clicks != 1 || stored.Conversions != 1 {
		t.Fatalf("unexpected counters: clicks=%d conversions=%d", stored.Clicks, stored.Conversions)
	}
	if stored.Revenue.String() != "22.50" {
		t.Fatalf("unexpected revenue: %s", stored.Revenue.String())
	}
}

func TestLinkRepositorySumConversionAmount(t *testing.T) {
	repo, _ := setupLinkRepositoryTest(t)

	link := mustCreateLink(t, repo, models.AffiliateLink{
		Program:        "Amazon Associates",
		Product:        "Standing Desk",
		Link:           "https://amzn.example/desk",
		CommissionRate: 4.5,
		Category:       "office-furniture",
	})

	amounts := []string{"10.00", "22.50"}
	for i, raw := range amounts {
		conversion := models.LinkConversion{
			LinkID:  link.ID,
			Amount:  models.NewMoneyFromDecimal(decimal.RequireFromString(raw)),
			OrderID: fmt.Sprintf("ORD-%d", i+1),
		}
		if err := repo.CreateConversion(&conversion); err != nil {
			t.Fatalf("create conversion failed: %v", err)
		}
	}

	total, err := repo.SumConversionAmount(link.ID)
	if err != nil {
		t.Fatalf("sum conversion amount failed: %v", err)
	}
	if !total.Equal(decimal.RequireFromString("32.50")) {
		t.Fatalf("unexpected total: %s", total.String())
	}

	count, err := repo.CountConversions(link.ID)
	if err != nil {
		t.Fatalf("count conversions failed: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 conversions, got %d", count)
	}
}
