package main

import (
	"errors"
	"time"

	"github.com/linkvault-next/internal/config"
	"github.com/linkvault-next/internal/logger"
	"github.com/linkvault-next/internal/models"

	"gorm.io/gorm"
)

func main() {
	// 连接数据库
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}

	// 自动迁移
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	expiry := time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC)
	links := []models.AffiliateLink{
		{
			Program:        "Amazon Associates",
			Product:        "Standing Desk",
			Link:           "https://amzn.example/standing-desk",
			CommissionRate: 4.5,
			Category:       "office-furniture",
			Tags:           models.StringArray{"desk", "wfh"},
			Notes:          "Motorized height adjustment",
		},
		{
			Program:        "ShareASale",
			Product:        "Ergonomic Chair",
			Link:           "https://share.example/ergonomic-chair",
			CommissionRate: 12,
			Category:       "office-furniture",
			Tags:           models.StringArray{"chair", "ergonomic"},
			Expiry:         &expiry,
		},
		{
			Program:        "Amazon Associates",
			Product:        "Mechanical Keyboard",
			Link:           "https://amzn.example/mechanical-keyboard",
			CommissionRate: 8,
			Category:       "electronics",
			Tags:           models.StringArray{"keyboard", "mechanical"},
		},
		{
			Program:        "CJ Affiliate",
			Product:        "4K Monitor",
			Link:           "https://cj.example/4k-monitor",
			CommissionRate: 6.5,
			Category:       "electronics",
			Tags:           models.StringArray{"monitor", "4k"},
			Notes:          "27 inch IPS panel",
		},
	}

	created := 0
	for _, link := range links {
		// 以链接 URL 判重，重复执行不产生脏数据
		var existing models.AffiliateLink
		err := models.DB.Where("link = ?", link.Link).First(&existing).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			stdLog.Fatalf("Failed to query link %s: %v", link.Link, err)
		}
		if err := models.DB.Create(&link).Error; err != nil {
			stdLog.Fatalf("Failed to create link %s: %v", link.Link, err)
		}
		created++
	}

	stdLog.Printf("Seed finished, %d links created", created)
}
