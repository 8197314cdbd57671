package main

import (
	"context"

	"report-dashboard/internal/api"
	"report-dashboard/internal/conf"
	"report-dashboard/internal/database"
	"report-dashboard/internal/repository"
	"report-dashboard/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func main() {

	// 設定 Log 格式與層級
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
		ForceColors:   true,
	})
	logrus.SetLevel(logrus.InfoLevel)

	// 1. Config
	cfg, err := conf.LoadConfig()
	if err != nil {
		logrus.Fatalf("Config error: %v", err)
	}

	// 2. Database
	mongoClient, err := database.Connect(cfg.MongoDB)
	if err != nil {
		logrus.Fatalf("Database error: %v", err)
	}
	defer mongoClient.Disconnect(context.Background())

	db := mongoClient.Database(cfg.MongoDB.Database)

	// 3. Dependency Injection
	// Repo -> Service -> Handler
	snapshotRepo := repository.NewMongoSnapshotRepo(db)
	backendClient := service.NewBackendClient(cfg.Upstream)
	notifierService := service.NewNotifierService(cfg.Alerting.WebhookURL)
	dashboardService := service.NewDashboardService(snapshotRepo, backendClient, notifierService, cfg.Alerting.FailureThreshold)

	// Cache-first：先載入上次的快照，UI 一連上來就有東西
	dashboardService.LoadCached(context.Background())

	// 背景排程更新
	cronService := service.NewCronService(dashboardService, cfg.Refresh)
	cronService.Start()
	defer cronService.Stop()

	dashboardHandler := api.NewDashboardHandler(dashboardService)

	// 4. Gin Router Setup
	r := gin.Default()

	// 設定 CORS (前後分離，必須允許跨域)
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE, PATCH")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	r.GET("/healthz", dashboardHandler.Healthz)

	v1 := r.Group("/api/v1")
	{
		v1.GET("/dashboard/stats", dashboardHandler.GetStats)       // 快取優先，背景更新
		v1.POST("/dashboard/refresh", dashboardHandler.RefreshStats) // 下拉更新 (同步)
		v1.GET("/alerts", dashboardHandler.GetAlerts)               // 公告 (404 容錯)
		v1.GET("/reports/nearby", dashboardHandler.GetNearbyReports) // 附近案件 (422 容錯)
		v1.GET("/settings/location", dashboardHandler.GetLocation)
		v1.POST("/settings/location", dashboardHandler.SaveLocation)
	}

	// 5. Start Server
	logrus.Infof("Server starting on %s", cfg.Server.Port)
	if err := r.Run(cfg.Server.Port); err != nil {
		logrus.Fatalf("Server startup failed: %v", err)
	}
}
