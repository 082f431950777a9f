package main

import (
	"log"

	"github.com/gin-gonic/gin"

	"chess_rounds/internal/api"
	"chess_rounds/internal/cache"
	"chess_rounds/internal/models"
	"chess_rounds/internal/repository"
	"chess_rounds/internal/service"
	"chess_rounds/internal/storage"
	"chess_rounds/internal/utils"
	"chess_rounds/pkg/config"
	"chess_rounds/pkg/logger"
)

func main() {
	// 載入應用程式配置
	// 從配置文件中讀取設置，如數據庫連接信息和服務器地址等
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 初始化全域 logger
	logger.Init(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})

	// JWT 簽章密鑰
	utils.SetJWTSecret(cfg.JWT.Secret)

	// 初始化資料庫連接
	// 使用配置中的信息建立到 PostgreSQL 數據庫的連接
	db, err := storage.NewPostgresDB(cfg.DB.Host, cfg.DB.User, cfg.DB.Password, cfg.DB.Name, cfg.DB.Port)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize database")
	}
	// 確保在程序結束時關閉數據庫連接
	defer db.Close()

	// 自動遷移資料庫結構
	// 根據定義的模型自動創建或更新數據庫表結構
	if err := db.AutoMigrate(
		&models.User{},
		&models.Round{},
		&models.Participant{},
		&models.Record{},
		&models.ParticipantRecord{},
		&models.Circle{},
		&models.CircleMember{},
		&models.CircleLeaderboard{},
		&models.Rating{},
	); err != nil {
		logger.Fatal().Err(err).Msg("Failed to auto migrate database")
	}

	// 排行榜快取：設定了 Redis 地址就用 Redis，否則退回記憶體快取
	var boardCache cache.Cache
	if cfg.Redis.Addr != "" {
		boardCache = cache.NewRedisCache(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		logger.Info().Str("addr", cfg.Redis.Addr).Msg("leaderboard cache: redis")
	} else {
		boardCache = cache.NewMemoryCache()
		logger.Info().Msg("leaderboard cache: memory")
	}

	// 初始化 repositories 與 services
	repos := repository.NewRepositories(db)
	services := service.NewServices(repos, boardCache)

	// 設置 Gin 路由
	r := gin.New()
	r.Use(logger.GinMiddleware(), gin.Recovery())
	api.SetupRoutes(r, services)

	// 啟動伺服器
	// 使用配置中指定的地址啟動 HTTP 服務器
	logger.Info().Str("address", cfg.Server.Address).Msg("server starting")
	if err := r.Run(cfg.Server.Address); err != nil {
		logger.Fatal().Err(err).Msg("Failed to run server")
	}
}
