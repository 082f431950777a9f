package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"chess_rounds/internal/api/handlers"
	"chess_rounds/internal/middleware"
	"chess_rounds/internal/service"
)

func SetupRoutes(r *gin.Engine, services *service.Services) {
	// 初始化 handlers
	authHandler := handlers.NewAuthHandler(services.User)
	roundHandler := handlers.NewRoundHandler(services.Round, services.Rating)
	recordHandler := handlers.NewRecordHandler(services.Record)
	circleHandler := handlers.NewCircleHandler(services.Circle, services.Leaderboard)
	adminHandler := handlers.NewAdminHandler(services.Round, services.User)

	// API 路由群組
	api := r.Group("/api")

	// 處理 404 錯誤
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "找不到該路徑",
		})
	})

	// 公開路由
	{
		// 用戶認證相關
		api.POST("/register", authHandler.Register)
		api.POST("/login", authHandler.Login)

		// 基本的健康檢查
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"status": "ok",
			})
		})
	}

	// 需要驗證的路由
	authorized := api.Group("/")
	authorized.Use(middleware.AuthMiddleware())
	{
		// 使用者相關
		users := authorized.Group("/users")
		{
			users.GET("/me", authHandler.Profile)
			users.PUT("/me", authHandler.UpdateProfile)
			users.GET("/search", authHandler.SearchUsers)
		}

		// 回合相關
		rounds := authorized.Group("/rounds")
		{
			// 基本操作
			rounds.GET("", roundHandler.ListRounds)      // 回合列表（joined/created/active）
			rounds.POST("", roundHandler.CreateRound)    // 創建回合
			rounds.POST("/join", roundHandler.JoinRoundByCode)
			rounds.GET("/:id", roundHandler.GetRound)    // 獲取回合信息
			rounds.DELETE("/:id", roundHandler.DeleteRound)

			// 回合參與
			rounds.POST("/:id/join", roundHandler.JoinRound)
			rounds.POST("/:id/leave", roundHandler.LeaveRound)
			rounds.GET("/:id/participants", roundHandler.Participants)

			// 生命週期
			rounds.POST("/:id/start", roundHandler.StartRound)
			rounds.POST("/:id/end", roundHandler.EndRound)
			rounds.POST("/:id/pause", roundHandler.PauseRound)
			rounds.POST("/:id/resume", roundHandler.ResumeRound)

			// 旁觀者
			rounds.POST("/:id/spectators", roundHandler.JoinSpectator)
			rounds.DELETE("/:id/spectators", roundHandler.LeaveSpectator)
			rounds.GET("/:id/spectators", roundHandler.Spectators)

			// 計分記錄
			rounds.POST("/:id/records", recordHandler.AppendRecord)
			rounds.GET("/:id/records", recordHandler.RoundRecords)
			rounds.GET("/:id/records/me", recordHandler.MyRoundRecords)

			// 互評
			rounds.POST("/:id/ratings", roundHandler.RateParticipant)
			rounds.GET("/:id/ratings", roundHandler.RoundRatings)
		}

		// 記錄修改與刪除
		records := authorized.Group("/records")
		{
			records.PUT("/:id", recordHandler.UpdateRecord)
			records.DELETE("/:id", recordHandler.DeleteRecord)
		}

		// 圈子與排行榜
		circles := authorized.Group("/circles")
		{
			circles.POST("", circleHandler.CreateCircle)
			circles.POST("/join", circleHandler.JoinCircle)
			circles.GET("/:id", circleHandler.GetCircle)
			circles.GET("/:id/members", circleHandler.CircleMembers)
			circles.POST("/:id/leave", circleHandler.LeaveCircle)
			circles.GET("/:id/leaderboard", circleHandler.Leaderboard)
			circles.POST("/:id/leaderboard/refresh", circleHandler.RefreshLeaderboard)
		}

		// 管理員專屬
		admin := authorized.Group("/admin")
		admin.Use(middleware.AdminMiddleware())
		{
			admin.DELETE("/rounds/:id", adminHandler.DeleteRound)
			admin.GET("/statistics", adminHandler.Statistics)
		}
	}
}
