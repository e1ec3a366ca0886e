package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/nypc/nypc-perf-backend/internal/api/handlers"
	"github.com/nypc/nypc-perf-backend/internal/api/middleware"
	"github.com/nypc/nypc-perf-backend/internal/config"
	"github.com/nypc/nypc-perf-backend/internal/repository"
	"github.com/nypc/nypc-perf-backend/internal/service"
	"github.com/nypc/nypc-perf-backend/internal/websocket"
	"github.com/nypc/nypc-perf-backend/pkg/database"
	"github.com/nypc/nypc-perf-backend/pkg/perf"
	"github.com/nypc/nypc-perf-backend/pkg/ratelimit"
)

// SetupRouter API 라우터 설정. redisClient는 nil일 수 있음 (단일 인스턴스 모드)
func SetupRouter(cfg *config.Config, db *database.DB, redisClient *redis.Client) (*gin.Engine, *service.RecalcService) {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// 전역 미들웨어
	router.Use(gin.Recovery())
	router.Use(middleware.Logger())
	router.Use(middleware.CORS(cfg.CORSAllowedOrigins))

	// Repository 초기화
	userRepo := repository.NewUserRepository(db)
	playerRepo := repository.NewPlayerRepository(db)
	battleRepo := repository.NewBattleRepository(db)

	// WebSocket Hub 초기화 및 시작
	wsHub := websocket.NewHub()
	go wsHub.Run()

	// Service 초기화
	userService := service.NewUserService(userRepo)
	playerService := service.NewPlayerService(playerRepo, battleRepo)
	ratingService := service.NewRatingService(playerRepo, battleRepo, wsHub, perf.Options{
		MaxIterations: cfg.PerfMaxIterations,
		Epsilon:       cfg.PerfEpsilon,
	})

	// 주기적 재계산 서비스 (호출자가 Start/Stop 담당)
	recalcService := service.NewRecalcService(ratingService, redisClient, cfg.RecalcInterval)

	// Handler 초기화
	authHandler := handlers.NewAuthHandler(userService, cfg)
	playerHandler := handlers.NewPlayerHandler(playerService)
	battleHandler := handlers.NewBattleHandler(playerService)
	leaderboardHandler := handlers.NewLeaderboardHandler(playerService)
	ratingHandler := handlers.NewRatingHandler(ratingService)
	calcHandler := handlers.NewCalcHandler()
	wsHandler := handlers.NewWebSocketHandler(wsHub)

	// Redis가 있으면 인스턴스 간 한도를 공유하는 rate limit 사용
	battleLimit := middleware.BattleReportRateLimit()
	if redisClient != nil {
		limiter := ratelimit.NewRedisRateLimiter(redisClient, "ratelimit:battle")
		battleLimit = middleware.RedisRateLimit(middleware.RedisRateLimitConfig{
			Limiter: limiter,
			Limit:   20,
			Window:  10 * time.Second,
			KeyFunc: middleware.DefaultKeyFunc,
		})
	}

	// Health check
	router.GET("/health", handlers.HealthCheck)

	// API v1
	v1 := router.Group("/api/v1")
	{
		// Auth routes
		auth := v1.Group("/auth")
		{
			auth.POST("/login", authHandler.Login)
			auth.POST("/register", authHandler.Register)
		}

		// Player routes
		players := v1.Group("/players")
		{
			players.GET("", playerHandler.ListPlayers)
			players.GET("/:id", playerHandler.GetPlayer)
			players.POST("", middleware.Auth(cfg), playerHandler.CreatePlayer)
		}

		// Battle routes
		battles := v1.Group("/battles")
		{
			battles.GET("", battleHandler.ListBattles)
			battles.POST("", middleware.Auth(cfg), battleLimit, battleHandler.ReportBattle)
		}

		// Leaderboard routes
		v1.GET("/leaderboard", leaderboardHandler.GetLeaderboard)

		// Rating routes
		ratings := v1.Group("/ratings")
		{
			ratings.POST("/recalculate", middleware.Auth(cfg), ratingHandler.Recalculate)
		}

		// 저장소를 거치지 않는 단발성 계산
		v1.POST("/calc", middleware.CalcRateLimit(), calcHandler.Calc)

		// WebSocket endpoint
		v1.GET("/ws", middleware.Auth(cfg), wsHandler.HandleWebSocket)
	}

	return router, recalcService
}
