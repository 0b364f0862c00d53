package main

import (
	"fmt"
	"log"
	"os"

	apirest "github.com/arenahub/server/api/rest"
	"github.com/arenahub/server/cache"
	"github.com/arenahub/server/config"
	dbadapter "github.com/arenahub/server/db"
	"github.com/arenahub/server/game/matchmaking"
	"github.com/arenahub/server/game/social"
	mw "github.com/arenahub/server/middleware"
	"github.com/arenahub/server/model"
	"github.com/arenahub/server/storage"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

func main() {
	cfgPath := "config/config.yaml"
	if len(os.Args) > 1 {
		cfgPath = os.Args[1]
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	// ---- Logger ----
	var logger *zap.Logger
	var logErr error
	if cfg.Server.Debug {
		logger, logErr = zap.NewDevelopment()
	} else {
		logger, logErr = zap.NewProduction()
	}
	if logErr != nil {
		log.Fatalf("logger: %v", logErr)
	}
	defer logger.Sync()

	// ---- Database ----
	db, err := dbadapter.Open(cfg.Database)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	if err := model.AutoMigrate(db); err != nil {
		log.Fatalf("db migrate: %v", err)
	}
	logger.Info("DB initialized")

	// ---- Cache ----
	c, err := cache.NewCache(cache.CacheConfig{
		RedisAddr:       cfg.Cache.RedisAddr,
		RedisPassword:   cfg.Cache.RedisPassword,
		RedisDB:         cfg.Cache.RedisDB,
		LocalGCInterval: cfg.Cache.LocalGCInterval,
	})
	if err != nil {
		log.Fatalf("cache: %v", err)
	}
	logger.Info("Cache initialized")

	// ---- Avatar storage ----
	avatars, err := storage.NewAvatarStore(cfg.Game.AvatarDir, cfg.Game.AvatarBaseURL)
	if err != nil {
		log.Fatalf("avatar store: %v", err)
	}

	// ---- Services ----
	socialSvc := social.NewService(db, logger)
	matchSvc := matchmaking.NewService(db, logger)

	// ---- Gin HTTP Server ----
	if !cfg.Server.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(mw.TraceID(), mw.Logger(logger), mw.Recovery(logger))
	r.Use(mw.RateLimit(rate.Limit(cfg.Security.RateLimitRPS), cfg.Security.RateLimitBurst))
	r.Use(mw.Metrics())

	// Health check
	r.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(200, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Uploaded avatars are served straight from disk.
	r.Static(cfg.Game.AvatarBaseURL, cfg.Game.AvatarDir)

	// ---- REST API routes ----
	authH := apirest.NewAuthHandler(db, c, cfg.Security)
	profileH := apirest.NewProfileHandler(db, avatars)
	socialH := apirest.NewSocialHandler(socialSvc)
	matchH := apirest.NewMatchHandler(matchSvc, db, c)
	rankH := apirest.NewRankingHandler(db, c, logger)

	authed := mw.Auth(cfg.Security, c, db)

	api := r.Group("/api")
	{
		authG := api.Group("/auth")
		authG.POST("/register", authH.Register)
		authG.POST("/login", authH.Login)
		authG.POST("/logout", authed, authH.Logout)
		authG.POST("/refresh", authed, authH.Refresh)

		profileG := api.Group("/profile")
		profileG.Use(authed)
		profileG.GET("/:username", profileH.Get)
		profileG.POST("/avatar", profileH.UploadAvatar)

		socialG := api.Group("/social")
		socialG.Use(authed)
		socialG.GET("/friends", socialH.ListFriends)
		socialG.GET("/requests", socialH.ListRequests)
		socialG.GET("/search", socialH.Search)
		socialG.POST("/requests", socialH.SendRequest)
		socialG.POST("/requests/:username/accept", socialH.Accept)
		socialG.POST("/requests/:username/decline", socialH.Decline)
		socialG.DELETE("/friends/:username", socialH.RemoveFriend)
		socialG.POST("/block/:username", socialH.Block)

		queueG := api.Group("/queue")
		queueG.Use(authed)
		queueG.POST("/join", matchH.JoinQueue)
		queueG.DELETE("/leave", matchH.LeaveQueue)

		matchG := api.Group("/matches")
		matchG.Use(authed)
		matchG.GET("/:id", matchH.GetMatch)
		matchG.POST("/:id/result", matchH.ReportResult)

		rankG := api.Group("/ranking")
		rankG.GET("/rating", rankH.TopRating)
		rankG.POST("/refresh", authed, rankH.RefreshRanking)
	}

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	logger.Info("Server listening", zap.String("addr", addr))
	if err := r.Run(addr); err != nil {
		log.Fatalf("server: %v", err)
	}
}
