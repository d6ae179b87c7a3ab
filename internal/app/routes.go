package app

import (
	"fmt"

	"github.com/PlanujHajs/analiza-backend/internal/auth"
	"github.com/PlanujHajs/analiza-backend/internal/cache"
	"github.com/PlanujHajs/analiza-backend/internal/config"
	"github.com/PlanujHajs/analiza-backend/internal/handlers"
	"github.com/PlanujHajs/analiza-backend/internal/repo"
	"github.com/PlanujHajs/analiza-backend/internal/security"
	"github.com/PlanujHajs/analiza-backend/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// Setup registers all routes on the given engine.
func Setup(r *gin.Engine, cfg config.Config, db *pgxpool.Pool, rdb *redis.Client) error {
	r.GET("/", rootHandler(cfg))
	r.GET("/health", healthHandler(cfg))
	r.GET("/version", versionHandler(cfg))

	tokens, err := security.NewTokenManager(
		[]byte(cfg.JWT.Secret), cfg.JWT.Algorithm, cfg.JWT.AccessTTL.Duration())
	if err != nil {
		return fmt.Errorf("token manager: %w", err)
	}
	hasher := security.NewBcryptHasher(cfg.Auth.BcryptCost)
	userRepo := repo.NewPGUserRepo(db)
	userCache := cache.NewUserCache(rdb, cfg.Redis.DefaultTTL.Duration())

	authSvc, err := service.NewAuthService(userRepo, hasher, tokens, userCache)
	if err != nil {
		return fmt.Errorf("auth service: %w", err)
	}
	resolver := auth.NewResolver(tokens, userRepo, userCache)
	authHandler := handlers.NewAuthHandler(authSvc)

	grp := r.Group("/auth")
	grp.POST("/register", authHandler.Register)
	grp.POST("/login", authHandler.Login)
	grp.POST("/token", authHandler.Token)

	protected := grp.Group("", auth.RequireAuth(resolver))
	protected.GET("/users/me", authHandler.Me)
	protected.POST("/change-password", authHandler.ChangePassword)

	return nil
}

func rootHandler(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(200, gin.H{
			"service": "Analiza API",
			"version": cfg.App.Version,
			"env":     cfg.App.Env,
			"health":  "/health",
			"auth":    "/auth",
		})
	}
}

func healthHandler(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(200, gin.H{"ok": true, "env": cfg.App.Env})
	}
}

func versionHandler(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(200, gin.H{"version": cfg.App.Version})
	}
}
