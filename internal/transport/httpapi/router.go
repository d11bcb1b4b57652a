package httpapi

import (
	"context"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/sandevgo/cropadvisor/internal/chat"
	"github.com/sandevgo/cropadvisor/internal/config"
	"github.com/sandevgo/cropadvisor/pkg/log"
	"github.com/sandevgo/cropadvisor/pkg/srv"
)

// SessionHeader carries the conversation id of a chat request.
const SessionHeader = "X-Session-ID"

func NewRouter(ctx context.Context, sessions *chat.Manager, allowOrigins []string) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(ctx))

	router.Use(cors.New(corsConfig(allowOrigins)))

	chatHandler := NewChatHandler(sessions)
	farmHandler := NewFarmHandler(sessions.Settings())

	api := router.Group("/api")
	{
		api.GET("/health", Health(sessions))

		api.POST("/chat", chatHandler.Post)
		api.GET("/chat/:session", chatHandler.Get)
		api.DELETE("/chat/:session", chatHandler.Delete)

		api.GET("/context", farmHandler.Context)
		api.GET("/crops", farmHandler.ListCrops)
		api.GET("/crops/:name", farmHandler.Crop)
		api.GET("/settings", farmHandler.ListSettings)
		api.PUT("/settings", farmHandler.UpdateSettings)
		api.DELETE("/settings/:key", farmHandler.DeleteSetting)
	}

	return router
}

func corsConfig(allowOrigins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Authorization", "Content-Type", SessionHeader},
		ExposeHeaders: []string{SessionHeader},
		MaxAge:        12 * time.Hour,
	}
	if len(allowOrigins) == 0 || slices.Contains(allowOrigins, "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = allowOrigins
	}
	return cfg
}

// NewServer wraps the API router in a Service.
func NewServer(ctx context.Context, cfg *config.ServerConfig, sessions *chat.Manager) *srv.HTTPServer {
	return srv.NewHTTPServer(cfg.Addr, NewRouter(ctx, sessions, cfg.AllowOrigins))
}

// requestLogger attaches the base logger to each request and logs its outcome.
func requestLogger(ctx context.Context) gin.HandlerFunc {
	logger := log.FromCtx(ctx)
	return func(c *gin.Context) {
		start := time.Now()
		c.Request = c.Request.WithContext(logger.WithContext(c.Request.Context()))
		c.Next()

		logger.Debug().
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Msg("http request")
	}
}

func Health(sessions *chat.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		RespondOK(c, gin.H{
			"status":    "ok",
			"transport": sessions.Strategy(),
		})
	}
}
