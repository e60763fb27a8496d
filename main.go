package main

import (
	// standard library
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	// third-party
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	// internal
	"github.com/imageflow/imageflow/internal/auth"
	"github.com/imageflow/imageflow/internal/config"
	"github.com/imageflow/imageflow/internal/handlers"
	"github.com/imageflow/imageflow/internal/logging"
	"github.com/imageflow/imageflow/internal/middleware"
	"github.com/imageflow/imageflow/internal/rendering"
	"github.com/imageflow/imageflow/internal/version"
)

func main() {
	_ = godotenv.Load()

	if len(os.Args) > 1 && (os.Args[1] == "--version" || os.Args[1] == "-v") {
		fmt.Println(version.String())
		os.Exit(0)
	}

	settings := config.Load()
	logging.Setup(settings.LogLevel, settings.LogFormat)
	logging.InfoWithComponent(logging.ComponentStartup, "Starting ImageFlow", "version", version.String())

	if settings.AuthEnabled() {
		logging.InfoWithComponent(logging.ComponentStartup, "Bearer authentication enabled")
	} else {
		logging.WarnWithComponent(logging.ComponentStartup, "AUTH_TOKEN not set, authentication disabled")
	}
	if settings.EnforceResourcePolicy {
		logging.InfoWithComponent(logging.ComponentStartup, "Resource policy enforcement enabled")
	}

	if mode := config.Get("GIN_MODE", ""); mode != "" {
		gin.SetMode(mode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery(), middleware.RequestID())

	// Allow browser-based tooling to call the API directly
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"}
	router.Use(cors.New(corsConfig))

	renderer := rendering.NewChromeRenderer(settings)
	api := handlers.NewAPI(renderer, settings)

	router.GET("/", api.Root)
	router.GET("/docs", api.Docs)
	router.GET("/health", api.Health)
	router.POST("/convert",
		auth.BearerAuthMiddleware(settings.AuthToken),
		middleware.RateLimit(settings.RatePerMinute),
		middleware.BodySizeLimit(settings.MaxRequestBytes),
		middleware.ConcurrencyLimit(settings.MaxConcurrentRenders),
		api.Convert,
	)

	addr := ":" + settings.Port
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		logging.InfoWithComponent(logging.ComponentStartup, "Listening", "address", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.ErrorWithComponent(logging.ComponentStartup, "Failed to start server", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logging.InfoWithComponent(logging.ComponentShutdown, "Shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logging.ErrorWithComponent(logging.ComponentShutdown, "Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logging.InfoWithComponent(logging.ComponentShutdown, "Server stopped")
}
