package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"hotelix/internal/config"
	"hotelix/internal/handler"
	"hotelix/internal/repository"
	"hotelix/internal/service"
	"hotelix/internal/utils"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := utils.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("Hotelix chat server",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
		zap.String("git_commit", GitCommit))

	if err := run(cfg, logger); err != nil {
		logger.Fatal("Server stopped with error", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gin.SetMode(cfg.Server.GinMode)

	repo, err := repository.NewPostgresRepository(
		cfg.GetPostgreSQLDSN(),
		cfg.PostgreSQL.MaxConnections,
		cfg.PostgreSQL.MaxIdleConnections,
	)
	if err != nil {
		return err
	}
	defer repo.Close()

	migrateCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := repo.Migrate(migrateCtx); err != nil {
		return err
	}
	logger.Info("Connected to PostgreSQL database")

	var (
		store         service.ConversationStore = repo
		locationCache service.LocationCache
	)
	if cfg.Redis.Enabled() {
		client, err := repository.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			return err
		}
		defer client.Close()

		cache := repository.NewRedisCache(client, cfg.Redis)
		store = repository.NewCachedConversationStore(repo, cache, logger)
		locationCache = cache
		logger.Info("Redis cache enabled", zap.String("addr", cfg.Redis.Addr))
	} else {
		logger.Warn("REDIS_ADDR not set, running without cache")
	}

	completer, err := service.NewCompleter(ctx, cfg.LLM, logger)
	if err != nil {
		return err
	}
	if closer, ok := completer.(io.Closer); ok {
		defer closer.Close()
	}
	if !completer.Enabled() {
		logger.Warn("LLM_API_KEY not set, every message will be answered with help")
	}
	if cfg.Makcorps.APIKey == "" {
		logger.Warn("MAKCORPS_API_KEY not set, hotel searches will return no results")
	}

	makcorps := service.NewMakcorpsClient(cfg.Makcorps, logger)
	chat := service.NewChatService(
		store,
		service.NewIntentParser(completer, logger),
		service.NewMakcorpsProvider(makcorps, locationCache, logger).WithAffiliateLinks(service.NewAffiliateLinker(cfg.Makcorps)),
		service.NewRanker(logger),
		service.NewResponder(cfg.Chat.CurrencySymbol),
		cfg.Chat,
		logger,
	)

	router := newRouter(ctx, cfg.Server, repo, chat, logger)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down server")
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	logger.Info("Server stopped")
	return nil
}

type pinger interface {
	Ping(ctx context.Context) error
}

func newRouter(ctx context.Context, cfg config.ServerConfig, db pinger, chat handler.ChatAPI, logger *zap.Logger) *gin.Engine {
	router := gin.New()
	router.Use(handler.Recovery(logger), handler.RequestLogger(logger))

	corsConfig := cors.DefaultConfig()
	origins := splitOrigins(cfg.AllowedOrigins)
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = origins
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Content-Type", "Authorization"}
	router.Use(cors.New(corsConfig))

	router.GET("/health", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := db.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": "database unreachable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "hotelix",
			"version": Version,
		})
	})

	router.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"version":    Version,
			"build_time": BuildTime,
			"git_commit": GitCommit,
		})
	})

	apiV1 := router.Group("/api/v1")
	limiter := handler.NewRateLimiter(cfg.RatePerMinute, cfg.RateBurst, logger)
	limiter.StartJanitor(ctx, 0)
	apiV1.Use(limiter.Middleware())
	handler.NewChatHandler(chat, logger).Register(apiV1)

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})

	return router
}

func splitOrigins(s string) []string {
	var out []string
	for _, o := range strings.Split(s, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
