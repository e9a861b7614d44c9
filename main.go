package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"storefront/cart"
	"storefront/checkout"
	"storefront/clients"
	"storefront/config"
	"storefront/controllers"
	"storefront/database"
	"storefront/logger"
	"storefront/routes"
	"storefront/session"
)

func main() {
	cfg := config.Load()

	// Logger, with CloudWatch shipping when enabled
	cwWriter, err := logger.NewCloudWatchWriter(context.Background(), "storefront")
	if err != nil {
		log.Printf("CloudWatch writer unavailable: %v", err)
		logger.Initialize(cfg.Env)
	} else if cwWriter.Enabled() {
		logger.InitializeWithWriter(cfg.Env, cwWriter)
	} else {
		logger.Initialize(cfg.Env)
	}
	defer logger.Log.Sync()

	// Remote shop API client
	shop, err := clients.NewShopClient(cfg.ShopAPIURL, cfg.RequestTimeout)
	if err != nil {
		logger.Log.Fatal("Failed to create shop client", zap.Error(err))
	}

	// Stores: constructed once, injected everywhere
	redisClient := database.NewRedisClient(cfg.RedisURL)
	cartRepo := database.NewCartRepository(redisClient, cfg.CartTTL)

	sessions := session.NewStore(shop, logger.Log)
	carts := cart.NewStore(cartRepo, logger.Log)
	carts.Hydrate(context.Background())

	flow := checkout.NewOrchestrator(sessions, carts, shop, logger.Log)

	// Kick off the session probe; the route guard waits on the same
	// resolution before any protected page renders.
	go sessions.Resolve(context.Background())

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(logger.RequestLogger())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
	}))

	routes.Register(
		router,
		sessions,
		controllers.NewCatalogController(shop, logger.Log),
		controllers.NewCartController(carts),
		controllers.NewSessionController(sessions, shop, logger.Log),
		controllers.NewOrderController(flow, shop, logger.Log),
	)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Log.Info("Storefront is running", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal("Server failed", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Log.Info("Shutting down gracefully...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Fatal("Shutdown error", zap.Error(err))
	}
	logger.Log.Info("Server shutdown complete")
}
