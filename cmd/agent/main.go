package main

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/dileep-u-k/location-agent/internal/agent"
	"github.com/dileep-u-k/location-agent/internal/fetch"
	"github.com/dileep-u-k/location-agent/internal/tools"
)

//go:embed index.html
var indexPage []byte

// main is the entry point for the application. Its primary role is the
// "Composition Root": it loads configuration, initializes all services,
// injects dependencies, and starts the server.
func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	buildInfo := GetBuildInfo()
	log.Printf("🚀 Starting Location Agent Gateway | Version: %s | Commit: %s", buildInfo.Version, buildInfo.GitCommit)

	// 1. LOAD CONFIGURATION
	cfg, err := LoadConfig()
	if err != nil {
		log.Fatalf("❌ FATAL: Configuration Error: %v", err)
	}
	log.Println("✅ Configuration loaded.")

	// 2. INITIALIZE SERVICES
	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if _, err := rdb.Ping(context.Background()).Result(); err != nil {
			log.Fatalf("❌ FATAL: Could not connect to Redis at %s: %v", cfg.RedisAddr, err)
		}
		log.Println("✅ Downstream response cache enabled.")
	} else {
		log.Println("WARNING: REDIS_ADDR not set; downstream response cache disabled.")
	}

	registry, err := initializeRegistry(cfg, rdb)
	if err != nil {
		log.Fatalf("❌ FATAL: %v", err)
	}

	bedrockClient, err := agent.NewBedrockClient(context.Background(), cfg.AWSRegion)
	if err != nil {
		log.Fatalf("❌ FATAL: Could not create agent client: %v", err)
	}

	driver := agent.NewDriver(bedrockClient, registry, cfg.Instruction, cfg.ModelID)
	sessions := agent.NewSessionStore()
	gatewayHandler := NewGatewayHandler(driver, sessions, cfg)
	log.Println("✅ All services initialized.")

	// 3. SETUP AND RUN THE WEB SERVER
	gin.SetMode(os.Getenv("GIN_MODE"))
	engine := gin.Default()
	engine.GET("/", func(c *gin.Context) {
		c.Data(http.StatusOK, "text/html; charset=utf-8", indexPage)
	})
	engine.GET("/healthz", gatewayHandler.HandleHealthz)
	v1 := engine.Group("/api/v1")
	{
		v1.POST("/sessions", gatewayHandler.HandleCreateSession)
		v1.DELETE("/sessions/:id", gatewayHandler.HandleEndSession)
		v1.POST("/chat", gatewayHandler.HandleChat)
	}

	srv := &http.Server{Addr: fmt.Sprintf(":%s", cfg.Port), Handler: engine}
	runServerWithGracefulShutdown(srv)
}

// initializeRegistry creates the tool registry and registers all adapters.
// Each downstream service gets its own fetch client because weather.gov
// requires a contact address as the User-Agent while the places API wants an
// ordinary client identifier.
func initializeRegistry(cfg *AppConfig, rdb *redis.Client) (*tools.Registry, error) {
	registry := tools.NewRegistry()

	placesFetcher := fetch.New(
		fetch.WithCache(rdb),
		fetch.WithUserAgent("location-agent/1.0"),
	)
	weatherFetcher := fetch.New(
		fetch.WithCache(rdb),
		fetch.WithUserAgent(cfg.WeatherContact),
	)

	if err := tools.NewPlacesClient(placesFetcher, cfg.ServiceToken).Register(registry); err != nil {
		return nil, fmt.Errorf("failed to register places tools: %w", err)
	}
	if err := tools.NewGeoIPClient(placesFetcher).Register(registry); err != nil {
		return nil, fmt.Errorf("failed to register geoip tool: %w", err)
	}
	if err := tools.NewWeatherClient(weatherFetcher).Register(registry); err != nil {
		return nil, fmt.Errorf("failed to register weather tool: %w", err)
	}

	// Configuration wins over the adapters' built-in group descriptions.
	for group, description := range cfg.ActionGroupDescriptions {
		registry.DescribeGroup(group, description)
	}

	log.Printf("✅ Tool registry initialized with %d tools.", registry.Count())
	return registry, nil
}

// runServerWithGracefulShutdown handles the server lifecycle.
func runServerWithGracefulShutdown(srv *http.Server) {
	go func() {
		log.Printf("👂 Gateway is listening on http://localhost%s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("❌ Listen error: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("❌ Server shutdown failed:", err)
	}

	log.Println("👋 Server exited gracefully.")
}
