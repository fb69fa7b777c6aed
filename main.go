package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"civicsync-admin/cache"
	"civicsync-admin/config"
	"civicsync-admin/controllers"
	"civicsync-admin/issueapi"
	"civicsync-admin/middlewares"
	"civicsync-admin/models"
	"civicsync-admin/panel"
	"civicsync-admin/routes"
	"civicsync-admin/session"
	"civicsync-admin/storage"
	"civicsync-admin/store"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	json "github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	if err := config.SetupLogger(cfg.LogDir); err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	loc, err := cfg.Location()
	if err != nil {
		log.Fatalf("Unknown TZ_NAME %q: %v", cfg.Timezone, err)
	}

	ctx := context.Background()

	source, err := newSource(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to set up %s issue source: %v", cfg.IssueSource, err)
	}
	issues := store.New(source)

	rdb, err := config.ConnectRedis(ctx, cfg.RedisAddress, cfg.RedisPassword)
	if err != nil {
		log.Fatalf("%v", err)
	}
	aggregates, err := cache.New(cfg.CacheSize, rdb, cfg.CacheTTL)
	if err != nil {
		log.Fatalf("Failed to create aggregate cache: %v", err)
	}

	// A new snapshot makes every cached overview stale.
	issues.OnChange(func(store.Snapshot) { aggregates.Purge() })

	now := func() time.Time { return time.Now().In(loc) }
	sessions := session.NewManager(func(u models.User) *panel.Controller {
		return panel.New(u, issues, panel.Options{Cache: aggregates, Key: cache.Key, Now: now})
	}, session.Options{LoginDelay: cfg.LoginDelay, TTL: cfg.SessionTTL})

	tokenTTL := cfg.SessionTTL
	if tokenTTL <= 0 {
		tokenTTL = 72 * time.Hour
	}
	h := &controllers.Controllers{
		Sessions: sessions,
		Secret:   []byte(cfg.JWTSecret),
		TokenTTL: tokenTTL,
		Secure:   cfg.Production(),
		Domain:   cfg.Domain,
	}

	if cfg.Production() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	routes.Setup(r, h, middlewares.AuthMiddleware(sessions, h.Secret), mutationLimiter(cfg, rdb))

	// Warm the snapshot so the first dashboard does not wait on the issue
	// service. A failure here is retried on first use.
	go func() {
		if _, err := issues.Load(ctx); err != nil {
			config.Warning("Initial issue load failed: %v", err)
		}
	}()

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	ctrlc := make(chan os.Signal, 1)
	signal.Notify(ctrlc, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-ctrlc
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	config.Info("Admin panel listening on :%s (%s source)", cfg.Port, cfg.IssueSource)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("Failed to start server: %v", err)
	}
	if rdb != nil {
		rdb.Close()
	}
	config.Info("Server closed")
}

func newSource(ctx context.Context, cfg *config.Config) (store.Source, error) {
	switch cfg.IssueSource {
	case config.SourceMongo:
		db, err := config.ConnectDB(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, err
		}
		images, err := storage.NewS3Store(ctx, storage.S3Config{
			Bucket:    cfg.S3Bucket,
			Endpoint:  cfg.S3Endpoint,
			Region:    cfg.S3Region,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			PublicURL: cfg.S3PublicURL,
		})
		if err != nil {
			return nil, err
		}
		return store.NewMongoSource(db.Collection("issues"), images), nil
	case config.SourceMemory:
		seed, err := loadSeed(cfg.SeedFile)
		if err != nil {
			return nil, err
		}
		config.Info("Serving %d issues from memory", len(seed))
		return store.NewMemorySource(seed), nil
	default:
		return issueapi.NewClient(cfg.IssueAPIURL, nil), nil
	}
}

func loadSeed(path string) ([]models.Issue, error) {
	if path == "" {
		return nil, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var seed []models.Issue
	if err := json.Unmarshal(raw, &seed); err != nil {
		return nil, err
	}
	return seed, nil
}

func mutationLimiter(cfg *config.Config, rdb *redis.Client) gin.HandlerFunc {
	if rdb == nil || cfg.MutationLimit <= 0 {
		return nil
	}
	return middlewares.MutationRateLimiter(rdb, cfg.MutationLimitQueue, cfg.MutationLimit, cfg.MutationLimitWindow)
}
