package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"shopkeep/internal/admin"
	"shopkeep/internal/audit"
	"shopkeep/internal/auth"
	"shopkeep/internal/cache"
	"shopkeep/internal/platform/config"
	"shopkeep/internal/platform/database"
	"shopkeep/internal/platform/kafka/producer"
	"shopkeep/internal/platform/logger"
	"shopkeep/internal/platform/metrics"
	"shopkeep/internal/platform/redis"
	"shopkeep/internal/product"
	"shopkeep/internal/token"
	transport "shopkeep/internal/transport/http"
	"shopkeep/internal/user"
	"shopkeep/migrations"
)

func main() {
	log := logger.New()
	cfg := config.FromEnv()
	m := metrics.New()

	// Storage. Without DATABASE_URL the service runs on in-memory stores,
	// which is only useful for local development.
	var (
		userStore    user.Store
		productStore product.Store
		auditStore   audit.Store
	)
	pool, err := database.New(database.Config{
		URL:             cfg.DatabaseURL,
		MaxOpenConns:    25,
		MaxIdleConns:    5,
		ConnMaxLifetime: 5 * time.Minute,
	})
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	if pool != nil {
		defer pool.Close() //nolint:errcheck // shutdown path

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if err := migrations.Apply(ctx, pool.DB()); err != nil {
			cancel()
			log.Error("failed to apply migrations", "error", err)
			os.Exit(1)
		}
		cancel()

		userStore = user.NewPostgres(pool.DB())
		productStore = product.NewPostgres(pool.DB())
		auditStore = audit.NewPostgres(pool.DB())
	} else {
		log.Warn("DATABASE_URL not set, using in-memory stores")
		userStore = user.NewInMemoryStore()
		productStore = product.NewInMemoryStore()
		auditStore = audit.NewInMemoryStore()
	}

	// Cache invalidation is optional; without Redis it degrades to a no-op.
	var invalidator cache.Invalidator = cache.Noop{}
	redisClient, err := redis.New(redisCfg(cfg))
	if err != nil {
		log.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close() //nolint:errcheck // shutdown path
		invalidator = cache.NewRedisInvalidator(redisClient, log)
	}

	// Audit fan-out is optional; without Kafka entries stay local.
	recorderOpts := []audit.RecorderOption{
		audit.WithLogger(log),
		audit.WithMetrics(m),
	}
	if cfg.KafkaBrokers != "" {
		kafkaProducer, err := producer.New(producer.Config{
			Brokers:         cfg.KafkaBrokers,
			Retries:         3,
			DeliveryTimeout: 10 * time.Second,
		}, log)
		if err != nil {
			log.Error("failed to create kafka producer", "error", err)
			os.Exit(1)
		}
		defer kafkaProducer.Close() //nolint:errcheck // shutdown path
		recorderOpts = append(recorderOpts, audit.WithProducer(kafkaProducer, cfg.AuditTopic))
	}
	recorder := audit.NewRecorder(auditStore, recorderOpts...)

	tokens := token.NewService(cfg.JWTSigningKey, cfg.TokenTTL)

	userService := user.NewService(userStore, recorder,
		user.WithLogger(log), user.WithMetrics(m), user.WithInvalidator(invalidator))
	productService := product.NewService(productStore, recorder,
		product.WithLogger(log), product.WithMetrics(m), product.WithInvalidator(invalidator))
	authService := auth.NewService(userStore, tokens, recorder,
		auth.WithLogger(log), auth.WithMetrics(m))
	adminService := admin.NewService(userStore, productStore, auditStore,
		admin.WithLogger(log), admin.WithInvalidator(invalidator))
	auditQuery := audit.NewQuery(auditStore, userStore, productStore)

	router := transport.NewRouter(transport.Config{
		Logger:   log,
		Verifier: tokens,
		Handlers: transport.Handlers{
			Auth:     auth.NewHandler(authService, log),
			Users:    user.NewHandler(userService, log),
			Products: product.NewHandler(productService, log),
			Audit:    audit.NewHandler(auditQuery, log),
			Admin:    admin.NewHandler(adminService, log),
		},
		Ready: func(r *http.Request) error {
			if pool != nil {
				return pool.Health(r.Context())
			}
			return nil
		},
	})

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("server listening", "addr", cfg.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}
}

func redisCfg(cfg config.Server) redis.Config {
	rc := redis.DefaultConfig()
	rc.URL = cfg.RedisURL
	return rc
}
