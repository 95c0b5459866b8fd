package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	billingapp "github.com/fieldops/backend/internal/application/billing"
	identityapp "github.com/fieldops/backend/internal/application/identity"
	partnerapp "github.com/fieldops/backend/internal/application/partner"
	tenancyapp "github.com/fieldops/backend/internal/application/tenancy"
	"github.com/fieldops/backend/internal/domain/access"
	"github.com/fieldops/backend/internal/domain/sequence"
	"github.com/fieldops/backend/internal/infrastructure/auth"
	"github.com/fieldops/backend/internal/infrastructure/cache"
	"github.com/fieldops/backend/internal/infrastructure/config"
	"github.com/fieldops/backend/internal/infrastructure/event"
	"github.com/fieldops/backend/internal/infrastructure/logger"
	"github.com/fieldops/backend/internal/infrastructure/persistence"
	"github.com/fieldops/backend/internal/infrastructure/telemetry"
	"github.com/fieldops/backend/internal/interfaces/http/handler"
	"github.com/fieldops/backend/internal/interfaces/http/router"
	"github.com/redis/go-redis/v9"
	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting FieldOps Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Tracing
	tp, err := telemetry.NewTracerProvider(context.Background(), telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	defer func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}()

	// Database
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if tp.IsEnabled() {
		if err := db.DB.Use(otelgorm.NewPlugin()); err != nil {
			log.Warn("Failed to enable database tracing", zap.Error(err))
		}
	}
	log.Info("Database connected")

	// Repositories
	accountRepo := persistence.NewGormAccountRepository(db.DB)
	entityRepo := persistence.NewGormEntityRepository(db.DB)
	userRepo := persistence.NewGormUserRepository(db.DB)
	clientRepo := persistence.NewGormClientRepository(db.DB)
	documentRepo := persistence.NewGormDocumentRepository(db.DB)
	sequenceStore := persistence.NewGormSequenceStore(db.DB)
	codeProbe := persistence.NewGormCodeProbe(db.DB)

	// Domain events
	eventBus := event.NewInMemoryEventBus(log)
	eventBus.Subscribe(event.NewAuditLogger(log))
	accountRepo.SetEventBus(eventBus)
	entityRepo.SetEventBus(eventBus)
	userRepo.SetEventBus(eventBus)

	// runCtx bounds background work, like the cache invalidation listener,
	// to the process lifetime
	runCtx, stopBackground := context.WithCancel(context.Background())
	defer stopBackground()

	// Module flag cache: in-process L1 always, shared Redis L2 when
	// configured. A missing Redis just narrows invalidation to this process;
	// stale flags age out via the L1 TTL.
	l1 := cache.NewInMemoryModuleFlagCache(cfg.Cache.ModuleFlagTTL)
	var (
		flagCache   cache.ModuleFlagCache = l1
		redisClient *redis.Client
	)
	if cfg.Redis.Host != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			log.Warn("Redis unreachable, module flags cached in-process only", zap.Error(err))
			_ = redisClient.Close()
			redisClient = nil
		} else {
			l2 := cache.NewRedisModuleFlagCacheWithClient(redisClient, cfg.Cache.ModuleFlagRedisTTL, log)
			invalidator := cache.NewRedisInvalidator(redisClient, log)
			tiered := cache.NewTieredModuleFlagCache(l1, l2, invalidator, cache.CacheConfig{
				L1TTL: cfg.Cache.ModuleFlagTTL,
				L2TTL: cfg.Cache.ModuleFlagRedisTTL,
			}, log)
			flagCache = tiered
			go func() {
				if err := tiered.StartInvalidationSubscription(runCtx); err != nil && !errors.Is(err, context.Canceled) {
					log.Error("Cache invalidation subscription ended", zap.Error(err))
				}
			}()
			defer func() {
				if err := redisClient.Close(); err != nil {
					log.Error("Error closing redis client", zap.Error(err))
				}
			}()
			log.Info("Redis connected", zap.String("addr", cfg.Redis.Addr()))
		}
	}
	flagSource := cache.NewCachedModuleFlagSource(flagCache, entityRepo, cfg.Cache.ModuleFlagTTL, log)

	// Access control
	resolver := access.NewResolver(entityRepo)
	gate := access.NewGate(flagSource)

	// Sequences
	allocator := sequence.NewAllocator(sequenceStore, codeProbe)

	// Auth
	jwtService := auth.NewJWTService(cfg.JWT)

	// Application services
	authService := identityapp.NewAuthService(userRepo, jwtService, log)
	userService := identityapp.NewUserService(userRepo, entityRepo, resolver, log)
	accountService := tenancyapp.NewAccountService(accountRepo, log)
	entityService := tenancyapp.NewEntityService(entityRepo, accountRepo, resolver, flagSource, log)
	clientService := partnerapp.NewClientService(clientRepo, allocator, resolver, gate, log)
	documentService := billingapp.NewDocumentService(documentRepo, clientRepo, entityRepo, allocator, resolver, gate, log)

	// HTTP surface
	engine := router.NewEngine(router.EngineConfig{
		App:        cfg.App,
		HTTP:       cfg.HTTP,
		JWTService: jwtService,
		Logger:     log,
	})

	router.New(engine).
		Register(handler.NewAuthHandler(authService)).
		Register(handler.NewAccountHandler(accountService, entityService)).
		Register(handler.NewEntityHandler(entityService)).
		Register(handler.NewUserHandler(userService)).
		Register(handler.NewClientHandler(clientService)).
		Register(handler.NewDocumentHandler(documentService)).
		Register(handler.NewSystemHandler(db, redisClient, cfg.App.Name)).
		Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")
	stopBackground()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
