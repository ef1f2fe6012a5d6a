package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jhoicas/scanledger/internal/application/inventory"
	"github.com/jhoicas/scanledger/internal/application/scan"
	"github.com/jhoicas/scanledger/internal/domain/repository"
	codes "github.com/jhoicas/scanledger/internal/domain/scan"
	"github.com/jhoicas/scanledger/internal/domain/wedge"
	"github.com/jhoicas/scanledger/internal/infrastructure/memory"
	"github.com/jhoicas/scanledger/internal/infrastructure/postgres"
	infraredis "github.com/jhoicas/scanledger/internal/infrastructure/redis"
	httpRouter "github.com/jhoicas/scanledger/internal/interfaces/http"
	"github.com/jhoicas/scanledger/pkg/config"
	"github.com/jhoicas/scanledger/pkg/logger"
)

// storage puertos de persistencia según el modo configurado.
type storage struct {
	items   repository.ItemRepository
	entries repository.LedgerRepository
	tx      inventory.TxRunner
	close   func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("storage", cfg.Storage).
		Msg("iniciando aplicación")

	ctx := context.Background()
	store, err := openStorage(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("almacenamiento")
	}
	defer store.close()

	// Guardián de prompts: Redis si hay varias instancias, memoria si REDIS_ADDR está vacío.
	var guard scan.PromptGuard
	if cfg.Redis.Addr != "" {
		client, err := infraredis.Connect(ctx, cfg.Redis)
		if err != nil {
			log.Fatal().Err(err).Str("addr", cfg.Redis.Addr).Msg("conexión a Redis")
		}
		defer client.Close()
		guard = infraredis.NewPromptGuard(client)
	}

	normalizer := codes.NewNormalizer(cfg.Scan.URLParam)
	resolver := scan.NewResolver(store.items, cfg.Scan.CompositeSeparator)
	scanSvc := scan.NewService(normalizer, resolver, guard, cfg.Scan.PromptTTL, log)
	stations := scan.NewStations(scanSvc, wedge.Config{
		BurstTimeout: cfg.Scan.BurstTimeout,
		MinLength:    cfg.Scan.MinLength,
	}, scan.DefaultDispatchTimeout, log)

	itemUC := inventory.NewItemUseCase(store.items, store.entries, resolver, normalizer, cfg.Scan.ItemCodePrefix, log)
	ledgerUC := inventory.NewStockLedgerUseCase(store.tx, log)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Scanledger API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name, "storage": cfg.Storage})
	})

	if cfg.JWT.Secret == "" {
		log.Warn().Msg("JWT_SECRET vacío: API sin autenticación, movimientos firmados como anonymous")
	}
	httpRouter.Router(app, httpRouter.RouterDeps{
		ScanService: scanSvc,
		Resolver:    resolver,
		Stations:    stations,
		ItemUC:      itemUC,
		LedgerUC:    ledgerUC,
		Log:         log,
		JWTSecret:   cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	// Primero se desinstalan los listeners: ningún escaneo se despacha después del apagado.
	stations.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}

func openStorage(ctx context.Context, cfg *config.Config) (*storage, error) {
	if cfg.Storage == config.StorageMemory {
		s := memory.NewStore()
		return &storage{items: s, entries: s, tx: memory.NewTxRunner(s), close: func() {}}, nil
	}
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, err
	}
	if err := postgres.EnsureSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}
	return &storage{
		items:   postgres.NewItemRepository(pool),
		entries: postgres.NewLedgerRepository(pool),
		tx:      postgres.NewTxRunner(pool),
		close:   pool.Close,
	}, nil
}
