package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/almacen-api/internal/application/inventory"
	"github.com/jhoicas/almacen-api/internal/application/usecase"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
	"github.com/jhoicas/almacen-api/internal/infrastructure/memory"
	"github.com/jhoicas/almacen-api/internal/infrastructure/metrics"
	"github.com/jhoicas/almacen-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/almacen-api/internal/interfaces/http"
	"github.com/jhoicas/almacen-api/pkg/config"
	"github.com/jhoicas/almacen-api/pkg/logger"
)

const swaggerFile = "./docs/swagger.json"

// storage repositorios del motor según el driver configurado.
type storage struct {
	txRunner   inventory.TxRunner
	balances   repository.BalanceRepository
	ledger     repository.LedgerRepository
	documents  repository.DocumentRepository
	warehouses repository.WarehouseRepository
	materials  repository.MaterialRepository
	close      func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.Log.Level,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("store", cfg.Store.Driver).
		Msg("iniciando aplicación")

	ctx := context.Background()
	store, err := openStorage(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar almacenamiento")
	}
	defer store.close()

	opts := []inventory.Option{
		inventory.WithLogger(log.Named("inventory")),
		inventory.WithRetryPolicy(inventory.RetryPolicy{
			MaxRetries: cfg.Engine.MaxRetries,
			Backoff:    cfg.Engine.RetryBackoff,
		}),
	}
	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New("almacen")
		opts = append(opts, inventory.WithMetrics(m))
	}

	movementUC := inventory.NewMovementUseCase(store.txRunner, store.materials, store.warehouses, opts...)
	queryUC := inventory.NewStockQueryUseCase(store.balances, store.ledger, store.documents)
	warehouseUC := usecase.NewWarehouseUseCase(store.warehouses)
	materialUC := usecase.NewMaterialUseCase(store.materials)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(httpRouter.RequestLogger(log.Named("http")))
	if m != nil {
		app.Use(httpRouter.Metrics(m))
		app.Get("/metrics", adaptor.HTTPHandler(m.Handler()))
	}

	// Swagger UI en local: http://localhost:<port>/docs
	if _, err := os.Stat(swaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: swaggerFile,
			Path:     "docs",
			Title:    "Almacén API",
		}))
	} else {
		log.Warn().Str("file", swaggerFile).Msg("swagger deshabilitado: archivo no encontrado")
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name, "store": cfg.Store.Driver})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		Movements:   movementUC,
		Queries:     queryUC,
		WarehouseUC: warehouseUC,
		MaterialUC:  materialUC,
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

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}

// openStorage PostgreSQL (pool + TxRunner) o el store en memoria para desarrollo.
func openStorage(ctx context.Context, cfg *config.Config) (*storage, error) {
	if cfg.Store.Driver == config.StoreDriverMemory {
		s := memory.NewStore(memory.WithLockTimeout(cfg.Engine.LockTimeout))
		return &storage{
			txRunner:   s,
			balances:   s.Balances(),
			ledger:     s.Ledger(),
			documents:  s.Documents(),
			warehouses: s.Warehouses(),
			materials:  s.Materials(),
			close:      func() {},
		}, nil
	}

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, err
	}
	return &storage{
		txRunner:   postgres.NewTxRunner(pool, cfg.Engine.LockTimeout),
		balances:   postgres.NewBalanceRepository(pool),
		ledger:     postgres.NewLedgerRepository(pool),
		documents:  postgres.NewDocumentRepository(pool),
		warehouses: postgres.NewWarehouseRepository(pool),
		materials:  postgres.NewMaterialRepository(pool),
		close:      pool.Close,
	}, nil
}
