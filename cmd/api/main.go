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

	"github.com/jhoicas/verificador-pallets/internal/application/auth"
	"github.com/jhoicas/verificador-pallets/internal/application/ports"
	"github.com/jhoicas/verificador-pallets/internal/application/report"
	appsession "github.com/jhoicas/verificador-pallets/internal/application/session"
	"github.com/jhoicas/verificador-pallets/internal/domain/repository"
	infrafile "github.com/jhoicas/verificador-pallets/internal/infrastructure/file"
	"github.com/jhoicas/verificador-pallets/internal/infrastructure/memoria"
	infrapdf "github.com/jhoicas/verificador-pallets/internal/infrastructure/pdf"
	"github.com/jhoicas/verificador-pallets/internal/infrastructure/postgres"
	"github.com/jhoicas/verificador-pallets/internal/infrastructure/remote"
	httpRouter "github.com/jhoicas/verificador-pallets/internal/interfaces/http"
	"github.com/jhoicas/verificador-pallets/pkg/config"
	"github.com/jhoicas/verificador-pallets/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("storage", cfg.Storage.Driver).
		Msg("iniciando aplicación")

	ctx := context.Background()

	// Almacenamiento durable según el driver configurado.
	var storage repository.KVStorage
	switch cfg.Storage.Driver {
	case "postgres":
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()
		kv := postgres.NewKVRepository(pool)
		if err := kv.EnsureSchema(ctx); err != nil {
			log.Fatal().Err(err).Msg("esquema de almacenamiento")
		}
		storage = kv
	case "memoria":
		storage = memoria.NewStorage()
	default:
		fs, err := infrafile.NewStorage(cfg.Storage.FilePath, log)
		if err != nil {
			log.Fatal().Err(err).Msg("almacenamiento en archivo")
		}
		storage = fs
	}

	store := appsession.NewStore(log)
	gateway := appsession.NewGateway(storage, log)
	remoteClient := remote.NewClient(cfg.Remote)
	driver := appsession.NewDriver(store, gateway, remoteClient, ports.AutoConfirm{}, log)

	authUC := auth.NewAuthUseCase(cfg.Auth.ParseOperators(), auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	pdfUC := report.NewPDFUseCase(gateway, infrapdf.NewMarotoReportGenerator())

	if driver.HasRecoverableSession() {
		log.Info().Msg("hay una sesión reciente recuperable; el cliente decide en /api/sesion/recuperacion")
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 40, // el envío de sesión puede tardar hasta 30 s
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Verificador de Pallets API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		Driver:    driver,
		Store:     store,
		Gateway:   gateway,
		AuthUC:    authUC,
		PDFUC:     pdfUC,
		JWTSecret: cfg.JWT.Secret,
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
