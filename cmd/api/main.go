package main

import (
	"agenda/cmd/internal/config"
	"agenda/cmd/internal/domain/database"
	"agenda/cmd/internal/domain/database/repository"
	"agenda/cmd/internal/domain/entity"
	"agenda/cmd/internal/integration/redis"
	"agenda/cmd/internal/routes"
	"agenda/cmd/internal/service"
	"agenda/cmd/internal/utils/token"
	"agenda/cmd/internal/utils/validators"
	"agenda/cmd/internal/view"
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("failed to load configuration: ", err)
	}
	log.SetLevel(cfg.LogLevel)

	validate := validator.New()
	validators.Register(validate)

	db, err := database.Open(cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		log.Fatal("failed to initialize database: ", err)
	}
	defer func() {
		if err := database.Close(db); err != nil {
			log.Errorf("failed to close database: %v", err)
		}
	}()

	// Getting repositories
	userRepo := repository.NewUserRepository(db)
	apptRepo := repository.NewAppointmentRepository(db)

	var sessionRepo service.SessionRepository
	switch cfg.SessionStore {
	case config.SessionStoreRedis:
		client, err := redis.OpenClient(cfg.RedisURL)
		if err != nil {
			log.Fatal("failed to connect to redis: ", err)
		}
		defer client.Close()
		sessionRepo = redis.NewSessionStore(client)
	default:
		sessionRepo = repository.NewSessionRepository(db)
	}

	// Getting services
	userService := service.NewUserService(userRepo, apptRepo, sessionRepo, validate)
	apptService := service.NewAppointmentService(apptRepo, userRepo, validate, cfg.Location)
	sessionService := service.NewSessionService(sessionRepo, userRepo, token.NewSigner(cfg.SecretKey), cfg.SessionTTL)

	created, err := userService.EnsureAdmin(cfg.AdminPassword)
	if err != nil {
		log.Fatal("failed to bootstrap administrator: ", err)
	}
	if created {
		log.Infof("created default administrator %q", entity.AdminUsername)
	}
	if cfg.UsesDefaultAdminPassword() {
		log.Warn("ADMIN_PASSWORD is not set: the administrator bootstrap password is the default one, change it after first login")
	}
	if cfg.GeneratedSecret {
		log.Warn("SECRET_KEY is not set: using a random key, sessions will not survive a restart")
	}

	renderer, err := view.NewRenderer()
	if err != nil {
		log.Fatal("failed to parse templates: ", err)
	}

	e := echo.New()
	e.HideBanner = true
	e.Renderer = renderer
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	routes.Register(e, routes.Services{
		Users:        userService,
		Appointments: apptService,
		Sessions:     sessionService,
	}, routes.Options{
		SecureCookies: cfg.SecureCookies,
		LoginRate:     cfg.LoginRate,
		LoginBurst:    cfg.LoginBurst,
		Ping:          func() error { return database.Ping(db) },
	})

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			e.Logger.Fatal(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		log.Errorf("server forced to shutdown: %v", err)
	}
}
