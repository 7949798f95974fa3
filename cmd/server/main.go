package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/theater-booking/internal/config"
	"github.com/iliyamo/theater-booking/internal/database"
	"github.com/iliyamo/theater-booking/internal/handler"
	"github.com/iliyamo/theater-booking/internal/logger"
	"github.com/iliyamo/theater-booking/internal/queue"
	"github.com/iliyamo/theater-booking/internal/repository"
	"github.com/iliyamo/theater-booking/internal/router"
	"github.com/iliyamo/theater-booking/internal/service"
)

func main() {
	// A missing .env is fine: the environment may already be set.
	envErr := godotenv.Load()

	cfg := config.Load()
	if err := logger.Init(cfg.LogLevel, cfg.IsDev()); err != nil {
		logrus.WithError(err).Fatal("init logger")
	}
	if envErr != nil {
		logrus.Debug("no .env file, using process environment")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		logrus.WithError(err).Fatal("open database")
	}
	defer db.Close()
	if err := database.Migrate(ctx, db); err != nil {
		logrus.WithError(err).Fatal("migrate database")
	}

	rdb := config.NewRedisClient()
	if rdb != nil {
		defer rdb.Close()
	}

	actors := repository.NewActorRepo(db)
	genres := repository.NewGenreRepo(db)
	halls := repository.NewHallRepo(db)
	plays := repository.NewPlayRepo(db)
	performances := repository.NewPerformanceRepo(db)
	reservations := repository.NewReservationRepo(db)

	engine := service.NewReservationService(
		service.NewSQLStore(db, performances, reservations),
		queue.NewPublisher(cfg.RabbitMQURL),
	)
	engine.Timeout = cfg.ReservationTimeout

	queue.StartReservationConsumer(ctx, cfg.RabbitMQURL)

	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.Use(echomw.Recover())
	e.Use(logger.RequestLogger())

	router.RegisterRoutes(e, router.Deps{
		Catalog:      handler.NewCatalogHandler(actors, genres, halls, plays),
		Performances: handler.NewPerformanceHandler(performances, plays, engine),
		Reservations: handler.NewReservationHandler(engine, reservations),
		JWTSecret:    cfg.JWTSecret,
		Redis:        rdb,
		RateLimit:    config.LoadRateLimitConfig(),
		Cache:        config.LoadCacheConfig(),
	})

	go func() {
		addr := ":" + cfg.Port
		logrus.WithFields(logrus.Fields{"addr": addr, "env": cfg.Env}).Info("listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.WithError(err).Fatal("http server")
		}
	}()

	<-ctx.Done()
	logrus.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Error("graceful shutdown failed")
	}
}
