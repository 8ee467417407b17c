package main

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/vitrinshop/vitrin/internal/clock"
	"github.com/vitrinshop/vitrin/internal/config"
	"github.com/vitrinshop/vitrin/internal/database"
	"github.com/vitrinshop/vitrin/internal/handler"
	"github.com/vitrinshop/vitrin/internal/middleware"
	"github.com/vitrinshop/vitrin/internal/queue"
	"github.com/vitrinshop/vitrin/internal/repository"
	"github.com/vitrinshop/vitrin/internal/router"
	"github.com/vitrinshop/vitrin/internal/service"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	log := zerolog.New(os.Stdout).With().Timestamp().Str("service", "vitrin").Logger()
	if cfg.Env == "dev" {
		log = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	cs, err := clock.New(cfg.Timezone)
	if err != nil {
		log.Fatal().Err(err).Str("timezone", cfg.Timezone).Msg("unknown timezone")
	}

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}
	defer db.Close()

	// Repositories share one pool; multi-step writes run through the runner.
	runner := repository.NewRunner(db)
	sellers := repository.NewSellerRepo(db)
	items := repository.NewItemRepo(db)
	rules := repository.NewAvailabilityRepo(db)
	bookings := repository.NewBookingRepo(db)
	orders := repository.NewOrderRepo(db)

	var notifier service.Notifier = service.NopNotifier{}
	if cfg.RabbitURL != "" {
		notifier = queue.NewPublisher(cfg.RabbitURL, log)
		go func() {
			if err := queue.StartEventConsumer(cfg.RabbitURL, log); err != nil {
				log.Error().Err(err).Msg("event consumer stopped")
			}
		}()
	} else {
		log.Warn().Msg("RABBITMQ_URL not set, event publishing disabled")
	}

	now := time.Now
	slotSvc := service.NewSlotService(cs, sellers, items, rules, bookings, now, log)
	bookingLedger := service.NewBookingLedger(runner, items, sellers, bookings, notifier, now, log)
	orderLedger := service.NewOrderLedger(runner, sellers, items, orders, notifier, cs, now, cfg.OrderPrefix, cfg.Currency, log)
	scheduleSvc := service.NewScheduleService(runner, rules, sellers)
	catalogSvc := service.NewCatalogService(sellers, items)

	handlers := router.Handlers{
		Catalog:       handler.NewCatalogHandler(catalogSvc, log),
		Slots:         handler.NewSlotHandler(slotSvc, log),
		Bookings:      handler.NewBookingHandler(bookingLedger, log),
		Orders:        handler.NewOrderHandler(orderLedger, log),
		Schedule:      handler.NewScheduleHandler(scheduleSvc, log),
		SellerBooking: handler.NewSellerBookingHandler(bookingLedger, log),
		SellerOrder:   handler.NewSellerOrderHandler(orderLedger, log),
	}

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Warn().Msg("redis unavailable, rate limiting and caching disabled")
	}
	rateLimit := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb, log)
	cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())

	router.RegisterRoutes(e)
	router.RegisterPublic(e, handlers, rateLimit, cache)
	router.RegisterSeller(e, handlers, cfg.JWTSecret, rateLimit)

	addr := ":" + cfg.Port
	log.Info().Str("addr", addr).Str("env", cfg.Env).Str("timezone", cfg.Timezone).Msg("listening")
	if err := e.Start(addr); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
