// Command server boots the sports facility booking API: configuration,
// logging, MySQL, Redis, the Stripe gateway, the RabbitMQ consumer and
// finally the Echo HTTP server.
package main

import (
    "github.com/joho/godotenv"
    "github.com/labstack/echo/v4"
    echomw "github.com/labstack/echo/v4/middleware"

    "github.com/iliyamo/sports-facility-booking/internal/config"
    "github.com/iliyamo/sports-facility-booking/internal/database"
    "github.com/iliyamo/sports-facility-booking/internal/handler"
    "github.com/iliyamo/sports-facility-booking/internal/logger"
    "github.com/iliyamo/sports-facility-booking/internal/metrics"
    "github.com/iliyamo/sports-facility-booking/internal/middleware"
    "github.com/iliyamo/sports-facility-booking/internal/payment"
    "github.com/iliyamo/sports-facility-booking/internal/queue"
    "github.com/iliyamo/sports-facility-booking/internal/repository"
    "github.com/iliyamo/sports-facility-booking/internal/router"
)

func main() {
    // .env is optional; real deployments set the environment directly.
    _ = godotenv.Load()

    cfg := config.Load()
    log := logger.New(cfg.LogLevel, cfg.Env)

    db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
    if err != nil {
        log.Fatal().Err(err).Msg("database connection failed")
    }
    defer db.Close()
    log.Info().Str("host", cfg.DBHost).Str("db", cfg.DBName).Msg("database connected")

    // Redis is optional: without it the cache and rate-limit middleware
    // become pass-throughs.
    rdb := config.NewRedisClient()
    if rdb == nil {
        log.Warn().Msg("redis unavailable, cache and rate limiting disabled")
    }

    users := repository.NewUserRepo(db)
    tokens := repository.NewTokenRepo(db)
    facilities := repository.NewFacilityRepo(db)
    bookings := repository.NewBookingRepo(db)

    gateway := payment.NewStripeGateway(cfg.StripeSecretKey, cfg.Currency)

    authH := handler.NewAuthHandler(cfg, users, tokens)
    userH := handler.NewUserHandler(cfg, users, tokens)
    facilityH := handler.NewFacilityHandler(facilities)
    availH := handler.NewAvailabilityHandler(bookings, facilities)
    bookingH := handler.NewBookingHandler(bookings, facilities)
    paymentH := handler.NewPaymentHandler(bookings, gateway, cfg.Currency)

    e := echo.New()
    e.HideBanner = true
    e.Use(echomw.Recover())
    e.Use(metrics.Middleware())
    e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))

    jwtGuard := middleware.JWTAuth(cfg.JWTSecret, users)
    cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)

    router.RegisterSystemRoutes(e)
    router.RegisterAuthRoutes(e, authH, jwtGuard)
    router.RegisterUserRoutes(e, userH, jwtGuard)
    router.RegisterFacilityRoutes(e, facilityH, jwtGuard, cache)
    router.RegisterBookingRoutes(e, bookingH, availH, jwtGuard)
    router.RegisterPaymentRoutes(e, paymentH, jwtGuard)

    // Background consumer: reconnects forever, never takes the API down.
    go func() {
        if err := queue.StartConsumer(log); err != nil {
            log.Error().Err(err).Msg("queue consumer stopped")
        }
    }()

    log.Info().Str("port", cfg.Port).Msg("http server starting")
    if err := e.Start(":" + cfg.Port); err != nil {
        log.Fatal().Err(err).Msg("http server stopped")
    }
}
