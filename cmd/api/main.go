package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"cutline/internal/config"
	"cutline/internal/database"
	"cutline/internal/middleware"
	"cutline/internal/modules/auth"
	"cutline/internal/modules/notification"
	"cutline/internal/modules/notify"
	"cutline/internal/modules/queue"
	"cutline/internal/modules/tokens"
	jwtsvc "cutline/internal/pkg/jwt"
	"cutline/internal/pkg/push"
	"cutline/internal/repository"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal(err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatal(err)
	}

	userRepo := repository.NewUserRepository(db)
	salonRepo := repository.NewSalonRepository(db)
	bookingRepo := repository.NewBookingRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	j := jwtsvc.New(cfg.JWTSecret, cfg.JWTTTL)

	authService := auth.NewService(userRepo, j)
	authHandler := auth.NewHandler(authService)

	tokenService := tokens.NewService(userRepo)
	tokenHandler := tokens.NewHandler(tokenService)

	pushClient := push.NewClient(cfg.PushEndpoint, cfg.PushServerKey, cfg.PushTimeout)
	dispatcher := notify.NewService(userRepo, notificationRepo, pushClient, tokenService)

	notificationService := notification.NewService(notificationRepo)
	notificationHandler := notification.NewHandler(notificationService)

	hub := queue.NewHub()
	resolver := queue.NewResolver(salonRepo, userRepo)
	queueService := queue.NewService(bookingRepo, resolver, dispatcher, hub, cfg.TurnReadyWindow, cfg.ArrivalWindow)
	queueHandler := queue.NewHandler(queueService, hub)

	scheduler := queue.NewScheduler(queueService, notificationRepo, cfg.SweepInterval, cfg.CleanupSchedule, cfg.CleanupEnabled, cfg.RetentionDays)
	if cfg.SchedulerEnabled {
		if err := scheduler.Start(); err != nil {
			log.Fatal(err)
		}
		defer scheduler.Stop()
	}

	if cfg.AppEnv == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Logger())
	r.Use(middleware.ErrorLogger())
	r.Use(middleware.CORS())

	v1 := r.Group("/api/v1")
	{
		authHandler.RegisterRoutes(v1)
		queueHandler.RegisterWatchRoutes(v1)

		protected := v1.Group("/")
		protected.Use(middleware.Auth(j))
		{
			queueHandler.RegisterRoutes(protected)
			tokenHandler.RegisterRoutes(protected)
			notificationHandler.RegisterRoutes(protected)
		}

		internal := v1.Group("/internal")
		internal.Use(middleware.InternalTokenAuth(cfg.InternalToken, cfg.InternalAllowedIPs))
		{
			queueHandler.RegisterInternalRoutes(internal)
		}
	}

	go func() {
		if err := r.Run(cfg.HTTPAddr); err != nil {
			log.Fatal(err)
		}
	}()
	log.Printf("level=info msg=\"listening\" addr=%s env=%s", cfg.HTTPAddr, cfg.AppEnv)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("level=info msg=\"shutting down\"")
}
