package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/maayanhealth/clinic-api/internal/config"
	"github.com/maayanhealth/clinic-api/internal/handler"
	appointmentHandler "github.com/maayanhealth/clinic-api/internal/handler/appointment"
	financeHandler "github.com/maayanhealth/clinic-api/internal/handler/finance"
	patientHandler "github.com/maayanhealth/clinic-api/internal/handler/patient"
	"github.com/maayanhealth/clinic-api/internal/handler/prometheus"
	"github.com/maayanhealth/clinic-api/internal/middleware"
	"github.com/maayanhealth/clinic-api/internal/repository/postgres"
	"github.com/maayanhealth/clinic-api/internal/router"
	appointmentService "github.com/maayanhealth/clinic-api/internal/service/appointment"
	financeService "github.com/maayanhealth/clinic-api/internal/service/finance"
	patientService "github.com/maayanhealth/clinic-api/internal/service/patient"
	"github.com/maayanhealth/clinic-api/pkg/logger"
)

func main() {
	logger.Setup()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	patientRepo := postgres.NewPatientRepository(db)
	transactionRepo := postgres.NewTransactionRepository(db)
	appointmentRepo := postgres.NewAppointmentRepository(db)
	roomRepo := postgres.NewRoomRepository(db)
	actionLogRepo := postgres.NewActionLogRepository(db)

	financeSvc := financeService.NewService(
		patientRepo,
		transactionRepo,
		actionLogRepo,
		time.Duration(cfg.Cache.SummaryTTLSeconds)*time.Second,
	)
	patientSvc := patientService.NewService(patientRepo, transactionRepo, actionLogRepo, financeSvc)
	appointmentSvc := appointmentService.NewService(appointmentRepo, roomRepo)

	r := router.NewRouter(
		router.Config{
			JWTSecret:         cfg.JWT.Secret,
			RequestTimeout:    time.Duration(cfg.Server.TimeoutSeconds) * time.Second,
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			RateBurst:         cfg.RateLimit.Burst,
			CORS:              middleware.DefaultCORSConfig(),
		},
		handler.NewHealthHandler(db),
		prometheus.New(),
		patientHandler.NewHandler(patientSvc),
		financeHandler.NewHandler(financeSvc),
		appointmentHandler.NewHandler(appointmentSvc),
	)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: r.Engine(),
	}

	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}
	log.Info().Msg("server stopped")
}
