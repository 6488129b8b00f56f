package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cuphut/Parking-App/internal/api"
	"github.com/cuphut/Parking-App/internal/api/handler"
	"github.com/cuphut/Parking-App/internal/api/middleware"
	"github.com/cuphut/Parking-App/internal/config"
	"github.com/cuphut/Parking-App/internal/repository/postgresql"
	"github.com/cuphut/Parking-App/internal/security"
	"github.com/cuphut/Parking-App/internal/service"
	"github.com/cuphut/Parking-App/internal/storage"
	"github.com/cuphut/Parking-App/pkg/logger"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	if err := logger.Init(cfg.Environment != "production"); err != nil {
		panic(err)
	}
	defer logger.Sync()

	db, err := postgresql.NewDB(cfg)
	if err != nil {
		logger.Log.Fatal("could not connect to database", zap.Error(err))
	}
	defer db.Close()
	logger.Log.Info("database connected", zap.String("host", cfg.DBHost), zap.String("db", cfg.DBName))

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), awsconfig.WithRegion(cfg.AWSRegion))
	if err != nil {
		logger.Log.Fatal("could not load AWS SDK config", zap.Error(err))
	}
	rekognitionClient := rekognition.NewFromConfig(awsCfg)

	userRepo := postgresql.NewPgUserRepository(db)
	vehicleRepo := postgresql.NewPgVehicleRepository(db)
	recordRepo := postgresql.NewPgParkingRecordRepository(db)

	imageStore := storage.NewLocalImageStore(cfg.UploadDir)
	hasher := security.NewBcryptHasher()

	wsManager := handler.NewWebSocketManager()
	go wsManager.Start()

	authService := service.NewAuthService(userRepo, hasher, cfg.JWTSecret, cfg.JWTExpirationHours)
	vehicleService := service.NewVehicleService(vehicleRepo, imageStore)
	ledgerService := service.NewLedgerService(recordRepo, vehicleRepo)
	lprService := service.NewLPRService(rekognitionClient, cfg.LPRMinConfidence)
	detectionService := service.NewDetectionService(lprService, vehicleService, ledgerService,
		wsManager, cfg.LPRTimeout)

	authMw := middleware.NewAuthMiddleware(authService)

	router := api.SetupRouter(
		handler.NewAuthHandler(authService),
		handler.NewVehicleHandler(vehicleService),
		handler.NewParkingHandler(ledgerService),
		handler.NewDetectHandler(detectionService),
		handler.NewWebSocketHandler(wsManager),
		authMw,
	)

	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: router,
	}

	go func() {
		logger.Log.Info("server listening", zap.String("port", cfg.ServerPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatal("listen and serve", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Fatal("forced server shutdown", zap.Error(err))
	}

	logger.Log.Info("server stopped")
}
