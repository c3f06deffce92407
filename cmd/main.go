package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"roamstay/internal/app/listings/config"
	"roamstay/internal/app/listings/handler"
	"roamstay/internal/app/listings/infrastructure/geo"
	"roamstay/internal/app/listings/infrastructure/mail"
	"roamstay/internal/app/listings/infrastructure/media"
	"roamstay/internal/app/listings/infrastructure/messaging"
	"roamstay/internal/app/listings/processor"
	"roamstay/internal/app/listings/repository"
	"roamstay/internal/app/listings/service"
	"roamstay/internal/app/listings/util"
	"roamstay/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}
	logger.Init("listings-service", logLevel)

	logstashAddr := os.Getenv("LOGSTASH_ADDR")
	if logstashAddr != "" {
		if err := logger.InitLogstash(logstashAddr, "listings-service", logLevel); err != nil {
			logger.Warn().Err(err).Msg("Failed to connect to Logstash, using stdout only")
		} else {
			logger.Info().Str("logstash_addr", logstashAddr).Msg("Connected to Logstash")
		}
	}

	mongoClient, err := connectMongoDB(cfg.MongoDB)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to MongoDB")
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := mongoClient.Disconnect(ctx); err != nil {
			logger.Error().Err(err).Msg("Error disconnecting from MongoDB")
		}
	}()
	logger.Info().
		Str("database", cfg.MongoDB.Database).
		Msg("Connected to MongoDB")

	db := mongoClient.Database(cfg.MongoDB.Database)

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()
	{
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
	}
	logger.Info().Str("addr", cfg.Redis.Addr).Msg("Connected to Redis")

	kafkaProducer := messaging.NewKafkaProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
	defer kafkaProducer.Close()
	logger.Info().
		Str("topic", cfg.Kafka.Topic).
		Msg("Initialized Kafka producer")

	mediaStore := media.NewCloudinaryClient(cfg.Media.CloudName, cfg.Media.APIKey, cfg.Media.APISecret)
	geocoder := geo.NewGoogleGeocoder(cfg.Geocoder.BaseURL, cfg.Geocoder.APIKey)
	mailSender := mail.NewMailgunClient(cfg.Mail.BaseURL, cfg.Mail.Domain, cfg.Mail.APIKey, cfg.Mail.From)

	jwtManager := util.NewJWTManager(cfg.JWT.Secret, cfg.JWT.AccessDuration, cfg.JWT.RefreshDuration)

	listingRepo := repository.NewListingRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	reviewRepo := repository.NewReviewRepository(db)
	userRepo := repository.NewUserRepository(db)
	tokenRepo := repository.NewRedisTokenRepository(redisClient)

	listingService := service.NewListingService(listingRepo, commentRepo, reviewRepo, mediaStore, geocoder, kafkaProducer, cfg.Media.Folder)
	commentService := service.NewCommentService(commentRepo, listingRepo)
	reviewService := service.NewReviewService(reviewRepo, listingRepo, kafkaProducer)
	authService := service.NewAuthService(userRepo, tokenRepo, jwtManager, mailSender, cfg.Auth.AdminCode, cfg.Auth.ResetTokenTTL, cfg.Auth.ResetBaseURL)
	userService := service.NewUserService(userRepo, listingRepo)

	authMiddleware := handler.NewAuthMiddleware(jwtManager, tokenRepo)
	authHandler := handler.NewAuthHandler(authService)
	listingHandler := handler.NewListingHandler(listingService)
	commentHandler := handler.NewCommentHandler(commentService)
	reviewHandler := handler.NewReviewHandler(reviewService)
	userHandler := handler.NewUserHandler(userService)

	router := handler.SetupRoutes(authHandler, listingHandler, commentHandler, reviewHandler, userHandler, authMiddleware)

	reconcilerCtx, reconcilerCancel := context.WithCancel(context.Background())
	defer reconcilerCancel()

	var reconciler *processor.RatingReconciler
	if cfg.Reconciler.Enabled {
		reconciler = processor.NewRatingReconciler(listingRepo, reviewRepo)
		if err := reconciler.Start(reconcilerCtx, cfg.Reconciler.Schedule); err != nil {
			logger.Fatal().Err(err).Msg("Failed to start rating reconciler")
		}
	}

	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Msg("Starting Listings Service")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("Shutting down Listings Service...")

	if reconciler != nil {
		reconciler.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	logger.Info().Msg("Listings Service stopped gracefully")
}

func connectMongoDB(cfg config.MongoDBConfig) (*mongo.Client, error) {
	clientOptions := options.Client().ApplyURI(cfg.URI)

	var client *mongo.Client
	var err error

	for i := 0; i < 10; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		client, err = mongo.Connect(ctx, clientOptions)
		if err == nil {
			pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer pingCancel()

			if err = client.Ping(pingCtx, nil); err == nil {
				return client, nil
			}
		}

		logger.Warn().
			Int("attempt", i+1).
			Err(err).
			Msg("Failed to connect to MongoDB, retrying...")
		time.Sleep(3 * time.Second)
	}

	return nil, err
}
