package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"whatsapp-channel/internal/config"
	"whatsapp-channel/internal/domain/entities"
	"whatsapp-channel/internal/domain/interfaces/repository"
	Iservices "whatsapp-channel/internal/domain/interfaces/services"
	"whatsapp-channel/internal/infra/handlers"
	"whatsapp-channel/internal/infra/logger"
	"whatsapp-channel/internal/infra/provider"
	inframongo "whatsapp-channel/internal/infra/repository"
	"whatsapp-channel/internal/infra/routes"
	"whatsapp-channel/internal/infra/services"
	"whatsapp-channel/internal/infra/translator"
	"whatsapp-channel/internal/middleware"
	client "whatsapp-channel/internal/pkg"

	"github.com/gorilla/mux"
)

func main() {
	config.LoadEnv()

	ctx := context.Background()
	bootLog := logger.NewLogger(ctx, true, config.GetEnvDefault(config.KeyLogLevel, "info"))

	settings, err := config.Load()
	if err != nil {
		bootLog.Fatal(fmt.Sprintf("Invalid configuration: %v", err))
	}
	log := logger.NewLogger(ctx, true, settings.LogLevel)

	var subscriberRepo repository.Repository[entities.Subscriber]
	var attachmentRepo repository.Repository[entities.Attachment]

	if settings.MongoURI != "" {
		mongoClient, err := client.MongoClient(settings.MongoURI)
		if err != nil {
			log.Fatal(fmt.Sprintf("Error connecting to MongoDB: %v", err))
		}
		defer mongoClient.Disconnect(context.Background())

		db := mongoClient.Database(settings.MongoDatabase)
		subscriberRepo = inframongo.NewMongoRepository[entities.Subscriber](db)
		attachmentRepo = inframongo.NewMongoRepository[entities.Attachment](db)
		log.Info(fmt.Sprintf("Using MongoDB database %s", settings.MongoDatabase))
	} else {
		subscriberRepo = inframongo.NewMemoryRepository[entities.Subscriber]()
		attachmentRepo = inframongo.NewMemoryRepository[entities.Attachment]()
		log.Warn("MONGODB_URI not set, subscribers and attachments are kept in memory")
	}

	httpClient := &http.Client{Timeout: 30 * time.Second}

	var subscriberSvc Iservices.ISubscriberService = services.NewSubscriberService(subscriberRepo, log)
	attachmentSvc := services.NewAttachmentService(attachmentRepo, log, settings.PublicURL)
	var engineSvc Iservices.IEngineService = services.NewEngineService(log, httpClient, settings.HostEngineURL)
	channelSvc := services.NewChannelService(log, subscriberSvc, attachmentSvc, engineSvc)

	newProvider := func(s *config.Settings) provider.IWhatsAppProvider {
		return provider.NewGraphWhatsAppProvider(log, httpClient, s.GraphAPIURL, s.GraphAPIVersion, s.AccessToken)
	}

	whatsAppHandlers := handlers.NewWhatsAppHandlers(
		log,
		settings,
		newProvider,
		channelSvc,
		attachmentSvc,
		translator.NewTranslator(attachmentSvc),
	)

	router := mux.NewRouter()
	router.Use(middleware.LoggingMiddleware(log))

	routes := routes.NewRoutes(router, whatsAppHandlers, log)
	routes.Init()

	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", settings.Port),
		Handler: router,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Info(fmt.Sprintf("Server is running on port %s", settings.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error(fmt.Sprintf("Error running HTTP server: %s", err))
			os.Exit(1)
		}
	}()

	<-stop
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error(fmt.Sprintf("Server forced to shutdown: %v", err))
	} else {
		log.Info("Server stopped gracefully.")
	}
}
