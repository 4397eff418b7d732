package main

import (
	"context"
	"net/http"

	"github.com/rs/cors"
	log "github.com/sirupsen/logrus"

	"github.com/dimeda/stretcher-service/internal/auth"
	"github.com/dimeda/stretcher-service/internal/config"
	"github.com/dimeda/stretcher-service/internal/db"
	"github.com/dimeda/stretcher-service/internal/events"
	"github.com/dimeda/stretcher-service/internal/handlers"
	"github.com/dimeda/stretcher-service/internal/issues"
	"github.com/dimeda/stretcher-service/internal/middleware"
)

func main() {
	log.SetFormatter(&log.JSONFormatter{})
	logger := log.WithField("service", "stretcher-service")

	cfg := config.Load()

	client, err := db.ConnectMongo()
	if err != nil {
		logger.WithError(err).Fatal("failed to connect to MongoDB")
	}
	defer client.Disconnect(context.Background())
	database := client.Database(cfg.MongoDB)
	logger.WithField("database", cfg.MongoDB).Info("connected to MongoDB")

	products := &db.MongoProductCollection{Collection: database.Collection(db.CollectionProducts)}
	issueDocs := &db.MongoIssueCollection{Collection: database.Collection(db.CollectionIssues)}
	maintenance := &db.MongoMaintenanceCollection{Collection: database.Collection(db.CollectionMaintenance)}
	services := &db.MongoServiceCollection{Collection: database.Collection(db.CollectionServices)}
	technicians := &db.MongoTechnicianCollection{Collection: database.Collection(db.CollectionTechnicians)}

	sessions, err := auth.NewService(cfg)
	if err != nil {
		logger.WithError(err).Fatal("failed to initialize auth service")
	}

	var publisher events.Publisher = events.NoopPublisher{}
	if cfg.MQTTBrokerURL != "" {
		mqttPub, err := events.NewMQTTPublisher(cfg.MQTTBrokerURL, cfg.MQTTTopicPrefix, logger)
		if err != nil {
			logger.WithError(err).Warn("MQTT broker unreachable, issue events disabled")
		} else {
			publisher = mqttPub
			logger.WithField("broker", cfg.MQTTBrokerURL).Info("publishing issue events over MQTT")
		}
	}

	issueService := issues.NewService(issueDocs, products, maintenance, services, publisher, logger)

	h := &handlers.Handlers{
		Auth:        handlers.NewAuthHandler(sessions, logger),
		Products:    handlers.NewProductHandler(products, maintenance, logger),
		Issues:      handlers.NewIssueHandler(issueService, logger),
		Maintenance: handlers.NewMaintenanceHandler(maintenance, products, logger),
		Services:    handlers.NewServiceHandler(services, products, logger),
		Technician:  handlers.NewTechnicianHandler(technicians, logger),
		Stats:       handlers.NewStatsHandler(products, issueDocs, services, logger),
		Export:      handlers.NewExportHandler(products, issueDocs, services, logger),
	}

	mux := http.NewServeMux()
	h.Register(mux)

	corsMiddleware := cors.New(cors.Options{
		AllowedOrigins:   []string{cfg.FrontendURL, "http://localhost:3000"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", config.AuthHeaderName},
		AllowCredentials: true,
	})

	authMW := middleware.NewAuthMiddleware(sessions)
	var handler http.Handler = mux
	handler = authMW.Authenticate(handler)
	handler = corsMiddleware.Handler(handler)
	handler = middleware.Recover(logger)(handler)
	handler = middleware.RequestLogger(logger)(handler)

	addr := ":" + cfg.Port
	logger.WithField("addr", addr).Info("HTTP server listening")
	if err := http.ListenAndServe(addr, handler); err != nil {
		logger.WithError(err).Fatal("server exited")
	}
}
