package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"github.com/ukydev/fleet-maintenance/internal/auth"
	"github.com/ukydev/fleet-maintenance/internal/config"
	"github.com/ukydev/fleet-maintenance/internal/db"
	"github.com/ukydev/fleet-maintenance/internal/handlers"
	"github.com/ukydev/fleet-maintenance/internal/metrics"
	"github.com/ukydev/fleet-maintenance/internal/middleware"
	"github.com/ukydev/fleet-maintenance/internal/realtime"
	"github.com/ukydev/fleet-maintenance/internal/storage"
)

func main() {
	cfg := config.Load()
	cfg.ConfigureLogging()
	metrics.RegisterDefault()

	client, err := db.ConnectMongo(cfg.MongoURI)
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to MongoDB")
	}
	log.Info("Connected to MongoDB")
	database := client.Database(cfg.MongoDatabase)
	collections := db.NewCollections(database)

	photoStore, err := storage.NewGridFSPhotoStore(database)
	if err != nil {
		log.WithError(err).Fatal("Failed to open photo bucket")
	}

	authService := auth.NewService(cfg.JWTSecret, cfg.JWTExpiry)

	// Realtime fan-out: the in-process broker always runs; the MQTT bridge
	// only joins when a broker URL is configured.
	broker := realtime.NewBroker()
	events := realtime.Fanout{broker}
	if cfg.MQTTURL != "" {
		mqttPub, err := realtime.NewMQTTPublisher(cfg.MQTTURL, "fleet-maintenance", cfg.MQTTPrefix)
		if err != nil {
			log.WithError(err).Warn("MQTT bridge unavailable, continuing without it")
		} else {
			defer mqttPub.Close()
			events = append(events, mqttPub)
			log.WithField("url", cfg.MQTTURL).Info("MQTT bridge connected")
		}
	}

	authHandler := handlers.NewAuthHandler(authService, collections.Users)
	ticketHandler := handlers.NewTicketHandler(collections.Tickets, collections.Users, events)
	vehicleHandler := handlers.NewVehicleHandler(collections.Vehicles, events)
	photoHandler := handlers.NewPhotoHandler(photoStore)
	reportHandler := handlers.NewReportHandler(collections.Tickets, collections.Expenses)

	authMiddleware := middleware.NewAuthMiddleware(authService)
	rateLimiter := middleware.NewRateLimitMiddleware()

	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/auth/login", authHandler.Login)
	mux.HandleFunc("POST /api/auth/register", authHandler.Register)
	mux.HandleFunc("GET /api/auth/profile", authHandler.GetProfile)
	mux.HandleFunc("PUT /api/auth/profile", authHandler.UpdateProfile)
	mux.HandleFunc("POST /api/auth/change-password", authHandler.ChangePassword)

	requires := authMiddleware.RequirePermission
	mux.Handle("POST /api/checkout", requires("checkout")(http.HandlerFunc(ticketHandler.Checkout)))
	mux.Handle("GET /api/tickets", requires("view_tickets")(http.HandlerFunc(ticketHandler.List)))
	mux.Handle("POST /api/tickets", requires("triage")(http.HandlerFunc(ticketHandler.Create)))
	mux.Handle("GET /api/tickets/{id}", requires("view_tickets")(http.HandlerFunc(ticketHandler.Get)))
	mux.Handle("POST /api/tickets/{id}/checkin", requires("checkin")(http.HandlerFunc(ticketHandler.Checkin)))
	mux.Handle("POST /api/tickets/{id}/triage", requires("triage")(http.HandlerFunc(ticketHandler.Triage)))
	mux.Handle("POST /api/tickets/{id}/work", requires("start_work")(http.HandlerFunc(ticketHandler.Work)))
	mux.Handle("PATCH /api/tickets/{id}", requires("triage")(http.HandlerFunc(ticketHandler.Patch)))
	mux.Handle("DELETE /api/tickets/{id}", requires("delete_ticket")(http.HandlerFunc(ticketHandler.Delete)))
	mux.Handle("GET /api/mechanics", requires("triage")(http.HandlerFunc(ticketHandler.Mechanics)))

	mux.Handle("GET /api/vehicles", requires("view_vehicles")(http.HandlerFunc(vehicleHandler.List)))
	mux.Handle("POST /api/vehicles", requires("manage_vehicles")(http.HandlerFunc(vehicleHandler.Create)))
	mux.Handle("GET /api/vehicles/{id}", requires("view_vehicles")(http.HandlerFunc(vehicleHandler.Get)))
	mux.Handle("PUT /api/vehicles/{id}", requires("manage_vehicles")(http.HandlerFunc(vehicleHandler.Update)))
	mux.Handle("DELETE /api/vehicles/{id}", requires("manage_vehicles")(http.HandlerFunc(vehicleHandler.Delete)))
	mux.Handle("GET /api/fleet/compliance", requires("view_vehicles")(http.HandlerFunc(vehicleHandler.Compliance)))

	mux.Handle("POST /api/photos", requires("upload_photo")(http.HandlerFunc(photoHandler.Upload)))
	mux.HandleFunc("GET /files/photos/{name}", photoHandler.Serve)

	mux.Handle("POST /api/expenses", requires("triage")(http.HandlerFunc(reportHandler.CreateExpense)))
	mux.Handle("GET /api/reports/budget", requires("view_reports")(http.HandlerFunc(reportHandler.Budget)))
	mux.Handle("GET /api/reports/repair/{id}", requires("view_reports")(http.HandlerFunc(reportHandler.Repair)))

	mux.Handle("GET /api/ws", &realtime.WSHandler{Broker: broker})
	mux.Handle("GET /metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))
	mux.HandleFunc("GET /health", healthHandler)

	handler := middleware.Instrument(
		rateLimiter.RateLimit(cfg.RateLimit, cfg.RateWindowSec)(
			authMiddleware.Authenticate(mux)))

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.WithField("port", cfg.Port).Info("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("HTTP server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Info("Shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.WithError(err).Error("Graceful shutdown failed")
	}
	if err := client.Disconnect(ctx); err != nil {
		log.WithError(err).Error("Mongo disconnect failed")
	}
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}
