package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"ProcureApp/app/api"
	"ProcureApp/app/config"
	"ProcureApp/app/database"
	"ProcureApp/app/events"
	"ProcureApp/app/services"
	"ProcureApp/app/websocket"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.Load()

	if err := database.Initialize(cfg); err != nil {
		log.Fatalf("Database initialization failed: %v", err)
	}
	defer database.Close()

	db := database.GetDB()

	// Services
	ledgerSvc := services.NewLedgerService(db)
	insightSvc := services.NewInsightService(db)
	supplierSvc := services.NewSupplierService(db)
	synthesizer := services.NewOrderSynthesizer(db, supplierSvc)
	notifSvc := services.NewNotificationService(db)
	pipeline := services.NewPipelineService(db, ledgerSvc, insightSvc, synthesizer, notifSvc,
		cfg.Pipeline.Workers, cfg.Pipeline.TenantTimeout)

	// Live feed for dashboard clients
	if cfg.WebSocketPort > 0 {
		wsServer := websocket.NewServer(cfg.WebSocketPort)
		if err := wsServer.Start(); err != nil {
			log.Printf("WebSocket feed failed to start: %v", err)
		} else {
			notifSvc.SetWebSocketServer(wsServer)
		}
	}

	// Event bus: publish low-stock events on ledger writes, consume them
	// to drive the event-run orchestrator
	var subscriber *events.Subscriber
	if cfg.NATSURL != "" {
		publisher, err := events.NewPublisher(cfg.NATSURL)
		if err != nil {
			log.Printf("NATS publisher unavailable: %v", err)
		} else {
			ledgerSvc.SetPublisher(publisher)
			defer publisher.Close()
		}

		subscriber, err = events.NewSubscriber(cfg.NATSURL)
		if err != nil {
			log.Printf("NATS subscriber unavailable: %v", err)
			subscriber = nil
		} else {
			handler := func(ctx context.Context, ev events.LowStockEvent) {
				if _, err := pipeline.RunForItem(ctx, ev); err != nil {
					log.Printf("Event run failed for item %d: %v", ev.ItemID, err)
				}
			}
			if err := subscriber.Start(context.Background(), handler); err != nil {
				log.Printf("Failed to start low-stock subscriber: %v", err)
			}
			defer subscriber.Stop()
		}
	} else {
		log.Println("NATS_URL not set, event bus disabled")
	}

	// Nightly batch scheduler
	if cfg.Pipeline.SchedulerEnabled {
		scheduler := services.NewAnalysisScheduler(pipeline, cfg.Pipeline.DailyRunTime)
		if err := scheduler.Start(); err != nil {
			log.Printf("Scheduler failed to start: %v", err)
		} else {
			defer scheduler.Stop()
		}
	}

	// Trigger API
	server := api.NewServer(pipeline, ledgerSvc)
	go func() {
		addr := fmt.Sprintf(":%d", cfg.HTTPPort)
		log.Printf("Trigger API listening on %s", addr)
		if err := server.Run(addr); err != nil {
			log.Fatalf("Could not start server: %v", err)
		}
	}()

	// Block until shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down")
}
