package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	json "github.com/goccy/go-json"
	"github.com/streadway/amqp"

	"fitzty/internal/config"
	"fitzty/pkg/logger"
)

func main() {
	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLog, err := logger.New(cfg.AppEnv)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer appLog.Sync()

	// --- Infrastructure ---
	in, err := openInfra(cfg, appLog)
	if err != nil {
		appLog.Error("failed to initialize infrastructure", "error", err)
		os.Exit(1)
	}
	defer in.Close(appLog)

	app := newApp(cfg, in, buildServices(cfg, in, appLog), appLog)

	// --- Event consumer ---
	if in.mq != nil {
		if err := in.mq.ConsumeEvents(logEvent(appLog)); err != nil {
			appLog.Warn("failed to start event consumer", "error", err)
		}
	}

	// --- Start HTTP Server ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		appLog.Info("starting server", "addr", cfg.AppPort, "env", cfg.AppEnv, "auth_required", cfg.AuthRequired)
		if err := app.Listen(cfg.AppPort); err != nil {
			appLog.Error("server stopped", "error", err)
			quit <- syscall.SIGTERM
		}
	}()

	<-quit
	appLog.Info("shutting down server")
	if err := app.Shutdown(); err != nil {
		appLog.Warn("error during fiber shutdown", "error", err)
	}
	appLog.Info("server gracefully stopped")
}

// logEvent records every domain event delivered on the events queue.
func logEvent(log *logger.Logger) func(amqp.Delivery) error {
	return func(msg amqp.Delivery) error {
		var payload map[string]any
		if err := json.Unmarshal(msg.Body, &payload); err != nil {
			return err
		}
		log.Info("event received", "routing_key", msg.RoutingKey, "delivery_tag", msg.DeliveryTag, "payload", payload)
		return nil
	}
}
