package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"syscall"

	amqp "github.com/rabbitmq/amqp091-go"
	mongoadapter "github.com/saveabite/reservations/internal/adapters/mongo"
	"github.com/saveabite/reservations/internal/adapters/rabbit"
	"github.com/saveabite/reservations/internal/config"
	"github.com/saveabite/reservations/internal/observability"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	shutdownOtel, err := observability.SetupOTel(context.Background(), cfg.OTLPEndpoint)
	if err != nil {
		log.Fatalf("failed to setup otel: %v", err)
	}
	defer shutdownOtel()

	logger := observability.NewLogger()

	mongoClient, err := mongo.Connect(context.Background(), options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatalf("failed to connect to mongo: %v", err)
	}
	defer mongoClient.Disconnect(context.Background())
	audit := mongoadapter.NewAuditLogger(mongoClient.Database("resv"), logger)

	conn, err := amqp.Dial(cfg.RabbitURL)
	if err != nil {
		log.Fatalf("failed to connect to rabbitmq: %v", err)
	}
	defer conn.Close()
	consumer, err := rabbit.NewConsumer(conn, "notifier.q")
	if err != nil {
		log.Fatalf("failed to create consumer: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	notifier := NewNotifier(consumer, audit, logger)
	go func() {
		if err := notifier.Run(ctx); err != nil && ctx.Err() == nil {
			log.Fatalf("notifier stopped: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	logger.Info("Shutdown notifier")
}

type Notifier struct {
	consumer *rabbit.Consumer
	audit    *mongoadapter.AuditLogger
	logger   observability.Logger
}

func NewNotifier(consumer *rabbit.Consumer, audit *mongoadapter.AuditLogger, logger observability.Logger) *Notifier {
	return &Notifier{consumer: consumer, audit: audit, logger: logger}
}

type bookingEvent struct {
	BookingID  int64   `json:"booking_id"`
	UserID     int64   `json:"user_id"`
	PackageIDs []int64 `json:"package_ids"`
}

// Run consumes booking events and records them in the audit collection.
// Messages that fail to decode are dropped; audit insert failures are
// requeued so delivery stays at-least-once.
func (n *Notifier) Run(ctx context.Context) error {
	deliveries, err := n.consumer.Consume(ctx)
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-deliveries:
			if !ok {
				return nil
			}
			var event bookingEvent
			if err := json.Unmarshal(d.Body, &event); err != nil {
				n.logger.Error("failed to decode booking event", err)
				d.Nack(false, false)
				continue
			}
			err := n.audit.LogBookingEvent(ctx, d.RoutingKey, event.BookingID, event.UserID, event.PackageIDs)
			if err != nil {
				d.Nack(false, true)
				continue
			}
			d.Ack(false)
		}
	}
}
