package outbox

import (
	"context"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/saveabite/reservations/internal/adapters/crdb"
	"github.com/saveabite/reservations/internal/adapters/rabbit"
	"github.com/saveabite/reservations/internal/observability"
)

const (
	pollInterval = 5 * time.Second
	batchSize    = 50
	maxRetries   = 3
)

// Publisher relays committed booking events from the outbox table to the
// broker. Delivery is at-least-once; consumers dedupe on MessageId.
type Publisher struct {
	repo      *crdb.Repository
	rabbitPub *rabbit.Publisher
	logger    observability.Logger
}

func NewPublisher(repo *crdb.Repository, rabbitPub *rabbit.Publisher, logger observability.Logger) *Publisher {
	return &Publisher{repo: repo, rabbitPub: rabbitPub, logger: logger}
}

func (p *Publisher) Run(ctx context.Context) {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.drain(ctx)
		}
	}
}

func (p *Publisher) drain(ctx context.Context) {
	records, err := p.repo.GetUnpublishedOutbox(ctx, batchSize)
	if err != nil {
		p.logger.Error("failed to fetch outbox records", err)
		return
	}
	if len(records) > 0 {
		observability.OutboxLag.Set(time.Since(records[0].CreatedAt).Seconds())
	} else {
		observability.OutboxLag.Set(0)
	}

	for _, rec := range records {
		msg := amqp.Publishing{
			MessageId:   rec.DedupeKey,
			ContentType: "application/json",
			Body:        rec.Payload,
		}
		if err := p.publishWithRetry(ctx, rec.EventType, msg); err != nil {
			p.logger.WithField("outbox_id", rec.ID.String()).Error("failed to publish outbox record", err)
			continue
		}
		if err := p.repo.MarkPublished(ctx, rec.ID, time.Now()); err != nil {
			p.logger.WithField("outbox_id", rec.ID.String()).Error("failed to mark outbox record published", err)
		}
	}
}

func (p *Publisher) publishWithRetry(ctx context.Context, key string, msg amqp.Publishing) error {
	var err error
	for i := 0; i < maxRetries; i++ {
		err = p.rabbitPub.Publish(ctx, key, msg)
		if err == nil {
			return nil
		}
		observability.RabbitPublishRetries.Inc()
		backoff := time.Duration(1<<i) * time.Second
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
	}
	return err
}
