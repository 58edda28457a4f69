package mongo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/saveabite/reservations/internal/observability"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type AuditLogger struct {
	coll   *mongo.Collection
	logger observability.Logger
}

func NewAuditLogger(db *mongo.Database, logger observability.Logger) *AuditLogger {
	return &AuditLogger{
		coll:   db.Collection("audit_logs"),
		logger: logger,
	}
}

type AuditLog struct {
	ID        uuid.UUID `bson:"_id"`
	Action    string    `bson:"action"`
	UserID    int64     `bson:"user_id"`
	Timestamp time.Time `bson:"timestamp"`
	Data      bson.M    `bson:"data"`
}

func (a *AuditLogger) LogEvent(ctx context.Context, action string, userID int64, data map[string]interface{}) error {
	log := AuditLog{
		ID:        uuid.New(),
		Action:    action,
		UserID:    userID,
		Timestamp: time.Now(),
		Data:      bson.M(data),
	}
	_, err := a.coll.InsertOne(ctx, log)
	if err != nil {
		a.logger.Error("failed to insert audit log", err)
		return err
	}
	return nil
}

// LogBookingEvent records one booking lifecycle event (created, cancelled)
// as consumed from the message broker.
func (a *AuditLogger) LogBookingEvent(ctx context.Context, eventType string, bookingID, userID int64, packageIDs []int64) error {
	data := map[string]interface{}{
		"booking_id":  bookingID,
		"package_ids": packageIDs,
	}
	return a.LogEvent(ctx, eventType, userID, data)
}
