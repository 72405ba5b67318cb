package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/ecommerce/auth-service/internal/core/domain"
)

const eventsCollection = "auth_events"

// EventRepository persists the authentication audit trail.
type EventRepository struct {
	coll *mongo.Collection
}

func NewEventRepository(db *mongo.Database) *EventRepository {
	return &EventRepository{coll: db.Collection(eventsCollection)}
}

// InsertEvent appends a single audit record.
func (r *EventRepository) InsertEvent(ctx context.Context, event *domain.AuthEvent) error {
	doc := bson.M{
		"type":        string(event.Type),
		"username":    event.Username,
		"occurred_at": event.At.UTC(),
		"recorded_at": time.Now().UTC(),
	}
	if event.Actor != "" {
		doc["actor"] = event.Actor
	}
	if event.Reason != "" {
		doc["reason"] = event.Reason
	}

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert auth event: %w", err)
	}
	return nil
}
