package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ecommerce/auth-service/internal/core/domain"
)

// EventRepository persists the authentication audit trail.
type EventRepository struct {
	db *sql.DB
}

func NewEventRepository(db *sql.DB) *EventRepository {
	return &EventRepository{db: db}
}

func (r *EventRepository) InsertEvent(ctx context.Context, event *domain.AuthEvent) error {
	const query = `
		INSERT INTO auth_events (type, username, actor, reason, occurred_at)
		VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), $5)`
	if _, err := r.db.ExecContext(ctx, query,
		string(event.Type),
		event.Username,
		event.Actor,
		event.Reason,
		event.At.UTC(),
	); err != nil {
		return fmt.Errorf("insert auth event: %w", err)
	}
	return nil
}
