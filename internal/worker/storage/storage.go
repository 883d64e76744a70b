package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cuongbtq/email-verifier-be/internal/worker/domain"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Storage handles all database operations for the worker
type Storage struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewStorage creates a new Storage instance
func NewStorage(db *sqlx.DB, logger *slog.Logger) *Storage {
	return &Storage{
		db:     db,
		logger: logger,
	}
}

// InsertActivityLog persists an activity event. A redelivered event id is
// reported as domain.ErrDuplicateEvent and leaves the existing row untouched.
func (s *Storage) InsertActivityLog(ctx context.Context, msg *domain.ActivityMessage) error {
	query := `
		INSERT INTO activity_logs (id, event_id, user_id, module_name, action, event_source, description, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (event_id) DO NOTHING
	`

	result, err := s.db.ExecContext(ctx, query,
		uuid.NewString(),
		msg.EventID,
		msg.UserID,
		msg.ModuleName,
		msg.Action,
		msg.EventSource,
		msg.Description,
		[]byte(msg.Metadata),
		msg.OccurredAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert activity log: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		s.logger.Warn("Activity event already recorded",
			slog.String("event_id", msg.EventID),
		)
		return domain.ErrDuplicateEvent
	}

	s.logger.Debug("Activity log inserted",
		slog.String("event_id", msg.EventID),
		slog.String("module", msg.ModuleName),
		slog.String("action", msg.Action),
	)

	return nil
}
