package activity

import (
	"context"
	"time"

	"github.com/google/uuid"

	"moneymate/internal/log"
)

// Publisher hands an entry to a message broker instead of writing it
// locally; a worker consumes and stores it.
type Publisher interface {
	PublishActivityEvent(ctx context.Context, e Entry) error
}

// Recorder is the one entry point the UI uses to log activity. When a
// publisher is configured entries go through the broker, otherwise
// straight to the store. Recording is best effort: failures are
// logged and swallowed so they never fail the user's action.
type Recorder struct {
	store     *Store
	publisher Publisher
	logger    *log.Logger
}

func NewRecorder(store *Store, publisher Publisher, logger *log.Logger) *Recorder {
	return &Recorder{
		store:     store,
		publisher: publisher,
		logger:    logger.WithComponent(log.ComponentActivity),
	}
}

// Record logs one user action.
func (r *Recorder) Record(ctx context.Context, userID, activityType, description string) {
	entry := Entry{
		ID:          uuid.NewString(),
		UserID:      userID,
		Type:        activityType,
		Description: description,
		CreatedAt:   time.Now().UTC(),
	}

	if r.publisher != nil {
		err := r.publisher.PublishActivityEvent(ctx, entry)
		if err == nil {
			return
		}
		r.logger.Warn("activity publish failed, storing directly",
			log.FieldActivityType, activityType,
			log.FieldError, err.Error(),
		)
	}

	if r.store == nil {
		return
	}
	if _, err := r.store.Insert(ctx, entry); err != nil {
		r.logger.Error("activity insert failed",
			log.FieldActivityType, activityType,
			log.FieldError, err.Error(),
		)
	}
}

// Recent returns the user's newest entries.
func (r *Recorder) Recent(ctx context.Context, userID string, limit int) ([]Entry, error) {
	if r.store == nil {
		return nil, nil
	}
	return r.store.ListRecent(ctx, userID, limit)
}

// Count returns the user's total entry count.
func (r *Recorder) Count(ctx context.Context, userID string) (int64, error) {
	if r.store == nil {
		return 0, nil
	}
	return r.store.Count(ctx, userID)
}
