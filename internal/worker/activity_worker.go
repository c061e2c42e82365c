// Package worker consumes queued activity events and writes them to
// the local activity store.
package worker

import (
	"context"
	"fmt"

	"moneymate/internal/activity"
	"moneymate/internal/amqp"
	"moneymate/internal/log"
)

// ActivityWorker stores activity events delivered over AMQP.
type ActivityWorker struct {
	store  *activity.Store
	logger *log.Logger
}

func NewActivityWorker(store *activity.Store, logger *log.Logger) *ActivityWorker {
	return &ActivityWorker{
		store:  store,
		logger: logger.WithComponent(log.ComponentWorker),
	}
}

// HandleActivityEvent validates and stores one event. A returned error
// requeues the delivery.
func (w *ActivityWorker) HandleActivityEvent(msg *amqp.ActivityEventMessage) error {
	if msg.UserID == "" || msg.ActivityType == "" {
		// Malformed events are stored nowhere; dropping beats an
		// endless requeue loop, so report success.
		w.logger.Warn("dropping malformed activity event",
			"id", msg.ID,
			log.FieldActivityType, msg.ActivityType)
		return nil
	}

	entry, err := w.store.Insert(context.Background(), msg.Entry())
	if err != nil {
		return fmt.Errorf("store activity event %s: %w", msg.ID, err)
	}

	w.logger.Info("activity event stored",
		"id", entry.ID,
		log.FieldUserID, entry.UserID,
		log.FieldActivityType, entry.Type)
	return nil
}
