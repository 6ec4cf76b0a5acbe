package services

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"streamhive-backend/models"
)

const (
	cleanupBatchSize   = 10
	cleanupMaxAttempts = 8
	cleanupBaseBackoff = time.Minute
	cleanupMaxBackoff  = 6 * time.Hour
)

// EnqueueMediaDeletion records a remote deletion as a durable task. The tx
// argument lets callers enqueue atomically with the row they are deleting.
func EnqueueMediaDeletion(tx *gorm.DB, resourceRef, kind string) error {
	if resourceRef == "" {
		return nil
	}
	task := models.MediaDeletion{
		ResourceRef:   resourceRef,
		Kind:          kind,
		NextAttemptAt: time.Now().UTC(),
	}
	return tx.Create(&task).Error
}

// CleanupWorker drains MediaDeletion tasks against the media store,
// retrying failures with exponential backoff.
type CleanupWorker struct {
	db       *gorm.DB
	store    MediaStore
	interval time.Duration
}

func NewCleanupWorker(db *gorm.DB, store MediaStore, interval time.Duration) *CleanupWorker {
	return &CleanupWorker{db: db, store: store, interval: interval}
}

func (w *CleanupWorker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logrus.Info("media cleanup worker stopped")
			return
		case <-ticker.C:
			w.ProcessDue(ctx)
		}
	}
}

// ProcessDue handles one batch of due tasks.
func (w *CleanupWorker) ProcessDue(ctx context.Context) {
	var tasks []models.MediaDeletion
	err := w.db.
		Where("next_attempt_at <= ?", time.Now().UTC()).
		Order("created_at").
		Limit(cleanupBatchSize).
		Find(&tasks).Error
	if err != nil {
		logrus.WithError(err).Error("load media deletion tasks")
		return
	}

	for _, task := range tasks {
		if err := w.store.Remove(ctx, task.ResourceRef, task.Kind); err != nil {
			w.reschedule(task, err)
			continue
		}
		if err := w.db.Delete(&models.MediaDeletion{}, "id = ?", task.ID).Error; err != nil {
			logrus.WithError(err).Errorf("clear media deletion task %s", task.ID)
		}
	}
}

func (w *CleanupWorker) reschedule(task models.MediaDeletion, cause error) {
	attempts := task.Attempts + 1

	// The shift would overflow for large attempt counts; anything past the
	// cap-reaching exponent is the cap.
	backoff := cleanupMaxBackoff
	if attempts < 10 {
		backoff = cleanupBaseBackoff << uint(attempts)
		if backoff > cleanupMaxBackoff {
			backoff = cleanupMaxBackoff
		}
	}

	entry := logrus.WithFields(logrus.Fields{
		"resource": task.ResourceRef,
		"kind":     task.Kind,
		"attempts": attempts,
	}).WithError(cause)

	if attempts >= cleanupMaxAttempts {
		// Keep retrying at the capped interval, but make the failure loud.
		entry.Error("media deletion keeps failing")
	} else {
		entry.Warn("media deletion failed, will retry")
	}

	err := w.db.Model(&models.MediaDeletion{}).
		Where("id = ?", task.ID).
		Updates(map[string]interface{}{
			"attempts":        attempts,
			"last_error":      cause.Error(),
			"next_attempt_at": time.Now().UTC().Add(backoff),
		}).Error
	if err != nil {
		logrus.WithError(err).Errorf("reschedule media deletion task %s", task.ID)
	}
}
