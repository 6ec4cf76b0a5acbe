package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MediaDeletion is a durable task to remove a remote media resource.
// Remote deletes are never fired inline: the row survives process restarts
// and the cleanup worker retries it with backoff until it succeeds.
type MediaDeletion struct {
	ID            string    `gorm:"type:uuid;primaryKey" json:"id"`
	ResourceRef   string    `gorm:"type:text;not null" json:"resourceRef"`
	Kind          string    `gorm:"type:varchar(10);not null" json:"kind"`
	Attempts      int       `gorm:"default:0" json:"attempts"`
	LastError     string    `gorm:"type:text" json:"lastError"`
	NextAttemptAt time.Time `gorm:"index;not null" json:"nextAttemptAt"`
	CreatedAt     time.Time `json:"createdAt"`
}

func (m *MediaDeletion) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}
