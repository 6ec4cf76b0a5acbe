package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Like is a relation record: membership of (likedBy, target) in the "like"
// relation. The composite unique index makes the pair uniqueness a database
// invariant, so concurrent toggles cannot produce duplicate rows.
type Like struct {
	ID         string    `gorm:"type:uuid;primaryKey" json:"id"`
	LikedByID  string    `gorm:"type:uuid;uniqueIndex:idx_like_once;not null" json:"likedById"`
	TargetKind string    `gorm:"type:varchar(10);uniqueIndex:idx_like_once;not null" json:"targetKind"`
	TargetID   string    `gorm:"type:uuid;uniqueIndex:idx_like_once;not null" json:"targetId"`
	CreatedAt  time.Time `json:"createdAt"`
}

func (l *Like) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	return nil
}
