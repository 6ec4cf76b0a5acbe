package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Target kinds for comments and likes. A record references exactly one
// target, identified by the (kind, id) pair.
const (
	TargetVideo   = "video"
	TargetTweet   = "tweet"
	TargetComment = "comment"
)

type Comment struct {
	ID         string    `gorm:"type:uuid;primaryKey" json:"id"`
	Content    string    `gorm:"type:text;not null" json:"content"`
	TargetKind string    `gorm:"type:varchar(10);index:idx_comment_target;not null" json:"targetKind"`
	TargetID   string    `gorm:"type:uuid;index:idx_comment_target;not null" json:"targetId"`
	OwnerID    string    `gorm:"type:uuid;index;not null" json:"ownerId"`
	Owner      *User     `gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE" json:"owner,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

func (c *Comment) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}
