package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MaxTweetLength is counted in runes, not bytes.
const MaxTweetLength = 280

type Tweet struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	Content   string    `gorm:"type:varchar(280);not null" json:"content"`
	OwnerID   string    `gorm:"type:uuid;index;not null" json:"ownerId"`
	Owner     *User     `gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE" json:"owner,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (t *Tweet) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}
