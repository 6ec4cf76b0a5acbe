package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Subscription is a relation record between a subscriber and a channel
// (both users). subscriber != channel is enforced at the handler level;
// pair uniqueness is enforced by the composite unique index.
type Subscription struct {
	ID           string    `gorm:"type:uuid;primaryKey" json:"id"`
	SubscriberID string    `gorm:"type:uuid;uniqueIndex:idx_sub_once;not null" json:"subscriberId"`
	ChannelID    string    `gorm:"type:uuid;uniqueIndex:idx_sub_once;not null" json:"channelId"`
	Subscriber   *User     `gorm:"foreignKey:SubscriberID;constraint:OnDelete:CASCADE" json:"subscriber,omitempty"`
	Channel      *User     `gorm:"foreignKey:ChannelID;constraint:OnDelete:CASCADE" json:"channel,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

func (s *Subscription) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}
