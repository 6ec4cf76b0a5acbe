package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Playlist struct {
	ID          string    `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string    `gorm:"not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	OwnerID     string    `gorm:"type:uuid;index;not null" json:"ownerId"`
	Owner       *User     `gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE" json:"owner,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (p *Playlist) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// PlaylistVideo is an ordered membership row. Position is append-only:
// insertion order is display order. The composite unique index rejects
// duplicate members.
type PlaylistVideo struct {
	ID         string    `gorm:"type:uuid;primaryKey" json:"id"`
	PlaylistID string    `gorm:"type:uuid;uniqueIndex:idx_playlist_member;not null" json:"playlistId"`
	VideoID    string    `gorm:"type:uuid;uniqueIndex:idx_playlist_member;not null" json:"videoId"`
	Position   int       `gorm:"not null" json:"position"`
	CreatedAt  time.Time `json:"createdAt"`
}

func (pv *PlaylistVideo) BeforeCreate(tx *gorm.DB) error {
	if pv.ID == "" {
		pv.ID = uuid.NewString()
	}
	return nil
}
