package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Video struct {
	ID          string    `gorm:"type:uuid;primaryKey" json:"id"`
	Title       string    `gorm:"not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	VideoFile   string    `gorm:"type:text;not null" json:"videoFile"`
	Thumbnail   string    `gorm:"type:text" json:"thumbnail"`
	Duration    float64   `json:"duration"`
	Views       int64     `gorm:"default:0" json:"views"`
	IsPublished bool      `gorm:"default:true;index" json:"isPublished"`
	OwnerID     string    `gorm:"type:uuid;index;not null" json:"ownerId"`
	Owner       *User     `gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE" json:"owner,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (v *Video) BeforeCreate(tx *gorm.DB) error {
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	return nil
}
