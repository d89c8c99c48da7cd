package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ModerationEvent is one terminal outcome of an approve or decline call
type ModerationEvent struct {
	ID          uuid.UUID `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
	RecipeID    int       `gorm:"index;not null" json:"recipe_id"`
	Action      string    `gorm:"size:16;not null" json:"action"` // approve, decline
	AdminUserID int       `gorm:"index;not null" json:"admin_user_id"`
	Outcome     string    `gorm:"size:32;not null" json:"outcome"` // success, noop, not_found, ...
	Message     string    `gorm:"type:text" json:"message,omitempty"`
}

// TableName returns the table name for the ModerationEvent model
func (ModerationEvent) TableName() string {
	return "moderation_events"
}

// BeforeCreate assigns an id so sqlite and postgres behave the same
func (e *ModerationEvent) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

// ModerationEventFilters narrows an audit listing
type ModerationEventFilters struct {
	RecipeID    int    `form:"recipe_id"`
	AdminUserID int    `form:"admin_user_id"`
	Action      string `form:"action"`
	Limit       int    `form:"limit"`
}
