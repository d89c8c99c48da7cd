package service

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/pageza/recipehub/backend/internal/models"
)

const (
	defaultAuditLimit = 50
	maxAuditLimit     = 500
)

// AuditService persists moderation events
type AuditService struct {
	db *gorm.DB
}

// NewAuditService creates a new AuditService
func NewAuditService(db *gorm.DB) *AuditService {
	return &AuditService{db: db}
}

// Record appends an event
func (s *AuditService) Record(ctx context.Context, event *models.ModerationEvent) error {
	if err := s.db.WithContext(ctx).Create(event).Error; err != nil {
		return fmt.Errorf("failed to record moderation event: %w", err)
	}
	return nil
}

// List returns the newest events first
func (s *AuditService) List(ctx context.Context, filters models.ModerationEventFilters) ([]models.ModerationEvent, error) {
	limit := filters.Limit
	if limit <= 0 {
		limit = defaultAuditLimit
	}
	if limit > maxAuditLimit {
		limit = maxAuditLimit
	}

	query := s.db.WithContext(ctx).Model(&models.ModerationEvent{})
	if filters.RecipeID != 0 {
		query = query.Where("recipe_id = ?", filters.RecipeID)
	}
	if filters.AdminUserID != 0 {
		query = query.Where("admin_user_id = ?", filters.AdminUserID)
	}
	if filters.Action != "" {
		query = query.Where("action = ?", filters.Action)
	}

	var events []models.ModerationEvent
	if err := query.Order("created_at DESC").Limit(limit).Find(&events).Error; err != nil {
		return nil, fmt.Errorf("failed to list moderation events: %w", err)
	}
	return events, nil
}
