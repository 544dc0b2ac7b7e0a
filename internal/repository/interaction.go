package repository

import (
	"context"

	"piazza/internal/cache"
	"piazza/internal/models"

	"gorm.io/gorm"
)

// InteractionRepository defines the interface for interaction data operations
type InteractionRepository interface {
	Create(ctx context.Context, interaction *models.Interaction) error
	GetByID(ctx context.Context, id uint) (*models.Interaction, error)
	GetByPostAndUser(ctx context.Context, postID, userID uint) (*models.Interaction, error)
	UpdateType(ctx context.Context, id uint, interactionType models.InteractionType) error
	Delete(ctx context.Context, interaction *models.Interaction) error
	CountByType(ctx context.Context, postID uint, interactionType models.InteractionType) (int64, error)
}

// interactionRepository implements InteractionRepository
type interactionRepository struct {
	db *gorm.DB
}

// NewInteractionRepository creates a new interaction repository
func NewInteractionRepository(db *gorm.DB) InteractionRepository {
	return &interactionRepository{db: db}
}

func (r *interactionRepository) Create(ctx context.Context, interaction *models.Interaction) error {
	err := r.db.WithContext(ctx).Create(interaction).Error
	if err == nil {
		cache.Invalidate(ctx, cache.PostKey(interaction.PostID))
	}
	return err
}

func (r *interactionRepository) GetByID(ctx context.Context, id uint) (*models.Interaction, error) {
	var interaction models.Interaction
	if err := r.db.WithContext(ctx).Preload("User").First(&interaction, id).Error; err != nil {
		return nil, err
	}
	return &interaction, nil
}

func (r *interactionRepository) GetByPostAndUser(ctx context.Context, postID, userID uint) (*models.Interaction, error) {
	var interaction models.Interaction
	err := r.db.WithContext(ctx).
		Where("post_id = ? AND user_id = ?", postID, userID).
		First(&interaction).Error
	if err != nil {
		return nil, err
	}
	return &interaction, nil
}

func (r *interactionRepository) UpdateType(ctx context.Context, id uint, interactionType models.InteractionType) error {
	var interaction models.Interaction
	if err := r.db.WithContext(ctx).First(&interaction, id).Error; err != nil {
		return err
	}
	err := r.db.WithContext(ctx).
		Model(&interaction).
		Update("type", interactionType).Error
	if err == nil {
		cache.Invalidate(ctx, cache.PostKey(interaction.PostID))
	}
	return err
}

func (r *interactionRepository) Delete(ctx context.Context, interaction *models.Interaction) error {
	// Hard delete so the (post_id, user_id) slot is freed for a future vote
	err := r.db.WithContext(ctx).Unscoped().Delete(interaction).Error
	if err == nil {
		cache.Invalidate(ctx, cache.PostKey(interaction.PostID))
	}
	return err
}

func (r *interactionRepository) CountByType(ctx context.Context, postID uint, interactionType models.InteractionType) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Interaction{}).
		Where("post_id = ? AND type = ?", postID, interactionType).
		Count(&count).Error
	return count, err
}
