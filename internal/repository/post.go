package repository

import (
	"context"
	"time"

	"piazza/internal/cache"
	"piazza/internal/models"
	"piazza/internal/observability"

	"gorm.io/gorm"
)

// ExpiryFilter selects posts by their expiration state relative to a
// reference instant supplied by the caller.
type ExpiryFilter int

const (
	// ExpiryAny returns posts regardless of expiration state.
	ExpiryAny ExpiryFilter = iota
	// ExpiryActive returns only posts whose window is still open.
	ExpiryActive
	// ExpiryExpired returns only posts whose window has closed.
	ExpiryExpired
)

// PostRepository defines the interface for post data operations
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	List(ctx context.Context, filter ExpiryFilter, now time.Time, limit, offset int) ([]*models.Post, error)
	ListByTopic(ctx context.Context, topic string, filter ExpiryFilter, now time.Time, limit, offset int) ([]*models.Post, error)
	TopByTopic(ctx context.Context, topic string, now time.Time) (*models.Post, error)
	Update(ctx context.Context, post *models.Post) error
	UpdateExpiry(ctx context.Context, post *models.Post) error
	UpdateStatus(ctx context.Context, id uint, status models.StatusList) error
	Delete(ctx context.Context, post *models.Post) error
}

// postRepository implements PostRepository
type postRepository struct {
	db      *gorm.DB
	metrics *observability.DatabaseMetrics
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db, metrics: observability.NewDatabaseMetrics()}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	defer r.metrics.TrackQuery("create", "posts")()

	err := r.db.WithContext(ctx).Create(post).Error
	if err == nil {
		cache.InvalidatePost(ctx, post.ID, topicNames(post))
	}
	return err
}

// GetByID reads through the cache. Every write path invalidates the post
// key, so a cached entry is at most PostTTL stale.
func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	var cached models.Post
	if cache.Get(ctx, cache.PostKey(id), &cached) {
		return &cached, nil
	}

	defer r.metrics.TrackQuery("get", "posts")()

	var post models.Post
	err := r.applyPostDetails(r.db.WithContext(ctx)).
		Preload("User").
		Preload("Topics").
		Preload("Comments", func(db *gorm.DB) *gorm.DB {
			return db.Order("comments.created_at ASC")
		}).
		Preload("Comments.User").
		First(&post, id).Error
	if err != nil {
		return nil, err
	}
	cache.Set(ctx, cache.PostKey(id), &post, cache.PostTTL)
	return &post, nil
}

func (r *postRepository) List(ctx context.Context, filter ExpiryFilter, now time.Time, limit, offset int) ([]*models.Post, error) {
	defer r.metrics.TrackQuery("list", "posts")()

	var posts []*models.Post
	base := r.applyPostDetails(r.db.WithContext(ctx)).
		Preload("User").
		Preload("Topics").
		Preload("Comments", func(db *gorm.DB) *gorm.DB {
			return db.Order("comments.created_at ASC")
		}).
		Preload("Comments.User")
	err := r.applyExpiryFilter(base, filter, now).
		Order("posts.created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *postRepository) ListByTopic(ctx context.Context, topic string, filter ExpiryFilter, now time.Time, limit, offset int) ([]*models.Post, error) {
	defer r.metrics.TrackQuery("list_by_topic", "posts")()

	var posts []*models.Post
	base := r.applyPostDetails(r.db.WithContext(ctx)).
		Preload("User").
		Preload("Topics").
		Preload("Comments", func(db *gorm.DB) *gorm.DB {
			return db.Order("comments.created_at ASC")
		}).
		Preload("Comments.User").
		Where("posts.id IN (SELECT post_id FROM topics WHERE LOWER(name) = LOWER(?))", topic)
	err := r.applyExpiryFilter(base, filter, now).
		Order("posts.created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	return posts, nil
}

// TopByTopic returns the active post with the highest interest (likes plus
// dislikes) in the topic. Ties go to the earliest upload. The result is
// cached briefly under the topic's top-post key; post writes invalidate it.
func (r *postRepository) TopByTopic(ctx context.Context, topic string, now time.Time) (*models.Post, error) {
	var cached models.Post
	if cache.Get(ctx, cache.TopPostKey(topic), &cached) {
		return &cached, nil
	}

	defer r.metrics.TrackQuery("top_by_topic", "posts")()

	var post models.Post
	base := r.applyPostDetails(r.db.WithContext(ctx)).
		Preload("User").
		Preload("Topics").
		Preload("Comments", func(db *gorm.DB) *gorm.DB {
			return db.Order("comments.created_at ASC")
		}).
		Preload("Comments.User").
		Where("posts.id IN (SELECT post_id FROM topics WHERE LOWER(name) = LOWER(?))", topic)
	err := r.applyExpiryFilter(base, ExpiryActive, now).
		Order(gorm.Expr("(like_count + dislike_count) DESC, posts.upload_time ASC")).
		First(&post).Error
	if err != nil {
		return nil, err
	}
	cache.Set(ctx, cache.TopPostKey(topic), &post, cache.TopicTTL)
	return &post, nil
}

// applyExpiryFilter narrows the query by expiration state at the given
// instant. A non-positive expiry window counts as expired regardless of the
// stored expiry time.
func (r *postRepository) applyExpiryFilter(db *gorm.DB, filter ExpiryFilter, now time.Time) *gorm.DB {
	switch filter {
	case ExpiryActive:
		return db.Where("posts.expiry_minutes > 0 AND posts.expiry_time > ?", now)
	case ExpiryExpired:
		return db.Where("posts.expiry_minutes <= 0 OR posts.expiry_time <= ?", now)
	default:
		return db
	}
}

// applyPostDetails adds subqueries to fetch interaction counts in a single query.
// likes and dislikes are never stored as columns; the ledger is the only
// source of truth.
func (r *postRepository) applyPostDetails(db *gorm.DB) *gorm.DB {
	return db.Select("posts.*, " +
		"(SELECT COUNT(*) FROM interactions WHERE interactions.post_id = posts.id AND interactions.type = 'like' AND interactions.deleted_at IS NULL) as like_count, " +
		"(SELECT COUNT(*) FROM interactions WHERE interactions.post_id = posts.id AND interactions.type = 'dislike' AND interactions.deleted_at IS NULL) as dislike_count")
}

func (r *postRepository) Update(ctx context.Context, post *models.Post) error {
	defer r.metrics.TrackQuery("update", "posts")()

	if err := r.db.WithContext(ctx).Omit("Topics", "Comments", "User").Save(post).Error; err != nil {
		return err
	}
	cache.InvalidatePost(ctx, post.ID, topicNames(post))
	return nil
}

// UpdateExpiry persists only the expiry window and derived fields so a patch
// cannot clobber concurrent writes to other columns.
func (r *postRepository) UpdateExpiry(ctx context.Context, post *models.Post) error {
	defer r.metrics.TrackQuery("update_expiry", "posts")()

	err := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("id = ?", post.ID).
		Updates(map[string]interface{}{
			"expiry_minutes": post.ExpiryMinutes,
			"expiry_time":    post.ExpiryTime,
		}).Error
	if err != nil {
		return err
	}
	cache.InvalidatePost(ctx, post.ID, topicNames(post))
	return nil
}

func (r *postRepository) UpdateStatus(ctx context.Context, id uint, status models.StatusList) error {
	defer r.metrics.TrackQuery("update_status", "posts")()

	err := r.db.WithContext(ctx).
		Model(&models.Post{ID: id}).
		Update("status", status).Error
	if err == nil {
		cache.Invalidate(ctx, cache.PostKey(id))
	}
	return err
}

// Delete removes the post together with its interactions, comments and
// topic rows in one transaction.
func (r *postRepository) Delete(ctx context.Context, post *models.Post) error {
	defer r.metrics.TrackQuery("delete", "posts")()

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("post_id = ?", post.ID).Delete(&models.Interaction{}).Error; err != nil {
			return err
		}
		if err := tx.Unscoped().Where("post_id = ?", post.ID).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", post.ID).Delete(&models.Topic{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Post{}, post.ID).Error
	})
	if err != nil {
		return err
	}
	cache.InvalidatePost(ctx, post.ID, topicNames(post))
	return nil
}

func topicNames(post *models.Post) []string {
	names := make([]string, 0, len(post.Topics))
	for _, t := range post.Topics {
		names = append(names, t.Name)
	}
	return names
}
