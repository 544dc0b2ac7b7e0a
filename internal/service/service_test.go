package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"piazza/internal/models"
	"piazza/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// errNotFoundStub stands in for a missing row; the engine matches it with
// errors.Is against gorm.ErrRecordNotFound.
var errNotFoundStub = gorm.ErrRecordNotFound

func assertAppErrorCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected *models.AppError, got %T: %v", err, err)
	assert.Equal(t, code, appErr.Code)
}

func assertValidationError(t *testing.T, err error) {
	t.Helper()
	assertAppErrorCode(t, err, "VALIDATION_ERROR")
}

func assertNotFoundError(t *testing.T, err error) {
	t.Helper()
	assertAppErrorCode(t, err, "NOT_FOUND")
}

func assertForbiddenError(t *testing.T, err error) {
	t.Helper()
	assertAppErrorCode(t, err, "FORBIDDEN")
}

func assertExpiredError(t *testing.T, err error) {
	t.Helper()
	assertAppErrorCode(t, err, "EXPIRED")
}

func assertUnauthorizedError(t *testing.T, err error) {
	t.Helper()
	assertAppErrorCode(t, err, "UNAUTHORIZED")
}

// postRepoStub is a stub for repository.PostRepository.
type postRepoStub struct {
	createFn       func(context.Context, *models.Post) error
	getByIDFn      func(context.Context, uint) (*models.Post, error)
	listFn         func(context.Context, repository.ExpiryFilter, time.Time, int, int) ([]*models.Post, error)
	listByTopicFn  func(context.Context, string, repository.ExpiryFilter, time.Time, int, int) ([]*models.Post, error)
	topByTopicFn   func(context.Context, string, time.Time) (*models.Post, error)
	updateFn       func(context.Context, *models.Post) error
	updateExpiryFn func(context.Context, *models.Post) error
	updateStatusFn func(context.Context, uint, models.StatusList) error
	deleteFn       func(context.Context, *models.Post) error
}

func (s *postRepoStub) Create(ctx context.Context, post *models.Post) error {
	return s.createFn(ctx, post)
}
func (s *postRepoStub) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	return s.getByIDFn(ctx, id)
}
func (s *postRepoStub) List(ctx context.Context, filter repository.ExpiryFilter, now time.Time, limit, offset int) ([]*models.Post, error) {
	return s.listFn(ctx, filter, now, limit, offset)
}
func (s *postRepoStub) ListByTopic(ctx context.Context, topic string, filter repository.ExpiryFilter, now time.Time, limit, offset int) ([]*models.Post, error) {
	return s.listByTopicFn(ctx, topic, filter, now, limit, offset)
}
func (s *postRepoStub) TopByTopic(ctx context.Context, topic string, now time.Time) (*models.Post, error) {
	return s.topByTopicFn(ctx, topic, now)
}
func (s *postRepoStub) Update(ctx context.Context, post *models.Post) error {
	return s.updateFn(ctx, post)
}
func (s *postRepoStub) UpdateExpiry(ctx context.Context, post *models.Post) error {
	return s.updateExpiryFn(ctx, post)
}
func (s *postRepoStub) UpdateStatus(ctx context.Context, id uint, status models.StatusList) error {
	return s.updateStatusFn(ctx, id, status)
}
func (s *postRepoStub) Delete(ctx context.Context, post *models.Post) error {
	return s.deleteFn(ctx, post)
}

func noopPostRepo() *postRepoStub {
	return &postRepoStub{
		createFn: func(_ context.Context, p *models.Post) error {
			p.ID = 1
			return nil
		},
		getByIDFn: func(_ context.Context, id uint) (*models.Post, error) {
			return &models.Post{ID: id, Status: models.StatusList{}}, nil
		},
		listFn: func(_ context.Context, _ repository.ExpiryFilter, _ time.Time, _, _ int) ([]*models.Post, error) {
			return nil, nil
		},
		listByTopicFn: func(_ context.Context, _ string, _ repository.ExpiryFilter, _ time.Time, _, _ int) ([]*models.Post, error) {
			return nil, nil
		},
		topByTopicFn: func(_ context.Context, _ string, _ time.Time) (*models.Post, error) {
			return &models.Post{ID: 1}, nil
		},
		updateFn:       func(_ context.Context, _ *models.Post) error { return nil },
		updateExpiryFn: func(_ context.Context, _ *models.Post) error { return nil },
		updateStatusFn: func(_ context.Context, _ uint, _ models.StatusList) error { return nil },
		deleteFn:       func(_ context.Context, _ *models.Post) error { return nil },
	}
}

// interactionRepoStub is a stub for repository.InteractionRepository.
type interactionRepoStub struct {
	createFn           func(context.Context, *models.Interaction) error
	getByIDFn          func(context.Context, uint) (*models.Interaction, error)
	getByPostAndUserFn func(context.Context, uint, uint) (*models.Interaction, error)
	updateTypeFn       func(context.Context, uint, models.InteractionType) error
	deleteFn           func(context.Context, *models.Interaction) error
	countByTypeFn      func(context.Context, uint, models.InteractionType) (int64, error)
}

func (s *interactionRepoStub) Create(ctx context.Context, interaction *models.Interaction) error {
	return s.createFn(ctx, interaction)
}
func (s *interactionRepoStub) GetByID(ctx context.Context, id uint) (*models.Interaction, error) {
	return s.getByIDFn(ctx, id)
}
func (s *interactionRepoStub) GetByPostAndUser(ctx context.Context, postID, userID uint) (*models.Interaction, error) {
	return s.getByPostAndUserFn(ctx, postID, userID)
}
func (s *interactionRepoStub) UpdateType(ctx context.Context, id uint, interactionType models.InteractionType) error {
	return s.updateTypeFn(ctx, id, interactionType)
}
func (s *interactionRepoStub) Delete(ctx context.Context, interaction *models.Interaction) error {
	return s.deleteFn(ctx, interaction)
}
func (s *interactionRepoStub) CountByType(ctx context.Context, postID uint, interactionType models.InteractionType) (int64, error) {
	return s.countByTypeFn(ctx, postID, interactionType)
}

func noopInteractionRepo() *interactionRepoStub {
	return &interactionRepoStub{
		createFn: func(_ context.Context, i *models.Interaction) error {
			i.ID = 1
			return nil
		},
		getByIDFn: func(_ context.Context, id uint) (*models.Interaction, error) {
			return &models.Interaction{ID: id}, nil
		},
		getByPostAndUserFn: func(_ context.Context, _, _ uint) (*models.Interaction, error) {
			return nil, errNotFoundStub
		},
		updateTypeFn:  func(_ context.Context, _ uint, _ models.InteractionType) error { return nil },
		deleteFn:      func(_ context.Context, _ *models.Interaction) error { return nil },
		countByTypeFn: func(_ context.Context, _ uint, _ models.InteractionType) (int64, error) { return 0, nil },
	}
}

// commentRepoStub is a stub for repository.CommentRepository.
type commentRepoStub struct {
	createFn     func(context.Context, *models.Comment) error
	getByIDFn    func(context.Context, uint) (*models.Comment, error)
	listByPostFn func(context.Context, uint, int, int) ([]*models.Comment, error)
	deleteFn     func(context.Context, *models.Comment) error
}

func (s *commentRepoStub) Create(ctx context.Context, comment *models.Comment) error {
	return s.createFn(ctx, comment)
}
func (s *commentRepoStub) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	return s.getByIDFn(ctx, id)
}
func (s *commentRepoStub) ListByPost(ctx context.Context, postID uint, limit, offset int) ([]*models.Comment, error) {
	return s.listByPostFn(ctx, postID, limit, offset)
}
func (s *commentRepoStub) Delete(ctx context.Context, comment *models.Comment) error {
	return s.deleteFn(ctx, comment)
}

func noopCommentRepo() *commentRepoStub {
	return &commentRepoStub{
		createFn: func(_ context.Context, c *models.Comment) error {
			c.ID = 1
			return nil
		},
		getByIDFn: func(_ context.Context, id uint) (*models.Comment, error) {
			return &models.Comment{ID: id}, nil
		},
		listByPostFn: func(_ context.Context, _ uint, _, _ int) ([]*models.Comment, error) { return nil, nil },
		deleteFn:     func(_ context.Context, _ *models.Comment) error { return nil },
	}
}

// userRepoStub is a stub for repository.UserRepository.
type userRepoStub struct {
	createFn        func(context.Context, *models.User) error
	getByIDFn       func(context.Context, uint) (*models.User, error)
	getByUsernameFn func(context.Context, string) (*models.User, error)
	getByEmailFn    func(context.Context, string) (*models.User, error)
	deleteFn        func(context.Context, uint) error
}

func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	return s.createFn(ctx, user)
}
func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getByUsernameFn(ctx, username)
}
func (s *userRepoStub) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getByEmailFn(ctx, email)
}
func (s *userRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}

func noopUserRepo() *userRepoStub {
	return &userRepoStub{
		createFn: func(_ context.Context, u *models.User) error {
			u.ID = 1
			return nil
		},
		getByIDFn: func(_ context.Context, id uint) (*models.User, error) {
			return &models.User{ID: id}, nil
		},
		getByUsernameFn: func(_ context.Context, _ string) (*models.User, error) {
			return nil, errNotFoundStub
		},
		getByEmailFn: func(_ context.Context, _ string) (*models.User, error) {
			return nil, errNotFoundStub
		},
		deleteFn: func(_ context.Context, _ uint) error { return nil },
	}
}
