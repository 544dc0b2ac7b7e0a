package service

import (
	"context"
	"errors"
	"strings"

	"piazza/internal/clock"
	"piazza/internal/models"
	"piazza/internal/observability"
	"piazza/internal/repository"

	"gorm.io/gorm"
)

// PostService is the post lifecycle and interaction engine. Every mutating
// operation serializes on the target post; expiration is evaluated lazily
// against the injected clock on every access.
type PostService struct {
	postRepo        repository.PostRepository
	interactionRepo repository.InteractionRepository
	commentRepo     repository.CommentRepository
	clock           clock.Clock
	locks           *postLocks
}

type CreatePostInput struct {
	UserID        uint
	Title         string
	Body          string
	Topics        []string
	ExpiryMinutes int
}

type UpdatePostInput struct {
	UserID        uint
	PostID        uint
	Title         string
	Body          string
	ExpiryMinutes *int
}

type ListByTopicInput struct {
	Topic       string
	ExpiredOnly bool
	Limit       int
	Offset      int
}

// InteractionOutcome distinguishes first-time vote creation from a toggle
// or re-assert so transport can answer 201 vs 200.
type InteractionOutcome struct {
	Post        *models.Post
	Interaction *models.Interaction
	Created     bool
}

func NewPostService(
	postRepo repository.PostRepository,
	interactionRepo repository.InteractionRepository,
	commentRepo repository.CommentRepository,
	clk clock.Clock,
) *PostService {
	if clk == nil {
		clk = clock.System{}
	}
	return &PostService{
		postRepo:        postRepo,
		interactionRepo: interactionRepo,
		commentRepo:     commentRepo,
		clock:           clk,
		locks:           newPostLocks(),
	}
}

const (
	maxTitleLen = 300
	maxBodyLen  = 50000
)

func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	if in.Title == "" {
		return nil, models.NewValidationError("Title is required")
	}
	if len(in.Title) > maxTitleLen {
		return nil, models.NewValidationError("Title too long (max 300 characters)")
	}
	if in.Body == "" {
		return nil, models.NewValidationError("Body is required")
	}
	if len(in.Body) > maxBodyLen {
		return nil, models.NewValidationError("Body too long (max 50000 characters)")
	}

	var topics []models.Topic
	for _, name := range in.Topics {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		topics = append(topics, models.Topic{Name: name})
	}
	if len(topics) == 0 {
		return nil, models.NewValidationError("At least one topic is required")
	}

	now := s.clock.Now()
	post := &models.Post{
		UserID:        in.UserID,
		Title:         in.Title,
		Body:          in.Body,
		Topics:        topics,
		UploadTime:    now,
		ExpiryMinutes: in.ExpiryMinutes,
		ExpiryTime:    models.ExpiryTimeFor(now, in.ExpiryMinutes),
		Status:        models.StatusList{},
	}
	// A non-positive window creates the post already expired; it is only
	// reachable through expired listings.
	if post.IsExpiredAt(now) {
		post.MarkExpired()
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, models.NewInternalError(err)
	}

	for _, t := range topics {
		observability.PostsCreated.WithLabelValues(strings.ToLower(t.Name)).Inc()
	}

	return s.getPost(ctx, post.ID)
}

func (s *PostService) GetPost(ctx context.Context, id uint) (*models.Post, error) {
	return s.getPost(ctx, id)
}

func (s *PostService) ListPosts(ctx context.Context, expiredOnly bool, limit, offset int) ([]*models.Post, error) {
	filter := repository.ExpiryActive
	if expiredOnly {
		filter = repository.ExpiryExpired
	}
	posts, err := s.postRepo.List(ctx, filter, s.clock.Now(), limit, offset)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	s.reflectExpiry(posts)
	return posts, nil
}

func (s *PostService) ListByTopic(ctx context.Context, in ListByTopicInput) ([]*models.Post, error) {
	if strings.TrimSpace(in.Topic) == "" {
		return nil, models.NewValidationError("Topic is required")
	}
	filter := repository.ExpiryActive
	if in.ExpiredOnly {
		filter = repository.ExpiryExpired
	}
	posts, err := s.postRepo.ListByTopic(ctx, in.Topic, filter, s.clock.Now(), in.Limit, in.Offset)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	s.reflectExpiry(posts)
	return posts, nil
}

// TopPost returns the active post in the topic with the most interest
// (likes plus dislikes), ties broken by the earliest post.
func (s *PostService) TopPost(ctx context.Context, topic string) (*models.Post, error) {
	if strings.TrimSpace(topic) == "" {
		return nil, models.NewValidationError("Topic is required")
	}
	post, err := s.postRepo.TopByTopic(ctx, topic, s.clock.Now())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Active post in topic", topic)
		}
		return nil, models.NewInternalError(err)
	}
	return post, nil
}

// UpdatePost applies an owner-only patch. A new expiry window is recomputed
// from the ORIGINAL upload time; patching it so the window has already
// closed expires the post immediately and persists the label.
func (s *PostService) UpdatePost(ctx context.Context, in UpdatePostInput) (*models.Post, error) {
	unlock := s.locks.Lock(in.PostID)
	defer unlock()

	post, err := s.loadPost(ctx, in.PostID)
	if err != nil {
		return nil, err
	}
	if post.UserID != in.UserID {
		return nil, models.NewForbiddenError("You can only update your own posts")
	}

	if in.Title != "" {
		if len(in.Title) > maxTitleLen {
			return nil, models.NewValidationError("Title too long (max 300 characters)")
		}
		post.Title = in.Title
	}
	if in.Body != "" {
		if len(in.Body) > maxBodyLen {
			return nil, models.NewValidationError("Body too long (max 50000 characters)")
		}
		post.Body = in.Body
	}

	if in.ExpiryMinutes != nil {
		post.ExpiryMinutes = *in.ExpiryMinutes
		post.ExpiryTime = models.ExpiryTimeFor(post.UploadTime, post.ExpiryMinutes)
		if post.IsExpiredAt(s.clock.Now()) {
			post.MarkExpired()
		} else {
			post.ClearExpired()
		}
	}

	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, models.NewInternalError(err)
	}
	return s.getPost(ctx, post.ID)
}

func (s *PostService) DeletePost(ctx context.Context, postID, userID uint) error {
	unlock := s.locks.Lock(postID)
	defer unlock()

	post, err := s.loadPost(ctx, postID)
	if err != nil {
		return err
	}
	if post.UserID != userID {
		return models.NewForbiddenError("You can only delete your own posts")
	}
	if err := s.postRepo.Delete(ctx, post); err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// RecordInteraction runs the per-(post,user) vote state machine: absent
// creates, same type re-asserts as a counted no-op, opposite type flips in
// place. The owner can never vote on their own post, and expired posts
// accept no new votes.
func (s *PostService) RecordInteraction(ctx context.Context, postID, userID uint, interactionType models.InteractionType) (*InteractionOutcome, error) {
	if !interactionType.IsValid() {
		return nil, models.NewValidationError("Interaction type must be 'like' or 'dislike'")
	}

	unlock := s.locks.Lock(postID)
	defer unlock()

	post, err := s.loadPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post.UserID == userID {
		return nil, models.NewOwnPostError()
	}
	if expired, expErr := s.rejectIfExpired(ctx, post, "interaction"); expired {
		return nil, expErr
	}

	outcome := "created"
	created := false

	existing, err := s.interactionRepo.GetByPostAndUser(ctx, postID, userID)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		existing = &models.Interaction{PostID: postID, UserID: userID, Type: interactionType}
		if err := s.interactionRepo.Create(ctx, existing); err != nil {
			return nil, models.NewInternalError(err)
		}
		created = true
	case err != nil:
		return nil, models.NewInternalError(err)
	case existing.Type == interactionType:
		// Idempotent re-assert: counts unchanged, still a success
		outcome = "unchanged"
	default:
		if err := s.interactionRepo.UpdateType(ctx, existing.ID, interactionType); err != nil {
			return nil, models.NewInternalError(err)
		}
		existing.Type = interactionType
		outcome = "toggled"
	}

	observability.InteractionsRecorded.WithLabelValues(string(interactionType), outcome).Inc()

	fresh, err := s.getPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	return &InteractionOutcome{Post: fresh, Interaction: existing, Created: created}, nil
}

// DeleteInteraction removes the actor's own vote. Cleanup stays permitted
// after the post expires; only creation is blocked.
func (s *PostService) DeleteInteraction(ctx context.Context, postID, interactionID, userID uint) (*models.Post, error) {
	unlock := s.locks.Lock(postID)
	defer unlock()

	if _, err := s.loadPost(ctx, postID); err != nil {
		return nil, err
	}

	interaction, err := s.interactionRepo.GetByID(ctx, interactionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Interaction", interactionID)
		}
		return nil, models.NewInternalError(err)
	}
	if interaction.PostID != postID || interaction.UserID != userID {
		return nil, models.NewNotFoundError("Interaction", interactionID)
	}

	if err := s.interactionRepo.Delete(ctx, interaction); err != nil {
		return nil, models.NewInternalError(err)
	}
	return s.getPost(ctx, postID)
}

// AddComment appends to the post's thread. Unlike votes, the owner may
// comment on their own post. Expiration is checked before the payload so an
// expired post always answers with the expiry rejection.
func (s *PostService) AddComment(ctx context.Context, postID, userID uint, body string) (*models.Comment, error) {
	unlock := s.locks.Lock(postID)
	defer unlock()

	post, err := s.loadPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	if expired, expErr := s.rejectIfExpired(ctx, post, "comment"); expired {
		return nil, expErr
	}
	if strings.TrimSpace(body) == "" {
		return nil, models.NewValidationError("Comment body is required")
	}

	comment := &models.Comment{PostID: postID, UserID: userID, Body: body}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, models.NewInternalError(err)
	}
	observability.CommentsCreated.Inc()

	return s.commentRepo.GetByID(ctx, comment.ID)
}

func (s *PostService) ListComments(ctx context.Context, postID uint, limit, offset int) ([]*models.Comment, error) {
	if _, err := s.loadPost(ctx, postID); err != nil {
		return nil, err
	}
	comments, err := s.commentRepo.ListByPost(ctx, postID, limit, offset)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return comments, nil
}

// DeleteComment removes the actor's own comment. Allowed after expiration.
func (s *PostService) DeleteComment(ctx context.Context, postID, commentID, userID uint) error {
	unlock := s.locks.Lock(postID)
	defer unlock()

	if _, err := s.loadPost(ctx, postID); err != nil {
		return err
	}

	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewNotFoundError("Comment", commentID)
		}
		return models.NewInternalError(err)
	}
	if comment.PostID != postID {
		return models.NewNotFoundError("Comment", commentID)
	}
	if comment.UserID != userID {
		return models.NewForbiddenError("You can only delete your own comments")
	}

	if err := s.commentRepo.Delete(ctx, comment); err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// loadPost fetches the post, mapping unknown ids to NotFoundError.
func (s *PostService) loadPost(ctx context.Context, id uint) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", id)
		}
		return nil, models.NewInternalError(err)
	}
	return post, nil
}

// getPost is loadPost plus a fresh in-memory expiry evaluation so responses
// never show a stale status label.
func (s *PostService) getPost(ctx context.Context, id uint) (*models.Post, error) {
	post, err := s.loadPost(ctx, id)
	if err != nil {
		return nil, err
	}
	s.reflectExpiry([]*models.Post{post})
	return post, nil
}

// rejectIfExpired is the lazy expiration write-through: an attempted write
// against an expired post persists the Expired label before the rejection
// is returned.
func (s *PostService) rejectIfExpired(ctx context.Context, post *models.Post, operation string) (bool, error) {
	if !post.IsExpiredAt(s.clock.Now()) {
		return false, nil
	}
	observability.ExpiredRejections.WithLabelValues(operation).Inc()
	if len(post.Status) == 0 {
		post.MarkExpired()
		if err := s.postRepo.UpdateStatus(ctx, post.ID, post.Status); err != nil {
			return true, models.NewInternalError(err)
		}
	}
	return true, models.NewExpiredError()
}

// reflectExpiry makes the status label on outgoing posts agree with the
// live expiry evaluation, without a write.
func (s *PostService) reflectExpiry(posts []*models.Post) {
	now := s.clock.Now()
	for _, post := range posts {
		if post.IsExpiredAt(now) {
			post.MarkExpired()
		} else {
			post.ClearExpired()
		}
		if post.Status == nil {
			post.Status = models.StatusList{}
		}
	}
}
