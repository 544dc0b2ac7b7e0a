package server

import (
	"piazza/internal/models"
	"piazza/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreatePost handles POST /api/posts. Topics arrive under either "topics"
// or the legacy "topic" key. An omitted expiry falls back to the configured
// default; an explicit zero or negative window creates the post already
// expired.
func (s *Server) CreatePost(c *fiber.Ctx) error {
	var req struct {
		Title         string   `json:"title"`
		Body          string   `json:"body"`
		Topics        []string `json:"topics"`
		Topic         []string `json:"topic"`
		ExpiryMinutes *int     `json:"expiry_minutes"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	topics := req.Topics
	if len(topics) == 0 {
		topics = req.Topic
	}
	expiryMinutes := s.config.DefaultExpiryMins
	if req.ExpiryMinutes != nil {
		expiryMinutes = *req.ExpiryMinutes
	}

	post, err := s.postService.CreatePost(c.Context(), service.CreatePostInput{
		UserID:        currentUserID(c),
		Title:         req.Title,
		Body:          req.Body,
		Topics:        topics,
		ExpiryMinutes: expiryMinutes,
	})
	if err != nil {
		return fail(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(post)
}

// GetPosts handles GET /api/posts. Active posts by default; ?expired=true
// returns only the expired ones.
func (s *Server) GetPosts(c *fiber.Ctx) error {
	page := parsePagination(c, 20)

	posts, err := s.postService.ListPosts(c.Context(), c.QueryBool("expired"), page.Limit, page.Offset)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(posts)
}

// GetPost handles GET /api/posts/:id
func (s *Server) GetPost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	post, err := s.postService.GetPost(c.Context(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(post)
}

// GetPostsByTopic handles GET /api/posts/topic/:topic
func (s *Server) GetPostsByTopic(c *fiber.Ctx) error {
	page := parsePagination(c, 20)

	posts, err := s.postService.ListByTopic(c.Context(), service.ListByTopicInput{
		Topic:       c.Params("topic"),
		ExpiredOnly: c.QueryBool("expired"),
		Limit:       page.Limit,
		Offset:      page.Offset,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(posts)
}

// GetTopPost handles GET /api/posts/topic/:topic/top-post
func (s *Server) GetTopPost(c *fiber.Ctx) error {
	post, err := s.postService.TopPost(c.Context(), c.Params("topic"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(post)
}

// UpdatePost handles PATCH /api/posts/:id. Owner only; a new expiry window
// is recomputed from the original upload time.
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Title         string `json:"title"`
		Body          string `json:"body"`
		ExpiryMinutes *int   `json:"expiry_minutes"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	post, err := s.postService.UpdatePost(c.Context(), service.UpdatePostInput{
		UserID:        currentUserID(c),
		PostID:        id,
		Title:         req.Title,
		Body:          req.Body,
		ExpiryMinutes: req.ExpiryMinutes,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(post)
}

// DeletePost handles DELETE /api/posts/:id
func (s *Server) DeletePost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.postService.DeletePost(c.Context(), id, currentUserID(c)); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Post deleted"})
}
