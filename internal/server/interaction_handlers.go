package server

import (
	"piazza/internal/models"

	"github.com/gofiber/fiber/v2"
)

// RecordInteraction handles POST /api/posts/:id with {"type": "like"|"dislike"}.
// A first-time vote answers 201; re-asserting or flipping an existing vote
// answers 200.
func (s *Server) RecordInteraction(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Type string `json:"type"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	out, err := s.postService.RecordInteraction(c.Context(), id, currentUserID(c),
		models.InteractionType(req.Type))
	if err != nil {
		return fail(c, err)
	}

	status := fiber.StatusOK
	if out.Created {
		status = fiber.StatusCreated
	}
	return c.Status(status).JSON(fiber.Map{
		"interaction": out.Interaction,
		"post":        out.Post,
	})
}

// DeleteInteraction handles DELETE /api/posts/:id/:interactionId. Removing
// your own vote stays allowed after the post expires.
func (s *Server) DeleteInteraction(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	interactionID, err := s.parseID(c, "interactionId")
	if err != nil {
		return nil
	}

	post, err := s.postService.DeleteInteraction(c.Context(), id, interactionID, currentUserID(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Interaction removed",
		"post":    post,
	})
}
