package server

import (
	"github.com/gofiber/fiber/v2"
)

// GetUser handles GET /api/user/:username
func (s *Server) GetUser(c *fiber.Ctx) error {
	username := c.Params("username")

	user, err := s.userService.GetByUsername(c.Context(), username)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(user)
}

// DeleteUser handles DELETE /api/user/:id. Users may only delete their
// own account.
func (s *Server) DeleteUser(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.userService.DeleteUser(c.Context(), id, currentUserID(c)); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "User deleted"})
}
