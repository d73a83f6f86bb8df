package server

import (
	"weave/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetRecommendations handles GET /api/recommendations
func (s *Server) GetRecommendations(c *fiber.Ctx) error {
	recs, err := s.discoveryService.GetRecommendations(c.UserContext(), currentUserID(c))
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(fiber.Map{"recommendations": recs})
}

// SearchPosts handles GET /api/search/posts
func (s *Server) SearchPosts(c *fiber.Ctx) error {
	query, profile, limit := s.searchParams(c)

	results, err := s.discoveryService.SearchPosts(c.UserContext(), query, profile, limit)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(fiber.Map{"results": results})
}

// SearchUsers handles GET /api/search/users
func (s *Server) SearchUsers(c *fiber.Ctx) error {
	query, profile, limit := s.searchParams(c)

	results, err := s.discoveryService.SearchUsers(c.UserContext(), query, profile, limit)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(fiber.Map{"results": results})
}

// SearchAll handles GET /api/search/all
func (s *Server) SearchAll(c *fiber.Ctx) error {
	query, profile, limit := s.searchParams(c)

	results, err := s.discoveryService.SearchAll(c.UserContext(), query, profile, limit)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(fiber.Map{"results": results})
}

// SearchBoolean handles GET /api/search/boolean
//
// Supports AND/OR/NOT operators and quoted phrases over the post corpus.
func (s *Server) SearchBoolean(c *fiber.Ctx) error {
	query, profile, limit := s.searchParams(c)

	results, err := s.discoveryService.SearchPostsBoolean(c.UserContext(), query, profile, limit)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(fiber.Map{"results": results})
}
