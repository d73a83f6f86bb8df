package server

import (
	"weave/internal/models"

	"github.com/gofiber/fiber/v2"
)

// SendFollowRequest handles POST /api/follows/:userId
func (s *Server) SendFollowRequest(c *fiber.Ctx) error {
	targetID, err := s.parseID(c, "userId")
	if err != nil {
		return nil
	}

	follow, err := s.followService.SendFollowRequest(c.UserContext(), currentUserID(c), targetID)
	if err != nil {
		return models.RespondWithError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(follow)
}

// AcceptFollowRequest handles POST /api/follows/requests/:userId/accept
func (s *Server) AcceptFollowRequest(c *fiber.Ctx) error {
	followerID, err := s.parseID(c, "userId")
	if err != nil {
		return nil
	}

	follow, err := s.followService.AcceptFollowRequest(c.UserContext(), currentUserID(c), followerID)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(follow)
}

// RejectFollowRequest handles POST /api/follows/requests/:userId/reject
func (s *Server) RejectFollowRequest(c *fiber.Ctx) error {
	followerID, err := s.parseID(c, "userId")
	if err != nil {
		return nil
	}

	follow, err := s.followService.RejectFollowRequest(c.UserContext(), currentUserID(c), followerID)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(follow)
}

// Unfollow handles DELETE /api/follows/:userId
func (s *Server) Unfollow(c *fiber.Ctx) error {
	targetID, err := s.parseID(c, "userId")
	if err != nil {
		return nil
	}

	if err := s.followService.Unfollow(c.UserContext(), currentUserID(c), targetID); err != nil {
		return models.RespondWithError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetPendingFollowRequests handles GET /api/follows/requests
func (s *Server) GetPendingFollowRequests(c *fiber.Ctx) error {
	p := parsePagination(c, 20)

	requests, err := s.followService.GetPendingRequests(c.UserContext(), currentUserID(c), p.Limit, p.Offset)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(fiber.Map{"requests": requests})
}

// GetFollowers handles GET /api/users/:id/followers
func (s *Server) GetFollowers(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	p := parsePagination(c, 20)

	followers, err := s.followService.GetFollowers(c.UserContext(), id, p.Limit, p.Offset)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(fiber.Map{"followers": followers})
}

// GetFollowing handles GET /api/users/:id/following
func (s *Server) GetFollowing(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	p := parsePagination(c, 20)

	following, err := s.followService.GetFollowing(c.UserContext(), id, p.Limit, p.Offset)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(fiber.Map{"following": following})
}

// GetSocialDistance handles GET /api/users/:id/distance
//
// Distance is the length of the shortest directed chain of accepted follows
// from the acting user to the target, bounded by the configured depth.
func (s *Server) GetSocialDistance(c *fiber.Ctx) error {
	targetID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	distance, found, err := s.followService.GetSocialDistance(c.UserContext(), currentUserID(c), targetID)
	if err != nil {
		return models.RespondWithError(c, err)
	}

	resp := fiber.Map{"connected": found}
	if found {
		resp["distance"] = distance
	}
	return c.JSON(resp)
}
