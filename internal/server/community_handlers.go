package server

import (
	"weave/internal/models"

	"github.com/gofiber/fiber/v2"
)

// CreateCommunityRequest is the payload for community creation.
type CreateCommunityRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	IsPrivate   bool   `json:"is_private"`
	// ForceFail aborts the transaction after all writes. Exposed for
	// rollback verification in non-production environments.
	ForceFail bool `json:"force_fail"`
}

// CreateCommunity handles POST /api/communities
//
// The community and its creator's admin membership are written atomically.
func (s *Server) CreateCommunity(c *fiber.Ctx) error {
	var req CreateCommunityRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c,
			models.NewValidationError("Invalid request body"))
	}

	forceFail := req.ForceFail && s.config.Env != "production"
	community, err := s.communityService.CreateWithAdmin(c.UserContext(),
		currentUserID(c), req.Name, req.Description, req.IsPrivate, forceFail)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(community)
}

// GetCommunity handles GET /api/communities/:id
func (s *Server) GetCommunity(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	community, err := s.communityService.GetCommunity(c.UserContext(), id)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(community)
}

// ListCommunities handles GET /api/communities
func (s *Server) ListCommunities(c *fiber.Ctx) error {
	p := parsePagination(c, 20)

	communities, err := s.communityService.ListCommunities(c.UserContext(), p.Limit, p.Offset)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(fiber.Map{"communities": communities})
}

// JoinCommunity handles POST /api/communities/:id/join
func (s *Server) JoinCommunity(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	membership, err := s.communityService.Join(c.UserContext(), id, currentUserID(c))
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(membership)
}

// LeaveCommunity handles POST /api/communities/:id/leave
func (s *Server) LeaveCommunity(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.communityService.Leave(c.UserContext(), id, currentUserID(c)); err != nil {
		return models.RespondWithError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// SetCommunityMemberRoleRequest carries the new role name.
type SetCommunityMemberRoleRequest struct {
	Role string `json:"role"`
}

// SetCommunityMemberRole handles PUT /api/communities/:id/members/:userId/role
func (s *Server) SetCommunityMemberRole(c *fiber.Ctx) error {
	communityID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	targetID, err := s.parseID(c, "userId")
	if err != nil {
		return nil
	}

	var req SetCommunityMemberRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c,
			models.NewValidationError("Invalid request body"))
	}

	if err := s.communityService.SetMemberRole(c.UserContext(),
		communityID, currentUserID(c), targetID, req.Role); err != nil {
		return models.RespondWithError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ListCommunityMembers handles GET /api/communities/:id/members
func (s *Server) ListCommunityMembers(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	p := parsePagination(c, 50)

	members, err := s.communityService.ListMembers(c.UserContext(), id, p.Limit, p.Offset)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(fiber.Map{"members": members})
}

// GetAllCommunityStats handles GET /api/communities/stats
func (s *Server) GetAllCommunityStats(c *fiber.Ctx) error {
	p := parsePagination(c, 50)

	stats, err := s.feedService.GetAllCommunityStats(c.UserContext(), p.Limit, p.Offset)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(fiber.Map{"communities": stats})
}

// GetCommunityStats handles GET /api/communities/:id/stats
func (s *Server) GetCommunityStats(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	stats, err := s.feedService.GetCommunityStats(c.UserContext(), id)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(stats)
}
