package server

import (
	"weave/internal/models"
	"weave/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreatePostRequest is the payload for post creation.
type CreatePostRequest struct {
	Content     string `json:"content"`
	MediaURL    string `json:"media_url"`
	CommunityID *uint  `json:"community_id"`
	// ForceFail aborts the transaction after all writes. Exposed for
	// rollback verification in non-production environments.
	ForceFail bool `json:"force_fail"`
}

func (r CreatePostRequest) input() service.PostInput {
	return service.PostInput{
		Content:     r.Content,
		MediaURL:    r.MediaURL,
		CommunityID: r.CommunityID,
	}
}

// CreatePost handles POST /api/posts
func (s *Server) CreatePost(c *fiber.Ctx) error {
	var req CreatePostRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c,
			models.NewValidationError("Invalid request body"))
	}

	post, err := s.postService.CreatePost(c.UserContext(), currentUserID(c), req.input())
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(post)
}

// ShareAndNotify handles POST /api/posts/share
//
// Creates the post and its follower notifications in one transaction, then
// publishes real-time events best-effort after commit.
func (s *Server) ShareAndNotify(c *fiber.Ctx) error {
	var req CreatePostRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c,
			models.NewValidationError("Invalid request body"))
	}

	forceFail := req.ForceFail && s.config.Env != "production"
	report, err := s.postService.ShareAndNotify(c.UserContext(), currentUserID(c), req.input(), forceFail)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(report)
}

// BatchCreatePostsRequest is the payload for bulk post creation.
// ContinueOnError defaults to true; set it false to skip the remaining
// items after the first failure.
type BatchCreatePostsRequest struct {
	Posts           []CreatePostRequest `json:"posts"`
	ContinueOnError *bool               `json:"continue_on_error"`
}

// BatchCreatePosts handles POST /api/posts/batch
//
// Each item commits or rolls back independently; the response reports
// per-item outcomes.
func (s *Server) BatchCreatePosts(c *fiber.Ctx) error {
	var req BatchCreatePostsRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c,
			models.NewValidationError("Invalid request body"))
	}
	if len(req.Posts) == 0 {
		return models.RespondWithError(c,
			models.NewValidationError("Batch requires at least one post"))
	}

	inputs := make([]service.PostInput, len(req.Posts))
	for i, p := range req.Posts {
		inputs[i] = p.input()
	}

	continueOnError := req.ContinueOnError == nil || *req.ContinueOnError
	results, err := s.postService.BatchCreate(c.UserContext(), currentUserID(c), inputs, continueOnError)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.Status(fiber.StatusMultiStatus).JSON(fiber.Map{"results": results})
}

// GetPost handles GET /api/posts/:id
func (s *Server) GetPost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	post, err := s.postService.GetPost(c.UserContext(), id)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(post)
}

// DeletePost handles DELETE /api/posts/:id
func (s *Server) DeletePost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.postService.DeletePost(c.UserContext(), currentUserID(c), id); err != nil {
		return models.RespondWithError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// LikePost handles POST /api/posts/:id/like
func (s *Server) LikePost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.postService.LikePost(c.UserContext(), currentUserID(c), id); err != nil {
		return models.RespondWithError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// UnlikePost handles DELETE /api/posts/:id/like
func (s *Server) UnlikePost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.postService.UnlikePost(c.UserContext(), currentUserID(c), id); err != nil {
		return models.RespondWithError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetFeed handles GET /api/feed
func (s *Server) GetFeed(c *fiber.Ctx) error {
	p := parsePagination(c, 20)

	items, err := s.feedService.GetFeed(c.UserContext(), currentUserID(c), p.Limit, p.Offset)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(fiber.Map{"feed": items})
}

// GetPopularPosts handles GET /api/posts/popular
func (s *Server) GetPopularPosts(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 20)
	if limit <= 0 {
		limit = 20
	}
	if limit > maxPaginationLimit {
		limit = maxPaginationLimit
	}
	recentOnly := c.QueryBool("recent", false)

	items, err := s.feedService.GetPopular(c.UserContext(), limit, recentOnly)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(fiber.Map{"posts": items})
}
