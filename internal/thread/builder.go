// Package thread rebuilds nested comment trees from flat parent-pointer rows.
package thread

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"weave/internal/models"
)

// CommentSource provides the flat comment rows a thread is built from.
type CommentSource interface {
	ListByPost(ctx context.Context, postID uint) ([]*models.Comment, error)
	GetByID(ctx context.Context, id uint) (*models.Comment, error)
}

// Node is one comment placed in its thread.
type Node struct {
	CommentID uint      `json:"comment_id"`
	ParentID  *uint     `json:"parent_id,omitempty"`
	AuthorID  uint      `json:"author_id"`
	Content   string    `json:"content"`
	Depth     int       `json:"depth"`
	Path      []uint    `json:"path"`
	Position  string    `json:"position"`
	CreatedAt time.Time `json:"created_at"`
}

// Ancestor is one step of an upward parent walk.
type Ancestor struct {
	CommentID uint   `json:"comment_id"`
	ParentID  *uint  `json:"parent_id,omitempty"`
	AuthorID  uint   `json:"author_id"`
	Content   string `json:"content"`
	Depth     int    `json:"depth"`
}

// Builder reconstructs comment threads with a configurable depth bound.
type Builder struct {
	source   CommentSource
	maxDepth int
}

// NewBuilder creates a builder. Descendants deeper than maxDepth are dropped.
func NewBuilder(source CommentSource, maxDepth int) *Builder {
	if maxDepth <= 0 {
		maxDepth = 10
	}
	return &Builder{source: source, maxDepth: maxDepth}
}

// Thread returns every comment on postID placed in its tree, in depth-first
// order following sibling creation order. Roots have depth 0. Nodes nested
// deeper than the bound, and nodes on a parent cycle, are dropped.
func (b *Builder) Thread(ctx context.Context, postID uint) ([]Node, error) {
	comments, err := b.source.ListByPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	if len(comments) == 0 {
		return []Node{}, nil
	}

	byID := make(map[uint]*models.Comment, len(comments))
	children := make(map[uint][]*models.Comment)
	var roots []*models.Comment
	for _, c := range comments {
		byID[c.ID] = c
	}
	for _, c := range comments {
		if c.ParentCommentID == nil {
			roots = append(roots, c)
			continue
		}
		// A parent pointing outside the fetched set means the parent was
		// deleted; treat the orphan as a root so it still renders.
		if _, ok := byID[*c.ParentCommentID]; !ok {
			roots = append(roots, c)
			continue
		}
		children[*c.ParentCommentID] = append(children[*c.ParentCommentID], c)
	}

	// Rows arrive ordered by creation time, so sibling slices are already
	// in creation order; roots need sorting because orphans are appended.
	sort.SliceStable(roots, func(i, j int) bool {
		if roots[i].CreatedAt.Equal(roots[j].CreatedAt) {
			return roots[i].ID < roots[j].ID
		}
		return roots[i].CreatedAt.Before(roots[j].CreatedAt)
	})

	type frame struct {
		comment  *models.Comment
		depth    int
		path     []uint
		position string
	}

	// Depth-first with an explicit stack; roots and sibling groups are
	// pushed in reverse so creation order pops first.
	nodes := make([]Node, 0, len(comments))
	visited := make(map[uint]struct{}, len(comments))
	stack := make([]frame, 0, len(comments))
	for i := len(roots) - 1; i >= 0; i-- {
		stack = append(stack, frame{
			comment:  roots[i],
			depth:    0,
			position: fmt.Sprintf("%d", i+1),
		})
	}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if _, seen := visited[f.comment.ID]; seen {
			continue
		}
		visited[f.comment.ID] = struct{}{}

		path := make([]uint, len(f.path), len(f.path)+1)
		copy(path, f.path)
		path = append(path, f.comment.ID)

		nodes = append(nodes, Node{
			CommentID: f.comment.ID,
			ParentID:  f.comment.ParentCommentID,
			AuthorID:  f.comment.AuthorID,
			Content:   f.comment.Content,
			Depth:     f.depth,
			Path:      path,
			Position:  f.position,
			CreatedAt: f.comment.CreatedAt,
		})

		if f.depth >= b.maxDepth {
			continue
		}
		siblings := children[f.comment.ID]
		for i := len(siblings) - 1; i >= 0; i-- {
			stack = append(stack, frame{
				comment:  siblings[i],
				depth:    f.depth + 1,
				path:     path,
				position: fmt.Sprintf("%s.%d", f.position, i+1),
			})
		}
	}

	// Render order is position order.
	sort.SliceStable(nodes, func(i, j int) bool {
		return positionLess(nodes[i].Position, nodes[j].Position)
	})
	return nodes, nil
}

// Ancestors returns the parent chain of commentID from the root down to the
// comment itself. Unknown ids yield NotFound; a corrupt parent cycle stops
// the walk instead of looping.
func (b *Builder) Ancestors(ctx context.Context, commentID uint) ([]Ancestor, error) {
	current, err := b.source.GetByID(ctx, commentID)
	if err != nil {
		return nil, err
	}

	var chain []*models.Comment
	visited := map[uint]struct{}{}
	for current != nil {
		if _, seen := visited[current.ID]; seen {
			break
		}
		visited[current.ID] = struct{}{}
		chain = append(chain, current)

		if current.ParentCommentID == nil {
			break
		}
		parent, err := b.source.GetByID(ctx, *current.ParentCommentID)
		if err != nil {
			if models.IsNotFound(err) {
				break
			}
			return nil, err
		}
		current = parent
	}

	// chain is target..root; flip it and assign depths from the root.
	out := make([]Ancestor, 0, len(chain))
	for i := len(chain) - 1; i >= 0; i-- {
		c := chain[i]
		out = append(out, Ancestor{
			CommentID: c.ID,
			ParentID:  c.ParentCommentID,
			AuthorID:  c.AuthorID,
			Content:   c.Content,
			Depth:     len(chain) - 1 - i,
		})
	}
	return out, nil
}

// positionLess compares two dot-delimited position strings numerically,
// segment by segment, so "1.10" sorts after "1.2".
func positionLess(a, b string) bool {
	as := strings.Split(a, ".")
	bs := strings.Split(b, ".")
	for i := 0; i < len(as) && i < len(bs); i++ {
		if as[i] != bs[i] {
			return len(as[i]) < len(bs[i]) || (len(as[i]) == len(bs[i]) && as[i] < bs[i])
		}
	}
	return len(as) < len(bs)
}
