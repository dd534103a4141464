// Package feed resolves feed views into ordered post sequences and pages them.
package feed

import (
	"context"
	"fmt"

	"github.com/yatube/yatube/models"
	"github.com/yatube/yatube/store"
)

// Kind selects which posts a view lists.
type Kind int

const (
	Global Kind = iota
	ByGroup
	ByAuthor
	ByFollowing
)

func (k Kind) String() string {
	switch k {
	case Global:
		return "global"
	case ByGroup:
		return "group"
	case ByAuthor:
		return "author"
	case ByFollowing:
		return "following"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// View is a logical feed request.
type View struct {
	Kind     Kind
	Slug     string // ByGroup
	Username string // ByAuthor
	UserID   uint   // ByFollowing; must already be authenticated
}

// GroupView, AuthorView and FollowingView build views of the matching kind;
// the zero View is the global feed.
func GroupView(slug string) View      { return View{Kind: ByGroup, Slug: slug} }
func AuthorView(username string) View { return View{Kind: ByAuthor, Username: username} }
func FollowingView(userID uint) View  { return View{Kind: ByFollowing, UserID: userID} }

// Source is the subset of the entity store the engine reads from.
type Source interface {
	GroupBySlug(ctx context.Context, slug string) (models.Group, error)
	UserByUsername(ctx context.Context, username string) (models.User, error)
	AllPosts() store.Sequence
	PostsByGroup(groupID uint) store.Sequence
	PostsByAuthor(authorID uint) store.Sequence
	PostsByFollowed(followerID uint) store.Sequence
}

// Result is a resolved view. Group or Author is set for the matching kinds.
type Result struct {
	Posts  store.Sequence
	Group  *models.Group
	Author *models.User
}

// Engine turns views into lazy post sequences. It has no side effects.
type Engine struct {
	src Source
}

// NewEngine creates an Engine reading from src.
func NewEngine(src Source) *Engine {
	return &Engine{src: src}
}

// Resolve maps v onto its backing sequence. Unknown slugs and usernames
// fail with store.ErrNotFound; an existing group with no posts is not an error.
func (e *Engine) Resolve(ctx context.Context, v View) (Result, error) {
	switch v.Kind {
	case Global:
		return Result{Posts: e.src.AllPosts()}, nil
	case ByGroup:
		group, err := e.src.GroupBySlug(ctx, v.Slug)
		if err != nil {
			return Result{}, fmt.Errorf("group %q: %w", v.Slug, err)
		}
		return Result{Posts: e.src.PostsByGroup(group.ID), Group: &group}, nil
	case ByAuthor:
		author, err := e.src.UserByUsername(ctx, v.Username)
		if err != nil {
			return Result{}, fmt.Errorf("author %q: %w", v.Username, err)
		}
		return Result{Posts: e.src.PostsByAuthor(author.ID), Author: &author}, nil
	case ByFollowing:
		return Result{Posts: e.src.PostsByFollowed(v.UserID)}, nil
	default:
		return Result{}, fmt.Errorf("unknown feed kind %v", v.Kind)
	}
}
