package controllers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yatube/yatube/middleware"
	"github.com/yatube/yatube/store"
)

// FollowController subscribes the caller to authors.
type FollowController struct {
	store *store.Store
}

// NewFollowController creates a new FollowController instance.
func NewFollowController(st *store.Store) *FollowController {
	return &FollowController{store: st}
}

// Follow subscribes the caller to the author. Following twice, or following
// oneself, is accepted.
func (f *FollowController) Follow(ctx *gin.Context) {
	f.change(ctx, f.store.Follow)
}

// Unfollow removes the subscription if it exists.
func (f *FollowController) Unfollow(ctx *gin.Context) {
	f.change(ctx, f.store.Unfollow)
}

func (f *FollowController) change(ctx *gin.Context, apply func(c context.Context, userID, authorID uint) error) {
	username := ctx.Param("username")
	author, err := f.store.UserByUsername(ctx.Request.Context(), username)
	if err != nil {
		respondError(ctx, err)
		return
	}
	uid, _ := middleware.CurrentUserID(ctx)
	if err := apply(ctx.Request.Context(), uid, author.ID); err != nil {
		respondError(ctx, err)
		return
	}
	ctx.Redirect(http.StatusFound, profileURL(author.Username))
}
