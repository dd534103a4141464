package controllers

import (
	"github.com/gin-gonic/gin"

	"github.com/yatube/yatube/feed"
	"github.com/yatube/yatube/middleware"
	"github.com/yatube/yatube/storage"
	"github.com/yatube/yatube/store"
	"github.com/yatube/yatube/utils"
)

// FeedController renders the four post feeds.
type FeedController struct {
	store     *store.Store
	engine    *feed.Engine
	paginator feed.Paginator
	media     storage.Storage
}

// NewFeedController creates a FeedController paginating perPage posts.
func NewFeedController(st *store.Store, media storage.Storage, perPage int) *FeedController {
	return &FeedController{
		store:     st,
		engine:    feed.NewEngine(st),
		paginator: feed.NewPaginator(perPage),
		media:     media,
	}
}

func (f *FeedController) page(ctx *gin.Context, v feed.View) (feed.Result, feed.Page, bool) {
	res, err := f.engine.Resolve(ctx.Request.Context(), v)
	if err != nil {
		respondError(ctx, err)
		return res, feed.Page{}, false
	}
	page, err := f.paginator.Paginate(ctx.Request.Context(), res.Posts, ctx.Query("page"))
	if err != nil {
		respondError(ctx, err)
		return res, feed.Page{}, false
	}
	return res, page, true
}

// Index serves the global feed. Its output is view cached, so nothing in it
// may depend on the caller.
func (f *FeedController) Index(ctx *gin.Context) {
	_, page, ok := f.page(ctx, feed.View{})
	if !ok {
		return
	}
	payload := pagePayload(page, f.media)
	payload["title"] = "Latest posts"
	utils.Success(ctx, payload)
}

// GroupPosts serves the feed of one group.
func (f *FeedController) GroupPosts(ctx *gin.Context) {
	res, page, ok := f.page(ctx, feed.GroupView(ctx.Param("slug")))
	if !ok {
		return
	}
	payload := pagePayload(page, f.media)
	payload["group"] = res.Group
	utils.Success(ctx, payload)
}

// Profile serves an author's posts with their post count and whether the
// caller follows them.
func (f *FeedController) Profile(ctx *gin.Context) {
	res, page, ok := f.page(ctx, feed.AuthorView(ctx.Param("username")))
	if !ok {
		return
	}
	following := false
	if uid, ok := middleware.CurrentUserID(ctx); ok {
		var err error
		following, err = f.store.IsFollowing(ctx.Request.Context(), uid, res.Author.ID)
		if err != nil {
			respondError(ctx, err)
			return
		}
	}
	payload := pagePayload(page, f.media)
	payload["author"] = res.Author
	payload["posts_count"] = page.Count
	payload["following"] = following
	utils.Success(ctx, payload)
}

// FollowIndex serves posts by authors the caller follows.
func (f *FeedController) FollowIndex(ctx *gin.Context) {
	uid, _ := middleware.CurrentUserID(ctx)
	_, page, ok := f.page(ctx, feed.FollowingView(uid))
	if !ok {
		return
	}
	utils.Success(ctx, pagePayload(page, f.media))
}
