package controllers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yatube/yatube/middleware"
	"github.com/yatube/yatube/models"
	"github.com/yatube/yatube/storage"
	"github.com/yatube/yatube/store"
	"github.com/yatube/yatube/utils"
)

// PostController manages single posts and their comments.
type PostController struct {
	store         *store.Store
	media         storage.Storage
	imageMaxWidth uint
}

// NewPostController creates a new PostController instance.
func NewPostController(st *store.Store, media storage.Storage, imageMaxWidth int) *PostController {
	if imageMaxWidth < 0 {
		imageMaxWidth = 0
	}
	return &PostController{store: st, media: media, imageMaxWidth: uint(imageMaxWidth)}
}

type postForm struct {
	Text  string `form:"text" json:"text"`
	Group string `form:"group" json:"group"`
}

func (p *PostController) loadPost(ctx *gin.Context) (models.Post, bool) {
	id, ok := parseID(ctx.Param("post_id"))
	if !ok {
		utils.Error(ctx, http.StatusNotFound, 40400, "not found")
		return models.Post{}, false
	}
	post, err := p.store.PostByID(ctx.Request.Context(), id)
	if err != nil {
		respondError(ctx, err)
		return models.Post{}, false
	}
	return post, true
}

// GetPost shows a post with its comments and the author's post count.
func (p *PostController) GetPost(ctx *gin.Context) {
	post, ok := p.loadPost(ctx)
	if !ok {
		return
	}
	c := ctx.Request.Context()
	comments, err := p.store.CommentsForPost(c, post.ID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	count, err := p.store.CountPostsByAuthor(c, post.AuthorID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	withImageURL(&post, p.media)
	utils.Success(ctx, gin.H{
		"post":        post,
		"comments":    comments,
		"posts_count": count,
	})
}

// NewPostForm returns what the create form needs.
func (p *PostController) NewPostForm(ctx *gin.Context) {
	groups, err := p.store.ListGroups(ctx.Request.Context())
	if err != nil {
		respondError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"groups": groups, "is_edit": false})
}

// CreatePost saves a post for the caller and redirects to their profile.
func (p *PostController) CreatePost(ctx *gin.Context) {
	uid, _ := middleware.CurrentUserID(ctx)
	post := models.Post{AuthorID: uid}
	if !p.bindPost(ctx, &post) {
		return
	}
	if err := p.store.CreatePost(ctx.Request.Context(), &post); err != nil {
		p.discardImage(ctx.Request.Context(), post.Image)
		respondError(ctx, err)
		return
	}
	ctx.Redirect(http.StatusFound, profileURL(middleware.CurrentUsername(ctx)))
}

// EditPostForm returns the post being edited. Only the author may edit.
func (p *PostController) EditPostForm(ctx *gin.Context) {
	post, ok := p.loadOwnPost(ctx)
	if !ok {
		return
	}
	groups, err := p.store.ListGroups(ctx.Request.Context())
	if err != nil {
		respondError(ctx, err)
		return
	}
	withImageURL(&post, p.media)
	utils.Success(ctx, gin.H{"post": post, "groups": groups, "is_edit": true})
}

// UpdatePost saves an edit and redirects to the post. The publication date
// never changes.
func (p *PostController) UpdatePost(ctx *gin.Context) {
	post, ok := p.loadOwnPost(ctx)
	if !ok {
		return
	}
	oldImage := post.Image
	if !p.bindPost(ctx, &post) {
		return
	}
	if err := p.store.UpdatePost(ctx.Request.Context(), &post); err != nil {
		if post.Image != oldImage {
			p.discardImage(ctx.Request.Context(), post.Image)
		}
		respondError(ctx, err)
		return
	}
	if post.Image != oldImage {
		p.discardImage(ctx.Request.Context(), oldImage)
	}
	ctx.Redirect(http.StatusFound, postURL(post.ID))
}

// DeletePost removes a post with its comments. Authors and admins only.
func (p *PostController) DeletePost(ctx *gin.Context) {
	post, ok := p.loadPost(ctx)
	if !ok {
		return
	}
	uid, _ := middleware.CurrentUserID(ctx)
	if post.AuthorID != uid && !middleware.IsAdmin(ctx) {
		ctx.Redirect(http.StatusFound, postURL(post.ID))
		return
	}
	if err := p.store.DeletePost(ctx.Request.Context(), post.ID); err != nil {
		respondError(ctx, err)
		return
	}
	p.discardImage(ctx.Request.Context(), post.Image)
	ctx.Redirect(http.StatusFound, profileURL(post.Author.Username))
}

// AddComment stores a comment and always returns to the post; empty
// comments are dropped.
func (p *PostController) AddComment(ctx *gin.Context) {
	post, ok := p.loadPost(ctx)
	if !ok {
		return
	}
	var req struct {
		Text string `form:"text" json:"text"`
	}
	_ = ctx.ShouldBind(&req)
	if text := utils.Sanitize(req.Text); text != "" {
		uid, _ := middleware.CurrentUserID(ctx)
		postID := post.ID
		comment := models.Comment{PostID: &postID, AuthorID: uid, Text: text}
		if err := p.store.CreateComment(ctx.Request.Context(), &comment); err != nil {
			respondError(ctx, err)
			return
		}
	}
	ctx.Redirect(http.StatusFound, postURL(post.ID))
}

// loadOwnPost loads the post and redirects non-authors to its detail page.
func (p *PostController) loadOwnPost(ctx *gin.Context) (models.Post, bool) {
	post, ok := p.loadPost(ctx)
	if !ok {
		return post, false
	}
	if uid, _ := middleware.CurrentUserID(ctx); post.AuthorID != uid {
		ctx.Redirect(http.StatusFound, postURL(post.ID))
		return post, false
	}
	return post, true
}

// bindPost validates the form into post and stores an uploaded image.
func (p *PostController) bindPost(ctx *gin.Context, post *models.Post) bool {
	var form postForm
	if err := ctx.ShouldBind(&form); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40020, "invalid request payload")
		return false
	}
	text := utils.Sanitize(form.Text)
	if text == "" {
		utils.Error(ctx, http.StatusBadRequest, 40021, "text cannot be empty")
		return false
	}

	var groupID *uint
	if raw := strings.TrimSpace(form.Group); raw != "" {
		id, ok := parseID(raw)
		if !ok {
			utils.Error(ctx, http.StatusBadRequest, 40022, "invalid group")
			return false
		}
		if _, err := p.store.GroupByID(ctx.Request.Context(), id); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				utils.Error(ctx, http.StatusBadRequest, 40022, "invalid group")
			} else {
				respondError(ctx, err)
			}
			return false
		}
		groupID = &id
	}

	// non multipart requests simply carry no file
	if fh, err := ctx.FormFile("image"); err == nil {
		f, err := fh.Open()
		if err != nil {
			utils.Error(ctx, http.StatusBadRequest, 40023, "unreadable image")
			return false
		}
		defer f.Close()
		name, err := storage.SavePostImage(ctx.Request.Context(), p.media, f, p.imageMaxWidth)
		if errors.Is(err, storage.ErrNotImage) {
			utils.Error(ctx, http.StatusBadRequest, 40023, "uploaded file is not an image")
			return false
		}
		if err != nil {
			respondError(ctx, err)
			return false
		}
		post.Image = name
	}

	post.Text = text
	post.GroupID = groupID
	return true
}

func (p *PostController) discardImage(ctx context.Context, name string) {
	if name == "" || p.media == nil {
		return
	}
	if err := p.media.Delete(ctx, name); err != nil {
		utils.Logger.Warn("failed to delete image", zap.String("name", name), zap.Error(err))
	}
}
