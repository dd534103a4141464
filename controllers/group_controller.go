package controllers

import (
	"errors"
	"net/http"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yatube/yatube/models"
	"github.com/yatube/yatube/store"
	"github.com/yatube/yatube/utils"
)

var slugPattern = regexp.MustCompile(`^[-a-zA-Z0-9_]{1,50}$`)

// GroupController lists groups and lets admins manage them.
type GroupController struct {
	store *store.Store
}

// NewGroupController creates a new GroupController instance.
func NewGroupController(st *store.Store) *GroupController {
	return &GroupController{store: st}
}

// ListGroups returns every group ordered by title.
func (g *GroupController) ListGroups(ctx *gin.Context) {
	groups, err := g.store.ListGroups(ctx.Request.Context())
	if err != nil {
		respondError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"items": groups})
}

// CreateGroup adds a group with a unique slug.
func (g *GroupController) CreateGroup(ctx *gin.Context) {
	var req struct {
		Title       string `json:"title" form:"title"`
		Slug        string `json:"slug" form:"slug"`
		Description string `json:"description" form:"description"`
	}
	if err := ctx.ShouldBind(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40040, "invalid request payload")
		return
	}
	title := utils.Sanitize(req.Title)
	if title == "" || len([]rune(title)) > 200 {
		utils.Error(ctx, http.StatusBadRequest, 40041, "title must be 1-200 characters")
		return
	}
	slug := strings.TrimSpace(req.Slug)
	if !slugPattern.MatchString(slug) {
		utils.Error(ctx, http.StatusBadRequest, 40042, "slug may contain only letters, digits, '-' and '_'")
		return
	}

	group := models.Group{Title: title, Slug: slug, Description: utils.Sanitize(req.Description)}
	if err := g.store.CreateGroup(ctx.Request.Context(), &group); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			utils.Error(ctx, http.StatusConflict, 40902, "slug already exists")
			return
		}
		respondError(ctx, err)
		return
	}
	utils.Created(ctx, gin.H{"group": group})
}

// DeleteGroup removes a group; its posts stay and lose the group.
func (g *GroupController) DeleteGroup(ctx *gin.Context) {
	c := ctx.Request.Context()
	group, err := g.store.GroupBySlug(c, ctx.Param("slug"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	if err := g.store.DeleteGroup(c, group.ID); err != nil {
		respondError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"message": "group deleted"})
}
