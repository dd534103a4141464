package controllers

import (
	"github.com/gin-gonic/gin"

	"github.com/yatube/yatube/cache"
	"github.com/yatube/yatube/utils"
)

// AdminController exposes maintenance actions.
type AdminController struct {
	views *cache.ViewCache
}

// NewAdminController creates a new AdminController instance.
func NewAdminController(views *cache.ViewCache) *AdminController {
	return &AdminController{views: views}
}

// ClearCache drops every cached view.
func (a *AdminController) ClearCache(ctx *gin.Context) {
	if err := a.views.Clear(ctx.Request.Context()); err != nil {
		respondError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"message": "cache cleared"})
}
