package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yatube/yatube/cache"
	"github.com/yatube/yatube/config"
	"github.com/yatube/yatube/controllers"
	"github.com/yatube/yatube/middleware"
	"github.com/yatube/yatube/storage"
	"github.com/yatube/yatube/store"
	"github.com/yatube/yatube/utils"
)

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(db *gorm.DB, views *cache.ViewCache, media storage.Storage) *gin.Engine {
	cfg := config.Get()
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	useRequestLogging(r, cfg)

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length", "Location"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
		corsCfg.AllowCredentials = false
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))
	r.Use(gzip.Gzip(gzip.DefaultCompression))
	r.Use(middleware.Authenticate())

	if disk, ok := media.(*storage.DiskStorage); ok && strings.HasPrefix(disk.BaseURL, "/") {
		r.Static(strings.TrimSuffix(disk.BaseURL, "/"), disk.Root)
	}

	r.GET("/health", func(ctx *gin.Context) {
		utils.Success(ctx, gin.H{"status": "ok"})
	})

	st := store.New(db)
	feedController := controllers.NewFeedController(st, media, cfg.PostsPerPage)
	postController := controllers.NewPostController(st, media, cfg.ImageMaxWidth)
	followController := controllers.NewFollowController(st)
	authController := controllers.NewAuthController(st)
	groupController := controllers.NewGroupController(st)
	adminController := controllers.NewAdminController(views)

	loginRequired := middleware.LoginRequired(cfg.LoginURL)

	// feeds
	r.GET("/", middleware.CachePage(views), feedController.Index)
	r.GET("/group/:slug/", feedController.GroupPosts)
	r.GET("/profile/:username/", feedController.Profile)
	r.GET("/follow/", loginRequired, feedController.FollowIndex)

	// posts
	r.GET("/posts/:post_id/", postController.GetPost)
	r.GET("/create/", loginRequired, postController.NewPostForm)
	r.POST("/create/", loginRequired, postController.CreatePost)
	r.GET("/posts/:post_id/edit/", loginRequired, postController.EditPostForm)
	r.POST("/posts/:post_id/edit/", loginRequired, postController.UpdatePost)
	r.POST("/posts/:post_id/comment/", loginRequired, postController.AddComment)
	r.POST("/posts/:post_id/delete/", loginRequired, postController.DeletePost)

	// follows
	r.POST("/profile/:username/follow/", loginRequired, followController.Follow)
	r.POST("/profile/:username/unfollow/", loginRequired, followController.Unfollow)

	authGroup := r.Group("/auth")
	authGroup.Use(middleware.RateLimit(cfg.RateLimitPerMinute))
	authGroup.GET("/signup/", authController.SignupForm)
	authGroup.POST("/signup/", authController.Signup)
	authGroup.GET("/login/", authController.LoginForm)
	authGroup.POST("/login/", authController.Login)
	authGroup.POST("/logout/", middleware.AuthRequired(), authController.Logout)
	authGroup.GET("/password_change/", loginRequired, authController.PasswordChangeForm)
	authGroup.POST("/password_change/", middleware.AuthRequired(), authController.PasswordChange)

	api := r.Group("/api/v1")
	api.GET("/groups", groupController.ListGroups)

	admin := api.Group("/admin")
	admin.Use(middleware.AuthRequired(), middleware.AdminRequired())
	admin.POST("/groups", groupController.CreateGroup)
	admin.DELETE("/groups/:slug", groupController.DeleteGroup)
	admin.POST("/cache/clear", adminController.ClearCache)

	r.NoRoute(func(ctx *gin.Context) {
		utils.Error(ctx, http.StatusNotFound, 40400, "route not found")
	})

	return r
}

// useRequestLogging logs every request to the gin log file and turns panics
// into 500 responses. Without a usable log file gin's own recovery is used.
func useRequestLogging(r *gin.Engine, cfg config.AppConfig) {
	gl, err := utils.NewRollingFileLogger(cfg.GinPath, cfg.LogLevel, cfg.LogMaxSizeMB, cfg.LogMaxBackups, cfg.LogMaxAgeDays, cfg.LogCompress)
	if err != nil {
		r.Use(gin.Recovery())
		return
	}
	r.Use(ginzap.Ginzap(gl, time.RFC3339, true))
	r.Use(ginzap.RecoveryWithZap(gl, false))
}
