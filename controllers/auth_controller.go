package controllers

import (
	"errors"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yatube/yatube/config"
	"github.com/yatube/yatube/middleware"
	"github.com/yatube/yatube/models"
	"github.com/yatube/yatube/store"
	"github.com/yatube/yatube/utils"
)

// usernames follow the usual letters, digits and @.+-_ rule
var usernamePattern = regexp.MustCompile(`^[\w.@+-]{1,150}$`)

const minPasswordLen = 8

// AuthController handles sign up, login and logout with a JWT session cookie.
type AuthController struct {
	store *store.Store
}

// NewAuthController creates a new AuthController instance.
func NewAuthController(st *store.Store) *AuthController {
	return &AuthController{store: st}
}

type credentials struct {
	Username  string `form:"username" json:"username"`
	Password  string `form:"password" json:"password"`
	FirstName string `form:"first_name" json:"first_name"`
	LastName  string `form:"last_name" json:"last_name"`
	Next      string `form:"next" json:"next"`
}

// SignupForm lists the fields the sign up form accepts.
func (a *AuthController) SignupForm(ctx *gin.Context) {
	utils.Success(ctx, gin.H{"fields": []string{"first_name", "last_name", "username", "password"}})
}

// Signup creates an account, logs it in and redirects to the index.
func (a *AuthController) Signup(ctx *gin.Context) {
	var req credentials
	if err := ctx.ShouldBind(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40001, "invalid request payload")
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	if !usernamePattern.MatchString(req.Username) {
		utils.Error(ctx, http.StatusBadRequest, 40002, "username may contain only letters, digits and @/./+/-/_")
		return
	}
	if len(req.Password) < minPasswordLen {
		utils.Error(ctx, http.StatusBadRequest, 40003, "password is too short")
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50001, "failed to hash password")
		return
	}
	user := models.User{
		Username:     req.Username,
		PasswordHash: hash,
		FirstName:    utils.Sanitize(req.FirstName),
		LastName:     utils.Sanitize(req.LastName),
	}
	if err := a.store.CreateUser(ctx.Request.Context(), &user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			utils.Error(ctx, http.StatusConflict, 40901, "username already exists")
			return
		}
		respondError(ctx, err)
		return
	}
	if _, ok := a.startSession(ctx, user); !ok {
		return
	}
	ctx.Redirect(http.StatusFound, "/")
}

// LoginForm echoes the next parameter the login form should post back.
func (a *AuthController) LoginForm(ctx *gin.Context) {
	next := ctx.Query("next")
	if !isSafeRedirect(next) {
		next = ""
	}
	utils.Success(ctx, gin.H{"fields": []string{"username", "password"}, "next": next})
}

// Login checks credentials and sets the session cookie. With a safe next
// parameter it redirects there, otherwise it returns the token.
func (a *AuthController) Login(ctx *gin.Context) {
	var req credentials
	if err := ctx.ShouldBind(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40001, "invalid request payload")
		return
	}
	if req.Next == "" {
		req.Next = ctx.Query("next")
	}

	user, err := a.store.UserByUsername(ctx.Request.Context(), strings.TrimSpace(req.Username))
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		respondError(ctx, err)
		return
	}
	if err != nil || !utils.CheckPassword(user.PasswordHash, req.Password) {
		utils.Error(ctx, http.StatusUnauthorized, 40106, "invalid username or password")
		return
	}

	token, ok := a.startSession(ctx, user)
	if !ok {
		return
	}
	if isSafeRedirect(req.Next) {
		ctx.Redirect(http.StatusFound, req.Next)
		return
	}
	utils.Success(ctx, gin.H{"token": token, "user": user})
}

// Logout revokes the current token until it would have expired.
func (a *AuthController) Logout(ctx *gin.Context) {
	token := ctx.GetString(middleware.ContextTokenKey)
	if token == "" {
		utils.Error(ctx, http.StatusUnauthorized, 40107, "not logged in")
		return
	}
	expiresAt := time.Now().Add(config.Get().TokenTTL())
	if claims, err := utils.ParseToken(token); err == nil && claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}
	utils.BlacklistToken(token, expiresAt)
	ctx.SetCookie(middleware.TokenCookieName, "", -1, "/", "", false, true)
	utils.Success(ctx, gin.H{"message": "logged out"})
}

type passwordChange struct {
	OldPassword string `form:"old_password" json:"old_password"`
	NewPassword string `form:"new_password" json:"new_password"`
}

// PasswordChangeForm lists the fields the password change form accepts.
func (a *AuthController) PasswordChangeForm(ctx *gin.Context) {
	utils.Success(ctx, gin.H{"fields": []string{"old_password", "new_password"}})
}

// PasswordChange replaces the current user's password after checking the
// old one. The token used for the request is revoked and a new session issued.
func (a *AuthController) PasswordChange(ctx *gin.Context) {
	var req passwordChange
	if err := ctx.ShouldBind(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40001, "invalid request payload")
		return
	}
	userID, _ := middleware.CurrentUserID(ctx)
	user, err := a.store.UserByID(ctx.Request.Context(), userID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	if !utils.CheckPassword(user.PasswordHash, req.OldPassword) {
		utils.Error(ctx, http.StatusBadRequest, 40004, "old password is incorrect")
		return
	}
	if len(req.NewPassword) < minPasswordLen {
		utils.Error(ctx, http.StatusBadRequest, 40003, "password is too short")
		return
	}

	hash, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50001, "failed to hash password")
		return
	}
	if err := a.store.SetPasswordHash(ctx.Request.Context(), user.ID, hash); err != nil {
		respondError(ctx, err)
		return
	}
	if old := ctx.GetString(middleware.ContextTokenKey); old != "" {
		utils.BlacklistToken(old, time.Now().Add(config.Get().TokenTTL()))
	}
	token, ok := a.startSession(ctx, user)
	if !ok {
		return
	}
	utils.Success(ctx, gin.H{"message": "password changed", "token": token})
}

func (a *AuthController) startSession(ctx *gin.Context, user models.User) (string, bool) {
	ttl := config.Get().TokenTTL()
	token, err := utils.GenerateToken(user.ID, user.Username, ttl)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50004, "failed to generate token")
		return "", false
	}
	ctx.SetSameSite(http.SameSiteLaxMode)
	ctx.SetCookie(middleware.TokenCookieName, token, int(ttl.Seconds()), "/", "", ctx.Request.TLS != nil, true)
	return token, true
}

// isSafeRedirect accepts only local absolute paths. Browsers drop control
// characters and read backslashes as slashes, so either one is rejected.
func isSafeRedirect(next string) bool {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") {
		return false
	}
	for _, r := range next {
		if r < 0x20 || r == 0x7f || r == '\\' {
			return false
		}
	}
	u, err := url.Parse(next)
	if err != nil {
		return false
	}
	return u.Scheme == "" && u.Host == "" && !strings.HasPrefix(u.Path, "//")
}
