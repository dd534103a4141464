// Package store is the relational entity store: users, groups, posts,
// comments and follow edges, plus the ordered post queries feeds are built on.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yatube/yatube/models"
)

var (
	// ErrNotFound is returned when a slug, username or id does not resolve.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned when a unique constraint would be violated.
	ErrDuplicate = errors.New("already exists")
	// ErrUnavailable wraps any other storage failure.
	ErrUnavailable = errors.New("store unavailable")
)

// Store exposes query primitives and atomic writes over a gorm connection.
type Store struct {
	db *gorm.DB
}

// New creates a Store bound to db.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// DB returns the underlying connection.
func (s *Store) DB() *gorm.DB {
	return s.db
}

func wrap(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	case errors.Is(err, gorm.ErrDuplicatedKey), isUniqueViolation(err):
		return fmt.Errorf("%s: %w", op, ErrDuplicate)
	default:
		return fmt.Errorf("%s: %w: %v", op, ErrUnavailable, err)
	}
}

// isUniqueViolation recognises driver errors that gorm does not translate
// unless TranslateError is enabled for the dialect.
func isUniqueViolation(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate entry") ||
		strings.Contains(msg, "duplicate key")
}

// ---- posts

// AllPosts returns every post in feed order.
func (s *Store) AllPosts() Sequence {
	return &PostQuery{db: s.db}
}

// PostsByGroup returns the posts of one group in feed order.
func (s *Store) PostsByGroup(groupID uint) Sequence {
	return &PostQuery{db: s.db, scope: func(q *gorm.DB) *gorm.DB {
		return q.Where("group_id = ?", groupID)
	}}
}

// PostsByAuthor returns the posts written by one user in feed order.
func (s *Store) PostsByAuthor(authorID uint) Sequence {
	return &PostQuery{db: s.db, scope: func(q *gorm.DB) *gorm.DB {
		return q.Where("author_id = ?", authorID)
	}}
}

// PostsByFollowed returns posts whose author is followed by followerID.
func (s *Store) PostsByFollowed(followerID uint) Sequence {
	return &PostQuery{db: s.db, scope: func(q *gorm.DB) *gorm.DB {
		followed := s.db.Model(&models.Follow{}).Select("author_id").Where("user_id = ?", followerID)
		return q.Where("author_id IN (?)", followed)
	}}
}

// PostByID loads a post with its author and group.
func (s *Store) PostByID(ctx context.Context, id uint) (models.Post, error) {
	var post models.Post
	err := s.db.WithContext(ctx).Preload("Author").Preload("Group").First(&post, id).Error
	return post, wrap("load post", err)
}

// CountPostsByAuthor returns how many posts a user has written.
func (s *Store) CountPostsByAuthor(ctx context.Context, authorID uint) (int64, error) {
	return s.PostsByAuthor(authorID).Count(ctx)
}

// CreatePost inserts a post; PubDate is assigned by the model hook.
func (s *Store) CreatePost(ctx context.Context, post *models.Post) error {
	post.ID = 0
	if !post.PubDate.IsZero() {
		post.PubDate = post.PubDate.UTC()
	}
	return wrap("create post", s.db.WithContext(ctx).Omit(clause.Associations).Create(post).Error)
}

// UpdatePost saves text, group and image of an existing post. PubDate and
// author are never changed.
func (s *Store) UpdatePost(ctx context.Context, post *models.Post) error {
	res := s.db.WithContext(ctx).Model(&models.Post{ID: post.ID}).
		Select("text", "group_id", "image").
		Updates(map[string]interface{}{"text": post.Text, "group_id": post.GroupID, "image": post.Image})
	if res.Error != nil {
		return wrap("update post", res.Error)
	}
	if res.RowsAffected == 0 {
		// MySQL reports zero rows for no-op updates, so confirm existence before failing.
		var n int64
		if err := s.db.WithContext(ctx).Model(&models.Post{}).Where("id = ?", post.ID).Count(&n).Error; err != nil {
			return wrap("update post", err)
		}
		if n == 0 {
			return wrap("update post", gorm.ErrRecordNotFound)
		}
	}
	return nil
}

// DeletePost removes a post and its comments.
func (s *Store) DeletePost(ctx context.Context, id uint) error {
	return wrap("delete post", s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Post{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	}))
}

// ---- groups

// GroupBySlug resolves a group by its unique slug.
func (s *Store) GroupBySlug(ctx context.Context, slug string) (models.Group, error) {
	var group models.Group
	err := s.db.WithContext(ctx).Where("slug = ?", slug).First(&group).Error
	return group, wrap("load group", err)
}

// GroupByID resolves a group by id.
func (s *Store) GroupByID(ctx context.Context, id uint) (models.Group, error) {
	var group models.Group
	err := s.db.WithContext(ctx).First(&group, id).Error
	return group, wrap("load group", err)
}

// ListGroups returns all groups ordered by title.
func (s *Store) ListGroups(ctx context.Context) ([]models.Group, error) {
	var groups []models.Group
	err := s.db.WithContext(ctx).Order("title ASC, id ASC").Find(&groups).Error
	return groups, wrap("list groups", err)
}

// CreateGroup inserts a group; the slug must be unique.
func (s *Store) CreateGroup(ctx context.Context, group *models.Group) error {
	return wrap("create group", s.db.WithContext(ctx).Create(group).Error)
}

// DeleteGroup removes a group and detaches its posts.
func (s *Store) DeleteGroup(ctx context.Context, id uint) error {
	return wrap("delete group", s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Post{}).Where("group_id = ?", id).Update("group_id", nil).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Group{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	}))
}

// ---- users

// UserByUsername resolves a user by username.
func (s *Store) UserByUsername(ctx context.Context, username string) (models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	return user, wrap("load user", err)
}

// UserByID resolves a user by id.
func (s *Store) UserByID(ctx context.Context, id uint) (models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).First(&user, id).Error
	return user, wrap("load user", err)
}

// CreateUser inserts a user; the username must be unique.
func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	return wrap("create user", s.db.WithContext(ctx).Create(user).Error)
}

// SetPasswordHash replaces a user's stored password hash.
func (s *Store) SetPasswordHash(ctx context.Context, id uint, hash string) error {
	res := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("password_hash", hash)
	if res.Error != nil {
		return wrap("set password", res.Error)
	}
	if res.RowsAffected == 0 {
		return wrap("set password", gorm.ErrRecordNotFound)
	}
	return nil
}

// DeleteUser removes a user together with their posts, comments (including
// comments left by others on their posts) and follow edges.
func (s *Store) DeleteUser(ctx context.Context, id uint) error {
	return wrap("delete user", s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ownPosts := tx.Model(&models.Post{}).Select("id").Where("author_id = ?", id)
		if err := tx.Where("author_id = ? OR post_id IN (?)", id, ownPosts).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("author_id = ?", id).Delete(&models.Post{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ? OR author_id = ?", id, id).Delete(&models.Follow{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.User{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	}))
}

// ---- comments

// CommentsForPost returns a post's comments, newest first, with authors.
func (s *Store) CommentsForPost(ctx context.Context, postID uint) ([]models.Comment, error) {
	var comments []models.Comment
	err := s.db.WithContext(ctx).Preload("Author").
		Where("post_id = ?", postID).
		Order("created DESC, id DESC").
		Find(&comments).Error
	return comments, wrap("list comments", err)
}

// CreateComment inserts a comment.
func (s *Store) CreateComment(ctx context.Context, comment *models.Comment) error {
	return wrap("create comment", s.db.WithContext(ctx).Omit(clause.Associations).Create(comment).Error)
}

// ---- follows

// Follow records that userID follows authorID. Repeating it is a no-op.
func (s *Store) Follow(ctx context.Context, userID, authorID uint) error {
	edge := models.Follow{UserID: userID, AuthorID: authorID}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "user_id"}, {Name: "author_id"}}, DoNothing: true}).
		Omit(clause.Associations).
		Create(&edge).Error
	return wrap("follow", err)
}

// Unfollow removes the edge if present.
func (s *Store) Unfollow(ctx context.Context, userID, authorID uint) error {
	err := s.db.WithContext(ctx).Where("user_id = ? AND author_id = ?", userID, authorID).Delete(&models.Follow{}).Error
	return wrap("unfollow", err)
}

// IsFollowing reports whether userID follows authorID.
func (s *Store) IsFollowing(ctx context.Context, userID, authorID uint) (bool, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.Follow{}).
		Where("user_id = ? AND author_id = ?", userID, authorID).
		Count(&n).Error
	return n > 0, wrap("check follow", err)
}
