package store

import (
	"context"

	"gorm.io/gorm"

	"github.com/yatube/yatube/models"
)

// Sequence is an ordered, lazily evaluated list of posts. Nothing is read
// until Count or Slice is called, and Slice reads only the requested window.
type Sequence interface {
	Count(ctx context.Context) (int64, error)
	Slice(ctx context.Context, offset, limit int) ([]models.Post, error)
}

// feedOrder is the global post ordering: newest first, id breaks ties.
const feedOrder = "pub_date DESC, id DESC"

// PostQuery is the gorm backed Sequence.
type PostQuery struct {
	db    *gorm.DB
	scope func(*gorm.DB) *gorm.DB
}

func (q *PostQuery) base(ctx context.Context) *gorm.DB {
	tx := q.db.WithContext(ctx).Model(&models.Post{})
	if q.scope != nil {
		tx = q.scope(tx)
	}
	return tx
}

// Count returns the number of posts in the sequence.
func (q *PostQuery) Count(ctx context.Context) (int64, error) {
	var n int64
	err := q.base(ctx).Count(&n).Error
	return n, wrap("count posts", err)
}

// Slice returns up to limit posts starting at offset, with author and group loaded.
func (q *PostQuery) Slice(ctx context.Context, offset, limit int) ([]models.Post, error) {
	posts := []models.Post{}
	err := q.base(ctx).
		Preload("Author").
		Preload("Group").
		Order(feedOrder).
		Offset(offset).
		Limit(limit).
		Find(&posts).Error
	return posts, wrap("list posts", err)
}

// SliceSequence is an in-memory Sequence over already ordered posts.
type SliceSequence []models.Post

// Count returns len(s).
func (s SliceSequence) Count(context.Context) (int64, error) {
	return int64(len(s)), nil
}

// Slice returns the window [offset, offset+limit) clipped to the slice bounds.
func (s SliceSequence) Slice(_ context.Context, offset, limit int) ([]models.Post, error) {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(s) || limit <= 0 {
		return []models.Post{}, nil
	}
	end := offset + limit
	if end > len(s) {
		end = len(s)
	}
	out := make([]models.Post, end-offset)
	copy(out, s[offset:end])
	return out, nil
}
