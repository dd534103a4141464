package models

import (
	"time"

	"gorm.io/gorm"
)

// Comment represents a reply to a post.
type Comment struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	PostID   *uint     `gorm:"index" json:"post_id"`
	AuthorID uint      `gorm:"index;not null" json:"author_id"`
	Text     string    `gorm:"type:text;not null" json:"text"`
	Created  time.Time `gorm:"not null" json:"created"`
	Author   User      `gorm:"foreignKey:AuthorID" json:"author"`
}

func (c *Comment) BeforeCreate(tx *gorm.DB) error {
	if c.Created.IsZero() {
		c.Created = time.Now().UTC()
	}
	return nil
}
