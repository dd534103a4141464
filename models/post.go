package models

import (
	"time"

	"gorm.io/gorm"
)

// postPreviewRunes bounds the text returned by Post.String.
const postPreviewRunes = 10

// Post is a blog entry. PubDate is set once on insert and never updated.
type Post struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	Text     string    `gorm:"type:text;not null" json:"text"`
	PubDate  time.Time `gorm:"not null;index;index:idx_posts_author_pub_date,priority:2;index:idx_posts_group_pub_date,priority:2" json:"pub_date"`
	AuthorID uint      `gorm:"not null;index:idx_posts_author_pub_date,priority:1" json:"author_id"`
	GroupID  *uint     `gorm:"index:idx_posts_group_pub_date,priority:1" json:"group_id"`
	Image    string    `gorm:"size:255" json:"image,omitempty"`
	ImageURL string    `gorm:"-" json:"image_url,omitempty"`
	Author   User      `gorm:"foreignKey:AuthorID" json:"author"`
	Group    *Group    `gorm:"foreignKey:GroupID" json:"group"`
}

// BeforeCreate stamps the publication date.
func (p *Post) BeforeCreate(tx *gorm.DB) error {
	if p.PubDate.IsZero() {
		p.PubDate = time.Now().UTC()
	}
	return nil
}

func (p Post) String() string {
	r := []rune(p.Text)
	if len(r) > postPreviewRunes {
		r = r[:postPreviewRunes]
	}
	return string(r)
}
