package models

// Follow is a directed edge: User wants Author's posts in their feed.
// The (UserID, AuthorID) pair is unique; self-follow is not rejected.
type Follow struct {
	ID       uint `gorm:"primaryKey" json:"id"`
	UserID   uint `gorm:"not null;uniqueIndex:idx_follows_user_author,priority:1" json:"user_id"`
	AuthorID uint `gorm:"not null;uniqueIndex:idx_follows_user_author,priority:2;index" json:"author_id"`
	User     User `gorm:"foreignKey:UserID" json:"-"`
	Author   User `gorm:"foreignKey:AuthorID" json:"author"`
}
