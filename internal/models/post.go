package models

import (
	"database/sql"
	"time"
)

// Post represents a single authored entry, optionally grouped
// and illustrated with an image
type Post struct {
	ID       int64          `gorm:"primaryKey;autoIncrement;column:id"`
	Text     string         `gorm:"type:text;not null;column:text"`
	PubDate  time.Time      `gorm:"not null;index;column:pub_date"`
	AuthorID int64          `gorm:"not null;index;column:author_id"`
	GroupID  sql.NullInt64  `gorm:"column:group_id"`
	Image    sql.NullString `gorm:"type:varchar(255);column:image"`

	// Relationships
	Author *User  `gorm:"foreignKey:AuthorID;references:ID;constraint:OnDelete:CASCADE"`
	Group  *Group `gorm:"foreignKey:GroupID;references:ID;constraint:OnDelete:SET NULL"`
}

// TableName specifies the table name for Post
func (Post) TableName() string {
	return "posts"
}
