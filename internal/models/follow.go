package models

import (
	"time"
)

// Follow represents a directed follow edge: user follows author.
// The composite primary key makes duplicate edges impossible at the
// storage layer, so concurrent identical follow requests collapse
// into a single row.
type Follow struct {
	UserID    int64     `gorm:"primaryKey;autoIncrement:false;column:user_id"`
	AuthorID  int64     `gorm:"primaryKey;autoIncrement:false;column:author_id"`
	CreatedAt time.Time `gorm:"not null;column:created_at"`

	// Relationships
	User   *User `gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE"`
	Author *User `gorm:"foreignKey:AuthorID;references:ID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the table name for Follow
func (Follow) TableName() string {
	return "follows"
}
