package models

import "time"

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

type Social struct {
	Website   string `gorm:"size:255" json:"website"`
	Twitter   string `gorm:"size:255" json:"twitter"`
	Instagram string `gorm:"size:255" json:"instagram"`
	Facebook  string `gorm:"size:255" json:"facebook"`
}

// User never serialises its password hash.
type User struct {
	Base
	Username string `gorm:"size:50;not null;uniqueIndex" json:"username"`
	Email    string `gorm:"size:255;not null;uniqueIndex" json:"email"`
	Password string `gorm:"not null" json:"-"`
	Role     Role   `gorm:"size:10;not null;default:user" json:"role"`
	Avatar   string `gorm:"size:512" json:"avatar"`
	Bio      string `gorm:"type:text" json:"bio"`
	Social   Social `gorm:"embedded;embeddedPrefix:social_" json:"social"`
	IsBanned bool   `gorm:"not null;default:false" json:"isBanned"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Follow is a single follower -> following edge. A user's followers are
// the rows where they are FollowingID, their following set the rows where
// they are FollowerID.
type Follow struct {
	FollowerID  string    `gorm:"type:varchar(36);primaryKey" json:"followerId"`
	FollowingID string    `gorm:"type:varchar(36);primaryKey;index" json:"followingId"`
	CreatedAt   time.Time `json:"createdAt"`
}

type SavedPost struct {
	UserID    string    `gorm:"type:varchar(36);primaryKey" json:"userId"`
	PostID    string    `gorm:"type:varchar(36);primaryKey" json:"postId"`
	CreatedAt time.Time `json:"createdAt"`
}
