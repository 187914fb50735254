package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Base is embedded by every top-level entity. IDs are server generated.
type Base struct {
	ID        string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (b *Base) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	return nil
}

// Kind tags an entity type. It is the parent type of a comment, the
// target type of a like and the target type of a report.
type Kind string

const (
	KindPost    Kind = "post"
	KindReview  Kind = "review"
	KindComment Kind = "comment"
	KindProduct Kind = "product"
	KindUser    Kind = "user"
)

func (k Kind) Valid() bool {
	switch k {
	case KindPost, KindReview, KindComment, KindProduct, KindUser:
		return true
	}
	return false
}

// Label is the capitalised name used in client messages ("Post not found").
func (k Kind) Label() string {
	switch k {
	case KindPost:
		return "Post"
	case KindReview:
		return "Review"
	case KindComment:
		return "Comment"
	case KindProduct:
		return "Product"
	case KindUser:
		return "User"
	}
	return "Target"
}

// Images is a list of opaque image URLs stored as a JSON column.
type Images = datatypes.JSONSlice[string]

// Post is a short status update on the social feed.
type Post struct {
	Base
	AuthorID      string `gorm:"type:varchar(36);not null;index" json:"authorId"`
	Author        *User  `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	Content       string `gorm:"type:text;not null" json:"content"`
	Images        Images `json:"images"`
	LikesCount    int    `gorm:"not null;default:0" json:"likesCount"`
	CommentsCount int    `gorm:"not null;default:0" json:"commentsCount"`
	ReportsCount  int    `gorm:"not null;default:0" json:"reportsCount"`
}

// Review is a book review. It shares the like/comment/report shape of Post.
type Review struct {
	Base
	AuthorID      string `gorm:"type:varchar(36);not null;index" json:"authorId"`
	Author        *User  `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	BookTitle     string `gorm:"size:255;not null" json:"bookTitle"`
	BookAuthor    string `gorm:"size:255;not null" json:"bookAuthor"`
	Rating        int    `gorm:"not null" json:"rating"`
	Content       string `gorm:"type:text;not null" json:"content"`
	Images        Images `json:"images"`
	LikesCount    int    `gorm:"not null;default:0" json:"likesCount"`
	CommentsCount int    `gorm:"not null;default:0" json:"commentsCount"`
	ReportsCount  int    `gorm:"not null;default:0" json:"reportsCount"`
}

// Comment hangs off a post, review or product. Deleting a comment through
// the owner path only sets IsDeleted; the row is kept.
type Comment struct {
	Base
	AuthorID   string `gorm:"type:varchar(36);not null;index" json:"authorId"`
	Author     *User  `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	ParentType Kind   `gorm:"size:16;not null;index:idx_comment_parent" json:"parentType"`
	ParentID   string `gorm:"type:varchar(36);not null;index:idx_comment_parent" json:"parentId"`
	Content    string `gorm:"type:text;not null" json:"content"`
	LikesCount int    `gorm:"not null;default:0" json:"likesCount"`
	IsDeleted  bool   `gorm:"not null;default:false" json:"-"`
}

// Like is one user's like on a post, review or comment. The composite key
// makes the like set a set.
type Like struct {
	UserID     string    `gorm:"type:varchar(36);primaryKey" json:"userId"`
	TargetType Kind      `gorm:"size:16;primaryKey" json:"targetType"`
	TargetID   string    `gorm:"type:varchar(36);primaryKey;index" json:"targetId"`
	CreatedAt  time.Time `json:"createdAt"`
}
