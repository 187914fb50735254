package users

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sujalbistaa/bookit/internal/apperr"
	"github.com/sujalbistaa/bookit/internal/auth"
	"github.com/sujalbistaa/bookit/internal/models"
)

// SavePost adds a post to p's saved set. Saving twice is a no-op.
func (s *Service) SavePost(ctx context.Context, p auth.Principal, postID string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&models.Post{}).Where("id = ?", postID).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return apperr.NotFound("Post")
		}
		saved := models.SavedPost{UserID: p.ID, PostID: postID}
		return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&saved).Error
	})
	if err != nil {
		return s.internal("Failed to save post", err)
	}
	return nil
}

func (s *Service) UnsavePost(ctx context.Context, p auth.Principal, postID string) error {
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND post_id = ?", p.ID, postID).
		Delete(&models.SavedPost{}).Error
	if err != nil {
		return s.internal("Failed to unsave post", err)
	}
	return nil
}

// SavedPosts lists the posts p saved, most recently saved first. Saves of
// posts that no longer exist are skipped.
func (s *Service) SavedPosts(ctx context.Context, p auth.Principal) ([]models.Post, error) {
	posts := []models.Post{}
	err := s.db.WithContext(ctx).
		Preload("Author", func(db *gorm.DB) *gorm.DB { return db.Select("id", "username", "avatar") }).
		Joins("JOIN saved_posts ON saved_posts.post_id = posts.id").
		Where("saved_posts.user_id = ?", p.ID).
		Order("saved_posts.created_at DESC").
		Find(&posts).Error
	if err != nil {
		return nil, s.internal("Failed to list saved posts", err)
	}
	return posts, nil
}
