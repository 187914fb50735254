package content

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/sujalbistaa/bookit/internal/apperr"
	"github.com/sujalbistaa/bookit/internal/auth"
	"github.com/sujalbistaa/bookit/internal/models"
	"github.com/sujalbistaa/bookit/internal/pagination"
)

type PostInput struct {
	Content string
	Images  []string
}

// PostPatch leaves nil fields untouched.
type PostPatch struct {
	Content *string
	Images  []string
}

func orderFor(sort string) string {
	if sort == "top" {
		return "likes_count DESC, created_at DESC"
	}
	return "created_at DESC"
}

func (s *Service) CreatePost(ctx context.Context, p auth.Principal, in PostInput) (*models.Post, error) {
	content := strings.TrimSpace(in.Content)
	if content == "" {
		return nil, apperr.InvalidFields("Validation failed", map[string]string{"content": "Content is required"})
	}
	post := &models.Post{AuthorID: p.ID, Content: content, Images: imagesOf(in.Images)}
	if err := s.db.WithContext(ctx).Create(post).Error; err != nil {
		return nil, s.internal("Failed to create post", err)
	}
	return s.GetPost(ctx, post.ID)
}

func (s *Service) ListPosts(ctx context.Context, sort string, page pagination.Page) ([]models.Post, int64, error) {
	var total int64
	if err := s.db.WithContext(ctx).Model(&models.Post{}).Count(&total).Error; err != nil {
		return nil, 0, s.internal("Failed to list posts", err)
	}
	posts := []models.Post{}
	err := s.db.WithContext(ctx).Preload("Author", authorColumns).
		Order(orderFor(sort)).Offset(page.Offset()).Limit(page.Limit).
		Find(&posts).Error
	if err != nil {
		return nil, 0, s.internal("Failed to list posts", err)
	}
	return posts, total, nil
}

func (s *Service) ListPostsByAuthor(ctx context.Context, authorID string, page pagination.Page) ([]models.Post, int64, error) {
	q := s.db.WithContext(ctx).Model(&models.Post{}).Where("author_id = ?", authorID)
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, s.internal("Failed to list posts", err)
	}
	posts := []models.Post{}
	err := s.db.WithContext(ctx).Preload("Author", authorColumns).
		Where("author_id = ?", authorID).
		Order("created_at DESC").Offset(page.Offset()).Limit(page.Limit).
		Find(&posts).Error
	if err != nil {
		return nil, 0, s.internal("Failed to list posts", err)
	}
	return posts, total, nil
}

func (s *Service) GetPost(ctx context.Context, id string) (*models.Post, error) {
	post, err := first[models.Post](s.db.WithContext(ctx).Preload("Author", authorColumns), models.KindPost, id)
	if err != nil {
		return nil, s.internal("Failed to load post", err)
	}
	return post, nil
}

func (s *Service) UpdatePost(ctx context.Context, p auth.Principal, id string, patch PostPatch) (*models.Post, error) {
	err := s.transaction(ctx, func(tx *gorm.DB) error {
		post, err := first[models.Post](tx, models.KindPost, id)
		if err != nil {
			return err
		}
		if err := auth.RequireOwnerOrAdmin(p, post.AuthorID); err != nil {
			return err
		}

		updates := map[string]any{}
		if patch.Content != nil {
			content := strings.TrimSpace(*patch.Content)
			if content == "" {
				return apperr.InvalidFields("Validation failed", map[string]string{"content": "Content cannot be empty"})
			}
			updates["content"] = content
		}
		if patch.Images != nil {
			updates["images"] = imagesOf(patch.Images)
		}
		if len(updates) == 0 {
			return nil
		}
		return tx.Model(post).Updates(updates).Error
	})
	if err != nil {
		return nil, s.internal("Failed to update post", err)
	}
	return s.GetPost(ctx, id)
}

// DeletePost removes a post together with its comments, likes and saves.
func (s *Service) DeletePost(ctx context.Context, p auth.Principal, id string) error {
	err := s.transaction(ctx, func(tx *gorm.DB) error {
		post, err := first[models.Post](tx, models.KindPost, id)
		if err != nil {
			return err
		}
		if err := auth.RequireOwnerOrAdmin(p, post.AuthorID); err != nil {
			return err
		}
		if err := deleteCommentsOf(tx, models.KindPost, id); err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.SavedPost{}).Error; err != nil {
			return err
		}
		return DeleteByID(tx, models.KindPost, id)
	})
	if err != nil {
		return s.internal("Failed to delete post", err)
	}
	return nil
}

func imagesOf(urls []string) models.Images {
	if urls == nil {
		return models.Images{}
	}
	return models.Images(urls)
}
