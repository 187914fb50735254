package content

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/sujalbistaa/bookit/internal/apperr"
	"github.com/sujalbistaa/bookit/internal/auth"
	"github.com/sujalbistaa/bookit/internal/models"
)

func (s *Service) AddComment(ctx context.Context, p auth.Principal, parentType models.Kind, parentID, content string) (*models.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperr.InvalidFields("Validation failed", map[string]string{"content": "Content is required"})
	}

	comment := &models.Comment{
		AuthorID:   p.ID,
		ParentType: parentType,
		ParentID:   parentID,
		Content:    content,
	}
	err := s.transaction(ctx, func(tx *gorm.DB) error {
		ok, err := parentExists(tx, parentType, parentID)
		if err != nil {
			return err
		}
		if !ok {
			return notFound(parentType)
		}
		if err := tx.Create(comment).Error; err != nil {
			return err
		}
		return recountComments(tx, parentType, parentID)
	})
	if err != nil {
		return nil, s.internal("Failed to add comment", err)
	}
	return s.getComment(ctx, comment.ID)
}

// ListComments returns the live comments under a parent, newest first.
func (s *Service) ListComments(ctx context.Context, parentType models.Kind, parentID string) ([]models.Comment, error) {
	comments := []models.Comment{}
	err := s.db.WithContext(ctx).Preload("Author", authorColumns).
		Where("parent_type = ? AND parent_id = ? AND is_deleted = ?", parentType, parentID, false).
		Order("created_at DESC").
		Find(&comments).Error
	if err != nil {
		return nil, s.internal("Failed to list comments", err)
	}
	return comments, nil
}

func (s *Service) UpdateComment(ctx context.Context, p auth.Principal, id, content string) (*models.Comment, error) {
	content = strings.TrimSpace(content)
	err := s.transaction(ctx, func(tx *gorm.DB) error {
		comment, err := liveComment(tx, id)
		if err != nil {
			return err
		}
		if err := auth.RequireOwnerOrAdmin(p, comment.AuthorID); err != nil {
			return err
		}
		if content == "" {
			return nil
		}
		return tx.Model(comment).Update("content", content).Error
	})
	if err != nil {
		return nil, s.internal("Failed to update comment", err)
	}
	return s.getComment(ctx, id)
}

// DeleteComment soft-deletes a comment and recounts its parent.
func (s *Service) DeleteComment(ctx context.Context, p auth.Principal, id string) error {
	err := s.transaction(ctx, func(tx *gorm.DB) error {
		comment, err := liveComment(tx, id)
		if err != nil {
			return err
		}
		if err := auth.RequireOwnerOrAdmin(p, comment.AuthorID); err != nil {
			return err
		}
		if err := tx.Model(comment).Update("is_deleted", true).Error; err != nil {
			return err
		}
		return recountComments(tx, comment.ParentType, comment.ParentID)
	})
	if err != nil {
		return s.internal("Failed to delete comment", err)
	}
	return nil
}

// PurgeComment hard-deletes a comment, live or soft-deleted. Admin only.
func (s *Service) PurgeComment(ctx context.Context, admin auth.Principal, id string) error {
	if err := auth.RequireAdmin(admin); err != nil {
		return err
	}
	err := s.transaction(ctx, func(tx *gorm.DB) error {
		if _, err := first[models.Comment](tx, models.KindComment, id); err != nil {
			return err
		}
		return DeleteByID(tx, models.KindComment, id)
	})
	if err != nil {
		return s.internal("Failed to delete comment", err)
	}
	return nil
}

func (s *Service) getComment(ctx context.Context, id string) (*models.Comment, error) {
	comment, err := first[models.Comment](s.db.WithContext(ctx).Preload("Author", authorColumns), models.KindComment, id)
	if err != nil {
		return nil, s.internal("Failed to load comment", err)
	}
	return comment, nil
}

func liveComment(tx *gorm.DB, id string) (*models.Comment, error) {
	comment, err := first[models.Comment](tx, models.KindComment, id)
	if err != nil {
		return nil, err
	}
	if comment.IsDeleted {
		return nil, notFound(models.KindComment)
	}
	return comment, nil
}
