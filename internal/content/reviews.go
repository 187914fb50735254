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

type ReviewInput struct {
	BookTitle  string
	BookAuthor string
	Rating     int
	Content    string
	Images     []string
}

type ReviewPatch struct {
	BookTitle  *string
	BookAuthor *string
	Rating     *int
	Content    *string
	Images     []string
}

func validRating(r int) bool {
	return r >= 1 && r <= 5
}

func (in ReviewInput) validate() error {
	fields := map[string]string{}
	if strings.TrimSpace(in.BookTitle) == "" {
		fields["bookTitle"] = "Book title is required"
	}
	if strings.TrimSpace(in.BookAuthor) == "" {
		fields["bookAuthor"] = "Book author is required"
	}
	if !validRating(in.Rating) {
		fields["rating"] = "Rating must be between 1 and 5"
	}
	if strings.TrimSpace(in.Content) == "" {
		fields["content"] = "Content is required"
	}
	if len(fields) > 0 {
		return apperr.InvalidFields("Validation failed", fields)
	}
	return nil
}

func (s *Service) CreateReview(ctx context.Context, p auth.Principal, in ReviewInput) (*models.Review, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	review := &models.Review{
		AuthorID:   p.ID,
		BookTitle:  strings.TrimSpace(in.BookTitle),
		BookAuthor: strings.TrimSpace(in.BookAuthor),
		Rating:     in.Rating,
		Content:    strings.TrimSpace(in.Content),
		Images:     imagesOf(in.Images),
	}
	if err := s.db.WithContext(ctx).Create(review).Error; err != nil {
		return nil, s.internal("Failed to create review", err)
	}
	return s.GetReview(ctx, review.ID)
}

func (s *Service) ListReviews(ctx context.Context, sort string, page pagination.Page) ([]models.Review, int64, error) {
	var total int64
	if err := s.db.WithContext(ctx).Model(&models.Review{}).Count(&total).Error; err != nil {
		return nil, 0, s.internal("Failed to list reviews", err)
	}
	reviews := []models.Review{}
	err := s.db.WithContext(ctx).Preload("Author", authorColumns).
		Order(orderFor(sort)).Offset(page.Offset()).Limit(page.Limit).
		Find(&reviews).Error
	if err != nil {
		return nil, 0, s.internal("Failed to list reviews", err)
	}
	return reviews, total, nil
}

func (s *Service) ListReviewsByAuthor(ctx context.Context, authorID string, page pagination.Page) ([]models.Review, int64, error) {
	var total int64
	if err := s.db.WithContext(ctx).Model(&models.Review{}).Where("author_id = ?", authorID).Count(&total).Error; err != nil {
		return nil, 0, s.internal("Failed to list reviews", err)
	}
	reviews := []models.Review{}
	err := s.db.WithContext(ctx).Preload("Author", authorColumns).
		Where("author_id = ?", authorID).
		Order("created_at DESC").Offset(page.Offset()).Limit(page.Limit).
		Find(&reviews).Error
	if err != nil {
		return nil, 0, s.internal("Failed to list reviews", err)
	}
	return reviews, total, nil
}

func (s *Service) GetReview(ctx context.Context, id string) (*models.Review, error) {
	review, err := first[models.Review](s.db.WithContext(ctx).Preload("Author", authorColumns), models.KindReview, id)
	if err != nil {
		return nil, s.internal("Failed to load review", err)
	}
	return review, nil
}

func (s *Service) UpdateReview(ctx context.Context, p auth.Principal, id string, patch ReviewPatch) (*models.Review, error) {
	err := s.transaction(ctx, func(tx *gorm.DB) error {
		review, err := first[models.Review](tx, models.KindReview, id)
		if err != nil {
			return err
		}
		if err := auth.RequireOwnerOrAdmin(p, review.AuthorID); err != nil {
			return err
		}

		merged := ReviewInput{
			BookTitle:  deref(patch.BookTitle, review.BookTitle),
			BookAuthor: deref(patch.BookAuthor, review.BookAuthor),
			Rating:     deref(patch.Rating, review.Rating),
			Content:    deref(patch.Content, review.Content),
		}
		if err := merged.validate(); err != nil {
			return err
		}

		updates := map[string]any{
			"book_title":  strings.TrimSpace(merged.BookTitle),
			"book_author": strings.TrimSpace(merged.BookAuthor),
			"rating":      merged.Rating,
			"content":     strings.TrimSpace(merged.Content),
		}
		if patch.Images != nil {
			updates["images"] = imagesOf(patch.Images)
		}
		return tx.Model(review).Updates(updates).Error
	})
	if err != nil {
		return nil, s.internal("Failed to update review", err)
	}
	return s.GetReview(ctx, id)
}

// DeleteReview removes a review together with its comments and likes.
func (s *Service) DeleteReview(ctx context.Context, p auth.Principal, id string) error {
	err := s.transaction(ctx, func(tx *gorm.DB) error {
		review, err := first[models.Review](tx, models.KindReview, id)
		if err != nil {
			return err
		}
		if err := auth.RequireOwnerOrAdmin(p, review.AuthorID); err != nil {
			return err
		}
		if err := deleteCommentsOf(tx, models.KindReview, id); err != nil {
			return err
		}
		return DeleteByID(tx, models.KindReview, id)
	})
	if err != nil {
		return s.internal("Failed to delete review", err)
	}
	return nil
}

func deref[T any](v *T, fallback T) T {
	if v == nil {
		return fallback
	}
	return *v
}
