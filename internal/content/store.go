// Package content owns posts, reviews and comments together with their
// like sets and derived counters.
package content

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/sujalbistaa/bookit/internal/apperr"
	"github.com/sujalbistaa/bookit/internal/models"
)

type Service struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewService(gdb *gorm.DB, log *zap.Logger) *Service {
	return &Service{db: gdb, log: log.Named("content")}
}

// authorColumns limits preloaded authors to their public fields.
func authorColumns(db *gorm.DB) *gorm.DB {
	return db.Select("id", "username", "avatar")
}

func modelFor(kind models.Kind) (any, error) {
	switch kind {
	case models.KindPost:
		return &models.Post{}, nil
	case models.KindReview:
		return &models.Review{}, nil
	case models.KindComment:
		return &models.Comment{}, nil
	}
	return nil, apperr.Newf(apperr.ErrInvalidInput, "Unsupported content type %q", kind)
}

// Exists reports whether a post, review or live comment with id exists.
func Exists(tx *gorm.DB, kind models.Kind, id string) (bool, error) {
	model, err := modelFor(kind)
	if err != nil {
		return false, err
	}
	q := tx.Model(model).Where("id = ?", id)
	if kind == models.KindComment {
		q = q.Where("is_deleted = ?", false)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

// DeleteByID hard-deletes a post, review or comment and the likes on it.
// Comments under a deleted post or review are left in place. A missing
// row is not an error.
func DeleteByID(tx *gorm.DB, kind models.Kind, id string) error {
	model, err := modelFor(kind)
	if err != nil {
		return err
	}

	if kind == models.KindComment {
		var comment models.Comment
		err := tx.First(&comment, "id = ?", id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := tx.Delete(&models.Comment{}, "id = ?", id).Error; err != nil {
			return err
		}
		if err := deleteLikes(tx, kind, id); err != nil {
			return err
		}
		return recountComments(tx, comment.ParentType, comment.ParentID)
	}

	if err := tx.Where("id = ?", id).Delete(model).Error; err != nil {
		return err
	}
	return deleteLikes(tx, kind, id)
}

// IncrementReportCount bumps reportsCount on posts and reviews. Other
// kinds carry no report counter.
func IncrementReportCount(tx *gorm.DB, kind models.Kind, id string) error {
	var model any
	switch kind {
	case models.KindPost:
		model = &models.Post{}
	case models.KindReview:
		model = &models.Review{}
	default:
		return nil
	}
	return tx.Model(model).Where("id = ?", id).
		UpdateColumn("reports_count", gorm.Expr("reports_count + ?", 1)).Error
}

// parentExists checks a comment parent. Products are looked up directly
// since comments may hang off a catalog listing.
func parentExists(tx *gorm.DB, kind models.Kind, id string) (bool, error) {
	switch kind {
	case models.KindPost, models.KindReview:
		return Exists(tx, kind, id)
	case models.KindProduct:
		var n int64
		if err := tx.Model(&models.Product{}).Where("id = ?", id).Count(&n).Error; err != nil {
			return false, err
		}
		return n > 0, nil
	}
	return false, apperr.Invalid("parentType must be one of post, review, product")
}

// recountComments stores the number of live comments on a post or review.
func recountComments(tx *gorm.DB, parentType models.Kind, parentID string) error {
	var model any
	switch parentType {
	case models.KindPost:
		model = &models.Post{}
	case models.KindReview:
		model = &models.Review{}
	default:
		return nil
	}

	var n int64
	if err := tx.Model(&models.Comment{}).
		Where("parent_type = ? AND parent_id = ? AND is_deleted = ?", parentType, parentID, false).
		Count(&n).Error; err != nil {
		return err
	}
	return tx.Model(model).Where("id = ?", parentID).UpdateColumn("comments_count", n).Error
}

func deleteLikes(tx *gorm.DB, kind models.Kind, id string) error {
	return tx.Where("target_type = ? AND target_id = ?", kind, id).Delete(&models.Like{}).Error
}

// deleteCommentsOf removes every comment under a parent, with their likes.
func deleteCommentsOf(tx *gorm.DB, parentType models.Kind, parentID string) error {
	var ids []string
	if err := tx.Model(&models.Comment{}).
		Where("parent_type = ? AND parent_id = ?", parentType, parentID).
		Pluck("id", &ids).Error; err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}
	if err := tx.Where("target_type = ? AND target_id IN ?", models.KindComment, ids).Delete(&models.Like{}).Error; err != nil {
		return err
	}
	return tx.Where("id IN ?", ids).Delete(&models.Comment{}).Error
}

// internal logs a store failure and hides it behind a client-safe message.
func (s *Service) internal(msg string, err error) error {
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return err
	}
	s.log.Error(msg, zap.Error(err))
	return apperr.Internal(msg, err)
}

func (s *Service) transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return s.db.WithContext(ctx).Transaction(fn)
}

func notFound(kind models.Kind) error {
	return apperr.NotFound(kind.Label())
}

func first[T any](tx *gorm.DB, kind models.Kind, id string) (*T, error) {
	var out T
	err := tx.First(&out, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound(kind)
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", kind, err)
	}
	return &out, nil
}
