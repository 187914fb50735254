package content

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sujalbistaa/bookit/internal/auth"
	"github.com/sujalbistaa/bookit/internal/models"
)

// Like adds p to the like set of a post, review or comment and returns the
// recomputed likesCount. Liking twice is a no-op.
func (s *Service) Like(ctx context.Context, p auth.Principal, kind models.Kind, id string) (int, error) {
	return s.toggleLike(ctx, p, kind, id, true)
}

func (s *Service) Unlike(ctx context.Context, p auth.Principal, kind models.Kind, id string) (int, error) {
	return s.toggleLike(ctx, p, kind, id, false)
}

func (s *Service) toggleLike(ctx context.Context, p auth.Principal, kind models.Kind, id string, like bool) (int, error) {
	var count int
	err := s.transaction(ctx, func(tx *gorm.DB) error {
		ok, err := Exists(tx, kind, id)
		if err != nil {
			return err
		}
		if !ok {
			return notFound(kind)
		}

		row := models.Like{UserID: p.ID, TargetType: kind, TargetID: id}
		if like {
			err = tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error
		} else {
			err = tx.Where("user_id = ? AND target_type = ? AND target_id = ?", p.ID, kind, id).
				Delete(&models.Like{}).Error
		}
		if err != nil {
			return err
		}

		count, err = recountLikes(tx, kind, id)
		return err
	})
	if err != nil {
		return 0, s.internal("Failed to update like", err)
	}
	return count, nil
}

// HasLiked reports whether userID is in the like set of a target.
func (s *Service) HasLiked(ctx context.Context, userID string, kind models.Kind, id string) (bool, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.Like{}).
		Where("user_id = ? AND target_type = ? AND target_id = ?", userID, kind, id).
		Count(&n).Error
	if err != nil {
		return false, s.internal("Failed to load like", err)
	}
	return n > 0, nil
}

func recountLikes(tx *gorm.DB, kind models.Kind, id string) (int, error) {
	model, err := modelFor(kind)
	if err != nil {
		return 0, err
	}
	var n int64
	if err := tx.Model(&models.Like{}).Where("target_type = ? AND target_id = ?", kind, id).Count(&n).Error; err != nil {
		return 0, err
	}
	if err := tx.Model(model).Where("id = ?", id).UpdateColumn("likes_count", n).Error; err != nil {
		return 0, err
	}
	return int(n), nil
}
