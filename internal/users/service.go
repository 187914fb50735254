// Package users owns profiles, the follow graph, saved posts and the
// account ban flag.
package users

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sujalbistaa/bookit/internal/apperr"
	"github.com/sujalbistaa/bookit/internal/auth"
	"github.com/sujalbistaa/bookit/internal/db"
	"github.com/sujalbistaa/bookit/internal/models"
)

type Service struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewService(gdb *gorm.DB, log *zap.Logger) *Service {
	return &Service{db: gdb, log: log.Named("users")}
}

type Stats struct {
	Posts     int64 `json:"posts"`
	Reviews   int64 `json:"reviews"`
	Products  int64 `json:"products"`
	Followers int64 `json:"followers"`
	Following int64 `json:"following"`
}

type Profile struct {
	User  *models.User `json:"user"`
	Stats Stats        `json:"stats"`
}

// ProfilePatch leaves nil fields untouched.
type ProfilePatch struct {
	Username *string
	Email    *string
	Avatar   *string
	Bio      *string
	Social   *models.Social
}

func (s *Service) Get(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("User")
	}
	if err != nil {
		return nil, s.internal("Failed to load user", err)
	}
	return &user, nil
}

func (s *Service) Profile(ctx context.Context, id string) (*Profile, error) {
	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	var stats Stats
	counts := []struct {
		model any
		where string
		dst   *int64
	}{
		{&models.Post{}, "author_id = ?", &stats.Posts},
		{&models.Review{}, "author_id = ?", &stats.Reviews},
		{&models.Product{}, "seller_id = ?", &stats.Products},
		{&models.Follow{}, "following_id = ?", &stats.Followers},
		{&models.Follow{}, "follower_id = ?", &stats.Following},
	}
	for _, c := range counts {
		if err := s.db.WithContext(ctx).Model(c.model).Where(c.where, id).Count(c.dst).Error; err != nil {
			return nil, s.internal("Failed to load profile", err)
		}
	}
	return &Profile{User: user, Stats: stats}, nil
}

// UpdateProfile edits the caller's own account. Taking a username or email
// already in use by someone else is a Conflict.
func (s *Service) UpdateProfile(ctx context.Context, p auth.Principal, patch ProfilePatch) (*models.User, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, "id = ?", p.ID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("User")
			}
			return err
		}

		updates := map[string]any{}
		if patch.Username != nil {
			username := strings.TrimSpace(*patch.Username)
			if len(username) < 3 {
				return apperr.InvalidFields("Validation failed", map[string]string{"username": "Username must be at least 3 characters"})
			}
			if username != user.Username {
				if taken, err := taken(tx, "username", username, user.ID); err != nil {
					return err
				} else if taken {
					return apperr.Conflict("Username already taken")
				}
				updates["username"] = username
			}
		}
		if patch.Email != nil {
			email := auth.NormalizeEmail(*patch.Email)
			if email == "" {
				return apperr.InvalidFields("Validation failed", map[string]string{"email": "Email is required"})
			}
			if email != user.Email {
				if taken, err := taken(tx, "email", email, user.ID); err != nil {
					return err
				} else if taken {
					return apperr.Conflict("Email already in use")
				}
				updates["email"] = email
			}
		}
		if patch.Avatar != nil {
			updates["avatar"] = strings.TrimSpace(*patch.Avatar)
		}
		if patch.Bio != nil {
			updates["bio"] = strings.TrimSpace(*patch.Bio)
		}
		if patch.Social != nil {
			updates["social_website"] = patch.Social.Website
			updates["social_twitter"] = patch.Social.Twitter
			updates["social_instagram"] = patch.Social.Instagram
			updates["social_facebook"] = patch.Social.Facebook
		}
		if len(updates) == 0 {
			return nil
		}
		if err := tx.Model(&user).Updates(updates).Error; err != nil {
			if db.IsUniqueViolation(err) {
				return apperr.Conflict("Username or email already in use")
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, s.internal("Failed to update profile", err)
	}
	return s.Get(ctx, p.ID)
}

func taken(tx *gorm.DB, column, value, exceptID string) (bool, error) {
	var n int64
	err := tx.Model(&models.User{}).Where(column+" = ? AND id <> ?", value, exceptID).Count(&n).Error
	return n > 0, err
}

func (s *Service) Follow(ctx context.Context, p auth.Principal, targetID string) error {
	return s.setFollow(ctx, p, targetID, true)
}

func (s *Service) Unfollow(ctx context.Context, p auth.Principal, targetID string) error {
	return s.setFollow(ctx, p, targetID, false)
}

// setFollow adds or removes the single p -> target edge. The edge feeds
// both p's following set and target's followers set.
func (s *Service) setFollow(ctx context.Context, p auth.Principal, targetID string, follow bool) error {
	if targetID == p.ID {
		if follow {
			return apperr.Invalid("Cannot follow yourself")
		}
		return apperr.Invalid("Cannot unfollow yourself")
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ok, err := Exists(tx, targetID)
		if err != nil {
			return err
		}
		if !ok {
			return apperr.NotFound("User")
		}
		edge := models.Follow{FollowerID: p.ID, FollowingID: targetID}
		if follow {
			return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&edge).Error
		}
		return tx.Where("follower_id = ? AND following_id = ?", p.ID, targetID).Delete(&models.Follow{}).Error
	})
	if err != nil {
		return s.internal("Failed to update follow", err)
	}
	return nil
}

func (s *Service) IsFollowing(ctx context.Context, followerID, followingID string) (bool, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.Follow{}).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Count(&n).Error
	if err != nil {
		return false, s.internal("Failed to load follow", err)
	}
	return n > 0, nil
}

// ListFilter matches q against username or email, case-insensitively.
type ListFilter struct {
	Query string
	Role  models.Role
}

// List is the admin user directory, newest first.
func (s *Service) List(ctx context.Context, admin auth.Principal, f ListFilter) ([]models.User, error) {
	if err := auth.RequireAdmin(admin); err != nil {
		return nil, err
	}
	q := s.db.WithContext(ctx).Model(&models.User{})
	if f.Role != "" {
		q = q.Where("role = ?", f.Role)
	}
	if term := strings.TrimSpace(f.Query); term != "" {
		like := "%" + strings.ToLower(term) + "%"
		q = q.Where("LOWER(username) LIKE ? OR LOWER(email) LIKE ?", like, like)
	}
	users := []models.User{}
	if err := q.Order("created_at DESC").Find(&users).Error; err != nil {
		return nil, s.internal("Failed to list users", err)
	}
	return users, nil
}

// ToggleBan flips a user's ban flag and returns the updated user.
func (s *Service) ToggleBan(ctx context.Context, admin auth.Principal, id string) (*models.User, error) {
	if err := auth.RequireAdmin(admin); err != nil {
		return nil, err
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&user, "id = ?", id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("User")
		}
		if err != nil {
			return err
		}
		return SetBanned(tx, id, !user.IsBanned)
	})
	if err != nil {
		return nil, s.internal("Failed to update ban", err)
	}
	user, err := s.Get(ctx, id)
	if err == nil {
		s.log.Info("Ban toggled", zap.String("user_id", id), zap.Bool("banned", user.IsBanned), zap.String("admin_id", admin.ID))
	}
	return user, err
}

func Exists(tx *gorm.DB, id string) (bool, error) {
	var n int64
	if err := tx.Model(&models.User{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

// SetBanned writes the ban flag. Setting it to its current value is a
// no-op, so repeated bans are safe.
func SetBanned(tx *gorm.DB, id string, banned bool) error {
	return tx.Model(&models.User{}).Where("id = ?", id).Update("is_banned", banned).Error
}

func (s *Service) internal(msg string, err error) error {
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return err
	}
	s.log.Error(msg, zap.Error(err))
	return apperr.Internal(msg, err)
}
