// Package analytics aggregates read-only dashboard numbers for admins.
package analytics

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/sujalbistaa/bookit/internal/apperr"
	"github.com/sujalbistaa/bookit/internal/auth"
	"github.com/sujalbistaa/bookit/internal/models"
)

const (
	seriesDays = 7
	topLimit   = 5
)

type Counts struct {
	Users    int64 `json:"users"`
	Posts    int64 `json:"posts"`
	Reviews  int64 `json:"reviews"`
	Products int64 `json:"products"`
	Orders   int64 `json:"orders"`
	Comments int64 `json:"comments"`
}

// DayCount is the number of rows created on one UTC day (YYYY-MM-DD).
type DayCount struct {
	Day   string `json:"day"`
	Count int64  `json:"count"`
}

type Series struct {
	Users   []DayCount `json:"users"`
	Posts   []DayCount `json:"posts"`
	Reviews []DayCount `json:"reviews"`
	Orders  []DayCount `json:"orders"`
}

type Author struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Total    int64  `json:"total"`
}

type Dashboard struct {
	Counts      Counts           `json:"counts"`
	Series      Series           `json:"series"`
	TopAuthors  []Author         `json:"topAuthors"`
	TopProducts []models.Product `json:"topProducts"`
}

type Service struct {
	db  *gorm.DB
	log *zap.Logger
	now func() time.Time
}

func NewService(gdb *gorm.DB, log *zap.Logger) *Service {
	return &Service{db: gdb, log: log.Named("analytics"), now: time.Now}
}

func (s *Service) Dashboard(ctx context.Context, admin auth.Principal) (*Dashboard, error) {
	if err := auth.RequireAdmin(admin); err != nil {
		return nil, err
	}
	tx := s.db.WithContext(ctx)
	var d Dashboard

	counts := []struct {
		model any
		dst   *int64
	}{
		{&models.User{}, &d.Counts.Users},
		{&models.Post{}, &d.Counts.Posts},
		{&models.Review{}, &d.Counts.Reviews},
		{&models.Product{}, &d.Counts.Products},
		{&models.Order{}, &d.Counts.Orders},
		{&models.Comment{}, &d.Counts.Comments},
	}
	for _, c := range counts {
		if err := tx.Model(c.model).Count(c.dst).Error; err != nil {
			return nil, s.internal(err)
		}
	}

	series := []struct {
		model any
		dst   *[]DayCount
	}{
		{&models.User{}, &d.Series.Users},
		{&models.Post{}, &d.Series.Posts},
		{&models.Review{}, &d.Series.Reviews},
		{&models.Order{}, &d.Series.Orders},
	}
	for _, sr := range series {
		days, err := s.countByDay(tx, sr.model)
		if err != nil {
			return nil, s.internal(err)
		}
		*sr.dst = days
	}

	d.TopAuthors = []Author{}
	if err := tx.Model(&models.Post{}).
		Select("users.id AS id, users.username AS username, COUNT(posts.id) AS total").
		Joins("JOIN users ON users.id = posts.author_id").
		Group("users.id, users.username").
		Order("total DESC, users.username ASC").
		Limit(topLimit).
		Scan(&d.TopAuthors).Error; err != nil {
		return nil, s.internal(err)
	}

	d.TopProducts = []models.Product{}
	if err := tx.Order("ratings_average DESC, ratings_count DESC, created_at DESC").
		Limit(topLimit).
		Find(&d.TopProducts).Error; err != nil {
		return nil, s.internal(err)
	}
	return &d, nil
}

// countByDay buckets the rows created in the last seriesDays days,
// today included. Days with no rows are reported as zero.
func (s *Service) countByDay(tx *gorm.DB, model any) ([]DayCount, error) {
	now := s.now().UTC()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, -(seriesDays - 1))

	var stamps []time.Time
	if err := tx.Model(model).Where("created_at >= ?", start.In(time.Local)).Pluck("created_at", &stamps).Error; err != nil {
		return nil, err
	}

	byDay := make(map[string]int64, seriesDays)
	for _, ts := range stamps {
		byDay[ts.UTC().Format(time.DateOnly)]++
	}
	days := make([]DayCount, 0, seriesDays)
	for i := range seriesDays {
		day := start.AddDate(0, 0, i).Format(time.DateOnly)
		days = append(days, DayCount{Day: day, Count: byDay[day]})
	}
	return days, nil
}

func (s *Service) internal(err error) error {
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return err
	}
	s.log.Error("Failed to build analytics", zap.Error(err))
	return apperr.Internal("Failed to load analytics", err)
}
