// Package catalog owns marketplace products, their embedded buyer reviews
// and the stock counter that checkout draws down.
package catalog

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sujalbistaa/bookit/internal/apperr"
	"github.com/sujalbistaa/bookit/internal/auth"
	"github.com/sujalbistaa/bookit/internal/db"
	"github.com/sujalbistaa/bookit/internal/models"
	"github.com/sujalbistaa/bookit/internal/pagination"
)

type Service struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewService(gdb *gorm.DB, log *zap.Logger) *Service {
	return &Service{db: gdb, log: log.Named("catalog")}
}

type ProductInput struct {
	Title       string
	Description string
	Price       decimal.Decimal
	Category    string
	Images      []string
	Stock       int
}

// ProductPatch leaves nil fields untouched.
type ProductPatch struct {
	Title       *string
	Description *string
	Price       *decimal.Decimal
	Category    *string
	Images      []string
	Stock       *int
	IsActive    *bool
}

type ListFilter struct {
	Category string
	Query    string
	Sort     string
	Page     pagination.Page
}

func sellerColumns(db *gorm.DB) *gorm.DB {
	return db.Select("id", "username", "avatar")
}

func validate(title, description, category string, price decimal.Decimal, stock int) error {
	fields := map[string]string{}
	if strings.TrimSpace(title) == "" {
		fields["title"] = "Title is required"
	}
	if strings.TrimSpace(description) == "" {
		fields["description"] = "Description is required"
	}
	if strings.TrimSpace(category) == "" {
		fields["category"] = "Category is required"
	}
	if price.IsNegative() {
		fields["price"] = "Price must be zero or more"
	}
	if stock < 0 {
		fields["stock"] = "Stock must be zero or more"
	}
	if len(fields) > 0 {
		return apperr.InvalidFields("Validation failed", fields)
	}
	return nil
}

func (s *Service) Create(ctx context.Context, p auth.Principal, in ProductInput) (*models.Product, error) {
	if err := validate(in.Title, in.Description, in.Category, in.Price, in.Stock); err != nil {
		return nil, err
	}
	images := models.Images{}
	if in.Images != nil {
		images = models.Images(in.Images)
	}
	product := &models.Product{
		SellerID:    p.ID,
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		Price:       in.Price.Round(2),
		Category:    strings.TrimSpace(in.Category),
		Images:      images,
		Stock:       in.Stock,
		IsActive:    true,
	}
	if err := s.db.WithContext(ctx).Create(product).Error; err != nil {
		return nil, s.internal("Failed to create product", err)
	}
	return s.Get(ctx, product.ID)
}

func (s *Service) List(ctx context.Context, f ListFilter) ([]models.Product, int64, error) {
	filtered := func(q *gorm.DB) *gorm.DB {
		if f.Category != "" {
			q = q.Where("category = ?", f.Category)
		}
		if term := strings.TrimSpace(f.Query); term != "" {
			like := "%" + strings.ToLower(term) + "%"
			q = q.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", like, like)
		}
		return q
	}

	var total int64
	if err := filtered(s.db.WithContext(ctx).Model(&models.Product{})).Count(&total).Error; err != nil {
		return nil, 0, s.internal("Failed to list products", err)
	}

	order := "created_at DESC"
	if f.Sort == "price" {
		order = "price ASC, created_at DESC"
	}
	products := []models.Product{}
	err := filtered(s.db.WithContext(ctx).Preload("Seller", sellerColumns)).
		Order(order).Offset(f.Page.Offset()).Limit(f.Page.Limit).
		Find(&products).Error
	if err != nil {
		return nil, 0, s.internal("Failed to list products", err)
	}
	return products, total, nil
}

func (s *Service) ListBySeller(ctx context.Context, sellerID string, page pagination.Page) ([]models.Product, int64, error) {
	var total int64
	if err := s.db.WithContext(ctx).Model(&models.Product{}).Where("seller_id = ?", sellerID).Count(&total).Error; err != nil {
		return nil, 0, s.internal("Failed to list products", err)
	}
	products := []models.Product{}
	err := s.db.WithContext(ctx).Preload("Seller", sellerColumns).
		Where("seller_id = ?", sellerID).
		Order("created_at DESC").Offset(page.Offset()).Limit(page.Limit).
		Find(&products).Error
	if err != nil {
		return nil, 0, s.internal("Failed to list products", err)
	}
	return products, total, nil
}

// Get loads a product with its seller and buyer reviews.
func (s *Service) Get(ctx context.Context, id string) (*models.Product, error) {
	var product models.Product
	err := s.db.WithContext(ctx).
		Preload("Seller", sellerColumns).
		Preload("Reviews", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Preload("Reviews.User", sellerColumns).
		First(&product, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("Product")
	}
	if err != nil {
		return nil, s.internal("Failed to load product", err)
	}
	return &product, nil
}

// Update edits a listing. The row is locked for the duration so a restock
// cannot interleave with a checkout drawing on the same product.
func (s *Service) Update(ctx context.Context, p auth.Principal, id string, patch ProductPatch) (*models.Product, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		product, err := lockOne(tx, id)
		if err != nil {
			return err
		}
		if err := auth.RequireOwnerOrAdmin(p, product.SellerID); err != nil {
			return err
		}

		title := deref(patch.Title, product.Title)
		description := deref(patch.Description, product.Description)
		category := deref(patch.Category, product.Category)
		price := deref(patch.Price, product.Price)
		stock := deref(patch.Stock, product.Stock)
		if err := validate(title, description, category, price, stock); err != nil {
			return err
		}

		updates := map[string]any{
			"title":       strings.TrimSpace(title),
			"description": strings.TrimSpace(description),
			"category":    strings.TrimSpace(category),
			"price":       price.Round(2),
			"stock":       stock,
		}
		if patch.Images != nil {
			updates["images"] = models.Images(patch.Images)
		}
		if patch.IsActive != nil {
			updates["is_active"] = *patch.IsActive
		}
		return tx.Model(product).Updates(updates).Error
	})
	if err != nil {
		return nil, s.internal("Failed to update product", err)
	}
	return s.Get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, p auth.Principal, id string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		product, err := lockOne(tx, id)
		if err != nil {
			return err
		}
		if err := auth.RequireOwnerOrAdmin(p, product.SellerID); err != nil {
			return err
		}
		return DeleteByID(tx, id)
	})
	if err != nil {
		return s.internal("Failed to delete product", err)
	}
	return nil
}

// AddReview appends p's rating to a product and recomputes the derived
// ratingsAverage and ratingsCount. A second review by the same user is a
// Conflict.
func (s *Service) AddReview(ctx context.Context, p auth.Principal, id string, rating int, comment string) (*models.Product, error) {
	if rating < 1 || rating > 5 {
		return nil, apperr.InvalidFields("Validation failed", map[string]string{"rating": "Rating must be between 1 and 5"})
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := lockOne(tx, id); err != nil {
			return err
		}

		var existing int64
		if err := tx.Model(&models.ProductReview{}).
			Where("product_id = ? AND user_id = ?", id, p.ID).
			Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return apperr.Conflict("Already reviewed")
		}

		review := &models.ProductReview{ProductID: id, UserID: p.ID, Rating: rating, Comment: strings.TrimSpace(comment)}
		if err := tx.Create(review).Error; err != nil {
			if db.IsUniqueViolation(err) {
				return apperr.Conflict("Already reviewed")
			}
			return err
		}
		return recomputeRatings(tx, id)
	})
	if err != nil {
		return nil, s.internal("Failed to add review", err)
	}
	return s.Get(ctx, id)
}

func recomputeRatings(tx *gorm.DB, productID string) error {
	var agg struct {
		Total     int64
		RatingSum int64
	}
	if err := tx.Model(&models.ProductReview{}).
		Select("COUNT(*) AS total, COALESCE(SUM(rating), 0) AS rating_sum").
		Where("product_id = ?", productID).
		Scan(&agg).Error; err != nil {
		return err
	}
	return tx.Model(&models.Product{}).Where("id = ?", productID).UpdateColumns(map[string]any{
		"ratings_count":   agg.Total,
		"ratings_average": averageRating(agg.RatingSum, agg.Total),
	}).Error
}

// averageRating is sum/count rounded half away from zero to two places.
func averageRating(sum, count int64) float64 {
	if count == 0 {
		return 0
	}
	return decimal.NewFromInt(sum).DivRound(decimal.NewFromInt(count), 2).InexactFloat64()
}

func lockOne(tx *gorm.DB, id string) (*models.Product, error) {
	var product models.Product
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&product, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("Product")
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (s *Service) internal(msg string, err error) error {
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return err
	}
	s.log.Error(msg, zap.Error(err))
	return apperr.Internal(msg, err)
}

func deref[T any](v *T, fallback T) T {
	if v == nil {
		return fallback
	}
	return *v
}
