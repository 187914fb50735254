// Package testutil provides a migrated SQLite database and fixtures for
// service and handler tests.
package testutil

import (
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/sujalbistaa/bookit/internal/db"
	"github.com/sujalbistaa/bookit/internal/models"
)

// NewDB opens a fresh file-backed SQLite database under t.TempDir and
// migrates every table.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bookit_test.db")
	gdb, err := db.Open("sqlite://"+path, db.Options{}, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return gdb
}

// CreateUser inserts a user with a throwaway password hash.
func CreateUser(t *testing.T, gdb *gorm.DB, username string, role models.Role) *models.User {
	t.Helper()
	user := &models.User{
		Username: username,
		Email:    username + "@bookit.local",
		Password: "not-a-real-hash",
		Role:     role,
	}
	require.NoError(t, gdb.Create(user).Error)
	return user
}

func CreateProduct(t *testing.T, gdb *gorm.DB, sellerID, title string, price int64, stock int) *models.Product {
	t.Helper()
	product := &models.Product{
		SellerID:    sellerID,
		Title:       title,
		Description: title + " description",
		Price:       decimal.NewFromInt(price),
		Category:    "notebook",
		Images:      models.Images{},
		Stock:       stock,
		IsActive:    true,
	}
	require.NoError(t, gdb.Create(product).Error)
	return product
}

func CreatePost(t *testing.T, gdb *gorm.DB, authorID, content string) *models.Post {
	t.Helper()
	post := &models.Post{AuthorID: authorID, Content: content, Images: models.Images{}}
	require.NoError(t, gdb.Create(post).Error)
	return post
}

func CreateReview(t *testing.T, gdb *gorm.DB, authorID, bookTitle string) *models.Review {
	t.Helper()
	review := &models.Review{
		AuthorID:   authorID,
		BookTitle:  bookTitle,
		BookAuthor: "Tayeb Salih",
		Rating:     5,
		Content:    "A masterclass in duality.",
		Images:     models.Images{},
	}
	require.NoError(t, gdb.Create(review).Error)
	return review
}

// Stock reads a product's current stock straight from the table.
func Stock(t *testing.T, gdb *gorm.DB, productID string) int {
	t.Helper()
	var product models.Product
	require.NoError(t, gdb.Select("stock").First(&product, "id = ?", productID).Error)
	return product.Stock
}
