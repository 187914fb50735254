package catalog

import (
	"slices"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sujalbistaa/bookit/internal/apperr"
	"github.com/sujalbistaa/bookit/internal/models"
)

// LockForCheckout reads the given products under a row lock and returns
// them keyed by id. Locks are taken in id order so two checkouts over
// overlapping carts cannot deadlock. Missing ids are simply absent from
// the result.
func LockForCheckout(tx *gorm.DB, ids []string) (map[string]models.Product, error) {
	sorted := slices.Clone(ids)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)

	var products []models.Product
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id IN ?", sorted).
		Order("id").
		Find(&products).Error; err != nil {
		return nil, err
	}

	byID := make(map[string]models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	return byID, nil
}

// DecrementStock takes qty units from a product. The update is
// conditional on enough stock remaining, so stock never goes negative even
// when the row was not locked first.
func DecrementStock(tx *gorm.DB, id string, qty int) error {
	if qty < 1 {
		return apperr.Invalid("Quantity must be at least 1")
	}
	res := tx.Model(&models.Product{}).
		Where("id = ? AND stock >= ?", id, qty).
		UpdateColumn("stock", gorm.Expr("stock - ?", qty))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.Newf(apperr.ErrInsufficientStock, "Not enough stock for product %s", id)
	}
	return nil
}

func Exists(tx *gorm.DB, id string) (bool, error) {
	var n int64
	if err := tx.Model(&models.Product{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

// DeleteByID hard-deletes a product and its buyer reviews. A missing row
// is not an error.
func DeleteByID(tx *gorm.DB, id string) error {
	if err := tx.Where("product_id = ?", id).Delete(&models.ProductReview{}).Error; err != nil {
		return err
	}
	return tx.Where("id = ?", id).Delete(&models.Product{}).Error
}
