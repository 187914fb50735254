// Package orders turns a cart into a priced, stock-decremented, immutable
// order.
package orders

import (
	"context"
	"errors"
	"math"
	"slices"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/sujalbistaa/bookit/internal/apperr"
	"github.com/sujalbistaa/bookit/internal/auth"
	"github.com/sujalbistaa/bookit/internal/catalog"
	"github.com/sujalbistaa/bookit/internal/db"
	"github.com/sujalbistaa/bookit/internal/metrics"
	"github.com/sujalbistaa/bookit/internal/models"
)

// maxAttempts bounds how often a checkout is re-run after losing a
// serialization race.
const maxAttempts = 3

type Line struct {
	ProductID string
	Quantity  int
}

type Service struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewService(gdb *gorm.DB, log *zap.Logger) *Service {
	return &Service{db: gdb, log: log.Named("orders")}
}

// Place checks out a cart for the buyer. All lines are validated against
// one locked snapshot of the products and stock is decremented only when
// every line passes, so a rejected checkout leaves inventory untouched.
func (s *Service) Place(ctx context.Context, buyer auth.Principal, lines []Line) (*models.Order, error) {
	cart, err := normalize(lines)
	if err != nil {
		metrics.CheckoutsRejected.WithLabelValues("invalid").Inc()
		return nil, err
	}

	var order *models.Order
	for attempt := 1; ; attempt++ {
		order, err = s.place(ctx, buyer, cart)
		if err == nil || !db.IsRetryable(err) || attempt == maxAttempts {
			break
		}
		metrics.CheckoutRetries.Inc()
		s.log.Warn("Retrying checkout after conflict", zap.Int("attempt", attempt), zap.Error(err))
	}

	if err != nil {
		metrics.CheckoutsRejected.WithLabelValues(rejectReason(err)).Inc()
		var appErr *apperr.Error
		if errors.As(err, &appErr) {
			return nil, err
		}
		s.log.Error("Checkout failed", zap.String("buyer_id", buyer.ID), zap.Error(err))
		return nil, apperr.Internal("Failed to place order", err)
	}

	metrics.OrdersPlaced.Inc()
	s.log.Info("Order placed",
		zap.String("order_id", order.ID),
		zap.String("buyer_id", buyer.ID),
		zap.String("total", order.Total.StringFixed(2)),
	)
	return order, nil
}

func (s *Service) place(ctx context.Context, buyer auth.Principal, cart []Line) (*models.Order, error) {
	var order *models.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ids := make([]string, len(cart))
		for i, line := range cart {
			ids[i] = line.ProductID
		}
		products, err := catalog.LockForCheckout(tx, ids)
		if err != nil {
			return err
		}

		items, err := snapshot(cart, products)
		if err != nil {
			return err
		}

		for _, item := range items {
			if err := catalog.DecrementStock(tx, item.ProductID, item.Quantity); err != nil {
				if apperr.IsInsufficientStock(err) {
					return insufficient(item.Title)
				}
				return err
			}
		}

		order = &models.Order{
			BuyerID: buyer.ID,
			Items:   items,
			Total:   models.SumItems(items),
			Status:  models.OrderPaid,
		}
		return tx.Create(order).Error
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// normalize rejects empty carts and bad quantities, and merges repeated
// product lines so each product is validated against its summed quantity.
func normalize(lines []Line) ([]Line, error) {
	if len(lines) == 0 {
		return nil, apperr.Invalid("Cart is empty")
	}

	index := make(map[string]int, len(lines))
	cart := make([]Line, 0, len(lines))
	for _, line := range lines {
		if line.ProductID == "" {
			return nil, apperr.InvalidFields("Validation failed", map[string]string{"productId": "Product id is required"})
		}
		if line.Quantity < 1 {
			return nil, apperr.InvalidFields("Validation failed", map[string]string{"quantity": "Quantity must be at least 1"})
		}
		if i, ok := index[line.ProductID]; ok {
			if line.Quantity > math.MaxInt-cart[i].Quantity {
				return nil, apperr.InvalidFields("Validation failed", map[string]string{"quantity": "Quantity is too large"})
			}
			cart[i].Quantity += line.Quantity
			continue
		}
		index[line.ProductID] = len(cart)
		cart = append(cart, line)
	}
	return cart, nil
}

// snapshot validates every cart line against the locked products and
// copies title, price and seller into frozen line items.
func snapshot(cart []Line, products map[string]models.Product) ([]models.OrderItem, error) {
	items := make([]models.OrderItem, 0, len(cart))
	for _, line := range cart {
		product, ok := products[line.ProductID]
		if !ok || !product.IsActive {
			return nil, apperr.Newf(apperr.ErrNotFound, "Product not found: %s", line.ProductID)
		}
		if product.Stock < line.Quantity {
			return nil, insufficient(product.Title)
		}
		items = append(items, models.OrderItem{
			ProductID: product.ID,
			SellerID:  product.SellerID,
			Title:     product.Title,
			Price:     product.Price,
			Quantity:  line.Quantity,
		})
	}
	return items, nil
}

func insufficient(title string) error {
	return apperr.Newf(apperr.ErrInsufficientStock, "Not enough stock for %s", title)
}

func rejectReason(err error) string {
	switch {
	case apperr.IsInsufficientStock(err):
		return "insufficient_stock"
	case apperr.IsNotFound(err):
		return "not_found"
	case apperr.IsInvalid(err):
		return "invalid"
	}
	return "error"
}

func (s *Service) ListForBuyer(ctx context.Context, buyer auth.Principal) ([]models.Order, error) {
	orders := []models.Order{}
	err := s.db.WithContext(ctx).Preload("Items", orderItems).
		Where("buyer_id = ?", buyer.ID).
		Order("created_at DESC").
		Find(&orders).Error
	if err != nil {
		return nil, s.internal("Failed to list orders", err)
	}
	return orders, nil
}

// ListForSeller returns every order with at least one line item sold by
// seller. The whole order is returned, including other sellers' lines.
func (s *Service) ListForSeller(ctx context.Context, seller auth.Principal) ([]models.Order, error) {
	orders := []models.Order{}
	sold := s.db.Model(&models.OrderItem{}).Select("order_id").Where("seller_id = ?", seller.ID)
	err := s.db.WithContext(ctx).
		Preload("Items", orderItems).
		Preload("Buyer", func(db *gorm.DB) *gorm.DB { return db.Select("id", "username", "avatar") }).
		Where("id IN (?)", sold).
		Order("created_at DESC").
		Find(&orders).Error
	if err != nil {
		return nil, s.internal("Failed to list orders", err)
	}
	return orders, nil
}

// UpdateStatus sets an order's status. Admins and sellers with a line item
// in the order may do so; any valid status may follow any other.
func (s *Service) UpdateStatus(ctx context.Context, caller auth.Principal, orderID string, status models.OrderStatus) (*models.Order, error) {
	if !status.Valid() {
		return nil, apperr.InvalidFields("Validation failed", map[string]string{
			"status": "Status must be one of pending, paid, shipped, completed, canceled",
		})
	}

	var order models.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Preload("Items", orderItems).First(&order, "id = ?", orderID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("Order")
		}
		if err != nil {
			return err
		}
		if !caller.IsAdmin() && !soldBy(order.Items, caller.ID) {
			return apperr.Forbidden("Not allowed")
		}
		if err := tx.Model(&order).Update("status", status).Error; err != nil {
			return err
		}
		order.Status = status
		return nil
	})
	if err != nil {
		return nil, s.internal("Failed to update order", err)
	}
	return &order, nil
}

func soldBy(items []models.OrderItem, sellerID string) bool {
	return slices.ContainsFunc(items, func(item models.OrderItem) bool {
		return item.SellerID == sellerID
	})
}

func orderItems(db *gorm.DB) *gorm.DB {
	return db.Order("id ASC")
}

func (s *Service) internal(msg string, err error) error {
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return err
	}
	s.log.Error(msg, zap.Error(err))
	return apperr.Internal(msg, err)
}
