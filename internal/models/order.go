package models

import "github.com/shopspring/decimal"

type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderPaid      OrderStatus = "paid"
	OrderShipped   OrderStatus = "shipped"
	OrderCompleted OrderStatus = "completed"
	OrderCanceled  OrderStatus = "canceled"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderPaid, OrderShipped, OrderCompleted, OrderCanceled:
		return true
	}
	return false
}

// Order is created once by checkout. Items and Total never change after
// that; only Status moves.
type Order struct {
	Base
	BuyerID string          `gorm:"type:varchar(36);not null;index" json:"buyerId"`
	Buyer   *User           `gorm:"foreignKey:BuyerID" json:"buyer,omitempty"`
	Items   []OrderItem     `gorm:"foreignKey:OrderID" json:"items"`
	Total   decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"total"`
	Status  OrderStatus     `gorm:"size:16;not null;default:pending;index" json:"status"`
}

// OrderItem is a line item frozen at purchase time. Title, Price and
// SellerID are copies, not references into the live product.
type OrderItem struct {
	ID        uint            `gorm:"primaryKey" json:"-"`
	OrderID   string          `gorm:"type:varchar(36);not null;index" json:"-"`
	ProductID string          `gorm:"type:varchar(36);not null;index" json:"product"`
	SellerID  string          `gorm:"type:varchar(36);not null;index" json:"seller"`
	Title     string          `gorm:"size:255;not null" json:"title"`
	Price     decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price"`
	Quantity  int             `gorm:"not null" json:"quantity"`
}

func (i OrderItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// SumItems is the total an order with these items must carry.
func SumItems(items []OrderItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Subtotal())
	}
	return total
}
