package models

import "github.com/shopspring/decimal"

// Product is a marketplace listing. RatingsAverage and RatingsCount are
// recomputed from Reviews whenever a review is added.
type Product struct {
	Base
	SellerID       string          `gorm:"type:varchar(36);not null;index" json:"sellerId"`
	Seller         *User           `gorm:"foreignKey:SellerID" json:"seller,omitempty"`
	Title          string          `gorm:"size:255;not null" json:"title"`
	Description    string          `gorm:"type:text;not null" json:"description"`
	Price          decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price"`
	Category       string          `gorm:"size:64;not null;index" json:"category"`
	Images         Images          `json:"images"`
	Stock          int             `gorm:"not null;default:0" json:"stock"`
	IsActive       bool            `gorm:"not null;default:true" json:"isActive"`
	Reviews        []ProductReview `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"reviews,omitempty"`
	RatingsAverage float64         `gorm:"not null;default:0" json:"ratingsAverage"`
	RatingsCount   int             `gorm:"not null;default:0" json:"ratingsCount"`
}

// ProductReview is a buyer rating embedded in a product. One per user.
type ProductReview struct {
	Base
	ProductID string `gorm:"type:varchar(36);not null;uniqueIndex:idx_product_reviewer" json:"productId"`
	UserID    string `gorm:"type:varchar(36);not null;uniqueIndex:idx_product_reviewer" json:"userId"`
	User      *User  `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Rating    int    `gorm:"not null" json:"rating"`
	Comment   string `gorm:"type:text" json:"comment"`
}
