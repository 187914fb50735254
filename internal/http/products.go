package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/sujalbistaa/bookit/internal/catalog"
)

type productRequest struct {
	Title       string           `json:"title" binding:"required,max=200"`
	Description string           `json:"description" binding:"required"`
	Price       *decimal.Decimal `json:"price" binding:"required"`
	Category    string           `json:"category" binding:"required,max=50"`
	Images      []string         `json:"images" binding:"omitempty,max=10"`
	Stock       *int             `json:"stock" binding:"omitempty,min=0"`
}

type updateProductRequest struct {
	Title       *string          `json:"title" binding:"omitempty,max=200"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	Category    *string          `json:"category" binding:"omitempty,max=50"`
	Images      []string         `json:"images" binding:"omitempty,max=10"`
	Stock       *int             `json:"stock" binding:"omitempty,min=0"`
	IsActive    *bool            `json:"isActive"`
}

type productReviewRequest struct {
	Rating  int    `json:"rating" binding:"required,min=1,max=5"`
	Comment string `json:"comment" binding:"max=2000"`
}

func (e *Env) ListProducts(c *gin.Context) {
	page := pageOf(c)
	products, total, err := e.Catalog.List(c.Request.Context(), catalog.ListFilter{
		Category: c.Query("category"),
		Query:    c.Query("q"),
		Sort:     c.Query("sort"),
		Page:     page,
	})
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, listResponse{Items: products, Page: page.Page, Total: total}, "")
}

func (e *Env) GetProduct(c *gin.Context) {
	product, err := e.Catalog.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, product, "")
}

func (e *Env) CreateProduct(c *gin.Context) {
	var req productRequest
	if !bind(c, &req) {
		return
	}
	in := catalog.ProductInput{
		Title:       req.Title,
		Description: req.Description,
		Price:       *req.Price,
		Category:    req.Category,
		Images:      req.Images,
	}
	if req.Stock != nil {
		in.Stock = *req.Stock
	}
	product, err := e.Catalog.Create(c.Request.Context(), principal(c), in)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusCreated, product, "Product created")
}

func (e *Env) UpdateProduct(c *gin.Context) {
	var req updateProductRequest
	if !bind(c, &req) {
		return
	}
	product, err := e.Catalog.Update(c.Request.Context(), principal(c), c.Param("id"), catalog.ProductPatch{
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		Category:    req.Category,
		Images:      req.Images,
		Stock:       req.Stock,
		IsActive:    req.IsActive,
	})
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, product, "Product updated")
}

func (e *Env) DeleteProduct(c *gin.Context) {
	if err := e.Catalog.Delete(c.Request.Context(), principal(c), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"ok": true}, "Product deleted")
}

func (e *Env) ReviewProduct(c *gin.Context) {
	var req productReviewRequest
	if !bind(c, &req) {
		return
	}
	product, err := e.Catalog.AddReview(c.Request.Context(), principal(c), c.Param("id"), req.Rating, req.Comment)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusCreated, product, "Review added")
}
