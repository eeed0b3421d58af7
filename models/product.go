package models

import "time"

// ProductSummary represents a product as shown in the listing grid
type ProductSummary struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	Price     float64  `json:"price"`
	Thumbnail string   `json:"thumbnail"`
	Images    []string `json:"images"`
	Category  string   `json:"category"`
}

// ProductDetail represents a single product with its full description and reviews
type ProductDetail struct {
	ProductSummary
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	Rating      float64  `json:"rating"` // 0 to 5
	Stock       int      `json:"stock"`
	Reviews     []Review `json:"reviews"`
}

// Review represents a customer review attached to a product
type Review struct {
	ReviewerName string    `json:"reviewerName"`
	Date         time.Time `json:"date"`
	Rating       int       `json:"rating"` // 1 to 5
	Comment      string    `json:"comment"`
}

// InStock reports whether the product has stock available
func (p *ProductDetail) InStock() bool {
	return p.Stock > 0
}
