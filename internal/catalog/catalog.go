// Package catalog is the storefront's static product source.
package catalog

import (
	"errors"
	"fmt"
	"sort"

	"cart-service/internal/models"

	"github.com/google/uuid"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrUnknownVariant  = errors.New("unknown product variant")
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
)

var (
	defaultSizes  = []string{"6", "7", "8", "9", "10", "11", "12", "13"}
	defaultColors = []models.Color{
		{Name: "Black", Hex: "#000000"},
		{Name: "White", Hex: "#FFFFFF"},
		{Name: "Blue", Hex: "#0066FF"},
		{Name: "Red", Hex: "#FF0000"},
	}
)

// Catalog is a read-only, in-memory set of products
type Catalog struct {
	products map[int64]models.Product
}

// New creates a catalog from the given products
func New(products []models.Product) *Catalog {
	c := &Catalog{products: make(map[int64]models.Product, len(products))}
	for _, p := range products {
		c.products[p.ID] = p
	}
	return c
}

// NewStatic creates the storefront's built-in shoe catalog
func NewStatic() *Catalog {
	shoe := func(id int64, name string, price float64, image, category string, rating float64) models.Product {
		return models.Product{
			ID:       id,
			Name:     name,
			Price:    price,
			Image:    image,
			Category: category,
			Rating:   rating,
			Sizes:    defaultSizes,
			Colors:   defaultColors,
		}
	}

	runner := shoe(1, "Urban Runner Pro", 129.99, "/modern-running-shoe.jpg", "Running", 4.8)
	runner.Description = "Experience ultimate comfort and performance with the Urban Runner Pro. " +
		"Engineered for daily running with responsive cushioning and breathable mesh upper."

	return New([]models.Product{
		runner,
		shoe(2, "Classic Leather", 159.99, "/premium-leather-shoe.jpg", "Casual", 4.9),
		shoe(3, "Trail Blazer", 149.99, "/hiking-trail-shoe.jpg", "Outdoor", 4.7),
		shoe(4, "Minimalist Slip-On", 99.99, "/minimalist-slip-on-shoe.jpg", "Casual", 4.6),
		shoe(5, "Performance Basketball", 179.99, "/basketball-shoe.jpg", "Sports", 4.9),
		shoe(6, "Comfort Loafer", 119.99, "/comfort-loafer.jpg", "Casual", 4.5),
		shoe(7, "Winter Boot", 189.99, "/winter-boot.jpg", "Outdoor", 4.8),
		shoe(8, "Gym Trainer", 109.99, "/gym-trainer.jpg", "Sports", 4.7),
		shoe(9, "Elegant Dress Shoe", 199.99, "/dress-shoe.jpg", "Formal", 4.9),
		shoe(10, "Casual Sneaker", 89.99, "/casual-sneaker.jpg", "Casual", 4.4),
		shoe(11, "Trail Runner", 139.99, "/trail-runner.jpg", "Running", 4.8),
		shoe(12, "Summer Sandal", 79.99, "/summer-sandal.jpg", "Casual", 4.3),
	})
}

// Get returns the product with the given id
func (c *Catalog) Get(id int64) (models.Product, error) {
	p, ok := c.products[id]
	if !ok {
		return models.Product{}, fmt.Errorf("%w: %d", ErrProductNotFound, id)
	}
	return p, nil
}

// List returns all products ordered by id
func (c *Catalog) List() []models.Product {
	out := make([]models.Product, 0, len(c.products))
	for _, p := range c.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// NewLineItem builds a cart line item for the chosen variant of product,
// copying its display fields and generating a fresh line id.
func NewLineItem(product models.Product, size, color string, quantity int) (models.CartItem, error) {
	if quantity < 1 {
		return models.CartItem{}, ErrInvalidQuantity
	}
	if !hasSize(product, size) {
		return models.CartItem{}, fmt.Errorf("%w: size %q for product %d", ErrUnknownVariant, size, product.ID)
	}
	if !hasColor(product, color) {
		return models.CartItem{}, fmt.Errorf("%w: color %q for product %d", ErrUnknownVariant, color, product.ID)
	}

	return models.CartItem{
		ID:        uuid.New().String(),
		ProductID: product.ID,
		Name:      product.Name,
		Price:     product.Price,
		Image:     product.Image,
		Size:      size,
		Color:     color,
		Quantity:  quantity,
	}, nil
}

func hasSize(p models.Product, size string) bool {
	for _, s := range p.Sizes {
		if s == size {
			return true
		}
	}
	return false
}

func hasColor(p models.Product, color string) bool {
	for _, c := range p.Colors {
		if c.Name == color {
			return true
		}
	}
	return false
}
