package seed

import (
	"context"
	"fmt"

	"github.com/TechX-demo/easy-pay-cart/internal/domain"
	"github.com/shopspring/decimal"
)

type productSeed struct {
	ID          string
	Name        string
	Price       string
	Description string
	Image       string
	Category    string
}

var demoProducts = []productSeed{
	{
		ID:          "1",
		Name:        "Premium Wireless Headphones",
		Price:       "299.99",
		Description: "Experience crystal clear audio with these premium wireless headphones. Features noise cancellation technology and 30-hour battery life.",
		Image:       "https://images.unsplash.com/photo-1505740420928-5e560c06d30e?w=500",
		Category:    "Audio",
	},
	{
		ID:          "2",
		Name:        "Smart Watch Series 5",
		Price:       "399.99",
		Description: "Stay connected with this premium smartwatch. Features health tracking, notifications, and a beautiful always-on display.",
		Image:       "https://images.unsplash.com/photo-1546868871-7041f2a55e12?w=500",
		Category:    "Wearables",
	},
	{
		ID:          "3",
		Name:        "Professional Camera Kit",
		Price:       "1299.99",
		Description: "Capture stunning moments with this professional-grade camera kit. Includes multiple lenses and accessories for any situation.",
		Image:       "https://images.unsplash.com/photo-1526170375885-4d8ecf77b99f?w=500",
		Category:    "Photography",
	},
	{
		ID:          "4",
		Name:        "Portable Bluetooth Speaker",
		Price:       "129.99",
		Description: "Take your music anywhere with this waterproof, portable Bluetooth speaker with 20-hour battery life.",
		Image:       "https://images.unsplash.com/photo-1608043152269-423dbba4e7e1?w=500",
		Category:    "Audio",
	},
	{
		ID:          "5",
		Name:        "Ultra-Thin Laptop",
		Price:       "1599.99",
		Description: "Powerful, lightweight laptop featuring the latest processors and all-day battery life, perfect for professionals on the go.",
		Image:       "https://images.unsplash.com/photo-1496181133206-80ce9b88a853?w=500",
		Category:    "Computing",
	},
	{
		ID:          "6",
		Name:        "Designer Backpack",
		Price:       "199.99",
		Description: "Stylish and functional backpack with padded laptop compartment, multiple storage pockets, and premium materials.",
		Image:       "https://images.unsplash.com/photo-1622560480654-d96214fdc887?w=500",
		Category:    "Accessories",
	},
}

// Products returns the demo catalog used when no database is configured.
func Products() []domain.Product {
	out := make([]domain.Product, 0, len(demoProducts))
	for _, p := range demoProducts {
		out = append(out, domain.Product{
			ID:          p.ID,
			Name:        p.Name,
			Price:       decimal.RequireFromString(p.Price),
			Description: p.Description,
			Image:       p.Image,
			Category:    p.Category,
		})
	}
	return out
}

type productWriter interface {
	Upsert(ctx context.Context, product domain.Product) (*domain.Product, error)
}

// Apply writes the demo catalog through w. It is idempotent via upsert.
func Apply(ctx context.Context, w productWriter) error {
	for _, p := range Products() {
		if _, err := w.Upsert(ctx, p); err != nil {
			return fmt.Errorf("upsert product %s: %w", p.ID, err)
		}
	}
	return nil
}
