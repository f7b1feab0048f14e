package model

import "fmt"

// Product is the storefront's product projection carried through chat
// responses. Rating doubles as the ranking score within a category.
type Product struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Category string  `json:"category"`
	Price    float64 `json:"price"`
	Rating   float64 `json:"rating,omitempty"`
	Image    string  `json:"image,omitempty"`
}

// ProductFromMap builds a Product from a decoded JSON object, tolerating the
// loose field shapes the backend emits (numeric or string ids, title vs name).
func ProductFromMap(raw map[string]any) Product {
	p := Product{}

	switch id := raw["id"].(type) {
	case string:
		p.ID = id
	case float64:
		p.ID = fmt.Sprintf("%.0f", id)
	}

	if name, ok := raw["name"].(string); ok {
		p.Name = name
	} else if title, ok := raw["title"].(string); ok {
		p.Name = title
	}

	if category, ok := raw["category"].(string); ok {
		p.Category = category
	}
	if price, ok := raw["price"].(float64); ok {
		p.Price = price
	}
	if rating, ok := raw["rating"].(float64); ok {
		p.Rating = rating
	} else if rating, ok := raw["rating"].(map[string]any); ok {
		// fakestore-style nested rating: {rate, count}
		if rate, ok := rating["rate"].(float64); ok {
			p.Rating = rate
		}
	}
	if image, ok := raw["image"].(string); ok {
		p.Image = image
	}

	return p
}

// ProductsFromAny converts a decoded JSON array into products, skipping
// entries that are not objects.
func ProductsFromAny(raw []any) []Product {
	products := make([]Product, 0, len(raw))
	for _, entry := range raw {
		if m, ok := entry.(map[string]any); ok {
			products = append(products, ProductFromMap(m))
		}
	}
	return products
}
