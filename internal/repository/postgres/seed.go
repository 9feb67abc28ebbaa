package postgres

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/softwareprosdev/lapesqueriaoutfitters-sub005/internal/entity"
)

var seedSizes = []string{"S", "M", "L", "XL", "XXL"}

type seedProduct struct {
	name         string
	sku          string
	description  string
	price        float64
	category     string
	featured     bool
	conservation float64
	focus        string
	colors       []string
	stock        int
}

var seedCatalog = []seedProduct{
	{"Laguna Madre Performance Hoodie", "LP-HOOD", "UPF 50+ hooded fishing shirt with moisture-wicking fabric for long days on the flats.", 54.99, "performance-shirts", true, 10, "Seagrass restoration", []string{"Seafoam", "Navy"}, 20},
	{"Redfish Tail Long Sleeve", "LP-REDLS", "Lightweight long sleeve sun shirt with our redfish tail print.", 44.99, "performance-shirts", true, 10, "Redfish habitat", []string{"White", "Sand"}, 25},
	{"Sea Turtle Conservation Tee", "LP-TURT", "Organic cotton tee supporting Kemp's ridley sea turtle nesting patrols.", 34.99, "t-shirts", true, 15, "Kemp's ridley sea turtles", []string{"Coral", "Ocean Blue"}, 30},
	{"Port Isabel Logo Tee", "LP-LOGO", "Classic logo tee printed on soft ringspun cotton.", 29.99, "t-shirts", false, 10, "Beach cleanups", []string{"Black", "White"}, 40},
	{"Jetty Rope Hat", "LP-ROPE", "Structured rope hat with embroidered marlin patch.", 32.00, "hats", false, 10, "Billfish tagging", []string{"Khaki"}, 35},
}

var seedCategories = []entity.Category{
	{Name: "Performance Shirts", Slug: "performance-shirts", Description: "Sun protection built for anglers."},
	{Name: "T-Shirts", Slug: "t-shirts", Description: "Everyday coastal tees."},
	{Name: "Hats", Slug: "hats", Description: "Caps and hats for the water."},
}

// SeedCatalog returns the demo categories and products used by the seed command.
func SeedCatalog() ([]entity.Category, []entity.Product) {
	cats := make([]entity.Category, len(seedCategories))
	bySlug := make(map[string]string, len(seedCategories))
	for i, c := range seedCategories {
		c.ID = uuid.NewString()
		cats[i] = c
		bySlug[c.Slug] = c.ID
	}

	products := make([]entity.Product, 0, len(seedCatalog))
	for _, sp := range seedCatalog {
		categoryID := bySlug[sp.category]
		p := entity.Product{
			Name:                   sp.name,
			Slug:                   slugify(sp.name),
			SKU:                    sp.sku,
			Description:            sp.description,
			BasePrice:              sp.price,
			Featured:               sp.featured,
			IsActive:               true,
			ConservationPercentage: sp.conservation,
			ConservationFocus:      sp.focus,
			CategoryID:             &categoryID,
		}
		sizes := seedSizes
		if sp.category == "hats" {
			sizes = []string{"OS"}
		}
		for _, color := range sp.colors {
			for _, size := range sizes {
				p.Variants = append(p.Variants, entity.ProductVariant{
					Name:  fmt.Sprintf("%s / %s", color, size),
					SKU:   fmt.Sprintf("%s-%s-%s", sp.sku, strings.ToUpper(strings.ReplaceAll(color, " ", "")), size),
					Price: sp.price,
					Stock: sp.stock,
					Size:  size,
					Color: color,
				})
			}
		}
		products = append(products, p)
	}
	return cats, products
}

func slugify(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
