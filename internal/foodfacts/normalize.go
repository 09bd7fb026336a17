package foodfacts

import (
	"strings"
	"time"

	"github.com/franckalain/allergenscan/internal/allergen"
	"github.com/franckalain/allergenscan/internal/models"
)

// MaxIngredients caps how many ingredient entries a product keeps
const MaxIngredients = 20

// Normalizer converts raw records into products
type Normalizer struct {
	now func() time.Time
}

// NewNormalizer creates a normalizer stamping products with the wall clock
func NewNormalizer() *Normalizer {
	return &Normalizer{now: time.Now}
}

// NewNormalizerWithClock creates a normalizer using now for scan dates
func NewNormalizerWithClock(now func() time.Time) *Normalizer {
	return &Normalizer{now: now}
}

// Normalize maps raw onto a Product. Missing fields fall back to defaults;
// a nil record yields a product with only defaults set.
func (n *Normalizer) Normalize(raw *RawProduct, barcode string) models.Product {
	if raw == nil {
		raw = &RawProduct{}
	}

	name := raw.ProductName
	if name == "" {
		name = models.DefaultProductName
	}
	brand := raw.Brands
	if brand == "" {
		brand = models.DefaultBrandName
	}

	return models.Product{
		Barcode:        barcode,
		Name:           name,
		Brand:          brand,
		Image:          raw.ImageFrontURL,
		Ingredients:    SplitIngredients(raw.IngredientsText),
		Allergens:      allergen.Classify(raw.AllergensTags, raw.TracesTags, raw.IngredientsText),
		NutritionGrade: raw.NutritionGrades,
		ScanDate:       n.now(),
	}
}

// SplitIngredients splits text on commas and semicolons, trims each entry,
// drops empty ones and keeps the first MaxIngredients in order
func SplitIngredients(text string) []string {
	parts := strings.FieldsFunc(text, func(r rune) bool {
		return r == ',' || r == ';'
	})

	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
		if len(out) == MaxIngredients {
			break
		}
	}
	return out
}
