package foodfacts

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/franckalain/allergenscan/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func TestSplitIngredients(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"mixed separators", "Sugar, Salt; Water", []string{"Sugar", "Salt", "Water"}},
		{"empty", "", []string{}},
		{"only separators", " , ;; ,", []string{}},
		{"keeps inner spaces", "whole wheat flour ,  cane sugar", []string{"whole wheat flour", "cane sugar"}},
		{"no separator", "Water", []string{"Water"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitIngredients(tt.in))
		})
	}
}

func TestSplitIngredients_CapsAtTwenty(t *testing.T) {
	var parts []string
	for i := 0; i < 30; i++ {
		parts = append(parts, fmt.Sprintf("item%d", i))
	}

	got := SplitIngredients(strings.Join(parts, ", "))
	require.Len(t, got, MaxIngredients)
	assert.Equal(t, "item0", got[0])
	assert.Equal(t, "item19", got[19])
}

func TestNormalize_FullRecord(t *testing.T) {
	n := NewNormalizerWithClock(func() time.Time { return fixedNow })
	raw := &RawProduct{
		ProductName:     "Nutella",
		Brands:          "Ferrero",
		ImageFrontURL:   "https://images.example/nutella.jpg",
		IngredientsText: "Sugar, palm oil, hazelnuts 13%, skimmed milk powder 8.7%",
		AllergensTags:   []string{"en:milk", "en:nuts"},
		TracesTags:      []string{"en:gluten"},
		NutritionGrades: "e",
	}

	p := n.Normalize(raw, "3017620422003")

	assert.Equal(t, "3017620422003", p.Barcode)
	assert.Equal(t, "Nutella", p.Name)
	assert.Equal(t, "Ferrero", p.Brand)
	assert.Equal(t, "https://images.example/nutella.jpg", p.Image)
	assert.Equal(t, []string{"Sugar", "palm oil", "hazelnuts 13%", "skimmed milk powder 8.7%"}, p.Ingredients)
	assert.Equal(t, "e", p.NutritionGrade)
	assert.Equal(t, fixedNow, p.ScanDate)

	assert.True(t, p.Allergens.Complete())
	assert.Equal(t, models.StatusPresent, p.Allergens[models.Milk])
	assert.Equal(t, models.StatusPresent, p.Allergens[models.TreeNuts])
	assert.Equal(t, models.StatusMayContain, p.Allergens[models.Wheat])
	assert.Equal(t, models.StatusNotPresent, p.Allergens[models.Fish])
}

func TestNormalize_SparseRecordUsesDefaults(t *testing.T) {
	n := NewNormalizerWithClock(func() time.Time { return fixedNow })

	for _, raw := range []*RawProduct{nil, {}} {
		p := n.Normalize(raw, "0000")

		assert.Equal(t, "0000", p.Barcode)
		assert.Equal(t, models.DefaultProductName, p.Name)
		assert.Equal(t, models.DefaultBrandName, p.Brand)
		assert.Empty(t, p.Image)
		assert.Empty(t, p.Ingredients)
		assert.Empty(t, p.NutritionGrade)
		assert.Equal(t, models.NewAllergenMap(models.StatusNotPresent), p.Allergens)
		assert.Equal(t, fixedNow, p.ScanDate)
	}
}

func TestNormalize_UsesCurrentTime(t *testing.T) {
	before := time.Now()
	p := NewNormalizer().Normalize(&RawProduct{}, "1")
	assert.False(t, p.ScanDate.Before(before))
}
