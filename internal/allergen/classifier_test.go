package allergen

import (
	"fmt"
	"strings"
	"testing"

	"github.com/franckalain/allergenscan/internal/models"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify_AlwaysTotal(t *testing.T) {
	inputs := []struct {
		present, traces []string
		text            string
	}{
		{nil, nil, ""},
		{[]string{"en:milk"}, nil, ""},
		{nil, []string{"en:nuts"}, "water"},
		{[]string{"", "???"}, []string{"\x00"}, "日本語 テキスト"},
		{[]string{"en:milk", "en:eggs", "en:peanuts", "en:nuts", "en:soybeans", "en:gluten", "en:fish", "en:crustaceans"}, nil, ""},
	}

	for i, in := range inputs {
		got := Classify(in.present, in.traces, in.text)
		assert.True(t, got.Complete(), "input %d produced a partial map: %v", i, got)
	}
}

func TestClassify_EmptyInputIsNotPresent(t *testing.T) {
	got := Classify(nil, nil, "")
	assert.Equal(t, models.NewAllergenMap(models.StatusNotPresent), got)
}

func TestClassify_PresentTags(t *testing.T) {
	got := Classify([]string{"en:milk", "en:gluten"}, nil, "")

	assert.Equal(t, models.StatusPresent, got[models.Milk])
	assert.Equal(t, models.StatusPresent, got[models.Wheat])
	assert.Equal(t, models.StatusNotPresent, got[models.Eggs])
}

func TestClassify_TraceNeverDowngradesPresent(t *testing.T) {
	got := Classify([]string{"en:milk"}, []string{"en:milk", "en:eggs"}, "")

	assert.Equal(t, models.StatusPresent, got[models.Milk])
	assert.Equal(t, models.StatusMayContain, got[models.Eggs])
}

// "peanuts" contains "nuts", so a peanut tag also marks tree nuts.
func TestClassify_PeanutTagAlsoMarksTreeNuts(t *testing.T) {
	got := Classify([]string{"en:peanuts"}, []string{"en:nuts"}, "")

	assert.Equal(t, models.StatusPresent, got[models.Peanuts])
	assert.Equal(t, models.StatusPresent, got[models.TreeNuts])
}

func TestClassify_TraceBeatsIngredientsText(t *testing.T) {
	got := Classify(nil, []string{"en:soybeans"}, "Soy lecithin")
	assert.Equal(t, models.StatusMayContain, got[models.Soy])
}

func TestClassify_IngredientsTextIsLowercased(t *testing.T) {
	got := Classify(nil, nil, "Whole WHEAT Flour, Skimmed MILK powder")

	assert.Equal(t, models.StatusPresent, got[models.Wheat])
	assert.Equal(t, models.StatusPresent, got[models.Milk])
	assert.Equal(t, models.StatusNotPresent, got[models.Fish])
}

// Tags are matched with their original casing while ingredients text is
// lowercased first. This asymmetry is kept on purpose.
func TestClassify_TagsAreCaseSensitive(t *testing.T) {
	got := Classify([]string{"en:MILK"}, []string{"en:EGGS"}, "")

	assert.Equal(t, models.StatusNotPresent, got[models.Milk])
	assert.Equal(t, models.StatusNotPresent, got[models.Eggs])
}

// A keyword found only in the ingredients text reports present, the same
// status as a declared allergen tag.
func TestClassify_IngredientsHitReportsPresent(t *testing.T) {
	fromTag := Classify([]string{"en:fish"}, nil, "")
	fromText := Classify(nil, nil, "tuna fish, salt")
	assert.Equal(t, fromTag[models.Fish], fromText[models.Fish])
}

// Substring matching is unbounded, which produces known false positives.
func TestClassify_SubstringFalsePositive(t *testing.T) {
	got := Classify(nil, nil, "grilled eggplant, buttermilk")
	assert.Equal(t, models.StatusPresent, got[models.Eggs])
	assert.Equal(t, models.StatusPresent, got[models.Milk])
}

func TestClassify_TagOrderDoesNotChangeOutcome(t *testing.T) {
	a := Classify([]string{"en:milk", "en:eggs"}, []string{"en:nuts", "en:fish"}, "soy")
	b := Classify([]string{"en:eggs", "en:milk"}, []string{"en:fish", "en:nuts"}, "soy")
	assert.Equal(t, a, b)
}

func TestKeywords_ReturnsCopy(t *testing.T) {
	kw := Keywords(models.Fish)
	require.Equal(t, []string{"fish"}, kw)
	kw[0] = "salmon"
	assert.Equal(t, []string{"fish"}, Keywords(models.Fish))
}

func TestClassify_Golden(t *testing.T) {
	cases := []struct {
		name            string
		present, traces []string
		ingredients     string
	}{
		{
			name:        "peanut_butter",
			present:     []string{"en:peanuts"},
			traces:      []string{"en:nuts"},
			ingredients: "Roasted peanuts, salt",
		},
		{
			name:        "wheat_bread",
			present:     []string{"en:gluten"},
			traces:      []string{"en:soybeans", "en:sesame-seeds"},
			ingredients: "Whole Wheat Flour; Water; Yeast; Salt; Sugar",
		},
		{
			name:        "seafood_pasta",
			present:     []string{"en:crustaceans", "en:molluscs"},
			traces:      []string{"en:fish", "en:shellfish"},
			ingredients: "Durum wheat semolina, Cream, Egg yolk, Prawns",
		},
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Classify(tc.present, tc.traces, tc.ingredients)
			g.Assert(t, tc.name, render(got))
		})
	}
}

func render(m models.AllergenMap) []byte {
	var b strings.Builder
	for _, key := range models.AllergenKeys() {
		fmt.Fprintf(&b, "%s: %s\n", key, m[key])
	}
	return []byte(b.String())
}
