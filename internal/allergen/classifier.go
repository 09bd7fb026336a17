// Package allergen maps free-text product fields onto the fixed allergen set.
package allergen

import (
	"strings"

	"github.com/franckalain/allergenscan/internal/models"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// keywords lists the substrings that identify each allergen.
// Matching is plain substring containment, so "egg" also hits "eggplant".
var keywords = map[models.AllergenKey][]string{
	models.Milk:      {"milk", "dairy", "lactose", "cream", "butter", "cheese"},
	models.Eggs:      {"eggs", "egg"},
	models.Peanuts:   {"peanuts", "peanut"},
	models.TreeNuts:  {"nuts", "almonds", "walnuts", "cashews", "hazelnuts"},
	models.Soy:       {"soy", "soya"},
	models.Wheat:     {"wheat", "gluten"},
	models.Fish:      {"fish"},
	models.Shellfish: {"shellfish", "crustaceans", "molluscs"},
}

// Keywords returns a copy of the keyword set configured for key
func Keywords(key models.AllergenKey) []string {
	return append([]string(nil), keywords[key]...)
}

// Matches reports whether any keyword of key is a substring of text.
// text is compared as given.
func Matches(key models.AllergenKey, text string) bool {
	for _, term := range keywords[key] {
		if strings.Contains(text, term) {
			return true
		}
	}
	return false
}

// Classify derives a status for every allergen from declared allergen tags,
// trace tags and the raw ingredients text.
//
// Precedence is present tag > trace tag > ingredients text. Tags are matched
// with their original casing; only the ingredients text is lowercased. A hit
// in the ingredients text is reported as present, the same status used for a
// declared allergen.
func Classify(presentTags, traceTags []string, ingredientsText string) models.AllergenMap {
	result := models.NewAllergenMap(models.StatusUnknown)
	keys := models.AllergenKeys()

	for _, tag := range presentTags {
		for _, key := range keys {
			if Matches(key, tag) {
				result[key] = models.StatusPresent
			}
		}
	}

	for _, tag := range traceTags {
		for _, key := range keys {
			if result[key] == models.StatusUnknown && Matches(key, tag) {
				result[key] = models.StatusMayContain
			}
		}
	}

	ingredients := cases.Lower(language.Und).String(ingredientsText)
	for _, key := range keys {
		if result[key] != models.StatusUnknown {
			continue
		}
		if Matches(key, ingredients) {
			result[key] = models.StatusPresent
		} else {
			result[key] = models.StatusNotPresent
		}
	}

	return result
}
