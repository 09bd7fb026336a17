package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/franckalain/allergenscan/internal/models"
)

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// writeProduct prints a product in the requested format
func writeProduct(w io.Writer, format string, p models.Product) error {
	if format == "json" {
		return writeJSON(w, p)
	}

	fmt.Fprintf(w, "%s - %s (%s)\n", p.Barcode, p.Name, p.Brand)
	if p.NutritionGrade != "" {
		fmt.Fprintf(w, "Nutri-Score: %s\n", strings.ToUpper(p.NutritionGrade))
	}
	if len(p.Ingredients) > 0 {
		fmt.Fprintf(w, "Ingredients: %s\n", strings.Join(p.Ingredients, ", "))
	}
	fmt.Fprintln(w, "Allergens:")
	for _, key := range models.AllergenKeys() {
		fmt.Fprintf(w, "  %-10s %s\n", key, p.Allergens[key])
	}
	return nil
}

// writeHistory prints the scan history in the requested format
func writeHistory(w io.Writer, format string, items []models.Product) error {
	if format == "json" {
		return writeJSON(w, items)
	}

	if len(items) == 0 {
		fmt.Fprintln(w, "No scans yet.")
		return nil
	}
	for _, p := range items {
		fmt.Fprintf(w, "%s  %-14s %s (%s)%s\n",
			p.ScanDate.Local().Format("2006-01-02 15:04"), p.Barcode, p.Name, p.Brand, flagged(p))
	}
	return nil
}

// flagged summarises which allergens are present or possible
func flagged(p models.Product) string {
	var present, maybe []string
	for _, key := range models.AllergenKeys() {
		switch p.Allergens[key] {
		case models.StatusPresent:
			present = append(present, string(key))
		case models.StatusMayContain:
			maybe = append(maybe, string(key))
		}
	}

	var parts []string
	if len(present) > 0 {
		parts = append(parts, "contains "+strings.Join(present, ","))
	}
	if len(maybe) > 0 {
		parts = append(parts, "may contain "+strings.Join(maybe, ","))
	}
	if len(parts) == 0 {
		return ""
	}
	return " [" + strings.Join(parts, "; ") + "]"
}
