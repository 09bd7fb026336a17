package models

import (
	"time"
)

// AllergenStatus is the classification of a single allergen for a product
type AllergenStatus string

const (
	StatusPresent    AllergenStatus = "present"
	StatusMayContain AllergenStatus = "may_contain"
	StatusNotPresent AllergenStatus = "not_present"
	StatusUnknown    AllergenStatus = "unknown"
)

// Valid reports whether s is one of the four known statuses
func (s AllergenStatus) Valid() bool {
	switch s {
	case StatusPresent, StatusMayContain, StatusNotPresent, StatusUnknown:
		return true
	}
	return false
}

// AllergenKey identifies one of the tracked allergens
type AllergenKey string

const (
	Milk      AllergenKey = "milk"
	Eggs      AllergenKey = "eggs"
	Peanuts   AllergenKey = "peanuts"
	TreeNuts  AllergenKey = "tree_nuts"
	Soy       AllergenKey = "soy"
	Wheat     AllergenKey = "wheat"
	Fish      AllergenKey = "fish"
	Shellfish AllergenKey = "shellfish"
)

// AllergenKeys returns the closed set of tracked allergens in display order.
// The returned slice is a fresh copy.
func AllergenKeys() []AllergenKey {
	return []AllergenKey{Milk, Eggs, Peanuts, TreeNuts, Soy, Wheat, Fish, Shellfish}
}

// AllergenMap holds a status for every tracked allergen
type AllergenMap map[AllergenKey]AllergenStatus

// NewAllergenMap returns a map with every key set to status
func NewAllergenMap(status AllergenStatus) AllergenMap {
	m := make(AllergenMap, 8)
	for _, key := range AllergenKeys() {
		m[key] = status
	}
	return m
}

// Complete reports whether m holds exactly the tracked keys, each with a valid status
func (m AllergenMap) Complete() bool {
	keys := AllergenKeys()
	if len(m) != len(keys) {
		return false
	}
	for _, key := range keys {
		if !m[key].Valid() {
			return false
		}
	}
	return true
}

// Clone returns an independent copy of m
func (m AllergenMap) Clone() AllergenMap {
	if m == nil {
		return nil
	}
	out := make(AllergenMap, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

const (
	DefaultProductName = "Unknown Product"
	DefaultBrandName   = "Unknown Brand"
)

// Product represents one scanned item
type Product struct {
	Barcode     string      `json:"barcode"`
	Name        string      `json:"name"`
	Brand       string      `json:"brand"`
	Image       string      `json:"image,omitempty"` // remote URL, not owned
	Ingredients []string    `json:"ingredients"`
	Allergens   AllergenMap `json:"allergens"`

	// Nutri-Score letter, passed through as received
	NutritionGrade string    `json:"nutritionGrade,omitempty"`
	ScanDate       time.Time `json:"scanDate"`
}

// Clone returns a deep copy so the result shares no mutable state with p
func (p Product) Clone() Product {
	out := p
	if p.Ingredients != nil {
		out.Ingredients = append([]string(nil), p.Ingredients...)
	}
	out.Allergens = p.Allergens.Clone()
	return out
}

// LabelReading is the text extracted from a photographed ingredient label
type LabelReading struct {
	IngredientsText string   `json:"ingredients_text"`
	AllergenTags    []string `json:"allergens_tags"`
	TraceTags       []string `json:"traces_tags"`
}
