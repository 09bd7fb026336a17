package ml

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/franckalain/allergenscan/internal/models"
)

// ErrUnreadableLabel is returned when the model could not read the image
var ErrUnreadableLabel = errors.New("label could not be read")

const labelPrompt = `Read the ingredient list on this food label and report it in a structured format.

Format the response as a JSON object with exactly one of "error" or "success" populated.
Allergen and trace tags use lowercase English names prefixed with "en:", for example "en:milk" or "en:nuts".
"traces_tags" lists allergens from "may contain" statements only.
{
	"error": {
		"error_reason": "string",
		"suggestion_for_better_results": "string"
	},
	"success": {
		"ingredients_text": "string",
		"allergens_tags": ["string"],
		"traces_tags": ["string"]
	}
}`

type labelResponse struct {
	Error *struct {
		ErrorReason string `json:"error_reason"`
		Suggestion  string `json:"suggestion_for_better_results"`
	} `json:"error"`
	Success *struct {
		IngredientsText *string  `json:"ingredients_text"`
		AllergensTags   []string `json:"allergens_tags"`
		TracesTags      []string `json:"traces_tags"`
	} `json:"success"`
}

// ParseLabelResponse decodes the model's answer, which may be wrapped in a
// fenced ```json block
func ParseLabelResponse(text string) (*models.LabelReading, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	var out labelResponse
	if err := json.Unmarshal([]byte(text), &out); err != nil {
		return nil, fmt.Errorf("failed to parse model response: %w while parsing %s", err, text)
	}

	if out.Error != nil && out.Error.ErrorReason != "" {
		return nil, fmt.Errorf("%w: %s; suggestion: %s", ErrUnreadableLabel, out.Error.ErrorReason, out.Error.Suggestion)
	}
	if out.Success == nil {
		return nil, fmt.Errorf("missing or invalid success object in response")
	}
	if out.Success.IngredientsText == nil {
		return nil, fmt.Errorf("missing required field 'ingredients_text' in response")
	}

	return &models.LabelReading{
		IngredientsText: *out.Success.IngredientsText,
		AllergenTags:    out.Success.AllergensTags,
		TraceTags:       out.Success.TracesTags,
	}, nil
}
