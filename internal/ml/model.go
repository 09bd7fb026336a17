package ml

import (
	"context"
	"errors"
	"fmt"

	"github.com/franckalain/allergenscan/internal/config"
	"github.com/franckalain/allergenscan/internal/models"
)

// ErrNoModel is returned when label reading is not configured
var ErrNoModel = errors.New("no label model configured")

// Model reads photographed ingredient labels
type Model interface {
	// Load initializes the model with its configuration
	Load(ctx context.Context) error
	// ReadLabel extracts ingredient text and allergen declarations from an image
	ReadLabel(ctx context.Context, imageData []byte) (*models.LabelReading, error)
	Close() error
}

// NewModel creates a new model instance based on the model type
func NewModel(modelType string, google config.GoogleConfig) (Model, error) {
	switch modelType {
	case "google":
		return NewGoogleModel(google), nil
	case "none", "":
		return disabledModel{}, nil
	default:
		return nil, fmt.Errorf("unsupported model type: %s", modelType)
	}
}

// disabledModel is used when no label reader is configured
type disabledModel struct{}

func (disabledModel) Load(context.Context) error { return nil }

func (disabledModel) ReadLabel(context.Context, []byte) (*models.LabelReading, error) {
	return nil, ErrNoModel
}

func (disabledModel) Close() error { return nil }
