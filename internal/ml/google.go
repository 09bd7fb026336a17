package ml

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"

	"cloud.google.com/go/vertexai/genai"
	"github.com/franckalain/allergenscan/internal/config"
	"github.com/franckalain/allergenscan/internal/models"
	"google.golang.org/api/option"
)

// GoogleModel implements the Model interface for Google's Vertex AI
type GoogleModel struct {
	config config.GoogleConfig
	client *genai.Client
	model  *genai.GenerativeModel
}

// NewGoogleModel creates an unloaded Vertex AI label reader
func NewGoogleModel(cfg config.GoogleConfig) *GoogleModel {
	return &GoogleModel{config: cfg}
}

// Load initializes the Google model
func (m *GoogleModel) Load(ctx context.Context) error {
	opts := []option.ClientOption{}

	if m.config.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(m.config.CredentialsFile))
	}

	client, err := genai.NewClient(ctx, m.config.ProjectID, m.config.Location, opts...)
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}

	m.client = client
	m.model = client.GenerativeModel(m.config.Model)
	m.model.SetTemperature(0)
	return nil
}

// ReadLabel sends the label image to Vertex AI and parses its answer
func (m *GoogleModel) ReadLabel(ctx context.Context, imageData []byte) (*models.LabelReading, error) {
	if m.model == nil {
		return nil, fmt.Errorf("model not loaded")
	}

	format, err := imageFormat(imageData)
	if err != nil {
		return nil, err
	}

	log.Printf("Calling %s for a %d byte %s label", m.config.Model, len(imageData), format)
	resp, err := m.model.GenerateContent(ctx, genai.Text(labelPrompt), genai.ImageData(format, imageData))
	if err != nil {
		return nil, fmt.Errorf("failed to call ai: %w", err)
	}

	if len(resp.Candidates) == 0 {
		return nil, fmt.Errorf("no response generated")
	}
	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return nil, fmt.Errorf("no content in response")
	}

	var text strings.Builder
	for _, part := range candidate.Content.Parts {
		if t, ok := part.(genai.Text); ok {
			text.WriteString(string(t))
		}
	}

	return ParseLabelResponse(text.String())
}

// Close releases the Vertex AI client
func (m *GoogleModel) Close() error {
	if m.client == nil {
		return nil
	}
	return m.client.Close()
}

// imageFormat returns the genai image format ("jpeg", "png", ...) of data
func imageFormat(data []byte) (string, error) {
	mime := http.DetectContentType(data)
	if !strings.HasPrefix(mime, "image/") {
		return "", fmt.Errorf("unsupported image type %s", mime)
	}
	return strings.TrimPrefix(mime, "image/"), nil
}
