// Package foodfacts talks to the Open Food Facts product API and turns its
// records into models.Product values.
package foodfacts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	DefaultBaseURL   = "https://world.openfoodfacts.org/api/v0/product"
	DefaultUserAgent = "allergenscan/1.0"
	DefaultTimeout   = 10 * time.Second
)

var (
	// ErrNotFound is returned when the database has no record for a barcode
	ErrNotFound = errors.New("product not found")
	// ErrMalformed is returned when the response cannot be understood
	ErrMalformed = errors.New("malformed product response")
)

// RawProduct is the subset of an Open Food Facts product record we use
type RawProduct struct {
	ProductName     string   `json:"product_name"`
	Brands          string   `json:"brands"`
	ImageFrontURL   string   `json:"image_front_url"`
	IngredientsText string   `json:"ingredients_text"`
	AllergensTags   []string `json:"allergens_tags"`
	TracesTags      []string `json:"traces_tags"`
	NutritionGrades string   `json:"nutrition_grades"`
}

type productResponse struct {
	Status  int         `json:"status"`
	Product *RawProduct `json:"product"`
}

// Fetcher retrieves the raw record for a barcode
type Fetcher interface {
	Fetch(ctx context.Context, barcode string) (*RawProduct, error)
}

// ClientConfig holds the settings for Client
type ClientConfig struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration
}

// Client implements Fetcher over HTTP
type Client struct {
	baseURL   string
	userAgent string
	http      *http.Client
}

// NewClient creates a new Open Food Facts client, filling in defaults for
// empty settings
func NewClient(cfg ClientConfig) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Client{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		userAgent: cfg.UserAgent,
		http:      &http.Client{Timeout: cfg.Timeout},
	}
}

// Fetch requests {baseURL}/{barcode}.json and returns the product record
func (c *Client) Fetch(ctx context.Context, barcode string) (*RawProduct, error) {
	endpoint := fmt.Sprintf("%s/%s.json", c.baseURL, url.PathEscape(barcode))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch product %s: %w", barcode, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	// The API answers unknown barcodes with 404 and a status 0 body
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNotFound {
		return nil, fmt.Errorf("unexpected status %d fetching product %s", resp.StatusCode, barcode)
	}

	var out productResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if out.Status == 0 {
		return nil, ErrNotFound
	}
	if out.Product == nil {
		return nil, fmt.Errorf("%w: missing product object", ErrMalformed)
	}

	return out.Product, nil
}
