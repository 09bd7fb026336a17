package foodfacts

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(ClientConfig{BaseURL: srv.URL + "/", Timeout: 2 * time.Second})
}

func TestClient_FetchFound(t *testing.T) {
	var gotPath, gotAgent string
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAgent = r.Header.Get("User-Agent")
		w.Write([]byte(`{
			"status": 1,
			"product": {
				"product_name": "Oat Drink",
				"brands": "Oatly",
				"ingredients_text": "Water, oats 10%",
				"allergens_tags": ["en:gluten"],
				"traces_tags": [],
				"nutrition_grades": "c"
			}
		}`))
	})

	raw, err := c.Fetch(context.Background(), "7394376616037")
	require.NoError(t, err)

	assert.Equal(t, "/7394376616037.json", gotPath)
	assert.Equal(t, DefaultUserAgent, gotAgent)
	assert.Equal(t, "Oat Drink", raw.ProductName)
	assert.Equal(t, "Oatly", raw.Brands)
	assert.Equal(t, []string{"en:gluten"}, raw.AllergensTags)
	assert.Equal(t, "c", raw.NutritionGrades)
}

func TestClient_FetchNotFound(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"status": 0, "status_verbose": "product not found"}`))
	})

	_, err := c.Fetch(context.Background(), "000")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestClient_FetchMalformed(t *testing.T) {
	bodies := []string{`not json`, `{"status": 1}`}
	for _, body := range bodies {
		c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(body))
		})

		_, err := c.Fetch(context.Background(), "123")
		assert.ErrorIs(t, err, ErrMalformed, body)
	}
}

func TestClient_FetchServerError(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := c.Fetch(context.Background(), "123")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrMalformed))
}

func TestClient_FetchHonoursContext(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Fetch(ctx, "123")
	assert.ErrorIs(t, err, context.Canceled)
}
