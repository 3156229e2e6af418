package mealdb

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"fridge-chef/internal/core/cache"
	"fridge-chef/internal/infrastructure/config"
	"fridge-chef/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	common.Logger = zap.NewNop()
	os.Exit(m.Run())
}

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cacheSvc, err := cache.NewService(&config.CacheConfig{Enabled: false})
	require.NoError(t, err)

	cfg := &config.Config{
		MealDB: config.MealDBConfig{
			BaseURL: server.URL,
			Timeout: 5 * time.Second,
		},
	}
	return NewClient(cfg, cacheSvc)
}

func TestFilterByIngredient(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/filter.php", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "chicken", r.URL.Query().Get("i"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"meals": [
			{"idMeal": "52940", "strMeal": "Brown Stew Chicken", "strMealThumb": "https://example.test/1.jpg"},
			{"idMeal": "52846", "strMeal": "Chicken Basquaise", "strMealThumb": "https://example.test/2.jpg"}
		]}`))
	})
	client := newTestClient(t, mux)

	summaries, err := client.FilterByIngredient(context.Background(), "chicken")

	require.NoError(t, err)
	require.Len(t, summaries, 2)
	assert.Equal(t, "52940", summaries[0].ID)
	assert.Equal(t, "Brown Stew Chicken", summaries[0].Name)
}

func TestFilterByIngredientNoResults(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/filter.php", func(w http.ResponseWriter, r *http.Request) {
		// 查無結果時上游回傳 meals: null
		w.Write([]byte(`{"meals": null}`))
	})
	client := newTestClient(t, mux)

	summaries, err := client.FilterByIngredient(context.Background(), "unobtainium")

	require.NoError(t, err)
	assert.Empty(t, summaries)
	assert.NotNil(t, summaries)
}

func TestLookupMeal(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/lookup.php", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "52940", r.URL.Query().Get("i"))
		w.Write([]byte(`{"meals": [{
			"idMeal": "52940",
			"strMeal": "Brown Stew Chicken",
			"strCategory": "Chicken",
			"strIngredient1": "Chicken",
			"strMeasure1": "1 whole",
			"strIngredient2": "Tomato",
			"strMeasure2": "2"
		}]}`))
	})
	client := newTestClient(t, mux)

	meal, err := client.LookupMeal(context.Background(), "52940")

	require.NoError(t, err)
	require.NotNil(t, meal)
	assert.Equal(t, "Brown Stew Chicken", meal.Name)
	assert.Equal(t, "Chicken", meal.Category)
	assert.Equal(t, []string{"chicken", "tomato"}, meal.RawIngredients())
}

func TestLookupMealNotFound(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/lookup.php", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"meals": null}`))
	})
	client := newTestClient(t, mux)

	meal, err := client.LookupMeal(context.Background(), "0")

	require.NoError(t, err)
	assert.Nil(t, meal)
}

func TestLookupMealUpstreamError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/lookup.php", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	client := newTestClient(t, mux)

	_, err := client.LookupMeal(context.Background(), "52940")

	assert.Error(t, err)
}

func TestFilterByIngredientBadPayload(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/filter.php", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	})
	client := newTestClient(t, mux)

	_, err := client.FilterByIngredient(context.Background(), "chicken")

	assert.Error(t, err)
}
