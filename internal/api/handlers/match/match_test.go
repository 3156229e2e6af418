package match

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"fridge-chef/internal/core/cache"
	matchService "fridge-chef/internal/core/match"
	"fridge-chef/internal/core/mealdb"
	"fridge-chef/internal/core/storage"
	"fridge-chef/internal/infrastructure/config"
	"fridge-chef/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	common.Logger = zap.NewNop()
	os.Exit(m.Run())
}

// mockSource is a mock of the recipe source client.
type mockSource struct {
	summaries map[string][]mealdb.MealSummary
	meals     map[string]*mealdb.Meal
}

func (m *mockSource) FilterByIngredient(ctx context.Context, ingredient string) ([]mealdb.MealSummary, error) {
	return m.summaries[ingredient], nil
}

func (m *mockSource) LookupMeal(ctx context.Context, mealID string) (*mealdb.Meal, error) {
	return m.meals[mealID], nil
}

func newTestRouter(t *testing.T, source matchService.RecipeSource, inventory []string) *gin.Engine {
	t.Helper()

	matchCfg := &config.MatchConfig{
		MaxMissingDefault: 3,
		CandidateLimit:    20,
		Workers:           8,
	}
	engine := matchService.NewService(source, matchCfg)

	store, err := storage.NewFileStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Replace(context.Background(), storage.CollectionInventory, inventory))

	results := cache.NewManager(&config.CacheConfig{
		Enabled:         true,
		ResultMaxSize:   10,
		ResultTTL:       time.Minute,
		CleanupInterval: time.Minute,
	})

	handler := NewHandler(engine, store, results, matchCfg)
	router := gin.New()
	router.GET("/matches", handler.HandleMatches)
	return router
}

func doGet(router *gin.Engine, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeMatches(t *testing.T, w *httptest.ResponseRecorder) (int, []matchService.RecipeMatch) {
	t.Helper()
	var resp struct {
		Count   int                        `json:"count"`
		Matches []matchService.RecipeMatch `json:"matches"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Count, resp.Matches
}

func TestHandleMatchesByInventory(t *testing.T) {
	source := &mockSource{
		summaries: map[string][]mealdb.MealSummary{
			"chicken": {{ID: "m1"}},
		},
		meals: map[string]*mealdb.Meal{
			"m1": {
				ID:       "m1",
				Name:     "Garlic Chicken",
				Category: "Main",
				Ingredients: []mealdb.IngredientEntry{
					{Name: "chicken"}, {Name: "garlic"}, {Name: "butter"},
				},
			},
		},
	}
	router := newTestRouter(t, source, []string{"chicken", "garlic"})

	w := doGet(router, "/matches?max_missing=1")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "MISS", w.Header().Get("X-Cache"))
	count, matches := decodeMatches(t, w)
	require.Equal(t, 1, count)
	assert.Equal(t, "m1", matches[0].ID)
	assert.Equal(t, []string{"butter"}, matches[0].Missing)
}

func TestHandleMatchesResultCache(t *testing.T) {
	source := &mockSource{
		summaries: map[string][]mealdb.MealSummary{
			"egg": {{ID: "m1"}},
		},
		meals: map[string]*mealdb.Meal{
			"m1": {ID: "m1", Name: "Fried Egg", Category: "Main",
				Ingredients: []mealdb.IngredientEntry{{Name: "egg"}}},
		},
	}
	router := newTestRouter(t, source, []string{"egg"})

	first := doGet(router, "/matches?max_missing=2")
	require.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "MISS", first.Header().Get("X-Cache"))

	second := doGet(router, "/matches?max_missing=2")
	require.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, "HIT", second.Header().Get("X-Cache"))
	assert.Equal(t, first.Body.String(), second.Body.String())

	// 不同參數不共用快取
	third := doGet(router, "/matches?max_missing=3")
	assert.Equal(t, "MISS", third.Header().Get("X-Cache"))
}

func TestHandleMatchesRequiredIngredientTakesPrecedence(t *testing.T) {
	source := &mockSource{
		summaries: map[string][]mealdb.MealSummary{
			"egg": {{ID: "m1"}, {ID: "m2"}},
		},
		meals: map[string]*mealdb.Meal{
			"m1": {ID: "m1", Name: "Custard Tart", Category: "Dessert",
				Ingredients: []mealdb.IngredientEntry{{Name: "egg"}, {Name: "sugar"}}},
			"m2": {ID: "m2", Name: "Big Breakfast", Category: "Breakfast",
				Ingredients: []mealdb.IngredientEntry{
					{Name: "egg"}, {Name: "bacon"}, {Name: "sausage"}, {Name: "bread"},
				}},
		},
	}
	router := newTestRouter(t, source, []string{"milk"})

	// 必含食材模式不套用缺漏門檻，即使 max_missing=0 也回傳
	w := doGet(router, "/matches?ingredient=egg&max_missing=0")

	require.Equal(t, http.StatusOK, w.Code)
	count, matches := decodeMatches(t, w)
	require.Equal(t, 1, count)
	assert.Equal(t, "m2", matches[0].ID)
	assert.NotEmpty(t, matches[0].Missing)
}

func TestHandleMatchesInvalidMaxMissing(t *testing.T) {
	router := newTestRouter(t, &mockSource{}, nil)

	assert.Equal(t, http.StatusBadRequest, doGet(router, "/matches?max_missing=abc").Code)
	assert.Equal(t, http.StatusBadRequest, doGet(router, "/matches?max_missing=-1").Code)
}

func TestHandleMatchesEmptyInventory(t *testing.T) {
	router := newTestRouter(t, &mockSource{}, nil)

	w := doGet(router, "/matches")

	require.Equal(t, http.StatusOK, w.Code)
	count, matches := decodeMatches(t, w)
	assert.Zero(t, count)
	assert.Empty(t, matches)
}
