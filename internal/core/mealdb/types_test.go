package mealdb

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMealUnmarshalSlots(t *testing.T) {
	payload := `{
		"idMeal": "52940",
		"strMeal": "Brown Stew Chicken",
		"strMealThumb": "https://example.test/thumb.jpg",
		"strCategory": "Chicken",
		"strArea": "Jamaican",
		"strInstructions": "Brown the chicken.",
		"strIngredient1": "Chicken",
		"strMeasure1": "1 whole",
		"strIngredient2": " Tomato ",
		"strMeasure2": "1 chopped",
		"strIngredient3": "",
		"strMeasure3": "",
		"strIngredient4": null,
		"strMeasure4": null,
		"strIngredient20": "Thyme",
		"strMeasure20": "2 sprigs"
	}`

	var meal Meal
	require.NoError(t, json.Unmarshal([]byte(payload), &meal))

	assert.Equal(t, "52940", meal.ID)
	assert.Equal(t, "Brown Stew Chicken", meal.Name)
	assert.Equal(t, "Chicken", meal.Category)
	assert.Equal(t, "Jamaican", meal.Area)

	// 空欄位與 null 欄位不產生項目，名稱轉小寫去空白
	require.Len(t, meal.Ingredients, 3)
	assert.Equal(t, IngredientEntry{Name: "chicken", Measure: "1 whole"}, meal.Ingredients[0])
	assert.Equal(t, IngredientEntry{Name: "tomato", Measure: "1 chopped"}, meal.Ingredients[1])
	assert.Equal(t, IngredientEntry{Name: "thyme", Measure: "2 sprigs"}, meal.Ingredients[2])

	assert.Equal(t, []string{"chicken", "tomato", "thyme"}, meal.RawIngredients())
}

func TestMealUnmarshalMissingFields(t *testing.T) {
	// 缺漏欄位一律以空值代替，不報錯
	var meal Meal
	require.NoError(t, json.Unmarshal([]byte(`{"idMeal": "1"}`), &meal))

	assert.Equal(t, "1", meal.ID)
	assert.Empty(t, meal.Name)
	assert.Empty(t, meal.Category)
	assert.Empty(t, meal.Ingredients)
}

func TestMealRoundTrip(t *testing.T) {
	// 快取回寫的 payload 帶 ingredients 欄位，需能再次解析
	original := Meal{
		ID:       "1",
		Name:     "Test Dish",
		Category: "Main",
		Ingredients: []IngredientEntry{
			{Name: "egg", Measure: "2"},
			{Name: "flour", Measure: "1 cup"},
		},
	}

	data, err := json.Marshal(original)
	require.NoError(t, err)

	var decoded Meal
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, original, decoded)
}
