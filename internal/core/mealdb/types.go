package mealdb

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ingredientSlots 上游 payload 的食材欄位數（strIngredient1..20）
const ingredientSlots = 20

// MealSummary 食譜摘要（filter.php 回傳項目）
type MealSummary struct {
	ID        string `json:"idMeal"`
	Name      string `json:"strMeal"`
	Thumbnail string `json:"strMealThumb"`
}

// IngredientEntry 食譜的單一食材欄位
type IngredientEntry struct {
	Name    string `json:"name"`
	Measure string `json:"measure"`
}

// Meal 完整食譜（lookup.php 回傳項目）。
// 上游的動態欄位在此邊界一次性轉為固定結構，缺漏欄位一律以空字串代替。
type Meal struct {
	ID           string            `json:"idMeal"`
	Name         string            `json:"strMeal"`
	Thumbnail    string            `json:"strMealThumb"`
	Category     string            `json:"strCategory"`
	Area         string            `json:"strArea"`
	Instructions string            `json:"strInstructions"`
	Ingredients  []IngredientEntry `json:"ingredients"`
}

// UnmarshalJSON 解析上游的原始 payload，
// 將 strIngredient1..20 / strMeasure1..20 欄位收斂為 Ingredients 切片
func (m *Meal) UnmarshalJSON(data []byte) error {
	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	m.ID = stringField(raw, "idMeal")
	m.Name = stringField(raw, "strMeal")
	m.Thumbnail = stringField(raw, "strMealThumb")
	m.Category = stringField(raw, "strCategory")
	m.Area = stringField(raw, "strArea")
	m.Instructions = stringField(raw, "strInstructions")

	// 已正規化過的 payload（快取回寫）直接帶 ingredients 欄位
	if slots, ok := raw["ingredients"].([]interface{}); ok {
		for _, slot := range slots {
			entry, ok := slot.(map[string]interface{})
			if !ok {
				continue
			}
			m.Ingredients = append(m.Ingredients, IngredientEntry{
				Name:    stringField(entry, "name"),
				Measure: stringField(entry, "measure"),
			})
		}
		return nil
	}

	for i := 1; i <= ingredientSlots; i++ {
		name := strings.TrimSpace(stringField(raw, fmt.Sprintf("strIngredient%d", i)))
		if name == "" {
			continue
		}
		m.Ingredients = append(m.Ingredients, IngredientEntry{
			Name:    strings.ToLower(name),
			Measure: strings.TrimSpace(stringField(raw, fmt.Sprintf("strMeasure%d", i))),
		})
	}

	return nil
}

// RawIngredients 取出食譜的原始食材名稱清單
func (m *Meal) RawIngredients() []string {
	names := make([]string, 0, len(m.Ingredients))
	for _, entry := range m.Ingredients {
		names = append(names, entry.Name)
	}
	return names
}

// stringField 從動態 payload 取字串欄位，缺漏或型別不符一律回傳空字串
func stringField(raw map[string]interface{}, key string) string {
	value, ok := raw[key]
	if !ok || value == nil {
		return ""
	}
	s, ok := value.(string)
	if !ok {
		return ""
	}
	return s
}
