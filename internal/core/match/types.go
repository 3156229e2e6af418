package match

import "fmt"

// SourceMealDB 目前唯一的食譜來源
const SourceMealDB = "TheMealDB"

// RecipeMatch 一筆比對結果。
// Ingredients 為食譜的正規化食材集合（已排序去重），
// Missing 為其中不在庫存、也不屬於常備調味料的子集。
type RecipeMatch struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Thumbnail   string   `json:"thumbnail"`
	Ingredients []string `json:"ingredients"`
	Missing     []string `json:"missing"`
	Source      string   `json:"source"`
	DetailsURL  string   `json:"details_url"`
}

// Settings 一次查詢的比對設定。
// RequiredIngredient 非空時走必含食材模式，優先於缺漏門檻搜尋。
type Settings struct {
	MaxMissing         int      `json:"max_missing"`
	RequiredIngredient string   `json:"required_ingredient"`
	Sources            []string `json:"sources"`
}

// ignoreStaples 常備調味料集合，不計入缺漏食材
var ignoreStaples = map[string]struct{}{
	"salt":         {},
	"pepper":       {},
	"black pepper": {},
	"white pepper": {},
	"paprika":      {},
	"cumin":        {},
	"coriander":    {},
	"turmeric":     {},
	"chili powder": {},
	"cinnamon":     {},
	"water":        {},
}

// excludedCategories 一律排除的食譜分類
var excludedCategories = map[string]struct{}{
	"dessert": {},
}

// detailsURL 產生食譜的外部詳情連結
func detailsURL(mealID string) string {
	return fmt.Sprintf("https://www.themealdb.com/meal/%s", mealID)
}
