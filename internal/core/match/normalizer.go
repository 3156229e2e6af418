package match

import (
	"sort"
	"strings"
	"unicode"
)

// measureWords 計量詞與連接詞的封閉集合，正規化時一律剔除
var measureWords = map[string]struct{}{
	"cup":         {},
	"cups":        {},
	"tablespoon":  {},
	"tablespoons": {},
	"tbsp":        {},
	"teaspoon":    {},
	"teaspoons":   {},
	"tsp":         {},
	"oz":          {},
	"ounce":       {},
	"ounces":      {},
	"g":           {},
	"kg":          {},
	"ml":          {},
	"l":           {},
	"lb":          {},
	"lbs":         {},
	"pound":       {},
	"pinch":       {},
	"dash":        {},
	"slice":       {},
	"slices":      {},
	"clove":       {},
	"cloves":      {},
	"to":          {},
	"taste":       {},
}

// singularOverrides 單數化例外表，可強制覆寫規則結果
var singularOverrides = map[string]string{}

// singularize 將單一詞彙轉為單數形
func singularize(token string) string {
	if override, ok := singularOverrides[token]; ok {
		return override
	}
	if strings.HasSuffix(token, "ies") && len(token) > 4 {
		return token[:len(token)-3] + "y"
	}
	if strings.HasSuffix(token, "es") && len(token) > 3 &&
		!strings.HasSuffix(token, "ses") && !strings.HasSuffix(token, "xes") && !strings.HasSuffix(token, "zes") {
		return token[:len(token)-2]
	}
	if strings.HasSuffix(token, "s") && len(token) > 3 &&
		!strings.HasSuffix(token, "ss") && !strings.HasSuffix(token, "us") {
		return token[:len(token)-1]
	}
	return token
}

// isDigits 檢查詞彙是否全為數字
func isDigits(token string) bool {
	for _, r := range token {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return len(token) > 0
}

// Normalize 將原始食材描述轉為可比較的正規化字串：
// 轉小寫、去標點、去數量與計量詞、逐詞單數化後以空格串接。
// 若所有詞彙皆被剔除則回傳空字串。
func Normalize(raw string) string {
	lowered := strings.ToLower(raw)

	// 非字母、數字、空白的字元一律以空格取代
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			return r
		}
		return ' '
	}, lowered)

	var filtered []string
	for _, token := range strings.Fields(cleaned) {
		if isDigits(token) {
			continue
		}
		if _, ok := measureWords[token]; ok {
			continue
		}
		filtered = append(filtered, singularize(token))
	}

	return strings.TrimSpace(strings.Join(filtered, " "))
}

// NormalizeList 批次正規化：去除空白項、去重並排序，
// 回傳的序列即食材集合的標準表示
func NormalizeList(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		if strings.TrimSpace(item) == "" {
			continue
		}
		normalized := Normalize(item)
		if normalized == "" {
			continue
		}
		seen[normalized] = struct{}{}
	}

	result := make([]string, 0, len(seen))
	for item := range seen {
		result = append(result, item)
	}
	sort.Strings(result)
	return result
}

// NormalizeItem 正規化單一食材，若無有效內容則回傳空字串
func NormalizeItem(text string) string {
	normalized := NormalizeList([]string{text})
	if len(normalized) == 0 {
		return ""
	}
	return normalized[0]
}
