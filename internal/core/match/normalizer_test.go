package match

import (
	"os"
	"testing"

	"fridge-chef/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	common.Logger = zap.NewNop()
	os.Exit(m.Run())
}

func TestNormalizeBasics(t *testing.T) {
	assert.Equal(t, "chicken breast", Normalize("  Chicken Breast!!"))
	assert.Equal(t, Normalize("chicken breast"), Normalize("  Chicken Breast!!"))
	assert.Equal(t, "flour", Normalize("2 cups flour"))
	assert.Equal(t, "olive oil", Normalize("1 tbsp olive oil"))
	assert.Equal(t, "garlic", Normalize("3 cloves garlic"))
}

func TestNormalizeIdempotence(t *testing.T) {
	inputs := []string{
		"  Chicken Breast!!",
		"2 cups flour",
		"Tomatoes",
		"berries",
		"1 tbsp olive oil, to taste",
	}
	for _, input := range inputs {
		once := Normalize(input)
		assert.Equal(t, once, Normalize(once), "normalize should be a fixed point for %q", input)
	}
}

func TestNormalizeSingularization(t *testing.T) {
	assert.Equal(t, Normalize("tomato"), Normalize("tomatoes"))
	assert.Equal(t, "berry", Normalize("berries"))
	assert.Equal(t, "carrot", Normalize("carrots"))
	// ss / us / 短詞不做單數化
	assert.Equal(t, "swiss", Normalize("swiss"))
	assert.Equal(t, "asparagus", Normalize("asparagus"))
	assert.Equal(t, "gas", Normalize("gas"))
}

func TestNormalizeDropsNumbersAndMeasures(t *testing.T) {
	assert.Equal(t, "sugar", Normalize("200 g sugar"))
	assert.Equal(t, "salt", Normalize("salt to taste"))
	assert.Equal(t, "", Normalize("2 cups"))
	assert.Equal(t, "", Normalize("123"))
	assert.Equal(t, "", Normalize("   "))
}

func TestNormalizeList(t *testing.T) {
	items := []string{"Tomatoes", "tomato", "2 cups flour", "FLOUR!!", "", "  ", "1 tbsp"}
	normalized := NormalizeList(items)

	assert.Equal(t, []string{"flour", "tomato"}, normalized)

	// 去重後不應有重複項
	seen := map[string]bool{}
	for _, item := range normalized {
		assert.False(t, seen[item], "duplicate item %q", item)
		seen[item] = true
	}
}

func TestNormalizeItem(t *testing.T) {
	assert.Equal(t, "egg", NormalizeItem("Eggs"))
	assert.Equal(t, "", NormalizeItem("2 cups"))
	assert.Equal(t, "", NormalizeItem(""))
}

func TestNormalizeKeepsCompoundNounsDistinct(t *testing.T) {
	// "chicken breast" 與 "chicken" 是不同的正規化字串，不做同義詞映射
	assert.NotEqual(t, Normalize("chicken"), Normalize("chicken breast"))
}
