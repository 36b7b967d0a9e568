package header

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonical(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "sku", "sku"},
		{"trim", "  sku  ", "sku"},
		{"collapse whitespace", "item   name", "item name"},
		{"embedded bom", "\uFEFFsku", "sku"},
		{"fullwidth ascii folds", "ＪＡＮ", "JAN"},
		{"halfwidth katakana folds", "ｺｰﾄﾞ", "コード"},
		{"ideographic space", "商品　名", "商品 名"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Canonical(tt.in))
		})
	}
}

func TestApply_CanonicalKeyWins(t *testing.T) {
	mapped, warns := Apply([]string{"ＪＡＮコード", "商品名"}, map[string]string{"JANコード": "jan"})
	assert.Equal(t, []string{"jan", "商品名"}, mapped)
	assert.Empty(t, warns)
}

func TestApply_RawKeyFallback(t *testing.T) {
	// Preset authored against the raw vendor header, BOM and all.
	raw := "\uFEFF JAN "
	mapped, _ := Apply([]string{raw}, map[string]string{raw: "jan"})
	assert.Equal(t, []string{"jan"}, mapped)
}

func TestApply_UnmappedPassThrough(t *testing.T) {
	mapped, warns := Apply([]string{"sku", "price"}, nil)
	assert.Equal(t, []string{"sku", "price"}, mapped)
	assert.Empty(t, warns)
}

func TestApply_MappedValueCanonicalized(t *testing.T) {
	mapped, _ := Apply([]string{"code"}, map[string]string{"code": " ｊａｎ "})
	assert.Equal(t, []string{"jan"}, mapped)
}

func TestApply_DuplicateWarning(t *testing.T) {
	mapped, warns := Apply([]string{"JAN", "jan_code"}, map[string]string{"JAN": "jan", "jan_code": "jan"})
	assert.Equal(t, []string{"jan", "jan"}, mapped)
	assert.Len(t, warns, 1)
	assert.Contains(t, warns[0], "duplicate header")
}

func TestPositional(t *testing.T) {
	assert.Equal(t, []string{"c0", "c1", "c2"}, Positional(3))
	assert.Empty(t, Positional(0))
}

func TestSuggest(t *testing.T) {
	got := Suggest("jan", []string{"jan_code", "title", "price"})
	assert.Equal(t, "jan_code", got)

	assert.Equal(t, "", Suggest("jan", []string{"completely", "different"}))
	assert.Equal(t, "", Suggest("jan", nil))
}
