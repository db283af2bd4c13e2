package i18n_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"courtside/internal/i18n"
)

func TestLookup(t *testing.T) {
	b := i18n.NewBundle(i18n.TR, map[i18n.Locale]map[string]any{
		i18n.TR: {"cart": map[string]any{"title": "Sepetiniz"}, "count": 3.0},
		i18n.EN: {"cart": map[string]any{"title": "Your cart"}},
	})

	assert.Equal(t, "Your cart", b.T(i18n.EN, "cart.title"))
	assert.Equal(t, "Sepetiniz", b.T(i18n.TR, "cart.title"))
	assert.Equal(t, "Sepetiniz", b.T("de", "cart.title"))

	assert.Equal(t, "cart.missing", b.T(i18n.EN, "cart.missing"))
	assert.Equal(t, "cart", b.T(i18n.EN, "cart"))
	assert.Equal(t, "count", b.T(i18n.TR, "count"))
	assert.Equal(t, "cart.title.deeper", b.T(i18n.EN, "cart.title.deeper"))
	assert.Equal(t, "", b.T(i18n.EN, ""))
}

func TestEmbeddedLocalesShareKeys(t *testing.T) {
	b, err := i18n.Load(i18n.TR)
	require.NoError(t, err)

	keys := []string{
		"checkout.newOrder", "checkout.confirm", "checkout.taxIncluded",
		"shop.sortPriceAsc", "cart.title", "admin.invalid", "errors.notFound",
	}
	for _, k := range keys {
		assert.NotEqual(t, k, b.T(i18n.TR, k), k)
		assert.NotEqual(t, k, b.T(i18n.EN, k), k)
	}
	assert.Equal(t, "Yeni Sipariş!", b.Translator(i18n.TR)("checkout.newOrder"))
	assert.Equal(t, "New Order!", b.Translator(i18n.EN)("checkout.newOrder"))
}

func TestParseLocale(t *testing.T) {
	l, ok := i18n.ParseLocale(" EN ")
	assert.True(t, ok)
	assert.Equal(t, i18n.EN, l)

	_, ok = i18n.ParseLocale("fr")
	assert.False(t, ok)
}
