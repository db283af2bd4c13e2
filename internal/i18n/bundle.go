// Package i18n resolves UI text by dot-path keys such as "cart.title".
package i18n

import (
	"embed"
	"encoding/json"
	"fmt"
	"strings"
)

//go:embed locales/*.json
var localeFS embed.FS

type Locale string

const (
	TR Locale = "tr"
	EN Locale = "en"
)

// Supported lists the locales shipped in locales/.
var Supported = []Locale{TR, EN}

// ParseLocale reports whether s names a supported locale.
func ParseLocale(s string) (Locale, bool) {
	l := Locale(strings.ToLower(strings.TrimSpace(s)))
	for _, sl := range Supported {
		if l == sl {
			return l, true
		}
	}
	return "", false
}

type Bundle struct {
	def      Locale
	messages map[Locale]map[string]any
}

// NewBundle builds a bundle from already-decoded message trees.
func NewBundle(def Locale, messages map[Locale]map[string]any) *Bundle {
	return &Bundle{def: def, messages: messages}
}

// Load reads the embedded locale files.
func Load(def Locale) (*Bundle, error) {
	messages := make(map[Locale]map[string]any, len(Supported))
	for _, l := range Supported {
		raw, err := localeFS.ReadFile("locales/" + string(l) + ".json")
		if err != nil {
			return nil, fmt.Errorf("read locale %s: %w", l, err)
		}
		var tree map[string]any
		if err := json.Unmarshal(raw, &tree); err != nil {
			return nil, fmt.Errorf("parse locale %s: %w", l, err)
		}
		messages[l] = tree
	}
	if _, ok := messages[def]; !ok {
		return nil, fmt.Errorf("default locale %q not loaded", def)
	}
	return NewBundle(def, messages), nil
}

func (b *Bundle) Default() Locale { return b.def }

// T resolves key in loc. Unknown locales use the default locale; a missing key or a
// non-string leaf yields the key itself.
func (b *Bundle) T(loc Locale, key string) string {
	tree, ok := b.messages[loc]
	if !ok {
		tree = b.messages[b.def]
	}
	var node any = tree
	for _, part := range strings.Split(key, ".") {
		m, ok := node.(map[string]any)
		if !ok {
			return key
		}
		if node, ok = m[part]; !ok {
			return key
		}
	}
	if s, ok := node.(string); ok {
		return s
	}
	return key
}

// Translator binds T to one locale.
func (b *Bundle) Translator(loc Locale) func(string) string {
	return func(key string) string { return b.T(loc, key) }
}
