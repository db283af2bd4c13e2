package handlers

import (
	"errors"
	"fmt"
	"slices"
	"time"

	html "github.com/gofiber/template/html/v2"

	"courtside/internal/checkout"
	"courtside/internal/domain"
	"courtside/internal/i18n"
)

// NewViews loads the templates in dir and registers the view helpers.
func NewViews(dir string, bundle *i18n.Bundle) *html.Engine {
	engine := html.New(dir, ".html")
	engine.AddFuncMap(map[string]interface{}{
		// locale is untyped so pages rendered without one fall back to the default
		"t": func(locale any, key string) string {
			l, _ := locale.(i18n.Locale)
			return bundle.T(l, key)
		},
		"money":  checkout.Money,
		"isNew":  func(createdAt string) bool { return domain.IsNewProduct(createdAt, time.Now()) },
		"hasInt": func(xs []int, x int) bool { return slices.Contains(xs, x) },
		"hasStr": func(xs []string, x string) bool { return slices.Contains(xs, x) },
		"dict":   dict,
	})
	return engine
}

// dict builds a map from key/value pairs so partials can take more than one argument.
func dict(pairs ...any) (map[string]any, error) {
	if len(pairs)%2 != 0 {
		return nil, errors.New("dict: odd number of arguments")
	}
	m := make(map[string]any, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		k, ok := pairs[i].(string)
		if !ok {
			return nil, fmt.Errorf("dict: key %v is not a string", pairs[i])
		}
		m[k] = pairs[i+1]
	}
	return m, nil
}
