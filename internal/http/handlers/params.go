package handlers

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"courtside/internal/catalog"
	"courtside/internal/domain"
	applog "courtside/internal/log"
	"courtside/internal/validate"
)

func queryMulti(c *fiber.Ctx, key string) []string {
	var out []string
	for _, v := range c.Context().QueryArgs().PeekMulti(key) {
		out = append(out, string(v))
	}
	return out
}

// catalogParams reads the shop query string. The returned field names the first invalid
// parameter; the params are still usable with that parameter dropped.
func catalogParams(c *fiber.Ctx) (catalog.Params, string) {
	var p catalog.Params
	bad := ""

	if raw := c.Query("q"); strings.TrimSpace(raw) != "" {
		if q, ok := validate.Q(raw); ok {
			p.Search = q
		} else {
			bad = "q"
		}
	}
	p.CourtTypes = validate.CourtTypes(queryMulti(c, "court"), domain.CourtTypes)
	p.Sizes = validate.Sizes(queryMulti(c, "size"))

	var ok bool
	if p.MinPrice, ok = validate.Price(c.Query("min")); !ok && bad == "" {
		bad = "min"
	}
	if p.MaxPrice, ok = validate.Price(c.Query("max")); !ok && bad == "" {
		bad = "max"
	}
	if p.MinPrice != nil && p.MaxPrice != nil && p.MinPrice.GreaterThan(*p.MaxPrice) {
		p.MinPrice, p.MaxPrice = p.MaxPrice, p.MinPrice
	}
	if s, ok := validate.Sort(c.Query("sort")); ok {
		p.Sort = catalog.ParseSortMode(s)
	} else if bad == "" {
		bad = "sort"
	}
	p.Page, _ = strconv.Atoi(c.Query("page", "1"))

	if bad != "" {
		applog.Security(c, "validation.fail", map[string]any{"field": bad})
	}
	return p, bad
}

type pageLink struct {
	N       int
	URL     string
	Current bool
}

// pageLinks keeps the current filters and swaps the page number.
func pageLinks(c *fiber.Ctx, current, total int) (links []pageLink, prev, next string) {
	q, _ := url.ParseQuery(string(c.Request().URI().QueryString()))
	link := func(n int) string {
		q.Set("page", strconv.Itoa(n))
		return c.Path() + "?" + q.Encode()
	}
	for n := 1; n <= total; n++ {
		links = append(links, pageLink{N: n, URL: link(n), Current: n == current})
	}
	if current > 1 {
		prev = link(min(current-1, max(total, 1)))
	}
	if current < total {
		next = link(current + 1)
	}
	return links, prev, next
}

func formInt(c *fiber.Ctx, key string) (int, error) {
	v := strings.TrimSpace(c.FormValue(key))
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}
