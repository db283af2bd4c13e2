package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"courtside/internal/analytics"
)

func TestHomeAndShopPagesRender(t *testing.T) {
	env := newTestApp(t)
	cl := newClient(t, env.App)

	home := cl.get("/")
	if home.StatusCode != http.StatusOK {
		t.Fatalf("home: %d", home.StatusCode)
	}
	if body := readBody(t, home); !strings.Contains(body, "Featured products") || !strings.Contains(body, "Pro Game Ball") {
		t.Fatal("home page missing featured products")
	}

	shop := cl.get("/shop?size=7")
	if shop.StatusCode != http.StatusOK {
		t.Fatalf("shop: %d", shop.StatusCode)
	}
	body := readBody(t, shop)
	if !strings.Contains(body, "Street King") || strings.Contains(body, "Court Mat") {
		t.Fatal("size filter not applied to the shop page")
	}
	// Discounted product shows its original price
	if !strings.Contains(body, "$64.90") {
		t.Fatal("original price missing for discounted product")
	}
}

func TestShopPaginationLinksKeepFilters(t *testing.T) {
	env := newTestApp(t)
	cl := newClient(t, env.App)
	tok := adminToken(t, cl)
	for i := 0; i < 10; i++ {
		cl.sendJSON(http.MethodPost, "/api/admin/products", tok, map[string]any{
			"name": "Trainer " + string(rune('A'+i)), "category": "Training Balls", "sizes": []int{7}, "price": 20, "inStock": true,
		})
	}

	body := readBody(t, cl.get("/shop?size=7&sort=price_asc"))
	if !strings.Contains(body, "page=2") || !strings.Contains(body, "size=7") {
		t.Fatalf("pagination links lost filters")
	}
	page2 := cl.get("/shop?size=7&sort=price_asc&page=2")
	if page2.StatusCode != http.StatusOK {
		t.Fatalf("page 2: %d", page2.StatusCode)
	}
	// Past the end is an empty page, not an error
	if resp := cl.get("/shop?page=99"); resp.StatusCode != http.StatusOK {
		t.Fatalf("page past end: %d", resp.StatusCode)
	}
}

func TestShopRejectsBadQuery(t *testing.T) {
	env := newTestApp(t)
	resp := newClient(t, env.App).get("/shop?q=" + url.QueryEscape("<script>alert(1)</script>"))
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	if strings.Contains(readBody(t, resp), "<script>alert(1)</script>") {
		t.Fatal("query reflected unescaped")
	}
}

func TestProductDetailTracksView(t *testing.T) {
	env := newTestApp(t)
	cl := newClient(t, env.App)

	resp := cl.get("/product/1")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("detail: %d", resp.StatusCode)
	}
	body := readBody(t, resp)
	if !strings.Contains(body, "Pro Game Ball") || !strings.Contains(body, `name="csrf"`) {
		t.Fatal("detail page missing product or add-to-cart form")
	}
	views := env.Tracker.ofType(analytics.View)
	if len(views) != 1 || views[0].ProductID != 1 || views[0].ProductName != "Pro Game Ball" {
		t.Fatalf("view event: %+v", views)
	}

	for _, path := range []string{"/product/999", "/product/abc", "/product/-1"} {
		if resp := cl.get(path); resp.StatusCode != http.StatusNotFound {
			t.Fatalf("%s: expected 404, got %d", path, resp.StatusCode)
		}
	}
	if got := env.Tracker.ofType(analytics.View); len(got) != 1 {
		t.Fatalf("missing products must not be tracked, got %d views", len(got))
	}
}

func TestLocaleSwitch(t *testing.T) {
	env := newTestApp(t)
	cl := newClient(t, env.App)
	form := url.Values{"locale": {"tr"}, "csrf": {cl.csrf()}}

	req := httptest.NewRequest(http.MethodPost, "/locale", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Referer", "http://evil.example/shop?size=7")
	resp := cl.do(req)
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("locale: %d", resp.StatusCode)
	}
	// Only the path of the referer is kept
	if loc := resp.Header.Get("Location"); loc != "/shop?size=7" {
		t.Fatalf("redirect: %q", loc)
	}
	if body := readBody(t, cl.get("/cart")); !strings.Contains(body, "Sepetiniz") {
		t.Fatal("page not rendered in Turkish after switch")
	}

	if resp := cl.postForm("/locale", url.Values{"locale": {"de"}}); resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("unsupported locale: expected 400, got %d", resp.StatusCode)
	}
}
