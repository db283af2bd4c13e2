package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"courtside/internal/analytics"
	"courtside/internal/config"
	"courtside/internal/domain"
	"courtside/internal/http/handlers"
	"courtside/internal/i18n"
	"courtside/internal/repos"
)

const (
	testAdminUser = "admin"
	testAdminPass = "c0urtside!"
	testPhone     = "+90 555 111 22 33"
)

type recorder struct {
	mu     sync.Mutex
	events []analytics.Event
}

func (r *recorder) Track(e analytics.Event) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return true
}

func (r *recorder) ofType(t analytics.EventType) []analytics.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []analytics.Event
	for _, e := range r.events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

type testEnv struct {
	App     *fiber.App
	Prods   *repos.ProductRepo
	Stats   *repos.AnalyticsRepo
	Tracker *recorder
	Cfg     config.Config
}

func seedProducts(t *testing.T, r *repos.ProductRepo) {
	t.Helper()
	orig := decimal.RequireFromString("64.90")
	seed := []domain.Product{
		{ID: 1, Name: "Pro Game Ball", Category: "Game Balls", Sizes: []int{6, 7}, CourtType: domain.CourtIndoor, Price: decimal.RequireFromString("49.90"), OriginalPrice: &orig, Rating: 4.9, InStock: true, Image: "/static/img/pro.jpg"},
		{ID: 2, Name: "Street King", Category: "Outdoor Balls", Sizes: []int{7}, CourtType: domain.CourtOutdoor, Price: decimal.RequireFromString("24.50"), Rating: 4.2, InStock: true},
		{ID: 3, Name: "Court Mat", Category: "Training", CourtType: domain.CourtHybrid, Price: decimal.RequireFromString("15"), Rating: 3.9, InStock: true},
		{ID: 4, Name: "Sold Out Ball", Category: "Game Balls", Sizes: []int{5}, CourtType: domain.Court3x3, Price: decimal.RequireFromString("10"), Rating: 4.0, InStock: false},
	}
	for _, p := range seed {
		if _, err := r.Create(p); err != nil {
			t.Fatalf("seed product %d: %v", p.ID, err)
		}
	}
}

// newTestApp wires the full application against a temp data file and an in-memory database.
func newTestApp(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Config{
		DataFile:        filepath.Join(dir, "products.json"),
		AnalyticsDSN:    ":memory:",
		UploadDir:       filepath.Join(dir, "uploads"),
		TemplatesDir:    "../../web/templates",
		BaseURL:         "http://shop.test",
		AdminUser:       testAdminUser,
		AdminPassword:   testAdminPass,
		JWTSecret:       "test-secret",
		AdminSessionTTL: time.Hour,
		WhatsAppPhone:   testPhone,
		TaxRate:         decimal.RequireFromString("0.08"),
		PageSize:        9,
		MaxUploadMB:     4,
		CartIdleTTL:     time.Hour,
		DefaultLocale:   i18n.EN,
	}
	db, err := repos.OpenDB(cfg.AnalyticsDSN)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	prods, err := repos.NewProductRepo(cfg.DataFile)
	if err != nil {
		t.Fatalf("product repo: %v", err)
	}
	seedProducts(t, prods)
	bundle, err := i18n.Load(cfg.DefaultLocale)
	if err != nil {
		t.Fatalf("load locales: %v", err)
	}
	stats := repos.NewAnalyticsRepo(db)
	rec := &recorder{}
	deps, err := handlers.NewDeps(cfg, prods, stats, rec, bundle)
	if err != nil {
		t.Fatalf("deps: %v", err)
	}
	app := handlers.NewApp(cfg, deps, handlers.NewViews(cfg.TemplatesDir, bundle))
	return &testEnv{App: app, Prods: prods, Stats: stats, Tracker: rec, Cfg: cfg}
}

// client keeps cookies between requests the way a browser would.
type client struct {
	t       *testing.T
	app     *fiber.App
	cookies map[string]string
}

func newClient(t *testing.T, app *fiber.App) *client {
	return &client{t: t, app: app, cookies: map[string]string{}}
}

func (cl *client) do(req *http.Request) *http.Response {
	cl.t.Helper()
	for k, v := range cl.cookies {
		req.AddCookie(&http.Cookie{Name: k, Value: v})
	}
	resp, err := cl.app.Test(req, -1)
	if err != nil {
		cl.t.Fatalf("%s %s: %v", req.Method, req.URL, err)
	}
	for _, c := range resp.Cookies() {
		if c.Value == "" || (!c.Expires.IsZero() && c.Expires.Before(time.Now())) {
			delete(cl.cookies, c.Name)
			continue
		}
		cl.cookies[c.Name] = c.Value
	}
	return resp
}

func (cl *client) get(path string) *http.Response {
	cl.t.Helper()
	return cl.do(httptest.NewRequest(http.MethodGet, path, nil))
}

// csrf fetches a page so the CSRF cookie is set and returns its token.
func (cl *client) csrf() string {
	cl.t.Helper()
	if tok := cl.cookies["csrf_"]; tok != "" {
		return tok
	}
	cl.get("/")
	tok := cl.cookies["csrf_"]
	if tok == "" {
		cl.t.Fatal("csrf token missing")
	}
	return tok
}

// postForm submits a form with the CSRF token attached.
func (cl *client) postForm(path string, form url.Values) *http.Response {
	cl.t.Helper()
	form.Set("csrf", cl.csrf())
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return cl.do(req)
}

func (cl *client) sendJSON(method, path, token string, body any) *http.Response {
	cl.t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			cl.t.Fatal(err)
		}
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return cl.do(req)
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return string(b)
}

func decodeJSON(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decode json: %v", err)
	}
}

type logEntry struct {
	Level   string         `json:"level"`
	Action  string         `json:"action"`
	Subject string         `json:"subject"`
	Fields  map[string]any `json:"fields"`
}

type lockedWriter struct {
	w  *bytes.Buffer
	mu *sync.Mutex
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}

// captureLogs temporarily replaces the standard logger output and returns the JSON entries.
func captureLogs(t *testing.T, fn func()) []logEntry {
	t.Helper()
	var buf bytes.Buffer
	var mu sync.Mutex
	oldW := log.Writer()
	oldFlags := log.Flags()
	log.SetOutput(&lockedWriter{w: &buf, mu: &mu})
	log.SetFlags(0) // remove timestamps to make JSON parseable
	defer func() {
		log.SetOutput(oldW)
		log.SetFlags(oldFlags)
	}()

	fn()

	mu.Lock()
	defer mu.Unlock()
	var entries []logEntry
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		var e logEntry
		if err := json.Unmarshal([]byte(line), &e); err == nil {
			entries = append(entries, e)
		}
	}
	return entries
}

func findLog(entries []logEntry, action string) (logEntry, bool) {
	for _, e := range entries {
		if e.Action == action {
			return e, true
		}
	}
	return logEntry{}, false
}

func itoa(n int64) string { return strconv.FormatInt(n, 10) }
