package repos_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"courtside/internal/analytics"
	"courtside/internal/domain"
	"courtside/internal/repos"
)

func newProductRepo(t *testing.T) (*repos.ProductRepo, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data", "products.json")
	r, err := repos.NewProductRepo(path)
	require.NoError(t, err)
	return r, path
}

func TestProductRepoCreatesMissingFile(t *testing.T) {
	r, path := newProductRepo(t)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"products":[],"sizes":[],"courtTypes":[]}`, string(raw))

	list, err := r.List()
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestProductRepoCRUD(t *testing.T) {
	r, path := newProductRepo(t)

	created, err := r.Create(domain.Product{Name: "Pro Game Ball", Sizes: []int{6, 7}, Price: decimal.RequireFromString("49.9")})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.NotEmpty(t, created.CreatedAt)

	second, err := r.Create(domain.Product{Name: "Mini", Sizes: []int{3}})
	require.NoError(t, err)
	assert.NotEqual(t, created.ID, second.ID)

	_, err = r.Create(domain.Product{ID: second.ID, Name: "dup"})
	assert.ErrorIs(t, err, repos.ErrDuplicateProduct)

	got, err := r.Get(created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Pro Game Ball", got.Name)

	got.Name = "Pro Game Ball II"
	got.CreatedAt = ""
	updated, err := r.Update(got)
	require.NoError(t, err)
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)

	_, err = r.Update(domain.Product{ID: 404})
	assert.ErrorIs(t, err, repos.ErrProductNotFound)

	require.NoError(t, r.Delete(second.ID))
	require.NoError(t, r.Delete(second.ID))
	_, err = r.Get(second.ID)
	assert.ErrorIs(t, err, repos.ErrProductNotFound)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"price": 49.9`)
	assert.Contains(t, string(raw), "\n  \"products\"")

	list, err := r.List()
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Pro Game Ball II", list[0].Name)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, strings.HasPrefix(e.Name(), ".products-"), "temp file left behind: %s", e.Name())
	}
}

func TestProductRepoReportsCorruptFile(t *testing.T) {
	r, path := newProductRepo(t)
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := r.List()
	assert.Error(t, err)
}

func TestAnalyticsRepoRecordAndReport(t *testing.T) {
	db, err := repos.OpenDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	r := repos.NewAnalyticsRepo(db)
	ctx := context.Background()

	day1 := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	day2 := day1.Add(24 * time.Hour)
	day3 := day2.Add(24 * time.Hour)

	events := []analytics.Event{
		{Type: analytics.View, ProductID: 1, ProductName: "Pro Ball", OccurredAt: day1},
		{Type: analytics.View, ProductID: 1, ProductName: "Pro Ball", OccurredAt: day2},
		{Type: analytics.View, ProductID: 2, OccurredAt: day2},
		{Type: analytics.View, OccurredAt: day2},
		{Type: analytics.Purchase, OccurredAt: day2},
		{Type: analytics.Purchase, OccurredAt: day3},
	}
	for _, e := range events {
		require.NoError(t, r.Record(ctx, e))
	}

	rep, err := r.Report(ctx, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(2), rep.PurchaseClicks)
	assert.Equal(t, map[string]int64{"1_Pro Ball": 2, "2_Unknown": 1}, rep.ProductViews)
	require.Len(t, rep.TopProducts, 1)
	assert.Equal(t, "1_Pro Ball", rep.TopProducts[0].Key)

	assert.Equal(t, []repos.DailyStat{
		{Date: "2026-03-02", Purchases: 1, Views: 2},
		{Date: "2026-03-03", Purchases: 1, Views: 0},
	}, rep.DailyStats)
}

func TestAnalyticsReportOnEmptyStore(t *testing.T) {
	db, err := repos.OpenDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	rep, err := repos.NewAnalyticsRepo(db).Report(context.Background(), 10, 30)
	require.NoError(t, err)
	assert.Zero(t, rep.PurchaseClicks)
	assert.Empty(t, rep.TopProducts)
	assert.NotNil(t, rep.DailyStats)
}
