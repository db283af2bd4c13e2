package repos

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"courtside/internal/analytics"
)

const purchaseClicksKey = "purchase_clicks"

type ViewCount struct {
	Key       string `db:"view_key" json:"key"`
	ProductID int64  `db:"product_id" json:"productId"`
	Views     int64  `db:"views" json:"views"`
}

type DailyStat struct {
	Date      string `db:"day" json:"date"`
	Purchases int64  `db:"purchases" json:"purchases"`
	Views     int64  `db:"views" json:"views"`
}

type AnalyticsReport struct {
	PurchaseClicks int64            `json:"purchaseClicks"`
	ProductViews   map[string]int64 `json:"productViews"`
	TopProducts    []ViewCount      `json:"topProducts"`
	DailyStats     []DailyStat      `json:"dailyStats"`
}

// AnalyticsRepo stores event counters. It satisfies analytics.Sink.
type AnalyticsRepo struct{ db *sqlx.DB }

func NewAnalyticsRepo(db *sqlx.DB) *AnalyticsRepo { return &AnalyticsRepo{db: db} }

// ViewKey is the counter key for a product view; an empty name is recorded as Unknown.
func ViewKey(productID int64, name string) string {
	if name == "" {
		name = "Unknown"
	}
	return fmt.Sprintf("%d_%s", productID, name)
}

// Record applies one event. Views without a product only touch the day row.
func (r *AnalyticsRepo) Record(ctx context.Context, e analytics.Event) error {
	at := e.OccurredAt
	if at.IsZero() {
		at = time.Now()
	}
	day := at.UTC().Format("2006-01-02")

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO daily_stats(day, purchases, views) VALUES(?, 0, 0)
		ON CONFLICT(day) DO NOTHING
	`, day); err != nil {
		return err
	}

	switch {
	case e.Type == analytics.Purchase:
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO analytics_totals(name, value) VALUES(?, 1)
			ON CONFLICT(name) DO UPDATE SET value = value + 1
		`, purchaseClicksKey); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `UPDATE daily_stats SET purchases = purchases + 1 WHERE day = ?`, day); err != nil {
			return err
		}
	case e.Type == analytics.View && e.ProductID > 0:
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO product_views(view_key, product_id, views, updated_at) VALUES(?, ?, 1, ?)
			ON CONFLICT(view_key) DO UPDATE SET views = views + 1, updated_at = excluded.updated_at
		`, ViewKey(e.ProductID, e.ProductName), e.ProductID, at.UTC().Format(time.RFC3339)); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `UPDATE daily_stats SET views = views + 1 WHERE day = ?`, day); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Report returns the totals, every view counter, the topN most viewed keys and the last
// days recorded days in ascending date order.
func (r *AnalyticsRepo) Report(ctx context.Context, topN, days int) (AnalyticsReport, error) {
	rep := AnalyticsReport{ProductViews: map[string]int64{}, TopProducts: []ViewCount{}, DailyStats: []DailyStat{}}

	if err := r.db.GetContext(ctx, &rep.PurchaseClicks, `
		SELECT COALESCE((SELECT value FROM analytics_totals WHERE name = ?), 0)
	`, purchaseClicksKey); err != nil {
		return rep, err
	}

	var all []ViewCount
	if err := r.db.SelectContext(ctx, &all, `SELECT view_key, product_id, views FROM product_views`); err != nil {
		return rep, err
	}
	for _, v := range all {
		rep.ProductViews[v.Key] = v.Views
	}

	if err := r.db.SelectContext(ctx, &rep.TopProducts, `
		SELECT view_key, product_id, views FROM product_views
		ORDER BY views DESC, view_key ASC
		LIMIT ?
	`, topN); err != nil {
		return rep, err
	}

	if err := r.db.SelectContext(ctx, &rep.DailyStats, `
		SELECT day, purchases, views FROM (
		  SELECT day, purchases, views FROM daily_stats ORDER BY day DESC LIMIT ?
		) ORDER BY day ASC
	`, days); err != nil {
		return rep, err
	}
	return rep, nil
}
