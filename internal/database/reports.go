package database

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

type DailySalesRow struct {
	Day        time.Time
	OrderCount int64
	Total      pgtype.Numeric
}

// GetDailySales aggregates delivered orders per day over a date range.
func (q *Queries) GetDailySales(ctx context.Context, from, to time.Time) ([]DailySalesRow, error) {
	rows, err := q.db.Query(ctx, `
		SELECT date_trunc('day', created_at) AS day,
			COUNT(*) AS order_count,
			COALESCE(SUM(total_amount), 0) AS total
		FROM orders
		WHERE status = 'DELIVERED' AND created_at >= $1 AND created_at < $2
		GROUP BY day ORDER BY day`,
		from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var result []DailySalesRow
	for rows.Next() {
		var r DailySalesRow
		if err := rows.Scan(&r.Day, &r.OrderCount, &r.Total); err != nil {
			return nil, err
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

type ProductSalesRow struct {
	Name     string
	Quantity int64
	Total    pgtype.Numeric
}

// GetProductSales ranks items by quantity sold across delivered orders.
func (q *Queries) GetProductSales(ctx context.Context, from, to time.Time) ([]ProductSalesRow, error) {
	rows, err := q.db.Query(ctx, `
		SELECT oi.name,
			COALESCE(SUM(oi.quantity), 0) AS quantity,
			COALESCE(SUM(oi.total_price), 0) AS total
		FROM order_items oi
		JOIN orders o ON o.id = oi.order_id
		WHERE o.status = 'DELIVERED' AND o.created_at >= $1 AND o.created_at < $2
		GROUP BY oi.name ORDER BY quantity DESC`,
		from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var result []ProductSalesRow
	for rows.Next() {
		var r ProductSalesRow
		if err := rows.Scan(&r.Name, &r.Quantity, &r.Total); err != nil {
			return nil, err
		}
		result = append(result, r)
	}
	return result, rows.Err()
}
