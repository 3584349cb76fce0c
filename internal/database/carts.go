package database

import (
	"context"

	"github.com/google/uuid"
)

// GetCartItems returns the stored cart payload for a token, or
// pgx.ErrNoRows when no cart exists yet.
func (q *Queries) GetCartItems(ctx context.Context, token uuid.UUID) ([]byte, error) {
	var items []byte
	err := q.db.QueryRow(ctx, `SELECT items FROM carts WHERE token = $1`, token).Scan(&items)
	return items, err
}

func (q *Queries) UpsertCartItems(ctx context.Context, token uuid.UUID, items []byte) error {
	_, err := q.db.Exec(ctx, `
		INSERT INTO carts (token, items) VALUES ($1, $2)
		ON CONFLICT (token) DO UPDATE SET items = EXCLUDED.items, updated_at = now()`,
		token, items)
	return err
}

func (q *Queries) DeleteCart(ctx context.Context, token uuid.UUID) error {
	_, err := q.db.Exec(ctx, `DELETE FROM carts WHERE token = $1`, token)
	return err
}
