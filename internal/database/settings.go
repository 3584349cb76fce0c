package database

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

func (q *Queries) GetDeliverySettings(ctx context.Context) (DeliverySettings, error) {
	var s DeliverySettings
	err := q.db.QueryRow(ctx,
		`SELECT inside_city_fee, outside_city_fee FROM delivery_settings WHERE id = 1`,
	).Scan(&s.InsideCityFee, &s.OutsideCityFee)
	return s, err
}

type UpsertDeliverySettingsParams struct {
	InsideCityFee  pgtype.Numeric
	OutsideCityFee pgtype.Numeric
}

func (q *Queries) UpsertDeliverySettings(ctx context.Context, arg UpsertDeliverySettingsParams) (DeliverySettings, error) {
	var s DeliverySettings
	err := q.db.QueryRow(ctx, `
		INSERT INTO delivery_settings (id, inside_city_fee, outside_city_fee)
		VALUES (1, $1, $2)
		ON CONFLICT (id) DO UPDATE
		SET inside_city_fee = EXCLUDED.inside_city_fee,
			outside_city_fee = EXCLUDED.outside_city_fee
		RETURNING inside_city_fee, outside_city_fee`,
		arg.InsideCityFee, arg.OutsideCityFee,
	).Scan(&s.InsideCityFee, &s.OutsideCityFee)
	return s, err
}

// GetSystemSetting returns the raw JSON value for a key, or pgx.ErrNoRows.
func (q *Queries) GetSystemSetting(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := q.db.QueryRow(ctx,
		`SELECT value FROM system_settings WHERE key = $1`, key).Scan(&value)
	return value, err
}

func (q *Queries) UpsertSystemSetting(ctx context.Context, key string, value []byte) error {
	_, err := q.db.Exec(ctx, `
		INSERT INTO system_settings (key, value) VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`,
		key, value)
	return err
}
