package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const profileColumns = `id, phone, email, full_name, role, hashed_password, created_at`

func scanProfile(row pgx.Row) (Profile, error) {
	var p Profile
	err := row.Scan(&p.ID, &p.Phone, &p.Email, &p.FullName, &p.Role, &p.HashedPassword, &p.CreatedAt)
	return p, err
}

func (q *Queries) GetProfile(ctx context.Context, id uuid.UUID) (Profile, error) {
	row := q.db.QueryRow(ctx, `SELECT `+profileColumns+` FROM profiles WHERE id = $1`, id)
	return scanProfile(row)
}

func (q *Queries) GetProfileByPhone(ctx context.Context, phone string) (Profile, error) {
	row := q.db.QueryRow(ctx, `SELECT `+profileColumns+` FROM profiles WHERE phone = $1`, phone)
	return scanProfile(row)
}

func (q *Queries) GetProfileByEmail(ctx context.Context, email string) (Profile, error) {
	row := q.db.QueryRow(ctx, `SELECT `+profileColumns+` FROM profiles WHERE email = $1`, email)
	return scanProfile(row)
}

type CreateProfileParams struct {
	Phone          string
	Email          string
	FullName       string
	Role           string
	HashedPassword string
}

func (q *Queries) CreateProfile(ctx context.Context, arg CreateProfileParams) (Profile, error) {
	row := q.db.QueryRow(ctx, `
		INSERT INTO profiles (phone, email, full_name, role, hashed_password)
		VALUES (NULLIF($1, ''), NULLIF($2, ''), $3, $4, $5)
		RETURNING `+profileColumns,
		arg.Phone, arg.Email, arg.FullName, arg.Role, arg.HashedPassword)
	return scanProfile(row)
}

func (q *Queries) ListAddressesByUser(ctx context.Context, userID uuid.UUID) ([]CustomerAddress, error) {
	rows, err := q.db.Query(ctx, `
		SELECT id, user_id, label, address_text, created_at
		FROM customer_addresses WHERE user_id = $1 ORDER BY created_at`,
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var addrs []CustomerAddress
	for rows.Next() {
		var a CustomerAddress
		if err := rows.Scan(&a.ID, &a.UserID, &a.Label, &a.AddressText, &a.CreatedAt); err != nil {
			return nil, err
		}
		addrs = append(addrs, a)
	}
	return addrs, rows.Err()
}

type CreateAddressParams struct {
	UserID      uuid.UUID
	Label       string
	AddressText string
}

func (q *Queries) CreateAddress(ctx context.Context, arg CreateAddressParams) (CustomerAddress, error) {
	var a CustomerAddress
	err := q.db.QueryRow(ctx, `
		INSERT INTO customer_addresses (user_id, label, address_text)
		VALUES ($1, $2, $3)
		RETURNING id, user_id, label, address_text, created_at`,
		arg.UserID, arg.Label, arg.AddressText,
	).Scan(&a.ID, &a.UserID, &a.Label, &a.AddressText, &a.CreatedAt)
	return a, err
}

func (q *Queries) DeleteAddress(ctx context.Context, id, userID uuid.UUID) error {
	_, err := q.db.Exec(ctx,
		`DELETE FROM customer_addresses WHERE id = $1 AND user_id = $2`, id, userID)
	return err
}
