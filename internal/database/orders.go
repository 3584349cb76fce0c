package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const orderColumns = `id, code_seq, order_code, user_id, customer_name, customer_phone,
	customer_address, delivery_type, subtotal_amount, delivery_fee, discount_amount,
	total_amount, notes, is_asap, scheduled_for, status, created_at, updated_at`

func scanOrder(row pgx.Row) (Order, error) {
	var o Order
	err := row.Scan(
		&o.ID, &o.CodeSeq, &o.OrderCode, &o.UserID, &o.CustomerName, &o.CustomerPhone,
		&o.CustomerAddress, &o.DeliveryType, &o.SubtotalAmount, &o.DeliveryFee, &o.DiscountAmount,
		&o.TotalAmount, &o.Notes, &o.IsAsap, &o.ScheduledFor, &o.Status, &o.CreatedAt, &o.UpdatedAt,
	)
	return o, err
}

func collectOrders(rows pgx.Rows) ([]Order, error) {
	defer rows.Close()
	var orders []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

// GetNextOrderCodeSeq returns MAX(code_seq)+1, starting at 1 for an empty table.
func (q *Queries) GetNextOrderCodeSeq(ctx context.Context) (int32, error) {
	var next int32
	err := q.db.QueryRow(ctx, `SELECT COALESCE(MAX(code_seq), 0) + 1 FROM orders`).Scan(&next)
	return next, err
}

type CreateOrderParams struct {
	CodeSeq         int32
	OrderCode       string
	UserID          pgtype.UUID
	CustomerName    string
	CustomerPhone   string
	CustomerAddress string
	DeliveryType    string
	SubtotalAmount  pgtype.Numeric
	DeliveryFee     pgtype.Numeric
	DiscountAmount  pgtype.Numeric
	TotalAmount     pgtype.Numeric
	Notes           pgtype.Text
	IsAsap          bool
	ScheduledFor    pgtype.Timestamptz
}

func (q *Queries) CreateOrder(ctx context.Context, arg CreateOrderParams) (Order, error) {
	row := q.db.QueryRow(ctx, `
		INSERT INTO orders (
			code_seq, order_code, user_id, customer_name, customer_phone, customer_address,
			delivery_type, subtotal_amount, delivery_fee, discount_amount, total_amount,
			notes, is_asap, scheduled_for
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING `+orderColumns,
		arg.CodeSeq, arg.OrderCode, arg.UserID, arg.CustomerName, arg.CustomerPhone,
		arg.CustomerAddress, arg.DeliveryType, arg.SubtotalAmount, arg.DeliveryFee,
		arg.DiscountAmount, arg.TotalAmount, arg.Notes, arg.IsAsap, arg.ScheduledFor,
	)
	return scanOrder(row)
}

type CreateOrderItemParams struct {
	OrderID        uuid.UUID
	ItemType       string
	ProductID      pgtype.UUID
	OfferID        pgtype.UUID
	Name           string
	Quantity       int32
	UnitPrice      pgtype.Numeric
	TotalPrice     pgtype.Numeric
	OptionsDetails []byte
	Notes          pgtype.Text
}

func (q *Queries) CreateOrderItem(ctx context.Context, arg CreateOrderItemParams) (OrderItem, error) {
	var it OrderItem
	err := q.db.QueryRow(ctx, `
		INSERT INTO order_items (
			order_id, item_type, product_id, offer_id, name, quantity,
			unit_price, total_price, options_details, notes
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, order_id, item_type, product_id, offer_id, name, quantity,
			unit_price, total_price, options_details, notes`,
		arg.OrderID, arg.ItemType, arg.ProductID, arg.OfferID, arg.Name, arg.Quantity,
		arg.UnitPrice, arg.TotalPrice, arg.OptionsDetails, arg.Notes,
	).Scan(
		&it.ID, &it.OrderID, &it.ItemType, &it.ProductID, &it.OfferID, &it.Name,
		&it.Quantity, &it.UnitPrice, &it.TotalPrice, &it.OptionsDetails, &it.Notes,
	)
	return it, err
}

func (q *Queries) GetOrder(ctx context.Context, id uuid.UUID) (Order, error) {
	row := q.db.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
	return scanOrder(row)
}

// GetOrderByCodeAndPhone powers public tracking. Both values must match.
func (q *Queries) GetOrderByCodeAndPhone(ctx context.Context, orderCode, phone string) (Order, error) {
	row := q.db.QueryRow(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE order_code = $1 AND customer_phone = $2`,
		orderCode, phone)
	return scanOrder(row)
}

type ListOrdersParams struct {
	Status string // empty means all
	Limit  int32
	Offset int32
}

func (q *Queries) ListOrders(ctx context.Context, arg ListOrdersParams) ([]Order, error) {
	rows, err := q.db.Query(ctx, `
		SELECT `+orderColumns+` FROM orders
		WHERE ($1 = '' OR status = $1)
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`,
		arg.Status, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	return collectOrders(rows)
}

// ListOrdersByStatuses returns orders in any of the given statuses.
// Ascending order serves the kitchen queue (oldest first); descending
// serves the driver view (newest first).
func (q *Queries) ListOrdersByStatuses(ctx context.Context, statuses []string, ascending bool) ([]Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE status = ANY($1) ORDER BY created_at`
	if ascending {
		query += ` ASC`
	} else {
		query += ` DESC`
	}
	rows, err := q.db.Query(ctx, query, statuses)
	if err != nil {
		return nil, err
	}
	return collectOrders(rows)
}

func (q *Queries) ListOrdersByPhone(ctx context.Context, phone string) ([]Order, error) {
	rows, err := q.db.Query(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE customer_phone = $1 ORDER BY created_at DESC`,
		phone)
	if err != nil {
		return nil, err
	}
	return collectOrders(rows)
}

func (q *Queries) ListOrderItemsByOrder(ctx context.Context, orderID uuid.UUID) ([]OrderItem, error) {
	rows, err := q.db.Query(ctx, `
		SELECT id, order_id, item_type, product_id, offer_id, name, quantity,
			unit_price, total_price, options_details, notes
		FROM order_items WHERE order_id = $1`,
		orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []OrderItem
	for rows.Next() {
		var it OrderItem
		if err := rows.Scan(
			&it.ID, &it.OrderID, &it.ItemType, &it.ProductID, &it.OfferID, &it.Name,
			&it.Quantity, &it.UnitPrice, &it.TotalPrice, &it.OptionsDetails, &it.Notes,
		); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

type UpdateOrderStatusParams struct {
	ID         uuid.UUID
	FromStatus string
	ToStatus   string
}

// UpdateOrderStatus performs a compare-and-set: the row is only updated
// when it is still in FromStatus. Returns pgx.ErrNoRows when another
// actor moved the order first.
func (q *Queries) UpdateOrderStatus(ctx context.Context, arg UpdateOrderStatusParams) (Order, error) {
	row := q.db.QueryRow(ctx, `
		UPDATE orders SET status = $3, updated_at = now()
		WHERE id = $1 AND status = $2
		RETURNING `+orderColumns,
		arg.ID, arg.FromStatus, arg.ToStatus)
	return scanOrder(row)
}

// CountOrdersByStatuses backs the realtime poll fallback.
func (q *Queries) CountOrdersByStatuses(ctx context.Context, statuses []string) (int64, error) {
	var count int64
	err := q.db.QueryRow(ctx, `SELECT COUNT(*) FROM orders WHERE status = ANY($1)`, statuses).Scan(&count)
	return count, err
}
