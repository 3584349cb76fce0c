package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

// --- Categories ---

func (q *Queries) ListCategories(ctx context.Context) ([]Category, error) {
	rows, err := q.db.Query(ctx,
		`SELECT id, name, display_order FROM categories ORDER BY display_order, name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var cats []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name, &c.DisplayOrder); err != nil {
			return nil, err
		}
		cats = append(cats, c)
	}
	return cats, rows.Err()
}

type CreateCategoryParams struct {
	Name         string
	DisplayOrder int32
}

func (q *Queries) CreateCategory(ctx context.Context, arg CreateCategoryParams) (Category, error) {
	var c Category
	err := q.db.QueryRow(ctx,
		`INSERT INTO categories (name, display_order) VALUES ($1, $2)
		 RETURNING id, name, display_order`,
		arg.Name, arg.DisplayOrder).Scan(&c.ID, &c.Name, &c.DisplayOrder)
	return c, err
}

type UpdateCategoryParams struct {
	ID           uuid.UUID
	Name         string
	DisplayOrder int32
}

func (q *Queries) UpdateCategory(ctx context.Context, arg UpdateCategoryParams) (Category, error) {
	var c Category
	err := q.db.QueryRow(ctx,
		`UPDATE categories SET name = $2, display_order = $3 WHERE id = $1
		 RETURNING id, name, display_order`,
		arg.ID, arg.Name, arg.DisplayOrder).Scan(&c.ID, &c.Name, &c.DisplayOrder)
	return c, err
}

func (q *Queries) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	_, err := q.db.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	return err
}

// --- Products ---

const productColumns = `id, name, description, price, category, is_available, image_path, created_at`

func scanProduct(row pgx.Row) (Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Category,
		&p.IsAvailable, &p.ImagePath, &p.CreatedAt)
	return p, err
}

func collectProducts(rows pgx.Rows) ([]Product, error) {
	defer rows.Close()
	var products []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// ListAvailableProducts returns only items the public menu should show.
func (q *Queries) ListAvailableProducts(ctx context.Context) ([]Product, error) {
	rows, err := q.db.Query(ctx,
		`SELECT `+productColumns+` FROM products WHERE is_available ORDER BY category, name`)
	if err != nil {
		return nil, err
	}
	return collectProducts(rows)
}

func (q *Queries) ListProducts(ctx context.Context) ([]Product, error) {
	rows, err := q.db.Query(ctx,
		`SELECT `+productColumns+` FROM products ORDER BY category, name`)
	if err != nil {
		return nil, err
	}
	return collectProducts(rows)
}

func (q *Queries) GetProduct(ctx context.Context, id uuid.UUID) (Product, error) {
	row := q.db.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
	return scanProduct(row)
}

type CreateProductParams struct {
	Name        string
	Description pgtype.Text
	Price       pgtype.Numeric
	Category    pgtype.Text
	IsAvailable bool
	ImagePath   pgtype.Text
}

func (q *Queries) CreateProduct(ctx context.Context, arg CreateProductParams) (Product, error) {
	row := q.db.QueryRow(ctx, `
		INSERT INTO products (name, description, price, category, is_available, image_path)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+productColumns,
		arg.Name, arg.Description, arg.Price, arg.Category, arg.IsAvailable, arg.ImagePath)
	return scanProduct(row)
}

type UpdateProductParams struct {
	ID          uuid.UUID
	Name        string
	Description pgtype.Text
	Price       pgtype.Numeric
	Category    pgtype.Text
	IsAvailable bool
	ImagePath   pgtype.Text
}

func (q *Queries) UpdateProduct(ctx context.Context, arg UpdateProductParams) (Product, error) {
	row := q.db.QueryRow(ctx, `
		UPDATE products SET name = $2, description = $3, price = $4, category = $5,
			is_available = $6, image_path = $7
		WHERE id = $1
		RETURNING `+productColumns,
		arg.ID, arg.Name, arg.Description, arg.Price, arg.Category, arg.IsAvailable, arg.ImagePath)
	return scanProduct(row)
}

func (q *Queries) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	_, err := q.db.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	return err
}

// --- Option groups and values ---

func (q *Queries) ListOptionGroupsByProduct(ctx context.Context, productID uuid.UUID) ([]ProductOptionGroup, error) {
	rows, err := q.db.Query(ctx, `
		SELECT id, product_id, name, selection_type, is_required, sort_order
		FROM product_option_groups WHERE product_id = $1 ORDER BY sort_order, name`,
		productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var groups []ProductOptionGroup
	for rows.Next() {
		var g ProductOptionGroup
		if err := rows.Scan(&g.ID, &g.ProductID, &g.Name, &g.SelectionType, &g.IsRequired, &g.SortOrder); err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

func (q *Queries) ListOptionValuesByGroup(ctx context.Context, groupID uuid.UUID) ([]ProductOptionValue, error) {
	rows, err := q.db.Query(ctx, `
		SELECT id, group_id, name, price_adjustment, sort_order
		FROM product_option_values WHERE group_id = $1 ORDER BY sort_order, name`,
		groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var values []ProductOptionValue
	for rows.Next() {
		var v ProductOptionValue
		if err := rows.Scan(&v.ID, &v.GroupID, &v.Name, &v.PriceAdjustment, &v.SortOrder); err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, rows.Err()
}

type CreateOptionGroupParams struct {
	ProductID     uuid.UUID
	Name          string
	SelectionType string
	IsRequired    bool
	SortOrder     int32
}

func (q *Queries) CreateOptionGroup(ctx context.Context, arg CreateOptionGroupParams) (ProductOptionGroup, error) {
	var g ProductOptionGroup
	err := q.db.QueryRow(ctx, `
		INSERT INTO product_option_groups (product_id, name, selection_type, is_required, sort_order)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, product_id, name, selection_type, is_required, sort_order`,
		arg.ProductID, arg.Name, arg.SelectionType, arg.IsRequired, arg.SortOrder,
	).Scan(&g.ID, &g.ProductID, &g.Name, &g.SelectionType, &g.IsRequired, &g.SortOrder)
	return g, err
}

func (q *Queries) DeleteOptionGroup(ctx context.Context, id uuid.UUID) error {
	_, err := q.db.Exec(ctx, `DELETE FROM product_option_groups WHERE id = $1`, id)
	return err
}

type CreateOptionValueParams struct {
	GroupID         uuid.UUID
	Name            string
	PriceAdjustment pgtype.Numeric
	SortOrder       int32
}

func (q *Queries) CreateOptionValue(ctx context.Context, arg CreateOptionValueParams) (ProductOptionValue, error) {
	var v ProductOptionValue
	err := q.db.QueryRow(ctx, `
		INSERT INTO product_option_values (group_id, name, price_adjustment, sort_order)
		VALUES ($1, $2, $3, $4)
		RETURNING id, group_id, name, price_adjustment, sort_order`,
		arg.GroupID, arg.Name, arg.PriceAdjustment, arg.SortOrder,
	).Scan(&v.ID, &v.GroupID, &v.Name, &v.PriceAdjustment, &v.SortOrder)
	return v, err
}

func (q *Queries) DeleteOptionValue(ctx context.Context, id uuid.UUID) error {
	_, err := q.db.Exec(ctx, `DELETE FROM product_option_values WHERE id = $1`, id)
	return err
}

// --- Offers ---

const offerColumns = `id, name, description, price, is_available, image_path, created_at`

func scanOffer(row pgx.Row) (Offer, error) {
	var o Offer
	err := row.Scan(&o.ID, &o.Name, &o.Description, &o.Price, &o.IsAvailable, &o.ImagePath, &o.CreatedAt)
	return o, err
}

func (q *Queries) ListAvailableOffers(ctx context.Context) ([]Offer, error) {
	rows, err := q.db.Query(ctx,
		`SELECT `+offerColumns+` FROM offers WHERE is_available ORDER BY name`)
	if err != nil {
		return nil, err
	}
	return collectOffers(rows)
}

func (q *Queries) ListOffers(ctx context.Context) ([]Offer, error) {
	rows, err := q.db.Query(ctx, `SELECT `+offerColumns+` FROM offers ORDER BY name`)
	if err != nil {
		return nil, err
	}
	return collectOffers(rows)
}

func collectOffers(rows pgx.Rows) ([]Offer, error) {
	defer rows.Close()
	var offers []Offer
	for rows.Next() {
		o, err := scanOffer(rows)
		if err != nil {
			return nil, err
		}
		offers = append(offers, o)
	}
	return offers, rows.Err()
}

func (q *Queries) GetOffer(ctx context.Context, id uuid.UUID) (Offer, error) {
	row := q.db.QueryRow(ctx, `SELECT `+offerColumns+` FROM offers WHERE id = $1`, id)
	return scanOffer(row)
}

type CreateOfferParams struct {
	Name        string
	Description pgtype.Text
	Price       pgtype.Numeric
	IsAvailable bool
	ImagePath   pgtype.Text
}

func (q *Queries) CreateOffer(ctx context.Context, arg CreateOfferParams) (Offer, error) {
	row := q.db.QueryRow(ctx, `
		INSERT INTO offers (name, description, price, is_available, image_path)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+offerColumns,
		arg.Name, arg.Description, arg.Price, arg.IsAvailable, arg.ImagePath)
	return scanOffer(row)
}

type UpdateOfferParams struct {
	ID          uuid.UUID
	Name        string
	Description pgtype.Text
	Price       pgtype.Numeric
	IsAvailable bool
	ImagePath   pgtype.Text
}

func (q *Queries) UpdateOffer(ctx context.Context, arg UpdateOfferParams) (Offer, error) {
	row := q.db.QueryRow(ctx, `
		UPDATE offers SET name = $2, description = $3, price = $4, is_available = $5, image_path = $6
		WHERE id = $1
		RETURNING `+offerColumns,
		arg.ID, arg.Name, arg.Description, arg.Price, arg.IsAvailable, arg.ImagePath)
	return scanOffer(row)
}

func (q *Queries) DeleteOffer(ctx context.Context, id uuid.UUID) error {
	_, err := q.db.Exec(ctx, `DELETE FROM offers WHERE id = $1`, id)
	return err
}
