package database

import (
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type Profile struct {
	ID             uuid.UUID
	Phone          pgtype.Text
	Email          pgtype.Text
	FullName       string
	Role           string
	HashedPassword string
	CreatedAt      time.Time
}

type CustomerAddress struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	Label       string
	AddressText string
	CreatedAt   time.Time
}

type Category struct {
	ID           uuid.UUID
	Name         string
	DisplayOrder int32
}

type Product struct {
	ID          uuid.UUID
	Name        string
	Description pgtype.Text
	Price       pgtype.Numeric
	Category    pgtype.Text
	IsAvailable bool
	ImagePath   pgtype.Text
	CreatedAt   time.Time
}

type ProductOptionGroup struct {
	ID            uuid.UUID
	ProductID     uuid.UUID
	Name          string
	SelectionType string
	IsRequired    bool
	SortOrder     int32
}

type ProductOptionValue struct {
	ID              uuid.UUID
	GroupID         uuid.UUID
	Name            string
	PriceAdjustment pgtype.Numeric
	SortOrder       int32
}

type Offer struct {
	ID          uuid.UUID
	Name        string
	Description pgtype.Text
	Price       pgtype.Numeric
	IsAvailable bool
	ImagePath   pgtype.Text
	CreatedAt   time.Time
}

type Order struct {
	ID              uuid.UUID
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
	Status          string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type OrderItem struct {
	ID             uuid.UUID
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

type DeliverySettings struct {
	InsideCityFee  pgtype.Numeric
	OutsideCityFee pgtype.Numeric
}
