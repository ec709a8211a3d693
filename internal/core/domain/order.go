package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderLineRequest is one (product, quantity) pair of an incoming order.
type OrderLineRequest struct {
	ProductID uuid.UUID
	Quantity  int
}

type OrderLine struct {
	ProductID uuid.UUID
	Quantity  int
	UnitPrice decimal.Decimal
	Product   ProductSummary
}

// ProductSummary is the read-side projection of a product attached to an
// order line.
type ProductSummary struct {
	ID    uuid.UUID
	Name  string
	Price decimal.Decimal
}

// Order is immutable once created.
type Order struct {
	ID         uuid.UUID
	UserID     uuid.UUID
	TotalPrice decimal.Decimal
	CreatedAt  time.Time
	Lines      []OrderLine
}
