package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Product struct {
	ID          uuid.UUID
	Name        string
	Description string
	Price       decimal.Decimal
	Stock       int
	Category    string
	OwnerID     uuid.UUID
	ImageURLs   []string
	CreatedAt   time.Time
}

// ProductPatch carries the fields of a partial update. Nil means
// "leave unchanged".
type ProductPatch struct {
	Name        *string
	Description *string
	Price       *decimal.Decimal
	Stock       *int
	Category    *string
}

type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// ProductFilter is the canonical shape of a listing query. Zero values
// mean "not filtered".
type ProductFilter struct {
	Search      string
	Category    string
	MinPrice    *decimal.Decimal
	MaxPrice    *decimal.Decimal
	InStockOnly bool
	SortBy      string
	SortOrder   SortOrder
	Page        int
	PageSize    int
}

// ProductPage is one page of a listing result.
type ProductPage struct {
	Products   []Product
	Total      int
	Page       int
	PageSize   int
	TotalPages int
}
