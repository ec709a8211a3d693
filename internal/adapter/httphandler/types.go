package httphandler

import (
	"time"

	"github.com/google/uuid"
	"github.com/pvolkov/shoply/internal/core/domain"
	"github.com/shopspring/decimal"
)

type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50,alphanum"`
	Email    string `json:"email" validate:"required,email,min=5,max=255"`
	Password string `json:"password" validate:"required,min=8,max=100,password"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type CreateProductRequest struct {
	Name        string          `json:"name" validate:"required,min=3,max=100"`
	Description string          `json:"description" validate:"required,min=10,max=1000"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock" validate:"min=0"`
	Category    string          `json:"category" validate:"required,min=2,max=50"`
}

type UpdateProductRequest struct {
	Name        *string          `json:"name" validate:"omitempty,min=3,max=100"`
	Description *string          `json:"description" validate:"omitempty,min=10,max=1000"`
	Price       *decimal.Decimal `json:"price"`
	Stock       *int             `json:"stock" validate:"omitempty,min=0"`
	Category    *string          `json:"category" validate:"omitempty,min=2,max=50"`
}

type OrderLineRequest struct {
	ProductID string `json:"productId" validate:"required,uuid4"`
	Quantity  int    `json:"quantity" validate:"required,gt=0"`
}

type CreateOrderRequest []OrderLineRequest

type User struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

type Product struct {
	ID          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	Category    string          `json:"category"`
	OwnerID     uuid.UUID       `json:"userId"`
	ImageURLs   []string        `json:"imageUrls"`
	CreatedAt   time.Time       `json:"createdAt"`
}

type ProductPage struct {
	Products   []Product `json:"products"`
	Total      int       `json:"totalProducts"`
	Page       int       `json:"currentPage"`
	PageSize   int       `json:"pageSize"`
	TotalPages int       `json:"totalPages"`
}

type OrderLine struct {
	ProductID uuid.UUID       `json:"productId"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Product   ProductSummary  `json:"product"`
}

type ProductSummary struct {
	ID    uuid.UUID       `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

type Order struct {
	ID         uuid.UUID       `json:"id"`
	UserID     uuid.UUID       `json:"userId"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
	CreatedAt  time.Time       `json:"createdAt"`
	Lines      []OrderLine     `json:"products"`
}

type CacheStats struct {
	Hits   uint64 `json:"hits"`
	Misses uint64 `json:"misses"`
	Keys   int    `json:"keys"`
}

func toUserView(u domain.User) User {
	return User{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}

func toProductView(p domain.Product) Product {
	return Product{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Stock:       p.Stock,
		Category:    p.Category,
		OwnerID:     p.OwnerID,
		ImageURLs:   p.ImageURLs,
		CreatedAt:   p.CreatedAt,
	}
}

func toProductPageView(page domain.ProductPage) ProductPage {
	products := make([]Product, len(page.Products))
	for i, p := range page.Products {
		products[i] = toProductView(p)
	}
	return ProductPage{
		Products:   products,
		Total:      page.Total,
		Page:       page.Page,
		PageSize:   page.PageSize,
		TotalPages: page.TotalPages,
	}
}

func toOrderView(o domain.Order) Order {
	lines := make([]OrderLine, len(o.Lines))
	for i, l := range o.Lines {
		lines[i] = OrderLine{
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
			Product: ProductSummary{
				ID:    l.Product.ID,
				Name:  l.Product.Name,
				Price: l.Product.Price,
			},
		}
	}
	return Order{
		ID:         o.ID,
		UserID:     o.UserID,
		TotalPrice: o.TotalPrice,
		CreatedAt:  o.CreatedAt,
		Lines:      lines,
	}
}

func toOrderViews(os []domain.Order) []Order {
	views := make([]Order, len(os))
	for i, o := range os {
		views[i] = toOrderView(o)
	}
	return views
}
