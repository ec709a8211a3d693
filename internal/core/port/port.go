package port

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/pvolkov/shoply/internal/core/domain"
)

type UsersRepository interface {
	CreateUser(context.Context, domain.User) (domain.User, error)
	FindUserByEmail(context.Context, string) (domain.User, error)
	// UserExists reports whether a user with the given email or
	// username is already registered.
	UserExists(ctx context.Context, email, username string) (bool, error)
}

type ProductsRepository interface {
	CreateProduct(context.Context, domain.Product) (domain.Product, error)
	FindProductByID(context.Context, uuid.UUID) (domain.Product, error)
	UpdateProduct(
		ctx context.Context, id uuid.UUID, patch domain.ProductPatch,
	) (domain.Product, error)
	DeleteProduct(context.Context, uuid.UUID) error
	AppendProductImage(
		ctx context.Context, id uuid.UUID, imageURL string,
	) (domain.Product, error)
	FindProductsByFilter(
		context.Context, domain.ProductFilter,
	) (products []domain.Product, total int, err error)
}

// OrderTx is the transaction scope of a single order placement. Every
// call runs inside one store transaction; the scope commits only if the
// whole placement function returns nil.
type OrderTx interface {
	FindProductByID(context.Context, uuid.UUID) (domain.Product, error)
	// DecrementStock atomically decreases the product's stock and
	// reports false when the remaining stock is insufficient. It never
	// lets stock go negative.
	DecrementStock(
		ctx context.Context, productID uuid.UUID, qty int,
	) (bool, error)
	CreateOrder(context.Context, domain.Order) (domain.Order, error)
}

type OrdersRepository interface {
	// InOrderTx runs fn within a store transaction. A non-nil error
	// from fn rolls the transaction back and is returned unchanged.
	InOrderTx(ctx context.Context, fn func(OrderTx) error) error
	FindOrdersByUser(context.Context, uuid.UUID) ([]domain.Order, error)
}

// ListingCache is the read-through layer in front of product listings.
type ListingCache interface {
	Get(key string) (any, bool)
	Set(key string, value any, ttl time.Duration)
	DeleteByPrefix(prefix string)
}

type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

type TokenIssuer interface {
	Issue(domain.User) (string, error)
}

type ImageUploader interface {
	Upload(
		ctx context.Context, filename string, data io.Reader,
	) (url string, err error)
}

type OrderEventsProducer interface {
	ProduceOrderPlaced(context.Context, domain.Order) error
}
