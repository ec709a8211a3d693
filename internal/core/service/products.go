package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pvolkov/shoply/internal/core/domain"
	"github.com/pvolkov/shoply/internal/core/port"
	"github.com/shopspring/decimal"
)

// ListingCachePrefix groups every cached product listing. Any product
// write invalidates the whole prefix before the write is acknowledged,
// so a client never observes a listing predating its own change.
const ListingCachePrefix = "products:list:"

const (
	defaultPage     = 1
	defaultPageSize = 10
	maxPageSize     = 100
)

type CreateProductInput struct {
	Name        string
	Description string
	Price       decimal.Decimal
	Stock       int
	Category    string
}

type Products struct {
	repo     port.ProductsRepository
	cache    port.ListingCache
	uploader port.ImageUploader
	cacheTTL time.Duration
}

func NewProducts(
	repo port.ProductsRepository,
	cache port.ListingCache,
	uploader port.ImageUploader,
	cacheTTL time.Duration,
) Products {
	return Products{
		repo:     repo,
		cache:    cache,
		uploader: uploader,
		cacheTTL: cacheTTL,
	}
}

func (s Products) Create(
	ctx context.Context, ownerID uuid.UUID, in CreateProductInput,
) (domain.Product, error) {
	const op = "Products.Create"

	if err := ctx.Err(); err != nil {
		return domain.Product{}, fmt.Errorf("%s: %w", op, err)
	}

	p, err := s.repo.CreateProduct(ctx, domain.Product{
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		Stock:       in.Stock,
		Category:    in.Category,
		OwnerID:     ownerID,
	})
	if err != nil {
		return domain.Product{}, fmt.Errorf("%s: %w", op, err)
	}

	s.cache.DeleteByPrefix(ListingCachePrefix)
	return p, nil
}

func (s Products) Get(
	ctx context.Context, id uuid.UUID,
) (domain.Product, error) {
	const op = "Products.Get"

	p, err := s.repo.FindProductByID(ctx, id)
	if err != nil {
		return domain.Product{}, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}

func (s Products) Update(
	ctx context.Context, id uuid.UUID, patch domain.ProductPatch,
) (domain.Product, error) {
	const op = "Products.Update"

	if err := ctx.Err(); err != nil {
		return domain.Product{}, fmt.Errorf("%s: %w", op, err)
	}

	// existence check keeps NotFound distinct from update failures
	if _, err := s.repo.FindProductByID(ctx, id); err != nil {
		return domain.Product{}, fmt.Errorf("%s: %w", op, err)
	}

	p, err := s.repo.UpdateProduct(ctx, id, patch)
	if err != nil {
		return domain.Product{}, fmt.Errorf("%s: %w", op, err)
	}

	s.cache.DeleteByPrefix(ListingCachePrefix)
	return p, nil
}

func (s Products) Delete(ctx context.Context, id uuid.UUID) error {
	const op = "Products.Delete"

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.repo.DeleteProduct(ctx, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.cache.DeleteByPrefix(ListingCachePrefix)
	return nil
}

// AttachImage uploads the image to the hosted image service and appends
// the returned URL to the product's image list.
func (s Products) AttachImage(
	ctx context.Context, id uuid.UUID, filename string, data io.Reader,
) (domain.Product, error) {
	const op = "Products.AttachImage"

	if err := ctx.Err(); err != nil {
		return domain.Product{}, fmt.Errorf("%s: %w", op, err)
	}

	if _, err := s.repo.FindProductByID(ctx, id); err != nil {
		return domain.Product{}, fmt.Errorf("%s: %w", op, err)
	}

	url, err := s.uploader.Upload(ctx, filename, data)
	if err != nil {
		return domain.Product{}, fmt.Errorf("%s: %w", op, err)
	}

	p, err := s.repo.AppendProductImage(ctx, id, url)
	if err != nil {
		return domain.Product{}, fmt.Errorf("%s: %w", op, err)
	}

	s.cache.DeleteByPrefix(ListingCachePrefix)
	return p, nil
}

// List serves one page of the product catalog through the listing
// cache: a fresh cached page is returned as is, otherwise the store is
// queried and the page is cached with the configured TTL.
func (s Products) List(
	ctx context.Context, f domain.ProductFilter,
) (domain.ProductPage, error) {
	const op = "Products.List"
	log := slog.With("op", op)

	if err := ctx.Err(); err != nil {
		return domain.ProductPage{}, fmt.Errorf("%s: %w", op, err)
	}

	f, err := normalizeFilter(f)
	if err != nil {
		return domain.ProductPage{}, err
	}

	key := listingCacheKey(f)
	if v, ok := s.cache.Get(key); ok {
		if page, ok := v.(domain.ProductPage); ok {
			return page, nil
		}
		log.Warn("unexpected cached value type", "key", key)
	}

	products, total, err := s.repo.FindProductsByFilter(ctx, f)
	if err != nil {
		return domain.ProductPage{}, fmt.Errorf("%s: %w", op, err)
	}

	page := domain.ProductPage{
		Products:   products,
		Total:      total,
		Page:       f.Page,
		PageSize:   f.PageSize,
		TotalPages: (total + f.PageSize - 1) / f.PageSize,
	}

	s.cache.Set(key, page, s.cacheTTL)
	return page, nil
}

func normalizeFilter(f domain.ProductFilter) (domain.ProductFilter, error) {
	if f.Page == 0 {
		f.Page = defaultPage
	}
	if f.PageSize == 0 {
		f.PageSize = defaultPageSize
	}

	switch {
	case f.Page < 1:
		return f, domain.InvalidInput("page must be positive")
	case f.PageSize < 1:
		return f, domain.InvalidInput("page size must be positive")
	case f.PageSize > maxPageSize:
		return f, domain.InvalidInput(
			"page size must not exceed " + strconv.Itoa(maxPageSize),
		)
	}

	if f.MinPrice != nil && f.MaxPrice != nil &&
		f.MinPrice.GreaterThan(*f.MaxPrice) {
		return f, domain.InvalidInput("min price exceeds max price")
	}

	switch f.SortBy {
	case "", "price", "name", "created_at":
	default:
		return f, domain.InvalidInput("unknown sort field: " + f.SortBy)
	}
	switch f.SortOrder {
	case "", domain.SortAsc, domain.SortDesc:
	default:
		return f, domain.InvalidInput("sort order must be asc or desc")
	}

	return f, nil
}

// listingCacheKey canonicalizes the filter into a stable key. Fields
// appear in a fixed order and case-insensitive matches are lowered, so
// equivalent queries share one entry.
func listingCacheKey(f domain.ProductFilter) string {
	var b strings.Builder
	b.WriteString(ListingCachePrefix)

	b.WriteString("page=")
	b.WriteString(strconv.Itoa(f.Page))
	b.WriteString("&page_size=")
	b.WriteString(strconv.Itoa(f.PageSize))
	b.WriteString("&search=")
	b.WriteString(strings.ToLower(f.Search))
	b.WriteString("&category=")
	b.WriteString(strings.ToLower(f.Category))
	b.WriteString("&min_price=")
	if f.MinPrice != nil {
		b.WriteString(f.MinPrice.String())
	}
	b.WriteString("&max_price=")
	if f.MaxPrice != nil {
		b.WriteString(f.MaxPrice.String())
	}
	b.WriteString("&in_stock=")
	b.WriteString(strconv.FormatBool(f.InStockOnly))
	b.WriteString("&sort_by=")
	b.WriteString(f.SortBy)
	b.WriteString("&sort_order=")
	b.WriteString(string(f.SortOrder))

	return b.String()
}
