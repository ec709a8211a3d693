package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pvolkov/shoply/internal/core/domain"
	"github.com/pvolkov/shoply/internal/core/service"
	"github.com/pvolkov/shoply/pkg/kvcache"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockProductsRepository struct {
	mock.Mock
}

func (m *MockProductsRepository) CreateProduct(
	ctx context.Context, p domain.Product,
) (domain.Product, error) {
	args := m.Called(ctx, p)
	return args.Get(0).(domain.Product), args.Error(1)
}

func (m *MockProductsRepository) FindProductByID(
	ctx context.Context, id uuid.UUID,
) (domain.Product, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Product), args.Error(1)
}

func (m *MockProductsRepository) UpdateProduct(
	ctx context.Context, id uuid.UUID, patch domain.ProductPatch,
) (domain.Product, error) {
	args := m.Called(ctx, id, patch)
	return args.Get(0).(domain.Product), args.Error(1)
}

func (m *MockProductsRepository) DeleteProduct(
	ctx context.Context, id uuid.UUID,
) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockProductsRepository) AppendProductImage(
	ctx context.Context, id uuid.UUID, imageURL string,
) (domain.Product, error) {
	args := m.Called(ctx, id, imageURL)
	return args.Get(0).(domain.Product), args.Error(1)
}

func (m *MockProductsRepository) FindProductsByFilter(
	ctx context.Context, f domain.ProductFilter,
) ([]domain.Product, int, error) {
	args := m.Called(ctx, f)
	return args.Get(0).([]domain.Product), args.Int(1), args.Error(2)
}

func newProductsService(
	repo *MockProductsRepository,
) (service.Products, *kvcache.Cache) {
	cache := kvcache.New()
	s := service.NewProducts(repo, cache, nil, time.Minute)
	return s, cache
}

func TestProductsList(t *testing.T) {
	books := []domain.Product{
		{ID: uuid.New(), Name: "SICP", Category: "books"},
	}

	t.Run("CacheMissThenHit", func(t *testing.T) {
		repo := new(MockProductsRepository)
		s, _ := newProductsService(repo)

		filter := domain.ProductFilter{Category: "books"}
		repo.On("FindProductsByFilter", mock.Anything, mock.Anything).
			Return(books, 1, nil).Once()

		first, err := s.List(t.Context(), filter)
		require.NoError(t, err)
		second, err := s.List(t.Context(), filter)
		require.NoError(t, err)

		assert.Equal(t, first, second)
		repo.AssertNumberOfCalls(t, "FindProductsByFilter", 1)
	})

	t.Run("EquivalentFiltersShareEntry", func(t *testing.T) {
		repo := new(MockProductsRepository)
		s, _ := newProductsService(repo)

		repo.On("FindProductsByFilter", mock.Anything, mock.Anything).
			Return(books, 1, nil).Once()

		_, err := s.List(t.Context(), domain.ProductFilter{Category: "Books"})
		require.NoError(t, err)
		_, err = s.List(t.Context(), domain.ProductFilter{Category: "books"})
		require.NoError(t, err)

		repo.AssertNumberOfCalls(t, "FindProductsByFilter", 1)
	})

	t.Run("WriteInvalidatesListing", func(t *testing.T) {
		repo := new(MockProductsRepository)
		s, _ := newProductsService(repo)

		filter := domain.ProductFilter{Category: "books"}
		repo.On("FindProductsByFilter", mock.Anything, mock.Anything).
			Return(books, 1, nil)

		_, err := s.List(t.Context(), filter)
		require.NoError(t, err)

		id := books[0].ID
		updated := books[0]
		updated.Name = "SICP 2nd ed."
		repo.On("FindProductByID", mock.Anything, id).
			Return(books[0], nil)
		repo.On("UpdateProduct", mock.Anything, id, mock.Anything).
			Return(updated, nil)

		_, err = s.Update(t.Context(), id, domain.ProductPatch{
			Name: &updated.Name,
		})
		require.NoError(t, err)

		_, err = s.List(t.Context(), filter)
		require.NoError(t, err)

		repo.AssertNumberOfCalls(t, "FindProductsByFilter", 2)
	})

	t.Run("PageMath", func(t *testing.T) {
		repo := new(MockProductsRepository)
		s, _ := newProductsService(repo)

		repo.On("FindProductsByFilter", mock.Anything, mock.Anything).
			Return(books, 25, nil)

		page, err := s.List(t.Context(), domain.ProductFilter{})
		require.NoError(t, err)

		assert.Equal(t, 1, page.Page)
		assert.Equal(t, 10, page.PageSize)
		assert.Equal(t, 25, page.Total)
		assert.Equal(t, 3, page.TotalPages)
	})

	t.Run("PageSizeCap", func(t *testing.T) {
		repo := new(MockProductsRepository)
		s, _ := newProductsService(repo)

		_, err := s.List(t.Context(), domain.ProductFilter{PageSize: 1000})
		require.Error(t, err)
		assert.Equal(t, domain.KindInvalidInput, domain.KindOf(err))
		repo.AssertNotCalled(t, "FindProductsByFilter")
	})

	t.Run("InvalidSortField", func(t *testing.T) {
		repo := new(MockProductsRepository)
		s, _ := newProductsService(repo)

		_, err := s.List(t.Context(), domain.ProductFilter{SortBy: "stock; --"})
		require.Error(t, err)
		assert.Equal(t, domain.KindInvalidInput, domain.KindOf(err))
	})

	t.Run("InvalidPriceRange", func(t *testing.T) {
		repo := new(MockProductsRepository)
		s, _ := newProductsService(repo)

		low := decimal.RequireFromString("1")
		high := decimal.RequireFromString("10")
		_, err := s.List(t.Context(), domain.ProductFilter{
			MinPrice: &high, MaxPrice: &low,
		})
		require.Error(t, err)
		assert.Equal(t, domain.KindInvalidInput, domain.KindOf(err))
	})
}

func TestProductsWipesListingCacheOnEveryWrite(t *testing.T) {
	id := uuid.New()
	ownerID := uuid.New()
	product := domain.Product{ID: id, Name: "SICP", OwnerID: ownerID}

	tests := []struct {
		name  string
		setup func(*MockProductsRepository)
		write func(service.Products) error
	}{
		{
			name: "Create",
			setup: func(repo *MockProductsRepository) {
				repo.On("CreateProduct", mock.Anything, mock.Anything).
					Return(product, nil)
			},
			write: func(s service.Products) error {
				_, err := s.Create(context.Background(), ownerID,
					service.CreateProductInput{Name: "SICP"})
				return err
			},
		},
		{
			name: "Update",
			setup: func(repo *MockProductsRepository) {
				repo.On("FindProductByID", mock.Anything, id).
					Return(product, nil)
				repo.On("UpdateProduct", mock.Anything, id, mock.Anything).
					Return(product, nil)
			},
			write: func(s service.Products) error {
				name := "SICP"
				_, err := s.Update(context.Background(), id,
					domain.ProductPatch{Name: &name})
				return err
			},
		},
		{
			name: "Delete",
			setup: func(repo *MockProductsRepository) {
				repo.On("DeleteProduct", mock.Anything, id).Return(nil)
			},
			write: func(s service.Products) error {
				return s.Delete(context.Background(), id)
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			repo := new(MockProductsRepository)
			tc.setup(repo)
			s, cache := newProductsService(repo)

			cache.Set(service.ListingCachePrefix+"page=1", "stale", 0)
			cache.Set("unrelated:key", "kept", 0)

			require.NoError(t, tc.write(s))

			_, ok := cache.Get(service.ListingCachePrefix + "page=1")
			assert.False(t, ok, "listing entries invalidated")
			_, ok = cache.Get("unrelated:key")
			assert.True(t, ok, "other prefixes untouched")
		})
	}
}

func TestProductsUpdateNotFound(t *testing.T) {
	repo := new(MockProductsRepository)
	s, _ := newProductsService(repo)

	id := uuid.New()
	repo.On("FindProductByID", mock.Anything, id).
		Return(domain.Product{}, domain.NotFound("product not found"))

	_, err := s.Update(t.Context(), id, domain.ProductPatch{})
	require.Error(t, err)
	assert.Equal(t, domain.KindNotFound, domain.KindOf(err))
	repo.AssertNotCalled(t, "UpdateProduct")
}
