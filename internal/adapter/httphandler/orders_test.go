package httphandler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/pvolkov/shoply/internal/adapter/auth"
	"github.com/pvolkov/shoply/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockOrdersService struct {
	mock.Mock
}

func (m *MockOrdersService) PlaceOrder(
	ctx context.Context, userID uuid.UUID, lines []domain.OrderLineRequest,
) (domain.Order, error) {
	args := m.Called(ctx, userID, lines)
	return args.Get(0).(domain.Order), args.Error(1)
}

func (m *MockOrdersService) ListByUser(
	ctx context.Context, userID uuid.UUID,
) ([]domain.Order, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]domain.Order), args.Error(1)
}

func ordersMux(
	t *testing.T, svc OrdersService, claims auth.Claims,
) *http.ServeMux {
	t.Helper()
	mux := http.NewServeMux()
	RegisterOrders(mux, svc, asUser(claims))
	return mux
}

func TestOrdersHandlerPlace(t *testing.T) {
	claims := auth.Claims{UserID: uuid.New(), Role: domain.RoleCustomer}
	productID := uuid.New()

	t.Run("Success", func(t *testing.T) {
		svc := new(MockOrdersService)
		svc.On("PlaceOrder", mock.Anything, claims.UserID,
			[]domain.OrderLineRequest{{ProductID: productID, Quantity: 2}},
		).Return(domain.Order{
			ID:         uuid.New(),
			UserID:     claims.UserID,
			TotalPrice: decimal.NewFromInt(25),
		}, nil)

		req := httptest.NewRequest(
			http.MethodPost, "/v1/orders",
			strings.NewReader(
				`[{"productId": "`+productID.String()+`", "quantity": 2}]`,
			),
		)
		rec := httptest.NewRecorder()
		ordersMux(t, svc, claims).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusCreated, rec.Code)
		svc.AssertExpectations(t)
	})

	t.Run("EmptyOrder", func(t *testing.T) {
		svc := new(MockOrdersService)

		req := httptest.NewRequest(
			http.MethodPost, "/v1/orders", strings.NewReader(`[]`),
		)
		rec := httptest.NewRecorder()
		ordersMux(t, svc, claims).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		svc.AssertNotCalled(t, "PlaceOrder")
	})

	t.Run("NonPositiveQuantity", func(t *testing.T) {
		svc := new(MockOrdersService)

		req := httptest.NewRequest(
			http.MethodPost, "/v1/orders",
			strings.NewReader(
				`[{"productId": "`+productID.String()+`", "quantity": 0}]`,
			),
		)
		rec := httptest.NewRecorder()
		ordersMux(t, svc, claims).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("InsufficientStock", func(t *testing.T) {
		svc := new(MockOrdersService)
		svc.On("PlaceOrder", mock.Anything, mock.Anything, mock.Anything).
			Return(domain.Order{}, domain.InsufficientStock(
				"not enough stock for product",
			))

		req := httptest.NewRequest(
			http.MethodPost, "/v1/orders",
			strings.NewReader(
				`[{"productId": "`+productID.String()+`", "quantity": 99}]`,
			),
		)
		rec := httptest.NewRecorder()
		ordersMux(t, svc, claims).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestOrdersHandlerList(t *testing.T) {
	claims := auth.Claims{UserID: uuid.New(), Role: domain.RoleCustomer}

	svc := new(MockOrdersService)
	svc.On("ListByUser", mock.Anything, claims.UserID).
		Return([]domain.Order{
			{ID: uuid.New(), UserID: claims.UserID},
		}, nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/orders", nil)
	rec := httptest.NewRecorder()
	ordersMux(t, svc, claims).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	svc.AssertExpectations(t)
}
