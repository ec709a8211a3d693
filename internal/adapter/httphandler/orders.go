package httphandler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pvolkov/shoply/internal/core/domain"
)

type OrdersService interface {
	PlaceOrder(
		ctx context.Context, userID uuid.UUID, lines []domain.OrderLineRequest,
	) (domain.Order, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Order, error)
}

type OrdersHandler struct {
	orders   OrdersService
	validate *validator.Validate
}

func RegisterOrders(
	mux *http.ServeMux,
	orders OrdersService,
	authed func(http.Handler) http.Handler,
) {
	h := OrdersHandler{orders: orders, validate: newValidator()}
	mux.Handle("POST /v1/orders", authed(http.HandlerFunc(h.PostOrder)))
	mux.Handle("GET /v1/orders", authed(http.HandlerFunc(h.GetOrders)))
}

func (h OrdersHandler) PostOrder(w http.ResponseWriter, r *http.Request) {
	const op = "OrdersHandler.PostOrder"
	log := slog.With("op", op)

	claims, ok := claimsFromContext(r.Context())
	if !ok {
		respondError(w, domain.Unauthorized("access denied"))
		return
	}

	var req CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, domain.InvalidInput("invalid JSON data"))
		log.Warn("failed to parse JSON", "err", err)
		return
	}

	if len(req) == 0 {
		respondError(w, domain.InvalidInput(
			"order must contain at least one product",
		))
		return
	}
	for _, line := range req {
		if err := h.validate.Struct(line); err != nil {
			respondError(w, err)
			return
		}
	}

	lines := make([]domain.OrderLineRequest, len(req))
	for i, line := range req {
		lines[i] = domain.OrderLineRequest{
			ProductID: uuid.MustParse(line.ProductID),
			Quantity:  line.Quantity,
		}
	}

	order, err := h.orders.PlaceOrder(r.Context(), claims.UserID, lines)
	if err != nil {
		respondError(w, err)
		return
	}

	respondData(w, http.StatusCreated, "order created", toOrderView(order))
	log.Info("order placed",
		"orderID", order.ID,
		"userID", claims.UserID,
		"total", order.TotalPrice,
	)
}

func (h OrdersHandler) GetOrders(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFromContext(r.Context())
	if !ok {
		respondError(w, domain.Unauthorized("access denied"))
		return
	}

	orders, err := h.orders.ListByUser(r.Context(), claims.UserID)
	if err != nil {
		respondError(w, err)
		return
	}

	respondData(w, http.StatusOK, "orders retrieved", toOrderViews(orders))
}
