package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/pvolkov/shoply/internal/core/domain"
	"github.com/pvolkov/shoply/internal/core/port"
	"github.com/shopspring/decimal"
)

type Orders struct {
	repo   port.OrdersRepository
	events port.OrderEventsProducer
}

func NewOrders(
	repo port.OrdersRepository, events port.OrderEventsProducer,
) Orders {
	return Orders{repo: repo, events: events}
}

// PlaceOrder converts the requested line items into a persisted order.
// Stock validation, stock decrements and the order insert run inside a
// single store transaction: either the order and every decrement become
// visible together, or none of them do. Stock never goes negative even
// under concurrent placement, since the decrement is conditional at the
// store and a short row fails the whole transaction.
func (s Orders) PlaceOrder(
	ctx context.Context, userID uuid.UUID, lines []domain.OrderLineRequest,
) (domain.Order, error) {
	const op = "Orders.PlaceOrder"
	log := slog.With("op", op)

	if err := ctx.Err(); err != nil {
		return domain.Order{}, fmt.Errorf("%s: %w", op, err)
	}

	if err := validateLines(lines); err != nil {
		return domain.Order{}, err
	}

	var order domain.Order
	err := s.repo.InOrderTx(ctx, func(tx port.OrderTx) error {
		total := decimal.Zero
		orderLines := make([]domain.OrderLine, 0, len(lines))

		for _, line := range lines {
			p, err := tx.FindProductByID(ctx, line.ProductID)
			if err != nil {
				return err
			}
			if p.Stock < line.Quantity {
				return domain.InsufficientStock(
					"insufficient stock for product " + p.Name,
				)
			}

			subtotal := p.Price.Mul(decimal.NewFromInt(int64(line.Quantity)))
			total = total.Add(subtotal)

			orderLines = append(orderLines, domain.OrderLine{
				ProductID: p.ID,
				Quantity:  line.Quantity,
				UnitPrice: p.Price,
				Product: domain.ProductSummary{
					ID:    p.ID,
					Name:  p.Name,
					Price: p.Price,
				},
			})
		}

		for _, line := range lines {
			ok, err := tx.DecrementStock(ctx, line.ProductID, line.Quantity)
			if err != nil {
				return err
			}
			if !ok {
				// a concurrent order won the remaining stock between
				// the read and the decrement
				return domain.InsufficientStock(
					"insufficient stock for product " +
						line.ProductID.String(),
				)
			}
		}

		created, err := tx.CreateOrder(ctx, domain.Order{
			UserID:     userID,
			TotalPrice: total,
			Lines:      orderLines,
		})
		if err != nil {
			return err
		}
		order = created
		return nil
	})
	if err != nil {
		if domain.KindOf(err) != domain.KindInternal {
			return domain.Order{}, err
		}
		return domain.Order{}, fmt.Errorf("%s: %w", op, err)
	}

	s.produceOrderPlaced(ctx, order)

	log.Info("order placed",
		"orderID", order.ID,
		"userID", userID,
		"total", order.TotalPrice,
	)
	return order, nil
}

// ListByUser returns the user's orders, newest first.
func (s Orders) ListByUser(
	ctx context.Context, userID uuid.UUID,
) ([]domain.Order, error) {
	const op = "Orders.ListByUser"

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	orders, err := s.repo.FindOrdersByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return orders, nil
}

// produceOrderPlaced is best effort: the order is already committed,
// a failed event never fails the placement.
func (s Orders) produceOrderPlaced(ctx context.Context, order domain.Order) {
	const op = "Orders.produceOrderPlaced"

	if s.events == nil {
		return
	}
	if err := s.events.ProduceOrderPlaced(ctx, order); err != nil {
		slog.Error("failed to produce order event",
			"op", op, "orderID", order.ID, "err", err)
	}
}

func validateLines(lines []domain.OrderLineRequest) error {
	if len(lines) == 0 {
		return domain.InvalidInput("order must contain at least one line item")
	}
	for _, line := range lines {
		if line.ProductID == uuid.Nil {
			return domain.InvalidInput("line item product id is required")
		}
		if line.Quantity <= 0 {
			return domain.InvalidInput("line item quantity must be positive")
		}
	}
	return nil
}
