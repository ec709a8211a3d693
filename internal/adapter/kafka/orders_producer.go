package kafka

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pvolkov/shoply/internal/core/domain"
	"github.com/pvolkov/shoply/internal/core/port"
	"github.com/pvolkov/shoply/pkg/schema"
	"github.com/twmb/franz-go/pkg/kgo"
)

var _ port.OrderEventsProducer = (*OrderEventsProducer)(nil)

// OrderEventsProducer publishes placed orders to the order-events
// topic, keyed by order id.
type OrderEventsProducer struct {
	cl      ProducerClient
	encoder Encoder
}

func NewOrderEventsProducer(
	opts ...ProducerOpt,
) (OrderEventsProducer, error) {
	const op = "NewOrderEventsProducer"

	if len(opts) != 2 {
		panic(fmt.Errorf("%s: %w", op, ErrTooFewOpts)) // develop mistake
	}

	var options producerOpts
	for _, opt := range opts {
		if err := opt(&options); err != nil {
			return OrderEventsProducer{}, fmt.Errorf("%s: %w", op, err)
		}
	}
	return OrderEventsProducer{options.cl, options.encoder}, nil
}

func (p OrderEventsProducer) Close() {
	const op = "OrderEventsProducer.Close"
	log := slog.With("op", op)
	log.Info("closing producer...")
	p.cl.Close()
	log.Info("producer is closed")
}

func (p OrderEventsProducer) ProduceOrderPlaced(
	ctx context.Context, order domain.Order,
) error {
	const op = "OrderEventsProducer.ProduceOrderPlaced"

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	r, err := p.createRecord(order)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	res := p.cl.ProduceSync(ctx, r)
	if err := res.FirstErr(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (p OrderEventsProducer) createRecord(
	order domain.Order,
) (*kgo.Record, error) {
	s := p.toSchema(order)
	v, err := p.encoder.Encode(s)
	if err != nil {
		return nil, err
	}
	return &kgo.Record{Key: []byte(s.OrderID), Value: v}, nil
}

func (p OrderEventsProducer) toSchema(
	order domain.Order,
) (s schema.OrderEventV1) {
	s.OrderID = order.ID.String()
	s.UserID = order.UserID.String()
	s.TotalPrice = order.TotalPrice.String()
	s.CreatedAt = order.CreatedAt.UnixMilli()

	s.Lines = make([]schema.OrderEventLineV1, len(order.Lines))
	for i, l := range order.Lines {
		s.Lines[i].ProductID = l.ProductID.String()
		s.Lines[i].Quantity = l.Quantity
		s.Lines[i].UnitPrice = l.UnitPrice.String()
	}
	return s
}
