package kafka_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pvolkov/shoply/internal/adapter/kafka"
	"github.com/pvolkov/shoply/internal/core/domain"
	"github.com/pvolkov/shoply/pkg/schema"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"
)

type stubProducerClient struct {
	records []*kgo.Record
	err     error
	closed  bool
}

func (c *stubProducerClient) ProduceSync(
	ctx context.Context, rs ...*kgo.Record,
) kgo.ProduceResults {
	c.records = append(c.records, rs...)
	if c.err != nil {
		return kgo.ProduceResults{{Err: c.err}}
	}
	return kgo.ProduceResults{}
}

func (c *stubProducerClient) Close() { c.closed = true }

type jsonishEncoder struct{}

func (jsonishEncoder) Encode(v any) ([]byte, error) {
	e, ok := v.(schema.OrderEventV1)
	if !ok {
		return nil, errors.New("unexpected value type")
	}
	return []byte(e.OrderID), nil
}

func TestOrderEventsProducer(t *testing.T) {
	order := domain.Order{
		ID:         uuid.New(),
		UserID:     uuid.New(),
		TotalPrice: decimal.RequireFromString("249.50"),
		CreatedAt:  time.Now(),
		Lines: []domain.OrderLine{
			{
				ProductID: uuid.New(),
				Quantity:  5,
				UnitPrice: decimal.RequireFromString("49.90"),
			},
		},
	}

	t.Run("ProducesKeyedByOrderID", func(t *testing.T) {
		cl := &stubProducerClient{}
		p, err := kafka.NewOrderEventsProducer(
			kafka.ProducerClientValueOpt(cl),
			kafka.ProducerEncoderOpt(jsonishEncoder{}),
		)
		require.NoError(t, err)

		require.NoError(t, p.ProduceOrderPlaced(t.Context(), order))

		require.Len(t, cl.records, 1)
		assert.Equal(t, []byte(order.ID.String()), cl.records[0].Key)
	})

	t.Run("ProduceFailure", func(t *testing.T) {
		cl := &stubProducerClient{err: errors.New("broker down")}
		p, err := kafka.NewOrderEventsProducer(
			kafka.ProducerClientValueOpt(cl),
			kafka.ProducerEncoderOpt(jsonishEncoder{}),
		)
		require.NoError(t, err)

		err = p.ProduceOrderPlaced(t.Context(), order)
		require.Error(t, err)
	})
}
