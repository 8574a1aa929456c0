package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"api_sales/internal/sales"

	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type writerMock struct{ mock.Mock }

func (m *writerMock) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	args := m.Called(ctx, msgs)
	return args.Error(0)
}

func (m *writerMock) Close() error {
	return m.Called().Error(0)
}

func testEvent() sales.SaleEvent {
	return sales.SaleEvent{
		Type: sales.EventSaleCreated,
		Sale: sales.SaleResponse{
			ID:        "s-1",
			Quantity:  3,
			Price:     decimal.NewFromInt(15),
			UserID:    "U1",
			ProductID: "P1",
		},
		OccurredAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestKafkaPublisher_PublishSaleEvent(t *testing.T) {
	w := new(writerMock)
	p := newKafkaPublisher(w, zaptest.NewLogger(t))

	var sent []kafka.Message
	w.On("WriteMessages", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { sent = args.Get(1).([]kafka.Message) }).
		Return(nil)

	require.NoError(t, p.PublishSaleEvent(context.Background(), testEvent()))
	require.Len(t, sent, 1)

	msg := sent[0]
	assert.Equal(t, "s-1", string(msg.Key))
	require.Len(t, msg.Headers, 1)
	assert.Equal(t, eventTypeHeader, msg.Headers[0].Key)
	assert.Equal(t, sales.EventSaleCreated, string(msg.Headers[0].Value))

	var decoded sales.SaleEvent
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, sales.EventSaleCreated, decoded.Type)
	assert.Equal(t, "P1", decoded.Sale.ProductID)
	assert.True(t, decimal.NewFromInt(15).Equal(decoded.Sale.Price))

	w.AssertExpectations(t)
}

func TestKafkaPublisher_WriteError(t *testing.T) {
	w := new(writerMock)
	p := newKafkaPublisher(w, zaptest.NewLogger(t))

	w.On("WriteMessages", mock.Anything, mock.Anything).Return(errors.New("no leader"))

	err := p.PublishSaleEvent(context.Background(), testEvent())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sale.created")
	assert.Contains(t, err.Error(), "no leader")
}

func TestKafkaPublisher_Close(t *testing.T) {
	w := new(writerMock)
	w.On("Close").Return(nil)

	p := newKafkaPublisher(w, nil)
	assert.NoError(t, p.Close())
	w.AssertExpectations(t)
}

func TestNewKafkaPublisher(t *testing.T) {
	p := NewKafkaPublisher([]string{"localhost:9092"}, "sales.events", zaptest.NewLogger(t))

	kw, ok := p.writer.(*kafka.Writer)
	require.True(t, ok)
	assert.Equal(t, "sales.events", kw.Topic)
	assert.Equal(t, "localhost:9092", kw.Addr.String())
}
