package producers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/pos-cash-recon/internal/domain/transaction"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockKafkaWriter struct {
	mock.Mock
}

func (m *MockKafkaWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	args := m.Called(ctx, msgs)
	return args.Error(0)
}

func (m *MockKafkaWriter) Close() error {
	return m.Called().Error(0)
}

func newFlagEventProducer(writer KafkaWriter) *FlagEventProducer {
	return &FlagEventProducer{
		logger: slog.New(slog.NewTextHandler(os.Stdout, nil)),
		writer: writer,
		topic:  "flag-events",
	}
}

func invalidTransaction() *transaction.Transaction {
	return &transaction.Transaction{
		CashID:     "cash-1",
		StoreID:    "store-1",
		Amount:     20000,
		Time:       1690000000000,
		Note:       "ship ZZZ99 2km",
		Flag:       transaction.FlagInvalid,
		SystemNote: "order ZZZ99 not found in this time window",
	}
}

func TestFlagEventProducer_PublishFlagEvent(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		writer := new(MockKafkaWriter)
		producer := newFlagEventProducer(writer)
		tx := invalidTransaction()

		writer.On("WriteMessages", ctx, mock.MatchedBy(func(msgs []kafka.Message) bool {
			if len(msgs) != 1 {
				return false
			}
			var event FlagEvent
			if err := json.Unmarshal(msgs[0].Value, &event); err != nil {
				return false
			}
			return string(msgs[0].Key) == tx.CashID &&
				event.Flag == transaction.FlagInvalid &&
				event.SystemNote == tx.SystemNote
		})).Return(nil)

		err := producer.PublishFlagEvent(ctx, tx)
		require.NoError(t, err)
		writer.AssertExpectations(t)
	})

	t.Run("write failure", func(t *testing.T) {
		writer := new(MockKafkaWriter)
		producer := newFlagEventProducer(writer)

		writer.On("WriteMessages", ctx, mock.Anything).Return(errors.New("broker down"))

		err := producer.PublishFlagEvent(ctx, invalidTransaction())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to publish flag event")
	})

	t.Run("nil producer is a no-op", func(t *testing.T) {
		var producer *FlagEventProducer
		err := producer.PublishFlagEvent(ctx, invalidTransaction())
		assert.NoError(t, err)
	})
}

func TestFlagEventProducer_Close(t *testing.T) {
	t.Run("closes writer", func(t *testing.T) {
		writer := new(MockKafkaWriter)
		producer := newFlagEventProducer(writer)
		writer.On("Close").Return(nil)

		assert.NoError(t, producer.Close())
		writer.AssertExpectations(t)
	})

	t.Run("nil producer", func(t *testing.T) {
		var producer *FlagEventProducer
		assert.NoError(t, producer.Close())
	})
}
