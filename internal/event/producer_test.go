package event

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/medigo/backend/internal/domain"
	pkgkafka "github.com/medigo/backend/pkg/kafka"
	"github.com/medigo/backend/pkg/logger"
)

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(ctx context.Context, topic string, event *pkgkafka.Event) error {
	args := m.Called(ctx, topic, event)
	return args.Error(0)
}

func newTestProducer(pub *mockPublisher) *Producer {
	return NewProducer(pub, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestPublishCartUpdated(t *testing.T) {
	pub := new(mockPublisher)
	p := newTestProducer(pub)
	ctx := logger.WithCorrelationID(context.Background(), "corr-1")

	cart := &domain.Cart{
		UserID: "u1",
		Items: []domain.CartItem{
			{ProductID: "5", Name: "Aspirin", Price: json.RawMessage(`10`), Quantity: 2},
			{ProductID: "gauze", Price: json.RawMessage(`"Rs. 40"`), Quantity: 1},
		},
		UpdatedAt: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}

	var captured *pkgkafka.Event
	pub.On("Publish", ctx, "medigo.cart.updated", mock.AnythingOfType("*kafka.Event")).
		Run(func(args mock.Arguments) { captured = args.Get(2).(*pkgkafka.Event) }).
		Return(nil)

	require.NoError(t, p.PublishCartUpdated(ctx, cart))
	pub.AssertExpectations(t)

	require.NotNil(t, captured)
	assert.Equal(t, EventCartUpdated, captured.EventType)
	assert.Equal(t, "u1", captured.AggregateID)
	assert.Equal(t, "corr-1", captured.CorrelationID)

	var data CartUpdatedData
	require.NoError(t, captured.UnmarshalData(&data))
	assert.Equal(t, 3, data.ItemCount)
	assert.Equal(t, "20.00", data.Subtotal)
	require.Len(t, data.Items, 2)
	assert.Equal(t, domain.ProductID("5"), data.Items[0].ProductID)
}

func TestPublishUserRegistered(t *testing.T) {
	pub := new(mockPublisher)
	p := newTestProducer(pub)
	ctx := context.Background()

	user := &domain.User{ID: "user-1", Name: "Asha", Email: "asha@example.com", Type: domain.UserTypeCustomer}

	pub.On("Publish", ctx, "medigo.user.registered", mock.MatchedBy(func(e *pkgkafka.Event) bool {
		var data UserRegisteredData
		if err := e.UnmarshalData(&data); err != nil {
			return false
		}
		return e.EventType == EventUserRegistered &&
			e.AggregateType == AggregateTypeUser &&
			e.CorrelationID == "" &&
			data.Email == "asha@example.com" &&
			data.Type == "user"
	})).Return(nil)

	require.NoError(t, p.PublishUserRegistered(ctx, user))
	pub.AssertExpectations(t)
}

func TestPublish_Error(t *testing.T) {
	pub := new(mockPublisher)
	p := newTestProducer(pub)
	ctx := context.Background()

	pub.On("Publish", ctx, mock.Anything, mock.Anything).Return(errors.New("broker down"))

	err := p.PublishCartUpdated(ctx, &domain.Cart{UserID: "u1"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "publish cart.updated event")
}
