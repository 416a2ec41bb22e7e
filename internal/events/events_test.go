package events

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/require"

	"shopflow/internal/domain"
)

func TestEnvelopeRoundTrip(t *testing.T) {
	payload := OrderCreated{
		OrderID:    gofakeit.UUID(),
		CartID:     gofakeit.UUID(),
		UserID:     gofakeit.UUID(),
		TotalCents: int64(gofakeit.Number(100, 100000)),
		TaxCents:   int64(gofakeit.Number(0, 10000)),
		Currency:   gofakeit.CurrencyShort(),
		Items: []domain.OrderItem{
			{ProductID: gofakeit.UUID(), SKU: gofakeit.Word(), Quantity: 2, UnitPriceCents: 2500},
		},
	}

	occurred := time.Now().UTC().Truncate(time.Millisecond)
	env, err := NewEnvelope(TopicOrderCreated, occurred, payload)
	require.NoError(t, err)
	require.NotEmpty(t, env.EventID)
	require.Equal(t, TopicOrderCreated, env.Type)
	require.True(t, env.OccurredAt.Equal(occurred))

	wire, err := json.Marshal(env)
	require.NoError(t, err)

	var decoded Envelope
	require.NoError(t, json.Unmarshal(wire, &decoded))
	require.Equal(t, env.EventID, decoded.EventID)

	var got OrderCreated
	require.NoError(t, decoded.Decode(&got))
	require.Equal(t, payload, got)
}

func TestEnvelopeIDsAreUnique(t *testing.T) {
	a, err := NewEnvelope(TopicCartCheckedOut, time.Now().UTC(), CartCheckedOut{CartID: "c1"})
	require.NoError(t, err)
	b, err := NewEnvelope(TopicCartCheckedOut, time.Now().UTC(), CartCheckedOut{CartID: "c1"})
	require.NoError(t, err)
	require.NotEqual(t, a.EventID, b.EventID, "the same fact published twice still gets distinct event ids")
}

func TestOrderCreatedWireFormat(t *testing.T) {
	env, err := NewEnvelope(TopicOrderCreated, time.Now().UTC(), OrderCreated{
		OrderID: "o1", TotalCents: 4950, TaxCents: 450, Currency: "EUR",
	})
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(env.Payload, &raw))
	require.Contains(t, raw, "total")
	require.Contains(t, raw, "tax")
	require.EqualValues(t, 4950, raw["total"])
}

func TestDecodeMismatchedPayload(t *testing.T) {
	env := Envelope{Type: TopicOrderCreated, Payload: json.RawMessage(`{"orderId": 42}`)}
	var out OrderCreated
	require.Error(t, env.Decode(&out))
}
