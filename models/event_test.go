package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleOrder = `{
	"object_id": 1027424,
	"object_type": "order",
	"payload": {
		"id": 1027424,
		"date": "2023-02-16 21:02:37",
		"cost": 1600,
		"payment": 1600,
		"status": "CLOSED",
		"restaurant": {"id": "a51e4e31ae4602047ec52534", "name": "Кубдари"},
		"user": {"id": "626a81ce9a8cd1920641e275", "name": "Светлана Корнилова", "login": "izmail28"},
		"products": [
			{"id": "1f22499787cfda2be82a71e7", "name": "Оджахури", "price": 400, "quantity": 4, "category": "Основные блюда"}
		]
	}
}`

func TestDecodeOrderEnvelope(t *testing.T) {
	env, err := DecodeEnvelope([]byte(sampleOrder))
	require.NoError(t, err)
	assert.Equal(t, KindOrder, env.Kind())
	assert.Equal(t, BusinessID("1027424"), env.ObjectID)

	order, err := env.Order()
	require.NoError(t, err)
	assert.Equal(t, "1027424", order.ID.String())
	assert.True(t, decimal.NewFromInt(1600).Equal(order.Cost))
	assert.Equal(t, "izmail28", order.User.LoginOrName())
	require.Len(t, order.Products, 1)
	assert.Equal(t, 4, order.Products[0].Quantity)

	dt, err := order.OrderDate()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2023, 2, 16, 21, 2, 37, 0, time.UTC), dt)
}

func TestDecodeEnvelopeMissingKind(t *testing.T) {
	_, err := DecodeEnvelope([]byte(`{"object_id": 1, "payload": {}}`))
	assert.ErrorIs(t, err, ErrMissingKind)
}

func TestDecodeEnvelopeGarbage(t *testing.T) {
	_, err := DecodeEnvelope([]byte(`not json`))
	assert.ErrorIs(t, err, ErrMalformedPayload)
}

func TestUnknownKind(t *testing.T) {
	env, err := DecodeEnvelope([]byte(`{"object_type": "promo", "payload": {}}`))
	require.NoError(t, err)
	assert.Equal(t, KindUnknown, env.Kind())
	assert.Equal(t, "unknown", env.Kind().String())
}

func TestOrderMissingNestedField(t *testing.T) {
	cases := map[string]string{
		"no user":       `{"id": 1, "date": "2023-02-16 21:02:37", "status": "CLOSED", "restaurant": {"id": "r", "name": "R"}, "products": []}`,
		"no user id":    `{"id": 1, "date": "2023-02-16 21:02:37", "status": "CLOSED", "restaurant": {"id": "r", "name": "R"}, "user": {"name": "U"}, "products": []}`,
		"no products":   `{"id": 1, "date": "2023-02-16 21:02:37", "status": "CLOSED", "restaurant": {"id": "r", "name": "R"}, "user": {"id": "u", "name": "U"}}`,
		"bad item":      `{"id": 1, "date": "2023-02-16 21:02:37", "status": "CLOSED", "restaurant": {"id": "r", "name": "R"}, "user": {"id": "u", "name": "U"}, "products": [{"name": "x"}]}`,
		"bad date":      `{"id": 1, "date": "yesterday", "status": "CLOSED", "restaurant": {"id": "r", "name": "R"}, "user": {"id": "u", "name": "U"}, "products": []}`,
		"empty payload": ``,
	}
	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			env := &InboundEnvelope{Payload: json.RawMessage(payload)}
			_, err := env.Order()
			assert.ErrorIs(t, err, ErrMalformedPayload)
		})
	}
}

func TestOrderAcceptsEmptyDescriptiveAttributes(t *testing.T) {
	env := &InboundEnvelope{Payload: json.RawMessage(`{"id": 1, "date": "2023-02-16 21:02:37", "status": "", "restaurant": {"id": "r", "name": "R"}, "user": {"id": "u", "name": "U"}, "products": [{"id": "p1", "name": "", "category": ""}]}`)}
	order, err := env.Order()
	require.NoError(t, err)
	assert.Empty(t, order.Status)
	require.Len(t, order.Products, 1)
	assert.Empty(t, order.Products[0].Name)
}

func TestLoginFallsBackToName(t *testing.T) {
	u := UserRef{ID: "u", Name: "Name"}
	assert.Equal(t, "Name", u.LoginOrName())
}

func TestBusinessIDAcceptsStringsAndNumbers(t *testing.T) {
	var ids []BusinessID
	require.NoError(t, json.Unmarshal([]byte(`["abc", 42, 1027424, null]`), &ids))
	assert.Equal(t, []BusinessID{"abc", "42", "1027424", ""}, ids)

	var b BusinessID
	assert.Error(t, json.Unmarshal([]byte(`{}`), &b))
}

func TestCounterEnvelopeShape(t *testing.T) {
	user := uuid.New()
	product := uuid.New()
	env := NewCounterEnvelope(ObjectTypeUserProductCounters, []UserProductCounter{
		{UserPK: user, ProductPK: product, ProductName: "Суп", OrderCount: 2},
	})
	assert.Equal(t, env.ObjectID, env.Payload.ID)

	raw, err := json.Marshal(env)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "user_product_counters", decoded["object_type"])
	counters := decoded["payload"].(map[string]any)["counters"].([]any)
	require.Len(t, counters, 1)
	row := counters[0].(map[string]any)
	assert.Equal(t, user.String(), row["h_user_pk"])
	assert.Equal(t, product.String(), row["h_product_pk"])
	assert.Equal(t, "Суп", row["product_name"])
	assert.Equal(t, float64(2), row["order_cnt"])
}

func TestEmptyCounterEnvelopeEncodesEmptyList(t *testing.T) {
	env := NewCounterEnvelope[UserCategoryCounter](ObjectTypeUserCategoryCounter, nil)
	raw, err := json.Marshal(env)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"counters":[]`)
}
