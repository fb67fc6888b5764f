package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Object types on the wire.
const (
	ObjectTypeOrder               = "order"
	ObjectTypeUserProductCounters = "user_product_counters"
	ObjectTypeUserCategoryCounter = "user_category_counters"
)

var (
	ErrMissingKind      = errors.New("record has no object_type")
	ErrUnknownKind      = errors.New("unrecognized object_type")
	ErrMalformedPayload = errors.New("malformed payload")
)

// Kind is the closed set of inbound record kinds this stage understands.
type Kind int

const (
	KindUnknown Kind = iota
	KindOrder
)

func (k Kind) String() string {
	switch k {
	case KindOrder:
		return ObjectTypeOrder
	default:
		return "unknown"
	}
}

func ParseKind(objectType string) Kind {
	switch objectType {
	case ObjectTypeOrder:
		return KindOrder
	default:
		return KindUnknown
	}
}

// BusinessID is a source-system identifier that may arrive as a JSON number or string.
// It keeps the canonical text form used for key derivation.
type BusinessID string

func (b *BusinessID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*b = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*b = BusinessID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("business id must be a string or number: %w", err)
	}
	*b = BusinessID(n.String())
	return nil
}

func (b BusinessID) String() string {
	return string(b)
}

// InboundEnvelope is the enriched record forwarded by the staging stage.
type InboundEnvelope struct {
	ObjectID   BusinessID      `json:"object_id"`
	ObjectType *string         `json:"object_type"`
	Payload    json.RawMessage `json:"payload"`
}

// DecodeEnvelope reads the outer wrapper only; the payload is decoded per kind.
func DecodeEnvelope(body []byte) (*InboundEnvelope, error) {
	var env InboundEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if env.ObjectType == nil {
		return nil, ErrMissingKind
	}
	return &env, nil
}

func (e *InboundEnvelope) Kind() Kind {
	if e.ObjectType == nil {
		return KindUnknown
	}
	return ParseKind(*e.ObjectType)
}

// Order decodes and validates an order payload.
func (e *InboundEnvelope) Order() (*OrderPayload, error) {
	if len(e.Payload) == 0 {
		return nil, fmt.Errorf("%w: empty payload", ErrMalformedPayload)
	}
	var p OrderPayload
	if err := json.Unmarshal(e.Payload, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if err := validate.Struct(&p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if _, err := p.OrderDate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	return &p, nil
}

var validate = validator.New()

type OrderPayload struct {
	ID         BusinessID      `json:"id" validate:"required"`
	Date       string          `json:"date" validate:"required"`
	Cost       decimal.Decimal `json:"cost"`
	Payment    decimal.Decimal `json:"payment"`
	Status     string          `json:"status"`
	Restaurant *RestaurantRef  `json:"restaurant" validate:"required"`
	User       *UserRef        `json:"user" validate:"required"`
	Products   []ProductItem   `json:"products" validate:"required,dive"`
}

var orderDateLayouts = []string{"2006-01-02 15:04:05", time.RFC3339Nano}

func (p *OrderPayload) OrderDate() (time.Time, error) {
	var err error
	for _, layout := range orderDateLayouts {
		var t time.Time
		if t, err = time.Parse(layout, p.Date); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable order date %q: %w", p.Date, err)
}

type RestaurantRef struct {
	ID   string `json:"id" validate:"required"`
	Name string `json:"name" validate:"required"`
}

type UserRef struct {
	ID    string  `json:"id" validate:"required"`
	Name  string  `json:"name" validate:"required"`
	Login *string `json:"login,omitempty"`
}

// LoginOrName returns the login, falling back to the display name when the upstream omitted it.
func (u *UserRef) LoginOrName() string {
	if u.Login != nil && *u.Login != "" {
		return *u.Login
	}
	return u.Name
}

// ProductItem is one line of the order. Name and Category may be empty; only the id keys the product.
type ProductItem struct {
	ID       string          `json:"id" validate:"required"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
	Category string          `json:"category"`
}

// UserProductCounter is one row of the per-user product aggregate.
type UserProductCounter struct {
	UserPK      uuid.UUID `json:"h_user_pk" gorm:"column:h_user_pk"`
	ProductPK   uuid.UUID `json:"h_product_pk" gorm:"column:h_product_pk"`
	ProductName string    `json:"product_name" gorm:"column:product_name"`
	OrderCount  int64     `json:"order_cnt" gorm:"column:order_cnt"`
}

// UserCategoryCounter is one row of the per-user category aggregate.
type UserCategoryCounter struct {
	UserPK       uuid.UUID `json:"h_user_pk" gorm:"column:h_user_pk"`
	CategoryPK   uuid.UUID `json:"h_category_pk" gorm:"column:h_category_pk"`
	CategoryName string    `json:"category_name" gorm:"column:category_name"`
	OrderCount   int64     `json:"order_cnt" gorm:"column:order_cnt"`
}

// CounterEnvelope is the outbound message consumed by the mart stage.
type CounterEnvelope[T any] struct {
	ObjectID   string            `json:"object_id"`
	ObjectType string            `json:"object_type"`
	Payload    CounterPayload[T] `json:"payload"`
}

type CounterPayload[T any] struct {
	ID       string `json:"id"`
	Counters []T    `json:"counters"`
}

// NewCounterEnvelope stamps a fresh id shared by the envelope and its payload.
func NewCounterEnvelope[T any](objectType string, counters []T) CounterEnvelope[T] {
	if counters == nil {
		counters = []T{}
	}
	id := uuid.NewString()
	return CounterEnvelope[T]{
		ObjectID:   id,
		ObjectType: objectType,
		Payload: CounterPayload[T]{
			ID:       id,
			Counters: counters,
		},
	}
}
