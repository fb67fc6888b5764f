package vault

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"ddsloader/internal/keys"
)

// Load is the metadata stamped on every hub, link and satellite row.
type Load struct {
	At     time.Time
	Source string
}

// Hub is an entity keyed by the surrogate of its business key.
type Hub struct {
	PK          uuid.UUID
	BusinessKey string
	Load
}

// NewHub derives the surrogate key from businessKey.
func NewHub(businessKey string, load Load) Hub {
	return Hub{PK: keys.Derive(businessKey), BusinessKey: businessKey, Load: load}
}

type OrderHub struct {
	Hub
	OrderDt time.Time
}

// Satellites share the primary key of the hub they describe and hold only the latest values.

type OrderCost struct {
	HubPK   uuid.UUID
	Cost    decimal.Decimal
	Payment decimal.Decimal
	Load
}

type OrderStatus struct {
	HubPK  uuid.UUID
	Status string
	Load
}

type UserNames struct {
	HubPK     uuid.UUID
	Username  string
	Userlogin string
	Load
}

// Names is the single-name satellite used by restaurants and products.
type Names struct {
	HubPK uuid.UUID
	Name  string
	Load
}

// Link associates two hubs. Parent and Child follow the fixed role order of the link table.
type Link struct {
	PK     uuid.UUID
	Parent uuid.UUID
	Child  uuid.UUID
	Load
}

func NewLink(parent, child uuid.UUID, load Load) Link {
	return Link{PK: keys.DeriveLink(parent, child), Parent: parent, Child: child, Load: load}
}
