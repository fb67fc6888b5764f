// Package vault persists the business-vault model (hubs, satellites and links) and
// answers the per-user counter queries built on top of it.
//
// Every write is a single INSERT ... ON CONFLICT DO UPDATE statement with bound values,
// so replaying an event converges on the same rows. Satellites are overwritten in place:
// the latest attributes win and no history is kept.
package vault

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"ddsloader/internal/keys"
	"ddsloader/models"
)

// Writer is the set of idempotent upserts, one per hub, satellite and link table.
type Writer interface {
	UpsertOrderHub(ctx context.Context, h OrderHub) error
	UpsertOrderCost(ctx context.Context, s OrderCost) error
	UpsertOrderStatus(ctx context.Context, s OrderStatus) error
	UpsertUserHub(ctx context.Context, h Hub) error
	UpsertUserNames(ctx context.Context, s UserNames) error
	UpsertRestaurantHub(ctx context.Context, h Hub) error
	UpsertRestaurantNames(ctx context.Context, s Names) error
	UpsertCategoryHub(ctx context.Context, h Hub) error
	UpsertProductHub(ctx context.Context, h Hub) error
	UpsertProductNames(ctx context.Context, s Names) error
	UpsertProductCategory(ctx context.Context, l Link) error
	UpsertProductRestaurant(ctx context.Context, l Link) error
	UpsertOrderProduct(ctx context.Context, l Link) error
	UpsertOrderUser(ctx context.Context, l Link) error
}

// Counters computes per-user aggregates scoped to a candidate key set.
type Counters interface {
	UserProductCounters(ctx context.Context, user uuid.UUID, products *keys.Set) ([]models.UserProductCounter, error)
	UserCategoryCounters(ctx context.Context, user uuid.UUID, categories *keys.Set) ([]models.UserCategoryCounter, error)
}

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Transaction runs fn against a repository bound to one database transaction.
func (r *Repository) Transaction(ctx context.Context, fn func(w Writer) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Repository{db: tx})
	})
}

func (r *Repository) exec(ctx context.Context, table, sql string, args ...any) error {
	if err := r.db.WithContext(ctx).Exec(sql, args...).Error; err != nil {
		return fmt.Errorf("upsert %s: %w", table, err)
	}
	return nil
}

const upsertOrderHub = `
	INSERT INTO dds.h_order (h_order_pk, order_id, order_dt, load_dt, load_src)
	VALUES (?, ?, ?, ?, ?)
	ON CONFLICT (h_order_pk) DO UPDATE SET
		order_id = EXCLUDED.order_id,
		order_dt = EXCLUDED.order_dt,
		load_dt = EXCLUDED.load_dt,
		load_src = EXCLUDED.load_src`

func (r *Repository) UpsertOrderHub(ctx context.Context, h OrderHub) error {
	return r.exec(ctx, "h_order", upsertOrderHub, h.PK, h.BusinessKey, h.OrderDt, h.At, h.Source)
}

const upsertOrderCost = `
	INSERT INTO dds.s_order_cost (hk_order_cost_pk, h_order_pk, cost, payment, load_dt, load_src)
	VALUES (?, ?, ?, ?, ?, ?)
	ON CONFLICT (hk_order_cost_pk) DO UPDATE SET
		h_order_pk = EXCLUDED.h_order_pk,
		cost = EXCLUDED.cost,
		payment = EXCLUDED.payment,
		load_dt = EXCLUDED.load_dt,
		load_src = EXCLUDED.load_src`

func (r *Repository) UpsertOrderCost(ctx context.Context, s OrderCost) error {
	return r.exec(ctx, "s_order_cost", upsertOrderCost, s.HubPK, s.HubPK, s.Cost, s.Payment, s.At, s.Source)
}

const upsertOrderStatus = `
	INSERT INTO dds.s_order_status (hk_order_status_pk, h_order_pk, status, load_dt, load_src)
	VALUES (?, ?, ?, ?, ?)
	ON CONFLICT (hk_order_status_pk) DO UPDATE SET
		h_order_pk = EXCLUDED.h_order_pk,
		status = EXCLUDED.status,
		load_dt = EXCLUDED.load_dt,
		load_src = EXCLUDED.load_src`

func (r *Repository) UpsertOrderStatus(ctx context.Context, s OrderStatus) error {
	return r.exec(ctx, "s_order_status", upsertOrderStatus, s.HubPK, s.HubPK, s.Status, s.At, s.Source)
}

const upsertUserHub = `
	INSERT INTO dds.h_user (h_user_pk, user_id, load_dt, load_src)
	VALUES (?, ?, ?, ?)
	ON CONFLICT (h_user_pk) DO UPDATE SET
		user_id = EXCLUDED.user_id,
		load_dt = EXCLUDED.load_dt,
		load_src = EXCLUDED.load_src`

func (r *Repository) UpsertUserHub(ctx context.Context, h Hub) error {
	return r.exec(ctx, "h_user", upsertUserHub, h.PK, h.BusinessKey, h.At, h.Source)
}

const upsertUserNames = `
	INSERT INTO dds.s_user_names (hk_user_names_pk, h_user_pk, username, userlogin, load_dt, load_src)
	VALUES (?, ?, ?, ?, ?, ?)
	ON CONFLICT (hk_user_names_pk) DO UPDATE SET
		h_user_pk = EXCLUDED.h_user_pk,
		username = EXCLUDED.username,
		userlogin = EXCLUDED.userlogin,
		load_dt = EXCLUDED.load_dt,
		load_src = EXCLUDED.load_src`

func (r *Repository) UpsertUserNames(ctx context.Context, s UserNames) error {
	return r.exec(ctx, "s_user_names", upsertUserNames, s.HubPK, s.HubPK, s.Username, s.Userlogin, s.At, s.Source)
}

const upsertRestaurantHub = `
	INSERT INTO dds.h_restaurant (h_restaurant_pk, restaurant_id, load_dt, load_src)
	VALUES (?, ?, ?, ?)
	ON CONFLICT (h_restaurant_pk) DO UPDATE SET
		restaurant_id = EXCLUDED.restaurant_id,
		load_dt = EXCLUDED.load_dt,
		load_src = EXCLUDED.load_src`

func (r *Repository) UpsertRestaurantHub(ctx context.Context, h Hub) error {
	return r.exec(ctx, "h_restaurant", upsertRestaurantHub, h.PK, h.BusinessKey, h.At, h.Source)
}

const upsertRestaurantNames = `
	INSERT INTO dds.s_restaurant_names (hk_restaurant_names_pk, h_restaurant_pk, name, load_dt, load_src)
	VALUES (?, ?, ?, ?, ?)
	ON CONFLICT (hk_restaurant_names_pk) DO UPDATE SET
		h_restaurant_pk = EXCLUDED.h_restaurant_pk,
		name = EXCLUDED.name,
		load_dt = EXCLUDED.load_dt,
		load_src = EXCLUDED.load_src`

func (r *Repository) UpsertRestaurantNames(ctx context.Context, s Names) error {
	return r.exec(ctx, "s_restaurant_names", upsertRestaurantNames, s.HubPK, s.HubPK, s.Name, s.At, s.Source)
}

// h_category has no satellite: the category name is its business key.
const upsertCategoryHub = `
	INSERT INTO dds.h_category (h_category_pk, category_name, load_dt, load_src)
	VALUES (?, ?, ?, ?)
	ON CONFLICT (h_category_pk) DO UPDATE SET
		category_name = EXCLUDED.category_name,
		load_dt = EXCLUDED.load_dt,
		load_src = EXCLUDED.load_src`

func (r *Repository) UpsertCategoryHub(ctx context.Context, h Hub) error {
	return r.exec(ctx, "h_category", upsertCategoryHub, h.PK, h.BusinessKey, h.At, h.Source)
}

const upsertProductHub = `
	INSERT INTO dds.h_product (h_product_pk, product_id, load_dt, load_src)
	VALUES (?, ?, ?, ?)
	ON CONFLICT (h_product_pk) DO UPDATE SET
		product_id = EXCLUDED.product_id,
		load_dt = EXCLUDED.load_dt,
		load_src = EXCLUDED.load_src`

func (r *Repository) UpsertProductHub(ctx context.Context, h Hub) error {
	return r.exec(ctx, "h_product", upsertProductHub, h.PK, h.BusinessKey, h.At, h.Source)
}

const upsertProductNames = `
	INSERT INTO dds.s_product_names (hk_product_names_pk, h_product_pk, name, load_dt, load_src)
	VALUES (?, ?, ?, ?, ?)
	ON CONFLICT (hk_product_names_pk) DO UPDATE SET
		h_product_pk = EXCLUDED.h_product_pk,
		name = EXCLUDED.name,
		load_dt = EXCLUDED.load_dt,
		load_src = EXCLUDED.load_src`

func (r *Repository) UpsertProductNames(ctx context.Context, s Names) error {
	return r.exec(ctx, "s_product_names", upsertProductNames, s.HubPK, s.HubPK, s.Name, s.At, s.Source)
}
