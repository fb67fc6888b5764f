package vault

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"ddsloader/internal/keys"
	"ddsloader/models"
)

// Orders are counted DISTINCT: an order listing the same product twice counts once.
const userProductCounters = `
	SELECT
		u.h_user_pk AS h_user_pk,
		op.h_product_pk AS h_product_pk,
		pn.name AS product_name,
		COUNT(DISTINCT ou.h_order_pk) AS order_cnt
	FROM dds.h_user AS u
		INNER JOIN dds.l_order_user AS ou ON ou.h_user_pk = u.h_user_pk
		INNER JOIN dds.l_order_product AS op ON op.h_order_pk = ou.h_order_pk
		INNER JOIN dds.s_product_names AS pn ON pn.h_product_pk = op.h_product_pk
	WHERE u.h_user_pk = ?
		AND op.h_product_pk IN ?
	GROUP BY u.h_user_pk, op.h_product_pk, pn.name
	ORDER BY pn.name, op.h_product_pk`

// UserProductCounters counts the user's distinct orders per product, limited to products.
func (r *Repository) UserProductCounters(ctx context.Context, user uuid.UUID, products *keys.Set) ([]models.UserProductCounter, error) {
	counters := []models.UserProductCounter{}
	if products == nil || products.Len() == 0 {
		return counters, nil
	}
	err := r.db.WithContext(ctx).Raw(userProductCounters, user.String(), products.Strings()).Scan(&counters).Error
	if err != nil {
		return nil, fmt.Errorf("query user product counters: %w", err)
	}
	return counters, nil
}

const userCategoryCounters = `
	SELECT
		u.h_user_pk AS h_user_pk,
		c.h_category_pk AS h_category_pk,
		c.category_name AS category_name,
		COUNT(DISTINCT ou.h_order_pk) AS order_cnt
	FROM dds.h_user AS u
		INNER JOIN dds.l_order_user AS ou ON ou.h_user_pk = u.h_user_pk
		INNER JOIN dds.l_order_product AS op ON op.h_order_pk = ou.h_order_pk
		INNER JOIN dds.l_product_category AS pc ON pc.h_product_pk = op.h_product_pk
		INNER JOIN dds.h_category AS c ON c.h_category_pk = pc.h_category_pk
	WHERE u.h_user_pk = ?
		AND c.h_category_pk IN ?
	GROUP BY u.h_user_pk, c.h_category_pk, c.category_name
	ORDER BY c.category_name, c.h_category_pk`

// UserCategoryCounters counts the user's distinct orders per category, limited to categories.
func (r *Repository) UserCategoryCounters(ctx context.Context, user uuid.UUID, categories *keys.Set) ([]models.UserCategoryCounter, error) {
	counters := []models.UserCategoryCounter{}
	if categories == nil || categories.Len() == 0 {
		return counters, nil
	}
	err := r.db.WithContext(ctx).Raw(userCategoryCounters, user.String(), categories.Strings()).Scan(&counters).Error
	if err != nil {
		return nil, fmt.Errorf("query user category counters: %w", err)
	}
	return counters, nil
}
