package vault

import "context"

const upsertProductCategory = `
	INSERT INTO dds.l_product_category (hk_product_category_pk, h_product_pk, h_category_pk, load_dt, load_src)
	VALUES (?, ?, ?, ?, ?)
	ON CONFLICT (hk_product_category_pk) DO UPDATE SET
		h_product_pk = EXCLUDED.h_product_pk,
		h_category_pk = EXCLUDED.h_category_pk,
		load_dt = EXCLUDED.load_dt,
		load_src = EXCLUDED.load_src`

// UpsertProductCategory expects Parent to be the product and Child the category.
func (r *Repository) UpsertProductCategory(ctx context.Context, l Link) error {
	return r.exec(ctx, "l_product_category", upsertProductCategory, l.PK, l.Parent, l.Child, l.At, l.Source)
}

const upsertProductRestaurant = `
	INSERT INTO dds.l_product_restaurant (hk_product_restaurant_pk, h_product_pk, h_restaurant_pk, load_dt, load_src)
	VALUES (?, ?, ?, ?, ?)
	ON CONFLICT (hk_product_restaurant_pk) DO UPDATE SET
		h_product_pk = EXCLUDED.h_product_pk,
		h_restaurant_pk = EXCLUDED.h_restaurant_pk,
		load_dt = EXCLUDED.load_dt,
		load_src = EXCLUDED.load_src`

// UpsertProductRestaurant expects Parent to be the product and Child the restaurant.
func (r *Repository) UpsertProductRestaurant(ctx context.Context, l Link) error {
	return r.exec(ctx, "l_product_restaurant", upsertProductRestaurant, l.PK, l.Parent, l.Child, l.At, l.Source)
}

const upsertOrderProduct = `
	INSERT INTO dds.l_order_product (hk_order_product_pk, h_order_pk, h_product_pk, load_dt, load_src)
	VALUES (?, ?, ?, ?, ?)
	ON CONFLICT (hk_order_product_pk) DO UPDATE SET
		h_order_pk = EXCLUDED.h_order_pk,
		h_product_pk = EXCLUDED.h_product_pk,
		load_dt = EXCLUDED.load_dt,
		load_src = EXCLUDED.load_src`

// UpsertOrderProduct expects Parent to be the order and Child the product.
func (r *Repository) UpsertOrderProduct(ctx context.Context, l Link) error {
	return r.exec(ctx, "l_order_product", upsertOrderProduct, l.PK, l.Parent, l.Child, l.At, l.Source)
}

const upsertOrderUser = `
	INSERT INTO dds.l_order_user (hk_order_user_pk, h_order_pk, h_user_pk, load_dt, load_src)
	VALUES (?, ?, ?, ?, ?)
	ON CONFLICT (hk_order_user_pk) DO UPDATE SET
		h_order_pk = EXCLUDED.h_order_pk,
		h_user_pk = EXCLUDED.h_user_pk,
		load_dt = EXCLUDED.load_dt,
		load_src = EXCLUDED.load_src`

// UpsertOrderUser expects Parent to be the order and Child the user.
func (r *Repository) UpsertOrderUser(ctx context.Context, l Link) error {
	return r.exec(ctx, "l_order_user", upsertOrderUser, l.PK, l.Parent, l.Child, l.At, l.Source)
}
