package workers

import (
	"context"
	"time"

	"go.uber.org/zap"

	"ddsloader/internal/keys"
	"ddsloader/internal/metrics"
	"ddsloader/internal/vault"
	"ddsloader/models"
)

// orderRows is every vault row one order event produces, with surrogate keys already derived.
// Categories and products are distinct; items keep one entry per line item.
type orderRows struct {
	order           vault.OrderHub
	cost            vault.OrderCost
	status          vault.OrderStatus
	user            vault.Hub
	userNames       vault.UserNames
	restaurant      vault.Hub
	restaurantNames vault.Names
	categories      []vault.Hub
	products        []vault.Hub
	productNames    []vault.Names
	items           []itemLinks
	orderUser       vault.Link

	productKeys  *keys.Set
	categoryKeys *keys.Set
}

type itemLinks struct {
	productCategory   vault.Link
	productRestaurant vault.Link
	orderProduct      vault.Link
}

func buildOrderRows(order *models.OrderPayload, load vault.Load) orderRows {
	// Validated by models.InboundEnvelope.Order.
	orderDt, _ := order.OrderDate()

	rows := orderRows{
		order:        vault.OrderHub{Hub: vault.NewHub(order.ID.String(), load), OrderDt: orderDt},
		user:         vault.NewHub(order.User.ID, load),
		restaurant:   vault.NewHub(order.Restaurant.ID, load),
		productKeys:  keys.NewSet(),
		categoryKeys: keys.NewSet(),
	}
	rows.cost = vault.OrderCost{HubPK: rows.order.PK, Cost: order.Cost, Payment: order.Payment, Load: load}
	rows.status = vault.OrderStatus{HubPK: rows.order.PK, Status: order.Status, Load: load}
	rows.userNames = vault.UserNames{
		HubPK:     rows.user.PK,
		Username:  order.User.Name,
		Userlogin: order.User.LoginOrName(),
		Load:      load,
	}
	rows.restaurantNames = vault.Names{HubPK: rows.restaurant.PK, Name: order.Restaurant.Name, Load: load}

	productAt := map[string]int{}
	for _, item := range order.Products {
		category := vault.NewHub(item.Category, load)
		if rows.categoryKeys.Add(category.PK) {
			rows.categories = append(rows.categories, category)
		}

		product := vault.NewHub(item.ID, load)
		names := vault.Names{HubPK: product.PK, Name: item.Name, Load: load}
		if rows.productKeys.Add(product.PK) {
			productAt[item.ID] = len(rows.products)
			rows.products = append(rows.products, product)
			rows.productNames = append(rows.productNames, names)
		} else {
			// A repeated product keeps the name of its last line.
			rows.productNames[productAt[item.ID]] = names
		}

		rows.items = append(rows.items, itemLinks{
			productCategory:   vault.NewLink(product.PK, category.PK, load),
			productRestaurant: vault.NewLink(product.PK, rows.restaurant.PK, load),
			orderProduct:      vault.NewLink(rows.order.PK, product.PK, load),
		})
	}
	rows.orderUser = vault.NewLink(rows.order.PK, rows.user.PK, load)
	return rows
}

// processOrder drives one accepted event from FILTERED to PUBLISHED.
func (w *OrderWorker) processOrder(ctx context.Context, order *models.OrderPayload) error {
	start := time.Now()
	rows := buildOrderRows(order, vault.Load{At: w.now(), Source: w.cfg.LoadSource})
	log := w.log.With(
		zap.String("order_id", order.ID.String()),
		zap.String("user_pk", rows.user.PK.String()))

	fail := func(stage Stage, err error) error {
		log.Error("event failed", zap.Stringer("stage", stage), zap.Error(err))
		return &EventError{OrderID: order.ID.String(), Stage: stage, Err: err}
	}

	write := func(wr vault.Writer) error {
		if err := writeHubs(ctx, wr, &rows); err != nil {
			return fail(StageHubsWritten, err)
		}
		if err := writeLinks(ctx, wr, &rows); err != nil {
			return fail(StageLinksWritten, err)
		}
		return nil
	}
	var err error
	if w.cfg.Transactional {
		err = w.store.Transaction(ctx, write)
	} else {
		err = write(w.store)
	}
	if err != nil {
		return err
	}

	products, err := w.store.UserProductCounters(ctx, rows.user.PK, rows.productKeys)
	if err != nil {
		return fail(StageAggregated, err)
	}
	categories, err := w.store.UserCategoryCounters(ctx, rows.user.PK, rows.categoryKeys)
	if err != nil {
		return fail(StageAggregated, err)
	}

	if err := w.counters.PublishProductCounters(ctx, rows.user.PK, products); err != nil {
		return fail(StagePublished, err)
	}
	if err := w.counters.PublishCategoryCounters(ctx, rows.user.PK, categories); err != nil {
		return fail(StagePublished, err)
	}

	elapsed := time.Since(start)
	metrics.EventDuration.Observe(elapsed.Seconds())
	log.Debug("event published",
		zap.Int("products", len(products)),
		zap.Int("categories", len(categories)),
		zap.Duration("elapsed", elapsed))
	return nil
}

// writeHubs applies steps 1 to 5: order, user, restaurant, categories, products.
func writeHubs(ctx context.Context, wr vault.Writer, rows *orderRows) error {
	if err := wr.UpsertOrderHub(ctx, rows.order); err != nil {
		return err
	}
	if err := wr.UpsertOrderCost(ctx, rows.cost); err != nil {
		return err
	}
	if err := wr.UpsertOrderStatus(ctx, rows.status); err != nil {
		return err
	}
	if err := wr.UpsertUserHub(ctx, rows.user); err != nil {
		return err
	}
	if err := wr.UpsertUserNames(ctx, rows.userNames); err != nil {
		return err
	}
	if err := wr.UpsertRestaurantHub(ctx, rows.restaurant); err != nil {
		return err
	}
	if err := wr.UpsertRestaurantNames(ctx, rows.restaurantNames); err != nil {
		return err
	}
	for _, category := range rows.categories {
		if err := wr.UpsertCategoryHub(ctx, category); err != nil {
			return err
		}
	}
	for i, product := range rows.products {
		if err := wr.UpsertProductHub(ctx, product); err != nil {
			return err
		}
		if err := wr.UpsertProductNames(ctx, rows.productNames[i]); err != nil {
			return err
		}
	}
	return nil
}

// writeLinks applies steps 6 and 7. Each link is written once per event.
func writeLinks(ctx context.Context, wr vault.Writer, rows *orderRows) error {
	productCategory, productRestaurant, orderProduct := keys.NewSet(), keys.NewSet(), keys.NewSet()
	for _, item := range rows.items {
		if productCategory.Add(item.productCategory.PK) {
			if err := wr.UpsertProductCategory(ctx, item.productCategory); err != nil {
				return err
			}
		}
		if productRestaurant.Add(item.productRestaurant.PK) {
			if err := wr.UpsertProductRestaurant(ctx, item.productRestaurant); err != nil {
				return err
			}
		}
		if orderProduct.Add(item.orderProduct.PK) {
			if err := wr.UpsertOrderProduct(ctx, item.orderProduct); err != nil {
				return err
			}
		}
	}
	return wr.UpsertOrderUser(ctx, rows.orderUser)
}
