package services_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/stockroom/app/models"
	"github.com/shashiranjanraj/stockroom/app/repositories"
	"github.com/shashiranjanraj/stockroom/app/services"
	"github.com/shashiranjanraj/stockroom/database/dbtest"
)

func TestPlaceOrder_DecrementsStockAndAppendsOrder(t *testing.T) {
	f := newFixture(t)
	widget := f.product(t, "Widget", 10, "5.00")
	who := f.user(t, "ann@example.com", models.RoleCustomer)
	inv := &countingInvalidator{}
	svc := f.fulfillment(services.FulfillmentOptions{Invalidator: inv})
	ctx := context.Background()

	placed, err := svc.PlaceOrder(ctx, services.PlaceOrderInput{
		ProductName: "Widget",
		Category:    "Hardware",
		Quantity:    4,
	}, who)
	require.NoError(t, err)

	assert.Equal(t, 6, placed.RemainingStock)
	assert.Equal(t, "20.00", placed.Order.TotalPrice.StringFixed(2))
	assert.Equal(t, "5.00", placed.Order.UnitPrice.StringFixed(2))
	assert.Equal(t, "Hardware", placed.Order.Category)
	assert.Equal(t, "User ann@example.com", placed.Order.CustomerName)
	assert.Equal(t, "1 Main Street", placed.Order.CustomerAddress)
	require.NotNil(t, placed.Order.CustomerID)
	assert.Equal(t, who.UserID, *placed.Order.CustomerID)
	assert.NotEmpty(t, placed.Order.Reference)

	assert.Equal(t, 6, f.stock(t, widget.ID))
	assert.EqualValues(t, 1, f.ledgerSize(t))
	assert.EqualValues(t, 1, inv.n.Load())

	_, err = svc.PlaceOrder(ctx, services.PlaceOrderInput{
		ProductName: "Widget",
		Category:    "Hardware",
		Quantity:    10,
	}, who)
	require.ErrorIs(t, err, services.ErrInsufficientStock)
	var svcErr *services.Error
	require.True(t, errors.As(err, &svcErr))
	assert.Equal(t, 6, svcErr.Available)

	assert.Equal(t, 6, f.stock(t, widget.ID))
	assert.EqualValues(t, 1, f.ledgerSize(t))
	assert.EqualValues(t, 1, inv.n.Load())
}

func TestPlaceOrder_OutOfStock(t *testing.T) {
	f := newFixture(t)
	pen := f.product(t, "Fountain Pen", 0, "32.00")
	who := f.user(t, "ann@example.com", models.RoleCustomer)

	_, err := f.fulfillment(services.FulfillmentOptions{}).PlaceOrder(context.Background(), services.PlaceOrderInput{
		ProductName: "Fountain Pen",
		Category:    "Hardware",
		Quantity:    1,
	}, who)
	require.ErrorIs(t, err, services.ErrOutOfStock)
	assert.Equal(t, 0, f.stock(t, pen.ID))
	assert.EqualValues(t, 0, f.ledgerSize(t))
}

func TestPlaceOrder_ExactStockEmptiesProduct(t *testing.T) {
	f := newFixture(t)
	screws := f.product(t, "Box of Screws", 4, "3.25")
	who := f.user(t, "ann@example.com", models.RoleCustomer)

	placed, err := f.fulfillment(services.FulfillmentOptions{}).PlaceOrder(context.Background(), services.PlaceOrderInput{
		ProductName: "Box of Screws",
		Category:    "hardware",
		Quantity:    4,
	}, who)
	require.NoError(t, err)
	assert.Equal(t, 0, placed.RemainingStock)
	assert.Equal(t, "13.00", placed.Order.TotalPrice.StringFixed(2))
	assert.Equal(t, 0, f.stock(t, screws.ID))
}

func TestPlaceOrder_Validation(t *testing.T) {
	f := newFixture(t)
	widget := f.product(t, "Widget", 10, "5.00")
	who := f.user(t, "ann@example.com", models.RoleCustomer)
	svc := f.fulfillment(services.FulfillmentOptions{})

	cases := map[string]struct {
		in    services.PlaceOrderInput
		field string
	}{
		"zero quantity":     {services.PlaceOrderInput{ProductName: "Widget", Category: "Hardware", Quantity: 0}, "quantity"},
		"negative quantity": {services.PlaceOrderInput{ProductName: "Widget", Category: "Hardware", Quantity: -2}, "quantity"},
		"blank product":     {services.PlaceOrderInput{ProductName: "  ", Category: "Hardware", Quantity: 1}, "productName"},
		"missing category":  {services.PlaceOrderInput{ProductName: "Widget", Quantity: 1}, "category"},
		"bad date":          {services.PlaceOrderInput{ProductName: "Widget", Category: "Hardware", Quantity: 1, Date: "yesterday"}, "date"},
		"wrong category":    {services.PlaceOrderInput{ProductName: "Widget", Category: "Stationery", Quantity: 1}, "category"},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.PlaceOrder(context.Background(), tc.in, who)
			require.ErrorIs(t, err, services.ErrValidation)
			var svcErr *services.Error
			require.True(t, errors.As(err, &svcErr))
			assert.Contains(t, svcErr.Fields, tc.field)
		})
	}

	assert.Equal(t, 10, f.stock(t, widget.ID))
	assert.EqualValues(t, 0, f.ledgerSize(t))
}

func TestPlaceOrder_UnknownProduct(t *testing.T) {
	f := newFixture(t)
	who := f.user(t, "ann@example.com", models.RoleCustomer)

	_, err := f.fulfillment(services.FulfillmentOptions{}).PlaceOrder(context.Background(), services.PlaceOrderInput{
		ProductName: "Gizmo",
		Category:    "Hardware",
		Quantity:    1,
	}, who)
	assert.ErrorIs(t, err, services.ErrNotFound)
}

func TestPlaceOrder_RequiresIdentity(t *testing.T) {
	f := newFixture(t)
	f.product(t, "Widget", 10, "5.00")

	_, err := f.fulfillment(services.FulfillmentOptions{}).PlaceOrder(context.Background(), services.PlaceOrderInput{
		ProductName: "Widget",
		Category:    "Hardware",
		Quantity:    1,
	}, services.Identity{})
	assert.ErrorIs(t, err, services.ErrUnauthorized)
	assert.EqualValues(t, 0, f.ledgerSize(t))
}

func TestPlaceOrder_ExplicitCustomerAndDate(t *testing.T) {
	f := newFixture(t)
	f.product(t, "Widget", 10, "5.00")
	who := f.user(t, "ann@example.com", models.RoleCustomer)
	loc := time.FixedZone("UTC+5:30", 5*3600+1800)
	svc := f.fulfillment(services.FulfillmentOptions{Location: loc})

	placed, err := svc.PlaceOrder(context.Background(), services.PlaceOrderInput{
		CustomerName:    "Front Desk",
		CustomerAddress: "Dock 4",
		ProductName:     "Widget",
		Category:        "Hardware",
		Quantity:        1,
		Date:            "2026-03-01",
	}, who)
	require.NoError(t, err)

	assert.Equal(t, "Front Desk", placed.Order.CustomerName)
	assert.Equal(t, "Dock 4", placed.Order.CustomerAddress)
	assert.True(t, placed.Order.Date.Equal(time.Date(2026, 2, 28, 18, 30, 0, 0, time.UTC)),
		"date-only input is midnight in the configured location, got %s", placed.Order.Date)
}

// placeConcurrently has each identity order qty units of product at once
// and returns the number of successes and the failures.
func placeConcurrently(svc *services.FulfillmentService, product string, qty int, who []services.Identity) (int32, []error) {
	var (
		wg        sync.WaitGroup
		successes atomic.Int32
		errs      = make(chan error, len(who))
	)
	for _, w := range who {
		wg.Add(1)
		go func(w services.Identity) {
			defer wg.Done()
			_, err := svc.PlaceOrder(context.Background(), services.PlaceOrderInput{
				ProductName: product,
				Category:    "Hardware",
				Quantity:    qty,
			}, w)
			if err == nil {
				successes.Add(1)
				return
			}
			errs <- err
		}(w)
	}
	wg.Wait()
	close(errs)

	var failures []error
	for err := range errs {
		failures = append(failures, err)
	}
	return successes.Load(), failures
}

func TestPlaceOrder_ConcurrentOrdersNeverOversell(t *testing.T) {
	f := newFixtureOn(t, dbtest.NewFile(t, 8))
	widget := f.product(t, "Widget", 5, "5.00")
	ann := f.user(t, "ann@example.com", models.RoleCustomer)
	bob := f.user(t, "bob@example.com", models.RoleCustomer)
	svc := f.fulfillment(services.FulfillmentOptions{ConflictRetries: 1})

	successes, failures := placeConcurrently(svc, "Widget", 3, []services.Identity{ann, bob})

	assert.EqualValues(t, 1, successes)
	for _, err := range failures {
		kind := services.KindOf(err)
		assert.Contains(t, []services.Kind{services.KindInsufficientStock, services.KindConflict}, kind, "unexpected error %v", err)
	}
	assert.Equal(t, 2, f.stock(t, widget.ID))
	assert.EqualValues(t, 1, f.ledgerSize(t))
}

func TestPlaceOrder_ConcurrentLoadSellsAllAvailableStock(t *testing.T) {
	f := newFixtureOn(t, dbtest.NewFile(t, 25))
	widget := f.product(t, "Widget", 50, "5.00")
	svc := f.fulfillment(services.FulfillmentOptions{ConflictRetries: 1})

	buyers := make([]services.Identity, 40)
	for i := range buyers {
		buyers[i] = f.user(t, fmt.Sprintf("buyer%d@example.com", i), models.RoleCustomer)
	}

	successes, failures := placeConcurrently(svc, "Widget", 3, buyers)

	for _, err := range failures {
		kind := services.KindOf(err)
		assert.Contains(t, []services.Kind{services.KindInsufficientStock, services.KindOutOfStock, services.KindConflict},
			kind, "unexpected error %v", err)
	}
	assert.EqualValues(t, 16, successes, "every order that fits in 50 units is placed")
	assert.Equal(t, 50-3*int(successes), f.stock(t, widget.ID))
	assert.EqualValues(t, successes, f.ledgerSize(t))
}

// appendFails runs the real transaction but fails the ledger write.
type appendFails struct{ repositories.UnitOfWork }

func (u appendFails) Inventory(ctx context.Context, fn func(repositories.Inventory) error) error {
	return u.UnitOfWork.Inventory(ctx, func(inv repositories.Inventory) error {
		return fn(brokenLedger{inv})
	})
}

type brokenLedger struct{ repositories.Inventory }

func (brokenLedger) AppendOrder(context.Context, *models.Order) error {
	return errors.New("disk I/O error")
}

func TestPlaceOrder_FailedAppendRollsBackStock(t *testing.T) {
	f := newFixture(t)
	widget := f.product(t, "Widget", 10, "5.00")
	who := f.user(t, "ann@example.com", models.RoleCustomer)
	inv := &countingInvalidator{}
	svc := services.NewFulfillmentService(appendFails{repositories.NewUnitOfWork(f.db)}, f.orders, f.users,
		services.FulfillmentOptions{Invalidator: inv})

	_, err := svc.PlaceOrder(context.Background(), services.PlaceOrderInput{
		ProductName: "Widget",
		Category:    "Hardware",
		Quantity:    4,
	}, who)
	require.ErrorIs(t, err, services.ErrStorageUnavailable)

	assert.Equal(t, 10, f.stock(t, widget.ID))
	assert.EqualValues(t, 0, f.ledgerSize(t))
	assert.EqualValues(t, 0, inv.n.Load())
}

// racingUoW makes the first n conditional decrements lose the race.
type racingUoW struct {
	repositories.UnitOfWork
	losses atomic.Int32
}

func (u *racingUoW) Inventory(ctx context.Context, fn func(repositories.Inventory) error) error {
	return u.UnitOfWork.Inventory(ctx, func(inv repositories.Inventory) error {
		return fn(racingInventory{Inventory: inv, u: u})
	})
}

type racingInventory struct {
	repositories.Inventory
	u *racingUoW
}

func (r racingInventory) ConditionalDecrementStock(ctx context.Context, id uint, amount, min int) error {
	if r.u.losses.Add(-1) >= 0 {
		return repositories.ErrStockConflict
	}
	return r.Inventory.ConditionalDecrementStock(ctx, id, amount, min)
}

func TestPlaceOrder_RetriesAfterConflict(t *testing.T) {
	f := newFixture(t)
	widget := f.product(t, "Widget", 10, "5.00")
	who := f.user(t, "ann@example.com", models.RoleCustomer)

	uow := &racingUoW{UnitOfWork: repositories.NewUnitOfWork(f.db)}
	uow.losses.Store(1)
	svc := services.NewFulfillmentService(uow, f.orders, f.users, services.FulfillmentOptions{ConflictRetries: 1})

	placed, err := svc.PlaceOrder(context.Background(), services.PlaceOrderInput{
		ProductName: "Widget",
		Category:    "Hardware",
		Quantity:    2,
	}, who)
	require.NoError(t, err)
	assert.Equal(t, 8, placed.RemainingStock)
	assert.Equal(t, 8, f.stock(t, widget.ID))
}

func TestPlaceOrder_ConflictAfterRetriesExhausted(t *testing.T) {
	f := newFixture(t)
	widget := f.product(t, "Widget", 10, "5.00")
	who := f.user(t, "ann@example.com", models.RoleCustomer)

	uow := &racingUoW{UnitOfWork: repositories.NewUnitOfWork(f.db)}
	uow.losses.Store(2)
	svc := services.NewFulfillmentService(uow, f.orders, f.users, services.FulfillmentOptions{ConflictRetries: 1})

	_, err := svc.PlaceOrder(context.Background(), services.PlaceOrderInput{
		ProductName: "Widget",
		Category:    "Hardware",
		Quantity:    2,
	}, who)
	require.ErrorIs(t, err, services.ErrConflict)
	assert.Equal(t, 10, f.stock(t, widget.ID))
	assert.EqualValues(t, 0, f.ledgerSize(t))
}

func TestListOrders_ScopedAndFiltered(t *testing.T) {
	f := newFixture(t)
	f.product(t, "Widget", 50, "5.00")
	f.product(t, "Hammer", 50, "18.50")
	ann := f.user(t, "ann@example.com", models.RoleCustomer)
	bob := f.user(t, "bob@example.com", models.RoleCustomer)
	admin := f.user(t, "admin@example.com", models.RoleAdmin)
	svc := f.fulfillment(services.FulfillmentOptions{Location: time.UTC})
	ctx := context.Background()

	place := func(who services.Identity, product string, qty int, date string) {
		t.Helper()
		_, err := svc.PlaceOrder(ctx, services.PlaceOrderInput{
			ProductName: product, Category: "Hardware", Quantity: qty, Date: date,
		}, who)
		require.NoError(t, err)
	}
	place(ann, "Widget", 1, "2026-03-01T09:00:00Z")
	place(ann, "Hammer", 2, "2026-03-02T09:00:00Z")
	place(bob, "Widget", 3, "2026-03-02T10:00:00Z")

	mine, err := svc.ListOrders(ctx, services.OrderQuery{}, ann)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	for _, o := range mine {
		assert.Equal(t, ann.UserID, *o.CustomerID)
	}

	// a customer cannot widen the scope
	other := bob.UserID
	mine, err = svc.ListOrders(ctx, services.OrderQuery{CustomerID: &other}, ann)
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	all, err := svc.ListOrders(ctx, services.OrderQuery{}, admin)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "Widget", all[0].ProductName, "newest first")
	assert.Equal(t, 3, all[0].Quantity)

	again, err := svc.ListOrders(ctx, services.OrderQuery{}, admin)
	require.NoError(t, err)
	assert.Equal(t, all, again)

	widgets, err := svc.ListOrders(ctx, services.OrderQuery{Search: "wid"}, admin)
	require.NoError(t, err)
	assert.Len(t, widgets, 2)

	onDay, err := svc.ListOrders(ctx, services.OrderQuery{Date: "2026-03-02"}, admin)
	require.NoError(t, err)
	assert.Len(t, onDay, 2)

	none, err := svc.ListOrders(ctx, services.OrderQuery{Category: "Stationery"}, admin)
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)

	_, err = svc.ListOrders(ctx, services.OrderQuery{Date: "02/03/2026"}, admin)
	assert.ErrorIs(t, err, services.ErrValidation)

	_, err = svc.ListOrders(ctx, services.OrderQuery{}, services.Identity{})
	assert.ErrorIs(t, err, services.ErrUnauthorized)
}

func TestListOrders_DateFilterUsesServiceLocation(t *testing.T) {
	f := newFixture(t)
	f.product(t, "Widget", 50, "5.00")
	admin := f.user(t, "admin@example.com", models.RoleAdmin)
	loc := time.FixedZone("UTC+5:30", 5*3600+1800)
	svc := f.fulfillment(services.FulfillmentOptions{Location: loc})
	ctx := context.Background()

	for _, date := range []string{"2026-03-01T10:00:00Z", "2026-03-01T20:00:00Z"} {
		_, err := svc.PlaceOrder(ctx, services.PlaceOrderInput{
			ProductName: "Widget", Category: "Hardware", Quantity: 1, Date: date,
		}, admin)
		require.NoError(t, err)
	}

	// 2026-03-01T23:00-05:00 is the morning of 2 March in the service location
	later, err := svc.ListOrders(ctx, services.OrderQuery{Date: "2026-03-01T23:00:00-05:00"}, admin)
	require.NoError(t, err)
	require.Len(t, later, 1)
	assert.True(t, later[0].Date.Equal(time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC)))

	earlier, err := svc.ListOrders(ctx, services.OrderQuery{Date: "2026-03-01"}, admin)
	require.NoError(t, err)
	require.Len(t, earlier, 1)
	assert.True(t, earlier[0].Date.Equal(time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)))
}
