package order_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/musicstore/storefront/internal/app"
	"github.com/musicstore/storefront/internal/config"
	"github.com/musicstore/storefront/internal/domain/cart"
	"github.com/musicstore/storefront/internal/domain/order"
	"github.com/musicstore/storefront/internal/domain/payment"
	"github.com/musicstore/storefront/internal/domain/product"
	"github.com/musicstore/storefront/internal/domain/status"
	"github.com/musicstore/storefront/internal/domain/user"
	"github.com/musicstore/storefront/internal/pkg/apperrors"
	"github.com/musicstore/storefront/internal/testutil"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixture struct {
	db       *gorm.DB
	svc      *app.Services
	delivery *payment.DeliveryMethod
	payment  *payment.PaymentMethod
}

func setup(t *testing.T) *fixture {
	t.Helper()
	return setupWithConfig(t, testutil.NewConfig())
}

func setupWithConfig(t *testing.T, cfg *config.Config) *fixture {
	t.Helper()

	db := testutil.NewDB(t)
	return &fixture{
		db:       db,
		svc:      testutil.NewServices(db, cfg),
		delivery: testutil.CreateDeliveryMethod(t, db, "test_courier", "3.00"),
		payment:  testutil.PaymentMethod(t, db, "cash"),
	}
}

func (f *fixture) addToCart(t *testing.T, userID uint, p *product.Product, quantity int) {
	t.Helper()
	_, err := f.svc.Carts.AddLine(context.Background(), userID, p.ID, quantity)
	require.NoError(t, err)
}

func (f *fixture) request() *order.PlaceOrderRequest {
	return &order.PlaceOrderRequest{
		Address:          testutil.Address(),
		DeliveryMethodID: f.delivery.ID,
		PaymentMethodID:  f.payment.ID,
		Comment:          "Позвонить за час",
	}
}

func (f *fixture) place(t *testing.T, userID uint) *order.Order {
	t.Helper()
	o, err := f.svc.Orders.PlaceOrder(context.Background(), userID, f.request())
	require.NoError(t, err)
	return o
}

func (f *fixture) changeStatus(t *testing.T, orderID uint, name string) (*order.TransitionResult, error) {
	t.Helper()
	target := testutil.Status(t, f.db, name)
	return f.svc.Orders.ChangeStatus(context.Background(), orderID, &order.ChangeStatusRequest{StatusID: target.ID}, 1)
}

func TestPlaceOrderRoundTrip(t *testing.T) {
	f := setup(t)
	u := testutil.CreateUser(t, f.db, "buyer@example.com")
	a := testutil.CreateProduct(t, f.db, "Guitar Strap", "10.00", 5)
	b := testutil.CreateProduct(t, f.db, "Guitar Picks", "5.00", 3)

	f.addToCart(t, u.ID, a, 2)
	f.addToCart(t, u.ID, b, 1)

	o := f.place(t, u.ID)

	assert.Equal(t, "26.00", o.Total.StringFixed(2))
	assert.Equal(t, "25.00", o.ItemsTotal().StringFixed(2))
	assert.Equal(t, "3.00", o.DeliveryCost().StringFixed(2))
	assert.Equal(t, "Новый", o.StatusName())
	assert.Equal(t, "Позвонить за час", o.Comment)

	require.Len(t, o.Lines, 2)
	assert.Equal(t, a.ID, o.Lines[0].ProductID)
	assert.Equal(t, 2, o.Lines[0].Quantity)
	assert.Equal(t, "10.00", o.Lines[0].UnitPrice.StringFixed(2))
	assert.Equal(t, "Guitar Strap", o.Lines[0].ProductName)
	assert.Equal(t, b.ID, o.Lines[1].ProductID)
	assert.Equal(t, "5.00", o.Lines[1].UnitPrice.StringFixed(2))

	assert.Equal(t, 3, testutil.Stock(t, f.db, a.ID))
	assert.Equal(t, 2, testutil.Stock(t, f.db, b.ID))

	view, err := f.svc.Carts.GetCart(context.Background(), u.ID)
	require.NoError(t, err)
	assert.True(t, view.IsEmpty())

	require.Len(t, o.History, 1)
	assert.Equal(t, o.StatusID, o.History[0].StatusID)
	assert.Equal(t, u.ID, o.History[0].ChangedBy)

	require.Len(t, o.Payments, 1)
	assert.Equal(t, payment.PaymentStatusPending, o.Payments[0].Status)
	assert.Equal(t, "26.00", o.Payments[0].Amount.StringFixed(2))

	require.NotNil(t, o.Address)
	assert.Equal(t, "Россия", o.Address.Country)
	assert.True(t, o.Address.IsDefault)

	assert.Equal(t, 1.0, promtest.ToFloat64(f.svc.Metrics.OrdersPlaced))
}

func TestOrderKeepsPriceSnapshot(t *testing.T) {
	f := setup(t)
	u := testutil.CreateUser(t, f.db, "buyer@example.com")
	p := testutil.CreateProduct(t, f.db, "Cello Bow", "120.00", 2)

	f.addToCart(t, u.ID, p, 1)
	o := f.place(t, u.ID)

	require.NoError(t, f.db.Model(&product.Product{}).Where("id = ?", p.ID).
		Update("price", decimal.RequireFromString("999.00")).Error)

	summary, err := f.svc.Orders.GetUserOrder(context.Background(), u.ID, o.ID)
	require.NoError(t, err)
	assert.Equal(t, "120.00", summary.ItemsTotal.StringFixed(2))
	assert.Equal(t, "123.00", summary.Total.StringFixed(2))
}

func TestPlaceOrderReusesAddress(t *testing.T) {
	f := setup(t)
	u := testutil.CreateUser(t, f.db, "buyer@example.com")
	p := testutil.CreateProduct(t, f.db, "Reeds", "9.00", 10)

	f.addToCart(t, u.ID, p, 1)
	first := f.place(t, u.ID)
	f.addToCart(t, u.ID, p, 1)
	second := f.place(t, u.ID)

	assert.Equal(t, *first.AddressID, *second.AddressID)

	var addresses int64
	f.db.Model(&user.Address{}).Where("user_id = ?", u.ID).Count(&addresses)
	assert.Equal(t, int64(1), addresses)
}

func TestPlaceOrderWithEmptyCart(t *testing.T) {
	f := setup(t)
	u := testutil.CreateUser(t, f.db, "buyer@example.com")

	_, err := f.svc.Orders.PlaceOrder(context.Background(), u.ID, f.request())
	var validation *apperrors.ValidationError
	require.True(t, errors.As(err, &validation))
	assert.Equal(t, "cart is empty", validation.Error())

	// A cart that exists but holds no lines is empty too.
	_, err = f.svc.Carts.GetOrCreateCart(context.Background(), u.ID)
	require.NoError(t, err)
	_, err = f.svc.Orders.PlaceOrder(context.Background(), u.ID, f.request())
	assert.True(t, errors.As(err, &validation))
}

func TestPlaceOrderUnknownDeliveryMethodLeavesCart(t *testing.T) {
	f := setup(t)
	u := testutil.CreateUser(t, f.db, "buyer@example.com")
	p := testutil.CreateProduct(t, f.db, "Tuner", "15.00", 4)
	f.addToCart(t, u.ID, p, 2)

	req := f.request()
	req.DeliveryMethodID = 9999
	_, err := f.svc.Orders.PlaceOrder(context.Background(), u.ID, req)

	var notFound *apperrors.NotFoundError
	require.True(t, errors.As(err, &notFound))
	assert.Equal(t, "delivery method", notFound.Entity)

	assert.Equal(t, 4, testutil.Stock(t, f.db, p.ID))
	view, err := f.svc.Carts.GetCart(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Len(t, view.Lines, 1)
}

func TestPlaceOrderInsufficientStockRollsBack(t *testing.T) {
	f := setup(t)
	u := testutil.CreateUser(t, f.db, "buyer@example.com")
	a := testutil.CreateProduct(t, f.db, "Snare Drum", "200.00", 5)
	b := testutil.CreateProduct(t, f.db, "Hi-Hat Stand", "80.00", 2)

	f.addToCart(t, u.ID, a, 3)
	f.addToCart(t, u.ID, b, 2)

	// Stock sold elsewhere after the line was added.
	require.NoError(t, f.db.Model(&product.Product{}).Where("id = ?", b.ID).Update("stock", 1).Error)

	_, err := f.svc.Orders.PlaceOrder(context.Background(), u.ID, f.request())
	var stockErr *apperrors.InsufficientStockError
	require.True(t, errors.As(err, &stockErr))
	assert.Equal(t, b.ID, stockErr.ProductID)
	assert.Equal(t, 1, stockErr.Available)
	assert.Equal(t, 2, stockErr.Requested)

	assert.Equal(t, 5, testutil.Stock(t, f.db, a.ID))
	assert.Equal(t, 1, testutil.Stock(t, f.db, b.ID))

	var orders, lines int64
	f.db.Model(&order.Order{}).Count(&orders)
	f.db.Model(&order.OrderLine{}).Count(&lines)
	assert.Zero(t, orders)
	assert.Zero(t, lines)

	view, err := f.svc.Carts.GetCart(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Len(t, view.Lines, 2)
}

func TestConcurrentOrdersForLastUnit(t *testing.T) {
	f := setup(t)
	p := testutil.CreateProduct(t, f.db, "Vintage Rhodes", "1500.00", 1)

	buyers := []*user.User{
		testutil.CreateUser(t, f.db, "first@example.com"),
		testutil.CreateUser(t, f.db, "second@example.com"),
	}
	for _, u := range buyers {
		f.addToCart(t, u.ID, p, 1)
	}

	var wg sync.WaitGroup
	errs := make([]error, len(buyers))
	for i, u := range buyers {
		wg.Add(1)
		go func(i int, userID uint) {
			defer wg.Done()
			_, errs[i] = f.svc.Orders.PlaceOrder(context.Background(), userID, f.request())
		}(i, u.ID)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		var stockErr *apperrors.InsufficientStockError
		assert.True(t, errors.As(err, &stockErr), "unexpected error: %v", err)
	}

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 0, testutil.Stock(t, f.db, p.ID))

	var orders int64
	f.db.Model(&order.Order{}).Count(&orders)
	assert.Equal(t, int64(1), orders)
}

func TestPlaceOrderCartConsumedByAnotherCheckout(t *testing.T) {
	f := setup(t)
	u := testutil.CreateUser(t, f.db, "buyer@example.com")
	p := testutil.CreateProduct(t, f.db, "Bass Amp", "450.00", 4)
	f.addToCart(t, u.ID, p, 2)

	userCart, err := f.svc.Carts.GetOrCreateCart(context.Background(), u.ID)
	require.NoError(t, err)

	// A second submit of the same cart clears it first.
	testutil.BeforeDelete(t, f.db, "cart_lines", func(tx *gorm.DB) error {
		return tx.Exec("DELETE FROM cart_lines WHERE cart_id = ?", userCart.ID).Error
	})

	_, err = f.svc.Orders.PlaceOrder(context.Background(), u.ID, f.request())
	var conflict *apperrors.ConflictError
	require.True(t, errors.As(err, &conflict), "unexpected error: %v", err)

	assert.Equal(t, 4, testutil.Stock(t, f.db, p.ID))
	var orders int64
	f.db.Model(&order.Order{}).Count(&orders)
	assert.Zero(t, orders)
}

func TestChangeStatusLosesRaceToCancellation(t *testing.T) {
	f := setup(t)
	u := testutil.CreateUser(t, f.db, "buyer@example.com")
	p := testutil.CreateProduct(t, f.db, "Cello", "900.00", 3)
	f.addToCart(t, u.ID, p, 1)
	o := f.place(t, u.ID)

	cancelled := testutil.Status(t, f.db, "Отменён")
	testutil.BeforeUpdate(t, f.db, "orders", func(tx *gorm.DB) error {
		return tx.Exec("UPDATE orders SET status_id = ? WHERE id = ?", cancelled.ID, o.ID).Error
	})

	_, err := f.changeStatus(t, o.ID, "Отправлен")
	var terminal *apperrors.TerminalStateError
	require.True(t, errors.As(err, &terminal), "unexpected error: %v", err)
	assert.Equal(t, o.ID, terminal.OrderID)
	assert.Equal(t, "Отменён", terminal.Status)
	assert.Equal(t, 2, testutil.Stock(t, f.db, p.ID))
}

func TestChangeStatusLosesRaceToOrdinaryChange(t *testing.T) {
	f := setup(t)
	u := testutil.CreateUser(t, f.db, "buyer@example.com")
	p := testutil.CreateProduct(t, f.db, "Banjo", "300.00", 3)
	f.addToCart(t, u.ID, p, 1)
	o := f.place(t, u.ID)

	processing := testutil.Status(t, f.db, "В обработке")
	testutil.BeforeUpdate(t, f.db, "orders", func(tx *gorm.DB) error {
		return tx.Exec("UPDATE orders SET status_id = ? WHERE id = ?", processing.ID, o.ID).Error
	})

	_, err := f.svc.Orders.CancelByUser(context.Background(), u.ID, o.ID)
	var conflict *apperrors.ConflictError
	require.True(t, errors.As(err, &conflict), "unexpected error: %v", err)
	assert.Contains(t, conflict.Error(), "modified concurrently")

	assert.Equal(t, 2, testutil.Stock(t, f.db, p.ID))
	summary, err := f.svc.Orders.GetUserOrder(context.Background(), u.ID, o.ID)
	require.NoError(t, err)
	assert.Equal(t, "Новый", summary.StatusName())
}

func TestCancelByUserReleasesStock(t *testing.T) {
	f := setup(t)
	u := testutil.CreateUser(t, f.db, "buyer@example.com")
	p := testutil.CreateProduct(t, f.db, "Bass Amp", "300.00", 5)

	f.addToCart(t, u.ID, p, 2)
	o := f.place(t, u.ID)
	require.Equal(t, 3, testutil.Stock(t, f.db, p.ID))

	result, err := f.svc.Orders.CancelByUser(context.Background(), u.ID, o.ID)
	require.NoError(t, err)
	assert.Nil(t, result.PartialFailure())
	assert.Equal(t, status.CategoryCancelled, result.Category)
	assert.Equal(t, "Новый", result.Previous.Name)
	assert.Equal(t, "Отменён", result.Current.Name)
	require.NotNil(t, result.Release)
	assert.Len(t, result.Release.Succeeded(), 1)
	assert.Equal(t, 5, testutil.Stock(t, f.db, p.ID))
	assert.Len(t, result.Order.History, 2)

	_, err = f.svc.Orders.CancelByUser(context.Background(), u.ID, o.ID)
	var terminal *apperrors.TerminalStateError
	require.True(t, errors.As(err, &terminal))
	assert.Equal(t, o.ID, terminal.OrderID)
	assert.Equal(t, 5, testutil.Stock(t, f.db, p.ID))

	assert.Equal(t, 1.0, promtest.ToFloat64(f.svc.Metrics.OrderTransitions.WithLabelValues("cancelled")))
}

func TestCancelByUserChecksOwnership(t *testing.T) {
	f := setup(t)
	owner := testutil.CreateUser(t, f.db, "owner@example.com")
	other := testutil.CreateUser(t, f.db, "other@example.com")
	p := testutil.CreateProduct(t, f.db, "Mandolin", "250.00", 2)

	f.addToCart(t, owner.ID, p, 1)
	o := f.place(t, owner.ID)

	_, err := f.svc.Orders.CancelByUser(context.Background(), other.ID, o.ID)
	var notFound *apperrors.NotFoundError
	require.True(t, errors.As(err, &notFound))

	_, err = f.svc.Orders.GetUserOrder(context.Background(), other.ID, o.ID)
	assert.True(t, errors.As(err, &notFound))

	assert.Equal(t, 1, testutil.Stock(t, f.db, p.ID))
}

func TestDeliveredOrderCancelledByAdminOnly(t *testing.T) {
	f := setup(t)
	u := testutil.CreateUser(t, f.db, "buyer@example.com")
	p := testutil.CreateProduct(t, f.db, "Saxophone", "700.00", 3)

	f.addToCart(t, u.ID, p, 1)
	o := f.place(t, u.ID)

	result, err := f.changeStatus(t, o.ID, "Доставлен")
	require.NoError(t, err)
	assert.Equal(t, status.CategoryDelivered, result.Category)
	assert.Nil(t, result.Release)
	assert.Equal(t, 2, testutil.Stock(t, f.db, p.ID))

	_, err = f.svc.Orders.CancelByUser(context.Background(), u.ID, o.ID)
	var terminal *apperrors.TerminalStateError
	require.True(t, errors.As(err, &terminal))

	result, err = f.changeStatus(t, o.ID, "Отменён")
	require.NoError(t, err)
	assert.Equal(t, status.CategoryCancelled, result.Category)
	assert.Equal(t, 3, testutil.Stock(t, f.db, p.ID))

	_, err = f.changeStatus(t, o.ID, "В обработке")
	require.True(t, errors.As(err, &terminal))
	assert.Equal(t, "Отменён", terminal.Status)
	assert.Equal(t, 3, testutil.Stock(t, f.db, p.ID))
}

func TestChangeStatusBetweenOrdinaryStatuses(t *testing.T) {
	f := setup(t)
	u := testutil.CreateUser(t, f.db, "buyer@example.com")
	p := testutil.CreateProduct(t, f.db, "Violin", "400.00", 3)

	f.addToCart(t, u.ID, p, 1)
	o := f.place(t, u.ID)

	for _, name := range []string{"В обработке", "Отправлен"} {
		result, err := f.changeStatus(t, o.ID, name)
		require.NoError(t, err)
		assert.Equal(t, status.CategoryOther, result.Category)
		assert.Equal(t, name, result.Current.Name)
	}
	assert.Equal(t, 2, testutil.Stock(t, f.db, p.ID))

	summary, err := f.svc.Orders.AdminGetOrder(context.Background(), o.ID)
	require.NoError(t, err)
	require.Len(t, summary.History, 3)
	assert.Equal(t, "Отправлен", summary.History[2].Status.Name)
	assert.True(t, summary.CanCancel)
	assert.Equal(t, o.Number(), summary.Number)
	assert.Equal(t, "Test Customer", summary.Customer)
	assert.Equal(t, "ул. Ленина, 1, Москва, 101000, Россия", summary.AddressLine)

	_, err = f.svc.Orders.ChangeStatus(context.Background(), o.ID, &order.ChangeStatusRequest{StatusID: 9999}, 1)
	var notFound *apperrors.NotFoundError
	assert.True(t, errors.As(err, &notFound))
}

func TestChangeStatusCommentOnly(t *testing.T) {
	f := setup(t)
	u := testutil.CreateUser(t, f.db, "buyer@example.com")
	p := testutil.CreateProduct(t, f.db, "Flute", "180.00", 2)

	f.addToCart(t, u.ID, p, 1)
	o := f.place(t, u.ID)

	comment := "  Клиент просил упаковать в подарок "
	result, err := f.svc.Orders.ChangeStatus(context.Background(), o.ID, &order.ChangeStatusRequest{
		StatusID: o.StatusID,
		Comment:  &comment,
	}, 1)
	require.NoError(t, err)

	assert.Equal(t, "Клиент просил упаковать в подарок", result.Order.Comment)
	assert.Len(t, result.Order.History, 1)
	assert.Nil(t, result.Release)
}

func TestHistoryCanBeDisabled(t *testing.T) {
	cfg := testutil.NewConfig()
	cfg.Order.RecordTransitions = false
	f := setupWithConfig(t, cfg)

	u := testutil.CreateUser(t, f.db, "buyer@example.com")
	p := testutil.CreateProduct(t, f.db, "Harmonica", "20.00", 2)
	f.addToCart(t, u.ID, p, 1)
	o := f.place(t, u.ID)

	result, err := f.changeStatus(t, o.ID, "Отправлен")
	require.NoError(t, err)
	assert.Len(t, result.Order.History, 1)
}

func TestCancellationWithPartialReleaseFailure(t *testing.T) {
	f := setup(t)
	u := testutil.CreateUser(t, f.db, "buyer@example.com")
	a := testutil.CreateProduct(t, f.db, "Keyboard Stand", "60.00", 4)
	b := testutil.CreateProduct(t, f.db, "Sustain Pedal", "35.00", 4)

	f.addToCart(t, u.ID, a, 1)
	f.addToCart(t, u.ID, b, 2)
	o := f.place(t, u.ID)

	// Another writer touches the row between the release and its verification.
	require.NoError(t, f.db.Exec(fmt.Sprintf(
		"CREATE TRIGGER interfere AFTER UPDATE OF stock ON products WHEN NEW.id = %d "+
			"BEGIN UPDATE products SET stock = stock + 1 WHERE id = NEW.id; END", b.ID,
	)).Error)

	result, err := f.svc.Orders.CancelByUser(context.Background(), u.ID, o.ID)
	require.NoError(t, err)

	partial := result.PartialFailure()
	require.NotNil(t, partial)
	assert.Equal(t, o.ID, partial.OrderID)
	assert.Equal(t, 1, partial.Succeeded)
	require.Len(t, partial.Failures, 1)
	assert.Equal(t, "Sustain Pedal", partial.Failures[0].ProductName)
	assert.Contains(t, partial.Error(), "Sustain Pedal")

	summary, err := f.svc.Orders.GetUserOrder(context.Background(), u.ID, o.ID)
	require.NoError(t, err)
	assert.Equal(t, "Отменён", summary.StatusName())
	assert.False(t, summary.CanCancel)

	assert.Equal(t, 4, testutil.Stock(t, f.db, a.ID))
	assert.Equal(t, 5, testutil.Stock(t, f.db, b.ID))
	assert.Equal(t, 1.0, promtest.ToFloat64(f.svc.Metrics.StockReleaseFailures))
}

func TestListOrders(t *testing.T) {
	f := setup(t)
	alice := testutil.CreateUser(t, f.db, "alice@example.com")
	bob := testutil.CreateUser(t, f.db, "bob@example.com")
	p := testutil.CreateProduct(t, f.db, "Cajon", "90.00", 10)

	var aliceOrders []*order.Order
	for i := 0; i < 3; i++ {
		f.addToCart(t, alice.ID, p, 1)
		aliceOrders = append(aliceOrders, f.place(t, alice.ID))
	}
	f.addToCart(t, bob.ID, p, 2)
	bobOrder := f.place(t, bob.ID)

	ctx := context.Background()

	resp, err := f.svc.Orders.ListUserOrders(ctx, alice.ID, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), resp.Pagination.Total)
	assert.Equal(t, 2, resp.Pagination.TotalPages)
	assert.True(t, resp.Pagination.HasNext)
	require.Len(t, resp.Orders, 2)
	assert.Equal(t, aliceOrders[2].ID, resp.Orders[0].ID)
	assert.Equal(t, "3.00", resp.Orders[0].DeliveryCost.StringFixed(2))
	assert.Equal(t, "90.00", resp.Orders[0].ItemsTotal.StringFixed(2))
	assert.True(t, resp.Orders[0].CanCancel)

	resp, err = f.svc.Orders.AdminListOrders(ctx, &order.OrderListRequest{Search: "bob@"})
	require.NoError(t, err)
	require.Len(t, resp.Orders, 1)
	assert.Equal(t, bobOrder.ID, resp.Orders[0].ID)

	resp, err = f.svc.Orders.AdminListOrders(ctx, &order.OrderListRequest{Search: fmt.Sprintf("#%d", aliceOrders[0].ID)})
	require.NoError(t, err)
	require.Len(t, resp.Orders, 1)
	assert.Equal(t, aliceOrders[0].ID, resp.Orders[0].ID)

	_, err = f.svc.Orders.CancelByUser(ctx, alice.ID, aliceOrders[1].ID)
	require.NoError(t, err)
	cancelled := testutil.Status(t, f.db, "Отменён")

	resp, err = f.svc.Orders.AdminListOrders(ctx, &order.OrderListRequest{StatusID: cancelled.ID, SortBy: "total", SortOrder: "asc"})
	require.NoError(t, err)
	require.Len(t, resp.Orders, 1)
	assert.Equal(t, aliceOrders[1].ID, resp.Orders[0].ID)
	assert.Equal(t, status.CategoryCancelled, resp.Orders[0].Category)
	assert.False(t, resp.Orders[0].CanCancel)
}

func TestAdminSearchIgnoresEmailCase(t *testing.T) {
	f := setup(t)
	carol := testutil.CreateUser(t, f.db, "Carol.Smith@Example.com")
	p := testutil.CreateProduct(t, f.db, "Metronome", "25.00", 5)
	f.addToCart(t, carol.ID, p, 1)
	o := f.place(t, carol.ID)

	for _, search := range []string{"carol.smith@example", "CAROL.SMITH", "Carol.Smith@Example.com"} {
		resp, err := f.svc.Orders.AdminListOrders(context.Background(), &order.OrderListRequest{Search: search})
		require.NoError(t, err)
		require.Len(t, resp.Orders, 1, search)
		assert.Equal(t, o.ID, resp.Orders[0].ID)
	}
}

func TestOrderNumber(t *testing.T) {
	o := order.Order{ID: 42}
	assert.Equal(t, "#000042", o.Number())
}

func TestCartTotalMatchesOrderItems(t *testing.T) {
	f := setup(t)
	u := testutil.CreateUser(t, f.db, "buyer@example.com")
	p := testutil.CreateProduct(t, f.db, "Ocarina", "12.35", 9)

	f.addToCart(t, u.ID, p, 3)
	c, err := f.svc.Carts.LoadWithLines(f.db, u.ID)
	require.NoError(t, err)
	cartTotal := cart.ComputeTotal(c.Lines)

	o := f.place(t, u.ID)
	assert.True(t, cartTotal.Equal(o.ItemsTotal()))
}
