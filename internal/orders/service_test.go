package orders

import (
	"context"
	"math"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/sujalbistaa/bookit/internal/apperr"
	"github.com/sujalbistaa/bookit/internal/auth"
	"github.com/sujalbistaa/bookit/internal/models"
	"github.com/sujalbistaa/bookit/internal/testutil"
)

type fixture struct {
	db     *gorm.DB
	svc    *Service
	seller auth.Principal
	buyer  auth.Principal
	other  auth.Principal
	admin  auth.Principal
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gdb := testutil.NewDB(t)
	return &fixture{
		db:     gdb,
		svc:    NewService(gdb, zap.NewNop()),
		seller: auth.PrincipalOf(testutil.CreateUser(t, gdb, "rana_books", models.RoleUser)),
		buyer:  auth.PrincipalOf(testutil.CreateUser(t, gdb, "lina_reader", models.RoleUser)),
		other:  auth.PrincipalOf(testutil.CreateUser(t, gdb, "omar_writer", models.RoleUser)),
		admin:  auth.PrincipalOf(testutil.CreateUser(t, gdb, "admin", models.RoleAdmin)),
	}
}

func TestCheckoutScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	x := testutil.CreateProduct(t, f.db, f.seller.ID, "X", 10, 2)

	order, err := f.svc.Place(ctx, f.buyer, []Line{{ProductID: x.ID, Quantity: 2}})
	require.NoError(t, err)
	assert.True(t, order.Total.Equal(decimal.NewFromInt(20)), "total = %s", order.Total)
	assert.Equal(t, models.OrderPaid, order.Status)
	assert.Equal(t, 0, testutil.Stock(t, f.db, x.ID))

	_, err = f.svc.Place(ctx, f.other, []Line{{ProductID: x.ID, Quantity: 1}})
	require.Error(t, err)
	assert.True(t, apperr.IsInsufficientStock(err))
	assert.Contains(t, apperr.MessageOf(err, ""), "X")
	assert.Equal(t, 0, testutil.Stock(t, f.db, x.ID))
}

func TestRejectedCheckoutLeavesEveryLineUntouched(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	plenty := testutil.CreateProduct(t, f.db, f.seller.ID, "Bookmark", 4, 5)
	scarce := testutil.CreateProduct(t, f.db, f.seller.ID, "Signed First Edition", 90, 1)

	_, err := f.svc.Place(ctx, f.buyer, []Line{
		{ProductID: plenty.ID, Quantity: 3},
		{ProductID: scarce.ID, Quantity: 2},
	})
	assert.True(t, apperr.IsInsufficientStock(err))
	assert.Equal(t, 5, testutil.Stock(t, f.db, plenty.ID))
	assert.Equal(t, 1, testutil.Stock(t, f.db, scarce.ID))

	_, err = f.svc.Place(ctx, f.buyer, []Line{
		{ProductID: plenty.ID, Quantity: 1},
		{ProductID: "missing", Quantity: 1},
	})
	assert.True(t, apperr.IsNotFound(err))
	assert.Equal(t, 5, testutil.Stock(t, f.db, plenty.ID))

	var orders int64
	require.NoError(t, f.db.Model(&models.Order{}).Count(&orders).Error)
	assert.Zero(t, orders)
}

func TestConcurrentCheckoutOfLastUnit(t *testing.T) {
	f := newFixture(t)
	last := testutil.CreateProduct(t, f.db, f.seller.ID, "Last Copy", 15, 1)

	buyers := []auth.Principal{f.buyer, f.other}
	errs := make([]error, len(buyers))
	var wg sync.WaitGroup
	start := make(chan struct{})
	for i, buyer := range buyers {
		wg.Add(1)
		go func(i int, buyer auth.Principal) {
			defer wg.Done()
			<-start
			_, errs[i] = f.svc.Place(context.Background(), buyer, []Line{{ProductID: last.ID, Quantity: 1}})
		}(i, buyer)
	}
	close(start)
	wg.Wait()

	var succeeded, rejected int
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case apperr.IsInsufficientStock(err):
			rejected++
		default:
			t.Fatalf("unexpected checkout error: %v", err)
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, rejected)
	assert.Equal(t, 0, testutil.Stock(t, f.db, last.ID))
}

func TestOrderSnapshotAndTotal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := testutil.CreateProduct(t, f.db, f.seller.ID, "Notebook", 12, 10)
	b := testutil.CreateProduct(t, f.db, f.other.ID, "Pen Set", 7, 10)
	require.NoError(t, f.db.Model(b).Update("price", decimal.RequireFromString("7.25")).Error)

	order, err := f.svc.Place(ctx, f.buyer, []Line{
		{ProductID: a.ID, Quantity: 1},
		{ProductID: b.ID, Quantity: 2},
		{ProductID: a.ID, Quantity: 2},
	})
	require.NoError(t, err)
	require.Len(t, order.Items, 2, "repeated lines are merged")
	assert.Equal(t, 3, order.Items[0].Quantity)
	assert.Equal(t, f.seller.ID, order.Items[0].SellerID)
	assert.Equal(t, f.other.ID, order.Items[1].SellerID)
	assert.True(t, order.Total.Equal(decimal.RequireFromString("50.5")), "total = %s", order.Total)
	assert.True(t, order.Total.Equal(models.SumItems(order.Items)))
	assert.Equal(t, 7, testutil.Stock(t, f.db, a.ID))
	assert.Equal(t, 8, testutil.Stock(t, f.db, b.ID))

	require.NoError(t, f.db.Model(a).Updates(map[string]any{"title": "Renamed", "price": 99}).Error)

	mine, err := f.svc.ListForBuyer(ctx, f.buyer)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	require.Len(t, mine[0].Items, 2)
	assert.Equal(t, "Notebook", mine[0].Items[0].Title)
	assert.True(t, mine[0].Items[0].Price.Equal(decimal.NewFromInt(12)))
	assert.True(t, mine[0].Total.Equal(models.SumItems(mine[0].Items)))
}

func TestPlaceValidatesCart(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	hidden := testutil.CreateProduct(t, f.db, f.seller.ID, "Withdrawn", 5, 5)
	require.NoError(t, f.db.Model(hidden).Update("is_active", false).Error)

	_, err := f.svc.Place(ctx, f.buyer, nil)
	assert.True(t, apperr.IsInvalid(err))

	_, err = f.svc.Place(ctx, f.buyer, []Line{{ProductID: hidden.ID, Quantity: 0}})
	assert.True(t, apperr.IsInvalid(err))

	_, err = f.svc.Place(ctx, f.buyer, []Line{{ProductID: hidden.ID, Quantity: 1}})
	assert.True(t, apperr.IsNotFound(err))
	assert.Equal(t, 5, testutil.Stock(t, f.db, hidden.ID))
}

func TestPlaceRejectsQuantityOverflow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	product := testutil.CreateProduct(t, f.db, f.seller.ID, "Leather Notebook", 10, 5)

	_, err := f.svc.Place(ctx, f.buyer, []Line{
		{ProductID: product.ID, Quantity: math.MaxInt},
		{ProductID: product.ID, Quantity: math.MaxInt},
		{ProductID: product.ID, Quantity: 3},
	})
	require.Error(t, err)
	assert.True(t, apperr.IsInvalid(err))
	assert.Contains(t, apperr.FieldsOf(err), "quantity")
	assert.Equal(t, 5, testutil.Stock(t, f.db, product.ID))

	var count int64
	require.NoError(t, f.db.Model(&models.Order{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestSellerViewAndStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	mine := testutil.CreateProduct(t, f.db, f.seller.ID, "Notebook", 10, 5)
	theirs := testutil.CreateProduct(t, f.db, f.other.ID, "Tote Bag", 20, 5)

	shared, err := f.svc.Place(ctx, f.buyer, []Line{{ProductID: mine.ID, Quantity: 1}, {ProductID: theirs.ID, Quantity: 1}})
	require.NoError(t, err)
	onlyTheirs, err := f.svc.Place(ctx, f.buyer, []Line{{ProductID: theirs.ID, Quantity: 1}})
	require.NoError(t, err)

	sold, err := f.svc.ListForSeller(ctx, f.seller)
	require.NoError(t, err)
	require.Len(t, sold, 1)
	assert.Equal(t, shared.ID, sold[0].ID)
	require.NotNil(t, sold[0].Buyer)
	assert.Equal(t, "lina_reader", sold[0].Buyer.Username)

	updated, err := f.svc.UpdateStatus(ctx, f.seller, shared.ID, models.OrderShipped)
	require.NoError(t, err)
	assert.Equal(t, models.OrderShipped, updated.Status)

	_, err = f.svc.UpdateStatus(ctx, f.seller, onlyTheirs.ID, models.OrderShipped)
	assert.True(t, apperr.IsForbidden(err))
	_, err = f.svc.UpdateStatus(ctx, f.buyer, onlyTheirs.ID, models.OrderCanceled)
	assert.True(t, apperr.IsForbidden(err))

	updated, err = f.svc.UpdateStatus(ctx, f.admin, shared.ID, models.OrderPending)
	require.NoError(t, err)
	assert.Equal(t, models.OrderPending, updated.Status, "no transition ordering is enforced")

	_, err = f.svc.UpdateStatus(ctx, f.admin, "missing", models.OrderPaid)
	assert.True(t, apperr.IsNotFound(err))
	_, err = f.svc.UpdateStatus(ctx, f.admin, shared.ID, models.OrderStatus("lost"))
	assert.True(t, apperr.IsInvalid(err))

	require.NoError(t, f.db.Delete(&models.Product{}, "id = ?", mine.ID).Error)
	sold, err = f.svc.ListForSeller(ctx, f.seller)
	require.NoError(t, err)
	assert.Len(t, sold, 1, "seller view survives product deletion")
}
