//go:build integration

package orders

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/sujalbistaa/bookit/internal/apperr"
	"github.com/sujalbistaa/bookit/internal/auth"
	"github.com/sujalbistaa/bookit/internal/db"
	"github.com/sujalbistaa/bookit/internal/models"
	"github.com/sujalbistaa/bookit/internal/testutil"
)

func setupPostgres(t *testing.T) *gorm.DB {
	t.Helper()
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:alpine",
		postgres.WithDatabase("bookit"),
		postgres.WithUsername("bookit"),
		postgres.WithPassword("bookit"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "failed to start PostgreSQL container")
	t.Cleanup(func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate container: %v", err)
		}
	})

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	gdb, err := db.Open(connStr, db.Options{MaxOpenConns: 20, MaxIdleConns: 5}, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))
	return gdb
}

func TestPostgresConcurrentCheckout(t *testing.T) {
	gdb := setupPostgres(t)
	svc := NewService(gdb, zap.NewNop())

	seller := testutil.CreateUser(t, gdb, "rana_books", models.RoleUser)
	const stock, buyers = 5, 12
	product := testutil.CreateProduct(t, gdb, seller.ID, "Limited Print", 30, stock)
	other := testutil.CreateProduct(t, gdb, seller.ID, "Bookmark", 2, buyers)

	principals := make([]auth.Principal, buyers)
	for i := range principals {
		principals[i] = auth.PrincipalOf(testutil.CreateUser(t, gdb, fmt.Sprintf("buyer_%02d", i), models.RoleUser))
	}

	var succeeded, rejected atomic.Int32
	var wg sync.WaitGroup
	start := make(chan struct{})
	for i, buyer := range principals {
		wg.Add(1)
		go func(i int, buyer auth.Principal) {
			defer wg.Done()
			<-start
			// Alternate line order so lock ordering is exercised.
			lines := []Line{{ProductID: other.ID, Quantity: 1}, {ProductID: product.ID, Quantity: 1}}
			if i%2 == 1 {
				lines[0], lines[1] = lines[1], lines[0]
			}
			_, err := svc.Place(context.Background(), buyer, lines)
			switch {
			case err == nil:
				succeeded.Add(1)
			case apperr.IsInsufficientStock(err):
				rejected.Add(1)
			default:
				t.Errorf("unexpected checkout error: %v", err)
			}
		}(i, buyer)
	}
	close(start)
	wg.Wait()

	assert.EqualValues(t, stock, succeeded.Load())
	assert.EqualValues(t, buyers-stock, rejected.Load())
	assert.Equal(t, 0, testutil.Stock(t, gdb, product.ID))
	assert.Equal(t, buyers-stock, testutil.Stock(t, gdb, other.ID), "rejected carts leave every line untouched")
}
