//go:build integration

package repo

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/Skotchmaster/local_store/internal/models"
	"github.com/Skotchmaster/local_store/pkg/db"
)

func newPostgresRepo(t *testing.T) *GormRepo {
	t.Helper()
	ctx := context.Background()

	pg, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("local_store"),
		postgres.WithUsername("store"),
		postgres.WithPassword("store"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := pg.Terminate(ctx); err != nil {
			t.Logf("terminate postgres: %v", err)
		}
	})

	dsn, err := pg.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	gdb, err := db.Open(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close(gdb) })

	r := &GormRepo{DB: gdb}
	require.NoError(t, r.AutoMigrate())
	return r
}

func TestPostgres_ConcurrentGetOrCreateCart(t *testing.T) {
	r := newPostgresRepo(t)
	ctx := context.Background()

	const workers = 16
	ids := make([]uint, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			cart, err := r.GetOrCreateCart(ctx, 42)
			if assert.NoError(t, err) {
				ids[i] = cart.ID
			}
		}(i)
	}
	wg.Wait()

	for _, id := range ids {
		assert.Equal(t, ids[0], id)
	}
	var n int64
	require.NoError(t, r.DB.Model(&models.Cart{}).Where("user_id = ?", 42).Count(&n).Error)
	assert.EqualValues(t, 1, n)
}

func TestPostgres_ConcurrentAddItemMergesIntoOneLine(t *testing.T) {
	r := newPostgresRepo(t)
	ctx := context.Background()
	p := seedProduct(t, r, "kettle", "20.00", "15.00")

	const workers = 20
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := r.AddItem(ctx, 7, p.ID, 2)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	var items []models.CartItem
	require.NoError(t, r.DB.Where("product_id = ?", p.ID).Find(&items).Error)
	require.Len(t, items, 1)
	assert.Equal(t, workers*2, items[0].Quantity)
	assert.True(t, decimal.RequireFromString("15.00").Equal(items[0].Price))
}

func TestPostgres_UniqueViolationIsDuplicate(t *testing.T) {
	r := newPostgresRepo(t)
	ctx := context.Background()

	u := models.User{FullName: "A", Username: "alice", Email: "a@example.com", PasswordHash: "x", Role: models.RoleUser}
	require.NoError(t, r.CreateUser(ctx, &u))

	dup := models.User{FullName: "B", Username: "alice", Email: "b@example.com", PasswordHash: "x", Role: models.RoleUser}
	assert.ErrorIs(t, r.CreateUser(ctx, &dup), ErrDuplicate)
}
