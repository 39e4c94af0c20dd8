package repo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Skotchmaster/local_store/internal/models"
)

func newTestRepo(t *testing.T) *GormRepo {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Discard})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	r := &GormRepo{DB: db}
	require.NoError(t, r.AutoMigrate())
	return r
}

func seedProduct(t *testing.T, r *GormRepo, name string, regular string, discount string) models.Product {
	t.Helper()

	p := models.Product{
		Name:            name,
		SKU:             "SKU-" + name,
		RegularPrice:    decimal.RequireFromString(regular),
		ProductStatusID: models.ProductStatusActive,
		Quantity:        10,
	}
	if discount != "" {
		p.DiscountPrice = decimal.NewNullDecimal(decimal.RequireFromString(discount))
	}
	require.NoError(t, r.DB.Create(&p).Error)
	return p
}

func TestGetOrCreateCart_Idempotent(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	first, err := r.GetOrCreateCart(ctx, 1)
	require.NoError(t, err)
	second, err := r.GetOrCreateCart(ctx, 1)
	require.NoError(t, err)
	other, err := r.GetOrCreateCart(ctx, 2)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.NotEqual(t, first.ID, other.ID)

	var n int64
	require.NoError(t, r.DB.Model(&models.Cart{}).Where("user_id = ?", 1).Count(&n).Error)
	assert.EqualValues(t, 1, n)
}

func TestAddItem_UpsertMergesQuantityAndKeepsPrice(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	p := seedProduct(t, r, "mug", "20.00", "15.00")

	item, err := r.AddItem(ctx, 1, p.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, item.Quantity)
	assert.True(t, decimal.RequireFromString("15.00").Equal(item.Price))

	require.NoError(t, r.DB.Model(&models.Product{}).Where("id = ?", p.ID).
		Update("discount_price", decimal.RequireFromString("9.00")).Error)

	again, err := r.AddItem(ctx, 1, p.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, item.ID, again.ID)
	assert.Equal(t, 5, again.Quantity)
	assert.True(t, decimal.RequireFromString("15.00").Equal(again.Price))

	var n int64
	require.NoError(t, r.DB.Model(&models.CartItem{}).Count(&n).Error)
	assert.EqualValues(t, 1, n)
}

func TestAddItem_MissingProduct(t *testing.T) {
	r := newTestRepo(t)

	_, err := r.AddItem(context.Background(), 1, 999, 1)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestAddItem_NonPositiveQuantityRejectedByCheck(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	p := seedProduct(t, r, "kettle", "20.00", "")

	for _, q := range []int{0, -2} {
		_, err := r.AddItem(ctx, 7, p.ID, q)
		assert.Error(t, err, "quantity %d", q)
	}

	var n int64
	require.NoError(t, r.DB.Model(&models.CartItem{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestUpdateAndRemove_Ownership(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	p := seedProduct(t, r, "tea", "4.50", "")

	item, err := r.AddItem(ctx, 1, p.ID, 1)
	require.NoError(t, err)
	_, err = r.GetOrCreateCart(ctx, 2)
	require.NoError(t, err)

	_, err = r.UpdateItemQuantity(ctx, 2, item.ID, 7)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.ErrorIs(t, r.RemoveItem(ctx, 2, item.ID), gorm.ErrRecordNotFound)

	updated, err := r.UpdateItemQuantity(ctx, 1, item.ID, 7)
	require.NoError(t, err)
	assert.Equal(t, 7, updated.Quantity)

	require.NoError(t, r.RemoveItem(ctx, 1, item.ID))
	assert.ErrorIs(t, r.RemoveItem(ctx, 1, item.ID), gorm.ErrRecordNotFound)
}

func TestCartLines_JoinsProductAndPrimaryImage(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	p := seedProduct(t, r, "lamp", "30.00", "")
	require.NoError(t, r.DB.Create(&[]models.ProductImage{
		{ProductID: p.ID, ImageURL: "lamp-side.jpg", IsPrimary: false, DisplayOrder: 0},
		{ProductID: p.ID, ImageURL: "lamp.jpg", IsPrimary: true, DisplayOrder: 1},
	}).Error)

	item, err := r.AddItem(ctx, 1, p.ID, 2)
	require.NoError(t, err)

	lines, err := r.CartLines(ctx, item.CartID)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, "lamp", lines[0].Name)
	assert.Equal(t, "SKU-lamp", lines[0].SKU)
	require.NotNil(t, lines[0].ImageURL)
	assert.Equal(t, "lamp.jpg", *lines[0].ImageURL)
	assert.Equal(t, 2, lines[0].Quantity)
}

func TestCatalogQueries(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	cat := models.Category{Name: "Kitchen"}
	require.NoError(t, r.DB.Create(&cat).Error)

	older := seedProduct(t, r, "pan", "12.00", "")
	require.NoError(t, r.DB.Model(&older).Updates(map[string]any{
		"category_id": cat.ID,
		"inserted_at": time.Now().Add(-time.Hour).UTC(),
	}).Error)
	newer := seedProduct(t, r, "pot", "18.00", "")
	hidden := seedProduct(t, r, "old", "1.00", "")
	require.NoError(t, r.DB.Model(&hidden).Update("product_status_id", 2).Error)
	require.NoError(t, r.DB.Create(&models.ProductImage{ProductID: newer.ID, ImageURL: "pot.jpg", IsPrimary: true}).Error)

	rows, err := r.ListActiveProducts(ctx, 0, 0)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, newer.ID, rows[0].ID)
	require.NotNil(t, rows[0].ImageURL)
	assert.Equal(t, "pot.jpg", *rows[0].ImageURL)
	assert.Nil(t, rows[0].CategoryName)
	require.NotNil(t, rows[1].CategoryName)
	assert.Equal(t, "Kitchen", *rows[1].CategoryName)

	paged, err := r.ListActiveProducts(ctx, 1, 1)
	require.NoError(t, err)
	require.Len(t, paged, 1)
	assert.Equal(t, rows[1].ID, paged[0].ID)

	row, images, err := r.GetActiveProduct(ctx, newer.ID)
	require.NoError(t, err)
	assert.Equal(t, "pot", row.Name)
	assert.Len(t, images, 1)

	_, _, err = r.GetActiveProduct(ctx, hidden.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	cats, err := r.ListCategories(ctx)
	require.NoError(t, err)
	require.Len(t, cats, 1)
	assert.Equal(t, "Kitchen", cats[0].Name)
}

func TestUsers(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	u := models.User{FullName: "Ada L", Username: "ada", Email: "ada@example.com", PasswordHash: "x", Role: models.RoleUser}
	require.NoError(t, r.CreateUser(ctx, &u))

	dup := models.User{FullName: "Ada 2", Username: "ada", Email: "other@example.com", PasswordHash: "x", Role: models.RoleUser}
	assert.ErrorIs(t, r.CreateUser(ctx, &dup), ErrDuplicate)

	taken, err := r.IdentityTaken(ctx, "ADA@example.com", "nobody", 0)
	require.NoError(t, err)
	assert.True(t, taken)

	taken, err = r.IdentityTaken(ctx, "ada@example.com", "ada", u.ID)
	require.NoError(t, err)
	assert.False(t, taken)

	found, err := r.UserByEmail(ctx, "Ada@Example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, found.ID)

	now := time.Now().UTC()
	require.NoError(t, r.TouchLastLogin(ctx, u.ID, now))
	found, err = r.UserByID(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, found.LastLogin)

	updated, err := r.UpdateProfile(ctx, u.ID, "ada2", "ada2@example.com")
	require.NoError(t, err)
	assert.Equal(t, "ada2", updated.Username)

	require.NoError(t, r.UpdatePasswordHash(ctx, u.ID, "y"))
	assert.ErrorIs(t, r.UpdatePasswordHash(ctx, 999, "y"), gorm.ErrRecordNotFound)
}

func TestIsUniqueViolation(t *testing.T) {
	t.Parallel()

	assert.False(t, IsUniqueViolation(nil))
	assert.False(t, IsUniqueViolation(errors.New("boom")))
	assert.True(t, IsUniqueViolation(&pgconn.PgError{Code: "23505"}))
	assert.False(t, IsUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.True(t, IsUniqueViolation(gorm.ErrDuplicatedKey))
	assert.True(t, IsUniqueViolation(errors.New("UNIQUE constraint failed: users.email")))
}

func TestCreatePayment(t *testing.T) {
	r := newTestRepo(t)

	p, err := r.CreatePayment(context.Background(), &models.Payment{
		Amount:        decimal.RequireFromString("30.00"),
		PaymentDate:   time.Now().UTC(),
		Status:        "Success",
		TransactionID: "TRANS_123",
	})
	require.NoError(t, err)
	assert.NotZero(t, p.ID)
}
