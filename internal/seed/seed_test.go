package seed

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Skotchmaster/local_store/internal/models"
	"github.com/Skotchmaster/local_store/internal/repo"
	"github.com/Skotchmaster/local_store/pkg/hash"
)

func newDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Discard})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, (&repo.GormRepo{DB: db}).AutoMigrate())
	return db
}

func TestRun(t *testing.T) {
	db := newDB(t)
	ctx := context.Background()
	opts := Options{AdminEmail: "admin@localstore.test", AdminPassword: "admin-pass", BcryptCost: bcrypt.MinCost}

	res, err := Run(ctx, db, opts)
	require.NoError(t, err)
	assert.Equal(t, len(demoCategories), res.Categories)
	assert.Equal(t, len(demoProducts), res.Products)
	assert.Positive(t, res.Images)
	assert.True(t, res.AdminCreated)

	var primaries int64
	require.NoError(t, db.Model(&models.ProductImage{}).Where("is_primary = ?", true).Count(&primaries).Error)
	assert.EqualValues(t, len(demoProducts)-1, primaries)

	var admin models.User
	require.NoError(t, db.Where("email = ?", opts.AdminEmail).Take(&admin).Error)
	assert.Equal(t, models.RoleAdmin, admin.Role)
	assert.True(t, hash.CheckPassword(admin.PasswordHash, "admin-pass"))

	again, err := Run(ctx, db, opts)
	require.NoError(t, err)
	assert.Zero(t, again.Products)
	assert.False(t, again.AdminCreated)

	var products int64
	require.NoError(t, db.Model(&models.Product{}).Count(&products).Error)
	assert.EqualValues(t, len(demoProducts), products)
}

func TestRun_WithoutAdmin(t *testing.T) {
	db := newDB(t)

	res, err := Run(context.Background(), db, Options{})
	require.NoError(t, err)
	assert.False(t, res.AdminCreated)

	var users int64
	require.NoError(t, db.Model(&models.User{}).Count(&users).Error)
	assert.Zero(t, users)
}
