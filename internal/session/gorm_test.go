package session

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Skotchmaster/local_store/internal/models"
)

func newGormStore(t *testing.T) *GormStore {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Discard})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(&models.Session{}))
	return &GormStore{DB: db}
}

func TestGormStore_Lifecycle(t *testing.T) {
	s := newGormStore(t)
	ctx := context.Background()

	sess := New(5, models.RoleUser, time.Hour)
	require.NoError(t, s.Create(ctx, sess))

	got, err := s.Get(ctx, sess.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 5, got.UserID)
	assert.Equal(t, models.RoleUser, got.Role)

	require.NoError(t, s.Delete(ctx, sess.ID))
	_, err = s.Get(ctx, sess.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGormStore_Expired(t *testing.T) {
	s := newGormStore(t)
	ctx := context.Background()

	sess := New(5, models.RoleUser, time.Hour)
	sess.ExpiresAt = time.Now().UTC().Add(-time.Minute)
	require.NoError(t, s.Create(ctx, sess))

	_, err := s.Get(ctx, sess.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	n, err := s.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestGormStore_DeleteUser(t *testing.T) {
	s := newGormStore(t)
	ctx := context.Background()

	a := New(1, models.RoleUser, time.Hour)
	b := New(1, models.RoleUser, time.Hour)
	c := New(2, models.RoleUser, time.Hour)
	for _, sess := range []*models.Session{a, b, c} {
		require.NoError(t, s.Create(ctx, sess))
	}

	require.NoError(t, s.DeleteUser(ctx, 1))

	_, err := s.Get(ctx, a.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.Get(ctx, b.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.Get(ctx, c.ID)
	assert.NoError(t, err)
}
