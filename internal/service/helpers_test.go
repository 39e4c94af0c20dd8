package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Skotchmaster/local_store/internal/models"
	"github.com/Skotchmaster/local_store/internal/repo"
	"github.com/Skotchmaster/local_store/internal/session"
	"github.com/Skotchmaster/local_store/pkg/hash"
)

type published struct {
	topic string
	key   string
	event any
}

type recorder struct {
	mu     sync.Mutex
	events []published
}

func (r *recorder) Publish(_ context.Context, topic, key string, event any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, published{topic: topic, key: key, event: event})
	return nil
}

func (r *recorder) Close() error { return nil }

func (r *recorder) all() []published {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]published(nil), r.events...)
}

func newTestRepo(t *testing.T) *repo.GormRepo {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Discard})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	r := &repo.GormRepo{DB: db}
	require.NoError(t, r.AutoMigrate())
	return r
}

func createProduct(t *testing.T, r *repo.GormRepo, name, regular, discount string) models.Product {
	t.Helper()

	p := models.Product{
		Name:            name,
		SKU:             "SKU-" + name,
		RegularPrice:    decimal.RequireFromString(regular),
		ProductStatusID: models.ProductStatusActive,
	}
	if discount != "" {
		p.DiscountPrice = decimal.NewNullDecimal(decimal.RequireFromString(discount))
	}
	require.NoError(t, r.DB.Create(&p).Error)
	return p
}

func createUser(t *testing.T, r *repo.GormRepo, username, email, password string) models.User {
	t.Helper()

	pw, err := hash.HashPassword(password, bcrypt.MinCost)
	require.NoError(t, err)
	u := models.User{FullName: username, Username: username, Email: email, PasswordHash: pw, Role: models.RoleUser}
	require.NoError(t, r.DB.Create(&u).Error)
	return u
}

func newAuthService(t *testing.T, r *repo.GormRepo) *AuthService {
	t.Helper()

	return &AuthService{
		Repo:       r,
		Sessions:   &session.GormStore{DB: r.DB},
		Events:     &recorder{},
		Secret:     []byte("test-session-secret"),
		SessionTTL: 24 * time.Hour,
		BcryptCost: bcrypt.MinCost,
	}
}

// unresponsive never acknowledges a publish; it returns only when the context ends.
type unresponsive struct{}

func (unresponsive) Publish(ctx context.Context, _, _ string, _ any) error {
	<-ctx.Done()
	return ctx.Err()
}

func (unresponsive) Close() error { return nil }
