package repo

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/Skotchmaster/local_store/internal/models"
)

var ErrDuplicate = errors.New("duplicate key")

const pgUniqueViolation = "23505"

type GormRepo struct {
	DB *gorm.DB
}

func (r *GormRepo) AutoMigrate() error {
	return r.DB.AutoMigrate(models.All()...)
}

// IsUniqueViolation reports whether err comes from a unique index, on both
// Postgres and SQLite.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func translate(err error) error {
	if IsUniqueViolation(err) {
		return errors.Join(ErrDuplicate, err)
	}
	return err
}
