package repo

import (
	"context"

	"github.com/Skotchmaster/local_store/internal/models"
)

func (r *GormRepo) CreatePayment(ctx context.Context, p *models.Payment) (*models.Payment, error) {
	if err := r.DB.WithContext(ctx).Create(p).Error; err != nil {
		return nil, err
	}
	return p, nil
}
