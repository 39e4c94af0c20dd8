package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/Skotchmaster/local_store/internal/models"
)

type ProductRow struct {
	models.Product
	CategoryName *string
	ImageURL     *string
}

func primaryImageOf(db *gorm.DB, productCol string) *gorm.DB {
	return db.Session(&gorm.Session{NewDB: true}).Model(&models.ProductImage{}).
		Select("product_images.image_url").
		Where("product_images.product_id = "+productCol+" AND product_images.is_primary = ?", true).
		Order("product_images.display_order ASC, product_images.id ASC").
		Limit(1)
}

// ListActiveProducts returns the newest products first. A zero limit
// returns all of them.
func (r *GormRepo) ListActiveProducts(ctx context.Context, offset, limit int) ([]ProductRow, error) {
	db := r.DB.WithContext(ctx)
	rows := make([]ProductRow, 0)
	q := db.Model(&models.Product{}).
		Select("products.*, categories.name AS category_name, (?) AS image_url", primaryImageOf(db, "products.id")).
		Joins("LEFT JOIN categories ON categories.id = products.category_id").
		Where("products.product_status_id = ?", models.ProductStatusActive).
		Order("products.inserted_at DESC, products.id DESC")
	if limit > 0 {
		q = q.Offset(offset).Limit(limit)
	}
	if err := q.Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *GormRepo) GetActiveProduct(ctx context.Context, id uint) (*ProductRow, []models.ProductImage, error) {
	db := r.DB.WithContext(ctx)

	var row ProductRow
	res := db.Model(&models.Product{}).
		Select("products.*, categories.name AS category_name").
		Joins("LEFT JOIN categories ON categories.id = products.category_id").
		Where("products.id = ? AND products.product_status_id = ?", id, models.ProductStatusActive).
		Limit(1).
		Scan(&row)
	if res.Error != nil {
		return nil, nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, nil, gorm.ErrRecordNotFound
	}

	images := make([]models.ProductImage, 0)
	if err := db.Where("product_id = ?", id).
		Order("is_primary DESC, display_order ASC, id ASC").
		Find(&images).Error; err != nil {
		return nil, nil, err
	}
	return &row, images, nil
}

func (r *GormRepo) ListCategories(ctx context.Context) ([]models.Category, error) {
	categories := make([]models.Category, 0)
	if err := r.DB.WithContext(ctx).Order("name ASC").Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}
