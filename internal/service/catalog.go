package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/Skotchmaster/local_store/internal/assets"
	"github.com/Skotchmaster/local_store/internal/repo"
	"github.com/Skotchmaster/local_store/internal/transport"
	"github.com/Skotchmaster/local_store/internal/util"
)

type CatalogService struct {
	Repo   *repo.GormRepo
	Images assets.Resolver
}

func resolveImage(r assets.Resolver, ref string) string {
	if r == nil {
		return ref
	}
	return r.URL(ref)
}

func (s *CatalogService) ListProducts(ctx context.Context, page util.Page) ([]transport.ProductSummary, error) {
	rows, err := s.Repo.ListActiveProducts(ctx, page.Offset, page.Limit)
	if err != nil {
		return nil, err
	}

	out := make([]transport.ProductSummary, 0, len(rows))
	for _, r := range rows {
		p := transport.ProductSummary{
			ID:            r.ID,
			Name:          r.Name,
			RegularPrice:  r.RegularPrice,
			DiscountPrice: r.DiscountPrice,
			Quantity:      r.Quantity,
			Description:   r.Description,
			Category:      r.CategoryName,
		}
		if r.ImageURL != nil {
			p.PrimaryImage = &transport.PrimaryImage{ImageURL: resolveImage(s.Images, *r.ImageURL), IsPrimary: true}
		}
		out = append(out, p)
	}
	return out, nil
}

func (s *CatalogService) GetProduct(ctx context.Context, id uint) (*transport.ProductDetail, error) {
	if id == 0 {
		return nil, fmt.Errorf("product id is required: %w", ErrValidation)
	}

	row, images, err := s.Repo.GetActiveProduct(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("product %d not found: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	p := &transport.ProductDetail{
		ID:            row.ID,
		Name:          row.Name,
		Description:   row.Description,
		RegularPrice:  row.RegularPrice,
		DiscountPrice: row.DiscountPrice,
		Quantity:      row.Quantity,
		Taxable:       row.Taxable,
		Category:      row.CategoryName,
		Images:        make([]transport.ProductImage, 0, len(images)),
	}
	for _, img := range images {
		p.Images = append(p.Images, transport.ProductImage{
			ID:        img.ID,
			ImageURL:  resolveImage(s.Images, img.ImageURL),
			IsPrimary: img.IsPrimary,
			AltText:   img.AltText,
		})
	}
	return p, nil
}

func (s *CatalogService) ListCategories(ctx context.Context) ([]transport.Category, error) {
	cats, err := s.Repo.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]transport.Category, 0, len(cats))
	for _, c := range cats {
		out = append(out, transport.Category{ID: c.ID, Name: c.Name})
	}
	return out, nil
}
