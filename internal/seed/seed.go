// Package seed loads the demo catalog and an admin account into an empty
// store.
package seed

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Skotchmaster/local_store/internal/models"
	"github.com/Skotchmaster/local_store/pkg/hash"
	"github.com/Skotchmaster/local_store/pkg/logging"
)

type Options struct {
	// DSN is reopened through lib/pq to bulk load images with COPY on postgres.
	DSN           string
	AdminEmail    string
	AdminPassword string
	BcryptCost    int
}

type Result struct {
	Categories   int
	Products     int
	Images       int
	AdminCreated bool
}

type demoProduct struct {
	name, sku, category, description string
	regular, discount                string
	quantity                         int
	taxable                          bool
	images                           []string
}

var demoCategories = []string{"Kitchen", "Home", "Garden"}

var demoProducts = []demoProduct{
	{"Electric Kettle", "KIT-001", "Kitchen", "1.7L stainless steel kettle with auto shut-off.", "20.00", "15.00", 25, true,
		[]string{"kettle.jpg", "kettle-side.jpg"}},
	{"Ceramic Mug", "KIT-002", "Kitchen", "Hand glazed 350ml mug.", "8.50", "", 120, true,
		[]string{"mug.jpg"}},
	{"Cast Iron Skillet", "KIT-003", "Kitchen", "Pre-seasoned 10 inch skillet.", "34.99", "29.99", 40, true,
		[]string{"skillet.jpg"}},
	{"Linen Throw", "HOM-001", "Home", "Washed linen throw blanket.", "45.00", "", 30, true,
		[]string{"throw.jpg", "throw-detail.jpg"}},
	{"Desk Lamp", "HOM-002", "Home", "Adjustable LED desk lamp.", "39.00", "32.50", 18, true,
		[]string{"lamp.jpg"}},
	{"Herb Planter", "GAR-001", "Garden", "Three pot windowsill planter.", "24.00", "", 50, false,
		[]string{"planter.jpg"}},
	{"Pruning Shears", "GAR-002", "Garden", "Bypass shears with locking handle.", "18.75", "", 0, true,
		nil},
}

// Run is a no-op for the catalog when products already exist, and for the
// admin account when its email is taken.
func Run(ctx context.Context, db *gorm.DB, opts Options) (Result, error) {
	l := logging.FromContext(ctx).With("component", "seed")
	var res Result

	var existing int64
	if err := db.WithContext(ctx).Model(&models.Product{}).Count(&existing).Error; err != nil {
		return res, err
	}
	if existing == 0 {
		imgs, err := seedCatalog(ctx, db, &res)
		if err != nil {
			return res, fmt.Errorf("seed catalog: %w", err)
		}
		if db.Dialector.Name() == "postgres" && opts.DSN != "" {
			err = copyImages(ctx, opts.DSN, imgs)
		} else if len(imgs) > 0 {
			err = db.WithContext(ctx).CreateInBatches(imgs, 100).Error
		}
		if err != nil {
			return res, fmt.Errorf("seed images: %w", err)
		}
		res.Images = len(imgs)
	} else {
		l.Info("catalog already present, skipping", "products", existing)
	}

	if opts.AdminEmail != "" && opts.AdminPassword != "" {
		created, err := seedAdmin(ctx, db, opts)
		if err != nil {
			return res, fmt.Errorf("seed admin: %w", err)
		}
		res.AdminCreated = created
	}

	l.Info("seed finished", "categories", res.Categories, "products", res.Products, "images", res.Images, "admin_created", res.AdminCreated)
	return res, nil
}

func seedCatalog(ctx context.Context, db *gorm.DB, res *Result) ([]models.ProductImage, error) {
	var imgs []models.ProductImage

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		catIDs := make(map[string]uint, len(demoCategories))
		for _, name := range demoCategories {
			cat := models.Category{Name: name}
			if err := tx.Create(&cat).Error; err != nil {
				return err
			}
			catIDs[name] = cat.ID
			res.Categories++
		}

		for _, d := range demoProducts {
			catID := catIDs[d.category]
			p := models.Product{
				Name:            d.name,
				SKU:             d.sku,
				Description:     d.description,
				RegularPrice:    decimal.RequireFromString(d.regular),
				Quantity:        d.quantity,
				Taxable:         d.taxable,
				ProductStatusID: models.ProductStatusActive,
				CategoryID:      &catID,
			}
			if d.discount != "" {
				p.DiscountPrice = decimal.NewNullDecimal(decimal.RequireFromString(d.discount))
			}
			if err := tx.Create(&p).Error; err != nil {
				return err
			}
			res.Products++

			for i, ref := range d.images {
				imgs = append(imgs, models.ProductImage{
					ProductID:    p.ID,
					ImageURL:     ref,
					AltText:      d.name,
					IsPrimary:    i == 0,
					DisplayOrder: i,
				})
			}
		}
		return nil
	})
	return imgs, err
}

func copyImages(ctx context.Context, dsn string, imgs []models.ProductImage) error {
	if len(imgs) == 0 {
		return nil
	}

	conn, err := sql.Open("postgres", dsn)
	if err != nil {
		return err
	}
	defer conn.Close()

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, pq.CopyIn("product_images",
		"product_id", "image_url", "alt_text", "is_primary", "display_order"))
	if err != nil {
		return err
	}
	for _, img := range imgs {
		if _, err := stmt.ExecContext(ctx, img.ProductID, img.ImageURL, img.AltText, img.IsPrimary, img.DisplayOrder); err != nil {
			_ = stmt.Close()
			return err
		}
	}
	if _, err := stmt.ExecContext(ctx); err != nil {
		_ = stmt.Close()
		return err
	}
	if err := stmt.Close(); err != nil {
		return err
	}
	return tx.Commit()
}

func seedAdmin(ctx context.Context, db *gorm.DB, opts Options) (bool, error) {
	var u models.User
	err := db.WithContext(ctx).Where("LOWER(email) = LOWER(?)", opts.AdminEmail).Take(&u).Error
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}

	pw, err := hash.HashPassword(opts.AdminPassword, opts.BcryptCost)
	if err != nil {
		return false, err
	}
	admin := models.User{
		FullName:     "Store Administrator",
		Username:     "admin",
		Email:        opts.AdminEmail,
		PasswordHash: pw,
		Role:         models.RoleAdmin,
	}
	if err := db.WithContext(ctx).Create(&admin).Error; err != nil {
		return false, err
	}
	return true, nil
}
