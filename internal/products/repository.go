package product

import (
	"context"
	"errors"
	"strings"

	"github.com/bigbestmart/catalog-backend/pkg/db/models"
	"gorm.io/gorm"
)

// lookupChunkSize bounds the IN list of a single name lookup.
const lookupChunkSize = 500

// Repository reads the product catalog.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// FindByID returns gorm.ErrRecordNotFound when the product is missing.
func (r *Repository) FindByID(ctx context.Context, id int64) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *Repository) Exists(ctx context.Context, id int64) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Product{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// List returns up to limit products with id greater than afterID.
func (r *Repository) List(ctx context.Context, query string, afterID int64, limit int) ([]models.Product, error) {
	tx := r.db.WithContext(ctx).Model(&models.Product{}).Where("id > ?", afterID)
	if q := strings.TrimSpace(query); q != "" {
		tx = tx.Where("LOWER(name) LIKE ? ESCAPE '\\'", "%"+escapeLike(strings.ToLower(q))+"%")
	}

	var products []models.Product
	if err := tx.Order("id ASC").Limit(limit).Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// FindByNames returns every product whose name is in names, ordered by id.
func (r *Repository) FindByNames(ctx context.Context, names []string) ([]models.Product, error) {
	var out []models.Product
	for start := 0; start < len(names); start += lookupChunkSize {
		end := min(start+lookupChunkSize, len(names))
		var chunk []models.Product
		if err := r.db.WithContext(ctx).
			Where("name IN ?", names[start:end]).
			Order("id ASC").
			Find(&chunk).Error; err != nil {
			return nil, err
		}
		out = append(out, chunk...)
	}
	return out, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// IsNotFound reports whether err came from a missing row.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
