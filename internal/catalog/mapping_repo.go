package catalog

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/bigbestmart/catalog-backend/pkg/db/models"
)

const insertChunkSize = 500

const productColumns = `p.id, p.name, p.price, p.rating, p.image, p.category, p.created_at`

// MappingRepository persists product mapping rows.
type MappingRepository interface {
	WithTx(tx *gorm.DB) MappingRepository
	Insert(ctx context.Context, m *Mapping, productID, ownID int64) error
	InsertIgnoringDuplicates(ctx context.Context, m *Mapping, ownID int64, productIDs []int64) (int64, error)
	Delete(ctx context.Context, m *Mapping, productID, ownID int64) (int64, error)
	DeleteByOwner(ctx context.Context, m *Mapping, ownIDs []int64) (int64, error)
	ListOwners(ctx context.Context, m *Mapping, productID int64) ([]*Node, error)
	ListProducts(ctx context.Context, m *Mapping, ownID int64, afterID int64, limit int) ([]models.Product, error)
	FindProduct(ctx context.Context, m *Mapping, productID int64) (*models.Product, error)
}

type mappingRepositoryImpl struct {
	db *gorm.DB
}

func NewMappingRepository(db *gorm.DB) MappingRepository {
	return &mappingRepositoryImpl{db: db}
}

func (r *mappingRepositoryImpl) WithTx(tx *gorm.DB) MappingRepository {
	if tx == nil {
		return r
	}
	return &mappingRepositoryImpl{db: tx}
}

func (r *mappingRepositoryImpl) columns(m *Mapping) string {
	if m.Flat() {
		return quote(m.ProductFK)
	}
	return quote(m.ProductFK) + ", " + quote(m.OwnFK)
}

func (r *mappingRepositoryImpl) Insert(ctx context.Context, m *Mapping, productID, ownID int64) error {
	if m.Flat() {
		sql := fmt.Sprintf("INSERT INTO %s (%s) VALUES (?)", quote(m.Table), r.columns(m))
		return r.db.WithContext(ctx).Exec(sql, productID).Error
	}
	sql := fmt.Sprintf("INSERT INTO %s (%s) VALUES (?, ?)", quote(m.Table), r.columns(m))
	return r.db.WithContext(ctx).Exec(sql, productID, ownID).Error
}

// InsertIgnoringDuplicates inserts every pair, skipping pairs that already
// exist, and returns how many rows were new.
func (r *mappingRepositoryImpl) InsertIgnoringDuplicates(ctx context.Context, m *Mapping, ownID int64, productIDs []int64) (int64, error) {
	var inserted int64
	for start := 0; start < len(productIDs); start += insertChunkSize {
		end := min(start+insertChunkSize, len(productIDs))
		chunk := productIDs[start:end]

		tuples := make([]string, len(chunk))
		args := make([]any, 0, len(chunk)*2)
		for i, productID := range chunk {
			if m.Flat() {
				tuples[i] = "(?)"
				args = append(args, productID)
				continue
			}
			tuples[i] = "(?, ?)"
			args = append(args, productID, ownID)
		}
		sql := fmt.Sprintf("INSERT INTO %s (%s) VALUES %s ON CONFLICT DO NOTHING",
			quote(m.Table), r.columns(m), strings.Join(tuples, ", "))
		result := r.db.WithContext(ctx).Exec(sql, args...)
		if result.Error != nil {
			return inserted, result.Error
		}
		inserted += result.RowsAffected
	}
	return inserted, nil
}

func (r *mappingRepositoryImpl) Delete(ctx context.Context, m *Mapping, productID, ownID int64) (int64, error) {
	var result *gorm.DB
	if m.Flat() {
		sql := fmt.Sprintf("DELETE FROM %s WHERE %s = ?", quote(m.Table), quote(m.ProductFK))
		result = r.db.WithContext(ctx).Exec(sql, productID)
	} else {
		sql := fmt.Sprintf("DELETE FROM %s WHERE %s = ? AND %s = ?", quote(m.Table), quote(m.ProductFK), quote(m.OwnFK))
		result = r.db.WithContext(ctx).Exec(sql, productID, ownID)
	}
	return result.RowsAffected, result.Error
}

func (r *mappingRepositoryImpl) DeleteByOwner(ctx context.Context, m *Mapping, ownIDs []int64) (int64, error) {
	if m.Flat() {
		return 0, fmt.Errorf("mapping %s has no owner", m.Slug)
	}
	if len(ownIDs) == 0 {
		return 0, nil
	}
	sql := fmt.Sprintf("DELETE FROM %s WHERE %s IN ?", quote(m.Table), quote(m.OwnFK))
	result := r.db.WithContext(ctx).Exec(sql, ownIDs)
	return result.RowsAffected, result.Error
}

// ListOwners returns the owner rows a product is mapped to.
func (r *mappingRepositoryImpl) ListOwners(ctx context.Context, m *Mapping, productID int64) ([]*Node, error) {
	if m.Flat() {
		return nil, fmt.Errorf("mapping %s has no owner", m.Slug)
	}
	owner := m.Owner
	cols := owner.columns()
	prefixed := make([]string, len(cols))
	for i, col := range cols {
		prefixed[i] = "o." + quote(col)
	}
	sql := fmt.Sprintf("SELECT %s FROM %s m JOIN %s o ON o.id = m.%s WHERE m.%s = ? ORDER BY o.id",
		strings.Join(prefixed, ", "), quote(m.Table), quote(owner.Table), quote(m.OwnFK), quote(m.ProductFK))

	var rows []map[string]any
	if err := r.db.WithContext(ctx).Raw(sql, productID).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return nodesFromRows(owner, rows)
}

// ListProducts returns products mapped to ownID (ignored for flat sets), keyset-paged by product id.
func (r *mappingRepositoryImpl) ListProducts(ctx context.Context, m *Mapping, ownID int64, afterID int64, limit int) ([]models.Product, error) {
	where := "p.id > ?"
	args := []any{afterID}
	if !m.Flat() {
		where = fmt.Sprintf("m.%s = ? AND %s", quote(m.OwnFK), where)
		args = append([]any{ownID}, args...)
	}
	args = append(args, limit)
	sql := fmt.Sprintf("SELECT %s FROM %s m JOIN products p ON p.id = m.%s WHERE %s ORDER BY p.id LIMIT ?",
		productColumns, quote(m.Table), quote(m.ProductFK), where)

	var products []models.Product
	if err := r.db.WithContext(ctx).Raw(sql, args...).Scan(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// FindProduct returns the product when it belongs to a flat set, nil otherwise.
func (r *mappingRepositoryImpl) FindProduct(ctx context.Context, m *Mapping, productID int64) (*models.Product, error) {
	sql := fmt.Sprintf("SELECT %s FROM %s m JOIN products p ON p.id = m.%s WHERE m.%s = ? LIMIT 1",
		productColumns, quote(m.Table), quote(m.ProductFK), quote(m.ProductFK))

	var products []models.Product
	if err := r.db.WithContext(ctx).Raw(sql, productID).Scan(&products).Error; err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return nil, nil
	}
	return &products[0], nil
}
