package catalog

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"gorm.io/gorm"

	"github.com/bigbestmart/catalog-backend/pkg/db"
	"github.com/bigbestmart/catalog-backend/pkg/db/models"
	pkgerrors "github.com/bigbestmart/catalog-backend/pkg/errors"
	"github.com/bigbestmart/catalog-backend/pkg/pagination"
)

const productNotFound = "Product not found."

// ProductLookup resolves products referenced by mapping requests.
type ProductLookup interface {
	Exists(ctx context.Context, id int64) (bool, error)
	FindByNames(ctx context.Context, names []string) ([]models.Product, error)
}

// ProductPage is one keyset page of products mapped to an entity.
type ProductPage struct {
	Products   []models.Product
	NextCursor string
}

// BulkResult reports the outcome of a bulk map by names.
type BulkResult struct {
	Message           string
	MappedCount       int
	InsertedCount     int64
	MappedProducts    []string
	UnmatchedProducts []string
}

// MappingService manages product mappings for every registered mapping.
type MappingService interface {
	MapProduct(ctx context.Context, m *Mapping, productID, ownID int64) error
	UnmapProduct(ctx context.Context, m *Mapping, productID, ownID int64) error
	ListEntitiesForProduct(ctx context.Context, m *Mapping, productID int64) ([]*Node, error)
	ListProductsForEntity(ctx context.Context, m *Mapping, ownID int64, params pagination.Params) (*ProductPage, error)
	GetProduct(ctx context.Context, m *Mapping, productID int64) (*models.Product, error)
	BulkMapByNames(ctx context.Context, m *Mapping, ownerName string, productNames []string) (*BulkResult, error)
}

type mappingService struct {
	entities Repository
	repo     MappingRepository
	products ProductLookup
	tx       db.TxRunner
}

func NewMappingService(entities Repository, repo MappingRepository, products ProductLookup, tx db.TxRunner) (MappingService, error) {
	if entities == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if repo == nil {
		return nil, fmt.Errorf("mapping repository required")
	}
	if products == nil {
		return nil, fmt.Errorf("product lookup required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &mappingService{entities: entities, repo: repo, products: products, tx: tx}, nil
}

func (s *mappingService) requiredIDsMessage(m *Mapping) string {
	if m.Flat() {
		return m.ProductFK + " is required."
	}
	return fmt.Sprintf("%s and %s are required.", m.ProductFK, m.OwnFK)
}

func (s *mappingService) validateIDs(m *Mapping, productID, ownID int64) error {
	if productID <= 0 || (!m.Flat() && ownID <= 0) {
		return pkgerrors.New(pkgerrors.CodeValidation, s.requiredIDsMessage(m))
	}
	return nil
}

// MapProduct fails with a conflict when the pair is already mapped.
func (s *mappingService) MapProduct(ctx context.Context, m *Mapping, productID, ownID int64) error {
	if err := s.validateIDs(m, productID, ownID); err != nil {
		return err
	}

	found, err := s.products.Exists(ctx, productID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup product")
	}
	if !found {
		return pkgerrors.New(pkgerrors.CodeNotFound, productNotFound)
	}
	if !m.Flat() {
		found, err := s.entities.Exists(ctx, m.Owner, ownID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup "+m.Owner.Key)
		}
		if !found {
			return pkgerrors.New(pkgerrors.CodeNotFound, m.Owner.notFound())
		}
	}

	if err := s.repo.Insert(ctx, m, productID, ownID); err != nil {
		if db.IsUniqueViolation(err, "") {
			return pkgerrors.Wrap(pkgerrors.CodeConflict, err, m.existsMessage())
		}
		if db.IsForeignKeyViolation(err) {
			return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, productNotFound)
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert "+m.Table)
	}
	return nil
}

// UnmapProduct succeeds whether or not the pair existed.
func (s *mappingService) UnmapProduct(ctx context.Context, m *Mapping, productID, ownID int64) error {
	if err := s.validateIDs(m, productID, ownID); err != nil {
		return err
	}
	if _, err := s.repo.Delete(ctx, m, productID, ownID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete "+m.Table)
	}
	return nil
}

func (s *mappingService) ListEntitiesForProduct(ctx context.Context, m *Mapping, productID int64) ([]*Node, error) {
	if m.Flat() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("%q has no owning entity", m.DisplayName))
	}
	nodes, err := s.repo.ListOwners(ctx, m, productID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list "+m.Table)
	}
	return nodes, nil
}

func (s *mappingService) ListProductsForEntity(ctx context.Context, m *Mapping, ownID int64, params pagination.Params) (*ProductPage, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	var afterID int64
	if cursor != nil {
		afterID = cursor.ID
	}

	products, err := s.repo.ListProducts(ctx, m, ownID, afterID, pagination.LimitWithBuffer(params.Limit))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list "+m.Table)
	}
	products, more := pagination.Trim(products, params.Limit)

	page := &ProductPage{Products: products}
	if more && len(products) > 0 {
		page.NextCursor = pagination.EncodeCursor(pagination.Cursor{ID: products[len(products)-1].ID})
	}
	return page, nil
}

// GetProduct returns a member of a flat product set.
func (s *mappingService) GetProduct(ctx context.Context, m *Mapping, productID int64) (*models.Product, error) {
	product, err := s.repo.FindProduct(ctx, m, productID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "get "+m.Table)
	}
	if product == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("Product not found in %q.", m.DisplayName))
	}
	return product, nil
}

// BulkMapByNames maps every product whose name matches exactly, skipping
// pairs that already exist. Inserts commit together or not at all.
func (s *mappingService) BulkMapByNames(ctx context.Context, m *Mapping, ownerName string, productNames []string) (*BulkResult, error) {
	ownerName = strings.TrimSpace(ownerName)
	names := normalizeNames(productNames)
	if len(names) == 0 || (!m.Flat() && ownerName == "") {
		msg := "product_names[] are required."
		if !m.Flat() {
			msg = m.BulkNameField() + " and " + msg
		}
		return nil, pkgerrors.New(pkgerrors.CodeValidation, msg)
	}

	var ownID int64
	if !m.Flat() {
		owner, err := s.entities.FindByName(ctx, m.Owner, ownerName)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup "+m.Owner.Key)
		}
		if owner == nil {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, m.Owner.notFound())
		}
		ownID = owner.ID
	}

	products, err := s.products.FindByNames(ctx, names)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup products")
	}
	if len(products) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "No matching products found.").
			WithDetails(map[string][]string{"unmatched_products": names})
	}

	ids := make([]int64, len(products))
	matched := make([]string, len(products))
	for i, p := range products {
		ids[i] = p.ID
		matched[i] = p.Name
	}

	var inserted int64
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		n, err := s.repo.WithTx(tx).InsertIgnoringDuplicates(ctx, m, ownID, ids)
		inserted = n
		return err
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "bulk insert "+m.Table)
	}

	unmatched := make([]string, 0)
	for _, name := range names {
		if !slices.Contains(matched, name) {
			unmatched = append(unmatched, name)
		}
	}

	return &BulkResult{
		Message:           m.bulkMessage(len(products), ownerName),
		MappedCount:       len(products),
		InsertedCount:     inserted,
		MappedProducts:    matched,
		UnmatchedProducts: unmatched,
	}, nil
}

func normalizeNames(names []string) []string {
	out := make([]string, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" || slices.Contains(out, name) {
			continue
		}
		out = append(out, name)
	}
	return out
}
