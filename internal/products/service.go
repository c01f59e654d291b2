package product

import (
	"context"
	"fmt"

	"github.com/bigbestmart/catalog-backend/pkg/db/models"
	pkgerrors "github.com/bigbestmart/catalog-backend/pkg/errors"
	"github.com/bigbestmart/catalog-backend/pkg/pagination"
)

type productRepository interface {
	FindByID(ctx context.Context, id int64) (*models.Product, error)
	Exists(ctx context.Context, id int64) (bool, error)
	List(ctx context.Context, query string, afterID int64, limit int) ([]models.Product, error)
	FindByNames(ctx context.Context, names []string) ([]models.Product, error)
}

// Service exposes the read-only product catalog.
type Service interface {
	ListProducts(ctx context.Context, input ListProductsInput) (*ListProductsResult, error)
	GetProduct(ctx context.Context, id int64) (*models.Product, error)
	Exists(ctx context.Context, id int64) (bool, error)
	FindByNames(ctx context.Context, names []string) ([]models.Product, error)
}

type service struct {
	repo productRepository
}

// NewService builds the product service.
func NewService(repo productRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) ListProducts(ctx context.Context, input ListProductsInput) (*ListProductsResult, error) {
	cursor, err := pagination.ParseCursor(input.Pagination.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	var afterID int64
	if cursor != nil {
		afterID = cursor.ID
	}

	rows, err := s.repo.List(ctx, input.Query, afterID, pagination.LimitWithBuffer(input.Pagination.Limit))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	rows, more := pagination.Trim(rows, input.Pagination.Limit)

	result := &ListProductsResult{Products: rows}
	if more && len(rows) > 0 {
		result.NextCursor = pagination.EncodeCursor(pagination.Cursor{ID: rows[len(rows)-1].ID})
	}
	return result, nil
}

func (s *service) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Product not found.")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "get product")
	}
	return product, nil
}

func (s *service) Exists(ctx context.Context, id int64) (bool, error) {
	if id <= 0 {
		return false, nil
	}
	return s.repo.Exists(ctx, id)
}

// FindByNames resolves exact names; names without a product are simply absent.
func (s *service) FindByNames(ctx context.Context, names []string) ([]models.Product, error) {
	if len(names) == 0 {
		return nil, nil
	}
	return s.repo.FindByNames(ctx, names)
}
