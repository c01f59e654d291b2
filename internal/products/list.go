package product

import (
	"github.com/bigbestmart/catalog-backend/pkg/db/models"
	"github.com/bigbestmart/catalog-backend/pkg/pagination"
)

// ListProductsInput captures the browse filters and the requested page.
type ListProductsInput struct {
	// Query matches product names case-insensitively.
	Query      string
	Pagination pagination.Params
}

// ListProductsResult is one keyset page of products.
type ListProductsResult struct {
	Products   []models.Product
	NextCursor string
}
