package controllers

import (
	"net/http"

	"github.com/bigbestmart/catalog-backend/api/responses"
	"github.com/bigbestmart/catalog-backend/api/validators"
	product "github.com/bigbestmart/catalog-backend/internal/products"
	"github.com/bigbestmart/catalog-backend/pkg/logger"
)

const maxSearchQueryLen = 200

// ListProducts pages the catalog; q filters by name, case-insensitively.
func ListProducts(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.ListProducts(r.Context(), product.ListProductsInput{
			Query:      validators.SanitizeString(r.URL.Query().Get("q"), maxSearchQueryLen),
			Pagination: params,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteList(w, "products", result.Products, result.NextCursor)
	}
}

func GetProduct(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		p, err := svc.GetProduct(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteEntity(w, http.StatusOK, "product", p)
	}
}
