package controllers

import (
	"context"
	"net/http"

	"github.com/bigbestmart/catalog-backend/api/responses"
	"github.com/bigbestmart/catalog-backend/api/validators"
	"github.com/bigbestmart/catalog-backend/pkg/geocode"
	"github.com/bigbestmart/catalog-backend/pkg/logger"
)

// PlaceSearcher resolves free-form addresses.
type PlaceSearcher interface {
	Search(ctx context.Context, query string) ([]geocode.Place, error)
}

func SearchLocation(searcher PlaceSearcher, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := validators.SanitizeString(r.URL.Query().Get("q"), maxSearchQueryLen)
		places, err := searcher.Search(r.Context(), query)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteEntity(w, http.StatusOK, "places", places)
	}
}
