package controllers

import (
	"net/http"

	"github.com/bigbestmart/catalog-backend/api/responses"
	"github.com/bigbestmart/catalog-backend/api/validators"
	"github.com/bigbestmart/catalog-backend/internal/catalog"
	"github.com/bigbestmart/catalog-backend/pkg/logger"
	"github.com/bigbestmart/catalog-backend/pkg/types"
)

type bulkMapRequest struct {
	ProductNames []string `json:"product_names" validate:"max=1000"`
}

// mappingIDs reads {product_id, <own_fk>}; absent ids come back as zero and
// are rejected by the service with its own message.
func mappingIDs(r *http.Request, m *catalog.Mapping) (productID, ownID int64, err error) {
	body, err := validators.DecodeJSONMap(r)
	if err != nil {
		return 0, 0, err
	}
	productID, _, err = validators.IDField(body, m.ProductFK)
	if err != nil {
		return 0, 0, err
	}
	if m.Flat() {
		return productID, 0, nil
	}
	ownID, _, err = validators.IDField(body, m.OwnFK)
	return productID, ownID, err
}

func MapProduct(svc catalog.MappingService, m *catalog.Mapping, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := mappingContext(r, logg, m)
		productID, ownID, err := mappingIDs(r, m)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if err := svc.MapProduct(ctx, m, productID, ownID); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteMessage(w, http.StatusCreated, m.MappedMessage())
	}
}

// UnmapProduct succeeds even when the pair was never mapped.
func UnmapProduct(svc catalog.MappingService, m *catalog.Mapping, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := mappingContext(r, logg, m)
		productID, ownID, err := mappingIDs(r, m)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if err := svc.UnmapProduct(ctx, m, productID, ownID); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteMessage(w, http.StatusOK, m.RemovedMessage())
	}
}

// ListOwnersForProduct lists the entities a product is mapped to.
func ListOwnersForProduct(svc catalog.MappingService, m *catalog.Mapping, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := mappingContext(r, logg, m)
		productID, err := validators.ParseIDParam(r, "productId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		nodes, err := svc.ListEntitiesForProduct(ctx, m, productID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteEntity(w, http.StatusOK, m.Owner.PluralKey, nodes)
	}
}

// ListProductsForOwner pages the products mapped to one entity.
func ListProductsForOwner(svc catalog.MappingService, m *catalog.Mapping, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := mappingContext(r, logg, m)
		ownID, err := validators.ParseIDParam(r, "entityId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		listProducts(w, r, svc, m, ownID, logg)
	}
}

// ListSetProducts pages the members of an owner-less product set.
func ListSetProducts(svc catalog.MappingService, m *catalog.Mapping, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		listProducts(w, r, svc, m, 0, logg)
	}
}

func listProducts(w http.ResponseWriter, r *http.Request, svc catalog.MappingService, m *catalog.Mapping, ownID int64, logg *logger.Logger) {
	ctx := mappingContext(r, logg, m)
	params, err := validators.ParsePagination(r)
	if err != nil {
		responses.WriteError(ctx, logg, w, err)
		return
	}
	page, err := svc.ListProductsForEntity(ctx, m, ownID, params)
	if err != nil {
		responses.WriteError(ctx, logg, w, err)
		return
	}
	responses.WriteList(w, "products", page.Products, page.NextCursor)
}

func GetSetProduct(svc catalog.MappingService, m *catalog.Mapping, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := mappingContext(r, logg, m)
		productID, err := validators.ParseIDParam(r, "productId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		product, err := svc.GetProduct(ctx, m, productID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteEntity(w, http.StatusOK, "product", product)
	}
}

// BulkMapProducts maps products by exact name. Owned mappings read the owner
// from <owner>_name, e.g. brand_name.
func BulkMapProducts(svc catalog.MappingService, m *catalog.Mapping, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := mappingContext(r, logg, m)

		var (
			req       bulkMapRequest
			ownerName string
		)
		if m.Flat() {
			if err := validators.DecodeJSONBody(r, &req); err != nil {
				responses.WriteError(ctx, logg, w, err)
				return
			}
		} else {
			body, err := validators.DecodeJSONMap(r)
			if err != nil {
				responses.WriteError(ctx, logg, w, err)
				return
			}
			if ownerName, err = validators.StringField(body, m.BulkNameField()); err != nil {
				responses.WriteError(ctx, logg, w, err)
				return
			}
			if req.ProductNames, err = validators.StringSliceField(body, "product_names"); err != nil {
				responses.WriteError(ctx, logg, w, err)
				return
			}
			if err := validators.ValidateStruct(&req); err != nil {
				responses.WriteError(ctx, logg, w, err)
				return
			}
		}

		result, err := svc.BulkMapByNames(ctx, m, ownerName, req.ProductNames)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteEnvelope(w, http.StatusCreated, types.SuccessEnvelope{
			Message: result.Message,
			Fields: map[string]any{
				"mapped_count":       result.MappedCount,
				"inserted_count":     result.InsertedCount,
				"mapped_products":    result.MappedProducts,
				"unmatched_products": result.UnmatchedProducts,
			},
		})
	}
}
