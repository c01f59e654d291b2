package controllers

import (
	"net/http"

	"github.com/bigbestmart/catalog-backend/api/responses"
	"github.com/bigbestmart/catalog-backend/api/validators"
	"github.com/bigbestmart/catalog-backend/internal/catalog"
	pkgerrors "github.com/bigbestmart/catalog-backend/pkg/errors"
	"github.com/bigbestmart/catalog-backend/pkg/logger"
)

// CreateEntity accepts multipart, urlencoded, or JSON bodies.
func CreateEntity(svc catalog.Service, d *catalog.Descriptor, maxImageBytes int64, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := entityContext(r, logg, d)
		fields, image, err := validators.ParseEntityForm(r, maxImageBytes)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		node, err := svc.Create(ctx, d, catalog.Input{Fields: fields, Image: image})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteEntity(w, http.StatusCreated, d.SingularKey, node)
	}
}

func UpdateEntity(svc catalog.Service, d *catalog.Descriptor, maxImageBytes int64, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := entityContext(r, logg, d)
		id, err := validators.ParseIDParam(r, "id")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		fields, image, err := validators.ParseEntityForm(r, maxImageBytes)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		node, err := svc.Update(ctx, d, id, catalog.Input{Fields: fields, Image: image})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteEntity(w, http.StatusOK, d.SingularKey, node)
	}
}

// DeleteEntity removes the node together with its mappings and child groups.
func DeleteEntity(svc catalog.Service, d *catalog.Descriptor, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := entityContext(r, logg, d)
		id, err := validators.ParseIDParam(r, "id")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if err := svc.Delete(ctx, d, id); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteMessage(w, http.StatusOK, d.DeletedMessage())
	}
}

func ListEntities(svc catalog.Service, d *catalog.Descriptor, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := entityContext(r, logg, d)
		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		page, err := svc.List(ctx, d, params)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteList(w, d.PluralKey, page.Nodes, page.NextCursor)
	}
}

func GetEntity(svc catalog.Service, d *catalog.Descriptor, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := entityContext(r, logg, d)
		id, err := validators.ParseIDParam(r, "id")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		node, err := svc.Get(ctx, d, id)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteEntity(w, http.StatusOK, d.SingularKey, node)
	}
}

// MapGroupToParent reads {groupId, <parent>Id}, e.g. {groupId, quickPickId}.
func MapGroupToParent(svc catalog.Service, group, parent *catalog.Descriptor, logg *logger.Logger) http.HandlerFunc {
	parentField := parent.SingularKey + "Id"
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := entityContext(r, logg, group)
		body, err := validators.DecodeJSONMap(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		groupID, hasGroup, err := validators.IDField(body, "groupId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		parentID, hasParent, err := validators.IDField(body, parentField)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if !hasGroup || !hasParent {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "groupId and "+parentField+" are required."))
			return
		}

		node, err := svc.MapToParent(ctx, group, groupID, parentID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteEnvelope(w, http.StatusOK, entityEnvelope(group.SingularKey, node, parent.GroupMappedMessage()))
	}
}

func ListEntitiesByParent(svc catalog.Service, group *catalog.Descriptor, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := entityContext(r, logg, group)
		parentID, err := validators.ParseIDParam(r, "parentId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		nodes, err := svc.ListByParent(ctx, group, parentID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteEntity(w, http.StatusOK, group.PluralKey, nodes)
	}
}
