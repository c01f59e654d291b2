package controllers

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bigbestmart/catalog-backend/internal/catalog"
	pkgerrors "github.com/bigbestmart/catalog-backend/pkg/errors"
	"github.com/bigbestmart/catalog-backend/pkg/pagination"
)

func TestCreateEntityFromJSON(t *testing.T) {
	reg := catalog.DefaultRegistry()
	brand := mustEntity(t, reg, "brand")
	svc := &fakeCatalogService{
		createFn: func(_ context.Context, d *catalog.Descriptor, in catalog.Input) (*catalog.Node, error) {
			assert.Equal(t, "brand", d.Key)
			assert.Equal(t, "Acme", in.Fields["name"])
			assert.Nil(t, in.Image)
			return &catalog.Node{ID: 1, Name: "Acme"}, nil
		},
	}

	rec, payload := serve(CreateEntity(svc, brand, 1<<20, testLogger()),
		jsonRequest(http.MethodPost, "/api/brand/add", `{"name":"Acme"}`, nil))

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, true, payload["success"])
	node, ok := payload["brand"].(map[string]any)
	require.True(t, ok, "expected singular key in %v", payload)
	assert.Equal(t, "Acme", node["name"])
}

func TestCreateEntitySurfacesValidationMessage(t *testing.T) {
	reg := catalog.DefaultRegistry()
	svc := &fakeCatalogService{
		createFn: func(context.Context, *catalog.Descriptor, catalog.Input) (*catalog.Node, error) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
		},
	}
	rec, payload := serve(CreateEntity(svc, mustEntity(t, reg, "brand"), 1<<20, testLogger()),
		jsonRequest(http.MethodPost, "/api/brand/add", `{}`, nil))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, false, payload["success"])
	assert.Equal(t, "name is required", payload["error"])
	assert.Equal(t, string(pkgerrors.CodeValidation), payload["code"])
}

func TestUpdateEntityRejectsBadID(t *testing.T) {
	reg := catalog.DefaultRegistry()
	svc := &fakeCatalogService{}
	rec, _ := serve(UpdateEntity(svc, mustEntity(t, reg, "brand"), 1<<20, testLogger()),
		jsonRequest(http.MethodPut, "/api/brand/update/x", `{"name":"A"}`, map[string]string{"id": "x"}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateEntityNotFound(t *testing.T) {
	reg := catalog.DefaultRegistry()
	svc := &fakeCatalogService{
		updateFn: func(_ context.Context, _ *catalog.Descriptor, id int64, _ catalog.Input) (*catalog.Node, error) {
			assert.Equal(t, int64(9), id)
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Brand not found.")
		},
	}
	rec, payload := serve(UpdateEntity(svc, mustEntity(t, reg, "brand"), 1<<20, testLogger()),
		jsonRequest(http.MethodPut, "/api/brand/update/9", `{"name":"A"}`, map[string]string{"id": "9"}))
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Brand not found.", payload["error"])
}

func TestDeleteEntityReturnsMessage(t *testing.T) {
	reg := catalog.DefaultRegistry()
	var deleted int64
	svc := &fakeCatalogService{
		deleteFn: func(_ context.Context, _ *catalog.Descriptor, id int64) error {
			deleted = id
			return nil
		},
	}
	rec, payload := serve(DeleteEntity(svc, mustEntity(t, reg, "quick_pick"), testLogger()),
		jsonRequest(http.MethodDelete, "/api/quick-pick/delete/4", "", map[string]string{"id": "4"}))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(4), deleted)
	assert.Equal(t, "Quick Pick deleted successfully.", payload["message"])
}

func TestListEntitiesPassesPaging(t *testing.T) {
	reg := catalog.DefaultRegistry()
	svc := &fakeCatalogService{
		listFn: func(_ context.Context, _ *catalog.Descriptor, params pagination.Params) (*catalog.Page, error) {
			assert.Equal(t, pagination.Params{Limit: 2, Cursor: "abc"}, params)
			return &catalog.Page{Nodes: []*catalog.Node{{ID: 1, Name: "A"}, {ID: 2, Name: "B"}}, NextCursor: "next"}, nil
		},
	}
	rec, payload := serve(ListEntities(svc, mustEntity(t, reg, "brand"), testLogger()),
		jsonRequest(http.MethodGet, "/api/brand/list?limit=2&cursor=abc", "", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, payload["brands"], 2)
	assert.Equal(t, "next", payload["next_cursor"])

	rec, _ = serve(ListEntities(svc, mustEntity(t, reg, "brand"), testLogger()),
		jsonRequest(http.MethodGet, "/api/brand/list?limit=-1", "", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetEntity(t *testing.T) {
	reg := catalog.DefaultRegistry()
	svc := &fakeCatalogService{
		getFn: func(_ context.Context, _ *catalog.Descriptor, id int64) (*catalog.Node, error) {
			return &catalog.Node{ID: id, Name: "Main St"}, nil
		},
	}
	rec, payload := serve(GetEntity(svc, mustEntity(t, reg, "store"), testLogger()),
		jsonRequest(http.MethodGet, "/api/stores/3", "", map[string]string{"id": "3"}))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, payload, "store")
}

func TestMapGroupToParent(t *testing.T) {
	reg := catalog.DefaultRegistry()
	group := mustEntity(t, reg, "quick_pick_group")
	parent := mustEntity(t, reg, "quick_pick")
	svc := &fakeCatalogService{
		mapParentFn: func(_ context.Context, d *catalog.Descriptor, groupID, parentID int64) (*catalog.Node, error) {
			assert.Equal(t, "quick_pick_group", d.Key)
			assert.Equal(t, int64(3), groupID)
			assert.Equal(t, int64(5), parentID)
			return &catalog.Node{ID: 3, Name: "Snacks"}, nil
		},
	}
	handler := MapGroupToParent(svc, group, parent, testLogger())

	rec, payload := serve(handler, jsonRequest(http.MethodPost, "/api/quick-pick-group/map-quick-pick", `{"groupId":3,"quickPickId":"5"}`, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Quick Pick mapped to group successfully.", payload["message"])
	assert.Contains(t, payload, "quickPickGroup")

	rec, payload = serve(handler, jsonRequest(http.MethodPost, "/api/quick-pick-group/map-quick-pick", `{"groupId":3}`, nil))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "groupId and quickPickId are required.", payload["error"])
}

func TestListEntitiesByParent(t *testing.T) {
	reg := catalog.DefaultRegistry()
	svc := &fakeCatalogService{
		listParentFn: func(_ context.Context, _ *catalog.Descriptor, parentID int64) ([]*catalog.Node, error) {
			assert.Equal(t, int64(8), parentID)
			return []*catalog.Node{}, nil
		},
	}
	rec, payload := serve(ListEntitiesByParent(svc, mustEntity(t, reg, "bnb_group"), testLogger()),
		jsonRequest(http.MethodGet, "/api/bnb-group/by-bnb/8", "", map[string]string{"parentId": "8"}))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []any{}, payload["bnbGroups"])
}
