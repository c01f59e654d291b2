package controllers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/bigbestmart/catalog-backend/internal/catalog"
	"github.com/bigbestmart/catalog-backend/internal/notifications"
	product "github.com/bigbestmart/catalog-backend/internal/products"
	"github.com/bigbestmart/catalog-backend/pkg/db/models"
	"github.com/bigbestmart/catalog-backend/pkg/geocode"
	"github.com/bigbestmart/catalog-backend/pkg/logger"
	"github.com/bigbestmart/catalog-backend/pkg/pagination"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func jsonRequest(method, target, body string, params map[string]string) *http.Request {
	var reader io.Reader = http.NoBody
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	if len(params) > 0 {
		rctx := chi.NewRouteContext()
		for k, v := range params {
			rctx.URLParams.Add(k, v)
		}
		req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	}
	return req
}

func serve(h http.HandlerFunc, req *http.Request) (*httptest.ResponseRecorder, map[string]any) {
	rec := httptest.NewRecorder()
	h(rec, req)
	payload := map[string]any{}
	_ = json.Unmarshal(rec.Body.Bytes(), &payload)
	return rec, payload
}

func mustEntity(t *testing.T, reg *catalog.Registry, key string) *catalog.Descriptor {
	t.Helper()
	d, ok := reg.Entity(key)
	require.True(t, ok, "entity %s", key)
	return d
}

func mustMapping(t *testing.T, reg *catalog.Registry, slug string) *catalog.Mapping {
	t.Helper()
	m, ok := reg.Mapping(slug)
	require.True(t, ok, "mapping %s", slug)
	return m
}

type fakeCatalogService struct {
	registry     *catalog.Registry
	createFn     func(ctx context.Context, d *catalog.Descriptor, in catalog.Input) (*catalog.Node, error)
	updateFn     func(ctx context.Context, d *catalog.Descriptor, id int64, in catalog.Input) (*catalog.Node, error)
	deleteFn     func(ctx context.Context, d *catalog.Descriptor, id int64) error
	listFn       func(ctx context.Context, d *catalog.Descriptor, params pagination.Params) (*catalog.Page, error)
	getFn        func(ctx context.Context, d *catalog.Descriptor, id int64) (*catalog.Node, error)
	mapParentFn  func(ctx context.Context, d *catalog.Descriptor, groupID, parentID int64) (*catalog.Node, error)
	listParentFn func(ctx context.Context, d *catalog.Descriptor, parentID int64) ([]*catalog.Node, error)
}

func (f *fakeCatalogService) Registry() *catalog.Registry { return f.registry }

func (f *fakeCatalogService) Create(ctx context.Context, d *catalog.Descriptor, in catalog.Input) (*catalog.Node, error) {
	return f.createFn(ctx, d, in)
}

func (f *fakeCatalogService) Update(ctx context.Context, d *catalog.Descriptor, id int64, in catalog.Input) (*catalog.Node, error) {
	return f.updateFn(ctx, d, id, in)
}

func (f *fakeCatalogService) Delete(ctx context.Context, d *catalog.Descriptor, id int64) error {
	return f.deleteFn(ctx, d, id)
}

func (f *fakeCatalogService) List(ctx context.Context, d *catalog.Descriptor, params pagination.Params) (*catalog.Page, error) {
	return f.listFn(ctx, d, params)
}

func (f *fakeCatalogService) Get(ctx context.Context, d *catalog.Descriptor, id int64) (*catalog.Node, error) {
	return f.getFn(ctx, d, id)
}

func (f *fakeCatalogService) MapToParent(ctx context.Context, d *catalog.Descriptor, groupID, parentID int64) (*catalog.Node, error) {
	return f.mapParentFn(ctx, d, groupID, parentID)
}

func (f *fakeCatalogService) ListByParent(ctx context.Context, d *catalog.Descriptor, parentID int64) ([]*catalog.Node, error) {
	return f.listParentFn(ctx, d, parentID)
}

type fakeMappingService struct {
	mapFn      func(ctx context.Context, m *catalog.Mapping, productID, ownID int64) error
	unmapFn    func(ctx context.Context, m *catalog.Mapping, productID, ownID int64) error
	ownersFn   func(ctx context.Context, m *catalog.Mapping, productID int64) ([]*catalog.Node, error)
	productsFn func(ctx context.Context, m *catalog.Mapping, ownID int64, params pagination.Params) (*catalog.ProductPage, error)
	getFn      func(ctx context.Context, m *catalog.Mapping, productID int64) (*models.Product, error)
	bulkFn     func(ctx context.Context, m *catalog.Mapping, ownerName string, names []string) (*catalog.BulkResult, error)
}

func (f *fakeMappingService) MapProduct(ctx context.Context, m *catalog.Mapping, productID, ownID int64) error {
	return f.mapFn(ctx, m, productID, ownID)
}

func (f *fakeMappingService) UnmapProduct(ctx context.Context, m *catalog.Mapping, productID, ownID int64) error {
	return f.unmapFn(ctx, m, productID, ownID)
}

func (f *fakeMappingService) ListEntitiesForProduct(ctx context.Context, m *catalog.Mapping, productID int64) ([]*catalog.Node, error) {
	return f.ownersFn(ctx, m, productID)
}

func (f *fakeMappingService) ListProductsForEntity(ctx context.Context, m *catalog.Mapping, ownID int64, params pagination.Params) (*catalog.ProductPage, error) {
	return f.productsFn(ctx, m, ownID, params)
}

func (f *fakeMappingService) GetProduct(ctx context.Context, m *catalog.Mapping, productID int64) (*models.Product, error) {
	return f.getFn(ctx, m, productID)
}

func (f *fakeMappingService) BulkMapByNames(ctx context.Context, m *catalog.Mapping, ownerName string, names []string) (*catalog.BulkResult, error) {
	return f.bulkFn(ctx, m, ownerName, names)
}

type fakeNotificationService struct {
	createFn  func(ctx context.Context, in notifications.Input) (*models.Notification, error)
	collectFn func(ctx context.Context, params notifications.ListParams) (*notifications.ListResult, error)
	updateFn  func(ctx context.Context, id int64, in notifications.Input) (*models.Notification, error)
	deleteFn  func(ctx context.Context, id int64) error
}

func (f *fakeNotificationService) Create(ctx context.Context, in notifications.Input) (*models.Notification, error) {
	return f.createFn(ctx, in)
}

func (f *fakeNotificationService) Collect(ctx context.Context, params notifications.ListParams) (*notifications.ListResult, error) {
	return f.collectFn(ctx, params)
}

func (f *fakeNotificationService) Update(ctx context.Context, id int64, in notifications.Input) (*models.Notification, error) {
	return f.updateFn(ctx, id, in)
}

func (f *fakeNotificationService) Delete(ctx context.Context, id int64) error {
	return f.deleteFn(ctx, id)
}

func (f *fakeNotificationService) PurgeExpired(context.Context, time.Time) (int64, error) {
	return 0, nil
}

type fakeProductService struct {
	listFn func(ctx context.Context, in product.ListProductsInput) (*product.ListProductsResult, error)
	getFn  func(ctx context.Context, id int64) (*models.Product, error)
}

func (f *fakeProductService) ListProducts(ctx context.Context, in product.ListProductsInput) (*product.ListProductsResult, error) {
	return f.listFn(ctx, in)
}

func (f *fakeProductService) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	return f.getFn(ctx, id)
}

func (f *fakeProductService) Exists(context.Context, int64) (bool, error) { return true, nil }

func (f *fakeProductService) FindByNames(context.Context, []string) ([]models.Product, error) {
	return nil, nil
}

type fakeSearcher struct {
	searchFn func(ctx context.Context, q string) ([]geocode.Place, error)
}

func (f *fakeSearcher) Search(ctx context.Context, q string) ([]geocode.Place, error) {
	return f.searchFn(ctx, q)
}
