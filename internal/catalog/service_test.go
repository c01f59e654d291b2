package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bigbestmart/catalog-backend/internal/media"
	product "github.com/bigbestmart/catalog-backend/internal/products"
	"github.com/bigbestmart/catalog-backend/internal/testdb"
	"github.com/bigbestmart/catalog-backend/pkg/db"
	pkgerrors "github.com/bigbestmart/catalog-backend/pkg/errors"
	"github.com/bigbestmart/catalog-backend/pkg/pagination"
)

type fakeUploader struct {
	err     error
	buckets []string
}

func (f *fakeUploader) Upload(_ context.Context, bucket string, file *media.File) (string, error) {
	f.buckets = append(f.buckets, bucket)
	if f.err != nil {
		return "", f.err
	}
	return fmt.Sprintf("https://cdn.test/%s/%s", bucket, file.Name), nil
}

type engine struct {
	client   *db.Client
	reg      *Registry
	svc      Service
	mappings MappingService
	uploader *fakeUploader
}

func newEngine(t *testing.T) *engine {
	t.Helper()
	client := testdb.Open(t)
	reg := DefaultRegistry()
	repo := NewRepository(client.DB())
	mapRepo := NewMappingRepository(client.DB())
	uploader := &fakeUploader{}

	svc, err := NewService(reg, repo, mapRepo, uploader, client)
	require.NoError(t, err)

	products, err := product.NewService(product.NewRepository(client.DB()))
	require.NoError(t, err)
	mappings, err := NewMappingService(repo, mapRepo, products, client)
	require.NoError(t, err)

	return &engine{client: client, reg: reg, svc: svc, mappings: mappings, uploader: uploader}
}

func (e *engine) entity(t *testing.T, key string) *Descriptor {
	t.Helper()
	d, ok := e.reg.Entity(key)
	require.True(t, ok, key)
	return d
}

func (e *engine) mapping(t *testing.T, slug string) *Mapping {
	t.Helper()
	m, ok := e.reg.Mapping(slug)
	require.True(t, ok, slug)
	return m
}

func (e *engine) count(t *testing.T, table string) int64 {
	t.Helper()
	var n int64
	require.NoError(t, e.client.DB().Raw(fmt.Sprintf("SELECT COUNT(*) FROM %q", table)).Scan(&n).Error)
	return n
}

func (e *engine) create(t *testing.T, key string, fields map[string]string) *Node {
	t.Helper()
	node, err := e.svc.Create(context.Background(), e.entity(t, key), Input{Fields: fields})
	require.NoError(t, err)
	return node
}

func requireCode(t *testing.T, err error, code pkgerrors.Code, message string) {
	t.Helper()
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed, "untyped error %v", err)
	assert.Equal(t, code, typed.Code())
	if message != "" {
		assert.Equal(t, message, typed.Message())
	}
}

func TestNewServiceRequiresDependencies(t *testing.T) {
	client := testdb.Open(t)
	repo := NewRepository(client.DB())
	maps := NewMappingRepository(client.DB())

	_, err := NewService(nil, repo, maps, nil, client)
	require.Error(t, err)
	_, err = NewService(DefaultRegistry(), nil, maps, nil, client)
	require.Error(t, err)
	_, err = NewService(DefaultRegistry(), repo, nil, nil, client)
	require.Error(t, err)
	_, err = NewService(DefaultRegistry(), repo, maps, nil, nil)
	require.Error(t, err)
}

func TestCreateRequiresNameForEveryEntity(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()

	for _, d := range e.reg.Entities() {
		t.Run(d.Key, func(t *testing.T) {
			_, err := e.svc.Create(ctx, d, Input{Fields: map[string]string{"name": "  "}})
			requireCode(t, err, pkgerrors.CodeValidation, "name is required")

			created, err := e.svc.Create(ctx, d, Input{Fields: map[string]string{"name": "X " + d.Key}})
			require.NoError(t, err)

			page, err := e.svc.List(ctx, d, pagination.Params{})
			require.NoError(t, err)
			var names []string
			for _, n := range page.Nodes {
				names = append(names, n.Name)
			}
			assert.Contains(t, names, "X "+d.Key)
			assert.Equal(t, created.ID, page.Nodes[len(page.Nodes)-1].ID)
		})
	}
}

func TestAcmeBrandLifecycle(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	brand := e.entity(t, "brand")
	productBrand := e.mapping(t, "product-brand")
	testdb.SeedProducts(t, e.client, "p1", "p2", "p3", "p4", "p5", "p6", "p7")

	acme := e.create(t, "brand", map[string]string{"name": "Acme"})
	raw, err := json.Marshal(acme)
	require.NoError(t, err)
	var body map[string]any
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.Equal(t, "Acme", body["name"])
	assert.Contains(t, body, "image_url")
	assert.Nil(t, body["image_url"])

	require.NoError(t, e.mappings.MapProduct(ctx, productBrand, 7, acme.ID))
	err = e.mappings.MapProduct(ctx, productBrand, 7, acme.ID)
	requireCode(t, err, pkgerrors.CodeConflict, "Mapping already exists.")

	got, err := e.svc.Get(ctx, brand, acme.ID)
	require.NoError(t, err)
	assert.Equal(t, "Acme", got.Name)

	require.NoError(t, e.svc.Delete(ctx, brand, acme.ID))
	assert.Zero(t, e.count(t, "product_brand"))

	_, err = e.svc.Get(ctx, brand, acme.ID)
	requireCode(t, err, pkgerrors.CodeNotFound, "Brand not found.")
	err = e.svc.Delete(ctx, brand, acme.ID)
	requireCode(t, err, pkgerrors.CodeNotFound, "Brand not found.")
}

func TestWritesSanitizeTextFields(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	brand := e.entity(t, "brand")

	acme := e.create(t, "brand", map[string]string{"name": " Ac\x00\x07me\n"})
	assert.Equal(t, "Acme", acme.Name)
	stored, err := e.svc.Get(ctx, brand, acme.ID)
	require.NoError(t, err)
	assert.Equal(t, "Acme", stored.Name)

	long := e.create(t, "brand", map[string]string{"name": strings.Repeat("é", 20000)})
	assert.Equal(t, maxNameRunes, utf8.RuneCountInString(long.Name))

	updated, err := e.svc.Update(ctx, brand, acme.ID, Input{Fields: map[string]string{"name": "New\tAcme"}})
	require.NoError(t, err)
	assert.Equal(t, "NewAcme", updated.Name)

	_, err = e.svc.Create(ctx, brand, Input{Fields: map[string]string{"name": "\x00\x1b"}})
	requireCode(t, err, pkgerrors.CodeValidation, "name is required")

	store := e.create(t, "store", map[string]string{"name": "Corner", "link": "https://shop.test/" + strings.Repeat("a", 5000)})
	raw, err := json.Marshal(store)
	require.NoError(t, err)
	var body map[string]any
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.Equal(t, maxExtraRunes, utf8.RuneCountInString(body["link"].(string)))
}

func TestCreateGroupWithMissingParent(t *testing.T) {
	e := newEngine(t)

	_, err := e.svc.Create(context.Background(), e.entity(t, "quick_pick_group"), Input{
		Fields: map[string]string{"name": "Snacks", "quick_pick_id": "42"},
	})
	requireCode(t, err, pkgerrors.CodeNotFound, "Quick Pick not found.")
	assert.Zero(t, e.count(t, "quick_pick_group"))

	_, err = e.svc.Create(context.Background(), e.entity(t, "quick_pick_group"), Input{
		Fields: map[string]string{"name": "Snacks", "quick_pick_id": "abc"},
	})
	requireCode(t, err, pkgerrors.CodeValidation, "quick_pick_id must be a positive integer")
}

func TestCreateGroupWithoutParent(t *testing.T) {
	e := newEngine(t)

	group := e.create(t, "saving_zone_group", map[string]string{"name": "Loose"})
	assert.Nil(t, group.ParentID)
}

func TestCreateUploadsImageBeforeInsert(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	store := e.entity(t, "store")

	node, err := e.svc.Create(ctx, store, Input{
		Fields: map[string]string{"name": "Corner", "link": "https://corner.test", "ignored": "x"},
		Image:  &media.File{Name: "front.png", Data: []byte("png")},
	})
	require.NoError(t, err)
	require.NotNil(t, node.ImageURL)
	assert.Equal(t, "https://cdn.test/Store/front.png", *node.ImageURL)
	require.NotNil(t, node.Extra["link"])
	assert.Equal(t, "https://corner.test", *node.Extra["link"])
	assert.Equal(t, []string{"Store"}, e.uploader.buckets)

	e.uploader.err = pkgerrors.Wrap(pkgerrors.CodeUpload, errors.New("quota"), "image upload failed")
	_, err = e.svc.Create(ctx, store, Input{
		Fields: map[string]string{"name": "Second"},
		Image:  &media.File{Name: "b.png", Data: []byte("png")},
	})
	requireCode(t, err, pkgerrors.CodeUpload, "")
	assert.Equal(t, int64(1), e.count(t, "Store"))
}

func TestCreateWithImageWithoutUploader(t *testing.T) {
	client := testdb.Open(t)
	svc, err := NewService(DefaultRegistry(), NewRepository(client.DB()), NewMappingRepository(client.DB()), nil, client)
	require.NoError(t, err)
	brand, _ := svc.Registry().Entity("brand")

	_, err = svc.Create(context.Background(), brand, Input{
		Fields: map[string]string{"name": "Acme"},
		Image:  &media.File{Name: "a.png", Data: []byte("x")},
	})
	requireCode(t, err, pkgerrors.CodeValidation, "")
}

func TestUpdateIsPartial(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	store := e.entity(t, "store")

	created := e.create(t, "store", map[string]string{"name": "Corner", "link": "https://a.test"})

	updated, err := e.svc.Update(ctx, store, created.ID, Input{Fields: map[string]string{"link": "https://b.test", "name": ""}})
	require.NoError(t, err)
	assert.Equal(t, "Corner", updated.Name)
	assert.Equal(t, "https://b.test", *updated.Extra["link"])
	assert.Nil(t, updated.ImageURL)

	updated, err = e.svc.Update(ctx, store, created.ID, Input{Image: &media.File{Name: "new.webp", Data: []byte("x")}})
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.test/Store/new.webp", *updated.ImageURL)

	same, err := e.svc.Update(ctx, store, created.ID, Input{})
	require.NoError(t, err)
	assert.Equal(t, updated.ImageURL, same.ImageURL)

	_, err = e.svc.Update(ctx, store, 999, Input{Fields: map[string]string{"name": "x"}, Image: &media.File{Name: "a.png", Data: []byte("x")}})
	requireCode(t, err, pkgerrors.CodeNotFound, "Store not found.")
	assert.Len(t, e.uploader.buckets, 1)
}

func TestUpdateGroupParent(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	group := e.entity(t, "bnb_group")

	bnb := e.create(t, "bnb", map[string]string{"name": "Breakfast"})
	g := e.create(t, "bnb_group", map[string]string{"name": "Eggs"})

	updated, err := e.svc.Update(ctx, group, g.ID, Input{Fields: map[string]string{"bnb_id": fmt.Sprint(bnb.ID)}})
	require.NoError(t, err)
	require.NotNil(t, updated.ParentID)
	assert.Equal(t, bnb.ID, *updated.ParentID)

	_, err = e.svc.Update(ctx, group, g.ID, Input{Fields: map[string]string{"bnb_id": "777"}})
	requireCode(t, err, pkgerrors.CodeNotFound, "B&B not found.")
}

func TestListPagesWithCursor(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	brand := e.entity(t, "brand")
	for i := range 5 {
		e.create(t, "brand", map[string]string{"name": fmt.Sprintf("Brand %d", i)})
	}

	var names []string
	params := pagination.Params{Limit: 2}
	pages := 0
	for {
		page, err := e.svc.List(ctx, brand, params)
		require.NoError(t, err)
		pages++
		for _, n := range page.Nodes {
			names = append(names, n.Name)
		}
		if page.NextCursor == "" {
			break
		}
		params.Cursor = page.NextCursor
	}
	assert.Equal(t, 3, pages)
	assert.Equal(t, []string{"Brand 0", "Brand 1", "Brand 2", "Brand 3", "Brand 4"}, names)

	_, err := e.svc.List(ctx, brand, pagination.Params{Cursor: "%%%"})
	requireCode(t, err, pkgerrors.CodeValidation, "invalid cursor")
}

func TestDeleteCascadesThroughGroups(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	quickPick := e.entity(t, "quick_pick")
	group := e.entity(t, "quick_pick_group")
	groupProducts := e.mapping(t, "quick-pick-group-product")
	testdb.SeedProducts(t, e.client, "Tea", "Coffee")

	parent := e.create(t, "quick_pick", map[string]string{"name": "Drinks"})
	other := e.create(t, "quick_pick", map[string]string{"name": "Food"})
	hot := e.create(t, "quick_pick_group", map[string]string{"name": "Hot", "quick_pick_id": fmt.Sprint(parent.ID)})
	cold := e.create(t, "quick_pick_group", map[string]string{"name": "Cold", "quick_pick_id": fmt.Sprint(parent.ID)})
	keep := e.create(t, "quick_pick_group", map[string]string{"name": "Bread", "quick_pick_id": fmt.Sprint(other.ID)})

	require.NoError(t, e.mappings.MapProduct(ctx, groupProducts, 1, hot.ID))
	require.NoError(t, e.mappings.MapProduct(ctx, groupProducts, 2, cold.ID))
	require.NoError(t, e.mappings.MapProduct(ctx, groupProducts, 2, keep.ID))

	require.NoError(t, e.svc.Delete(ctx, quickPick, parent.ID))

	children, err := e.svc.ListByParent(ctx, group, parent.ID)
	require.NoError(t, err)
	assert.Empty(t, children)
	assert.Equal(t, int64(1), e.count(t, "quickpick_group_product"))
	assert.Equal(t, int64(1), e.count(t, "quick_pick_group"))

	remaining, err := e.svc.ListByParent(ctx, group, other.ID)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, keep.ID, remaining[0].ID)
}

func TestMapToParent(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	group := e.entity(t, "saving_zone_group")

	zone := e.create(t, "saving_zone", map[string]string{"name": "Clearance"})
	g := e.create(t, "saving_zone_group", map[string]string{"name": "Dairy"})

	mapped, err := e.svc.MapToParent(ctx, group, g.ID, zone.ID)
	require.NoError(t, err)
	require.NotNil(t, mapped.ParentID)
	assert.Equal(t, zone.ID, *mapped.ParentID)

	byParent, err := e.svc.ListByParent(ctx, group, zone.ID)
	require.NoError(t, err)
	require.Len(t, byParent, 1)

	_, err = e.svc.MapToParent(ctx, group, 404, zone.ID)
	requireCode(t, err, pkgerrors.CodeNotFound, "Saving Zone Group not found.")
	_, err = e.svc.MapToParent(ctx, group, g.ID, 404)
	requireCode(t, err, pkgerrors.CodeNotFound, "Saving Zone not found.")
	_, err = e.svc.MapToParent(ctx, e.entity(t, "brand"), g.ID, zone.ID)
	requireCode(t, err, pkgerrors.CodeValidation, "")

	empty, err := e.svc.ListByParent(ctx, group, 12345)
	require.NoError(t, err)
	assert.Empty(t, empty)
}
