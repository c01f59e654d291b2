package catalog

import (
	"context"
	"fmt"
	"strconv"

	"gorm.io/gorm"

	"github.com/bigbestmart/catalog-backend/api/validators"
	"github.com/bigbestmart/catalog-backend/internal/media"
	"github.com/bigbestmart/catalog-backend/pkg/db"
	pkgerrors "github.com/bigbestmart/catalog-backend/pkg/errors"
	"github.com/bigbestmart/catalog-backend/pkg/pagination"
)

// Input carries the writable fields of a create or update request.
// Fields are keyed by column name; unknown keys are ignored.
type Input struct {
	Fields map[string]string
	Image  *media.File
}

// Page is one keyset page of a listing.
type Page struct {
	Nodes      []*Node
	NextCursor string
}

// Service is the CRUD engine shared by every taxonomy and grouping entity.
type Service interface {
	Registry() *Registry
	Create(ctx context.Context, d *Descriptor, in Input) (*Node, error)
	Update(ctx context.Context, d *Descriptor, id int64, in Input) (*Node, error)
	Delete(ctx context.Context, d *Descriptor, id int64) error
	List(ctx context.Context, d *Descriptor, params pagination.Params) (*Page, error)
	Get(ctx context.Context, d *Descriptor, id int64) (*Node, error)
	MapToParent(ctx context.Context, d *Descriptor, groupID, parentID int64) (*Node, error)
	ListByParent(ctx context.Context, d *Descriptor, parentID int64) ([]*Node, error)
}

type service struct {
	registry *Registry
	repo     Repository
	mappings MappingRepository
	uploader media.Uploader
	tx       db.TxRunner
}

// NewService wires the engine. uploader may be nil, in which case requests
// carrying an image are rejected.
func NewService(registry *Registry, repo Repository, mappings MappingRepository, uploader media.Uploader, tx db.TxRunner) (Service, error) {
	if registry == nil {
		return nil, fmt.Errorf("catalog registry required")
	}
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if mappings == nil {
		return nil, fmt.Errorf("mapping repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{
		registry: registry,
		repo:     repo,
		mappings: mappings,
		uploader: uploader,
		tx:       tx,
	}, nil
}

func (s *service) Registry() *Registry {
	return s.registry
}

func (s *service) Create(ctx context.Context, d *Descriptor, in Input) (*Node, error) {
	values, err := s.writableValues(d, in.Fields)
	if err != nil {
		return nil, err
	}
	for _, field := range d.RequiredFields {
		if _, ok := values[field]; !ok {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, field+" is required").
				WithDetails(map[string]string{field: "required"})
		}
	}

	if err := s.uploadImage(ctx, d, in.Image, values); err != nil {
		return nil, err
	}

	var created *Node
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := s.ensureParent(ctx, repo, d, values); err != nil {
			return err
		}
		node, err := repo.Insert(ctx, d, values)
		if err != nil {
			return s.translateWriteError(d, err, "create "+d.Key)
		}
		created = node
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *service) Update(ctx context.Context, d *Descriptor, id int64, in Input) (*Node, error) {
	values, err := s.writableValues(d, in.Fields)
	if err != nil {
		return nil, err
	}

	exists, err := s.repo.Exists(ctx, d, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup "+d.Key)
	}
	if !exists {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, d.notFound())
	}

	if err := s.uploadImage(ctx, d, in.Image, values); err != nil {
		return nil, err
	}

	var updated *Node
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := s.ensureParent(ctx, repo, d, values); err != nil {
			return err
		}
		node, err := repo.Update(ctx, d, id, values)
		if err != nil {
			return s.translateWriteError(d, err, "update "+d.Key)
		}
		if node == nil {
			return pkgerrors.New(pkgerrors.CodeNotFound, d.notFound())
		}
		updated = node
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes the row together with its grouping children and every
// mapping row that references either, children first.
func (s *service) Delete(ctx context.Context, d *Descriptor, id int64) error {
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		mappings := s.mappings.WithTx(tx)

		exists, err := repo.Exists(ctx, d, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup "+d.Key)
		}
		if !exists {
			return pkgerrors.New(pkgerrors.CodeNotFound, d.notFound())
		}

		for _, child := range s.registry.Children(d) {
			childIDs, err := repo.IDsWhere(ctx, child.Table, child.Parent.FKColumn, id)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list "+child.Key)
			}
			if len(childIDs) == 0 {
				continue
			}
			for _, m := range s.registry.MappingsOwnedBy(child) {
				if _, err := mappings.DeleteByOwner(ctx, m, childIDs); err != nil {
					return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete "+m.Table+" rows")
				}
			}
			if _, err := repo.DeleteWhere(ctx, child.Table, "id", childIDs); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete "+child.Key)
			}
		}

		for _, m := range s.registry.MappingsOwnedBy(d) {
			if _, err := mappings.DeleteByOwner(ctx, m, []int64{id}); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete "+m.Table+" rows")
			}
		}

		if _, err := repo.DeleteWhere(ctx, d.Table, "id", []int64{id}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete "+d.Key)
		}
		return nil
	})
}

func (s *service) List(ctx context.Context, d *Descriptor, params pagination.Params) (*Page, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	var afterID int64
	if cursor != nil {
		afterID = cursor.ID
	}

	nodes, err := s.repo.List(ctx, d, afterID, pagination.LimitWithBuffer(params.Limit))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list "+d.Key)
	}
	nodes, more := pagination.Trim(nodes, params.Limit)

	page := &Page{Nodes: nodes}
	if more && len(nodes) > 0 {
		page.NextCursor = pagination.EncodeCursor(pagination.Cursor{ID: nodes[len(nodes)-1].ID})
	}
	return page, nil
}

func (s *service) Get(ctx context.Context, d *Descriptor, id int64) (*Node, error) {
	node, err := s.repo.FindByID(ctx, d, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "get "+d.Key)
	}
	if node == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, d.notFound())
	}
	return node, nil
}

func (s *service) MapToParent(ctx context.Context, d *Descriptor, groupID, parentID int64) (*Node, error) {
	parent, ok := s.registry.Parent(d)
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, d.DisplayName+" has no parent entity")
	}
	if groupID <= 0 || parentID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "group id and parent id are required")
	}

	var updated *Node
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		for _, check := range []struct {
			desc *Descriptor
			id   int64
		}{{d, groupID}, {parent, parentID}} {
			exists, err := repo.Exists(ctx, check.desc, check.id)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup "+check.desc.Key)
			}
			if !exists {
				return pkgerrors.New(pkgerrors.CodeNotFound, check.desc.notFound())
			}
		}
		node, err := repo.Update(ctx, d, groupID, map[string]any{d.Parent.FKColumn: parentID})
		if err != nil {
			return s.translateWriteError(d, err, "map "+d.Key)
		}
		if node == nil {
			return pkgerrors.New(pkgerrors.CodeNotFound, d.notFound())
		}
		updated = node
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// ListByParent returns an empty list for unknown parents.
func (s *service) ListByParent(ctx context.Context, d *Descriptor, parentID int64) ([]*Node, error) {
	if d.Parent == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, d.DisplayName+" has no parent entity")
	}
	nodes, err := s.repo.ListByParent(ctx, d, parentID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list "+d.Key)
	}
	return nodes, nil
}

// writableValues keeps the non-empty writable fields after sanitizing them,
// converting the parent foreign key to an integer.
func (s *service) writableValues(d *Descriptor, fields map[string]string) (map[string]any, error) {
	values := make(map[string]any, len(fields))
	for _, field := range d.WritableFields() {
		raw, ok := fields[field]
		if !ok {
			continue
		}
		raw = validators.SanitizeString(raw, d.maxRunes(field))
		if raw == "" {
			continue
		}
		if d.Parent != nil && field == d.Parent.FKColumn {
			parentID, err := strconv.ParseInt(raw, 10, 64)
			if err != nil || parentID <= 0 {
				return nil, pkgerrors.New(pkgerrors.CodeValidation, field+" must be a positive integer").
					WithDetails(map[string]string{field: "invalid"})
			}
			values[field] = parentID
			continue
		}
		values[field] = raw
	}
	return values, nil
}

func (s *service) uploadImage(ctx context.Context, d *Descriptor, image *media.File, values map[string]any) error {
	if image == nil {
		return nil
	}
	if s.uploader == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "image uploads are not enabled")
	}
	url, err := s.uploader.Upload(ctx, d.Bucket, image)
	if err != nil {
		return err
	}
	values[d.ImageColumn] = url
	return nil
}

func (s *service) ensureParent(ctx context.Context, repo Repository, d *Descriptor, values map[string]any) error {
	if d.Parent == nil {
		return nil
	}
	parentID, ok := values[d.Parent.FKColumn].(int64)
	if !ok {
		return nil
	}
	parent, _ := s.registry.Parent(d)
	exists, err := repo.Exists(ctx, parent, parentID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup "+parent.Key)
	}
	if !exists {
		return pkgerrors.New(pkgerrors.CodeNotFound, parent.notFound())
	}
	return nil
}

func (s *service) translateWriteError(d *Descriptor, err error, action string) error {
	if db.IsForeignKeyViolation(err) {
		if parent, ok := s.registry.Parent(d); ok {
			return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, parent.notFound())
		}
	}
	if db.IsUniqueViolation(err, "") {
		return pkgerrors.Wrap(pkgerrors.CodeConflict, err, d.DisplayName+" already exists.")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, action)
}
