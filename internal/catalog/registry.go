package catalog

import (
	"fmt"
	"regexp"
	"slices"

	"go.uber.org/multierr"
)

var (
	identifierRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
	slugRe       = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)
	jsonKeyRe    = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)
)

// Registry holds validated descriptors and mappings. It is immutable after construction.
type Registry struct {
	entities   []*Descriptor
	byKey      map[string]*Descriptor
	mappings   []*Mapping
	mappingMap map[string]*Mapping
}

// NewRegistry validates every descriptor and product set, reporting all problems at once.
func NewRegistry(descriptors []Descriptor, sets []ProductSet) (*Registry, error) {
	r := &Registry{
		byKey:      make(map[string]*Descriptor, len(descriptors)),
		mappingMap: make(map[string]*Mapping),
	}

	var errs error
	slugs := map[string]string{}
	claimSlug := func(slug, owner string) {
		if prev, ok := slugs[slug]; ok {
			errs = multierr.Append(errs, fmt.Errorf("slug %q used by both %s and %s", slug, prev, owner))
			return
		}
		slugs[slug] = owner
	}

	for i := range descriptors {
		d := descriptors[i]
		applyDefaults(&d)
		errs = multierr.Append(errs, validateDescriptor(&d))
		if _, dup := r.byKey[d.Key]; dup {
			errs = multierr.Append(errs, fmt.Errorf("duplicate entity key %q", d.Key))
			continue
		}
		claimSlug(d.Slug, "entity "+d.Key)
		stored := &d
		r.entities = append(r.entities, stored)
		r.byKey[d.Key] = stored
	}

	for _, d := range r.entities {
		if d.Parent != nil {
			parent, ok := r.byKey[d.Parent.Entity]
			switch {
			case !ok:
				errs = multierr.Append(errs, fmt.Errorf("entity %s: unknown parent %q", d.Key, d.Parent.Entity))
			case parent == d:
				errs = multierr.Append(errs, fmt.Errorf("entity %s: cannot be its own parent", d.Key))
			case parent.Parent != nil:
				errs = multierr.Append(errs, fmt.Errorf("entity %s: parent %s is itself a grouping entity", d.Key, parent.Key))
			default:
				d.Parent.Table = parent.Table
			}
		}
		if d.Mapping != nil {
			m := &Mapping{
				Slug:        d.Mapping.Slug,
				Table:       d.Mapping.Table,
				OwnFK:       d.Mapping.OwnFK,
				ProductFK:   d.Mapping.ProductFK,
				DisplayName: d.DisplayName,
				Owner:       d,
			}
			errs = multierr.Append(errs, validateMapping(m))
			claimSlug(m.Slug, "mapping "+m.Table)
			r.addMapping(m)
		}
	}

	for _, set := range sets {
		m := &Mapping{
			Slug:        set.Slug,
			Table:       set.Table,
			ProductFK:   set.ProductFK,
			DisplayName: set.DisplayName,
		}
		if m.ProductFK == "" {
			m.ProductFK = defaultProductFK
		}
		errs = multierr.Append(errs, validateMapping(m))
		claimSlug(m.Slug, "product set "+m.Table)
		r.addMapping(m)
	}

	if errs != nil {
		return nil, errs
	}
	return r, nil
}

// MustNewRegistry panics when the static configuration is invalid.
func MustNewRegistry(descriptors []Descriptor, sets []ProductSet) *Registry {
	r, err := NewRegistry(descriptors, sets)
	if err != nil {
		panic(fmt.Sprintf("catalog registry: %v", err))
	}
	return r
}

func (r *Registry) addMapping(m *Mapping) {
	r.mappings = append(r.mappings, m)
	r.mappingMap[m.Slug] = m
}

func applyDefaults(d *Descriptor) {
	if d.ImageColumn == "" {
		d.ImageColumn = defaultImageColumn
	}
	if len(d.RequiredFields) == 0 {
		d.RequiredFields = []string{nameField}
	}
	if d.Bucket == "" {
		d.Bucket = d.Table
	}
	if d.Parent != nil {
		p := *d.Parent
		d.Parent = &p
	}
	if d.Mapping != nil {
		m := *d.Mapping
		if m.ProductFK == "" {
			m.ProductFK = defaultProductFK
		}
		d.Mapping = &m
	}
	d.ExtraFields = slices.Clone(d.ExtraFields)
	d.RequiredFields = slices.Clone(d.RequiredFields)
}

func validateDescriptor(d *Descriptor) error {
	var errs error
	if d.Key == "" {
		errs = multierr.Append(errs, fmt.Errorf("entity with table %q has no key", d.Table))
	}
	if !slugRe.MatchString(d.Slug) {
		errs = multierr.Append(errs, fmt.Errorf("entity %s: invalid slug %q", d.Key, d.Slug))
	}
	if d.DisplayName == "" {
		errs = multierr.Append(errs, fmt.Errorf("entity %s: display name is required", d.Key))
	}
	for _, key := range []string{d.SingularKey, d.PluralKey} {
		if !jsonKeyRe.MatchString(key) {
			errs = multierr.Append(errs, fmt.Errorf("entity %s: invalid response key %q", d.Key, key))
		}
	}
	idents := []string{d.Table, d.ImageColumn}
	idents = append(idents, d.ExtraFields...)
	if d.Parent != nil {
		idents = append(idents, d.Parent.FKColumn)
	}
	for _, ident := range idents {
		if !identifierRe.MatchString(ident) {
			errs = multierr.Append(errs, fmt.Errorf("entity %s: invalid identifier %q", d.Key, ident))
		}
	}
	writable := d.WritableFields()
	for _, field := range d.RequiredFields {
		if !slices.Contains(writable, field) {
			errs = multierr.Append(errs, fmt.Errorf("entity %s: required field %q is not writable", d.Key, field))
		}
	}
	return errs
}

func validateMapping(m *Mapping) error {
	var errs error
	if !slugRe.MatchString(m.Slug) {
		errs = multierr.Append(errs, fmt.Errorf("mapping %s: invalid slug %q", m.Table, m.Slug))
	}
	idents := []string{m.Table, m.ProductFK}
	if !m.Flat() {
		idents = append(idents, m.OwnFK)
	}
	for _, ident := range idents {
		if !identifierRe.MatchString(ident) {
			errs = multierr.Append(errs, fmt.Errorf("mapping %s: invalid identifier %q", m.Slug, ident))
		}
	}
	if m.DisplayName == "" {
		errs = multierr.Append(errs, fmt.Errorf("mapping %s: display name is required", m.Slug))
	}
	return errs
}

// Entities returns every descriptor in registration order.
func (r *Registry) Entities() []*Descriptor {
	return slices.Clone(r.entities)
}

func (r *Registry) Entity(key string) (*Descriptor, bool) {
	d, ok := r.byKey[key]
	return d, ok
}

// Parent returns the descriptor owning d, if d is a grouping entity.
func (r *Registry) Parent(d *Descriptor) (*Descriptor, bool) {
	if d == nil || d.Parent == nil {
		return nil, false
	}
	return r.Entity(d.Parent.Entity)
}

// Children returns the grouping entities whose parent is d.
func (r *Registry) Children(d *Descriptor) []*Descriptor {
	var out []*Descriptor
	for _, candidate := range r.entities {
		if candidate.Parent != nil && candidate.Parent.Entity == d.Key {
			out = append(out, candidate)
		}
	}
	return out
}

// Mappings returns every product mapping in registration order.
func (r *Registry) Mappings() []*Mapping {
	return slices.Clone(r.mappings)
}

func (r *Registry) Mapping(slug string) (*Mapping, bool) {
	m, ok := r.mappingMap[slug]
	return m, ok
}

// MappingsOwnedBy returns the product mappings whose owner is d.
func (r *Registry) MappingsOwnedBy(d *Descriptor) []*Mapping {
	var out []*Mapping
	for _, m := range r.mappings {
		if m.Owner == d {
			out = append(out, m)
		}
	}
	return out
}
