// Package catalog implements the descriptor-driven CRUD and product-mapping
// engine shared by every merchandising entity (brands, quick picks, stores...).
package catalog

import (
	"fmt"
	"strings"
)

const (
	defaultImageColumn = "image_url"
	defaultProductFK   = "product_id"
	nameField          = "name"

	maxNameRunes  = 255
	maxExtraRunes = 2048
)

// ParentRef ties a grouping entity to the single taxonomy node that owns it.
type ParentRef struct {
	// Entity is the owning descriptor's Key; Table is resolved from it.
	Entity   string
	Table    string
	FKColumn string
}

// MappingTable describes the join table between products and an entity.
type MappingTable struct {
	Slug      string
	Table     string
	OwnFK     string
	ProductFK string
}

// Descriptor parameterizes the engine for one concrete entity.
type Descriptor struct {
	Key            string
	Slug           string
	DisplayName    string
	Table          string
	Bucket         string
	SingularKey    string
	PluralKey      string
	ImageColumn    string
	RequiredFields []string
	ExtraFields    []string
	Parent         *ParentRef
	Mapping        *MappingTable
}

// WritableFields lists the scalar columns a client may set, excluding the image.
func (d *Descriptor) WritableFields() []string {
	fields := []string{nameField}
	fields = append(fields, d.ExtraFields...)
	if d.Parent != nil {
		fields = append(fields, d.Parent.FKColumn)
	}
	return fields
}

// maxRunes caps a writable text field after sanitizing.
func (d *Descriptor) maxRunes(field string) int {
	if field == nameField {
		return maxNameRunes
	}
	return maxExtraRunes
}

// columns is the select list for every read of this entity.
func (d *Descriptor) columns() []string {
	cols := []string{"id", nameField, d.ImageColumn}
	if d.Parent != nil {
		cols = append(cols, d.Parent.FKColumn)
	}
	cols = append(cols, d.ExtraFields...)
	return append(cols, "created_at")
}

func (d *Descriptor) notFound() string {
	return d.DisplayName + " not found."
}

// ProductSet is a flat, owner-less set of products such as "You May Like".
type ProductSet struct {
	Slug        string
	Table       string
	ProductFK   string
	DisplayName string
}

// Mapping is a resolved product mapping, either owned by a descriptor or flat.
type Mapping struct {
	Slug        string
	Table       string
	OwnFK       string
	ProductFK   string
	DisplayName string
	// Owner is nil for flat product sets.
	Owner *Descriptor
}

// Flat reports whether the mapping is a product set with no owning entity.
func (m *Mapping) Flat() bool {
	return m.Owner == nil
}

// BulkNameField is the request field carrying the owner name in bulk maps,
// e.g. brand_id -> brand_name.
func (m *Mapping) BulkNameField() string {
	if m.Flat() {
		return ""
	}
	return strings.TrimSuffix(m.OwnFK, "_id") + "_name"
}

func (m *Mapping) MappedMessage() string {
	if m.Flat() {
		return fmt.Sprintf("Product added to %q successfully.", m.DisplayName)
	}
	return fmt.Sprintf("Product mapped to %s successfully.", m.DisplayName)
}

func (m *Mapping) existsMessage() string {
	if m.Flat() {
		return fmt.Sprintf("Product is already in %q.", m.DisplayName)
	}
	return "Mapping already exists."
}

func (m *Mapping) RemovedMessage() string {
	if m.Flat() {
		return fmt.Sprintf("Product removed from %q successfully.", m.DisplayName)
	}
	return "Mapping removed successfully."
}

func (m *Mapping) bulkMessage(count int, ownerName string) string {
	if m.Flat() {
		return fmt.Sprintf("Mapped %d products to %q.", count, m.DisplayName)
	}
	return fmt.Sprintf("Mapped %d products to %s %q.", count, m.DisplayName, ownerName)
}

// DeletedMessage is the confirmation returned after a delete.
func (d *Descriptor) DeletedMessage() string {
	return d.DisplayName + " deleted successfully."
}

// GroupMappedMessage confirms that a grouping node was attached to d.
func (d *Descriptor) GroupMappedMessage() string {
	return d.DisplayName + " mapped to group successfully."
}
