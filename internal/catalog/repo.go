package catalog

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"gorm.io/gorm"
)

// Repository runs descriptor-driven SQL. Identifiers come only from
// validated descriptors; every value is a bound parameter.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Insert(ctx context.Context, d *Descriptor, values map[string]any) (*Node, error)
	Update(ctx context.Context, d *Descriptor, id int64, values map[string]any) (*Node, error)
	FindByID(ctx context.Context, d *Descriptor, id int64) (*Node, error)
	FindByName(ctx context.Context, d *Descriptor, name string) (*Node, error)
	Exists(ctx context.Context, d *Descriptor, id int64) (bool, error)
	List(ctx context.Context, d *Descriptor, afterID int64, limit int) ([]*Node, error)
	ListByParent(ctx context.Context, d *Descriptor, parentID int64) ([]*Node, error)
	IDsWhere(ctx context.Context, table, column string, value int64) ([]int64, error)
	DeleteWhere(ctx context.Context, table, column string, values []int64) (int64, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func quote(ident string) string {
	return `"` + ident + `"`
}

func selectList(d *Descriptor) string {
	cols := d.columns()
	quoted := make([]string, len(cols))
	for i, col := range cols {
		quoted[i] = quote(col)
	}
	return strings.Join(quoted, ", ")
}

func (r *repositoryImpl) query(ctx context.Context, d *Descriptor, sql string, args ...any) ([]*Node, error) {
	var rows []map[string]any
	if err := r.db.WithContext(ctx).Raw(sql, args...).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return nodesFromRows(d, rows)
}

func (r *repositoryImpl) queryOne(ctx context.Context, d *Descriptor, sql string, args ...any) (*Node, error) {
	nodes, err := r.query(ctx, d, sql, args...)
	if err != nil || len(nodes) == 0 {
		return nil, err
	}
	return nodes[0], nil
}

func sortedColumns(values map[string]any) []string {
	cols := make([]string, 0, len(values))
	for col := range values {
		cols = append(cols, col)
	}
	slices.Sort(cols)
	return cols
}

func (r *repositoryImpl) Insert(ctx context.Context, d *Descriptor, values map[string]any) (*Node, error) {
	if len(values) == 0 {
		return nil, fmt.Errorf("insert into %s: no values", d.Table)
	}
	cols := sortedColumns(values)
	quoted := make([]string, len(cols))
	placeholders := make([]string, len(cols))
	args := make([]any, len(cols))
	for i, col := range cols {
		quoted[i] = quote(col)
		placeholders[i] = "?"
		args[i] = values[col]
	}
	sql := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING %s",
		quote(d.Table), strings.Join(quoted, ", "), strings.Join(placeholders, ", "), selectList(d))
	node, err := r.queryOne(ctx, d, sql, args...)
	if err != nil {
		return nil, err
	}
	if node == nil {
		return nil, fmt.Errorf("insert into %s returned no row", d.Table)
	}
	return node, nil
}

// Update returns nil when no row has the id.
func (r *repositoryImpl) Update(ctx context.Context, d *Descriptor, id int64, values map[string]any) (*Node, error) {
	if len(values) == 0 {
		return r.FindByID(ctx, d, id)
	}
	cols := sortedColumns(values)
	sets := make([]string, len(cols))
	args := make([]any, 0, len(cols)+1)
	for i, col := range cols {
		sets[i] = quote(col) + " = ?"
		args = append(args, values[col])
	}
	args = append(args, id)
	sql := fmt.Sprintf("UPDATE %s SET %s WHERE id = ? RETURNING %s",
		quote(d.Table), strings.Join(sets, ", "), selectList(d))
	return r.queryOne(ctx, d, sql, args...)
}

func (r *repositoryImpl) FindByID(ctx context.Context, d *Descriptor, id int64) (*Node, error) {
	sql := fmt.Sprintf("SELECT %s FROM %s WHERE id = ?", selectList(d), quote(d.Table))
	return r.queryOne(ctx, d, sql, id)
}

// FindByName returns the oldest row with exactly this name.
func (r *repositoryImpl) FindByName(ctx context.Context, d *Descriptor, name string) (*Node, error) {
	sql := fmt.Sprintf("SELECT %s FROM %s WHERE name = ? ORDER BY id LIMIT 1", selectList(d), quote(d.Table))
	return r.queryOne(ctx, d, sql, name)
}

func (r *repositoryImpl) Exists(ctx context.Context, d *Descriptor, id int64) (bool, error) {
	var count int64
	sql := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE id = ?", quote(d.Table))
	if err := r.db.WithContext(ctx).Raw(sql, id).Scan(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// List returns up to limit rows with id greater than afterID.
func (r *repositoryImpl) List(ctx context.Context, d *Descriptor, afterID int64, limit int) ([]*Node, error) {
	sql := fmt.Sprintf("SELECT %s FROM %s WHERE id > ? ORDER BY id LIMIT ?", selectList(d), quote(d.Table))
	return r.query(ctx, d, sql, afterID, limit)
}

func (r *repositoryImpl) ListByParent(ctx context.Context, d *Descriptor, parentID int64) ([]*Node, error) {
	if d.Parent == nil {
		return nil, fmt.Errorf("%s has no parent reference", d.Key)
	}
	sql := fmt.Sprintf("SELECT %s FROM %s WHERE %s = ? ORDER BY id",
		selectList(d), quote(d.Table), quote(d.Parent.FKColumn))
	return r.query(ctx, d, sql, parentID)
}

func (r *repositoryImpl) IDsWhere(ctx context.Context, table, column string, value int64) ([]int64, error) {
	var ids []int64
	sql := fmt.Sprintf("SELECT id FROM %s WHERE %s = ?", quote(table), quote(column))
	if err := r.db.WithContext(ctx).Raw(sql, value).Scan(&ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *repositoryImpl) DeleteWhere(ctx context.Context, table, column string, values []int64) (int64, error) {
	if len(values) == 0 {
		return 0, nil
	}
	sql := fmt.Sprintf("DELETE FROM %s WHERE %s IN ?", quote(table), quote(column))
	result := r.db.WithContext(ctx).Exec(sql, values)
	return result.RowsAffected, result.Error
}
