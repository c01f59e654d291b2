package catalog

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Node is one row of a taxonomy or grouping entity.
type Node struct {
	ID        int64
	Name      string
	ImageURL  *string
	ParentID  *int64
	Extra     map[string]*string
	CreatedAt time.Time

	desc *Descriptor
}

// MarshalJSON renders the row with the entity's own column names,
// e.g. "image" for stores and "quick_pick_id" for quick pick groups.
func (n *Node) MarshalJSON() ([]byte, error) {
	imageColumn := defaultImageColumn
	if n.desc != nil {
		imageColumn = n.desc.ImageColumn
	}
	out := map[string]any{
		"id":         n.ID,
		nameField:    n.Name,
		imageColumn:  n.ImageURL,
		"created_at": n.CreatedAt,
	}
	if n.desc != nil && n.desc.Parent != nil {
		out[n.desc.Parent.FKColumn] = n.ParentID
	}
	for k, v := range n.Extra {
		out[k] = v
	}
	return json.Marshal(out)
}

func nodeFromRow(d *Descriptor, row map[string]any) (*Node, error) {
	id, err := toInt64(row["id"])
	if err != nil {
		return nil, fmt.Errorf("%s.id: %w", d.Table, err)
	}
	n := &Node{
		ID:        id,
		Name:      toString(row[nameField]),
		ImageURL:  toStringPtr(row[d.ImageColumn]),
		CreatedAt: toTime(row["created_at"]),
		desc:      d,
	}
	if d.Parent != nil {
		if raw := row[d.Parent.FKColumn]; raw != nil {
			parentID, err := toInt64(raw)
			if err != nil {
				return nil, fmt.Errorf("%s.%s: %w", d.Table, d.Parent.FKColumn, err)
			}
			n.ParentID = &parentID
		}
	}
	if len(d.ExtraFields) > 0 {
		n.Extra = make(map[string]*string, len(d.ExtraFields))
		for _, field := range d.ExtraFields {
			n.Extra[field] = toStringPtr(row[field])
		}
	}
	return n, nil
}

func nodesFromRows(d *Descriptor, rows []map[string]any) ([]*Node, error) {
	nodes := make([]*Node, 0, len(rows))
	for _, row := range rows {
		n, err := nodeFromRow(d, row)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
	return nodes, nil
}

func toInt64(v any) (int64, error) {
	switch t := v.(type) {
	case int64:
		return t, nil
	case int32:
		return int64(t), nil
	case int:
		return int64(t), nil
	case uint64:
		return int64(t), nil
	case float64:
		return int64(t), nil
	case []byte:
		return strconv.ParseInt(string(t), 10, 64)
	case string:
		return strconv.ParseInt(t, 10, 64)
	case nil:
		return 0, fmt.Errorf("missing value")
	default:
		return 0, fmt.Errorf("unexpected type %T", v)
	}
}

func toString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []byte:
		return string(t)
	default:
		return fmt.Sprint(t)
	}
}

func toStringPtr(v any) *string {
	if v == nil {
		return nil
	}
	s := toString(v)
	return &s
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
}

func toTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t.UTC()
	case string:
		return parseTime(t)
	case []byte:
		return parseTime(string(t))
	}
	return time.Time{}
}

func parseTime(s string) time.Time {
	for _, layout := range timeLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			return parsed.UTC()
		}
	}
	return time.Time{}
}
