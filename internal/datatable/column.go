package datatable

import (
	"fmt"
	"strings"
)

// Entity is anything presentable as a table row. The table never inspects
// entity fields directly, only through declared cell renderers, and uses
// EntityID as the stable render key.
type Entity interface {
	EntityID() string
}

// Visibility controls where a column renders relative to the layout mode.
type Visibility int

const (
	// Always renders inline in both layout modes.
	Always Visibility = iota
	// WideOnly renders inline when wide and moves into the expansion
	// drawer when narrow.
	WideOnly
	// NarrowOnly renders inline only when narrow.
	NarrowOnly
)

// Column describes a single column for entity type E.
type Column[E Entity] struct {
	Key        string
	Title      string
	Visibility Visibility
	Cell       func(E) string
}

// Columns is an ordered column descriptor set.
type Columns[E Entity] []Column[E]

// Validate rejects descriptor sets with empty or duplicate keys or missing
// cell renderers. A bad descriptor set is a programming error in the caller,
// so construction fails instead of rendering degraded output.
func (cs Columns[E]) Validate() error {
	seen := make(map[string]struct{}, len(cs))
	for i, c := range cs {
		key := strings.TrimSpace(c.Key)
		if key == "" {
			return fmt.Errorf("column %d has an empty key", i)
		}
		if _, dup := seen[key]; dup {
			return fmt.Errorf("duplicate column key %q", key)
		}
		seen[key] = struct{}{}
		if c.Cell == nil {
			return fmt.Errorf("column %q has no cell renderer", key)
		}
	}
	return nil
}
