package datatable

// Row is one derived row view: the raw entity, its stable identity, and one
// rendered cell per declared column in descriptor order. Cells for every
// declared column are produced up front so drawer columns reuse the same
// values without re-running accessors.
type Row[E Entity] struct {
	Entity E
	ID     string
	Cells  []string
}

// rowBuilder memoizes row derivation. Re-deriving from referentially-equal
// inputs returns the previously built slice so downstream render work can
// rely on row identity.
type rowBuilder[E Entity] struct {
	entities []E
	columns  Columns[E]
	rows     []Row[E]
}

func (b *rowBuilder[E]) build(entities []E, columns Columns[E]) []Row[E] {
	if b.rows != nil && sameSlice(entities, b.entities) && sameSlice(columns, b.columns) {
		return b.rows
	}

	rows := make([]Row[E], 0, len(entities))
	for _, entity := range entities {
		cells := make([]string, len(columns))
		for i, col := range columns {
			// A panicking accessor is a programming error in the
			// descriptor set, not something to recover from here.
			cells[i] = col.Cell(entity)
		}
		rows = append(rows, Row[E]{
			Entity: entity,
			ID:     entity.EntityID(),
			Cells:  cells,
		})
	}

	b.entities = entities
	b.columns = columns
	b.rows = rows
	return rows
}

func (b *rowBuilder[E]) invalidate() {
	b.rows = nil
}

// sameSlice reports referential equality: same backing array, same length.
func sameSlice[T any](a, b []T) bool {
	if len(a) != len(b) {
		return false
	}
	if len(a) == 0 {
		return true
	}
	return &a[0] == &b[0]
}
