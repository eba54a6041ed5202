package datatable

// Expansion tracks which single row, by entity ID, currently shows its
// drawer. At most one row is expanded at a time. Expansion is purely a
// display concern and never performs I/O.
type Expansion struct {
	id string
}

// Toggle collapses the row when it is already expanded, otherwise expands
// it, implicitly collapsing whatever was expanded before.
func (e *Expansion) Toggle(id string) {
	if e.id == id {
		e.id = ""
		return
	}
	e.id = id
}

// Collapse resets to the initial state.
func (e *Expansion) Collapse() {
	e.id = ""
}

// ExpandedID returns the expanded row's ID, if any.
func (e *Expansion) ExpandedID() (string, bool) {
	return e.id, e.id != ""
}

// IsExpanded reports whether the given row is the expanded one.
func (e *Expansion) IsExpanded(id string) bool {
	return id != "" && e.id == id
}
