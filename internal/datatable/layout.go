package datatable

// Mode is the binary layout state derived from terminal width.
type Mode int

const (
	Wide Mode = iota
	Narrow
)

func (m Mode) String() string {
	if m == Narrow {
		return "narrow"
	}
	return "wide"
}

// HasToggleColumn reports whether the expansion toggle affordance column is
// present. It exists only when narrow; when wide every column is already
// inline and there is nothing to reveal.
func (m Mode) HasToggleColumn() bool {
	return m == Narrow
}

// DefaultNarrowBelow is the terminal width under which the table switches
// to the narrow layout.
const DefaultNarrowBelow = 80

// Layout decides the mode for a given terminal width.
type Layout struct {
	NarrowBelow int
}

func (l Layout) Mode(width int) Mode {
	threshold := l.NarrowBelow
	if threshold <= 0 {
		threshold = DefaultNarrowBelow
	}
	if width > 0 && width < threshold {
		return Narrow
	}
	return Wide
}

// InlineColumns returns the columns rendered in the table body for the
// given mode, preserving descriptor order.
func InlineColumns[E Entity](cs Columns[E], mode Mode) Columns[E] {
	out := make(Columns[E], 0, len(cs))
	for _, c := range cs {
		switch c.Visibility {
		case Always:
			out = append(out, c)
		case WideOnly:
			if mode == Wide {
				out = append(out, c)
			}
		case NarrowOnly:
			if mode == Narrow {
				out = append(out, c)
			}
		}
	}
	return out
}

// DrawerColumns returns the columns deferred to the expansion drawer. Only
// the narrow mode has a drawer; when wide the result is empty even if a row
// is still expanded, which suppresses the drawer without clearing the
// expansion state.
func DrawerColumns[E Entity](cs Columns[E], mode Mode) Columns[E] {
	if mode != Narrow {
		return nil
	}
	out := make(Columns[E], 0, len(cs))
	for _, c := range cs {
		if c.Visibility == WideOnly {
			out = append(out, c)
		}
	}
	return out
}
