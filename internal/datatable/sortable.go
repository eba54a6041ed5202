package datatable

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	cerr "github.com/meshguard/panelctl/internal/err"
)

// ReorderFunc persists a complete ordering of entity IDs. It runs inside a
// tea command, off the update loop.
type ReorderFunc func(ids []string) error

// DragState tracks one in-progress drag. It exists only between drag start
// and drop or cancel.
type DragState struct {
	active        bool
	draggedID     string
	overID        string
	originalOrder []string
}

// Active reports whether a drag is in progress.
func (d DragState) Active() bool { return d.active }

// OriginalOrder returns the id sequence captured at drag start.
func (d DragState) OriginalOrder() []string { return d.originalOrder }

type reorderResultMsg struct {
	seq uint64
	ids []string
	err error
}

// SortKeyMap extends the table bindings with reorder controls.
type SortKeyMap struct {
	Grab       key.Binding
	CancelDrag key.Binding
	Duplicate  key.Binding
}

func DefaultSortKeyMap() SortKeyMap {
	return SortKeyMap{
		Grab:       key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "grab/drop")),
		CancelDrag: key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel drag")),
		Duplicate:  key.NewBinding(key.WithKeys("D"), key.WithHelp("D", "duplicate")),
	}
}

// Sortable is the list variant where row order has server-side meaning.
// Rows are reordered by grabbing (keyboard) or dragging (mouse); a drop
// applies the new order optimistically and commits it through ReorderFunc.
// At most one commit is in flight at a time, and new drags are refused
// until it settles.
type Sortable[E Entity] struct {
	*Model[E]

	commit      ReorderFunc
	onDuplicate func(entity E) error
	sortKeys    SortKeyMap

	drag       DragState
	committing bool
	// baseline holds the pre-drag order while a commit is in flight so a
	// rejected commit can roll back.
	baseline []string
	// commitSeq stamps each commit; a settled result with a stale stamp
	// belongs to a superseded instance state and is dropped.
	commitSeq uint64

	// mouse press bookkeeping: a press only becomes a drag once the
	// pointer moves to another row, otherwise it is a plain click.
	pressActive bool
	pressMsg    tea.MouseMsg
	pressIndex  int
}

// SortableOption configures a Sortable.
type SortableOption[E Entity] func(*Sortable[E])

func WithDuplicate[E Entity](run func(entity E) error) SortableOption[E] {
	return func(s *Sortable[E]) { s.onDuplicate = run }
}

func WithSortKeyMap[E Entity](km SortKeyMap) SortableOption[E] {
	return func(s *Sortable[E]) { s.sortKeys = km }
}

// NewSortable wraps a table model with reordering behavior.
func NewSortable[E Entity](model *Model[E], commit ReorderFunc, opts ...SortableOption[E]) *Sortable[E] {
	s := &Sortable[E]{
		Model:    model,
		commit:   commit,
		sortKeys: DefaultSortKeyMap(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Sortable[E]) Init() tea.Cmd {
	return s.Model.Init()
}

func (s *Sortable[E]) Update(msg tea.Msg) (tea.Model, tea.Cmd) { //nolint:ireturn
	switch msg := msg.(type) {
	case reorderResultMsg:
		s.applyReorderResult(msg)
		return s, nil

	case tea.KeyMsg:
		if handled, cmd := s.handleSortKey(msg); handled {
			return s, cmd
		}

	case tea.MouseMsg:
		if handled, cmd := s.handleSortMouse(msg); handled {
			return s, cmd
		}
		return s, nil
	}

	_, cmd := s.Model.Update(msg)
	return s, cmd
}

func (s *Sortable[E]) View() string {
	return s.Model.View()
}

func (s *Sortable[E]) handleSortKey(msg tea.KeyMsg) (bool, tea.Cmd) {
	if s.drag.active {
		switch {
		case key.Matches(msg, s.keys.Up):
			s.moveDragged(-1)
		case key.Matches(msg, s.keys.Down):
			s.moveDragged(1)
		case key.Matches(msg, s.sortKeys.Grab), key.Matches(msg, s.keys.Activate):
			return true, s.drop()
		case key.Matches(msg, s.sortKeys.CancelDrag):
			s.cancelDrag()
		}
		// Everything else is swallowed while dragging so row actions
		// cannot fire against a half-moved list.
		return true, nil
	}

	switch {
	case key.Matches(msg, s.sortKeys.Grab):
		s.startDragAtCursor()
		return true, nil
	case key.Matches(msg, s.sortKeys.Duplicate):
		if row, ok := s.cursorRow(); ok && s.onDuplicate != nil {
			return true, s.duplicateCmd(row)
		}
		return true, nil
	}
	return false, nil
}

func (s *Sortable[E]) handleSortMouse(msg tea.MouseMsg) (bool, tea.Cmd) {
	switch {
	case msg.Button == tea.MouseButtonLeft && msg.Action == tea.MouseActionPress:
		if index, ok := s.rowAt(msg.Y); ok {
			s.pressActive = true
			s.pressMsg = msg
			s.pressIndex = index
			return true, nil
		}
		return true, nil

	case msg.Action == tea.MouseActionMotion && s.pressActive:
		index, ok := s.rowAt(msg.Y)
		if !ok {
			return true, nil
		}
		if !s.drag.active {
			if index == s.pressIndex {
				return true, nil
			}
			s.startDragAt(s.pressIndex)
			if !s.drag.active {
				// refused (commit in flight)
				s.pressActive = false
				return true, nil
			}
		}
		s.dragOver(index)
		return true, nil

	case msg.Button == tea.MouseButtonLeft && msg.Action == tea.MouseActionRelease:
		if !s.pressActive {
			return true, nil
		}
		s.pressActive = false
		if s.drag.active {
			return true, s.drop()
		}
		// No motion happened: treat as a plain click and let the base
		// table route it (activation, toggle, zones).
		_, cmd := s.Model.handleMouse(s.pressMsg)
		return true, cmd
	}
	return false, nil
}

func (s *Sortable[E]) startDragAtCursor() {
	s.startDragAt(s.cursor)
}

func (s *Sortable[E]) startDragAt(index int) {
	if s.committing {
		s.setStatus(statusInfo, "reorder commit in progress, try again shortly")
		return
	}
	rows := s.Rows()
	if index < 0 || index >= len(rows) {
		return
	}
	s.cursor = index
	s.drag = DragState{
		active:        true,
		draggedID:     rows[index].ID,
		originalOrder: s.currentOrder(),
	}
	s.setStatus(statusInfo, "moving "+primaryCellValue(rows[index])+" (g to drop, esc to cancel)")
}

// moveDragged shifts the grabbed row by delta within a preview copy. The
// input entity slice is never mutated in place.
func (s *Sortable[E]) moveDragged(delta int) {
	from := s.indexOf(s.drag.draggedID)
	to := from + delta
	if from < 0 || to < 0 || to >= len(s.entities) {
		return
	}
	s.applyPreview(from, to)
}

func (s *Sortable[E]) dragOver(index int) {
	from := s.indexOf(s.drag.draggedID)
	if from < 0 || index < 0 || index >= len(s.entities) || index == from {
		return
	}
	s.drag.overID = s.entities[index].EntityID()
	s.applyPreview(from, index)
}

func (s *Sortable[E]) applyPreview(from, to int) {
	next := make([]E, 0, len(s.entities))
	next = append(next, s.entities...)
	moved := next[from]
	next = append(next[:from], next[from+1:]...)
	rest := make([]E, 0, len(next)+1)
	rest = append(rest, next[:to]...)
	rest = append(rest, moved)
	rest = append(rest, next[to:]...)
	s.SetEntities(rest, s.total)
	s.cursor = to
}

func (s *Sortable[E]) drop() tea.Cmd {
	order := s.currentOrder()
	original := s.drag.originalOrder
	s.drag = DragState{}

	if equalOrder(order, original) {
		s.clearStatus()
		return nil
	}

	// Optimistic: the preview order is already what the user sees. Keep
	// the pre-drag order around for rollback and gate further drags.
	s.baseline = original
	s.committing = true
	s.commitSeq++
	seq := s.commitSeq
	commit := s.commit
	s.setStatus(statusInfo, "saving order…")
	return func() tea.Msg {
		err := commit(order)
		return reorderResultMsg{seq: seq, ids: order, err: err}
	}
}

func (s *Sortable[E]) cancelDrag() {
	original := s.drag.originalOrder
	s.drag = DragState{}
	s.restoreOrder(original)
	s.clearStatus()
}

func (s *Sortable[E]) applyReorderResult(msg reorderResultMsg) {
	if msg.seq != s.commitSeq {
		// A newer commit superseded this one; its result already owns
		// the baseline.
		return
	}
	s.committing = false
	if msg.err != nil {
		s.restoreOrder(s.baseline)
		s.baseline = nil
		s.setStatus(statusError, "reorder failed: "+cerr.UserMessage(msg.err, "request rejected"))
		return
	}
	s.baseline = nil
	s.setStatus(statusSuccess, fmt.Sprintf("saved order of %d %ss", len(msg.ids), s.entityLabel))
}

func (s *Sortable[E]) restoreOrder(order []string) {
	if len(order) == 0 {
		return
	}
	byID := make(map[string]E, len(s.entities))
	for _, e := range s.entities {
		byID[e.EntityID()] = e
	}
	next := make([]E, 0, len(order))
	for _, id := range order {
		if e, ok := byID[id]; ok {
			next = append(next, e)
		}
	}
	s.SetEntities(next, s.total)
}

func (s *Sortable[E]) currentOrder() []string {
	order := make([]string, len(s.entities))
	for i, e := range s.entities {
		order[i] = e.EntityID()
	}
	return order
}

func (s *Sortable[E]) duplicateCmd(row Row[E]) tea.Cmd {
	generation := s.generation
	label := primaryCellValue(row)
	run := s.onDuplicate
	entity := row.Entity
	return func() tea.Msg {
		err := run(entity)
		return mutationResultMsg{
			generation: generation,
			kind:       mutationDuplicate,
			label:      label,
			err:        err,
		}
	}
}

func equalOrder(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
