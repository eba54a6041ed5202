package datatable

import (
	"context"
	"errors"
	"testing"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"
)

type commitRecorder struct {
	calls [][]string
	err   error
}

func (c *commitRecorder) commit(ids []string) error {
	c.calls = append(c.calls, ids)
	return c.err
}

func newSortableEndpoints(t *testing.T, rec *commitRecorder, opts ...SortableOption[endpoint]) *Sortable[endpoint] {
	t.Helper()
	m := newEndpointTable(t)
	m.SetEntities(sampleEndpoints(), 4)
	resize(m, 120)
	return NewSortable(m, rec.commit, opts...)
}

func order(s *Sortable[endpoint]) []string {
	return s.currentOrder()
}

// dragAfter grabs the row at fromIndex and moves it down `steps` rows,
// returning the drop command without executing it.
func dragAfter(s *Sortable[endpoint], fromIndex, steps int) tea.Cmd {
	s.cursor = fromIndex
	_, _ = s.Update(keyRune('g'))
	for i := 0; i < steps; i++ {
		_, _ = s.Update(tea.KeyMsg{Type: tea.KeyDown})
	}
	_, cmd := s.Update(keyRune('g'))
	return cmd
}

func TestDragPreviewOrder(t *testing.T) {
	rec := &commitRecorder{}
	s := newSortableEndpoints(t, rec)

	s.cursor = 0
	_, _ = s.Update(keyRune('g'))
	require.Equal(t, []string{"a", "b", "c", "d"}, s.drag.OriginalOrder(),
		"the rollback baseline is the order captured at grab time")
	_, _ = s.Update(tea.KeyMsg{Type: tea.KeyDown})
	_, _ = s.Update(tea.KeyMsg{Type: tea.KeyDown})
	_, cmd := s.Update(keyRune('g'))

	require.Equal(t, []string{"b", "c", "a", "d"}, order(s),
		"the preview order applies optimistically before the commit settles")
	require.NotNil(t, cmd)
	require.True(t, s.committing)

	executeCmd(t, s, cmd)
	require.False(t, s.committing)
	require.Equal(t, [][]string{{"b", "c", "a", "d"}}, rec.calls)
	require.Equal(t, statusSuccess, s.statusKind)
}

func TestDragCommitFailureRollsBack(t *testing.T) {
	rec := &commitRecorder{err: errors.New("priority update rejected")}
	s := newSortableEndpoints(t, rec)

	cmd := dragAfter(s, 0, 2)
	executeCmd(t, s, cmd)

	require.Equal(t, []string{"a", "b", "c", "d"}, order(s),
		"a rejected commit restores the order captured at drag start")
	require.Equal(t, statusError, s.statusKind)
	require.Contains(t, s.status, "priority update rejected")
}

func TestDragSuccessBecomesNewBaseline(t *testing.T) {
	rec := &commitRecorder{}
	s := newSortableEndpoints(t, rec)

	executeCmd(t, s, dragAfter(s, 0, 2))
	require.Equal(t, []string{"b", "c", "a", "d"}, order(s))

	// A cancelled drag now falls back to the committed order, not the
	// original one.
	s.cursor = 0
	_, _ = s.Update(keyRune('g'))
	_, _ = s.Update(tea.KeyMsg{Type: tea.KeyDown})
	_, _ = s.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.Equal(t, []string{"b", "c", "a", "d"}, order(s))
}

func TestDropWithoutMovementDoesNotCommit(t *testing.T) {
	rec := &commitRecorder{}
	s := newSortableEndpoints(t, rec)

	cmd := dragAfter(s, 1, 0)
	require.Nil(t, cmd)
	require.Empty(t, rec.calls)
	require.False(t, s.committing)
}

func TestGrabRefusedWhileCommitInFlight(t *testing.T) {
	rec := &commitRecorder{}
	s := newSortableEndpoints(t, rec)

	// Drop but do not deliver the result yet: the commit stays in flight.
	cmd := dragAfter(s, 0, 1)
	require.NotNil(t, cmd)
	require.True(t, s.committing)

	s.cursor = 2
	_, _ = s.Update(keyRune('g'))
	require.False(t, s.drag.Active(), "dragging is disabled while a commit is in flight")

	executeCmd(t, s, cmd)
	require.False(t, s.committing)

	_, _ = s.Update(keyRune('g'))
	require.True(t, s.drag.Active())
}

func TestStaleReorderResultIgnored(t *testing.T) {
	rec := &commitRecorder{}
	s := newSortableEndpoints(t, rec)

	executeCmd(t, s, dragAfter(s, 0, 1))
	settled := order(s)

	_, _ = s.Update(reorderResultMsg{seq: s.commitSeq - 1, err: errors.New("late failure")})
	require.Equal(t, settled, order(s), "a superseded commit result must not roll anything back")
	require.NotEqual(t, statusError, s.statusKind)
}

func TestMouseDragReorders(t *testing.T) {
	rec := &commitRecorder{}
	s := newSortableEndpoints(t, rec)
	s.View()

	press := tea.MouseMsg{
		X: 4, Y: s.spans[0].y,
		Action: tea.MouseActionPress, Button: tea.MouseButtonLeft,
	}
	_, _ = s.Update(press)
	require.False(t, s.drag.Active(), "a press alone is still a click")

	_, _ = s.Update(tea.MouseMsg{X: 4, Y: s.spans[2].y, Action: tea.MouseActionMotion})
	require.True(t, s.drag.Active())
	require.Equal(t, []string{"b", "c", "a", "d"}, order(s))

	_, cmd := s.Update(tea.MouseMsg{
		X: 4, Y: s.spans[2].y,
		Action: tea.MouseActionRelease, Button: tea.MouseButtonLeft,
	})
	require.NotNil(t, cmd)
	executeCmd(t, s, cmd)
	require.Equal(t, [][]string{{"b", "c", "a", "d"}}, rec.calls)
}

func TestMouseClickWithoutMotionFallsThrough(t *testing.T) {
	rec := &commitRecorder{}
	var activated []string
	m := newEndpointTable(t, WithCallbacks(Callbacks[endpoint]{
		OnRowActivate: func(e endpoint) tea.Cmd {
			activated = append(activated, e.id)
			return nil
		},
	}))
	m.SetEntities(sampleEndpoints(), 4)
	resize(m, 120)
	s := NewSortable(m, rec.commit)
	s.View()

	click := func(action tea.MouseAction) tea.MouseMsg {
		return tea.MouseMsg{X: 4, Y: s.spans[1].y, Action: action, Button: tea.MouseButtonLeft}
	}
	_, _ = s.Update(click(tea.MouseActionPress))
	_, _ = s.Update(click(tea.MouseActionRelease))

	require.Equal(t, []string{"b"}, activated)
	require.Empty(t, rec.calls)
}

func TestDuplicateRefreshesFromLoader(t *testing.T) {
	rec := &commitRecorder{}
	entities := sampleEndpoints()
	loads := 0
	m := newEndpointTable(t, WithLoader[endpoint](func(_ context.Context) ([]endpoint, int, error) {
		loads++
		return entities, len(entities), nil
	}, ""))
	s := NewSortable(m, rec.commit, WithDuplicate[endpoint](func(e endpoint) error {
		copied := e
		copied.id = e.id + "-copy"
		entities = append(append([]endpoint{}, entities...), copied)
		return nil
	}))
	executeCmd(t, s, m.loadCmd())
	require.Equal(t, 1, loads)

	s.cursor = 0
	_, cmd := s.Update(keyRune('D'))
	require.NotNil(t, cmd)
	executeCmd(t, s, cmd)

	require.Equal(t, 2, loads, "a confirmed duplicate refetches the list")
	require.Len(t, s.Entities(), 5)
	require.Equal(t, "a-copy", s.Entities()[4].id)
}

func TestCustomSortKeyMap(t *testing.T) {
	rec := &commitRecorder{}
	km := DefaultSortKeyMap()
	km.Grab = key.NewBinding(key.WithKeys("r"))
	s := newSortableEndpoints(t, rec, WithSortKeyMap[endpoint](km))

	_, _ = s.Update(keyRune('g'))
	require.False(t, s.drag.Active(), "the default grab key no longer applies once rebound")

	_, _ = s.Update(keyRune('r'))
	require.True(t, s.drag.Active())
}

func TestDuplicateAction(t *testing.T) {
	rec := &commitRecorder{}
	duplicated := []string{}
	s := newSortableEndpoints(t, rec, WithDuplicate[endpoint](func(e endpoint) error {
		duplicated = append(duplicated, e.id)
		return nil
	}))

	s.cursor = 1
	_, cmd := s.Update(keyRune('D'))
	require.NotNil(t, cmd)
	executeCmd(t, s, cmd)
	require.Equal(t, []string{"b"}, duplicated)
	require.Equal(t, statusSuccess, s.statusKind)
}
