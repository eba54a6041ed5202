package datatable

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/meshguard/panelctl/internal/theme"
)

type endpoint struct {
	id     string
	remark string
	addr   string
	sni    string
}

func (e endpoint) EntityID() string { return e.id }

func endpointColumns() Columns[endpoint] {
	return Columns[endpoint]{
		{Key: "remark", Title: "Remark", Cell: func(e endpoint) string { return e.remark }},
		{Key: "address", Title: "Address", Cell: func(e endpoint) string { return e.addr }},
		{Key: "sni", Title: "SNI", Visibility: WideOnly, Cell: func(e endpoint) string { return e.sni }},
	}
}

func sampleEndpoints() []endpoint {
	return []endpoint{
		{id: "a", remark: "alpha", addr: "10.0.0.1", sni: "a.example.com"},
		{id: "b", remark: "beta", addr: "10.0.0.2", sni: "b.example.com"},
		{id: "c", remark: "gamma", addr: "10.0.0.3", sni: "c.example.com"},
		{id: "d", remark: "delta", addr: "10.0.0.4", sni: "d.example.com"},
	}
}

func newEndpointTable(t *testing.T, opts ...Option[endpoint]) *Model[endpoint] {
	t.Helper()
	m, err := New(endpointColumns(), opts...)
	require.NoError(t, err)
	return m
}

// executeCmd drains a command queue the way the bubbletea runtime would,
// feeding every produced message back into the model.
func executeCmd(t *testing.T, model tea.Model, cmd tea.Cmd) {
	t.Helper()
	queue := []tea.Cmd{cmd}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if current == nil {
			continue
		}
		msg := current()
		switch m := msg.(type) {
		case tea.BatchMsg:
			queue = append(queue, []tea.Cmd(m)...)
			continue
		case nil:
			continue
		}
		_, next := model.Update(msg)
		if next != nil {
			queue = append(queue, next)
		}
	}
}

func keyRune(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func resize(m tea.Model, width int) {
	_, _ = m.Update(tea.WindowSizeMsg{Width: width, Height: 24})
}

func TestColumnsValidate(t *testing.T) {
	cols := endpointColumns()
	require.NoError(t, cols.Validate())

	dup := append(Columns[endpoint]{}, cols...)
	dup = append(dup, Column[endpoint]{Key: "remark", Title: "Again", Cell: cols[0].Cell})
	require.Error(t, dup.Validate())

	_, err := New(Columns[endpoint]{{Key: "", Title: "Bad", Cell: cols[0].Cell}})
	require.Error(t, err)

	_, err = New(Columns[endpoint]{{Key: "x", Title: "NoCell"}})
	require.Error(t, err)
}

func TestRowsPreserveOrderAndCount(t *testing.T) {
	m := newEndpointTable(t)
	entities := sampleEndpoints()
	m.SetEntities(entities, len(entities))

	rows := m.Rows()
	require.Len(t, rows, len(entities))
	for i, row := range rows {
		require.Equal(t, entities[i].id, row.ID)
		require.Equal(t, entities[i].remark, row.Cells[0])
	}
}

func TestRowsMemoized(t *testing.T) {
	m := newEndpointTable(t)
	entities := sampleEndpoints()
	m.SetEntities(entities, len(entities))

	first := m.Rows()
	second := m.Rows()
	require.Len(t, first, 4)
	require.Same(t, &first[0], &second[0], "re-deriving from the same input must reuse the built rows")

	m.SetEntities(sampleEndpoints(), 4)
	third := m.Rows()
	require.NotSame(t, &first[0], &third[0])
}

func TestExpansionExclusive(t *testing.T) {
	var e Expansion

	e.Toggle("a")
	require.True(t, e.IsExpanded("a"))

	e.Toggle("b")
	require.True(t, e.IsExpanded("b"))
	require.False(t, e.IsExpanded("a"), "expanding one row must collapse the other")

	e.Toggle("b")
	_, expanded := e.ExpandedID()
	require.False(t, expanded)
}

func TestLayoutColumnSplit(t *testing.T) {
	cols := endpointColumns()

	wide := InlineColumns(cols, Wide)
	require.Len(t, wide, 3)
	require.Empty(t, DrawerColumns(cols, Wide))
	require.False(t, Wide.HasToggleColumn())

	narrow := InlineColumns(cols, Narrow)
	require.Len(t, narrow, 2)
	drawer := DrawerColumns(cols, Narrow)
	require.Len(t, drawer, 1)
	require.Equal(t, "sni", drawer[0].Key)
	require.True(t, Narrow.HasToggleColumn())
}

func TestLoadingRendersSinglePlaceholder(t *testing.T) {
	m := newEndpointTable(t)
	m.SetEntities(sampleEndpoints(), 4)
	m.loading = true
	resize(m, 120)

	view := m.View()
	require.Equal(t, 1, strings.Count(view, "Loading"))
	require.NotContains(t, view, "alpha", "stale rows must not render under the loading placeholder")
}

func TestEmptyRendersSinglePlaceholder(t *testing.T) {
	m := newEndpointTable(t, WithEmptyLabel[endpoint]("No hosts found"))
	m.SetEntities(nil, 0)
	resize(m, 120)

	view := m.View()
	require.Equal(t, 1, strings.Count(view, "No hosts found"))
}

func TestPaletteResolution(t *testing.T) {
	ambient, ok := theme.Get("guard-light")
	require.True(t, ok)
	ctx := theme.ContextWithPalette(context.Background(), ambient)

	m := newEndpointTable(t, WithContext[endpoint](ctx))
	require.Equal(t, "guard-light", m.palette.Name, "palette comes from the context by default")

	override, ok := theme.Get("guard-dark")
	require.True(t, ok)
	m = newEndpointTable(t, WithContext[endpoint](ctx), WithPalette[endpoint](override))
	require.Equal(t, "guard-dark", m.palette.Name, "an explicit palette beats the context one")
}

func TestCustomKeyMap(t *testing.T) {
	km := DefaultKeyMap()
	km.Toggle = key.NewBinding(key.WithKeys("e"))

	m := newEndpointTable(t, WithKeyMap[endpoint](km))
	m.SetEntities(sampleEndpoints(), 4)
	resize(m, 40)

	_, _ = m.Update(keyRune('e'))
	require.True(t, m.Expanded("a"))

	_, _ = m.Update(keyRune(' '))
	require.True(t, m.Expanded("a"), "the default binding no longer applies once rebound")
}

func TestCustomBreakpoint(t *testing.T) {
	m := newEndpointTable(t, WithNarrowBelow[endpoint](100))
	m.SetEntities(sampleEndpoints(), 4)

	resize(m, 90)
	require.Equal(t, Narrow, m.Mode())

	resize(m, 100)
	require.Equal(t, Wide, m.Mode())
}

func TestBreakpointFlipKeepsExpansion(t *testing.T) {
	m := newEndpointTable(t)
	m.SetEntities(sampleEndpoints(), 4)
	resize(m, 40)
	require.Equal(t, Narrow, m.Mode())

	_, _ = m.Update(keyRune(' '))
	require.True(t, m.Expanded("a"))
	require.Contains(t, m.View(), "a.example.com", "drawer shows deferred columns when narrow")

	resize(m, 120)
	require.Equal(t, Wide, m.Mode())
	require.True(t, m.Expanded("a"), "flipping wide must not clear expansion")

	resize(m, 40)
	require.Contains(t, m.View(), "SNI:", "flipping back re-reveals the drawer without re-toggling")
}

func TestRowClickActivatesWhenWide(t *testing.T) {
	var activated []string
	m := newEndpointTable(t, WithCallbacks(Callbacks[endpoint]{
		OnRowActivate: func(e endpoint) tea.Cmd {
			activated = append(activated, e.id)
			return nil
		},
	}))
	m.SetEntities(sampleEndpoints(), 4)
	resize(m, 120)
	m.View()

	require.NotEmpty(t, m.spans)
	_, _ = m.Update(tea.MouseMsg{
		X: 1, Y: m.spans[1].y,
		Action: tea.MouseActionPress, Button: tea.MouseButtonLeft,
	})
	require.Equal(t, []string{"b"}, activated)
	require.False(t, m.Expanded("b"))
}

func TestRowClickTogglesWhenNarrow(t *testing.T) {
	var activated []string
	m := newEndpointTable(t, WithCallbacks(Callbacks[endpoint]{
		OnRowActivate: func(e endpoint) tea.Cmd {
			activated = append(activated, e.id)
			return nil
		},
	}))
	m.SetEntities(sampleEndpoints(), 4)
	resize(m, 40)
	m.View()

	click := tea.MouseMsg{
		X: 10, Y: m.spans[2].y,
		Action: tea.MouseActionPress, Button: tea.MouseButtonLeft,
	}
	_, _ = m.Update(click)
	require.True(t, m.Expanded("c"))
	require.Empty(t, activated, "narrow row clicks expand instead of activating")
}

func TestChevronClickAlwaysTogglesOnly(t *testing.T) {
	var activated []string
	m := newEndpointTable(t, WithCallbacks(Callbacks[endpoint]{
		OnRowActivate: func(e endpoint) tea.Cmd {
			activated = append(activated, e.id)
			return nil
		},
	}))
	m.SetEntities(sampleEndpoints(), 4)
	resize(m, 40)
	m.View()

	_, _ = m.Update(tea.MouseMsg{
		X: 0, Y: m.spans[0].y,
		Action: tea.MouseActionPress, Button: tea.MouseButtonLeft,
	})
	require.True(t, m.Expanded("a"))
	require.Empty(t, activated)
}

func TestActionZoneClickNeverActivates(t *testing.T) {
	var activated, menued []string
	m := newEndpointTable(t, WithCallbacks(Callbacks[endpoint]{
		OnRowActivate: func(e endpoint) tea.Cmd {
			activated = append(activated, e.id)
			return nil
		},
		OnRowMenu: func(e endpoint) tea.Cmd {
			menued = append(menued, e.id)
			return nil
		},
	}))
	m.SetEntities(sampleEndpoints(), 4)
	resize(m, 120)
	m.View()

	require.Positive(t, m.actionStart)
	_, _ = m.Update(tea.MouseMsg{
		X: m.actionStart + 1, Y: m.spans[0].y,
		Action: tea.MouseActionPress, Button: tea.MouseButtonLeft,
	})
	require.Equal(t, []string{"a"}, menued)
	require.Empty(t, activated, "the action zone claims the click outright")
}

func TestDeleteIsTwoPhase(t *testing.T) {
	deleted := 0
	m := newEndpointTable(t, WithCallbacks(Callbacks[endpoint]{
		OnDeleteConfirm: func(e endpoint) error {
			deleted++
			return nil
		},
	}))
	m.SetEntities(sampleEndpoints(), 4)
	resize(m, 120)

	_, _ = m.Update(keyRune('x'))
	require.Equal(t, 0, deleted, "arming the confirmation must not delete")
	require.Equal(t, "a", m.pendingDeleteID)

	_, cmd := m.Update(keyRune('y'))
	require.NotNil(t, cmd)
	executeCmd(t, m, cmd)

	require.Equal(t, 1, deleted)
	require.Empty(t, m.pendingDeleteID)
	require.Len(t, m.Entities(), 3)
	require.Equal(t, "b", m.Entities()[0].id)
}

func TestDeleteFailureKeepsConfirmationOpen(t *testing.T) {
	m := newEndpointTable(t, WithCallbacks(Callbacks[endpoint]{
		OnDeleteConfirm: func(e endpoint) error {
			return errors.New("forbidden")
		},
	}))
	m.SetEntities(sampleEndpoints(), 4)

	_, _ = m.Update(keyRune('x'))
	_, cmd := m.Update(keyRune('y'))
	executeCmd(t, m, cmd)

	require.Equal(t, "a", m.pendingDeleteID, "a rejected delete keeps the confirmation armed")
	require.Len(t, m.Entities(), 4)
	require.Equal(t, statusError, m.statusKind)
	require.Contains(t, m.status, "forbidden")

	_, _ = m.Update(keyRune('n'))
	require.Empty(t, m.pendingDeleteID)
}

func TestStaleMutationResultIgnored(t *testing.T) {
	m := newEndpointTable(t)
	m.SetEntities(sampleEndpoints(), 4)
	stale := mutationResultMsg{generation: m.generation, kind: mutationDelete, removedID: "a"}

	// Replacing the baseline supersedes the in-flight result.
	m.SetEntities(sampleEndpoints(), 4)
	_, _ = m.Update(stale)

	require.Len(t, m.Entities(), 4, "late results from an old baseline are dropped")
	require.Empty(t, m.status)
}

func TestToggleStatusRefreshesFromLoader(t *testing.T) {
	loads := 0
	entities := sampleEndpoints()
	m := newEndpointTable(t,
		WithLoader[endpoint](func(_ context.Context) ([]endpoint, int, error) {
			loads++
			return entities, len(entities), nil
		}, ""),
		WithCallbacks(Callbacks[endpoint]{
			OnToggleStatus: func(e endpoint) error {
				// The server applies the change; the next fetch reflects it.
				entities = append([]endpoint{}, entities...)
				entities[0].remark = "alpha (disabled)"
				return nil
			},
		}))
	executeCmd(t, m, m.loadCmd())
	require.Equal(t, 1, loads)

	_, cmd := m.Update(keyRune('t'))
	require.NotNil(t, cmd)
	executeCmd(t, m, cmd)

	require.Equal(t, 2, loads, "a confirmed status change refetches the list")
	require.Equal(t, "alpha (disabled)", m.Entities()[0].remark)
	require.Equal(t, statusSuccess, m.statusKind, "the success message survives the reload")
}

func TestLoaderPopulatesRows(t *testing.T) {
	m := newEndpointTable(t, WithLoader[endpoint](func(_ context.Context) ([]endpoint, int, error) {
		return sampleEndpoints(), 9, nil
	}, "Loading hosts"))

	require.True(t, m.loading)
	executeCmd(t, m, m.loadCmd())
	require.False(t, m.loading)
	require.Len(t, m.Entities(), 4)
	require.Equal(t, 9, m.total)
}
