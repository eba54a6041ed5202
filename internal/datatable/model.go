package datatable

import (
	"context"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/wordwrap"

	cerr "github.com/meshguard/panelctl/internal/err"
	"github.com/meshguard/panelctl/internal/iostreams"
	"github.com/meshguard/panelctl/internal/theme"
)

const (
	minColumnWidth = 4
	maxColumnWidth = 32

	chevronCollapsed = "▸"
	chevronExpanded  = "▾"
	actionGlyph      = "⋯"
)

// Loader fetches the entity list asynchronously. The int is the total match
// count before pagination, shown in the status area.
type Loader[E Entity] func(ctx context.Context) ([]E, int, error)

// Callbacks connect the table to its surrounding collaborators. All
// mutation funcs run off the UI loop inside tea commands; their errors are
// surfaced as status messages and the optimistic UI state reconciled.
type Callbacks[E Entity] struct {
	// OnRowActivate fires when a row is activated (enter, or a row click
	// in the wide layout).
	OnRowActivate func(entity E) tea.Cmd
	// OnRowMenu fires when the row's action zone is clicked or the menu
	// key is pressed. A click there never also activates the row.
	OnRowMenu func(entity E) tea.Cmd
	// OnToggleStatus flips the entity's enabled/disabled state.
	OnToggleStatus func(entity E) error
	// OnDeleteConfirm removes the entity. It runs only after the
	// explicit confirmation step.
	OnDeleteConfirm func(entity E) error
}

// KeyMap holds the key bindings for table interaction.
type KeyMap struct {
	Up       key.Binding
	Down     key.Binding
	Activate key.Binding
	Toggle   key.Binding
	Menu     key.Binding
	Status   key.Binding
	Delete   key.Binding
	Confirm  key.Binding
	Cancel   key.Binding
	CopyID   key.Binding
	Quit     key.Binding
}

// DefaultKeyMap returns the standard bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Activate: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
		Toggle:   key.NewBinding(key.WithKeys(" ", "right"), key.WithHelp("space", "expand")),
		Menu:     key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "actions")),
		Status:   key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "toggle status")),
		Delete:   key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "delete")),
		Confirm:  key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "confirm")),
		Cancel:   key.NewBinding(key.WithKeys("n", "esc"), key.WithHelp("n/esc", "cancel")),
		CopyID:   key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "copy id")),
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

type statusKind int

const (
	statusInfo statusKind = iota
	statusSuccess
	statusError
)

type loadedMsg[E Entity] struct {
	generation uint64
	items      []E
	total      int
	err        error
}

type mutationKind int

const (
	mutationToggleStatus mutationKind = iota
	mutationDelete
	mutationDuplicate
)

func (k mutationKind) verb() string {
	switch k {
	case mutationToggleStatus:
		return "status change"
	case mutationDelete:
		return "delete"
	case mutationDuplicate:
		return "duplicate"
	default:
		return "operation"
	}
}

type mutationResultMsg struct {
	generation uint64
	kind       mutationKind
	label      string
	removedID  string
	err        error
}

// NoticeMsg sets the table's status line from outside the model, typically
// from an OnRowActivate or OnRowMenu callback.
type NoticeMsg struct {
	Text  string
	IsErr bool
}

// Notice returns a command that surfaces text on the status line.
func Notice(text string) tea.Cmd {
	return func() tea.Msg { return NoticeMsg{Text: text} }
}

// rowSpan maps a rendered line range back to a row index for mouse
// hit-testing. Drawer lines belong to no span.
type rowSpan struct {
	index int
	y     int
}

// Option configures a Model.
type Option[E Entity] func(*Model[E])

func WithTitle[E Entity](title string) Option[E] {
	return func(m *Model[E]) { m.title = title }
}

func WithNarrowBelow[E Entity](width int) Option[E] {
	return func(m *Model[E]) { m.layout.NarrowBelow = width }
}

func WithCallbacks[E Entity](cb Callbacks[E]) Option[E] {
	return func(m *Model[E]) { m.callbacks = cb }
}

func WithLoader[E Entity](loader Loader[E], label string) Option[E] {
	return func(m *Model[E]) {
		m.loader = loader
		if label != "" {
			m.loadingLabel = label
		}
	}
}

func WithEmptyLabel[E Entity](label string) Option[E] {
	return func(m *Model[E]) { m.emptyLabel = label }
}

func WithContext[E Entity](ctx context.Context) Option[E] {
	return func(m *Model[E]) { m.ctx = ctx }
}

func WithPalette[E Entity](p theme.Palette) Option[E] {
	return func(m *Model[E]) { m.palette = p }
}

func WithKeyMap[E Entity](km KeyMap) Option[E] {
	return func(m *Model[E]) { m.keys = km }
}

// WithEntityLabel sets the singular noun used in status messages,
// e.g. "user" or "host".
func WithEntityLabel[E Entity](label string) Option[E] {
	return func(m *Model[E]) { m.entityLabel = label }
}

// Model renders an entity list as an interactive table. It owns the
// expansion and cursor state exclusively; the entity list is treated as
// immutable input and replaced wholesale on refresh.
type Model[E Entity] struct {
	columns Columns[E]
	layout  Layout
	keys    KeyMap
	palette theme.Palette

	ctx         context.Context
	title       string
	entityLabel string

	entities []E
	total    int
	builder  rowBuilder[E]

	loader       Loader[E]
	loading      bool
	loadingLabel string
	emptyLabel   string

	callbacks Callbacks[E]

	cursor    int
	expansion Expansion

	// generation advances whenever the entity baseline is replaced; late
	// async results carrying an older generation are dropped.
	generation uint64

	spinner spinner.Model

	status     string
	statusKind statusKind
	// keepStatus preserves the current status line across the next reload,
	// used when a confirmed mutation triggers a refetch.
	keepStatus bool

	pendingDeleteID    string
	pendingDeleteLabel string

	width  int
	height int

	// rebuilt on every View for mouse hit-testing
	spans       []rowSpan
	chevronCols int
	actionStart int
	quitting    bool
}

// New validates the descriptor set and builds a table model.
func New[E Entity](columns Columns[E], opts ...Option[E]) (*Model[E], error) {
	if err := columns.Validate(); err != nil {
		return nil, err
	}

	m := &Model[E]{
		columns:      columns,
		keys:         DefaultKeyMap(),
		ctx:          context.Background(),
		loadingLabel: "Loading",
		emptyLabel:   "No results",
		entityLabel:  "row",
		width:        DefaultNarrowBelow,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.palette.Name == "" {
		m.palette = theme.FromContext(m.ctx)
	}
	// Seed the size from the terminal so the first frame renders in the
	// right mode; bubbletea delivers a WindowSizeMsg shortly after anyway.
	if s, ok := m.ctx.Value(iostreams.StreamsKey).(*iostreams.IOStreams); ok {
		m.width, m.height = s.TerminalSize(m.width, m.height)
	}
	m.spinner = newSpinner(m.palette)
	if m.loader != nil {
		m.loading = true
	}
	return m, nil
}

func newSpinner(p theme.Palette) spinner.Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = p.ForegroundStyle(theme.ColorAccent)
	return s
}

// SetEntities replaces the entity baseline. Cursor is clamped, expansion
// for a row that no longer exists is dropped, and in-flight async results
// from the previous baseline are invalidated.
func (m *Model[E]) SetEntities(entities []E, total int) {
	m.entities = entities
	m.total = total
	m.generation++
	m.builder.invalidate()
	if m.cursor >= len(entities) {
		m.cursor = len(entities) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	if id, ok := m.expansion.ExpandedID(); ok && m.indexOf(id) < 0 {
		m.expansion.Collapse()
	}
}

// Entities returns the current baseline.
func (m *Model[E]) Entities() []E { return m.entities }

// Mode returns the active layout mode.
func (m *Model[E]) Mode() Mode { return m.layout.Mode(m.width) }

// Expanded reports whether the given row ID is expanded.
func (m *Model[E]) Expanded(id string) bool { return m.expansion.IsExpanded(id) }

// Rows derives the memoized row views.
func (m *Model[E]) Rows() []Row[E] {
	return m.builder.build(m.entities, m.columns)
}

func (m *Model[E]) indexOf(id string) int {
	for i, e := range m.entities {
		if e.EntityID() == id {
			return i
		}
	}
	return -1
}

func (m *Model[E]) Init() tea.Cmd {
	cmds := []tea.Cmd{m.spinner.Tick}
	if m.loader != nil {
		cmds = append(cmds, m.loadCmd())
	}
	return tea.Batch(cmds...)
}

func (m *Model[E]) loadCmd() tea.Cmd {
	generation := m.generation
	loader := m.loader
	ctx := m.ctx
	return func() tea.Msg {
		items, total, err := loader(ctx)
		return loadedMsg[E]{generation: generation, items: items, total: total, err: err}
	}
}

func (m *Model[E]) Update(msg tea.Msg) (tea.Model, tea.Cmd) { //nolint:ireturn
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		// Mode may flip here; expansion state is deliberately kept.
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case loadedMsg[E]:
		if msg.generation != m.generation {
			return m, nil
		}
		m.loading = false
		if msg.err != nil {
			m.keepStatus = false
			m.setStatus(statusError, cerr.UserMessage(msg.err, "failed to load "+m.entityLabel+"s"))
			return m, nil
		}
		m.SetEntities(msg.items, msg.total)
		if m.keepStatus {
			// The refresh was triggered by a confirmed mutation; its success
			// message outlives the reload.
			m.keepStatus = false
		} else {
			m.clearStatus()
		}
		return m, nil

	case NoticeMsg:
		kind := statusInfo
		if msg.IsErr {
			kind = statusError
		}
		m.setStatus(kind, msg.Text)
		return m, nil

	case mutationResultMsg:
		return m.applyMutationResult(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)
	}
	return m, nil
}

func (m *Model[E]) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Pending delete confirmation swallows everything except its own
	// confirm/cancel bindings.
	if m.pendingDeleteID != "" {
		switch {
		case key.Matches(msg, m.keys.Confirm):
			return m, m.deleteCmd()
		case key.Matches(msg, m.keys.Cancel):
			m.pendingDeleteID = ""
			m.pendingDeleteLabel = ""
			m.clearStatus()
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}

	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.entities)-1 {
			m.cursor++
		}

	case key.Matches(msg, m.keys.Toggle):
		if row, ok := m.cursorRow(); ok {
			m.expansion.Toggle(row.ID)
		}

	case key.Matches(msg, m.keys.Activate):
		if row, ok := m.cursorRow(); ok {
			return m, m.activateRow(row)
		}

	case key.Matches(msg, m.keys.Menu):
		if row, ok := m.cursorRow(); ok && m.callbacks.OnRowMenu != nil {
			return m, m.callbacks.OnRowMenu(row.Entity)
		}

	case key.Matches(msg, m.keys.Status):
		if row, ok := m.cursorRow(); ok {
			return m, m.toggleStatusCmd(row)
		}

	case key.Matches(msg, m.keys.Delete):
		if row, ok := m.cursorRow(); ok && m.callbacks.OnDeleteConfirm != nil {
			m.armDelete(row)
		}

	case key.Matches(msg, m.keys.CopyID):
		if row, ok := m.cursorRow(); ok {
			if err := clipboard.WriteAll(row.ID); err != nil {
				m.setStatus(statusError, "copy failed: "+err.Error())
			} else {
				m.setStatus(statusSuccess, fmt.Sprintf("copied %s id %s", m.entityLabel, row.ID))
			}
		}
	}
	return m, nil
}

// handleMouse routes clicks. Zone precedence matters: the toggle affordance
// and the action zone each claim the click outright so it never falls
// through to row activation.
func (m *Model[E]) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
		return m, nil
	}
	index, ok := m.rowAt(msg.Y)
	if !ok {
		return m, nil
	}
	rows := m.Rows()
	if index >= len(rows) {
		return m, nil
	}
	row := rows[index]
	m.cursor = index

	mode := m.Mode()
	if mode.HasToggleColumn() && msg.X < m.chevronCols {
		m.expansion.Toggle(row.ID)
		return m, nil
	}
	if m.callbacks.OnRowMenu != nil && m.actionStart > 0 && msg.X >= m.actionStart {
		return m, m.callbacks.OnRowMenu(row.Entity)
	}

	if mode == Narrow {
		// Narrow rows have no room for a dedicated affordance per cell,
		// so the row itself reveals the drawer.
		m.expansion.Toggle(row.ID)
		return m, nil
	}
	return m, m.activateRow(row)
}

func (m *Model[E]) activateRow(row Row[E]) tea.Cmd {
	if m.callbacks.OnRowActivate == nil {
		return nil
	}
	return m.callbacks.OnRowActivate(row.Entity)
}

func (m *Model[E]) cursorRow() (Row[E], bool) {
	rows := m.Rows()
	if m.loading || m.cursor < 0 || m.cursor >= len(rows) {
		var zero Row[E]
		return zero, false
	}
	return rows[m.cursor], true
}

func (m *Model[E]) rowAt(y int) (int, bool) {
	for _, span := range m.spans {
		if span.y == y {
			return span.index, true
		}
	}
	return 0, false
}

func (m *Model[E]) armDelete(row Row[E]) {
	m.pendingDeleteID = row.ID
	m.pendingDeleteLabel = primaryCellValue(row)
	m.setStatus(statusInfo,
		fmt.Sprintf("delete %s %q? press y to confirm, n to cancel", m.entityLabel, m.pendingDeleteLabel))
}

func (m *Model[E]) deleteCmd() tea.Cmd {
	index := m.indexOf(m.pendingDeleteID)
	if index < 0 || m.callbacks.OnDeleteConfirm == nil {
		m.pendingDeleteID = ""
		return nil
	}
	entity := m.entities[index]
	generation := m.generation
	label := m.pendingDeleteLabel
	id := m.pendingDeleteID
	run := m.callbacks.OnDeleteConfirm
	return func() tea.Msg {
		err := run(entity)
		return mutationResultMsg{
			generation: generation,
			kind:       mutationDelete,
			label:      label,
			removedID:  id,
			err:        err,
		}
	}
}

func (m *Model[E]) toggleStatusCmd(row Row[E]) tea.Cmd {
	if m.callbacks.OnToggleStatus == nil {
		return nil
	}
	generation := m.generation
	label := primaryCellValue(row)
	run := m.callbacks.OnToggleStatus
	entity := row.Entity
	return func() tea.Msg {
		err := run(entity)
		return mutationResultMsg{
			generation: generation,
			kind:       mutationToggleStatus,
			label:      label,
			err:        err,
		}
	}
}

func (m *Model[E]) applyMutationResult(msg mutationResultMsg) (tea.Model, tea.Cmd) {
	if msg.generation != m.generation {
		// The baseline this mutation was issued against is gone.
		return m, nil
	}
	if msg.err != nil {
		// A failed delete keeps the confirmation armed so the user can
		// retry or cancel explicitly.
		m.setStatus(statusError, fmt.Sprintf("%s failed: %s",
			msg.kind.verb(), cerr.UserMessage(msg.err, "request rejected")))
		return m, nil
	}

	m.setStatus(statusSuccess, fmt.Sprintf("%s %q: %s ok", m.entityLabel, msg.label, msg.kind.verb()))

	switch msg.kind {
	case mutationDelete:
		m.removeEntity(msg.removedID)
		m.pendingDeleteID = ""
		m.pendingDeleteLabel = ""
	case mutationToggleStatus, mutationDuplicate:
		// The server owns the outcome here (the new status value, where the
		// copy landed), so refetch instead of guessing at a local edit.
		if m.loader != nil {
			m.loading = true
			m.keepStatus = true
			return m, tea.Batch(m.spinner.Tick, m.loadCmd())
		}
	}
	return m, nil
}

func (m *Model[E]) removeEntity(id string) {
	index := m.indexOf(id)
	if index < 0 {
		return
	}
	next := make([]E, 0, len(m.entities)-1)
	next = append(next, m.entities[:index]...)
	next = append(next, m.entities[index+1:]...)
	m.SetEntities(next, maxInt(0, m.total-1))
}

func (m *Model[E]) setStatus(kind statusKind, msg string) {
	m.status = msg
	m.statusKind = kind
}

func (m *Model[E]) clearStatus() {
	m.status = ""
	m.statusKind = statusInfo
}

func (m *Model[E]) View() string {
	if m.quitting {
		return ""
	}

	mode := m.Mode()
	inline, inlineIdx := m.inlineColumns(mode)
	widths := m.fitWidths(inline, inlineIdx, mode)

	var b strings.Builder
	y := 0

	if m.title != "" {
		b.WriteString(m.palette.ForegroundStyle(theme.ColorTextPrimary).Bold(true).Render(m.title))
		b.WriteString("\n")
		y++
	}

	b.WriteString(m.renderHeader(inline, widths, mode))
	b.WriteString("\n")
	y++
	b.WriteString(m.palette.ForegroundStyle(theme.ColorBorder).Render(
		strings.Repeat("─", m.bodyWidth(widths, mode))))
	b.WriteString("\n")
	y++

	m.spans = m.spans[:0]

	switch {
	case m.loading:
		b.WriteString(m.renderPlaceholder(m.spinner.View() + " " + m.loadingLabel + "…"))
		b.WriteString("\n")
		y++
	case len(m.entities) == 0:
		b.WriteString(m.renderPlaceholder(m.emptyLabel))
		b.WriteString("\n")
		y++
	default:
		drawer := DrawerColumns(m.columns, mode)
		for i, row := range m.Rows() {
			m.spans = append(m.spans, rowSpan{index: i, y: y})
			b.WriteString(m.renderRow(row, i, inlineIdx, widths, mode))
			b.WriteString("\n")
			y++
			if mode == Narrow && m.expansion.IsExpanded(row.ID) {
				lines := m.renderDrawer(row, drawer)
				for _, line := range lines {
					b.WriteString(line)
					b.WriteString("\n")
					y++
				}
			}
		}
	}

	b.WriteString(m.renderStatusLine())
	return b.String()
}

// inlineColumns returns the inline descriptors for the mode together with
// their indexes in the full descriptor set, so row cells (built per full
// set) can be picked out without re-running accessors.
func (m *Model[E]) inlineColumns(mode Mode) (Columns[E], []int) {
	inline := make(Columns[E], 0, len(m.columns))
	idx := make([]int, 0, len(m.columns))
	for i, c := range m.columns {
		switch c.Visibility {
		case Always:
		case WideOnly:
			if mode != Wide {
				continue
			}
		case NarrowOnly:
			if mode != Narrow {
				continue
			}
		}
		inline = append(inline, c)
		idx = append(idx, i)
	}
	return inline, idx
}

func (m *Model[E]) fitWidths(inline Columns[E], inlineIdx []int, mode Mode) []int {
	rows := m.Rows()
	widths := make([]int, len(inline))
	for i, col := range inline {
		w := runewidth.StringWidth(col.Title)
		for _, row := range rows {
			cw := ansi.StringWidth(row.Cells[inlineIdx[i]])
			if cw > w {
				w = cw
			}
		}
		widths[i] = clampInt(w, minColumnWidth, maxColumnWidth)
	}

	available := m.width - m.fixedOverhead(mode) - 2*(len(inline)-1)
	if available <= 0 {
		return widths
	}
	for sumInts(widths) > available {
		widest := -1
		for i, w := range widths {
			if w > minColumnWidth && (widest < 0 || w > widths[widest]) {
				widest = i
			}
		}
		if widest < 0 {
			break
		}
		widths[widest]--
	}
	return widths
}

// fixedOverhead is the width consumed by the chevron and action zones.
func (m *Model[E]) fixedOverhead(mode Mode) int {
	overhead := 0
	if mode.HasToggleColumn() {
		m.chevronCols = 2
		overhead += 2
	} else {
		m.chevronCols = 0
	}
	if m.callbacks.OnRowMenu != nil {
		overhead += 3
	}
	return overhead
}

func (m *Model[E]) bodyWidth(widths []int, mode Mode) int {
	w := sumInts(widths) + 2*maxInt(0, len(widths)-1) + m.fixedOverhead(mode)
	if m.callbacks.OnRowMenu != nil {
		m.actionStart = w - 3
	} else {
		m.actionStart = 0
	}
	return w
}

func (m *Model[E]) renderHeader(inline Columns[E], widths []int, mode Mode) string {
	var parts []string
	if mode.HasToggleColumn() {
		parts = append(parts, strings.Repeat(" ", m.chevronCols))
	}
	headStyle := m.palette.ForegroundStyle(theme.ColorTextSecondary).Bold(true)
	cells := make([]string, len(inline))
	for i, col := range inline {
		cells[i] = headStyle.Render(padCell(col.Title, widths[i]))
	}
	parts = append(parts, strings.Join(cells, "  "))
	if m.callbacks.OnRowMenu != nil {
		parts = append(parts, "   ")
	}
	return strings.Join(parts, "")
}

func (m *Model[E]) renderRow(row Row[E], index int, inlineIdx []int, widths []int, mode Mode) string {
	var parts []string
	if mode.HasToggleColumn() {
		glyph := chevronCollapsed
		if m.expansion.IsExpanded(row.ID) {
			glyph = chevronExpanded
		}
		parts = append(parts, m.palette.ForegroundStyle(theme.ColorAccent).Render(glyph)+" ")
	}

	cells := make([]string, len(inlineIdx))
	for i, ci := range inlineIdx {
		cells[i] = padCell(row.Cells[ci], widths[i])
	}
	body := strings.Join(cells, "  ")

	if index == m.cursor {
		body = m.palette.BackgroundStyle(theme.ColorHighlight).
			Foreground(m.palette.Adaptive(theme.ColorTextPrimary)).Render(body)
	} else {
		body = m.palette.ForegroundStyle(theme.ColorTextPrimary).Render(body)
	}
	parts = append(parts, body)

	if m.callbacks.OnRowMenu != nil {
		parts = append(parts, " "+m.palette.ForegroundStyle(theme.ColorTextMuted).Render(actionGlyph)+" ")
	}
	return strings.Join(parts, "")
}

func (m *Model[E]) renderDrawer(row Row[E], drawer Columns[E]) []string {
	if len(drawer) == 0 {
		return nil
	}
	labelStyle := m.palette.ForegroundStyle(theme.ColorTextMuted)
	valueStyle := m.palette.ForegroundStyle(theme.ColorTextSecondary)

	wrapAt := maxInt(20, m.width-6)
	var lines []string
	for _, col := range drawer {
		value := ""
		for i, c := range m.columns {
			if c.Key == col.Key {
				value = row.Cells[i]
				break
			}
		}
		wrapped := wordwrap.String(value, wrapAt)
		for j, part := range strings.Split(wrapped, "\n") {
			if j == 0 {
				lines = append(lines, "   "+labelStyle.Render(col.Title+":")+" "+valueStyle.Render(part))
			} else {
				lines = append(lines, "   "+valueStyle.Render(part))
			}
		}
	}
	return lines
}

func (m *Model[E]) renderPlaceholder(label string) string {
	return "  " + m.palette.ForegroundStyle(theme.ColorTextMuted).Render(label)
}

func (m *Model[E]) renderStatusLine() string {
	if m.status == "" {
		if m.loading {
			return ""
		}
		count := fmt.Sprintf("%d of %d", len(m.entities), maxInt(m.total, len(m.entities)))
		return m.palette.ForegroundStyle(theme.ColorTextMuted).Render(count)
	}
	style := m.palette.ForegroundStyle(theme.ColorTextSecondary)
	switch m.statusKind {
	case statusSuccess:
		style = m.palette.ForegroundStyle(theme.ColorSuccess)
	case statusError:
		style = m.palette.ForegroundStyle(theme.ColorDanger)
	}
	return style.Render(m.status)
}

func primaryCellValue[E Entity](row Row[E]) string {
	if len(row.Cells) > 0 && strings.TrimSpace(row.Cells[0]) != "" {
		return row.Cells[0]
	}
	return row.ID
}

func padCell(s string, width int) string {
	w := ansi.StringWidth(s)
	if w > width {
		return ansi.Truncate(s, width, "…")
	}
	return s + strings.Repeat(" ", width-w)
}

func clampInt(v, minVal, maxVal int) int {
	if v < minVal {
		return minVal
	}
	if v > maxVal {
		return maxVal
	}
	return v
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func sumInts(values []int) int {
	total := 0
	for _, v := range values {
		total += v
	}
	return total
}
