package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sirupsen/logrus"

	"github.com/HaiFongPan/ndview/internal/ndconfig"
	"github.com/HaiFongPan/ndview/internal/selection"
	uiconfig "github.com/HaiFongPan/ndview/internal/tui/config"
	"github.com/HaiFongPan/ndview/internal/tui/image"
	"github.com/HaiFongPan/ndview/internal/tui/messaging"
	"github.com/HaiFongPan/ndview/internal/tui/theme"
	"github.com/HaiFongPan/ndview/internal/utils"
	"github.com/HaiFongPan/ndview/internal/viewer"
	"github.com/HaiFongPan/ndview/internal/watcher"
)

const noImageText = "No image"

type cellPos struct {
	row, col int
}

type paneState struct {
	path    string
	exists  bool
	loading bool
	preview *image.Preview
	err     error
}

type paneLoadedMsg struct {
	pos        cellPos
	generation int
	path       string
	exists     bool
	preview    *image.Preview
	err        error
}

type selectorsSettledMsg struct {
	generation int
	current    selection.Assignment
	offered    [][]string
	err        error
}

type dirChangedMsg struct {
	events []watcher.ChangeEvent
}

type clipboardMsg struct {
	path string
	err  error
}

// GridModel is the bubbletea model of the grid viewer: a settings pane
// with one selector per selectable dimension and one image pane per grid
// value
type GridModel struct {
	viewer     *viewer.Viewer
	images     *image.Manager
	selector   *Selector
	repopulate RepopulateFunc
	watcher    *watcher.DirWatcher
	copy       func(string) error

	keyMap KeyMap
	help   help.Model
	status messaging.StatusManager

	panes      map[cellPos]paneState
	valueCells []cellPos
	focusPane  int
	generation int
	settling   int

	width      int
	height     int
	fullscreen bool
	showHelp   bool
}

// NewGridModel creates the viewer model starting from initial
func NewGridModel(v *viewer.Viewer, images *image.Manager, initial selection.Assignment) *GridModel {
	cfg := v.Config()

	var valueCells []cellPos
	for r := 0; r < cfg.Rows(); r++ {
		for c := 0; c < cfg.Cols(); c++ {
			if cfg.Cell(r, c).Kind == ndconfig.CellValue {
				valueCells = append(valueCells, cellPos{row: r, col: c})
			}
		}
	}

	h := help.New()
	h.ShowAll = false

	return &GridModel{
		viewer:     v,
		images:     images,
		selector:   NewSelector(v.SelectableDimensions(), initial),
		repopulate: v.Repopulate,
		copy:       utils.CopyToClipboard,
		keyMap:     DefaultKeyMap(),
		help:       h,
		status:     messaging.NewStatusManager(),
		panes:      make(map[cellPos]paneState),
		valueCells: valueCells,
		width:      uiconfig.DefaultWindowWidth,
		height:     uiconfig.DefaultWindowHeight,
	}
}

// SetWatcher makes the model reload whenever w reports changes
func (m *GridModel) SetWatcher(w *watcher.DirWatcher) {
	m.watcher = w
}

// Selector exposes the settings state
func (m *GridModel) Selector() *Selector {
	return m.selector
}

// Init implements the bubbletea.Model interface
func (m *GridModel) Init() tea.Cmd {
	return tea.Batch(m.refresh(), m.waitForChanges())
}

// Update implements the bubbletea.Model interface
func (m *GridModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, m.reload()

	case selectorsSettledMsg:
		if msg.generation != m.settling {
			return m, nil
		}
		if msg.err != nil {
			logrus.WithError(msg.err).Error("failed to repopulate selectors")
			m.status.SetMessage(fmt.Sprintf("Repopulate failed: %v", msg.err), messaging.MessageError)
		} else {
			m.selector.Apply(msg.current, msg.offered)
		}
		return m, m.reload()

	case paneLoadedMsg:
		if msg.generation != m.generation {
			return m, nil
		}
		m.panes[msg.pos] = paneState{
			path:    msg.path,
			exists:  msg.exists,
			preview: msg.preview,
			err:     msg.err,
		}
		if msg.err != nil {
			logrus.WithError(msg.err).WithField("path", msg.path).Warn("failed to load pane image")
		}
		return m, nil

	case dirChangedMsg:
		logrus.WithField("changes", len(msg.events)).Info("image directory changed")
		m.images.Invalidate()
		m.status.SetMessage(fmt.Sprintf("%d image file(s) changed", len(msg.events)), messaging.MessageInfo)
		return m, tea.Batch(m.refresh(), m.waitForChanges())

	case clipboardMsg:
		if msg.err != nil {
			m.status.SetMessage(msg.err.Error(), messaging.MessageError)
		} else {
			m.status.SetMessage("Copied "+msg.path, messaging.MessageSuccess)
		}
		return m, nil
	}

	return m, nil
}

func (m *GridModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keyMap.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keyMap.Up):
		m.selector.MoveFocus(-1)

	case key.Matches(msg, m.keyMap.Down):
		m.selector.MoveFocus(1)

	case key.Matches(msg, m.keyMap.Prev):
		if m.selector.Cycle(-1) {
			return m, m.refresh()
		}

	case key.Matches(msg, m.keyMap.Next):
		if m.selector.Cycle(1) {
			return m, m.refresh()
		}

	case key.Matches(msg, m.keyMap.SwitchLast):
		if m.selector.SwitchToLast() {
			return m, m.refresh()
		}
		m.status.SetMessage("Nothing to switch back to", messaging.MessageWarning)

	case key.Matches(msg, m.keyMap.NextPane):
		m.movePaneFocus(1)

	case key.Matches(msg, m.keyMap.PrevPane):
		m.movePaneFocus(-1)

	case key.Matches(msg, m.keyMap.Copy):
		return m, m.copyFocusedPath()

	case key.Matches(msg, m.keyMap.Reload):
		m.images.Invalidate()
		return m, m.refresh()

	case key.Matches(msg, m.keyMap.Fullscreen):
		m.fullscreen = !m.fullscreen
		if m.fullscreen {
			return m, tea.EnterAltScreen
		}
		return m, tea.ExitAltScreen

	case key.Matches(msg, m.keyMap.Help):
		m.showHelp = !m.showHelp
		m.help.ShowAll = m.showHelp
		return m, m.reload()
	}

	return m, nil
}

// refresh settles the selectors against the images on disk in a command;
// panes reload once the newest settled selection arrives
func (m *GridModel) refresh() tea.Cmd {
	m.settling++
	generation := m.settling
	current, repopulate := m.selector.Current(), m.repopulate
	return func() tea.Msg {
		msg := selectorsSettledMsg{generation: generation}
		msg.current, msg.offered, msg.err = settle(current, repopulate)
		return msg
	}
}

// reload starts loading every image pane for the current selection;
// results from earlier generations are dropped
func (m *GridModel) reload() tea.Cmd {
	m.generation++
	widths, heights := m.cellSizes()
	current := m.selector.Current()
	cfg := m.viewer.Config()

	cmds := make([]tea.Cmd, 0, len(m.valueCells))
	for _, pos := range m.valueCells {
		pane := m.panes[pos]
		pane.loading = true
		m.panes[pos] = pane

		cols, rows := imageArea(widths[pos.col], heights[pos.row])
		cmds = append(cmds, m.loadPane(pos, cfg.Cell(pos.row, pos.col).Value, current, cols, rows, m.generation))
	}
	return tea.Batch(cmds...)
}

func (m *GridModel) loadPane(pos cellPos, value string, current selection.Assignment, cols, rows, generation int) tea.Cmd {
	images := m.images
	v := m.viewer
	return func() tea.Msg {
		msg := paneLoadedMsg{pos: pos, generation: generation}
		msg.path, msg.exists, msg.err = v.ResolvePath(value, current...)
		if msg.err != nil || !msg.exists {
			return msg
		}
		if cols < uiconfig.MinImageCols || rows < uiconfig.MinImageRows {
			return msg
		}
		msg.preview, msg.err = images.Load(msg.path, cols, rows)
		return msg
	}
}

func (m *GridModel) waitForChanges() tea.Cmd {
	if m.watcher == nil {
		return nil
	}
	changes := m.watcher.Changes()
	return func() tea.Msg {
		events, ok := <-changes
		if !ok {
			return nil
		}
		return dirChangedMsg{events: events}
	}
}

func (m *GridModel) movePaneFocus(delta int) {
	n := len(m.valueCells)
	if n == 0 {
		return
	}
	m.focusPane = ((m.focusPane+delta)%n + n) % n
}

func (m *GridModel) copyFocusedPath() tea.Cmd {
	if len(m.valueCells) == 0 {
		return nil
	}
	pane := m.panes[m.valueCells[m.focusPane]]
	if !pane.exists {
		m.status.SetMessage("No image in the focused pane", messaging.MessageWarning)
		return nil
	}
	path, copyFn := pane.path, m.copy
	return func() tea.Msg {
		return clipboardMsg{path: path, err: copyFn(path)}
	}
}

// cellSizes returns the outer width of every grid column and the outer
// height of every grid row
func (m *GridModel) cellSizes() ([]int, []int) {
	cfg := m.viewer.Config()
	gridHeight := m.height - uiconfig.FooterHeight
	if m.showHelp {
		gridHeight -= lipgloss.Height(m.helpView())
	}
	return splitCells(m.width, cfg.ColWidths()), splitCells(gridHeight, cfg.RowHeights())
}

// imageArea returns the cells left for the image inside a pane
func imageArea(width, height int) (int, int) {
	return width - uiconfig.PaneBorderSize, height - uiconfig.PaneBorderSize - uiconfig.PaneTitleHeight
}

// View implements the bubbletea.Model interface
func (m *GridModel) View() string {
	cfg := m.viewer.Config()
	widths, heights := m.cellSizes()

	rows := make([]string, 0, cfg.Rows())
	for r := 0; r < cfg.Rows(); r++ {
		cells := make([]string, 0, cfg.Cols())
		for c := 0; c < cfg.Cols(); c++ {
			cells = append(cells, m.renderCell(cellPos{row: r, col: c}, widths[c], heights[r]))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}

	sections := []string{lipgloss.JoinVertical(lipgloss.Left, rows...)}
	if m.showHelp {
		sections = append(sections, m.helpView())
	}
	sections = append(sections, m.footerView())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m *GridModel) renderCell(pos cellPos, width, height int) string {
	if width <= uiconfig.PaneBorderSize || height <= uiconfig.PaneBorderSize+uiconfig.PaneTitleHeight {
		return lipgloss.Place(width, height, lipgloss.Left, lipgloss.Top, "")
	}

	innerW, bodyH := imageArea(width, height)
	cell := m.viewer.Config().Cell(pos.row, pos.col)

	var (
		title       string
		body        string
		borderColor = theme.ColorPaneBorder
		titleColor  = theme.ColorBrightCyan
		focused     bool
	)

	switch cell.Kind {
	case ndconfig.CellSettings:
		title = "Settings"
		borderColor = theme.ColorPaneSettings
		titleColor = theme.ColorPaneSettings
		body = lipgloss.Place(innerW, bodyH, lipgloss.Left, lipgloss.Top, m.settingsView())
	case ndconfig.CellValue:
		title = m.viewer.NonSelectableDimension().Title() + ": " + displayValue(cell.Value)
		if m.isFocused(pos) {
			focused = true
			borderColor = theme.ColorPaneFocused
		}
		body = lipgloss.Place(innerW, bodyH, lipgloss.Center, lipgloss.Center, m.paneBody(pos))
	default:
		body = lipgloss.Place(innerW, bodyH, lipgloss.Center, lipgloss.Center, noImage())
	}

	titleLine := theme.CreatePaneTitleStyle(titleColor).MaxWidth(innerW).Render(truncate(title, uiconfig.TitleTruncateLength))
	return theme.CreatePaneStyle(width, height, borderColor, focused).Render(lipgloss.JoinVertical(lipgloss.Left, titleLine, body))
}

func (m *GridModel) paneBody(pos cellPos) string {
	pane, ok := m.panes[pos]
	switch {
	case !ok:
		return theme.CreateLoadingStyle().Render("Loading...")
	case pane.err != nil:
		return theme.CreateErrorStyle().Render(pane.err.Error())
	case pane.preview != nil:
		return pane.preview.Rendered
	case pane.loading:
		return theme.CreateLoadingStyle().Render("Loading...")
	case pane.exists:
		// Pane too small to draw into
		return theme.CreateSecondaryTextStyle().Render(pane.path)
	default:
		return noImage()
	}
}

func (m *GridModel) settingsView() string {
	dims := m.selector.Dimensions()
	current := m.selector.Current()

	var b strings.Builder
	b.WriteString(theme.CreateSecondaryTextStyle().Render("↑/↓ dimension  ←/→ value  t last"))
	b.WriteString("\n\n")

	for i, d := range dims {
		focused := i == m.selector.Focus()
		marker := "  "
		if focused {
			marker = "▸ "
		}
		b.WriteString(marker)
		b.WriteString(theme.CreatePaneTitleStyle(theme.ColorWhite).Render(d.Title() + ":"))

		offered := m.selector.Offered(i)
		if len(offered) == 0 {
			b.WriteString(" " + theme.CreateErrorStyle().Render(displayValue(current[i])+" (no images)"))
		}
		for _, v := range offered {
			b.WriteString(" ")
			if v == current[i] {
				b.WriteString(theme.CreateSelectedValueStyle(focused).Render(displayValue(v)))
			} else {
				b.WriteString(theme.CreateSecondaryTextStyle().Render(displayValue(v)))
			}
		}
		if i < len(dims)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (m *GridModel) helpView() string {
	return theme.CreateHelpStyle().Render(m.help.FullHelpView(m.keyMap.FullHelp()))
}

func (m *GridModel) footerView() string {
	if m.status.HasMessage() {
		return theme.CreateFooterStyle().Render(m.status.RenderMessage())
	}
	return theme.CreateFooterStyle().Render(m.help.ShortHelpView(m.keyMap.ShortHelp()))
}

func (m *GridModel) isFocused(pos cellPos) bool {
	return len(m.valueCells) > 0 && m.valueCells[m.focusPane] == pos
}

func noImage() string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(theme.ColorNoImage)).Render(noImageText)
}

func displayValue(v string) string {
	if v == "" {
		return "(empty)"
	}
	return v
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
