// Package bubbletea provides a terminal UI viewer for analysis reports using
// the Bubble Tea framework.
package bubbletea

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/fwojciec/sdkdrift"
)

// Compile-time interface verification.
var _ sdkdrift.Viewer = (*Viewer)(nil)

// Pane identifies which part of the report is shown.
type Pane int

const (
	PaneSummary Pane = iota
	PaneDiff
)

func (p Pane) String() string {
	if p == PaneDiff {
		return "diff"
	}
	return "summary"
}

// copiedMsg reports the outcome of a clipboard copy.
type copiedMsg struct {
	err error
}

// Model is the Bubble Tea model for viewing a report.
type Model struct {
	report    *sdkdrift.AnalysisReport
	keymap    KeyMap
	styles    sdkdrift.Styles
	renderer  *lipgloss.Renderer
	clipboard sdkdrift.Clipboard
	words     sdkdrift.WordDiffer

	viewport   viewport.Model
	ready      bool
	width      int
	pane       Pane
	pendingKey string
	status     string
}

// ModelOption configures a Model.
type ModelOption func(*Model)

// WithRenderer sets the lipgloss renderer used for styling.
func WithRenderer(r *lipgloss.Renderer) ModelOption {
	return func(m *Model) {
		m.renderer = r
	}
}

// WithTheme sets the color theme.
func WithTheme(t sdkdrift.Theme) ModelOption {
	return func(m *Model) {
		m.styles = t.Styles()
	}
}

// WithClipboard enables copying the report JSON.
func WithClipboard(c sdkdrift.Clipboard) ModelOption {
	return func(m *Model) {
		m.clipboard = c
	}
}

// WithWordDiffer enables highlighting of changed words in the diff pane.
func WithWordDiffer(d sdkdrift.WordDiffer) ModelOption {
	return func(m *Model) {
		m.words = d
	}
}

// WithPane sets the pane shown first.
func WithPane(p Pane) ModelOption {
	return func(m *Model) {
		m.pane = p
	}
}

// NewModel creates a new Model for the given report.
func NewModel(r *sdkdrift.AnalysisReport, opts ...ModelOption) Model {
	m := Model{
		report: r,
		keymap: DefaultKeyMap(),
		styles: defaultStyles(),
	}
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

// Pane returns the pane currently shown.
func (m Model) Pane() Pane {
	return m.pane
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		// gg goes to top
		if m.pendingKey == "g" && key.Matches(msg, m.keymap.GotoTop) {
			m.viewport.GotoTop()
			m.pendingKey = ""
			return m, nil
		}
		if key.Matches(msg, m.keymap.GotoTop) {
			m.pendingKey = "g"
			return m, nil
		}
		m.pendingKey = ""

		switch {
		case key.Matches(msg, m.keymap.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keymap.TogglePane):
			if m.pane == PaneSummary {
				m.pane = PaneDiff
			} else {
				m.pane = PaneSummary
			}
			m.status = ""
			if m.ready {
				m.viewport.SetContent(m.renderContent())
				m.viewport.GotoTop()
			}
			return m, nil
		case key.Matches(msg, m.keymap.Copy):
			return m, m.copyReport()
		case key.Matches(msg, m.keymap.GotoBottom):
			m.viewport.GotoBottom()
			return m, nil
		case key.Matches(msg, m.keymap.HalfPageUp):
			m.viewport.HalfPageUp()
			return m, nil
		case key.Matches(msg, m.keymap.HalfPageDown):
			m.viewport.HalfPageDown()
			return m, nil
		case key.Matches(msg, m.keymap.Up):
			m.viewport.ScrollUp(1)
			return m, nil
		case key.Matches(msg, m.keymap.Down):
			m.viewport.ScrollDown(1)
			return m, nil
		case key.Matches(msg, m.keymap.NextFile):
			m.gotoNextFile()
			return m, nil
		case key.Matches(msg, m.keymap.PrevFile):
			m.gotoPrevFile()
			return m, nil
		}
	case copiedMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("copy failed: %v", msg.err)
		} else {
			m.status = "copied report json"
		}
		return m, nil
	case tea.WindowSizeMsg:
		statusBarHeight := 1
		widthChanged := m.width != msg.Width
		m.width = msg.Width

		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-statusBarHeight)
			m.viewport.SetContent(m.renderContent())
			m.ready = true
		} else if widthChanged {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - statusBarHeight
			m.viewport.SetContent(m.renderContent())
		} else {
			m.viewport.Height = msg.Height - statusBarHeight
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	return lipgloss.JoinVertical(lipgloss.Left, m.viewport.View(), m.statusBarView())
}

func (m Model) renderContent() string {
	cfg := renderConfig{
		report:   m.report,
		styles:   m.styles,
		renderer: m.renderer,
		width:    m.width,
		words:    m.words,
	}
	if m.pane == PaneDiff {
		if m.report == nil || len(m.report.Files) == 0 {
			return "No changes"
		}
		return renderDiff(cfg)
	}
	return renderSummary(cfg)
}

func (m Model) copyReport() tea.Cmd {
	if m.clipboard == nil {
		return func() tea.Msg {
			return copiedMsg{err: errors.New("no clipboard available")}
		}
	}
	report, clipboard := m.report, m.clipboard
	return func() tea.Msg {
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return copiedMsg{err: err}
		}
		return copiedMsg{err: clipboard.Copy(string(data))}
	}
}

func (m *Model) gotoNextFile() {
	if m.pane != PaneDiff || m.report == nil {
		return
	}
	for _, pos := range filePositions(m.report.Files) {
		if pos > m.viewport.YOffset {
			m.viewport.SetYOffset(pos)
			return
		}
	}
}

func (m *Model) gotoPrevFile() {
	if m.pane != PaneDiff || m.report == nil {
		return
	}
	positions := filePositions(m.report.Files)
	for i := len(positions) - 1; i >= 0; i-- {
		if positions[i] < m.viewport.YOffset {
			m.viewport.SetYOffset(positions[i])
			return
		}
	}
}

func (m Model) newStyle() lipgloss.Style {
	if m.renderer != nil {
		return m.renderer.NewStyle()
	}
	return lipgloss.NewStyle()
}

// statusBarView renders the pane indicator, risk badge, scroll position
// and the last status message.
func (m Model) statusBarView() string {
	barStyle := styleFromColorPair(m.styles.FileHeader, m.renderer)
	dimStyle := m.newStyle().Inherit(barStyle).Foreground(lipgloss.Color(m.styles.LineNumber.Foreground))

	var level sdkdrift.RiskLevel
	if m.report != nil {
		level = m.report.Risk.Level
	}
	badge := styleFromColorPair(m.styles.Risk(level), m.renderer).Render(" " + string(level) + " ")

	sep := barStyle.Render(" │ ")
	content := badge + sep +
		barStyle.Render(m.pane.String()) + sep +
		barStyle.Render(m.scrollPosition()) + sep
	if m.status != "" {
		content += barStyle.Render(m.status) + sep
	}
	content += dimStyle.Render("j/k:scroll  tab:pane  n/N:file  y:copy  q:quit")
	return padLine(content, m.width)
}

// scrollPosition returns a vim-style position indicator.
func (m Model) scrollPosition() string {
	if m.viewport.AtTop() {
		return "Top"
	}
	if m.viewport.AtBottom() {
		return "Bot"
	}
	return fmt.Sprintf("%2d%%", int(m.viewport.ScrollPercent()*100))
}

// defaultStyles returns the styles used when no theme is provided.
func defaultStyles() sdkdrift.Styles {
	return sdkdrift.Styles{
		Added:      sdkdrift.ColorPair{Foreground: "#a6e3a1"},
		Deleted:    sdkdrift.ColorPair{Foreground: "#f38ba8"},
		AddedHighlight: sdkdrift.ColorPair{
			Foreground: "#a6e3a1",
			Background: "#007000",
		},
		DeletedHighlight: sdkdrift.ColorPair{
			Foreground: "#f38ba8",
			Background: "#6f0002",
		},
		Context:    sdkdrift.ColorPair{Foreground: "#6c7086"},
		HunkHeader: sdkdrift.ColorPair{Foreground: "#89b4fa"},
		FileHeader: sdkdrift.ColorPair{Foreground: "#f9e2af"},
		LineNumber: sdkdrift.ColorPair{Foreground: "#6c7086"},
		Heading:    sdkdrift.ColorPair{Foreground: "#cba6f7"},
		Annotation: sdkdrift.ColorPair{Foreground: "#fab387"},
		RiskLow:    sdkdrift.ColorPair{Foreground: "#a6e3a1"},
		RiskMedium: sdkdrift.ColorPair{Foreground: "#f9e2af"},
		RiskHigh:   sdkdrift.ColorPair{Foreground: "#f38ba8"},
	}
}

// Viewer implements sdkdrift.Viewer using a Bubble Tea TUI.
type Viewer struct {
	modelOpts   []ModelOption
	programOpts []tea.ProgramOption
}

// ViewerOption configures a Viewer.
type ViewerOption func(*Viewer)

// WithModelOptions sets the options applied to every model the viewer shows.
func WithModelOptions(opts ...ModelOption) ViewerOption {
	return func(v *Viewer) {
		v.modelOpts = append(v.modelOpts, opts...)
	}
}

// WithProgramOptions adds Bubble Tea program options, for example custom
// input and output in tests.
func WithProgramOptions(opts ...tea.ProgramOption) ViewerOption {
	return func(v *Viewer) {
		v.programOpts = append(v.programOpts, opts...)
	}
}

// NewViewer creates a new Viewer.
func NewViewer(opts ...ViewerOption) *Viewer {
	v := &Viewer{}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// View displays the report and blocks until the user exits. Cancelling ctx
// stops the viewer and returns the context error.
func (v *Viewer) View(ctx context.Context, r *sdkdrift.AnalysisReport) error {
	m := NewModel(r, v.modelOpts...)
	opts := append([]tea.ProgramOption{
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	}, v.programOpts...)
	_, err := tea.NewProgram(m, opts...).Run()
	if err != nil && ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}
