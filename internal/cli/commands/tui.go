package commands

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/apidash/internal/catalog"
	"github.com/leapstack-labs/apidash/internal/client"
	"github.com/leapstack-labs/apidash/internal/insights"
	"github.com/leapstack-labs/apidash/internal/session"
	"github.com/leapstack-labs/apidash/internal/tabular"
)

// NewTUICommand creates the tui command.
func NewTUICommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Browse API resources in a full-screen terminal UI",
		Long: `Open a full-screen terminal dashboard.

Pick a resource with the arrow keys, optionally set id and user filters,
and fetch with enter. Tab toggles between the table and the insights
pane; e exports the current table to CSV.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc := NewCommandContext(cmd)
			m := newTUIModel(cc)
			p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
			final, err := p.Run()
			if err != nil {
				return fmt.Errorf("tui error: %w", err)
			}
			if fm, ok := final.(tuiModel); ok && fm.fatalErr != nil {
				return fm.fatalErr
			}
			return nil
		},
	}
}

// tuiFocus identifies which widget receives key events.
type tuiFocus int

const (
	focusResources tuiFocus = iota
	focusIDInput
	focusUserInput
	focusTable
	focusInsights
)

// fetchDoneMsg carries a finished fetch back into the update loop.
type fetchDoneMsg struct {
	result *client.Result
	err    error
}

// exportDoneMsg reports a CSV export outcome.
type exportDoneMsg struct {
	path string
	err  error
}

var (
	tuiTitleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	tuiSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14"))
	tuiStatusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	tuiErrorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	tuiHelpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).MarginTop(1)
)

type tuiModel struct {
	cc    *CommandContext
	store *session.Store

	resources []catalog.Resource
	cursor    int
	focus     tuiFocus

	idInput   textinput.Model
	userInput textinput.Model

	spin     spinner.Model
	fetching bool

	dataTable    table.Model
	showInsights bool
	insightView  string

	status   string
	errMsg   string
	fatalErr error

	width  int
	height int
}

func newTUIModel(cc *CommandContext) tuiModel {
	idInput := textinput.New()
	idInput.Placeholder = "id"
	idInput.CharLimit = 6
	idInput.Width = 8

	userInput := textinput.New()
	userInput.Placeholder = "user"
	userInput.CharLimit = 6
	userInput.Width = 8

	spin := spinner.New()
	spin.Spinner = spinner.Dot

	return tuiModel{
		cc:        cc,
		store:     session.NewStore(),
		resources: catalog.All(),
		idInput:   idInput,
		userInput: userInput,
		spin:      spin,
		status:    "Pick a resource and press enter to fetch",
	}
}

func (m tuiModel) Init() tea.Cmd {
	return nil
}

func (m tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if state, ok := m.store.Current(); ok {
			m.dataTable = m.buildTable(state.Table)
		}
		return m, nil

	case tea.KeyMsg:
		return m.updateKeys(msg)

	case spinner.TickMsg:
		if !m.fetching {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case fetchDoneMsg:
		m.fetching = false
		if msg.err != nil {
			m.errMsg = msg.err.Error()
			return m, nil
		}
		m.errMsg = ""
		if msg.result.NoData() {
			m.status = "No data found for " + msg.result.Resource.Name
			return m, nil
		}
		state := m.store.Set(msg.result.Resource, msg.result.Payload, msg.result.Raw)
		m.dataTable = m.buildTable(state.Table)
		m.insightView = m.buildInsights(state)
		m.status = fmt.Sprintf("%d %s records", state.Table.Len(), state.Resource.Singular())
		m.focus = focusTable
		return m, nil

	case exportDoneMsg:
		if msg.err != nil {
			m.errMsg = msg.err.Error()
		} else {
			m.errMsg = ""
			m.status = "Exported to " + msg.path
		}
		return m, nil
	}

	return m, nil
}

func (m tuiModel) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		if m.focus == focusIDInput || m.focus == focusUserInput {
			break
		}
		return m, tea.Quit

	case "tab":
		m.focus = m.nextFocus()
		m.syncInputFocus()
		return m, nil

	case "i":
		if m.focus == focusIDInput || m.focus == focusUserInput {
			break
		}
		if _, ok := m.store.Current(); ok {
			m.showInsights = !m.showInsights
		}
		return m, nil

	case "e":
		if m.focus == focusIDInput || m.focus == focusUserInput {
			break
		}
		if state, ok := m.store.Current(); ok {
			return m, m.exportCmd(state)
		}
		m.errMsg = "nothing to export yet"
		return m, nil

	case "enter":
		if m.focus == focusResources || m.focus == focusIDInput || m.focus == focusUserInput {
			return m.startFetch()
		}

	case "up", "k":
		if m.focus == focusResources {
			if m.cursor > 0 {
				m.cursor--
			}
			return m, nil
		}

	case "down", "j":
		if m.focus == focusResources {
			if m.cursor < len(m.resources)-1 {
				m.cursor++
			}
			return m, nil
		}
	}

	// Route remaining keys to the focused widget.
	var cmd tea.Cmd
	switch m.focus {
	case focusIDInput:
		m.idInput, cmd = m.idInput.Update(msg)
	case focusUserInput:
		m.userInput, cmd = m.userInput.Update(msg)
	case focusTable:
		m.dataTable, cmd = m.dataTable.Update(msg)
	}
	return m, cmd
}

func (m tuiModel) nextFocus() tuiFocus {
	switch m.focus {
	case focusResources:
		return focusIDInput
	case focusIDInput:
		return focusUserInput
	case focusUserInput:
		if _, ok := m.store.Current(); ok {
			return focusTable
		}
		return focusResources
	default:
		return focusResources
	}
}

func (m *tuiModel) syncInputFocus() {
	m.idInput.Blur()
	m.userInput.Blur()
	switch m.focus {
	case focusIDInput:
		m.idInput.Focus()
	case focusUserInput:
		m.userInput.Focus()
	}
}

// startFetch validates the filter inputs and kicks off the async fetch.
func (m tuiModel) startFetch() (tea.Model, tea.Cmd) {
	res := m.resources[m.cursor]

	id, err := parseFilterInput(m.idInput.Value())
	if err != nil {
		m.errMsg = "invalid id filter"
		return m, nil
	}
	user, err := parseFilterInput(m.userInput.Value())
	if err != nil {
		m.errMsg = "invalid user filter"
		return m, nil
	}

	m.fetching = true
	m.errMsg = ""
	m.status = "Fetching " + res.Name + "..."
	req := client.Request{Resource: res, ID: id, UserID: user}
	return m, tea.Batch(m.spin.Tick, m.fetchCmd(req))
}

func parseFilterInput(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid filter %q", raw)
	}
	return n, nil
}

func (m tuiModel) fetchCmd(req client.Request) tea.Cmd {
	c := m.cc.Client
	return func() tea.Msg {
		result, err := c.Fetch(context.Background(), req)
		return fetchDoneMsg{result: result, err: err}
	}
}

func (m tuiModel) exportCmd(state *session.State) tea.Cmd {
	dir := m.cc.Config.ExportDir
	return func() tea.Msg {
		path := state.Resource.ExportFilename()
		if dir != "" && dir != "." {
			path = dir + "/" + path
		}
		if err := exportTable(state.Table, path); err != nil {
			return exportDoneMsg{err: err}
		}
		return exportDoneMsg{path: path}
	}
}

// buildTable converts the normalized table into a bubbles table sized to the
// current window.
func (m tuiModel) buildTable(t *tabular.Table) table.Model {
	width := m.width
	if width <= 0 {
		width = 80
	}
	colWidth := 12
	if len(t.Columns) > 0 {
		colWidth = max(8, (width-len(t.Columns)-24)/len(t.Columns))
	}

	cols := make([]table.Column, len(t.Columns))
	for i, c := range t.Columns {
		cols[i] = table.Column{Title: c, Width: colWidth}
	}

	rows := make([]table.Row, len(t.Rows))
	for i, row := range t.Rows {
		tr := make(table.Row, len(t.Columns))
		for j, c := range t.Columns {
			tr[j] = tabular.FormatCell(row[c])
		}
		rows[i] = tr
	}

	height := m.height - 10
	if height < 5 {
		height = 5
	}

	dt := table.New(
		table.WithColumns(cols),
		table.WithRows(rows),
		table.WithHeight(height),
		table.WithFocused(true),
	)
	styles := table.DefaultStyles()
	styles.Header = styles.Header.Bold(true)
	dt.SetStyles(styles)
	return dt
}

// buildInsights renders the insights pane as plain text.
func (m tuiModel) buildInsights(state *session.State) string {
	list := insights.Compute(state.Resource, state.Table)
	if len(list) == 0 {
		return "No insights available for this data."
	}

	var b strings.Builder
	for _, in := range list {
		b.WriteString(tuiSelectedStyle.Render(in.Title))
		b.WriteString("\n")
		switch {
		case in.Value != "":
			fmt.Fprintf(&b, "  %s\n", in.Value)
		case in.Buckets != nil:
			for _, bucket := range in.Buckets {
				fmt.Fprintf(&b, "  %-12s %d\n", bucket.Label, bucket.Count)
			}
		default:
			for _, line := range in.Lines {
				fmt.Fprintf(&b, "  %s\n", line)
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m tuiModel) View() string {
	var b strings.Builder

	b.WriteString(tuiTitleStyle.Render("apidash"))
	b.WriteString("\n\n")

	// Resource picker row.
	var names []string
	for i, r := range m.resources {
		name := r.Name
		if i == m.cursor {
			name = tuiSelectedStyle.Render("[" + name + "]")
		}
		names = append(names, name)
	}
	b.WriteString(strings.Join(names, "  "))
	b.WriteString("\n\n")

	b.WriteString("id: " + m.idInput.View() + "   user: " + m.userInput.View())
	b.WriteString("\n\n")

	switch {
	case m.fetching:
		b.WriteString(m.spin.View() + " " + m.status)
	case m.showInsights:
		b.WriteString(m.insightView)
	default:
		if _, ok := m.store.Current(); ok {
			b.WriteString(m.dataTable.View())
		}
	}
	b.WriteString("\n")

	if m.errMsg != "" {
		b.WriteString(tuiErrorStyle.Render("Error: " + m.errMsg))
		b.WriteString("\n")
	} else if !m.fetching {
		b.WriteString(tuiStatusStyle.Render(m.status))
		b.WriteString("\n")
	}

	b.WriteString(tuiHelpStyle.Render("enter fetch · tab focus · i insights · e export · q quit"))
	return b.String()
}
