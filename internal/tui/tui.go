// Package tui is the terminal roster dashboard. It renders a
// dashboard.Dashboard and turns key presses into its operations.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/soyeahso/roster/internal/dashboard"
)

type mode int

const (
	modeBrowse mode = iota
	modeForm
	modeEdit
	modeConfirm
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	panelStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
)

var formLabels = [...]string{"Name", "Years", "Breed", "Salary"}

// resultMsg reports a finished dashboard operation.
type resultMsg struct {
	op  string
	err error
}

type model struct {
	dash *dashboard.Dashboard

	table   table.Model
	form    [4]textinput.Model
	focus   int
	salary  textinput.Model
	mode    mode
	confirm dashboard.Confirmation
	status  string
	width   int
}

// Run starts the dashboard program and blocks until the user quits.
func Run(dash *dashboard.Dashboard) error {
	defer dash.Close()
	p := tea.NewProgram(newModel(dash), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

func newModel(dash *dashboard.Dashboard) model {
	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "ID", Width: 6},
			{Title: "Name", Width: 20},
			{Title: "Years", Width: 6},
			{Title: "Breed", Width: 16},
			{Title: "Salary", Width: 12},
			{Title: "", Width: 10},
		}),
		table.WithFocused(true),
		table.WithHeight(12),
	)
	styles := table.DefaultStyles()
	styles.Header = styles.Header.Bold(true).BorderStyle(lipgloss.NormalBorder()).BorderBottom(true)
	styles.Selected = styles.Selected.Foreground(lipgloss.Color("229")).Background(lipgloss.Color("57"))
	t.SetStyles(styles)

	var form [4]textinput.Model
	for i := range form {
		form[i] = textinput.New()
		form[i].Prompt = fmt.Sprintf("%-7s ", formLabels[i]+":")
		form[i].CharLimit = 64
	}

	salary := textinput.New()
	salary.Prompt = "Salary: "
	salary.CharLimit = 20

	m := model{dash: dash, table: t, form: form, salary: salary}
	m.refresh()
	return m
}

func (m model) Init() tea.Cmd {
	return m.run("load", func(ctx context.Context) error { return m.dash.Load(ctx) })
}

// run executes op off the UI goroutine.
func (m model) run(name string, op func(ctx context.Context) error) tea.Cmd {
	return func() tea.Msg {
		return resultMsg{op: name, err: op(context.Background())}
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.table.SetHeight(max(msg.Height-12, 4))
		return m, nil

	case resultMsg:
		m.status = ""
		if msg.err == nil {
			switch msg.op {
			case "create":
				m.resetForm()
				m.mode = modeBrowse
				m.status = "Agent created"
			case "update":
				m.status = "Salary updated"
			case "delete":
				m.status = "Agent deleted"
			}
		} else if errors.Is(msg.err, dashboard.ErrBusy) {
			m.status = "Still working on the previous request"
		}
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.dash.Close()
			return m, tea.Quit
		}
		switch m.mode {
		case modeForm:
			return m.updateForm(msg)
		case modeEdit:
			return m.updateEdit(msg)
		case modeConfirm:
			return m.updateConfirm(msg)
		}
		return m.updateBrowse(msg)
	}
	return m, nil
}

func (m model) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		m.dash.Close()
		return m, tea.Quit

	case "r":
		m.status = "Loading..."
		return m, m.run("load", func(ctx context.Context) error { return m.dash.Load(ctx) })

	case "n":
		m.mode = modeForm
		m.focus = 0
		return m, m.focusForm()

	case "e":
		id, ok := m.selectedID()
		if !ok {
			return m, nil
		}
		if err := m.dash.BeginEdit(id); err != nil {
			m.status = describe(err)
			return m, nil
		}
		if edit := m.dash.Snapshot().PendingEdit; edit != nil {
			m.salary.SetValue(edit.Staged)
		}
		m.mode = modeEdit
		m.refresh()
		return m, m.salary.Focus()

	case "d":
		id, ok := m.selectedID()
		if !ok {
			return m, nil
		}
		c, err := m.dash.RequestDelete(id)
		if err != nil {
			m.status = describe(err)
			return m, nil
		}
		m.confirm = c
		m.mode = modeConfirm
		return m, nil
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.mode = modeBrowse
		m.blurForm()
		return m, nil
	case tea.KeyTab, tea.KeyShiftTab:
		if msg.Type == tea.KeyTab {
			m.focus = (m.focus + 1) % len(m.form)
		} else {
			m.focus = (m.focus + len(m.form) - 1) % len(m.form)
		}
		return m, m.focusForm()
	case tea.KeyEnter:
		err := m.dash.SetForm(dashboard.Form{
			Name:              m.form[0].Value(),
			YearsOfExperience: m.form[1].Value(),
			Breed:             m.form[2].Value(),
			Salary:            m.form[3].Value(),
		})
		if err != nil {
			m.status = describe(err)
			return m, nil
		}
		m.status = "Creating..."
		return m, m.run("create", func(ctx context.Context) error {
			_, err := m.dash.Create(ctx)
			return err
		})
	}

	var cmd tea.Cmd
	m.form[m.focus], cmd = m.form[m.focus].Update(msg)
	return m, cmd
}

func (m model) updateEdit(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.dash.CancelEdit()
		m.mode = modeBrowse
		m.salary.Blur()
		m.refresh()
		return m, nil
	case tea.KeyEnter:
		if err := m.dash.StageSalary(m.salary.Value()); err != nil {
			m.status = describe(err)
			return m, nil
		}
		m.mode = modeBrowse
		m.salary.Blur()
		m.status = "Saving..."
		return m, m.run("update", func(ctx context.Context) error {
			_, err := m.dash.CommitEdit(ctx)
			return err
		})
	}

	var cmd tea.Cmd
	m.salary, cmd = m.salary.Update(msg)
	return m, cmd
}

func (m model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		token := m.confirm.Token
		m.mode = modeBrowse
		m.status = "Deleting..."
		return m, m.run("delete", func(ctx context.Context) error {
			_, err := m.dash.ConfirmDelete(ctx, token)
			return err
		})
	case "n", "N", "esc":
		m.dash.CancelDelete(m.confirm.Token)
		m.mode = modeBrowse
		m.status = ""
	}
	return m, nil
}

func (m *model) focusForm() tea.Cmd {
	m.blurForm()
	return m.form[m.focus].Focus()
}

func (m *model) blurForm() {
	for i := range m.form {
		m.form[i].Blur()
	}
}

func (m *model) resetForm() {
	for i := range m.form {
		m.form[i].Reset()
		m.form[i].Blur()
	}
	m.focus = 0
}

// refresh rebuilds the table rows from the current snapshot.
func (m *model) refresh() {
	s := m.dash.Snapshot()
	rows := make([]table.Row, len(s.Roster))
	for i, a := range s.Roster {
		var state string
		switch {
		case s.IsBusy(a.ID):
			state = "saving..."
		case s.PendingEdit != nil && s.PendingEdit.AgentID == a.ID:
			state = "editing"
		}
		rows[i] = table.Row{
			strconv.FormatInt(a.ID, 10),
			a.Name,
			strconv.Itoa(a.YearsOfExperience),
			a.Breed,
			strconv.FormatFloat(a.Salary, 'f', 2, 64),
			state,
		}
	}
	m.table.SetRows(rows)
	if c := m.table.Cursor(); c >= len(rows) && len(rows) > 0 {
		m.table.SetCursor(len(rows) - 1)
	}
}

func (m model) selectedID() (int64, bool) {
	row := m.table.SelectedRow()
	if row == nil {
		return 0, false
	}
	id, err := strconv.ParseInt(row[0], 10, 64)
	return id, err == nil
}

func (m model) View() string {
	s := m.dash.Snapshot()
	var b strings.Builder

	b.WriteString(titleStyle.Render("Roster"))
	if s.Loading {
		b.WriteString(statusStyle.Render("  loading..."))
	}
	b.WriteString("\n\n")

	if len(s.Roster) == 0 && !s.Loading {
		b.WriteString(statusStyle.Render("No agents yet. Press n to add one."))
		b.WriteString("\n")
	} else {
		b.WriteString(m.table.View())
		b.WriteString("\n")
	}

	switch m.mode {
	case modeForm:
		lines := make([]string, len(m.form))
		for i := range m.form {
			lines[i] = m.form[i].View()
		}
		b.WriteString(panelStyle.Render("New agent\n" + strings.Join(lines, "\n")))
		b.WriteString("\n")
	case modeEdit:
		b.WriteString(panelStyle.Render(m.salary.View()))
		b.WriteString("\n")
	case modeConfirm:
		b.WriteString(panelStyle.Render(m.confirm.Prompt + " [y/n]"))
		b.WriteString("\n")
	}

	if s.LastError != "" {
		b.WriteString(errorStyle.Render(s.LastError))
		b.WriteString("\n")
	}
	if m.status != "" {
		b.WriteString(statusStyle.Render(m.status))
		b.WriteString("\n")
	}
	b.WriteString(helpStyle.Render(m.help()))
	return b.String()
}

func (m model) help() string {
	switch m.mode {
	case modeForm:
		return "tab next field • enter create • esc cancel"
	case modeEdit:
		return "enter save • esc cancel"
	case modeConfirm:
		return "y delete • n cancel"
	}
	return "↑/↓ select • r reload • n new • e edit salary • d delete • q quit"
}

func describe(err error) string {
	switch {
	case errors.Is(err, dashboard.ErrBusy):
		return "That agent has a request in flight"
	case errors.Is(err, dashboard.ErrUnknownAgent):
		return "That agent is no longer in the roster"
	case errors.Is(err, dashboard.ErrClosed):
		return "Dashboard closed"
	}
	return dashboard.ErrorMessage(err)
}
