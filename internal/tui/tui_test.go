package tui

import (
	"context"
	"strconv"
	"strings"
	"testing"

	"github.com/charmbracelet/bubbles/cursor"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/soyeahso/roster/internal/dashboard"
	"github.com/soyeahso/roster/internal/domain"
	"github.com/soyeahso/roster/internal/logging"
	"github.com/soyeahso/roster/internal/proxy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memService is a synchronous in-memory roster.
type memService struct {
	agents []domain.Agent
	nextID int64
}

func (s *memService) ListAgents(context.Context) ([]domain.Agent, error) {
	return append([]domain.Agent{}, s.agents...), nil
}

func (s *memService) CreateAgent(_ context.Context, in domain.AgentInput) (domain.Agent, error) {
	s.nextID++
	a := in.WithID(s.nextID)
	s.agents = append(s.agents, a)
	return a, nil
}

func (s *memService) UpdateSalary(_ context.Context, id string, salary float64) (domain.Agent, error) {
	n, _ := strconv.ParseInt(id, 10, 64)
	for i := range s.agents {
		if s.agents[i].ID == n {
			s.agents[i].Salary = salary
			return s.agents[i], nil
		}
	}
	return domain.Agent{}, &proxy.Error{Status: 404, Body: map[string]any{"detail": "Agent not found"}}
}

func (s *memService) DeleteAgent(_ context.Context, id string) (proxy.Confirmation, error) {
	n, _ := strconv.ParseInt(id, 10, 64)
	for i := range s.agents {
		if s.agents[i].ID == n {
			s.agents = append(s.agents[:i], s.agents[i+1:]...)
			return proxy.Confirmation{Message: "Agent deleted successfully"}, nil
		}
	}
	return proxy.Confirmation{}, &proxy.Error{Status: 404, Body: map[string]any{"detail": "Agent not found"}}
}

func newTestModel(t *testing.T, agents ...domain.Agent) (model, *dashboard.Dashboard) {
	t.Helper()
	svc := &memService{agents: agents, nextID: int64(len(agents))}
	dash := dashboard.New(svc, logging.New(nil, "silent"))
	m := newModel(dash)
	for i := range m.form {
		m.form[i].Cursor.SetMode(cursor.CursorStatic)
	}
	m.salary.Cursor.SetMode(cursor.CursorStatic)
	m = step(t, m, m.Init())
	return m, dash
}

// step runs cmd synchronously and feeds its message back into the model.
func step(t *testing.T, m model, cmd tea.Cmd) model {
	t.Helper()
	if cmd == nil {
		return m
	}
	msg := cmd()
	if _, ok := msg.(resultMsg); !ok {
		return m
	}
	next, _ := m.Update(msg)
	return next.(model)
}

func press(t *testing.T, m model, keys ...tea.KeyMsg) model {
	t.Helper()
	for _, k := range keys {
		next, cmd := m.Update(k)
		m = step(t, next.(model), cmd)
	}
	return m
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

var tom = domain.Agent{ID: 1, Name: "Tom", YearsOfExperience: 3, Breed: "Sphynx", Salary: 1000}

func TestModelLoadsOnInit(t *testing.T) {
	m, _ := newTestModel(t, tom)
	assert.Len(t, m.table.Rows(), 1)
	assert.Contains(t, m.View(), "Tom")
}

func TestModelEmptyState(t *testing.T) {
	m, _ := newTestModel(t)
	assert.Contains(t, m.View(), "No agents yet")
}

func TestModelCreate(t *testing.T) {
	m, dash := newTestModel(t)

	m = press(t, m, runes("n"))
	require.Equal(t, modeForm, m.mode)
	m = press(t, m,
		runes("Felix"), tea.KeyMsg{Type: tea.KeyTab},
		runes("7"), tea.KeyMsg{Type: tea.KeyTab},
		runes("Bengal"), tea.KeyMsg{Type: tea.KeyTab},
		runes("2500"), tea.KeyMsg{Type: tea.KeyEnter},
	)

	assert.Equal(t, modeBrowse, m.mode)
	roster := dash.Snapshot().Roster
	require.Len(t, roster, 1)
	assert.Equal(t, "Felix", roster[0].Name)
	assert.Equal(t, 2500.0, roster[0].Salary)
	assert.Len(t, m.table.Rows(), 1)
}

func TestModelCreateValidationStaysInForm(t *testing.T) {
	m, dash := newTestModel(t)

	m = press(t, m, runes("n"), tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, modeForm, m.mode)
	assert.NotEmpty(t, dash.Snapshot().LastError)
	assert.Contains(t, m.View(), "name is required")
}

func TestModelEditSalary(t *testing.T) {
	m, dash := newTestModel(t, tom)

	m = press(t, m, runes("e"))
	require.Equal(t, modeEdit, m.mode)
	assert.Equal(t, "1000", m.salary.Value())

	m.salary.SetValue("")
	m = press(t, m, runes("1500.5"), tea.KeyMsg{Type: tea.KeyEnter})

	assert.Equal(t, modeBrowse, m.mode)
	assert.Equal(t, 1500.5, dash.Snapshot().Roster[0].Salary)
	assert.Equal(t, "1500.50", m.table.Rows()[0][4])
}

func TestModelDeleteConfirm(t *testing.T) {
	m, dash := newTestModel(t, tom)

	m = press(t, m, runes("d"))
	require.Equal(t, modeConfirm, m.mode)
	assert.Contains(t, m.View(), "Delete Tom")

	m = press(t, m, runes("n"))
	assert.Equal(t, modeBrowse, m.mode)
	assert.Len(t, dash.Snapshot().Roster, 1)

	m = press(t, m, runes("d"), runes("y"))
	assert.Empty(t, dash.Snapshot().Roster)
	assert.Empty(t, m.table.Rows())
}

func TestModelQuitClosesDashboard(t *testing.T) {
	m, dash := newTestModel(t, tom)

	_, cmd := m.Update(runes("q"))
	require.NotNil(t, cmd)
	_, isQuit := cmd().(tea.QuitMsg)
	assert.True(t, isQuit)
	assert.ErrorIs(t, dash.Load(context.Background()), dashboard.ErrClosed)
}

func TestModelHelpPerMode(t *testing.T) {
	m, _ := newTestModel(t, tom)
	assert.True(t, strings.Contains(m.View(), "q quit"))

	m = press(t, m, runes("n"))
	assert.Contains(t, m.View(), "tab next field")
}
