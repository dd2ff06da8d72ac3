// Package dashboard holds the roster view state and sequences user intents
// into proxy calls. State changes only after the proxy confirms a call.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/soyeahso/roster/internal/domain"
	"github.com/soyeahso/roster/internal/logging"
	"github.com/soyeahso/roster/internal/proxy"
)

// GenericErrorMessage is shown when a failure carries no usable message.
const GenericErrorMessage = "Something went wrong. Please try again."

var (
	ErrBusy          = errors.New("dashboard: operation already in flight")
	ErrClosed        = errors.New("dashboard: closed")
	ErrNoPendingEdit = errors.New("dashboard: no pending edit")
	ErrUnknownAgent  = errors.New("dashboard: unknown agent")
	ErrUnknownToken  = errors.New("dashboard: unknown confirmation token")
)

// ValidationError is a client-side input failure. No call was made.
type ValidationError struct {
	Fields []domain.FieldError
}

func (e *ValidationError) Error() string {
	return domain.JoinFieldErrors(e.Fields)
}

// Service is the proxy contract the dashboard drives. Both proxy.Forwarder
// and proxy.Client satisfy it.
type Service interface {
	ListAgents(ctx context.Context) ([]domain.Agent, error)
	CreateAgent(ctx context.Context, in domain.AgentInput) (domain.Agent, error)
	UpdateSalary(ctx context.Context, id string, salary float64) (domain.Agent, error)
	DeleteAgent(ctx context.Context, id string) (proxy.Confirmation, error)
}

var (
	_ Service = (*proxy.Client)(nil)
	_ Service = (*proxy.Forwarder)(nil)
)

// PendingEdit is the single in-progress salary edit.
type PendingEdit struct {
	AgentID    int64
	Staged     string // salary as typed
	Requesting bool   // a commit is in flight
}

// Confirmation is the first step of a two-step deletion. Pass Token to
// ConfirmDelete to execute it or to CancelDelete to drop it.
type Confirmation struct {
	Token   string
	AgentID int64
	Prompt  string
}

// State is a point-in-time copy of the dashboard.
type State struct {
	Roster      []domain.Agent
	PendingEdit *PendingEdit
	LastError   string
	Loading     bool
	Form        Form
	Creating    bool
	Busy        []int64 // ids with a call in flight, ascending
	Deletions   []Confirmation
}

// IsBusy reports whether id has a call in flight.
func (s State) IsBusy(id int64) bool {
	_, found := slices.BinarySearch(s.Busy, id)
	return found
}

// Dashboard owns the roster view. All methods are safe for concurrent use;
// service calls run outside the lock and their results are applied in the
// order they arrive.
type Dashboard struct {
	svc Service
	log *logging.Logger

	mu        sync.Mutex
	roster    []domain.Agent
	edit      *PendingEdit
	lastError string
	loading   bool
	form      Form
	creating  bool
	busy      map[int64]bool
	deletions map[string]Confirmation
	closed    bool
}

// New creates an empty dashboard over svc.
func New(svc Service, log *logging.Logger) *Dashboard {
	return &Dashboard{
		svc:       svc,
		log:       log.Sub("dashboard"),
		roster:    []domain.Agent{},
		busy:      make(map[int64]bool),
		deletions: make(map[string]Confirmation),
	}
}

// Load replaces the roster with the service's collection.
func (d *Dashboard) Load(ctx context.Context) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return ErrClosed
	}
	if d.loading {
		d.mu.Unlock()
		return ErrBusy
	}
	d.lastError = ""
	d.loading = true
	d.mu.Unlock()

	agents, err := d.svc.ListAgents(ctx)

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return ErrClosed
	}
	d.loading = false
	if err != nil {
		d.fail("load", err)
		return err
	}

	d.roster = slices.Clone(agents)
	if d.roster == nil {
		d.roster = []domain.Agent{}
	}
	if d.edit != nil && !d.edit.Requesting && d.indexOf(d.edit.AgentID) < 0 {
		d.edit = nil
	}
	for token, c := range d.deletions {
		if d.indexOf(c.AgentID) < 0 {
			delete(d.deletions, token)
		}
	}
	d.log.Debug().Int("agents", len(d.roster)).Msg("roster loaded")
	return nil
}

// SetForm replaces the new-agent form contents.
func (d *Dashboard) SetForm(f Form) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return ErrClosed
	}
	if d.creating {
		return ErrBusy
	}
	d.form = f
	return nil
}

// Create submits the form. On success the new record is appended to the
// roster and the form is cleared.
func (d *Dashboard) Create(ctx context.Context) (domain.Agent, error) {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return domain.Agent{}, ErrClosed
	}
	if d.creating {
		d.mu.Unlock()
		return domain.Agent{}, ErrBusy
	}
	d.lastError = ""
	in, fields := d.form.Parse()
	if len(fields) > 0 {
		err := &ValidationError{Fields: fields}
		d.lastError = err.Error()
		d.mu.Unlock()
		return domain.Agent{}, err
	}
	d.creating = true
	d.mu.Unlock()

	agent, err := d.svc.CreateAgent(ctx, in)

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return domain.Agent{}, ErrClosed
	}
	d.creating = false
	if err != nil {
		d.fail("create", err)
		return domain.Agent{}, err
	}

	if i := d.indexOf(agent.ID); i >= 0 {
		// a reload already picked it up
		d.roster[i] = agent
	} else {
		d.roster = append(d.roster, agent)
	}
	d.form = Form{}
	d.log.Debug().Int64("agentId", agent.ID).Msg("agent created")
	return agent, nil
}

// BeginEdit opens a salary edit on id, staging its current salary. Any
// other pending edit that is not yet committing is abandoned without a
// call.
func (d *Dashboard) BeginEdit(id int64) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return ErrClosed
	}
	i := d.indexOf(id)
	if i < 0 {
		return ErrUnknownAgent
	}
	if d.busy[id] {
		return ErrBusy
	}
	d.edit = &PendingEdit{
		AgentID: id,
		Staged:  strconv.FormatFloat(d.roster[i].Salary, 'f', -1, 64),
	}
	return nil
}

// StageSalary records the salary text of the pending edit.
func (d *Dashboard) StageSalary(text string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return ErrClosed
	}
	if d.edit == nil {
		return ErrNoPendingEdit
	}
	if d.edit.Requesting {
		return ErrBusy
	}
	d.edit.Staged = text
	return nil
}

// CancelEdit abandons the pending edit without a call.
func (d *Dashboard) CancelEdit() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return ErrClosed
	}
	if d.edit == nil {
		return ErrNoPendingEdit
	}
	if d.edit.Requesting {
		return ErrBusy
	}
	d.edit = nil
	return nil
}

// CommitEdit sends the staged salary. On success only that record's salary
// changes and the edit closes; on failure the edit stays open.
func (d *Dashboard) CommitEdit(ctx context.Context) (domain.Agent, error) {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return domain.Agent{}, ErrClosed
	}
	edit := d.edit
	if edit == nil {
		d.mu.Unlock()
		return domain.Agent{}, ErrNoPendingEdit
	}
	if edit.Requesting || d.busy[edit.AgentID] {
		d.mu.Unlock()
		return domain.Agent{}, ErrBusy
	}
	d.lastError = ""
	salary, fields := parseSalary(edit.Staged)
	if len(fields) > 0 {
		err := &ValidationError{Fields: fields}
		d.lastError = err.Error()
		d.mu.Unlock()
		return domain.Agent{}, err
	}
	id := edit.AgentID
	edit.Requesting = true
	d.busy[id] = true
	d.mu.Unlock()

	updated, err := d.svc.UpdateSalary(ctx, formatID(id), salary)

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return domain.Agent{}, ErrClosed
	}
	delete(d.busy, id)
	edit.Requesting = false
	if err != nil {
		d.fail("update salary", err)
		return domain.Agent{}, err
	}

	if d.edit == edit {
		d.edit = nil
	}
	i := d.indexOf(id)
	if i < 0 {
		// removed by a reload while the call was in flight
		return updated, nil
	}
	d.roster[i].Salary = updated.Salary
	d.log.Debug().Int64("agentId", id).Float64("salary", updated.Salary).Msg("salary updated")
	return d.roster[i], nil
}

// RequestDelete is the first step of a deletion. Nothing is sent until the
// returned token is confirmed.
func (d *Dashboard) RequestDelete(id int64) (Confirmation, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return Confirmation{}, ErrClosed
	}
	i := d.indexOf(id)
	if i < 0 {
		return Confirmation{}, ErrUnknownAgent
	}
	if d.busy[id] {
		return Confirmation{}, ErrBusy
	}
	c := Confirmation{
		Token:   uuid.New().String(),
		AgentID: id,
		Prompt:  fmt.Sprintf("Delete %s (#%d)? This cannot be undone.", d.roster[i].Name, id),
	}
	d.deletions[c.Token] = c
	return c, nil
}

// CancelDelete drops a deletion request.
func (d *Dashboard) CancelDelete(token string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return ErrClosed
	}
	if _, ok := d.deletions[token]; !ok {
		return ErrUnknownToken
	}
	delete(d.deletions, token)
	return nil
}

// ConfirmDelete executes a requested deletion. On success exactly that
// record leaves the roster; on failure the roster is unchanged.
func (d *Dashboard) ConfirmDelete(ctx context.Context, token string) (proxy.Confirmation, error) {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return proxy.Confirmation{}, ErrClosed
	}
	c, ok := d.deletions[token]
	if !ok {
		d.mu.Unlock()
		return proxy.Confirmation{}, ErrUnknownToken
	}
	if d.busy[c.AgentID] {
		d.mu.Unlock()
		return proxy.Confirmation{}, ErrBusy
	}
	delete(d.deletions, token)
	d.lastError = ""
	d.busy[c.AgentID] = true
	d.mu.Unlock()

	conf, err := d.svc.DeleteAgent(ctx, formatID(c.AgentID))

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return proxy.Confirmation{}, ErrClosed
	}
	delete(d.busy, c.AgentID)
	if err != nil {
		d.fail("delete", err)
		return proxy.Confirmation{}, err
	}

	if i := d.indexOf(c.AgentID); i >= 0 {
		d.roster = slices.Delete(d.roster, i, i+1)
	}
	if d.edit != nil && d.edit.AgentID == c.AgentID {
		d.edit = nil
	}
	for t, other := range d.deletions {
		if other.AgentID == c.AgentID {
			delete(d.deletions, t)
		}
	}
	d.log.Debug().Int64("agentId", c.AgentID).Msg("agent deleted")
	return conf, nil
}

// Snapshot returns a copy of the current state.
func (d *Dashboard) Snapshot() State {
	d.mu.Lock()
	defer d.mu.Unlock()

	s := State{
		Roster:    slices.Clone(d.roster),
		LastError: d.lastError,
		Loading:   d.loading,
		Form:      d.form,
		Creating:  d.creating,
	}
	if d.edit != nil {
		e := *d.edit
		s.PendingEdit = &e
	}
	for id := range d.busy {
		s.Busy = append(s.Busy, id)
	}
	slices.Sort(s.Busy)
	for _, c := range d.deletions {
		s.Deletions = append(s.Deletions, c)
	}
	slices.SortFunc(s.Deletions, func(a, b Confirmation) int { return strings.Compare(a.Token, b.Token) })
	return s
}

// Close abandons the dashboard. Calls still in flight complete, but their
// results are discarded and they return ErrClosed.
func (d *Dashboard) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.closed {
		d.closed = true
		d.log.Debug().Int("inflight", len(d.busy)).Msg("dashboard closed")
	}
}

// fail records err as the user-visible error. Callers hold d.mu.
func (d *Dashboard) fail(op string, err error) {
	d.lastError = ErrorMessage(err)
	d.log.Debug().Err(err).Str("op", op).Msg("operation failed")
}

func (d *Dashboard) indexOf(id int64) int {
	return slices.IndexFunc(d.roster, func(a domain.Agent) bool { return a.ID == id })
}

// ErrorMessage extracts the user-visible message from a failure.
func ErrorMessage(err error) string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Error()
	}
	var pe *proxy.Error
	if errors.As(err, &pe) {
		if msg := pe.Message(); msg != "" {
			return msg
		}
	}
	return GenericErrorMessage
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
