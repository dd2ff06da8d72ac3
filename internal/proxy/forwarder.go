package proxy

import (
	"context"
	"encoding/json"

	"github.com/soyeahso/roster/internal/domain"
	"github.com/soyeahso/roster/internal/logging"
)

// Forwarder relays agent operations to the record store's /agents resource.
// It holds no state between calls and never retries.
type Forwarder struct {
	api agents
}

// NewForwarder creates a forwarder for the record store at opts.BaseURL.
func NewForwarder(opts Options, log *logging.Logger) *Forwarder {
	return &Forwarder{api: agents{t: newTransport(opts, log.Sub("forwarder")), path: "/agents"}}
}

// ListAgents returns the backend's collection in backend order.
func (f *Forwarder) ListAgents(ctx context.Context) ([]domain.Agent, error) {
	agents, _, err := f.api.list(ctx)
	return agents, err
}

// ListAgentsJSON returns the backend's collection body as received, once it
// is known to decode as a list of agents.
func (f *Forwarder) ListAgentsJSON(ctx context.Context) (json.RawMessage, error) {
	_, raw, err := f.api.list(ctx)
	return raw, err
}

// CreateAgent forwards a create request.
func (f *Forwarder) CreateAgent(ctx context.Context, in domain.AgentInput) (domain.Agent, error) {
	agent, _, err := f.api.create(ctx, in)
	return agent, err
}

// CreateAgentJSON forwards an encoded create body untouched. The backend's
// reply comes back both decoded and verbatim, so fields unknown to
// domain.Agent survive the round trip.
func (f *Forwarder) CreateAgentJSON(ctx context.Context, body json.RawMessage) (domain.Agent, json.RawMessage, error) {
	return f.api.create(ctx, body)
}

// UpdateSalary sends {"salary": salary} to the agent item.
func (f *Forwarder) UpdateSalary(ctx context.Context, id string, salary float64) (domain.Agent, error) {
	agent, _, err := f.api.update(ctx, id, domain.SalaryUpdate{Salary: salary})
	return agent, err
}

// UpdateSalaryJSON forwards an encoded salary update body untouched and
// returns the reply like CreateAgentJSON.
func (f *Forwarder) UpdateSalaryJSON(ctx context.Context, id string, body json.RawMessage) (domain.Agent, json.RawMessage, error) {
	return f.api.update(ctx, id, body)
}

// DeleteAgent deletes one agent. The backend's deletion-guard reply comes
// back as the assignment conflict; see IsAssignmentConflict.
func (f *Forwarder) DeleteAgent(ctx context.Context, id string) (Confirmation, error) {
	conf, err := f.api.delete(ctx, id)
	if err != nil {
		return Confirmation{}, rewriteDeleteError(err)
	}
	return conf, nil
}
