package proxy

import (
	"context"

	"github.com/soyeahso/roster/internal/domain"
	"github.com/soyeahso/roster/internal/logging"
)

// Client calls a running proxy's /api/agents resource. Failures arrive
// already normalized by the proxy and are returned as *Error.
type Client struct {
	api agents
}

// NewClient creates a client for the proxy at opts.BaseURL.
func NewClient(opts Options, log *logging.Logger) *Client {
	return &Client{api: agents{t: newTransport(opts, log.Sub("client")), path: "/api/agents"}}
}

func (c *Client) ListAgents(ctx context.Context) ([]domain.Agent, error) {
	agents, _, err := c.api.list(ctx)
	return agents, err
}

func (c *Client) CreateAgent(ctx context.Context, in domain.AgentInput) (domain.Agent, error) {
	agent, _, err := c.api.create(ctx, in)
	return agent, err
}

func (c *Client) UpdateSalary(ctx context.Context, id string, salary float64) (domain.Agent, error) {
	agent, _, err := c.api.update(ctx, id, domain.SalaryUpdate{Salary: salary})
	return agent, err
}

func (c *Client) DeleteAgent(ctx context.Context, id string) (Confirmation, error) {
	return c.api.delete(ctx, id)
}
