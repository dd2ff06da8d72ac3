// Package proxy forwards agent operations to a record store and normalizes
// every failure into an *Error. The Forwarder talks to the record store; the
// Client talks to a running proxy.
package proxy

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/soyeahso/roster/internal/domain"
	"github.com/soyeahso/roster/internal/logging"
	"github.com/soyeahso/roster/internal/version"
)

// Options configures a Forwarder or Client.
type Options struct {
	BaseURL string
	Token   string        // sent as a bearer credential when set
	Timeout time.Duration // zero means no client-enforced timeout
}

// Confirmation is the backend's acknowledgement of a deletion.
type Confirmation struct {
	Message string `json:"message"`
}

// transport issues JSON requests against one base URL.
type transport struct {
	base   string
	token  string
	client *http.Client
	log    *logging.Logger
}

func newTransport(opts Options, log *logging.Logger) *transport {
	return &transport{
		base:   strings.TrimRight(opts.BaseURL, "/"),
		token:  opts.Token,
		client: &http.Client{Timeout: opts.Timeout},
		log:    log,
	}
}

// do sends body (nil, a json.RawMessage, or any encodable value) and decodes
// a 2xx reply into out. Every failure comes back as an *Error.
func (t *transport) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, ok := body.(json.RawMessage)
		if !ok {
			var err error
			if payload, err = json.Marshal(body); err != nil {
				t.log.Error().Err(err).Str("path", path).Msg("failed to marshal request")
				return internalError()
			}
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, t.base+path, reader)
	if err != nil {
		t.log.Error().Err(err).Str("path", path).Msg("failed to create request")
		return internalError()
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", version.UserAgent())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if t.token != "" {
		req.Header.Set("Authorization", "Bearer "+t.token)
	}

	start := time.Now()
	resp, err := t.client.Do(req)
	if err != nil {
		t.log.Warn().Err(err).Str("method", method).Str("path", path).Msg("request failed")
		return internalError()
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		t.log.Warn().Err(err).Str("path", path).Msg("failed to read response")
		return internalError()
	}

	t.log.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("forwarded")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var errBody map[string]any
		if err := json.Unmarshal(respBody, &errBody); err != nil || errBody == nil {
			return &Error{Status: resp.StatusCode, Body: map[string]any{"error": DefaultMessage}}
		}
		return &Error{Status: resp.StatusCode, Body: errBody}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		t.log.Warn().Err(err).Str("path", path).Msg("malformed response")
		return internalError()
	}
	return nil
}

// agents is the agent collection under one path prefix.
type agents struct {
	t    *transport
	path string
}

func (a agents) item(id string) string {
	return fmt.Sprintf("%s/%s", a.path, url.PathEscape(id))
}

// fetch issues the call and returns the success body verbatim after
// checking it decodes into out.
func (a agents) fetch(ctx context.Context, method, path string, body any, out any) (json.RawMessage, error) {
	var raw json.RawMessage
	if err := a.t.do(ctx, method, path, body, &raw); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		a.t.log.Warn().Err(err).Str("path", path).Msg("unexpected response shape")
		return nil, internalError()
	}
	return raw, nil
}

func (a agents) list(ctx context.Context) ([]domain.Agent, json.RawMessage, error) {
	var out []domain.Agent
	raw, err := a.fetch(ctx, http.MethodGet, a.path, nil, &out)
	if err != nil {
		return nil, nil, err
	}
	if out == nil {
		// null is not a collection
		return nil, nil, internalError()
	}
	return out, raw, nil
}

func (a agents) create(ctx context.Context, body any) (domain.Agent, json.RawMessage, error) {
	var out domain.Agent
	raw, err := a.fetch(ctx, http.MethodPost, a.path, body, &out)
	if err != nil {
		return domain.Agent{}, nil, err
	}
	return out, raw, nil
}

func (a agents) update(ctx context.Context, id string, body any) (domain.Agent, json.RawMessage, error) {
	var out domain.Agent
	raw, err := a.fetch(ctx, http.MethodPut, a.item(id), body, &out)
	if err != nil {
		return domain.Agent{}, nil, err
	}
	return out, raw, nil
}

func (a agents) delete(ctx context.Context, id string) (Confirmation, error) {
	var out Confirmation
	if err := a.t.do(ctx, http.MethodDelete, a.item(id), nil, &out); err != nil {
		return Confirmation{}, err
	}
	return out, nil
}
