// Package breeds checks agent breeds against TheCatAPI breed catalog.
package breeds

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/soyeahso/roster/internal/version"
)

// listed is how many valid names an InvalidBreedError shows.
const listed = 5

// ErrUnavailable is returned when the catalog cannot be fetched or parsed.
var ErrUnavailable = errors.New("breed catalog unavailable")

// InvalidBreedError reports a breed that is not in the catalog.
type InvalidBreedError struct {
	Breed string
	Valid []string // lowercased catalog names, in catalog order
}

func (e *InvalidBreedError) Error() string {
	shown := e.Valid
	if len(shown) > listed {
		shown = shown[:listed]
	}
	return fmt.Sprintf("Invalid breed. Valid breeds: %s...", strings.Join(shown, ", "))
}

// Client fetches the breed catalog over HTTP.
type Client struct {
	url    string
	client *http.Client
}

// NewClient creates a catalog client for the given list URL.
func NewClient(url string) *Client {
	return &Client{
		url:    url,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// Names fetches the catalog and returns the lowercased breed names.
func (c *Client) Names(ctx context.Context) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", version.UserAgent())

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %v", ErrUnavailable, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: catalog returned %d", ErrUnavailable, resp.StatusCode)
	}

	var entries []struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, fmt.Errorf("%w: parsing response: %v", ErrUnavailable, err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Name != "" {
			names = append(names, strings.ToLower(e.Name))
		}
	}
	return names, nil
}

// Validate returns nil if breed is in the catalog, ignoring case, and an
// *InvalidBreedError otherwise.
func (c *Client) Validate(ctx context.Context, breed string) error {
	names, err := c.Names(ctx)
	if err != nil {
		return err
	}
	want := strings.ToLower(strings.TrimSpace(breed))
	for _, n := range names {
		if n == want {
			return nil
		}
	}
	return &InvalidBreedError{Breed: breed, Valid: names}
}
