// Package ssodnet talks to the SsODNet web services: quaero for name
// resolution, ssoCard for per-object property documents, and the published
// index dump used to build the local index.
package ssodnet

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/JulienPeloton/rocks/internal/naming"
	"github.com/JulienPeloton/rocks/internal/resolver"
)

const userAgent = "rocks (https://github.com/JulienPeloton/rocks)"

// Client queries the SsODNet services.
type Client struct {
	quaeroURL  string
	cardURL    string
	indexURL   string
	httpClient *http.Client
}

// New creates a client for the given service endpoints.
func New(quaeroURL, cardURL, indexURL string) *Client {
	return NewWithHTTPClient(quaeroURL, cardURL, indexURL, &http.Client{
		Timeout: 30 * time.Second,
	})
}

// NewWithHTTPClient creates a client with a custom HTTP client.
func NewWithHTTPClient(quaeroURL, cardURL, indexURL string, httpClient *http.Client) *Client {
	return &Client{
		quaeroURL:  strings.TrimRight(quaeroURL, "/"),
		cardURL:    strings.TrimRight(cardURL, "/"),
		indexURL:   indexURL,
		httpClient: httpClient,
	}
}

type quaeroResponse struct {
	Data  []quaeroHit `json:"data"`
	Total int         `json:"total"`
}

type quaeroHit struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Type    string   `json:"type"`
	Aliases []string `json:"aliases"`
}

// number returns the catalogue number from the first integer alias, or 0
// for bodies that have not been numbered yet.
func (h quaeroHit) number() int64 {
	for _, alias := range h.Aliases {
		if n, err := strconv.ParseInt(alias, 10, 64); err == nil && n >= 1 {
			return n
		}
	}
	return 0
}

// Lookup resolves an identifier through the quaero search service. A miss
// is (zero, false, nil); transport and HTTP failures are returned as errors.
func (c *Client) Lookup(ctx context.Context, id resolver.Identifier) (resolver.Resolution, bool, error) {
	if id.IsEmpty() {
		return resolver.Resolution{}, false, nil
	}

	query := fmt.Sprintf(`type:("Dwarf Planet" OR Asteroid) AND "%s"`, id.String())
	path := c.quaeroURL + "?q=" + url.QueryEscape(query) + "&from=rocks&limit=10"

	slog.Debug("querying quaero", "identifier", id.String())

	resp, err := c.get(ctx, path)
	if err != nil {
		return resolver.Resolution{}, false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return resolver.Resolution{}, false, parseError(resp)
	}

	var result quaeroResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return resolver.Resolution{}, false, fmt.Errorf("failed to decode response: %w", err)
	}

	hit, ok := pickHit(result.Data, id)
	if !ok {
		return resolver.Resolution{}, false, nil
	}

	return resolver.Resolution{
		Name:   hit.Name,
		Number: hit.number(),
		ID:     hit.ID,
	}, true, nil
}

// pickHit selects the hit whose reduced name or alias matches the query
// exactly, falling back to the first hit quaero returned.
func pickHit(hits []quaeroHit, id resolver.Identifier) (quaeroHit, bool) {
	if len(hits) == 0 {
		return quaeroHit{}, false
	}

	want := naming.Reduce(id.String())
	for _, h := range hits {
		if naming.Reduce(h.Name) == want {
			return h, true
		}
		for _, alias := range h.Aliases {
			if naming.Reduce(alias) == want {
				return h, true
			}
		}
	}
	return hits[0], true
}

// Card fetches the ssoCard for a SsODNet id. The document is returned
// verbatim; callers decide how much of it to interpret.
func (c *Client) Card(ctx context.Context, id string) (json.RawMessage, error) {
	if id == "" {
		return nil, fmt.Errorf("empty ssodnet id")
	}

	resp, err := c.get(ctx, c.cardURL+"/"+url.PathEscape(id))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("no ssoCard for %q", id)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, parseError(resp)
	}

	card, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	return card, nil
}

// DownloadIndex streams the published index dump. The caller owns the
// returned body and must close it.
func (c *Client) DownloadIndex(ctx context.Context) (io.ReadCloser, error) {
	resp, err := c.get(ctx, c.indexURL)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, parseError(resp)
	}
	return resp.Body, nil
}

func (c *Client) get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	return c.httpClient.Do(req)
}

func parseError(resp *http.Response) error {
	var errResp map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&errResp); err != nil {
		return fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	if msg, ok := errResp["error"].(string); ok {
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, msg)
	}

	return fmt.Errorf("HTTP %d: %v", resp.StatusCode, errResp)
}
