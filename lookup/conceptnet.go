package lookup

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ConceptNet looks up term definitions via the ConceptNet 5 API, using the
// DefinedAs/IsA edges attached to the term node.
type ConceptNet struct {
	baseURL string
	client  *http.Client
}

var _ Service = (*ConceptNet)(nil)

// NewConceptNet creates a ConceptNet lookup service.
func NewConceptNet() *ConceptNet {
	return &ConceptNet{
		baseURL: "https://api.conceptnet.io",
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// NewConceptNetWithBase creates a ConceptNet lookup service against a custom
// base URL. Used in tests against an httptest server.
func NewConceptNetWithBase(baseURL string) *ConceptNet {
	return &ConceptNet{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

type conceptNetResponse struct {
	Edges []struct {
		Rel struct {
			Label string `json:"label"`
		} `json:"rel"`
		SurfaceText string `json:"surfaceText"`
	} `json:"edges"`
}

// Lookup fetches definitional edges for the term.
func (c *ConceptNet) Lookup(ctx context.Context, term, language string) (*Definition, error) {
	node := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(term)), " ", "_")
	endpoint := fmt.Sprintf("%s/c/%s/%s?limit=20", c.baseURL, url.PathEscape(language), url.PathEscape(node))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %q in conceptnet", ErrNotFound, term)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("%w: conceptnet returned %d", ErrUnavailable, resp.StatusCode)
	}

	var result conceptNetResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	var parts []string
	for _, edge := range result.Edges {
		if edge.SurfaceText == "" {
			continue
		}
		switch edge.Rel.Label {
		case "DefinedAs", "IsA":
			parts = append(parts, strings.NewReplacer("[", "", "]", "").Replace(edge.SurfaceText))
		}
	}

	if len(parts) == 0 {
		return nil, fmt.Errorf("%w: %q in conceptnet", ErrNotFound, term)
	}

	return &Definition{Text: strings.Join(parts, " "), Source: "conceptnet"}, nil
}
