// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


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

const wikipediaUserAgent = "lecturegraph/1.0 (https://github.com/poiesic/lecturegraph)"

// Wikipedia looks up page summaries via the Wikimedia REST API.
type Wikipedia struct {
	baseURL string // override for tests; empty means the live per-language endpoint
	client  *http.Client
}

var _ Service = (*Wikipedia)(nil)

// NewWikipedia creates a Wikipedia lookup service.
func NewWikipedia() *Wikipedia {
	return &Wikipedia{
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// NewWikipediaWithBase creates a Wikipedia lookup service against a custom
// base URL. Used in tests against an httptest server.
func NewWikipediaWithBase(baseURL string) *Wikipedia {
	return &Wikipedia{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

type wikipediaSummary struct {
	Extract string `json:"extract"`
	Type    string `json:"type"`
}

// Lookup fetches the page summary for the term.
func (w *Wikipedia) Lookup(ctx context.Context, term, language string) (*Definition, error) {
	base := w.baseURL
	if base == "" {
		base = fmt.Sprintf("https://%s.wikipedia.org", language)
	}

	title := url.PathEscape(strings.ReplaceAll(strings.TrimSpace(term), " ", "_"))
	endpoint := fmt.Sprintf("%s/api/rest_v1/page/summary/%s", base, title)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", wikipediaUserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %q in %q wikipedia", ErrNotFound, term, language)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("%w: wikipedia returned %d", ErrUnavailable, resp.StatusCode)
	}

	var summary wikipediaSummary
	if err := json.NewDecoder(resp.Body).Decode(&summary); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	// Disambiguation pages describe many senses at once; treat as a miss
	// rather than feeding ambiguous text to the synthesizer.
	if summary.Extract == "" || summary.Type == "disambiguation" {
		return nil, fmt.Errorf("%w: %q in %q wikipedia", ErrNotFound, term, language)
	}

	return &Definition{Text: summary.Extract, Source: "wikipedia"}, nil
}
