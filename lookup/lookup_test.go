package lookup

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWikipediaLookup(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/rest_v1/page/summary/Mitosis", r.URL.Path)
		assert.Contains(t, r.Header.Get("User-Agent"), "lecturegraph")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"extract": "Mitosis is a part of the cell cycle.", "type": "standard"}`))
	}))
	defer srv.Close()

	wiki := NewWikipediaWithBase(srv.URL)
	def, err := wiki.Lookup(context.Background(), "Mitosis", "en")
	require.NoError(t, err)
	assert.Equal(t, "Mitosis is a part of the cell cycle.", def.Text)
	assert.Equal(t, "wikipedia", def.Source)
}

func TestWikipediaLookup_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	wiki := NewWikipediaWithBase(srv.URL)
	_, err := wiki.Lookup(context.Background(), "nonexistent term", "en")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestWikipediaLookup_DisambiguationIsMiss(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"extract": "Cell may refer to:", "type": "disambiguation"}`))
	}))
	defer srv.Close()

	wiki := NewWikipediaWithBase(srv.URL)
	_, err := wiki.Lookup(context.Background(), "cell", "en")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestWikipediaLookup_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	wiki := NewWikipediaWithBase(srv.URL)
	_, err := wiki.Lookup(context.Background(), "mitosis", "en")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestConceptNetLookup(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/c/en/cell_biology", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"edges": [
			{"rel": {"label": "IsA"}, "surfaceText": "[[cell biology]] is [[a branch of biology]]"},
			{"rel": {"label": "RelatedTo"}, "surfaceText": "[[cell biology]] is related to [[cells]]"},
			{"rel": {"label": "IsA"}, "surfaceText": ""}
		]}`))
	}))
	defer srv.Close()

	cn := NewConceptNetWithBase(srv.URL)
	def, err := cn.Lookup(context.Background(), "Cell Biology", "en")
	require.NoError(t, err)
	assert.Equal(t, "cell biology is a branch of biology", def.Text)
	assert.Equal(t, "conceptnet", def.Source)
}

func TestConceptNetLookup_NoDefinitionalEdges(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"edges": [
			{"rel": {"label": "RelatedTo"}, "surfaceText": "[[mitosis]] is related to [[cells]]"}
		]}`))
	}))
	defer srv.Close()

	cn := NewConceptNetWithBase(srv.URL)
	_, err := cn.Lookup(context.Background(), "mitosis", "en")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestChainLookupAll(t *testing.T) {
	hit := ServiceFunc(func(ctx context.Context, term, language string) (*Definition, error) {
		return &Definition{Text: "a definition", Source: "first"}, nil
	})
	miss := ServiceFunc(func(ctx context.Context, term, language string) (*Definition, error) {
		return nil, ErrNotFound
	})
	second := ServiceFunc(func(ctx context.Context, term, language string) (*Definition, error) {
		return &Definition{Text: "another definition", Source: "second"}, nil
	})

	chain := NewChain(hit, miss, second)
	defs, err := chain.LookupAll(context.Background(), "mitosis", "en")
	require.NoError(t, err)
	require.Len(t, defs, 2)
	assert.Equal(t, "first", defs[0].Source)
	assert.Equal(t, "second", defs[1].Source)
}

func TestChainLookupAll_TransportErrorDoesNotStopChain(t *testing.T) {
	transportErr := errors.New("connection refused")
	failing := ServiceFunc(func(ctx context.Context, term, language string) (*Definition, error) {
		return nil, transportErr
	})
	ok := ServiceFunc(func(ctx context.Context, term, language string) (*Definition, error) {
		return &Definition{Text: "still answered", Source: "backup"}, nil
	})

	chain := NewChain(failing, ok)
	defs, err := chain.LookupAll(context.Background(), "mitosis", "en")
	assert.ErrorIs(t, err, transportErr)
	require.Len(t, defs, 1)
	assert.Equal(t, "backup", defs[0].Source)
}

func TestChainLookupAll_Empty(t *testing.T) {
	chain := NewChain()
	defs, err := chain.LookupAll(context.Background(), "mitosis", "en")
	assert.NoError(t, err)
	assert.Empty(t, defs)
}
