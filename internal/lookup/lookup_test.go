// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package lookup

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/pokerouter/internal/capability"
	"github.com/pdiddy/pokerouter/internal/httputil"
	"github.com/pdiddy/pokerouter/pkg/types"
)

func TestMain(m *testing.M) {
	httputil.RetryBaseDelay = time.Millisecond
	os.Exit(m.Run())
}

const pikachuJSON = `{
  "name": "pikachu",
  "height": 4,
  "weight": 60,
  "stats": [
    {"base_stat": 35, "stat": {"name": "hp"}},
    {"base_stat": 55, "stat": {"name": "attack"}},
    {"base_stat": 40, "stat": {"name": "defense"}},
    {"base_stat": 50, "stat": {"name": "special-attack"}},
    {"base_stat": 50, "stat": {"name": "special-defense"}},
    {"base_stat": 90, "stat": {"name": "speed"}}
  ],
  "types": [{"slot": 1, "type": {"name": "electric"}}],
  "abilities": [{"ability": {"name": "static"}}, {"ability": {"name": "lightning-rod"}}],
  "sprites": {"front_default": "https://img.test/25.png"}
}`

func newTestSource(t *testing.T, h http.HandlerFunc) *PokeAPI {
	t.Helper()
	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)
	return &PokeAPI{BaseURL: ts.URL + "/", HTTP: &httputil.Client{HTTP: ts.Client(), MaxRetries: 1}}
}

func TestPokeAPI_Fetch(t *testing.T) {
	var gotPath string
	src := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte(pikachuJSON))
	})

	rec, err := src.Fetch(context.Background(), "  Pikachu ")
	require.NoError(t, err)

	assert.Equal(t, "/pikachu", gotPath)
	assert.Equal(t, "pikachu", rec.Name)
	assert.Equal(t, map[string]int{
		"hp": 35, "attack": 55, "defense": 40,
		"special_attack": 50, "special_defense": 50, "speed": 90,
	}, rec.BaseStats)
	assert.True(t, rec.HasAllStats())
	assert.Equal(t, []string{"electric"}, rec.Types)
	assert.Equal(t, []string{"static", "lightning-rod"}, rec.Abilities)
	assert.InDelta(t, 0.4, rec.Height, 1e-9)
	assert.InDelta(t, 6.0, rec.Weight, 1e-9)
	assert.Equal(t, "https://img.test/25.png", rec.SpriteURL)
	assert.Empty(t, rec.Details)
}

func TestPokeAPI_Failures(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		kind     FailureKind
		notFound bool
		prefix   string
	}{
		{"404", http.StatusNotFound, `Not Found`, NotFound, true, "Failed to fetch data for nonexistent: "},
		{"5xx", http.StatusInternalServerError, ``, Transient, false, "Failed to fetch data for nonexistent: "},
		{"rate limited", http.StatusTooManyRequests, ``, Transient, false, "Failed to fetch data for nonexistent: "},
		{"undecodable", http.StatusOK, `{not json`, Malformed, false, "Failed to process data for nonexistent: "},
		{"missing stat", http.StatusOK, `{"name":"x","stats":[{"base_stat":1,"stat":{"name":"hp"}}]}`, Malformed, false, "Failed to process data for nonexistent: "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := newTestSource(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})

			_, err := src.Fetch(context.Background(), "nonexistent")
			require.Error(t, err)

			var le *Error
			require.ErrorAs(t, err, &le)
			assert.Equal(t, tt.kind, le.Kind)
			assert.Equal(t, tt.notFound, errors.Is(err, ErrNotFound))
			assert.Equal(t, !tt.notFound, capability.IsTransient(err))
			assert.Contains(t, err.Error(), tt.prefix)
		})
	}
}

func TestPokeAPI_EmptyName(t *testing.T) {
	src := newTestSource(t, func(http.ResponseWriter, *http.Request) {
		t.Fatal("no request expected")
	})
	_, err := src.Fetch(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPokeAPI_NetworkFailure(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	url := ts.URL
	ts.Close()

	src := &PokeAPI{BaseURL: url}
	_, err := src.Fetch(context.Background(), "pikachu")
	var le *Error
	require.ErrorAs(t, err, &le)
	assert.Equal(t, Transient, le.Kind)
}

func TestNewPokeAPI_DefaultBaseURL(t *testing.T) {
	assert.Equal(t, DefaultBaseURL, NewPokeAPI(types.LookupConfig{}).BaseURL)
	assert.Equal(t, "http://x", NewPokeAPI(types.LookupConfig{BaseURL: "http://x"}).BaseURL)
}

type mapSource map[string]*types.EntityRecord

func (m mapSource) Fetch(_ context.Context, name string) (*types.EntityRecord, error) {
	if rec, ok := m[types.NormalizeName(name)]; ok {
		return rec, nil
	}
	return nil, NotFoundError(name)
}

type failingSource struct{ err error }

func (f failingSource) Fetch(context.Context, string) (*types.EntityRecord, error) {
	return nil, f.err
}

func TestChain(t *testing.T) {
	local := mapSource{"eevee": {Name: "eevee"}}
	remote := mapSource{"eevee": {Name: "eevee-remote"}, "pikachu": {Name: "pikachu"}}

	t.Run("first source wins", func(t *testing.T) {
		rec, err := Chain{local, remote}.Fetch(context.Background(), "Eevee")
		require.NoError(t, err)
		assert.Equal(t, "eevee", rec.Name)
	})

	t.Run("falls through on not found", func(t *testing.T) {
		rec, err := Chain{local, remote}.Fetch(context.Background(), "pikachu")
		require.NoError(t, err)
		assert.Equal(t, "pikachu", rec.Name)
	})

	t.Run("stops on transient", func(t *testing.T) {
		boom := &Error{Name: "pikachu", Kind: Transient, Err: errors.New("down")}
		_, err := Chain{failingSource{boom}, remote}.Fetch(context.Background(), "pikachu")
		assert.ErrorIs(t, err, boom)
	})

	t.Run("all missing", func(t *testing.T) {
		_, err := Chain{local, remote}.Fetch(context.Background(), "mew")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("empty chain", func(t *testing.T) {
		_, err := Chain{}.Fetch(context.Background(), "mew")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}
