// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package lookup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/pdiddy/pokerouter/internal/httputil"
	"github.com/pdiddy/pokerouter/pkg/types"
)

// DefaultBaseURL is the PokeAPI pokemon endpoint.
const DefaultBaseURL = "https://pokeapi.co/api/v2/pokemon"

// PokeAPI fetches entities from a PokeAPI-compatible endpoint.
type PokeAPI struct {
	BaseURL string
	HTTP    *httputil.Client
}

// NewPokeAPI builds a PokeAPI source from cfg.
func NewPokeAPI(cfg types.LookupConfig) *PokeAPI {
	base := cfg.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	return &PokeAPI{BaseURL: base, HTTP: httputil.NewClient(cfg.HTTPConfig)}
}

type pokemonPayload struct {
	Name   string  `json:"name"`
	Height float64 `json:"height"`
	Weight float64 `json:"weight"`
	Stats  []struct {
		BaseStat int `json:"base_stat"`
		Stat     struct {
			Name string `json:"name"`
		} `json:"stat"`
	} `json:"stats"`
	Types []struct {
		Type struct {
			Name string `json:"name"`
		} `json:"type"`
	} `json:"types"`
	Abilities []struct {
		Ability struct {
			Name string `json:"name"`
		} `json:"ability"`
	} `json:"abilities"`
	Sprites struct {
		FrontDefault string `json:"front_default"`
	} `json:"sprites"`
}

// Fetch looks up name (trimmed, lower-cased) and normalizes the payload.
func (p *PokeAPI) Fetch(ctx context.Context, name string) (*types.EntityRecord, error) {
	key := types.NormalizeName(name)
	if key == "" {
		return nil, notFound(name, errors.New("empty name"))
	}

	reqURL := strings.TrimRight(p.BaseURL, "/") + "/" + url.PathEscape(key)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, &Error{Name: name, Kind: Transient, Err: fmt.Errorf("creating request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")

	hc := p.HTTP
	if hc == nil {
		hc = &httputil.Client{}
	}
	resp, err := hc.Do(ctx, req)
	if err != nil {
		return nil, &Error{Name: name, Kind: Transient, Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, notFound(name, fmt.Errorf("404 Not Found for url: %s", reqURL))
	case resp.StatusCode != http.StatusOK:
		return nil, &Error{Name: name, Kind: Transient, Err: fmt.Errorf("PokeAPI returned HTTP %d", resp.StatusCode)}
	}

	var payload pokemonPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, &Error{Name: name, Kind: Malformed, Err: fmt.Errorf("decoding response: %w", err)}
	}

	rec, err := normalize(key, payload)
	if err != nil {
		return nil, &Error{Name: name, Kind: Malformed, Err: err}
	}
	return rec, nil
}

// normalize maps a raw payload onto the canonical record. Height and weight
// arrive in decimetres and hectograms.
func normalize(key string, p pokemonPayload) (*types.EntityRecord, error) {
	stats := make(map[string]int, len(types.StatKeys))
	for _, s := range p.Stats {
		k := strings.ReplaceAll(s.Stat.Name, "-", "_")
		stats[k] = s.BaseStat
	}
	base := make(map[string]int, len(types.StatKeys))
	for _, k := range types.StatKeys {
		v, ok := stats[k]
		if !ok {
			return nil, fmt.Errorf("missing stat %q", k)
		}
		base[k] = v
	}

	rec := &types.EntityRecord{
		Name:      types.NormalizeName(p.Name),
		BaseStats: base,
		Types:     make([]string, 0, len(p.Types)),
		Abilities: make([]string, 0, len(p.Abilities)),
		Height:    p.Height / 10,
		Weight:    p.Weight / 10,
		Details:   []string{},
		SpriteURL: p.Sprites.FrontDefault,
	}
	if rec.Name == "" {
		rec.Name = key
	}
	for _, t := range p.Types {
		rec.Types = append(rec.Types, t.Type.Name)
	}
	for _, a := range p.Abilities {
		rec.Abilities = append(rec.Abilities, a.Ability.Name)
	}
	return rec, nil
}
