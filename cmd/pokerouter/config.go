// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/pdiddy/pokerouter/internal/capability"
	"github.com/pdiddy/pokerouter/internal/classify"
	"github.com/pdiddy/pokerouter/internal/compare"
	"github.com/pdiddy/pokerouter/internal/dex"
	"github.com/pdiddy/pokerouter/internal/llm"
	"github.com/pdiddy/pokerouter/internal/lookup"
	"github.com/pdiddy/pokerouter/internal/research"
	"github.com/pdiddy/pokerouter/internal/router"
	"github.com/pdiddy/pokerouter/internal/search"
	"github.com/pdiddy/pokerouter/pkg/types"
)

const envPrefix = "POKEROUTER"

// setDefaults registers every key so that environment overrides reach
// Unmarshal even when no config file sets them.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8000")
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 3*time.Minute)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("router.timeout", 60*time.Second)

	v.SetDefault("ai.model", llm.DefaultModel)
	v.SetDefault("ai.api_key", "")
	v.SetDefault("ai.base_url", "")
	v.SetDefault("ai.max_tokens", 4096)
	v.SetDefault("ai.max_retries", 3)
	v.SetDefault("ai.timeout", time.Duration(0))
	v.SetDefault("ai.requests_per_second", 0)
	v.SetDefault("ai.user_agent", "pokerouter")

	v.SetDefault("search.api_key", "")
	v.SetDefault("search.base_url", "")
	v.SetDefault("search.max_results", 5)
	v.SetDefault("search.max_retries", 3)
	v.SetDefault("search.timeout", time.Duration(0))
	v.SetDefault("search.requests_per_second", 0)
	v.SetDefault("search.user_agent", "pokerouter")

	v.SetDefault("lookup.backend", string(types.LookupPokeAPI))
	v.SetDefault("lookup.base_url", lookup.DefaultBaseURL)
	v.SetDefault("lookup.dex_path", "data/dex.db")
	v.SetDefault("lookup.max_retries", 3)
	v.SetDefault("lookup.timeout", time.Duration(0))
	v.SetDefault("lookup.requests_per_second", 10)
	v.SetDefault("lookup.user_agent", "pokerouter")

	v.SetDefault("log.level", "info")

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// Conventional provider variables, usually set through .env.
	v.BindEnv("ai.api_key", envPrefix+"_AI_API_KEY", "ANTHROPIC_API_KEY")
	v.BindEnv("search.api_key", envPrefix+"_SEARCH_API_KEY", "TAVILY_API_KEY")
}

// loadConfig decodes v into a Config and checks the values that would
// otherwise fail late.
func loadConfig(v *viper.Viper) (types.Config, error) {
	var c types.Config
	if err := v.Unmarshal(&c); err != nil {
		return c, fmt.Errorf("decoding config: %w", err)
	}
	switch c.Lookup.Backend {
	case types.LookupPokeAPI, types.LookupDex, types.LookupChain:
	default:
		return c, fmt.Errorf("unknown lookup backend %q: use pokeapi, dex, or chain", c.Lookup.Backend)
	}
	if c.Router.Timeout < 0 {
		return c, fmt.Errorf("router.timeout must not be negative")
	}
	return c, nil
}

// entitySource builds the configured lookup backend. The returned close
// function releases the dex database, if one was opened.
func entitySource(c types.Config) (capability.EntitySource, func() error, error) {
	noop := func() error { return nil }
	switch c.Lookup.Backend {
	case types.LookupDex, types.LookupChain:
		store, err := dex.Open(c.Lookup.DexPath)
		if err != nil {
			return nil, noop, err
		}
		if c.Lookup.Backend == types.LookupDex {
			return store, store.Close, nil
		}
		return lookup.Chain{store, lookup.NewPokeAPI(c.Lookup)}, store.Close, nil
	default:
		return lookup.NewPokeAPI(c.Lookup), noop, nil
	}
}

// capabilities binds one implementation per kind from c.
func capabilities(c types.Config, log *slog.Logger) (capability.Set, func() error, error) {
	src, closeFn, err := entitySource(c)
	if err != nil {
		return capability.Set{}, closeFn, err
	}
	client := llm.New(c.AI)
	return capability.Set{
		Classifier: &classify.Claude{LLM: client, Log: log},
		Searcher:   search.NewTavily(c.Search),
		Summarizer: &search.Claude{LLM: client},
		Lookup:     src,
		Researcher: &research.Claude{LLM: client, Log: log},
		Analyst:    &compare.Claude{LLM: client},
		Timeout:    c.Router.Timeout,
	}, closeFn, nil
}

// newRouter builds a Router from the loaded config. Callers must call the
// returned close function when done.
func newRouter() (*router.Router, func() error, error) {
	set, closeFn, err := capabilities(cfg, logger)
	if err != nil {
		return nil, closeFn, err
	}
	rt, err := router.New(set, logger)
	if err != nil {
		closeFn()
		return nil, func() error { return nil }, err
	}
	return rt, closeFn, nil
}
