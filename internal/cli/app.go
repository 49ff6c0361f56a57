package cli

import (
	"net/http"
	"os"

	"github.com/JulienPeloton/rocks/internal/cache"
	"github.com/JulienPeloton/rocks/internal/config"
	"github.com/JulienPeloton/rocks/internal/index"
	"github.com/JulienPeloton/rocks/internal/resolver"
	"github.com/JulienPeloton/rocks/internal/ssodnet"
)

// app bundles the collaborators commands work with, wired from the loaded
// configuration: the cache directory, the SsODNet client and, on demand,
// the local index.
type app struct {
	cfg    *config.Config
	cache  *cache.Cache
	client *ssodnet.Client
}

// newApp loads configuration and wires the collaborators. No files are
// touched yet; commands open the index explicitly when they need it.
func newApp(opts *RootOptions) (*app, error) {
	cfg, err := config.Load(opts.Config)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load configuration", err)
	}

	return &app{
		cfg:   cfg,
		cache: cache.New(cfg.CacheDir),
		client: ssodnet.NewWithHTTPClient(cfg.QuaeroURL, cfg.CardURL, cfg.IndexURL, &http.Client{
			Timeout: cfg.HTTPTimeout(),
		}),
	}, nil
}

// openIndex opens the local index database, creating the cache directory
// and an empty index on first use. An empty index simply misses every
// lookup, so resolution still works through the remote fallback.
func (a *app) openIndex() (*index.Index, error) {
	if err := os.MkdirAll(a.cache.Dir(), 0o755); err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to create cache directory", err)
	}
	ix, err := index.Open(a.cache.IndexPath())
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open local index", err)
	}
	return ix, nil
}

// newResolver wires a resolver over the local index and the SsODNet
// client. The returned closer releases the index handle.
func (a *app) newResolver() (*resolver.Resolver, func() error, error) {
	ix, err := a.openIndex()
	if err != nil {
		return nil, nil, err
	}
	return resolver.New(ix, a.client), ix.Close, nil
}
