// Package app assembles the adapters, connectors and services from settings.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"sync"

	"github.com/drewfsc/saturday-night/internal/adapters/driven/auth"
	"github.com/drewfsc/saturday-night/internal/adapters/driven/config/file"
	"github.com/drewfsc/saturday-night/internal/adapters/driven/fixture"
	"github.com/drewfsc/saturday-night/internal/adapters/driven/storage/memory"
	"github.com/drewfsc/saturday-night/internal/adapters/driven/storage/redis"
	"github.com/drewfsc/saturday-night/internal/adapters/driven/storage/sqlite"
	"github.com/drewfsc/saturday-night/internal/connectors/google/sheets"
	"github.com/drewfsc/saturday-night/internal/connectors/quickbooks"
	"github.com/drewfsc/saturday-night/internal/core/domain"
	"github.com/drewfsc/saturday-night/internal/core/ports/driven"
	"github.com/drewfsc/saturday-night/internal/core/ports/driving"
	"github.com/drewfsc/saturday-night/internal/core/services"
	"github.com/drewfsc/saturday-night/internal/logger"
	"github.com/drewfsc/saturday-night/internal/metrics"
)

// Ensure App implements the driving ports it delegates.
var (
	_ driving.Dispatcher  = (*App)(nil)
	_ driving.Interpreter = (*App)(nil)
)

// Name is announced to MCP clients.
const Name = "saturday-night"

// Options configures New.
type Options struct {
	// ConfigDir holds config.toml. Empty means ~/.saturday-night.
	ConfigDir string

	// Version is announced on initialize.
	Version string

	// HTTPClient is used by the ledger connector and token refresh. Optional.
	HTTPClient *http.Client

	// EnvLookup replaces os.LookupEnv for config overrides. Optional.
	EnvLookup func(string) (string, bool)
}

// App owns the running components. Dispatch and interpretation are
// delegated to the components built from the latest settings, so a config
// reload takes effect for the next request.
type App struct {
	opts     Options
	config   *file.ConfigStore
	settings *services.SettingsService

	mu      sync.RWMutex
	current *components
}

type components struct {
	settings    domain.AppSettings
	interpreter *services.InterpreterService
	dispatcher  *services.DispatcherService
	closers     []io.Closer
}

// New loads the configuration and builds every component.
func New(ctx context.Context, opts Options) (*App, error) {
	if opts.Version == "" {
		opts.Version = "dev"
	}

	var storeOpts []file.Option
	if opts.EnvLookup != nil {
		storeOpts = append(storeOpts, file.WithEnvLookup(opts.EnvLookup))
	}
	config, err := file.NewConfigStore(opts.ConfigDir, storeOpts...)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}

	a := &App{
		opts:     opts,
		config:   config,
		settings: services.NewSettingsService(config),
	}
	c, err := a.build(ctx)
	if err != nil {
		return nil, err
	}
	a.current = c
	return a, nil
}

// Settings returns the settings service.
func (a *App) Settings() driving.SettingsService {
	return a.settings
}

// ConfigPath returns the path of the config file.
func (a *App) ConfigPath() string {
	return a.config.Path()
}

// CurrentSettings returns the settings the running components were built from.
func (a *App) CurrentSettings() domain.AppSettings {
	return a.components().settings
}

// Reload rebuilds the components from the current configuration. On
// failure the previous components stay in service.
func (a *App) Reload(ctx context.Context) error {
	if err := a.config.Load(); err != nil {
		return err
	}
	next, err := a.build(ctx)
	if err != nil {
		return err
	}

	a.mu.Lock()
	prev := a.current
	a.current = next
	a.mu.Unlock()

	closeAll(prev.closers)
	logger.Info("configuration reloaded")
	return nil
}

// Watch reloads whenever the config file changes. It blocks until ctx is done.
func (a *App) Watch(ctx context.Context) error {
	return a.config.Watch(ctx, func() {
		if err := a.Reload(ctx); err != nil {
			logger.Warn("keeping previous configuration: %v", err)
		}
	})
}

// Close releases cache connections.
func (a *App) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.current == nil {
		return nil
	}
	err := closeAll(a.current.closers)
	a.current.closers = nil
	return err
}

// Dispatch implements driving.Dispatcher.
func (a *App) Dispatch(ctx context.Context, req domain.RPCRequest) domain.RPCResponse {
	return a.components().dispatcher.Dispatch(ctx, req)
}

// Tools implements driving.Dispatcher.
func (a *App) Tools() []domain.ToolDescriptor {
	return a.components().dispatcher.Tools()
}

// Call implements driving.Dispatcher.
func (a *App) Call(ctx context.Context, name string, args map[string]any) (*domain.FormattedResult, error) {
	return a.components().dispatcher.Call(ctx, name, args)
}

// ServerInfo implements driving.Dispatcher.
func (a *App) ServerInfo() (string, string) {
	return a.components().dispatcher.ServerInfo()
}

// Interpret implements driving.Interpreter.
func (a *App) Interpret(text string, overrides domain.Overrides) (domain.QueryIntent, error) {
	return a.components().interpreter.Interpret(text, overrides)
}

// InterpretAs implements driving.Interpreter.
func (a *App) InterpretAs(text string, action domain.Action, overrides domain.Overrides) (domain.QueryIntent, error) {
	return a.components().interpreter.InterpretAs(text, action, overrides)
}

func (a *App) components() *components {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.current
}

func (a *App) build(ctx context.Context) (*components, error) {
	if err := a.settings.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	settings, err := a.settings.Get()
	if err != nil {
		return nil, err
	}

	c := &components{settings: *settings}

	cache, closer, err := a.buildCache(ctx, settings.Cache)
	if err != nil {
		return nil, err
	}
	if closer != nil {
		c.closers = append(c.closers, closer)
	}

	factory := auth.NewFactory(a.opts.HTTPClient, settings.Upstream.Timeout)
	tabular, err := a.buildTabular(factory, settings)
	if err != nil {
		closeAll(c.closers)
		return nil, err
	}
	ledger, err := a.buildLedger(factory, settings)
	if err != nil {
		closeAll(c.closers)
		return nil, err
	}

	c.interpreter = services.NewInterpreterService(settings.Sources)
	tools := services.NewToolServices(
		c.interpreter,
		services.NewTabularService(tabular),
		services.NewInvoiceService(ledger),
		services.NewFormatterService(),
		cache,
		settings.Cache.TTL,
		services.WithCacheObserver(metrics.ObserveCacheLookup),
	)
	registry, err := services.NewRegistry(services.DefaultTools()...)
	if err != nil {
		closeAll(c.closers)
		return nil, err
	}
	c.dispatcher = services.NewDispatcherService(registry, tools,
		services.WithServerInfo(Name, a.opts.Version),
		services.WithCallObserver(metrics.ObserveToolCall))

	logger.Debug("cache backend %s, ttl %s", settings.Cache.Backend, settings.Cache.TTL)
	return c, nil
}

// buildCache returns nil when memoization is disabled.
func (a *App) buildCache(ctx context.Context, cfg domain.CacheSettings) (driven.CacheBackend, io.Closer, error) {
	if !cfg.Enabled() {
		return nil, nil, nil
	}
	switch cfg.Backend {
	case domain.CacheBackendSQLite:
		dir := cfg.SQLiteDir
		if dir == "" {
			dir = filepath.Join(filepath.Dir(a.config.Path()), "data")
		}
		c, err := sqlite.NewCache(dir)
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite cache: %w", err)
		}
		return c, c, nil
	case domain.CacheBackendRedis:
		c, err := redis.New(ctx, cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("connect redis cache: %w", err)
		}
		return c, c, nil
	default:
		return memory.NewCache(), nil, nil
	}
}

func (a *App) buildTabular(factory *auth.Factory, s *domain.AppSettings) (driven.TabularBackend, error) {
	provider := factory.GoogleProvider(s.Google, a.persist(services.KeyGoogleAccess, services.KeyGoogleRefresh, services.KeyGoogleExpiry))
	// The client keeps ctx for token lookups, so it must outlive the build.
	client, err := sheets.New(context.Background(), provider, s.Upstream.Timeout)
	if err != nil {
		return nil, err
	}
	return client, nil
}

func (a *App) buildLedger(factory *auth.Factory, s *domain.AppSettings) (driven.LedgerBackend, error) {
	if s.QuickBooks.UsesFixture() {
		ledger, err := fixture.Load(s.QuickBooks.FixturePath)
		if err != nil {
			return nil, err
		}
		logger.Debug("serving %d invoices from %s", ledger.Len(), s.QuickBooks.FixturePath)
		return ledger, nil
	}

	provider := factory.QuickBooksProvider(s.QuickBooks, a.persist(services.KeyQBAccess, services.KeyQBRefresh, services.KeyQBExpiry))
	var opts []quickbooks.Option
	if a.opts.HTTPClient != nil {
		opts = append(opts, quickbooks.WithHTTPClient(a.opts.HTTPClient))
	}
	return quickbooks.New(s.QuickBooks, provider, s.Upstream.Timeout, opts...), nil
}

// persist saves refreshed tokens under the given keys. The expiry is
// stored so a provider rebuilt on reload knows when to refresh again.
func (a *App) persist(accessKey, refreshKey, expiryKey string) auth.PersistFunc {
	return func(tok domain.OAuthToken) error {
		if err := a.config.Set(accessKey, tok.AccessToken); err != nil {
			return err
		}
		if err := a.config.Set(expiryKey, services.FormatExpiry(tok.Expiry)); err != nil {
			return err
		}
		if tok.RefreshToken != "" {
			return a.config.Set(refreshKey, tok.RefreshToken)
		}
		return nil
	}
}

func closeAll(closers []io.Closer) error {
	var errs []error
	for _, c := range closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
