package domain

import "time"

const unknownDescription = "Unknown"

// Default setting values.
const (
	DefaultCacheTTL        = 5 * time.Minute
	DefaultUpstreamTimeout = 15 * time.Second
	DefaultRedisAddr       = "localhost:6379"
	DefaultQuickBooksURL   = "https://quickbooks.api.intuit.com"
)

// CacheBackendKind selects the cache backend implementation.
type CacheBackendKind string

// Available cache backends.
const (
	// CacheBackendMemory keeps entries in process memory.
	CacheBackendMemory CacheBackendKind = "memory"

	// CacheBackendSQLite keeps entries in a local SQLite file.
	CacheBackendSQLite CacheBackendKind = "sqlite"

	// CacheBackendRedis keeps entries in Redis with store-managed expiry.
	CacheBackendRedis CacheBackendKind = "redis"

	// CacheBackendNone disables memoization.
	CacheBackendNone CacheBackendKind = "none"
)

// IsValid returns true if the backend kind is recognised.
func (k CacheBackendKind) IsValid() bool {
	switch k {
	case CacheBackendMemory, CacheBackendSQLite, CacheBackendRedis, CacheBackendNone:
		return true
	default:
		return false
	}
}

// IsDurable returns true if entries survive a process restart.
func (k CacheBackendKind) IsDurable() bool {
	return k == CacheBackendSQLite || k == CacheBackendRedis
}

// String returns the string representation.
func (k CacheBackendKind) String() string {
	return string(k)
}

// Description returns a human-readable description of the backend.
func (k CacheBackendKind) Description() string {
	switch k {
	case CacheBackendMemory:
		return "Memory (per process)"
	case CacheBackendSQLite:
		return "SQLite (local file)"
	case CacheBackendRedis:
		return "Redis (shared)"
	case CacheBackendNone:
		return "Disabled"
	default:
		return unknownDescription
	}
}

// AllCacheBackends returns all available cache backends.
func AllCacheBackends() []CacheBackendKind {
	return []CacheBackendKind{
		CacheBackendMemory,
		CacheBackendSQLite,
		CacheBackendRedis,
		CacheBackendNone,
	}
}

// SourceSettings holds the identifiers used when a request names none.
type SourceSettings struct {
	// DefaultSpreadsheetID is used by tabular actions.
	DefaultSpreadsheetID string

	// DefaultLedgerID is used by invoice searches.
	DefaultLedgerID string
}

// CacheSettings holds memoization configuration.
type CacheSettings struct {
	// Backend selects where entries are kept.
	Backend CacheBackendKind

	// TTL is how long a memoized dataset is served.
	TTL time.Duration

	// RedisAddr is the host:port of the Redis server.
	RedisAddr string

	// RedisPassword authenticates to Redis.
	RedisPassword string

	// RedisDB selects the Redis database.
	RedisDB int

	// SQLiteDir holds the cache database file.
	// Empty means the config directory.
	SQLiteDir string
}

// Enabled returns true if memoization is active.
func (c CacheSettings) Enabled() bool {
	return c.Backend != CacheBackendNone && c.TTL > 0
}

// UpstreamSettings bounds calls to remote backends.
type UpstreamSettings struct {
	// Timeout bounds each network call.
	Timeout time.Duration
}

// GoogleSettings holds Google Sheets credentials.
type GoogleSettings struct {
	AccessToken  string
	RefreshToken string
	ClientID     string
	ClientSecret string

	// TokenExpiry is when AccessToken expires; zero when unknown.
	TokenExpiry time.Time
}

// IsConfigured returns true if a token is available.
func (g GoogleSettings) IsConfigured() bool {
	return g.AccessToken != "" || g.RefreshToken != ""
}

// QuickBooksSettings holds ledger connection settings.
type QuickBooksSettings struct {
	// RealmID is the company the ledger belongs to.
	RealmID string

	// BaseURL is the accounting API endpoint.
	BaseURL string

	AccessToken  string
	RefreshToken string
	ClientID     string
	ClientSecret string

	// TokenExpiry is when AccessToken expires; zero when unknown.
	TokenExpiry time.Time

	// FixturePath, when set, serves invoices from a local YAML file
	// instead of the remote API.
	FixturePath string
}

// UsesFixture returns true if invoices are served from a local file.
func (q QuickBooksSettings) UsesFixture() bool {
	return q.FixturePath != ""
}

// LogSettings holds logger configuration.
type LogSettings struct {
	// Format is "console" or "json".
	Format string
}

// AppSettings holds all application settings.
type AppSettings struct {
	// Sources holds default source identifiers.
	Sources SourceSettings

	// Cache holds memoization settings.
	Cache CacheSettings

	// Upstream holds network call limits.
	Upstream UpstreamSettings

	// Google holds spreadsheet credentials.
	Google GoogleSettings

	// QuickBooks holds ledger settings.
	QuickBooks QuickBooksSettings

	// Log holds logger settings.
	Log LogSettings
}

// DefaultAppSettings returns settings with sensible defaults.
// Credentials and default identifiers are left unset.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Cache: CacheSettings{
			Backend:   CacheBackendMemory,
			TTL:       DefaultCacheTTL,
			RedisAddr: DefaultRedisAddr,
		},
		Upstream: UpstreamSettings{
			Timeout: DefaultUpstreamTimeout,
		},
		QuickBooks: QuickBooksSettings{
			BaseURL: DefaultQuickBooksURL,
		},
		Log: LogSettings{
			Format: "console",
		},
	}
}
