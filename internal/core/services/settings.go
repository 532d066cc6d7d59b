package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/drewfsc/saturday-night/internal/core/domain"
	"github.com/drewfsc/saturday-night/internal/core/ports/driven"
	"github.com/drewfsc/saturday-night/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	KeyDefaultSpreadsheet = "sources.default_spreadsheet_id"
	KeyDefaultLedger      = "sources.default_ledger_id"
	KeyCacheBackend       = "cache.backend"
	KeyCacheTTL           = "cache.ttl_seconds"
	KeyRedisAddr          = "cache.redis_addr"
	KeyRedisPassword      = "cache.redis_password"
	KeyRedisDB            = "cache.redis_db"
	KeySQLiteDir          = "cache.sqlite_dir"
	KeyUpstreamTimeout    = "upstream.timeout_seconds"
	KeyGoogleAccess       = "google.access_token"
	KeyGoogleRefresh      = "google.refresh_token"
	KeyGoogleClientID     = "google.client_id"
	KeyGoogleSecret       = "google.client_secret"
	KeyGoogleExpiry       = "google.token_expiry"
	KeyQBRealm            = "quickbooks.realm_id"
	KeyQBBaseURL          = "quickbooks.base_url"
	KeyQBAccess           = "quickbooks.access_token"
	KeyQBRefresh          = "quickbooks.refresh_token"
	KeyQBClientID         = "quickbooks.client_id"
	KeyQBSecret           = "quickbooks.client_secret"
	KeyQBExpiry           = "quickbooks.token_expiry"
	KeyQBFixture          = "quickbooks.fixture_path"
	KeyLogFormat          = "log.format"
)

// ConfigKeys lists every recognised config key in display order.
var ConfigKeys = []string{
	KeyDefaultSpreadsheet, KeyDefaultLedger,
	KeyCacheBackend, KeyCacheTTL, KeyRedisAddr, KeyRedisPassword, KeyRedisDB, KeySQLiteDir,
	KeyUpstreamTimeout,
	KeyGoogleAccess, KeyGoogleRefresh, KeyGoogleClientID, KeyGoogleSecret, KeyGoogleExpiry,
	KeyQBRealm, KeyQBBaseURL, KeyQBAccess, KeyQBRefresh, KeyQBClientID, KeyQBSecret, KeyQBExpiry, KeyQBFixture,
	KeyLogFormat,
}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{configStore: configStore}
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Sources: domain.SourceSettings{
			DefaultSpreadsheetID: s.configStore.GetString(KeyDefaultSpreadsheet),
			DefaultLedgerID:      s.configStore.GetString(KeyDefaultLedger),
		},
		Cache: domain.CacheSettings{
			Backend:       s.getCacheBackend(defaults.Cache.Backend),
			TTL:           s.getSeconds(KeyCacheTTL, defaults.Cache.TTL),
			RedisAddr:     s.getString(KeyRedisAddr, defaults.Cache.RedisAddr),
			RedisPassword: s.configStore.GetString(KeyRedisPassword),
			RedisDB:       s.configStore.GetInt(KeyRedisDB),
			SQLiteDir:     s.configStore.GetString(KeySQLiteDir),
		},
		Upstream: domain.UpstreamSettings{
			Timeout: s.getSeconds(KeyUpstreamTimeout, defaults.Upstream.Timeout),
		},
		Google: domain.GoogleSettings{
			AccessToken:  s.configStore.GetString(KeyGoogleAccess),
			RefreshToken: s.configStore.GetString(KeyGoogleRefresh),
			ClientID:     s.configStore.GetString(KeyGoogleClientID),
			ClientSecret: s.configStore.GetString(KeyGoogleSecret),
			TokenExpiry:  s.getTime(KeyGoogleExpiry),
		},
		QuickBooks: domain.QuickBooksSettings{
			RealmID:      s.configStore.GetString(KeyQBRealm),
			BaseURL:      s.getString(KeyQBBaseURL, defaults.QuickBooks.BaseURL),
			AccessToken:  s.configStore.GetString(KeyQBAccess),
			RefreshToken: s.configStore.GetString(KeyQBRefresh),
			ClientID:     s.configStore.GetString(KeyQBClientID),
			ClientSecret: s.configStore.GetString(KeyQBSecret),
			TokenExpiry:  s.getTime(KeyQBExpiry),
			FixturePath:  s.configStore.GetString(KeyQBFixture),
		},
		Log: domain.LogSettings{
			Format: s.getString(KeyLogFormat, defaults.Log.Format),
		},
	}

	// A realm id doubles as the default ledger.
	if settings.Sources.DefaultLedgerID == "" {
		settings.Sources.DefaultLedgerID = settings.QuickBooks.RealmID
	}

	return settings, nil
}

// Save persists application settings.
// Empty credentials are not written so that saving never clears a secret.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	values := []struct {
		key   string
		value any
	}{
		{KeyDefaultSpreadsheet, settings.Sources.DefaultSpreadsheetID},
		{KeyDefaultLedger, settings.Sources.DefaultLedgerID},
		{KeyCacheBackend, settings.Cache.Backend.String()},
		{KeyCacheTTL, int(settings.Cache.TTL / time.Second)},
		{KeyRedisAddr, settings.Cache.RedisAddr},
		{KeyRedisDB, settings.Cache.RedisDB},
		{KeySQLiteDir, settings.Cache.SQLiteDir},
		{KeyUpstreamTimeout, int(settings.Upstream.Timeout / time.Second)},
		{KeyQBRealm, settings.QuickBooks.RealmID},
		{KeyQBBaseURL, settings.QuickBooks.BaseURL},
		{KeyQBFixture, settings.QuickBooks.FixturePath},
		{KeyLogFormat, settings.Log.Format},
	}
	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}

	secrets := []struct {
		key   string
		value string
	}{
		{KeyRedisPassword, settings.Cache.RedisPassword},
		{KeyGoogleAccess, settings.Google.AccessToken},
		{KeyGoogleRefresh, settings.Google.RefreshToken},
		{KeyGoogleClientID, settings.Google.ClientID},
		{KeyGoogleSecret, settings.Google.ClientSecret},
		{KeyGoogleExpiry, FormatExpiry(settings.Google.TokenExpiry)},
		{KeyQBAccess, settings.QuickBooks.AccessToken},
		{KeyQBRefresh, settings.QuickBooks.RefreshToken},
		{KeyQBClientID, settings.QuickBooks.ClientID},
		{KeyQBSecret, settings.QuickBooks.ClientSecret},
		{KeyQBExpiry, FormatExpiry(settings.QuickBooks.TokenExpiry)},
	}
	for _, v := range secrets {
		if v.value == "" {
			continue
		}
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}

	return s.configStore.Save()
}

// SetCacheBackend updates the cache backend.
func (s *SettingsService) SetCacheBackend(kind domain.CacheBackendKind) error {
	if !kind.IsValid() {
		return fmt.Errorf("invalid cache backend: %s", kind)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}
	settings.Cache.Backend = kind

	return s.Save(settings)
}

// SetDefaultSpreadsheet updates the default spreadsheet identifier.
func (s *SettingsService) SetDefaultSpreadsheet(id string) error {
	settings, err := s.Get()
	if err != nil {
		return err
	}
	settings.Sources.DefaultSpreadsheetID = id
	return s.Save(settings)
}

// SetDefaultLedger updates the default ledger identifier.
func (s *SettingsService) SetDefaultLedger(id string) error {
	settings, err := s.Get()
	if err != nil {
		return err
	}
	settings.Sources.DefaultLedgerID = id
	return s.Save(settings)
}

// Validate checks that the current settings are usable.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	var errs []error
	if raw := s.configStore.GetString(KeyCacheBackend); raw != "" && !domain.CacheBackendKind(raw).IsValid() {
		errs = append(errs, fmt.Errorf("invalid cache backend: %s", raw))
	}
	if settings.Cache.Backend == domain.CacheBackendRedis && settings.Cache.RedisAddr == "" {
		errs = append(errs, errors.New("redis cache backend requires cache.redis_addr"))
	}
	if settings.Upstream.Timeout <= 0 {
		errs = append(errs, errors.New("upstream timeout must be positive"))
	}
	if settings.Log.Format != "console" && settings.Log.Format != "json" {
		errs = append(errs, fmt.Errorf("invalid log format: %s", settings.Log.Format))
	}
	return errors.Join(errs...)
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getSeconds(key string, defaultVal time.Duration) time.Duration {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return time.Duration(s.configStore.GetInt(key)) * time.Second
}

// getTime reads an RFC 3339 timestamp. Missing or malformed values are zero.
func (s *SettingsService) getTime(key string) time.Time {
	val, ok := s.configStore.Get(key)
	if !ok {
		return time.Time{}
	}
	if t, ok := val.(time.Time); ok {
		return t
	}
	t, err := time.Parse(time.RFC3339, s.configStore.GetString(key))
	if err != nil {
		return time.Time{}
	}
	return t
}

// FormatExpiry renders a token expiry for storage; zero becomes "".
func FormatExpiry(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func (s *SettingsService) getCacheBackend(defaultVal domain.CacheBackendKind) domain.CacheBackendKind {
	val := s.configStore.GetString(KeyCacheBackend)
	if val == "" {
		return defaultVal
	}
	kind := domain.CacheBackendKind(val)
	if !kind.IsValid() {
		return defaultVal
	}
	return kind
}
