package driving

import "github.com/drewfsc/saturday-night/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current application settings.
	Get() (*domain.AppSettings, error)

	// Save persists application settings.
	Save(settings *domain.AppSettings) error

	// SetCacheBackend updates the cache backend.
	SetCacheBackend(kind domain.CacheBackendKind) error

	// SetDefaultSpreadsheet updates the default spreadsheet identifier.
	SetDefaultSpreadsheet(id string) error

	// SetDefaultLedger updates the default ledger identifier.
	SetDefaultLedger(id string) error

	// Validate checks that the current settings are usable.
	Validate() error

	// GetDefaults returns default settings.
	GetDefaults() domain.AppSettings
}
