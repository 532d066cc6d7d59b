// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - TabularBackend: Spreadsheet metadata and cell ranges (Google Sheets)
//   - LedgerBackend: Invoice candidates (QuickBooks Online or a local fixture)
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - CacheBackend: Memoized datasets. Without it every read reaches the backend.
//   - TokenProvider: Access tokens. Without it backends run unauthenticated.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or connector package
package driven
