// Package file provides the TOML configuration store.
//
// Values are read from config.toml in the config directory, flattened to
// dot-notation keys, and may be overridden per key by SATURDAY_NIGHT_*
// environment variables. Watch follows edits to the file.
package file
