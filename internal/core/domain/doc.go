// Package domain defines the core business entities for saturday-night.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - QueryIntent: The structured form of a free-text request
//   - NormalizedDataset: Records returned by any source adapter
//   - CacheEntry: A memoized dataset with its expiry
//   - ToolDescriptor: A tool published by the dispatcher
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
