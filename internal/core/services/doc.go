// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// Adapters are reached only through the driven ports, so every service
// can be tested with in-memory fakes.
package services
