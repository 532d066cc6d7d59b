package mcp

import (
	"github.com/drewfsc/saturday-night/internal/core/ports/driving"
)

// Ports aggregates the driving ports the MCP server needs.
type Ports struct {
	// Dispatcher validates and runs tool calls.
	Dispatcher driving.Dispatcher

	// Settings supplies the default spreadsheet for resources. Optional.
	Settings driving.SettingsService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Dispatcher == nil {
		return ErrMissingDispatcher
	}
	return nil
}
