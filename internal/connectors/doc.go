// Package connectors holds the clients for the remote backends the tools
// read from. Each subpackage implements one driven port: google/sheets the
// tabular backend and quickbooks the ledger backend.
//
// Connectors own their transport concerns (authentication, client-side rate
// limiting, timeouts) and translate remote failures into domain errors.
package connectors
