// Package quickbooks implements the ledger backend on the QuickBooks Online
// accounting API.
//
// Invoices are read with the API's SQL-like query language:
//
//	SELECT * FROM Invoice WHERE TxnDate >= '2025-01-01' ORDERBY TxnDate DESC
//
// Date and amount filters are pushed into the query; callers still
// re-apply them to the returned candidates.
package quickbooks
