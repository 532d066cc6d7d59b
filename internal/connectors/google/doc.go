// Package google provides shared infrastructure for the Google Sheets
// connector:
//   - Service factory for the Sheets API client
//   - Mapping of Google API errors (401, 403, 404, 429) to domain errors
//   - Rate limiting to respect Sheets quotas
//
// # Usage
//
//	ts := auth.TokenSource(ctx, "google", tokenProvider)
//	svc, err := google.NewSheetsService(ctx, ts)
//
// # OAuth2 Scopes
//
// Only https://www.googleapis.com/auth/spreadsheets.readonly is requested.
package google
