package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drewfsc/saturday-night/internal/core/domain"
)

func TestInterpretCmd_Use(t *testing.T) {
	assert.Equal(t, "interpret [text]", interpretCmd.Use)
}

func TestInterpretCmd_PrintsIntent(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "interpret", "first 5 rows from the Sales sheet")

	require.NoError(t, err)
	var intent domain.QueryIntent
	require.NoError(t, json.Unmarshal([]byte(out), &intent))
	assert.Equal(t, domain.ActionFetchRows, intent.Action)
	assert.Equal(t, testSpreadsheet, intent.SourceID)
	assert.Equal(t, 5, intent.Limit)
}

func TestInterpretCmd_ForcedAction(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "interpret", "--as", "search_records", "over $1000")

	require.NoError(t, err)
	var intent domain.QueryIntent
	require.NoError(t, json.Unmarshal([]byte(out), &intent))
	assert.Equal(t, domain.ActionSearchRecords, intent.Action)
	assert.Equal(t, "9130", intent.SourceID)
	require.NotNil(t, intent.AmountRange)
}

func TestInterpretCmd_UnknownAction(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	_, err := execute(t, "interpret", "--as", "delete_rows", "anything")

	assert.ErrorContains(t, err, `unknown action "delete_rows"`)
}

func TestInterpretCmd_SpreadsheetOverride(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "interpret", "--spreadsheet", "other", "first 5 rows")

	require.NoError(t, err)
	assert.Contains(t, out, `"sourceId": "other"`)
}
