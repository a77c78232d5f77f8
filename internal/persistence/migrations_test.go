package persistence

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// History rows written in one transaction must keep their insert order, so
// their timestamp cannot be the transaction start time.
func TestHistoryTimestampsAdvanceWithinTransaction(t *testing.T) {
	raw, err := os.ReadFile(filepath.Join("..", "..", "migrations", "0002_ticket_history.sql"))
	require.NoError(t, err)

	schema := strings.ToLower(string(raw))
	assert.Contains(t, schema, "default clock_timestamp()")
	assert.NotContains(t, schema, "default now()")
}
