package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashPasswordSaltsEachCall(t *testing.T) {
	first, err := HashPassword("hunter2", bcrypt.MinCost)
	require.NoError(t, err)
	second, err := HashPassword("hunter2", bcrypt.MinCost)
	require.NoError(t, err)

	assert.NotEqual(t, "hunter2", first)
	assert.NotEqual(t, first, second)
	assert.NoError(t, ComparePassword(first, "hunter2"))
	assert.NoError(t, ComparePassword(second, "hunter2"))
	assert.Error(t, ComparePassword(first, "hunter3"))
}
