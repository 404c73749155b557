package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewULIDFromTimestamp_Increasing(t *testing.T) {
	u := New()
	now := time.Date(2026, 10, 19, 15, 0, 0, 0, time.UTC)

	prev := ""
	for i := 0; i < 50; i++ {
		id, err := u.NewULIDFromTimestamp(now)
		require.NoError(t, err)
		assert.Len(t, id, 26)
		assert.Greater(t, id, prev)
		prev = id
	}
}
