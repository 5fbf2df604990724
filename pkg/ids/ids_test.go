package ids

import (
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewULIDIsMonotonicWithinMillisecond(t *testing.T) {
	now := time.Now()
	prev := NewULID(now)
	for i := 0; i < 1000; i++ {
		next := NewULID(now)
		require.Greater(t, next, prev)
		prev = next
	}
}

func TestNewULIDCarriesTimestamp(t *testing.T) {
	at := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	id, err := ulid.ParseStrict(NewULID(at))
	require.NoError(t, err)
	assert.Equal(t, ulid.Timestamp(at), id.Time())
}

func TestNewUUID(t *testing.T) {
	assert.Len(t, NewUUID(), 36)
	assert.NotEqual(t, NewUUID(), NewUUID())
}
