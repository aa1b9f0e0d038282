package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTimeRoundTrip(t *testing.T) {
	now := time.Date(2026, 5, 1, 10, 30, 0, 0, time.UTC)

	parsed, err := ParseTime(FormatTime(now))
	assert.NoError(t, err)
	assert.True(t, now.Equal(parsed))
}

func TestIsValidDate(t *testing.T) {
	assert.True(t, IsValidDate("2026-05-01"))
	assert.False(t, IsValidDate("2026-13-01"))
	assert.False(t, IsValidDate("01/05/2026"))
	assert.False(t, IsValidDate(""))
}
