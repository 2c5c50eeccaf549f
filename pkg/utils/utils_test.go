package utils

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewTicketID_Format(t *testing.T) {
	pattern := regexp.MustCompile(`^VDP-[0-9A-Z]{6}$`)
	for i := 0; i < 50; i++ {
		id := NewTicketID()
		assert.Regexp(t, pattern, id)
	}
}

func TestFormatSubmittedAt(t *testing.T) {
	ts := time.Date(2026, time.October, 6, 15, 4, 5, 0, time.UTC)
	assert.Equal(t, "10/6/2026, 3:04:05 PM", FormatSubmittedAt(ts))
}

func TestHashPassword(t *testing.T) {
	hash, err := HashPasswordWithCost("letmein", 4)
	assert.NoError(t, err)
	assert.True(t, CheckPasswordHash("letmein", hash))
	assert.False(t, CheckPasswordHash("wrong", hash))
}
