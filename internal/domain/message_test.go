package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroupByDay(t *testing.T) {
	day1 := time.Date(2026, 4, 2, 9, 0, 0, 0, time.UTC)
	msgs := []Message{
		{Message: "hello", CreatedAt: day1},
		{Message: "still there?", CreatedAt: day1.Add(3 * time.Hour)},
		{Message: "morning", CreatedAt: day1.Add(24 * time.Hour)},
	}

	days := GroupByDay(msgs, nil)

	require.Len(t, days, 2)
	assert.Equal(t, "2026-04-02", days[0].Day)
	assert.Len(t, days[0].Messages, 2)
	assert.Equal(t, "2026-04-03", days[1].Day)
	assert.Equal(t, "morning", days[1].Messages[0].Message)
}

func TestGroupByDay_UsesLocation(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*60*60)
	msgs := []Message{
		{Message: "late utc", CreatedAt: time.Date(2026, 4, 2, 20, 0, 0, 0, time.UTC)},
		{Message: "early utc", CreatedAt: time.Date(2026, 4, 3, 1, 0, 0, 0, time.UTC)},
	}

	days := GroupByDay(msgs, tokyo)

	require.Len(t, days, 1)
	assert.Equal(t, "2026-04-03", days[0].Day)
}

func TestGroupByDay_Empty(t *testing.T) {
	assert.Empty(t, GroupByDay(nil, time.UTC))
}
