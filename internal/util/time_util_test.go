package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestInDateRange(t *testing.T) {
	start := NewDate(2020, 1, 1)
	end := NewDate(2020, 1, 31)

	require.True(t, InDateRange(start, start, end))
	require.True(t, InDateRange(time.Date(2020, 1, 31, 20, 0, 0, 0, time.UTC), start, end))
	require.False(t, InDateRange(NewDate(2019, 12, 31), start, end))
	require.False(t, InDateRange(NewDate(2020, 2, 1), start, end))
}

func TestToDate(t *testing.T) {
	in := time.Date(2021, 3, 4, 14, 30, 0, 0, time.UTC)
	require.Equal(t, NewDate(2021, 3, 4), ToDate(in))
}
