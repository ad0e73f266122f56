package shared

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDateRoundTrip(t *testing.T) {
	moments := []time.Time{
		time.Date(2025, 3, 14, 0, 0, 0, 0, time.Local),
		time.Date(2025, 3, 14, 13, 45, 12, 0, time.Local),
		time.Date(2025, 12, 31, 23, 59, 59, 0, time.Local),
	}
	for _, m := range moments {
		parsed, err := ParseDate(FormatDate(m))
		require.NoError(t, err)
		require.Equal(t, m.Year(), parsed.Year())
		require.Equal(t, m.Month(), parsed.Month())
		require.Equal(t, m.Day(), parsed.Day())
	}
}

func TestParseDateRejectsBadInput(t *testing.T) {
	_, err := ParseDate("14-03-2025")
	require.Error(t, err)
	_, err = ParseDate("")
	require.Error(t, err)
}

func TestDateTimeRoundTrip(t *testing.T) {
	m := time.Date(2025, 7, 2, 18, 5, 33, 0, time.Local)
	parsed, err := ParseDateTime(FormatDateTime(m))
	require.NoError(t, err)
	require.True(t, m.Equal(parsed))
}

func TestDateRange(t *testing.T) {
	day := time.Date(2025, 7, 2, 15, 0, 0, 0, time.Local)
	r := SingleDay(day)
	require.True(t, r.Contains(time.Date(2025, 7, 2, 0, 0, 0, 0, time.Local)))
	require.True(t, r.Contains(time.Date(2025, 7, 2, 23, 59, 59, 0, time.Local)))
	require.False(t, r.Contains(time.Date(2025, 7, 3, 0, 0, 0, 0, time.Local)))
}

func TestMoneyFormatter(t *testing.T) {
	f := NewMoneyFormatter("Rs.")
	require.Equal(t, "Rs. 120.00", f.Format(120))
	require.Equal(t, "Rs. 99.50", f.Format(99.5))
}

func TestPagination(t *testing.T) {
	p := NewPagination(3, 20, 45)
	require.Equal(t, 3, p.TotalPages)
	require.Equal(t, 40, p.Offset())

	p = NewPagination(0, 0, 0)
	require.Equal(t, 1, p.Page)
	require.Equal(t, 20, p.PerPage)
}
