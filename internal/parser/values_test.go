package parser

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wbsdash/internal/workbook"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestParsePercentFormats(t *testing.T) {
	t.Parallel()

	inputs := []workbook.Value{
		workbook.Text("75.5%"),
		workbook.Number(0.755),
		workbook.Number(75.5),
		workbook.Text(" 75,5 %"),
		workbook.Text("75.5 %"),
	}
	for _, in := range inputs {
		got, ok := ParsePercent(in)
		require.True(t, ok, "input %q", in.String())
		assert.InDelta(t, 75.5, got, 1e-9, "input %q", in.String())
	}
}

func TestParsePercentFractionBoundary(t *testing.T) {
	t.Parallel()

	got, ok := ParsePercent(workbook.Number(1))
	require.True(t, ok)
	assert.Equal(t, 100.0, got)

	got, ok = ParsePercent(workbook.Number(-0.25))
	require.True(t, ok)
	assert.Equal(t, -25.0, got)

	got, ok = ParsePercent(workbook.Number(1.5))
	require.True(t, ok)
	assert.Equal(t, 1.5, got)

	_, ok = ParsePercent(workbook.Text("n/a"))
	assert.False(t, ok)
	_, ok = ParsePercent(workbook.Empty())
	assert.False(t, ok)
}

func TestAsFloat(t *testing.T) {
	t.Parallel()

	cases := map[string]float64{
		"1,234.50": 1234.5,
		"12,5":     12.5,
		"€ 40":     40,
		" 70 ":     70,
	}
	for in, want := range cases {
		got, ok := AsFloat(workbook.Text(in))
		require.True(t, ok, in)
		assert.InDelta(t, want, got, 1e-9, in)
	}

	_, ok := AsFloat(workbook.Time(date(2025, 1, 5)))
	assert.False(t, ok)
	_, ok = AsFloat(workbook.Text("   "))
	assert.False(t, ok)
}

func TestParseDays(t *testing.T) {
	t.Parallel()

	cases := map[string]int{"2": 2, "2d": 2, "-3 days": -3, "1.6": 2, "4 j": 4}
	for in, want := range cases {
		got, ok := ParseDays(workbook.Text(in))
		require.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}
	got, ok := ParseDays(workbook.Number(-1.2))
	require.True(t, ok)
	assert.Equal(t, -1, got)

	_, ok = ParseDays(workbook.Text("late"))
	assert.False(t, ok)
}

func TestParseDateRoundTrip(t *testing.T) {
	t.Parallel()

	d, ok := ParseDate(workbook.Text("05-Jan-25"))
	require.True(t, ok)
	assert.Equal(t, "05-Jan-25", FormatDate(d))

	d, ok = ParseDate(workbook.Number(45662))
	require.True(t, ok)
	assert.Equal(t, "05-Jan-25", FormatDate(d))

	for _, s := range []string{"2025-01-05", "05/01/2025", "05/01/25", "2025-01-05 13:30:00"} {
		d, ok := ParseDateText(s)
		require.True(t, ok, s)
		assert.Equal(t, date(2025, 1, 5), d, s)
	}

	d, ok = ParseDate(workbook.Time(time.Date(2025, 1, 5, 18, 0, 0, 0, time.UTC)))
	require.True(t, ok)
	assert.Equal(t, date(2025, 1, 5), d)

	_, ok = ParseDateText("next monday")
	assert.False(t, ok)
}

func TestParseHeaderDateRejectsSmallNumbers(t *testing.T) {
	t.Parallel()

	_, ok := ParseHeaderDate(workbook.Number(100))
	assert.False(t, ok)

	d, ok := ParseHeaderDate(workbook.Number(45677))
	require.True(t, ok)
	assert.Equal(t, date(2025, 1, 20), d)
}

func TestMondayOfAndISOWeek(t *testing.T) {
	t.Parallel()

	assert.Equal(t, date(2025, 2, 3), MondayOf(date(2025, 2, 3)))
	assert.Equal(t, date(2025, 2, 3), MondayOf(date(2025, 2, 9)))
	assert.Equal(t, date(2025, 2, 3), MondayOf(date(2025, 2, 5)))
	assert.Equal(t, "2025-W06", ISOWeekLabel(date(2025, 2, 3)))
	assert.Equal(t, "2025-W01", ISOWeekLabel(date(2024, 12, 30)))
}

func TestFormatting(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "70.00%", FormatPercent(70))
	assert.Equal(t, "+5.00%", FormatSignedPercent(5))
	assert.Equal(t, "-2.50%", FormatSignedPercent(-2.5))
	assert.Equal(t, "2d", FormatDays(2))
	assert.Equal(t, "-3d", FormatDays(-3))
	assert.Equal(t, "2025-01-05", FormatISODate(date(2025, 1, 5)))
}
