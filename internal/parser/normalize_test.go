package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"wbsdash/internal/workbook"
)

func TestNormalizeHeader(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"Units % Complete":                  "units percent complete",
		"  Activity\nID ":                   "activity id",
		"Variance - BL Project Finish Date": "variance bl project finish date",
		"ID Activité":                       "id activite",
		"Earned%":                           "earned percent",
		"---":                               "",
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizeHeader(in), in)
	}
}

func TestHeaderLabel(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "2025-01-20", HeaderLabel(workbook.Time(date(2025, 1, 20))))
	assert.Equal(t, "2025-01-20", HeaderLabel(workbook.Number(45677)))
	assert.Equal(t, "Activity ID", HeaderLabel(workbook.Text(" Activity ID ")))
	assert.Equal(t, "3", HeaderLabel(workbook.Number(3)))
}

func TestLeadingSpaces(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0, LeadingSpaces("P1"))
	assert.Equal(t, 2, LeadingSpaces("  P1.1"))
	assert.Equal(t, 4, LeadingSpaces("    P1.1.a "))
	assert.Equal(t, 0, LeadingSpaces("\tP1"))
}

func TestContainsFold(t *testing.T) {
	t.Parallel()

	assert.True(t, ContainsFold("Cum Budgeted Units (h)", "cum budgeted units"))
	assert.False(t, ContainsFold("Cum Actual Units", "Cum Budgeted Units"))
}
