package socrata

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/citydesk/lapdcalls/config"
)

var testDataset = config.DatasetConfig{
	Name:       "LAPD Calls for Service 2024 to Present",
	Endpoint:   "xjgu-z4ju",
	SourceYear: 2024,
}

func TestNormalize_ResolvesAliasesAndDerivedFields(t *testing.T) {
	rows := []RawRow{
		{
			"incident_number": "240704001234",
			"date_occ":        "2024-07-04T00:00:00.000",
			"time_occ":        "21:15:00",
			"call_type_code":  "507F",
			"call_type_text":  "  FIREWORKS  ",
			"area_occ":        "  Devonshire ",
		},
	}

	records := Normalize(rows, testDataset)
	require.Len(t, records, 1)

	rec := records[0]
	assert.Equal(t, "240704001234", rec.IncidentNumber)
	assert.Equal(t, time.Date(2024, 7, 4, 0, 0, 0, 0, time.UTC), rec.PrimaryDate)
	assert.Equal(t, 2024, rec.Year)
	assert.Equal(t, 7, rec.Month)
	assert.Equal(t, "Thursday", rec.DayOfWeek)
	assert.Equal(t, 21, rec.Hour)
	assert.Equal(t, "507F", rec.CallTypeCode)
	assert.Equal(t, "FIREWORKS", rec.CallTypeText)
	assert.Equal(t, "Devonshire", rec.AreaOcc)
	assert.Equal(t, testDataset.Name, rec.SourceDataset)
	assert.Equal(t, 2024, rec.SourceYear)
}

func TestNormalize_PrimaryDatePriority(t *testing.T) {
	// Occurrence beats report beats dispatch.
	rows := []RawRow{
		{
			"incident_number": "1",
			"date_occ":        "2023-01-01T00:00:00.000",
			"date_rptd":       "2023-01-02T00:00:00.000",
			"dispatch_date":   "2023-01-03T00:00:00.000",
		},
		{
			"incident_number": "2",
			"date_rptd":       "2023-02-02T00:00:00.000",
			"dispatch_date":   "2023-02-03T00:00:00.000",
		},
		{
			"incident_number": "3",
			"dispatch_date":   "2023-03-03T00:00:00.000",
		},
	}

	records := Normalize(rows, testDataset)
	require.Len(t, records, 3)
	assert.Equal(t, 1, records[0].PrimaryDate.Day())
	assert.Equal(t, 2, records[1].PrimaryDate.Day())
	assert.Equal(t, 3, records[2].PrimaryDate.Day())
}

func TestNormalize_CallTypeTextFallsBackToDescription(t *testing.T) {
	rows := []RawRow{
		{
			"incident_number":       "1",
			"dispatch_date":         "2015-05-01T12:00:00",
			"call_type_description": "TRAFFIC STOP",
			"area":                  "Central",
		},
	}

	records := Normalize(rows, config.DatasetConfig{Name: "LAPD Calls for Service 2015", SourceYear: 2015})
	require.Len(t, records, 1)
	assert.Equal(t, "TRAFFIC STOP", records[0].CallTypeText)
	assert.Equal(t, "Central", records[0].AreaOcc)
}

func TestNormalize_DropsRowsWithoutDateOrIncident(t *testing.T) {
	rows := []RawRow{
		{"incident_number": "1"}, // no date at all
		{"date_occ": "2024-01-01T00:00:00.000"},             // no incident number
		{"incident_number": "2", "date_occ": "not-a-date"},  // unparseable date
		{"incident_number": "3", "date_occ": "2024-01-05T00:00:00.000"},
	}

	records := Normalize(rows, testDataset)
	require.Len(t, records, 1)
	assert.Equal(t, "3", records[0].IncidentNumber)
}

func TestNormalize_HourDefaultsWhenNoTime(t *testing.T) {
	rows := []RawRow{
		{"incident_number": "1", "date_occ": "2024-01-05T00:00:00.000"},
	}

	records := Normalize(rows, testDataset)
	require.Len(t, records, 1)
	assert.Equal(t, -1, records[0].Hour)
}

func TestNormalize_NumericValuesAreStringified(t *testing.T) {
	rows := []RawRow{
		{
			"incident_number": float64(1234567),
			"date_occ":        "2024-01-05T00:00:00.000",
		},
	}

	records := Normalize(rows, testDataset)
	require.Len(t, records, 1)
	assert.Equal(t, "1234567", records[0].IncidentNumber)
}

func TestParseDate_Layouts(t *testing.T) {
	for _, s := range []string{
		"2024-07-04T21:15:00.000",
		"2024-07-04T21:15:00",
		"2024-07-04",
	} {
		parsed, ok := parseDate(s)
		require.True(t, ok, "layout for %q", s)
		assert.Equal(t, 2024, parsed.Year())
		assert.Equal(t, time.July, parsed.Month())
		assert.Equal(t, 4, parsed.Day())
	}

	_, ok := parseDate("07/04/2024")
	assert.False(t, ok)
}
