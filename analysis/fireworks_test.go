package analysis

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/citydesk/lapdcalls/models"
)

func call(incident string, date time.Time, code, text, area string) models.CallRecord {
	return models.CallRecord{
		IncidentNumber: incident,
		PrimaryDate:    date,
		Year:           date.Year(),
		Month:          int(date.Month()),
		DayOfWeek:      date.Weekday().String(),
		CallTypeCode:   code,
		CallTypeText:   text,
		AreaOcc:        area,
	}
}

func fixtureRecords() []models.CallRecord {
	return []models.CallRecord{
		call("1", time.Date(2023, 7, 4, 0, 0, 0, 0, time.UTC), "507F", "FIREWORKS", "Devonshire"),
		call("2", time.Date(2023, 7, 2, 0, 0, 0, 0, time.UTC), "507F", "FIREWORKS", "Devonshire"),
		call("3", time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC), "507F", "FIREWORKS", "Central"),
		call("4", time.Date(2024, 7, 4, 0, 0, 0, 0, time.UTC), "507F", "FIREWORKS", "Central"),
		// Not fireworks.
		call("5", time.Date(2023, 7, 4, 0, 0, 0, 0, time.UTC), "906B", "BURGLARY", "Central"),
		// Code 6 rows are excluded even with the fireworks code.
		call("6", time.Date(2023, 7, 4, 0, 0, 0, 0, time.UTC), "006", "CODE 6", "Central"),
		call("7", time.Date(2023, 7, 4, 0, 0, 0, 0, time.UTC), "507F", "CODE 6 ADAM", "Central"),
	}
}

func TestFilterFireworks(t *testing.T) {
	fireworks := FilterFireworks(fixtureRecords())

	require.Len(t, fireworks, 4)
	for _, rec := range fireworks {
		assert.Equal(t, "507F", rec.CallTypeCode)
		assert.False(t, strings.HasPrefix(rec.CallTypeText, "CODE 6"))
	}
}

func TestBuildFireworksReport_Aggregates(t *testing.T) {
	report := BuildFireworksReport(fixtureRecords())

	assert.Equal(t, 7, report.TotalCalls)
	assert.Equal(t, 4, report.FireworksCalls)

	require.Len(t, report.ByYear, 2)
	assert.Equal(t, YearlyCount{Year: 2023, FireworksCalls: 3, TotalCalls: 6, Percentage: 50}, report.ByYear[0])
	assert.Equal(t, YearlyCount{Year: 2024, FireworksCalls: 1, TotalCalls: 1, Percentage: 100}, report.ByYear[1])

	// Only July and December have fireworks calls in the fixture.
	require.Len(t, report.ByMonth, 2)
	assert.Equal(t, MonthlyCount{Month: 7, MonthName: "Jul", Calls: 3}, report.ByMonth[0])
	assert.Equal(t, MonthlyCount{Month: 12, MonthName: "Dec", Calls: 1}, report.ByMonth[1])

	// Day-of-week table always carries all seven days, Monday first.
	require.Len(t, report.ByDayOfWeek, 7)
	assert.Equal(t, "Monday", report.ByDayOfWeek[0].DayOfWeek)

	require.Len(t, report.TopAreas, 2)
	assert.Equal(t, AreaCount{Area: "Central", Calls: 2}, report.TopAreas[0])
	assert.Equal(t, AreaCount{Area: "Devonshire", Calls: 2}, report.TopAreas[1])

	// July 1-5 window: incidents 1, 2 (2023) and 4 (2024).
	require.Len(t, report.JulyFourthByYear, 2)
	assert.Equal(t, JulyWindowCount{Year: 2023, Calls: 2}, report.JulyFourthByYear[0])
	assert.Equal(t, JulyWindowCount{Year: 2024, Calls: 1}, report.JulyFourthByYear[1])
}

func TestTopAreas_TiesBreakAlphabetically(t *testing.T) {
	counts := map[string]int{"Wilshire": 2, "Central": 2, "Harbor": 5}

	areas := topAreas(counts, 15)

	require.Len(t, areas, 3)
	assert.Equal(t, "Harbor", areas[0].Area)
	assert.Equal(t, "Central", areas[1].Area)
	assert.Equal(t, "Wilshire", areas[2].Area)
}

func TestTopAreas_Limit(t *testing.T) {
	counts := map[string]int{"A": 1, "B": 2, "C": 3}
	areas := topAreas(counts, 2)
	require.Len(t, areas, 2)
	assert.Equal(t, "C", areas[0].Area)
	assert.Equal(t, "B", areas[1].Area)
}

func TestWriteCSV(t *testing.T) {
	dir := t.TempDir()
	report := BuildFireworksReport(fixtureRecords())

	require.NoError(t, report.WriteCSV(dir))

	for _, name := range []string{
		"fireworks_by_year.csv",
		"fireworks_by_month.csv",
		"fireworks_by_day_of_week.csv",
		"fireworks_by_area.csv",
		"fireworks_july_4th_by_year.csv",
	} {
		data, err := os.ReadFile(filepath.Join(dir, name))
		require.NoError(t, err, name)
		assert.NotEmpty(t, data, name)
	}

	yearly, err := os.ReadFile(filepath.Join(dir, "fireworks_by_year.csv"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(yearly)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "year,fireworks_calls,total_calls,percentage", strings.TrimSpace(lines[0]))
	assert.Equal(t, "2023,3,6,50", strings.TrimSpace(lines[1]))
}
