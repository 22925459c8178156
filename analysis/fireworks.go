// analysis/fireworks.go
package analysis

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/citydesk/lapdcalls/models"
	"github.com/jszwec/csvutil"
)

// Fireworks incidents are identified by call type code 507F. Code 6 calls
// (officer status, code "006" or a "CODE 6" text variant) are excluded first
// because they are not citizen-initiated incidents.
const (
	fireworksCallTypeCode = "507F"
	code6CallTypeCode     = "006"
)

var monthNames = []string{
	"Jan", "Feb", "Mar", "Apr", "May", "Jun",
	"Jul", "Aug", "Sep", "Oct", "Nov", "Dec",
}

var dayOrder = []string{
	"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday",
}

const topAreaCount = 15

type YearlyCount struct {
	Year           int     `csv:"year"`
	FireworksCalls int     `csv:"fireworks_calls"`
	TotalCalls     int     `csv:"total_calls"`
	Percentage     float64 `csv:"percentage"`
}

type MonthlyCount struct {
	Month     int    `csv:"month"`
	MonthName string `csv:"month_name"`
	Calls     int    `csv:"calls"`
}

type DayOfWeekCount struct {
	DayOfWeek string `csv:"day_of_week"`
	Calls     int    `csv:"calls"`
}

type AreaCount struct {
	Area  string `csv:"area_occ"`
	Calls int    `csv:"calls"`
}

type JulyWindowCount struct {
	Year  int `csv:"year"`
	Calls int `csv:"calls"`
}

// FireworksReport holds the tabular aggregates over fireworks-related calls.
type FireworksReport struct {
	TotalCalls     int
	FireworksCalls int

	ByYear      []YearlyCount
	ByMonth     []MonthlyCount
	ByDayOfWeek []DayOfWeekCount
	TopAreas    []AreaCount

	// Calls in the July 1-5 holiday window, per year.
	JulyFourthByYear []JulyWindowCount
}

// FilterFireworks returns the fireworks-related subset of the snapshot.
func FilterFireworks(records []models.CallRecord) []models.CallRecord {
	var fireworks []models.CallRecord
	for _, rec := range records {
		if isCode6(rec) {
			continue
		}
		if rec.CallTypeCode == fireworksCallTypeCode {
			fireworks = append(fireworks, rec)
		}
	}
	return fireworks
}

func isCode6(rec models.CallRecord) bool {
	return rec.CallTypeCode == code6CallTypeCode ||
		strings.HasPrefix(strings.ToUpper(rec.CallTypeText), "CODE 6")
}

// BuildFireworksReport aggregates the snapshot into the report tables.
func BuildFireworksReport(records []models.CallRecord) *FireworksReport {
	fireworks := FilterFireworks(records)

	report := &FireworksReport{
		TotalCalls:     len(records),
		FireworksCalls: len(fireworks),
	}

	totalByYear := make(map[int]int)
	for _, rec := range records {
		totalByYear[rec.Year]++
	}

	fwByYear := make(map[int]int)
	fwByMonth := make(map[int]int)
	fwByDay := make(map[string]int)
	fwByArea := make(map[string]int)
	julyByYear := make(map[int]int)

	for _, rec := range fireworks {
		fwByYear[rec.Year]++
		fwByMonth[rec.Month]++
		fwByDay[rec.DayOfWeek]++
		if rec.AreaOcc != "" {
			fwByArea[rec.AreaOcc]++
		}
		if rec.Month == 7 && rec.PrimaryDate.Day() >= 1 && rec.PrimaryDate.Day() <= 5 {
			julyByYear[rec.Year]++
		}
	}

	for _, year := range sortedKeys(fwByYear) {
		count := fwByYear[year]
		total := totalByYear[year]
		var pct float64
		if total > 0 {
			pct = float64(count) / float64(total) * 100
		}
		report.ByYear = append(report.ByYear, YearlyCount{
			Year: year, FireworksCalls: count, TotalCalls: total, Percentage: pct,
		})
	}

	for month := 1; month <= 12; month++ {
		if count, present := fwByMonth[month]; present {
			report.ByMonth = append(report.ByMonth, MonthlyCount{
				Month: month, MonthName: monthNames[month-1], Calls: count,
			})
		}
	}

	for _, day := range dayOrder {
		report.ByDayOfWeek = append(report.ByDayOfWeek, DayOfWeekCount{
			DayOfWeek: day, Calls: fwByDay[day],
		})
	}

	report.TopAreas = topAreas(fwByArea, topAreaCount)

	for _, year := range sortedKeys(julyByYear) {
		report.JulyFourthByYear = append(report.JulyFourthByYear, JulyWindowCount{
			Year: year, Calls: julyByYear[year],
		})
	}

	return report
}

// WriteCSV exports each report table into dir as its own CSV file.
func (r *FireworksReport) WriteCSV(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create report directory %s: %w", dir, err)
	}

	files := []struct {
		name string
		rows any
	}{
		{"fireworks_by_year.csv", r.ByYear},
		{"fireworks_by_month.csv", r.ByMonth},
		{"fireworks_by_day_of_week.csv", r.ByDayOfWeek},
		{"fireworks_by_area.csv", r.TopAreas},
		{"fireworks_july_4th_by_year.csv", r.JulyFourthByYear},
	}

	for _, f := range files {
		data, err := csvutil.Marshal(f.rows)
		if err != nil {
			return fmt.Errorf("failed to encode %s: %w", f.name, err)
		}
		path := filepath.Join(dir, f.name)
		if err := os.WriteFile(path, data, 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
		log.Printf("Analysis: Wrote %s\n", path)
	}
	return nil
}

func sortedKeys(m map[int]int) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

func topAreas(counts map[string]int, limit int) []AreaCount {
	areas := make([]AreaCount, 0, len(counts))
	for area, count := range counts {
		areas = append(areas, AreaCount{Area: area, Calls: count})
	}
	sort.Slice(areas, func(i, j int) bool {
		if areas[i].Calls != areas[j].Calls {
			return areas[i].Calls > areas[j].Calls
		}
		return areas[i].Area < areas[j].Area
	})
	if len(areas) > limit {
		areas = areas[:limit]
	}
	return areas
}
