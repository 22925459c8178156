// socrata/normalize.go
package socrata

import (
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/citydesk/lapdcalls/config"
	"github.com/citydesk/lapdcalls/models"
	"github.com/citydesk/lapdcalls/utils"
)

// The upstream column names drifted slightly across source years, so every
// canonical field carries a priority-ordered list of aliases. Harmonization
// happens here, before rows ever reach the merge engine, keeping the merge
// schema-stable.
var columnAliases = map[string][]string{
	"incident_number": {"incident_number"},
	"occurrence_date": {"date_occ", "occurrence_date"},
	"report_date":     {"date_rptd", "report_date"},
	"dispatch_date":   {"dispatch_date"},
	"occurrence_time": {"time_occ", "occurrence_time"},
	"dispatch_time":   {"dispatch_time"},
	"call_type_code":  {"call_type_code"},
	"call_type_text":  {"call_type_text", "call_type_description", "call_type"},
	"area_occ":        {"area_occ", "area"},
}

// Socrata floating timestamps come in a handful of layouts depending on the
// dataset's vintage.
var dateLayouts = []string{
	"2006-01-02T15:04:05.000",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

var timeLayouts = []string{
	"15:04:05",
	"15:04",
}

// Normalize harmonizes raw rows from one dataset partition into canonical
// call records. Rows without an incident number or a resolvable primary date
// are dropped, matching the persisted snapshot's schema guarantees.
func Normalize(rows []RawRow, ds config.DatasetConfig) []models.CallRecord {
	records := make([]models.CallRecord, 0, len(rows))
	dropped := 0

	for _, row := range rows {
		rec, ok := normalizeRow(row, ds)
		if !ok {
			dropped++
			continue
		}
		records = append(records, rec)
	}

	if dropped > 0 {
		log.Printf("Fetcher: Dropped %d records with no incident number or valid date from %q\n", dropped, ds.Name)
	}
	return records
}

func normalizeRow(row RawRow, ds config.DatasetConfig) (models.CallRecord, bool) {
	incident := field(row, "incident_number")
	if incident == "" {
		return models.CallRecord{}, false
	}

	// Primary date: prefer occurrence, then report, then dispatch.
	primary, ok := firstDate(row, "occurrence_date", "report_date", "dispatch_date")
	if !ok {
		return models.CallRecord{}, false
	}

	rec := models.CallRecord{
		IncidentNumber: incident,
		PrimaryDate:    primary,
		Year:           primary.Year(),
		Month:          int(primary.Month()),
		DayOfWeek:      primary.Weekday().String(),
		Hour:           firstHour(row, "occurrence_time", "dispatch_time"),
		CallTypeCode:   field(row, "call_type_code"),
		CallTypeText:   field(row, "call_type_text"),
		AreaOcc:        utils.NormalizeAreaName(field(row, "area_occ")),
		SourceDataset:  ds.Name,
		SourceYear:     ds.SourceYear,
	}
	return rec, true
}

// field resolves a canonical field name against the row using the alias
// table, returning the first non-empty match, trimmed.
func field(row RawRow, canonical string) string {
	for _, alias := range columnAliases[canonical] {
		if raw, present := row[alias]; present {
			if s := strings.TrimSpace(stringValue(raw)); s != "" {
				return s
			}
		}
	}
	return ""
}

func stringValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

func firstDate(row RawRow, canonicals ...string) (time.Time, bool) {
	for _, name := range canonicals {
		if s := field(row, name); s != "" {
			if t, ok := parseDate(s); ok {
				return t, true
			}
		}
	}
	return time.Time{}, false
}

func parseDate(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// firstHour extracts the hour component from the first parseable time field.
// Returns -1 when no usable time is present.
func firstHour(row RawRow, canonicals ...string) int {
	for _, name := range canonicals {
		if s := field(row, name); s != "" {
			for _, layout := range timeLayouts {
				if t, err := time.Parse(layout, s); err == nil {
					return t.Hour()
				}
			}
		}
	}
	return -1
}
