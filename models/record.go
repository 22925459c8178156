// models/record.go
package models

import "time"

// CallRecord represents one normalized LAPD calls-for-service incident.
// Parquet tags drive the columnar snapshot schema, db tags the SQLite mirror.
type CallRecord struct {
	IncidentNumber string    `parquet:"incident_number" db:"incident_number" json:"incident_number"`
	PrimaryDate    time.Time `parquet:"primary_date,timestamp(millisecond)" db:"primary_date" json:"primary_date"`

	// Time components derived from PrimaryDate during normalization.
	Year      int    `parquet:"year" db:"year" json:"year"`
	Month     int    `parquet:"month" db:"month" json:"month"`
	DayOfWeek string `parquet:"day_of_week" db:"day_of_week" json:"day_of_week"`
	Hour      int    `parquet:"hour" db:"hour" json:"hour"` // -1 when the source row carried no usable time

	CallTypeCode string `parquet:"call_type_code" db:"call_type_code" json:"call_type_code"`
	CallTypeText string `parquet:"call_type_text" db:"call_type_text" json:"call_type_text"`
	AreaOcc      string `parquet:"area_occ" db:"area_occ" json:"area_occ"`

	// Provenance fields stamped by the fetcher, not present in the source rows.
	SourceDataset string `parquet:"source_dataset" db:"source_dataset" json:"source_dataset"`
	SourceYear    int    `parquet:"source_year" db:"source_year" json:"source_year"`
}
