// models/meta.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// IngestRun statuses.
const (
	RunStatusOK     = "ok"
	RunStatusFailed = "failed"
)

// IngestRun kinds.
const (
	RunKindBuild  = "build"
	RunKindUpdate = "update"
)

// IngestRun records one build or update pass for auditing, so the scheduler
// can reason about when the snapshot was last rewritten.
type IngestRun struct {
	ID             string     `db:"id" json:"id"`
	Kind           string     `db:"kind" json:"kind"` // "build" or "update"
	StartedAt      time.Time  `db:"started_at" json:"started_at"`
	FinishedAt     *time.Time `db:"finished_at" json:"finished_at,omitempty"`
	RecordsFetched int        `db:"records_fetched" json:"records_fetched"`
	RecordsTotal   int        `db:"records_total" json:"records_total"` // snapshot size after persist
	Status         string     `db:"status" json:"status"`
	Message        string     `db:"message" json:"message,omitempty"`
}

// NewIngestRun starts a run record of the given kind.
func NewIngestRun(kind string, startedAt time.Time) IngestRun {
	return IngestRun{
		ID:        uuid.NewString(),
		Kind:      kind,
		StartedAt: startedAt,
	}
}
