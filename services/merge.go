// services/merge.go
package services

import "github.com/citydesk/lapdcalls/models"

// MergeSnapshots combines an existing snapshot with a freshly fetched
// partition, deduplicating by incident number. When an incident number
// appears in both inputs the partition's record wins: the upstream authority
// periodically revises the current-year dataset, so its rows are taken as
// authoritative. Within the partition the last occurrence of an incident
// number wins.
//
// The result is deterministic: surviving existing records keep their order
// and partition records are appended in partition order. The function has no
// side effects; callers decide whether and when to persist.
func MergeSnapshots(existing, partition []models.CallRecord) []models.CallRecord {
	if len(partition) == 0 {
		// True no-op: the snapshot is returned unchanged (copied, so later
		// mutation of the result cannot alias the caller's slice).
		out := make([]models.CallRecord, len(existing))
		copy(out, existing)
		return out
	}

	fresh := make(map[string]models.CallRecord, len(partition))
	order := make([]string, 0, len(partition))
	for _, rec := range partition {
		if _, seen := fresh[rec.IncidentNumber]; !seen {
			order = append(order, rec.IncidentNumber)
		}
		fresh[rec.IncidentNumber] = rec
	}

	merged := make([]models.CallRecord, 0, len(existing)+len(order))
	kept := make(map[string]bool, len(existing))
	for _, rec := range existing {
		if _, superseded := fresh[rec.IncidentNumber]; superseded {
			continue
		}
		// The snapshot invariant says existing input should already be
		// duplicate-free; if it is not, the first occurrence is kept.
		if kept[rec.IncidentNumber] {
			continue
		}
		kept[rec.IncidentNumber] = true
		merged = append(merged, rec)
	}

	for _, id := range order {
		merged = append(merged, fresh[id])
	}
	return merged
}
