package tasks

import (
	"fmt"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	FetchBooks Phase = iota
	FetchReaders
	Aggregate
	AssignBooks
	UnassignBooks
	DeleteBooks
	DeleteReaders
)

func (p Phase) String() string {
	switch p {
	case FetchBooks:
		return "fetch_books"
	case FetchReaders:
		return "fetch_readers"
	case Aggregate:
		return "aggregate"
	case AssignBooks:
		return "assign_books"
	case UnassignBooks:
		return "unassign_books"
	case DeleteBooks:
		return "delete_books"
	case DeleteReaders:
		return "delete_readers"
	default:
		return ""
	}
}

func fetchCollectionUpdate(p Phase, step, total int) ProgressUpdate {
	name := "books"
	if p == FetchReaders {
		name = "readers"
	}
	return ProgressUpdate{
		Phase:   p,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Fetching %s...", name),
	}
}

func aggregateUpdate(step, total int, stats *Stats) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Aggregate,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Counted %d books and %d readers", stats.TotalBooks, stats.TotalReaders),
		Data:    stats,
	}
}

func bulkStartUpdate(p Phase, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   p,
		Step:    0,
		Total:   total,
		Message: fmt.Sprintf("Starting %s for %d items...", p, total),
	}
}

func bulkItemUpdate(p Phase, step, total int, res ItemResult) ProgressUpdate {
	msg := fmt.Sprintf("[%d/%d] ✓ %d", step, total, res.ID)
	if !res.Success {
		msg = fmt.Sprintf("[%d/%d] ✗ %d: %v", step, total, res.ID, res.Error)
	}
	return ProgressUpdate{
		Phase:   p,
		Step:    step,
		Total:   total,
		Message: msg,
		Data:    res,
	}
}
