// Package listview implements the client-side list view-model shared by every
// catalog collection (books, readers).
//
// A [Model] owns the authoritative item set for one collection and derives a
// filtered, sorted and paged view from it:
//
//	items ──filter──▶ matches ──stable sort──▶ filteredSorted ──slice──▶ current page
//
// The model is generic over the item type. It never inspects items directly;
// instead it is constructed with accessor functions:
//   - a search accessor returning the strings scanned by [Filter]
//   - a capability table ([Options.Fields]) mapping each [Field] to an
//     [Accessor] that yields a comparable [Key]
//
// Sort fields outside the table are rejected when the model is built or when
// [Model.SetSort] is called, so the comparator is always total.
//
// # Ordering
//
// String keys compare case-insensitively and numeric keys compare
// numerically. Equal keys keep their insertion order in both directions:
// [Descending] inverts the key comparison only, never the tie-break.
//
// # Pagination
//
// The page count is max(1, ceil(len(filteredSorted)/pageSize)), so page 1 is
// always valid, including for an empty result. Changing the items, filter,
// sort or page size returns to page 1. [Model.PageWindow] produces the compact
// control model for a pagination bar (first, last, and ±2 around the current
// page, with one ellipsis per hidden gap).
//
// # Concurrency
//
// A Model performs no I/O and holds no locks. Callers fetch asynchronously,
// then hand the materialized slice to [Model.SetItems] from a single goroutine.
package listview
