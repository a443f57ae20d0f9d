package listview

import "fmt"

// State is a serializable snapshot of the user-controlled parts of a model.
// The item set is not part of it.
type State struct {
	Filter   Filter `json:"filter"`
	Sort     Sort   `json:"sort"`
	PageSize int    `json:"page_size"`
	Page     int    `json:"page"`
}

// State captures the current filter, sort, page size and page.
func (m *Model[T]) State() State {
	return State{
		Filter:   m.filter,
		Sort:     m.sort,
		PageSize: m.pageSize,
		Page:     m.page,
	}
}

// Restore applies a saved state. The sort and page size are validated like
// SetSort and SetPageSize and nothing changes if either is rejected. The page
// is clamped into [1, TotalPages()] for the current item set, so restore after
// SetItems to keep the saved page.
func (m *Model[T]) Restore(s State) error {
	if err := m.checkSort(s.Sort); err != nil {
		return err
	}
	if s.PageSize <= 0 {
		return fmt.Errorf("%w: page size must be positive, got %d", ErrInvalidArgument, s.PageSize)
	}

	m.filter = s.Filter
	m.sort = s.Sort
	m.pageSize = s.PageSize
	m.recompute()

	m.page = min(max(s.Page, 1), m.TotalPages())
	return nil
}
