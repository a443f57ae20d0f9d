package listview

import "slices"

// windowRadius is how many pages either side of the current one stay visible.
const windowRadius = 2

// PageLink is one element of a pagination control. Ellipsis entries carry no
// page number.
type PageLink struct {
	Page     int  `json:"page,omitempty"`
	Current  bool `json:"current,omitempty"`
	Ellipsis bool `json:"ellipsis,omitempty"`
}

// PageWindow returns the compact pagination control for the current state.
//
// Page i is shown when it is the first page, the last page, or within two of
// the current page. Each run of hidden pages collapses into one ellipsis.
func (m *Model[T]) PageWindow() []PageLink {
	return pageWindow(m.page, m.TotalPages())
}

func pageWindow(current, total int) []PageLink {
	pages := []int{1, total}
	for p := current - windowRadius; p <= current+windowRadius; p++ {
		if p >= 1 && p <= total {
			pages = append(pages, p)
		}
	}
	slices.Sort(pages)
	pages = slices.Compact(pages)

	links := make([]PageLink, 0, len(pages)+2)
	prev := 0
	for _, p := range pages {
		if p-prev > 1 {
			links = append(links, PageLink{Ellipsis: true})
		}
		links = append(links, PageLink{Page: p, Current: p == current})
		prev = p
	}
	return links
}
