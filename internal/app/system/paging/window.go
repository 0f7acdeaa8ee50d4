// internal/app/system/paging/window.go
package paging

import "strconv"

// Item is one control in the pagination bar: either a page number or an
// ellipsis marker.
type Item struct {
	Page     int  // 0 for ellipsis
	Ellipsis bool
	Current  bool
}

// Label is the text shown on the control.
func (it Item) Label() string {
	if it.Ellipsis {
		return Ellipsis
	}
	return strconv.Itoa(it.Page)
}

// Window builds the compact page-button sequence for current/total:
// page 1, an ellipsis when current > 4, the pages current-2..current+2
// (kept inside 2..total-1), an ellipsis when current < total-3, and the
// last page.
func Window(current, total int) []Item {
	if total <= 0 {
		return nil
	}
	current = Clamp(current, total)

	items := []Item{{Page: 1, Current: current == 1}}
	if current > 4 {
		items = append(items, Item{Ellipsis: true})
	}

	lo := current - 2
	if lo < 2 {
		lo = 2
	}
	hi := current + 2
	if hi > total-1 {
		hi = total - 1
	}
	for p := lo; p <= hi; p++ {
		items = append(items, Item{Page: p, Current: p == current})
	}

	if current < total-3 {
		items = append(items, Item{Ellipsis: true})
	}
	if total > 1 {
		items = append(items, Item{Page: total, Current: current == total})
	}
	return items
}

// Nav carries everything a template needs to draw prev/next and the window.
type Nav struct {
	Current    int
	TotalPages int
	Items      []Item
	HasPrev    bool
	HasNext    bool
	PrevPage   int
	NextPage   int
}

// NewNav builds a Nav for current/total.
func NewNav(current, total int) Nav {
	current = Clamp(current, total)
	n := Nav{
		Current:    current,
		TotalPages: total,
		Items:      Window(current, total),
		HasPrev:    current > 1,
		HasNext:    current < total,
	}
	n.PrevPage = current - 1
	if n.PrevPage < 1 {
		n.PrevPage = 1
	}
	n.NextPage = current + 1
	if n.NextPage > total {
		n.NextPage = total
	}
	return n
}
