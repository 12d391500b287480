package reader

// window is one resolved pagination axis.
type window struct {
	page  int    // clamped 1-based page; 0 when the axis is empty
	pages uint64 // ceil(total/limit)
	start uint64 // first element index
	count uint64 // elements in the window
}

// paginate clamps page into [1, ceil(total/limit)]. limit must be positive.
func paginate(total uint64, page, limit int) window {
	l := uint64(limit)
	pages := total / l
	if total%l != 0 {
		pages++
	}
	if pages == 0 {
		return window{}
	}

	p := uint64(max(page, 1))
	p = min(p, pages)
	start := (p - 1) * l
	return window{
		page:  int(p),
		pages: pages,
		start: start,
		count: min(l, total-start),
	}
}
