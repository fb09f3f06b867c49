package tui

// pager tracks a cursor and its page over a list rendered in a fixed-height panel.
//
// index stays within [0, max(0, length-1)] and page within [0, maxPage()].
type pager struct {
	index  int
	page   int
	height int
	length int
}

// newPager constructs a pager for a panel of the given height.
func newPager(height int) pager {
	return pager{height: max(1, height)}
}

// setLength replaces the list length and re-clamps the cursor.
func (p *pager) setLength(n int) {
	p.length = max(0, n)
	p.clampIndex()
}

// reset moves the cursor back to the first line.
func (p *pager) reset() {
	p.index = 0
	p.page = 0
}

// setIndex moves the cursor to i, clamped to the list bounds.
func (p *pager) setIndex(i int) {
	p.index = i
	p.clampIndex()
}

// advanceLine moves the cursor by delta lines.
func (p *pager) advanceLine(delta int) {
	if p.length == 0 {
		return
	}
	p.index += delta
	p.clampIndex()
}

// advancePage moves the cursor by delta pages.
func (p *pager) advancePage(delta int) {
	if p.length == 0 {
		return
	}
	p.index += delta * p.height
	p.clampIndex()
}

// resize sets a new panel height and re-clamps the cursor against it.
func (p *pager) resize(height int) {
	p.height = max(1, height)
	p.clampIndex()
}

// maxPage returns the highest page number for the current length.
func (p pager) maxPage() int {
	if p.height <= 0 {
		return 0
	}
	return p.length / p.height
}

// window returns the half-open range of lines visible on the current page.
func (p pager) window() (int, int) {
	start := p.page * p.height
	if start > p.length {
		start = p.length
	}
	end := min(start+p.height, p.length)
	return start, end
}

func (p *pager) clampIndex() {
	if p.height <= 0 {
		p.height = 1
	}
	if p.length == 0 {
		p.index = 0
		p.page = 0
		return
	}
	p.index = clamp(p.index, 0, p.length-1)
	p.page = clamp(p.index/p.height, 0, p.maxPage())
}

// clamp bounds v to [minV, maxV]; an inverted range yields minV.
func clamp(v, minV, maxV int) int {
	if maxV < minV {
		return minV
	}
	if v < minV {
		return minV
	}
	if v > maxV {
		return maxV
	}
	return v
}
