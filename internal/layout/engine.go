package layout

import (
	"github.com/dassodev/Dasso2008/internal/model"
)

// Params are the layout inputs for pagination. All values are opaque to the
// engine: changing any of them triggers a full recomputation. FontSize and
// the clamped ranges are owned by the rendering surface.
type Params struct {
	AvailableHeight int
	AvailableWidth  int
	FontSize        int
	LineSpacing     float64
	Margin          int
	Padding         int
}

// LineWidth is the usable text width: container width minus horizontal
// margins and padding on both sides.
func (p Params) LineWidth() int {
	return p.AvailableWidth - 2*p.Margin - 2*p.Padding
}

// measurable reports whether the surface is mounted with a usable area.
func (p Params) measurable() bool {
	return p.AvailableHeight > 0 && p.LineWidth() > 0
}

// MinContentHeight is the floor for the content area, in rows.
const MinContentHeight = 4

// AvailableHeight derives the paginated content height from the container:
// vertical margins and chrome (footer bar, page counter strip) come off the
// top, and the result never drops below MinContentHeight.
func AvailableHeight(containerHeight, margin, chromeHeight int) int {
	h := containerHeight - 2*margin - chromeHeight
	if h < MinContentHeight {
		return MinContentHeight
	}
	return h
}

// Trigger identifies what caused a recomputation request.
type Trigger int

const (
	TriggerContentChanged Trigger = iota
	TriggerParamsChanged
	TriggerModeToggled
	TriggerViewportResized
)

// Update is the result of a recomputation. ResetPage is set when the
// caller's current page fell out of range and must snap back to page 1.
type Update struct {
	Computed   bool
	TotalPages int
	ResetPage  bool
}

// Engine owns the current page partition. Pages are recomputed wholesale on
// every layout-affecting change, never patched incrementally.
type Engine struct {
	measurer   Measurer
	paragraphs []string
	params     Params
	pages      []model.Page
	total      int
}

// NewEngine builds an engine. A nil measurer selects the terminal measurer.
func NewEngine(m Measurer) *Engine {
	if m == nil {
		m = TerminalMeasurer{}
	}
	return &Engine{measurer: m, total: 1}
}

// SetContent replaces the paragraph sequence. The caller must follow with
// Recompute(TriggerContentChanged, ...).
func (e *Engine) SetContent(paragraphs []string) {
	e.paragraphs = paragraphs
}

// SetParams replaces the layout parameters. The caller must follow with a
// Recompute for the matching trigger.
func (e *Engine) SetParams(p Params) {
	e.params = p
}

// Params returns the current layout parameters.
func (e *Engine) Params() Params {
	return e.params
}

// Recompute repartitions the content into pages. It runs to completion
// synchronously; a later call with the same inputs yields the same pages.
// If the surface is not measurable yet, nothing is computed and prior pages
// stay untouched. currentPage is the externally tracked page index, checked
// against the new total so the surface never renders out of range.
func (e *Engine) Recompute(_ Trigger, currentPage int) Update {
	if !e.params.measurable() {
		return Update{TotalPages: e.total}
	}
	e.pages = ComputePages(e.paragraphs, e.params, e.measurer)
	e.total = len(e.pages)
	if e.total == 0 {
		// Empty content still reads as one empty page.
		e.pages = []model.Page{{Start: 0, End: -1}}
		e.total = 1
	}
	return Update{
		Computed:   true,
		TotalPages: e.total,
		ResetPage:  currentPage > e.total,
	}
}

// Pages returns the current partition.
func (e *Engine) Pages() []model.Page {
	return e.pages
}

// TotalPages returns the current page count, never below 1.
func (e *Engine) TotalPages() int {
	if e.total < 1 {
		return 1
	}
	return e.total
}

// PageSpan returns the paragraph range of a 1-based page index.
func (e *Engine) PageSpan(page int) (model.Page, bool) {
	if page < 1 || page > len(e.pages) {
		return model.Page{}, false
	}
	return e.pages[page-1], true
}

// PageParagraphs returns the paragraphs of a 1-based page index.
func (e *Engine) PageParagraphs(page int) []string {
	span, ok := e.PageSpan(page)
	if !ok || span.End < span.Start {
		return nil
	}
	return e.paragraphs[span.Start : span.End+1]
}

// ComputePages partitions paragraphs into pages with a single greedy
// forward-fill pass. A paragraph that alone exceeds the available height is
// forced onto its own page so progress never stalls.
func ComputePages(paragraphs []string, params Params, m Measurer) []model.Page {
	pages := make([]model.Page, 0)
	cur := model.Page{Start: 0, End: -1}
	height := 0
	for i, para := range paragraphs {
		h := m.ParagraphHeight(para, params)
		if height+h > params.AvailableHeight {
			if cur.Start == i {
				pages = append(pages, model.Page{Start: i, End: i})
				cur = model.Page{Start: i + 1, End: i}
				height = 0
				continue
			}
			pages = append(pages, cur)
			cur = model.Page{Start: i, End: i}
			height = h
			continue
		}
		height += h
		cur.End = i
	}
	if cur.Start <= cur.End {
		pages = append(pages, cur)
	}
	return pages
}
