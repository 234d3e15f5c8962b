package tui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/dassodev/Dasso2008/internal/layout"
	"github.com/dassodev/Dasso2008/internal/model"
	"github.com/dassodev/Dasso2008/internal/progress"
)

type memStore struct {
	rec *model.ReadingProgress
}

func (s *memStore) GetProgress(_ context.Context, _ string) (*model.ReadingProgress, error) {
	return s.rec, nil
}

func (s *memStore) PutProgress(_ context.Context, p model.ReadingProgress) error {
	s.rec = &p
	return nil
}

func newTestModel(t *testing.T, paginated bool) *Model {
	t.Helper()
	return newTestModelWith(t, paginated, []string{
		"第一段，这是一本测试用的书。",
		"第二段，内容稍微长一点，用来产生多行。",
		"第三段。",
		"第四段，继续填充页面。",
		"第五段，最后一段。",
	})
}

func newTestModelWith(t *testing.T, paginated bool, paragraphs []string) *Model {
	t.Helper()
	ctrl := progress.NewController(&memStore{}, "/books/test.txt")
	m := NewModel(Config{
		BookID:      "/books/test.txt",
		Title:       "test",
		Paragraphs:  paragraphs,
		FontSize:    16,
		LineSpacing: 1.0,
		Margin:      1,
		Padding:     1,
		Paginated:   paginated,
	}, nil, ctrl, nil, nil)
	m.width = 40
	m.height = 14
	m.refreshLayout(layout.TriggerViewportResized)
	return m
}

func TestFooterPaginated(t *testing.T) {
	m := &Model{
		paginated:   true,
		currentPage: 3,
		totalPages:  12,
		clock:       func() time.Time { return time.Date(2026, 3, 1, 12, 30, 0, 0, time.UTC) },
		cfg:         Config{Title: "红楼梦"},
	}
	footer := m.renderFooter()
	for _, want := range []string{"12:30", "Page 3 of 12", "红楼梦"} {
		if !strings.Contains(footer, want) {
			t.Fatalf("footer %q missing %q", footer, want)
		}
	}
}

func TestFooterScrollPercentage(t *testing.T) {
	m := &Model{
		percent: 42.4,
		clock:   func() time.Time { return time.Date(2026, 3, 1, 9, 5, 0, 0, time.UTC) },
	}
	footer := m.renderFooter()
	if !strings.Contains(footer, "42% completed") {
		t.Fatalf("footer %q missing percentage", footer)
	}
	if !strings.Contains(footer, "09:05") {
		t.Fatalf("footer %q missing clock", footer)
	}
}

func TestTogglePaginationSuspendsRestore(t *testing.T) {
	m := newTestModel(t, false)
	m.rec.Reset(40)
	if !m.rec.Active() {
		t.Fatal("restore should be armed after reset")
	}

	m.togglePagination()
	if !m.paginated {
		t.Fatal("expected paginated mode")
	}
	if m.rec.Active() {
		t.Fatal("pagination mode must suspend restoration")
	}

	m.togglePagination()
	if m.paginated {
		t.Fatal("expected scroll mode")
	}
	if !m.rec.Active() {
		t.Fatal("switching back must resume the pending restore")
	}
}

func TestStaleSegmentBatchIgnored(t *testing.T) {
	m := newTestModel(t, false)
	m.segGen = 2
	m.segmenting = true

	m.Update(segmentsMsg{gen: 1, segments: [][]model.Segment{{{Word: "x"}}}})
	if m.segments != nil {
		t.Fatal("stale segment batch must be dropped")
	}
	if !m.segmenting {
		t.Fatal("stale batch must not clear the in-flight state")
	}
}

func TestSegmentErrorDegradesToPlainText(t *testing.T) {
	m := newTestModel(t, false)
	m.segmenting = true
	m.showSpaces = true

	m.Update(segmentsMsg{gen: 0, err: errors.New("service down")})
	if m.segments != nil || !m.segErr {
		t.Fatal("failed batch must leave content unsegmented")
	}
	if m.segmenting {
		t.Fatal("failure must end the in-flight state")
	}
	if len(m.lines) == 0 {
		t.Fatal("plain-text rendering must survive segmentation failure")
	}
}

func TestGoToPageStaysInRange(t *testing.T) {
	m := newTestModel(t, true)
	if m.totalPages < 2 {
		t.Fatalf("fixture should paginate into multiple pages, got %d", m.totalPages)
	}

	if cmd := m.goToPage(0); cmd != nil || m.currentPage != 1 {
		t.Fatalf("page 0 must be rejected, now on %d", m.currentPage)
	}
	m.goToPage(m.totalPages)
	if cmd := m.goToPage(m.totalPages + 1); cmd != nil || m.currentPage != m.totalPages {
		t.Fatalf("page past the end must be rejected, now on %d", m.currentPage)
	}
}

func TestResizeResetsOutOfRangePage(t *testing.T) {
	m := newTestModel(t, true)
	m.currentPage = 99

	m.Update(tea.WindowSizeMsg{Width: 40, Height: 30})
	if m.currentPage != 1 {
		t.Fatalf("out-of-range page must snap to 1, got %d", m.currentPage)
	}
}

func TestPopoverLifecycle(t *testing.T) {
	m := newTestModel(t, false)
	m.popover = &popoverState{word: "你好", loading: true}

	m.Update(wordInfoMsg{word: "别的", info: &model.WordInfo{Word: "别的"}})
	if !m.popover.loading {
		t.Fatal("response for another word must be ignored")
	}

	info := &model.WordInfo{Word: "你好", Pinyin: "nǐ hǎo", Translation: "hello"}
	m.Update(wordInfoMsg{word: "你好", info: info})
	if m.popover.loading || m.popover.info != info {
		t.Fatalf("expected resolved popover, got %+v", m.popover)
	}

	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if m.popover != nil {
		t.Fatal("esc must close the popover")
	}
}

func TestWordAtResolvesRenderedCoordinates(t *testing.T) {
	m := newTestModelWith(t, false, []string{"你好世界"})
	m.showSpaces = true
	m.segments = [][]model.Segment{{
		{Word: "你好", Offset: 0, End: 2, Type: model.SegmentChinese},
		{Word: "世界", Offset: 2, End: 4, Type: model.SegmentChinese},
	}}
	m.applyContent()

	// The first content line renders at screen row margin, starting at
	// column margin+padding.
	row := m.cfg.Margin
	col := m.cfg.Margin + m.cfg.Padding
	if word, ok := m.wordAt(col, row); !ok || word != "你好" {
		t.Fatalf("tap at the word's rendered position resolved to %q ok=%v, want 你好", word, ok)
	}
	// "你好 世界": the second word starts 5 cells in, past the separator.
	if word, ok := m.wordAt(col+5, row); !ok || word != "世界" {
		t.Fatalf("tap on the second word resolved to %q ok=%v, want 世界", word, ok)
	}
	if _, ok := m.wordAt(col, row-1); ok {
		t.Fatal("tap above the content must miss")
	}
}

func TestOutsideTapUsesRenderedPopoverRect(t *testing.T) {
	m := newTestModel(t, false)
	m.popover = &popoverState{word: "你好", loading: true}
	if view := m.View(); view == "" {
		t.Fatal("expected rendered overlay")
	}
	p := m.popover
	if p.width == 0 || p.height == 0 {
		t.Fatalf("popover rect not recorded: %+v", p)
	}

	press := tea.MouseMsg{Action: tea.MouseActionPress, Button: tea.MouseButtonLeft}
	press.X, press.Y = p.left, p.top
	m.handleMouse(press)
	if m.popover == nil {
		t.Fatal("tap on the panel border must not close it")
	}

	press.X, press.Y = p.left-1, p.top
	m.handleMouse(press)
	if m.popover != nil {
		t.Fatal("tap outside the panel must close it")
	}
}

func TestSegmentedPagesFitAvailableHeight(t *testing.T) {
	m := newTestModel(t, true)
	m.showSpaces = true
	m.segments = make([][]model.Segment, len(m.paragraphs))
	for i, p := range m.paragraphs {
		m.segments[i] = segmentEveryTwoRunes(p)
	}
	m.applyContent()

	avail := m.engine.Params().AvailableHeight
	for page := 1; page <= m.totalPages; page++ {
		m.currentPage = page
		m.rebuildPageLines()
		if len(m.pageLines) > avail {
			t.Fatalf("page %d renders %d rows with %d available", page, len(m.pageLines), avail)
		}
	}
}

func segmentEveryTwoRunes(paragraph string) []model.Segment {
	runes := []rune(paragraph)
	var segments []model.Segment
	for i := 0; i < len(runes); i += 2 {
		end := i + 2
		if end > len(runes) {
			end = len(runes)
		}
		segments = append(segments, model.Segment{
			Word:   string(runes[i:end]),
			Offset: i,
			End:    end,
			Type:   model.SegmentChinese,
		})
	}
	return segments
}

func TestBarsAutoHideGeneration(t *testing.T) {
	m := newTestModel(t, false)
	if !m.showBars {
		t.Fatal("bars start visible")
	}

	m.Update(hideBarsMsg{gen: m.barsGen})
	if m.showBars {
		t.Fatal("matching generation must hide the bars")
	}

	m.toggleBars()
	stale := m.barsGen - 1
	m.Update(hideBarsMsg{gen: stale})
	if !m.showBars {
		t.Fatal("stale auto-hide must not fire after a manual toggle")
	}
}
