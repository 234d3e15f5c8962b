// Package tui provides the Bubble Tea reading interface.
package tui

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dassodev/Dasso2008/internal/dict"
	"github.com/dassodev/Dasso2008/internal/layout"
	"github.com/dassodev/Dasso2008/internal/model"
	"github.com/dassodev/Dasso2008/internal/progress"
	"github.com/dassodev/Dasso2008/internal/reconcile"
	"github.com/dassodev/Dasso2008/internal/segment"
	"github.com/dassodev/Dasso2008/internal/store"
)

const (
	footerHeight      = 1
	pageCounterHeight = 1
	barsAutoHideAfter = 3 * time.Second
)

var (
	textStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	chineseWordStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	footerStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	pageCounterStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	errorStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	popoverStyle      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder(), true).BorderForeground(lipgloss.Color("#C89A3A")).Padding(1, 2)
	popoverLabelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
)

// Config carries the reader options resolved by the CLI.
type Config struct {
	BookID      string
	Title       string
	Paragraphs  []string
	FontSize    int
	LineSpacing float64
	Margin      int
	Padding     int
	Paginated   bool
	ShowSpaces  bool
}

type popoverState struct {
	word      string
	info      *model.WordInfo
	loading   bool
	loadErr   bool
	audioBusy bool
	audioErr  bool
	saved     bool
	left      int
	top       int
	width     int
	height    int
}

// Model implements the Bubble Tea reading UI.
type Model struct {
	cfg       Config
	store     *store.Store
	ctrl      *progress.Controller
	segmenter *segment.Client
	dicts     *dict.Client

	paragraphs []string
	segments   [][]model.Segment
	segGen     int
	segErr     bool
	segmenting bool
	showSpaces bool

	engine      *layout.Engine
	paginated   bool
	currentPage int
	totalPages  int
	percent     float64

	vp        viewport.Model
	lines     []renderLine
	pageLines []renderLine
	rec       *reconcile.Reconciler

	spin     spinner.Model
	showBars bool
	barsGen  int
	popover  *popoverState

	width  int
	height int

	clock func() time.Time
}

// Message types.
type progressLoadedMsg struct {
	state model.ReadingState
	err   error
}

type segmentsMsg struct {
	gen      int
	segments [][]model.Segment
	err      error
}

type wordInfoMsg struct {
	word string
	info *model.WordInfo
	err  error
}

type audioDoneMsg struct {
	word string
	err  error
}

type wordSavedMsg struct {
	err error
}

type restoreTickMsg struct{}

type hideBarsMsg struct {
	gen int
}

// NewModel constructs a reader model.
func NewModel(cfg Config, st *store.Store, ctrl *progress.Controller, segmenter *segment.Client, dicts *dict.Client) *Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	m := &Model{
		cfg:         cfg,
		store:       st,
		ctrl:        ctrl,
		segmenter:   segmenter,
		dicts:       dicts,
		paragraphs:  cfg.Paragraphs,
		showSpaces:  cfg.ShowSpaces,
		paginated:   cfg.Paginated,
		currentPage: 1,
		totalPages:  1,
		engine:      layout.NewEngine(nil),
		vp:          viewport.New(0, 0),
		rec:         reconcile.New(),
		spin:        sp,
		showBars:    true,
		clock:       time.Now,
	}
	m.engine.SetContent(m.paragraphs)
	if m.paginated {
		m.rec.Suspend()
	}
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.loadProgressCmd(), m.hideBarsCmd()}
	if m.showSpaces {
		cmds = append(cmds, m.segmentCmd(), m.spin.Tick)
		m.segmenting = true
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.refreshLayout(layout.TriggerViewportResized)
		return m, nil
	case progressLoadedMsg:
		return m.handleProgressLoaded(msg)
	case segmentsMsg:
		return m.handleSegments(msg)
	case restoreTickMsg:
		return m.handleRestoreTick()
	case hideBarsMsg:
		if msg.gen == m.barsGen && m.showBars {
			m.showBars = false
			m.refreshLayout(layout.TriggerParamsChanged)
		}
		return m, nil
	case wordInfoMsg:
		if m.popover != nil && m.popover.word == msg.word {
			m.popover.loading = false
			m.popover.info = msg.info
			m.popover.loadErr = msg.err != nil || msg.info == nil
		}
		return m, nil
	case audioDoneMsg:
		if m.popover != nil && m.popover.word == msg.word {
			m.popover.audioBusy = false
			m.popover.audioErr = msg.err != nil
		}
		return m, nil
	case wordSavedMsg:
		if msg.err != nil {
			logErrf("failed to save word: %v\n", msg.err)
		} else if m.popover != nil {
			m.popover.saved = true
		}
		return m, nil
	case spinner.TickMsg:
		if !m.segmenting {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.MouseMsg:
		return m.handleMouse(msg)
	default:
		return m, nil
	}
}

func (m *Model) handleProgressLoaded(msg progressLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		logErrf("failed to load reading progress: %v\n", msg.err)
	}
	state := msg.state
	m.percent = state.ProgressPercentage
	if state.CurrentPage >= 1 {
		m.currentPage = state.CurrentPage
	}
	m.refreshLayout(layout.TriggerContentChanged)

	// Arm restoration for this content instance.
	m.rec.Reset(state.ScrollPosition)
	if m.paginated {
		m.rec.Suspend()
		return m, nil
	}
	return m, m.stepRestore()
}

func (m *Model) handleSegments(msg segmentsMsg) (tea.Model, tea.Cmd) {
	if msg.gen != m.segGen {
		// Stale batch from a superseded request.
		return m, nil
	}
	m.segmenting = false
	if msg.err != nil {
		// Whole batch fails together; rendering degrades to plain text.
		logErrf("failed to segment content: %v\n", msg.err)
		m.segErr = true
		m.segments = nil
	} else {
		m.segErr = false
		m.segments = msg.segments
	}
	m.applyContent()
	return m, nil
}

// applyContent pushes the current display text into the engine and
// repaginates. Segmented rendering inserts separator spaces, so the engine
// must measure the spaced text or pages would overflow in show-spaces mode.
func (m *Model) applyContent() {
	m.engine.SetContent(m.displayParagraphs())
	update := m.engine.Recompute(layout.TriggerContentChanged, m.currentPage)
	if update.Computed {
		m.totalPages = m.engine.TotalPages()
		if update.ResetPage {
			m.currentPage = 1
		}
	}
	m.rebuildContent()
}

// displayParagraphs is the text as rendered: spaced segment words when
// show-spaces is active, raw paragraphs otherwise.
func (m *Model) displayParagraphs() []string {
	if !m.showSpaces || m.segments == nil {
		return m.paragraphs
	}
	out := make([]string, len(m.paragraphs))
	for i, p := range m.paragraphs {
		if i < len(m.segments) && len(m.segments[i]) > 0 {
			out[i] = spacedParagraph(m.segments[i])
		} else {
			out[i] = p
		}
	}
	return out
}

func spacedParagraph(segments []model.Segment) string {
	var b strings.Builder
	for i, seg := range segments {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(seg.Word)
	}
	return b.String()
}

func (m *Model) handleRestoreTick() (tea.Model, tea.Cmd) {
	if m.paginated {
		// Mode switch suspended restoration; drop the cadence.
		return m, nil
	}
	return m, m.stepRestore()
}

// stepRestore runs one reconciliation attempt and keeps the 100ms cadence
// alive only while further retries are due, so no timer outlives the run.
func (m *Model) stepRestore() tea.Cmd {
	outcome := m.rec.Step(viewportSurface{vp: &m.vp})
	if outcome == reconcile.OutcomeRetry {
		return tea.Tick(reconcile.Interval, func(time.Time) tea.Msg { return restoreTickMsg{} })
	}
	return nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.popover != nil {
		return m.handlePopoverKey(msg)
	}
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "j", "down":
		return m, m.scrollBy(1)
	case "k", "up":
		return m, m.scrollBy(-1)
	case "ctrl+d":
		return m, m.scrollBy(m.vp.Height / 2)
	case "ctrl+u":
		return m, m.scrollBy(-m.vp.Height / 2)
	case " ":
		if m.paginated {
			return m, m.goToPage(m.currentPage + 1)
		}
		return m, m.scrollBy(m.vp.Height - 1)
	case "g", "home":
		if !m.paginated {
			m.vp.GotoTop()
			return m, m.saveScrollProgress()
		}
		return m, m.goToPage(1)
	case "G", "end":
		if !m.paginated {
			m.vp.GotoBottom()
			return m, m.saveScrollProgress()
		}
		return m, m.goToPage(m.totalPages)
	case "h", "left":
		if m.paginated {
			return m, m.goToPage(m.currentPage - 1)
		}
	case "l", "right":
		if m.paginated {
			return m, m.goToPage(m.currentPage + 1)
		}
	case "p":
		return m, m.togglePagination()
	case "b", "tab":
		m.toggleBars()
		return m, m.hideBarsCmd()
	case "s":
		return m, m.toggleShowSpaces()
	}
	return m, nil
}

func (m *Model) handlePopoverKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	p := m.popover
	switch msg.String() {
	case "esc", "q":
		m.popover = nil
	case "a":
		if p.info != nil && !p.audioBusy {
			p.audioBusy = true
			p.audioErr = false
			return m, m.speakCmd(p.word, p.info.Word)
		}
	case "s":
		if p.info != nil && !p.saved {
			return m, m.saveWordCmd(*p.info)
		}
	case "ctrl+c":
		return m, tea.Quit
	}
	return m, nil
}

func (m *Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	// Touch-start and click both arrive as press actions; either closes an
	// open popover when it lands outside the panel.
	if msg.Action != tea.MouseActionPress {
		return m, nil
	}
	if m.popover != nil {
		if !m.insidePopover(msg.X, msg.Y) {
			m.popover = nil
		}
		return m, nil
	}
	if msg.Button != tea.MouseButtonLeft {
		return m, nil
	}

	if m.paginated {
		if msg.X < m.width/5 {
			return m, m.goToPage(m.currentPage - 1)
		}
		if msg.X > m.width*4/5 {
			return m, m.goToPage(m.currentPage + 1)
		}
	}
	if word, ok := m.wordAt(msg.X, msg.Y); ok {
		return m, m.openPopover(word)
	}
	m.toggleBars()
	return m, m.hideBarsCmd()
}

// wordAt maps a screen tap to a Chinese word in the content region. The
// body inset applies margin on both axes but padding horizontally only, so
// rows offset by the margin alone.
func (m *Model) wordAt(x, y int) (string, bool) {
	col := x - m.cfg.Margin - m.cfg.Padding
	row := y - m.cfg.Margin
	if col < 0 || row < 0 {
		return "", false
	}
	lines := m.pageLines
	if !m.paginated {
		lines = m.lines
		row += m.vp.YOffset
	}
	return hitTestWord(lines, row, col)
}

func (m *Model) openPopover(word string) tea.Cmd {
	m.popover = &popoverState{word: word, loading: true}
	return m.lookupCmd(word)
}

// insidePopover checks a tap against the rect recorded by the last render,
// so the hit box and the drawn panel can never disagree.
func (m *Model) insidePopover(x, y int) bool {
	p := m.popover
	if p == nil {
		return false
	}
	return x >= p.left && x < p.left+p.width && y >= p.top && y < p.top+p.height
}

func (m *Model) toggleBars() {
	m.showBars = !m.showBars
	m.barsGen++
	m.refreshLayout(layout.TriggerParamsChanged)
}

// hideBarsCmd schedules the auto-hide; a stale generation is ignored.
func (m *Model) hideBarsCmd() tea.Cmd {
	if !m.showBars {
		return nil
	}
	gen := m.barsGen
	return tea.Tick(barsAutoHideAfter, func(time.Time) tea.Msg { return hideBarsMsg{gen: gen} })
}

func (m *Model) togglePagination() tea.Cmd {
	m.paginated = !m.paginated
	m.refreshLayout(layout.TriggerModeToggled)
	if m.paginated {
		m.rec.Suspend()
		if m.currentPage < 1 || m.currentPage > m.totalPages {
			m.currentPage = 1
		}
		return m.savePageProgress()
	}
	m.rec.Resume()
	cmds := []tea.Cmd{m.saveScrollProgress()}
	if step := m.stepRestore(); step != nil {
		cmds = append(cmds, step)
	}
	return tea.Batch(cmds...)
}

func (m *Model) toggleShowSpaces() tea.Cmd {
	m.showSpaces = !m.showSpaces
	if m.showSpaces && m.segments == nil && !m.segErr {
		m.segmenting = true
		m.segGen++
		m.applyContent()
		return tea.Batch(m.segmentCmd(), m.spin.Tick)
	}
	m.applyContent()
	return nil
}

func (m *Model) scrollBy(lines int) tea.Cmd {
	if m.paginated {
		return nil
	}
	if lines >= 0 {
		m.vp.LineDown(lines)
	} else {
		m.vp.LineUp(-lines)
	}
	return m.saveScrollProgress()
}

func (m *Model) goToPage(page int) tea.Cmd {
	// Out-of-range pages are never rendered.
	if page < 1 || page > m.totalPages || page == m.currentPage {
		return nil
	}
	m.currentPage = page
	m.rebuildPageLines()
	return m.savePageProgress()
}

// layoutParams derives the engine inputs from the viewport and chrome.
func (m *Model) layoutParams() layout.Params {
	chrome := 0
	if m.showBars {
		chrome += footerHeight
	}
	if m.paginated {
		chrome += pageCounterHeight
	}
	return layout.Params{
		AvailableHeight: layout.AvailableHeight(m.height, m.cfg.Margin, chrome),
		AvailableWidth:  m.width,
		FontSize:        m.cfg.FontSize,
		LineSpacing:     m.cfg.LineSpacing,
		Margin:          m.cfg.Margin,
		Padding:         m.cfg.Padding,
	}
}

// refreshLayout recomputes pages and rebuilds the rendered content for the
// current trigger. The engine leaves prior pages untouched while the
// terminal is not measurable yet (before the first resize message).
func (m *Model) refreshLayout(trigger layout.Trigger) {
	params := m.layoutParams()
	m.engine.SetParams(params)
	update := m.engine.Recompute(trigger, m.currentPage)
	if update.Computed {
		m.totalPages = m.engine.TotalPages()
		if update.ResetPage {
			m.currentPage = 1
		}
	}
	m.vp.Width = m.width
	m.vp.Height = params.AvailableHeight
	m.rebuildContent()
}

func (m *Model) rebuildContent() {
	params := m.engine.Params()
	segmented := m.showSpaces && m.segments != nil
	m.lines = buildDocumentLines(m.paragraphs, m.segments, params.LineWidth(), m.cfg.LineSpacing, segmented)
	m.vp.SetContent(m.renderLines(m.lines))
	m.rebuildPageLines()
}

func (m *Model) rebuildPageLines() {
	span, ok := m.engine.PageSpan(m.currentPage)
	if !ok || span.End < span.Start {
		m.pageLines = nil
		return
	}
	params := m.engine.Params()
	paragraphs := m.paragraphs[span.Start : span.End+1]
	var segments [][]model.Segment
	if m.segments != nil && span.End < len(m.segments) {
		segments = m.segments[span.Start : span.End+1]
	}
	segmented := m.showSpaces && segments != nil
	m.pageLines = buildDocumentLines(paragraphs, segments, params.LineWidth(), m.cfg.LineSpacing, segmented)
}

func (m *Model) renderLines(lines []renderLine) string {
	var b strings.Builder
	for i, line := range lines {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(styleLine(line, textStyle, chineseWordStyle))
	}
	return b.String()
}

// Commands.

func (m *Model) loadProgressCmd() tea.Cmd {
	return func() tea.Msg {
		state, err := m.ctrl.Load(context.Background())
		return progressLoadedMsg{state: state, err: err}
	}
}

func (m *Model) segmentCmd() tea.Cmd {
	gen := m.segGen
	paragraphs := m.paragraphs
	return func() tea.Msg {
		segments, err := m.segmenter.SegmentAll(context.Background(), paragraphs)
		return segmentsMsg{gen: gen, segments: segments, err: err}
	}
}

func (m *Model) lookupCmd(word string) tea.Cmd {
	return func() tea.Msg {
		info, err := m.dicts.Lookup(context.Background(), word)
		return wordInfoMsg{word: word, info: info, err: err}
	}
}

func (m *Model) speakCmd(popoverWord, text string) tea.Cmd {
	return func() tea.Msg {
		_, err := m.dicts.Speak(context.Background(), text)
		return audioDoneMsg{word: popoverWord, err: err}
	}
}

func (m *Model) saveWordCmd(info model.WordInfo) tea.Cmd {
	bookCtx := &model.BookContext{BookID: m.cfg.BookID}
	return func() tea.Msg {
		word := model.NewSavedWord(info, bookCtx, time.Now())
		err := m.store.PutSavedWord(context.Background(), word)
		return wordSavedMsg{err: err}
	}
}

// Progress writes run synchronously inside the update loop: each one is an
// idempotent full snapshot, so the last completed write wins.

func (m *Model) saveScrollProgress() tea.Cmd {
	if m.paginated {
		return nil
	}
	offset := m.vp.YOffset
	state, err := m.ctrl.Update(context.Background(), progress.Update{
		ScrollPosition: &offset,
		ContentHeight:  len(m.lines),
		ViewportHeight: m.vp.Height,
	})
	if err != nil {
		logErrf("failed to save reading progress: %v\n", err)
	}
	m.percent = state.ProgressPercentage
	return nil
}

func (m *Model) savePageProgress() tea.Cmd {
	zero := 0
	page := m.currentPage
	total := m.totalPages
	state, err := m.ctrl.Update(context.Background(), progress.Update{
		ScrollPosition: &zero,
		CurrentPage:    &page,
		TotalPages:     &total,
	})
	if err != nil {
		logErrf("failed to save reading progress: %v\n", err)
	}
	m.percent = state.ProgressPercentage
	return nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	if m.popover != nil {
		// The modal backdrop covers the whole screen, bars included.
		return m.renderPopoverOverlay()
	}
	sections := []string{m.renderBody()}
	if m.paginated {
		counter := pageCounterStyle.Render(fmt.Sprintf("%d / %d", m.currentPage, m.totalPages))
		sections = append(sections, lipgloss.Place(m.width, pageCounterHeight, lipgloss.Center, lipgloss.Center, counter))
	}
	if m.showBars {
		sections = append(sections, lipgloss.Place(m.width, footerHeight, lipgloss.Center, lipgloss.Center, m.renderFooter()))
	}
	return strings.Join(sections, "\n")
}

func (m *Model) renderBody() string {
	params := m.engine.Params()
	inset := lipgloss.NewStyle().
		Margin(m.cfg.Margin).
		Padding(0, m.cfg.Padding)

	if m.segmenting {
		notice := footerStyle.Render(m.spin.View() + " segmenting text...")
		return lipgloss.Place(m.width, params.AvailableHeight+2*m.cfg.Margin, lipgloss.Center, lipgloss.Center, notice)
	}

	var content string
	if m.paginated {
		lines := make([]string, 0, params.AvailableHeight)
		for i, line := range m.pageLines {
			if i >= params.AvailableHeight {
				break
			}
			lines = append(lines, styleLine(line, textStyle, chineseWordStyle))
		}
		content = strings.Join(lines, "\n")
	} else {
		content = m.vp.View()
	}
	return inset.Render(content)
}

// renderPopoverOverlay centers the panel on the screen and records its rect
// for outside-tap detection.
func (m *Model) renderPopoverOverlay() string {
	box := m.renderPopoverBox()
	p := m.popover
	p.width = lipgloss.Width(box)
	p.height = lipgloss.Height(box)
	p.left = (m.width - p.width) / 2
	if p.left < 0 {
		p.left = 0
	}
	p.top = (m.height - p.height) / 2
	if p.top < 0 {
		p.top = 0
	}

	pad := strings.Repeat(" ", p.left)
	lines := make([]string, 0, m.height)
	for i := 0; i < p.top; i++ {
		lines = append(lines, "")
	}
	for _, line := range strings.Split(box, "\n") {
		lines = append(lines, pad+line)
	}
	for len(lines) < m.height {
		lines = append(lines, "")
	}
	if len(lines) > m.height {
		lines = lines[:m.height]
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderPopoverBox() string {
	p := m.popover
	var b strings.Builder
	if p.loading {
		b.WriteString(popoverLabelStyle.Render("looking up " + p.word + "..."))
		return popoverStyle.Render(b.String())
	}
	if p.loadErr || p.info == nil {
		b.WriteString(errorStyle.Render("Failed to load word information"))
		return popoverStyle.Render(b.String())
	}
	info := p.info
	b.WriteString(textStyle.Bold(true).Render(info.Word))
	b.WriteString("\n\n")
	b.WriteString(popoverLabelStyle.Render("Pinyin") + "\n")
	b.WriteString(textStyle.Render(info.Pinyin))
	if info.Translation != "" {
		b.WriteString("\n\n")
		b.WriteString(popoverLabelStyle.Render("Translation") + "\n")
		b.WriteString(textStyle.Render(info.Translation))
	}
	if len(info.Segments) > 1 {
		b.WriteString("\n\n")
		b.WriteString(popoverLabelStyle.Render("Components") + "\n")
		b.WriteString(textStyle.Render(strings.Join(info.Segments, ", ")))
	}
	b.WriteString("\n\n")
	hints := []string{"a: audio", "s: save", "esc: close"}
	if p.audioErr {
		hints[0] = "audio failed"
	} else if p.audioBusy {
		hints[0] = "playing..."
	}
	if p.saved {
		hints[1] = "saved"
	}
	b.WriteString(footerStyle.Render(strings.Join(hints, "  ")))
	return popoverStyle.Render(b.String())
}

func (m *Model) renderFooter() string {
	segments := []string{m.clock().Format("15:04")}
	if m.paginated {
		segments = append(segments, fmt.Sprintf("Page %d of %d", m.currentPage, m.totalPages))
	} else {
		segments = append(segments, fmt.Sprintf("%d%% completed", int(m.percent+0.5)))
	}
	if m.cfg.Title != "" {
		segments = append(segments, m.cfg.Title)
	}
	return footerStyle.Render(strings.Join(segments, "  "))
}

// viewportSurface adapts the scroll viewport to the reconciler. The
// viewport clamps offsets to its current content height, which is exactly
// the not-fully-laid-out behavior restoration retries against.
type viewportSurface struct {
	vp *viewport.Model
}

func (s viewportSurface) SetOffset(offset int) {
	s.vp.SetYOffset(offset)
}

func (s viewportSurface) Offset() int {
	return s.vp.YOffset
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
