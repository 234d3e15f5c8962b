// Package wordsui provides the Bubble Tea saved-words review interface.
package wordsui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dassodev/Dasso2008/internal/model"
	"github.com/dassodev/Dasso2008/internal/store"
)

var (
	headerStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	tableMutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#B8B8B8"))
	titleStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	labelStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	modalStyle      = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A")).
			Padding(1, 2)
)

// Model implements the Bubble Tea saved-words review UI.
type Model struct {
	store *store.Store

	words  []model.SavedWord
	errMsg string

	wordTable table.Model
	detail    *model.SavedWord

	width  int
	height int

	now func() time.Time
}

// NewModel constructs a review model and loads the saved words.
func NewModel(st *store.Store) *Model {
	m := &Model{
		store: st,
		now:   time.Now,
	}
	m.wordTable = buildWordTable(nil, 0, 1)
	m.refreshWords()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.String() == "q" {
			if m.detail != nil {
				m.detail = nil
				return m, nil
			}
			return m, tea.Quit
		}
		if m.detail != nil {
			if msg.Type == tea.KeyEsc || msg.Type == tea.KeyEnter {
				m.detail = nil
			}
			return m, nil
		}
		switch msg.String() {
		case "enter":
			if word := m.selectedWord(); word != nil {
				m.detail = word
			}
			return m, nil
		case "r":
			m.markReviewed()
			return m, nil
		case "g", "home":
			m.wordTable.GotoTop()
			return m, nil
		case "G", "end":
			m.wordTable.GotoBottom()
			return m, nil
		default:
			var cmd tea.Cmd
			m.wordTable, cmd = m.wordTable.Update(msg)
			return m, cmd
		}
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	if m.detail != nil {
		return fitLines(m.renderDetailModal(), m.width, m.height)
	}
	headerHeight, bodyHeight, footerHeight := m.layoutHeights()
	header := fitLines(m.renderHeader(), m.width, headerHeight)
	body := fitLines(m.renderBody(), m.width, bodyHeight)
	footer := fitLines(m.renderFooter(), m.width, footerHeight)
	return strings.Join([]string{header, body, footer}, "\n")
}

func (m *Model) layoutHeights() (headerHeight, bodyHeight, footerHeight int) {
	headerHeight = 1
	footerHeight = 1
	if m.errMsg != "" {
		footerHeight++
	}
	bodyHeight = m.height - headerHeight - footerHeight
	if bodyHeight < 1 {
		bodyHeight = 1
	}
	return headerHeight, bodyHeight, footerHeight
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	_, bodyHeight, _ := m.layoutHeights()
	m.wordTable.SetWidth(m.width)
	m.wordTable.SetHeight(maxInt(1, bodyHeight-1))
}

func (m *Model) refreshWords() {
	words, err := m.store.ListSavedWords(context.Background())
	if err != nil {
		m.errMsg = err.Error()
		return
	}
	m.errMsg = ""
	m.words = words
	cursor := m.wordTable.Cursor()
	m.wordTable.SetRows(buildWordRows(words))
	if cursor < len(words) {
		m.wordTable.SetCursor(cursor)
	}
	m.wordTable.Focus()
}

func (m *Model) selectedWord() *model.SavedWord {
	idx := m.wordTable.Cursor()
	if idx < 0 || idx >= len(m.words) {
		return nil
	}
	word := m.words[idx]
	return &word
}

func (m *Model) markReviewed() {
	word := m.selectedWord()
	if word == nil {
		return
	}
	if err := m.store.TouchWordReviewed(context.Background(), word.ID, m.now()); err != nil {
		m.errMsg = err.Error()
		return
	}
	m.refreshWords()
}

func (m *Model) renderHeader() string {
	return headerStyle.Render(fmt.Sprintf("Saved words: %d", len(m.words)))
}

func (m *Model) renderBody() string {
	if len(m.words) == 0 {
		return "No saved words yet. Tap a word while reading to save it."
	}
	return tableMutedStyle.Render(m.wordTable.View())
}

func (m *Model) renderFooter() string {
	help := headerStyle.Render("Detail: enter  Reviewed: r  Nav: up/down/g/G  Quit: q")
	if m.errMsg != "" {
		return help + "\n" + errorStyle.Render(m.errMsg)
	}
	return help
}

func (m *Model) renderDetailModal() string {
	w := m.detail
	lines := []string{
		titleStyle.Render(w.Word),
		"",
		labelStyle.Render("Pinyin") + "  " + w.Pinyin,
	}
	if w.Translation != "" {
		lines = append(lines, labelStyle.Render("Translation") + "  " + w.Translation)
	}
	if w.Context != nil && w.Context.BookID != "" {
		lines = append(lines, "", labelStyle.Render("From")+"  "+w.Context.BookID)
	}
	lines = append(lines, "", labelStyle.Render("Added")+"  "+w.DateAdded.Format("2006-01-02 15:04"))
	if w.LastReviewed != nil {
		lines = append(lines, labelStyle.Render("Reviewed")+"  "+w.LastReviewed.Format("2006-01-02 15:04"))
	}
	lines = append(lines, "", headerStyle.Render("esc to close"))
	box := modalStyle.Width(modalWidth(m.width)).Render(strings.Join(lines, "\n"))
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

func buildWordTable(words []model.SavedWord, width, height int) table.Model {
	t := table.New(
		table.WithColumns(wordColumns()),
		table.WithRows(buildWordRows(words)),
		table.WithHeight(maxInt(1, height-1)),
	)
	t.SetWidth(width)
	t.SetStyles(wordTableStyles())
	return t
}

func wordColumns() []table.Column {
	return []table.Column{
		{Title: "Word", Width: 10},
		{Title: "Pinyin", Width: 16},
		{Title: "Translation", Width: 30},
		{Title: "Added", Width: 16},
		{Title: "Reviewed", Width: 16},
	}
}

func buildWordRows(words []model.SavedWord) []table.Row {
	rows := make([]table.Row, 0, len(words))
	for _, w := range words {
		reviewed := "-"
		if w.LastReviewed != nil {
			reviewed = w.LastReviewed.Format("2006-01-02 15:04")
		}
		rows = append(rows, table.Row{
			w.Word,
			w.Pinyin,
			w.Translation,
			w.DateAdded.Format("2006-01-02 15:04"),
			reviewed,
		})
	}
	return rows
}

func wordTableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		Padding(0, 1).
		PaddingLeft(0)
	styles.Cell = styles.Cell.
		Padding(0, 1).
		PaddingLeft(0)
	styles.Selected = styles.Cell.
		Foreground(lipgloss.Color("#F0F0F0")).
		Bold(true)
	return styles
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func modalWidth(width int) int {
	return maxInt(40, minInt(width-4, 80))
}

func padLine(line string, width int) string {
	lineWidth := lipgloss.Width(line)
	if lineWidth < width {
		return line + strings.Repeat(" ", width-lineWidth)
	}
	return line
}

func fitLines(s string, width, height int) string {
	if width <= 0 || height <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}
	return strings.Join(lines, "\n")
}
