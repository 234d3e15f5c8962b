package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/dassodev/Dasso2008/internal/layout"
	"github.com/dassodev/Dasso2008/internal/model"
)

// lineSpan marks the cell range a word occupies on one rendered line.
// Columns are zero-based; end is exclusive.
type lineSpan struct {
	start   int
	end     int
	word    string
	chinese bool
}

// renderLine is one row of rendered content with its word hit spans.
type renderLine struct {
	text  string
	spans []lineSpan
}

// buildDocumentLines renders paragraphs into wrapped rows. Segments, when
// present for a paragraph, drive word spans for tap hit-testing and are
// separated by spaces (the show-spaces rendering). Blank rows implement
// line spacing and the paragraph gap, mirroring the measurer exactly.
func buildDocumentLines(paragraphs []string, segments [][]model.Segment, width int, spacing float64, segmented bool) []renderLine {
	spacingRows := layout.SpacingRows(spacing)
	var out []renderLine
	for i, paragraph := range paragraphs {
		var lines []renderLine
		if segmented && i < len(segments) && len(segments[i]) > 0 {
			lines = buildSegmentedLines(segments[i], width)
		} else {
			for _, text := range layout.WrapParagraph(paragraph, width) {
				lines = append(lines, renderLine{text: text})
			}
		}
		for _, line := range lines {
			out = append(out, line)
			for blank := 1; blank < spacingRows; blank++ {
				out = append(out, renderLine{})
			}
		}
		out = append(out, renderLine{})
	}
	return out
}

type segmentedCell struct {
	r       rune
	width   int
	segIdx  int // -1 for inserted separator spaces
	word    string
	chinese bool
}

// buildSegmentedLines wraps a paragraph's segments at the cell width,
// inserting a space between segments and recording per-line word spans.
func buildSegmentedLines(segments []model.Segment, width int) []renderLine {
	var cells []segmentedCell
	for idx, seg := range segments {
		if idx > 0 {
			cells = append(cells, segmentedCell{r: ' ', width: 1, segIdx: -1})
		}
		chinese := seg.Type == model.SegmentChinese
		for _, r := range seg.Word {
			cells = append(cells, segmentedCell{
				r:       r,
				width:   runewidth.RuneWidth(r),
				segIdx:  idx,
				word:    seg.Word,
				chinese: chinese,
			})
		}
	}

	var lines []renderLine
	var line []segmentedCell
	lineWidth := 0
	lastSpaceIdx := -1
	flush := func(upto int) {
		lines = append(lines, lineFromCells(line[:upto]))
	}
	for i := 0; i < len(cells); {
		c := cells[i]
		if width > 0 && lineWidth+c.width > width && len(line) > 0 {
			if lastSpaceIdx >= 0 {
				flush(lastSpaceIdx)
				line = append([]segmentedCell{}, line[lastSpaceIdx+1:]...)
				lineWidth = cellsWidth(line)
				lastSpaceIdx = lastSeparatorIndex(line)
			} else {
				flush(len(line))
				line = line[:0]
				lineWidth = 0
				lastSpaceIdx = -1
			}
			continue
		}
		line = append(line, c)
		lineWidth += c.width
		if c.segIdx == -1 {
			lastSpaceIdx = len(line) - 1
		}
		i++
	}
	lines = append(lines, lineFromCells(line))
	return lines
}

func cellsWidth(cells []segmentedCell) int {
	total := 0
	for _, c := range cells {
		total += c.width
	}
	return total
}

func lastSeparatorIndex(cells []segmentedCell) int {
	for i := len(cells) - 1; i >= 0; i-- {
		if cells[i].segIdx == -1 {
			return i
		}
	}
	return -1
}

// lineFromCells collapses a cell run into text plus contiguous word spans.
func lineFromCells(cells []segmentedCell) renderLine {
	var b strings.Builder
	var spans []lineSpan
	col := 0
	currentIdx := -2
	for _, c := range cells {
		b.WriteRune(c.r)
		if c.segIdx >= 0 {
			if c.segIdx == currentIdx && len(spans) > 0 {
				spans[len(spans)-1].end = col + c.width
			} else {
				spans = append(spans, lineSpan{
					start:   col,
					end:     col + c.width,
					word:    c.word,
					chinese: c.chinese,
				})
				currentIdx = c.segIdx
			}
		} else {
			currentIdx = -2
		}
		col += c.width
	}
	return renderLine{text: b.String(), spans: spans}
}

// hitTestWord resolves a tap at (row, col) to a Chinese word. Taps on
// non-Chinese spans and empty cells miss.
func hitTestWord(lines []renderLine, row, col int) (string, bool) {
	if row < 0 || row >= len(lines) {
		return "", false
	}
	for _, span := range lines[row].spans {
		if col >= span.start && col < span.end {
			if !span.chinese {
				return "", false
			}
			return span.word, true
		}
	}
	return "", false
}

// styleLine renders one line with Chinese words highlighted.
func styleLine(line renderLine, base, word lipgloss.Style) string {
	if len(line.spans) == 0 {
		return base.Render(line.text)
	}
	var b strings.Builder
	runes := []rune(line.text)
	col := 0
	i := 0
	for _, span := range line.spans {
		var plain, styled strings.Builder
		for i < len(runes) && col < span.start {
			plain.WriteRune(runes[i])
			col += runewidth.RuneWidth(runes[i])
			i++
		}
		if plain.Len() > 0 {
			b.WriteString(base.Render(plain.String()))
		}
		for i < len(runes) && col < span.end {
			styled.WriteRune(runes[i])
			col += runewidth.RuneWidth(runes[i])
			i++
		}
		if styled.Len() > 0 {
			if span.chinese {
				b.WriteString(word.Render(styled.String()))
			} else {
				b.WriteString(base.Render(styled.String()))
			}
		}
	}
	if i < len(runes) {
		b.WriteString(base.Render(string(runes[i:])))
	}
	return b.String()
}
