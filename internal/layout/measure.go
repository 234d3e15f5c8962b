// Package layout computes stable page partitions for paginated reading.
package layout

import (
	"github.com/mattn/go-runewidth"
)

// Measurer reports the rendered height of a paragraph, in rows, under the
// given layout parameters. It stands in for a detached measurement surface:
// measurement never touches the live content area.
type Measurer interface {
	ParagraphHeight(paragraph string, params Params) int
}

// TerminalMeasurer measures paragraphs the way the terminal renders them:
// greedy word wrap at the usable line width with runewidth cell widths, so
// CJK runes count two cells. The line-spacing factor multiplies the wrapped
// line count, and each paragraph carries one trailing spacing row.
type TerminalMeasurer struct{}

// ParagraphHeight implements Measurer.
func (TerminalMeasurer) ParagraphHeight(paragraph string, params Params) int {
	width := params.LineWidth()
	if width <= 0 {
		return 0
	}
	lines := len(WrapParagraph(paragraph, width))
	if lines == 0 {
		lines = 1
	}
	return lines*SpacingRows(params.LineSpacing) + paragraphGap
}

// SpacingRows converts the line-spacing factor to whole terminal rows per
// text line, never below one. The renderer uses the same conversion so
// measured heights match rendered heights.
func SpacingRows(spacing float64) int {
	rows := int(spacing + 0.5)
	if rows < 1 {
		return 1
	}
	return rows
}

// paragraphGap is the blank row rendered between paragraphs.
const paragraphGap = 1

// WrapParagraph wraps text at the given cell width, breaking at spaces when
// possible and mid-run otherwise. CJK text has no spaces and breaks at the
// width boundary, which matches how the reader renders it.
func WrapParagraph(text string, width int) []string {
	if width <= 0 {
		return []string{text}
	}
	var lines []string
	var line []rune
	lineWidth := 0
	lastSpaceIdx := -1

	runes := []rune(text)
	for i := 0; i < len(runes); {
		r := runes[i]
		w := runewidth.RuneWidth(r)
		if lineWidth+w > width && len(line) > 0 {
			if lastSpaceIdx >= 0 {
				lines = append(lines, string(line[:lastSpaceIdx]))
				line = append([]rune{}, line[lastSpaceIdx+1:]...)
				lineWidth = runesWidth(line)
				lastSpaceIdx = lastSpaceIndex(line)
			} else {
				lines = append(lines, string(line))
				line = line[:0]
				lineWidth = 0
				lastSpaceIdx = -1
			}
			continue
		}
		line = append(line, r)
		lineWidth += w
		if r == ' ' {
			lastSpaceIdx = len(line) - 1
		}
		i++
	}
	lines = append(lines, string(line))
	return lines
}

func runesWidth(runes []rune) int {
	total := 0
	for _, r := range runes {
		total += runewidth.RuneWidth(r)
	}
	return total
}

func lastSpaceIndex(runes []rune) int {
	for i := len(runes) - 1; i >= 0; i-- {
		if runes[i] == ' ' {
			return i
		}
	}
	return -1
}
