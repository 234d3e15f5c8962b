package layout

import (
	"strings"
	"testing"
)

func TestWrapParagraphBreaksAtSpaces(t *testing.T) {
	lines := WrapParagraph("one two three", 8)
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %q", len(lines), lines)
	}
	if lines[0] != "one two" || lines[1] != "three" {
		t.Fatalf("unexpected wrap: %q", lines)
	}
}

func TestWrapParagraphBreaksCJKMidRun(t *testing.T) {
	// Four Han runes occupy eight cells; at width six the line breaks after
	// the third rune.
	lines := WrapParagraph("汉字排版", 6)
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %q", len(lines), lines)
	}
	if lines[0] != "汉字排" || lines[1] != "版" {
		t.Fatalf("unexpected wrap: %q", lines)
	}
}

func TestWrapParagraphRoundTripsText(t *testing.T) {
	text := "The 汉语 reader wraps mixed text without losing runes"
	lines := WrapParagraph(text, 10)
	joined := strings.Join(lines, " ")
	// Wrapping only replaces break-point spaces with line breaks.
	if joined != text {
		t.Fatalf("wrap lost text: %q vs %q", joined, text)
	}
}

func TestWrapParagraphNonPositiveWidth(t *testing.T) {
	lines := WrapParagraph("anything", 0)
	if len(lines) != 1 || lines[0] != "anything" {
		t.Fatalf("unexpected wrap for zero width: %q", lines)
	}
}

func TestParagraphHeightCountsWrappedLines(t *testing.T) {
	params := Params{
		AvailableHeight: 20,
		AvailableWidth:  13,
		LineSpacing:     1,
		Margin:          1,
		Padding:         1,
	}
	// Usable width is 13 - 2 - 2 = 9: "one two three" wraps to two lines,
	// plus the paragraph gap.
	m := TerminalMeasurer{}
	if got := m.ParagraphHeight("one two three", params); got != 3 {
		t.Fatalf("expected height 3, got %d", got)
	}
}

func TestParagraphHeightAppliesLineSpacing(t *testing.T) {
	params := Params{
		AvailableHeight: 20,
		AvailableWidth:  24,
		LineSpacing:     2,
	}
	m := TerminalMeasurer{}
	oneLine := m.ParagraphHeight("short", params)
	if oneLine != 3 {
		t.Fatalf("expected height 3 with double spacing, got %d", oneLine)
	}
}

func TestParagraphHeightUnmeasurableWidth(t *testing.T) {
	m := TerminalMeasurer{}
	if got := m.ParagraphHeight("text", Params{AvailableWidth: 2, Margin: 2}); got != 0 {
		t.Fatalf("expected zero height for unusable width, got %d", got)
	}
}
