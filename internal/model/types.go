// Package model defines shared data structures.
package model

import (
	"fmt"
	"time"
)

// SegmentType tags a segment as an interactive Chinese word or an inert
// other-script run.
type SegmentType string

const (
	SegmentChinese SegmentType = "CHINESE_WORD"
	SegmentEnglish SegmentType = "ENGLISH"
)

// Segment is a tagged sub-span of a paragraph. Offsets are rune indexes;
// concatenating a paragraph's segments in order reproduces the paragraph.
type Segment struct {
	Word   string      `json:"word"`
	Offset int         `json:"offset"`
	End    int         `json:"end"`
	Type   SegmentType `json:"type"`
}

// Page is an inclusive, zero-based paragraph-index range that fits the
// available rendering area.
type Page struct {
	Start int
	End   int
}

// ReadingProgress is the durable per-book record. One row per book,
// overwritten on every update.
type ReadingProgress struct {
	BookID             string
	ScrollPosition     int
	CurrentPage        int
	TotalPages         int
	ProgressPercentage float64
	LastRead           time.Time
}

// ReadingState is the in-memory position of the open book.
type ReadingState struct {
	ScrollPosition     int
	CurrentPage        int
	TotalPages         int
	ProgressPercentage float64
}

// DefaultReadingState is the state of a book with no stored progress.
func DefaultReadingState() ReadingState {
	return ReadingState{CurrentPage: 1, TotalPages: 1}
}

// WordInfo is a dictionary lookup result.
type WordInfo struct {
	Word        string   `json:"word"`
	Pinyin      string   `json:"pinyin"`
	Translation string   `json:"translation,omitempty"`
	Segments    []string `json:"segments"`
}

// BookContext records where a word was encountered.
type BookContext struct {
	BookID   string
	Sentence string
}

// SavedWord is a vocabulary entry created by explicit user action. Words may
// be saved multiple times with distinct ids.
type SavedWord struct {
	ID           string
	Word         string
	Pinyin       string
	Translation  string
	DateAdded    time.Time
	LastReviewed *time.Time
	Context      *BookContext
}

// NewSavedWord builds a SavedWord with the word+timestamp id scheme.
func NewSavedWord(info WordInfo, ctx *BookContext, now time.Time) SavedWord {
	return SavedWord{
		ID:          fmt.Sprintf("%s-%d", info.Word, now.UnixMilli()),
		Word:        info.Word,
		Pinyin:      info.Pinyin,
		Translation: info.Translation,
		DateAdded:   now,
		Context:     ctx,
	}
}
