package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/dassodev/Dasso2008/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "dasso.db"))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() {
		if cerr := s.Close(); cerr != nil {
			t.Errorf("failed to close store: %v", cerr)
		}
	})
	return s
}

func TestProgressRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	saved := model.ReadingProgress{
		BookID:             "b1",
		ScrollPosition:     120,
		CurrentPage:        3,
		TotalPages:         10,
		ProgressPercentage: 30,
		LastRead:           time.Now(),
	}
	if err := s.PutProgress(ctx, saved); err != nil {
		t.Fatalf("failed to save progress: %v", err)
	}

	got, err := s.GetProgress(ctx, "b1")
	if err != nil {
		t.Fatalf("failed to load progress: %v", err)
	}
	if got == nil {
		t.Fatalf("expected a progress record")
	}
	if got.CurrentPage != 3 || got.TotalPages != 10 {
		t.Fatalf("unexpected pagination fields: page %d of %d", got.CurrentPage, got.TotalPages)
	}
	if got.ScrollPosition != 120 || got.ProgressPercentage != 30 {
		t.Fatalf("unexpected record: %+v", got)
	}
}

func TestProgressOverwritesPerBook(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	first := model.ReadingProgress{BookID: "b1", ScrollPosition: 100, LastRead: time.Now()}
	second := model.ReadingProgress{BookID: "b1", ScrollPosition: 800, LastRead: time.Now()}
	if err := s.PutProgress(ctx, first); err != nil {
		t.Fatalf("failed to save: %v", err)
	}
	if err := s.PutProgress(ctx, second); err != nil {
		t.Fatalf("failed to save: %v", err)
	}

	got, err := s.GetProgress(ctx, "b1")
	if err != nil {
		t.Fatalf("failed to load: %v", err)
	}
	if got.ScrollPosition != 800 {
		t.Fatalf("expected last write to win, got scroll %d", got.ScrollPosition)
	}
	all, err := s.ListProgress(ctx)
	if err != nil {
		t.Fatalf("failed to list: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("expected one record per book, got %d", len(all))
	}
}

func TestLegacyProgressDefaultsPaginationFields(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	// Simulate a record written before pagination support existed.
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO reading_progress (book_id, scroll_position, progress_percentage, last_read, current_page, total_pages)
		 VALUES (?, ?, ?, ?, NULL, NULL)`,
		"legacy", 42, 12.5, time.Now().Format(time.RFC3339Nano))
	if err != nil {
		t.Fatalf("failed to insert legacy record: %v", err)
	}

	got, err := s.GetProgress(ctx, "legacy")
	if err != nil {
		t.Fatalf("failed to load legacy record: %v", err)
	}
	if got.CurrentPage != 1 || got.TotalPages != 1 {
		t.Fatalf("expected defaulted pagination fields, got page %d of %d", got.CurrentPage, got.TotalPages)
	}
	if got.ScrollPosition != 42 {
		t.Fatalf("unexpected scroll position: %d", got.ScrollPosition)
	}
}

func TestGetProgressMissingBook(t *testing.T) {
	s := openTestStore(t)
	got, err := s.GetProgress(context.Background(), "unknown")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil for missing record, got %+v", got)
	}
}

func TestSavedWordsAllowDuplicateWords(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	info := model.WordInfo{Word: "你好", Pinyin: "nǐ hǎo", Translation: "hello"}
	first := model.NewSavedWord(info, &model.BookContext{BookID: "b1", Sentence: "你好世界"}, base)
	second := model.NewSavedWord(info, nil, base.Add(time.Second))

	if err := s.PutSavedWord(ctx, first); err != nil {
		t.Fatalf("failed to save word: %v", err)
	}
	if err := s.PutSavedWord(ctx, second); err != nil {
		t.Fatalf("failed to save word: %v", err)
	}

	words, err := s.ListSavedWords(ctx)
	if err != nil {
		t.Fatalf("failed to list words: %v", err)
	}
	if len(words) != 2 {
		t.Fatalf("expected 2 saved words, got %d", len(words))
	}
	if words[0].ID == words[1].ID {
		t.Fatalf("expected distinct ids for duplicate words")
	}
	// Newest first.
	if !words[0].DateAdded.After(words[1].DateAdded) {
		t.Fatalf("expected newest-first ordering")
	}
	if words[1].Context == nil || words[1].Context.BookID != "b1" {
		t.Fatalf("expected book context on first saved word: %+v", words[1].Context)
	}
}

func TestTouchWordReviewed(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	word := model.NewSavedWord(model.WordInfo{Word: "汉", Pinyin: "hàn"}, nil, time.Now())
	if err := s.PutSavedWord(ctx, word); err != nil {
		t.Fatalf("failed to save word: %v", err)
	}
	reviewedAt := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	if err := s.TouchWordReviewed(ctx, word.ID, reviewedAt); err != nil {
		t.Fatalf("failed to touch word: %v", err)
	}

	words, err := s.ListSavedWords(ctx)
	if err != nil {
		t.Fatalf("failed to list words: %v", err)
	}
	if len(words) != 1 || words[0].LastReviewed == nil {
		t.Fatalf("expected reviewed timestamp, got %+v", words)
	}
	if !words[0].LastReviewed.Equal(reviewedAt) {
		t.Fatalf("unexpected reviewed time: %v", words[0].LastReviewed)
	}
}

func TestCacheRoundTripAndCleanup(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if _, ok, err := s.GetCacheEntry(ctx, DictionaryCache, "你好"); err != nil || ok {
		t.Fatalf("expected clean miss, got ok=%v err=%v", ok, err)
	}

	old := time.Now().Add(-30 * 24 * time.Hour)
	if err := s.PutCacheEntry(ctx, DictionaryCache, "你好", []byte(`{"word":"你好"}`), old); err != nil {
		t.Fatalf("failed to cache entry: %v", err)
	}
	if err := s.PutCacheEntry(ctx, AudioCache, "你好", []byte{0x01, 0x02}, time.Now()); err != nil {
		t.Fatalf("failed to cache audio: %v", err)
	}

	data, ok, err := s.GetCacheEntry(ctx, DictionaryCache, "你好")
	if err != nil || !ok {
		t.Fatalf("expected cache hit, got ok=%v err=%v", ok, err)
	}
	if string(data) != `{"word":"你好"}` {
		t.Fatalf("unexpected cached data: %s", data)
	}

	removed, err := s.CleanupCache(ctx, DictionaryCache, DefaultCacheMaxAge)
	if err != nil {
		t.Fatalf("cleanup failed: %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected 1 expired entry removed, got %d", removed)
	}
	// Expiry never breaks correctness: the audio entry is fresh and stays.
	if _, ok, err := s.GetCacheEntry(ctx, AudioCache, "你好"); err != nil || !ok {
		t.Fatalf("expected fresh audio entry to survive, ok=%v err=%v", ok, err)
	}
}

func TestMigrateIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dasso.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	if cerr := s.Close(); cerr != nil {
		t.Fatalf("failed to close store: %v", cerr)
	}
	// Re-opening must not re-run ALTER statements on a migrated schema.
	s, err = Open(path)
	if err != nil {
		t.Fatalf("failed to reopen store: %v", err)
	}
	if cerr := s.Close(); cerr != nil {
		t.Fatalf("failed to close store: %v", cerr)
	}
}
