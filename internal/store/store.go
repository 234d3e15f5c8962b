// Package store handles SQLite persistence.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dassodev/Dasso2008/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// CacheName identifies one of the word caches.
type CacheName string

const (
	DictionaryCache CacheName = "dictionary_cache"
	AudioCache      CacheName = "audio_cache"
)

// DefaultCacheMaxAge is how long cache entries live before the cleanup pass
// removes them. Expiry is advisory only; a miss just re-fetches.
const DefaultCacheMaxAge = 7 * 24 * time.Hour

// Store wraps SQLite access for reading progress, saved words, and the
// dictionary/audio caches.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Migrations are additive only: new optional columns are defaulted on read,
// never backfilled by a blocking migration pass. The slice index maps to the
// schema version stored in PRAGMA user_version.
var migrations = [][]string{
	{
		`CREATE TABLE IF NOT EXISTS reading_progress (
			book_id TEXT PRIMARY KEY,
			scroll_position INTEGER NOT NULL DEFAULT 0,
			progress_percentage REAL NOT NULL DEFAULT 0,
			last_read TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS saved_words (
			id TEXT PRIMARY KEY,
			word TEXT NOT NULL,
			pinyin TEXT NOT NULL,
			translation TEXT,
			date_added TEXT NOT NULL,
			last_reviewed TEXT,
			book_id TEXT,
			sentence TEXT
		);`,
		`CREATE INDEX IF NOT EXISTS idx_saved_words_word ON saved_words(word);`,
		`CREATE TABLE IF NOT EXISTS dictionary_cache (
			word TEXT PRIMARY KEY,
			data TEXT NOT NULL,
			date_added TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS audio_cache (
			word TEXT PRIMARY KEY,
			audio BLOB NOT NULL,
			date_added TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_reading_progress_last_read ON reading_progress(last_read);`,
	},
	{
		// Pagination support: records written before this version carry
		// NULLs here and read back as page 1 of 1.
		`ALTER TABLE reading_progress ADD COLUMN current_page INTEGER;`,
		`ALTER TABLE reading_progress ADD COLUMN total_pages INTEGER;`,
	},
}

func (s *Store) migrate() error {
	var version int
	if err := s.db.QueryRow(`PRAGMA user_version`).Scan(&version); err != nil {
		return err
	}
	for v := version; v < len(migrations); v++ {
		for _, stmt := range migrations[v] {
			if _, err := s.db.Exec(stmt); err != nil {
				return err
			}
		}
		if _, err := s.db.Exec(fmt.Sprintf(`PRAGMA user_version = %d`, v+1)); err != nil {
			return err
		}
	}
	return nil
}

// PutProgress overwrites the progress record for a book. last_read is always
// refreshed to the record's timestamp; pagination fields below 1 are stored
// as 1 so no out-of-range page is ever read back.
func (s *Store) PutProgress(ctx context.Context, p model.ReadingProgress) error {
	currentPage := p.CurrentPage
	if currentPage < 1 {
		currentPage = 1
	}
	totalPages := p.TotalPages
	if totalPages < 1 {
		totalPages = 1
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO reading_progress (book_id, scroll_position, progress_percentage, last_read, current_page, total_pages)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(book_id) DO UPDATE SET
			scroll_position = excluded.scroll_position,
			progress_percentage = excluded.progress_percentage,
			last_read = excluded.last_read,
			current_page = excluded.current_page,
			total_pages = excluded.total_pages`,
		p.BookID,
		p.ScrollPosition,
		p.ProgressPercentage,
		p.LastRead.Format(time.RFC3339Nano),
		currentPage,
		totalPages,
	)
	return err
}

// GetProgress loads the progress record for a book. Legacy records missing
// pagination fields default to page 1 of 1. A missing record returns nil.
func (s *Store) GetProgress(ctx context.Context, bookID string) (*model.ReadingProgress, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT book_id, scroll_position, progress_percentage, last_read, current_page, total_pages
		 FROM reading_progress WHERE book_id = ?`, bookID)

	var p model.ReadingProgress
	var lastRead string
	var currentPage, totalPages sql.NullInt64
	err := row.Scan(&p.BookID, &p.ScrollPosition, &p.ProgressPercentage, &lastRead, &currentPage, &totalPages)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	parsed, err := time.Parse(time.RFC3339Nano, lastRead)
	if err != nil {
		return nil, err
	}
	p.LastRead = parsed
	p.CurrentPage = 1
	if currentPage.Valid && currentPage.Int64 >= 1 {
		p.CurrentPage = int(currentPage.Int64)
	}
	p.TotalPages = 1
	if totalPages.Valid && totalPages.Int64 >= 1 {
		p.TotalPages = int(totalPages.Int64)
	}
	return &p, nil
}

// ListProgress returns all progress records, most recently read first.
func (s *Store) ListProgress(ctx context.Context) ([]model.ReadingProgress, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT book_id, scroll_position, progress_percentage, last_read, current_page, total_pages
		 FROM reading_progress ORDER BY last_read DESC`)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var result []model.ReadingProgress
	for rows.Next() {
		var p model.ReadingProgress
		var lastRead string
		var currentPage, totalPages sql.NullInt64
		if err := rows.Scan(&p.BookID, &p.ScrollPosition, &p.ProgressPercentage, &lastRead, &currentPage, &totalPages); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(time.RFC3339Nano, lastRead)
		if err != nil {
			return nil, err
		}
		p.LastRead = parsed
		p.CurrentPage = 1
		if currentPage.Valid && currentPage.Int64 >= 1 {
			p.CurrentPage = int(currentPage.Int64)
		}
		p.TotalPages = 1
		if totalPages.Valid && totalPages.Int64 >= 1 {
			p.TotalPages = int(totalPages.Int64)
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// PutSavedWord stores a vocabulary entry. Ids are unique; words are not.
func (s *Store) PutSavedWord(ctx context.Context, w model.SavedWord) error {
	var lastReviewed any
	if w.LastReviewed != nil {
		lastReviewed = w.LastReviewed.Format(time.RFC3339Nano)
	}
	var bookID, sentence any
	if w.Context != nil {
		bookID = w.Context.BookID
		sentence = w.Context.Sentence
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO saved_words (id, word, pinyin, translation, date_added, last_reviewed, book_id, sentence)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		w.ID, w.Word, w.Pinyin, w.Translation,
		w.DateAdded.Format(time.RFC3339Nano),
		lastReviewed, bookID, sentence,
	)
	return err
}

// ListSavedWords returns saved words, newest first.
func (s *Store) ListSavedWords(ctx context.Context) ([]model.SavedWord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, word, pinyin, translation, date_added, last_reviewed, book_id, sentence
		 FROM saved_words ORDER BY date_added DESC`)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var result []model.SavedWord
	for rows.Next() {
		var w model.SavedWord
		var translation, lastReviewed, bookID, sentence sql.NullString
		var dateAdded string
		if err := rows.Scan(&w.ID, &w.Word, &w.Pinyin, &translation, &dateAdded, &lastReviewed, &bookID, &sentence); err != nil {
			return nil, err
		}
		w.Translation = translation.String
		parsed, err := time.Parse(time.RFC3339Nano, dateAdded)
		if err != nil {
			return nil, err
		}
		w.DateAdded = parsed
		if lastReviewed.Valid {
			reviewed, err := time.Parse(time.RFC3339Nano, lastReviewed.String)
			if err != nil {
				return nil, err
			}
			w.LastReviewed = &reviewed
		}
		if bookID.Valid || sentence.Valid {
			w.Context = &model.BookContext{BookID: bookID.String, Sentence: sentence.String}
		}
		result = append(result, w)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// TouchWordReviewed stamps a saved word as reviewed now.
func (s *Store) TouchWordReviewed(ctx context.Context, id string, now time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE saved_words SET last_reviewed = ? WHERE id = ?`,
		now.Format(time.RFC3339Nano), id)
	return err
}

// PutCacheEntry writes through to a cache store, overwriting any entry for
// the word.
func (s *Store) PutCacheEntry(ctx context.Context, cache CacheName, word string, data []byte, now time.Time) error {
	column := "data"
	if cache == AudioCache {
		column = "audio"
	}
	query := fmt.Sprintf(
		`INSERT OR REPLACE INTO %s (word, %s, date_added) VALUES (?, ?, ?)`,
		cache, column)
	_, err := s.db.ExecContext(ctx, query, word, data, now.Format(time.RFC3339Nano))
	return err
}

// GetCacheEntry looks a word up in a cache store. A miss returns ok=false
// with no error.
func (s *Store) GetCacheEntry(ctx context.Context, cache CacheName, word string) ([]byte, bool, error) {
	column := "data"
	if cache == AudioCache {
		column = "audio"
	}
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE word = ?`, column, cache)
	var data []byte
	err := s.db.QueryRowContext(ctx, query, word).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

// WordCache adapts the dictionary and audio cache stores to the lookup
// client's cache interface.
type WordCache struct {
	store *Store
}

// WordCache returns the cache view over this store.
func (s *Store) WordCache() *WordCache {
	return &WordCache{store: s}
}

func (w *WordCache) GetEntry(ctx context.Context, word string) ([]byte, bool, error) {
	return w.store.GetCacheEntry(ctx, DictionaryCache, word)
}

func (w *WordCache) PutEntry(ctx context.Context, word string, data []byte) error {
	return w.store.PutCacheEntry(ctx, DictionaryCache, word, data, time.Now())
}

func (w *WordCache) GetAudio(ctx context.Context, word string) ([]byte, bool, error) {
	return w.store.GetCacheEntry(ctx, AudioCache, word)
}

func (w *WordCache) PutAudio(ctx context.Context, word string, audio []byte) error {
	return w.store.PutCacheEntry(ctx, AudioCache, word, audio, time.Now())
}

// CleanupCache deletes cache entries older than maxAge. Eviction is purely
// a space reclaim; correctness never depends on it.
func (s *Store) CleanupCache(ctx context.Context, cache CacheName, maxAge time.Duration) (int64, error) {
	cutoff := time.Now().Add(-maxAge).Format(time.RFC3339Nano)
	res, err := s.db.ExecContext(ctx,
		fmt.Sprintf(`DELETE FROM %s WHERE date_added < ?`, cache), cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
