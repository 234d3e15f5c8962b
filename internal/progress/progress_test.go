package progress

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dassodev/Dasso2008/internal/model"
)

// fakeStore records every persisted snapshot.
type fakeStore struct {
	records map[string]model.ReadingProgress
	puts    []model.ReadingProgress
	getErr  error
	putErr  error
}

func newFakeStore() *fakeStore {
	return &fakeStore{records: map[string]model.ReadingProgress{}}
}

func (f *fakeStore) GetProgress(_ context.Context, bookID string) (*model.ReadingProgress, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	p, ok := f.records[bookID]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (f *fakeStore) PutProgress(_ context.Context, p model.ReadingProgress) error {
	if f.putErr != nil {
		return f.putErr
	}
	f.records[p.BookID] = p
	f.puts = append(f.puts, p)
	return nil
}

func intPtr(v int) *int { return &v }

func TestLoadDefaultsWhenMissing(t *testing.T) {
	c := NewController(newFakeStore(), "b1")
	state, err := c.Load(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if state.CurrentPage != 1 || state.TotalPages != 1 || state.ScrollPosition != 0 {
		t.Fatalf("unexpected default state: %+v", state)
	}
}

func TestLoadDegradesOnStoreFailure(t *testing.T) {
	st := newFakeStore()
	st.getErr = errors.New("store offline")
	c := NewController(st, "b1")
	state, err := c.Load(context.Background())
	if err == nil {
		t.Fatalf("expected error to be reported for logging")
	}
	// The reader still starts at the default state.
	if state.CurrentPage != 1 || state.TotalPages != 1 {
		t.Fatalf("expected default state on failure, got %+v", state)
	}
}

func TestLoadReturnsStoredState(t *testing.T) {
	st := newFakeStore()
	st.records["b1"] = model.ReadingProgress{
		BookID: "b1", ScrollPosition: 340, CurrentPage: 3, TotalPages: 10, ProgressPercentage: 30,
	}
	c := NewController(st, "b1")
	state, err := c.Load(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if state.ScrollPosition != 340 || state.CurrentPage != 3 || state.TotalPages != 10 {
		t.Fatalf("unexpected state: %+v", state)
	}
}

func TestUpdatePaginatedPercentage(t *testing.T) {
	st := newFakeStore()
	c := NewController(st, "b1")

	state, err := c.Update(context.Background(), Update{
		ScrollPosition: intPtr(0),
		CurrentPage:    intPtr(3),
		TotalPages:     intPtr(10),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if state.ProgressPercentage != 30 {
		t.Fatalf("expected 30%%, got %v", state.ProgressPercentage)
	}
	if len(st.puts) != 1 {
		t.Fatalf("expected one persisted snapshot, got %d", len(st.puts))
	}
	if st.puts[0].CurrentPage != 3 || st.puts[0].TotalPages != 10 {
		t.Fatalf("persisted snapshot incomplete: %+v", st.puts[0])
	}
}

func TestUpdateScrollPercentageClamped(t *testing.T) {
	c := NewController(newFakeStore(), "b1")

	state, err := c.Update(context.Background(), Update{
		ScrollPosition: intPtr(50),
		ContentHeight:  300,
		ViewportHeight: 100,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if state.ProgressPercentage != 25 {
		t.Fatalf("expected 25%%, got %v", state.ProgressPercentage)
	}

	// Offsets past the scrollable range clamp to 100.
	state, err = c.Update(context.Background(), Update{
		ScrollPosition: intPtr(500),
		ContentHeight:  300,
		ViewportHeight: 100,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if state.ProgressPercentage != 100 {
		t.Fatalf("expected clamp to 100%%, got %v", state.ProgressPercentage)
	}
}

func TestUpdateShortContentReadsFullyRead(t *testing.T) {
	c := NewController(newFakeStore(), "b1")
	state, err := c.Update(context.Background(), Update{
		ScrollPosition: intPtr(0),
		ContentHeight:  40,
		ViewportHeight: 100,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if state.ProgressPercentage != 100 {
		t.Fatalf("content shorter than viewport should read 100%%, got %v", state.ProgressPercentage)
	}
}

func TestUpdateMergesPartialState(t *testing.T) {
	st := newFakeStore()
	st.records["b1"] = model.ReadingProgress{BookID: "b1", CurrentPage: 2, TotalPages: 8}
	c := NewController(st, "b1")
	if _, err := c.Load(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// A scroll-only update keeps the page fields it did not mention.
	state, err := c.Update(context.Background(), Update{
		ScrollPosition: intPtr(70),
		ContentHeight:  200,
		ViewportHeight: 100,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if state.CurrentPage != 2 || state.TotalPages != 8 {
		t.Fatalf("partial update clobbered page fields: %+v", state)
	}
	if state.ScrollPosition != 70 {
		t.Fatalf("scroll position not merged: %+v", state)
	}
}

func TestUpdateLastWriteWins(t *testing.T) {
	st := newFakeStore()
	c := NewController(st, "b1")
	ctx := context.Background()

	if _, err := c.Update(ctx, Update{ScrollPosition: intPtr(800), ContentHeight: 2000, ViewportHeight: 100}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := c.Update(ctx, Update{ScrollPosition: intPtr(900), ContentHeight: 2000, ViewportHeight: 100}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := st.records["b1"].ScrollPosition; got != 900 {
		t.Fatalf("expected last completed write to determine stored state, got %d", got)
	}
	if len(st.puts) != 2 {
		t.Fatalf("every update persists a full snapshot, got %d writes", len(st.puts))
	}
}

func TestUpdateRefreshesLastRead(t *testing.T) {
	st := newFakeStore()
	c := NewController(st, "b1")
	fixed := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return fixed }

	if _, err := c.Update(context.Background(), Update{CurrentPage: intPtr(2), TotalPages: intPtr(4)}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !st.puts[0].LastRead.Equal(fixed) {
		t.Fatalf("expected last_read refreshed to now, got %v", st.puts[0].LastRead)
	}
}
