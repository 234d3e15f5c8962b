// Package progress owns the in-memory reading state for the open book.
package progress

import (
	"context"
	"time"

	"github.com/dassodev/Dasso2008/internal/model"
)

// Store is the durable progress backend. The store is the sole source of
// truth on load; writes are whole-record snapshots.
type Store interface {
	GetProgress(ctx context.Context, bookID string) (*model.ReadingProgress, error)
	PutProgress(ctx context.Context, p model.ReadingProgress) error
}

// Update is a partial reading-state change. Nil fields keep their current
// values. ContentHeight and ViewportHeight describe the scroll surface at
// the time of the update and feed the scroll-mode percentage.
type Update struct {
	ScrollPosition *int
	CurrentPage    *int
	TotalPages     *int
	ContentHeight  int
	ViewportHeight int
}

// Controller merges partial updates into the current state, recomputes the
// normalized percentage, and persists full snapshots. Writes are
// last-write-wins; updates are idempotent snapshots, not deltas.
type Controller struct {
	store  Store
	bookID string
	state  model.ReadingState
	now    func() time.Time
}

// NewController builds a controller for one book.
func NewController(store Store, bookID string) *Controller {
	return &Controller{
		store:  store,
		bookID: bookID,
		state:  model.DefaultReadingState(),
		now:    time.Now,
	}
}

// Load fetches the stored state, one-shot on book open. A missing record or
// a transient store failure degrades to the default state.
func (c *Controller) Load(ctx context.Context) (model.ReadingState, error) {
	c.state = model.DefaultReadingState()
	stored, err := c.store.GetProgress(ctx, c.bookID)
	if err != nil {
		return c.state, err
	}
	if stored != nil {
		c.state = model.ReadingState{
			ScrollPosition:     stored.ScrollPosition,
			CurrentPage:        stored.CurrentPage,
			TotalPages:         stored.TotalPages,
			ProgressPercentage: stored.ProgressPercentage,
		}
	}
	return c.state, nil
}

// State returns the current in-memory reading state.
func (c *Controller) State() model.ReadingState {
	return c.state
}

// Update merges the partial update, recomputes the percentage, and persists
// the full merged record. Updates carrying TotalPages use page-based
// percentage; all others use the scroll-based one.
func (c *Controller) Update(ctx context.Context, u Update) (model.ReadingState, error) {
	if u.ScrollPosition != nil {
		c.state.ScrollPosition = *u.ScrollPosition
	}
	if u.CurrentPage != nil {
		c.state.CurrentPage = *u.CurrentPage
	}
	if u.TotalPages != nil {
		c.state.TotalPages = *u.TotalPages
	}

	if u.TotalPages != nil {
		c.state.ProgressPercentage = pagePercentage(c.state.CurrentPage, c.state.TotalPages)
	} else {
		c.state.ProgressPercentage = scrollPercentage(c.state.ScrollPosition, u.ContentHeight, u.ViewportHeight)
	}

	record := model.ReadingProgress{
		BookID:             c.bookID,
		ScrollPosition:     c.state.ScrollPosition,
		CurrentPage:        c.state.CurrentPage,
		TotalPages:         c.state.TotalPages,
		ProgressPercentage: c.state.ProgressPercentage,
		LastRead:           c.now(),
	}
	if err := c.store.PutProgress(ctx, record); err != nil {
		return c.state, err
	}
	return c.state, nil
}

func pagePercentage(currentPage, totalPages int) float64 {
	if totalPages < 1 {
		return 0
	}
	return clampPercentage(float64(currentPage) / float64(totalPages) * 100)
}

// scrollPercentage normalizes the scroll offset against the scrollable
// range. Content that fits inside the viewport is fully visible and reads
// as 100%.
func scrollPercentage(offset, contentHeight, viewportHeight int) float64 {
	maxScroll := contentHeight - viewportHeight
	if maxScroll <= 0 {
		return 100
	}
	return clampPercentage(float64(offset) / float64(maxScroll) * 100)
}

func clampPercentage(pct float64) float64 {
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}
