// Package reconcile restores a saved scroll offset onto a surface whose
// final size is not guaranteed yet.
package reconcile

import "time"

const (
	// Tolerance is how far the achieved offset may sit from the target and
	// still count as restored.
	Tolerance = 10
	// Interval is the retry cadence.
	Interval = 100 * time.Millisecond
	// MaxAttempts bounds the retries before the reconciler gives up
	// silently, leaving the reader at whatever offset was achieved.
	MaxAttempts = 5
)

// Surface is a live scrollable region. Setting an offset may be clamped by
// the surface when its content has not reached full height.
type Surface interface {
	SetOffset(offset int)
	Offset() int
}

// Outcome reports the result of one restoration attempt.
type Outcome int

const (
	// OutcomeIdle means restoration is not active: no positive target,
	// already restored, suspended, or attempts exhausted.
	OutcomeIdle Outcome = iota
	// OutcomeRestored means the offset landed within tolerance.
	OutcomeRestored
	// OutcomeRetry means the attempt missed and another try is due after
	// Interval.
	OutcomeRetry
	// OutcomeGaveUp means the attempt bound was just exhausted.
	OutcomeGaveUp
)

// Reconciler owns the retry bookkeeping explicitly: target offset, attempt
// counter, restored flag, and suspension state. The caller drives the
// cadence (one Step per Interval while Active) and must stop ticking on
// teardown so no timer leaks.
type Reconciler struct {
	target    int
	attempts  int
	restored  bool
	suspended bool
}

// New builds a reconciler with no target.
func New() *Reconciler {
	return &Reconciler{}
}

// Reset arms the reconciler for a new content instance: the restored flag
// and attempt counter reset atomically together with the target.
func (r *Reconciler) Reset(target int) {
	r.target = target
	r.attempts = 0
	r.restored = false
}

// Suspend halts restoration while paginated mode tracks progress by page
// index instead of offset.
func (r *Reconciler) Suspend() {
	r.suspended = true
}

// Resume re-enables restoration for the same content instance. A run that
// already restored or exhausted its attempts does not restart.
func (r *Reconciler) Resume() {
	r.suspended = false
}

// Active reports whether a retry timer should be running.
func (r *Reconciler) Active() bool {
	return !r.suspended && !r.restored && r.target > 0 && r.attempts < MaxAttempts
}

// Restored reports whether the target offset was reached for the current
// content instance.
func (r *Reconciler) Restored() bool {
	return r.restored
}

// Attempts returns the number of missed attempts so far.
func (r *Reconciler) Attempts() int {
	return r.attempts
}

// Step performs one restoration attempt against the surface.
func (r *Reconciler) Step(s Surface) Outcome {
	if !r.Active() {
		return OutcomeIdle
	}
	s.SetOffset(r.target)
	if diff := s.Offset() - r.target; diff >= -Tolerance && diff <= Tolerance {
		r.restored = true
		r.attempts = 0
		return OutcomeRestored
	}
	r.attempts++
	if r.attempts >= MaxAttempts {
		return OutcomeGaveUp
	}
	return OutcomeRetry
}
