package booking

import (
	"fmt"
	"time"

	"harborline/internal/pkg/errs"
)

const (
	// UserCancelCutoff is how long before the start a user-initiated
	// cancellation stays legal.
	UserCancelCutoff = 2 * time.Hour

	// PendingConfirmTimeout is how long a merchant has to act on a pending
	// booking before the sweeper may auto-cancel it.
	PendingConfirmTimeout = 20 * time.Minute

	// AutoCancelReason is stamped by the sweeper; it is system text, never
	// user supplied.
	AutoCancelReason = "merchant did not confirm within 20 minutes, auto-cancelled by system"
)

// CutoffError reports a missed cancellation deadline with the exact
// instant that was missed.
type CutoffError struct {
	CutoffAt time.Time
	Now      time.Time
}

func (e *CutoffError) Error() string {
	return fmt.Sprintf("cancellation window closed at %s", e.CutoffAt.Format(time.RFC3339))
}

func (e *CutoffError) Is(target error) bool {
	return target == errs.ErrPolicyViolation
}

// CanUserCancel enforces the user-side cancellation policy: legal only
// while pending or confirmed, and only up to two hours before the start.
// The status check is left to the state machine; this is purely the clock
// rule, so the two layers stay independently testable.
func (b *Booking) CanUserCancel(now time.Time) error {
	cutoff := b.slot.Start().Add(-UserCancelCutoff)
	if now.After(cutoff) {
		return &CutoffError{CutoffAt: cutoff, Now: now}
	}
	return nil
}

// EligibleForAutoCancel reports whether the sweeper may force-cancel this
// booking: still pending and created at least PendingConfirmTimeout ago.
func (b *Booking) EligibleForAutoCancel(now time.Time) bool {
	return b.status == StatusPending && !b.createdAt.After(now.Add(-PendingConfirmTimeout))
}

// WaitedFor is how long the booking has sat unactioned, for sweep reports.
func (b *Booking) WaitedFor(now time.Time) time.Duration {
	return now.Sub(b.createdAt)
}
