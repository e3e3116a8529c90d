package booking

import (
	"fmt"
	"time"

	"harborline/internal/pkg/errs"

	"github.com/google/uuid"
)

var ErrReasonRequired = errs.New("a non-empty reason is required for this transition")

// InvalidTransitionError reports a rejected state machine edge. It
// satisfies errors.Is against errs.ErrInvalidTransition so callers can
// match the kind without losing the from/intent detail.
type InvalidTransitionError struct {
	From   Status
	Intent Intent
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot %s a booking in status %s", e.Intent, e.From)
}

func (e *InvalidTransitionError) Is(target error) bool {
	return target == errs.ErrInvalidTransition
}

// Booking is a time-bound claim on a boat, and once staffed, on a crew
// member. Rate and total are captured at creation and never recomputed
// from the boat's current rate.
type Booking struct {
	id             uuid.UUID
	number         string
	userID         uuid.UUID
	boatID         uuid.UUID
	merchantID     uuid.UUID
	assignedCrewID *uuid.UUID
	slot           TimeSlot
	passengerCount int
	hourlyRate     Money
	totalAmount    Money
	status         Status
	paymentStatus  PaymentStatus
	contact        Contact
	userNote       Note
	merchantNote   Note
	cancelReason   Note
	createdAt      time.Time
	updatedAt      time.Time
	confirmedAt    *time.Time
	completedAt    *time.Time
	cancelledAt    *time.Time
}

func ReconstructBooking(
	id uuid.UUID,
	number string,
	userID, boatID, merchantID uuid.UUID,
	assignedCrewID *uuid.UUID,
	slot TimeSlot,
	passengerCount int,
	hourlyRate, totalAmount Money,
	status Status,
	paymentStatus PaymentStatus,
	contact Contact,
	userNote, merchantNote, cancelReason Note,
	createdAt, updatedAt time.Time,
	confirmedAt, completedAt, cancelledAt *time.Time,
) *Booking {
	return &Booking{
		id:             id,
		number:         number,
		userID:         userID,
		boatID:         boatID,
		merchantID:     merchantID,
		assignedCrewID: assignedCrewID,
		slot:           slot,
		passengerCount: passengerCount,
		hourlyRate:     hourlyRate,
		totalAmount:    totalAmount,
		status:         status,
		paymentStatus:  paymentStatus,
		contact:        contact,
		userNote:       userNote,
		merchantNote:   merchantNote,
		cancelReason:   cancelReason,
		createdAt:      createdAt,
		updatedAt:      updatedAt,
		confirmedAt:    confirmedAt,
		completedAt:    completedAt,
		cancelledAt:    cancelledAt,
	}
}

// apply is the single mutation point for Status. It validates the edge
// against the transition table, stamps the matching timestamp exactly
// once, and returns the effect so the caller can run the side effects the
// table declares (boat release, events).
func (b *Booking) apply(intent Intent, now time.Time, reason string) (Effect, error) {
	eff, ok := EffectOf(b.status, intent)
	if !ok {
		return Effect{}, &InvalidTransitionError{From: b.status, Intent: intent}
	}
	if eff.RequiresReason && NewNote(reason).IsEmpty() {
		return Effect{}, ErrReasonRequired
	}

	b.status = eff.Next
	b.updatedAt = now
	if eff.StampsConfirmed && b.confirmedAt == nil {
		t := now
		b.confirmedAt = &t
	}
	if eff.StampsCompleted && b.completedAt == nil {
		t := now
		b.completedAt = &t
	}
	if eff.StampsCancelled && b.cancelledAt == nil {
		t := now
		b.cancelledAt = &t
	}
	if eff.RequiresReason {
		b.cancelReason = NewNote(reason)
	}
	return eff, nil
}

func (b *Booking) Confirm(now time.Time, merchantNote Note) (Effect, error) {
	eff, err := b.apply(IntentConfirm, now, "")
	if err != nil {
		return Effect{}, err
	}
	if !merchantNote.IsEmpty() {
		b.merchantNote = merchantNote
	}
	return eff, nil
}

func (b *Booking) Reject(now time.Time, reason string) (Effect, error) {
	return b.apply(IntentReject, now, reason)
}

func (b *Booking) Cancel(now time.Time, reason string) (Effect, error) {
	return b.apply(IntentCancel, now, reason)
}

func (b *Booking) StartService(now time.Time) (Effect, error) {
	return b.apply(IntentStart, now, "")
}

func (b *Booking) CompleteService(now time.Time) (Effect, error) {
	return b.apply(IntentComplete, now, "")
}

// AssignCrew attaches (or replaces) the staffed crew member. Only legal
// on a confirmed booking; the schedule check is the caller's job since it
// needs the store.
func (b *Booking) AssignCrew(crewID uuid.UUID, now time.Time, note Note) error {
	if b.status != StatusConfirmed {
		return &InvalidTransitionError{From: b.status, Intent: "assign_crew"}
	}
	id := crewID
	b.assignedCrewID = &id
	if !note.IsEmpty() {
		b.merchantNote = note
	}
	b.updatedAt = now
	return nil
}

func (b *Booking) ID() uuid.UUID               { return b.id }
func (b *Booking) Number() string              { return b.number }
func (b *Booking) UserID() uuid.UUID           { return b.userID }
func (b *Booking) BoatID() uuid.UUID           { return b.boatID }
func (b *Booking) MerchantID() uuid.UUID       { return b.merchantID }
func (b *Booking) AssignedCrewID() *uuid.UUID  { return b.assignedCrewID }
func (b *Booking) Slot() TimeSlot              { return b.slot }
func (b *Booking) PassengerCount() int         { return b.passengerCount }
func (b *Booking) HourlyRate() Money           { return b.hourlyRate }
func (b *Booking) TotalAmount() Money          { return b.totalAmount }
func (b *Booking) Status() Status              { return b.status }
func (b *Booking) PaymentStatus() PaymentStatus { return b.paymentStatus }
func (b *Booking) Contact() Contact            { return b.contact }
func (b *Booking) UserNote() Note              { return b.userNote }
func (b *Booking) MerchantNote() Note          { return b.merchantNote }
func (b *Booking) CancelReason() Note          { return b.cancelReason }
func (b *Booking) CreatedAt() time.Time        { return b.createdAt }
func (b *Booking) UpdatedAt() time.Time        { return b.updatedAt }
func (b *Booking) ConfirmedAt() *time.Time     { return b.confirmedAt }
func (b *Booking) CompletedAt() *time.Time     { return b.completedAt }
func (b *Booking) CancelledAt() *time.Time     { return b.cancelledAt }
