package booking

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrInvalidTimeSlot  = errors.New("start time must be before end time")
	ErrStartTimeInPast  = errors.New("start time must be in the future")
	ErrNegativeAmount   = errors.New("amount cannot be negative")
	ErrEmptyContactName = errors.New("contact name is required")
	ErrInvalidPhone     = errors.New("contact phone is required")
)

// TimeSlot is the half-open interval [start, end) a booking holds a boat
// (and optionally a crew member) for. Back-to-back slots sharing a
// boundary instant do not overlap.
type TimeSlot struct {
	start time.Time
	end   time.Time
}

func NewTimeSlot(start, end time.Time) (TimeSlot, error) {
	if !start.Before(end) {
		return TimeSlot{}, ErrInvalidTimeSlot
	}
	return TimeSlot{start: start, end: end}, nil
}

func (ts TimeSlot) Start() time.Time { return ts.start }

func (ts TimeSlot) End() time.Time { return ts.end }

func (ts TimeSlot) Duration() time.Duration {
	return ts.end.Sub(ts.start)
}

// DurationHours is the stored, reporting-only duration rounded to one
// decimal place.
func (ts TimeSlot) DurationHours() float64 {
	tenths := float64(ts.Duration().Round(6*time.Minute)) / float64(6*time.Minute)
	return tenths / 10
}

// Overlaps implements [s1,e1) ∩ [s2,e2) ≠ ∅ as s1 < e2 && e1 > s2.
func (ts TimeSlot) Overlaps(other TimeSlot) bool {
	return ts.start.Before(other.end) && ts.end.After(other.start)
}

// ValidateFutureAt requires the slot to start strictly after now.
func (ts TimeSlot) ValidateFutureAt(now time.Time) error {
	if !ts.start.After(now) {
		return ErrStartTimeInPast
	}
	return nil
}

func (ts TimeSlot) String() string {
	return fmt.Sprintf("[%s,%s)", ts.start.Format(time.RFC3339), ts.end.Format(time.RFC3339))
}

// Money is an integer amount of cents.
type Money struct {
	cents int64
}

func NewMoney(cents int64) (Money, error) {
	if cents < 0 {
		return Money{}, ErrNegativeAmount
	}
	return Money{cents: cents}, nil
}

func (m Money) Cents() int64 { return m.cents }

// MulHours multiplies an hourly rate by a slot's duration, using the same
// one-decimal rounding the stored duration uses so the two never disagree.
func (m Money) MulHours(slot TimeSlot) Money {
	tenths := int64(slot.Duration().Round(6*time.Minute) / (6 * time.Minute))
	return Money{cents: m.cents * tenths / 10}
}

// Contact is the name and phone the merchant reaches the party on.
type Contact struct {
	name  string
	phone string
}

func NewContact(name, phone string) (Contact, error) {
	name = strings.TrimSpace(name)
	phone = strings.TrimSpace(phone)
	if name == "" {
		return Contact{}, ErrEmptyContactName
	}
	if phone == "" {
		return Contact{}, ErrInvalidPhone
	}
	return Contact{name: name, phone: phone}, nil
}

func (c Contact) Name() string  { return c.name }
func (c Contact) Phone() string { return c.phone }

// Note is free text attached by a user or merchant; empty means absent.
type Note struct {
	value string
}

func NewNote(value string) Note {
	return Note{value: strings.TrimSpace(value)}
}

func (n Note) String() string { return n.value }
func (n Note) IsEmpty() bool  { return n.value == "" }
