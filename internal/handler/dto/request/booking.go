package request

import (
	"strings"
	"time"

	"harborline/internal/domain/booking"

	"github.com/google/uuid"
)

type CreateBookingRequest struct {
	BoatID         uuid.UUID `json:"boat_id" binding:"required"`
	StartTime      time.Time `json:"start_time" binding:"required"`
	EndTime        time.Time `json:"end_time" binding:"required"`
	PassengerCount int       `json:"passenger_count" binding:"required,min=1"`
	ContactName    string    `json:"contact_name" binding:"required,max=100"`
	ContactPhone   string    `json:"contact_phone" binding:"required,phone"`
	UserNotes      *string   `json:"user_notes,omitempty" binding:"omitempty,max=1000"`
}

func (r CreateBookingRequest) Slot() (booking.TimeSlot, error) {
	return booking.NewTimeSlot(r.StartTime, r.EndTime)
}

func (r CreateBookingRequest) Contact() (booking.Contact, error) {
	return booking.NewContact(r.ContactName, r.ContactPhone)
}

func (r CreateBookingRequest) Note() booking.Note {
	if r.UserNotes == nil {
		return booking.NewNote("")
	}
	return booking.NewNote(*r.UserNotes)
}

type ConfirmBookingRequest struct {
	MerchantNotes *string `json:"merchant_notes,omitempty" binding:"omitempty,max=1000"`
}

func (r ConfirmBookingRequest) Note() string {
	if r.MerchantNotes == nil {
		return ""
	}
	return strings.TrimSpace(*r.MerchantNotes)
}

type RejectBookingRequest struct {
	Reason string `json:"reason" binding:"required,max=500"`
}

type CancelBookingRequest struct {
	Reason *string `json:"reason,omitempty" binding:"omitempty,max=500"`
}

// GetReason falls back to the standard user-cancel text when the caller
// gives none.
func (r CancelBookingRequest) GetReason() string {
	if r.Reason == nil || strings.TrimSpace(*r.Reason) == "" {
		return "cancelled by user"
	}
	return strings.TrimSpace(*r.Reason)
}

type AssignCrewRequest struct {
	CrewID        uuid.UUID `json:"crew_id" binding:"required"`
	MerchantNotes *string   `json:"merchant_notes,omitempty" binding:"omitempty,max=1000"`
}

func (r AssignCrewRequest) Note() string {
	if r.MerchantNotes == nil {
		return ""
	}
	return strings.TrimSpace(*r.MerchantNotes)
}

type RateBookingRequest struct {
	Score   int     `json:"score" binding:"required,min=1,max=5"`
	Comment *string `json:"comment,omitempty" binding:"omitempty,max=1000"`
}

func (r RateBookingRequest) GetComment() string {
	if r.Comment == nil {
		return ""
	}
	return strings.TrimSpace(*r.Comment)
}

type CheckAvailabilityRequest struct {
	ResourceKind     string     `json:"resource_kind" binding:"required,oneof=boat crew"`
	ResourceID       uuid.UUID  `json:"resource_id" binding:"required"`
	StartTime        time.Time  `json:"start_time" binding:"required"`
	EndTime          time.Time  `json:"end_time" binding:"required"`
	ExcludeBookingID *uuid.UUID `json:"exclude_booking_id,omitempty"`
}

type ListBookingsQuery struct {
	Status string     `form:"status" binding:"omitempty,oneof=pending confirmed in_progress completed cancelled rejected"`
	BoatID *uuid.UUID `form:"boat_id"`
	From   *time.Time `form:"from" time_format:"2006-01-02T15:04:05Z07:00"`
	To     *time.Time `form:"to" time_format:"2006-01-02T15:04:05Z07:00"`
	After  string     `form:"after"`
	Limit  int        `form:"limit" binding:"omitempty,min=1,max=200"`
}
