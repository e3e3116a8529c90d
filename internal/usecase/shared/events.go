package shared

import (
	"time"

	"github.com/google/uuid"
)

// Topics carried to the notification collaborator. Routing keys are
// stable names that downstream consumers bind on.
const (
	TopicBookingCreated      = "booking.created"
	TopicBookingConfirmed    = "booking.confirmed"
	TopicBookingRejected     = "booking.rejected"
	TopicBookingCancelled    = "booking.cancelled"
	TopicBookingStarted      = "booking.started"
	TopicBookingCompleted    = "booking.completed"
	TopicBookingCrewAssigned = "booking.crew_assigned"
)

// BookingEvent is the payload published on every booking lifecycle topic.
// Consumers key on BookingID and Status; the rest is denormalized so they
// need no read-back.
type BookingEvent struct {
	BookingID      uuid.UUID  `json:"booking_id"`
	Number         string     `json:"booking_number"`
	UserID         uuid.UUID  `json:"user_id"`
	BoatID         uuid.UUID  `json:"boat_id"`
	MerchantID     uuid.UUID  `json:"merchant_id"`
	AssignedCrewID *uuid.UUID `json:"assigned_crew_id,omitempty"`
	StartTime      time.Time  `json:"start_time"`
	EndTime        time.Time  `json:"end_time"`
	Status         string     `json:"status"`
	Reason         string     `json:"reason,omitempty"`
	OccurredAt     time.Time  `json:"occurred_at"`
}
