package shared

import (
	"time"

	"github.com/google/uuid"
)

// Role is the caller's role as carried in the access token.
const (
	RoleUser     = "user"
	RoleMerchant = "merchant"
	RoleCrew     = "crew"
	RoleAdmin    = "admin"
)

// Actor identifies the authenticated caller for authorization decisions.
type Actor struct {
	UserID uuid.UUID
	Role   string
}

// ResourceKind names the two independent axes the availability checker
// guards: the physical boat and the human crew member.
type ResourceKind string

const (
	ResourceBoat ResourceKind = "boat"
	ResourceCrew ResourceKind = "crew"
)

func (k ResourceKind) IsValid() bool {
	return k == ResourceBoat || k == ResourceCrew
}

// BoatStatus is the boat's operational status. Only "available" is
// bookable; the engine flips a boat back to available when a booking
// completes and otherwise treats the field as read-only input.
type BoatStatus string

const (
	BoatAvailable   BoatStatus = "available"
	BoatInUse       BoatStatus = "in_use"
	BoatMaintenance BoatStatus = "maintenance"
	BoatInactive    BoatStatus = "inactive"
)

type CrewStatus string

const (
	CrewActive   CrewStatus = "active"
	CrewInactive CrewStatus = "inactive"
)

// MerchantStatus is owned by the marketplace platform; a suspended
// merchant's boats stop taking new bookings but existing ones run on.
type MerchantStatus string

const (
	MerchantActive    MerchantStatus = "active"
	MerchantSuspended MerchantStatus = "suspended"
)

// Write-side snapshots prevent the command layer from depending on the
// read-model view types.
type BoatSnapshot struct {
	ID              uuid.UUID
	MerchantID      uuid.UUID
	Name            string
	Capacity        int
	HourlyRateCents int64
	Status          BoatStatus
}

type CrewSnapshot struct {
	ID         uuid.UUID
	MerchantID uuid.UUID
	UserID     uuid.UUID
	Status     CrewStatus
	RatingAvg  float64
}

type MerchantSnapshot struct {
	ID     uuid.UUID
	UserID uuid.UUID
	Name   string
	Status MerchantStatus
}

// ConflictSummary identifies one existing booking that overlaps a probed
// interval; returned so callers can show the user what is in the way.
type ConflictSummary struct {
	ID        uuid.UUID
	Number    string
	StartTime time.Time
	EndTime   time.Time
	Status    string
}
