package queries

import (
	"context"
	"fmt"
	"time"

	"harborline/internal/domain/booking"
	"harborline/internal/pkg/errs"
	"harborline/internal/usecase/shared"

	"github.com/google/uuid"
)

var ErrInvalidResourceKind = errs.New("resource kind must be boat or crew")

// ConflictView is one booking standing in the way of a probed interval.
type ConflictView struct {
	ID        uuid.UUID `json:"id"`
	Number    string    `json:"booking_number"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	Status    string    `json:"status"`
}

type AvailabilityView struct {
	ResourceKind string    `json:"resource_kind"`
	ResourceID   uuid.UUID `json:"resource_id"`
	StartTime    time.Time `json:"start_time"`
	EndTime      time.Time `json:"end_time"`
	Available    bool      `json:"available"`
	// Reason says why the probe failed; empty when Available.
	Reason    string         `json:"reason,omitempty"`
	Conflicts []ConflictView `json:"conflicts"`
}

type AvailabilityQueries interface {
	// Check probes [start,end) on one resource axis. Only confirmed and
	// in-progress bookings block; a probe against a rejected interval
	// returns the conflicting bookings so the caller can reschedule.
	// excludeID leaves one booking out, for reschedule probes.
	Check(ctx context.Context, kind shared.ResourceKind, resourceID uuid.UUID, start, end time.Time, excludeID *uuid.UUID) (*AvailabilityView, error)
}

type AvailabilityRepo interface {
	// ResourceStatus reports the boat's or crew member's operational
	// status; found is false when no such resource exists.
	ResourceStatus(ctx context.Context, kind shared.ResourceKind, id uuid.UUID) (status string, found bool, err error)
	FindConflicts(ctx context.Context, kind shared.ResourceKind, resourceID uuid.UUID, start, end time.Time, excludeID *uuid.UUID) ([]ConflictView, error)
}

type availabilityQueriesImpl struct {
	repo AvailabilityRepo
}

func NewAvailabilityQueries(repo AvailabilityRepo) AvailabilityQueries {
	return &availabilityQueriesImpl{repo: repo}
}

func (q *availabilityQueriesImpl) Check(ctx context.Context, kind shared.ResourceKind, resourceID uuid.UUID, start, end time.Time, excludeID *uuid.UUID) (*AvailabilityView, error) {
	if !kind.IsValid() {
		return nil, ErrInvalidResourceKind
	}
	if _, err := booking.NewTimeSlot(start, end); err != nil {
		return nil, err
	}

	status, found, err := q.repo.ResourceStatus(ctx, kind, resourceID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, errs.Mark(errs.Newf("%s %s not found", kind, resourceID), errs.ErrNotFound)
	}

	view := &AvailabilityView{
		ResourceKind: string(kind),
		ResourceID:   resourceID,
		StartTime:    start,
		EndTime:      end,
		Conflicts:    []ConflictView{},
	}

	// A resource in a non-bookable operational status is unavailable
	// regardless of its calendar, so the overlap query is skipped.
	if !bookableStatus(kind, status) {
		view.Reason = fmt.Sprintf("%s status is %s, not bookable", kind, status)
		return view, nil
	}

	conflicts, err := q.repo.FindConflicts(ctx, kind, resourceID, start, end, excludeID)
	if err != nil {
		return nil, err
	}
	if len(conflicts) > 0 {
		view.Conflicts = conflicts
		view.Reason = "time slot overlaps existing bookings"
		return view, nil
	}

	view.Available = true
	return view, nil
}

func bookableStatus(kind shared.ResourceKind, status string) bool {
	if kind == shared.ResourceCrew {
		return status == string(shared.CrewActive)
	}
	return status == string(shared.BoatAvailable)
}
