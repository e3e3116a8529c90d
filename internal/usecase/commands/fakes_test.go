//go:build unit

package commands_test

import (
	"context"
	"sync"
	"time"

	"harborline/internal/domain/booking"
	"harborline/internal/domain/rating"
	"harborline/internal/infra"
	"harborline/internal/infra/db"
	"harborline/internal/usecase/queries"
	"harborline/internal/usecase/shared"

	"github.com/google/uuid"
)

// In-memory doubles for the unit-of-work ports. Each fake records enough
// of what happened for the tests to assert on orchestration order and
// arguments.

type fakeBookingRepo struct {
	byID      map[uuid.UUID]*booking.Booking
	conflicts []shared.ConflictSummary
	expired   []*booking.Booking
	failFind  map[uuid.UUID]error

	created       []*booking.Booking
	updated       []*booking.Booking
	overlapKind   shared.ResourceKind
	overlapExcl   *uuid.UUID
	overlapCalled bool
}

func newFakeBookingRepo(bookings ...*booking.Booking) *fakeBookingRepo {
	r := &fakeBookingRepo{byID: map[uuid.UUID]*booking.Booking{}, failFind: map[uuid.UUID]error{}}
	for _, b := range bookings {
		r.byID[b.ID()] = b
	}
	return r
}

func (r *fakeBookingRepo) Create(_ context.Context, _ db.DBTX, b *booking.Booking) error {
	r.created = append(r.created, b)
	r.byID[b.ID()] = b
	return nil
}

func (r *fakeBookingRepo) FindByIDForUpdate(_ context.Context, _ db.DBTX, id uuid.UUID) (*booking.Booking, error) {
	if err := r.failFind[id]; err != nil {
		return nil, err
	}
	b, ok := r.byID[id]
	if !ok {
		return nil, infra.WrapRepoErr("booking not found", nil, infra.KindNotFound)
	}
	return b, nil
}

func (r *fakeBookingRepo) Update(_ context.Context, _ db.DBTX, b *booking.Booking) error {
	r.updated = append(r.updated, b)
	return nil
}

func (r *fakeBookingRepo) FindOverlapping(_ context.Context, _ db.DBTX, kind shared.ResourceKind, _ uuid.UUID, _, _ time.Time, excludeID *uuid.UUID) ([]shared.ConflictSummary, error) {
	r.overlapCalled = true
	r.overlapKind = kind
	r.overlapExcl = excludeID
	return r.conflicts, nil
}

func (r *fakeBookingRepo) FindExpiredPending(_ context.Context, _ db.DBTX, _ time.Time) ([]*booking.Booking, error) {
	return r.expired, nil
}

type fakeBoatRepo struct {
	statusUpdates map[uuid.UUID]shared.BoatStatus
}

func newFakeBoatRepo() *fakeBoatRepo {
	return &fakeBoatRepo{statusUpdates: map[uuid.UUID]shared.BoatStatus{}}
}

func (r *fakeBoatRepo) FindByID(_ context.Context, _ db.DBTX, _ uuid.UUID) (*shared.BoatSnapshot, error) {
	return nil, infra.WrapRepoErr("boat not found", nil, infra.KindNotFound)
}

func (r *fakeBoatRepo) UpdateStatus(_ context.Context, _ db.DBTX, boatID uuid.UUID, status shared.BoatStatus) error {
	r.statusUpdates[boatID] = status
	return nil
}

type fakeCrewRepo struct {
	recalced []uuid.UUID
}

func (r *fakeCrewRepo) FindByID(_ context.Context, _ db.DBTX, _ uuid.UUID) (*shared.CrewSnapshot, error) {
	return nil, infra.WrapRepoErr("crew not found", nil, infra.KindNotFound)
}

func (r *fakeCrewRepo) RecalcRating(_ context.Context, _ db.DBTX, crewID uuid.UUID) error {
	r.recalced = append(r.recalced, crewID)
	return nil
}

type fakeRatingRepo struct {
	existing map[uuid.UUID]bool
	created  []*rating.ServiceRating
}

func newFakeRatingRepo() *fakeRatingRepo {
	return &fakeRatingRepo{existing: map[uuid.UUID]bool{}}
}

func (r *fakeRatingRepo) Create(_ context.Context, _ db.DBTX, sr *rating.ServiceRating) error {
	r.created = append(r.created, sr)
	r.existing[sr.BookingID()] = true
	return nil
}

func (r *fakeRatingRepo) ExistsForBooking(_ context.Context, _ db.DBTX, bookingID uuid.UUID) (bool, error) {
	return r.existing[bookingID], nil
}

type fakeTx struct {
	bookings *fakeBookingRepo
	boats    *fakeBoatRepo
	crews    *fakeCrewRepo
	ratings  *fakeRatingRepo
}

func (t *fakeTx) Bookings() shared.BookingRepository { return t.bookings }
func (t *fakeTx) Boats() shared.BoatRepository       { return t.boats }
func (t *fakeTx) Crews() shared.CrewRepository       { return t.crews }
func (t *fakeTx) Ratings() shared.RatingRepository   { return t.ratings }
func (t *fakeTx) DB() db.DBTX                        { return nil }

type fakeReads struct {
	boats             map[uuid.UUID]*shared.BoatSnapshot
	crewsByID         map[uuid.UUID]*shared.CrewSnapshot
	crewsByUserID     map[uuid.UUID]*shared.CrewSnapshot
	merchantsByID     map[uuid.UUID]*shared.MerchantSnapshot
	merchantsByUserID map[uuid.UUID]*shared.MerchantSnapshot
}

func newFakeReads() *fakeReads {
	return &fakeReads{
		boats:             map[uuid.UUID]*shared.BoatSnapshot{},
		crewsByID:         map[uuid.UUID]*shared.CrewSnapshot{},
		crewsByUserID:     map[uuid.UUID]*shared.CrewSnapshot{},
		merchantsByID:     map[uuid.UUID]*shared.MerchantSnapshot{},
		merchantsByUserID: map[uuid.UUID]*shared.MerchantSnapshot{},
	}
}

func (f *fakeReads) BoatByID(_ context.Context, id uuid.UUID) (*shared.BoatSnapshot, error) {
	if b, ok := f.boats[id]; ok {
		return b, nil
	}
	return nil, infra.WrapRepoErr("boat not found", nil, infra.KindNotFound)
}

func (f *fakeReads) CrewByID(_ context.Context, id uuid.UUID) (*shared.CrewSnapshot, error) {
	if c, ok := f.crewsByID[id]; ok {
		return c, nil
	}
	return nil, infra.WrapRepoErr("crew not found", nil, infra.KindNotFound)
}

func (f *fakeReads) CrewByUserID(_ context.Context, userID uuid.UUID) (*shared.CrewSnapshot, error) {
	if c, ok := f.crewsByUserID[userID]; ok {
		return c, nil
	}
	return nil, infra.WrapRepoErr("crew not found", nil, infra.KindNotFound)
}

func (f *fakeReads) MerchantByID(_ context.Context, id uuid.UUID) (*shared.MerchantSnapshot, error) {
	if m, ok := f.merchantsByID[id]; ok {
		return m, nil
	}
	return nil, infra.WrapRepoErr("merchant not found", nil, infra.KindNotFound)
}

func (f *fakeReads) MerchantByUserID(_ context.Context, userID uuid.UUID) (*shared.MerchantSnapshot, error) {
	if m, ok := f.merchantsByUserID[userID]; ok {
		return m, nil
	}
	return nil, infra.WrapRepoErr("merchant not found", nil, infra.KindNotFound)
}

type fakeUoW struct {
	tx    *fakeTx
	reads *fakeReads
}

func newFakeUoW() *fakeUoW {
	return &fakeUoW{
		tx: &fakeTx{
			bookings: newFakeBookingRepo(),
			boats:    newFakeBoatRepo(),
			crews:    &fakeCrewRepo{},
			ratings:  newFakeRatingRepo(),
		},
		reads: newFakeReads(),
	}
}

func (u *fakeUoW) Within(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	return fn(ctx, u.tx)
}

func (u *fakeUoW) WithinSerializable(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	return fn(ctx, u.tx)
}

func (u *fakeUoW) CommandReads() shared.CommandReads { return u.reads }

type publishedEvent struct {
	Topic   string
	Payload shared.BookingEvent
}

type fakePublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (p *fakePublisher) Publish(_ context.Context, topic string, payload any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{Topic: topic, Payload: payload.(shared.BookingEvent)})
	return nil
}

func (p *fakePublisher) topics() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Topic)
	}
	return out
}

type fakeViewRepo struct {
	lastRequested uuid.UUID
}

func (r *fakeViewRepo) FindByID(_ context.Context, id uuid.UUID) (*queries.BookingView, error) {
	r.lastRequested = id
	return &queries.BookingView{ID: id}, nil
}

func (r *fakeViewRepo) FindByUserFirstPage(_ context.Context, _ uuid.UUID, _ queries.ListFilter, _ int32) ([]*queries.BookingListItem, error) {
	return nil, nil
}

func (r *fakeViewRepo) FindByUserKeyset(_ context.Context, _ uuid.UUID, _ queries.ListFilter, _ time.Time, _ uuid.UUID, _ int32) ([]*queries.BookingListItem, error) {
	return nil, nil
}

func (r *fakeViewRepo) FindByMerchantFirstPage(_ context.Context, _ uuid.UUID, _ queries.ListFilter, _ int32) ([]*queries.BookingListItem, error) {
	return nil, nil
}

func (r *fakeViewRepo) FindByMerchantKeyset(_ context.Context, _ uuid.UUID, _ queries.ListFilter, _ time.Time, _ uuid.UUID, _ int32) ([]*queries.BookingListItem, error) {
	return nil, nil
}

func (r *fakeViewRepo) MerchantStats(_ context.Context, _ uuid.UUID) (*queries.MerchantStatsView, error) {
	return nil, nil
}
