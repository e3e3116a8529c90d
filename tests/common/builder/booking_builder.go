//go:build unit || e2e

package builder

import (
	"time"

	dombooking "harborline/internal/domain/booking"
	reqdto "harborline/internal/handler/dto/request"
	"harborline/internal/usecase/queries"

	"github.com/google/uuid"
)

type BookingBuilder struct {
	ID             uuid.UUID
	Number         string
	UserID         uuid.UUID
	BoatID         uuid.UUID
	BoatName       string
	MerchantID     uuid.UUID
	MerchantUserID uuid.UUID
	AssignedCrewID *uuid.UUID
	CrewUserID     *uuid.UUID
	StartTime      time.Time
	EndTime        time.Time
	PassengerCount int
	HourlyRate     int64
	Status         dombooking.Status
	PaymentStatus  dombooking.PaymentStatus
	ContactName    string
	ContactPhone   string
	UserNotes      string
	MerchantNotes  string
	CancelReason   string
	CreatedAt      time.Time
}

func NewBookingBuilder() *BookingBuilder {
	now := time.Now().UTC().Truncate(time.Second)
	return &BookingBuilder{
		ID:             uuid.New(),
		Number:         "BK20260901120000ABCD1234",
		UserID:         uuid.New(),
		BoatID:         uuid.New(),
		BoatName:       "Test Boat",
		MerchantID:     uuid.New(),
		MerchantUserID: uuid.New(),
		StartTime:      now.Add(24 * time.Hour),
		EndTime:        now.Add(27 * time.Hour),
		PassengerCount: 4,
		HourlyRate:     10000,
		Status:         dombooking.StatusPending,
		PaymentStatus:  dombooking.PaymentUnpaid,
		ContactName:    "Alex Mariner",
		ContactPhone:   "+1 555 010 2030",
		CreatedAt:      now,
	}
}

func (b *BookingBuilder) With(mutate func(*BookingBuilder)) *BookingBuilder {
	mutate(b)
	return b
}

func (b *BookingBuilder) WithStatus(status dombooking.Status) *BookingBuilder {
	b.Status = status
	return b
}

func (b *BookingBuilder) WithSlot(start, end time.Time) *BookingBuilder {
	b.StartTime = start
	b.EndTime = end
	return b
}

func (b *BookingBuilder) WithCrew(crewID, crewUserID uuid.UUID) *BookingBuilder {
	b.AssignedCrewID = &crewID
	b.CrewUserID = &crewUserID
	return b
}

// BuildDomain reconstructs a booking in the builder's status, the way the
// repository materializes rows.
func (b *BookingBuilder) BuildDomain() *dombooking.Booking {
	slot, err := dombooking.NewTimeSlot(b.StartTime, b.EndTime)
	if err != nil {
		panic(err)
	}
	rate, err := dombooking.NewMoney(b.HourlyRate)
	if err != nil {
		panic(err)
	}
	contact, err := dombooking.NewContact(b.ContactName, b.ContactPhone)
	if err != nil {
		panic(err)
	}

	var confirmedAt, completedAt, cancelledAt *time.Time
	stamp := b.CreatedAt
	switch b.Status {
	case dombooking.StatusConfirmed, dombooking.StatusInProgress:
		confirmedAt = &stamp
	case dombooking.StatusCompleted:
		confirmedAt = &stamp
		completedAt = &stamp
	case dombooking.StatusCancelled, dombooking.StatusRejected:
		cancelledAt = &stamp
	}

	return dombooking.ReconstructBooking(
		b.ID, b.Number, b.UserID, b.BoatID, b.MerchantID, b.AssignedCrewID,
		slot, b.PassengerCount, rate, rate.MulHours(slot),
		b.Status, b.PaymentStatus, contact,
		dombooking.NewNote(b.UserNotes), dombooking.NewNote(b.MerchantNotes), dombooking.NewNote(b.CancelReason),
		b.CreatedAt, b.CreatedAt, confirmedAt, completedAt, cancelledAt,
	)
}

func (b *BookingBuilder) BuildCreateRequestDTO() reqdto.CreateBookingRequest {
	req := reqdto.CreateBookingRequest{
		BoatID:         b.BoatID,
		StartTime:      b.StartTime,
		EndTime:        b.EndTime,
		PassengerCount: b.PassengerCount,
		ContactName:    b.ContactName,
		ContactPhone:   b.ContactPhone,
	}
	if b.UserNotes != "" {
		notes := b.UserNotes
		req.UserNotes = &notes
	}
	return req
}

func (b *BookingBuilder) BuildView() *queries.BookingView {
	slot, err := dombooking.NewTimeSlot(b.StartTime, b.EndTime)
	if err != nil {
		panic(err)
	}
	rate, _ := dombooking.NewMoney(b.HourlyRate)

	return &queries.BookingView{
		ID:               b.ID,
		Number:           b.Number,
		UserID:           b.UserID,
		BoatID:           b.BoatID,
		BoatName:         b.BoatName,
		MerchantID:       b.MerchantID,
		MerchantName:     "Test Marina",
		AssignedCrewID:   b.AssignedCrewID,
		StartTime:        b.StartTime,
		EndTime:          b.EndTime,
		DurationHours:    slot.DurationHours(),
		PassengerCount:   b.PassengerCount,
		HourlyRateCents:  b.HourlyRate,
		TotalAmountCents: rate.MulHours(slot).Cents(),
		Status:           b.Status.String(),
		PaymentStatus:    string(b.PaymentStatus),
		ContactName:      b.ContactName,
		ContactPhone:     b.ContactPhone,
		CreatedAt:        b.CreatedAt,
		UpdatedAt:        b.CreatedAt,
		MerchantUserID:   b.MerchantUserID,
		CrewUserID:       b.CrewUserID,
	}
}

func (b *BookingBuilder) BuildListItem() *queries.BookingListItem {
	slot, err := dombooking.NewTimeSlot(b.StartTime, b.EndTime)
	if err != nil {
		panic(err)
	}
	rate, _ := dombooking.NewMoney(b.HourlyRate)

	return &queries.BookingListItem{
		ID:               b.ID,
		Number:           b.Number,
		BoatID:           b.BoatID,
		BoatName:         b.BoatName,
		StartTime:        b.StartTime,
		EndTime:          b.EndTime,
		PassengerCount:   b.PassengerCount,
		TotalAmountCents: rate.MulHours(slot).Cents(),
		Status:           b.Status.String(),
		CreatedAt:        b.CreatedAt,
	}
}
