package response

import (
	"time"

	"harborline/internal/usecase/commands"
	"harborline/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
)

type RatingResponse struct {
	ID        uuid.UUID `json:"id"`
	Score     int       `json:"score"`
	Comment   *string   `json:"comment,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type BookingResponse struct {
	ID               uuid.UUID       `json:"id"`
	Number           string          `json:"booking_number"`
	UserID           uuid.UUID       `json:"user_id"`
	BoatID           uuid.UUID       `json:"boat_id"`
	BoatName         string          `json:"boat_name"`
	MerchantID       uuid.UUID       `json:"merchant_id"`
	MerchantName     string          `json:"merchant_name"`
	AssignedCrewID   *uuid.UUID      `json:"assigned_crew_id,omitempty"`
	StartTime        time.Time       `json:"start_time"`
	EndTime          time.Time       `json:"end_time"`
	DurationHours    float64         `json:"duration_hours"`
	PassengerCount   int             `json:"passenger_count"`
	HourlyRateCents  int64           `json:"hourly_rate_cents"`
	TotalAmountCents int64           `json:"total_amount_cents"`
	Status           string          `json:"status"`
	PaymentStatus    string          `json:"payment_status"`
	ContactName      string          `json:"contact_name"`
	ContactPhone     string          `json:"contact_phone"`
	UserNotes        *string         `json:"user_notes,omitempty"`
	MerchantNotes    *string         `json:"merchant_notes,omitempty"`
	CancelReason     *string         `json:"cancel_reason,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
	ConfirmedAt      *time.Time      `json:"confirmed_at,omitempty"`
	CompletedAt      *time.Time      `json:"completed_at,omitempty"`
	CancelledAt      *time.Time      `json:"cancelled_at,omitempty"`
	Rating           *RatingResponse `json:"rating,omitempty"`
}

func FromBookingView(view *queries.BookingView) *BookingResponse {
	var resp BookingResponse
	_ = copier.Copy(&resp, view)
	return &resp
}

type BookingListItemResponse struct {
	ID               uuid.UUID `json:"id"`
	Number           string    `json:"booking_number"`
	BoatID           uuid.UUID `json:"boat_id"`
	BoatName         string    `json:"boat_name"`
	StartTime        time.Time `json:"start_time"`
	EndTime          time.Time `json:"end_time"`
	PassengerCount   int       `json:"passenger_count"`
	TotalAmountCents int64     `json:"total_amount_cents"`
	Status           string    `json:"status"`
	CreatedAt        time.Time `json:"created_at"`
}

type BookingListResponse struct {
	Bookings   []*BookingListItemResponse `json:"bookings"`
	NextCursor *string                    `json:"next_cursor,omitempty"`
}

func FromBookingList(items []*queries.BookingListItem, next *queries.Cursor) *BookingListResponse {
	resp := &BookingListResponse{Bookings: make([]*BookingListItemResponse, len(items))}
	for i, item := range items {
		var it BookingListItemResponse
		_ = copier.Copy(&it, item)
		resp.Bookings[i] = &it
	}
	if next != nil {
		resp.NextCursor = &next.After
	}
	return resp
}

type AvailabilityResponse struct {
	ResourceKind string                 `json:"resource_kind"`
	ResourceID   uuid.UUID              `json:"resource_id"`
	StartTime    time.Time              `json:"start_time"`
	EndTime      time.Time              `json:"end_time"`
	Available    bool                   `json:"available"`
	Reason       string                 `json:"reason,omitempty"`
	Conflicts    []queries.ConflictView `json:"conflicts"`
}

func FromAvailabilityView(view *queries.AvailabilityView) *AvailabilityResponse {
	var resp AvailabilityResponse
	_ = copier.Copy(&resp, view)
	return &resp
}

type MerchantStatsResponse struct {
	TotalBookings    int64   `json:"total_bookings"`
	PendingCount     int64   `json:"pending_count"`
	ConfirmedCount   int64   `json:"confirmed_count"`
	InProgressCount  int64   `json:"in_progress_count"`
	CompletedCount   int64   `json:"completed_count"`
	CancelledCount   int64   `json:"cancelled_count"`
	RejectedCount    int64   `json:"rejected_count"`
	RevenueCents     int64   `json:"revenue_cents"`
	UpcomingBookings int64   `json:"upcoming_bookings"`
	CrewRatingAvg    float64 `json:"crew_rating_avg"`
}

func FromMerchantStats(view *queries.MerchantStatsView) *MerchantStatsResponse {
	var resp MerchantStatsResponse
	_ = copier.Copy(&resp, view)
	return &resp
}

type SweepResponse struct {
	TotalExpiredFound int                     `json:"total_expired_found"`
	CancelledCount    int                     `json:"cancelled_count"`
	Cancelled         []commands.SweptBooking `json:"cancelled"`
}

func FromSweepResult(result *commands.SweepResult) *SweepResponse {
	var resp SweepResponse
	_ = copier.Copy(&resp, result)
	return &resp
}

func FromRatingView(view *queries.RatingView) *RatingResponse {
	var resp RatingResponse
	_ = copier.Copy(&resp, view)
	return &resp
}
