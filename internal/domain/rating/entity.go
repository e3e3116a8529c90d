package rating

import (
	"strings"
	"time"

	"harborline/internal/pkg/errs"

	"github.com/google/uuid"
)

const MaxCommentLength = 1000

var (
	ErrInvalidScore       = errs.New("score must be between 1 and 5")
	ErrCommentTooLong     = errs.New("comment exceeds maximum length")
	ErrBookingNotEligible = errs.New("booking is not eligible for rating")
	ErrAlreadyRated       = errs.New("booking has already been rated")
)

// Score is a 1-5 integer service score.
type Score struct {
	value int
}

func NewScore(value int) (Score, error) {
	if value < 1 || value > 5 {
		return Score{}, ErrInvalidScore
	}
	return Score{value: value}, nil
}

func (s Score) Value() int { return s.value }

// ServiceRating is the one-per-booking score a user leaves for the crew
// member who served a completed booking.
type ServiceRating struct {
	id        uuid.UUID
	bookingID uuid.UUID
	userID    uuid.UUID
	crewID    uuid.UUID
	score     Score
	comment   string
	createdAt time.Time
}

func NewServiceRating(bookingID, userID, crewID uuid.UUID, scoreValue int, comment string, now time.Time) (*ServiceRating, error) {
	score, err := NewScore(scoreValue)
	if err != nil {
		return nil, err
	}
	comment = strings.TrimSpace(comment)
	if len(comment) > MaxCommentLength {
		return nil, ErrCommentTooLong
	}

	return &ServiceRating{
		id:        uuid.New(),
		bookingID: bookingID,
		userID:    userID,
		crewID:    crewID,
		score:     score,
		comment:   comment,
		createdAt: now,
	}, nil
}

func ReconstructServiceRating(id, bookingID, userID, crewID uuid.UUID, scoreValue int, comment string, createdAt time.Time) *ServiceRating {
	return &ServiceRating{
		id:        id,
		bookingID: bookingID,
		userID:    userID,
		crewID:    crewID,
		score:     Score{value: scoreValue},
		comment:   comment,
		createdAt: createdAt,
	}
}

func (r *ServiceRating) ID() uuid.UUID        { return r.id }
func (r *ServiceRating) BookingID() uuid.UUID { return r.bookingID }
func (r *ServiceRating) UserID() uuid.UUID    { return r.userID }
func (r *ServiceRating) CrewID() uuid.UUID    { return r.crewID }
func (r *ServiceRating) Score() Score         { return r.score }
func (r *ServiceRating) Comment() string      { return r.comment }
func (r *ServiceRating) CreatedAt() time.Time { return r.createdAt }
