package repository

import (
	"context"
	"errors"

	"harborline/internal/domain/rating"
	"harborline/internal/infra"
	"harborline/internal/infra/db"
	"harborline/internal/pkg/pgconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

type RatingRepository struct{}

func NewRatingRepository() *RatingRepository {
	return &RatingRepository{}
}

func (r *RatingRepository) Create(ctx context.Context, dbtx db.DBTX, sr *rating.ServiceRating) error {
	const q = `
		INSERT INTO service_ratings (id, booking_id, user_id, crew_id, score, comment, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := dbtx.Exec(ctx, q,
		sr.ID(), sr.BookingID(), sr.UserID(), sr.CrewID(),
		sr.Score().Value(), pgconv.TextOrNil(sr.Comment()), sr.CreatedAt(),
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgErrCodeUniqueViolation {
			return infra.WrapRepoErr("booking already rated", err, infra.KindDuplicateKey)
		}
		return infra.WrapRepoErr("failed to create rating", err)
	}
	return nil
}

func (r *RatingRepository) ExistsForBooking(ctx context.Context, dbtx db.DBTX, bookingID uuid.UUID) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM service_ratings WHERE booking_id = $1)`

	var exists bool
	if err := dbtx.QueryRow(ctx, q, bookingID).Scan(&exists); err != nil {
		return false, infra.WrapRepoErr("failed to check rating existence", err)
	}
	return exists, nil
}
