package repository

import (
	"context"
	"errors"

	"harborline/internal/infra"
	"harborline/internal/infra/db"
	"harborline/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type CrewRepository struct{}

func NewCrewRepository() *CrewRepository {
	return &CrewRepository{}
}

func (r *CrewRepository) FindByID(ctx context.Context, dbtx db.DBTX, id uuid.UUID) (*shared.CrewSnapshot, error) {
	const q = `
		SELECT id, merchant_id, user_id, status, rating
		FROM crews
		WHERE id = $1`

	var s shared.CrewSnapshot
	err := dbtx.QueryRow(ctx, q, id).Scan(&s.ID, &s.MerchantID, &s.UserID, &s.Status, &s.RatingAvg)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, infra.WrapRepoErr("crew not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find crew", err)
	}
	return &s, nil
}

// RecalcRating recomputes the unweighted mean over all ratings ever given
// to the crew member. COALESCE keeps a crew with zero ratings at 0 rather
// than NULL.
func (r *CrewRepository) RecalcRating(ctx context.Context, dbtx db.DBTX, crewID uuid.UUID) error {
	const q = `
		UPDATE crews SET
			rating = COALESCE((
				SELECT AVG(score)::float8
				FROM service_ratings
				WHERE crew_id = $1
			), 0),
			updated_at = now()
		WHERE id = $1`

	tag, err := dbtx.Exec(ctx, q, crewID)
	if err != nil {
		return infra.WrapRepoErr("failed to recalculate crew rating", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("crew not found", nil, infra.KindNotFound)
	}
	return nil
}
