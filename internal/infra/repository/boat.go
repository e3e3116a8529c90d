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

type BoatRepository struct{}

func NewBoatRepository() *BoatRepository {
	return &BoatRepository{}
}

func (r *BoatRepository) FindByID(ctx context.Context, dbtx db.DBTX, id uuid.UUID) (*shared.BoatSnapshot, error) {
	const q = `
		SELECT id, merchant_id, name, capacity, hourly_rate_cents, status
		FROM boats
		WHERE id = $1`

	var s shared.BoatSnapshot
	err := dbtx.QueryRow(ctx, q, id).Scan(
		&s.ID, &s.MerchantID, &s.Name, &s.Capacity, &s.HourlyRateCents, &s.Status,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, infra.WrapRepoErr("boat not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find boat", err)
	}
	return &s, nil
}

func (r *BoatRepository) UpdateStatus(ctx context.Context, dbtx db.DBTX, boatID uuid.UUID, status shared.BoatStatus) error {
	const q = `UPDATE boats SET status = $2, updated_at = now() WHERE id = $1`

	tag, err := dbtx.Exec(ctx, q, boatID, string(status))
	if err != nil {
		return infra.WrapRepoErr("failed to update boat status", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("boat not found", nil, infra.KindNotFound)
	}
	return nil
}
