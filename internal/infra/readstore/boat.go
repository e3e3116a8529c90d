package readstore

import (
	"context"
	"errors"

	"harborline/internal/infra"
	"harborline/internal/infra/db"
	"harborline/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type BoatReadStore struct {
	db db.DBTX
}

func NewBoatReadStore(dbtx db.DBTX) *BoatReadStore {
	return &BoatReadStore{db: dbtx}
}

func (r *BoatReadStore) Snapshot(ctx context.Context, id uuid.UUID) (*shared.BoatSnapshot, error) {
	const q = `
		SELECT id, merchant_id, name, capacity, hourly_rate_cents, status
		FROM boats
		WHERE id = $1`

	var s shared.BoatSnapshot
	err := r.db.QueryRow(ctx, q, id).Scan(
		&s.ID, &s.MerchantID, &s.Name, &s.Capacity, &s.HourlyRateCents, &s.Status,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, infra.WrapRepoErr("boat not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to read boat snapshot", err)
	}
	return &s, nil
}
