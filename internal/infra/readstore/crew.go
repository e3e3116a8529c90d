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

const crewSnapshotColumns = `id, merchant_id, user_id, status, rating`

type CrewReadStore struct {
	db db.DBTX
}

func NewCrewReadStore(dbtx db.DBTX) *CrewReadStore {
	return &CrewReadStore{db: dbtx}
}

func (r *CrewReadStore) Snapshot(ctx context.Context, id uuid.UUID) (*shared.CrewSnapshot, error) {
	return r.scanOne(ctx, `SELECT `+crewSnapshotColumns+` FROM crews WHERE id = $1`, id)
}

// SnapshotByUserID resolves the crew record behind a crew-role login.
func (r *CrewReadStore) SnapshotByUserID(ctx context.Context, userID uuid.UUID) (*shared.CrewSnapshot, error) {
	return r.scanOne(ctx, `SELECT `+crewSnapshotColumns+` FROM crews WHERE user_id = $1`, userID)
}

func (r *CrewReadStore) scanOne(ctx context.Context, q string, arg any) (*shared.CrewSnapshot, error) {
	var s shared.CrewSnapshot
	err := r.db.QueryRow(ctx, q, arg).Scan(&s.ID, &s.MerchantID, &s.UserID, &s.Status, &s.RatingAvg)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, infra.WrapRepoErr("crew not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to read crew snapshot", err)
	}
	return &s, nil
}
