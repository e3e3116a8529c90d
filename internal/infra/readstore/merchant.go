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

const merchantSnapshotColumns = `id, user_id, name, status`

type MerchantReadStore struct {
	db db.DBTX
}

func NewMerchantReadStore(dbtx db.DBTX) *MerchantReadStore {
	return &MerchantReadStore{db: dbtx}
}

func (r *MerchantReadStore) Snapshot(ctx context.Context, id uuid.UUID) (*shared.MerchantSnapshot, error) {
	return r.scanOne(ctx, `SELECT `+merchantSnapshotColumns+` FROM merchants WHERE id = $1`, id)
}

func (r *MerchantReadStore) SnapshotByUserID(ctx context.Context, userID uuid.UUID) (*shared.MerchantSnapshot, error) {
	return r.scanOne(ctx, `SELECT `+merchantSnapshotColumns+` FROM merchants WHERE user_id = $1`, userID)
}

func (r *MerchantReadStore) scanOne(ctx context.Context, q string, arg any) (*shared.MerchantSnapshot, error) {
	var s shared.MerchantSnapshot
	err := r.db.QueryRow(ctx, q, arg).Scan(&s.ID, &s.UserID, &s.Name, &s.Status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, infra.WrapRepoErr("merchant not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to read merchant snapshot", err)
	}
	return &s, nil
}
