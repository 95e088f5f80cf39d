package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/JeffreyG244/ai-spark-match-ideas-sub002/internal/domain/model"
)

var ErrProfileNotFound = errors.New("profile not found")

// SavePreference stores questionnaire answers and mirrors the declared gender
// onto the profile row in one transaction.
func (r *PreferenceRepo) SavePreference(ctx context.Context, pref model.UserPreference) error {
	if !pref.Valid() {
		return fmt.Errorf("invalid preference for user %s", pref.UserID)
	}
	if r.pool == nil {
		return ErrPoolUnavailable
	}

	return inTx(ctx, r.pool, pgx.TxOptions{IsoLevel: pgx.ReadCommitted}, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
UPDATE profiles
SET gender = $2, updated_at = NOW()
WHERE user_id = $1
`, pref.UserID.String(), string(pref.DeclaredGender))
		if err != nil {
			return fmt.Errorf("update profile gender: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return ErrProfileNotFound
		}

		if _, err := tx.Exec(ctx, `
INSERT INTO preferences (user_id, gender, seeking_gender, updated_at)
VALUES ($1, $2, $3, NOW())
ON CONFLICT (user_id) DO UPDATE
SET gender = EXCLUDED.gender,
	seeking_gender = EXCLUDED.seeking_gender,
	updated_at = NOW()
`, pref.UserID.String(), string(pref.DeclaredGender), string(pref.SeekingGender)); err != nil {
			return fmt.Errorf("upsert preference: %w", err)
		}
		return nil
	})
}
