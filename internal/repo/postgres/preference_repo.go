package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JeffreyG244/ai-spark-match-ideas-sub002/internal/domain/enums"
	"github.com/JeffreyG244/ai-spark-match-ideas-sub002/internal/domain/model"
)

// PreferenceRepo serves the read side of candidate matching: questionnaire
// answers, discoverable profiles and accepted matches.
type PreferenceRepo struct {
	pool *pgxpool.Pool
}

func NewPreferenceRepo(pool *pgxpool.Pool) *PreferenceRepo {
	return &PreferenceRepo{pool: pool}
}

const profileColumns = `
	p.user_id,
	COALESCE(pr.gender, p.gender, ''),
	COALESCE(pr.seeking_gender, ''),
	p.visible,
	p.display_name,
	COALESCE(DATE_PART('year', AGE(NOW(), p.birthdate::timestamp))::int, 0),
	p.bio,
	p.photo_keys,
	p.created_at
`

func (r *PreferenceRepo) GetUserPreference(ctx context.Context, userID uuid.UUID) (model.UserPreference, bool, error) {
	return r.getPreference(ctx, userID)
}

func (r *PreferenceRepo) GetCandidatePreference(ctx context.Context, userID uuid.UUID) (model.UserPreference, bool, error) {
	return r.getPreference(ctx, userID)
}

// A preference row whose seeking value is NULL or blank counts as absent, so
// an unanswered questionnaire never reads as "everyone".
func (r *PreferenceRepo) getPreference(ctx context.Context, userID uuid.UUID) (model.UserPreference, bool, error) {
	if userID == uuid.Nil {
		return model.UserPreference{}, false, fmt.Errorf("invalid user id")
	}
	if r.pool == nil {
		return model.UserPreference{}, false, ErrPoolUnavailable
	}

	var (
		gender  string
		seeking *string
	)
	err := r.pool.QueryRow(ctx, `
SELECT
	COALESCE(pr.gender, p.gender, ''),
	NULLIF(BTRIM(pr.seeking_gender), '')
FROM preferences pr
LEFT JOIN profiles p ON p.user_id = pr.user_id
WHERE pr.user_id = $1
LIMIT 1
`, userID.String()).Scan(&gender, &seeking)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.UserPreference{}, false, nil
		}
		return model.UserPreference{}, false, fmt.Errorf("get preference: %w", err)
	}
	if seeking == nil {
		return model.UserPreference{}, false, nil
	}

	return parsePreference(userID, gender, *seeking), true, nil
}

// GetCandidatePreferences loads answered questionnaires for ids in one query.
// Users without a row, or with no seeking value, are absent from the map.
func (r *PreferenceRepo) GetCandidatePreferences(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]model.UserPreference, error) {
	out := make(map[uuid.UUID]model.UserPreference, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	if r.pool == nil {
		return nil, ErrPoolUnavailable
	}

	raw := make([]string, 0, len(ids))
	for _, id := range ids {
		raw = append(raw, id.String())
	}

	rows, err := r.pool.Query(ctx, `
SELECT
	pr.user_id,
	COALESCE(pr.gender, p.gender, ''),
	BTRIM(pr.seeking_gender)
FROM preferences pr
LEFT JOIN profiles p ON p.user_id = pr.user_id
WHERE
	pr.user_id = ANY($1::uuid[])
	AND NULLIF(BTRIM(pr.seeking_gender), '') IS NOT NULL
`, raw)
	if err != nil {
		return nil, fmt.Errorf("list candidate preferences: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			userID          uuid.UUID
			gender, seeking string
		)
		if err := rows.Scan(&userID, &gender, &seeking); err != nil {
			return nil, fmt.Errorf("scan candidate preference: %w", err)
		}
		out[userID] = parsePreference(userID, gender, seeking)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate candidate preferences: %w", rows.Err())
	}

	return out, nil
}

// parsePreference keeps unparseable values verbatim so the service rejects
// them instead of coercing them to a default.
func parsePreference(userID uuid.UUID, gender, seeking string) model.UserPreference {
	declared, _ := enums.ParseGender(gender)
	wants, _ := enums.ParseSeeking(seeking)
	return model.UserPreference{
		UserID:         userID,
		DeclaredGender: declared,
		SeekingGender:  wants,
	}
}

func (r *PreferenceRepo) GetVisibleCandidates(ctx context.Context, excludingUserID uuid.UUID) ([]model.CandidateProfile, error) {
	if r.pool == nil {
		return nil, ErrPoolUnavailable
	}

	rows, err := r.pool.Query(ctx, `
SELECT`+profileColumns+`
FROM profiles p
LEFT JOIN preferences pr ON pr.user_id = p.user_id
WHERE
	p.visible = TRUE
	AND p.user_id <> $1
ORDER BY p.created_at DESC, p.user_id
`, excludingUserID.String())
	if err != nil {
		return nil, fmt.Errorf("list visible candidates: %w", err)
	}
	defer rows.Close()

	return scanProfiles(rows, "visible candidate")
}

func (r *PreferenceRepo) GetProfilesByIDs(ctx context.Context, ids []uuid.UUID) ([]model.CandidateProfile, error) {
	if len(ids) == 0 {
		return []model.CandidateProfile{}, nil
	}
	if r.pool == nil {
		return nil, ErrPoolUnavailable
	}

	raw := make([]string, 0, len(ids))
	for _, id := range ids {
		raw = append(raw, id.String())
	}

	rows, err := r.pool.Query(ctx, `
SELECT`+profileColumns+`
FROM profiles p
LEFT JOIN preferences pr ON pr.user_id = p.user_id
WHERE p.user_id = ANY($1::uuid[])
`, raw)
	if err != nil {
		return nil, fmt.Errorf("list profiles by ids: %w", err)
	}
	defer rows.Close()

	return scanProfiles(rows, "profile")
}

func (r *PreferenceRepo) GetAcceptedMatches(ctx context.Context, userID uuid.UUID) ([]model.MatchRecord, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("invalid user id")
	}
	if r.pool == nil {
		return nil, ErrPoolUnavailable
	}

	rows, err := r.pool.Query(ctx, `
SELECT
	m.id,
	m.user_a_id,
	m.user_b_id,
	m.status,
	m.compatibility,
	m.created_at
FROM matches m
WHERE
	(m.user_a_id = $1 OR m.user_b_id = $1)
	AND m.status = 'accepted'
ORDER BY m.created_at DESC, m.id DESC
`, userID.String())
	if err != nil {
		return nil, fmt.Errorf("list accepted matches: %w", err)
	}
	defer rows.Close()

	items := make([]model.MatchRecord, 0)
	for rows.Next() {
		var (
			item   model.MatchRecord
			status string
		)
		if err := rows.Scan(
			&item.ID,
			&item.UserA,
			&item.UserB,
			&status,
			&item.Compatibility,
			&item.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan accepted match: %w", err)
		}
		item.Status = enums.MatchStatus(status)
		items = append(items, item)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate accepted matches: %w", rows.Err())
	}

	return items, nil
}

func scanProfiles(rows pgx.Rows, what string) ([]model.CandidateProfile, error) {
	items := make([]model.CandidateProfile, 0)
	for rows.Next() {
		var (
			item      model.CandidateProfile
			gender    string
			seeking   string
			createdAt time.Time
		)
		if err := rows.Scan(
			&item.UserID,
			&gender,
			&seeking,
			&item.Visible,
			&item.DisplayName,
			&item.AgeYears,
			&item.Bio,
			&item.PhotoURLs,
			&createdAt,
		); err != nil {
			return nil, fmt.Errorf("scan %s: %w", what, err)
		}
		// Unparseable values are kept verbatim so the service can reject them.
		item.DeclaredGender, _ = enums.ParseGender(gender)
		item.SeekingGender, _ = enums.ParseSeeking(seeking)
		item.CreatedAt = createdAt.UTC()
		items = append(items, item)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate %ss: %w", what, rows.Err())
	}

	return items, nil
}
