package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/JeffreyG244/ai-spark-match-ideas-sub002/internal/domain/enums"
	"github.com/JeffreyG244/ai-spark-match-ideas-sub002/internal/domain/model"
	"github.com/JeffreyG244/ai-spark-match-ideas-sub002/internal/infra/metrics"
	matchessvc "github.com/JeffreyG244/ai-spark-match-ideas-sub002/internal/services/matches"
)

const (
	preferencePrefix         = "pref:"
	defaultPreferenceTTL     = 5 * time.Minute
	preferenceFieldGender    = "gender"
	preferenceFieldSeeking   = "seeking"
	preferenceFieldAbsent    = "absent"
	preferenceAbsentMarkerOn = "1"
)

// CachedPreferences caches questionnaire lookups in front of a repository.
// Both single and batched preference lookups are cached; every other
// Repository method passes through unchanged. Redis failures
// never fail a lookup: reads fall through to the wrapped repository and
// writes are dropped.
type CachedPreferences struct {
	matchessvc.Repository

	client *goredis.Client
	ttl    time.Duration
	log    *zap.Logger
}

func NewCachedPreferences(next matchessvc.Repository, client *goredis.Client, ttl time.Duration, log *zap.Logger) *CachedPreferences {
	if ttl <= 0 {
		ttl = defaultPreferenceTTL
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &CachedPreferences{
		Repository: next,
		client:     client,
		ttl:        ttl,
		log:        log,
	}
}

func (c *CachedPreferences) GetUserPreference(ctx context.Context, userID uuid.UUID) (model.UserPreference, bool, error) {
	return c.lookup(ctx, userID, c.Repository.GetUserPreference)
}

func (c *CachedPreferences) GetCandidatePreference(ctx context.Context, userID uuid.UUID) (model.UserPreference, bool, error) {
	return c.lookup(ctx, userID, c.Repository.GetCandidatePreference)
}

// Invalidate drops cached answers, e.g. after a questionnaire update.
func (c *CachedPreferences) Invalidate(ctx context.Context, userIDs ...uuid.UUID) error {
	if c.client == nil || len(userIDs) == 0 {
		return nil
	}

	keys := make([]string, 0, len(userIDs))
	for _, id := range userIDs {
		keys = append(keys, preferenceKey(id))
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("invalidate preference cache: %w", err)
	}
	return nil
}

type preferenceLoader func(ctx context.Context, userID uuid.UUID) (model.UserPreference, bool, error)

func (c *CachedPreferences) lookup(ctx context.Context, userID uuid.UUID, load preferenceLoader) (model.UserPreference, bool, error) {
	if c.Repository == nil {
		return model.UserPreference{}, false, fmt.Errorf("preference repository is nil")
	}
	if c.client == nil {
		return load(ctx, userID)
	}

	pref, found, hit, err := c.read(ctx, userID)
	switch {
	case err != nil:
		metrics.PreferenceCacheLookups.WithLabelValues("error").Inc()
		c.log.Debug("preference cache read failed", zap.String("user_id", userID.String()), zap.Error(err))
	case hit:
		metrics.PreferenceCacheLookups.WithLabelValues("hit").Inc()
		return pref, found, nil
	default:
		metrics.PreferenceCacheLookups.WithLabelValues("miss").Inc()
	}

	pref, found, err = load(ctx, userID)
	if err != nil {
		return model.UserPreference{}, false, err
	}
	if err := c.write(ctx, userID, pref, found); err != nil {
		c.log.Debug("preference cache write failed", zap.String("user_id", userID.String()), zap.Error(err))
	}
	return pref, found, nil
}

// GetCandidatePreferences serves what it can from Redis in one pipeline and
// loads the remaining ids from the wrapped repository in a single batch.
func (c *CachedPreferences) GetCandidatePreferences(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]model.UserPreference, error) {
	if c.Repository == nil {
		return nil, fmt.Errorf("preference repository is nil")
	}
	if c.client == nil || len(ids) == 0 {
		return c.Repository.GetCandidatePreferences(ctx, ids)
	}

	out := make(map[uuid.UUID]model.UserPreference, len(ids))
	misses := c.readMany(ctx, ids, out)
	if len(misses) == 0 {
		return out, nil
	}

	loaded, err := c.Repository.GetCandidatePreferences(ctx, misses)
	if err != nil {
		return nil, err
	}

	pipe := c.client.Pipeline()
	for _, id := range misses {
		pref, found := loaded[id]
		if found {
			out[id] = pref
		}
		queueWrite(ctx, pipe, id, pref, found, c.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		c.log.Debug("preference cache batch write failed", zap.Int("keys", len(misses)), zap.Error(err))
	}
	return out, nil
}

// readMany fills out with cached answers and returns the ids that missed.
// A pipeline failure counts every id as a miss.
func (c *CachedPreferences) readMany(ctx context.Context, ids []uuid.UUID, out map[uuid.UUID]model.UserPreference) []uuid.UUID {
	pipe := c.client.Pipeline()
	cmds := make([]*goredis.MapStringStringCmd, 0, len(ids))
	for _, id := range ids {
		cmds = append(cmds, pipe.HGetAll(ctx, preferenceKey(id)))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		metrics.PreferenceCacheLookups.WithLabelValues("error").Add(float64(len(ids)))
		c.log.Debug("preference cache batch read failed", zap.Int("keys", len(ids)), zap.Error(err))
		return ids
	}

	misses := make([]uuid.UUID, 0)
	for i, id := range ids {
		pref, found, hit := decodePreference(id, cmds[i].Val())
		if !hit {
			metrics.PreferenceCacheLookups.WithLabelValues("miss").Inc()
			misses = append(misses, id)
			continue
		}
		metrics.PreferenceCacheLookups.WithLabelValues("hit").Inc()
		if found {
			out[id] = pref
		}
	}
	return misses
}

func (c *CachedPreferences) read(ctx context.Context, userID uuid.UUID) (model.UserPreference, bool, bool, error) {
	values, err := c.client.HGetAll(ctx, preferenceKey(userID)).Result()
	if err != nil {
		return model.UserPreference{}, false, false, fmt.Errorf("get preference hash: %w", err)
	}
	pref, found, hit := decodePreference(userID, values)
	return pref, found, hit, nil
}

func decodePreference(userID uuid.UUID, values map[string]string) (pref model.UserPreference, found, hit bool) {
	if len(values) == 0 {
		return model.UserPreference{}, false, false
	}
	if values[preferenceFieldAbsent] == preferenceAbsentMarkerOn {
		return model.UserPreference{}, false, true
	}

	return model.UserPreference{
		UserID:         userID,
		DeclaredGender: enums.Gender(values[preferenceFieldGender]),
		SeekingGender:  enums.Seeking(values[preferenceFieldSeeking]),
	}, true, true
}

func (c *CachedPreferences) write(ctx context.Context, userID uuid.UUID, pref model.UserPreference, found bool) error {
	pipe := c.client.TxPipeline()
	queueWrite(ctx, pipe, userID, pref, found, c.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("write preference hash: %w", err)
	}
	return nil
}

func queueWrite(ctx context.Context, pipe goredis.Pipeliner, userID uuid.UUID, pref model.UserPreference, found bool, ttl time.Duration) {
	fields := map[string]interface{}{
		preferenceFieldAbsent: preferenceAbsentMarkerOn,
	}
	if found {
		fields = map[string]interface{}{
			preferenceFieldGender:  string(pref.DeclaredGender),
			preferenceFieldSeeking: string(pref.SeekingGender),
		}
	}

	key := preferenceKey(userID)
	pipe.Del(ctx, key)
	pipe.HSet(ctx, key, fields)
	pipe.Expire(ctx, key, ttl)
}

func preferenceKey(userID uuid.UUID) string {
	return preferencePrefix + userID.String()
}
