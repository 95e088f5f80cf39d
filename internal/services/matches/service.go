package matches

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/JeffreyG244/ai-spark-match-ideas-sub002/internal/domain/enums"
	"github.com/JeffreyG244/ai-spark-match-ideas-sub002/internal/domain/model"
	"github.com/JeffreyG244/ai-spark-match-ideas-sub002/internal/domain/rules"
	"github.com/JeffreyG244/ai-spark-match-ideas-sub002/internal/infra/metrics"
	"github.com/JeffreyG244/ai-spark-match-ideas-sub002/internal/services/ranking"
)

const defaultRequestTimeout = 5 * time.Second

var (
	ErrValidation            = errors.New("validation error")
	ErrNotFound              = errors.New("not found")
	ErrRepositoryUnavailable = errors.New("repository unavailable")
	ErrInvalidPreferenceData = errors.New("invalid preference data")
)

// Repository is the read side of the profile store. The bool results report
// whether a preference record exists at all; GetCandidatePreferences omits
// users without one.
type Repository interface {
	GetUserPreference(ctx context.Context, userID uuid.UUID) (model.UserPreference, bool, error)
	GetVisibleCandidates(ctx context.Context, excludingUserID uuid.UUID) ([]model.CandidateProfile, error)
	GetCandidatePreference(ctx context.Context, userID uuid.UUID) (model.UserPreference, bool, error)
	GetCandidatePreferences(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]model.UserPreference, error)
	GetAcceptedMatches(ctx context.Context, userID uuid.UUID) ([]model.MatchRecord, error)
	GetProfilesByIDs(ctx context.Context, ids []uuid.UUID) ([]model.CandidateProfile, error)
}

type PhotoURLSigner interface {
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
}

type Config struct {
	ResultLimit    int
	RequestTimeout time.Duration
}

type Dependencies struct {
	Repository  Repository
	Ranker      *ranking.Ranker
	PhotoSigner PhotoURLSigner
	Logger      *zap.Logger
}

type Source string

const (
	SourceExisting  Source = "existing"
	SourceDiscovery Source = "discovery"
)

type Item struct {
	Profile       model.CandidateProfile
	Compatibility model.CompatibilityResult
	MatchID       int64
}

type Result struct {
	Source Source
	Items  []Item
}

type Service struct {
	repo      Repository
	ranker    *ranking.Ranker
	photoSign PhotoURLSigner
	log       *zap.Logger
	cfg       Config
	now       func() time.Time
}

func NewService(deps Dependencies, cfg Config) *Service {
	if cfg.ResultLimit <= 0 {
		cfg.ResultLimit = ranking.DefaultLimit
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = defaultRequestTimeout
	}
	ranker := deps.Ranker
	if ranker == nil {
		ranker = ranking.NewRanker()
	}
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return &Service{
		repo:      deps.Repository,
		ranker:    ranker,
		photoSign: deps.PhotoSigner,
		log:       log,
		cfg:       cfg,
		now:       time.Now,
	}
}

// Candidates returns the user's accepted matches when any exist, otherwise
// the ranked discovery set. On any retrieval failure the result is empty and
// the error wraps ErrRepositoryUnavailable; there is no unfiltered fallback.
func (s *Service) Candidates(ctx context.Context, userID uuid.UUID) (result Result, err error) {
	if userID == uuid.Nil {
		return emptyResult(), ErrValidation
	}
	if s.repo == nil {
		return emptyResult(), fmt.Errorf("%w: profile repository is nil", ErrRepositoryUnavailable)
	}

	start := s.now()
	ctx, cancel := context.WithTimeout(ctx, s.cfg.RequestTimeout)
	defer cancel()
	defer func() {
		if rec := recover(); rec != nil {
			result, err = emptyResult(), fmt.Errorf("%w: panic: %v", ErrRepositoryUnavailable, rec)
		}
		if err != nil {
			s.log.Warn("candidate retrieval failed", zap.String("user_id", userID.String()), zap.Error(err))
		}
		s.observe(result, err, start)
	}()

	var (
		pref     model.UserPreference
		hasPref  bool
		accepted []model.MatchRecord
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(guard(func() error {
		p, ok, err := s.repo.GetUserPreference(gctx, userID)
		if err != nil {
			return fmt.Errorf("load user preference: %w", err)
		}
		pref, hasPref = p, ok
		return nil
	}))
	g.Go(guard(func() error {
		records, err := s.repo.GetAcceptedMatches(gctx, userID)
		if err != nil {
			return fmt.Errorf("load accepted matches: %w", err)
		}
		accepted = records
		return nil
	}))
	if err := g.Wait(); err != nil {
		return emptyResult(), unavailable(ctx, err)
	}

	if !hasPref {
		pref = model.DefaultPreference(userID)
	}
	pref.UserID = userID

	if records := onlyAccepted(accepted, userID); len(records) > 0 {
		result, err = s.fromExistingMatches(ctx, userID, records)
	} else {
		result, err = s.discover(ctx, pref)
	}
	if err != nil {
		return emptyResult(), unavailable(ctx, err)
	}
	return result, nil
}

func (s *Service) fromExistingMatches(ctx context.Context, userID uuid.UUID, records []model.MatchRecord) (Result, error) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})

	ids := make([]uuid.UUID, 0, len(records))
	byUser := make(map[uuid.UUID]model.MatchRecord, len(records))
	for _, record := range records {
		other, _ := record.OtherParty(userID)
		if _, seen := byUser[other]; seen {
			continue
		}
		byUser[other] = record
		ids = append(ids, other)
	}

	profiles, err := s.repo.GetProfilesByIDs(ctx, ids)
	if err != nil {
		return Result{}, fmt.Errorf("load matched profiles: %w", err)
	}
	profileByID := make(map[uuid.UUID]model.CandidateProfile, len(profiles))
	for _, profile := range profiles {
		profileByID[profile.UserID] = profile
	}

	items := make([]Item, 0, len(ids))
	for _, id := range ids {
		profile, ok := profileByID[id]
		if !ok {
			continue
		}
		if !profile.Visible {
			metrics.CandidatesExcluded.WithLabelValues(metrics.ExcludedInvisible).Inc()
			continue
		}
		record := byUser[id]
		items = append(items, Item{
			Profile: s.presentProfile(ctx, profile),
			Compatibility: model.CompatibilityResult{
				CandidateUserID: id,
				Score:           ranking.AuthoritativeScore(record.Compatibility),
				Eligible:        true,
			},
			MatchID: record.ID,
		})
	}

	return Result{Source: SourceExisting, Items: items}, nil
}

func (s *Service) discover(ctx context.Context, pref model.UserPreference) (Result, error) {
	candidates, err := s.repo.GetVisibleCandidates(ctx, pref.UserID)
	if err != nil {
		return Result{}, fmt.Errorf("load visible candidates: %w", err)
	}

	visible := make([]model.CandidateProfile, 0, len(candidates))
	ids := make([]uuid.UUID, 0, len(candidates))
	for _, candidate := range candidates {
		if candidate.UserID == pref.UserID {
			continue
		}
		if !candidate.Visible {
			metrics.CandidatesExcluded.WithLabelValues(metrics.ExcludedInvisible).Inc()
			continue
		}
		visible = append(visible, candidate)
		ids = append(ids, candidate.UserID)
	}
	if len(visible) == 0 {
		return Result{Source: SourceDiscovery, Items: []Item{}}, nil
	}

	prefs, err := s.repo.GetCandidatePreferences(ctx, ids)
	if err != nil {
		return Result{}, fmt.Errorf("load candidate preferences: %w", err)
	}

	entries := make([]ranking.Entry, 0, len(visible))
	for _, candidate := range visible {
		candidatePref, ok := prefs[candidate.UserID]
		if !ok {
			metrics.CandidatesExcluded.WithLabelValues(metrics.ExcludedNoPreference).Inc()
			continue
		}

		subject := model.UserPreference{
			UserID:         candidate.UserID,
			DeclaredGender: candidate.DeclaredGender,
			SeekingGender:  candidatePref.SeekingGender,
		}
		if err := validatePreference(subject); err != nil {
			metrics.CandidatesExcluded.WithLabelValues(metrics.ExcludedInvalidPreference).Inc()
			s.log.Debug("candidate excluded",
				zap.String("candidate_user_id", candidate.UserID.String()),
				zap.Error(err),
			)
			continue
		}
		if !rules.Eligible(pref, subject) {
			metrics.CandidatesExcluded.WithLabelValues(metrics.ExcludedIneligible).Inc()
			continue
		}

		candidate.SeekingGender = subject.SeekingGender
		entries = append(entries, ranking.Entry{Profile: candidate})
	}

	ranked := s.ranker.Rank(entries, s.cfg.ResultLimit)
	items := make([]Item, 0, len(ranked))
	for _, entry := range ranked {
		items = append(items, Item{
			Profile: s.presentProfile(ctx, entry.Profile),
			Compatibility: model.CompatibilityResult{
				CandidateUserID: entry.Profile.UserID,
				Score:           entry.Score,
				Eligible:        true,
			},
		})
	}

	return Result{Source: SourceDiscovery, Items: items}, nil
}

func (s *Service) observe(result Result, err error, start time.Time) {
	source := string(result.Source)
	if err != nil {
		source = metrics.SourceFailed
	}
	metrics.CandidateRequests.WithLabelValues(source).Inc()
	metrics.CandidatesReturned.Observe(float64(len(result.Items)))
	metrics.CandidateLatency.Observe(s.now().Sub(start).Seconds())
}

func validatePreference(pref model.UserPreference) error {
	if !pref.DeclaredGender.Valid() {
		return fmt.Errorf("%w: declared gender %q", ErrInvalidPreferenceData, pref.DeclaredGender)
	}
	if !pref.SeekingGender.Valid() {
		return fmt.Errorf("%w: seeking gender %q", ErrInvalidPreferenceData, pref.SeekingGender)
	}
	return nil
}

func onlyAccepted(records []model.MatchRecord, userID uuid.UUID) []model.MatchRecord {
	out := make([]model.MatchRecord, 0, len(records))
	for _, record := range records {
		if record.Status != enums.MatchStatusAccepted {
			continue
		}
		if other, ok := record.OtherParty(userID); !ok || other == userID || other == uuid.Nil {
			continue
		}
		out = append(out, record)
	}
	return out
}

func unavailable(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil && !errors.Is(err, ctxErr) {
		err = fmt.Errorf("%w (%v)", err, ctxErr)
	}
	return fmt.Errorf("%w: %w", ErrRepositoryUnavailable, err)
}

// guard turns a panic inside an errgroup goroutine into an error so it
// cannot escape the service.
func guard(fn func() error) func() error {
	return func() (err error) {
		defer func() {
			if rec := recover(); rec != nil {
				err = fmt.Errorf("panic: %v", rec)
			}
		}()
		return fn()
	}
}

func emptyResult() Result {
	return Result{Items: []Item{}}
}
