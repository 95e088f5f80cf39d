package matches

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/JeffreyG244/ai-spark-match-ideas-sub002/internal/domain/enums"
	"github.com/JeffreyG244/ai-spark-match-ideas-sub002/internal/domain/model"
	"github.com/JeffreyG244/ai-spark-match-ideas-sub002/internal/infra/metrics"
	"github.com/JeffreyG244/ai-spark-match-ideas-sub002/internal/services/ranking"
)

type profileRepoStub struct {
	mu sync.Mutex

	userPrefs   map[uuid.UUID]model.UserPreference
	profiles    []model.CandidateProfile
	matches     []model.MatchRecord
	prefErr     error
	matchesErr  error
	visibleErr  error
	candPrefErr error
	panicOn     string
	blockOnCtx  bool

	visibleCalls  int
	candPrefCalls int
	byIDsCalls    int
	batchSizes    []int
}

func newProfileRepoStub() *profileRepoStub {
	return &profileRepoStub{userPrefs: map[uuid.UUID]model.UserPreference{}}
}

func (s *profileRepoStub) GetUserPreference(ctx context.Context, userID uuid.UUID) (model.UserPreference, bool, error) {
	if s.panicOn == "preference" {
		panic("driver exploded")
	}
	if s.blockOnCtx {
		<-ctx.Done()
		return model.UserPreference{}, false, ctx.Err()
	}
	if s.prefErr != nil {
		return model.UserPreference{}, false, s.prefErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	pref, ok := s.userPrefs[userID]
	return pref, ok, nil
}

func (s *profileRepoStub) GetVisibleCandidates(_ context.Context, excludingUserID uuid.UUID) ([]model.CandidateProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.visibleCalls++
	if s.visibleErr != nil {
		return nil, s.visibleErr
	}
	out := make([]model.CandidateProfile, 0, len(s.profiles))
	for _, profile := range s.profiles {
		// Deliberately does not filter visibility so the service has to.
		if profile.UserID != excludingUserID {
			out = append(out, profile)
		}
	}
	return out, nil
}

func (s *profileRepoStub) GetCandidatePreference(_ context.Context, userID uuid.UUID) (model.UserPreference, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.candPrefCalls++
	if s.candPrefErr != nil {
		return model.UserPreference{}, false, s.candPrefErr
	}
	pref, ok := s.userPrefs[userID]
	return pref, ok, nil
}

func (s *profileRepoStub) GetCandidatePreferences(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]model.UserPreference, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.candPrefCalls++
	s.batchSizes = append(s.batchSizes, len(ids))
	if s.candPrefErr != nil {
		return nil, s.candPrefErr
	}
	out := make(map[uuid.UUID]model.UserPreference, len(ids))
	for _, id := range ids {
		if pref, ok := s.userPrefs[id]; ok {
			out[id] = pref
		}
	}
	return out, nil
}

func (s *profileRepoStub) GetAcceptedMatches(_ context.Context, userID uuid.UUID) ([]model.MatchRecord, error) {
	if s.panicOn == "matches" {
		panic("matches exploded")
	}
	if s.matchesErr != nil {
		return nil, s.matchesErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.MatchRecord, 0)
	for _, record := range s.matches {
		if record.UserA == userID || record.UserB == userID {
			out = append(out, record)
		}
	}
	return out, nil
}

func (s *profileRepoStub) GetProfilesByIDs(_ context.Context, ids []uuid.UUID) ([]model.CandidateProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byIDsCalls++
	want := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}
	out := make([]model.CandidateProfile, 0, len(ids))
	for _, profile := range s.profiles {
		if _, ok := want[profile.UserID]; ok {
			out = append(out, profile)
		}
	}
	return out, nil
}

// addUser registers a profile plus questionnaire answers. An empty seeking
// value registers the profile without a preference record.
func (s *profileRepoStub) addUser(gender enums.Gender, seeking enums.Seeking, visible bool) uuid.UUID {
	id := uuid.New()
	s.profiles = append(s.profiles, model.CandidateProfile{
		UserID:         id,
		DeclaredGender: gender,
		Visible:        visible,
		DisplayName:    "user-" + id.String()[:8],
		CreatedAt:      time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	})
	if seeking != "" {
		s.userPrefs[id] = model.UserPreference{UserID: id, DeclaredGender: gender, SeekingGender: seeking}
	}
	return id
}

type photoSignerStub struct {
	err error
}

func (s photoSignerStub) PresignGet(_ context.Context, key string, ttl time.Duration) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	if ttl != 0 {
		return "", errors.New("service should defer to the signer's default ttl")
	}
	return "https://cdn.example.test/" + key, nil
}

func fixedRanker() *ranking.Ranker {
	return ranking.NewRankerWithSource(func(int) int { return 10 })
}

func itemIDs(items []Item) map[uuid.UUID]bool {
	out := make(map[uuid.UUID]bool, len(items))
	for _, item := range items {
		out[item.Profile.UserID] = true
	}
	return out
}

func TestCandidatesDiscoveryAppliesMutualPreference(t *testing.T) {
	repo := newProfileRepoStub()
	me := repo.addUser(enums.GenderMale, enums.SeekingWomen, true)
	c1 := repo.addUser(enums.GenderFemale, enums.SeekingEveryone, true)
	c2 := repo.addUser(enums.GenderFemale, enums.SeekingMen, true)
	c3 := repo.addUser(enums.GenderFemale, enums.SeekingWomen, true)
	c4 := repo.addUser(enums.GenderMale, enums.SeekingEveryone, true)

	svc := NewService(Dependencies{Repository: repo, Ranker: fixedRanker()}, Config{})

	result, err := svc.Candidates(context.Background(), me)
	if err != nil {
		t.Fatalf("candidates: %v", err)
	}
	if result.Source != SourceDiscovery {
		t.Fatalf("unexpected source: got %q want %q", result.Source, SourceDiscovery)
	}

	got := itemIDs(result.Items)
	if len(got) != 2 || !got[c1] || !got[c2] {
		t.Fatalf("unexpected candidates: %v", got)
	}
	if got[c3] || got[c4] || got[me] {
		t.Fatalf("ineligible candidate leaked into result: %v", got)
	}
	for _, item := range result.Items {
		if !item.Compatibility.Eligible || item.Compatibility.Score != 80 {
			t.Fatalf("unexpected compatibility: %+v", item.Compatibility)
		}
		if item.Compatibility.CandidateUserID != item.Profile.UserID {
			t.Fatalf("compatibility result attached to wrong candidate")
		}
	}
}

func TestCandidatesDefaultsMissingUserPreference(t *testing.T) {
	repo := newProfileRepoStub()
	me := uuid.New()
	c3 := repo.addUser(enums.GenderMale, enums.SeekingWomen, true)
	c4 := repo.addUser(enums.GenderNonBinary, enums.SeekingNonBinary, true)

	svc := NewService(Dependencies{Repository: repo}, Config{})

	result, err := svc.Candidates(context.Background(), me)
	if err != nil {
		t.Fatalf("candidates: %v", err)
	}
	got := itemIDs(result.Items)
	if !got[c3] || !got[c4] {
		t.Fatalf("undeclared user seeking everyone should see every valid candidate: %v", got)
	}
}

func TestCandidatesNeverReturnsInvisibleProfiles(t *testing.T) {
	repo := newProfileRepoStub()
	me := repo.addUser(enums.GenderFemale, enums.SeekingEveryone, true)
	visible := repo.addUser(enums.GenderMale, enums.SeekingEveryone, true)
	hidden := repo.addUser(enums.GenderMale, enums.SeekingEveryone, false)

	svc := NewService(Dependencies{Repository: repo}, Config{})

	result, err := svc.Candidates(context.Background(), me)
	if err != nil {
		t.Fatalf("candidates: %v", err)
	}
	got := itemIDs(result.Items)
	if got[hidden] {
		t.Fatalf("invisible profile returned")
	}
	if !got[visible] {
		t.Fatalf("visible eligible profile missing")
	}
}

func TestCandidatesExcludesMissingAndInvalidPreferences(t *testing.T) {
	repo := newProfileRepoStub()
	me := repo.addUser(enums.GenderUnknown, enums.SeekingEveryone, true)
	noPref := repo.addUser(enums.GenderFemale, "", true)
	badSeeking := repo.addUser(enums.GenderFemale, enums.Seeking("whoever"), true)
	badGender := repo.addUser(enums.Gender("Lady"), enums.SeekingEveryone, true)
	ok := repo.addUser(enums.GenderFemale, enums.SeekingMen, true)

	before := testutil.ToFloat64(metrics.CandidatesExcluded.WithLabelValues(metrics.ExcludedInvalidPreference))

	svc := NewService(Dependencies{Repository: repo}, Config{})
	result, err := svc.Candidates(context.Background(), me)
	if err != nil {
		t.Fatalf("candidates: %v", err)
	}

	got := itemIDs(result.Items)
	if got[noPref] || got[badSeeking] || got[badGender] {
		t.Fatalf("candidate with missing or malformed preference returned: %v", got)
	}
	if !got[ok] {
		t.Fatalf("valid candidate missing")
	}

	after := testutil.ToFloat64(metrics.CandidatesExcluded.WithLabelValues(metrics.ExcludedInvalidPreference))
	if after-before != 2 {
		t.Fatalf("unexpected invalid preference count: got %v want 2", after-before)
	}
}

func TestCandidatesRanksAndBoundsDiscovery(t *testing.T) {
	repo := newProfileRepoStub()
	me := repo.addUser(enums.GenderMale, enums.SeekingEveryone, true)
	for i := 0; i < 12; i++ {
		repo.addUser(enums.GenderFemale, enums.SeekingEveryone, true)
	}

	svc := NewService(Dependencies{Repository: repo}, Config{})

	result, err := svc.Candidates(context.Background(), me)
	if err != nil {
		t.Fatalf("candidates: %v", err)
	}
	if len(result.Items) != 10 {
		t.Fatalf("unexpected items count: got %d want %d", len(result.Items), 10)
	}
	for i := 1; i < len(result.Items); i++ {
		if result.Items[i-1].Compatibility.Score < result.Items[i].Compatibility.Score {
			t.Fatalf("items not ordered by score at %d", i)
		}
	}
}

func TestCandidatesExistingMatchesShortCircuitDiscovery(t *testing.T) {
	repo := newProfileRepoStub()
	me := repo.addUser(enums.GenderMale, enums.SeekingWomen, true)
	older := repo.addUser(enums.GenderFemale, enums.SeekingMen, true)
	newer := repo.addUser(enums.GenderMale, enums.SeekingMen, true)
	pendingPeer := repo.addUser(enums.GenderFemale, enums.SeekingMen, true)
	repo.addUser(enums.GenderFemale, enums.SeekingEveryone, true)

	score := 91
	repo.matches = []model.MatchRecord{
		{ID: 1, UserA: me, UserB: older, Status: enums.MatchStatusAccepted, Compatibility: &score, CreatedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)},
		{ID: 2, UserA: newer, UserB: me, Status: enums.MatchStatusAccepted, CreatedAt: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)},
		{ID: 3, UserA: me, UserB: pendingPeer, Status: enums.MatchStatusPending, CreatedAt: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)},
	}

	svc := NewService(Dependencies{Repository: repo}, Config{})

	result, err := svc.Candidates(context.Background(), me)
	if err != nil {
		t.Fatalf("candidates: %v", err)
	}
	if result.Source != SourceExisting {
		t.Fatalf("unexpected source: got %q want %q", result.Source, SourceExisting)
	}
	if repo.visibleCalls != 0 || repo.candPrefCalls != 0 {
		t.Fatalf("discovery path touched: visible=%d prefs=%d", repo.visibleCalls, repo.candPrefCalls)
	}
	if len(result.Items) != 2 {
		t.Fatalf("unexpected items count: got %d want %d", len(result.Items), 2)
	}

	// The newer match wins ordering even though the predicate would reject it.
	if result.Items[0].Profile.UserID != newer || result.Items[0].MatchID != 2 {
		t.Fatalf("unexpected first item: %+v", result.Items[0])
	}
	if result.Items[0].Compatibility.Score != 75 {
		t.Fatalf("missing compatibility should default to 75, got %d", result.Items[0].Compatibility.Score)
	}
	if result.Items[1].Profile.UserID != older || result.Items[1].Compatibility.Score != 91 {
		t.Fatalf("unexpected second item: %+v", result.Items[1])
	}
}

func TestCandidatesExistingMatchesDropInvisibleProfiles(t *testing.T) {
	repo := newProfileRepoStub()
	me := repo.addUser(enums.GenderMale, enums.SeekingWomen, true)
	hidden := repo.addUser(enums.GenderFemale, enums.SeekingMen, false)
	repo.matches = []model.MatchRecord{
		{ID: 7, UserA: me, UserB: hidden, Status: enums.MatchStatusAccepted, CreatedAt: time.Now()},
	}

	svc := NewService(Dependencies{Repository: repo}, Config{})

	result, err := svc.Candidates(context.Background(), me)
	if err != nil {
		t.Fatalf("candidates: %v", err)
	}
	if result.Source != SourceExisting || len(result.Items) != 0 {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestCandidatesFailsClosedOnRepositoryErrors(t *testing.T) {
	boom := errors.New("connection refused")
	tests := []struct {
		name  string
		setup func(*profileRepoStub)
	}{
		{name: "user preference", setup: func(r *profileRepoStub) { r.prefErr = boom }},
		{name: "accepted matches", setup: func(r *profileRepoStub) { r.matchesErr = boom }},
		{name: "visible candidates", setup: func(r *profileRepoStub) { r.visibleErr = boom }},
		{name: "candidate preference", setup: func(r *profileRepoStub) { r.candPrefErr = boom }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			repo := newProfileRepoStub()
			me := repo.addUser(enums.GenderMale, enums.SeekingEveryone, true)
			repo.addUser(enums.GenderFemale, enums.SeekingEveryone, true)
			repo.addUser(enums.GenderFemale, enums.SeekingEveryone, true)
			tc.setup(repo)

			svc := NewService(Dependencies{Repository: repo}, Config{})
			result, err := svc.Candidates(context.Background(), me)
			if !errors.Is(err, ErrRepositoryUnavailable) {
				t.Fatalf("expected ErrRepositoryUnavailable, got %v", err)
			}
			if !errors.Is(err, boom) {
				t.Fatalf("expected underlying error to be preserved, got %v", err)
			}
			if result.Items == nil || len(result.Items) != 0 {
				t.Fatalf("expected empty non-nil items, got %+v", result.Items)
			}
		})
	}
}

func TestCandidatesRecoversRepositoryPanics(t *testing.T) {
	for _, where := range []string{"preference", "matches"} {
		t.Run(where, func(t *testing.T) {
			repo := newProfileRepoStub()
			me := repo.addUser(enums.GenderMale, enums.SeekingEveryone, true)
			repo.panicOn = where

			svc := NewService(Dependencies{Repository: repo}, Config{})
			result, err := svc.Candidates(context.Background(), me)
			if !errors.Is(err, ErrRepositoryUnavailable) {
				t.Fatalf("expected ErrRepositoryUnavailable, got %v", err)
			}
			if len(result.Items) != 0 {
				t.Fatalf("expected empty result, got %d items", len(result.Items))
			}
		})
	}
}

func TestCandidatesTreatsTimeoutAsRetrievalFailure(t *testing.T) {
	repo := newProfileRepoStub()
	me := repo.addUser(enums.GenderMale, enums.SeekingEveryone, true)
	repo.blockOnCtx = true

	svc := NewService(Dependencies{Repository: repo}, Config{RequestTimeout: 20 * time.Millisecond})

	result, err := svc.Candidates(context.Background(), me)
	if !errors.Is(err, ErrRepositoryUnavailable) || !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected unavailable deadline error, got %v", err)
	}
	if len(result.Items) != 0 {
		t.Fatalf("expected empty result on timeout")
	}
}

func TestCandidatesValidatesInput(t *testing.T) {
	svc := NewService(Dependencies{Repository: newProfileRepoStub()}, Config{})
	if _, err := svc.Candidates(context.Background(), uuid.Nil); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}

	bare := NewService(Dependencies{}, Config{})
	if _, err := bare.Candidates(context.Background(), uuid.New()); !errors.Is(err, ErrRepositoryUnavailable) {
		t.Fatalf("expected ErrRepositoryUnavailable without repository, got %v", err)
	}
}

func TestCandidatesSignsPhotoKeys(t *testing.T) {
	repo := newProfileRepoStub()
	me := repo.addUser(enums.GenderMale, enums.SeekingWomen, true)
	her := repo.addUser(enums.GenderFemale, enums.SeekingMen, true)
	for i := range repo.profiles {
		if repo.profiles[i].UserID == her {
			repo.profiles[i].PhotoURLs = []string{"photos/a.jpg", "https://img.example.test/b.jpg", " "}
		}
	}

	svc := NewService(Dependencies{Repository: repo, PhotoSigner: photoSignerStub{}}, Config{})
	result, err := svc.Candidates(context.Background(), me)
	if err != nil {
		t.Fatalf("candidates: %v", err)
	}
	if len(result.Items) != 1 {
		t.Fatalf("unexpected items count: %d", len(result.Items))
	}
	photos := result.Items[0].Profile.PhotoURLs
	if len(photos) != 2 {
		t.Fatalf("unexpected photos: %v", photos)
	}
	if photos[0] != "https://cdn.example.test/photos/a.jpg" || photos[1] != "https://img.example.test/b.jpg" {
		t.Fatalf("unexpected photo urls: %v", photos)
	}

	unsigned := NewService(Dependencies{Repository: repo, PhotoSigner: photoSignerStub{err: errors.New("s3 down")}}, Config{})
	result, err = unsigned.Candidates(context.Background(), me)
	if err != nil {
		t.Fatalf("candidates: %v", err)
	}
	if photos := result.Items[0].Profile.PhotoURLs; len(photos) != 1 || photos[0] != "https://img.example.test/b.jpg" {
		t.Fatalf("signing failure should only drop stored keys: %v", photos)
	}
}

func TestCandidatesLoadsCandidatePreferencesInOneBatch(t *testing.T) {
	repo := newProfileRepoStub()
	me := repo.addUser(enums.GenderMale, enums.SeekingEveryone, true)
	for i := 0; i < 25; i++ {
		repo.addUser(enums.GenderFemale, enums.SeekingEveryone, true)
	}
	repo.addUser(enums.GenderFemale, enums.SeekingEveryone, false)

	svc := NewService(Dependencies{Repository: repo}, Config{})
	if _, err := svc.Candidates(context.Background(), me); err != nil {
		t.Fatalf("candidates: %v", err)
	}
	if repo.candPrefCalls != 1 {
		t.Fatalf("unexpected candidate preference lookups: got %d want %d", repo.candPrefCalls, 1)
	}
	if len(repo.batchSizes) != 1 || repo.batchSizes[0] != 25 {
		t.Fatalf("unexpected batch sizes: %v", repo.batchSizes)
	}
}

func TestCandidatesExcludesBlankSeekingValue(t *testing.T) {
	repo := newProfileRepoStub()
	me := repo.addUser(enums.GenderMale, enums.SeekingWomen, true)
	blank := repo.addUser(enums.GenderFemale, enums.SeekingEveryone, true)
	repo.userPrefs[blank] = model.UserPreference{UserID: blank, DeclaredGender: enums.GenderFemale, SeekingGender: ""}

	svc := NewService(Dependencies{Repository: repo}, Config{})
	result, err := svc.Candidates(context.Background(), me)
	if err != nil {
		t.Fatalf("candidates: %v", err)
	}
	if itemIDs(result.Items)[blank] {
		t.Fatalf("candidate with blank seeking value treated as seeking everyone")
	}
}

func TestCandidatesSkipsPreferenceLookupWithoutVisibleCandidates(t *testing.T) {
	repo := newProfileRepoStub()
	me := repo.addUser(enums.GenderMale, enums.SeekingEveryone, true)
	repo.addUser(enums.GenderFemale, enums.SeekingEveryone, false)

	svc := NewService(Dependencies{Repository: repo}, Config{})
	result, err := svc.Candidates(context.Background(), me)
	if err != nil {
		t.Fatalf("candidates: %v", err)
	}
	if result.Source != SourceDiscovery || result.Items == nil || len(result.Items) != 0 {
		t.Fatalf("unexpected result: %+v", result)
	}
	if repo.candPrefCalls != 0 {
		t.Fatalf("unexpected candidate preference lookups: %d", repo.candPrefCalls)
	}
}
