package matches

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/JeffreyG244/ai-spark-match-ideas-sub002/internal/domain/model"
	"github.com/JeffreyG244/ai-spark-match-ideas-sub002/internal/domain/rules"
)

type Explanation struct {
	UserID              uuid.UUID
	CandidateUserID     uuid.UUID
	UserPreference      model.UserPreference
	UserDefaulted       bool
	CandidatePreference *model.UserPreference
	Visible             bool
	ValidPreference     bool
	Halves              rules.Halves
	Eligible            bool
}

// Explain evaluates a single pair the same way the discovery path would and
// reports which part of the test excluded the candidate, if any. Hidden
// profiles are reported as ErrNotFound.
func (s *Service) Explain(ctx context.Context, userID, candidateID uuid.UUID) (Explanation, error) {
	if userID == uuid.Nil || candidateID == uuid.Nil || userID == candidateID {
		return Explanation{}, ErrValidation
	}
	if s.repo == nil {
		return Explanation{}, fmt.Errorf("%w: profile repository is nil", ErrRepositoryUnavailable)
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.RequestTimeout)
	defer cancel()

	pref, ok, err := s.repo.GetUserPreference(ctx, userID)
	if err != nil {
		return Explanation{}, unavailable(ctx, fmt.Errorf("load user preference: %w", err))
	}
	out := Explanation{UserID: userID, CandidateUserID: candidateID}
	if !ok {
		pref = model.DefaultPreference(userID)
		out.UserDefaulted = true
	}
	pref.UserID = userID
	out.UserPreference = pref

	profiles, err := s.repo.GetProfilesByIDs(ctx, []uuid.UUID{candidateID})
	if err != nil {
		return Explanation{}, unavailable(ctx, fmt.Errorf("load candidate profile: %w", err))
	}
	var profile *model.CandidateProfile
	for i := range profiles {
		if profiles[i].UserID == candidateID {
			profile = &profiles[i]
			break
		}
	}
	if profile == nil || !profile.Visible {
		return Explanation{}, ErrNotFound
	}
	out.Visible = profile.Visible

	candidatePref, ok, err := s.repo.GetCandidatePreference(ctx, candidateID)
	if err != nil {
		return Explanation{}, unavailable(ctx, fmt.Errorf("load candidate preference: %w", err))
	}
	if !ok {
		return out, nil
	}

	subject := model.UserPreference{
		UserID:         candidateID,
		DeclaredGender: profile.DeclaredGender,
		SeekingGender:  candidatePref.SeekingGender,
	}
	out.CandidatePreference = &subject
	out.ValidPreference = validatePreference(subject) == nil
	out.Halves = rules.Evaluate(pref, subject)
	out.Eligible = out.Visible && out.ValidPreference && out.Halves.Eligible()

	return out, nil
}
