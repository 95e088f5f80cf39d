package dto

import (
	"github.com/JeffreyG244/ai-spark-match-ideas-sub002/internal/domain/model"
	matchessvc "github.com/JeffreyG244/ai-spark-match-ideas-sub002/internal/services/matches"
)

func NewCandidatesResponse(result matchessvc.Result) CandidatesResponse {
	items := make([]CandidateItemResponse, 0, len(result.Items))
	for _, item := range result.Items {
		resp := CandidateItemResponse{
			UserID:      item.Profile.UserID.String(),
			DisplayName: item.Profile.DisplayName,
			Age:         item.Profile.AgeYears,
			Bio:         item.Profile.Bio,
			PhotoURLs:   item.Profile.PhotoURLs,
			Score:       item.Compatibility.Score,
			Eligible:    item.Compatibility.Eligible,
		}
		if resp.PhotoURLs == nil {
			resp.PhotoURLs = []string{}
		}
		if item.MatchID > 0 {
			matchID := item.MatchID
			resp.MatchID = &matchID
		}
		items = append(items, resp)
	}

	return CandidatesResponse{
		Source: string(result.Source),
		Items:  items,
	}
}

func NewCompatibilityResponse(explanation matchessvc.Explanation) CompatibilityResponse {
	resp := CompatibilityResponse{
		UserID:             explanation.UserID.String(),
		CandidateUserID:    explanation.CandidateUserID.String(),
		UserPreference:     newPreferenceResponse(explanation.UserPreference),
		UserDefaulted:      explanation.UserDefaulted,
		Visible:            explanation.Visible,
		ValidPreference:    explanation.ValidPreference,
		UserWantsCandidate: explanation.Halves.UserWantsCandidate,
		CandidateWantsUser: explanation.Halves.CandidateWantsUser,
		Eligible:           explanation.Eligible,
	}
	if explanation.CandidatePreference != nil {
		pref := newPreferenceResponse(*explanation.CandidatePreference)
		resp.CandidatePreference = &pref
	}
	return resp
}

func newPreferenceResponse(pref model.UserPreference) PreferenceResponse {
	return PreferenceResponse{
		Gender:  string(pref.DeclaredGender),
		Seeking: string(pref.SeekingGender),
	}
}
