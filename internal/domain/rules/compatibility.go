package rules

import (
	"github.com/JeffreyG244/ai-spark-match-ideas-sub002/internal/domain/enums"
	"github.com/JeffreyG244/ai-spark-match-ideas-sub002/internal/domain/model"
)

// Halves reports each direction of the eligibility test separately.
type Halves struct {
	UserWantsCandidate bool `json:"user_wants_candidate"`
	CandidateWantsUser bool `json:"candidate_wants_user"`
}

func (h Halves) Eligible() bool {
	return h.UserWantsCandidate && h.CandidateWantsUser
}

// UserWantsCandidate fails closed on any seeking value outside the domain.
func UserWantsCandidate(seeking enums.Seeking, candidate enums.Gender) bool {
	switch seeking {
	case enums.SeekingEveryone:
		return true
	case enums.SeekingMen:
		return candidate == enums.GenderMale
	case enums.SeekingWomen:
		return candidate == enums.GenderFemale
	case enums.SeekingNonBinary:
		return candidate == enums.GenderNonBinary
	default:
		return false
	}
}

// CandidateWantsUser mirrors UserWantsCandidate, except that a user who did
// not declare a gender is never filtered out by the candidate's preference.
func CandidateWantsUser(candidateSeeking enums.Seeking, user enums.Gender) bool {
	if user == enums.GenderUnknown {
		return true
	}
	return UserWantsCandidate(candidateSeeking, user)
}

func Evaluate(user, candidate model.UserPreference) Halves {
	return Halves{
		UserWantsCandidate: UserWantsCandidate(user.SeekingGender, candidate.DeclaredGender),
		CandidateWantsUser: CandidateWantsUser(candidate.SeekingGender, user.DeclaredGender),
	}
}

func Eligible(user, candidate model.UserPreference) bool {
	return Evaluate(user, candidate).Eligible()
}
