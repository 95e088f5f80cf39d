package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/JeffreyG244/ai-spark-match-ideas-sub002/internal/domain/enums"
	"github.com/JeffreyG244/ai-spark-match-ideas-sub002/internal/domain/model"
)

var (
	allGenders = []enums.Gender{enums.GenderMale, enums.GenderFemale, enums.GenderNonBinary, enums.GenderUnknown}
	allSeeking = []enums.Seeking{enums.SeekingMen, enums.SeekingWomen, enums.SeekingNonBinary, enums.SeekingEveryone}
)

func pref(g enums.Gender, s enums.Seeking) model.UserPreference {
	return model.UserPreference{DeclaredGender: g, SeekingGender: s}
}

func TestEligibleScenarios(t *testing.T) {
	tests := []struct {
		name      string
		user      model.UserPreference
		candidate model.UserPreference
		want      bool
	}{
		{
			name:      "male seeking women, female seeking everyone",
			user:      pref(enums.GenderMale, enums.SeekingWomen),
			candidate: pref(enums.GenderFemale, enums.SeekingEveryone),
			want:      true,
		},
		{
			name:      "female candidate only wants women",
			user:      pref(enums.GenderMale, enums.SeekingWomen),
			candidate: pref(enums.GenderFemale, enums.SeekingWomen),
			want:      false,
		},
		{
			name:      "female candidate wants men",
			user:      pref(enums.GenderMale, enums.SeekingWomen),
			candidate: pref(enums.GenderFemale, enums.SeekingMen),
			want:      true,
		},
		{
			name:      "unknown user seeking everyone skips candidate half",
			user:      pref(enums.GenderUnknown, enums.SeekingEveryone),
			candidate: pref(enums.GenderMale, enums.SeekingWomen),
			want:      true,
		},
		{
			name:      "non binary pair",
			user:      pref(enums.GenderNonBinary, enums.SeekingNonBinary),
			candidate: pref(enums.GenderNonBinary, enums.SeekingNonBinary),
			want:      true,
		},
		{
			name:      "user seeking men sees no female",
			user:      pref(enums.GenderFemale, enums.SeekingMen),
			candidate: pref(enums.GenderFemale, enums.SeekingEveryone),
			want:      false,
		},
		{
			name:      "unknown candidate gender only matches everyone seekers",
			user:      pref(enums.GenderMale, enums.SeekingWomen),
			candidate: pref(enums.GenderUnknown, enums.SeekingEveryone),
			want:      false,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Eligible(tc.user, tc.candidate))
		})
	}
}

// The candidate half in scenario B is what rejects the pair.
func TestEvaluateReportsFailingHalf(t *testing.T) {
	halves := Evaluate(pref(enums.GenderMale, enums.SeekingWomen), pref(enums.GenderFemale, enums.SeekingWomen))

	assert.True(t, halves.UserWantsCandidate)
	assert.False(t, halves.CandidateWantsUser)
	assert.False(t, halves.Eligible())
}

func TestEveryoneSeekingEveryoneIsAlwaysEligible(t *testing.T) {
	for _, ug := range allGenders {
		for _, cg := range allGenders {
			assert.True(t, Eligible(pref(ug, enums.SeekingEveryone), pref(cg, enums.SeekingEveryone)), "user %s candidate %s", ug, cg)
		}
	}
}

func TestUnknownUserReducesToUserHalf(t *testing.T) {
	for _, us := range allSeeking {
		for _, cg := range allGenders {
			for _, cs := range allSeeking {
				user := pref(enums.GenderUnknown, us)
				candidate := pref(cg, cs)
				assert.True(t, CandidateWantsUser(cs, enums.GenderUnknown))
				assert.Equal(t, UserWantsCandidate(us, cg), Eligible(user, candidate), "seeking %s candidate %s/%s", us, cg, cs)
			}
		}
	}
}

func TestEligibilityIsNotSymmetricWithUnknownGender(t *testing.T) {
	unknown := pref(enums.GenderUnknown, enums.SeekingEveryone)
	male := pref(enums.GenderMale, enums.SeekingWomen)

	assert.True(t, Eligible(unknown, male))
	assert.False(t, Eligible(male, unknown))
}

func TestOutOfDomainValuesFailClosed(t *testing.T) {
	assert.False(t, UserWantsCandidate(enums.Seeking("aliens"), enums.GenderMale))
	assert.False(t, UserWantsCandidate(enums.SeekingMen, enums.Gender("Male")))
	assert.False(t, CandidateWantsUser(enums.Seeking(""), enums.GenderFemale))

	// Leniency still applies to an undeclared user even if the candidate's
	// own preference is malformed.
	assert.True(t, CandidateWantsUser(enums.Seeking("garbage"), enums.GenderUnknown))
}
