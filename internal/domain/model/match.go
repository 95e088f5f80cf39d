package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/JeffreyG244/ai-spark-match-ideas-sub002/internal/domain/enums"
)

type MatchRecord struct {
	ID            int64             `json:"id"`
	UserA         uuid.UUID         `json:"user_a"`
	UserB         uuid.UUID         `json:"user_b"`
	Status        enums.MatchStatus `json:"status"`
	Compatibility *int              `json:"compatibility"`
	CreatedAt     time.Time         `json:"created_at"`
}

// OtherParty returns the counterpart of userID, or false when userID is not
// part of the match.
func (m MatchRecord) OtherParty(userID uuid.UUID) (uuid.UUID, bool) {
	switch userID {
	case m.UserA:
		return m.UserB, true
	case m.UserB:
		return m.UserA, true
	default:
		return uuid.Nil, false
	}
}

type CompatibilityResult struct {
	CandidateUserID uuid.UUID `json:"candidate_user_id"`
	Score           int       `json:"score"`
	Eligible        bool      `json:"eligible"`
}
