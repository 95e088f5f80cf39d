package model

import (
	"github.com/google/uuid"

	"github.com/JeffreyG244/ai-spark-match-ideas-sub002/internal/domain/enums"
)

type UserPreference struct {
	UserID         uuid.UUID     `json:"user_id"`
	DeclaredGender enums.Gender  `json:"declared_gender"`
	SeekingGender  enums.Seeking `json:"seeking_gender"`
}

// DefaultPreference is used when a user never completed the questionnaire.
func DefaultPreference(userID uuid.UUID) UserPreference {
	return UserPreference{
		UserID:         userID,
		DeclaredGender: enums.GenderUnknown,
		SeekingGender:  enums.SeekingEveryone,
	}
}

func (p UserPreference) Valid() bool {
	return p.DeclaredGender.Valid() && p.SeekingGender.Valid()
}
