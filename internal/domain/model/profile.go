package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/JeffreyG244/ai-spark-match-ideas-sub002/internal/domain/enums"
)

type CandidateProfile struct {
	UserID         uuid.UUID     `json:"user_id"`
	DeclaredGender enums.Gender  `json:"declared_gender"`
	SeekingGender  enums.Seeking `json:"seeking_gender"`
	Visible        bool          `json:"visible"`
	DisplayName    string        `json:"display_name"`
	AgeYears       int           `json:"age_years"`
	Bio            string        `json:"bio"`
	PhotoURLs      []string      `json:"photo_urls"`
	CreatedAt      time.Time     `json:"created_at"`
}
