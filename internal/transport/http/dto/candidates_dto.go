package dto

type CandidateItemResponse struct {
	UserID      string   `json:"user_id"`
	DisplayName string   `json:"display_name"`
	Age         int      `json:"age"`
	Bio         string   `json:"bio"`
	PhotoURLs   []string `json:"photo_urls"`
	Score       int      `json:"score"`
	Eligible    bool     `json:"eligible"`
	MatchID     *int64   `json:"match_id,omitempty"`
}

type CandidatesResponse struct {
	Source string                  `json:"source"`
	Items  []CandidateItemResponse `json:"items"`
}

type PreferenceResponse struct {
	Gender  string `json:"gender"`
	Seeking string `json:"seeking"`
}

type CompatibilityResponse struct {
	UserID              string              `json:"user_id"`
	CandidateUserID     string              `json:"candidate_user_id"`
	UserPreference      PreferenceResponse  `json:"user_preference"`
	UserDefaulted       bool                `json:"user_defaulted"`
	CandidatePreference *PreferenceResponse `json:"candidate_preference"`
	Visible             bool                `json:"visible"`
	ValidPreference     bool                `json:"valid_preference"`
	UserWantsCandidate  bool                `json:"user_wants_candidate"`
	CandidateWantsUser  bool                `json:"candidate_wants_user"`
	Eligible            bool                `json:"eligible"`
}

type HealthResponse struct {
	OK bool `json:"ok"`
}

type ReadinessResponse struct {
	OK     bool              `json:"ok"`
	Checks map[string]string `json:"checks"`
}
