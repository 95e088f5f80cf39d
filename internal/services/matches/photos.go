package matches

import (
	"context"
	"strings"

	"github.com/JeffreyG244/ai-spark-match-ideas-sub002/internal/domain/model"
)

// presentProfile resolves stored photo keys to short-lived URLs using the
// signer's default lifetime. Absolute URLs pass through; keys that cannot be
// signed are dropped.
func (s *Service) presentProfile(ctx context.Context, profile model.CandidateProfile) model.CandidateProfile {
	if len(profile.PhotoURLs) == 0 {
		return profile
	}

	urls := make([]string, 0, len(profile.PhotoURLs))
	for _, raw := range profile.PhotoURLs {
		if url, ok := s.photoURL(ctx, raw); ok {
			urls = append(urls, url)
		}
	}
	profile.PhotoURLs = urls
	return profile
}

func (s *Service) photoURL(ctx context.Context, key string) (string, bool) {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return "", false
	}
	if strings.HasPrefix(trimmed, "http://") || strings.HasPrefix(trimmed, "https://") {
		return trimmed, true
	}
	if s.photoSign == nil {
		return "", false
	}

	url, err := s.photoSign.PresignGet(ctx, trimmed, 0)
	if err != nil {
		return "", false
	}
	url = strings.TrimSpace(url)
	return url, url != ""
}
