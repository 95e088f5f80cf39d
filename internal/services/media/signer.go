package media

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/minio/minio-go/v7"
)

const (
	defaultSignedURLTTL = 15 * time.Minute
	maxCachedURLs       = 4096
)

var ErrValidation = errors.New("validation error")

// PhotoSigner presigns GET urls for profile photo object keys. Signed urls are
// reused until half of their lifetime has passed.
type PhotoSigner struct {
	client *minio.Client
	bucket string
	now    func() time.Time

	bucketOK atomic.Bool

	mu    sync.Mutex
	cache map[signedKey]signedURL
}

type signedKey struct {
	key string
	ttl time.Duration
}

type signedURL struct {
	url      string
	reuseTil time.Time
}

func NewPhotoSigner(client *minio.Client, bucket string) *PhotoSigner {
	return &PhotoSigner{
		client: client,
		bucket: strings.TrimSpace(bucket),
		now:    time.Now,
		cache:  make(map[signedKey]signedURL),
	}
}

// EnsureBucket reports whether the photo bucket exists. Only success is
// remembered, so a failed check is retried on the next call.
func (s *PhotoSigner) EnsureBucket(ctx context.Context) error {
	if s.client == nil {
		return fmt.Errorf("s3 client is nil")
	}
	if s.bucket == "" {
		return fmt.Errorf("s3 bucket is empty")
	}
	if s.bucketOK.Load() {
		return nil
	}

	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("ensure s3 bucket %q: %w", s.bucket, err)
	}
	if !exists {
		return fmt.Errorf("ensure s3 bucket %q: bucket does not exist", s.bucket)
	}
	s.bucketOK.Store(true)
	return nil
}

func (s *PhotoSigner) PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error) {
	if s.client == nil {
		return "", fmt.Errorf("s3 client is nil")
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return "", ErrValidation
	}
	if ttl <= 0 {
		ttl = defaultSignedURLTTL
	}

	now := s.now()
	ck := signedKey{key: key, ttl: ttl}

	s.mu.Lock()
	cached, ok := s.cache[ck]
	s.mu.Unlock()
	if ok && now.Before(cached.reuseTil) {
		return cached.url, nil
	}

	presigned, err := s.client.PresignedGetObject(ctx, s.bucket, key, ttl, url.Values{})
	if err != nil {
		return "", fmt.Errorf("presign get object: %w", err)
	}

	signed := presigned.String()
	s.mu.Lock()
	if len(s.cache) >= maxCachedURLs {
		s.pruneLocked(now)
	}
	s.cache[ck] = signedURL{url: signed, reuseTil: now.Add(ttl / 2)}
	s.mu.Unlock()

	return signed, nil
}

func (s *PhotoSigner) pruneLocked(now time.Time) {
	for k, v := range s.cache {
		if !now.Before(v.reuseTil) {
			delete(s.cache, k)
		}
	}
	if len(s.cache) >= maxCachedURLs {
		clear(s.cache)
	}
}
