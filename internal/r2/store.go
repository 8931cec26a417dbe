package r2

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/sirupsen/logrus"

	"github.com/HaiFongPan/ndview/internal/cache"
)

// Scheme prefixes grid paths served from a bucket
const Scheme = "r2://"

// DefaultTimeout bounds a single remote call
const DefaultTimeout = 10 * time.Second

// IsRemote reports whether path lives in a bucket
func IsRemote(path string) bool {
	return strings.HasPrefix(path, Scheme)
}

// Key returns the object key for an r2:// path
func Key(path string) string {
	return strings.TrimPrefix(path, Scheme)
}

// Store answers existence and open requests for r2:// paths, keeping
// downloaded objects in an on-disk cache
type Store struct {
	api     ObjectAPI
	bucket  string
	cache   *cache.Cache
	timeout time.Duration
}

// NewStore creates a store over api. cache may be nil.
func NewStore(api ObjectAPI, bucket string, c *cache.Cache) *Store {
	return &Store{
		api:     api,
		bucket:  bucket,
		cache:   c,
		timeout: DefaultTimeout,
	}
}

// Store returns an image store backed by this client
func (c *Client) Store(imageCache *cache.Cache) *Store {
	s := NewStore(c.s3Client, c.config.BucketName, imageCache)
	s.SetTimeout(time.Duration(c.config.TimeoutSeconds) * time.Second)
	return s
}

// SetTimeout changes the per-call timeout; zero keeps the current one
func (s *Store) SetTimeout(d time.Duration) {
	if d > 0 {
		s.timeout = d
	}
}

// Exists reports whether the object behind path exists. Any failure counts
// as absent.
func (s *Store) Exists(path string) bool {
	key := Key(path)

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	_, err := s.api.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err == nil {
		return true
	}

	if !isNotFound(err) {
		logrus.WithError(err).WithFields(logrus.Fields{
			"bucket": s.bucket,
			"key":    key,
		}).Warn("failed to check object")
	}
	return false
}

// Open returns the object content, from the cache when possible
func (s *Store) Open(path string) (io.ReadCloser, error) {
	key := Key(path)

	if s.cache != nil {
		if rc, hit, err := s.cache.Open(key); err == nil && hit {
			logrus.WithField("key", key).Debug("cache hit")
			return rc, nil
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	start := time.Now()
	result, err := s.api.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get object %s: %w", key, err)
	}
	defer result.Body.Close()

	logger := logrus.WithFields(logrus.Fields{
		"key":     key,
		"load_ms": time.Since(start).Milliseconds(),
	})

	if s.cache == nil {
		data, err := io.ReadAll(result.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to read object %s: %w", key, err)
		}
		logger.Debug("object downloaded")
		return io.NopCloser(bytes.NewReader(data)), nil
	}

	if _, err := s.cache.Put(key, result.Body); err != nil {
		return nil, fmt.Errorf("failed to cache object %s: %w", key, err)
	}
	logger.Debug("object downloaded")

	rc, hit, err := s.cache.Open(key)
	if err != nil {
		return nil, err
	}
	if !hit {
		return nil, fmt.Errorf("object %s evicted while opening", key)
	}
	return rc, nil
}

func isNotFound(err error) bool {
	var nsk *types.NoSuchKey
	var nf *types.NotFound
	if errors.As(err, &nsk) || errors.As(err, &nf) {
		return true
	}
	return strings.Contains(err.Error(), "StatusCode: 404") || strings.Contains(err.Error(), "NotFound")
}
