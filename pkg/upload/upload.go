package upload

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/williamokano/apk_releaser/pkg/artifact"
	"github.com/williamokano/apk_releaser/pkg/envfile"
	"github.com/williamokano/apk_releaser/pkg/storage"

	// Import backends to register them
	_ "github.com/williamokano/apk_releaser/pkg/storage/backblaze"
	_ "github.com/williamokano/apk_releaser/pkg/storage/local"
	s3storage "github.com/williamokano/apk_releaser/pkg/storage/s3"
	_ "github.com/williamokano/apk_releaser/pkg/storage/ssh"
)

const (
	// KeyPublicBaseURL is the env file key holding the public download prefix
	KeyPublicBaseURL = "AWS_S3_PUBLIC_BASE_URL"

	// KeyVerifyUpload makes the uploader stat the object after writing it
	KeyVerifyUpload = "STORAGE_VERIFY_UPLOAD"

	// TimestampLayout is the second-resolution stamp embedded in object keys
	TimestampLayout = "20060102_150405"
)

// ObjectKey returns "<prefix>/<product>-<YYYYMMDD_HHMMSS>.apk"
func ObjectKey(prefix, product string, t time.Time) string {
	return fmt.Sprintf("%s/%s-%s.apk", strings.Trim(prefix, "/"), product, t.Format(TimestampLayout))
}

// PublicURL joins the base URL and key with exactly one slash
func PublicURL(baseURL, key string) string {
	return strings.TrimRight(baseURL, "/") + "/" + strings.TrimLeft(key, "/")
}

// Result describes a finished upload
type Result struct {
	Key      string
	URL      string
	Backend  string
	Size     int64
	Duration time.Duration
}

// Uploader pushes the release artifact to the configured storage backend
type Uploader struct {
	backendType string
	prefix      string
	product     string
	factory     *storage.Factory
	now         func() time.Time
	logger      zerolog.Logger
}

// NewUploader creates an uploader for the given backend type
func NewUploader(backendType, prefix, product string, logger zerolog.Logger) *Uploader {
	return &Uploader{
		backendType: backendType,
		prefix:      prefix,
		product:     product,
		factory:     storage.NewFactory(),
		now:         time.Now,
		logger:      logger.With().Str("backend", backendType).Logger(),
	}
}

// WithClock replaces the time source used for object keys
func (u *Uploader) WithClock(now func() time.Time) *Uploader {
	u.now = now
	return u
}

// Upload writes the artifact under a new timestamped key and returns its URL.
// Required settings are checked before any client is created.
func (u *Uploader) Upload(ctx context.Context, art *artifact.Artifact, env envfile.Values) (*Result, error) {
	required, err := storage.RequiredOptions(u.backendType)
	if err != nil {
		return nil, err
	}
	if missing := env.Missing(required...); len(missing) > 0 {
		u.logger.Error().Strs("missing", missing).Msg("missing required storage settings")
		return nil, &storage.MissingOptionsError{Backend: u.backendType, Keys: missing}
	}

	backend, err := u.factory.Create(ctx, storage.Config{
		Name:    u.backendType,
		Type:    u.backendType,
		Options: env,
	})
	if err != nil {
		return nil, err
	}
	defer backend.Close()

	key := ObjectKey(u.prefix, u.product, u.now())
	uploadLog := u.logger.With().Str("key", key).Logger()

	if u.backendType == "s3" && !env.Bool(s3storage.KeyVerifySSL, true) {
		uploadLog.Warn().Msg("TLS certificate verification is disabled, use only for troubleshooting")
	}

	uploadLog.Info().
		Str("file", art.Path).
		Int64("size_bytes", art.Size).
		Msg("starting upload")

	start := time.Now()
	if err := backend.Write(ctx, art.Path, key, storage.WriteOptions{ContentType: storage.ContentTypeAPK}); err != nil {
		uploadLog.Error().Err(err).Dur("duration", time.Since(start)).Msg("upload failed")
		return nil, err
	}
	duration := time.Since(start)

	uploadLog.Info().Dur("duration", duration).Msg("upload succeeded")

	if env.Bool(KeyVerifyUpload, false) {
		info, err := backend.Stat(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("verify upload: %w", err)
		}
		if info.Size != art.Size {
			return nil, fmt.Errorf("verify upload: stored size %d does not match artifact size %d", info.Size, art.Size)
		}
		uploadLog.Debug().Int64("size_bytes", info.Size).Msg("upload verified")
	}

	url := backend.URL(key)
	if base := env.Get(KeyPublicBaseURL); base != "" {
		url = PublicURL(base, key)
	} else {
		uploadLog.Warn().Str("url", url).Msgf("%s is not set, using the backend URL", KeyPublicBaseURL)
	}

	return &Result{
		Key:      key,
		URL:      url,
		Backend:  backend.Name(),
		Size:     art.Size,
		Duration: duration,
	}, nil
}
