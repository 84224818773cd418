package s3

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/aws/retry"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"

	"github.com/williamokano/apk_releaser/pkg/envfile"
	"github.com/williamokano/apk_releaser/pkg/storage"
)

const (
	ConnectTimeout = 10 * time.Second
	ReadTimeout    = 60 * time.Second
	MaxAttempts    = 10
)

type Backend struct {
	name     string
	cfg      *Config
	client   *s3.Client
	uploader *manager.Uploader
}

func init() {
	storage.RegisterBackend("s3", RequiredKeys, func(ctx context.Context, cfg storage.Config) (storage.Backend, error) {
		return New(ctx, cfg)
	})
}

// New creates a new S3 backend. No request is sent until Write or Stat.
func New(ctx context.Context, cfg storage.Config) (*Backend, error) {
	s3Cfg, err := parseConfig(cfg.Options)
	if err != nil {
		return nil, storage.WrapError(cfg.Name, "init", err)
	}

	httpClient, err := newHTTPClient(s3Cfg)
	if err != nil {
		return nil, storage.WrapError(cfg.Name, "init", err)
	}

	// Build AWS config
	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(s3Cfg.Region),
		config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(
				s3Cfg.AccessKeyID,
				s3Cfg.SecretAccessKey,
				"",
			),
		),
		config.WithHTTPClient(httpClient),
		config.WithRetryer(func() aws.Retryer {
			return retry.NewStandard(func(o *retry.StandardOptions) {
				o.MaxAttempts = MaxAttempts
			})
		}),
	)
	if err != nil {
		return nil, storage.WrapError(cfg.Name, "init", err)
	}

	// Create S3 client
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if s3Cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(s3Cfg.Endpoint)
			// S3-compatible stores often reject the default CRC32 trailers
			o.RequestChecksumCalculation = aws.RequestChecksumCalculationWhenRequired
		}
		o.UsePathStyle = s3Cfg.ForcePathStyle
	})

	return &Backend{
		name:     cfg.Name,
		cfg:      s3Cfg,
		client:   client,
		uploader: manager.NewUploader(client),
	}, nil
}

func (b *Backend) Name() string { return b.name }
func (b *Backend) Type() string { return "s3" }

// Write uploads a file to S3. Retries are left to the SDK's standard retryer.
func (b *Backend) Write(ctx context.Context, sourcePath, key string, opts storage.WriteOptions) error {
	file, err := os.Open(sourcePath)
	if err != nil {
		return storage.WrapError(b.name, "upload", err)
	}
	defer file.Close()

	input := &s3.PutObjectInput{
		Bucket: aws.String(b.cfg.Bucket),
		Key:    aws.String(key),
		Body:   file,
	}
	if opts.ContentType != "" {
		input.ContentType = aws.String(opts.ContentType)
	}

	if _, err := b.uploader.Upload(ctx, input); err != nil {
		return storage.WrapError(b.name, "upload", classify(err))
	}

	return nil
}

// Stat returns metadata about an object
func (b *Backend) Stat(ctx context.Context, key string) (*storage.FileInfo, error) {
	result, err := b.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(b.cfg.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, storage.WrapError(b.name, "stat", classify(err))
	}

	info := &storage.FileInfo{Path: key}
	if result.ContentLength != nil {
		info.Size = *result.ContentLength
	}
	if result.LastModified != nil {
		info.ModTime = *result.LastModified
	}

	return info, nil
}

// URL returns the object's S3 address in the configured addressing style
func (b *Backend) URL(key string) string {
	return ObjectURL(b.cfg, key)
}

// Close is a no-op for S3
func (b *Backend) Close() error {
	return nil
}

// ObjectURL builds the address of key for the given config
func ObjectURL(cfg *Config, key string) string {
	scheme, host := "https", fmt.Sprintf("s3.%s.amazonaws.com", cfg.Region)
	if cfg.Endpoint != "" {
		if u, err := url.Parse(cfg.Endpoint); err == nil && u.Host != "" {
			scheme, host = u.Scheme, u.Host
		}
	}

	escaped := (&url.URL{Path: key}).EscapedPath()
	if cfg.ForcePathStyle {
		return fmt.Sprintf("%s://%s/%s/%s", scheme, host, cfg.Bucket, escaped)
	}
	return fmt.Sprintf("%s://%s.%s/%s", scheme, cfg.Bucket, host, escaped)
}

// Helper functions

func parseConfig(options envfile.Values) (*Config, error) {
	cfg := &Config{
		Endpoint:        options.Get(KeyEndpoint),
		Region:          options.Get(KeyRegion),
		Bucket:          options.Get(KeyBucket),
		AccessKeyID:     options.Get(KeyAccessKeyID),
		SecretAccessKey: options.Get(KeySecretKey),
		ForcePathStyle:  options.Bool(KeyForcePathStyle, false),
		VerifySSL:       options.Bool(KeyVerifySSL, true),
		CABundle:        options.Get(KeyCABundle),
	}

	if cfg.CABundle == "" {
		cfg.CABundle = strings.TrimSpace(os.Getenv(EnvCABundle))
	}

	if missing := options.Missing(RequiredKeys...); len(missing) > 0 {
		return nil, &storage.MissingOptionsError{Backend: "s3", Keys: missing}
	}

	return cfg, nil
}

func newHTTPClient(cfg *Config) (*awshttp.BuildableClient, error) {
	tlsCfg := &tls.Config{MinVersion: tls.VersionTLS12}

	if !cfg.VerifySSL {
		tlsCfg.InsecureSkipVerify = true
	} else if cfg.CABundle != "" {
		pem, err := os.ReadFile(cfg.CABundle)
		if err != nil {
			return nil, fmt.Errorf("%w: read CA bundle: %w", storage.ErrInvalidConfig, err)
		}

		pool, err := x509.SystemCertPool()
		if err != nil || pool == nil {
			pool = x509.NewCertPool()
		}
		if !pool.AppendCertsFromPEM(pem) {
			return nil, fmt.Errorf("%w: no certificates found in %s", storage.ErrInvalidConfig, cfg.CABundle)
		}
		tlsCfg.RootCAs = pool
	}

	return awshttp.NewBuildableClient().
		WithDialerOptions(func(d *net.Dialer) {
			d.Timeout = ConnectTimeout
		}).
		WithTransportOptions(func(tr *http.Transport) {
			tr.TLSClientConfig = tlsCfg
			tr.TLSHandshakeTimeout = ConnectTimeout
			tr.ResponseHeaderTimeout = ReadTimeout
		}), nil
}

// classify maps SDK failures onto the storage error taxonomy while keeping
// the original error in the chain
func classify(err error) error {
	classified := storage.ClassifyTransport(err)
	if errors.Is(classified, storage.ErrTLS) || errors.Is(classified, storage.ErrConnFailed) {
		return classified
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NotFound", "NoSuchKey":
			return fmt.Errorf("%w: %w", storage.ErrNotFound, err)
		case "InvalidAccessKeyId", "SignatureDoesNotMatch", "AccessDenied":
			return fmt.Errorf("%w: %w", storage.ErrAuthFailed, err)
		}
	}

	return err
}
