package s3

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/williamokano/apk_releaser/pkg/envfile"
	"github.com/williamokano/apk_releaser/pkg/storage"
)

func baseOptions() envfile.Values {
	return envfile.Values{
		KeyAccessKeyID: "AKIA",
		KeySecretKey:   "secret",
		KeyRegion:      "ap-east-1",
		KeyBucket:      "releases",
	}
}

func TestParseConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		t.Setenv(EnvCABundle, "")

		cfg, err := parseConfig(baseOptions())
		require.NoError(t, err)

		assert.Equal(t, "ap-east-1", cfg.Region)
		assert.Equal(t, "releases", cfg.Bucket)
		assert.Empty(t, cfg.Endpoint)
		assert.False(t, cfg.ForcePathStyle)
		assert.True(t, cfg.VerifySSL)
		assert.Empty(t, cfg.CABundle)
	})

	t.Run("optional_keys", func(t *testing.T) {
		opts := baseOptions()
		opts[KeyEndpoint] = "https://minio.internal:9000"
		opts[KeyForcePathStyle] = "yes"
		opts[KeyVerifySSL] = "false"
		opts[KeyCABundle] = "/etc/ssl/corp.pem"

		cfg, err := parseConfig(opts)
		require.NoError(t, err)

		assert.Equal(t, "https://minio.internal:9000", cfg.Endpoint)
		assert.True(t, cfg.ForcePathStyle)
		assert.False(t, cfg.VerifySSL)
		assert.Equal(t, "/etc/ssl/corp.pem", cfg.CABundle)
	})

	t.Run("ca_bundle_from_process_env", func(t *testing.T) {
		t.Setenv(EnvCABundle, "/opt/ca.pem")

		cfg, err := parseConfig(baseOptions())
		require.NoError(t, err)
		assert.Equal(t, "/opt/ca.pem", cfg.CABundle)
	})

	t.Run("missing_keys", func(t *testing.T) {
		opts := baseOptions()
		delete(opts, KeyRegion)
		opts[KeySecretKey] = ""

		_, err := parseConfig(opts)

		var missing *storage.MissingOptionsError
		require.ErrorAs(t, err, &missing)
		assert.Equal(t, []string{KeySecretKey, KeyRegion}, missing.Keys)
	})
}

func TestNewHTTPClient(t *testing.T) {
	t.Run("bad_ca_bundle_path", func(t *testing.T) {
		_, err := newHTTPClient(&Config{VerifySSL: true, CABundle: filepath.Join(t.TempDir(), "missing.pem")})
		assert.ErrorIs(t, err, storage.ErrInvalidConfig)
	})

	t.Run("ca_bundle_without_certificates", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "empty.pem")
		require.NoError(t, os.WriteFile(path, []byte("not a certificate"), 0644))

		_, err := newHTTPClient(&Config{VerifySSL: true, CABundle: path})
		assert.ErrorIs(t, err, storage.ErrInvalidConfig)
	})

	t.Run("verification_disabled_ignores_bundle", func(t *testing.T) {
		client, err := newHTTPClient(&Config{VerifySSL: false, CABundle: "/does/not/exist"})
		require.NoError(t, err)
		assert.NotNil(t, client)
	})
}

func TestObjectURL(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		key  string
		want string
	}{
		{
			name: "aws virtual hosted",
			cfg:  Config{Region: "ap-east-1", Bucket: "releases"},
			key:  "apk/app-20240101_120000.apk",
			want: "https://releases.s3.ap-east-1.amazonaws.com/apk/app-20240101_120000.apk",
		},
		{
			name: "aws path style",
			cfg:  Config{Region: "us-east-1", Bucket: "releases", ForcePathStyle: true},
			key:  "apk/app.apk",
			want: "https://s3.us-east-1.amazonaws.com/releases/apk/app.apk",
		},
		{
			name: "custom endpoint path style",
			cfg:  Config{Endpoint: "http://localhost:4566", Bucket: "releases", ForcePathStyle: true},
			key:  "apk/app.apk",
			want: "http://localhost:4566/releases/apk/app.apk",
		},
		{
			name: "custom endpoint virtual hosted",
			cfg:  Config{Endpoint: "https://oss-cn-hangzhou.aliyuncs.com", Bucket: "releases"},
			key:  "apk/app.apk",
			want: "https://releases.oss-cn-hangzhou.aliyuncs.com/apk/app.apk",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ObjectURL(&tt.cfg, tt.key))
		})
	}
}

func TestNew_NoNetwork(t *testing.T) {
	backend, err := New(context.Background(), storage.Config{Name: "s3", Type: "s3", Options: baseOptions()})
	require.NoError(t, err)

	assert.Equal(t, "s3", backend.Name())
	assert.Equal(t, "s3", backend.Type())
	assert.Equal(t, "https://releases.s3.ap-east-1.amazonaws.com/apk/a.apk", backend.URL("apk/a.apk"))
	assert.NoError(t, backend.Close())
}

func TestClassify(t *testing.T) {
	t.Run("auth_error", func(t *testing.T) {
		err := classify(&smithy.GenericAPIError{Code: "InvalidAccessKeyId", Message: "bad key"})
		assert.ErrorIs(t, err, storage.ErrAuthFailed)
	})

	t.Run("not_found", func(t *testing.T) {
		err := classify(&smithy.GenericAPIError{Code: "NotFound"})
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("other_api_error_surfaces_raw", func(t *testing.T) {
		apiErr := &smithy.GenericAPIError{Code: "EntityTooLarge"}
		assert.Equal(t, error(apiErr), classify(apiErr))
	})

	t.Run("plain_error", func(t *testing.T) {
		err := errors.New("boom")
		assert.Equal(t, err, classify(err))
	})
}
