package s3

// Env file keys read by the S3 backend
const (
	KeyAccessKeyID    = "AWS_ACCESS_KEY_ID"
	KeySecretKey      = "AWS_SECRET_ACCESS_KEY"
	KeyRegion         = "AWS_S3_REGION"
	KeyBucket         = "AWS_S3_BUCKET"
	KeyEndpoint       = "AWS_S3_ENDPOINT"
	KeyForcePathStyle = "AWS_S3_FORCE_PATH_STYLE"
	KeyVerifySSL      = "AWS_S3_VERIFY_SSL"
	KeyCABundle       = "AWS_S3_CA_BUNDLE"

	// EnvCABundle is read from the process environment when the env file has no bundle
	EnvCABundle = "AWS_CA_BUNDLE"
)

// RequiredKeys must all be non-empty before an upload is attempted
var RequiredKeys = []string{KeyAccessKeyID, KeySecretKey, KeyRegion, KeyBucket}

// Config holds S3 configuration
type Config struct {
	Endpoint        string // Optional: for MinIO, R2, OSS and other S3-compatible stores
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	ForcePathStyle  bool   // Default: false (virtual-hosted addressing)
	VerifySSL       bool   // Default: true
	CABundle        string // Optional: PEM file with extra root certificates
}
