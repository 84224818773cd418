package backblaze

// Env file keys read by the Backblaze B2 backend
const (
	KeyAccountID      = "B2_ACCOUNT_ID"
	KeyApplicationKey = "B2_APPLICATION_KEY"
	KeyBucket         = "B2_BUCKET"
)

// RequiredKeys must all be non-empty before an upload is attempted
var RequiredKeys = []string{KeyAccountID, KeyApplicationKey, KeyBucket}

type Config struct {
	AccountID      string
	ApplicationKey string
	BucketName     string
}
