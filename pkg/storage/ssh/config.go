package ssh

// Env file keys read by the SFTP backend
const (
	KeyHost          = "SFTP_HOST"
	KeyPort          = "SFTP_PORT"
	KeyUser          = "SFTP_USER"
	KeyPassword      = "SFTP_PASSWORD"
	KeyKeyPath       = "SFTP_KEY_PATH"
	KeyKeyPassphrase = "SFTP_KEY_PASSPHRASE"
	KeyRemotePath    = "SFTP_REMOTE_PATH"
	KeyKnownHosts    = "SFTP_KNOWN_HOSTS"
)

// RequiredKeys must all be non-empty before an upload is attempted
var RequiredKeys = []string{KeyHost, KeyUser, KeyRemotePath}

type Config struct {
	Host          string
	Port          int // Default: 22
	User          string
	Password      string // Optional
	KeyPath       string // Optional: path to private key
	KeyPassphrase string // Optional
	RemotePath    string // Web root directory the keys are written under
	KnownHosts    string // Optional: known_hosts file; host keys are not checked without it
}
