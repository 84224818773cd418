package ssh

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"path"
	"strconv"
	"time"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"

	"github.com/williamokano/apk_releaser/pkg/envfile"
	"github.com/williamokano/apk_releaser/pkg/storage"
)

type Backend struct {
	name       string
	cfg        *Config
	sshClient  *ssh.Client
	sftpClient *sftp.Client
}

func init() {
	storage.RegisterBackend("ssh", RequiredKeys, func(ctx context.Context, cfg storage.Config) (storage.Backend, error) {
		return New(cfg)
	})
}

// New creates a new SSH/SFTP backend
func New(cfg storage.Config) (*Backend, error) {
	sshCfg, err := parseConfig(cfg.Options)
	if err != nil {
		return nil, err
	}

	clientConfig, err := clientConfig(sshCfg)
	if err != nil {
		return nil, storage.WrapError(cfg.Name, "init", err)
	}

	// Connect to SSH server
	addr := net.JoinHostPort(sshCfg.Host, strconv.Itoa(sshCfg.Port))
	sshClient, err := ssh.Dial("tcp", addr, clientConfig)
	if err != nil {
		return nil, storage.WrapError(cfg.Name, "connect", storage.ClassifyTransport(err))
	}

	// Create SFTP client
	sftpClient, err := sftp.NewClient(sshClient)
	if err != nil {
		sshClient.Close()
		return nil, storage.WrapError(cfg.Name, "sftp init", err)
	}

	return &Backend{
		name:       cfg.Name,
		cfg:        sshCfg,
		sshClient:  sshClient,
		sftpClient: sftpClient,
	}, nil
}

func (b *Backend) Name() string { return b.name }
func (b *Backend) Type() string { return "ssh" }

// Write uploads a file via SFTP. The content type is decided by the web server.
func (b *Backend) Write(ctx context.Context, sourcePath, key string, opts storage.WriteOptions) error {
	return storage.WithRetry(ctx, storage.DefaultRetryConfig(), func() error {
		// Open local file
		localFile, err := os.Open(sourcePath)
		if err != nil {
			return err
		}
		defer localFile.Close()

		remotePath := path.Join(b.cfg.RemotePath, key)

		// Ensure remote directory exists
		if err := b.sftpClient.MkdirAll(path.Dir(remotePath)); err != nil {
			return storage.WrapError(b.name, "mkdir", err)
		}

		// Create remote file
		remoteFile, err := b.sftpClient.Create(remotePath)
		if err != nil {
			return storage.WrapError(b.name, "create", err)
		}
		defer remoteFile.Close()

		// Copy data
		if _, err := io.Copy(remoteFile, localFile); err != nil {
			return storage.WrapError(b.name, "upload", storage.ClassifyTransport(err))
		}

		return nil
	})
}

// Stat returns file metadata
func (b *Backend) Stat(ctx context.Context, key string) (*storage.FileInfo, error) {
	info, err := b.sftpClient.Stat(path.Join(b.cfg.RemotePath, key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, storage.ErrNotFound
		}
		return nil, storage.WrapError(b.name, "stat", err)
	}

	return &storage.FileInfo{
		Path:    key,
		Size:    info.Size(),
		ModTime: info.ModTime(),
	}, nil
}

// URL returns an sftp:// URL; a public base URL should be configured for this backend
func (b *Backend) URL(key string) string {
	return remoteURL(b.cfg, key)
}

// Close releases resources
func (b *Backend) Close() error {
	if b.sftpClient != nil {
		b.sftpClient.Close()
	}
	if b.sshClient != nil {
		b.sshClient.Close()
	}
	return nil
}

func clientConfig(cfg *Config) (*ssh.ClientConfig, error) {
	clientConfig := &ssh.ClientConfig{
		User:            cfg.User,
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         10 * time.Second,
	}

	if cfg.KnownHosts != "" {
		callback, err := knownhosts.New(cfg.KnownHosts)
		if err != nil {
			return nil, fmt.Errorf("failed to load known hosts: %w", err)
		}
		clientConfig.HostKeyCallback = callback
	}

	// Add authentication methods
	if cfg.Password != "" {
		clientConfig.Auth = append(clientConfig.Auth, ssh.Password(cfg.Password))
	}

	if cfg.KeyPath != "" {
		key, err := os.ReadFile(cfg.KeyPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read SSH key: %w", err)
		}

		var signer ssh.Signer
		if cfg.KeyPassphrase != "" {
			signer, err = ssh.ParsePrivateKeyWithPassphrase(key, []byte(cfg.KeyPassphrase))
		} else {
			signer, err = ssh.ParsePrivateKey(key)
		}

		if err != nil {
			return nil, fmt.Errorf("failed to parse SSH key: %w", err)
		}

		clientConfig.Auth = append(clientConfig.Auth, ssh.PublicKeys(signer))
	}

	if len(clientConfig.Auth) == 0 {
		return nil, fmt.Errorf("%w: set %s or %s", storage.ErrInvalidConfig, KeyPassword, KeyKeyPath)
	}

	return clientConfig, nil
}

func parseConfig(options envfile.Values) (*Config, error) {
	if missing := options.Missing(RequiredKeys...); len(missing) > 0 {
		return nil, &storage.MissingOptionsError{Backend: "ssh", Keys: missing}
	}

	cfg := &Config{
		Host:          options.Get(KeyHost),
		Port:          22,
		User:          options.Get(KeyUser),
		Password:      options.Get(KeyPassword),
		KeyPath:       options.Get(KeyKeyPath),
		KeyPassphrase: options.Get(KeyKeyPassphrase),
		RemotePath:    options.Get(KeyRemotePath),
		KnownHosts:    options.Get(KeyKnownHosts),
	}

	if v := options.Get(KeyPort); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil || port <= 0 || port > 65535 {
			return nil, fmt.Errorf("%w: %s must be a port number, got %q", storage.ErrInvalidConfig, KeyPort, v)
		}
		cfg.Port = port
	}

	return cfg, nil
}

func remoteURL(cfg *Config, key string) string {
	host := cfg.Host
	if cfg.Port != 22 {
		host = net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
	}
	return fmt.Sprintf("sftp://%s@%s%s", cfg.User, host, path.Join("/", cfg.RemotePath, key))
}
