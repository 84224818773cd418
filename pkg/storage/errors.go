package storage

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net"
	"strings"
	"syscall"
)

var (
	ErrAuthFailed    = errors.New("authentication failed")
	ErrConnFailed    = errors.New("connection failed")
	ErrTLS           = errors.New("TLS handshake failed")
	ErrNotFound      = errors.New("object not found")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// MissingOptionsError names every required key that was empty
type MissingOptionsError struct {
	Backend string
	Keys    []string
}

func (e *MissingOptionsError) Error() string {
	return fmt.Sprintf("missing required %s settings: %s", e.Backend, strings.Join(e.Keys, ", "))
}

func (e *MissingOptionsError) Unwrap() error { return ErrInvalidConfig }

// IsRetryable returns true if error should trigger a retry
func IsRetryable(err error) bool {
	return errors.Is(err, ErrConnFailed)
}

// IsCritical returns true if error should stop all operations
func IsCritical(err error) bool {
	return errors.Is(err, ErrAuthFailed) || errors.Is(err, ErrInvalidConfig) || errors.Is(err, ErrTLS)
}

// WrapError adds context to an error
func WrapError(backend, operation string, err error) error {
	return fmt.Errorf("%s (%s): %w", operation, backend, err)
}

// ClassifyTransport tags certificate and handshake failures with ErrTLS and
// DNS/dial failures with ErrConnFailed. Other errors are returned unchanged.
func ClassifyTransport(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrTLS), errors.Is(err, ErrConnFailed):
		return err
	case isTLSError(err):
		return fmt.Errorf("%w: %w", ErrTLS, err)
	case isConnError(err):
		return fmt.Errorf("%w: %w", ErrConnFailed, err)
	default:
		return err
	}
}

func isTLSError(err error) bool {
	var (
		unknownAuthority x509.UnknownAuthorityError
		invalidCert      x509.CertificateInvalidError
		hostname         x509.HostnameError
		verification     *tls.CertificateVerificationError
		recordHeader     tls.RecordHeaderError
		alert            tls.AlertError
	)

	switch {
	case errors.As(err, &unknownAuthority),
		errors.As(err, &invalidCert),
		errors.As(err, &hostname),
		errors.As(err, &verification),
		errors.As(err, &recordHeader),
		errors.As(err, &alert):
		return true
	}

	// handshake failures without a typed cause
	return strings.Contains(err.Error(), "tls: ")
}

func isConnError(err error) bool {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}

	if errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.EHOSTUNREACH) ||
		errors.Is(err, syscall.ENETUNREACH) {
		return true
	}

	var opErr *net.OpError
	return errors.As(err, &opErr) && opErr.Op == "dial"
}
