package domain

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"syscall"
)

// UploadErrorKind is a high-level classification of publish failures.
type UploadErrorKind string

const (
	UploadErrorUnknown UploadErrorKind = "unknown"
	UploadErrorTimeout UploadErrorKind = "timeout"
	UploadErrorDNS     UploadErrorKind = "dns"
	UploadErrorConn    UploadErrorKind = "connection"
	UploadErrorHTTP    UploadErrorKind = "http"
)

// UploadError is the structured failure of a request to the issue tracker.
// StatusCode and Body are set only when a response was received.
type UploadError struct {
	Kind       UploadErrorKind
	StatusCode int
	Body       string
	Message    string
}

func (e *UploadError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s error: status %d: %s", e.Kind, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s error: %s", e.Kind, e.Message)
}

func (e *UploadError) Is(target error) bool {
	return target == ErrUpload
}

// NewUploadError classifies a transport error.
func NewUploadError(err error) *UploadError {
	if err == nil {
		return nil
	}
	return &UploadError{
		Kind:    ClassifyTransportError(err),
		Message: err.Error(),
	}
}

// ClassifyTransportError maps low-level network errors to an UploadErrorKind.
func ClassifyTransportError(err error) UploadErrorKind {
	if errors.Is(err, context.DeadlineExceeded) {
		return UploadErrorTimeout
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return UploadErrorDNS
	}

	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return UploadErrorTimeout
	}

	var ue *url.Error
	if errors.As(err, &ue) && ue.Timeout() {
		return UploadErrorTimeout
	}

	if errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ETIMEDOUT) {
		return UploadErrorConn
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return UploadErrorConn
	}

	return UploadErrorUnknown
}
