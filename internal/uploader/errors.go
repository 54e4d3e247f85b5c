package uploader

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/minio/minio-go/v7"
)

// Category classifies an upload failure for operator-facing diagnostics.
type Category string

const (
	// CategoryNetworkOrCors covers failures where the request was blocked
	// before a response arrived: DNS, dial, reset, timeout, or a CORS-style
	// block in front of the endpoint.
	CategoryNetworkOrCors Category = "network_or_cors"
	// CategoryAuthOrSignature covers the object store rejecting the
	// credentials or request signature.
	CategoryAuthOrSignature Category = "auth_or_signature"
	// CategoryUnknown is everything else.
	CategoryUnknown Category = "unknown"
)

// UploadError wraps a single-object upload failure with enough context to
// act on: the failing file, its destination key, the endpoint host and a
// failure category. Credentials never appear in the message.
type UploadError struct {
	FileName string
	Key      string
	Endpoint string
	Category Category
	Err      error
}

func (e *UploadError) Error() string {
	details := fmt.Sprintf("endpoint=%s key=%s", e.Endpoint, e.Key)
	switch e.Category {
	case CategoryNetworkOrCors:
		return fmt.Sprintf("failed to upload %s: %v. Request was blocked before a response (%s); check network reachability and add this origin to the bucket's allowed-origin list if uploads cross origins", e.FileName, e.Err, details)
	case CategoryAuthOrSignature:
		return fmt.Sprintf("failed to upload %s: %v. The object store rejected the credentials or signature (%s); re-check the configured access key and secret", e.FileName, e.Err, details)
	default:
		return fmt.Sprintf("failed to upload %s: %v (%s)", e.FileName, e.Err, details)
	}
}

func (e *UploadError) Unwrap() error {
	return e.Err
}

var networkFailureFragments = []string{
	"connection refused",
	"connection reset",
	"no such host",
	"network is unreachable",
	"broken pipe",
	"tls handshake",
	"i/o timeout",
}

// Classify buckets an error into an upload failure category.
func Classify(err error) Category {
	if err == nil {
		return CategoryUnknown
	}

	resp := minio.ToErrorResponse(err)
	switch resp.Code {
	case "AccessDenied", "SignatureDoesNotMatch", "InvalidAccessKeyId":
		return CategoryAuthOrSignature
	}

	var netErr net.Error
	if errors.As(err, &netErr) || errors.Is(err, context.DeadlineExceeded) {
		return CategoryNetworkOrCors
	}

	msg := strings.ToLower(err.Error())
	for _, fragment := range networkFailureFragments {
		if strings.Contains(msg, fragment) {
			return CategoryNetworkOrCors
		}
	}

	return CategoryUnknown
}
