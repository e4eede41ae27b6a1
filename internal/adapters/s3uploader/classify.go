package s3uploader

import (
	"errors"
	"net"
	"strings"

	"github.com/aws/smithy-go"
)

// terminalCodes are S3 API error codes that retrying will never fix —
// the object store rejected the request on policy grounds, not a
// transient condition.
var terminalCodes = map[string]bool{
	"NoSuchBucket":          true,
	"AccessDenied":          true,
	"InvalidAccessKeyId":    true,
	"SignatureDoesNotMatch": true,
	"InvalidBucketName":     true,
}

// retryable reports whether err is worth retrying with backoff: a network
// error, a request timeout, a 5xx response, or a throttling code. Any
// code in terminalCodes short-circuits to false regardless of how it
// arrived, since those indicate a misconfiguration a retry cannot fix.
func retryable(err error) bool {
	if err == nil {
		return false
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		code := apiErr.ErrorCode()
		if terminalCodes[code] {
			return false
		}
		switch code {
		case "RequestTimeout", "Throttling", "ThrottlingException", "SlowDown",
			"ServiceUnavailable", "InternalError", "RequestTimeTooSkewed":
			return true
		}
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "connection") || strings.Contains(msg, "timeout") || strings.Contains(msg, "eof")
}
