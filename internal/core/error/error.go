package errx

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"regexp"
	"strings"
)

const (
	// SystemErrorMessage is a user-facing fallback when internal errors occur.
	SystemErrorMessage = "internal server error"
	// RedisErrorMessage describes Redis related failures.
	RedisErrorMessage = "redis operation failed"
	// RedisNotFoundMessage describes a missing Redis key.
	RedisNotFoundMessage = "redis key not found"
	// SQLErrorMessage describes database failures.
	SQLErrorMessage = "database operation failed"

	// BusyMessage is shown once upstream retries are exhausted.
	BusyMessage = "Our assistant is handling a lot of conversations right now. Please try again in a moment."
	// TimeoutMessage is shown when a turn exceeds its wall-clock ceiling.
	TimeoutMessage = "That took longer than expected. Please try again."
	// UnavailableMessage is shown for fatal upstream and configuration failures.
	UnavailableMessage = "Sorry, I can't answer that right now. Please try again later or contact us directly."
)

// Kind classifies an AppError into the engine's error taxonomy.
type Kind string

const (
	KindUnknown           Kind = ""
	KindValidation        Kind = "validation"
	KindRetryableUpstream Kind = "retryable_upstream"
	KindFatalUpstream     Kind = "fatal_upstream"
	KindTimeout           Kind = "timeout"
	KindLogging           Kind = "logging"
)

// Outbound errorType values.
const (
	TypeValidation        = "VALIDATION_ERROR"
	TypeAPIConfig         = "API_CONFIG_ERROR"
	TypeRateLimit         = "RATE_LIMIT_ERROR"
	TypeNetwork           = "NETWORK_ERROR"
	TypeTimeout           = "TIMEOUT_ERROR"
	TypeConnectionTimeout = "CONNECTION_TIMEOUT"
	TypeGeneral           = "GENERAL_ERROR"
)

// AppError wraps an underlying error with an HTTP status and safe message.
type AppError struct {
	Err     error
	Status  int
	Message string
	Kind    Kind
	// UpstreamStatus is the HTTP status reported by an upstream service, if any.
	UpstreamStatus int
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

// Unwrap exposes the underlying error for errors.Is / errors.As support.
func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError with the provided information.
func New(err error, status int, message string) *AppError {
	return &AppError{
		Err:     err,
		Status:  status,
		Message: message,
	}
}

// Validation reports a malformed inbound request.
func Validation(message string) *AppError {
	return &AppError{
		Err:     errors.New(message),
		Status:  http.StatusBadRequest,
		Message: message,
		Kind:    KindValidation,
	}
}

// RetryableUpstream marks an upstream failure that may succeed on retry.
func RetryableUpstream(err error, upstreamStatus int) *AppError {
	return &AppError{
		Err:            err,
		Status:         http.StatusInternalServerError,
		Message:        BusyMessage,
		Kind:           KindRetryableUpstream,
		UpstreamStatus: upstreamStatus,
	}
}

// FatalUpstream marks an upstream failure that must not be retried.
func FatalUpstream(err error, upstreamStatus int) *AppError {
	return &AppError{
		Err:            err,
		Status:         http.StatusInternalServerError,
		Message:        UnavailableMessage,
		Kind:           KindFatalUpstream,
		UpstreamStatus: upstreamStatus,
	}
}

// Timeout marks a turn that exceeded its wall-clock ceiling.
func Timeout(err error) *AppError {
	return &AppError{
		Err:     err,
		Status:  http.StatusInternalServerError,
		Message: TimeoutMessage,
		Kind:    KindTimeout,
	}
}

// Logging marks a failure of the turn log or profile store. These are
// reported locally and never surfaced to the caller.
func Logging(err error, op string) *AppError {
	return &AppError{
		Err:     err,
		Status:  http.StatusInternalServerError,
		Message: op,
		Kind:    KindLogging,
	}
}

// KindOf returns the taxonomy kind of err, or KindUnknown.
func KindOf(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindUnknown
}

// IsValidation reports whether err is a request validation failure.
func IsValidation(err error) bool {
	return KindOf(err) == KindValidation
}

// Is reports whether the target matches the underlying error or the AppError itself.
func (e *AppError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// As allows casting to AppError or the wrapped error in a chain.
func (e *AppError) As(target any) bool {
	if errors.As(e.Err, target) {
		return true
	}
	if t, ok := target.(**AppError); ok {
		*t = e
		return true
	}
	return false
}

var (
	authStatusPattern      = regexp.MustCompile(`\b40[13]\b`)
	rateLimitStatusPattern = regexp.MustCompile(`\b429\b`)
)

// ClassifyErrorType maps err to the outbound errorType vocabulary by its
// taxonomy kind and upstream status first and the error text second.
// Status codes in the text only count as whole numbers. Exhausted 5xx
// retries carry no more specific type and report GENERAL_ERROR.
func ClassifyErrorType(err error) string {
	if err == nil {
		return TypeGeneral
	}
	switch KindOf(err) {
	case KindValidation:
		return TypeValidation
	case KindTimeout:
		return TypeTimeout
	}

	msg := strings.ToLower(err.Error())
	status := upstreamStatus(err)
	var netErr net.Error
	isNetErr := errors.As(err, &netErr) && !errors.Is(err, context.DeadlineExceeded)

	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden ||
		authStatusPattern.MatchString(msg) ||
		containsAny(msg, "api key", "api_key", "apikey", "unauthorized", "permission denied", "not configured", "invalid authentication"):
		return TypeAPIConfig
	case status == http.StatusTooManyRequests || rateLimitStatusPattern.MatchString(msg) ||
		containsAny(msg, "rate limit", "rate_limit", "ratelimit", "too many requests", "quota", "throttl"):
		return TypeRateLimit
	case errors.Is(err, context.DeadlineExceeded):
		return TypeTimeout
	case isNetErr && netErr.Timeout(),
		containsAny(msg, "i/o timeout", "etimedout", "connection timed out"):
		return TypeConnectionTimeout
	case containsAny(msg, "deadline exceeded", "timeout", "timed out"):
		return TypeTimeout
	case isNetErr, errors.Is(err, io.ErrUnexpectedEOF),
		containsAny(msg, "network", "connection refused", "connection reset", "no such host", "econnrefused", "enotfound", "unexpected eof", "fetch failed"):
		return TypeNetwork
	default:
		return TypeGeneral
	}
}

func upstreamStatus(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.UpstreamStatus
	}
	return 0
}

// UserMessage returns the text that may be shown to an end user for err.
func UserMessage(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Kind != KindUnknown && appErr.Kind != KindLogging {
		return appErr.Message
	}
	switch ClassifyErrorType(err) {
	case TypeRateLimit:
		return BusyMessage
	case TypeTimeout, TypeConnectionTimeout:
		return TimeoutMessage
	default:
		return UnavailableMessage
	}
}

func containsAny(s string, needles ...string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}
