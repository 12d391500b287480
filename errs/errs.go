// Package errs defines the numstore error taxonomy.
//
// Every failure surfaced by the codec, generator, reader and storage
// layers is an *Error classified under one of the sentinel kinds below.
// Callers use errors.Is(err, errs.ErrXxx) rather than string matching.
package errs

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
)

// Core kinds.
var (
	// ErrUnsupportedType indicates an unknown element kind at generation time.
	ErrUnsupportedType = errors.New("unsupported element type")

	// ErrUnsupportedWidth indicates a header width outside {1,2,4,8}.
	ErrUnsupportedWidth = errors.New("unsupported element width")

	// ErrIO indicates a truncated read, seek failure, or other local I/O failure.
	ErrIO = errors.New("i/o error")

	// ErrNotFound indicates the path or key is absent. It is also an ErrIO.
	ErrNotFound = fmt.Errorf("not found: %w", ErrIO)

	// ErrDecode indicates text decoding exhausted all fallbacks.
	ErrDecode = errors.New("decode error")

	// ErrInvalidArgument indicates a malformed request parameter.
	ErrInvalidArgument = errors.New("invalid argument")
)

// Storage kinds.
var (
	// ErrPermissionDenied indicates a permission/access failure (EACCES).
	ErrPermissionDenied = errors.New("permission denied")

	// ErrAccessDenied indicates authorization failure (valid creds but no permission, 403).
	ErrAccessDenied = errors.New("access denied")

	// ErrAuth indicates authentication failure (no credentials, expired token).
	ErrAuth = errors.New("authentication failed")

	// ErrDiskFull indicates storage is out of space (ENOSPC).
	ErrDiskFull = errors.New("no space left on device")

	// ErrTimeout indicates an operation timed out.
	ErrTimeout = errors.New("operation timed out")

	// ErrThrottled indicates rate limiting (429, SlowDown).
	ErrThrottled = errors.New("rate limited")

	// ErrNetwork indicates a network-level failure (connection refused, DNS).
	ErrNetwork = errors.New("network error")
)

// Error wraps an underlying error with a classification kind.
// It preserves the original error in the chain for inspection via errors.As.
type Error struct {
	// Kind is the sentinel error for classification (e.g., ErrNotFound).
	Kind error
	// Op is the operation that failed (e.g., "read_array", "put").
	Op string
	// Path is the file path or storage key involved, if any.
	Path string
	// Err is the underlying error. May be nil.
	Err error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Op)
	if e.Path != "" {
		b.WriteString(" ")
		b.WriteString(e.Path)
	}
	b.WriteString(": ")
	b.WriteString(e.Kind.Error())
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap returns the underlying error for errors.Is/As chain traversal.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether the error's kind matches the target sentinel.
func (e *Error) Is(target error) bool {
	return errors.Is(e.Kind, target)
}

// New creates a classified error.
func New(kind error, op, path string, err error) *Error {
	return &Error{Kind: kind, Op: op, Path: path, Err: err}
}

// Errorf creates a classified error with a formatted cause.
func Errorf(kind error, op, path, format string, args ...any) *Error {
	return New(kind, op, path, fmt.Errorf(format, args...))
}

// Wrap classifies err and wraps it. Returns nil if err is nil.
// Errors that are already classified are returned unchanged.
func Wrap(err error, op, path string) error {
	if err == nil {
		return nil
	}
	var classified *Error
	if errors.As(err, &classified) {
		return err
	}
	return New(classify(err, path), op, path, err)
}

// KindOf returns the classification of err, or nil for unclassified errors.
func KindOf(err error) error {
	var classified *Error
	if errors.As(err, &classified) {
		return classified.Kind
	}
	return nil
}

// Classify determines the sentinel kind for err.
// Typed checks run first; message patterns cover backends (S3, lode)
// that do not expose typed errors.
func Classify(err error) error {
	return classify(err, "")
}

func classify(err error, path string) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, fs.ErrNotExist):
		return ErrNotFound
	case errors.Is(err, fs.ErrPermission):
		return ErrPermissionDenied
	}

	var timeoutErr interface{ Timeout() bool }
	if errors.As(err, &timeoutErr) && timeoutErr.Timeout() {
		return ErrTimeout
	}

	msg := messageOf(err, path)
	switch {
	case containsAny(msg, "permission denied", "EACCES"):
		return ErrPermissionDenied

	case containsAny(msg, "no such file", "does not exist", "not found", "ENOENT", "404", "NoSuchKey"):
		return ErrNotFound

	case containsAny(msg, "no space left", "disk full", "ENOSPC", "quota exceeded"):
		return ErrDiskFull

	case containsAny(msg, "timeout", "timed out", "deadline exceeded"):
		return ErrTimeout

	case containsAny(msg, "SlowDown", "rate exceeded", "throttl", "429", "TooManyRequests"):
		return ErrThrottled

	case containsAny(msg, "NoCredentialProviders", "credentials", "InvalidAccessKeyId",
		"SignatureDoesNotMatch", "ExpiredToken", "401", "Unauthorized"):
		return ErrAuth

	case containsAny(msg, "AccessDenied", "Forbidden", "403", "access denied"):
		return ErrAccessDenied

	case containsAny(msg, "connection refused", "no route to host", "network unreachable",
		"DNS", "dial tcp"):
		return ErrNetwork

	default:
		return ErrIO
	}
}

// messageOf returns the text the message patterns run against. File paths
// are dropped so a name like "report404.array" cannot pick the kind.
func messageOf(err error, path string) string {
	var pathErr *fs.PathError
	if errors.As(err, &pathErr) {
		return pathErr.Op + ": " + pathErr.Err.Error()
	}
	msg := err.Error()
	if path != "" {
		msg = strings.ReplaceAll(msg, path, "")
	}
	fields := strings.Fields(msg)
	kept := fields[:0]
	for _, f := range fields {
		if !strings.ContainsAny(f, `/\`) {
			kept = append(kept, f)
		}
	}
	return strings.Join(kept, " ")
}

// containsAny reports whether s contains any of the substrings, ignoring case.
func containsAny(s string, substrs ...string) bool {
	lower := strings.ToLower(s)
	for _, sub := range substrs {
		if strings.Contains(lower, strings.ToLower(sub)) {
			return true
		}
	}
	return false
}
